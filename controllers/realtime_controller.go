package controllers

import (
	"context"
	"net/http"
	"time"

	"mealsnap/services"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

type RealtimeController struct {
	RT          *services.RealtimeHub
	History     *services.HistoryService
	Meals       *services.MealService
	Preferences *services.PreferencesService
	log         *zap.Logger
}

func NewRealtimeController(rt *services.RealtimeHub, history *services.HistoryService, meals *services.MealService, prefs *services.PreferencesService, log *zap.Logger) *RealtimeController {
	return &RealtimeController{RT: rt, History: history, Meals: meals, Preferences: prefs, log: log.Named("realtime")}
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true }, // tighten behind a proxy if needed
}

// HistoryCommand drives a history session.
type HistoryCommand struct {
	Action string `json:"action"` // prev | next | refresh | delete | set_week_start | sort
	MealID string `json:"meal_id,omitempty"`
	Day    *int   `json:"day,omitempty"`
	Order  string `json:"order,omitempty"`
}

type historyMessage struct {
	Kind  string             `json:"kind"`
	View  *services.WeekView `json:"view,omitempty"`
	Error string             `json:"error,omitempty"`
}

// HistoryWS serves GET /api/ws/history. Each connection owns one navigator;
// a week view is pushed after every command and whenever the user's meals
// change from another client.
func (rc *RealtimeController) HistoryWS(c *gin.Context) {
	uid, ok := userIDFromCtx(c)
	if !ok {
		unauthorized(c)
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()

	cl := services.NewWSClient(uid)
	rc.RT.Register(cl)
	defer rc.RT.Unregister(cl)

	nav := rc.History.NewNavigator(ctx, uid)
	nav.UseRemover(rc.Meals.RemoverFor(cl))

	cmds := make(chan HistoryCommand)
	go func() {
		defer cancel()
		for {
			var cmd HistoryCommand
			if err := conn.ReadJSON(&cmd); err != nil {
				return
			}
			select {
			case cmds <- cmd:
			case <-ctx.Done():
				return
			}
		}
	}()

	send := func(m historyMessage) bool {
		_ = conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
		return conn.WriteJSON(m) == nil
	}

	if !send(historyMessage{Kind: "week", View: nav.Refresh(ctx)}) {
		return
	}

	ping := time.NewTicker(25 * time.Second)
	defer ping.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ping.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(5*time.Second)); err != nil {
				return
			}
		case ev := <-cl.Events:
			rc.log.Debug("change from another client", zap.Uint("user_id", uid), zap.String("kind", ev.Kind))
			if v := rc.react(ctx, nav, ev); v != nil && !send(historyMessage{Kind: "week", View: v}) {
				return
			}
		case cmd := <-cmds:
			v, err := rc.apply(ctx, uid, cl, nav, cmd)
			if err != nil {
				if !send(historyMessage{Kind: "error", Error: err.Error()}) {
					return
				}
				continue
			}
			if v != nil && !send(historyMessage{Kind: "week", View: v}) {
				return
			}
		}
	}
}

func (rc *RealtimeController) apply(ctx context.Context, uid uint, cl *services.WSClient, nav *services.HistoryNavigator, cmd HistoryCommand) (*services.WeekView, error) {
	switch cmd.Action {
	case "prev":
		return nav.Previous(ctx), nil
	case "next":
		return nav.Next(ctx), nil
	case "refresh":
		return nav.Refresh(ctx), nil
	case "sort":
		return nav.SetOrder(services.ParseSortOrder(cmd.Order)), nil
	case "delete":
		return nav.Delete(ctx, cmd.MealID)
	case "set_week_start":
		if cmd.Day == nil {
			return nil, services.ErrWeekStartDay
		}
		if _, err := rc.Preferences.SetWeekStartDay(ctx, uid, *cmd.Day, cl); err != nil {
			return nil, err
		}
		return nav.SetWeekStartDay(ctx, *cmd.Day)
	default:
		return nil, errUnknownAction
	}
}

// react re-anchors on a week start change and refetches on anything else.
func (rc *RealtimeController) react(ctx context.Context, nav *services.HistoryNavigator, ev services.MealEvent) *services.WeekView {
	if ev.Kind == services.EventPreferencesUpdated && ev.WeekStartDay != nil {
		v, err := nav.SetWeekStartDay(ctx, *ev.WeekStartDay)
		if err != nil {
			rc.log.Warn("ignoring week start update", zap.Int("day", *ev.WeekStartDay), zap.Error(err))
			return nil
		}
		return v
	}
	return nav.Refresh(ctx)
}
