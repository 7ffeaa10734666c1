package services

import (
	"context"
	"sync"
	"time"

	"mealsnap/utils"

	"go.uber.org/zap"
)

// HistoryNavigator is the week-paging state of one live history session.
//
// Every fetch is tagged with a generation number. When a fetch completes after
// a newer navigation was issued its result is dropped, so a slow earlier fetch
// can never overwrite a newer window. Methods that fetch return nil in that
// case.
type HistoryNavigator struct {
	svc    *HistoryService
	userID uint

	mu           sync.Mutex
	remove       MealRemover
	weekStart    time.Time
	weekStartDay int
	order        SortOrder
	gen          uint64
	view         *WeekView
}

// NewNavigator anchors a session on the week containing today under the
// user's week-start preference. Nothing is fetched until Refresh.
func (s *HistoryService) NewNavigator(ctx context.Context, userID uint) *HistoryNavigator {
	day := s.prefs.Resolve(ctx, userID).WeekStartDay
	return &HistoryNavigator{
		svc:          s,
		userID:       userID,
		remove:       s.store,
		weekStart:    s.CurrentWeekStart(day),
		weekStartDay: day,
		order:        NewestFirst,
	}
}

// UseRemover routes deletions through r instead of the store directly.
func (n *HistoryNavigator) UseRemover(r MealRemover) {
	n.mu.Lock()
	n.remove = r
	n.mu.Unlock()
}

// WeekStart is the start of the active window.
func (n *HistoryNavigator) WeekStart() time.Time {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.weekStart
}

// View is the last committed week view, nil before the first fetch.
func (n *HistoryNavigator) View() *WeekView {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.view
}

func (n *HistoryNavigator) IsCurrentWeek() bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	return utils.FormatDate(n.weekStart) == utils.FormatDate(n.svc.CurrentWeekStart(n.weekStartDay))
}

func (n *HistoryNavigator) Refresh(ctx context.Context) *WeekView {
	return n.load(ctx)
}

func (n *HistoryNavigator) Previous(ctx context.Context) *WeekView {
	n.mu.Lock()
	n.weekStart = utils.AddDays(n.weekStart, -7)
	n.mu.Unlock()
	return n.load(ctx)
}

// Next moves one week forward unless that would pass the current week, in
// which case it is a no-op returning the committed view.
func (n *HistoryNavigator) Next(ctx context.Context) *WeekView {
	n.mu.Lock()
	candidate := utils.AddDays(n.weekStart, 7)
	if candidate.After(n.svc.CurrentWeekStart(n.weekStartDay)) {
		v := n.view
		n.mu.Unlock()
		return v
	}
	n.weekStart = candidate
	n.mu.Unlock()
	return n.load(ctx)
}

// SetWeekStartDay re-anchors on today's week under the new start day.
func (n *HistoryNavigator) SetWeekStartDay(ctx context.Context, day int) (*WeekView, error) {
	if !utils.ValidWeekStartDay(day) {
		return nil, ErrWeekStartDay
	}
	n.mu.Lock()
	n.weekStartDay = day
	n.weekStart = n.svc.CurrentWeekStart(day)
	n.mu.Unlock()
	return n.load(ctx), nil
}

// SetOrder re-sorts the committed view in place; sorting is display only.
func (n *HistoryNavigator) SetOrder(order SortOrder) *WeekView {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.order = order
	if n.view == nil {
		return nil
	}
	v := *n.view
	v.Days = append([]DayBucket(nil), n.view.Days...)
	SortDays(v.Days, order)
	v.Order = order
	n.view = &v
	return n.view
}

// Delete removes a meal and refetches the whole window. The delete error is
// returned as is; nothing is refetched when it fails.
func (n *HistoryNavigator) Delete(ctx context.Context, mealID string) (*WeekView, error) {
	n.mu.Lock()
	remove := n.remove
	n.mu.Unlock()
	if err := remove.Delete(ctx, n.userID, mealID); err != nil {
		return nil, err
	}
	return n.load(ctx), nil
}

func (n *HistoryNavigator) load(ctx context.Context) *WeekView {
	n.mu.Lock()
	n.gen++
	gen := n.gen
	start, day, order := n.weekStart, n.weekStartDay, n.order
	n.mu.Unlock()

	view := n.svc.weekFor(ctx, n.userID, start, day, order)

	n.mu.Lock()
	defer n.mu.Unlock()
	if gen != n.gen {
		n.svc.log.Debug("discarding stale week fetch",
			zap.Uint("user_id", n.userID),
			zap.String("week_start", utils.FormatDate(start)))
		return nil
	}
	if view.Order != n.order {
		SortDays(view.Days, n.order)
		view.Order = n.order
	}
	n.view = view
	return view
}
