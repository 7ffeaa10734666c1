package services

import (
	"sync"
)

const (
	EventMealCreated = "meal.created"
	EventMealDeleted = "meal.deleted"
	// EventPreferencesUpdated carries the new week start day.
	EventPreferencesUpdated = "preferences.updated"
)

// MealEvent is a change to a user's data that live sessions react to.
type MealEvent struct {
	Kind         string `json:"kind"`
	MealID       string `json:"meal_id,omitempty"`
	Date         string `json:"date,omitempty"`
	WeekStartDay *int   `json:"week_start_day,omitempty"`
}

// WSClient is one live connection. Events are delivered on a buffered
// channel; the connection's own loop is the only writer to the socket.
type WSClient struct {
	UserID uint
	Events chan MealEvent
}

func NewWSClient(userID uint) *WSClient {
	return &WSClient{UserID: userID, Events: make(chan MealEvent, 8)}
}

type RealtimeHub struct {
	mu      sync.RWMutex
	clients map[uint]map[*WSClient]struct{}
}

func NewRealtimeHub() *RealtimeHub {
	return &RealtimeHub{clients: make(map[uint]map[*WSClient]struct{})}
}

func (h *RealtimeHub) Register(c *WSClient) {
	h.mu.Lock()
	if h.clients[c.UserID] == nil {
		h.clients[c.UserID] = make(map[*WSClient]struct{})
	}
	h.clients[c.UserID][c] = struct{}{}
	h.mu.Unlock()
}

func (h *RealtimeHub) Unregister(c *WSClient) {
	h.mu.Lock()
	if set := h.clients[c.UserID]; set != nil {
		delete(set, c)
		if len(set) == 0 {
			delete(h.clients, c.UserID)
		}
	}
	h.mu.Unlock()
}

// Publish delivers ev to every connection of userID except origin. Slow
// clients whose buffer is full miss the event.
func (h *RealtimeHub) Publish(userID uint, ev MealEvent, origin *WSClient) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.clients[userID] {
		if c == origin {
			continue
		}
		select {
		case c.Events <- ev:
		default:
		}
	}
}

func (h *RealtimeHub) Connections(userID uint) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[userID])
}
