package services

import (
	"encoding/json"
	"sync"

	"mealplanner/models"

	"github.com/gorilla/websocket"
)

type WSClient struct {
	UserID uint
	Conn   *websocket.Conn
}

// AlertEvent is the wire payload pushed to websocket clients when an
// alert is created (depletion warnings, mostly).
type AlertEvent struct {
	Kind  string        `json:"kind"` // "alert.created"
	Alert *models.Alert `json:"alert"`
}

// RealtimeHub tracks live websocket clients per user and pushes alert
// events to them.
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
	_ = c.Conn.Close()
}

// BroadcastAlert fans one alert event out to every live connection the
// user has. A slow or dead connection only loses its own message.
func (h *RealtimeHub) BroadcastAlert(userID uint, ev AlertEvent) {
	msg, err := json.Marshal(ev)
	if err != nil {
		return
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.clients[userID] {
		_ = c.Conn.WriteMessage(websocket.TextMessage, msg)
	}
}
