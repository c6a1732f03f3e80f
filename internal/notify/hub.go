package notify

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const ChannelLive = "live"

const (
	writeWait    = 10 * time.Second
	pingInterval = 30 * time.Second
	clientBuffer = 16
)

// Hub fans new-order events out to connected admin dashboards. Slow clients
// miss messages rather than holding up the worker.
type Hub struct {
	upgrader websocket.Upgrader
	mu       sync.RWMutex
	clients  map[chan []byte]struct{}
}

// NewHub accepts upgrades from the listed origins. With none listed only
// same-origin dashboards may connect.
func NewHub(allowedOrigins []string) *Hub {
	h := &Hub{clients: map[chan []byte]struct{}{}}
	if len(allowedOrigins) == 0 {
		return h
	}
	allowed := map[string]bool{}
	for _, o := range allowedOrigins {
		allowed[o] = true
	}
	h.upgrader.CheckOrigin = func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		return origin == "" || allowed[origin]
	}
	return h
}

func (h *Hub) Channel() string { return ChannelLive }

func (h *Hub) Send(_ context.Context, t Task) error {
	payload, err := json.Marshal(map[string]any{"type": t.Kind, "order": t.Order})
	if err != nil {
		return err
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	for ch := range h.clients {
		select {
		case ch <- payload:
		default:
		}
	}
	return nil
}

// Clients is the number of connected dashboards.
func (h *Hub) Clients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Serve upgrades the request and streams events until the socket closes.
func (h *Hub) Serve(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		zap.L().Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	ch := make(chan []byte, clientBuffer)
	h.mu.Lock()
	h.clients[ch] = struct{}{}
	h.mu.Unlock()
	defer func() {
		h.mu.Lock()
		delete(h.clients, ch)
		h.mu.Unlock()
	}()

	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := conn.WriteJSON(map[string]string{"type": "connected"}); err != nil {
		return
	}

	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()
	for {
		select {
		case msg := <-ch:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-closed:
			return
		}
	}
}
