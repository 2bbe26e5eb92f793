// Package web serves live positions to browsers over HTTP and WebSocket.
package web

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"yard-tracker/internal/interfaces"
	"yard-tracker/internal/models"
)

const (
	broadcastBuffer = 64
	writeWait       = 5 * time.Second
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Hub fans position reports out to every connected WebSocket client. A
// client whose write fails is dropped.
type Hub struct {
	logger    zerolog.Logger
	broadcast chan models.PositionReport

	mu      sync.Mutex
	clients map[*websocket.Conn]struct{}
}

func NewHub(logger zerolog.Logger) *Hub {
	return &Hub{
		logger:    logger,
		broadcast: make(chan models.PositionReport, broadcastBuffer),
		clients:   make(map[*websocket.Conn]struct{}),
	}
}

func (h *Hub) Name() string {
	return "websocket"
}

// Send queues the report for broadcast. When the queue is full the report is
// dropped; browsers only care about the latest position.
func (h *Hub) Send(ctx context.Context, report *models.PositionReport) error {
	select {
	case h.broadcast <- *report:
	default:
		h.logger.Warn().
			Str("device_id", report.DeviceID).
			Msg("Broadcast queue full, dropping report")
	}
	return nil
}

// Run delivers queued reports until ctx is done, then closes all clients.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			return
		case report := <-h.broadcast:
			h.deliver(report)
		}
	}
}

func (h *Hub) deliver(report models.PositionReport) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for client := range h.clients {
		_ = client.SetWriteDeadline(time.Now().Add(writeWait))
		if err := client.WriteJSON(report); err != nil {
			h.logger.Debug().Err(err).
				Str("remote", client.RemoteAddr().String()).
				Msg("Dropping websocket client")
			client.Close()
			delete(h.clients, client)
		}
	}
}

func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	ws, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error().Err(err).Msg("Websocket upgrade failed")
		return
	}

	h.mu.Lock()
	h.clients[ws] = struct{}{}
	h.mu.Unlock()

	h.logger.Info().
		Str("remote", ws.RemoteAddr().String()).
		Msg("Websocket client connected")

	// Browsers never send anything; reading only detects the close.
	for {
		if _, _, err := ws.ReadMessage(); err != nil {
			break
		}
	}

	h.mu.Lock()
	if _, ok := h.clients[ws]; ok {
		delete(h.clients, ws)
		ws.Close()
	}
	h.mu.Unlock()
}

func (h *Hub) ClientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for client := range h.clients {
		client.Close()
		delete(h.clients, client)
	}
}

var _ interfaces.IPositionSink = (*Hub)(nil)
