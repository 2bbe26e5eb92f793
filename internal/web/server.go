package web

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/rs/zerolog"

	"yard-tracker/internal/interfaces"
)

type Server struct {
	source interfaces.IPositionSource
	hub    *Hub
	logger zerolog.Logger
}

func NewServer(source interfaces.IPositionSource, hub *Hub, logger zerolog.Logger) *Server {
	return &Server{
		source: source,
		hub:    hub,
		logger: logger,
	}
}

// Handler routes:
//
//	GET /ws                  live report stream
//	GET /positions           latest report of every device
//	GET /positions/{device}  latest report of one device
//	GET /healthz             liveness
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.hub.ServeWS)
	mux.HandleFunc("/positions", s.handlePositions)
	mux.HandleFunc("/positions/", s.handleDevicePosition)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	return mux
}

func (s *Server) handlePositions(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	s.writeJSON(w, s.source.Snapshot())
}

func (s *Server) handleDevicePosition(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	deviceID := strings.Trim(strings.TrimPrefix(r.URL.Path, "/positions/"), "/")
	if deviceID == "" {
		s.writeJSON(w, s.source.Snapshot())
		return
	}

	report, ok := s.source.LastKnown(deviceID)
	if !ok {
		http.Error(w, "unknown device", http.StatusNotFound)
		return
	}
	s.writeJSON(w, report)
}

func (s *Server) writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error().Err(err).Msg("Failed to encode response")
	}
}
