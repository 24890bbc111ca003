package observability

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Server exposes Prometheus metrics and a health endpoint during watch mode.
type Server struct {
	addr   string
	health func() map[string]any
	server *http.Server
}

// NewServer builds the metrics server. The health callback supplies the
// payload for /health; nil means a bare "up".
func NewServer(addr string, health func() map[string]any) *Server {
	return &Server{addr: addr, health: health}
}

func (s *Server) Start() {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		payload := map[string]any{"status": "up"}
		if s.health != nil {
			for k, v := range s.health() {
				payload[k] = v
			}
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(payload)
	})

	s.server = &http.Server{Addr: s.addr, Handler: mux}

	slog.Info("metrics server starting", "addr", s.addr)
	go func() {
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("metrics server failed", "error", err)
		}
	}()
}

func (s *Server) Stop(ctx context.Context) error {
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}
