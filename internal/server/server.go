package server

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/dukerupert/taskminder/internal/middleware"
	"github.com/dukerupert/taskminder/internal/websocket"
)

// Server is the serve-mode HTTP surface: the event stream and a health probe.
type Server struct {
	db             *sql.DB
	hub            *websocket.Hub
	vapidPublicKey string
	rateLimiter    *middleware.RateLimiter
	logger         *slog.Logger
}

// New creates a Server. vapidPublicKey may be empty when push is disabled.
func New(db *sql.DB, hub *websocket.Hub, vapidPublicKey string, logger *slog.Logger) *Server {
	return &Server{
		db:             db,
		hub:            hub,
		vapidPublicKey: vapidPublicKey,
		rateLimiter:    middleware.NewRateLimiter(30, 10),
		logger:         logger,
	}
}

func (s *Server) Router() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", s.healthHandler)
	mux.HandleFunc("GET /push/vapid-public-key", s.vapidKeyHandler)

	wsHandler := websocket.HandleWebSocket(s.hub, s.logger.With("component", "websocket"))
	mux.Handle("GET /ws", middleware.RateLimit(s.rateLimiter, middleware.RealIP)(wsHandler))

	return middleware.RequestLogger(s.logger.With("component", "http"), "/healthz")(mux)
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	status, code := "ok", http.StatusOK
	if err := s.db.PingContext(ctx); err != nil {
		s.logger.Error("health check", "error", err)
		status, code = "database unavailable", http.StatusServiceUnavailable
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]any{
		"status":  status,
		"clients": s.hub.ClientCount(),
	})
}

func (s *Server) vapidKeyHandler(w http.ResponseWriter, r *http.Request) {
	if s.vapidPublicKey == "" {
		http.Error(w, "push not configured", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"public_key": s.vapidPublicKey})
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("http server listening", "addr", addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("http server shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return <-errCh
}
