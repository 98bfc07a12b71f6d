// Package httpapi serves the bot's health and status endpoints.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/edgard/wabot/internal/chat"
	"github.com/edgard/wabot/internal/command"
)

const shutdownTimeout = 5 * time.Second

// StatusSource reports the connection supervisor's view of the session.
type StatusSource interface {
	State() chat.ConnectionState
	Reconnects() int64
}

// Status is the body of GET /status.
type Status struct {
	Bot        string   `json:"bot"`
	State      string   `json:"state"`
	Reconnects int64    `json:"reconnects"`
	Commands   []string `json:"commands"`
	Uptime     string   `json:"uptime"`
}

// Server exposes the status endpoints over HTTP.
type Server struct {
	addr      string
	botName   string
	status    StatusSource
	commands  command.Lister
	startedAt time.Time
	log       *slog.Logger
}

func New(addr, botName string, status StatusSource, commands command.Lister, logger *slog.Logger) *Server {
	return &Server{
		addr:      addr,
		botName:   botName,
		status:    status,
		commands:  commands,
		startedAt: time.Now(),
		log:       logger.With("component", "http"),
	}
}

// Handler returns the routed handler.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)

	r.Get("/healthz", s.health)
	r.Get("/status", s.statusHandler)
	return r
}

// Run serves until ctx is canceled, then shuts the server down.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("Status server listening", "addr", s.addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("status server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("status server shutdown: %w", err)
	}
	s.log.Info("Status server stopped")
	return nil
}

func (s *Server) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) statusHandler(w http.ResponseWriter, _ *http.Request) {
	state := s.status.State()

	names := []string{}
	for _, c := range s.commands.All() {
		names = append(names, c.Name)
	}

	code := http.StatusOK
	if state != chat.StateOpen {
		code = http.StatusServiceUnavailable
	}
	writeJSON(w, code, Status{
		Bot:        s.botName,
		State:      state.String(),
		Reconnects: s.status.Reconnects(),
		Commands:   names,
		Uptime:     time.Since(s.startedAt).Round(time.Second).String(),
	})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
