package web

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"

	alarm "github.com/AlbertDoesNothing/Myriad/internal/domain/alarm"
	"github.com/AlbertDoesNothing/Myriad/internal/logger"
)

// DefaultPushInterval is the websocket snapshot push period.
const DefaultPushInterval = time.Second

// shutdownTimeout bounds the graceful HTTP shutdown.
const shutdownTimeout = 5 * time.Second

// Service abstracts the controller operations the transport layer depends on.
type Service interface {
	Snapshot() alarm.Snapshot
	Command(b byte) bool
}

// Server is the HTTP status surface: a JSON snapshot endpoint, a websocket
// pushing snapshots, and control endpoints that inject the same command
// bytes the serial link carries.
type Server struct {
	// service provides controller state and the command queue.
	service Service
	// pushInterval is the default websocket push period.
	pushInterval time.Duration

	router     *mux.Router
	wsUpgrader *websocket.Upgrader
}

// NewServer wires the provided service into the HTTP routes.
func NewServer(service Service, pushInterval time.Duration) *Server {
	if pushInterval <= 0 {
		pushInterval = DefaultPushInterval
	}

	s := &Server{
		service:      service,
		pushInterval: pushInterval,
		wsUpgrader: &websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}

	s.router = mux.NewRouter()
	s.router.Handle("/snapshot", http.HandlerFunc(s.Snapshot)).Methods("GET", "HEAD")
	s.router.Handle("/websocket", http.HandlerFunc(s.Websocket)).Methods("GET")
	s.router.Handle("/activate", http.HandlerFunc(s.Activate)).Methods("POST")
	s.router.Handle("/deactivate", http.HandlerFunc(s.Deactivate)).Methods("POST")

	return s
}

// Handler returns the route tree, exposed for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves the status surface until the context is cancelled, then shuts
// down gracefully and blocks until the server has fully stopped.
func (s *Server) Run(ctx context.Context, addr string) error {
	httpServer := &http.Server{
		Handler:     s.router,
		Addr:        addr,
		ReadTimeout: 4 * time.Second,
	}

	// Done channel is closed after Shutdown finishes to ensure we block
	// until the server fully stops before returning.
	done := make(chan struct{})

	go func() {
		<-ctx.Done()
		logger.Info(ctx, "Shutting down status server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		_ = httpServer.Shutdown(shutdownCtx)
		close(done)
	}()

	logger.InfoKV(ctx, "Status server listening", "listen_address", addr)

	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("serve status: %w", err)
	}

	<-done

	return nil
}

// Snapshot writes the current machine state as JSON.
func (s *Server) Snapshot(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(s.service.Snapshot()); err != nil {
		logger.ErrorKV(context.Background(), "Failed to encode snapshot", "error", err)
	}
}

// Websocket pushes a snapshot every push interval. The period can be tuned
// per connection with the `poll` query parameter.
func (s *Server) Websocket(w http.ResponseWriter, r *http.Request) {
	interval := s.pushInterval

	if v, ok := r.URL.Query()["poll"]; ok {
		if d, err := time.ParseDuration(v[0]); err == nil && d > 0 {
			interval = d
		}
	}

	conn, err := s.wsUpgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.WarnKV(r.Context(), "Websocket upgrade failed", "error", err)

		return
	}

	defer func() {
		_ = conn.Close()
	}()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if err := conn.WriteJSON(s.service.Snapshot()); err != nil {
			return
		}

		select {
		case <-r.Context().Done():
			return
		case <-ticker.C:
		}
	}
}

// Activate queues an activation command, as if '1' arrived on the serial link.
func (s *Server) Activate(w http.ResponseWriter, r *http.Request) {
	s.inject(w, r, alarm.CommandActivate)
}

// Deactivate queues a deactivation command, as if '0' arrived on the serial link.
func (s *Server) Deactivate(w http.ResponseWriter, r *http.Request) {
	s.inject(w, r, alarm.CommandDeactivate)
}

// inject pushes a command byte into the controller queue. The caller gets
// 202 on queueing: the loop applies the command on its next iteration, and
// the device sends no acknowledgment beyond that.
func (s *Server) inject(w http.ResponseWriter, r *http.Request, b byte) {
	if !s.service.Command(b) {
		http.Error(w, "command queue full", http.StatusServiceUnavailable)

		return
	}

	logger.InfoKV(r.Context(), "Command queued",
		"command", string(b),
		"remote_addr", r.RemoteAddr,
	)

	w.WriteHeader(http.StatusAccepted)
}
