// Package ipc exposes the Manager over a local IPC surface: a
// Unix-domain-socket HTTP+JSON API routed with gorilla/mux, standing in
// for the original's well-known bus name and object path. GetInfo,
// ListClients, GetState, Checkpoint, and Shutdown are plain request/reply
// routes; state-changed, client-registered, and shutdown-cancelled are
// delivered to subscribers as newline-delimited JSON over a long-lived
// GET /v1/events connection.
package ipc

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/gorilla/mux"

	"github.com/xfce-go/xsmd/internal/arch"
	"github.com/xfce-go/xsmd/internal/domain"
	"github.com/xfce-go/xsmd/internal/manager"
)

// Server is the IPC front end: it translates HTTP requests into Manager
// method calls, always through Submit so every mutation still runs on the
// manager's single loop goroutine.
type Server struct {
	socketPath string
	logger     arch.Logger
	mgr        *manager.Manager
	loop       *manager.Loop

	httpServer *http.Server
	broker     *broker
}

// NewServer builds a Server routing onto mgr via loop. loop must be the
// same Loop whose Run the caller is driving; every handler that mutates
// state calls loop.Submit and waits for the submitted closure to finish
// before writing the HTTP response.
func NewServer(socketPath string, mgr *manager.Manager, loop *manager.Loop, logger arch.Logger) *Server {
	s := &Server{
		socketPath: socketPath,
		logger:     logger,
		mgr:        mgr,
		loop:       loop,
		broker:     newBroker(),
	}
	s.httpServer = &http.Server{
		Handler:      s.router(),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 0, // GET /v1/events is a long-lived stream
		IdleTimeout:  60 * time.Second,
	}
	return s
}

// Notify implements arch.Notifier, fanning out manager events to every
// subscribed /v1/events connection.
func (s *Server) Notify(e domain.Event) {
	s.broker.publish(e)
}

func (s *Server) router() *mux.Router {
	r := mux.NewRouter()
	api := r.PathPrefix("/v1").Subrouter()

	api.HandleFunc("/info", s.handleGetInfo).Methods(http.MethodGet)
	api.HandleFunc("/clients", s.handleListClients).Methods(http.MethodGet)
	api.HandleFunc("/state", s.handleGetState).Methods(http.MethodGet)
	api.HandleFunc("/checkpoint", s.handleCheckpoint).Methods(http.MethodPost)
	api.HandleFunc("/shutdown", s.handleShutdown).Methods(http.MethodPost)
	api.HandleFunc("/events", s.handleEvents).Methods(http.MethodGet)

	return r
}

// ListenAndServe binds the Unix socket (removing a stale one from a prior
// crashed run) and serves until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context) error {
	if err := os.Remove(s.socketPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("ipc: remove stale socket %s: %w", s.socketPath, err)
	}

	ln, err := net.Listen("unix", s.socketPath)
	if err != nil {
		return fmt.Errorf("ipc: listen on %s: %w", s.socketPath, err)
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- s.httpServer.Serve(ln)
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return s.httpServer.Shutdown(shutdownCtx)
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("ipc: serve: %w", err)
		}
		return nil
	}
}

// submit runs fn on the manager's loop goroutine and blocks until it has
// run, so handlers can safely read mgr state afterward.
func (s *Server) submit(fn func()) {
	done := make(chan struct{})
	s.loop.Submit(func() {
		fn()
		close(done)
	})
	<-done
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
