// Package web provides an HTTP status and control server for the dock-sensor daemon.
package web

import (
	"context"
	"errors"
	"net"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/sweeney/dock-sensor/internal/actions"
	"github.com/sweeney/dock-sensor/internal/status"
)

// TriggerFunc starts an output sequence without waiting for it to finish.
// It returns actions.ErrBusy if another sequence is running.
type TriggerFunc func(a actions.Action) error

// Server serves the status page, metrics and action endpoints over HTTP.
type Server struct {
	httpServer *http.Server
	tracker    *status.Tracker
	trigger    TriggerFunc
}

// New creates a Server that reads state from the given tracker.
// A nil trigger disables the action endpoints (they return 503).
func New(addr string, tracker *status.Tracker, trigger TriggerFunc) *Server {
	s := &Server{tracker: tracker, trigger: trigger}

	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleIndex)
	mux.HandleFunc("/index.html", s.handleIndex)
	mux.HandleFunc("/index.json", s.handleJSON)
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/actions/restart", s.handleAction(actions.ActionRestart))
	mux.HandleFunc("/actions/go-to-charger", s.handleAction(actions.ActionGoToCharger))

	s.httpServer = &http.Server{
		Addr:    addr,
		Handler: mux,
	}
	return s
}

// Handler returns the server's request router.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// ListenAndServe starts listening. It blocks until the server is shut down.
func (s *Server) ListenAndServe() error {
	return s.httpServer.ListenAndServe()
}

// Serve accepts connections on the given listener. Useful for tests.
func (s *Server) Serve(ln net.Listener) error {
	return s.httpServer.Serve(ln)
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" && r.URL.Path != "/index.html" {
		http.NotFound(w, r)
		return
	}
	snap := s.tracker.Snapshot()
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	renderHTML(w, snap)
}

func (s *Server) handleJSON(w http.ResponseWriter, r *http.Request) {
	snap := s.tracker.Snapshot()
	w.Header().Set("Content-Type", "application/json")
	w.Write(status.FormatJSON(snap))
}

func (s *Server) handleAction(a actions.Action) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.Header().Set("Allow", http.MethodPost)
			writeAction(w, http.StatusMethodNotAllowed, a, "method not allowed")
			return
		}
		if s.trigger == nil {
			writeAction(w, http.StatusServiceUnavailable, a, "outputs disabled")
			return
		}

		err := s.trigger(a)
		switch {
		case err == nil:
			writeAction(w, http.StatusAccepted, a, "started")
		case errors.Is(err, actions.ErrBusy):
			writeAction(w, http.StatusConflict, a, "busy")
		default:
			writeAction(w, http.StatusInternalServerError, a, err.Error())
		}
	}
}
