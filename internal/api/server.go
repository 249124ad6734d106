// Package api exposes a small status and control surface for a running
// recording session: poll the state, stream transitions, stop remotely.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"

	"github.com/reelcap/reelcap/internal/logger"
	"github.com/reelcap/reelcap/internal/preset"
	"github.com/reelcap/reelcap/internal/session"
)

// Server is the HTTP status/control server for one recording session.
type Server struct {
	router   *mux.Router
	ctrl     *session.Controller
	presets  preset.Store
	upgrader websocket.Upgrader
	httpSrv  *http.Server
}

// NewServer creates an API server bound to the given session controller.
func NewServer(ctrl *session.Controller, presets preset.Store) *Server {
	s := &Server{
		router:  mux.NewRouter(),
		ctrl:    ctrl,
		presets: presets,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				// Local control surface only
				return true
			},
		},
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	api := s.router.PathPrefix("/api").Subrouter()

	api.HandleFunc("/session", s.handleGetSession).Methods("GET")
	api.HandleFunc("/session/stop", s.handleStopSession).Methods("POST")
	api.HandleFunc("/session/stream", s.handleSessionStream)
	api.HandleFunc("/presets", s.handleGetPresets).Methods("GET")
	api.HandleFunc("/health", s.handleHealth).Methods("GET")
}

// Handler returns the server's route handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start serves on the given port until Shutdown.
func (s *Server) Start(port int) error {
	s.httpSrv = &http.Server{
		Addr:    fmt.Sprintf("127.0.0.1:%d", port),
		Handler: s.router,
	}
	logger.WithComponent("api").Info().
		Int("port", port).
		Msg("Status server listening")
	if err := s.httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown stops the server, waiting briefly for in-flight requests.
func (s *Server) Shutdown() {
	if s.httpSrv == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := s.httpSrv.Shutdown(ctx); err != nil {
		logger.WithComponent("api").Warn().Err(err).Msg("Status server shutdown")
	}
}

type sessionStatus struct {
	State string `json:"state"`
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, sessionStatus{State: s.ctrl.State().String()})
}

func (s *Server) handleStopSession(w http.ResponseWriter, r *http.Request) {
	s.ctrl.RequestStop("api")
	w.WriteHeader(http.StatusAccepted)
	writeJSON(w, map[string]string{"status": "stopping"})
}

// handleSessionStream upgrades to a websocket and streams state
// transitions as JSON events until the session ends or the client leaves.
func (s *Server) handleSessionStream(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.WithComponent("api").Warn().Err(err).Msg("Websocket upgrade failed")
		return
	}
	defer conn.Close()

	states := s.ctrl.Subscribe()
	defer s.ctrl.Unsubscribe(states)

	// Send the current state first so late subscribers see where the
	// session is.
	if err := conn.WriteJSON(sessionStatus{State: s.ctrl.State().String()}); err != nil {
		return
	}

	for state := range states {
		if err := conn.WriteJSON(sessionStatus{State: state.String()}); err != nil {
			return
		}
		if state.Terminal() {
			return
		}
	}
}

func (s *Server) handleGetPresets(w http.ResponseWriter, r *http.Request) {
	records, err := s.presets.List()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, records)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.WithComponent("api").Warn().Err(err).Msg("Failed to encode response")
	}
}
