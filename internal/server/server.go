// Package server exposes the lobby over HTTP and streams table updates over
// websockets.
package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"slices"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/orbitdash/pokercore/internal/game"
	"github.com/orbitdash/pokercore/internal/lobby"
)

const (
	maxBodySize     = 1 << 16
	shutdownTimeout = 5 * time.Second
)

// Options configures a Server.
type Options struct {
	// AllowedOrigins lists origins that may open a websocket. Empty means
	// same-origin only; "*" allows any.
	AllowedOrigins []string
}

// Server routes HTTP requests to the lobby.
type Server struct {
	lobby    *lobby.Manager
	logger   zerolog.Logger
	validate *validator
	upgrader websocket.Upgrader
	mux      *http.ServeMux
}

// New builds the HTTP handler tree.
func New(l *lobby.Manager, opts Options, logger zerolog.Logger) (*Server, error) {
	v, err := newValidator()
	if err != nil {
		return nil, err
	}
	s := &Server{
		lobby:    l,
		logger:   logger.With().Str("component", "server").Logger(),
		validate: v,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     checkOrigin(opts.AllowedOrigins),
		},
		mux: http.NewServeMux(),
	}
	s.routes()
	return s, nil
}

func (s *Server) routes() {
	s.mux.HandleFunc("GET /health", s.handleHealth)
	s.mux.HandleFunc("GET /balance", s.handleBalance)
	s.mux.HandleFunc("GET /stats", s.handleStats)
	s.mux.HandleFunc("GET /games", s.handleListGames)
	s.mux.HandleFunc("POST /games", s.handleCreateGame)
	s.mux.HandleFunc("GET /games/{id}", s.handleGetGame)
	s.mux.HandleFunc("POST /games/{id}/join", s.handleJoin)
	s.mux.HandleFunc("POST /games/{id}/leave", s.handleLeave)
	s.mux.HandleFunc("POST /games/{id}/cashout", s.handleCashOut)
	s.mux.HandleFunc("POST /games/{id}/rebuy", s.handleRebuy)
	s.mux.HandleFunc("POST /games/{id}/actions", s.handleAction)
	s.mux.HandleFunc("GET /games/{id}/ws", s.handleFeed)
}

// Handler returns the root handler.
func (s *Server) Handler() http.Handler { return s.mux }

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info().Str("addr", addr).Msg("Starting HTTP server")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	s.logger.Info().Msg("Shutting down HTTP server")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func checkOrigin(allowed []string) func(*http.Request) bool {
	if slices.Contains(allowed, "*") {
		return func(*http.Request) bool { return true }
	}
	if len(allowed) == 0 {
		// nil selects gorilla's same-origin check.
		return nil
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		return origin == "" || slices.Contains(allowed, origin)
	}
}

// userFrom reads the caller's identity. Authentication happens in front of
// this server.
func userFrom(r *http.Request) (lobby.User, error) {
	id := r.Header.Get("X-User-ID")
	if id == "" {
		return lobby.User{}, errUnauthorized
	}
	name := r.Header.Get("X-User-Name")
	if name == "" {
		name = id
	}
	return lobby.User{ID: id, Name: name}, nil
}

func readBody(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodySize))
	if err != nil {
		return nil, badRequest("read body: %v", err)
	}
	return data, nil
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = fmt.Fprint(w, "OK")
}

func (s *Server) handleBalance(w http.ResponseWriter, r *http.Request) {
	user, err := userFrom(r)
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	balance, err := s.lobby.Balance(r.Context(), user)
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"balance": balance})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	user, err := userFrom(r)
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	if _, err := s.lobby.Balance(r.Context(), user); err != nil {
		writeError(w, s.logger, err)
		return
	}
	stats, err := s.lobby.Stats(r.Context(), user.ID)
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (s *Server) handleListGames(w http.ResponseWriter, _ *http.Request) {
	games := s.lobby.ListOpenGames()
	if games == nil {
		games = []lobby.GameSummary{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"games": games})
}

func (s *Server) handleCreateGame(w http.ResponseWriter, r *http.Request) {
	user, err := userFrom(r)
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	body, err := readBody(w, r)
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	var req lobby.CreateRequest
	if err := s.validate.decode(schemaCreateGame, body, &req); err != nil {
		writeError(w, s.logger, err)
		return
	}
	res, err := s.lobby.CreateGame(r.Context(), user, req)
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, res)
}

// handleGetGame returns the table as the caller sees it. Callers without an
// identity get the spectator view.
func (s *Server) handleGetGame(w http.ResponseWriter, r *http.Request) {
	g, err := s.lobby.Game(r.PathValue("id"))
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, g.Runner().Snapshot(r.Header.Get("X-User-ID")))
}

func (s *Server) handleJoin(w http.ResponseWriter, r *http.Request) {
	user, err := userFrom(r)
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	res, err := s.lobby.JoinGame(r.Context(), r.PathValue("id"), user)
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleLeave(w http.ResponseWriter, r *http.Request) {
	s.leave(w, r, s.lobby.LeaveGame)
}

func (s *Server) handleCashOut(w http.ResponseWriter, r *http.Request) {
	s.leave(w, r, s.lobby.CashOut)
}

func (s *Server) leave(w http.ResponseWriter, r *http.Request, op func(context.Context, string, string) (lobby.LeaveResult, error)) {
	user, err := userFrom(r)
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	res, err := op(r.Context(), r.PathValue("id"), user.ID)
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	status := http.StatusOK
	if res.Pending {
		status = http.StatusAccepted
	}
	writeJSON(w, status, res)
}

func (s *Server) handleRebuy(w http.ResponseWriter, r *http.Request) {
	user, err := userFrom(r)
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	res, err := s.lobby.Rebuy(r.Context(), r.PathValue("id"), user.ID)
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// actionRequest is a player decision sent over HTTP or the websocket.
type actionRequest struct {
	Type   string          `json:"type,omitempty"`
	Action game.ActionType `json:"action"`
	Amount int             `json:"amount,omitempty"`
}

func (a actionRequest) action() game.Action {
	return game.Action{Type: a.Action, Amount: a.Amount}
}

func (s *Server) handleAction(w http.ResponseWriter, r *http.Request) {
	user, err := userFrom(r)
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	body, err := readBody(w, r)
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	var req actionRequest
	if err := s.validate.decode(schemaAction, body, &req); err != nil {
		writeError(w, s.logger, err)
		return
	}
	snap, err := s.lobby.SubmitAction(r.PathValue("id"), user.ID, req.action())
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}
