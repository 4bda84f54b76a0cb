package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/aretw0/tabula"
	"github.com/aretw0/tabula/api"
	"github.com/aretw0/tabula/internal/presentation/graph"
	"github.com/aretw0/tabula/pkg/domain"
	"github.com/aretw0/tabula/pkg/flow"
	"github.com/aretw0/tabula/pkg/session"
	"github.com/go-chi/chi/v5"
)

//go:generate go tool oapi-codegen -package http -generate types,chi-server,spec -o api.gen.go ../../../api/openapi.yaml

// maxBodyBytes caps request bodies for moves and game creation.
const maxBodyBytes = 1 << 20

// Server implements the generated ServerInterface over a session manager.
type Server struct {
	Sessions *session.Manager
	Streams  *StreamManager

	flow       *flow.Tree
	metrics    http.Handler
	logger     *slog.Logger
	apiVersion string
}

var _ ServerInterface = (*Server)(nil)

// Option configures the Server.
type Option func(*Server)

// WithFlow enables GET /flow with the given flow tree. Without it the route
// answers 404.
func WithFlow(tree *flow.Tree) Option {
	return func(s *Server) {
		s.flow = tree
	}
}

// WithMetrics mounts h on GET /metrics.
func WithMetrics(h http.Handler) Option {
	return func(s *Server) {
		s.metrics = h
	}
}

// WithLogger sets the request logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// NewHandler creates a new HTTP handler for the session manager.
func NewHandler(sessions *session.Manager, opts ...Option) http.Handler {
	s := &Server{
		Sessions: sessions,
		Streams:  NewStreamManager(),
		logger:   slog.New(slog.NewJSONHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(s)
	}
	sessions.OnApplied(s.broadcast)

	if doc, err := GetSwagger(); err != nil {
		s.logger.Error("OpenAPI spec failed to load", "err", err)
	} else {
		s.apiVersion = doc.Info.Version
	}

	r := chi.NewRouter()
	r.Get("/openapi.yaml", s.GetSpec)
	if s.metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.metrics)
	}
	handler := HandlerWithOptions(s, ChiServerOptions{
		BaseRouter: r,
		ErrorHandlerFunc: func(w http.ResponseWriter, r *http.Request, err error) {
			s.fail(w, "BindParams", err, http.StatusBadRequest)
		},
	})
	return enableCORS(handler)
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// GetSpec serves the OpenAPI document the routes are generated from.
func (s *Server) GetSpec(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/yaml")
	w.Write(api.Spec)
}

// CreateGame handles POST /games.
func (s *Server) CreateGame(w http.ResponseWriter, r *http.Request) {
	var setup CreateGameJSONRequestBody
	if err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(&setup); err != nil {
		s.fail(w, "CreateGame", fmt.Errorf("invalid request body: %w", err), http.StatusBadRequest)
		return
	}
	id, state, err := s.Sessions.Create(r.Context(), setup)
	if err != nil {
		s.fail(w, "CreateGame", err, statusFor(err))
		return
	}
	s.writeJSON(w, http.StatusCreated, CreateGameResponse{ID: id, State: *state})
}

// ListGames handles GET /games.
func (s *Server) ListGames(w http.ResponseWriter, r *http.Request) {
	ids, err := s.Sessions.List(r.Context())
	if err != nil {
		s.fail(w, "ListGames", err, statusFor(err))
		return
	}
	if ids == nil {
		ids = []string{}
	}
	s.writeJSON(w, http.StatusOK, GameList{Games: ids})
}

// GetGame handles GET /games/{id}. It returns the full host-side state.
func (s *Server) GetGame(w http.ResponseWriter, r *http.Request, id GameID) {
	state, err := s.Sessions.Load(r.Context(), id)
	if err != nil {
		s.fail(w, "GetGame", err, statusFor(err))
		return
	}
	s.writeJSON(w, http.StatusOK, state)
}

// DeleteGame handles DELETE /games/{id}.
func (s *Server) DeleteGame(w http.ResponseWriter, r *http.Request, id GameID) {
	if err := s.Sessions.Delete(r.Context(), id); err != nil {
		s.fail(w, "DeleteGame", err, statusFor(err))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetSelection handles GET /games/{id}/selection?player=N.
func (s *Server) GetSelection(w http.ResponseWriter, r *http.Request, id GameID, params GetSelectionParams) {
	resp, err := s.Sessions.Selection(r.Context(), id, params.Player)
	if err != nil {
		s.fail(w, "GetSelection", err, statusFor(err))
		return
	}
	s.writeJSON(w, http.StatusOK, resp)
}

// PostMove handles POST /games/{id}/moves. Rejected moves are answered with
// 200 and an in-band error.
func (s *Server) PostMove(w http.ResponseWriter, r *http.Request, id GameID) {
	var move PostMoveJSONRequestBody
	if err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(&move); err != nil {
		s.fail(w, "PostMove", fmt.Errorf("invalid request body: %w", err), http.StatusBadRequest)
		return
	}
	result, err := s.Sessions.Move(r.Context(), id, move)
	if err != nil {
		s.fail(w, "PostMove", err, statusFor(err))
		return
	}
	s.writeJSON(w, http.StatusOK, result)
}

// broadcast pushes the diff of every accepted move to the game's subscribers.
func (s *Server) broadcast(_ context.Context, gameID string, move domain.Move, before, after *domain.GameState) {
	diff := domain.Diff(gameID, before, after)
	if diff == nil {
		s.logger.Debug("SSE: no diff calculated", "game_id", gameID)
		return
	}
	payload, err := json.Marshal(moveEvent{Move: move, Diff: diff})
	if err != nil {
		s.logger.Error("SSE: event encode failed", "game_id", gameID, "err", err)
		return
	}
	s.Streams.Broadcast(gameID, string(payload))
}

// GetPlayerState handles GET /games/{id}/players/{position}.
func (s *Server) GetPlayerState(w http.ResponseWriter, r *http.Request, id GameID, position int) {
	view, err := s.Sessions.PlayerState(r.Context(), id, position)
	if err != nil {
		s.fail(w, "GetPlayerState", err, statusFor(err))
		return
	}
	s.writeJSON(w, http.StatusOK, view)
}

// GetFlow handles GET /flow. With ?game=ID the current position is highlighted.
func (s *Server) GetFlow(w http.ResponseWriter, r *http.Request, params GetFlowParams) {
	if s.flow == nil {
		s.fail(w, "GetFlow", errors.New("flow inspection is disabled"), http.StatusNotFound)
		return
	}
	var overlay *graph.Overlay
	if params.Game != nil && *params.Game != "" {
		state, err := s.Sessions.Load(r.Context(), *params.Game)
		if err != nil {
			s.fail(w, "GetFlow", err, statusFor(err))
			return
		}
		overlay = &graph.Overlay{Position: state.Position}
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	io.WriteString(w, graph.GenerateMermaid(s.flow, overlay))
}

// GetHealth handles the GET /health request.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, Health{Status: "ok"})
}

// GetInfo handles the GET /info request.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, Info{
		App:     "tabula-http",
		Version: strings.TrimSpace(tabula.Version),
		API:     s.apiVersion,
	})
}

// SubscribeEvents handles GET /games/{id}/events (SSE). Each accepted move
// is pushed as one data frame. ?watch=turn,position,settings,board,finished
// keeps only the moves that changed one of the listed parts.
func (s *Server) SubscribeEvents(w http.ResponseWriter, r *http.Request, id GameID, params SubscribeEventsParams) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		s.logger.Error("SubscribeEvents: streaming not supported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	var watchList []string
	if params.Watch != nil && *params.Watch != "" {
		watchList = strings.Split(*params.Watch, ",")
	}

	ch, cancel := s.Streams.Subscribe(id)
	defer cancel()
	s.logger.Info("SSE: subscribed", "game_id", id)

	fmt.Fprintf(w, "event: ping\ndata: connected\n\n")
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			s.logger.Info("SSE: client disconnected", "game_id", id)
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			if len(watchList) > 0 && !watched(msg, watchList) {
				continue
			}
			fmt.Fprintf(w, "event: move\ndata: %s\n\n", msg)
			flusher.Flush()
		}
	}
}

type moveEvent struct {
	Move domain.Move       `json:"move"`
	Diff *domain.StateDiff `json:"diff"`
}

// watched reports whether an encoded moveEvent touches one of the fields.
func watched(msg string, fields []string) bool {
	var ev moveEvent
	if err := json.Unmarshal([]byte(msg), &ev); err != nil || ev.Diff == nil {
		return true
	}
	d := ev.Diff
	for _, field := range fields {
		switch strings.TrimSpace(field) {
		case "turn":
			if d.CurrentPlayerPosition != nil {
				return true
			}
		case "position":
			if d.Position != nil {
				return true
			}
		case "settings":
			if len(d.Settings) > 0 {
				return true
			}
		case "board":
			if d.BoardChanged {
				return true
			}
		case "finished":
			if d.Finished != nil {
				return true
			}
		}
	}
	return false
}

func (s *Server) fail(w http.ResponseWriter, op string, err error, status int) {
	if status >= http.StatusInternalServerError {
		s.logger.Error(op+" failed", "err", err)
	} else {
		s.logger.Warn(op+" rejected", "err", err, "status", status)
	}
	s.writeJSON(w, status, Error{Error: err.Error()})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("response encode failed", "err", err)
	}
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrGameNotFound), errors.Is(err, domain.ErrInvalidPlayer):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrNoPlayers), errors.Is(err, domain.ErrPlayerCount),
		errors.Is(err, domain.ErrUnsupportedArgument):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrGameFinished):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
