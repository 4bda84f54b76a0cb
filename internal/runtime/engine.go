package runtime

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/aretw0/tabula/pkg/domain"
	"github.com/aretw0/tabula/pkg/flow"
	"github.com/aretw0/tabula/pkg/game"
	"github.com/aretw0/tabula/pkg/player"
	"github.com/aretw0/tabula/pkg/rules"
	"github.com/google/uuid"
)

// Engine is the stateless orchestrator for one game definition.
// It is safe for concurrent use; all per-game state lives in the snapshots.
type Engine struct {
	def      *game.Definition
	hooks    domain.LifecycleHooks
	logger   *slog.Logger
	maxSteps int
}

// EngineOption configures the Engine.
type EngineOption func(*Engine)

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) EngineOption {
	return func(e *Engine) {
		e.hooks = hooks
	}
}

// WithLogger sets a custom structured logger.
func WithLogger(logger *slog.Logger) EngineOption {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithMaxSteps bounds a single flow walk.
func WithMaxSteps(n int) EngineOption {
	return func(e *Engine) {
		e.maxSteps = n
	}
}

// NewEngine freezes the definition and returns an engine for it.
func NewEngine(def *game.Definition, opts ...EngineOption) (*Engine, error) {
	if err := def.Freeze(); err != nil {
		return nil, err
	}
	e := &Engine{
		def:      def,
		logger:   slog.New(slog.NewJSONHandler(io.Discard, nil)),
		maxSteps: flow.DefaultMaxSteps,
	}
	for _, opt := range opts {
		opt(e)
	}
	e.logger = e.logger.With("game", def.Name())
	return e, nil
}

// Definition returns the game definition.
func (e *Engine) Definition() *game.Definition { return e.def }

// Start seats the players, sets up the board and walks the flow to its first
// suspension. Bad player counts are configuration errors.
func (e *Engine) Start(ctx context.Context, setup domain.SetupState) (*domain.GameState, error) {
	if err := e.def.CheckPlayers(len(setup.Players)); err != nil {
		return nil, err
	}
	roster, err := player.NewCollection(setup.Players)
	if err != nil {
		return nil, err
	}
	seed := setup.Seed
	if seed == "" {
		seed = uuid.NewString()
	}
	interp, err := e.newInterpreter()
	if err != nil {
		return nil, err
	}
	g := &Game{
		def:      e.def,
		board:    e.def.NewBoard(),
		roster:   roster,
		flow:     interp,
		settings: setup.Settings.Clone(),
		seed:     seed,
		logger:   e.logger,
	}
	env := g.env(0)
	if err := e.def.Setup(env); err != nil {
		return nil, fmt.Errorf("board setup: %w", err)
	}
	if err := interp.Start(ctx, env); err != nil {
		return nil, fmt.Errorf("start flow: %w", err)
	}
	state, err := g.snapshot()
	if err != nil {
		return nil, err
	}
	e.logger.Info("game started", "players", roster.Len(), "seed", seed, "position", state.Position.String())
	return state, nil
}

// CurrentSelection computes what the player should be prompted for next.
// It never changes the state.
func (e *Engine) CurrentSelection(ctx context.Context, state *domain.GameState, position int) (*domain.MoveResponse, error) {
	g, err := e.rehydrate(state)
	if err != nil {
		return nil, err
	}
	env, err := g.actingAs(position)
	if err != nil {
		return nil, err
	}
	return g.prompt(env)
}

// AllowedActions lists the names of the actions the player may take now.
func (e *Engine) AllowedActions(ctx context.Context, state *domain.GameState, position int) ([]string, error) {
	g, err := e.rehydrate(state)
	if err != nil {
		return nil, err
	}
	env, err := g.actingAs(position)
	if err != nil {
		return nil, err
	}
	var names []string
	for _, a := range g.allowedActions(env) {
		names = append(names, a.Name())
	}
	return names, nil
}

// ProcessMove validates the move and, when it resolves completely, applies it.
// Validation problems are answered in-band; the returned error is reserved for
// corrupt snapshots and failing game code. The input state is never modified.
func (e *Engine) ProcessMove(ctx context.Context, state *domain.GameState, move domain.Move) (*domain.MoveResult, error) {
	g, err := e.rehydrate(state)
	if err != nil {
		return nil, err
	}
	result := &domain.MoveResult{Response: domain.MoveResponse{Move: move}}

	env, err := g.actingAs(move.Player)
	if err != nil {
		e.reject(ctx, result, fmt.Sprintf("no player at position %d", move.Player), nil)
		return result, nil
	}

	if move.Action == "" {
		resp, err := g.prompt(env)
		if err != nil {
			return nil, err
		}
		e.reject(ctx, result, "no action given", resp.Selection)
		return result, nil
	}

	res, err := g.apply(ctx, env, move)
	if err != nil {
		return nil, fmt.Errorf("process move %s: %w", move.Action, err)
	}
	if !res.Complete() {
		sel := res.Selection
		if sel == nil {
			resp, err := g.prompt(env)
			if err != nil {
				return nil, err
			}
			sel = resp.Selection
		}
		result.Response.Move = res.Move(move.Player)
		e.reject(ctx, result, res.Problem, sel)
		return result, nil
	}

	next, err := g.snapshot()
	if err != nil {
		return nil, err
	}
	views, err := g.playerStates(next)
	if err != nil {
		return nil, err
	}
	result.Response.Move = res.Move(move.Player)
	result.State = next
	result.Players = views

	e.logger.Debug("move accepted", "action", move.Action, "player", move.Player, "sequence", next.Sequence, "finished", next.Finished)
	if e.hooks.OnMoveAccepted != nil {
		e.hooks.OnMoveAccepted(ctx, e.moveEvent(domain.EventMoveAccepted, result.Response.Move, ""))
	}
	return result, nil
}

func (e *Engine) reject(ctx context.Context, result *domain.MoveResult, problem string, sel *domain.ResolvedSelection) {
	result.Response.Error = problem
	result.Response.Selection = sel
	if problem == "" {
		return
	}
	e.logger.Debug("move rejected", "action", result.Response.Move.Action, "player", result.Response.Move.Player, "problem", problem)
	if e.hooks.OnMoveRejected != nil {
		e.hooks.OnMoveRejected(ctx, e.moveEvent(domain.EventMoveRejected, result.Response.Move, problem))
	}
}

func (e *Engine) moveEvent(typ domain.EventType, move domain.Move, problem string) *domain.MoveEvent {
	return &domain.MoveEvent{
		EventBase: domain.EventBase{Timestamp: time.Now(), Type: typ},
		Action:    move.Action,
		Player:    move.Player,
		Problem:   problem,
	}
}

// PlayerStates returns every player's view of the state.
func (e *Engine) PlayerStates(ctx context.Context, state *domain.GameState) ([]domain.PlayerState, error) {
	g, err := e.rehydrate(state)
	if err != nil {
		return nil, err
	}
	return g.playerStates(state)
}

// Replay starts a game and applies moves in order. Any rejected move is an error.
func (e *Engine) Replay(ctx context.Context, setup domain.SetupState, moves []domain.Move) (*domain.GameState, error) {
	state, err := e.Start(ctx, setup)
	if err != nil {
		return nil, err
	}
	for i, m := range moves {
		res, err := e.ProcessMove(ctx, state, m)
		if err != nil {
			return nil, fmt.Errorf("move %d: %w", i, err)
		}
		if !res.Accepted() {
			reason := res.Response.Error
			if reason == "" {
				reason = "incomplete"
			}
			return nil, fmt.Errorf("move %d (%s): %w: %s", i, m.Action, ErrMoveRejected, reason)
		}
		state = res.State
	}
	return state, nil
}

// Rules exposes the explicit env of a state for read-only inspection by hosts,
// such as rendering the board of the acting player.
func (e *Engine) Rules(state *domain.GameState, position int) (*rules.Env, error) {
	g, err := e.rehydrate(state)
	if err != nil {
		return nil, err
	}
	env, err := g.actingAs(position)
	if err != nil {
		return nil, err
	}
	return g.flow.Env(env), nil
}
