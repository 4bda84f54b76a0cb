package tabula

import (
	"context"
	"io"
	"log/slog"

	"github.com/aretw0/tabula/internal/runtime"
	"github.com/aretw0/tabula/pkg/domain"
	"github.com/aretw0/tabula/pkg/flow"
	"github.com/aretw0/tabula/pkg/game"
	"github.com/aretw0/tabula/pkg/ports"
)

// Engine is the high-level entry point for the Tabula library.
// It wraps the internal runtime and provides a simplified API for consumers.
type Engine struct {
	runtime  *runtime.Engine
	hooks    domain.LifecycleHooks
	logger   *slog.Logger
	maxSteps int
	Name     string
}

var _ ports.GameEngine = (*Engine)(nil)

// Option defines a functional option for configuring the Engine.
type Option func(*Engine)

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(e *Engine) {
		e.hooks = hooks
	}
}

// WithLogger sets a custom structured logger for the engine.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithMaxSteps bounds the node entries of a single flow walk.
func WithMaxSteps(n int) Option {
	return func(e *Engine) {
		e.maxSteps = n
	}
}

// New freezes the game definition and initializes an Engine for it.
// Definition mistakes (missing board or flow, unknown actions, duplicate
// node IDs) are reported here.
func New(def *game.Definition, opts ...Option) (*Engine, error) {
	eng := &Engine{Name: def.Name(), maxSteps: flow.DefaultMaxSteps}
	for _, opt := range opts {
		opt(eng)
	}

	// Ensure logger is initialized (so we don't pass nil to runtime)
	if eng.logger == nil {
		eng.logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	rt, err := runtime.NewEngine(def,
		runtime.WithLifecycleHooks(eng.hooks),
		runtime.WithLogger(eng.logger),
		runtime.WithMaxSteps(eng.maxSteps),
	)
	if err != nil {
		return nil, err
	}
	eng.runtime = rt
	return eng, nil
}

// Start seats the players, sets up the board and runs the flow to the first prompt.
func (e *Engine) Start(ctx context.Context, setup domain.SetupState) (*domain.GameState, error) {
	return e.runtime.Start(ctx, setup)
}

// CurrentSelection returns what the player should be asked next, without changing the state.
func (e *Engine) CurrentSelection(ctx context.Context, state *domain.GameState, player int) (*domain.MoveResponse, error) {
	return e.runtime.CurrentSelection(ctx, state, player)
}

// AllowedActions lists the actions the player may take now.
func (e *Engine) AllowedActions(ctx context.Context, state *domain.GameState, player int) ([]string, error) {
	return e.runtime.AllowedActions(ctx, state, player)
}

// ProcessMove validates and, when complete, applies a move.
func (e *Engine) ProcessMove(ctx context.Context, state *domain.GameState, move domain.Move) (*domain.MoveResult, error) {
	return e.runtime.ProcessMove(ctx, state, move)
}

// PlayerStates returns each player's view of the state.
func (e *Engine) PlayerStates(ctx context.Context, state *domain.GameState) ([]domain.PlayerState, error) {
	return e.runtime.PlayerStates(ctx, state)
}

// Replay starts a game and applies a recorded list of moves.
func (e *Engine) Replay(ctx context.Context, setup domain.SetupState, moves []domain.Move) (*domain.GameState, error) {
	return e.runtime.Replay(ctx, setup, moves)
}

// Inspect returns the flow tree for visualization or introspection tools.
func (e *Engine) Inspect() *flow.Tree {
	return e.runtime.Definition().Tree()
}

// Definition returns the game definition the engine runs.
func (e *Engine) Definition() *game.Definition {
	return e.runtime.Definition()
}
