package runtime

import (
	"context"
	"fmt"
	"log/slog"
	"slices"

	"github.com/aretw0/tabula/pkg/action"
	"github.com/aretw0/tabula/pkg/domain"
	"github.com/aretw0/tabula/pkg/flow"
	"github.com/aretw0/tabula/pkg/game"
	"github.com/aretw0/tabula/pkg/player"
	"github.com/aretw0/tabula/pkg/ports"
	"github.com/aretw0/tabula/pkg/rules"
)

// Game is a live game rehydrated from one snapshot. It is used for a single
// call and then discarded.
type Game struct {
	def      *game.Definition
	board    ports.Board
	roster   *player.Collection
	flow     *flow.Interpreter
	settings domain.Values
	seed     string
	sequence int
	logger   *slog.Logger
}

func (e *Engine) newInterpreter() (*flow.Interpreter, error) {
	return flow.New(e.def.Tree(), e.def.Registry(),
		flow.WithHooks(e.hooks),
		flow.WithLogger(e.logger),
		flow.WithMaxSteps(e.maxSteps),
	)
}

// rehydrate rebuilds a game from a snapshot. Board setup is not run again;
// the board comes entirely from the snapshot.
func (e *Engine) rehydrate(state *domain.GameState) (*Game, error) {
	if state == nil {
		return nil, fmt.Errorf("rehydrate: nil state")
	}
	roster, err := player.NewCollection(state.Players)
	if err != nil {
		return nil, fmt.Errorf("rehydrate players: %w", err)
	}
	if err := roster.SetCurrent(state.CurrentPlayerPosition); err != nil {
		return nil, fmt.Errorf("rehydrate current player: %w", err)
	}
	board := e.def.NewBoard()
	if err := board.Deserialize(state.Board); err != nil {
		return nil, fmt.Errorf("rehydrate board: %w", err)
	}
	interp, err := e.newInterpreter()
	if err != nil {
		return nil, err
	}
	if err := interp.Restore(state.Position, state.Finished); err != nil {
		return nil, fmt.Errorf("rehydrate flow: %w", err)
	}
	return &Game{
		def:      e.def,
		board:    board,
		roster:   roster,
		flow:     interp,
		settings: state.Settings.Clone(),
		seed:     state.Seed,
		sequence: state.Sequence,
		logger:   e.logger,
	}, nil
}

// env builds the explicit context for one call. sequence selects the random stream.
func (g *Game) env(sequence int) *rules.Env {
	return &rules.Env{
		Board:    g.board,
		Players:  g.roster,
		Settings: g.settings,
		Rand:     rules.NewRand(g.seed, sequence),
	}
}

// actingAs returns the env of a call made by the player at position.
func (g *Game) actingAs(position int) (*rules.Env, error) {
	return g.env(g.sequence + 1).ActingAs(position)
}

// snapshot serializes the game.
func (g *Game) snapshot() (*domain.GameState, error) {
	board, err := g.board.Serialize(0)
	if err != nil {
		return nil, err
	}
	return &domain.GameState{
		Players:               g.roster.All(),
		CurrentPlayerPosition: g.roster.CurrentPosition(),
		Settings:              g.settings.Clone(),
		Position:              g.flow.Position(),
		Board:                 board,
		Seed:                  g.seed,
		Sequence:              g.sequence,
		Finished:              g.flow.Finished(),
	}, nil
}

// playerStates projects the snapshot for every seated player.
func (g *Game) playerStates(state *domain.GameState) ([]domain.PlayerState, error) {
	out := make([]domain.PlayerState, 0, g.roster.Len())
	for _, p := range g.roster.All() {
		view, err := g.board.Serialize(p.Position)
		if err != nil {
			return nil, fmt.Errorf("board view for player %d: %w", p.Position, err)
		}
		s := state.Snapshot()
		s.Board = view
		out = append(out, domain.PlayerState{Position: p.Position, State: *s})
	}
	return out, nil
}

// allowedActions lists the actions the acting player may take now: none unless
// it is that player's turn, then whatever the flow reports as needed.
func (g *Game) allowedActions(env *rules.Env) []*action.Action {
	if cur := g.roster.CurrentPosition(); cur != 0 && cur != env.Player.Position {
		return nil
	}
	var out []*action.Action
	for _, name := range g.flow.ActionNeeded(env) {
		if act, ok := g.def.Registry().Lookup(name); ok {
			out = append(out, act)
		}
	}
	return out
}

// prompt computes the next selection for the acting player.
func (g *Game) prompt(env *rules.Env) (*domain.MoveResponse, error) {
	resp := &domain.MoveResponse{Move: domain.Move{Player: env.Player.Position}}
	if g.flow.Finished() {
		return resp, nil
	}
	allowed := g.allowedActions(env)
	switch len(allowed) {
	case 0:
		return resp, nil
	case 1:
		act := allowed[0]
		res := act.ForceArgs(g.flow.Env(env))
		if res.Impossible {
			return nil, &InvariantError{
				Op:     "currentSelection",
				Detail: fmt.Sprintf("action %q is offered but cannot be resolved: %s", act.Name(), res.Problem),
			}
		}
		resp.Move = res.Move(env.Player.Position)
		if res.Selection != nil {
			resp.Selection = res.Selection
			return resp, nil
		}
		if g.def.ConfirmPolicy() == game.ConfirmAlways {
			resp.Selection = confirmSelection(act)
		}
		return resp, nil
	default:
		resp.Selection = action.Meta(g.def.ActionPrompt(), allowed)
		return resp, nil
	}
}

func confirmSelection(act *action.Action) *domain.ResolvedSelection {
	prompt := act.Prompt()
	if prompt == "" {
		prompt = act.Name()
	}
	return &domain.ResolvedSelection{
		Name:    domain.ConfirmSelectionName,
		Kind:    domain.SelectButton,
		Prompt:  "Please confirm: " + prompt,
		Value:   true,
		Choices: []domain.Choice{{Value: true, Label: prompt}},
	}
}

// apply processes a move as the acting player. Rejections are reported in the
// resolution's Problem; an error means the game is in an inconsistent state.
func (g *Game) apply(ctx context.Context, env *rules.Env, move domain.Move) (action.Resolution, error) {
	reject := func(format string, args ...any) (action.Resolution, error) {
		return action.Resolution{Action: move.Action, Problem: fmt.Sprintf(format, args...)}, nil
	}
	if g.flow.Finished() {
		return reject("the game is over")
	}
	if cur := g.roster.CurrentPosition(); cur != 0 && cur != env.Player.Position {
		return reject("it is not player %d's turn", env.Player.Position)
	}
	if _, ok := g.def.Registry().Lookup(move.Action); !ok {
		return reject("unknown action %q", move.Action)
	}
	allowed := g.allowedActions(env)
	if !slices.ContainsFunc(allowed, func(a *action.Action) bool { return a.Name() == move.Action }) {
		return reject("%q is not allowed now", move.Action)
	}
	res, err := g.flow.ProcessMove(ctx, env, move)
	if err != nil || !res.Complete() {
		return res, err
	}
	g.sequence++
	return res, nil
}
