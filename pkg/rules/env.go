package rules

import (
	"fmt"
	"maps"
	"math/rand/v2"

	"github.com/aretw0/tabula/pkg/domain"
	"github.com/aretw0/tabula/pkg/ports"
)

// Env is the per-call context handed to predicates, constraints and effects.
type Env struct {
	Board    ports.Board
	Players  ports.Roster
	Settings domain.Values

	// Player is the player the call is acting as.
	Player domain.Player

	// Rand is deterministic for a given game seed and move sequence.
	Rand *rand.Rand

	vars map[string]domain.Argument
}

// Bind returns a copy of the env with name bound to value.
// The receiver is left untouched, so sibling branches never see each other's bindings.
func (e *Env) Bind(name string, value domain.Argument) *Env {
	next := *e
	next.vars = make(map[string]domain.Argument, len(e.vars)+1)
	maps.Copy(next.vars, e.vars)
	next.vars[name] = value
	return &next
}

// Var returns the value bound to name by an enclosing loop.
func (e *Env) Var(name string) (domain.Argument, bool) {
	v, ok := e.vars[name]
	return v, ok
}

// IntVar returns an int loop variable, or 0.
func (e *Env) IntVar(name string) int {
	v, _ := domain.NormalizeArg(e.vars[name]).(int)
	return v
}

// PlayerVar returns a player loop variable.
func (e *Env) PlayerVar(name string) (domain.Player, bool) {
	ref, ok := e.vars[name].(domain.PlayerRef)
	if !ok || e.Players == nil {
		return domain.Player{}, false
	}
	return e.Players.AtPosition(ref.Position)
}

// Bindings returns a copy of the bound loop variables.
func (e *Env) Bindings() map[string]domain.Argument {
	return maps.Clone(e.vars)
}

// ActingAs returns a copy of the env acting as the player at position.
func (e *Env) ActingAs(position int) (*Env, error) {
	if e.Players == nil {
		return nil, fmt.Errorf("acting as player %d: %w", position, domain.ErrInvalidPlayer)
	}
	p, ok := e.Players.AtPosition(position)
	if !ok {
		return nil, fmt.Errorf("acting as player %d: %w", position, domain.ErrInvalidPlayer)
	}
	next := *e
	next.Player = p
	return &next, nil
}

// IsCurrent reports whether the acting player is the roster's current player.
func (e *Env) IsCurrent() bool {
	return e.Players != nil && e.Players.CurrentPosition() == e.Player.Position
}

// BoardAs returns the env board as the concrete type T.
func BoardAs[T ports.Board](e *Env) (T, error) {
	b, ok := e.Board.(T)
	if !ok {
		var zero T
		return zero, fmt.Errorf("board is %T, not %T", e.Board, zero)
	}
	return b, nil
}

// MustBoard is BoardAs for game code that owns its board type.
func MustBoard[T ports.Board](e *Env) T {
	b, err := BoardAs[T](e)
	if err != nil {
		panic(err)
	}
	return b
}
