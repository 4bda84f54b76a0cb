// Package game holds the configuration of a game: player bounds, board, flow
// and actions. A Definition is assembled once and frozen the first time an
// engine uses it; defining anything after that is a programming error.
package game

import (
	"errors"
	"fmt"
	"sync"

	"github.com/aretw0/tabula/pkg/action"
	"github.com/aretw0/tabula/pkg/domain"
	"github.com/aretw0/tabula/pkg/flow"
	"github.com/aretw0/tabula/pkg/ports"
	"github.com/aretw0/tabula/pkg/rules"
)

var (
	// ErrDefinitionFrozen is raised when a definition is changed after first use.
	ErrDefinitionFrozen = errors.New("definition is frozen")
	// ErrIncomplete is returned when a definition lacks a board or a flow.
	ErrIncomplete = errors.New("definition incomplete")
)

// ConfigError reports a misconfigured game definition.
type ConfigError struct {
	Op  string
	Err error
}

func (e *ConfigError) Error() string { return fmt.Sprintf("game: %s: %v", e.Op, e.Err) }
func (e *ConfigError) Unwrap() error { return e.Err }

// ConfirmPolicy decides what happens when the only legal move is fully forced.
type ConfirmPolicy int

const (
	// ConfirmAlways presents a confirmation button before the forced move is sent.
	ConfirmAlways ConfirmPolicy = iota
	// ConfirmAuto presents no selection; the prebuilt move can be sent as is.
	ConfirmAuto
)

func (p ConfirmPolicy) String() string {
	if p == ConfirmAuto {
		return "auto"
	}
	return "always"
}

// ParseConfirmPolicy maps "always" or "auto" to a policy.
func ParseConfirmPolicy(s string) (ConfirmPolicy, error) {
	switch s {
	case "", "always":
		return ConfirmAlways, nil
	case "auto":
		return ConfirmAuto, nil
	}
	return ConfirmAlways, fmt.Errorf("unknown confirm policy %q", s)
}

// BoardFactory creates an empty board.
type BoardFactory func() ports.Board

// SetupFunc populates a fresh board when a game starts.
type SetupFunc func(env *rules.Env) error

// Definition is the declarative description of a game.
type Definition struct {
	mu sync.Mutex

	name         string
	minPlayers   int
	maxPlayers   int
	newBoard     BoardFactory
	setup        SetupFunc
	root         *flow.Node
	actions      []*action.Action
	confirm      ConfirmPolicy
	actionPrompt string

	frozen   bool
	err      error
	tree     *flow.Tree
	registry action.Registry
}

// New starts a definition.
func New(name string) *Definition {
	return &Definition{name: name, minPlayers: 1, actionPrompt: "Choose action"}
}

func (d *Definition) define(op string, fn func()) *Definition {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.frozen {
		panic(&ConfigError{Op: op, Err: ErrDefinitionFrozen})
	}
	fn()
	return d
}

// DefinePlayers bounds the number of seated players. A max of 0 means unbounded.
func (d *Definition) DefinePlayers(lo, hi int) *Definition {
	return d.define("DefinePlayers", func() { d.minPlayers, d.maxPlayers = lo, hi })
}

// DefineBoard sets the board factory and the setup run once at game start.
func (d *Definition) DefineBoard(factory BoardFactory, setup SetupFunc) *Definition {
	return d.define("DefineBoard", func() { d.newBoard, d.setup = factory, setup })
}

// DefineFlow sets the control flow.
func (d *Definition) DefineFlow(root *flow.Node) *Definition {
	return d.define("DefineFlow", func() { d.root = root })
}

// DefineActions registers actions.
func (d *Definition) DefineActions(actions ...*action.Action) *Definition {
	return d.define("DefineActions", func() { d.actions = append(d.actions, actions...) })
}

// WithConfirmPolicy sets the single forced move policy. The default is ConfirmAlways.
func (d *Definition) WithConfirmPolicy(p ConfirmPolicy) *Definition {
	return d.define("WithConfirmPolicy", func() { d.confirm = p })
}

// WithActionPrompt sets the prompt used when a player must pick between actions.
func (d *Definition) WithActionPrompt(prompt string) *Definition {
	return d.define("WithActionPrompt", func() { d.actionPrompt = prompt })
}

// Freeze validates the definition and makes it immutable. It is idempotent.
func (d *Definition) Freeze() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.frozen {
		return d.err
	}
	d.frozen = true
	d.err = d.compile()
	return d.err
}

func (d *Definition) compile() error {
	if d.newBoard == nil {
		return &ConfigError{Op: "Freeze", Err: fmt.Errorf("%w: no board", ErrIncomplete)}
	}
	if d.root == nil {
		return &ConfigError{Op: "Freeze", Err: fmt.Errorf("%w: no flow", ErrIncomplete)}
	}
	if d.maxPlayers > 0 && d.maxPlayers < d.minPlayers {
		return &ConfigError{Op: "Freeze", Err: fmt.Errorf("max players %d below min %d", d.maxPlayers, d.minPlayers)}
	}
	reg, err := action.NewRegistry(d.actions...)
	if err != nil {
		return &ConfigError{Op: "Freeze", Err: err}
	}
	tree, err := flow.Build(d.root)
	if err != nil {
		return &ConfigError{Op: "Freeze", Err: err}
	}
	if _, err := flow.New(tree, reg); err != nil {
		return &ConfigError{Op: "Freeze", Err: err}
	}
	d.tree, d.registry = tree, reg
	return nil
}

// Name returns the game name.
func (d *Definition) Name() string { return d.name }

// Tree returns the built flow. Nil before a successful Freeze.
func (d *Definition) Tree() *flow.Tree { return d.tree }

// Registry returns the actions by name. Nil before a successful Freeze.
func (d *Definition) Registry() action.Registry { return d.registry }

// ConfirmPolicy returns the single forced move policy.
func (d *Definition) ConfirmPolicy() ConfirmPolicy { return d.confirm }

// ActionPrompt returns the prompt of the action meta-choice.
func (d *Definition) ActionPrompt() string { return d.actionPrompt }

// NewBoard creates an empty board.
func (d *Definition) NewBoard() ports.Board { return d.newBoard() }

// Setup runs the board setup against env.
func (d *Definition) Setup(env *rules.Env) error {
	if d.setup == nil {
		return nil
	}
	return d.setup(env)
}

// CheckPlayers validates a player count against the declared bounds.
func (d *Definition) CheckPlayers(n int) error {
	if n == 0 {
		return domain.ErrNoPlayers
	}
	if n < d.minPlayers || (d.maxPlayers > 0 && n > d.maxPlayers) {
		return fmt.Errorf("%w: %d players, want %d to %d", domain.ErrPlayerCount, n, d.minPlayers, d.maxPlayers)
	}
	return nil
}
