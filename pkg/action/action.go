package action

import (
	"errors"
	"fmt"
	"slices"

	"github.com/aretw0/tabula/pkg/domain"
	"github.com/aretw0/tabula/pkg/rules"
)

var (
	// ErrDuplicateAction is returned when two actions share a name.
	ErrDuplicateAction = errors.New("duplicate action")
	// ErrIncompleteMove is returned when an effect is applied before every argument is resolved.
	ErrIncompleteMove = errors.New("incomplete move")
)

// EffectFunc applies a fully resolved move to the board.
// It may return a control signal for the enclosing flow loop.
type EffectFunc func(env *rules.Env, args Args) (rules.Signal, error)

// Condition gates an action on live state.
type Condition func(env *rules.Env) bool

// Action is a named move a player can make: its selections, an optional
// condition and the effect applied once every argument is known.
type Action struct {
	name       string
	prompt     string
	selections []Selection
	condition  Condition
	effect     EffectFunc
}

// New declares an action.
func New(name, prompt string) *Action {
	return &Action{name: name, prompt: prompt}
}

// Select appends argument selections in the order they will be resolved.
func (a *Action) Select(selections ...Selection) *Action {
	a.selections = append(a.selections, selections...)
	return a
}

// When restricts the action to states where cond holds.
func (a *Action) When(cond Condition) *Action {
	a.condition = cond
	return a
}

// Do sets the effect.
func (a *Action) Do(effect EffectFunc) *Action {
	a.effect = effect
	return a
}

func (a *Action) Name() string   { return a.name }
func (a *Action) Prompt() string { return a.prompt }

// Selections returns a copy of the declared selections.
func (a *Action) Selections() []Selection {
	return slices.Clone(a.selections)
}

// Apply runs the effect of a resolved move.
func (a *Action) Apply(env *rules.Env, args Args) (rules.Signal, error) {
	if len(args) != len(a.selections) {
		return rules.Continue, fmt.Errorf("action %s: %w: %d of %d arguments", a.name, ErrIncompleteMove, len(args), len(a.selections))
	}
	if a.effect == nil {
		return rules.Continue, nil
	}
	sig, err := a.effect(env, args)
	if err != nil {
		return rules.Continue, fmt.Errorf("action %s: %w", a.name, err)
	}
	return sig, nil
}

// Registry indexes the actions of a game by name.
type Registry map[string]*Action

// NewRegistry indexes actions, rejecting duplicate names.
func NewRegistry(actions ...*Action) (Registry, error) {
	r := make(Registry, len(actions))
	for _, a := range actions {
		if a == nil || a.name == "" {
			return nil, fmt.Errorf("%w: unnamed action", ErrDuplicateAction)
		}
		if _, exists := r[a.name]; exists {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateAction, a.name)
		}
		r[a.name] = a
	}
	return r, nil
}

// Lookup returns the named action.
func (r Registry) Lookup(name string) (*Action, bool) {
	a, ok := r[name]
	return a, ok
}

// Names returns the registered names, sorted.
func (r Registry) Names() []string {
	names := make([]string, 0, len(r))
	for n := range r {
		names = append(names, n)
	}
	slices.Sort(names)
	return names
}

// Meta builds the selection used to choose between several legal actions.
func Meta(prompt string, actions []*Action) *domain.ResolvedSelection {
	rs := &domain.ResolvedSelection{Name: domain.ActionSelectionName, Kind: domain.SelectChoices, Prompt: prompt}
	for _, a := range actions {
		label := a.prompt
		if label == "" {
			label = a.name
		}
		rs.Choices = append(rs.Choices, domain.Choice{Value: a.name, Label: label})
	}
	return rs
}
