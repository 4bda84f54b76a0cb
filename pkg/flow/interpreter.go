package flow

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"time"

	"github.com/aretw0/tabula/pkg/action"
	"github.com/aretw0/tabula/pkg/domain"
	"github.com/aretw0/tabula/pkg/rules"
)

// DefaultMaxSteps bounds the node entries of a single walk.
const DefaultMaxSteps = 10000

// Interpreter walks a flow tree from one suspension point to the next.
// It holds only the current position; it is cheap to create per request.
type Interpreter struct {
	tree     *Tree
	actions  action.Registry
	hooks    domain.LifecycleHooks
	logger   *slog.Logger
	maxSteps int

	position domain.Position
	finished bool
}

// Option configures an Interpreter.
type Option func(*Interpreter)

// WithHooks registers lifecycle hooks.
func WithHooks(hooks domain.LifecycleHooks) Option {
	return func(i *Interpreter) {
		i.hooks = hooks
	}
}

// WithLogger sets a structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(i *Interpreter) {
		if logger != nil {
			i.logger = logger
		}
	}
}

// WithMaxSteps overrides DefaultMaxSteps.
func WithMaxSteps(n int) Option {
	return func(i *Interpreter) {
		if n > 0 {
			i.maxSteps = n
		}
	}
}

// New creates an interpreter. Every action named by the tree must be registered.
func New(tree *Tree, actions action.Registry, opts ...Option) (*Interpreter, error) {
	for _, name := range tree.ActionNames() {
		if _, ok := actions.Lookup(name); !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnknownAction, name)
		}
	}
	i := &Interpreter{
		tree:     tree,
		actions:  actions,
		logger:   slog.New(slog.NewJSONHandler(io.Discard, nil)),
		maxSteps: DefaultMaxSteps,
	}
	for _, opt := range opts {
		opt(i)
	}
	return i, nil
}

// Tree returns the flow being interpreted.
func (i *Interpreter) Tree() *Tree { return i.tree }

// Start walks from the root to the first suspension, or to completion.
func (i *Interpreter) Start(ctx context.Context, env *rules.Env) error {
	i.position = nil
	i.finished = false
	return i.drive(ctx, env, nil, rules.Continue)
}

// CurrentStep returns the player action the flow is suspended on, or nil.
func (i *Interpreter) CurrentStep() *Node {
	leaf, ok := i.position.Leaf()
	if !ok {
		return nil
	}
	return i.tree.nodes[leaf.Node]
}

// ActionNeeded returns the current step's allow-list filtered by possibility
// in env: an action with a required selection that has nothing to offer, or a
// failing condition, is left out.
func (i *Interpreter) ActionNeeded(env *rules.Env) []string {
	step := i.CurrentStep()
	if step == nil {
		return nil
	}
	aenv := i.Env(env)
	var out []string
	for _, name := range step.Actions() {
		if act, ok := i.actions.Lookup(name); ok && act.IsPossible(aenv) {
			out = append(out, name)
		}
	}
	return out
}

// Finished reports whether the flow has run to completion.
func (i *Interpreter) Finished() bool { return i.finished }

// Position returns a copy of the current position.
func (i *Interpreter) Position() domain.Position { return i.position.Clone() }

// Restore validates and installs a serialized position.
// An empty position with finished false means the flow has not been started.
func (i *Interpreter) Restore(pos domain.Position, finished bool) error {
	if finished {
		if len(pos) > 0 {
			return fmt.Errorf("%w: finished flow has a position", domain.ErrInvalidPosition)
		}
		i.position, i.finished = nil, true
		return nil
	}
	if err := i.validate(pos); err != nil {
		return err
	}
	i.position, i.finished = pos.Clone(), false
	return nil
}

func (i *Interpreter) validate(pos domain.Position) error {
	if len(pos) == 0 {
		return nil
	}
	n := i.tree.root
	for k, f := range pos {
		if f.Node != n.id {
			return fmt.Errorf("%w: frame %d is %q, expected %q", domain.ErrInvalidPosition, k, f.Node, n.id)
		}
		if k == len(pos)-1 {
			break
		}
		next, err := i.tree.child(n, f)
		if err != nil {
			return err
		}
		n = next
	}
	if n.kind != KindPlayerAction {
		return fmt.Errorf("%w: position ends at %s %q", domain.ErrInvalidPosition, n.kind, n.id)
	}
	return nil
}

// Env binds the loop variables of the current position onto base, so that
// selections and effects resolved at the suspension see them.
func (i *Interpreter) Env(base *rules.Env) *rules.Env {
	env := base
	for _, f := range i.position {
		n, ok := i.tree.nodes[f.Node]
		if !ok || !n.kind.IsLoop() || n.varName == "" {
			continue
		}
		env = env.Bind(n.varName, f.Value)
	}
	return env
}

// ProcessMove resolves a move against the current step. When the move is
// complete its effect is applied and the flow resumes from the current leaf to
// the next suspension. Otherwise the resolution describes what is missing and
// the position is left unchanged.
func (i *Interpreter) ProcessMove(ctx context.Context, env *rules.Env, move domain.Move) (action.Resolution, error) {
	if i.finished {
		return action.Resolution{Action: move.Action, Problem: "the game is over"}, nil
	}
	step := i.CurrentStep()
	if step == nil {
		return action.Resolution{}, ErrNotStarted
	}
	if !slices.Contains(step.actions, move.Action) {
		return action.Resolution{
			Action:  move.Action,
			Problem: fmt.Sprintf("%q is not allowed now", move.Action),
		}, nil
	}
	act, _ := i.actions.Lookup(move.Action)

	aenv := i.Env(env)
	res := act.Resolve(aenv, move.Args)
	if !res.Complete() {
		return res, nil
	}
	sig, err := act.Apply(aenv, res.Args)
	if err != nil {
		return res, err
	}
	i.logger.Debug("move applied", "node_id", step.id, "action", act.Name(), "player", move.Player, "signal", sig.String())

	if err := i.drive(ctx, env, i.position, sig); err != nil {
		return res, err
	}
	return res, nil
}

func (i *Interpreter) drive(ctx context.Context, env *rules.Env, resume domain.Position, sig rules.Signal) error {
	w := &walker{Interpreter: i, ctx: ctx, signal: sig}
	out, err := w.run(i.tree.root, env, resume)
	if err != nil {
		return err
	}
	switch out.status {
	case suspended:
		i.position, i.finished = out.path, false
		i.logger.Debug("flow suspended", "position", out.path.String(), "steps", w.steps)
	case completed:
		i.position, i.finished = nil, true
		i.logger.Debug("flow complete", "steps", w.steps)
		if i.hooks.OnFlowComplete != nil {
			i.hooks.OnFlowComplete(ctx)
		}
	default:
		return ErrSignalOutsideLoop
	}
	return nil
}

func (i *Interpreter) nodeEvent(typ domain.EventType, n *Node) *domain.NodeEvent {
	return &domain.NodeEvent{
		EventBase: domain.EventBase{Timestamp: time.Now(), Type: typ},
		NodeID:    n.id,
		NodeKind:  string(n.kind),
	}
}
