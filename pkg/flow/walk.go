package flow

import (
	"context"
	"fmt"

	"github.com/aretw0/tabula/pkg/domain"
	"github.com/aretw0/tabula/pkg/rules"
)

type status int

const (
	completed status = iota
	suspended
	repeating
	skipping
)

func statusOf(sig rules.Signal) status {
	switch sig {
	case rules.Repeat:
		return repeating
	case rules.Skip:
		return skipping
	default:
		return completed
	}
}

// outcome is what a node reports to its parent. When suspended, path holds
// the frames from the reporting node's child down to the leaf.
type outcome struct {
	status status
	path   domain.Position
}

func (o outcome) under(f domain.Frame) outcome {
	return outcome{status: suspended, path: append(domain.Position{f}, o.path...)}
}

type walker struct {
	*Interpreter
	ctx   context.Context
	steps int
	// signal is returned by the player action being resumed.
	signal rules.Signal
}

func (w *walker) tick() error {
	w.steps++
	if w.steps > w.maxSteps {
		return fmt.Errorf("%w after %d steps", ErrRunaway, w.maxSteps)
	}
	return nil
}

func (w *walker) enter(n *Node) error {
	if err := w.tick(); err != nil {
		return err
	}
	w.logger.Debug("entering node", "node_id", n.id, "kind", string(n.kind))
	if w.hooks.OnNodeEnter != nil {
		w.hooks.OnNodeEnter(w.ctx, w.nodeEvent(domain.EventNodeEnter, n))
	}
	return nil
}

// descend splits a resume path at n. It returns n's frame and the path below it.
func (w *walker) descend(n *Node, resume domain.Position) (domain.Frame, domain.Position, bool, error) {
	if len(resume) == 0 {
		return domain.Frame{}, nil, false, nil
	}
	f := resume[0]
	if _, err := w.tree.child(n, f); err != nil {
		return f, nil, true, err
	}
	if len(resume) < 2 {
		return f, nil, true, fmt.Errorf("%w: %q has no suspended child", domain.ErrInvalidPosition, n.id)
	}
	return f, resume[1:], true, nil
}

func (w *walker) run(n *Node, env *rules.Env, resume domain.Position) (outcome, error) {
	if len(resume) > 0 {
		if resume[0].Node != n.id {
			return outcome{}, fmt.Errorf("%w: expected %q, found %q", domain.ErrInvalidPosition, n.id, resume[0].Node)
		}
	} else if err := w.enter(n); err != nil {
		return outcome{}, err
	}

	switch n.kind {
	case KindSequence:
		return w.sequence(n, env, resume)
	case KindIfElse:
		return w.ifElse(n, env, resume)
	case KindSwitchCase:
		return w.switchCase(n, env, resume)
	case KindWhileLoop:
		return w.whileLoop(n, env, resume)
	case KindForLoop:
		return w.forLoop(n, env, resume)
	case KindForEach:
		return w.forEach(n, env, resume)
	case KindEachPlayer:
		return w.eachPlayer(n, env, resume)
	case KindPlayerAction:
		return w.playerAction(n, resume)
	case KindStep:
		if len(resume) > 0 {
			return outcome{}, fmt.Errorf("%w: step %q cannot be suspended", domain.ErrInvalidPosition, n.id)
		}
		sig, err := n.step(env)
		if err != nil {
			return outcome{}, fmt.Errorf("step %q: %w", n.id, err)
		}
		return outcome{status: statusOf(sig)}, nil
	}
	return outcome{}, fmt.Errorf("%w: unknown kind %q", ErrInvalidNode, n.kind)
}

func (w *walker) sequence(n *Node, env *rules.Env, resume domain.Position) (outcome, error) {
	f, sub, _, err := w.descend(n, resume)
	if err != nil {
		return outcome{}, err
	}
	for i := f.Index; i < len(n.children); i++ {
		out, err := w.run(n.children[i], env, sub)
		sub = nil
		if err != nil {
			return outcome{}, err
		}
		switch out.status {
		case completed:
		case suspended:
			return out.under(domain.Frame{Node: n.id, Index: i}), nil
		default:
			return out, nil
		}
	}
	return outcome{status: completed}, nil
}

func (w *walker) ifElse(n *Node, env *rules.Env, resume domain.Position) (outcome, error) {
	f, sub, resuming, err := w.descend(n, resume)
	if err != nil {
		return outcome{}, err
	}
	branch := f.Index
	if !resuming {
		branch = 1
		if n.test(env) {
			branch = 0
		}
		if branch >= len(n.children) {
			return outcome{status: completed}, nil
		}
	}
	return w.branch(n, branch, env, sub)
}

func (w *walker) switchCase(n *Node, env *rules.Env, resume domain.Position) (outcome, error) {
	f, sub, resuming, err := w.descend(n, resume)
	if err != nil {
		return outcome{}, err
	}
	branch := f.Index
	if !resuming {
		v := domain.NormalizeArg(n.on(env))
		branch = -1
		for i, c := range n.cases {
			if domain.ArgEqual(c, v) {
				branch = i
				break
			}
		}
		if branch < 0 {
			if !n.hasDefault {
				return outcome{status: completed}, nil
			}
			branch = len(n.cases)
		}
	}
	return w.branch(n, branch, env, sub)
}

func (w *walker) branch(n *Node, i int, env *rules.Env, sub domain.Position) (outcome, error) {
	out, err := w.run(n.children[i], env, sub)
	if err != nil {
		return outcome{}, err
	}
	if out.status == suspended {
		return out.under(domain.Frame{Node: n.id, Index: i}), nil
	}
	return out, nil
}

func (w *walker) whileLoop(n *Node, env *rules.Env, resume domain.Position) (outcome, error) {
	f, sub, resuming, err := w.descend(n, resume)
	if err != nil {
		return outcome{}, err
	}
	iter, check := f.Index, !resuming
	for {
		if check {
			if err := w.tick(); err != nil {
				return outcome{}, err
			}
			if !n.test(env) {
				return outcome{status: completed}, nil
			}
		}
		out, err := w.run(n.children[0], env, sub)
		sub = nil
		if err != nil {
			return outcome{}, err
		}
		switch out.status {
		case suspended:
			return out.under(domain.Frame{Node: n.id, Index: iter}), nil
		case repeating:
			check = false
		default:
			iter++
			check = true
		}
	}
}

func (w *walker) forLoop(n *Node, env *rules.Env, resume domain.Position) (outcome, error) {
	f, sub, resuming, err := w.descend(n, resume)
	if err != nil {
		return outcome{}, err
	}
	iter, check := f.Index, !resuming
	var v int
	switch {
	case resuming:
		v, _ = domain.NormalizeArg(f.Value).(int)
	case n.initial != nil:
		v = n.initial(env)
	}
	for {
		if check {
			if err := w.tick(); err != nil {
				return outcome{}, err
			}
			if !n.while(env, v) {
				return outcome{status: completed}, nil
			}
		}
		out, err := w.run(n.children[0], bind(env, n.varName, v), sub)
		sub = nil
		if err != nil {
			return outcome{}, err
		}
		switch out.status {
		case suspended:
			return out.under(domain.Frame{Node: n.id, Index: iter, Value: v}), nil
		case repeating:
			check = false
		default:
			if n.next != nil {
				v = n.next(v)
			} else {
				v++
			}
			iter++
			check = true
		}
	}
}

func (w *walker) forEach(n *Node, env *rules.Env, resume domain.Position) (outcome, error) {
	f, sub, resuming, err := w.descend(n, resume)
	if err != nil {
		return outcome{}, err
	}
	items := f.Items
	if !resuming {
		raw := n.collection(env)
		items = make([]domain.Argument, len(raw))
		for i, item := range raw {
			items[i] = domain.NormalizeArg(item)
		}
		if _, err := domain.SerializeArgs(items); err != nil {
			return outcome{}, fmt.Errorf("for_each %q: %w", n.id, err)
		}
	}
	for iter := f.Index; iter < len(items); {
		if sub == nil {
			if err := w.tick(); err != nil {
				return outcome{}, err
			}
		}
		out, err := w.run(n.children[0], bind(env, n.varName, items[iter]), sub)
		sub = nil
		if err != nil {
			return outcome{}, err
		}
		switch out.status {
		case suspended:
			return out.under(domain.Frame{Node: n.id, Index: iter, Value: items[iter], Items: items}), nil
		case repeating:
		default:
			iter++
		}
	}
	return outcome{status: completed}, nil
}

func (w *walker) eachPlayer(n *Node, env *rules.Env, resume domain.Position) (outcome, error) {
	if env.Players == nil {
		return outcome{}, fmt.Errorf("each_player %q: no roster", n.id)
	}
	f, sub, resuming, err := w.descend(n, resume)
	if err != nil {
		return outcome{}, err
	}
	order := env.Players.TurnOrder()
	if resuming {
		ref, _ := f.Value.(domain.PlayerRef)
		if f.Index >= len(order) || order[f.Index] != ref.Position {
			return outcome{}, fmt.Errorf("%w: %q: turn %d is not player %d", domain.ErrInvalidPosition, n.id, f.Index, ref.Position)
		}
	}
	for iter := f.Index; iter < len(order); {
		if sub == nil {
			if err := w.tick(); err != nil {
				return outcome{}, err
			}
		}
		ref := domain.PlayerRef{Position: order[iter]}
		if err := env.Players.SetCurrent(ref.Position); err != nil {
			return outcome{}, fmt.Errorf("each_player %q: %w", n.id, err)
		}
		out, err := w.run(n.children[0], env.Bind(n.varName, ref), sub)
		sub = nil
		if err != nil {
			return outcome{}, err
		}
		switch out.status {
		case suspended:
			return out.under(domain.Frame{Node: n.id, Index: iter, Value: ref}), nil
		case repeating:
		default:
			iter++
		}
	}
	return outcome{status: completed}, nil
}

func (w *walker) playerAction(n *Node, resume domain.Position) (outcome, error) {
	if len(resume) > 0 {
		if len(resume) != 1 {
			return outcome{}, fmt.Errorf("%w: %q is a leaf", domain.ErrInvalidPosition, n.id)
		}
		sig := w.signal
		w.signal = rules.Continue
		return outcome{status: statusOf(sig)}, nil
	}
	if w.hooks.OnSuspend != nil {
		w.hooks.OnSuspend(w.ctx, w.nodeEvent(domain.EventSuspend, n))
	}
	return outcome{status: suspended, path: domain.Position{{Node: n.id}}}, nil
}

func bind(env *rules.Env, name string, v domain.Argument) *rules.Env {
	if name == "" {
		return env
	}
	return env.Bind(name, v)
}
