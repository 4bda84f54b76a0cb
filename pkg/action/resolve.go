package action

import (
	"fmt"

	"github.com/aretw0/tabula/pkg/domain"
	"github.com/aretw0/tabula/pkg/rules"
)

// Resolution is the outcome of resolving input against an action.
type Resolution struct {
	Action string
	// Args is the accepted prefix of the provided arguments.
	Args Args
	// Selection describes the next argument still needed, if any.
	Selection *domain.ResolvedSelection
	// Problem explains why a provided argument was rejected.
	Problem string
	// Impossible is set when the next selection has no legal value at all.
	Impossible bool
}

// Complete reports whether every selection is satisfied.
func (r Resolution) Complete() bool {
	return r.Selection == nil && r.Problem == "" && !r.Impossible
}

// Move returns the (possibly partial) move described by the resolution.
func (r Resolution) Move(player int) domain.Move {
	return domain.Move{Action: r.Action, Player: player, Args: []domain.Argument(r.Args)}
}

// Resolve walks the selections in declaration order against the provided
// arguments. It never accepts an argument after a rejected one.
func (a *Action) Resolve(env *rules.Env, provided []domain.Argument) Resolution {
	res := Resolution{Action: a.name}
	if a.condition != nil && !a.condition(env) {
		res.Impossible = true
		res.Problem = fmt.Sprintf("%s is not possible now", a.name)
		return res
	}
	for i, sel := range a.selections {
		rs := sel.Resolve(env, res.Args)
		if rs.Impossible() {
			res.Selection = rs
			res.Impossible = true
			res.Problem = fmt.Sprintf("no valid %s", sel.name)
			return res
		}
		if i >= len(provided) {
			res.Selection = rs
			return res
		}
		v, problem := sel.accept(rs, provided[i])
		if problem != "" {
			res.Selection = rs
			res.Problem = problem
			return res
		}
		res.Args = append(res.Args, v)
	}
	if len(provided) > len(a.selections) {
		res.Problem = fmt.Sprintf("%s takes %d arguments, got %d", a.name, len(a.selections), len(provided))
	}
	return res
}

// ForceArgs resolves without input, collapsing every selection with exactly
// one legal value. It stops at the first selection that needs a real choice.
func (a *Action) ForceArgs(env *rules.Env) Resolution {
	res := Resolution{Action: a.name}
	if a.condition != nil && !a.condition(env) {
		res.Impossible = true
		res.Problem = fmt.Sprintf("%s is not possible now", a.name)
		return res
	}
	for _, sel := range a.selections {
		rs := sel.Resolve(env, res.Args)
		if rs.Impossible() {
			res.Selection = rs
			res.Impossible = true
			res.Problem = fmt.Sprintf("no valid %s", sel.name)
			return res
		}
		v, ok := rs.Forced()
		if !ok {
			res.Selection = rs
			return res
		}
		res.Args = append(res.Args, v)
	}
	return res
}

// IsPossible reports whether resolution with no input does not immediately fail.
func (a *Action) IsPossible(env *rules.Env) bool {
	return !a.ForceArgs(env).Impossible
}
