package action_test

import (
	"errors"
	"testing"

	"github.com/aretw0/tabula/pkg/action"
	"github.com/aretw0/tabula/pkg/domain"
	"github.com/aretw0/tabula/pkg/rules"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var adjacency = map[string][]string{
	"A": {"B", "C"},
	"B": {"A"},
	"C": {"A", "B"},
}

func moveAction() *action.Action {
	return action.New("move", "Move a piece").Select(
		action.OneOf("from", "From where?", "A", "B", "C"),
		action.Choices("to", "To where?", func(_ *rules.Env, prior action.Args) []domain.Choice {
			var out []domain.Choice
			for _, s := range adjacency[prior.String(0)] {
				out = append(out, domain.Choice{Value: s})
			}
			return out
		}),
	)
}

func TestResolve_NarrowsOnPriorArgument(t *testing.T) {
	env := &rules.Env{}
	res := moveAction().Resolve(env, []domain.Argument{"A"})

	assert.False(t, res.Complete())
	assert.Empty(t, res.Problem)
	assert.Equal(t, action.Args{"A"}, res.Args)
	require.NotNil(t, res.Selection)
	assert.Equal(t, "to", res.Selection.Name)
	assert.Equal(t, domain.SelectChoices, res.Selection.Kind)
	assert.True(t, res.Selection.HasChoice("B"))
	assert.True(t, res.Selection.HasChoice("C"))
	assert.False(t, res.Selection.HasChoice("A"))
}

func TestResolve_Complete(t *testing.T) {
	res := moveAction().Resolve(&rules.Env{}, []domain.Argument{"A", "C"})
	assert.True(t, res.Complete())
	assert.Equal(t, action.Args{"A", "C"}, res.Args)
	assert.Equal(t, domain.Move{Action: "move", Player: 2, Args: []domain.Argument{"A", "C"}}, res.Move(2))
}

func TestResolve_Monotonic(t *testing.T) {
	cases := []struct {
		name     string
		provided []domain.Argument
		accepted action.Args
		next     string
	}{
		{"first rejected", []domain.Argument{"Z", "B"}, nil, "from"},
		{"second rejected", []domain.Argument{"B", "C"}, action.Args{"B"}, "to"},
		{"wrong type", []domain.Argument{7}, nil, "from"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			res := moveAction().Resolve(&rules.Env{}, tc.provided)
			assert.NotEmpty(t, res.Problem)
			assert.Equal(t, tc.accepted, res.Args)
			require.NotNil(t, res.Selection)
			assert.Equal(t, tc.next, res.Selection.Name)
			assert.LessOrEqual(t, len(res.Args), len(tc.provided))
			for i, a := range res.Args {
				assert.Equal(t, tc.provided[i], a, "accepted args must be a prefix of the input")
			}
		})
	}
}

func TestResolve_TooManyArguments(t *testing.T) {
	res := moveAction().Resolve(&rules.Env{}, []domain.Argument{"A", "B", "C"})
	assert.False(t, res.Complete())
	assert.Nil(t, res.Selection)
	assert.Contains(t, res.Problem, "takes 2 arguments")
}

func TestResolve_Kinds(t *testing.T) {
	env := &rules.Env{}

	t.Run("number", func(t *testing.T) {
		a := action.New("bid", "").Select(action.Number("amount", "How much?", 1, 5))
		assert.True(t, a.Resolve(env, []domain.Argument{float64(3)}).Complete(), "JSON numbers are normalized")
		assert.True(t, a.Resolve(env, []domain.Argument{"4"}).Complete())
		assert.Contains(t, a.Resolve(env, []domain.Argument{9}).Problem, "between 1 and 5")
		assert.Contains(t, a.Resolve(env, []domain.Argument{2.5}).Problem, "whole number")
	})

	t.Run("text", func(t *testing.T) {
		a := action.New("name", "").Select(action.Text("title", "Name it", func(s string) error {
			if s == "" {
				return errors.New("title cannot be empty")
			}
			return nil
		}))
		assert.True(t, a.Resolve(env, []domain.Argument{"Rex"}).Complete())
		assert.Equal(t, "title cannot be empty", a.Resolve(env, []domain.Argument{""}).Problem)
	})

	t.Run("board", func(t *testing.T) {
		a := action.New("place", "").Select(action.Element("space", "Where?", func(*rules.Env, action.Args) []domain.ElementRef {
			return []domain.ElementRef{{ID: "s1"}, {ID: "s2"}}
		}))
		res := a.Resolve(env, []domain.Argument{domain.ElementRef{ID: "s2"}})
		require.True(t, res.Complete())
		assert.Equal(t, domain.ElementRef{ID: "s2"}, res.Args.Element(0))
		assert.True(t, a.Resolve(env, []domain.Argument{"s1"}).Complete(), "bare ids name elements")
		assert.NotEmpty(t, a.Resolve(env, []domain.Argument{"s9"}).Problem)
	})

	t.Run("button", func(t *testing.T) {
		a := action.New("ok", "").Select(action.Confirm("Sure?"))
		assert.True(t, a.Resolve(env, []domain.Argument{true}).Complete())
		assert.NotEmpty(t, a.Resolve(env, []domain.Argument{false}).Problem)
	})
}

func TestForceArgs(t *testing.T) {
	env := &rules.Env{}

	t.Run("zero selections", func(t *testing.T) {
		res := action.New("pass", "Pass").ForceArgs(env)
		assert.True(t, res.Complete())
		assert.Empty(t, res.Args)
	})

	t.Run("singletons collapse", func(t *testing.T) {
		a := action.New("draw", "").Select(
			action.OneOf("deck", "", "main"),
			action.Number("count", "", 2, 2),
			action.Confirm("Draw?"),
		)
		res := a.ForceArgs(env)
		require.True(t, res.Complete())
		assert.Equal(t, action.Args{"main", 2, true}, res.Args)
	})

	t.Run("stops at real choice", func(t *testing.T) {
		res := moveAction().ForceArgs(env)
		assert.False(t, res.Complete())
		assert.False(t, res.Impossible)
		require.NotNil(t, res.Selection)
		assert.Equal(t, "from", res.Selection.Name)
	})

	t.Run("impossible", func(t *testing.T) {
		a := action.New("take", "").Select(action.Choices("card", "", func(*rules.Env, action.Args) []domain.Choice { return nil }))
		res := a.ForceArgs(env)
		assert.True(t, res.Impossible)
		assert.False(t, a.IsPossible(env))
	})
}

func TestIsPossible_Condition(t *testing.T) {
	open := true
	a := action.New("knock", "").When(func(*rules.Env) bool { return open })
	env := &rules.Env{}
	assert.True(t, a.IsPossible(env))
	open = false
	assert.False(t, a.IsPossible(env))
	assert.True(t, a.Resolve(env, nil).Impossible)
}

func TestApply(t *testing.T) {
	var got action.Args
	a := action.New("roll", "").Select(action.Number("die", "", 1, 6)).Do(func(_ *rules.Env, args action.Args) (rules.Signal, error) {
		got = args
		return rules.Repeat, nil
	})

	_, err := a.Apply(&rules.Env{}, nil)
	assert.ErrorIs(t, err, action.ErrIncompleteMove)

	sig, err := a.Apply(&rules.Env{}, action.Args{4})
	require.NoError(t, err)
	assert.Equal(t, rules.Repeat, sig)
	assert.Equal(t, 4, got.Int(0))
}

func TestRegistry(t *testing.T) {
	r, err := action.NewRegistry(action.New("b", ""), action.New("a", ""))
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, r.Names())

	_, err = action.NewRegistry(action.New("a", ""), action.New("a", ""))
	assert.ErrorIs(t, err, action.ErrDuplicateAction)

	meta := action.Meta("Choose action", []*action.Action{action.New("a", "Do A"), action.New("b", "")})
	assert.Equal(t, domain.ActionSelectionName, meta.Name)
	assert.Equal(t, "Do A", meta.Choices[0].Label)
	assert.Equal(t, "b", meta.Choices[1].Label)
}
