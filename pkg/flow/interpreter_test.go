package flow_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/aretw0/tabula/pkg/action"
	"github.com/aretw0/tabula/pkg/domain"
	"github.com/aretw0/tabula/pkg/flow"
	"github.com/aretw0/tabula/pkg/player"
	"github.com/aretw0/tabula/pkg/rules"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// table holds the mutable state the test flows read and write.
type table struct {
	counter int
	log     []string
	again   bool
	items   []domain.Argument
}

func (tb *table) actions(t *testing.T) action.Registry {
	t.Helper()
	reg, err := action.NewRegistry(
		action.New("pass", "Pass").Do(func(env *rules.Env, _ action.Args) (rules.Signal, error) {
			tb.counter++
			if ref, ok := env.Var("player"); ok {
				tb.log = append(tb.log, domain.FormatArg(ref))
			}
			return rules.Continue, nil
		}),
		action.New("play", "Play").Select(action.OneOf("card", "Which card?", "red", "blue")).Do(
			func(env *rules.Env, args action.Args) (rules.Signal, error) {
				tb.log = append(tb.log, args.String(0))
				if tb.again {
					tb.again = false
					return rules.Repeat, nil
				}
				return rules.Continue, nil
			}),
		action.New("skip", "Skip").Do(func(*rules.Env, action.Args) (rules.Signal, error) {
			return rules.Skip, nil
		}),
		action.New("grow", "Grow").Do(func(*rules.Env, action.Args) (rules.Signal, error) {
			tb.items = append(tb.items, "late")
			return rules.Continue, nil
		}),
	)
	require.NoError(t, err)
	return reg
}

func newEnv(t *testing.T, n int) *rules.Env {
	t.Helper()
	var players []domain.Player
	for i := 1; i <= n; i++ {
		players = append(players, domain.Player{Position: i, Name: string(rune('A' + i - 1))})
	}
	roster, err := player.NewCollection(players)
	require.NoError(t, err)
	return &rules.Env{Players: roster}
}

func start(t *testing.T, root *flow.Node, reg action.Registry, opts ...flow.Option) (*flow.Interpreter, *rules.Env) {
	t.Helper()
	tree, err := flow.Build(root)
	require.NoError(t, err)
	it, err := flow.New(tree, reg, opts...)
	require.NoError(t, err)
	env := newEnv(t, 3)
	require.NoError(t, it.Start(context.Background(), env))
	return it, env
}

func move(t *testing.T, it *flow.Interpreter, env *rules.Env, name string, args ...domain.Argument) action.Resolution {
	t.Helper()
	res, err := it.ProcessMove(context.Background(), env, domain.Move{Action: name, Player: env.Players.CurrentPosition(), Args: args})
	require.NoError(t, err)
	return res
}

func TestEachPlayer_Rotation(t *testing.T) {
	tb := &table{}
	after := 0
	root := flow.Sequence(
		flow.EachPlayer(flow.Turns{Name: "turns", Do: []*flow.Node{
			flow.PlayerAction(flow.Actions{Name: "turn", Actions: []string{"pass"}}),
		}}),
		flow.Step("after", func(*rules.Env) (rules.Signal, error) { after++; return rules.Continue, nil }),
		flow.PlayerAction(flow.Actions{Name: "end", Actions: []string{"pass"}}),
	)
	it, env := start(t, root, tb.actions(t))

	var current []int
	for range 3 {
		assert.Equal(t, "turn", it.CurrentStep().ID())
		current = append(current, env.Players.CurrentPosition())
		move(t, it, env, "pass")
	}

	assert.Equal(t, []int{1, 2, 3}, current)
	assert.Equal(t, []string{"player 1", "player 2", "player 3"}, tb.log)
	assert.Equal(t, 1, after, "control passes the loop exactly once")
	assert.Equal(t, "end", it.CurrentStep().ID())
}

func TestWhileLoop_RechecksAtTopOnly(t *testing.T) {
	tb := &table{}
	suspensions := 0
	hooks := domain.LifecycleHooks{OnSuspend: func(context.Context, *domain.NodeEvent) { suspensions++ }}
	root := flow.WhileLoop(flow.While{
		Test: func(*rules.Env) bool { return tb.counter < 3 },
		Do:   []*flow.Node{flow.PlayerAction(flow.Actions{Actions: []string{"pass"}})},
	})
	it, env := start(t, root, tb.actions(t), flow.WithHooks(hooks))

	for i := 0; i < 3; i++ {
		require.False(t, it.Finished(), "iteration %d", i)
		move(t, it, env, "pass")
	}
	assert.True(t, it.Finished())
	assert.Equal(t, 3, suspensions)
	assert.Nil(t, it.CurrentStep())
	assert.Empty(t, it.Position())
}

func TestIfElse_NotReevaluatedOnResume(t *testing.T) {
	tb := &table{}
	flag := true
	root := flow.Sequence(
		flow.IfElse(flow.If{
			Name: "branch",
			Test: func(*rules.Env) bool { return flag },
			Then: []*flow.Node{
				flow.PlayerAction(flow.Actions{Name: "then-1", Actions: []string{"pass"}}),
				flow.PlayerAction(flow.Actions{Name: "then-2", Actions: []string{"pass"}}),
			},
			Else: []*flow.Node{flow.PlayerAction(flow.Actions{Name: "else", Actions: []string{"pass"}})},
		}),
		flow.PlayerAction(flow.Actions{Name: "done", Actions: []string{"pass"}}),
	)
	it, env := start(t, root, tb.actions(t))
	assert.Equal(t, "then-1", it.CurrentStep().ID())

	flag = false
	move(t, it, env, "pass")
	assert.Equal(t, "then-2", it.CurrentStep().ID())
	move(t, it, env, "pass")
	assert.Equal(t, "done", it.CurrentStep().ID())
}

func TestSwitchCase(t *testing.T) {
	tb := &table{}
	mode := 2
	build := func() *flow.Node {
		return flow.Sequence(
			flow.SwitchCase(flow.Switch{
				On: func(*rules.Env) domain.Argument { return mode },
				Cases: []flow.Case{
					{Eq: 1, Do: []*flow.Node{flow.PlayerAction(flow.Actions{Name: "one", Actions: []string{"pass"}})}},
					{Eq: 2, Do: []*flow.Node{flow.PlayerAction(flow.Actions{Name: "two", Actions: []string{"pass"}})}},
				},
			}),
			flow.PlayerAction(flow.Actions{Name: "after", Actions: []string{"pass"}}),
		)
	}

	it, _ := start(t, build(), tb.actions(t))
	assert.Equal(t, "two", it.CurrentStep().ID())

	mode = 9
	it, _ = start(t, build(), tb.actions(t))
	assert.Equal(t, "after", it.CurrentStep().ID(), "no match passes through")
}

func TestForLoop_RepeatRerunsBody(t *testing.T) {
	tb := &table{}
	steps := 0
	root := flow.ForLoop(flow.For{
		Name:    "rounds",
		Var:     "round",
		Initial: func(*rules.Env) int { return 1 },
		While:   func(_ *rules.Env, r int) bool { return r <= 2 },
		Do: []*flow.Node{
			flow.PlayerAction(flow.Actions{Name: "play", Actions: []string{"play"}}),
			flow.Step("count", func(*rules.Env) (rules.Signal, error) { steps++; return rules.Continue, nil }),
		},
	})
	it, env := start(t, root, tb.actions(t))
	assert.Equal(t, 1, it.Env(env).IntVar("round"))

	tb.again = true
	move(t, it, env, "play", "red")
	assert.Equal(t, 0, steps, "repeat abandons the rest of the body")
	assert.Equal(t, 1, it.Env(env).IntVar("round"), "repeat stays on the same iteration")
	assert.Equal(t, 0, it.Position()[0].Index)

	move(t, it, env, "play", "blue")
	assert.Equal(t, 1, steps)
	assert.Equal(t, 2, it.Env(env).IntVar("round"))

	move(t, it, env, "play", "red")
	assert.True(t, it.Finished())
	assert.Equal(t, []string{"red", "blue", "red"}, tb.log)
}

func TestSkip_AdvancesToNextIteration(t *testing.T) {
	tb := &table{}
	reached := 0
	root := flow.EachPlayer(flow.Turns{Do: []*flow.Node{
		flow.PlayerAction(flow.Actions{Name: "first", Actions: []string{"skip", "pass"}}),
		flow.Step("bonus", func(*rules.Env) (rules.Signal, error) { reached++; return rules.Continue, nil }),
	}})
	it, env := start(t, root, tb.actions(t))

	move(t, it, env, "skip")
	assert.Equal(t, 0, reached)
	assert.Equal(t, 2, env.Players.CurrentPosition())

	move(t, it, env, "pass")
	assert.Equal(t, 1, reached)
	assert.Equal(t, 3, env.Players.CurrentPosition())
}

func TestSignalOutsideLoop(t *testing.T) {
	tree, err := flow.Build(flow.Sequence(flow.Signal("oops", rules.Repeat)))
	require.NoError(t, err)
	it, err := flow.New(tree, action.Registry{})
	require.NoError(t, err)
	assert.ErrorIs(t, it.Start(context.Background(), newEnv(t, 1)), flow.ErrSignalOutsideLoop)
}

func TestRunawayGuard(t *testing.T) {
	tree, err := flow.Build(flow.WhileLoop(flow.While{Test: always, Do: []*flow.Node{
		flow.Step("spin", func(*rules.Env) (rules.Signal, error) { return rules.Continue, nil }),
	}}))
	require.NoError(t, err)
	it, err := flow.New(tree, action.Registry{}, flow.WithMaxSteps(50))
	require.NoError(t, err)
	assert.ErrorIs(t, it.Start(context.Background(), newEnv(t, 1)), flow.ErrRunaway)
}

func TestForEach_SnapshotsCollection(t *testing.T) {
	tb := &table{items: []domain.Argument{"a", domain.ElementRef{ID: "b"}}}
	root := flow.ForEach(flow.Each{
		Name:       "items",
		Var:        "item",
		Collection: func(*rules.Env) []domain.Argument { return tb.items },
		Do:         []*flow.Node{flow.PlayerAction(flow.Actions{Name: "take", Actions: []string{"grow"}})},
	})
	it, env := start(t, root, tb.actions(t))

	v, _ := it.Env(env).Var("item")
	assert.Equal(t, "a", v)
	move(t, it, env, "grow")
	v, _ = it.Env(env).Var("item")
	assert.Equal(t, domain.ElementRef{ID: "b"}, v)
	move(t, it, env, "grow")
	assert.True(t, it.Finished(), "items added during the loop are not visited")
}

func TestUnknownAndIncompleteMoves(t *testing.T) {
	tb := &table{}
	root := flow.PlayerAction(flow.Actions{Name: "only", Actions: []string{"play"}})
	it, env := start(t, root, tb.actions(t))
	before := it.Position()

	res := move(t, it, env, "pass")
	assert.Contains(t, res.Problem, "not allowed")

	res = move(t, it, env, "play")
	assert.False(t, res.Complete())
	require.NotNil(t, res.Selection)
	assert.Equal(t, "card", res.Selection.Name)

	res = move(t, it, env, "play", "green")
	assert.NotEmpty(t, res.Problem)

	assert.Equal(t, before, it.Position(), "rejected moves leave the position unchanged")
	assert.Empty(t, tb.log)

	move(t, it, env, "play", "red")
	assert.True(t, it.Finished())
	res = move(t, it, env, "play", "red")
	assert.Equal(t, "the game is over", res.Problem)
}

func nestedFlow() *flow.Node {
	return flow.ForLoop(flow.For{
		Name:    "rounds",
		Var:     "round",
		Initial: func(*rules.Env) int { return 1 },
		While:   func(_ *rules.Env, r int) bool { return r <= 2 },
		Do: []*flow.Node{
			flow.EachPlayer(flow.Turns{Name: "turns", Do: []*flow.Node{
				flow.PlayerAction(flow.Actions{Name: "act", Actions: []string{"pass", "play"}}),
			}}),
		},
	})
}

func TestRestore_RoundTrip(t *testing.T) {
	tb := &table{}
	it, env := start(t, nestedFlow(), tb.actions(t))
	move(t, it, env, "pass")
	move(t, it, env, "play", "blue")

	raw, err := json.Marshal(it.Position())
	require.NoError(t, err)
	var pos domain.Position
	require.NoError(t, json.Unmarshal(raw, &pos))

	restored, err := flow.New(it.Tree(), tb.actions(t))
	require.NoError(t, err)
	require.NoError(t, restored.Restore(pos, false))
	assert.True(t, it.Position().Equal(restored.Position()))
	assert.Equal(t, it.Position(), restored.Position())
	assert.Equal(t, "act", restored.CurrentStep().ID())
	assert.Equal(t, domain.PlayerRef{Position: 3}, restored.Position()[1].Value)

	// Both continue identically.
	env2 := newEnv(t, 3)
	require.NoError(t, env2.Players.SetCurrent(3))
	move(t, it, env, "pass")
	move(t, restored, env2, "pass")
	assert.Equal(t, it.Position(), restored.Position())
	assert.Equal(t, 2, restored.Env(env2).IntVar("round"))
}

func TestRestore_RejectsInvalidPositions(t *testing.T) {
	tb := &table{}
	tree, err := flow.Build(nestedFlow())
	require.NoError(t, err)
	it, err := flow.New(tree, tb.actions(t))
	require.NoError(t, err)

	cases := map[string]domain.Position{
		"unknown root": {{Node: "nope"}},
		"stops early":  {{Node: "rounds", Value: 1}},
		"bad player":   {{Node: "rounds", Value: 1}, {Node: "turns", Index: 0}, {Node: "act"}},
		"not a leaf":   {{Node: "rounds", Value: 1}, {Node: "turns", Value: domain.PlayerRef{Position: 1}}},
	}
	for name, pos := range cases {
		t.Run(name, func(t *testing.T) {
			assert.ErrorIs(t, it.Restore(pos, false), domain.ErrInvalidPosition)
		})
	}
	assert.ErrorIs(t, it.Restore(domain.Position{{Node: "act"}}, true), domain.ErrInvalidPosition)
	require.NoError(t, it.Restore(nil, true))
	assert.True(t, it.Finished())
}

func TestDeterminism(t *testing.T) {
	run := func() domain.Position {
		tb := &table{}
		it, env := start(t, nestedFlow(), tb.actions(t))
		move(t, it, env, "play", "red")
		move(t, it, env, "pass")
		move(t, it, env, "pass")
		move(t, it, env, "play", "blue")
		return it.Position()
	}
	assert.Equal(t, run(), run())
}

func TestNew_RejectsUnknownAction(t *testing.T) {
	tree, err := flow.Build(flow.PlayerAction(flow.Actions{Actions: []string{"fly"}}))
	require.NoError(t, err)
	_, err = flow.New(tree, action.Registry{})
	assert.ErrorIs(t, err, flow.ErrUnknownAction)
}

func TestActionNeeded_FiltersImpossible(t *testing.T) {
	var deck []domain.Choice
	reg, err := action.NewRegistry(
		action.New("pass", "Pass").Do(func(*rules.Env, action.Args) (rules.Signal, error) { return rules.Continue, nil }),
		action.New("draw", "Draw").Select(action.Choices("card", "Which card?", func(*rules.Env, action.Args) []domain.Choice {
			return deck
		})).Do(func(*rules.Env, action.Args) (rules.Signal, error) { return rules.Continue, nil }),
	)
	require.NoError(t, err)

	it, env := start(t, flow.PlayerAction(flow.Actions{Name: "turn", Actions: []string{"pass", "draw"}}), reg)
	assert.Equal(t, []string{"pass"}, it.ActionNeeded(env), "an empty deck rules out draw")

	deck = append(deck, domain.Choice{Value: "ace"})
	assert.Equal(t, []string{"pass", "draw"}, it.ActionNeeded(env))

	move(t, it, env, "pass")
	assert.Nil(t, it.ActionNeeded(env), "nothing is needed once the flow is done")
}

func TestWhileLoop_RepeatIgnoresTest(t *testing.T) {
	tb := &table{}
	root := flow.WhileLoop(flow.While{
		Name: "turns",
		Test: func(*rules.Env) bool { return len(tb.log) == 0 },
		Do:   []*flow.Node{flow.PlayerAction(flow.Actions{Name: "play", Actions: []string{"play"}})},
	})
	it, env := start(t, root, tb.actions(t))

	tb.again = true
	move(t, it, env, "play", "red")
	require.False(t, it.Finished(), "repeat reruns the body without checking the test")
	assert.Equal(t, "play", it.CurrentStep().ID())
	assert.Equal(t, 0, it.Position()[0].Index)

	move(t, it, env, "play", "blue")
	assert.True(t, it.Finished())
	assert.Equal(t, []string{"red", "blue"}, tb.log)
}

// roundTrip rebuilds an interpreter on the same tree from a JSON copy of the
// position.
func roundTrip(t *testing.T, it *flow.Interpreter, reg action.Registry) *flow.Interpreter {
	t.Helper()
	raw, err := json.Marshal(it.Position())
	require.NoError(t, err)
	var pos domain.Position
	require.NoError(t, json.Unmarshal(raw, &pos))

	restored, err := flow.New(it.Tree(), reg)
	require.NoError(t, err)
	require.NoError(t, restored.Restore(pos, false))
	return restored
}

func TestForEach_RepeatStaysOnItem(t *testing.T) {
	tb := &table{items: []domain.Argument{"a", "b"}}
	reg := tb.actions(t)
	root := flow.ForEach(flow.Each{
		Name:       "items",
		Var:        "item",
		Collection: func(*rules.Env) []domain.Argument { return tb.items },
		Do:         []*flow.Node{flow.PlayerAction(flow.Actions{Name: "play", Actions: []string{"play"}})},
	})
	it, env := start(t, root, reg)

	tb.again = true
	move(t, it, env, "play", "red")
	v, _ := it.Env(env).Var("item")
	assert.Equal(t, "a", v)
	assert.Equal(t, 0, it.Position()[0].Index)

	restored := roundTrip(t, it, reg)
	v, _ = restored.Env(env).Var("item")
	assert.Equal(t, "a", v, "the repeated item survives a reload")

	tb.again = true
	move(t, restored, env, "play", "blue")
	v, _ = restored.Env(env).Var("item")
	assert.Equal(t, "a", v)

	move(t, restored, env, "play", "red")
	v, _ = restored.Env(env).Var("item")
	assert.Equal(t, "b", v)
	move(t, restored, env, "play", "blue")
	assert.True(t, restored.Finished())
	assert.Equal(t, []string{"red", "blue", "red", "blue"}, tb.log)
}

func TestEachPlayer_RepeatStaysOnPlayer(t *testing.T) {
	tb := &table{}
	reg := tb.actions(t)
	root := flow.EachPlayer(flow.Turns{Name: "turns", Do: []*flow.Node{
		flow.PlayerAction(flow.Actions{Name: "play", Actions: []string{"play"}}),
	}})
	it, env := start(t, root, reg)

	tb.again = true
	move(t, it, env, "play", "red")
	assert.Equal(t, 1, env.Players.CurrentPosition(), "repeat keeps the same player")
	assert.Equal(t, domain.PlayerRef{Position: 1}, it.Position()[0].Value)

	restored := roundTrip(t, it, reg)
	env2 := newEnv(t, 3)
	require.NoError(t, env2.Players.SetCurrent(1))
	assert.Equal(t, domain.PlayerRef{Position: 1}, restored.Position()[0].Value)

	tb.again = true
	move(t, restored, env2, "play", "blue")
	assert.Equal(t, 1, env2.Players.CurrentPosition())

	move(t, restored, env2, "play", "red")
	assert.Equal(t, 2, env2.Players.CurrentPosition())
	assert.Equal(t, domain.PlayerRef{Position: 2}, restored.Position()[0].Value)
}
