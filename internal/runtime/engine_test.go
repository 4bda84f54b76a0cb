package runtime_test

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/aretw0/tabula/internal/runtime"
	"github.com/aretw0/tabula/pkg/action"
	"github.com/aretw0/tabula/pkg/board"
	"github.com/aretw0/tabula/pkg/domain"
	"github.com/aretw0/tabula/pkg/flow"
	"github.com/aretw0/tabula/pkg/game"
	"github.com/aretw0/tabula/pkg/ports"
	"github.com/aretw0/tabula/pkg/rules"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var spaces = []string{"A", "B", "C"}

// crossing is a tiny game: everyone gets ready, then for two rounds each
// player moves their token along A-B-C or passes.
func crossing(policy game.ConfirmPolicy) *game.Definition {
	move := action.New("move", "Move your token").Select(
		action.OneOf("from", "From where?", "A", "B", "C"),
		action.Choices("to", "To where?", func(env *rules.Env, prior action.Args) []domain.Choice {
			g := rules.MustBoard[*board.Graph](env)
			var out []domain.Choice
			for _, id := range g.Neighbors(prior.String(0)) {
				out = append(out, domain.Choice{Value: id})
			}
			return out
		}),
	).Do(func(env *rules.Env, args action.Args) (rules.Signal, error) {
		g := rules.MustBoard[*board.Graph](env)
		return rules.Continue, g.MovePiece(fmt.Sprintf("token-%d", env.Player.Position), args.String(1))
	})

	return game.New("crossing").
		DefinePlayers(2, 3).
		DefineBoard(func() ports.Board { return board.New() }, func(env *rules.Env) error {
			g := rules.MustBoard[*board.Graph](env)
			for _, id := range spaces {
				if err := g.AddSpace(id, ""); err != nil {
					return err
				}
			}
			if err := g.Connect("A", "B"); err != nil {
				return err
			}
			if err := g.Connect("B", "C"); err != nil {
				return err
			}
			for _, p := range env.Players.All() {
				if err := g.AddPiece(board.Piece{ID: fmt.Sprintf("token-%d", p.Position), Kind: "token", Owner: p.Position, Space: "A"}); err != nil {
					return err
				}
			}
			gem := spaces[env.Rand.IntN(len(spaces))]
			return g.AddPiece(board.Piece{ID: "gem", Kind: "gem", Owner: 1, Space: gem, Hidden: true})
		}).
		DefineActions(
			action.New("ready", "Get ready").Do(func(env *rules.Env, _ action.Args) (rules.Signal, error) {
				rules.MustBoard[*board.Graph](env).SetVar("ready", env.Player.Position)
				return rules.Continue, nil
			}),
			move,
			action.New("pass", "Pass"),
		).
		DefineFlow(flow.Sequence(
			flow.PlayerAction(flow.Actions{Name: "opening", Actions: []string{"ready"}}),
			flow.ForLoop(flow.For{
				Name:    "rounds",
				Var:     "round",
				Initial: func(*rules.Env) int { return 1 },
				While:   func(_ *rules.Env, r int) bool { return r <= 2 },
				Do: []*flow.Node{flow.EachPlayer(flow.Turns{Name: "turns", Do: []*flow.Node{
					flow.PlayerAction(flow.Actions{Name: "turn", Actions: []string{"move", "pass"}}),
				}})},
			}),
		)).
		WithConfirmPolicy(policy)
}

func newEngine(t *testing.T, policy game.ConfirmPolicy, opts ...runtime.EngineOption) *runtime.Engine {
	t.Helper()
	eng, err := runtime.NewEngine(crossing(policy), opts...)
	require.NoError(t, err)
	return eng
}

func setup(n int) domain.SetupState {
	s := domain.SetupState{Settings: domain.Values{"rounds": 2}, Seed: "fixed"}
	for i := 1; i <= n; i++ {
		s.Players = append(s.Players, domain.Player{Position: i, Name: fmt.Sprintf("P%d", i)})
	}
	return s
}

func mustMove(t *testing.T, eng *runtime.Engine, state *domain.GameState, m domain.Move) *domain.GameState {
	t.Helper()
	res, err := eng.ProcessMove(context.Background(), state, m)
	require.NoError(t, err)
	require.True(t, res.Accepted(), "move %s rejected: %s", m.Action, res.Response.Error)
	return res.State
}

func pieceSpace(t *testing.T, state *domain.GameState, id string) string {
	t.Helper()
	g := board.New()
	require.NoError(t, g.Deserialize(state.Board))
	p, ok := g.Piece(id)
	require.True(t, ok)
	return p.Space
}

func TestStart_ConfigurationErrors(t *testing.T) {
	eng := newEngine(t, game.ConfirmAlways)
	ctx := context.Background()

	_, err := eng.Start(ctx, domain.SetupState{})
	assert.ErrorIs(t, err, domain.ErrNoPlayers)

	_, err = eng.Start(ctx, setup(5))
	assert.ErrorIs(t, err, domain.ErrPlayerCount)

	state, err := eng.Start(ctx, setup(2))
	require.NoError(t, err)
	assert.Equal(t, "opening", state.Position[len(state.Position)-1].Node)
	assert.Equal(t, 0, state.CurrentPlayerPosition)
	assert.Equal(t, 0, state.Sequence)
}

func TestCurrentSelection_SingleActionShortcut(t *testing.T) {
	ctx := context.Background()

	eng := newEngine(t, game.ConfirmAlways)
	state, err := eng.Start(ctx, setup(2))
	require.NoError(t, err)

	resp, err := eng.CurrentSelection(ctx, state, 1)
	require.NoError(t, err)
	assert.Equal(t, "ready", resp.Move.Action)
	assert.Empty(t, resp.Move.Args)
	require.NotNil(t, resp.Selection)
	assert.Equal(t, domain.SelectButton, resp.Selection.Kind)
	assert.Equal(t, "Please confirm: Get ready", resp.Selection.Prompt)

	auto := newEngine(t, game.ConfirmAuto)
	state, err = auto.Start(ctx, setup(2))
	require.NoError(t, err)
	resp, err = auto.CurrentSelection(ctx, state, 1)
	require.NoError(t, err)
	assert.Equal(t, "ready", resp.Move.Action)
	assert.Nil(t, resp.Selection)
}

func TestCurrentSelection_MetaChoiceAndTurns(t *testing.T) {
	ctx := context.Background()
	eng := newEngine(t, game.ConfirmAlways)
	state, err := eng.Start(ctx, setup(2))
	require.NoError(t, err)
	state = mustMove(t, eng, state, domain.Move{Action: "ready", Player: 2})
	assert.Equal(t, 1, state.CurrentPlayerPosition)

	resp, err := eng.CurrentSelection(ctx, state, 1)
	require.NoError(t, err)
	require.NotNil(t, resp.Selection)
	assert.Equal(t, domain.ActionSelectionName, resp.Selection.Name)
	assert.True(t, resp.Selection.HasChoice("move"))
	assert.True(t, resp.Selection.HasChoice("pass"))

	resp, err = eng.CurrentSelection(ctx, state, 2)
	require.NoError(t, err)
	assert.Nil(t, resp.Selection, "not player 2's turn")

	names, err := eng.AllowedActions(ctx, state, 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"move", "pass"}, names)

	_, err = eng.CurrentSelection(ctx, state, 9)
	assert.ErrorIs(t, err, domain.ErrInvalidPlayer)
}

func TestProcessMove_FromToScenario(t *testing.T) {
	ctx := context.Background()
	eng := newEngine(t, game.ConfirmAlways)
	state, err := eng.Start(ctx, setup(2))
	require.NoError(t, err)
	state = mustMove(t, eng, state, domain.Move{Action: "ready", Player: 1})

	res, err := eng.ProcessMove(ctx, state, domain.Move{Action: "move", Player: 1, Args: []domain.Argument{"A"}})
	require.NoError(t, err)
	assert.False(t, res.Accepted())
	assert.Empty(t, res.Response.Error)
	require.NotNil(t, res.Response.Selection)
	assert.Equal(t, "to", res.Response.Selection.Name)
	require.Len(t, res.Response.Selection.Choices, 1)
	assert.Equal(t, "B", res.Response.Selection.Choices[0].Value)
	assert.Equal(t, []domain.Argument{"A"}, res.Response.Move.Args)

	res, err = eng.ProcessMove(ctx, state, domain.Move{Action: "move", Player: 1, Args: []domain.Argument{"A", "B"}})
	require.NoError(t, err)
	require.True(t, res.Accepted())
	assert.Equal(t, "B", pieceSpace(t, res.State, "token-1"))
	assert.Equal(t, 2, res.State.CurrentPlayerPosition, "flow advanced to the next turn")
	assert.Equal(t, 2, res.State.Sequence)
	assert.Len(t, res.Players, 2)
	assert.Equal(t, "A", pieceSpace(t, state, "token-1"), "input state is untouched")
}

func TestProcessMove_InBandErrors(t *testing.T) {
	ctx := context.Background()
	var rejected []string
	hooks := domain.LifecycleHooks{OnMoveRejected: func(_ context.Context, e *domain.MoveEvent) {
		rejected = append(rejected, e.Problem)
	}}
	eng := newEngine(t, game.ConfirmAlways, runtime.WithLifecycleHooks(hooks))
	state, err := eng.Start(ctx, setup(2))
	require.NoError(t, err)
	state = mustMove(t, eng, state, domain.Move{Action: "ready", Player: 1})

	cases := []struct {
		name string
		move domain.Move
		want string
	}{
		{"unknown action", domain.Move{Action: "fly", Player: 1}, `unknown action "fly"`},
		{"not your turn", domain.Move{Action: "pass", Player: 2}, "not player 2's turn"},
		{"not allowed here", domain.Move{Action: "ready", Player: 1}, "not allowed now"},
		{"bad argument", domain.Move{Action: "move", Player: 1, Args: []domain.Argument{"A", "C"}}, "not a valid choice"},
		{"type mismatch", domain.Move{Action: "move", Player: 1, Args: []domain.Argument{true}}, "not a valid choice"},
		{"unknown player", domain.Move{Action: "pass", Player: 7}, "no player at position 7"},
		{"no action", domain.Move{Player: 1}, "no action given"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			res, err := eng.ProcessMove(ctx, state, tc.move)
			require.NoError(t, err)
			assert.False(t, res.Accepted())
			assert.Nil(t, res.State)
			assert.Contains(t, res.Response.Error, tc.want)
		})
	}
	assert.Len(t, rejected, len(cases))

	res, err := eng.ProcessMove(ctx, state, domain.Move{Action: "move", Player: 1, Args: []domain.Argument{"A", "C"}})
	require.NoError(t, err)
	require.NotNil(t, res.Response.Selection)
	assert.Equal(t, "to", res.Response.Selection.Name)
	assert.Equal(t, []domain.Argument{"A"}, res.Response.Move.Args, "accepted prefix only")
}

func TestProcessMove_GameOver(t *testing.T) {
	ctx := context.Background()
	eng := newEngine(t, game.ConfirmAlways)
	state, err := eng.Start(ctx, setup(2))
	require.NoError(t, err)
	state = mustMove(t, eng, state, domain.Move{Action: "ready", Player: 1})
	for range 2 {
		state = mustMove(t, eng, state, domain.Move{Action: "pass", Player: 1})
		state = mustMove(t, eng, state, domain.Move{Action: "pass", Player: 2})
	}
	assert.True(t, state.Finished)
	assert.Empty(t, state.Position)

	res, err := eng.ProcessMove(ctx, state, domain.Move{Action: "pass", Player: 2})
	require.NoError(t, err)
	assert.Equal(t, "the game is over", res.Response.Error)

	resp, err := eng.CurrentSelection(ctx, state, 1)
	require.NoError(t, err)
	assert.Nil(t, resp.Selection)
}

func TestState_RoundTripAndDeterminism(t *testing.T) {
	ctx := context.Background()
	eng := newEngine(t, game.ConfirmAlways)
	moves := []domain.Move{
		{Action: "ready", Player: 2},
		{Action: "move", Player: 1, Args: []domain.Argument{"A", "B"}},
		{Action: "pass", Player: 2},
	}
	a, err := eng.Replay(ctx, setup(2), moves)
	require.NoError(t, err)
	b, err := eng.Replay(ctx, setup(2), moves)
	require.NoError(t, err)
	assert.True(t, a.Equal(b), "identical inputs give identical states")

	raw, err := json.Marshal(a)
	require.NoError(t, err)
	var decoded domain.GameState
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.True(t, a.Equal(&decoded))
	assert.True(t, a.Position.Equal(decoded.Position))
	assert.Equal(t, 2, decoded.Settings["rounds"])

	next := domain.Move{Action: "move", Player: 1, Args: []domain.Argument{"B", "C"}}
	fromOriginal := mustMove(t, eng, a, next)
	fromDecoded := mustMove(t, eng, &decoded, next)
	assert.True(t, fromOriginal.Equal(fromDecoded))

	_, err = eng.Replay(ctx, setup(2), []domain.Move{{Action: "pass", Player: 1}})
	assert.ErrorIs(t, err, runtime.ErrMoveRejected)
}

func TestStart_SeedDrivesSetup(t *testing.T) {
	ctx := context.Background()
	eng := newEngine(t, game.ConfirmAlways)
	gems := map[string]bool{}
	for i := range 12 {
		s := setup(2)
		s.Seed = fmt.Sprintf("seed-%d", i)
		a, err := eng.Start(ctx, s)
		require.NoError(t, err)
		b, err := eng.Start(ctx, s)
		require.NoError(t, err)
		assert.Equal(t, pieceSpace(t, a, "gem"), pieceSpace(t, b, "gem"))
		gems[pieceSpace(t, a, "gem")] = true
	}
	assert.Greater(t, len(gems), 1, "different seeds place the gem differently")
}

func TestPlayerStates_FilterHiddenPieces(t *testing.T) {
	ctx := context.Background()
	eng := newEngine(t, game.ConfirmAlways)
	state, err := eng.Start(ctx, setup(2))
	require.NoError(t, err)

	views, err := eng.PlayerStates(ctx, state)
	require.NoError(t, err)
	require.Len(t, views, 2)
	assert.NotEmpty(t, pieceSpace(t, &views[0].State, "gem"), "owner sees the gem")
	assert.Empty(t, pieceSpace(t, &views[1].State, "gem"), "others do not")
	assert.Equal(t, state.Position, views[1].State.Position)
}

func TestCurrentSelection_InvariantViolation(t *testing.T) {
	calls := 0
	flaky := action.New("draw", "Draw").Select(action.Choices("card", "", func(*rules.Env, action.Args) []domain.Choice {
		calls++
		if calls > 1 {
			return nil
		}
		return action.Options("x")
	}))
	def := game.New("flaky").
		DefineBoard(func() ports.Board { return board.New() }, nil).
		DefineActions(flaky).
		DefineFlow(flow.PlayerAction(flow.Actions{Actions: []string{"draw"}}))
	eng, err := runtime.NewEngine(def)
	require.NoError(t, err)

	state, err := eng.Start(context.Background(), setup(1))
	require.NoError(t, err)

	_, err = eng.CurrentSelection(context.Background(), state, 1)
	var inv *runtime.InvariantError
	require.ErrorAs(t, err, &inv)
	assert.Equal(t, "currentSelection", inv.Op)
}

func TestProcessMove_HooksAndRules(t *testing.T) {
	ctx := context.Background()
	accepted, entered, suspended := 0, 0, 0
	hooks := domain.LifecycleHooks{
		OnMoveAccepted: func(context.Context, *domain.MoveEvent) { accepted++ },
		OnNodeEnter:    func(context.Context, *domain.NodeEvent) { entered++ },
		OnSuspend:      func(context.Context, *domain.NodeEvent) { suspended++ },
	}
	eng := newEngine(t, game.ConfirmAlways, runtime.WithLifecycleHooks(hooks))
	state, err := eng.Start(ctx, setup(2))
	require.NoError(t, err)
	state = mustMove(t, eng, state, domain.Move{Action: "ready", Player: 1})

	assert.Equal(t, 1, accepted)
	assert.Equal(t, 2, suspended)
	assert.Positive(t, entered)

	env, err := eng.Rules(state, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, env.IntVar("round"))
	assert.Equal(t, "P1", env.Player.Name)
}
