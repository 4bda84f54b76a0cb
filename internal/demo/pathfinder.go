// Package demo ships Pathfinder, a small complete game used by the CLI, the
// adapters and their tests.
//
// Hikers leave camp and race to the summit along two trails. Every step costs
// stamina, resting restores it, and a treasure is buried somewhere on the way.
// The first hiker on the summit wins; if nobody makes it before the last round,
// whoever dug up the treasure does.
package demo

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/aretw0/tabula/pkg/action"
	"github.com/aretw0/tabula/pkg/board"
	"github.com/aretw0/tabula/pkg/domain"
	"github.com/aretw0/tabula/pkg/flow"
	"github.com/aretw0/tabula/pkg/game"
	"github.com/aretw0/tabula/pkg/ports"
	"github.com/aretw0/tabula/pkg/rules"
)

const (
	Name = "pathfinder"

	Camp   = "camp"
	Summit = "summit"

	// MaxStamina is restored by resting.
	MaxStamina = 3
)

// Trails lists every space with its neighbours.
var Trails = map[string][]string{
	Camp:     {"meadow", "forest"},
	"meadow": {"ridge"},
	"forest": {"cave"},
	"cave":   {"ridge"},
	"ridge":  {Summit},
}

var spaces = []string{Camp, "meadow", "forest", "cave", "ridge", Summit}

// Settings are the table options of a Pathfinder game.
type Settings struct {
	Rounds int `json:"rounds"`
}

// DecodeSettings reads settings, applying defaults.
func DecodeSettings(v domain.Values) (Settings, error) {
	s := Settings{Rounds: 6}
	if err := v.Decode(&s); err != nil {
		return Settings{}, err
	}
	if s.Rounds < 1 {
		return Settings{}, fmt.Errorf("rounds must be positive, got %d", s.Rounds)
	}
	return s, nil
}

// Hiker returns the piece id of the player's hiker.
func Hiker(position int) string { return fmt.Sprintf("hiker-%d", position) }

func staminaKey(position int) string { return fmt.Sprintf("stamina.%d", position) }

func dugKey(space string) string { return "dug." + space }

func graph(env *rules.Env) *board.Graph { return rules.MustBoard[*board.Graph](env) }

func hikerAt(env *rules.Env) string {
	p, ok := graph(env).Piece(Hiker(env.Player.Position))
	if !ok {
		return ""
	}
	return p.Space
}

// Stamina returns a player's stamina as recorded on the board.
func Stamina(g *board.Graph, position int) int {
	return g.Vars().Int(staminaKey(position), 0)
}

// Winner returns the winning position, 0 while undecided or when nobody won.
func Winner(g *board.Graph) int {
	return g.Vars().Int("winner", 0)
}

func setup(env *rules.Env) error {
	g := graph(env)
	for _, id := range spaces {
		if err := g.AddSpace(id, strings.ToUpper(id[:1])+id[1:]); err != nil {
			return err
		}
	}
	for _, from := range spaces {
		for _, to := range Trails[from] {
			if err := g.Connect(from, to); err != nil {
				return err
			}
		}
	}
	for _, p := range env.Players.All() {
		if err := g.AddPiece(board.Piece{ID: Hiker(p.Position), Kind: "hiker", Owner: p.Position, Space: Camp}); err != nil {
			return err
		}
		g.SetVar(staminaKey(p.Position), MaxStamina)
	}
	// Camp and summit never hold the treasure.
	hideouts := spaces[1 : len(spaces)-1]
	spot := hideouts[env.Rand.IntN(len(hideouts))]
	if err := g.AddPiece(board.Piece{ID: "treasure", Kind: "treasure", Space: spot, Hidden: true}); err != nil {
		return err
	}
	g.SetVar("round", 0)
	return nil
}

var errBadName = errors.New("a name needs 1 to 20 characters")

func actions() []*action.Action {
	introduce := action.New("introduce", "Introduce your hiker").Select(
		action.Text("name", "What is your hiker called?", func(text string) error {
			if n := utf8.RuneCountInString(strings.TrimSpace(text)); n == 0 || n > 20 {
				return errBadName
			}
			return nil
		}),
	).Do(func(env *rules.Env, args action.Args) (rules.Signal, error) {
		graph(env).SetVar(fmt.Sprintf("name.%d", env.Player.Position), strings.TrimSpace(args.String(0)))
		return rules.Continue, nil
	})

	move := action.New("move", "Walk the trail").
		When(func(env *rules.Env) bool { return Stamina(graph(env), env.Player.Position) > 0 }).
		Select(
			action.Element("to", "Where to?", func(env *rules.Env, _ action.Args) []domain.ElementRef {
				return board.Refs(graph(env).Neighbors(hikerAt(env))...)
			}),
		).
		Do(func(env *rules.Env, args action.Args) (rules.Signal, error) {
			g := graph(env)
			to := args.Element(0).ID
			if err := g.MovePiece(Hiker(env.Player.Position), to); err != nil {
				return rules.Continue, err
			}
			g.SetVar(staminaKey(env.Player.Position), Stamina(g, env.Player.Position)-1)
			if to == Summit && Winner(g) == 0 {
				g.SetVar("winner", env.Player.Position)
			}
			return rules.Continue, nil
		})

	rest := action.New("rest", "Rest and recover").Do(func(env *rules.Env, _ action.Args) (rules.Signal, error) {
		graph(env).SetVar(staminaKey(env.Player.Position), MaxStamina)
		return rules.Continue, nil
	})

	dig := action.New("dig", "Dig for treasure").
		When(func(env *rules.Env) bool {
			at := hikerAt(env)
			if at == Camp || at == Summit || at == "" {
				return false
			}
			_, dug := graph(env).Vars()[dugKey(at)]
			return !dug
		}).
		Select(action.Confirm("Dig here?")).
		Do(func(env *rules.Env, _ action.Args) (rules.Signal, error) {
			g := graph(env)
			at := hikerAt(env)
			g.SetVar(dugKey(at), env.Player.Position)
			if len(g.Pieces(board.On(at), board.OfKind("treasure"))) == 0 {
				return rules.Continue, nil
			}
			if err := g.RemovePiece("treasure"); err != nil {
				return rules.Continue, err
			}
			g.SetVar("treasure", env.Player.Position)
			return rules.Continue, nil
		})

	return []*action.Action{introduce, move, rest, dig}
}

func expeditionGoesOn(env *rules.Env) bool {
	g := graph(env)
	s, err := DecodeSettings(env.Settings)
	if err != nil {
		return false
	}
	return Winner(g) == 0 && g.Vars().Int("round", 0) < s.Rounds
}

func flowTree() *flow.Node {
	return flow.Sequence(
		flow.EachPlayer(flow.Turns{Name: "introductions", Do: []*flow.Node{
			flow.PlayerAction(flow.Actions{Name: "introduce", Prompt: "Introduce yourself", Actions: []string{"introduce"}}),
		}}),
		flow.WhileLoop(flow.While{Name: "expedition", Test: expeditionGoesOn, Do: []*flow.Node{
			flow.Step("new-round", func(env *rules.Env) (rules.Signal, error) {
				g := graph(env)
				g.SetVar("round", g.Vars().Int("round", 0)+1)
				return rules.Continue, nil
			}),
			flow.EachPlayer(flow.Turns{Name: "turns", Do: []*flow.Node{
				flow.IfElse(flow.If{
					Name: "winner-decided",
					Test: func(env *rules.Env) bool { return Winner(graph(env)) != 0 },
					Then: []*flow.Node{flow.Signal("skip-turn", rules.Skip)},
				}),
				flow.IfElse(flow.If{
					Name: "exhausted",
					Test: func(env *rules.Env) bool { return Stamina(graph(env), env.Player.Position) == 0 },
					Then: []*flow.Node{flow.PlayerAction(flow.Actions{Name: "recover", Prompt: "You are exhausted", Actions: []string{"rest"}})},
					Else: []*flow.Node{flow.PlayerAction(flow.Actions{Name: "turn", Prompt: "Your turn", Actions: []string{"move", "dig", "rest"}})},
				}),
			}}),
		}}),
		flow.Step("score", func(env *rules.Env) (rules.Signal, error) {
			g := graph(env)
			if Winner(g) == 0 {
				g.SetVar("winner", g.Vars().Int("treasure", 0))
			}
			return rules.Continue, nil
		}),
	)
}

// Definition returns a fresh Pathfinder definition for 1 to 4 players.
func Definition(policy game.ConfirmPolicy) *game.Definition {
	return game.New(Name).
		DefinePlayers(1, 4).
		DefineBoard(func() ports.Board { return board.New() }, setup).
		DefineActions(actions()...).
		DefineFlow(flowTree()).
		WithConfirmPolicy(policy).
		WithActionPrompt("What will you do?")
}

// Rules is the player-facing rulebook in markdown.
const Rules = `# Pathfinder

Race your hiker from **camp** to the **summit**.

| Action | Effect |
| --- | --- |
| move | Walk to a neighbouring space. Costs 1 stamina. |
| rest | Restore stamina to 3. |
| dig | Search the current space for the hidden treasure. Each space can be dug once. |

Two trails lead up: ` + "`camp → meadow → ridge → summit`" + ` and ` + "`camp → forest → cave → ridge → summit`" + `.
A hiker out of stamina must rest. The first hiker on the summit wins.
If nobody arrives before the last round, the treasure finder wins.
`
