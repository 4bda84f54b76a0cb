package graph_test

import (
	"strings"
	"testing"

	"github.com/aretw0/tabula/internal/presentation/graph"
	"github.com/aretw0/tabula/pkg/domain"
	"github.com/aretw0/tabula/pkg/flow"
	"github.com/aretw0/tabula/pkg/rules"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleTree(t *testing.T) *flow.Tree {
	t.Helper()
	tree, err := flow.Build(flow.Sequence(
		flow.Step("deal-cards", func(*rules.Env) (rules.Signal, error) { return rules.Continue, nil }),
		flow.EachPlayer(flow.Turns{Name: "turns", Do: []*flow.Node{
			flow.IfElse(flow.If{
				Name: "has-cards",
				Test: func(*rules.Env) bool { return true },
				Then: []*flow.Node{flow.PlayerAction(flow.Actions{Name: "play", Actions: []string{"play", "pass"}})},
				Else: []*flow.Node{flow.PlayerAction(flow.Actions{Name: "draw", Actions: []string{"draw"}})},
			}),
		}}),
		flow.SwitchCase(flow.Switch{
			Name:    "mode",
			On:      func(*rules.Env) domain.Argument { return "fast" },
			Cases:   []flow.Case{{Eq: `say "hi"`, Do: []*flow.Node{flow.Signal("noop", rules.Continue)}}},
			Default: []*flow.Node{flow.Signal("other", rules.Continue)},
		}),
	))
	require.NoError(t, err)
	return tree
}

func TestGenerateMermaid(t *testing.T) {
	got := graph.GenerateMermaid(sampleTree(t), nil)

	for _, want := range []string{
		"graph TD\n",
		`sequence_1(("sequence.1"))`,
		`deal_cards[["deal-cards"]]`,
		`turns{{"turns <br/> ↻ player"}}`,
		`has_cards{"has-cards"}`,
		`play[/"play <br/> play, pass"/]`,
		`has_cards -- "then" --> play`,
		`has_cards -- "else" --> draw`,
		`sequence_1 -- "2" --> turns`,
		`mode -- "= say 'hi'" --> noop`,
		`mode -- "default" --> other`,
	} {
		assert.Contains(t, got, want)
	}
	assert.NotContains(t, got, "classDef")
}

func TestGenerateMermaid_Overlay(t *testing.T) {
	tree := sampleTree(t)
	pos := domain.Position{
		{Node: "sequence.1", Index: 1},
		{Node: "turns", Index: 0},
		{Node: "has-cards", Index: 0},
		{Node: "play"},
	}
	got := graph.GenerateMermaid(tree, &graph.Overlay{Position: pos})

	assert.Contains(t, got, "class sequence_1 visited;")
	assert.Contains(t, got, "class has_cards visited;")
	assert.Contains(t, got, "class play current;")
	assert.Equal(t, 1, strings.Count(got, " current;"))
}
