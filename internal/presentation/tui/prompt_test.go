package tui

import (
	"testing"

	"github.com/aretw0/tabula/pkg/domain"
	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStyler_Selection(t *testing.T) {
	s := NewStyler(termenv.Ascii)

	out := s.Selection(&domain.ResolvedSelection{
		Name:    domain.ActionSelectionName,
		Kind:    domain.SelectChoices,
		Prompt:  "What will you do?",
		Choices: []domain.Choice{{Value: "move", Label: "Walk the trail"}, {Value: "rest"}},
	})
	assert.Equal(t, "What will you do?\n  1) Walk the trail\n  2) rest\n", out)

	lo, hi := 1, 6
	out = s.Selection(&domain.ResolvedSelection{Name: "steps", Kind: domain.SelectNumber, Min: &lo, Max: &hi})
	assert.Contains(t, out, "steps\n")
	assert.Contains(t, out, "a number from 1 to 6")
}

func TestParseAnswer(t *testing.T) {
	choices := &domain.ResolvedSelection{Kind: domain.SelectChoices, Choices: []domain.Choice{
		{Value: "move", Label: "Walk"}, {Value: 7},
	}}
	v, err := ParseAnswer(choices, "1")
	require.NoError(t, err)
	assert.Equal(t, "move", v)

	v, err = ParseAnswer(choices, "walk")
	require.NoError(t, err)
	assert.Equal(t, "move", v)

	v, err = ParseAnswer(choices, "7")
	require.NoError(t, err)
	assert.Equal(t, 7, v, "out-of-range index falls back to value match")

	_, err = ParseAnswer(choices, "fly")
	assert.ErrorIs(t, err, ErrBadAnswer)

	board := &domain.ResolvedSelection{Kind: domain.SelectBoard, Elements: []domain.ElementRef{{ID: "meadow"}, {ID: "forest"}}}
	v, err = ParseAnswer(board, "forest")
	require.NoError(t, err)
	assert.Equal(t, domain.ElementRef{ID: "forest"}, v)
	v, err = ParseAnswer(board, "1")
	require.NoError(t, err)
	assert.Equal(t, domain.ElementRef{ID: "meadow"}, v)

	v, err = ParseAnswer(&domain.ResolvedSelection{Kind: domain.SelectNumber}, " 3 ")
	require.NoError(t, err)
	assert.Equal(t, 3, v)
	_, err = ParseAnswer(&domain.ResolvedSelection{Kind: domain.SelectNumber}, "three")
	assert.ErrorIs(t, err, ErrBadAnswer)

	v, err = ParseAnswer(&domain.ResolvedSelection{Kind: domain.SelectButton, Value: true}, "")
	require.NoError(t, err)
	assert.Equal(t, true, v)

	v, err = ParseAnswer(&domain.ResolvedSelection{Kind: domain.SelectText}, "  Ada ")
	require.NoError(t, err)
	assert.Equal(t, "Ada", v)
}
