package tui

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/aretw0/tabula/pkg/domain"
	"github.com/muesli/termenv"
)

// ErrBadAnswer is returned when typed input does not fit the selection.
var ErrBadAnswer = errors.New("answer does not fit the selection")

// Styler formats prompts for a terminal color profile.
type Styler struct {
	profile termenv.Profile
}

// NewStyler returns a Styler for profile. Use termenv.Ascii for plain output.
func NewStyler(profile termenv.Profile) *Styler {
	return &Styler{profile: profile}
}

func (s *Styler) color(text, hex string) string {
	return termenv.String(text).Foreground(s.profile.Color(hex)).String()
}

// Heading styles a section title.
func (s *Styler) Heading(text string) string {
	return termenv.String(text).Bold().Foreground(s.profile.Color("#38bdf8")).String()
}

// Error styles an in-band rejection.
func (s *Styler) Error(text string) string {
	return s.color("✗ "+text, "#f87171")
}

// Selection describes what the player is asked for, one option per line.
func (s *Styler) Selection(sel *domain.ResolvedSelection) string {
	var sb strings.Builder
	prompt := sel.Prompt
	if prompt == "" {
		prompt = sel.Name
	}
	sb.WriteString(s.Heading(prompt))
	sb.WriteString("\n")

	switch sel.Kind {
	case domain.SelectChoices:
		for i, c := range sel.Choices {
			label := c.Label
			if label == "" {
				label = domain.FormatArg(c.Value)
			}
			fmt.Fprintf(&sb, "  %s %s\n", s.color(fmt.Sprintf("%d)", i+1), "#a78bfa"), label)
		}
	case domain.SelectBoard:
		for i, e := range sel.Elements {
			fmt.Fprintf(&sb, "  %s %s\n", s.color(fmt.Sprintf("%d)", i+1), "#a78bfa"), e.ID)
		}
	case domain.SelectNumber:
		lo, hi := "-∞", "∞"
		if sel.Min != nil {
			lo = strconv.Itoa(*sel.Min)
		}
		if sel.Max != nil {
			hi = strconv.Itoa(*sel.Max)
		}
		fmt.Fprintf(&sb, "  %s\n", s.color(fmt.Sprintf("a number from %s to %s", lo, hi), "#94a3b8"))
	case domain.SelectButton:
		fmt.Fprintf(&sb, "  %s\n", s.color("press enter", "#94a3b8"))
	case domain.SelectText:
		fmt.Fprintf(&sb, "  %s\n", s.color("type your answer", "#94a3b8"))
	}
	return sb.String()
}

// ParseAnswer maps typed input to an argument for sel. Choices and board
// elements accept their 1-based index or their value.
func ParseAnswer(sel *domain.ResolvedSelection, input string) (domain.Argument, error) {
	input, err := SanitizeInput(input)
	if err != nil {
		return nil, err
	}
	input = strings.TrimSpace(input)
	switch sel.Kind {
	case domain.SelectButton:
		return sel.Value, nil
	case domain.SelectText:
		return input, nil
	case domain.SelectNumber:
		n, err := strconv.Atoi(input)
		if err != nil {
			return nil, fmt.Errorf("%w: %q is not a number", ErrBadAnswer, input)
		}
		return n, nil
	case domain.SelectChoices:
		if i, err := strconv.Atoi(input); err == nil && i >= 1 && i <= len(sel.Choices) {
			return sel.Choices[i-1].Value, nil
		}
		for _, c := range sel.Choices {
			if domain.FormatArg(c.Value) == input || (c.Label != "" && strings.EqualFold(c.Label, input)) {
				return c.Value, nil
			}
		}
	case domain.SelectBoard:
		if i, err := strconv.Atoi(input); err == nil && i >= 1 && i <= len(sel.Elements) {
			return sel.Elements[i-1], nil
		}
		for _, e := range sel.Elements {
			if e.ID == input {
				return e, nil
			}
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrBadAnswer, input)
}
