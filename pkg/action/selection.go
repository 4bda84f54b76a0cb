package action

import (
	"fmt"
	"strconv"

	"github.com/aretw0/tabula/pkg/domain"
	"github.com/aretw0/tabula/pkg/rules"
)

// Args is an ordered list of accepted arguments.
type Args []domain.Argument

// Int returns the argument at i as an int.
func (a Args) Int(i int) int {
	if i >= len(a) {
		return 0
	}
	n, _ := domain.NormalizeArg(a[i]).(int)
	return n
}

// String returns the argument at i as a string.
func (a Args) String(i int) string {
	if i >= len(a) {
		return ""
	}
	s, _ := a[i].(string)
	return s
}

// Element returns the argument at i as a board element reference.
func (a Args) Element(i int) domain.ElementRef {
	if i >= len(a) {
		return domain.ElementRef{}
	}
	ref, _ := a[i].(domain.ElementRef)
	return ref
}

// Player returns the argument at i as a player reference.
func (a Args) Player(i int) domain.PlayerRef {
	if i >= len(a) {
		return domain.PlayerRef{}
	}
	ref, _ := a[i].(domain.PlayerRef)
	return ref
}

// ChoiceFunc computes the legal choices from live state and the prior arguments.
type ChoiceFunc func(env *rules.Env, prior Args) []domain.Choice

// BoundsFunc computes an inclusive numeric range.
type BoundsFunc func(env *rules.Env, prior Args) (lo, hi int)

// ElementFunc computes the board elements that may be picked.
type ElementFunc func(env *rules.Env, prior Args) []domain.ElementRef

// TextFunc validates free text. A nil error accepts it.
type TextFunc func(text string) error

// Selection is one declared argument slot. It is state independent: legal values
// are only computed when it is resolved.
type Selection struct {
	name   string
	prompt string
	kind   domain.SelectionKind

	choices  ChoiceFunc
	bounds   BoundsFunc
	elements ElementFunc
	validate TextFunc
	value    domain.Argument
}

// Choices declares a pick among computed choices.
func Choices(name, prompt string, fn ChoiceFunc) Selection {
	return Selection{name: name, prompt: prompt, kind: domain.SelectChoices, choices: fn}
}

// OneOf declares a pick among fixed values.
func OneOf(name, prompt string, values ...domain.Argument) Selection {
	opts := Options(values...)
	return Choices(name, prompt, func(*rules.Env, Args) []domain.Choice { return opts })
}

// Options labels each value with its display form.
func Options(values ...domain.Argument) []domain.Choice {
	out := make([]domain.Choice, len(values))
	for i, v := range values {
		out[i] = domain.Choice{Value: v, Label: domain.FormatArg(v)}
	}
	return out
}

// Number declares an integer in [lo, hi].
func Number(name, prompt string, lo, hi int) Selection {
	return NumberRange(name, prompt, func(*rules.Env, Args) (int, int) { return lo, hi })
}

// NumberRange declares an integer whose bounds depend on state.
func NumberRange(name, prompt string, fn BoundsFunc) Selection {
	return Selection{name: name, prompt: prompt, kind: domain.SelectNumber, bounds: fn}
}

// Text declares free text, optionally validated.
func Text(name, prompt string, validate TextFunc) Selection {
	return Selection{name: name, prompt: prompt, kind: domain.SelectText, validate: validate}
}

// Button declares a single fixed value submitted by pressing a button.
func Button(name, prompt string, value domain.Argument) Selection {
	return Selection{name: name, prompt: prompt, kind: domain.SelectButton, value: value}
}

// Confirm declares a yes-only confirmation.
func Confirm(prompt string) Selection {
	return Button("confirm", prompt, true)
}

// Element declares a pick of one board element.
func Element(name, prompt string, fn ElementFunc) Selection {
	return Selection{name: name, prompt: prompt, kind: domain.SelectBoard, elements: fn}
}

// Name returns the argument name.
func (s Selection) Name() string { return s.name }

// Kind returns the selection kind.
func (s Selection) Kind() domain.SelectionKind { return s.kind }

// Prompt returns the human readable prompt.
func (s Selection) Prompt() string { return s.prompt }

// Resolve computes the presentable selection against live state.
func (s Selection) Resolve(env *rules.Env, prior Args) *domain.ResolvedSelection {
	rs := &domain.ResolvedSelection{Name: s.name, Kind: s.kind, Prompt: s.prompt}
	switch s.kind {
	case domain.SelectChoices:
		if s.choices != nil {
			for _, c := range s.choices(env, prior) {
				c.Value = domain.NormalizeArg(c.Value)
				if c.Label == "" {
					c.Label = domain.FormatArg(c.Value)
				}
				rs.Choices = append(rs.Choices, c)
			}
		}
	case domain.SelectNumber:
		lo, hi := 1, 1
		if s.bounds != nil {
			lo, hi = s.bounds(env, prior)
		}
		rs.Min, rs.Max = &lo, &hi
	case domain.SelectBoard:
		if s.elements != nil {
			rs.Elements = s.elements(env, prior)
		}
	case domain.SelectButton:
		rs.Value = s.value
		rs.Choices = []domain.Choice{{Value: s.value, Label: s.prompt}}
	}
	return rs
}

// accept checks one provided argument against the resolved selection.
// It returns the canonical value, or a problem description.
func (s Selection) accept(rs *domain.ResolvedSelection, arg domain.Argument) (domain.Argument, string) {
	arg = domain.NormalizeArg(arg)
	switch s.kind {
	case domain.SelectChoices:
		for _, c := range rs.Choices {
			if domain.ArgEqual(c.Value, arg) {
				return c.Value, ""
			}
		}
		return nil, fmt.Sprintf("%q is not a valid choice for %s", domain.FormatArg(arg), s.name)
	case domain.SelectNumber:
		n, ok := arg.(int)
		if !ok {
			str, isStr := arg.(string)
			parsed, err := strconv.Atoi(str)
			if !isStr || err != nil {
				return nil, fmt.Sprintf("%s must be a whole number", s.name)
			}
			n = parsed
		}
		if n < *rs.Min || n > *rs.Max {
			return nil, fmt.Sprintf("%s must be between %d and %d", s.name, *rs.Min, *rs.Max)
		}
		return n, ""
	case domain.SelectText:
		str, ok := arg.(string)
		if !ok {
			return nil, fmt.Sprintf("%s must be text", s.name)
		}
		if s.validate != nil {
			if err := s.validate(str); err != nil {
				return nil, err.Error()
			}
		}
		return str, ""
	case domain.SelectButton:
		if !domain.ArgEqual(arg, rs.Value) {
			return nil, fmt.Sprintf("%s only accepts %q", s.name, domain.FormatArg(rs.Value))
		}
		return rs.Value, ""
	case domain.SelectBoard:
		ref, ok := arg.(domain.ElementRef)
		if !ok {
			id, isStr := arg.(string)
			if !isStr {
				return nil, fmt.Sprintf("%s must be a board element", s.name)
			}
			ref = domain.ElementRef{ID: id}
		}
		if !rs.HasElement(ref) {
			return nil, fmt.Sprintf("%q is not a valid %s", ref.ID, s.name)
		}
		return ref, ""
	}
	return nil, fmt.Sprintf("%s has unknown kind %q", s.name, s.kind)
}
