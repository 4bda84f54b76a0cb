package domain

import (
	"encoding/json"
	"fmt"
)

// SelectionKind defines the kind of input a selection asks for.
type SelectionKind string

const (
	SelectChoices SelectionKind = "choices"
	SelectNumber  SelectionKind = "number"
	SelectText    SelectionKind = "text"
	SelectButton  SelectionKind = "button"
	SelectBoard   SelectionKind = "board"
)

// ActionSelectionName names the meta-selection used to pick between several actions.
const ActionSelectionName = "__action__"

// Choice is one legal value of a choices selection.
type Choice struct {
	Value Argument
	Label string
}

type choiceJSON struct {
	Value any    `json:"value"`
	Label string `json:"label,omitempty"`
}

// MarshalJSON encodes the choice value in wire form.
func (c Choice) MarshalJSON() ([]byte, error) {
	v, err := SerializeArg(c.Value)
	if err != nil {
		return nil, err
	}
	return json.Marshal(choiceJSON{Value: v, Label: c.Label})
}

// UnmarshalJSON restores the typed choice value.
func (c *Choice) UnmarshalJSON(data []byte) error {
	var raw choiceJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	v, err := DeserializeArg(raw.Value)
	if err != nil {
		return err
	}
	*c = Choice{Value: v, Label: raw.Label}
	return nil
}

// ResolvedSelection is a concrete, presentable description of the next
// argument still needed, with the legal values computed against live state.
type ResolvedSelection struct {
	Name     string        `json:"name"`
	Kind     SelectionKind `json:"type"`
	Prompt   string        `json:"prompt,omitempty"`
	Choices  []Choice      `json:"choices,omitempty"`
	Min      *int          `json:"min,omitempty"`
	Max      *int          `json:"max,omitempty"`
	Elements []ElementRef  `json:"elements,omitempty"`
	// Value is the single value submitted by a button.
	Value Argument `json:"-"`
}

// Forced returns the only legal value when the selection can be collapsed
// without prompting.
func (s *ResolvedSelection) Forced() (Argument, bool) {
	switch s.Kind {
	case SelectButton:
		return s.Value, true
	case SelectChoices:
		if len(s.Choices) == 1 {
			return s.Choices[0].Value, true
		}
	case SelectNumber:
		if s.Min != nil && s.Max != nil && *s.Min == *s.Max {
			return *s.Min, true
		}
	case SelectBoard:
		if len(s.Elements) == 1 {
			return s.Elements[0], true
		}
	}
	return nil, false
}

// Impossible reports whether no legal value exists.
func (s *ResolvedSelection) Impossible() bool {
	switch s.Kind {
	case SelectChoices:
		return len(s.Choices) == 0
	case SelectNumber:
		return s.Min != nil && s.Max != nil && *s.Min > *s.Max
	case SelectBoard:
		return len(s.Elements) == 0
	}
	return false
}

// HasChoice reports whether v is one of the offered choices.
func (s *ResolvedSelection) HasChoice(v Argument) bool {
	for _, c := range s.Choices {
		if ArgEqual(c.Value, v) {
			return true
		}
	}
	return false
}

// HasElement reports whether ref is one of the offered board elements.
func (s *ResolvedSelection) HasElement(ref ElementRef) bool {
	for _, e := range s.Elements {
		if e == ref {
			return true
		}
	}
	return false
}

func (s *ResolvedSelection) String() string {
	return fmt.Sprintf("%s(%s)", s.Kind, s.Name)
}

// ConfirmSelectionName names the button shown before a fully forced move.
const ConfirmSelectionName = "__confirm__"
