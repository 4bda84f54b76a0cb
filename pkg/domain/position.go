package domain

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strings"
)

// Frame is one step of a flow position: the node being executed and the
// node-specific cursor inside it.
type Frame struct {
	// Node is the stable identifier of the flow node.
	Node string
	// Index is the child index (sequence), chosen branch (if/switch) or
	// iteration counter (loops).
	Index int
	// Value is the loop variable bound for the current iteration, if any.
	Value Argument
	// Items is the collection captured when a for-each loop was entered.
	Items []Argument
}

type frameJSON struct {
	Node  string `json:"node"`
	Index int    `json:"index,omitempty"`
	Value any    `json:"value,omitempty"`
	Items []any  `json:"items,omitempty"`
}

// MarshalJSON encodes the frame with arguments in wire form.
func (f Frame) MarshalJSON() ([]byte, error) {
	value, err := SerializeArg(f.Value)
	if err != nil {
		return nil, fmt.Errorf("frame %s value: %w", f.Node, err)
	}
	items, err := SerializeArgs(f.Items)
	if err != nil {
		return nil, fmt.Errorf("frame %s items: %w", f.Node, err)
	}
	return json.Marshal(frameJSON{Node: f.Node, Index: f.Index, Value: value, Items: items})
}

// UnmarshalJSON decodes a frame and restores typed arguments.
func (f *Frame) UnmarshalJSON(data []byte) error {
	var raw frameJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	value, err := DeserializeArg(raw.Value)
	if err != nil {
		return fmt.Errorf("frame %s value: %w", raw.Node, err)
	}
	items, err := DeserializeArgs(raw.Items)
	if err != nil {
		return fmt.Errorf("frame %s items: %w", raw.Node, err)
	}
	*f = Frame{Node: raw.Node, Index: raw.Index, Value: value, Items: items}
	return nil
}

// Position is the ordered path of frames from the flow root to the suspended leaf.
// An empty position means the flow has not been entered (or has run to completion).
type Position []Frame

// Clone returns an independent copy. The copy of an empty position is nil.
func (p Position) Clone() Position {
	if len(p) == 0 {
		return nil
	}
	out := make(Position, len(p))
	for i, f := range p {
		out[i] = f
		if f.Items != nil {
			out[i].Items = append([]Argument(nil), f.Items...)
		}
	}
	return out
}

// Leaf returns the innermost frame.
func (p Position) Leaf() (Frame, bool) {
	if len(p) == 0 {
		return Frame{}, false
	}
	return p[len(p)-1], true
}

// Equal reports whether two positions denote the same execution point.
func (p Position) Equal(o Position) bool {
	if len(p) != len(o) {
		return false
	}
	for i := range p {
		if p[i].Node != o[i].Node || p[i].Index != o[i].Index {
			return false
		}
		if !ArgEqual(p[i].Value, o[i].Value) {
			return false
		}
		if !reflect.DeepEqual(p[i].Items, o[i].Items) {
			return false
		}
	}
	return true
}

func (p Position) String() string {
	parts := make([]string, len(p))
	for i, f := range p {
		parts[i] = fmt.Sprintf("%s[%d]", f.Node, f.Index)
	}
	return strings.Join(parts, "/")
}
