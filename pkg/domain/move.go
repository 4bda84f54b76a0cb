package domain

import (
	"encoding/json"
	"fmt"
)

// Move is an attempt by a player to perform an action.
// Args may be partial: the engine answers with the next selection needed.
type Move struct {
	Action string
	Player int
	Args   []Argument
}

type moveJSON struct {
	Action string `json:"action,omitempty"`
	Player int    `json:"player"`
	Args   []any  `json:"args"`
}

// MarshalJSON encodes the move with arguments in wire form.
func (m Move) MarshalJSON() ([]byte, error) {
	args, err := SerializeArgs(m.Args)
	if err != nil {
		return nil, fmt.Errorf("move %s: %w", m.Action, err)
	}
	if args == nil {
		args = []any{}
	}
	return json.Marshal(moveJSON{Action: m.Action, Player: m.Player, Args: args})
}

// UnmarshalJSON decodes a move and restores typed arguments.
func (m *Move) UnmarshalJSON(data []byte) error {
	var raw moveJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	args, err := DecodeMoveArgs(raw.Args)
	if err != nil {
		return fmt.Errorf("move %s: %w", raw.Action, err)
	}
	*m = Move{Action: raw.Action, Player: raw.Player, Args: args}
	return nil
}

// DecodeMoveArgs restores typed arguments from player input. Values of a type
// no selection accepts, such as 1.5 or an object, are kept as decoded so the
// resolver rejects them in-band. Malformed references are still an error.
func DecodeMoveArgs(raw []any) ([]Argument, error) {
	if raw == nil {
		return nil, nil
	}
	out := make([]Argument, len(raw))
	for i, r := range raw {
		v, err := DeserializeArg(r)
		if err != nil {
			if _, isStr := r.(string); isStr {
				return nil, fmt.Errorf("argument %d: %w", i, err)
			}
			v = NormalizeArg(r)
		}
		out[i] = v
	}
	return out, nil
}

// MoveResponse is the in-band answer to a prompt request or a move attempt.
// When Selection is set, more input is needed; Error carries the reason a
// provided argument was rejected.
type MoveResponse struct {
	Move      Move               `json:"move"`
	Selection *ResolvedSelection `json:"selection,omitempty"`
	Error     string             `json:"error,omitempty"`
}

// MoveResult is the outcome of processing a move.
// State is nil when the move was not applied.
type MoveResult struct {
	Response MoveResponse  `json:"response"`
	State    *GameState    `json:"state,omitempty"`
	Players  []PlayerState `json:"players,omitempty"`
}

// Accepted reports whether the move was applied.
func (r *MoveResult) Accepted() bool {
	return r != nil && r.State != nil
}
