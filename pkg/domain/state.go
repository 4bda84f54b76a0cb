package domain

import (
	"bytes"
	"encoding/json"
)

// Player is a seated player. Position is 1-based and unique within a game.
type Player struct {
	Position   int    `json:"position"`
	Name       string `json:"name"`
	Color      string `json:"color,omitempty"`
	Attributes Values `json:"attributes,omitempty"`
}

// SetupState is the input used to start a game.
type SetupState struct {
	Players  []Player `json:"players"`
	Settings Values   `json:"settings"`
	// Seed drives every random decision of the game. Empty means "derive one".
	Seed string `json:"seed,omitempty"`
}

// GameState represents the complete serialized snapshot of a game.
type GameState struct {
	Players               []Player        `json:"players"`
	CurrentPlayerPosition int             `json:"currentPlayerPosition"`
	Settings              Values          `json:"settings"`
	Position              Position        `json:"position"`
	Board                 json.RawMessage `json:"board"`

	// Seed and Sequence make random decisions replayable: the generator for a
	// move is derived from the seed and the number of moves applied before it.
	Seed     string `json:"seed,omitempty"`
	Sequence int    `json:"sequence"`

	// Finished is set once the flow has run to completion.
	Finished bool `json:"finished,omitempty"`
}

// PlayerState is the projection of a game as seen by one player.
type PlayerState struct {
	Position int       `json:"position"`
	State    GameState `json:"state"`
}

// Snapshot returns a deep copy of the state, safe for independent mutation.
func (s *GameState) Snapshot() *GameState {
	if s == nil {
		return nil
	}
	next := *s
	next.Players = ClonePlayers(s.Players)
	next.Settings = s.Settings.Clone()
	next.Position = s.Position.Clone()
	if s.Board != nil {
		next.Board = append(json.RawMessage(nil), s.Board...)
	}
	return &next
}

// Equal reports whether two snapshots are identical.
func (s *GameState) Equal(o *GameState) bool {
	if s == nil || o == nil {
		return s == o
	}
	a, err := json.Marshal(s)
	if err != nil {
		return false
	}
	b, err := json.Marshal(o)
	if err != nil {
		return false
	}
	return bytes.Equal(a, b)
}

// ClonePlayers deep-copies a player list and normalizes attributes.
// Empty attribute maps become nil, matching their encoded form.
func ClonePlayers(players []Player) []Player {
	if players == nil {
		return nil
	}
	out := make([]Player, len(players))
	for i, p := range players {
		out[i] = p
		if len(p.Attributes) == 0 {
			out[i].Attributes = nil
		} else {
			out[i].Attributes = p.Attributes.Clone()
		}
	}
	return out
}
