package domain

import (
	"bytes"
	"reflect"
)

// StateDiff represents the changes between two snapshots of a game.
// It is designed to be serialized to JSON for partial updates on the client.
// Board contents are never included, since they may hold hidden pieces; a
// client that sees BoardChanged fetches its own player view.
type StateDiff struct {
	GameID   string `json:"game_id"`
	Sequence int    `json:"sequence"`

	CurrentPlayerPosition *int     `json:"current_player,omitempty"`
	Position              Position `json:"position,omitempty"`

	// Settings contains only changed, added or deleted keys.
	// For deletions, the key is present with a nil value.
	Settings map[string]any `json:"settings,omitempty"`

	BoardChanged bool  `json:"board_changed,omitempty"`
	Finished     *bool `json:"finished,omitempty"`
}

// Diff calculates the difference between oldState and newState.
// If oldState is nil, it returns a diff representing the entire newState (initial load).
func Diff(gameID string, oldState, newState *GameState) *StateDiff {
	if newState == nil {
		return nil
	}

	diff := &StateDiff{
		GameID:   gameID,
		Sequence: newState.Sequence,
	}

	if oldState == nil || oldState.CurrentPlayerPosition != newState.CurrentPlayerPosition {
		cur := newState.CurrentPlayerPosition
		diff.CurrentPlayerPosition = &cur
	}
	if oldState == nil || !oldState.Position.Equal(newState.Position) {
		diff.Position = newState.Position.Clone()
	}
	if oldState == nil {
		if newState.Finished {
			diff.Finished = &newState.Finished
		}
	} else if oldState.Finished != newState.Finished {
		diff.Finished = &newState.Finished
	}
	diff.Settings = diffSettings(oldState, newState)
	diff.BoardChanged = oldState == nil || !bytes.Equal(oldState.Board, newState.Board)

	if diff.IsEmpty() {
		return nil
	}
	return diff
}

func diffSettings(old *GameState, new *GameState) map[string]any {
	delta := make(map[string]any)

	if old == nil {
		for k, v := range new.Settings {
			delta[k] = v
		}
		if len(delta) == 0 {
			return nil
		}
		return delta
	}

	for k, newVal := range new.Settings {
		oldVal, exists := old.Settings[k]
		if !exists || !reflect.DeepEqual(oldVal, newVal) {
			delta[k] = newVal
		}
	}
	for k := range old.Settings {
		if _, exists := new.Settings[k]; !exists {
			delta[k] = nil
		}
	}

	// Return nil if delta is empty so omitempty can remove the key
	if len(delta) == 0 {
		return nil
	}
	return delta
}

// IsEmpty checks if the diff contains any actionable changes.
func (d *StateDiff) IsEmpty() bool {
	return d.CurrentPlayerPosition == nil &&
		d.Position == nil &&
		d.Finished == nil &&
		len(d.Settings) == 0 &&
		!d.BoardChanged
}
