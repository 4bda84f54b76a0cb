package ports

import (
	"encoding/json"

	"github.com/aretw0/tabula/pkg/domain"
)

// Board is the game board collaborator.
// Queries and mutations are game specific; the engine only needs to move the
// board in and out of a GameState snapshot.
type Board interface {
	// Serialize returns the board as seen by the player at perspective.
	// A perspective of 0 is the omniscient view persisted in GameState.
	Serialize(perspective int) (json.RawMessage, error)

	// Deserialize replaces the board contents with a snapshot produced by Serialize(0).
	Deserialize(data json.RawMessage) error
}

// Roster is the player roster collaborator.
type Roster interface {
	Len() int
	All() []domain.Player
	AtPosition(position int) (domain.Player, bool)

	// Current returns the player whose turn it is, if any.
	Current() (domain.Player, bool)
	// CurrentPosition returns 0 when no player is current.
	CurrentPosition() int
	SetCurrent(position int) error

	// TurnOrder lists positions in the order turns rotate.
	TurnOrder() []int
}
