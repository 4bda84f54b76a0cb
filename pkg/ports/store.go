package ports

import (
	"context"

	"github.com/aretw0/tabula/pkg/domain"
)

// StateStore defines the interface for persisting game state between moves.
type StateStore interface {
	// Save persists the state for a given game ID.
	Save(ctx context.Context, gameID string, state *domain.GameState) error

	// Load retrieves the state for a given game ID.
	// Returns domain.ErrGameNotFound if the game does not exist.
	Load(ctx context.Context, gameID string) (*domain.GameState, error)

	// Delete removes the state for a given game ID.
	Delete(ctx context.Context, gameID string) error

	// List returns the IDs of all stored games.
	List(ctx context.Context) ([]string, error)
}
