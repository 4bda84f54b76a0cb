package ports

import (
	"context"

	"github.com/aretw0/tabula/pkg/domain"
)

// GameEngine defines the stateless rules engine consumed by adapters (HTTP, MCP).
// Every call receives the full serialized state and never retains it.
type GameEngine interface {
	// Start seats the players, runs setup and walks the flow to its first suspension.
	Start(ctx context.Context, setup domain.SetupState) (*domain.GameState, error)

	// CurrentSelection computes the next prompt for a player without advancing the game.
	CurrentSelection(ctx context.Context, state *domain.GameState, player int) (*domain.MoveResponse, error)

	// ProcessMove validates a move and, when complete, applies it.
	// Validation problems are reported in-band in the returned MoveResult.
	ProcessMove(ctx context.Context, state *domain.GameState, move domain.Move) (*domain.MoveResult, error)

	// PlayerStates returns the per-player views of a state.
	PlayerStates(ctx context.Context, state *domain.GameState) ([]domain.PlayerState, error)
}
