// Package memory provides an in-process ports.StateStore for tests, the CLI
// and single-replica deployments.
package memory

import (
	"context"
	"slices"
	"sync"

	"github.com/aretw0/tabula/pkg/domain"
	"github.com/aretw0/tabula/pkg/ports"
)

var _ ports.StateStore = (*Store)(nil)

// Store implements ports.StateStore in memory.
// Safe for concurrent use.
type Store struct {
	data map[string]*domain.GameState
	mu   sync.RWMutex
}

// NewStore creates a new in-memory store.
func NewStore() *Store {
	return &Store{
		data: make(map[string]*domain.GameState),
	}
}

// Save persists a deep copy of the state, so later changes by the caller are not seen.
func (s *Store) Save(ctx context.Context, gameID string, state *domain.GameState) error {
	copied := state.Snapshot()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[gameID] = copied
	return nil
}

// Load retrieves a copy of the state from memory.
func (s *Store) Load(ctx context.Context, gameID string) (*domain.GameState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	state, ok := s.data[gameID]
	if !ok {
		return nil, domain.ErrGameNotFound
	}
	return state.Snapshot(), nil
}

// Delete removes the state.
func (s *Store) Delete(ctx context.Context, gameID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, gameID)
	return nil
}

// List returns the stored game IDs in sorted order.
func (s *Store) List(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	games := make([]string, 0, len(s.data))
	for id := range s.data {
		games = append(games, id)
	}
	slices.Sort(games)
	return games, nil
}
