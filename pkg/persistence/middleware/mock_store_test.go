package middleware_test

import (
	"context"

	"github.com/aretw0/tabula/pkg/domain"
	"github.com/aretw0/tabula/pkg/ports"
)

// MockStore is a simple map-based store for testing middleware.
type MockStore struct {
	data map[string]*domain.GameState
}

func NewMockStore() *MockStore {
	return &MockStore{
		data: make(map[string]*domain.GameState),
	}
}

func (s *MockStore) Save(ctx context.Context, gameID string, state *domain.GameState) error {
	s.data[gameID] = state
	return nil
}

func (s *MockStore) Load(ctx context.Context, gameID string) (*domain.GameState, error) {
	state, ok := s.data[gameID]
	if !ok {
		return nil, domain.ErrGameNotFound
	}
	return state, nil
}

func (s *MockStore) Delete(ctx context.Context, gameID string) error {
	delete(s.data, gameID)
	return nil
}

func (s *MockStore) List(ctx context.Context) ([]string, error) {
	keys := make([]string, 0, len(s.data))
	for k := range s.data {
		keys = append(keys, k)
	}
	return keys, nil
}

var _ ports.StateStore = (*MockStore)(nil)
