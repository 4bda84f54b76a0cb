package ports_test

import (
	"context"
	"encoding/json"
	"sync"
	"testing"

	"github.com/aretw0/tabula/pkg/domain"
	"github.com/aretw0/tabula/pkg/ports"
)

// jsonStore keeps states encoded, the way real backends do.
type jsonStore struct {
	mu   sync.Mutex
	data map[string][]byte
}

func (m *jsonStore) Save(_ context.Context, gameID string, state *domain.GameState) error {
	b, err := json.Marshal(state)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[gameID] = b
	return nil
}

func (m *jsonStore) Load(_ context.Context, gameID string) (*domain.GameState, error) {
	m.mu.Lock()
	b, ok := m.data[gameID]
	m.mu.Unlock()
	if !ok {
		return nil, domain.ErrGameNotFound
	}
	var state domain.GameState
	if err := json.Unmarshal(b, &state); err != nil {
		return nil, err
	}
	return &state, nil
}

func (m *jsonStore) Delete(_ context.Context, gameID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, gameID)
	return nil
}

func (m *jsonStore) List(_ context.Context) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ids := make([]string, 0, len(m.data))
	for id := range m.data {
		ids = append(ids, id)
	}
	return ids, nil
}

func TestStateStore_Contract(t *testing.T) {
	ports.RunStateStoreContract(t, &jsonStore{data: make(map[string][]byte)})
}
