package ports

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/aretw0/tabula/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunStateStoreContract runs a suite of tests to verify that a StateStore implementation
// adheres to the defined interface contract.
func RunStateStoreContract(t *testing.T, store StateStore) {
	ctx := context.Background()
	gameID := "contract-test-game-" + time.Now().Format("20060102150405")

	t.Run("Save and Load", func(t *testing.T) {
		state := contractState()

		err := store.Save(ctx, gameID, state)
		require.NoError(t, err, "Save should not return error")

		loaded, err := store.Load(ctx, gameID)
		require.NoError(t, err, "Load should not return error")
		assert.True(t, state.Equal(loaded), "loaded state should equal saved state")
		assert.Equal(t, 3, loaded.Settings["rounds"], "integral settings should come back as int")
		assert.Equal(t, domain.ElementRef{ID: "a"}, loaded.Position[1].Value)
	})

	t.Run("Overwrite", func(t *testing.T) {
		state := contractState()
		state.Sequence = 7
		require.NoError(t, store.Save(ctx, gameID, state))

		loaded, err := store.Load(ctx, gameID)
		require.NoError(t, err)
		assert.Equal(t, 7, loaded.Sequence)
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, "non-existent-"+gameID)
		assert.ErrorIs(t, err, domain.ErrGameNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		err := store.Save(ctx, gameID, contractState())
		require.NoError(t, err)

		err = store.Delete(ctx, gameID)
		require.NoError(t, err, "Delete should not return error")

		_, err = store.Load(ctx, gameID)
		assert.ErrorIs(t, err, domain.ErrGameNotFound, "Load after Delete should return ErrGameNotFound")
	})

	t.Run("List", func(t *testing.T) {
		id1 := gameID + "-1"
		id2 := gameID + "-2"
		_ = store.Save(ctx, id1, contractState())
		_ = store.Save(ctx, id2, contractState())

		defer func() {
			_ = store.Delete(ctx, id1)
			_ = store.Delete(ctx, id2)
		}()

		games, err := store.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, games, id1)
		assert.Contains(t, games, id2)
	})
}

func contractState() *domain.GameState {
	return &domain.GameState{
		Players: []domain.Player{
			{Position: 1, Name: "Ana", Color: "red"},
			{Position: 2, Name: "Bruno", Attributes: domain.Values{"score": 2}},
		},
		CurrentPlayerPosition: 2,
		Settings:              domain.Values{"rounds": 3, "mode": "short"},
		Position: domain.Position{
			{Node: "root", Index: 1},
			{Node: "turns", Index: 1, Value: domain.ElementRef{ID: "a"}},
			{Node: "play"},
		},
		Board:    json.RawMessage(`{"spaces":["a","b"]}`),
		Seed:     "contract",
		Sequence: 4,
	}
}
