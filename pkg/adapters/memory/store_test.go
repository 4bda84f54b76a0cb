package memory_test

import (
	"context"
	"testing"

	"github.com/aretw0/tabula/pkg/adapters/memory"
	"github.com/aretw0/tabula/pkg/domain"
	"github.com/aretw0/tabula/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_Contract(t *testing.T) {
	store := memory.NewStore()
	ports.RunStateStoreContract(t, store)
}

func TestMemoryStore_Isolation(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()

	state := &domain.GameState{Settings: domain.Values{"rounds": 3}, Position: domain.Position{{Node: "turn"}}}
	require.NoError(t, store.Save(ctx, "g1", state))

	state.Settings["rounds"] = 9
	state.Position[0].Node = "mutated"

	loaded, err := store.Load(ctx, "g1")
	require.NoError(t, err)
	assert.Equal(t, 3, loaded.Settings["rounds"])
	assert.Equal(t, "turn", loaded.Position[0].Node)

	loaded.Settings["rounds"] = 1
	again, err := store.Load(ctx, "g1")
	require.NoError(t, err)
	assert.Equal(t, 3, again.Settings["rounds"])
}
