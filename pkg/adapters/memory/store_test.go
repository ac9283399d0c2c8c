package memory_test

import (
	"context"
	"testing"

	"github.com/aretw0/pizzabot/pkg/adapters/memory"
	"github.com/aretw0/pizzabot/pkg/domain"
	"github.com/aretw0/pizzabot/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_Contract(t *testing.T) {
	store := memory.NewStore()
	ports.RunConversationStoreContract(t, store)
}

func TestMemoryStore_LoadReturnsCopy(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, domain.NewConversation("42")))

	first, err := store.Load(ctx, "42")
	require.NoError(t, err)
	first.Order.Size = domain.SizeSmall

	second, err := store.Load(ctx, "42")
	require.NoError(t, err)
	assert.Equal(t, domain.SizeLarge, second.Order.Size)
	assert.Equal(t, 1, store.Len())
}

func TestMemoryStore_RejectsEmptyID(t *testing.T) {
	store := memory.NewStore()
	err := store.Save(context.Background(), domain.NewConversation(""))
	assert.ErrorIs(t, err, domain.ErrEmptyConversationID)
	assert.Equal(t, 0, store.Len())
}
