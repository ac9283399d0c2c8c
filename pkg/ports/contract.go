package ports

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/pizzabot/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunConversationStoreContract runs a suite of tests to verify that a ConversationStore
// implementation adheres to the defined interface contract.
func RunConversationStoreContract(t *testing.T, store ConversationStore) {
	ctx := context.Background()
	convID := "contract-test-" + time.Now().Format("20060102150405")

	t.Run("Save and Load", func(t *testing.T) {
		conv := domain.NewConversation(convID)
		conv.State = domain.StateAskConfirm
		conv.Order = domain.Order{Size: domain.SizeSmall, Payment: domain.PaymentCard}
		conv.Cycles = 3

		err := store.Save(ctx, conv)
		require.NoError(t, err, "Save should not return error")

		loaded, err := store.Load(ctx, convID)
		require.NoError(t, err, "Load should not return error")
		assert.Equal(t, conv.ID, loaded.ID)
		assert.Equal(t, conv.State, loaded.State)
		assert.Equal(t, conv.Order, loaded.Order)
		assert.Equal(t, conv.Cycles, loaded.Cycles)
		assert.WithinDuration(t, conv.UpdatedAt, loaded.UpdatedAt, time.Second)
	})

	t.Run("Overwrite", func(t *testing.T) {
		conv := domain.NewConversation(convID)
		conv.State = domain.StateAskSize
		require.NoError(t, store.Save(ctx, conv))

		loaded, err := store.Load(ctx, convID)
		require.NoError(t, err)
		assert.Equal(t, domain.StateAskSize, loaded.State)
		assert.Equal(t, domain.NewOrder(), loaded.Order)
	})

	t.Run("Isolation", func(t *testing.T) {
		conv := domain.NewConversation(convID)
		require.NoError(t, store.Save(ctx, conv))

		// Mutating the caller's copy must not leak into the store.
		conv.State = domain.StateAskPayment

		loaded, err := store.Load(ctx, convID)
		require.NoError(t, err)
		assert.Equal(t, domain.StateStart, loaded.State)
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, "non-existent-"+convID)
		assert.ErrorIs(t, err, domain.ErrConversationNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		err := store.Save(ctx, domain.NewConversation(convID))
		require.NoError(t, err)

		err = store.Delete(ctx, convID)
		require.NoError(t, err, "Delete should not return error")

		_, err = store.Load(ctx, convID)
		assert.ErrorIs(t, err, domain.ErrConversationNotFound, "Load after Delete should return ErrConversationNotFound")
	})

	t.Run("List", func(t *testing.T) {
		id1 := convID + "-1"
		id2 := convID + "-2"
		_ = store.Save(ctx, domain.NewConversation(id1))
		_ = store.Save(ctx, domain.NewConversation(id2))

		defer func() {
			_ = store.Delete(ctx, id1)
			_ = store.Delete(ctx, id2)
		}()

		ids, err := store.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, ids, id1)
		assert.Contains(t, ids, id2)
	})
}
