package domain_test

import (
	"testing"

	"github.com/aretw0/pizzabot/pkg/domain"
	"github.com/stretchr/testify/assert"
)

func TestNewConversation_Defaults(t *testing.T) {
	c := domain.NewConversation("42")

	assert.Equal(t, "42", c.ID)
	assert.Equal(t, domain.StateStart, c.State)
	assert.Equal(t, domain.SizeLarge, c.Order.Size)
	assert.Equal(t, domain.PaymentCash, c.Order.Payment)
	assert.Zero(t, c.Cycles)
	assert.False(t, c.CreatedAt.IsZero())
}

func TestConversation_CloneIsIndependent(t *testing.T) {
	c := domain.NewConversation("42")
	cp := c.Clone()

	cp.State = domain.StateAskSize
	cp.Order.Size = domain.SizeSmall

	assert.Equal(t, domain.StateStart, c.State)
	assert.Equal(t, domain.SizeLarge, c.Order.Size)

	var nilConv *domain.Conversation
	assert.Nil(t, nilConv.Clone())
}

func TestStateID_Valid(t *testing.T) {
	for _, s := range domain.States {
		assert.True(t, s.Valid(), s)
	}
	assert.False(t, domain.StateAny.Valid())
	assert.False(t, domain.StateID("checkout").Valid())
}
