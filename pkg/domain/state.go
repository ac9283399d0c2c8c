package domain

import "time"

// StateID identifies a dialog state.
type StateID string

const (
	// StateAny matches every source state in the transition table.
	StateAny StateID = "*"

	StateStart      StateID = "start"       // Initial state and end of every order cycle
	StateAskSize    StateID = "ask_size"    // Waiting for the pizza size
	StateAskPayment StateID = "ask_payment" // Waiting for the payment method
	StateAskConfirm StateID = "ask_confirm" // Waiting for the order confirmation
)

// States lists the dialog states in flow order.
var States = []StateID{StateStart, StateAskSize, StateAskPayment, StateAskConfirm}

// Valid reports whether s is a concrete dialog state.
func (s StateID) Valid() bool {
	switch s {
	case StateStart, StateAskSize, StateAskPayment, StateAskConfirm:
		return true
	}
	return false
}

// Conversation represents the current snapshot of one exchange with a remote user.
type Conversation struct {
	// ID is the transport-defined conversation key (e.g. a Telegram chat id).
	ID string `json:"id"`

	// State is the active dialog state. Exactly one state is active at any time.
	State StateID `json:"state"`

	// Order holds the data collected in the current cycle.
	Order Order `json:"order"`

	// Cycles counts how many times the dialog returned to start after a
	// confirmation, a decline or a cancel.
	Cycles int `json:"cycles"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewConversation creates a conversation at the start state with a default order.
func NewConversation(id string) *Conversation {
	now := time.Now().UTC()
	return &Conversation{
		ID:        id,
		State:     StateStart,
		Order:     NewOrder(),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Clone returns an independent copy of the conversation.
func (c *Conversation) Clone() *Conversation {
	if c == nil {
		return nil
	}
	cp := *c
	return &cp
}
