package domain

import "errors"

// ErrConversationNotFound is returned when a conversation key cannot be found in the store.
var ErrConversationNotFound = errors.New("conversation not found")

// ErrEmptyConversationID is returned when an inbound event carries no conversation key.
var ErrEmptyConversationID = errors.New("conversation id is required")

// ErrNoTransition is returned when no row of the transition table matches.
// The table is total, so this indicates a corrupted state value.
var ErrNoTransition = errors.New("no transition matched")
