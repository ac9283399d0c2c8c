// Package middleware decorates a ports.ConversationStore with cross-cutting
// behavior (timeouts, logging, metrics) without touching the backends.
package middleware

import "github.com/aretw0/pizzabot/pkg/ports"

// Middleware allows wrapping a ConversationStore to add behavior.
type Middleware func(ports.ConversationStore) ports.ConversationStore

// Chain wraps store with mws. The first middleware is the outermost.
func Chain(store ports.ConversationStore, mws ...Middleware) ports.ConversationStore {
	for i := len(mws) - 1; i >= 0; i-- {
		if mws[i] != nil {
			store = mws[i](store)
		}
	}
	return store
}
