package ports

import "context"

// Sender delivers outbound texts. Delivery is best effort: the caller logs
// failures and never rolls back the transition that produced the text.
type Sender interface {
	Send(ctx context.Context, recipient, text string) error
}

// SenderFunc adapts a function to the Sender interface.
type SenderFunc func(ctx context.Context, recipient, text string) error

// Send calls f(ctx, recipient, text).
func (f SenderFunc) Send(ctx context.Context, recipient, text string) error {
	return f(ctx, recipient, text)
}
