package mailer

import "context"

// Sender is the outbound mail capability: delivery either succeeds or fails.
// The password-reset flow depends on the error to roll back pending state.
type Sender interface {
	Send(ctx context.Context, to, subject, text, html string) error
}
