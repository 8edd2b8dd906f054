// Package notify sends customer-facing messages for repair order events.
// Composition lives here; transport is behind the Sender interface so the
// workflow engine treats a send failure as a warning, never a rollback.
package notify

import "context"

// Message is one outbound customer notice. Recipient is a phone number in
// E.164 form (WhatsApp), a bare phone number (SMS), or an email address —
// the sender picks the channel.
type Message struct {
	Recipient string
	Subject   string
	Body      string
}

// Sender delivers a message over some channel.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}
