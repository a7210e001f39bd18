// Package email defines the mail transport boundary. The dispatcher in
// package notify composes messages; a Mailer only moves them.
package email

import (
	"context"
	"errors"
)

// ErrSendTimeout marks a send that exceeded its per-send deadline, as
// distinct from an ordinary transport failure.
var ErrSendTimeout = errors.New("email send timed out")

// Attachment is a file carried by a message.
type Attachment struct {
	Filename    string
	ContentType string
	Content     []byte
}

// Message is one outbound email.
type Message struct {
	To          []string
	Subject     string
	HTMLContent string
	Attachments []Attachment
}

// HasRecipients reports whether the message has at least one recipient.
func (m *Message) HasRecipients() bool { return len(m.To) > 0 }

// Mailer is any transport that can send a single message.
type Mailer interface {
	Send(ctx context.Context, msg *Message) error
}
