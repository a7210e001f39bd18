package email

import (
	"context"
	"log"
	"strings"
	"sync"
)

// ConsoleMailer logs messages instead of delivering them and records what
// was sent. It is the transport for local development and tests.
type ConsoleMailer struct {
	mu   sync.Mutex
	sent []Message

	// DisableOutput silences logging; recording still happens.
	DisableOutput bool
}

var _ Mailer = (*ConsoleMailer)(nil)

// NewConsoleMailer creates a console transport.
func NewConsoleMailer() *ConsoleMailer {
	return &ConsoleMailer{}
}

// Send records the message and prints a short trace.
func (m *ConsoleMailer) Send(_ context.Context, msg *Message) error {
	m.mu.Lock()
	m.sent = append(m.sent, *msg)
	m.mu.Unlock()

	if !m.DisableOutput {
		log.Printf("[email] to=%s subject=%q attachments=%d",
			strings.Join(msg.To, ","), msg.Subject, len(msg.Attachments))
	}
	return nil
}

// Sent returns a copy of everything sent so far.
func (m *ConsoleMailer) Sent() []Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Message(nil), m.sent...)
}
