// Package email defines the mail request data model shared by the validator,
// the dispatcher and the delivery providers.
package email

import "github.com/google/uuid"

// Message is a single request to deliver an email. It is built once per
// incoming request and never modified afterwards.
type Message struct {
	// ID correlates log lines of one dispatch across provider attempts.
	ID        string
	Recipient string
	Subject   string
	Body      string
}

// New creates a Message with a fresh correlation ID.
func New(recipient, subject, body string) *Message {
	return &Message{
		ID:        uuid.NewString(),
		Recipient: recipient,
		Subject:   subject,
		Body:      body,
	}
}
