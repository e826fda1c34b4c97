// Package provider defines the interface for outbound mail backends and the
// ordered list of backends the dispatcher fails over across.
package provider

import (
	"context"

	"github.com/shineum/mail-sending-service/internal/email"
)

// Provider is the interface that email delivery backends must implement.
// Each provider wraps one outbound gateway (SendGrid, Mailgun, SES, ...).
type Provider interface {
	// Send delivers a message through this provider. Any failure is
	// reported as an error wrapping *SendError. Providers never retry.
	Send(ctx context.Context, msg *email.Message) error

	// Name returns the human-readable name of this provider.
	Name() string
}
