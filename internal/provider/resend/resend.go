// Package resend implements a Provider that sends emails via the Resend API.
package resend

import (
	"context"

	"github.com/resend/resend-go/v2"

	"github.com/shineum/mail-sending-service/internal/email"
	"github.com/shineum/mail-sending-service/internal/provider"
)

const name = "resend"

// Config holds Resend provider configuration.
type Config struct {
	APIKey   string
	FromMail string
}

// EmailsAPI is the subset of the Resend emails service used by the provider.
type EmailsAPI interface {
	SendWithContext(ctx context.Context, params *resend.SendEmailRequest) (*resend.SendEmailResponse, error)
}

// Provider sends emails through Resend.
type Provider struct {
	emails   EmailsAPI
	fromMail string
}

// New creates a new Resend provider.
func New(cfg Config) *Provider {
	return NewWithClient(cfg.FromMail, resend.NewClient(cfg.APIKey).Emails)
}

// NewWithClient creates a Provider backed by the given emails service.
func NewWithClient(fromMail string, emails EmailsAPI) *Provider {
	return &Provider{emails: emails, fromMail: fromMail}
}

// Send delivers a message through Resend.
func (p *Provider) Send(ctx context.Context, msg *email.Message) error {
	_, err := p.emails.SendWithContext(ctx, &resend.SendEmailRequest{
		From:    p.fromMail,
		To:      []string{msg.Recipient},
		Subject: msg.Subject,
		Html:    msg.Body,
	})
	if err != nil {
		return provider.Failed(name, "send failed", err)
	}
	return nil
}

// Name returns the provider name.
func (p *Provider) Name() string {
	return name
}
