// Package mailgun implements a Provider that sends emails via the Mailgun
// Messages API.
package mailgun

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/shineum/mail-sending-service/internal/email"
	"github.com/shineum/mail-sending-service/internal/provider"
)

const (
	defaultTimeout = 30 * time.Second
	name           = "mailgun"
)

// Config holds the configuration for creating a Mailgun Provider.
type Config struct {
	// APIURL is the full messages endpoint,
	// e.g. https://api.mailgun.net/v3/mg.example.com/messages.
	APIURL   string
	APIKey   string
	FromMail string
	Timeout  time.Duration
}

// Provider sends emails through Mailgun.
type Provider struct {
	apiURL   string
	apiKey   string
	fromMail string
	client   *http.Client
}

// New creates a new Mailgun Provider.
func New(cfg Config) *Provider {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return NewWithClient(cfg, &http.Client{Timeout: timeout})
}

// NewWithClient creates a Provider using the given HTTP client.
func NewWithClient(cfg Config, client *http.Client) *Provider {
	return &Provider{
		apiURL:   cfg.APIURL,
		apiKey:   cfg.APIKey,
		fromMail: cfg.FromMail,
		client:   client,
	}
}

// Send posts the message as a form to the messages endpoint. Only 200 OK
// counts as success.
func (p *Provider) Send(ctx context.Context, msg *email.Message) error {
	form := url.Values{}
	form.Set("from", p.fromMail)
	form.Set("to", msg.Recipient)
	form.Set("subject", msg.Subject)
	form.Set("text", msg.Body)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.apiURL, strings.NewReader(form.Encode()))
	if err != nil {
		return provider.Failed(name, "could not create request", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.SetBasicAuth("api", p.apiKey)

	resp, err := p.client.Do(req)
	if err != nil {
		return provider.Failed(name, "request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return provider.Rejected(name, resp.StatusCode, string(body))
	}
	return nil
}

// Name returns the provider name.
func (p *Provider) Name() string {
	return name
}
