// Package sendgrid implements a Provider that sends emails via the SendGrid
// v3 Mail Send API.
package sendgrid

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/shineum/mail-sending-service/internal/email"
	"github.com/shineum/mail-sending-service/internal/provider"
)

const (
	defaultAPIURL  = "https://api.sendgrid.com/v3"
	defaultTimeout = 30 * time.Second
	name           = "sendgrid"
)

// Config holds the configuration for creating a SendGrid Provider.
type Config struct {
	APIKey   string
	FromMail string
	// APIURL overrides the API base URL. Defaults to the public endpoint.
	APIURL  string
	Timeout time.Duration
}

// Provider sends emails through SendGrid.
type Provider struct {
	apiKey   string
	fromMail string
	endpoint string
	client   *http.Client
}

// New creates a new SendGrid Provider.
func New(cfg Config) *Provider {
	return NewWithClient(cfg, &http.Client{Timeout: timeoutOrDefault(cfg.Timeout)})
}

// NewWithClient creates a Provider using the given HTTP client.
func NewWithClient(cfg Config, client *http.Client) *Provider {
	base := cfg.APIURL
	if base == "" {
		base = defaultAPIURL
	}
	return &Provider{
		apiKey:   cfg.APIKey,
		fromMail: cfg.FromMail,
		endpoint: strings.TrimRight(base, "/") + "/mail/send",
		client:   client,
	}
}

type address struct {
	Email string `json:"email"`
}

type personalization struct {
	To []address `json:"to"`
}

type content struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

type sendRequest struct {
	Personalizations []personalization `json:"personalizations"`
	From             address           `json:"from"`
	Subject          string            `json:"subject"`
	Content          []content         `json:"content"`
}

func buildRequest(from string, msg *email.Message) *sendRequest {
	return &sendRequest{
		Personalizations: []personalization{{To: []address{{Email: msg.Recipient}}}},
		From:             address{Email: from},
		Subject:          msg.Subject,
		Content:          []content{{Type: "text/html", Value: msg.Body}},
	}
}

// Send delivers a message through SendGrid. Only 202 Accepted counts as
// success.
func (p *Provider) Send(ctx context.Context, msg *email.Message) error {
	body, err := json.Marshal(buildRequest(p.fromMail, msg))
	if err != nil {
		return provider.Failed(name, "failed to marshal request", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint, bytes.NewReader(body))
	if err != nil {
		return provider.Failed(name, "could not create request", err)
	}
	req.Header.Set("Authorization", "Bearer "+p.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return provider.Failed(name, "request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusAccepted {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return provider.Rejected(name, resp.StatusCode, string(respBody))
	}
	return nil
}

// Name returns the provider name.
func (p *Provider) Name() string {
	return name
}

func timeoutOrDefault(d time.Duration) time.Duration {
	if d <= 0 {
		return defaultTimeout
	}
	return d
}
