package graph

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"

	"github.com/shineum/mail-sending-service/internal/email"
	"github.com/shineum/mail-sending-service/internal/provider"
)

const (
	name           = "graph"
	defaultTimeout = 30 * time.Second
	graphScope     = "https://graph.microsoft.com/.default"
)

// Config holds the configuration for creating a Graph Provider.
type Config struct {
	TenantID     string
	ClientID     string
	ClientSecret string
	// FromMail is the mailbox the message is sent as.
	FromMail string
	Timeout  time.Duration
}

// Provider sends emails via the Microsoft Graph API using OAuth2
// client credentials authentication.
type Provider struct {
	graphURL   string
	httpClient *http.Client
	timeout    time.Duration
}

// New creates a new Graph Provider.
func New(cfg Config) *Provider {
	tokenURL := fmt.Sprintf(
		"https://login.microsoftonline.com/%s/oauth2/v2.0/token",
		url.PathEscape(cfg.TenantID),
	)
	graphURL := fmt.Sprintf(
		"https://graph.microsoft.com/v1.0/users/%s/sendMail",
		url.PathEscape(cfg.FromMail),
	)
	return newWithOverrides(cfg, graphURL, tokenURL, &http.Client{})
}

// newWithOverrides creates a Provider with custom URLs and base HTTP client,
// used for testing. The base client performs both token and API requests.
func newWithOverrides(cfg Config, graphURL, tokenURL string, base *http.Client) *Provider {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	// The token fetch runs outside the request context, so only the base
	// client's own timeout bounds it.
	tokenClient := *base
	if tokenClient.Timeout <= 0 || tokenClient.Timeout > timeout {
		tokenClient.Timeout = timeout
	}

	cc := &clientcredentials.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		TokenURL:     tokenURL,
		Scopes:       []string{graphScope},
		AuthStyle:    oauth2.AuthStyleInParams,
	}

	// Tokens are cached and refreshed by the oauth2 transport.
	client := cc.Client(context.WithValue(context.Background(), oauth2.HTTPClient, &tokenClient))

	return &Provider{
		graphURL:   graphURL,
		httpClient: client,
		timeout:    timeout,
	}
}

// Send delivers a message via the Graph sendMail endpoint. 202 Accepted and
// 200 OK count as success.
func (p *Provider) Send(ctx context.Context, msg *email.Message) error {
	// Deadline on the context rather than http.Client.Timeout: the oauth2
	// transport does not support CancelRequest.
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	bodyJSON, err := json.Marshal(buildSendMailRequest(msg))
	if err != nil {
		return provider.Failed(name, "failed to marshal request body", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.graphURL, bytes.NewReader(bodyJSON))
	if err != nil {
		return provider.Failed(name, "failed to create request", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return provider.Failed(name, "HTTP request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusAccepted || resp.StatusCode == http.StatusOK {
		return nil
	}

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 8192))

	var graphErr graphErrorResponse
	if jsonErr := json.Unmarshal(body, &graphErr); jsonErr == nil && graphErr.Error.Message != "" {
		return provider.Rejected(name, resp.StatusCode, graphErr.Error.Message)
	}
	return provider.Rejected(name, resp.StatusCode, string(body))
}

// Name returns the provider name.
func (p *Provider) Name() string {
	return name
}
