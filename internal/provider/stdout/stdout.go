// Package stdout implements a Provider that prints messages to standard
// output. It is meant for local development.
package stdout

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/shineum/mail-sending-service/internal/email"
	"github.com/shineum/mail-sending-service/internal/provider"
)

const separator = "========================================\n"

// Provider prints messages in a human-readable format.
type Provider struct {
	writer io.Writer
}

// New creates a new stdout Provider that writes to os.Stdout.
func New() *Provider {
	return &Provider{writer: os.Stdout}
}

// NewWithWriter creates a new stdout Provider that writes to the given writer.
func NewWithWriter(w io.Writer) *Provider {
	return &Provider{writer: w}
}

// Send prints the message. A failed write is reported like any other
// delivery failure so the dispatcher can move on.
func (p *Provider) Send(_ context.Context, msg *email.Message) error {
	var b strings.Builder

	b.WriteString(separator)
	fmt.Fprintf(&b, "ID: %s\n", msg.ID)
	fmt.Fprintf(&b, "To: %s\n", msg.Recipient)
	fmt.Fprintf(&b, "Subject: %s\n", msg.Subject)
	b.WriteString("Body:\n")
	b.WriteString(msg.Body + "\n")
	b.WriteString(separator)

	if _, err := io.WriteString(p.writer, b.String()); err != nil {
		return provider.Failed("stdout", "write failed", err)
	}
	return nil
}

// Name returns the provider name.
func (p *Provider) Name() string {
	return "stdout"
}
