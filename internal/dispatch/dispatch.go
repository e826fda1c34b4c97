// Package dispatch delivers messages through an ordered list of providers
// with sticky failover.
//
// Each request starts at the provider that last succeeded, walks the list in
// circular order and tries every provider at most once. The starting index is
// kept in a store.Store so that later requests skip providers that are known
// to be failing.
package dispatch

import (
	"context"
	"log/slog"

	"github.com/shineum/mail-sending-service/internal/email"
	"github.com/shineum/mail-sending-service/internal/provider"
	"github.com/shineum/mail-sending-service/internal/store"
)

// Outcome is the result of one dispatch.
type Outcome struct {
	Sent bool
	// Index and Provider identify the provider that accepted the message.
	// Both are unset when Sent is false.
	Index    int
	Provider string
}

// Sent returns a successful outcome for the provider at index.
func Sent(index int, name string) Outcome {
	return Outcome{Sent: true, Index: index, Provider: name}
}

// AllFailed returns the outcome of a dispatch no provider accepted.
func AllFailed() Outcome {
	return Outcome{Index: -1}
}

// Dispatcher tries providers in turn until one accepts the message.
type Dispatcher struct {
	providers *provider.List
	store     store.Store
	logger    *slog.Logger
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithLogger sets the logger used for attempt and failure logging.
func WithLogger(l *slog.Logger) Option {
	return func(d *Dispatcher) {
		d.logger = l
	}
}

// New creates a Dispatcher over providers using s for the starting index.
func New(providers *provider.List, s store.Store, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		providers: providers,
		store:     s,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// TrySend delivers msg through the first provider that accepts it, starting
// at the stored index. The store is written only when a provider other than
// the starting one succeeds, or to seed it on first use.
func (d *Dispatcher) TrySend(ctx context.Context, msg *email.Message) Outcome {
	n := d.providers.Len()
	start := d.startIndex(ctx, n)

	if n == 0 {
		d.logger.Warn("no mail providers configured", "message_id", msg.ID)
		return AllFailed()
	}

	i := start
	for attempts := 0; attempts < n; attempts++ {
		p := d.providers.At(i)

		d.logger.Debug("sending email",
			"message_id", msg.ID,
			"provider", p.Name(),
			"index", i,
		)

		err := p.Send(ctx, msg)
		if err == nil {
			if i != start {
				d.logger.Info("switched current mail provider",
					"message_id", msg.ID,
					"from_index", start,
					"to_index", i,
					"provider", p.Name(),
				)
				d.setIndex(ctx, i)
			}
			return Sent(i, p.Name())
		}

		d.logger.Warn("mail provider failed",
			"message_id", msg.ID,
			"provider", p.Name(),
			"index", i,
			"error", err,
		)
		i = (i + 1) % n
	}

	d.logger.Error("all mail providers failed",
		"message_id", msg.ID,
		"providers", n,
	)
	return AllFailed()
}

// startIndex reads the stored index, seeding it with 0 when unset. An index
// outside [0, n) is reseeded as well. With no providers the index is 0.
func (d *Dispatcher) startIndex(ctx context.Context, n int) int {
	index, ok, err := d.store.Get(ctx)
	if err != nil {
		d.logger.Warn("failed to read current mail provider, starting at 0", "error", err)
		return 0
	}

	if ok && (n == 0 || (index >= 0 && index < n)) {
		return index
	}
	if ok {
		d.logger.Warn("stored mail provider index out of range, resetting",
			"index", index,
			"providers", n,
		)
	}

	d.setIndex(ctx, 0)
	return 0
}

func (d *Dispatcher) setIndex(ctx context.Context, index int) {
	if err := d.store.Set(ctx, index); err != nil {
		d.logger.Warn("failed to store current mail provider",
			"index", index,
			"error", err,
		)
	}
}
