// Package store holds the index of the provider the dispatcher tries first.
//
// The value is a best-effort hint shared by concurrent requests. Writes are
// unconditional and the last one wins.
package store

import "context"

// Store reads and writes the current provider index.
type Store interface {
	// Get returns the stored index. ok is false when no index was stored yet.
	Get(ctx context.Context) (index int, ok bool, err error)

	// Set overwrites the stored index.
	Set(ctx context.Context, index int) error
}
