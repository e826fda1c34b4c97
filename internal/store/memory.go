package store

import (
	"context"
	"sync/atomic"
)

const unset = -1

// Memory is an in-process Store backed by an atomic integer.
type Memory struct {
	index atomic.Int64
}

// NewMemory creates an empty Memory store.
func NewMemory() *Memory {
	m := &Memory{}
	m.index.Store(unset)
	return m
}

// Get returns the stored index.
func (m *Memory) Get(context.Context) (int, bool, error) {
	v := m.index.Load()
	if v == unset {
		return 0, false, nil
	}
	return int(v), true, nil
}

// Set overwrites the stored index.
func (m *Memory) Set(_ context.Context, index int) error {
	m.index.Store(int64(index))
	return nil
}
