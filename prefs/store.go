// Package prefs carries host preferences: the persisted key/value store behind
// the low-power flag, settable boolean signals, and a file watcher that drives
// the reduced-motion and visibility signals from a YAML preferences file
package prefs

import (
	"errors"
	"sync"
)

// ErrClosed is returned by store operations after Close
var ErrClosed = errors.New("prefs store closed")

// Store is a string key/value store, the local-storage equivalent of the host
type Store interface {
	// Get returns the value for key, ok is false when the key was never set
	Get(key string) (value string, ok bool, err error)
	Set(key, value string) error
	Close() error
}

// MemoryStore is a process-local Store
type MemoryStore struct {
	mu     sync.RWMutex
	values map[string]string
	closed bool
}

// NewMemoryStore creates an empty store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{values: make(map[string]string)}
}

// Get implements Store
func (m *MemoryStore) Get(key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return "", false, ErrClosed
	}
	v, ok := m.values[key]
	return v, ok, nil
}

// Set implements Store
func (m *MemoryStore) Set(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClosed
	}
	m.values[key] = value
	return nil
}

// Close implements Store
func (m *MemoryStore) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}
