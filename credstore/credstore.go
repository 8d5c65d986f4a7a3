// Package credstore holds the agent's credentials: the backend bearer
// token and the session identity. The store is a plain async key/value
// surface; callers re-read the token on every use and never cache it,
// so a logout or re-login elsewhere takes effect on the next call.
package credstore

import (
	"context"
	"sync"
)

// Well-known credential keys.
const (
	KeyAuthToken   = "auth_token"
	KeySessionUser = "session_user"
)

// Store is an async key/value credential store. Get reports absence via
// the boolean, not an error.
type Store interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, keys ...string) error
}

// Mem is an in-memory Store for tests and ephemeral runs.
type Mem struct {
	mu     sync.RWMutex
	values map[string]string
}

// NewMem creates an empty in-memory store.
func NewMem() *Mem {
	return &Mem{values: make(map[string]string)}
}

func (m *Mem) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.values[key]
	return v, ok, nil
}

func (m *Mem) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
	return nil
}

func (m *Mem) Remove(_ context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, k := range keys {
		delete(m.values, k)
	}
	return nil
}
