// Package secret persists credentials such as the user's authentication token.
package secret

import (
	"context"
	"sync"
)

// KeyUserToken is the key of the authentication token.
const KeyUserToken = "userToken"

type Store interface {
	// Store saves value under key, replacing any previous value.
	Store(ctx context.Context, key, value string) error

	// Get returns the value of key. ok is false when key is absent.
	Get(ctx context.Context, key string) (value string, ok bool, err error)

	// Delete removes key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error
}

// Memory keeps secrets in process memory only.
type Memory struct {
	mu      sync.RWMutex
	secrets map[string]string
}

var _ Store = (*Memory)(nil)

func NewMemory() *Memory {
	return &Memory{secrets: make(map[string]string)}
}

func (m *Memory) Store(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.secrets[key] = value
	return nil
}

func (m *Memory) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.secrets[key]
	return v, ok, nil
}

func (m *Memory) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.secrets, key)
	return nil
}
