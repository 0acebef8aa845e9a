package session

import (
	"context"
	"sync"

	"github.com/listenupapp/movienight/internal/domain"
)

// MemoryStore keeps the session in process memory.
type MemoryStore struct {
	mu      sync.RWMutex
	current domain.Session
}

// NewMemoryStore returns a store holding initial.
func NewMemoryStore(initial domain.Session) *MemoryStore {
	return &MemoryStore{current: initial}
}

// Load implements Store.
func (m *MemoryStore) Load(ctx context.Context) (domain.Session, error) {
	if err := ctx.Err(); err != nil {
		return domain.Session{}, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current, nil
}

// Save implements Store.
func (m *MemoryStore) Save(ctx context.Context, s domain.Session) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.current = s
	return nil
}

// Clear implements Store.
func (m *MemoryStore) Clear(ctx context.Context) error {
	return m.Save(ctx, domain.Session{})
}
