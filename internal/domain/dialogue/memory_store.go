package dialogue

import (
	"context"
	"sync"

	"maxwell/pkg/errors"
)

// MemoryStore is an in-process Store used in tests and single-node runs
// without Redis.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewMemoryStore creates an empty in-memory session store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: make(map[string]*Session)}
}

var _ Store = (*MemoryStore)(nil)

// Get loads a session copy by id
func (m *MemoryStore) Get(ctx context.Context, sessionID string) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s, ok := m.sessions[sessionID]
	if !ok {
		return nil, errors.Wrapf(errors.ErrNotFound, "session %s", sessionID)
	}

	cp := *s
	cp.Turns = append([]Turn(nil), s.Turns...)
	return &cp, nil
}

// Save persists a session copy
func (m *MemoryStore) Save(ctx context.Context, session *Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	cp := *session
	cp.Turns = append([]Turn(nil), session.Turns...)
	m.sessions[session.ID] = &cp
	return nil
}

// Delete removes a session
func (m *MemoryStore) Delete(ctx context.Context, sessionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, sessionID)
	return nil
}
