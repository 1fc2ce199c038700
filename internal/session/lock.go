package session

import (
	"sync"

	"github.com/google/uuid"
)

// Key identifies one attempt scope: a user taking one chapter's diagnostic.
type Key struct {
	UserID  uuid.UUID
	Chapter string
}

// LockStore is the single source of truth for duplicate-start protection.
// Marks are process-local and live for the lifetime of the server session;
// a mark is set only after a successful start or resume, never on failure,
// and is not released by a failed submit.
type LockStore struct {
	mu   sync.Mutex
	held map[Key]bool
}

func NewLockStore() *LockStore {
	return &LockStore{held: make(map[Key]bool)}
}

func (s *LockStore) Held(key Key) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.held[key]
}

func (s *LockStore) Mark(key Key) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.held[key] = true
}

func (s *LockStore) Release(key Key) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.held, key)
}
