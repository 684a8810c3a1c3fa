package session

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// memoryStore is a process-local session store. Used in tests and as a
// fallback when Redis is not configured; a restart logs everyone out.
type memoryStore struct {
	mu       sync.RWMutex
	ttl      time.Duration
	sessions map[string]memoryEntry
	now      func() time.Time
}

type memoryEntry struct {
	sess      Session
	expiresAt time.Time
}

// NewMemoryStore creates an in-memory session store.
func NewMemoryStore(ttl time.Duration) Store {
	return &memoryStore{
		ttl:      ttl,
		sessions: make(map[string]memoryEntry),
		now:      time.Now,
	}
}

func (s *memoryStore) Create(ctx context.Context, sess *Session) error {
	sess.ID = uuid.NewString()
	return s.Save(ctx, sess)
}

func (s *memoryStore) Get(_ context.Context, id string) (*Session, error) {
	s.mu.RLock()
	entry, ok := s.sessions[id]
	s.mu.RUnlock()

	if !ok || s.now().After(entry.expiresAt) {
		if ok {
			s.mu.Lock()
			delete(s.sessions, id)
			s.mu.Unlock()
		}
		return nil, ErrNotFound
	}

	copied := entry.sess
	return &copied, nil
}

func (s *memoryStore) Save(_ context.Context, sess *Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sess.ID] = memoryEntry{
		sess:      *sess,
		expiresAt: s.now().Add(s.ttl),
	}
	return nil
}

func (s *memoryStore) Destroy(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
	return nil
}
