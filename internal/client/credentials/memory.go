package credentials

import (
	"context"
	"sync"
	"time"
)

type memoryStore struct {
	mu   sync.Mutex
	cred *Credential
	ttl  time.Duration
	now  func() time.Time
}

// NewMemory returns a process-local store.
func NewMemory(ttl time.Duration) Store {
	return &memoryStore{ttl: ttl, now: time.Now}
}

func (s *memoryStore) Get(ctx context.Context) (*Credential, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cred == nil {
		return nil, nil
	}
	if s.cred.Expired(s.now()) {
		s.cred = nil
		return nil, nil
	}
	c := *s.cred
	return &c, nil
}

func (s *memoryStore) Set(ctx context.Context, c Credential) error {
	c = prepare(c, s.now(), s.ttl)

	s.mu.Lock()
	s.cred = &c
	s.mu.Unlock()
	return nil
}

func (s *memoryStore) Clear(ctx context.Context) error {
	s.mu.Lock()
	s.cred = nil
	s.mu.Unlock()
	return nil
}

func (s *memoryStore) Close() error { return nil }
