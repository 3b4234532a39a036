package principal

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// InMemoryStore keeps principals in memory. It is the default backing store
// for tests and for deployments without DATABASE_URL.
type InMemoryStore struct {
	mu         sync.RWMutex
	principals map[uuid.UUID]*Principal
}

// NewInMemoryStore constructs an empty in-memory principal store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{principals: make(map[uuid.UUID]*Principal)}
}

func (s *InMemoryStore) Save(_ context.Context, p *Principal) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *p
	s.principals[p.ID] = &cp
	return nil
}

func (s *InMemoryStore) FindByID(_ context.Context, id uuid.UUID) (*Principal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if p, ok := s.principals[id]; ok {
		cp := *p
		return &cp, nil
	}
	return nil, ErrNotFound
}

func (s *InMemoryStore) FindByEmail(_ context.Context, email string) (*Principal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, p := range s.principals {
		if p.Email == email {
			cp := *p
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

// UpdateDescriptor overwrites the stored descriptor. Two racing first-time
// enrollments both succeed; the later write becomes durable.
func (s *InMemoryStore) UpdateDescriptor(_ context.Context, id uuid.UUID, descriptor string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.principals[id]
	if !ok {
		return ErrNotFound
	}
	p.Descriptor = descriptor
	return nil
}
