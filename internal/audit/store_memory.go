package audit

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// InMemoryStore keeps the event stream in memory, newest last.
type InMemoryStore struct {
	mu     sync.RWMutex
	events []Event
}

// NewInMemoryStore constructs an empty in-memory audit store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{}
}

func (s *InMemoryStore) Append(_ context.Context, event Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
	return nil
}

func (s *InMemoryStore) ListRecent(_ context.Context, page Page) ([]Event, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return paginate(s.filter(func(Event) bool { return true }), page)
}

func (s *InMemoryStore) ListSuspicious(_ context.Context, page Page) ([]Event, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return paginate(s.filter(func(e Event) bool { return e.Suspicious }), page)
}

func (s *InMemoryStore) ListByPrincipal(_ context.Context, principalID uuid.UUID, limit int) ([]Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	matched := s.filter(func(e Event) bool {
		return e.PrincipalID != nil && *e.PrincipalID == principalID
	})
	if limit > 0 && len(matched) > limit {
		matched = matched[:limit]
	}
	return matched, nil
}

// filter returns matching events newest first. Callers hold the read lock.
func (s *InMemoryStore) filter(keep func(Event) bool) []Event {
	var out []Event
	for i := len(s.events) - 1; i >= 0; i-- {
		if keep(s.events[i]) {
			out = append(out, s.events[i])
		}
	}
	return out
}

func paginate(events []Event, page Page) ([]Event, int, error) {
	page = page.Normalize()
	total := len(events)
	start := page.offset()
	if start >= total {
		return []Event{}, total, nil
	}
	end := start + page.Size
	if end > total {
		end = total
	}
	return events[start:end], total, nil
}
