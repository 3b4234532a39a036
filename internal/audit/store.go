package audit

import (
	"context"

	"github.com/google/uuid"
)

const (
	defaultPageSize = 10
	maxPageSize     = 100
)

// Page selects a window of the newest-first event stream.
type Page struct {
	Number int
	Size   int
}

// Normalize clamps page parameters to sane bounds.
func (p Page) Normalize() Page {
	if p.Number < 1 {
		p.Number = 1
	}
	if p.Size < 1 {
		p.Size = defaultPageSize
	}
	if p.Size > maxPageSize {
		p.Size = maxPageSize
	}
	return p
}

func (p Page) offset() int {
	return (p.Number - 1) * p.Size
}

// Store is the append-only audit sink. Implementations never mutate or
// delete prior entries. List queries return events newest first along with
// the total count for pagination.
type Store interface {
	Append(ctx context.Context, event Event) error
	ListRecent(ctx context.Context, page Page) ([]Event, int, error)
	ListSuspicious(ctx context.Context, page Page) ([]Event, int, error)
	ListByPrincipal(ctx context.Context, principalID uuid.UUID, limit int) ([]Event, error)
}
