package principal

import (
	"context"

	"github.com/google/uuid"

	pkgerrors "medgate/pkg/domain-errors"
)

var (
	// ErrNotFound keeps storage-specific 404s consistent across implementations.
	ErrNotFound = pkgerrors.New(pkgerrors.CodeNotFound, "principal not found")
)

// Store is the persistence contract the orchestrator depends on.
//
// Error Contract:
// - Find methods return ErrNotFound when the principal does not exist
// - Infrastructure failures are wrapped with CodeStoreUnavailable
// - UpdateDescriptor is atomic; concurrent enrollments resolve last-write-wins
type Store interface {
	Save(ctx context.Context, p *Principal) error
	FindByID(ctx context.Context, id uuid.UUID) (*Principal, error)
	FindByEmail(ctx context.Context, email string) (*Principal, error)
	UpdateDescriptor(ctx context.Context, id uuid.UUID, descriptor string) error
}
