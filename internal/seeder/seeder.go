// Package seeder populates the principal store at startup: the initial
// administrator account from configuration, and optional demo staff for
// local development.
package seeder

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"medgate/internal/password"
	"medgate/internal/principal"
	dErrors "medgate/pkg/domain-errors"
)

// PrincipalStore defines the methods needed for seeding.
type PrincipalStore interface {
	Save(ctx context.Context, p *principal.Principal) error
	FindByEmail(ctx context.Context, email string) (*principal.Principal, error)
}

// Seeder creates startup accounts.
type Seeder struct {
	principals PrincipalStore
	hasher     *password.Hasher
	logger     *slog.Logger
}

// New creates a Seeder.
func New(principals PrincipalStore, hasher *password.Hasher, logger *slog.Logger) *Seeder {
	return &Seeder{principals: principals, hasher: hasher, logger: logger}
}

// EnsureAdmin creates the administrator account if no account with the given
// email exists. An existing account is left untouched regardless of role or
// password so restarts never clobber manual changes.
func (s *Seeder) EnsureAdmin(ctx context.Context, email, secret, name string) error {
	if email == "" || secret == "" {
		s.logger.Info("admin seed skipped, credentials not configured")
		return nil
	}

	_, err := s.principals.FindByEmail(ctx, email)
	if err == nil {
		s.logger.Info("admin account already present", "email", email)
		return nil
	}
	if !dErrors.HasCode(err, dErrors.CodeNotFound) {
		return fmt.Errorf("look up admin account: %w", err)
	}

	digest, err := s.hasher.Hash(secret)
	if err != nil {
		return fmt.Errorf("hash admin password: %w", err)
	}
	if name == "" {
		name = "Administrator"
	}
	admin := &principal.Principal{
		ID:           uuid.New(),
		Email:        email,
		Name:         name,
		PasswordHash: digest,
		Role:         principal.RoleAdmin,
	}
	if err := s.principals.Save(ctx, admin); err != nil {
		return fmt.Errorf("save admin account: %w", err)
	}
	s.logger.Info("admin account created", "email", email)
	return nil
}

// SeedDemoData creates a handful of staff accounts with leave balances for
// local development. All demo accounts share the password "password123".
func (s *Seeder) SeedDemoData(ctx context.Context, reference *principal.GeoPoint) error {
	demoStaff := []struct {
		email string
		name  string
		leave principal.LeaveBalance
	}{
		{"doc1@medgate.local", "Dr. Priya Raman", principal.LeaveBalance{Granted: 20, Used: 4}},
		{"doc2@medgate.local", "Dr. Arjun Nair", principal.LeaveBalance{Granted: 20, Used: 0}},
		{"doc3@medgate.local", "Dr. Sarah Thomas", principal.LeaveBalance{Granted: 15, Used: 11}},
	}

	digest, err := s.hasher.Hash("password123")
	if err != nil {
		return fmt.Errorf("hash demo password: %w", err)
	}

	created := 0
	for _, d := range demoStaff {
		if _, err := s.principals.FindByEmail(ctx, d.email); err == nil {
			continue
		} else if !dErrors.HasCode(err, dErrors.CodeNotFound) {
			return fmt.Errorf("look up demo account: %w", err)
		}

		p := &principal.Principal{
			ID:           uuid.New(),
			Email:        d.email,
			Name:         d.name,
			PasswordHash: digest,
			Role:         principal.RoleStaff,
			Reference:    reference,
			Leave:        d.leave,
		}
		if err := s.principals.Save(ctx, p); err != nil {
			return fmt.Errorf("save demo account: %w", err)
		}
		created++
	}
	s.logger.Info("demo data seeded", "staff_created", created)
	return nil
}
