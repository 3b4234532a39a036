// Package service orchestrates the staged login pipeline: password check,
// facial descriptor verification, geofence confirmation, and session
// issuance, with an audit record at every decision point.
package service

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"medgate/internal/audit"
	"medgate/internal/biometric"
	"medgate/internal/geofence"
	"medgate/internal/password"
	"medgate/internal/platform/metrics"
	"medgate/internal/platform/tracer"
	"medgate/internal/principal"
	"medgate/internal/token"
	dErrors "medgate/pkg/domain-errors"
)

// PrincipalStore defines the persistence interface for principal records.
// Error Contract: Find methods return principal.ErrNotFound when the record
// doesn't exist.
type PrincipalStore interface {
	Save(ctx context.Context, p *principal.Principal) error
	FindByID(ctx context.Context, id uuid.UUID) (*principal.Principal, error)
	FindByEmail(ctx context.Context, email string) (*principal.Principal, error)
	UpdateDescriptor(ctx context.Context, id uuid.UUID, descriptor string) error
}

// TokenIssuer mints the two credential classes of the pipeline.
type TokenIssuer interface {
	IssueStageToken(p *principal.Principal) (string, error)
	IssueVerifiedStageToken(p *principal.Principal) (string, error)
	IssueSessionToken(p *principal.Principal) (string, error)
}

type Service struct {
	principals PrincipalStore
	hasher     *password.Hasher
	matcher    *biometric.Matcher
	geo        *geofence.Validator
	tokens     TokenIssuer
	recorder   *audit.Recorder
	logger     *slog.Logger
	metrics    *metrics.Metrics
	tracer     tracer.Tracer
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func WithTracer(t tracer.Tracer) Option {
	return func(s *Service) {
		s.tracer = t
	}
}

// NewService builds the login orchestrator. Logger, metrics, and tracer are
// optional; absent collaborators degrade to no-ops.
func NewService(
	principals PrincipalStore,
	hasher *password.Hasher,
	matcher *biometric.Matcher,
	geo *geofence.Validator,
	tokens TokenIssuer,
	recorder *audit.Recorder,
	opts ...Option,
) *Service {
	s := &Service{
		principals: principals,
		hasher:     hasher,
		matcher:    matcher,
		geo:        geo,
		tokens:     tokens,
		recorder:   recorder,
		logger:     slog.Default(),
		tracer:     tracer.NewNoop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// loadBoundPrincipal resolves the principal a stage token was minted for and
// re-checks the identity binding. A token whose email or role no longer
// matches the stored record is treated as unusable, not as a lookup failure.
func (s *Service) loadBoundPrincipal(ctx context.Context, claims *token.Claims) (*principal.Principal, error) {
	if claims == nil {
		return nil, dErrors.New(dErrors.CodeTokenScope, "missing token")
	}
	id, err := uuid.Parse(claims.PrincipalID)
	if err != nil {
		return nil, dErrors.New(dErrors.CodeTokenScope, "invalid token")
	}

	p, err := s.principals.FindByID(ctx, id)
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeNotFound) {
			s.recorder.Record(ctx, nil, audit.KindLoginFail, "Account missing mid-login", nil)
			return nil, dErrors.New(dErrors.CodeNotFound, "Account not found")
		}
		return nil, err
	}

	if claims.Email != p.Email || claims.Role != p.Role {
		s.recorder.Record(ctx, &p.ID, audit.KindLoginFail, "Stale token identity", nil)
		return nil, dErrors.New(dErrors.CodeTokenScope, "token not valid for this operation")
	}
	return p, nil
}

// claimsPrincipalRef extracts the principal reference for audit rows written
// before the token's identity binding has been verified. Unparseable subjects
// are recorded without a reference.
func claimsPrincipalRef(claims *token.Claims) *uuid.UUID {
	if claims == nil {
		return nil
	}
	id, err := uuid.Parse(claims.PrincipalID)
	if err != nil {
		return nil
	}
	return &id
}
