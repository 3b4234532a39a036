package service

import (
	"context"

	"medgate/internal/audit"
	"medgate/internal/login/models"
	"medgate/internal/platform/tracer"
	"medgate/internal/principal"
	dErrors "medgate/pkg/domain-errors"
)

// CheckCredentials verifies email, claimed role, and password, and starts a
// login sequence by minting a stage token. An unknown account and a role
// mismatch are indistinguishable to the caller.
func (s *Service) CheckCredentials(ctx context.Context, req *models.CheckCredentialsRequest) (result *models.CheckCredentialsResult, err error) {
	ctx, span := s.tracer.Start(ctx, tracer.SpanCheckCredentials)
	defer func() { span.End(err) }()

	if req == nil {
		return nil, dErrors.New(dErrors.CodeBadRequest, "request is required")
	}
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, err
	}

	role, err := principal.ParseRole(req.Role)
	if err != nil {
		return nil, err
	}
	span.SetAttributes(
		tracer.String(tracer.AttrRole, string(role)),
		tracer.String(tracer.AttrEmailHash, tracer.HashEmail(req.Email)),
	)
	s.incrementLoginAttempts(string(role))

	p, err := s.principals.FindByEmail(ctx, req.Email)
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeNotFound) {
			s.recorder.Record(ctx, nil, audit.KindLoginFail, "Unknown account", nil)
			s.incrementStageFailures("credentials")
			return nil, dErrors.New(dErrors.CodeNotFound, "Account not found")
		}
		return nil, err
	}

	if p.Role != role {
		// Same outcome as an unknown account so probing cannot reveal which
		// role an address belongs to.
		s.recorder.Record(ctx, &p.ID, audit.KindLoginFail, "Role mismatch", nil)
		s.incrementStageFailures("credentials")
		return nil, dErrors.New(dErrors.CodeNotFound, "Account not found")
	}

	if !s.hasher.Verify(req.Password, p.PasswordHash) {
		s.recorder.Record(ctx, &p.ID, audit.KindLoginFail, "Invalid password", nil)
		s.incrementStageFailures("credentials")
		s.logger.WarnContext(ctx, "password verification failed", "principal_id", p.ID)
		return nil, dErrors.New(dErrors.CodeCredentialMismatch, "Invalid credentials")
	}

	stageToken, err := s.tokens.IssueStageToken(p)
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "credentials verified", "principal_id", p.ID, "role", p.Role)
	return &models.CheckCredentialsResult{
		PrincipalID:   p.ID.String(),
		Role:          string(p.Role),
		HasDescriptor: p.HasDescriptor(),
		StageToken:    stageToken,
		NextStage:     models.StageBiometric,
	}, nil
}
