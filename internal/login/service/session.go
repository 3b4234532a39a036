package service

import (
	"context"

	"medgate/internal/audit"
	"medgate/internal/login/models"
	"medgate/internal/platform/tracer"
	"medgate/internal/principal"
	"medgate/internal/token"
	dErrors "medgate/pkg/domain-errors"
)

// IssueSession finishes a staff login. It requires a stage token that already
// passed the biometric stage, re-confirms the password, and checks the
// submitted location against the geofence before minting a session token.
func (s *Service) IssueSession(ctx context.Context, claims *token.Claims, req *models.SessionRequest) (result *models.SessionResult, err error) {
	ctx, span := s.tracer.Start(ctx, tracer.SpanIssueSession)
	defer func() { span.End(err) }()

	if claims != nil && claims.Role != principal.RoleStaff {
		// Administrator sequences complete at the biometric stage.
		s.recorder.Record(ctx, claimsPrincipalRef(claims), audit.KindLoginFail, "Session requested with non-staff token", nil)
		s.incrementStageFailures("token")
		return nil, dErrors.New(dErrors.CodeTokenScope, "token not valid for this operation")
	}
	if claims == nil || !claims.BiometricOK {
		s.recorder.Record(ctx, claimsPrincipalRef(claims), audit.KindLoginFail, "Session requested before biometric stage", nil)
		s.incrementStageFailures("token")
		return nil, dErrors.New(dErrors.CodeTokenScope, "biometric verification required")
	}

	p, err := s.loadBoundPrincipal(ctx, claims)
	if err != nil {
		return nil, err
	}
	span.SetAttributes(tracer.String(tracer.AttrRole, string(p.Role)))

	if req == nil {
		return nil, dErrors.New(dErrors.CodeBadRequest, "request is required")
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	if !s.hasher.Verify(req.Password, p.PasswordHash) {
		s.recorder.Record(ctx, &p.ID, audit.KindLoginFail, "Invalid password", nil)
		s.incrementStageFailures("credentials")
		return nil, dErrors.New(dErrors.CodeCredentialMismatch, "Invalid credentials")
	}

	if req.Location == nil {
		s.recorder.Record(ctx, &p.ID, audit.KindLocationVerifyFail, "Missing location", nil)
		s.incrementStageFailures("geofence")
		return nil, dErrors.New(dErrors.CodeBadRequest, "Location data is required")
	}
	point := principal.GeoPoint{
		Latitude:       req.Location.Latitude,
		Longitude:      req.Location.Longitude,
		AccuracyMeters: req.Location.Accuracy,
	}

	within := s.geo.IsWithinRange(point, p.Reference)
	span.SetAttributes(tracer.Bool(tracer.AttrWithinRange, within))
	if !within {
		s.recorder.Record(ctx, &p.ID, audit.KindLocationVerifyFail, "Outside permitted premises", &point)
		s.incrementStageFailures("geofence")
		s.logger.WarnContext(ctx, "geofence check failed", "principal_id", p.ID)
		return nil, dErrors.New(dErrors.CodeGeofenceViolation, "Outside permitted premises")
	}

	sessionToken, err := s.tokens.IssueSessionToken(p)
	if err != nil {
		return nil, err
	}
	s.recorder.Record(ctx, &p.ID, audit.KindLoginSuccess, "Successful login", &point)
	span.AddEvent(tracer.EventAuditRecorded)
	s.incrementSessionsIssued()
	s.logger.InfoContext(ctx, "session issued", "principal_id", p.ID, "role", p.Role)

	return &models.SessionResult{
		SessionToken: sessionToken,
		Principal:    p.Summarize(),
	}, nil
}
