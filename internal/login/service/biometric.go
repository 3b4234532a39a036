package service

import (
	"context"

	"medgate/internal/audit"
	"medgate/internal/biometric"
	"medgate/internal/login/models"
	"medgate/internal/platform/tracer"
	"medgate/internal/principal"
	"medgate/internal/token"
	dErrors "medgate/pkg/domain-errors"
)

// Biometric runs the facial descriptor stage of a login sequence. A principal
// without a stored descriptor is enrolled from the submitted one; otherwise
// the submitted descriptor must match the stored one within the configured
// threshold. Administrators finish their login here; staff receive a
// refreshed stage token for the geofence stage.
func (s *Service) Biometric(ctx context.Context, claims *token.Claims, req *models.BiometricRequest) (result *models.BiometricResult, err error) {
	ctx, span := s.tracer.Start(ctx, tracer.SpanBiometric)
	defer func() { span.End(err) }()

	p, err := s.loadBoundPrincipal(ctx, claims)
	if err != nil {
		return nil, err
	}
	span.SetAttributes(tracer.String(tracer.AttrRole, string(p.Role)))

	hasDescriptor := p.HasDescriptor()
	submitted := rawDescriptor(req)

	if len(submitted) == 0 {
		if p.Role == principal.RoleAdmin && !hasDescriptor {
			// First administrator login may complete without a descriptor;
			// enrollment happens on a later login when one is supplied.
			return s.completeAdminLogin(ctx, span, p, false)
		}
		s.recorder.Record(ctx, &p.ID, audit.KindFaceVerifyFail, "Missing descriptor", nil)
		s.incrementStageFailures("biometric")
		return nil, dErrors.New(dErrors.CodeInvalidDescriptor, "Face descriptor is required")
	}

	incoming, err := biometric.ParseInput(submitted)
	if err != nil {
		s.recorder.Record(ctx, &p.ID, audit.KindFaceVerifyFail, "Malformed descriptor", nil)
		s.incrementStageFailures("biometric")
		return nil, err
	}

	enrolled := false
	if !hasDescriptor {
		encoded, err := biometric.Encode(incoming)
		if err != nil {
			return nil, err
		}
		if err := s.principals.UpdateDescriptor(ctx, p.ID, encoded); err != nil {
			return nil, err
		}
		s.recorder.Record(ctx, &p.ID, audit.KindFaceEnrolled, "Face data stored", nil)
		s.incrementEnrollments()
		s.logger.InfoContext(ctx, "descriptor enrolled", "principal_id", p.ID)
		enrolled = true
	} else {
		stored, decodeErr := biometric.DecodeStored(p.Descriptor)
		if decodeErr != nil || !s.matcher.Match(stored, incoming) {
			// An unreadable stored descriptor fails closed as a mismatch.
			s.recorder.Record(ctx, &p.ID, audit.KindFaceVerifyFail, "Face verification failed", nil)
			s.incrementStageFailures("biometric")
			s.logger.WarnContext(ctx, "face verification failed", "principal_id", p.ID)
			return nil, dErrors.New(dErrors.CodeCredentialMismatch, "Face verification failed")
		}
		s.recorder.Record(ctx, &p.ID, audit.KindFaceVerifySuccess, "Face verified", nil)
	}
	span.SetAttributes(tracer.Bool(tracer.AttrEnrolled, enrolled))

	if p.Role == principal.RoleAdmin {
		return s.completeAdminLogin(ctx, span, p, enrolled)
	}

	stageToken, err := s.tokens.IssueVerifiedStageToken(p)
	if err != nil {
		return nil, err
	}
	return &models.BiometricResult{
		Enrolled:   enrolled,
		NextStage:  models.StageGeofence,
		StageToken: stageToken,
	}, nil
}

// completeAdminLogin issues the session credential for an administrator,
// whose sequence has no geofence stage.
func (s *Service) completeAdminLogin(ctx context.Context, span tracer.Span, p *principal.Principal, enrolled bool) (*models.BiometricResult, error) {
	sessionToken, err := s.tokens.IssueSessionToken(p)
	if err != nil {
		return nil, err
	}
	s.recorder.Record(ctx, &p.ID, audit.KindLoginSuccess, "Administrator login", nil)
	span.AddEvent(tracer.EventAuditRecorded)
	s.incrementSessionsIssued()
	s.logger.InfoContext(ctx, "session issued", "principal_id", p.ID, "role", p.Role)

	summary := p.Summarize()
	return &models.BiometricResult{
		Enrolled:     enrolled,
		NextStage:    models.StageComplete,
		SessionToken: sessionToken,
		Principal:    &summary,
	}, nil
}

func rawDescriptor(req *models.BiometricRequest) []byte {
	if req == nil {
		return nil
	}
	raw := req.Descriptor
	if string(raw) == "null" {
		return nil
	}
	return raw
}
