package models

import "medgate/internal/principal"

// Stage names returned to clients so they know which step comes next.
const (
	StageBiometric = "biometric"
	StageGeofence  = "geofence"
	StageComplete  = "complete"
)

// CheckCredentialsResult is the outcome of the first stage. StageToken is
// valid only for continuing this login sequence.
type CheckCredentialsResult struct {
	PrincipalID   string `json:"principal_id"`
	Role          string `json:"role"`
	HasDescriptor bool   `json:"has_descriptor"`
	StageToken    string `json:"stage_token"`
	NextStage     string `json:"next_stage"`
}

// BiometricResult is the outcome of the biometric stage. For staff it carries
// a refreshed stage token marked biometric-verified; for administrators the
// login completes here and SessionToken is set.
type BiometricResult struct {
	Enrolled     bool               `json:"enrolled"`
	NextStage    string             `json:"next_stage"`
	StageToken   string             `json:"stage_token,omitempty"`
	SessionToken string             `json:"session_token,omitempty"`
	Principal    *principal.Summary `json:"principal,omitempty"`
}

// SessionResult is the outcome of a completed staff login.
type SessionResult struct {
	SessionToken string            `json:"session_token"`
	Principal    principal.Summary `json:"principal"`
}
