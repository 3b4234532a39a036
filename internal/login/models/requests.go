package models

import (
	"encoding/json"

	s "medgate/pkg/string"
	"medgate/pkg/validation"
)

// CheckCredentialsRequest starts a login sequence. Role selects which account
// class the caller claims to be; it is verified against the stored record,
// never trusted.
type CheckCredentialsRequest struct {
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,notblank,max=128"`
	Role     string `json:"role" validate:"omitempty,oneof=staff admin"`
}

// Normalize trims and lowercases fields so lookups are deterministic.
func (r *CheckCredentialsRequest) Normalize() {
	r.Email = s.NormalizeEmail(r.Email)
	s.TrimStrings(&r.Role)
}

// Validate checks field constraints.
func (r *CheckCredentialsRequest) Validate() error {
	return validation.Validate(r)
}

// BiometricRequest carries the facial descriptor for the biometric stage.
// Descriptor is deferred raw JSON because clients submit it in several
// encodings; the service resolves the shape exactly once.
type BiometricRequest struct {
	Descriptor json.RawMessage `json:"descriptor"`
}

// SessionRequest finishes a staff login: the submitted location is checked
// against the geofence and the password is re-confirmed before a session
// token is minted.
type SessionRequest struct {
	Password string       `json:"password" validate:"required,notblank,max=128"`
	Location *GeoPosition `json:"location"`
}

// Validate checks field constraints.
func (r *SessionRequest) Validate() error {
	return validation.Validate(r)
}

// GeoPosition is the client-reported location payload.
type GeoPosition struct {
	Latitude  float64 `json:"latitude" validate:"latitude"`
	Longitude float64 `json:"longitude" validate:"longitude"`
	Accuracy  float64 `json:"accuracy,omitempty"`
}
