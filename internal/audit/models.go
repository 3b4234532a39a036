package audit

import (
	"time"

	"github.com/google/uuid"

	"medgate/internal/principal"
)

// Kind enumerates the verification events the pipeline can record.
type Kind string

const (
	KindLoginSuccess       Kind = "LOGIN_SUCCESS"
	KindLoginFail          Kind = "LOGIN_FAIL"
	KindFaceVerifySuccess  Kind = "FACE_VERIFY_SUCCESS"
	KindFaceVerifyFail     Kind = "FACE_VERIFY_FAIL"
	KindFaceEnrolled       Kind = "FACE_DATA_STORED"
	KindLocationVerifyFail Kind = "LOCATION_VERIFY_FAIL"
)

// suspiciousKinds marks the failure classes surfaced by the review endpoint.
// The flag is stamped onto events at creation; nothing downstream re-derives
// it from the kind text.
var suspiciousKinds = map[Kind]bool{
	KindLoginFail:          true,
	KindFaceVerifyFail:     true,
	KindLocationVerifyFail: true,
}

// Event is the immutable record of one verification decision. PrincipalID is
// nil when the principal could not be resolved. CreatedAt is set at creation
// and never mutated.
type Event struct {
	ID          uuid.UUID           `json:"id"`
	PrincipalID *uuid.UUID          `json:"principal_id,omitempty"`
	Kind        Kind                `json:"type"`
	Detail      string              `json:"details"`
	Location    *principal.GeoPoint `json:"location,omitempty"`
	Suspicious  bool                `json:"suspicious"`
	CreatedAt   time.Time           `json:"created_at"`
}

// NewEvent stamps identity, timestamp, and the suspicious flag.
func NewEvent(principalID *uuid.UUID, kind Kind, detail string, loc *principal.GeoPoint) Event {
	return Event{
		ID:          uuid.New(),
		PrincipalID: principalID,
		Kind:        kind,
		Detail:      detail,
		Location:    loc,
		Suspicious:  suspiciousKinds[kind],
		CreatedAt:   time.Now().UTC(),
	}
}
