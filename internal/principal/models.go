package principal

import (
	"time"

	"github.com/google/uuid"

	dErrors "medgate/pkg/domain-errors"
)

// This file contains pure domain models for principals: entities that should
// not depend on transport or HTTP-specific concerns.

// Role discriminates the two principal classes. It is stored on the record
// and carried on every issued token; it is never inferred from lookup paths.
type Role string

const (
	RoleStaff Role = "staff"
	RoleAdmin Role = "admin"
)

// ParseRole validates a client-supplied role string.
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleStaff, RoleAdmin:
		return Role(s), nil
	case "":
		// The original client defaulted omitted roles to staff logins.
		return RoleStaff, nil
	default:
		return "", dErrors.New(dErrors.CodeBadRequest, "unknown role")
	}
}

// GeoPoint is a WGS84 coordinate in decimal degrees. Accuracy is the radius
// of the reading in meters when the client reports one.
type GeoPoint struct {
	Latitude       float64 `json:"latitude"`
	Longitude      float64 `json:"longitude"`
	AccuracyMeters float64 `json:"accuracy,omitempty"`
}

// LeaveBalance tracks granted versus used leave days for staff. It rides on
// the principal record but is not consulted by any verification stage.
type LeaveBalance struct {
	Granted int `json:"granted"`
	Used    int `json:"used"`
}

// Principal is a staff member or administrator eligible to authenticate.
// PasswordHash is never empty on a persisted record. Descriptor, when set,
// holds the canonical transport encoding of the enrolled biometric vector.
type Principal struct {
	ID           uuid.UUID
	Email        string
	Name         string
	PasswordHash string
	Role         Role

	// Descriptor is mutated exactly once per enrollment by the orchestrator.
	Descriptor string

	// Staff only: the permitted geofence center for this principal. When nil,
	// the deployment-wide reference applies.
	Reference *GeoPoint

	Leave LeaveBalance

	CreatedAt time.Time
}

// HasDescriptor reports whether a biometric descriptor has been enrolled.
func (p *Principal) HasDescriptor() bool {
	return len(p.Descriptor) > 0
}

// Summary is the client-facing projection of a principal. The password hash
// and raw descriptor never leave the core.
type Summary struct {
	ID    string        `json:"id"`
	Name  string        `json:"name"`
	Email string        `json:"email"`
	Role  Role          `json:"role"`
	Leave *LeaveBalance `json:"leave,omitempty"`
}

// Summarize builds the response projection for a principal.
func (p *Principal) Summarize() Summary {
	s := Summary{
		ID:    p.ID.String(),
		Name:  p.Name,
		Email: p.Email,
		Role:  p.Role,
	}
	if p.Role == RoleStaff {
		leave := p.Leave
		s.Leave = &leave
	}
	return s
}
