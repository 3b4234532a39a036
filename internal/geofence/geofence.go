// Package geofence checks submitted locations against a circular permitted
// region using the haversine great-circle distance.
package geofence

import (
	"math"

	"medgate/internal/principal"
)

// earthRadiusMeters is the mean Earth radius used by the haversine formula.
const earthRadiusMeters = 6371000

// Config holds the deployment-wide geofence settings. Reference is the
// fallback center when a principal carries no fixed location of its own.
type Config struct {
	Reference         *principal.GeoPoint
	MaxDistanceMeters float64
}

// Validator decides whether a reading falls inside the permitted region.
// It is a pure function of its inputs: no side effects, deterministic for
// identical floating-point inputs.
type Validator struct {
	cfg Config
}

// NewValidator builds a Validator from deployment configuration.
func NewValidator(cfg Config) *Validator {
	return &Validator{cfg: cfg}
}

// IsWithinRange reports whether point lies within the permitted radius of the
// reference center. The principal's own reference wins over the deployment
// default. An unconfigured reference or non-positive radius fails closed:
// the check returns false rather than being skipped.
func (v *Validator) IsWithinRange(point principal.GeoPoint, ref *principal.GeoPoint) bool {
	center := ref
	if center == nil {
		center = v.cfg.Reference
	}
	if center == nil || v.cfg.MaxDistanceMeters <= 0 {
		return false
	}
	return Distance(point, *center) <= v.cfg.MaxDistanceMeters
}

// Distance returns the great-circle distance between two points in meters.
func Distance(a, b principal.GeoPoint) float64 {
	phi1 := a.Latitude * math.Pi / 180
	phi2 := b.Latitude * math.Pi / 180
	dPhi := (b.Latitude - a.Latitude) * math.Pi / 180
	dLambda := (b.Longitude - a.Longitude) * math.Pi / 180

	h := math.Sin(dPhi/2)*math.Sin(dPhi/2) +
		math.Cos(phi1)*math.Cos(phi2)*math.Sin(dLambda/2)*math.Sin(dLambda/2)
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))

	return earthRadiusMeters * c
}
