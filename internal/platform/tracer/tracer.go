// Package tracer provides a lightweight tracing abstraction for the login
// pipeline. It keeps the orchestration code decoupled from OpenTelemetry
// while still emitting per-stage spans in production.
package tracer

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// Span represents an active trace span.
type Span interface {
	// End completes the span, recording any error that occurred. It must be
	// called exactly once, typically via defer.
	End(err error)

	// SetAttributes adds key-value pairs to the span.
	SetAttributes(attrs ...Attribute)

	// AddEvent records a timestamped event within the span.
	AddEvent(name string, attrs ...Attribute)
}

// Tracer creates spans. Implementations must be safe for concurrent use.
type Tracer interface {
	Start(ctx context.Context, name string, attrs ...Attribute) (context.Context, Span)
}

// Attribute represents a key-value pair attached to spans.
type Attribute struct {
	Key   string
	Value any
}

func String(key, value string) Attribute {
	return Attribute{Key: key, Value: value}
}

func Bool(key string, value bool) Attribute {
	return Attribute{Key: key, Value: value}
}

func Int64(key string, value int64) Attribute {
	return Attribute{Key: key, Value: value}
}

func Float64(key string, value float64) Attribute {
	return Attribute{Key: key, Value: value}
}

func Duration(key string, value time.Duration) Attribute {
	return Attribute{Key: key, Value: value.Milliseconds()}
}

// HashEmail returns a short SHA-256 hash of an email address so traces can be
// correlated by account without exposing PII.
func HashEmail(email string) string {
	if email == "" {
		return ""
	}
	hash := sha256.Sum256([]byte(email))
	return hex.EncodeToString(hash[:8])
}

// Span names used by the login pipeline.
const (
	SpanCheckCredentials = "login.check_credentials"
	SpanBiometric        = "login.biometric"
	SpanIssueSession     = "login.issue_session"
)

// Attribute keys used by the login pipeline.
const (
	AttrRole        = "principal.role"
	AttrEmailHash   = "principal.email_hash"
	AttrStage       = "login.stage"
	AttrEnrolled    = "biometric.enrolled"
	AttrDistance    = "geofence.distance_m"
	AttrWithinRange = "geofence.within_range"
)

// Event names used by the login pipeline.
const (
	EventAuditRecorded = "audit.recorded"
)
