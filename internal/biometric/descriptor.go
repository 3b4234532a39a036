// Package biometric implements facial descriptor handling: tolerant decoding
// of the transport encodings, the canonical persistence encoding, and
// Euclidean-distance matching. Every ambiguous or malformed input is treated
// as a verification failure, never as a crash.
package biometric

import (
	"encoding/base64"
	"encoding/json"
	"math"
	"strings"

	dErrors "medgate/pkg/domain-errors"
)

// Descriptor is a fixed-length facial embedding. All descriptors for a
// deployment share one dimensionality; values are single-precision to match
// the capture side.
type Descriptor []float32

// DefaultThreshold is the empirical similarity cutoff for the descriptor
// space in use. Deployments override it through configuration.
const DefaultThreshold = 0.6

// ParseInput resolves a request-boundary descriptor into a Descriptor.
// The wire shape is a sum of two cases: a raw numeric array, or a JSON string
// holding either the array's text form or a base64 encoding of it. The format
// is resolved exactly once here; everything past the boundary operates on the
// typed vector.
func ParseInput(raw json.RawMessage) (Descriptor, error) {
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" || trimmed == "null" {
		return nil, dErrors.New(dErrors.CodeInvalidDescriptor, "missing descriptor")
	}

	if strings.HasPrefix(trimmed, "[") {
		var d Descriptor
		if err := json.Unmarshal(raw, &d); err != nil || len(d) == 0 {
			return nil, dErrors.New(dErrors.CodeInvalidDescriptor, "descriptor is not a numeric array")
		}
		return d, nil
	}

	var text string
	if err := json.Unmarshal(raw, &text); err != nil {
		return nil, dErrors.New(dErrors.CodeInvalidDescriptor, "descriptor is neither array nor string")
	}
	return DecodeStored(text)
}

// DecodeStored decodes a persisted or text-form descriptor. It accepts the
// array's JSON text directly, or a base64 encoding of that text (the
// canonical storage form produced by Encode).
func DecodeStored(s string) (Descriptor, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, dErrors.New(dErrors.CodeInvalidDescriptor, "empty descriptor")
	}

	if !strings.HasPrefix(s, "[") {
		decoded, err := base64.StdEncoding.DecodeString(s)
		if err != nil {
			return nil, dErrors.New(dErrors.CodeInvalidDescriptor, "descriptor is not valid base64")
		}
		s = string(decoded)
	}

	var d Descriptor
	if err := json.Unmarshal([]byte(s), &d); err != nil || len(d) == 0 {
		return nil, dErrors.New(dErrors.CodeInvalidDescriptor, "descriptor is not a numeric array")
	}
	return d, nil
}

// Encode produces the canonical transport encoding used when persisting an
// enrolled descriptor: JSON text, then base64. DecodeStored inverts it.
func Encode(d Descriptor) (string, error) {
	if len(d) == 0 {
		return "", dErrors.New(dErrors.CodeInvalidDescriptor, "cannot encode empty descriptor")
	}
	data, err := json.Marshal(d)
	if err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeInvalidDescriptor, "encode descriptor")
	}
	return base64.StdEncoding.EncodeToString(data), nil
}

// Validate reports whether a boundary payload decodes to a usable descriptor.
func Validate(raw json.RawMessage) bool {
	_, err := ParseInput(raw)
	return err == nil
}

// Matcher compares descriptors against a configured distance threshold.
type Matcher struct {
	threshold float64
}

// NewMatcher builds a Matcher. Non-positive thresholds fall back to the
// default cutoff.
func NewMatcher(threshold float64) *Matcher {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	return &Matcher{threshold: threshold}
}

// Match reports whether two descriptors are the same face. Mismatched
// lengths and empty vectors are a no-match, not an error: cross-model
// descriptors must fail verification rather than abort the login.
func (m *Matcher) Match(stored, incoming Descriptor) bool {
	if len(stored) == 0 || len(incoming) == 0 || len(stored) != len(incoming) {
		return false
	}
	return Distance(stored, incoming) <= m.threshold
}

// Distance computes the Euclidean distance between two equal-length
// descriptors. Callers guarantee the length invariant.
func Distance(a, b Descriptor) float64 {
	var sum float64
	for i := range a {
		diff := float64(a[i]) - float64(b[i])
		sum += diff * diff
	}
	return math.Sqrt(sum)
}
