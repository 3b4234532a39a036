package error

import (
	"errors"
	"net/http"

	jsonResponse "medgate/internal/transport/http/json"
	dErrors "medgate/pkg/domain-errors"
)

// WriteError centralizes domain error translation to HTTP responses.
// Internal details (wrapped causes, stack state) never reach the body; the
// client sees the stable code and the domain message only.
func WriteError(w http.ResponseWriter, err error) {
	var domainErr *dErrors.Error
	if errors.As(err, &domainErr) {
		response := map[string]any{
			"success": false,
			"error":   string(domainErr.Code),
		}
		if domainErr.Message != "" {
			response["message"] = domainErr.Message
		}
		if domainErr.Code == dErrors.CodeStoreUnavailable {
			// The only failure class the caller may retry.
			response["retryable"] = true
		}
		jsonResponse.WriteJSON(w, DomainCodeToHTTPStatus(domainErr.Code), response)
		return
	}

	jsonResponse.WriteJSON(w, http.StatusInternalServerError, map[string]any{
		"success": false,
		"error":   string(dErrors.CodeInternal),
	})
}

// DomainCodeToHTTPStatus translates domain error codes to HTTP status codes.
func DomainCodeToHTTPStatus(code dErrors.Code) int {
	switch code {
	case dErrors.CodeNotFound:
		return http.StatusNotFound
	case dErrors.CodeBadRequest, dErrors.CodeInvalidDescriptor:
		return http.StatusBadRequest
	case dErrors.CodeCredentialMismatch, dErrors.CodeGeofenceViolation, dErrors.CodeTokenScope:
		return http.StatusUnauthorized
	case dErrors.CodeForbidden:
		return http.StatusForbidden
	case dErrors.CodeStoreUnavailable:
		return http.StatusServiceUnavailable
	case dErrors.CodeConfigurationMissing, dErrors.CodeInternal:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}
