// Package handler exposes the staged login pipeline over HTTP.
package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"medgate/internal/login/models"
	"medgate/internal/platform/middleware"
	"medgate/internal/token"
	httpError "medgate/internal/transport/http/error"
	jsonResponse "medgate/internal/transport/http/json"
	dErrors "medgate/pkg/domain-errors"
)

// Service defines the login pipeline operations the handler depends on.
type Service interface {
	CheckCredentials(ctx context.Context, req *models.CheckCredentialsRequest) (*models.CheckCredentialsResult, error)
	Biometric(ctx context.Context, claims *token.Claims, req *models.BiometricRequest) (*models.BiometricResult, error)
	IssueSession(ctx context.Context, claims *token.Claims, req *models.SessionRequest) (*models.SessionResult, error)
}

// Handler handles the three login stage endpoints.
type Handler struct {
	login  Service
	logger *slog.Logger
}

// New creates a login Handler.
func New(login Service, logger *slog.Logger) *Handler {
	return &Handler{login: login, logger: logger}
}

// Register registers the unauthenticated entry point. The stage endpoints
// are registered separately so the parent router can guard them with the
// stage-token middleware.
func (h *Handler) Register(r chi.Router) {
	r.Post("/auth/check-credentials", h.HandleCheckCredentials)
}

// RegisterStaged registers the endpoints that require a stage token.
func (h *Handler) RegisterStaged(r chi.Router) {
	r.Post("/auth/biometric", h.HandleBiometric)
	r.Post("/auth/session", h.HandleIssueSession)
}

// HandleCheckCredentials implements POST /auth/check-credentials.
// Verifies email, role, and password and returns a stage token for the
// remaining verification stages.
func (h *Handler) HandleCheckCredentials(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req *models.CheckCredentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.WarnContext(ctx, "failed to decode check-credentials request",
			"error", err,
			"request_id", middleware.GetRequestID(ctx),
		)
		httpError.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "Invalid JSON in request body"))
		return
	}

	result, err := h.login.CheckCredentials(ctx, req)
	if err != nil {
		httpError.WriteError(w, err)
		return
	}

	jsonResponse.WriteJSON(w, http.StatusOK, map[string]any{
		"success":        true,
		"principal_id":   result.PrincipalID,
		"role":           result.Role,
		"has_descriptor": result.HasDescriptor,
		"stage_token":    result.StageToken,
		"next_stage":     result.NextStage,
	})
}

// HandleBiometric implements POST /auth/biometric. Requires a stage token.
// Enrolls or verifies the facial descriptor; administrators receive their
// session token here, staff a refreshed stage token for the geofence stage.
func (h *Handler) HandleBiometric(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	claims := middleware.GetClaims(ctx)

	var req *models.BiometricRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpError.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "Invalid JSON in request body"))
		return
	}

	result, err := h.login.Biometric(ctx, claims, req)
	if err != nil {
		httpError.WriteError(w, err)
		return
	}

	response := map[string]any{
		"success":    true,
		"enrolled":   result.Enrolled,
		"next_stage": result.NextStage,
	}
	if result.StageToken != "" {
		response["stage_token"] = result.StageToken
	}
	if result.SessionToken != "" {
		response["session_token"] = result.SessionToken
	}
	if result.Principal != nil {
		response["principal"] = result.Principal
	}
	jsonResponse.WriteJSON(w, http.StatusOK, response)
}

// HandleIssueSession implements POST /auth/session. Requires a stage token
// that already passed the biometric stage. Confirms password and location
// and returns the session token.
func (h *Handler) HandleIssueSession(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	claims := middleware.GetClaims(ctx)

	var req *models.SessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpError.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "Invalid JSON in request body"))
		return
	}

	result, err := h.login.IssueSession(ctx, claims, req)
	if err != nil {
		httpError.WriteError(w, err)
		return
	}

	jsonResponse.WriteJSON(w, http.StatusOK, map[string]any{
		"success":       true,
		"session_token": result.SessionToken,
		"principal":     result.Principal,
	})
}
