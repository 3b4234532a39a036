package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
	"golang.org/x/crypto/bcrypt"

	"medgate/internal/audit"
	"medgate/internal/biometric"
	"medgate/internal/geofence"
	"medgate/internal/login/service"
	"medgate/internal/password"
	"medgate/internal/platform/middleware"
	"medgate/internal/principal"
	"medgate/internal/token"
)

// The handler tests run the full pipeline over HTTP with in-memory stores:
// router, middleware, service, and token issuer wired the same way as the
// server binary.
type LoginHandlerSuite struct {
	suite.Suite
	ctx        context.Context
	principals *principal.InMemoryStore
	issuer     *token.Issuer
	hasher     *password.Hasher
	router     chi.Router
}

func TestLoginHandlerSuite(t *testing.T) {
	suite.Run(t, new(LoginHandlerSuite))
}

func (s *LoginHandlerSuite) SetupTest() {
	s.ctx = context.Background()
	s.principals = principal.NewInMemoryStore()
	s.issuer = token.NewIssuer("test-signing-key", "medgate-test", 15*time.Minute, 24*time.Hour)
	s.hasher = password.NewHasher(bcrypt.MinCost)
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

	ref := principal.GeoPoint{Latitude: 10.0, Longitude: 78.0}
	svc := service.NewService(
		s.principals,
		s.hasher,
		biometric.NewMatcher(biometric.DefaultThreshold),
		geofence.NewValidator(geofence.Config{Reference: &ref, MaxDistanceMeters: 100}),
		s.issuer,
		audit.NewRecorder(audit.NewInMemoryStore()),
		service.WithLogger(logger),
	)
	h := New(svc, logger)

	r := chi.NewRouter()
	h.Register(r)
	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth(s.issuer, token.ScopeStage, logger))
		h.RegisterStaged(r)
	})
	s.router = r
}

func (s *LoginHandlerSuite) seedStaff(email, secret string) *principal.Principal {
	digest, err := s.hasher.Hash(secret)
	s.Require().NoError(err)
	p := &principal.Principal{
		ID:           uuid.New(),
		Email:        email,
		Name:         "Doctor One",
		PasswordHash: digest,
		Role:         principal.RoleStaff,
	}
	s.Require().NoError(s.principals.Save(s.ctx, p))
	return p
}

func (s *LoginHandlerSuite) doJSON(method, path, bearer string, body any) (*httptest.ResponseRecorder, map[string]any) {
	payload, err := json.Marshal(body)
	s.Require().NoError(err)

	req := httptest.NewRequest(method, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)

	var decoded map[string]any
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &decoded))
	return rec, decoded
}

func (s *LoginHandlerSuite) TestFullStaffLoginFlow() {
	s.seedStaff("doc1@hospital.example", "secret-pw")

	rec, body := s.doJSON(http.MethodPost, "/auth/check-credentials", "", map[string]any{
		"email":    "doc1@hospital.example",
		"password": "secret-pw",
		"role":     "staff",
	})
	s.Require().Equal(http.StatusOK, rec.Code, "check-credentials: %v", body)
	s.Equal(true, body["success"])
	s.Equal(false, body["has_descriptor"])
	stageToken, _ := body["stage_token"].(string)
	s.Require().NotEmpty(stageToken)

	rec, body = s.doJSON(http.MethodPost, "/auth/biometric", stageToken, map[string]any{
		"descriptor": []float32{0.1, 0.2, 0.3, 0.4},
	})
	s.Require().Equal(http.StatusOK, rec.Code, "biometric: %v", body)
	s.Equal(true, body["enrolled"])
	s.Equal("geofence", body["next_stage"])
	verifiedToken, _ := body["stage_token"].(string)
	s.Require().NotEmpty(verifiedToken)

	rec, body = s.doJSON(http.MethodPost, "/auth/session", verifiedToken, map[string]any{
		"password": "secret-pw",
		"location": map[string]float64{"latitude": 10.0, "longitude": 78.0},
	})
	s.Require().Equal(http.StatusOK, rec.Code, "session: %v", body)
	sessionToken, _ := body["session_token"].(string)
	s.Require().NotEmpty(sessionToken)

	claims, err := s.issuer.Parse(sessionToken)
	s.Require().NoError(err)
	s.Equal(token.ScopeSession, claims.TokenScope)
}

func (s *LoginHandlerSuite) TestCheckCredentialsRejectsWrongPassword() {
	s.seedStaff("doc1@hospital.example", "secret-pw")

	rec, body := s.doJSON(http.MethodPost, "/auth/check-credentials", "", map[string]any{
		"email":    "doc1@hospital.example",
		"password": "wrong-pw",
		"role":     "staff",
	})
	s.Equal(http.StatusUnauthorized, rec.Code)
	s.Equal(false, body["success"])
	s.Equal("credential_mismatch", body["error"])
}

func (s *LoginHandlerSuite) TestCheckCredentialsUnknownAccountIs404() {
	rec, body := s.doJSON(http.MethodPost, "/auth/check-credentials", "", map[string]any{
		"email":    "ghost@hospital.example",
		"password": "whatever",
		"role":     "staff",
	})
	s.Equal(http.StatusNotFound, rec.Code)
	s.Equal("not_found", body["error"])
}

func (s *LoginHandlerSuite) TestCheckCredentialsValidatesBody() {
	rec, body := s.doJSON(http.MethodPost, "/auth/check-credentials", "", map[string]any{
		"email": "not-an-email",
	})
	s.Equal(http.StatusBadRequest, rec.Code)
	s.Equal("bad_request", body["error"])
}

func (s *LoginHandlerSuite) TestStagedEndpointsRequireStageToken() {
	for _, path := range []string{"/auth/biometric", "/auth/session"} {
		s.Run(path, func() {
			rec, body := s.doJSON(http.MethodPost, path, "", map[string]any{})
			s.Equal(http.StatusUnauthorized, rec.Code)
			s.Equal("token_scope", body["error"])
		})
	}
}

func (s *LoginHandlerSuite) TestSessionTokenRejectedWhereStageTokenRequired() {
	p := s.seedStaff("doc1@hospital.example", "secret-pw")
	sessionToken, err := s.issuer.IssueSessionToken(p)
	s.Require().NoError(err)

	rec, body := s.doJSON(http.MethodPost, "/auth/biometric", sessionToken, map[string]any{
		"descriptor": []float32{0.1, 0.2},
	})
	s.Equal(http.StatusUnauthorized, rec.Code)
	s.Equal("token_scope", body["error"])
}

func (s *LoginHandlerSuite) TestSessionEndpointRejectsUnverifiedStageToken() {
	s.seedStaff("doc1@hospital.example", "secret-pw")

	rec, body := s.doJSON(http.MethodPost, "/auth/check-credentials", "", map[string]any{
		"email":    "doc1@hospital.example",
		"password": "secret-pw",
		"role":     "staff",
	})
	s.Require().Equal(http.StatusOK, rec.Code)
	stageToken, _ := body["stage_token"].(string)

	rec, body = s.doJSON(http.MethodPost, "/auth/session", stageToken, map[string]any{
		"password": "secret-pw",
		"location": map[string]float64{"latitude": 10.0, "longitude": 78.0},
	})
	s.Equal(http.StatusUnauthorized, rec.Code)
	s.Equal("token_scope", body["error"])
}

func (s *LoginHandlerSuite) TestGeofenceViolationIs401() {
	s.seedStaff("doc1@hospital.example", "secret-pw")

	_, body := s.doJSON(http.MethodPost, "/auth/check-credentials", "", map[string]any{
		"email":    "doc1@hospital.example",
		"password": "secret-pw",
		"role":     "staff",
	})
	stageToken, _ := body["stage_token"].(string)

	_, body = s.doJSON(http.MethodPost, "/auth/biometric", stageToken, map[string]any{
		"descriptor": []float32{0.1, 0.2, 0.3},
	})
	verifiedToken, _ := body["stage_token"].(string)
	s.Require().NotEmpty(verifiedToken)

	rec, body := s.doJSON(http.MethodPost, "/auth/session", verifiedToken, map[string]any{
		"password": "secret-pw",
		"location": map[string]float64{"latitude": 10.00135, "longitude": 78.0},
	})
	s.Equal(http.StatusUnauthorized, rec.Code)
	s.Equal("geofence_violation", body["error"])
}

func (s *LoginHandlerSuite) TestInvalidJSONBody() {
	req := httptest.NewRequest(http.MethodPost, "/auth/check-credentials", bytes.NewReader([]byte(`{"email": "`)))
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	s.Equal(http.StatusBadRequest, rec.Code)
	s.Contains(rec.Body.String(), "Invalid JSON")
}
