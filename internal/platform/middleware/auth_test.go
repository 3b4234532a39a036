package middleware

import (
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"medgate/internal/principal"
	"medgate/internal/token"
)

var testIssuer = token.NewIssuer("test-signing-key", "medgate-test", 15*time.Minute, 24*time.Hour)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func protected(t *testing.T, scope token.Scope, role principal.Role) http.Handler {
	t.Helper()
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	if role != "" {
		return RequireAuth(testIssuer, scope, quietLogger())(RequireRole(role, quietLogger())(inner))
	}
	return RequireAuth(testIssuer, scope, quietLogger())(inner)
}

func doRequest(handler http.Handler, bearer string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func staffPrincipal() *principal.Principal {
	return &principal.Principal{ID: uuid.New(), Email: "doc1@example.com", Role: principal.RoleStaff}
}

func TestRequireAuthAcceptsMatchingScope(t *testing.T) {
	signed, err := testIssuer.IssueStageToken(staffPrincipal())
	require.NoError(t, err)

	handler := protected(t, token.ScopeStage, "")
	rec := doRequest(handler, signed)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRequireAuthExposesClaims(t *testing.T) {
	p := staffPrincipal()
	signed, err := testIssuer.IssueStageToken(p)
	require.NoError(t, err)

	var seen *token.Claims
	handler := RequireAuth(testIssuer, token.ScopeStage, quietLogger())(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			seen = GetClaims(r.Context())
		}))
	doRequest(handler, signed)

	require.NotNil(t, seen)
	assert.Equal(t, p.ID.String(), seen.PrincipalID)
	assert.Equal(t, principal.RoleStaff, seen.Role)
}

func TestRequireAuthRejectsMissingToken(t *testing.T) {
	handler := protected(t, token.ScopeStage, "")
	rec := doRequest(handler, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "token_scope")
}

func TestRequireAuthRejectsGarbageToken(t *testing.T) {
	handler := protected(t, token.ScopeStage, "")
	rec := doRequest(handler, "not-a-token")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireAuthRejectsWrongScope(t *testing.T) {
	stage, err := testIssuer.IssueStageToken(staffPrincipal())
	require.NoError(t, err)
	session, err := testIssuer.IssueSessionToken(staffPrincipal())
	require.NoError(t, err)

	sessionOnly := protected(t, token.ScopeSession, "")
	assert.Equal(t, http.StatusUnauthorized, doRequest(sessionOnly, stage).Code)

	stageOnly := protected(t, token.ScopeStage, "")
	assert.Equal(t, http.StatusUnauthorized, doRequest(stageOnly, session).Code)
}

func TestRequireRoleRejectsOtherRoles(t *testing.T) {
	staffToken, err := testIssuer.IssueSessionToken(staffPrincipal())
	require.NoError(t, err)

	adminOnly := protected(t, token.ScopeSession, principal.RoleAdmin)
	rec := doRequest(adminOnly, staffToken)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Contains(t, rec.Body.String(), "forbidden")
}

func TestRequireRoleAcceptsMatchingRole(t *testing.T) {
	admin := &principal.Principal{ID: uuid.New(), Email: "admin@example.com", Role: principal.RoleAdmin}
	adminToken, err := testIssuer.IssueSessionToken(admin)
	require.NoError(t, err)

	adminOnly := protected(t, token.ScopeSession, principal.RoleAdmin)
	assert.Equal(t, http.StatusOK, doRequest(adminOnly, adminToken).Code)
}
