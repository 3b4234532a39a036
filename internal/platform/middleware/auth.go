package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"medgate/internal/principal"
	"medgate/internal/token"
)

// TokenParser validates a presented bearer token and returns its claims.
type TokenParser interface {
	Parse(tokenString string) (*token.Claims, error)
}

type claimsKey struct{}

// GetClaims retrieves the validated token claims from the context.
func GetClaims(ctx context.Context) *token.Claims {
	if c, ok := ctx.Value(claimsKey{}).(*token.Claims); ok {
		return c
	}
	return nil
}

func writeUnauthorized(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = w.Write([]byte(`{"success":false,"error":"token_scope","message":"Invalid or expired token"}`))
}

// RequireAuth validates the bearer token and enforces the expected scope.
// A stage token on a session route (or the reverse) is rejected here, before
// any handler runs.
func RequireAuth(parser TokenParser, scope token.Scope, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			raw, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
			if !ok || raw == "" {
				writeUnauthorized(w)
				return
			}

			claims, err := parser.Parse(raw)
			if err != nil {
				logger.WarnContext(ctx, "rejected bearer token",
					"error", err,
					"request_id", GetRequestID(ctx),
				)
				writeUnauthorized(w)
				return
			}

			if err := token.RequireScope(claims, scope); err != nil {
				logger.WarnContext(ctx, "token scope mismatch",
					"presented", string(claims.TokenScope),
					"required", string(scope),
					"request_id", GetRequestID(ctx),
				)
				writeUnauthorized(w)
				return
			}

			next.ServeHTTP(w, r.WithContext(context.WithValue(ctx, claimsKey{}, claims)))
		})
	}
}

// RequireRole rejects authenticated requests whose token carries a different
// role. It must run inside RequireAuth.
func RequireRole(role principal.Role, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims := GetClaims(r.Context())
			if claims == nil || claims.Role != role {
				logger.WarnContext(r.Context(), "role not permitted",
					"required", string(role),
					"request_id", GetRequestID(r.Context()),
				)
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusForbidden)
				_, _ = w.Write([]byte(`{"success":false,"error":"forbidden","message":"Insufficient role"}`))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
