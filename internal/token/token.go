// Package token issues and validates the two credential classes of the login
// pipeline: short-lived stage tokens scoped to finishing an in-progress login,
// and full session tokens scoped to role-protected operations.
package token

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"medgate/internal/principal"
	dErrors "medgate/pkg/domain-errors"
)

// Scope separates the two credential classes. A stage token must never be
// accepted where a session token is required, and vice versa.
type Scope string

const (
	// ScopeStage authorizes only the remaining steps of the same login sequence.
	ScopeStage Scope = "login"
	// ScopeSession authorizes role-scoped operations after all stages pass.
	ScopeSession Scope = "session"
)

// Claims is the claim shape shared by both token classes. Role and scope are
// fixed at issuance and immutable for the token's lifetime.
type Claims struct {
	PrincipalID string         `json:"principal_id"`
	Email       string         `json:"email"`
	Role        principal.Role `json:"role"`
	TokenScope  Scope          `json:"scope"`
	// BiometricOK records that face verification already passed within this
	// login sequence. Only stage tokens reissued after that check carry it.
	BiometricOK bool `json:"biometric_ok,omitempty"`
	jwt.RegisteredClaims
}

// Issuer mints and validates tokens with a single deployment-wide HS256
// secret. Issuance is a pure function of the secret and claims.
type Issuer struct {
	signingKey []byte
	issuer     string
	stageTTL   time.Duration
	sessionTTL time.Duration
}

// NewIssuer builds an Issuer. TTLs fall back to the pipeline defaults when
// non-positive so a zero config cannot mint eternal tokens.
func NewIssuer(signingKey, issuer string, stageTTL, sessionTTL time.Duration) *Issuer {
	if stageTTL <= 0 {
		stageTTL = 15 * time.Minute
	}
	if sessionTTL <= 0 {
		sessionTTL = 24 * time.Hour
	}
	return &Issuer{
		signingKey: []byte(signingKey),
		issuer:     issuer,
		stageTTL:   stageTTL,
		sessionTTL: sessionTTL,
	}
}

// IssueStageToken mints the short-lived credential that carries a principal
// through the remaining verification stages.
func (i *Issuer) IssueStageToken(p *principal.Principal) (string, error) {
	return i.sign(p, ScopeStage, i.stageTTL, false)
}

// IssueVerifiedStageToken mints a stage token marked biometric-verified. It is
// handed out only after a successful face check so the final stage can insist
// on the ordering without server-side state.
func (i *Issuer) IssueVerifiedStageToken(p *principal.Principal) (string, error) {
	return i.sign(p, ScopeStage, i.stageTTL, true)
}

// IssueSessionToken mints the full session credential after all stages pass.
func (i *Issuer) IssueSessionToken(p *principal.Principal) (string, error) {
	return i.sign(p, ScopeSession, i.sessionTTL, false)
}

func (i *Issuer) sign(p *principal.Principal, scope Scope, ttl time.Duration, biometricOK bool) (string, error) {
	now := time.Now()
	claims := Claims{
		PrincipalID: p.ID.String(),
		Email:       p.Email,
		Role:        p.Role,
		TokenScope:  scope,
		BiometricOK: biometricOK,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   p.ID.String(),
			Issuer:    i.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.signingKey)
	if err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "sign token")
	}
	return signed, nil
}

// Parse validates signature, algorithm, and expiry, returning the claims.
// All failures collapse into the token_scope code so responses cannot leak
// why a presented credential was unusable.
func (i *Issuer) Parse(tokenString string) (*Claims, error) {
	if tokenString == "" {
		return nil, dErrors.New(dErrors.CodeTokenScope, "missing token")
	}

	claims := new(Claims)
	parsed, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, dErrors.New(dErrors.CodeTokenScope, "unexpected signing algorithm")
		}
		return i.signingKey, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, dErrors.New(dErrors.CodeTokenScope, "token expired")
		}
		return nil, dErrors.New(dErrors.CodeTokenScope, "invalid token")
	}
	if !parsed.Valid {
		return nil, dErrors.New(dErrors.CodeTokenScope, "invalid token")
	}
	return claims, nil
}

// RequireScope checks that claims carry the expected scope. Presenting a
// stage token where a session token is required (or the reverse) is a scope
// violation regardless of the token being otherwise valid.
func RequireScope(c *Claims, scope Scope) error {
	if c.TokenScope != scope {
		return dErrors.New(dErrors.CodeTokenScope, "token not valid for this operation")
	}
	return nil
}
