package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/cmlabs-hris/guardops-backend/internal/domain/access"
	"github.com/go-chi/jwtauth/v5"
	"github.com/lestrrat-go/jwx/v2/jwt"
)

// Session is the authenticated caller resolved from the access token.
type Session struct {
	UserID   string
	TenantID string
	Email    string
	Role     access.Role
	TokenID  string
	Expires  int64
}

// SessionFromContext resolves the caller from jwtauth claims placed on ctx by the Verifier.
func SessionFromContext(ctx context.Context) (Session, error) {
	_, claims, err := jwtauth.FromContext(ctx)
	if err != nil {
		return Session{}, fmt.Errorf("failed to extract claims from context: %w", err)
	}
	if claims == nil {
		return Session{}, ErrInvalidToken
	}

	userID, _ := claims["user_id"].(string)
	if userID == "" {
		return Session{}, ErrInvalidToken
	}

	tenantID, ok := claims["tenant_id"].(string)
	if !ok || tenantID == "" {
		return Session{}, ErrTenantRequired
	}

	s := Session{
		UserID:   userID,
		TenantID: tenantID,
	}
	s.Email, _ = claims["email"].(string)
	if role, ok := claims["role"].(string); ok {
		s.Role = access.Role(role)
	}
	s.TokenID, _ = claims["jti"].(string)
	switch exp := claims["exp"].(type) {
	case time.Time:
		s.Expires = exp.Unix()
	case float64:
		s.Expires = int64(exp)
	case int64:
		s.Expires = exp
	}
	return s, nil
}

// WithSession places s on ctx the same way the jwtauth Verifier does. Used by background jobs and tests.
func WithSession(ctx context.Context, s Session) context.Context {
	tok := jwt.New()
	_ = tok.Set("user_id", s.UserID)
	_ = tok.Set("tenant_id", s.TenantID)
	_ = tok.Set("email", s.Email)
	_ = tok.Set("role", string(s.Role))
	_ = tok.Set("type", "access")
	if s.TokenID != "" {
		_ = tok.Set(jwt.JwtIDKey, s.TokenID)
	}
	if s.Expires > 0 {
		_ = tok.Set(jwt.ExpirationKey, time.Unix(s.Expires, 0))
	}
	return jwtauth.NewContext(ctx, tok, nil)
}
