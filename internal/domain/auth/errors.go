package auth

import "errors"

var (
	ErrInvalidCredentials  = errors.New("invalid email or password")
	ErrAccountDisabled     = errors.New("account is disabled")
	ErrEmailNotVerified    = errors.New("email not verified")
	ErrInvalidToken        = errors.New("invalid or expired token")
	ErrTokenExpired        = errors.New("token has expired")
	ErrRefreshTokenRevoked = errors.New("refresh token has been revoked")
	ErrTenantRequired      = errors.New("tenant is required")
	ErrInvalidOAuthState   = errors.New("invalid oauth state")
	ErrOAuthNotConfigured  = errors.New("oauth login is not configured")
)
