package auth

import (
	"strings"

	"github.com/cmlabs-hris/guardops-backend/internal/pkg/validator"
)

type RegisterRequest struct {
	TenantName      string `json:"tenant_name" validate:"required,max=255"`
	TenantSlug      string `json:"tenant_slug" validate:"required"`
	FullName        string `json:"full_name" validate:"required,max=255"`
	Email           string `json:"email" validate:"required,email,max=254"`
	Password        string `json:"password" validate:"required,min=8,max=255"`
	ConfirmPassword string `json:"confirm_password" validate:"required,eqfield=Password"`
}

func (r *RegisterRequest) Validate() error {
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
	r.TenantSlug = strings.TrimSpace(r.TenantSlug)

	var errs validator.ValidationErrors
	if err := validator.Struct(r); err != nil {
		if !asValidationErrors(err, &errs) {
			return err
		}
	}
	if r.TenantSlug != "" && !validator.IsValidSlug(r.TenantSlug) {
		errs.Add("tenant_slug", "tenant_slug may only contain lowercase letters, numbers and hyphens (3-50 characters)")
	}
	return errs.OrNil()
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

func (r *LoginRequest) Validate() error {
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
	return validator.Struct(r)
}

type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token"`
}

func (r *RefreshTokenRequest) Validate() error {
	var errs validator.ValidationErrors
	if validator.IsEmpty(r.RefreshToken) {
		errs.Add("refresh_token", "refresh_token is required")
	}
	return errs.OrNil()
}

// SessionTrackingRequest carries client metadata stored with a refresh token.
type SessionTrackingRequest struct {
	UserAgent string
	IPAddress string
}

type TokenResponse struct {
	AccessToken           string `json:"access_token"`
	AccessTokenExpiresIn  int64  `json:"access_token_expires_in"`
	RefreshToken          string `json:"refresh_token"`
	RefreshTokenExpiresIn int64  `json:"refresh_token_expires_in"`
}

type AccessTokenResponse struct {
	AccessToken          string `json:"access_token"`
	AccessTokenExpiresIn int64  `json:"access_token_expires_in"`
}

type LogoutRequest struct {
	RefreshToken   string
	AccessTokenID  string
	AccessTokenExp int64
}

func asValidationErrors(err error, target *validator.ValidationErrors) bool {
	verrs, ok := err.(validator.ValidationErrors)
	if ok {
		*target = append(*target, verrs...)
	}
	return ok
}
