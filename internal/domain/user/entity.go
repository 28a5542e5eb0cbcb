package user

import (
	"time"

	"github.com/cmlabs-hris/guardops-backend/internal/domain/access"
)

type User struct {
	ID              string
	TenantID        string
	Email           string
	FullName        string
	PasswordHash    *string
	Role            access.Role
	OAuthProvider   *string
	OAuthProviderID *string
	EmailVerified   bool
	IsActive        bool
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// IsOwner checks if user is tenant owner
func (u *User) IsOwner() bool {
	return u.Role == access.RoleOwner
}

// CanLogin reports whether the account may obtain tokens.
func (u *User) CanLogin() bool {
	return u.IsActive && u.EmailVerified
}
