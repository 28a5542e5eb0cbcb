package user

import (
	"context"

	"github.com/cmlabs-hris/guardops-backend/internal/domain/access"
)

type UserRepository interface {
	GetByEmail(ctx context.Context, email string) (User, error)
	GetByID(ctx context.Context, id string) (User, error)
	Create(ctx context.Context, newUser User) (User, error)
	ListByTenant(ctx context.Context, tenantID string, filter UserFilter) ([]User, int64, error)
	CountByRole(ctx context.Context, tenantID string, role access.Role) (int64, error)
	UpdateRole(ctx context.Context, id, tenantID string, role access.Role) error
	LinkGoogleAccount(ctx context.Context, googleID string, email string) (User, error)
}
