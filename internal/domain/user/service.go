package user

import "context"

type UserService interface {
	Create(ctx context.Context, req CreateUserRequest) (UserResponse, error)
	List(ctx context.Context, filter UserFilter) (ListUserResponse, error)
	UpdateRole(ctx context.Context, req UpdateUserRoleRequest) error
}
