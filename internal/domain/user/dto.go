package user

import (
	"strings"
	"time"

	"github.com/cmlabs-hris/guardops-backend/internal/domain/access"
	"github.com/cmlabs-hris/guardops-backend/internal/pkg/validator"
)

type CreateUserRequest struct {
	Email    string `json:"email" validate:"required,email,max=254"`
	FullName string `json:"full_name" validate:"required,max=255"`
	Password string `json:"password" validate:"required,min=8,max=255"`
	Role     string `json:"role" validate:"required"`
}

func (r *CreateUserRequest) Validate() error {
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
	if err := validator.Struct(r); err != nil {
		return err
	}
	if !access.Role(r.Role).Valid() {
		return validator.ValidationErrors{{
			Field:   "role",
			Message: "role must be one of: " + strings.Join(access.RoleValues, ", "),
		}}
	}
	return nil
}

type UpdateUserRoleRequest struct {
	ID   string `json:"-"`
	Role string `json:"role" validate:"required"`
}

func (r *UpdateUserRoleRequest) Validate() error {
	var errs validator.ValidationErrors
	if !validator.IsValidUUID(r.ID) {
		errs.Add("id", "id must be a valid UUID")
	}
	if !access.Role(r.Role).Valid() {
		errs.Add("role", "role must be one of: "+strings.Join(access.RoleValues, ", "))
	}
	return errs.OrNil()
}

type UserFilter struct {
	Role  *string
	Page  int
	Limit int
}

func (f *UserFilter) Validate() error {
	var errs validator.ValidationErrors
	if f.Page <= 0 {
		f.Page = 1
	}
	if f.Limit <= 0 {
		f.Limit = 20
	}
	if f.Limit > 100 {
		errs.Add("limit", "limit must not exceed 100")
	}
	if f.Role != nil && !access.Role(*f.Role).Valid() {
		errs.Add("role", "role must be one of: "+strings.Join(access.RoleValues, ", "))
	}
	return errs.OrNil()
}

type UserResponse struct {
	ID            string `json:"id"`
	TenantID      string `json:"tenant_id"`
	Email         string `json:"email"`
	FullName      string `json:"full_name"`
	Role          string `json:"role"`
	EmailVerified bool   `json:"email_verified"`
	IsActive      bool   `json:"is_active"`
	CreatedAt     string `json:"created_at"`
	UpdatedAt     string `json:"updated_at"`
}

func NewUserResponse(u User) UserResponse {
	return UserResponse{
		ID:            u.ID,
		TenantID:      u.TenantID,
		Email:         u.Email,
		FullName:      u.FullName,
		Role:          string(u.Role),
		EmailVerified: u.EmailVerified,
		IsActive:      u.IsActive,
		CreatedAt:     u.CreatedAt.Format(time.RFC3339),
		UpdatedAt:     u.UpdatedAt.Format(time.RFC3339),
	}
}

type ListUserResponse struct {
	TotalCount int64          `json:"total_count"`
	Page       int            `json:"page"`
	Limit      int            `json:"limit"`
	TotalPages int            `json:"total_pages"`
	Users      []UserResponse `json:"users"`
}
