package user

import (
	"context"
	"fmt"
	"log/slog"
	"math"

	"github.com/cmlabs-hris/guardops-backend/internal/domain/access"
	"github.com/cmlabs-hris/guardops-backend/internal/domain/audit"
	"github.com/cmlabs-hris/guardops-backend/internal/domain/auth"
	"github.com/cmlabs-hris/guardops-backend/internal/domain/user"
	"github.com/cmlabs-hris/guardops-backend/internal/pkg/database"
	"github.com/cmlabs-hris/guardops-backend/internal/pkg/mailqueue"
	"golang.org/x/crypto/bcrypt"
)

type userServiceImpl struct {
	tx    database.Transactor
	users user.UserRepository
	audit audit.Recorder
	mail  mailqueue.Publisher
}

func NewUserService(tx database.Transactor, users user.UserRepository, recorder audit.Recorder, mail mailqueue.Publisher) user.UserService {
	if mail == nil {
		mail = mailqueue.NoopPublisher{}
	}
	return &userServiceImpl{tx: tx, users: users, audit: recorder, mail: mail}
}

// Create provisions an account in the caller's tenant. Only owners may create other owners.
func (s *userServiceImpl) Create(ctx context.Context, req user.CreateUserRequest) (user.UserResponse, error) {
	if err := req.Validate(); err != nil {
		return user.UserResponse{}, err
	}

	session, err := auth.SessionFromContext(ctx)
	if err != nil {
		return user.UserResponse{}, err
	}
	role := access.Role(req.Role)
	if role == access.RoleOwner && session.Role != access.RoleOwner {
		return user.UserResponse{}, access.ErrForbidden
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return user.UserResponse{}, fmt.Errorf("failed to hash password: %w", err)
	}
	hash := string(hashed)

	var created user.User
	err = s.tx.WithinTx(ctx, func(txCtx context.Context) error {
		created, err = s.users.Create(txCtx, user.User{
			TenantID:      session.TenantID,
			Email:         req.Email,
			FullName:      req.FullName,
			PasswordHash:  &hash,
			Role:          role,
			EmailVerified: true,
			IsActive:      true,
		})
		if err != nil {
			return err
		}
		return s.audit.Record(txCtx, audit.ActionUserCreated, audit.EntityUser, created.ID, map[string]any{
			"email": created.Email,
			"role":  created.Role,
		})
	})
	if err != nil {
		return user.UserResponse{}, err
	}

	if err := s.mail.Publish(ctx, mailqueue.Message{
		Type: mailqueue.TypeUserCreated,
		To:   created.Email,
		Data: map[string]string{"full_name": created.FullName, "role": string(created.Role)},
	}); err != nil {
		slog.Error("failed to queue account mail", "user_id", created.ID, "error", err)
	}

	return user.NewUserResponse(created), nil
}

// List implements user.UserService.
func (s *userServiceImpl) List(ctx context.Context, filter user.UserFilter) (user.ListUserResponse, error) {
	if err := filter.Validate(); err != nil {
		return user.ListUserResponse{}, err
	}

	session, err := auth.SessionFromContext(ctx)
	if err != nil {
		return user.ListUserResponse{}, err
	}

	users, total, err := s.users.ListByTenant(ctx, session.TenantID, filter)
	if err != nil {
		return user.ListUserResponse{}, fmt.Errorf("failed to list users: %w", err)
	}

	resp := user.ListUserResponse{
		TotalCount: total,
		Page:       filter.Page,
		Limit:      filter.Limit,
		TotalPages: int(math.Ceil(float64(total) / float64(filter.Limit))),
		Users:      make([]user.UserResponse, 0, len(users)),
	}
	for _, u := range users {
		resp.Users = append(resp.Users, user.NewUserResponse(u))
	}
	return resp, nil
}

// UpdateRole changes another user's role. A tenant always keeps at least one owner.
func (s *userServiceImpl) UpdateRole(ctx context.Context, req user.UpdateUserRoleRequest) error {
	if err := req.Validate(); err != nil {
		return err
	}

	session, err := auth.SessionFromContext(ctx)
	if err != nil {
		return err
	}
	if req.ID == session.UserID {
		return user.ErrCannotChangeOwnRole
	}
	newRole := access.Role(req.Role)

	return s.tx.WithinTx(ctx, func(txCtx context.Context) error {
		target, err := s.users.GetByID(txCtx, req.ID)
		if err != nil {
			return err
		}
		if target.TenantID != session.TenantID {
			return user.ErrUserNotFound
		}
		if target.Role == newRole {
			return nil
		}
		if (target.IsOwner() || newRole == access.RoleOwner) && session.Role != access.RoleOwner {
			return access.ErrForbidden
		}
		if target.IsOwner() {
			owners, err := s.users.CountByRole(txCtx, session.TenantID, access.RoleOwner)
			if err != nil {
				return fmt.Errorf("failed to count owners: %w", err)
			}
			if owners <= 1 {
				return user.ErrLastOwner
			}
		}

		if err := s.users.UpdateRole(txCtx, target.ID, session.TenantID, newRole); err != nil {
			return err
		}
		return s.audit.Record(txCtx, audit.ActionUserRoleChanged, audit.EntityUser, target.ID, map[string]any{
			"from": target.Role,
			"to":   newRole,
		})
	})
}
