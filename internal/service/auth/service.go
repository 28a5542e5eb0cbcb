package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/guardops-backend/internal/domain/access"
	"github.com/cmlabs-hris/guardops-backend/internal/domain/auth"
	"github.com/cmlabs-hris/guardops-backend/internal/domain/tenant"
	"github.com/cmlabs-hris/guardops-backend/internal/domain/user"
	"github.com/cmlabs-hris/guardops-backend/internal/pkg/database"
	"github.com/cmlabs-hris/guardops-backend/internal/pkg/jwt"
	"github.com/cmlabs-hris/guardops-backend/internal/pkg/mailqueue"
	"github.com/cmlabs-hris/guardops-backend/internal/repository/postgresql"
	"github.com/go-chi/jwtauth/v5"
	"github.com/jackc/pgx/v5"
	"golang.org/x/crypto/bcrypt"
)

// refreshTokenRetention keeps expired refresh tokens around for a week before purging.
const refreshTokenRetention = 7 * 24 * time.Hour

type AuthServiceImpl struct {
	tx         database.Transactor
	users      user.UserRepository
	tenants    tenant.TenantRepository
	jwtService jwt.Service
	tokens     postgresql.JWTRepository
	mail       mailqueue.Publisher
}

func NewAuthService(
	tx database.Transactor,
	users user.UserRepository,
	tenants tenant.TenantRepository,
	jwtService jwt.Service,
	tokens postgresql.JWTRepository,
	mail mailqueue.Publisher,
) auth.AuthService {
	if mail == nil {
		mail = mailqueue.NoopPublisher{}
	}
	return &AuthServiceImpl{
		tx:         tx,
		users:      users,
		tenants:    tenants,
		jwtService: jwtService,
		tokens:     tokens,
		mail:       mail,
	}
}

func (a *AuthServiceImpl) hashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// Register creates a tenant and its owner account in one transaction and signs the owner in.
func (a *AuthServiceImpl) Register(ctx context.Context, req auth.RegisterRequest, sessionReq auth.SessionTrackingRequest) (auth.TokenResponse, error) {
	hashedPassword, err := a.hashPassword(req.Password)
	if err != nil {
		return auth.TokenResponse{}, fmt.Errorf("failed to hash password: %w", err)
	}

	var (
		owner         user.User
		tokenResponse auth.TokenResponse
	)
	err = a.tx.WithinTx(ctx, func(txCtx context.Context) error {
		newTenant, err := a.tenants.Create(txCtx, tenant.Tenant{Name: req.TenantName, Slug: req.TenantSlug})
		if err != nil {
			return err
		}

		owner, err = a.users.Create(txCtx, user.User{
			TenantID:      newTenant.ID,
			Email:         req.Email,
			FullName:      req.FullName,
			PasswordHash:  &hashedPassword,
			Role:          access.RoleOwner,
			EmailVerified: true,
			IsActive:      true,
		})
		if err != nil {
			return err
		}

		tokenResponse, err = a.issueTokens(txCtx, owner, sessionReq)
		return err
	})
	if err != nil {
		return auth.TokenResponse{}, err
	}

	if err := a.mail.Publish(ctx, mailqueue.Message{
		Type: mailqueue.TypeWelcome,
		To:   owner.Email,
		Data: map[string]string{"full_name": owner.FullName, "tenant_name": req.TenantName},
	}); err != nil {
		slog.Error("failed to queue welcome mail", "user_id", owner.ID, "error", err)
	}

	return tokenResponse, nil
}

// Login implements auth.AuthService.
func (a *AuthServiceImpl) Login(ctx context.Context, req auth.LoginRequest, sessionReq auth.SessionTrackingRequest) (auth.TokenResponse, error) {
	userData, err := a.users.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			return auth.TokenResponse{}, auth.ErrInvalidCredentials
		}
		return auth.TokenResponse{}, fmt.Errorf("failed to get user by email: %w", err)
	}

	if userData.PasswordHash == nil {
		return auth.TokenResponse{}, auth.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(*userData.PasswordHash), []byte(req.Password)); err != nil {
		return auth.TokenResponse{}, auth.ErrInvalidCredentials
	}

	if err := a.checkCanLogin(ctx, userData); err != nil {
		return auth.TokenResponse{}, err
	}

	var tokenResponse auth.TokenResponse
	err = a.tx.WithinTx(ctx, func(txCtx context.Context) error {
		tokenResponse, err = a.issueTokens(txCtx, userData, sessionReq)
		return err
	})
	if err != nil {
		return auth.TokenResponse{}, err
	}
	return tokenResponse, nil
}

// LoginWithGoogle signs in an existing account by its Google identity. Accounts are never
// created here; users are provisioned by a tenant administrator.
func (a *AuthServiceImpl) LoginWithGoogle(ctx context.Context, googleID, email string, verified bool, sessionReq auth.SessionTrackingRequest) (auth.TokenResponse, error) {
	if !verified {
		return auth.TokenResponse{}, auth.ErrEmailNotVerified
	}

	userData, err := a.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			return auth.TokenResponse{}, auth.ErrInvalidCredentials
		}
		return auth.TokenResponse{}, fmt.Errorf("failed to get user by email: %w", err)
	}

	var tokenResponse auth.TokenResponse
	err = a.tx.WithinTx(ctx, func(txCtx context.Context) error {
		if userData.OAuthProviderID == nil {
			userData, err = a.users.LinkGoogleAccount(txCtx, googleID, userData.Email)
			if err != nil {
				return fmt.Errorf("failed to link google account: %w", err)
			}
		} else if *userData.OAuthProviderID != googleID {
			return auth.ErrInvalidCredentials
		}

		if err := a.checkCanLogin(txCtx, userData); err != nil {
			return err
		}

		tokenResponse, err = a.issueTokens(txCtx, userData, sessionReq)
		return err
	})
	if err != nil {
		return auth.TokenResponse{}, err
	}
	return tokenResponse, nil
}

// RefreshToken implements auth.AuthService.
func (a *AuthServiceImpl) RefreshToken(ctx context.Context, req auth.RefreshTokenRequest) (auth.AccessTokenResponse, error) {
	token, err := jwtauth.VerifyToken(a.jwtService.JWTAuth(), req.RefreshToken)
	if err != nil {
		return auth.AccessTokenResponse{}, auth.ErrInvalidToken
	}

	claims, err := token.AsMap(ctx)
	if err != nil {
		return auth.AccessTokenResponse{}, auth.ErrInvalidToken
	}
	if tokenType, _ := claims["type"].(string); tokenType != "refresh" {
		return auth.AccessTokenResponse{}, auth.ErrInvalidToken
	}
	userID, _ := claims["user_id"].(string)
	if userID == "" {
		return auth.AccessTokenResponse{}, auth.ErrInvalidToken
	}

	revoked, err := a.tokens.IsRefreshTokenRevoked(ctx, req.RefreshToken)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return auth.AccessTokenResponse{}, auth.ErrInvalidToken
		}
		return auth.AccessTokenResponse{}, fmt.Errorf("failed to check refresh token: %w", err)
	}
	if revoked {
		return auth.AccessTokenResponse{}, auth.ErrRefreshTokenRevoked
	}

	userData, err := a.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			return auth.AccessTokenResponse{}, auth.ErrInvalidToken
		}
		return auth.AccessTokenResponse{}, fmt.Errorf("failed to get user: %w", err)
	}
	if err := a.checkCanLogin(ctx, userData); err != nil {
		return auth.AccessTokenResponse{}, err
	}

	var resp auth.AccessTokenResponse
	resp.AccessToken, resp.AccessTokenExpiresIn, err = a.jwtService.GenerateAccessToken(accessClaims(userData))
	if err != nil {
		return auth.AccessTokenResponse{}, fmt.Errorf("failed to generate access token: %w", err)
	}
	return resp, nil
}

// Logout revokes the refresh token and blocks the access token id until it expires.
func (a *AuthServiceImpl) Logout(ctx context.Context, req auth.LogoutRequest) error {
	if req.RefreshToken != "" {
		if err := a.tokens.RevokeRefreshToken(ctx, req.RefreshToken); err != nil {
			return fmt.Errorf("failed to revoke refresh token: %w", err)
		}
	}
	if err := a.jwtService.RevokeToken(ctx, req.AccessTokenID, req.AccessTokenExp); err != nil {
		return fmt.Errorf("failed to revoke access token: %w", err)
	}
	return nil
}

// PurgeExpiredRefreshTokens implements auth.AuthService.
func (a *AuthServiceImpl) PurgeExpiredRefreshTokens(ctx context.Context) (int64, error) {
	return a.tokens.PurgeExpiredRefreshTokens(ctx, time.Now().Add(-refreshTokenRetention))
}

func (a *AuthServiceImpl) checkCanLogin(ctx context.Context, u user.User) error {
	if !u.IsActive {
		return auth.ErrAccountDisabled
	}
	if !u.EmailVerified {
		return auth.ErrEmailNotVerified
	}
	t, err := a.tenants.GetByID(ctx, u.TenantID)
	if err != nil {
		return fmt.Errorf("failed to get tenant: %w", err)
	}
	if !t.IsActive {
		return tenant.ErrTenantInactive
	}
	return nil
}

func (a *AuthServiceImpl) issueTokens(ctx context.Context, u user.User, sessionReq auth.SessionTrackingRequest) (auth.TokenResponse, error) {
	var (
		resp auth.TokenResponse
		err  error
	)
	resp.AccessToken, resp.AccessTokenExpiresIn, err = a.jwtService.GenerateAccessToken(accessClaims(u))
	if err != nil {
		return auth.TokenResponse{}, fmt.Errorf("failed to create access token: %w", err)
	}
	resp.RefreshToken, resp.RefreshTokenExpiresIn, err = a.jwtService.GenerateRefreshToken(u.ID)
	if err != nil {
		return auth.TokenResponse{}, fmt.Errorf("failed to create refresh token: %w", err)
	}
	if err := a.tokens.CreateRefreshToken(ctx, u.ID, resp.RefreshToken, resp.RefreshTokenExpiresIn, sessionReq); err != nil {
		return auth.TokenResponse{}, fmt.Errorf("failed to save refresh token to database: %w", err)
	}
	return resp, nil
}

func accessClaims(u user.User) jwt.AccessClaims {
	return jwt.AccessClaims{
		UserID:   u.ID,
		Email:    u.Email,
		TenantID: u.TenantID,
		Role:     string(u.Role),
	}
}
