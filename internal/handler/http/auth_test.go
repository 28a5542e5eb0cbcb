package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/cmlabs-hris/guardops-backend/internal/domain/auth"
	"github.com/cmlabs-hris/guardops-backend/internal/domain/tenant"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubAuth struct {
	auth.AuthService
	register auth.RegisterRequest
	refresh  auth.RefreshTokenRequest
	logout   auth.LogoutRequest
	err      error
}

func (s *stubAuth) tokens() auth.TokenResponse {
	return auth.TokenResponse{
		AccessToken:           "access-token",
		AccessTokenExpiresIn:  1893456000,
		RefreshToken:          "refresh-token",
		RefreshTokenExpiresIn: 1893456000,
	}
}

func (s *stubAuth) Register(ctx context.Context, req auth.RegisterRequest, _ auth.SessionTrackingRequest) (auth.TokenResponse, error) {
	s.register = req
	if s.err != nil {
		return auth.TokenResponse{}, s.err
	}
	return s.tokens(), nil
}

func (s *stubAuth) Login(ctx context.Context, req auth.LoginRequest, _ auth.SessionTrackingRequest) (auth.TokenResponse, error) {
	if req.Password != "password123" {
		return auth.TokenResponse{}, auth.ErrInvalidCredentials
	}
	return s.tokens(), nil
}

func (s *stubAuth) RefreshToken(ctx context.Context, req auth.RefreshTokenRequest) (auth.AccessTokenResponse, error) {
	s.refresh = req
	if req.RefreshToken == "revoked" {
		return auth.AccessTokenResponse{}, auth.ErrRefreshTokenRevoked
	}
	return auth.AccessTokenResponse{AccessToken: "fresh-access", AccessTokenExpiresIn: 1893456000}, nil
}

func (s *stubAuth) Logout(ctx context.Context, req auth.LogoutRequest) error {
	s.logout = req
	return nil
}

func postJSON(t *testing.T, f *routerFixture, path string, body any, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	b, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	for _, c := range cookies {
		req.AddCookie(c)
	}
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func refreshCookie(t *testing.T, w *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range w.Result().Cookies() {
		if c.Name == refreshTokenCookieName {
			return c
		}
	}
	return nil
}

func TestAuthHandler_Register(t *testing.T) {
	t.Run("success sets refresh cookie", func(t *testing.T) {
		f := newRouterFixture(t)
		w := postJSON(t, f, "/api/v1/auth/register", map[string]string{
			"tenant_name":      "Acme Security",
			"tenant_slug":      " acme-security ",
			"full_name":        "Ana Owner",
			"email":            " Owner@Acme.test ",
			"password":         "password123",
			"confirm_password": "password123",
		})
		require.Equal(t, http.StatusCreated, w.Code)

		cookie := refreshCookie(t, w)
		require.NotNil(t, cookie)
		assert.Equal(t, "refresh-token", cookie.Value)
		assert.True(t, cookie.HttpOnly)
		assert.Equal(t, "owner@acme.test", f.auth.register.Email)
		assert.Equal(t, "acme-security", f.auth.register.TenantSlug)

		data := decodeBody(t, w)["data"].(map[string]any)
		assert.Equal(t, "access-token", data["access_token"])
	})

	t.Run("validation failure never reaches the service", func(t *testing.T) {
		f := newRouterFixture(t)
		w := postJSON(t, f, "/api/v1/auth/register", map[string]string{
			"tenant_name":      "Acme Security",
			"tenant_slug":      "Acme Security",
			"full_name":        "Ana Owner",
			"email":            "not-an-email",
			"password":         "short",
			"confirm_password": "different",
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Empty(t, f.auth.register.Email)

		errBody := decodeBody(t, w)["error"].(map[string]any)
		details := errBody["details"].(map[string]any)
		assert.Contains(t, details, "email")
		assert.Contains(t, details, "tenant_slug")
	})

	t.Run("duplicate slug conflicts", func(t *testing.T) {
		f := newRouterFixture(t)
		f.auth.err = tenant.ErrTenantSlugExists
		w := postJSON(t, f, "/api/v1/auth/register", map[string]string{
			"tenant_name":      "Acme Security",
			"tenant_slug":      "acme-security",
			"full_name":        "Ana Owner",
			"email":            "owner@acme.test",
			"password":         "password123",
			"confirm_password": "password123",
		})
		assert.Equal(t, http.StatusConflict, w.Code)
	})
}

func TestAuthHandler_Login(t *testing.T) {
	f := newRouterFixture(t)

	w := postJSON(t, f, "/api/v1/auth/login", map[string]string{"email": "owner@acme.test", "password": "password123"})
	require.Equal(t, http.StatusCreated, w.Code)
	require.NotNil(t, refreshCookie(t, w))

	w = postJSON(t, f, "/api/v1/auth/login", map[string]string{"email": "owner@acme.test", "password": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Nil(t, refreshCookie(t, w))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", bytes.NewBufferString("{"))
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAuthHandler_RefreshToken(t *testing.T) {
	t.Run("cookie wins over body", func(t *testing.T) {
		f := newRouterFixture(t)
		w := postJSON(t, f, "/api/v1/auth/refresh",
			map[string]string{"refresh_token": "from-body"},
			&http.Cookie{Name: refreshTokenCookieName, Value: "from-cookie"},
		)
		require.Equal(t, http.StatusCreated, w.Code)
		assert.Equal(t, "from-cookie", f.auth.refresh.RefreshToken)
	})

	t.Run("body fallback", func(t *testing.T) {
		f := newRouterFixture(t)
		w := postJSON(t, f, "/api/v1/auth/refresh", map[string]string{"refresh_token": "from-body"})
		require.Equal(t, http.StatusCreated, w.Code)
		assert.Equal(t, "from-body", f.auth.refresh.RefreshToken)
	})

	t.Run("missing token", func(t *testing.T) {
		f := newRouterFixture(t)
		w := postJSON(t, f, "/api/v1/auth/refresh", map[string]string{})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("revoked token", func(t *testing.T) {
		f := newRouterFixture(t)
		w := postJSON(t, f, "/api/v1/auth/refresh", map[string]string{"refresh_token": "revoked"})
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestAuthHandler_Logout(t *testing.T) {
	f := newRouterFixture(t)
	token := f.token(t, activeTenantID, "owner")

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/logout", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	req.AddCookie(&http.Cookie{Name: refreshTokenCookieName, Value: "refresh-token"})
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "refresh-token", f.auth.logout.RefreshToken)
	assert.NotEmpty(t, f.auth.logout.AccessTokenID)
	assert.NotZero(t, f.auth.logout.AccessTokenExp)

	cleared := refreshCookie(t, w)
	require.NotNil(t, cleared)
	assert.Empty(t, cleared.Value)
	assert.Negative(t, cleared.MaxAge)
}

func TestAuthHandler_GoogleDisabled(t *testing.T) {
	f := newRouterFixture(t)

	for _, path := range []string{"/api/v1/auth/login/oauth/google", "/api/v1/auth/oauth/callback/google?code=abc&state=xyz"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		w := httptest.NewRecorder()
		f.router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusNotFound, w.Code, path)
	}
}
