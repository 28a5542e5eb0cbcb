package oauth

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStateRoundTrip(t *testing.T) {
	svc := NewGoogleService("client", "secret", "http://localhost/cb", []string{"email"})

	state, err := svc.GenerateState()
	require.NoError(t, err)
	assert.NotEmpty(t, state)

	assert.True(t, strings.Contains(svc.RedirectURL(state), "state="+state))

	r := httptest.NewRequest(http.MethodGet, "/callback", nil)
	r.AddCookie(svc.StateCookie(state))
	assert.NoError(t, svc.VerifyState(r, state))
	assert.ErrorIs(t, svc.VerifyState(r, "other"), ErrStateMismatch)
}

func TestVerifyState_MissingCookie(t *testing.T) {
	svc := NewGoogleService("client", "secret", "http://localhost/cb", nil)
	r := httptest.NewRequest(http.MethodGet, "/callback", nil)
	assert.ErrorIs(t, svc.VerifyState(r, "abc"), ErrStateMismatch)
}
