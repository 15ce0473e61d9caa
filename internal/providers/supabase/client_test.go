package supabase

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jewelshot/internal/domain"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	c, err := NewClient(Options{URL: srv.URL, AnonKey: "anon"})
	require.NoError(t, err)
	return c
}

func TestNewClientRequiresConfiguration(t *testing.T) {
	cases := []Options{
		{},
		{URL: "https://x.supabase.co"},
		{AnonKey: "anon"},
		{URL: "not a url", AnonKey: "anon"},
		{URL: "ftp://x.supabase.co", AnonKey: "anon"},
	}
	for _, opts := range cases {
		_, err := NewClient(opts)
		assert.ErrorIs(t, err, domain.ErrSessionUnconfigured, "opts=%+v", opts)
	}
}

func TestSignInWithPassword(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/auth/v1/token", r.URL.Path)
		assert.Equal(t, "password", r.URL.Query().Get("grant_type"))
		assert.Equal(t, "anon", r.Header.Get("apikey"))

		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)
		assert.Equal(t, "ana@example.com", body["email"])
		assert.Equal(t, "hunter22", body["password"])

		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"access_token":"at","refresh_token":"rt","expires_at":1900000000,"user":{"id":"u1","email":"ana@example.com"}}`)
	})

	s, err := c.SignInWithPassword(context.Background(), "ana@example.com", "hunter22")
	require.NoError(t, err)
	require.NotNil(t, s)
	assert.Equal(t, "at", s.AccessToken)
	assert.Equal(t, "rt", s.RefreshToken)
	assert.Equal(t, "u1", s.UserID)
	assert.Equal(t, "ana@example.com", s.Email)
	assert.Equal(t, int64(1900000000), s.ExpiresAt.Unix())
}

func TestSignInSurfacesProviderMessage(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = io.WriteString(w, `{"error":"invalid_grant","error_description":"Invalid login credentials"}`)
	})

	_, err := c.SignInWithPassword(context.Background(), "a@b.co", "wrong")
	var authErr *domain.AuthError
	require.True(t, errors.As(err, &authErr))
	assert.Equal(t, "Invalid login credentials", authErr.Message)
	assert.Equal(t, http.StatusBadRequest, authErr.Status)
	assert.Equal(t, domain.KindAuthProvider, domain.KindOf(err))
}

func TestSignUpRequiringConfirmation(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/auth/v1/signup", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"id":"u2","email":"new@example.com","confirmation_sent_at":"2025-01-01T00:00:00Z"}`)
	})

	s, err := c.SignUp(context.Background(), "new@example.com", "secret1")
	require.NoError(t, err)
	assert.Nil(t, s)
}

func TestSignUpWithImmediateSession(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"access_token":"at","expires_in":3600,"user":{"id":"u3","email":"x@example.com"}}`)
	})

	s, err := c.SignUp(context.Background(), "x@example.com", "secret1")
	require.NoError(t, err)
	require.NotNil(t, s)
	assert.Equal(t, "u3", s.UserID)
	assert.False(t, s.ExpiresAt.IsZero())
}

func TestSignUpErrorMessageField(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = io.WriteString(w, `{"code":422,"msg":"User already registered"}`)
	})

	_, err := c.SignUp(context.Background(), "x@example.com", "secret1")
	require.Error(t, err)
	assert.Equal(t, "User already registered", err.Error())
}

func TestSignOutSendsBearer(t *testing.T) {
	var auth string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/auth/v1/logout", r.URL.Path)
		auth = r.Header.Get("Authorization")
		w.WriteHeader(http.StatusNoContent)
	})

	require.NoError(t, c.SignOut(context.Background(), "at"))
	assert.Equal(t, "Bearer at", auth)
	assert.NoError(t, c.SignOut(context.Background(), ""))
}

func TestResetPasswordForEmail(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/auth/v1/recover", r.URL.Path)
		_, _ = io.WriteString(w, `{}`)
	})
	assert.NoError(t, c.ResetPasswordForEmail(context.Background(), "a@b.co"))
}

func TestUser(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/auth/v1/user", r.URL.Path)
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"id":"u9","email":"u9@example.com"}`)
	})

	s, err := c.User(context.Background(), "tok")
	require.NoError(t, err)
	assert.Equal(t, "u9", s.UserID)
	assert.Equal(t, "tok", s.AccessToken)
}

func TestUnreachableProvider(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	base := srv.URL
	srv.Close()

	c, err := NewClient(Options{URL: base, AnonKey: "anon"})
	require.NoError(t, err)
	_, err = c.SignInWithPassword(context.Background(), "a@b.co", "secret1")
	assert.ErrorIs(t, err, domain.ErrNetworkUnavailable)
}
