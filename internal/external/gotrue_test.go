package external

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
)

func newAuthServer(t *testing.T, handler http.HandlerFunc) *AuthClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewAuthClient(AuthConfig{BaseURL: srv.URL, APIKey: "anon-key"})
}

func TestSignInWithPassword(t *testing.T) {
	client := newAuthServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/auth/v1/token", r.URL.Path)
		assert.Equal(t, "password", r.URL.Query().Get("grant_type"))
		assert.Equal(t, "anon-key", r.Header.Get("apikey"))

		var body map[string]string
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "ada@example.com", body["email"])

		io.WriteString(w, `{"access_token":"at","refresh_token":"rt","expires_in":3600,"user":{"id":"u1","email":"ada@example.com"}}`)
	})

	session, err := client.SignInWithPassword(context.Background(), "ada@example.com", "secret")
	require.NoError(t, err)
	assert.Equal(t, "at", session.AccessToken)
	assert.Equal(t, 3600, session.ExpiresIn)
	assert.Equal(t, "u1", session.User.ID)
}

func TestSignInErrorMessagePassesThrough(t *testing.T) {
	client := newAuthServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		io.WriteString(w, `{"error":"invalid_grant","error_description":"Invalid login credentials"}`)
	})

	_, err := client.SignInWithPassword(context.Background(), "ada@example.com", "bad")
	require.Error(t, err)
	assert.Equal(t, "Invalid login credentials", err.Error())

	var authErr *AuthError
	require.True(t, errors.As(err, &authErr))
	assert.Equal(t, http.StatusBadRequest, authErr.Status)
	assert.Equal(t, "invalid_grant", authErr.Code)
}

func TestSignUpWithConfirmationReturnsUserOnly(t *testing.T) {
	client := newAuthServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/auth/v1/signup", r.URL.Path)
		var body struct {
			Data map[string]any `json:"data"`
		}
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "Ada Obi", body.Data["full_name"])
		io.WriteString(w, `{"id":"u1","email":"ada@example.com","user_metadata":{"full_name":"Ada Obi"}}`)
	})

	session, user, err := client.SignUp(context.Background(), "ada@example.com", "secret", map[string]any{"full_name": "Ada Obi"})
	require.NoError(t, err)
	assert.Nil(t, session)
	assert.Equal(t, "u1", user.ID)
}

func TestSignUpAutoConfirmReturnsSession(t *testing.T) {
	client := newAuthServer(t, func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"access_token":"at","refresh_token":"rt","user":{"id":"u1","email":"ada@example.com"}}`)
	})

	session, user, err := client.SignUp(context.Background(), "ada@example.com", "secret", nil)
	require.NoError(t, err)
	require.NotNil(t, session)
	assert.Equal(t, "at", session.AccessToken)
	assert.Equal(t, "u1", user.ID)
}

func TestSignOutSendsBearer(t *testing.T) {
	client := newAuthServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/auth/v1/logout", r.URL.Path)
		assert.Equal(t, "Bearer at", r.Header.Get("Authorization"))
		w.WriteHeader(http.StatusNoContent)
	})

	assert.NoError(t, client.SignOut(context.Background(), "at"))
}

func TestResetPasswordForEmail(t *testing.T) {
	client := newAuthServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/auth/v1/recover", r.URL.Path)
		assert.Equal(t, "https://app.example/reset", r.URL.Query().Get("redirect_to"))
		io.WriteString(w, `{}`)
	})

	assert.NoError(t, client.ResetPasswordForEmail(context.Background(), "ada@example.com", "https://app.example/reset"))
}

func TestGetUserUnauthorized(t *testing.T) {
	client := newAuthServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		io.WriteString(w, `{"msg":"invalid JWT"}`)
	})

	_, err := client.GetUser(context.Background(), "expired")
	assert.EqualError(t, err, "invalid JWT")
}

func TestErrorWithoutBody(t *testing.T) {
	client := newAuthServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	_, err := client.RefreshSession(context.Background(), "rt")
	assert.EqualError(t, err, "unexpected status code: 502")
}
