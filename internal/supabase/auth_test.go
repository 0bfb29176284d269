package supabase

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(Config{URL: srv.URL, AnonKey: "anon-key"})
}

func TestClient_SignIn(t *testing.T) {
	client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/auth/v1/token", r.URL.Path)
		require.Equal(t, "password", r.URL.Query().Get("grant_type"))
		require.Equal(t, "anon-key", r.Header.Get("apikey"))

		var creds struct {
			Email    string `json:"email"`
			Password string `json:"password"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&creds))
		require.Equal(t, "alice@example.com", creds.Email)

		_ = json.NewEncoder(w).Encode(Session{
			AccessToken:  "access",
			RefreshToken: "refresh",
			TokenType:    "bearer",
			ExpiresIn:    3600,
			User:         User{ID: "user-1", Email: creds.Email},
		})
	})

	s, err := client.SignIn(context.Background(), "alice@example.com", "hunter22")
	require.NoError(t, err)
	require.Equal(t, "access", s.AccessToken)
	require.Equal(t, "user-1", s.User.ID)
}

func TestClient_SignIn_BadPassword(t *testing.T) {
	client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error": "invalid_grant"}`))
	})

	_, err := client.SignIn(context.Background(), "alice@example.com", "wrong")
	require.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestClient_SignUp(t *testing.T) {
	client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/auth/v1/signup", r.URL.Path)
		_ = json.NewEncoder(w).Encode(Session{User: User{ID: "user-2", Email: "bob@example.com"}})
	})

	s, err := client.SignUp(context.Background(), "bob@example.com", "hunter22")
	require.NoError(t, err)
	require.Equal(t, "user-2", s.User.ID)
}

func TestClient_SignOut(t *testing.T) {
	var gotAuth string
	client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/auth/v1/logout", r.URL.Path)
		gotAuth = r.Header.Get("Authorization")
		w.WriteHeader(http.StatusNoContent)
	})

	require.NoError(t, client.SignOut(context.Background(), "access"))
	require.Equal(t, "Bearer access", gotAuth)
}

func TestClient_UserInfo_Unauthorized(t *testing.T) {
	client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})

	_, err := client.UserInfo(context.Background(), "stale")
	require.ErrorIs(t, err, ErrInvalidCredentials)
}

const testSecret = "super-secret-jwt-token-with-at-least-32-characters"

func signToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return token
}

func TestVerifier_Verify(t *testing.T) {
	v := NewVerifier(testSecret)
	v.now = func() time.Time { return time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC) }

	token := signToken(t, jwt.MapClaims{
		"sub":   "user-1",
		"email": "alice@example.com",
		"exp":   time.Date(2025, 6, 15, 13, 0, 0, 0, time.UTC).Unix(),
	})

	u, err := v.Verify(token)
	require.NoError(t, err)
	require.Equal(t, "user-1", u.ID)
	require.Equal(t, "alice@example.com", u.Email)
}

func TestVerifier_Expired(t *testing.T) {
	v := NewVerifier(testSecret)
	v.now = func() time.Time { return time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC) }

	token := signToken(t, jwt.MapClaims{
		"sub": "user-1",
		"exp": time.Date(2025, 6, 15, 11, 0, 0, 0, time.UTC).Unix(),
	})

	_, err := v.Verify(token)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifier_WrongSecret(t *testing.T) {
	v := NewVerifier("a-different-secret-of-sufficient-length!")
	token := signToken(t, jwt.MapClaims{
		"sub": "user-1",
		"exp": time.Now().Add(time.Hour).Unix(),
	})

	_, err := v.Verify(token)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifier_MissingSubject(t *testing.T) {
	v := NewVerifier(testSecret)
	token := signToken(t, jwt.MapClaims{
		"exp": time.Now().Add(time.Hour).Unix(),
	})

	_, err := v.Verify(token)
	require.ErrorIs(t, err, ErrInvalidToken)
}
