//go:build e2e
// +build e2e

package e2e

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/modelodev/scrumbringer/internal/handler"
	"github.com/modelodev/scrumbringer/internal/middleware"
	"github.com/modelodev/scrumbringer/internal/repository/postgres"
	"github.com/modelodev/scrumbringer/internal/security"
	"github.com/modelodev/scrumbringer/internal/service"
)

// newAuthServer wires the real HTTP stack, session middleware and CSRF
// guard included, on top of the container database.
func newAuthServer(t *testing.T) *httptest.Server {
	t.Helper()

	tm := postgres.NewTxManager(testDB)
	users := postgres.NewUserRepository(testDB)
	orgs := postgres.NewOrgRepository(testDB)
	hasher := security.NewBcryptHasher(bcrypt.MinCost)
	tokens := security.NewTokenService("e2e-secret-at-least-32-characters!!!", time.Hour)

	authService := service.NewAuthService(tm, users, orgs, tokens, hasher)
	authHandler := handler.NewAuthHandler(authService, false)

	r := chi.NewRouter()
	r.Post("/api/v1/auth/register", authHandler.Register)
	r.Post("/api/v1/auth/login", authHandler.Login)
	r.Group(func(r chi.Router) {
		r.Use(middleware.Auth(tokens))
		r.Use(middleware.CSRF())
		r.Get("/api/v1/auth/me", authHandler.Me)
		r.Post("/api/v1/auth/logout", authHandler.Logout)
	})

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func postJSON(t *testing.T, client *http.Client, url string, body any, mutate func(*http.Request)) *http.Response {
	t.Helper()
	data, err := json.Marshal(body)
	require.NoError(t, err)
	req, err := http.NewRequest(http.MethodPost, url, bytes.NewReader(data))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if mutate != nil {
		mutate(req)
	}
	resp, err := client.Do(req)
	require.NoError(t, err)
	return resp
}

func cookieByName(resp *http.Response, name string) *http.Cookie {
	for _, c := range resp.Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func TestAuthFlow_Integration(t *testing.T) {
	srv := newAuthServer(t)
	client := srv.Client()
	email := fmt.Sprintf("flow_%d@example.com", time.Now().UnixNano())

	// Register.
	resp := postJSON(t, client, srv.URL+"/api/v1/auth/register", map[string]string{
		"org_name": "Flow Org",
		"email":    email,
		"password": "a long enough password",
	}, nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	// Login and capture both cookies.
	resp = postJSON(t, client, srv.URL+"/api/v1/auth/login", map[string]string{
		"email":    email,
		"password": "a long enough password",
	}, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	session := cookieByName(resp, middleware.SessionCookie)
	require.NotNil(t, session, "login must set the session cookie")
	assert.True(t, session.HttpOnly)

	csrf := cookieByName(resp, middleware.CSRFCookie)
	require.NotNil(t, csrf, "login must set the CSRF cookie")
	assert.False(t, csrf.HttpOnly)

	var loginBody struct {
		CSRFToken string `json:"csrf_token"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&loginBody))
	resp.Body.Close()
	assert.Equal(t, csrf.Value, loginBody.CSRFToken)

	// Authenticated read needs only the session cookie.
	req, err := http.NewRequest(http.MethodGet, srv.URL+"/api/v1/auth/me", nil)
	require.NoError(t, err)
	req.AddCookie(session)
	meResp, err := client.Do(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, meResp.StatusCode)
	meResp.Body.Close()

	// Mutating request without the CSRF header is refused.
	resp = postJSON(t, client, srv.URL+"/api/v1/auth/logout", nil, func(r *http.Request) {
		r.AddCookie(session)
		r.AddCookie(csrf)
	})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	resp.Body.Close()

	// With the echoed header it succeeds and expires the cookies.
	resp = postJSON(t, client, srv.URL+"/api/v1/auth/logout", nil, func(r *http.Request) {
		r.AddCookie(session)
		r.AddCookie(csrf)
		r.Header.Set(middleware.CSRFHeader, csrf.Value)
	})
	require.Equal(t, http.StatusNoContent, resp.StatusCode)
	expired := cookieByName(resp, middleware.SessionCookie)
	require.NotNil(t, expired)
	assert.Equal(t, -1, expired.MaxAge)
	resp.Body.Close()
}

func TestAuthFlow_UnauthenticatedMe_Integration(t *testing.T) {
	srv := newAuthServer(t)

	resp, err := srv.Client().Get(srv.URL + "/api/v1/auth/me")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}
