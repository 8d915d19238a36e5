package handler

import (
	"encoding/json"
	"net/http"

	"github.com/modelodev/scrumbringer/internal/httperr"
	"github.com/modelodev/scrumbringer/internal/middleware"
	"github.com/modelodev/scrumbringer/internal/observability"
	"github.com/modelodev/scrumbringer/internal/service"
)

// AuthHandler handles registration, login and session endpoints.
type AuthHandler struct {
	authService  *service.AuthService
	secureCookie bool
}

// NewAuthHandler creates a new authentication handler. secureCookie should
// be true whenever the deployment terminates TLS.
func NewAuthHandler(authService *service.AuthService, secureCookie bool) *AuthHandler {
	return &AuthHandler{
		authService:  authService,
		secureCookie: secureCookie,
	}
}

// RegisterRequest creates an organization and its first admin user.
type RegisterRequest struct {
	OrgName  string `json:"org_name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// UserResponse is the public shape of a user.
type UserResponse struct {
	ID      string `json:"id"`
	OrgID   string `json:"org_id"`
	OrgRole string `json:"org_role"`
	Email   string `json:"email"`
}

// LoginRequest carries login credentials.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse echoes the authenticated user; the session token and CSRF
// token travel in cookies, with the CSRF value additionally in the body so
// single-page clients can pick it up without parsing Set-Cookie.
type LoginResponse struct {
	User      UserResponse `json:"user"`
	CSRFToken string       `json:"csrf_token"`
}

// Register handles POST /auth/register.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httperr.Write(w, http.StatusBadRequest, httperr.CodeValidation, "invalid request body", nil)
		return
	}

	user, err := h.authService.Register(r.Context(), req.OrgName, req.Email, req.Password)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, UserResponse{
		ID:      user.ID,
		OrgID:   user.OrgID,
		OrgRole: user.OrgRole,
		Email:   user.Email,
	})
}

// Login handles POST /auth/login. On success it sets the HttpOnly session
// cookie and the script-readable CSRF cookie.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httperr.Write(w, http.StatusBadRequest, httperr.CodeValidation, "invalid request body", nil)
		return
	}

	user, sessionToken, csrfToken, err := h.authService.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		observability.LoginAttemptsTotal.WithLabelValues("failure").Inc()
		writeDomainError(w, r, err)
		return
	}
	observability.LoginAttemptsTotal.WithLabelValues("success").Inc()

	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookie,
		Value:    sessionToken,
		Path:     "/",
		MaxAge:   86400,
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteStrictMode,
	})
	// Intentionally readable by page scripts: the client must echo this
	// value in the CSRF header.
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.CSRFCookie,
		Value:    csrfToken,
		Path:     "/",
		MaxAge:   86400,
		HttpOnly: false,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteStrictMode,
	})

	writeJSON(w, http.StatusOK, LoginResponse{
		User: UserResponse{
			ID:      user.ID,
			OrgID:   user.OrgID,
			OrgRole: user.OrgRole,
			Email:   user.Email,
		},
		CSRFToken: csrfToken,
	})
}

// Logout handles POST /auth/logout. Sessions are stateless, so logout is
// the expiry of both cookies; the CSRF pair dies with the session.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	for _, name := range []string{middleware.SessionCookie, middleware.CSRFCookie} {
		http.SetCookie(w, &http.Cookie{
			Name:     name,
			Value:    "",
			Path:     "/",
			MaxAge:   -1,
			HttpOnly: name == middleware.SessionCookie,
			Secure:   h.secureCookie,
			SameSite: http.SameSiteStrictMode,
		})
	}

	w.WriteHeader(http.StatusNoContent)
}

// Me handles GET /auth/me, resolving the caller from session claims.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetClaims(r.Context())
	if !ok {
		httperr.Write(w, http.StatusUnauthorized, httperr.CodeUnauthorized, "not authenticated", nil)
		return
	}

	user, err := h.authService.GetUserByID(r.Context(), claims.UserID)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, UserResponse{
		ID:      user.ID,
		OrgID:   user.OrgID,
		OrgRole: user.OrgRole,
		Email:   user.Email,
	})
}
