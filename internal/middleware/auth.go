package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/modelodev/scrumbringer/internal/domain"
	"github.com/modelodev/scrumbringer/internal/httperr"
	"github.com/modelodev/scrumbringer/internal/security"
)

type contextKey string

const (
	// ClaimsKey carries the verified session claims for the request.
	ClaimsKey contextKey = "claims"
)

// SessionCookie is the HttpOnly cookie holding the signed session token.
const SessionCookie = "sb_session"

// Auth resolves the caller from the signed session cookie. Verification is
// a synchronous in-process signature check; there is no session store to
// consult.
func Auth(tokens *security.TokenService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(SessionCookie)
			if err != nil {
				httperr.Write(w, http.StatusUnauthorized, httperr.CodeUnauthorized, "not authenticated", nil)
				return
			}

			claims, err := tokens.Verify(cookie.Value)
			if err != nil {
				msg := "invalid session"
				if errors.Is(err, security.ErrTokenMalformed) {
					msg = "malformed session token"
				}
				httperr.Write(w, http.StatusUnauthorized, httperr.CodeUnauthorized, msg, nil)
				return
			}

			ctx := context.WithValue(r.Context(), ClaimsKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetClaims returns the verified claims attached by Auth.
func GetClaims(ctx context.Context) (*domain.Claims, bool) {
	claims, ok := ctx.Value(ClaimsKey).(*domain.Claims)
	return claims, ok
}

// WithClaims attaches claims to a context. Used by handler tests.
func WithClaims(ctx context.Context, claims *domain.Claims) context.Context {
	return context.WithValue(ctx, ClaimsKey, claims)
}
