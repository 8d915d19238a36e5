package middleware

import (
	"log/slog"
	"net/http"

	"github.com/modelodev/scrumbringer/internal/httperr"
	"github.com/modelodev/scrumbringer/internal/security"
)

// CSRFCookie is the script-readable cookie carrying the CSRF token. The
// same value must come back in CSRFHeader on every mutating request.
const (
	CSRFCookie = "sb_csrf"
	CSRFHeader = "X-CSRF-Token"
)

// CSRF validates the double-submit-cookie invariant for state-changing
// requests: the cookie copy and the header copy must be present and
// bit-for-bit equal. Read-only verbs bypass the check. Nothing is stored
// server-side; a faithful echo is the only proof required.
func CSRF() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if isSafeMethod(r.Method) {
				next.ServeHTTP(w, r)
				return
			}

			var cookieValue string
			if cookie, err := r.Cookie(CSRFCookie); err == nil {
				cookieValue = cookie.Value
			}
			headerValue := r.Header.Get(CSRFHeader)

			if err := security.CheckCSRF(cookieValue, headerValue); err != nil {
				logCSRFFailure(r, cookieValue == "" || headerValue == "")
				httperr.Write(w, http.StatusForbidden, httperr.CodeForbidden, "csrf validation failed", nil)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// isSafeMethod returns true for idempotent, non-mutating HTTP methods.
func isSafeMethod(method string) bool {
	return method == http.MethodGet ||
		method == http.MethodHead ||
		method == http.MethodOptions
}

func logCSRFFailure(r *http.Request, missing bool) {
	reason := "token mismatch"
	if missing {
		reason = "missing token"
	}
	slog.Warn("CSRF validation failed",
		slog.String("reason", reason),
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path),
		slog.String("remote_addr", r.RemoteAddr),
	)
}
