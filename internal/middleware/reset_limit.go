package middleware

import (
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/modelodev/scrumbringer/internal/httperr"
	"github.com/modelodev/scrumbringer/internal/observability"
	"github.com/modelodev/scrumbringer/internal/ratelimit"
)

// RateLimit guards an abuse-prone endpoint group with a fixed-window
// ceiling keyed by "<purpose>:<client-ip>". When no client identity can be
// derived the request is allowed through: locking out every caller behind
// a proxy that strips identity would be a worse failure mode than letting
// a spoofed X-Forwarded-For bypass the ceiling. That trade-off is accepted.
func RateLimit(limiter *ratelimit.FixedWindow, purpose string, limit int, window time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := clientIP(r)
			if ip == "" {
				// Fail open: no identity, no limiting.
				next.ServeHTTP(w, r)
				return
			}

			key := purpose + ":" + ip
			if !limiter.Allow(key, limit, window, time.Now()) {
				observability.RateLimitRejectionsTotal.WithLabelValues(purpose).Inc()
				httperr.Write(w, http.StatusTooManyRequests, httperr.CodeRateLimited, "too many attempts", nil)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// clientIP derives a best-effort caller identity: the first entry of the
// X-Forwarded-For chain, falling back to the direct peer address.
func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		first := strings.TrimSpace(strings.SplitN(fwd, ",", 2)[0])
		if first != "" {
			return first
		}
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		// RemoteAddr without a port, e.g. in tests.
		return r.RemoteAddr
	}
	return host
}
