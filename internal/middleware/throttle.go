package middleware

import (
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/modelodev/scrumbringer/internal/httperr"
)

const (
	// Maximum number of per-client limiters kept in memory.
	maxThrottleEntries = 10000
	// Entries unused for this long are pruned.
	throttleTTL = 15 * time.Minute
	// How often pruning runs.
	throttleCleanupEvery = 5 * time.Minute
)

type throttleEntry struct {
	limiter    *rate.Limiter
	lastAccess time.Time
}

// Throttle is a per-client token-bucket smoother for the general API
// surface. It is distinct from the fixed-window limiter guarding the
// password-reset endpoints: this one shapes sustained request rates, that
// one enforces a hard attempt ceiling per window.
type Throttle struct {
	mu      sync.Mutex
	entries map[string]*throttleEntry
	rate    rate.Limit
	burst   int
	stopCh  chan struct{}
}

// NewThrottle creates a throttle allowing perSecond sustained requests per
// client with the given burst, plus a background cleanup goroutine.
func NewThrottle(perSecond float64, burst int) *Throttle {
	t := &Throttle{
		entries: make(map[string]*throttleEntry),
		rate:    rate.Limit(perSecond),
		burst:   burst,
		stopCh:  make(chan struct{}),
	}
	go t.cleanupLoop()
	return t
}

// Stop terminates the cleanup goroutine.
func (t *Throttle) Stop() {
	close(t.stopCh)
}

// Middleware returns a chi-compatible handler wrapper keyed by client IP.
func (t *Throttle) Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := clientIP(r)
			if key == "" {
				key = r.RemoteAddr
			}

			if !t.limiterFor(key).Allow() {
				httperr.Write(w, http.StatusTooManyRequests, httperr.CodeRateLimited, "rate limit exceeded", nil)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func (t *Throttle) limiterFor(key string) *rate.Limiter {
	t.mu.Lock()
	defer t.mu.Unlock()

	entry, ok := t.entries[key]
	if !ok {
		entry = &throttleEntry{limiter: rate.NewLimiter(t.rate, t.burst)}
		t.entries[key] = entry
	}
	entry.lastAccess = time.Now()
	return entry.limiter
}

func (t *Throttle) cleanupLoop() {
	ticker := time.NewTicker(throttleCleanupEvery)
	defer ticker.Stop()

	for {
		select {
		case <-t.stopCh:
			return
		case <-ticker.C:
			t.cleanup()
		}
	}
}

func (t *Throttle) cleanup() {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := time.Now()
	for key, entry := range t.entries {
		if now.Sub(entry.lastAccess) > throttleTTL {
			delete(t.entries, key)
		}
	}

	for len(t.entries) > maxThrottleEntries {
		var oldestKey string
		var oldest time.Time
		for key, entry := range t.entries {
			if oldestKey == "" || entry.lastAccess.Before(oldest) {
				oldestKey = key
				oldest = entry.lastAccess
			}
		}
		delete(t.entries, oldestKey)
	}
}
