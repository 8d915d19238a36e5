package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestThrottle_AllowsWithinBurst(t *testing.T) {
	throttle := NewThrottle(100, 5)
	defer throttle.Stop()

	handler := throttle.Middleware()(okHandler())

	for i := 0; i < 5; i++ {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/auth/me", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		w := httptest.NewRecorder()

		handler.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("request %d within burst should pass, got %d", i+1, w.Code)
		}
	}
}

func TestThrottle_RejectsBeyondBurst(t *testing.T) {
	// Near-zero refill so the burst is effectively the whole budget.
	throttle := NewThrottle(0.001, 2)
	defer throttle.Stop()

	handler := throttle.Middleware()(okHandler())

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/auth/me", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		w := httptest.NewRecorder()

		handler.ServeHTTP(w, req)
		codes = append(codes, w.Code)
	}

	if codes[0] != http.StatusOK || codes[1] != http.StatusOK {
		t.Errorf("first two requests should pass, got %v", codes)
	}
	if codes[2] != http.StatusTooManyRequests {
		t.Errorf("third request should be throttled, got %v", codes)
	}
}

func TestThrottle_PerClientBuckets(t *testing.T) {
	throttle := NewThrottle(0.001, 1)
	defer throttle.Stop()

	handler := throttle.Middleware()(okHandler())

	first := httptest.NewRequest(http.MethodGet, "/api/v1/auth/me", nil)
	first.RemoteAddr = "10.0.0.1:1234"
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, first)
	if w.Code != http.StatusOK {
		t.Fatalf("expected first client allowed, got %d", w.Code)
	}

	other := httptest.NewRequest(http.MethodGet, "/api/v1/auth/me", nil)
	other.RemoteAddr = "10.0.0.2:1234"
	w = httptest.NewRecorder()
	handler.ServeHTTP(w, other)
	if w.Code != http.StatusOK {
		t.Errorf("a different client must have its own bucket, got %d", w.Code)
	}
}

func TestThrottle_CleanupPrunesIdleEntries(t *testing.T) {
	throttle := NewThrottle(100, 5)
	defer throttle.Stop()

	throttle.limiterFor("10.0.0.1")
	throttle.mu.Lock()
	throttle.entries["10.0.0.1"].lastAccess = time.Now().Add(-throttleTTL - time.Minute)
	throttle.mu.Unlock()

	throttle.limiterFor("10.0.0.2")

	throttle.cleanup()

	throttle.mu.Lock()
	defer throttle.mu.Unlock()
	if _, ok := throttle.entries["10.0.0.1"]; ok {
		t.Error("idle entry should be pruned")
	}
	if _, ok := throttle.entries["10.0.0.2"]; !ok {
		t.Error("active entry should survive cleanup")
	}
}
