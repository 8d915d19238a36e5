package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/modelodev/scrumbringer/internal/domain"
	"github.com/modelodev/scrumbringer/internal/security"
)

func testTokenService() *security.TokenService {
	return security.NewTokenService("test-secret-at-least-32-characters!!", time.Hour)
}

func TestAuth_AllowsValidSession(t *testing.T) {
	tokens := testTokenService()
	sessionToken, err := tokens.Issue("user-1", "org-1", "admin")
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	var gotClaims *domain.Claims
	handler := Auth(tokens)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotClaims, _ = GetClaims(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/auth/me", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookie, Value: sessionToken})
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected %d, got %d", http.StatusOK, w.Code)
	}
	if gotClaims == nil {
		t.Fatal("expected claims in request context")
	}
	if gotClaims.UserID != "user-1" || gotClaims.OrgID != "org-1" || gotClaims.OrgRole != "admin" {
		t.Errorf("unexpected claims: %+v", gotClaims)
	}
}

func TestAuth_RejectsMissingCookie(t *testing.T) {
	handler := Auth(testTokenService())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler should not be reached")
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/auth/me", nil)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected %d, got %d", http.StatusUnauthorized, w.Code)
	}
}

func TestAuth_RejectsBadTokens(t *testing.T) {
	tokens := testTokenService()

	otherSecret := security.NewTokenService("another-secret-also-32-characters!!!", time.Hour)
	foreign, err := otherSecret.Issue("user-1", "org-1", "member")
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	expired := security.NewTokenService("test-secret-at-least-32-characters!!", -time.Minute)
	expiredToken, err := expired.Issue("user-1", "org-1", "member")
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	tests := []struct {
		name  string
		value string
	}{
		{"garbage", "not-a-token"},
		{"wrong secret", foreign},
		{"expired", expiredToken},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := Auth(tokens)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				t.Error("handler should not be reached")
			}))

			req := httptest.NewRequest(http.MethodGet, "/api/v1/auth/me", nil)
			req.AddCookie(&http.Cookie{Name: SessionCookie, Value: tt.value})
			w := httptest.NewRecorder()

			handler.ServeHTTP(w, req)

			if w.Code != http.StatusUnauthorized {
				t.Errorf("expected %d, got %d", http.StatusUnauthorized, w.Code)
			}
		})
	}
}

func TestGetClaims_EmptyContext(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)

	if _, ok := GetClaims(req.Context()); ok {
		t.Error("expected no claims on a bare context")
	}
}
