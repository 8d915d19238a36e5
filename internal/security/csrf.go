package security

import (
	"crypto/hmac"
	"crypto/rand"
	"encoding/hex"
	"errors"
)

// ErrCSRFMismatch is returned when the double-submit invariant fails.
var ErrCSRFMismatch = errors.New("csrf token mismatch")

// NewCSRFToken creates a cryptographically random CSRF token (256 bits),
// returned as a 64-character hex string. The same value is delivered twice,
// once as a cookie and once expected back as a request header; equality of
// the echoes is the only truth, nothing is stored server-side.
func NewCSRFToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

// CheckCSRF validates the double-submit pair. It succeeds only when both
// copies are present and bit-for-bit equal; absence of either side is a
// rejection. The comparison is constant-time.
//
// This defends against cross-origin form submission only. An attacker who
// can read or steal cookies is outside this guard's threat model.
func CheckCSRF(cookieValue, headerValue string) error {
	if cookieValue == "" || headerValue == "" {
		return ErrCSRFMismatch
	}
	if !hmac.Equal([]byte(cookieValue), []byte(headerValue)) {
		return ErrCSRFMismatch
	}
	return nil
}
