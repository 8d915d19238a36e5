package security

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/modelodev/scrumbringer/internal/domain"
)

var (
	// ErrTokenMalformed is returned for structurally broken token input.
	ErrTokenMalformed = errors.New("session token malformed")
	// ErrTokenInvalid covers bad signatures, expired tokens and tokens
	// signed with a different secret.
	ErrTokenInvalid = errors.New("session token invalid")
)

// TokenService signs and verifies stateless session tokens. The secret is
// process-wide configuration loaded once at startup; in-process rotation is
// not supported (a restart with a new secret invalidates all sessions).
type TokenService struct {
	secret []byte
	ttl    time.Duration
}

// NewTokenService creates a token service from the configured secret.
func NewTokenService(secret string, ttl time.Duration) *TokenService {
	return &TokenService{secret: []byte(secret), ttl: ttl}
}

// Issue signs the claims triple with the server secret. Tampering with any
// field invalidates the HMAC signature.
func (s *TokenService) Issue(userID, orgID, orgRole string) (string, error) {
	now := time.Now().UTC()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  userID,
		"org":  orgID,
		"role": orgRole,
		"jti":  uuid.NewString(),
		"iat":  now.Unix(),
		"exp":  now.Add(s.ttl).Unix(),
	})
	return token.SignedString(s.secret)
}

// Verify parses and checks a session token. All failures on attacker
// controlled input surface as typed errors, never a panic.
func (s *TokenService) Verify(tokenString string) (*domain.Claims, error) {
	parsed, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrTokenInvalid
		}
		return s.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenMalformed) {
			return nil, ErrTokenMalformed
		}
		return nil, ErrTokenInvalid
	}
	if !parsed.Valid {
		return nil, ErrTokenInvalid
	}

	claimsMap, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrTokenMalformed
	}

	claims := &domain.Claims{}
	claims.UserID, _ = claimsMap["sub"].(string)
	claims.OrgID, _ = claimsMap["org"].(string)
	claims.OrgRole, _ = claimsMap["role"].(string)

	if claims.UserID == "" || claims.OrgID == "" {
		return nil, ErrTokenMalformed
	}

	return claims, nil
}
