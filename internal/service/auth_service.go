package service

import (
	"context"
	"database/sql"
	"regexp"

	"github.com/google/uuid"

	"github.com/modelodev/scrumbringer/internal/domain"
	"github.com/modelodev/scrumbringer/internal/security"
)

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// AuthService handles registration and credential verification. Sessions
// are stateless: login issues a signed token plus a CSRF pair, logout is
// purely a cookie deletion at the HTTP layer.
type AuthService struct {
	tx     domain.TxRunner
	users  domain.UserRepository
	orgs   domain.OrgRepository
	tokens *security.TokenService
	hasher security.PasswordHasher
}

// NewAuthService creates a new AuthService.
func NewAuthService(
	tx domain.TxRunner,
	users domain.UserRepository,
	orgs domain.OrgRepository,
	tokens *security.TokenService,
	hasher security.PasswordHasher,
) *AuthService {
	return &AuthService{
		tx:     tx,
		users:  users,
		orgs:   orgs,
		tokens: tokens,
		hasher: hasher,
	}
}

// Register creates an organization and its admin user as one transaction.
// Either both rows exist afterwards or neither does.
func (s *AuthService) Register(ctx context.Context, orgName, email, password string) (*domain.User, error) {
	if orgName == "" || len(orgName) > 100 {
		return nil, domain.ErrInvalidInput
	}
	if !emailRegex.MatchString(email) || len(email) > 255 {
		return nil, domain.ErrInvalidInput
	}
	if len(password) < domain.MinPasswordLen || len(password) > 100 {
		return nil, domain.ErrPasswordTooShort
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, err
	}

	org := &domain.Org{
		ID:   uuid.NewString(),
		Name: orgName,
	}
	user := &domain.User{
		ID:           uuid.NewString(),
		OrgID:        org.ID,
		OrgRole:      domain.RoleAdmin,
		Email:        email,
		PasswordHash: hash,
	}

	err = s.tx.WithTx(ctx, func(tx *sql.Tx) error {
		if err := s.orgs.Create(ctx, tx, org); err != nil {
			return err
		}
		return s.users.Create(ctx, tx, user)
	})
	if err != nil {
		return nil, err
	}

	return user, nil
}

// Login verifies credentials and issues the session token and CSRF pair.
// Unknown email and wrong password are indistinguishable to the caller.
func (s *AuthService) Login(ctx context.Context, email, password string) (*domain.User, string, string, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, "", "", domain.ErrInvalidCredentials
	}

	if err := s.hasher.Verify(user.PasswordHash, password); err != nil {
		return nil, "", "", domain.ErrInvalidCredentials
	}

	sessionToken, err := s.tokens.Issue(user.ID, user.OrgID, user.OrgRole)
	if err != nil {
		return nil, "", "", err
	}

	csrfToken, err := security.NewCSRFToken()
	if err != nil {
		return nil, "", "", err
	}

	return user, sessionToken, csrfToken, nil
}

// GetUserByID resolves the authenticated caller from session claims.
func (s *AuthService) GetUserByID(ctx context.Context, userID string) (*domain.User, error) {
	return s.users.GetByID(ctx, userID)
}
