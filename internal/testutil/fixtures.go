package testutil

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/modelodev/scrumbringer/internal/domain"
)

// Counter for generating unique ids across fixtures.
var idCounter atomic.Int64

func nextID(prefix string) string {
	return fmt.Sprintf("%s-%d", prefix, idCounter.Add(1))
}

// UserOptions allows customizing user fixture creation.
type UserOptions struct {
	ID           string
	OrgID        string
	OrgRole      string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}

// NewTestUser creates a test user with sensible defaults.
func NewTestUser(opts ...func(*UserOptions)) *domain.User {
	o := &UserOptions{
		ID:           nextID("user"),
		OrgID:        nextID("org"),
		OrgRole:      domain.RoleMember,
		PasswordHash: "$2a$10$test.hash.for.testing.purposes.only",
	}

	for _, opt := range opts {
		opt(o)
	}

	if o.Email == "" {
		o.Email = o.ID + "@example.com"
	}
	if o.CreatedAt.IsZero() {
		o.CreatedAt = time.Now()
	}

	return &domain.User{
		ID:           o.ID,
		OrgID:        o.OrgID,
		OrgRole:      o.OrgRole,
		Email:        o.Email,
		PasswordHash: o.PasswordHash,
		CreatedAt:    o.CreatedAt,
	}
}

// WithEmail overrides the fixture email.
func WithEmail(email string) func(*UserOptions) {
	return func(o *UserOptions) { o.Email = email }
}

// WithPasswordHash overrides the stored hash.
func WithPasswordHash(hash string) func(*UserOptions) {
	return func(o *UserOptions) { o.PasswordHash = hash }
}

// WithOrgRole overrides the role.
func WithOrgRole(role string) func(*UserOptions) {
	return func(o *UserOptions) { o.OrgRole = role }
}

// NewTestResetToken creates an Active reset token fixture.
func NewTestResetToken(email string) *domain.ResetToken {
	return &domain.ResetToken{
		Token:     nextID("reset-token"),
		Email:     email,
		Status:    domain.ResetTokenActive,
		CreatedAt: time.Now(),
	}
}
