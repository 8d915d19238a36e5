package domain

import (
	"context"
	"database/sql"
	"time"
)

// ResetTokenStatus is the three-state lifecycle of a password-reset token.
type ResetTokenStatus string

const (
	// ResetTokenActive means usable exactly once, currently valid.
	ResetTokenActive ResetTokenStatus = "active"
	// ResetTokenUsed is terminal; consumption already completed.
	ResetTokenUsed ResetTokenStatus = "used"
	// ResetTokenInvalid is terminal; superseded by a newer request for
	// the same email.
	ResetTokenInvalid ResetTokenStatus = "invalid"
)

// ResetToken is a single-use password-reset credential. At most one Active
// token exists per email at any time; issuing a new one invalidates the old.
type ResetToken struct {
	Token     string           `json:"token"`
	Email     string           `json:"email"`
	Status    ResetTokenStatus `json:"status"`
	CreatedAt time.Time        `json:"created_at"`
}

// ResetTokenRepository defines the interface for reset-token data access.
// The transactional methods participate in the consume state machine and
// must all run inside the same transaction.
type ResetTokenRepository interface {
	// Insert stores a new Active token.
	Insert(ctx context.Context, tx *sql.Tx, token *ResetToken) error
	// InvalidateActive flips any Active token for email to Invalid.
	InvalidateActive(ctx context.Context, tx *sql.Tx, email string) error
	// GetForUpdate reads a token with a row lock so that concurrent
	// consumers cannot both observe Active. Returns ErrResetTokenInvalid
	// when the token string is unknown.
	GetForUpdate(ctx context.Context, tx *sql.Tx, token string) (*ResetToken, error)
	// GetByToken is the lock-free read used by the validation endpoint.
	GetByToken(ctx context.Context, token string) (*ResetToken, error)
	// MarkUsed transitions Active -> Used and reports rows affected.
	// Zero rows means a racing transaction already consumed the token.
	MarkUsed(ctx context.Context, tx *sql.Tx, token string) (int64, error)
}
