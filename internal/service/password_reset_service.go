package service

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/modelodev/scrumbringer/internal/domain"
	"github.com/modelodev/scrumbringer/internal/observability"
	"github.com/modelodev/scrumbringer/internal/security"
)

// ResetNotifier publishes a reset-requested event for the mailer worker.
// Implementations must not influence the HTTP response: delivery failures
// are logged and swallowed so the anti-enumeration property holds.
type ResetNotifier interface {
	PublishResetRequested(ctx context.Context, email, token, urlPath string) error
}

// PasswordResetService owns the reset-token state machine. A token moves
// Active -> Used exactly once; issuing a new token for an email invalidates
// the previous Active one. Consumption runs inside a single transaction
// with a row lock so concurrent consumers cannot double-spend.
type PasswordResetService struct {
	tx       domain.TxRunner
	users    domain.UserRepository
	tokens   domain.ResetTokenRepository
	hasher   security.PasswordHasher
	notifier ResetNotifier
}

// NewPasswordResetService creates a new PasswordResetService. notifier may
// be nil when no mailer is wired (tests, local development).
func NewPasswordResetService(
	tx domain.TxRunner,
	users domain.UserRepository,
	tokens domain.ResetTokenRepository,
	hasher security.PasswordHasher,
	notifier ResetNotifier,
) *PasswordResetService {
	return &PasswordResetService{
		tx:       tx,
		users:    users,
		tokens:   tokens,
		hasher:   hasher,
		notifier: notifier,
	}
}

// ResetURLPath returns the client-facing path for a token.
func ResetURLPath(token string) string {
	return "/reset-password/" + token
}

// RequestReset always returns a token so the response never reveals
// whether the email is registered. When the account exists, any prior
// Active token is invalidated and the new one inserted in one transaction;
// when it does not, the returned token is never persisted and can never be
// consumed.
func (s *PasswordResetService) RequestReset(ctx context.Context, email string) (string, error) {
	token, err := newResetTokenString()
	if err != nil {
		return "", err
	}

	_, err = s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			// Same response shape as the registered path.
			return token, nil
		}
		return "", err
	}

	err = s.tx.WithTx(ctx, func(tx *sql.Tx) error {
		if err := s.tokens.InvalidateActive(ctx, tx, email); err != nil {
			return err
		}
		return s.tokens.Insert(ctx, tx, &domain.ResetToken{
			Token:  token,
			Email:  email,
			Status: domain.ResetTokenActive,
		})
	})
	if err != nil {
		return "", err
	}

	if s.notifier != nil {
		if err := s.notifier.PublishResetRequested(ctx, email, token, ResetURLPath(token)); err != nil {
			observability.Error("failed to publish reset notification",
				"error", err.Error())
		}
	}

	return token, nil
}

// TokenStatus reports whether a token is still redeemable. Active tokens
// yield the owning email; Used and Invalid surface as their distinct
// terminal errors.
func (s *PasswordResetService) TokenStatus(ctx context.Context, token string) (string, error) {
	t, err := s.tokens.GetByToken(ctx, token)
	if err != nil {
		return "", err
	}

	switch t.Status {
	case domain.ResetTokenActive:
		return t.Email, nil
	case domain.ResetTokenUsed:
		return "", domain.ErrResetTokenUsed
	default:
		return "", domain.ErrResetTokenInvalid
	}
}

// Consume redeems a token and sets a new password as one transaction:
// read the token under a row lock, hash, update the credential, mark the
// token Used. Any failure rolls back every earlier step, so a partial
// password change or a Used token without a password change is never
// observable.
func (s *PasswordResetService) Consume(ctx context.Context, token, newPassword string) error {
	// Cheap rejection before any transactional work.
	if len(newPassword) < domain.MinPasswordLen {
		return domain.ErrPasswordTooShort
	}

	return s.tx.WithTx(ctx, func(tx *sql.Tx) error {
		t, err := s.tokens.GetForUpdate(ctx, tx, token)
		if err != nil {
			return err
		}

		switch t.Status {
		case domain.ResetTokenActive:
			// proceed
		case domain.ResetTokenUsed:
			return domain.ErrResetTokenUsed
		default:
			return domain.ErrResetTokenInvalid
		}

		hash, err := s.hasher.Hash(newPassword)
		if err != nil {
			return err
		}

		rows, err := s.users.UpdatePasswordHash(ctx, tx, t.Email, hash)
		if err != nil {
			return err
		}
		if rows == 0 {
			// Account vanished between issuance and consumption.
			return domain.ErrResetTokenInvalid
		}

		rows, err = s.tokens.MarkUsed(ctx, tx, token)
		if err != nil {
			return err
		}
		if rows == 0 {
			return domain.ErrResetTokenInvalid
		}

		return nil
	})
}

// newResetTokenString generates an opaque 256-bit token as hex.
func newResetTokenString() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate reset token: %w", err)
	}
	return hex.EncodeToString(buf), nil
}
