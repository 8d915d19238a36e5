package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/modelodev/scrumbringer/internal/domain"
)

// ResetTokenRepository implements domain.ResetTokenRepository for
// PostgreSQL. A partial unique index on (email) WHERE status = 'active'
// backs the at-most-one-Active-per-email invariant at the storage level.
type ResetTokenRepository struct {
	db *sql.DB
}

// NewResetTokenRepository creates a new PostgreSQL reset-token repository.
func NewResetTokenRepository(db *sql.DB) *ResetTokenRepository {
	return &ResetTokenRepository{db: db}
}

// Insert stores a new Active token.
func (r *ResetTokenRepository) Insert(ctx context.Context, tx *sql.Tx, token *domain.ResetToken) error {
	query := `
		INSERT INTO password_reset_tokens (token, email, status)
		VALUES ($1, $2, $3)
		RETURNING created_at
	`
	err := tx.QueryRowContext(ctx, query,
		token.Token,
		token.Email,
		token.Status,
	).Scan(&token.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert reset token: %w", err)
	}
	return nil
}

// InvalidateActive supersedes any Active token for email. Always runs
// before inserting a replacement so that at most one Active token exists.
func (r *ResetTokenRepository) InvalidateActive(ctx context.Context, tx *sql.Tx, email string) error {
	_, err := tx.ExecContext(ctx,
		`UPDATE password_reset_tokens SET status = 'invalid' WHERE email = $1 AND status = 'active'`,
		email,
	)
	if err != nil {
		return fmt.Errorf("failed to invalidate active reset tokens: %w", err)
	}
	return nil
}

// GetForUpdate reads a token holding a row lock for the remainder of the
// transaction. Two concurrent consumers of the same token serialize here,
// so only the first can observe Active.
func (r *ResetTokenRepository) GetForUpdate(ctx context.Context, tx *sql.Tx, token string) (*domain.ResetToken, error) {
	query := `
		SELECT token, email, status, created_at
		FROM password_reset_tokens
		WHERE token = $1
		FOR UPDATE
	`
	return scanResetToken(tx.QueryRowContext(ctx, query, token))
}

// GetByToken is the lock-free read used by the validation endpoint.
func (r *ResetTokenRepository) GetByToken(ctx context.Context, token string) (*domain.ResetToken, error) {
	query := `
		SELECT token, email, status, created_at
		FROM password_reset_tokens
		WHERE token = $1
	`
	return scanResetToken(r.db.QueryRowContext(ctx, query, token))
}

// MarkUsed transitions Active -> Used. The status predicate makes the
// update race-safe: a transaction that lost the row lock race affects zero
// rows and the caller aborts.
func (r *ResetTokenRepository) MarkUsed(ctx context.Context, tx *sql.Tx, token string) (int64, error) {
	result, err := tx.ExecContext(ctx,
		`UPDATE password_reset_tokens SET status = 'used' WHERE token = $1 AND status = 'active'`,
		token,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to mark reset token used: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return rows, nil
}

func scanResetToken(row *sql.Row) (*domain.ResetToken, error) {
	token := &domain.ResetToken{}
	err := row.Scan(
		&token.Token,
		&token.Email,
		&token.Status,
		&token.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, domain.ErrResetTokenInvalid
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get reset token: %w", err)
	}
	return token, nil
}
