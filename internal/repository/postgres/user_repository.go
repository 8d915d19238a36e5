package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/modelodev/scrumbringer/internal/domain"
)

// UserRepository implements domain.UserRepository for PostgreSQL.
type UserRepository struct {
	db *sql.DB
}

// NewUserRepository creates a new PostgreSQL user repository.
func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

// Create inserts a new user inside the given transaction. Registration
// creates the organization and its admin user as one unit, so the insert
// always runs transactionally.
func (r *UserRepository) Create(ctx context.Context, tx *sql.Tx, user *domain.User) error {
	query := `
		INSERT INTO users (id, org_id, org_role, email, password_hash)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at
	`
	err := tx.QueryRowContext(ctx, query,
		user.ID,
		user.OrgID,
		user.OrgRole,
		user.Email,
		user.PasswordHash,
	).Scan(&user.CreatedAt)

	if err != nil {
		if IsUniqueViolation(err, "users_email_key") {
			return domain.ErrEmailExists
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// GetByEmail retrieves a user by email.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	query := `
		SELECT id, org_id, org_role, email, password_hash, created_at
		FROM users
		WHERE email = $1
	`
	return r.scanUser(r.db.QueryRowContext(ctx, query, email))
}

// GetByID retrieves a user by ID.
func (r *UserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	query := `
		SELECT id, org_id, org_role, email, password_hash, created_at
		FROM users
		WHERE id = $1
	`
	return r.scanUser(r.db.QueryRowContext(ctx, query, id))
}

// UpdatePasswordHash replaces the stored credential for email inside the
// given transaction and reports rows affected. The caller treats zero rows
// as a vanished account.
func (r *UserRepository) UpdatePasswordHash(ctx context.Context, tx *sql.Tx, email, hash string) (int64, error) {
	result, err := tx.ExecContext(ctx,
		`UPDATE users SET password_hash = $1 WHERE email = $2`,
		hash, email,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to update password hash: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return rows, nil
}

func (r *UserRepository) scanUser(row *sql.Row) (*domain.User, error) {
	user := &domain.User{}
	err := row.Scan(
		&user.ID,
		&user.OrgID,
		&user.OrgRole,
		&user.Email,
		&user.PasswordHash,
		&user.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, domain.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}
