package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/modelodev/scrumbringer/internal/domain"
)

// OrgRepository implements domain.OrgRepository for PostgreSQL.
type OrgRepository struct {
	db *sql.DB
}

// NewOrgRepository creates a new PostgreSQL organization repository.
func NewOrgRepository(db *sql.DB) *OrgRepository {
	return &OrgRepository{db: db}
}

// Create inserts a new organization inside the given transaction.
func (r *OrgRepository) Create(ctx context.Context, tx *sql.Tx, org *domain.Org) error {
	query := `
		INSERT INTO organizations (id, name)
		VALUES ($1, $2)
		RETURNING created_at
	`
	err := tx.QueryRowContext(ctx, query, org.ID, org.Name).Scan(&org.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create organization: %w", err)
	}
	return nil
}
