package postgres

import (
	"context"
	"database/sql"
	"fmt"
)

// TxManager implements domain.TxRunner on a pooled connection. Both the
// register flow (org plus admin user) and reset consumption (row lock,
// credential update, token transition) run through it.
type TxManager struct {
	db *sql.DB
}

// NewTxManager creates a transaction manager over db.
func NewTxManager(db *sql.DB) *TxManager {
	return &TxManager{db: db}
}

// WithTx runs fn inside a transaction: commit when fn returns nil, roll
// back otherwise. Row locks taken by fn are held until this returns.
func (tm *TxManager) WithTx(ctx context.Context, fn func(*sql.Tx) error) error {
	tx, err := tm.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("tx err: %v, rb err: %v", err, rbErr)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}
