package postgres

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/modelodev/scrumbringer/internal/domain"
)

func TestResetTokenRepository_Insert(t *testing.T) {
	insertQuery := regexp.QuoteMeta(`
		INSERT INTO password_reset_tokens (token, email, status)
		VALUES ($1, $2, $3)
		RETURNING created_at
	`)

	t.Run("successful_insert", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		repo := NewResetTokenRepository(db)
		tx := newMockTx(t, mock, db)

		createdAt := time.Now()
		mock.ExpectQuery(insertQuery).
			WithArgs("tok-1", "alice@example.com", domain.ResetTokenActive).
			WillReturnRows(sqlmock.NewRows([]string{"created_at"}).AddRow(createdAt))

		token := &domain.ResetToken{
			Token:  "tok-1",
			Email:  "alice@example.com",
			Status: domain.ResetTokenActive,
		}
		err = repo.Insert(context.Background(), tx, token)
		require.NoError(t, err)
		assert.Equal(t, createdAt, token.CreatedAt)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("database_error", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		repo := NewResetTokenRepository(db)
		tx := newMockTx(t, mock, db)

		mock.ExpectQuery(insertQuery).
			WillReturnError(errors.New("connection lost"))

		err = repo.Insert(context.Background(), tx, &domain.ResetToken{Token: "tok-1"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to insert reset token")
	})
}

func TestResetTokenRepository_InvalidateActive(t *testing.T) {
	updateQuery := regexp.QuoteMeta(`UPDATE password_reset_tokens SET status = 'invalid' WHERE email = $1 AND status = 'active'`)

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewResetTokenRepository(db)
	tx := newMockTx(t, mock, db)

	mock.ExpectExec(updateQuery).
		WithArgs("alice@example.com").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err = repo.InvalidateActive(context.Background(), tx, "alice@example.com")
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestResetTokenRepository_GetForUpdate(t *testing.T) {
	// The row lock clause must be part of the statement sent to the server.
	lockQuery := regexp.QuoteMeta(`
		SELECT token, email, status, created_at
		FROM password_reset_tokens
		WHERE token = $1
		FOR UPDATE
	`)

	t.Run("found", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		repo := NewResetTokenRepository(db)
		tx := newMockTx(t, mock, db)

		mock.ExpectQuery(lockQuery).
			WithArgs("tok-1").
			WillReturnRows(sqlmock.NewRows([]string{"token", "email", "status", "created_at"}).
				AddRow("tok-1", "alice@example.com", domain.ResetTokenActive, time.Now()))

		token, err := repo.GetForUpdate(context.Background(), tx, "tok-1")
		require.NoError(t, err)
		assert.Equal(t, domain.ResetTokenActive, token.Status)
		assert.Equal(t, "alice@example.com", token.Email)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("unknown_token", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		repo := NewResetTokenRepository(db)
		tx := newMockTx(t, mock, db)

		mock.ExpectQuery(lockQuery).
			WithArgs("missing").
			WillReturnError(sql.ErrNoRows)

		token, err := repo.GetForUpdate(context.Background(), tx, "missing")
		assert.ErrorIs(t, err, domain.ErrResetTokenInvalid)
		assert.Nil(t, token)
	})
}

func TestResetTokenRepository_GetByToken(t *testing.T) {
	selectQuery := regexp.QuoteMeta(`
		SELECT token, email, status, created_at
		FROM password_reset_tokens
		WHERE token = $1
	`)

	t.Run("found", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		repo := NewResetTokenRepository(db)

		mock.ExpectQuery(selectQuery).
			WithArgs("tok-1").
			WillReturnRows(sqlmock.NewRows([]string{"token", "email", "status", "created_at"}).
				AddRow("tok-1", "alice@example.com", domain.ResetTokenUsed, time.Now()))

		token, err := repo.GetByToken(context.Background(), "tok-1")
		require.NoError(t, err)
		assert.Equal(t, domain.ResetTokenUsed, token.Status)
	})

	t.Run("unknown_token", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		repo := NewResetTokenRepository(db)

		mock.ExpectQuery(selectQuery).
			WithArgs("missing").
			WillReturnError(sql.ErrNoRows)

		_, err = repo.GetByToken(context.Background(), "missing")
		assert.ErrorIs(t, err, domain.ErrResetTokenInvalid)
	})
}

func TestResetTokenRepository_MarkUsed(t *testing.T) {
	updateQuery := regexp.QuoteMeta(`UPDATE password_reset_tokens SET status = 'used' WHERE token = $1 AND status = 'active'`)

	t.Run("active_token_transitions", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		repo := NewResetTokenRepository(db)
		tx := newMockTx(t, mock, db)

		mock.ExpectExec(updateQuery).
			WithArgs("tok-1").
			WillReturnResult(sqlmock.NewResult(0, 1))

		rows, err := repo.MarkUsed(context.Background(), tx, "tok-1")
		require.NoError(t, err)
		assert.Equal(t, int64(1), rows)
	})

	t.Run("non_active_token_affects_zero_rows", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		repo := NewResetTokenRepository(db)
		tx := newMockTx(t, mock, db)

		mock.ExpectExec(updateQuery).
			WithArgs("tok-used").
			WillReturnResult(sqlmock.NewResult(0, 0))

		rows, err := repo.MarkUsed(context.Background(), tx, "tok-used")
		require.NoError(t, err)
		assert.Equal(t, int64(0), rows)
	})
}
