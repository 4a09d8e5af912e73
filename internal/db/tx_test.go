package db

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassifyError(t *testing.T) {
	assert.Equal(t, ErrorClassSerialization, ClassifyError(&pq.Error{Code: PgSerializationFailure}))
	assert.Equal(t, ErrorClassDeadlock, ClassifyError(&pq.Error{Code: PgDeadlockDetected}))
	assert.Equal(t, ErrorClassTransient, ClassifyError(&pq.Error{Code: PgLockNotAvailable}))
	assert.Equal(t, ErrorClassPermanent, ClassifyError(&pq.Error{Code: PgUniqueViolation}))
	assert.Equal(t, ErrorClassPermanent, ClassifyError(sql.ErrNoRows))
	assert.Equal(t, ErrorClassPermanent, ClassifyError(nil))

	assert.True(t, IsUniqueViolation(&pq.Error{Code: PgUniqueViolation}))
	assert.False(t, IsUniqueViolation(errors.New("boom")))
}

func TestWithTransaction(t *testing.T) {
	t.Run("Commit", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectBegin()
		mock.ExpectExec("UPDATE products").WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		err = WithTransaction(context.Background(), db, DefaultTxOptions(), func(tx *sql.Tx) error {
			_, err := tx.Exec("UPDATE products SET count_in_stock = 1")
			return err
		})
		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Rollback on error", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		fnErr := errors.New("fn failed")
		mock.ExpectBegin()
		mock.ExpectRollback()

		err = WithTransaction(context.Background(), db, DefaultTxOptions(), func(tx *sql.Tx) error {
			return fnErr
		})
		assert.ErrorIs(t, err, fnErr)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestWithRetry(t *testing.T) {
	t.Run("Retries deadlock then succeeds", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectBegin()
		mock.ExpectRollback()
		mock.ExpectBegin()
		mock.ExpectCommit()

		calls := 0
		err = WithRetry(context.Background(), db, DefaultTxOptions(), func(tx *sql.Tx) error {
			calls++
			if calls == 1 {
				return &pq.Error{Code: PgDeadlockDetected}
			}
			return nil
		})
		assert.NoError(t, err)
		assert.Equal(t, 2, calls)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Permanent error is not retried", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectBegin()
		mock.ExpectRollback()

		calls := 0
		permanent := errors.New("insufficient stock")
		err = WithRetry(context.Background(), db, DefaultTxOptions(), func(tx *sql.Tx) error {
			calls++
			return permanent
		})
		assert.ErrorIs(t, err, permanent)
		assert.Equal(t, 1, calls)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Gives up after max retries", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		opts := DefaultTxOptions()
		opts.MaxRetries = 1
		for i := 0; i < 2; i++ {
			mock.ExpectBegin()
			mock.ExpectRollback()
		}

		err = WithRetry(context.Background(), db, opts, func(tx *sql.Tx) error {
			return &pq.Error{Code: PgSerializationFailure}
		})
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "max retries (1) exceeded")
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
