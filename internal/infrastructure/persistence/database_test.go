package persistence

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/roombook/backend/tests/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// newMockGorm opens a GORM handle over sqlmock using the postgres dialect
func newMockGorm(t *testing.T) (*gorm.DB, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db := testutil.NewMockDB(t)
	return db.DB, db.Mock, db.SqlDB
}

type pgError struct{ code string }

func (e pgError) Error() string    { return "pq: " + e.code }
func (e pgError) SQLState() string { return e.code }

func TestDatabase_Ping(t *testing.T) {
	t.Run("successful ping", func(t *testing.T) {
		gormDB, mock, mockDB := newMockGorm(t)
		defer mockDB.Close()

		mock.ExpectPing()

		db := &Database{DB: gormDB}
		require.NoError(t, db.Ping(context.Background()))
		assert.Equal(t, "database", db.Name())
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("failed ping", func(t *testing.T) {
		gormDB, mock, mockDB := newMockGorm(t)
		defer mockDB.Close()

		mock.ExpectPing().WillReturnError(errors.New("connection refused"))

		db := &Database{DB: gormDB}
		err := db.Ping(context.Background())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "connection refused")
	})
}

func TestDatabase_Stats(t *testing.T) {
	gormDB, _, mockDB := newMockGorm(t)
	defer mockDB.Close()

	db := &Database{DB: gormDB}
	stats, err := db.Stats()
	require.NoError(t, err)
	assert.GreaterOrEqual(t, stats.OpenConnections, 0)
}

func TestDatabase_Transaction(t *testing.T) {
	t.Run("commits on success", func(t *testing.T) {
		gormDB, mock, mockDB := newMockGorm(t)
		defer mockDB.Close()

		mock.ExpectBegin()
		mock.ExpectExec(`DELETE FROM "amenities"`).WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		db := &Database{DB: gormDB}
		err := db.Transaction(context.Background(), func(tx *gorm.DB) error {
			return tx.Exec(`DELETE FROM "amenities" WHERE id = 1`).Error
		})
		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("rolls back on error", func(t *testing.T) {
		gormDB, mock, mockDB := newMockGorm(t)
		defer mockDB.Close()

		mock.ExpectBegin()
		mock.ExpectRollback()

		db := &Database{DB: gormDB}
		err := db.Transaction(context.Background(), func(tx *gorm.DB) error {
			return errors.New("boom")
		})
		require.EqualError(t, err, "boom")
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestConstraintErrors(t *testing.T) {
	assert.True(t, isUniqueViolation(gorm.ErrDuplicatedKey))
	assert.True(t, isUniqueViolation(fmt.Errorf("insert: %w", pgError{code: "23505"})))
	assert.False(t, isUniqueViolation(pgError{code: "23P01"}))

	assert.True(t, isExclusionViolation(fmt.Errorf("insert: %w", pgError{code: "23P01"})))
	assert.False(t, isExclusionViolation(errors.New("plain")))
}
