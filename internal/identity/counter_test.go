package identity

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"footprint-app/database"
	"footprint-app/internal/domain/users"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func setupMock(t *testing.T) (*TableCounter, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{})
	require.NoError(t, err)
	return NewTableCounter(db), mock
}

const postgresClaimSQL = `UPDATE serial_counters SET value = GREATEST(value, (SELECT COALESCE(MAX(serial), 0) FROM users)) + 1 WHERE name = $1 RETURNING value`

func TestTableCounter_ClaimPostgres(t *testing.T) {
	counter, mock := setupMock(t)

	mock.ExpectQuery(regexp.QuoteMeta(postgresClaimSQL)).
		WithArgs("users").
		WillReturnRows(sqlmock.NewRows([]string{"value"}).AddRow(int64(1002)))

	serial, err := counter.Claim(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1002), serial)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTableCounter_ClaimMissingRow(t *testing.T) {
	counter, mock := setupMock(t)

	mock.ExpectQuery(regexp.QuoteMeta(postgresClaimSQL)).
		WithArgs("users").
		WillReturnRows(sqlmock.NewRows([]string{"value"}))

	_, err := counter.Claim(context.Background())
	assert.ErrorIs(t, err, ErrCounterMissing)
}

func TestTableCounter_ClaimError(t *testing.T) {
	counter, mock := setupMock(t)

	mock.ExpectQuery(regexp.QuoteMeta(postgresClaimSQL)).
		WithArgs("users").
		WillReturnError(errors.New("connection reset"))

	_, err := counter.Claim(context.Background())
	assert.Error(t, err)
}

func TestTableCounter_ClaimIsMonotonic(t *testing.T) {
	db := database.OpenTestDB(t)
	counter := NewTableCounter(db)

	prev := int64(database.TestSerialFloor)
	for i := 0; i < 5; i++ {
		next, err := counter.Claim(context.Background())
		require.NoError(t, err)
		assert.Equal(t, prev+1, next)
		prev = next
	}
}

func TestTableCounter_ClaimSkipsSerialsAlreadyInUsers(t *testing.T) {
	db := database.OpenTestDB(t)
	require.NoError(t, db.Create(&users.User{Email: "fallback@x.com", Serial: 1400}).Error)
	counter := NewTableCounter(db)

	next, err := counter.Claim(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1401), next)

	next, err = counter.Claim(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1402), next)
}
