package repository

import (
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()

	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		sqlDB.Close()
	})

	db, err := gorm.Open(mysql.New(mysql.Config{
		Conn:                      sqlDB,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	return db, mock
}

func TestRecordFailedAttempt_SingleStatement(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewUserRepository(db)

	lockedUntil := time.Now().Add(15 * time.Minute)

	// The increment and the threshold decision must ride in one UPDATE.
	mock.ExpectExec(`UPDATE users`).
		WithArgs(5, lockedUntil, uint64(42)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.RecordFailedAttempt(42, 5, lockedUntil)
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestConsumeResetToken_UnknownTokenRollsBack(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewUserRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT .* FROM `password_reset_tokens`").
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "token", "expires_at", "used_at", "created_at"}))
	mock.ExpectRollback()

	err := repo.ConsumeResetToken("no-such-token", "newhash")
	require.ErrorIs(t, err, ErrResetTokenSpent)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestConsumeResetToken_SpentTokenRollsBack(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewUserRepository(db)

	used := time.Now().Add(-time.Minute)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT .* FROM `password_reset_tokens`").
		WillReturnRows(sqlmock.
			NewRows([]string{"id", "user_id", "token", "expires_at", "used_at", "created_at"}).
			AddRow(7, 42, "spent-token", time.Now().Add(time.Hour), used, time.Now().Add(-time.Hour)))
	// The guarded UPDATE matches no row because used_at is already set
	mock.ExpectExec("UPDATE `password_reset_tokens`").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	err := repo.ConsumeResetToken("spent-token", "newhash")
	require.ErrorIs(t, err, ErrResetTokenSpent)
	require.NoError(t, mock.ExpectationsWereMet())
}
