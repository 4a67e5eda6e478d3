package repository

import (
	"testing"

	"github.com/mkondo/notes-api/internal/models"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupTagRepoDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Tag{},
		&models.Note{},
		&models.NoteVersion{},
	))

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() {
		sqlDB.Close()
	})

	return db
}

func TestFindOrCreate_ResolvesExistingRowOnConflict(t *testing.T) {
	db := setupTagRepoDB(t)
	repo := NewTagRepository(db)

	user := &models.User{Email: "a@example.com", Username: "a", PasswordHash: "x", IsActive: true}
	require.NoError(t, db.Create(user).Error)

	first, err := repo.FindOrCreate(user.ID, "shared")
	require.NoError(t, err)
	require.NotZero(t, first.ID)

	// Second resolve hits the conflict path and returns the winner's row
	second, err := repo.FindOrCreate(user.ID, "shared")
	require.NoError(t, err)
	require.Equal(t, first.ID, second.ID)

	var count int64
	require.NoError(t, db.Model(&models.Tag{}).Where("user_id = ?", user.ID).Count(&count).Error)
	require.EqualValues(t, 1, count)
}

func TestFindOrCreate_ScopedPerUser(t *testing.T) {
	db := setupTagRepoDB(t)
	repo := NewTagRepository(db)

	alice := &models.User{Email: "alice@example.com", Username: "alice", PasswordHash: "x", IsActive: true}
	bob := &models.User{Email: "bob@example.com", Username: "bob", PasswordHash: "x", IsActive: true}
	require.NoError(t, db.Create(alice).Error)
	require.NoError(t, db.Create(bob).Error)

	aliceTag, err := repo.FindOrCreate(alice.ID, "personal")
	require.NoError(t, err)
	bobTag, err := repo.FindOrCreate(bob.ID, "personal")
	require.NoError(t, err)

	require.NotEqual(t, aliceTag.ID, bobTag.ID)
}
