package repository

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/cppla/sharedrop/models"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}, &models.FileRecord{}))
	return db
}

func record(owner, hashID string, uploadMinute int64) *models.FileRecord {
	return &models.FileRecord{
		HashID:     hashID,
		FileName:   "report",
		Extension:  "txt",
		UserUpload: owner,
		UploadTime: uploadMinute,
		TargetUser: "alpha",
	}
}

func TestFileRepository_InsertAndFind(t *testing.T) {
	repo := NewFileRepository(newTestDB(t))

	require.NoError(t, repo.Insert(record("tester", "hash1", 100)))

	got, err := repo.FindByOwnerAndID("tester", "hash1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "report", got.FileName)
	assert.Equal(t, "txt", got.Extension)
	assert.Equal(t, int64(100), got.UploadTime)
	assert.Equal(t, "alpha", got.TargetUser)
}

func TestFileRepository_FindAbsentIsNilNil(t *testing.T) {
	repo := NewFileRepository(newTestDB(t))

	got, err := repo.FindByOwnerAndID("tester", "nope")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestFileRepository_InsertDuplicateRejected(t *testing.T) {
	repo := NewFileRepository(newTestDB(t))

	require.NoError(t, repo.Insert(record("tester", "hash1", 100)))
	err := repo.Insert(record("tester", "hash1", 200))
	assert.ErrorIs(t, err, ErrDuplicateRecord)
}

func TestFileRepository_SameHashDifferentOwners(t *testing.T) {
	// The identity is (owner, hash id): two users uploading the same base
	// name collide on hash but not on the row.
	repo := NewFileRepository(newTestDB(t))

	require.NoError(t, repo.Insert(record("tester", "hash1", 100)))
	require.NoError(t, repo.Insert(record("other", "hash1", 100)))

	got, err := repo.FindByOwnerAndID("other", "hash1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "other", got.UserUpload)
}

func TestFileRepository_FindByTargetNewestFirst(t *testing.T) {
	repo := NewFileRepository(newTestDB(t))

	require.NoError(t, repo.Insert(record("tester", "old", 100)))
	require.NoError(t, repo.Insert(record("tester", "new", 300)))
	require.NoError(t, repo.Insert(record("tester", "mid", 200)))

	other := record("tester", "elsewhere", 400)
	other.TargetUser = "beta"
	require.NoError(t, repo.Insert(other))

	recs, err := repo.FindByTarget("alpha")
	require.NoError(t, err)
	require.Len(t, recs, 3)
	assert.Equal(t, "new", recs[0].HashID)
	assert.Equal(t, "mid", recs[1].HashID)
	assert.Equal(t, "old", recs[2].HashID)
}

func TestFileRepository_FindByTargetEmpty(t *testing.T) {
	repo := NewFileRepository(newTestDB(t))

	recs, err := repo.FindByTarget("nobody")
	require.NoError(t, err)
	assert.Empty(t, recs)
}

func TestFileRepository_Delete(t *testing.T) {
	repo := NewFileRepository(newTestDB(t))
	require.NoError(t, repo.Insert(record("tester", "hash1", 100)))

	deleted, err := repo.DeleteByOwnerAndID("tester", "hash1")
	require.NoError(t, err)
	assert.True(t, deleted)

	// Second delete of the same row reports no work, not an error.
	deleted, err = repo.DeleteByOwnerAndID("tester", "hash1")
	require.NoError(t, err)
	assert.False(t, deleted)
}

func TestFileRepository_FindExpiredBefore(t *testing.T) {
	repo := NewFileRepository(newTestDB(t))

	require.NoError(t, repo.Insert(record("tester", "ancient", 50)))
	require.NoError(t, repo.Insert(record("tester", "boundary", 100)))
	require.NoError(t, repo.Insert(record("tester", "fresh", 101)))

	recs, err := repo.FindExpiredBefore(100)
	require.NoError(t, err)
	require.Len(t, recs, 2)

	ids := []string{recs[0].HashID, recs[1].HashID}
	assert.Contains(t, ids, "ancient")
	// Exactly at the cutoff counts as expired.
	assert.Contains(t, ids, "boundary")
	assert.NotContains(t, ids, "fresh")
}

func TestUserRepository_CreateAndExists(t *testing.T) {
	repo := NewUserRepository(newTestDB(t))

	ok, err := repo.Exists("tester")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, repo.Create(&models.User{Username: "tester", PasswordHash: "x"}))

	ok, err = repo.Exists("tester")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestUserRepository_DuplicateUsernameRejected(t *testing.T) {
	repo := NewUserRepository(newTestDB(t))

	require.NoError(t, repo.Create(&models.User{Username: "tester", PasswordHash: "x"}))
	err := repo.Create(&models.User{Username: "tester", PasswordHash: "y"})
	assert.ErrorIs(t, err, ErrDuplicateUser)
}

func TestUserRepository_FindByUsername(t *testing.T) {
	repo := NewUserRepository(newTestDB(t))
	require.NoError(t, repo.Create(&models.User{Username: "tester", PasswordHash: "x"}))

	user, err := repo.FindByUsername("tester")
	require.NoError(t, err)
	require.NotNil(t, user)
	assert.Equal(t, "tester", user.Username)

	user, err = repo.FindByUsername("ghost")
	require.NoError(t, err)
	assert.Nil(t, user)
}

func TestUserRepository_SetAvatarURL(t *testing.T) {
	repo := NewUserRepository(newTestDB(t))
	require.NoError(t, repo.Create(&models.User{Username: "tester", PasswordHash: "x"}))

	require.NoError(t, repo.SetAvatarURL("tester", "/avatars/tester.png"))

	user, err := repo.FindByUsername("tester")
	require.NoError(t, err)
	require.NotNil(t, user)
	assert.Equal(t, "/avatars/tester.png", user.AvatarURL)
}
