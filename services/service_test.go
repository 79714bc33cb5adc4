package services

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/cppla/sharedrop/models"
	"github.com/cppla/sharedrop/repository"
	"github.com/cppla/sharedrop/storage"
)

const testRetentionMinutes = 3 * 24 * 60

// testEnv wires the services against a real sqlite database and a real
// content store in a temp directory, the same collaborators production uses.
type testEnv struct {
	users   *repository.UserRepository
	files   *repository.FileRepository
	content *storage.ContentStore
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}, &models.FileRecord{}))

	content, err := storage.NewContentStore(filepath.Join(t.TempDir(), "uploads"))
	require.NoError(t, err)

	return &testEnv{
		users:   repository.NewUserRepository(db),
		files:   repository.NewFileRepository(db),
		content: content,
	}
}

func (e *testEnv) addUser(t *testing.T, username string) {
	t.Helper()
	require.NoError(t, e.users.Create(&models.User{Username: username, PasswordHash: "x"}))
}

// writeSource creates a file to hand to the upload pipeline, standing in for
// the spooled multipart part.
func (e *testEnv) writeSource(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "spool")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}
