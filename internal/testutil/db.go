package testutil

import (
	"fmt"
	"io"
	"testing"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"golang-admin-command-runner/internal/repository"
	"golang-admin-command-runner/pkg/database"
)

// NewTestDB opens a private in-memory sqlite database with the schema applied.
func NewTestDB(t testing.TB) *gorm.DB {
	t.Helper()

	db, err := database.NewDB(database.Config{
		Driver:       database.DriverSQLite,
		Path:         fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=on", uuid.NewString()),
		MaxOpenConns: 1,
		LogLevel:     "Silent",
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	if err := repository.AutoMigrate(db.DB); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}
	return db.DB
}

func NewTestLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}
