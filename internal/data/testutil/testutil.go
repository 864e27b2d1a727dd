// Package testutil bootstraps databases for data-layer tests. Tests run
// against TEST_POSTGRES_DSN when set and fall back to in-memory sqlite so the
// suite works without infrastructure.
package testutil

import (
	"fmt"
	"os"
	"strings"
	"testing"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/splitcpg/splitcpg-backend/internal/platform/logger"
	"github.com/splitcpg/splitcpg-backend/internal/types"
)

func NewLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("development")
	if err != nil {
		t.Fatalf("init logger: %v", err)
	}
	return log
}

// OpenDB returns a migrated database scoped to the calling test.
func OpenDB(t *testing.T) *gorm.DB {
	t.Helper()

	var (
		db  *gorm.DB
		err error
	)
	if dsn := os.Getenv("TEST_POSTGRES_DSN"); dsn != "" {
		db, err = gorm.Open(postgres.Open(dsn), &gorm.Config{
			DisableForeignKeyConstraintWhenMigrating: true,
		})
	} else {
		name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
		db, err = gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", name)), &gorm.Config{})
		if err == nil {
			// sqlite cannot take concurrent writers; one connection keeps
			// parallel test writes queued instead of failing on file locks
			if sqlDB, dbErr := db.DB(); dbErr == nil {
				sqlDB.SetMaxOpenConns(1)
			}
		}
	}
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}

	if err := db.AutoMigrate(&types.Company{}, &types.Split{}, &types.Event{}); err != nil {
		t.Fatalf("migrate test db: %v", err)
	}
	t.Cleanup(func() {
		db.Exec("DELETE FROM split")
		db.Exec("DELETE FROM company")
		db.Exec("DELETE FROM event")
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}
