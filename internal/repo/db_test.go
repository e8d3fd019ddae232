package repo

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	sqlite "github.com/glebarez/sqlite" // pure-Go SQLite
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/tbourn/go-sos-backend/internal/domain"
)

// newTestDB opens a fresh on-disk SQLite database with the full schema.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), fmt.Sprintf("repo_test_%d.db", time.Now().UnixNano()))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	db.Exec("PRAGMA foreign_keys=ON;")

	// Release the file handle before TempDir cleanup (Windows needs this).
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	if err := AutoMigrate(db); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	return db
}

// seedContact inserts a contact directly.
func seedContact(t *testing.T, db *gorm.DB, name, phone string, sms, wa bool) domain.Contact {
	t.Helper()
	c := domain.Contact{
		ID:          uuid.NewString(),
		Name:        name,
		Phone:       phone,
		ViaSMS:      sms,
		ViaWhatsApp: wa,
		CreatedAt:   time.Now().UTC(),
	}
	if err := db.Create(&c).Error; err != nil {
		t.Fatalf("seed contact: %v", err)
	}
	return c
}

func TestAutoMigrate_SeedsSettingsRow(t *testing.T) {
	db := newTestDB(t)

	name, err := GetOwnerName(context.Background(), db)
	if err != nil {
		t.Fatalf("GetOwnerName: %v", err)
	}
	if name != "" {
		t.Fatalf("fresh owner name = %q, want empty", name)
	}

	// Running migrations again must not duplicate the settings row.
	if err := AutoMigrate(db); err != nil {
		t.Fatalf("second automigrate: %v", err)
	}
	var count int64
	if err := db.Model(&domain.Setting{}).Count(&count).Error; err != nil {
		t.Fatalf("count settings: %v", err)
	}
	if count != 1 {
		t.Fatalf("settings rows = %d, want 1", count)
	}
}

func TestOwnerName_RoundTrip(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	if err := SetOwnerName(ctx, db, "Ana"); err != nil {
		t.Fatalf("SetOwnerName: %v", err)
	}
	got, err := GetOwnerName(ctx, db)
	if err != nil {
		t.Fatalf("GetOwnerName: %v", err)
	}
	if got != "Ana" {
		t.Fatalf("owner name = %q, want Ana", got)
	}
}
