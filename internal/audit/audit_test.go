package audit

import (
	"fmt"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/diewo77/tailorledger/internal/models"
)

func setupAuditTestDB(t *testing.T) *gorm.DB {
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.AutoMigrate(&models.AuditEntry{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func seedEntryAt(t *testing.T, db *gorm.DB, msg string, created time.Time) {
	e := models.AuditEntry{ActorID: 1, Action: models.ActionEdit, EntityType: "Order", EntityID: 1, Message: msg}
	if err := db.Create(&e).Error; err != nil {
		t.Fatalf("seed entry: %v", err)
	}
	// bypass autoCreateTime to backdate
	if err := db.Model(&models.AuditEntry{}).Where("id = ?", e.ID).Update("created_at", created).Error; err != nil {
		t.Fatalf("backdate entry: %v", err)
	}
}

func TestListRecentPrunesExpiredEntries(t *testing.T) {
	db := setupAuditTestDB(t)
	rec := NewRecorder(db)
	now := time.Now()

	seedEntryAt(t, db, "too old", now.AddDate(0, 0, -(RetentionDays+1)))
	seedEntryAt(t, db, "just inside", now.AddDate(0, 0, -(RetentionDays-1)))
	seedEntryAt(t, db, "fresh", now)

	entries, err := rec.ListRecent(0)
	if err != nil {
		t.Fatalf("ListRecent: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("entries = %d, want 2", len(entries))
	}
	for _, e := range entries {
		if e.Message == "too old" {
			t.Fatalf("expired entry survived pruning")
		}
	}

	// the prune is persistent, not just filtered from the response
	var remaining int64
	db.Model(&models.AuditEntry{}).Count(&remaining)
	if remaining != 2 {
		t.Fatalf("stored rows = %d, want 2", remaining)
	}
}

func TestListRecentNewestFirst(t *testing.T) {
	db := setupAuditTestDB(t)
	rec := NewRecorder(db)
	now := time.Now()

	seedEntryAt(t, db, "oldest", now.Add(-2*time.Hour))
	seedEntryAt(t, db, "middle", now.Add(-time.Hour))
	seedEntryAt(t, db, "newest", now)

	entries, err := rec.ListRecent(2)
	if err != nil {
		t.Fatalf("ListRecent: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("entries = %d, want 2 (limit applied)", len(entries))
	}
	if entries[0].Message != "newest" || entries[1].Message != "middle" {
		t.Fatalf("order wrong: %q then %q", entries[0].Message, entries[1].Message)
	}
}

func TestRecordUsesCallerTransaction(t *testing.T) {
	db := setupAuditTestDB(t)
	rec := NewRecorder(db)

	// rolled-back transaction leaves no entry behind
	_ = db.Transaction(func(tx *gorm.DB) error {
		if err := rec.Record(tx, 1, models.ActionCreate, "Order", 1, "inside rollback"); err != nil {
			t.Fatalf("Record: %v", err)
		}
		return fmt.Errorf("force rollback")
	})
	var count int64
	db.Model(&models.AuditEntry{}).Count(&count)
	if count != 0 {
		t.Fatalf("entry survived rollback")
	}
}
