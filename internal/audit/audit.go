// Package audit keeps the append-only trail of mutations. Entries are
// written inside the mutating operation's transaction so the audit record
// and the change it describes commit or roll back together.
package audit

import (
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/diewo77/tailorledger/internal/models"
)

// RetentionDays bounds how long entries are kept. Pruning is amortized into
// the read path rather than run on a schedule.
const RetentionDays = 180

type Recorder struct {
	db *gorm.DB
}

func NewRecorder(db *gorm.DB) *Recorder { return &Recorder{db: db} }

// Record appends one entry using tx, which must be the caller's open
// transaction: a store fault here fails the parent mutation too.
func (r *Recorder) Record(tx *gorm.DB, actorID uint, action, entityType string, entityID uint, message string) error {
	entry := models.AuditEntry{
		ActorID:    actorID,
		Action:     action,
		EntityType: entityType,
		EntityID:   entityID,
		Message:    message,
	}
	if err := tx.Create(&entry).Error; err != nil {
		return fmt.Errorf("audit record: %w", err)
	}
	return nil
}

// ListRecent prunes entries older than the retention window, then returns
// the remainder newest-first. limit <= 0 means no cap. The prune and the
// read share one transaction so concurrent readers never observe a partial
// cleanup.
func (r *Recorder) ListRecent(limit int) ([]models.AuditEntry, error) {
	var entries []models.AuditEntry
	err := r.db.Transaction(func(tx *gorm.DB) error {
		cutoff := time.Now().AddDate(0, 0, -RetentionDays)
		if err := tx.Where("created_at < ?", cutoff).Delete(&models.AuditEntry{}).Error; err != nil {
			return err
		}
		q := tx.Order("created_at DESC, id DESC")
		if limit > 0 {
			q = q.Limit(limit)
		}
		return q.Find(&entries).Error
	})
	if err != nil {
		return nil, fmt.Errorf("audit list: %w", err)
	}
	return entries, nil
}
