package models

import "time"

// Audit actions
const (
	ActionCreate = "Create"
	ActionEdit   = "Edit"
	ActionDelete = "Delete"
)

// AuditEntry is one immutable record of a mutation: who changed what entity,
// when, with a human-readable message. Rows are appended and pruned by
// retention age, never updated.
type AuditEntry struct {
	ID         uint      `gorm:"primaryKey"`
	ActorID    uint      // who made the change
	Action     string    `gorm:"not null"` // Create, Edit, Delete
	EntityType string    `gorm:"not null"` // Order, Customer, Category, ...
	EntityID   uint      `gorm:"not null"`
	Message    string
	CreatedAt  time.Time `gorm:"index"`
}
