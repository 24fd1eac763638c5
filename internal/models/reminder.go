package models

import "time"

// Reminder rows exist for the customer-delete cascade and future scheduling
// surfaces. Dashboard urgency is recomputed from orders directly, not from
// these rows.
type Reminder struct {
	ID         uint `gorm:"primaryKey"`
	CustomerID *uint
	OrderID    *uint
	Type       string // measurement, delivery, payment
	DueDate    *time.Time
	Message    string
	Status     string `gorm:"default:'Pending'"` // Pending, Sent, Dismissed
	CreatedAt  time.Time
}
