package models

import "time"

// Work statuses as stored. Legacy rows may still carry "Pending",
// "Processing" or "Ready"; reporting folds those into the canonical labels.
const (
	WorkWorking   = "Working"
	WorkReady     = "Ready to Deliver"
	WorkDelivered = "Delivered"
)

// Payment statuses derived by the ledger. Never set directly by callers.
const (
	PaymentPending = "Pending"
	PaymentPartial = "Partial"
	PaymentPaid    = "Paid"
)

// OpeningBalanceItem is the first-item sentinel marking synthetic orders
// that carry a customer's pre-existing balance. Delivery views skip them.
const OpeningBalanceItem = "Previous Balance Due"

// LineItem is one ordered garment line on an order.
type LineItem struct {
	Name string `json:"name"`
	Qty  int    `json:"qty"`
}

// Order is one tailoring job for one customer. TotalAmt, Advance, Balance
// and PaymentStatus form the ledger tuple: Balance == round(TotalAmt-Advance, 2)
// and PaymentStatus is derived from the three amounts on every mutation.
type Order struct {
	ID         uint       `gorm:"primaryKey"`
	CustomerID uint       `gorm:"not null;index"`
	Customer   Customer   `gorm:"foreignKey:CustomerID"`
	Items      []LineItem `gorm:"serializer:json;not null"`

	StartDate    *time.Time
	DeliveryDate *time.Time `gorm:"index"`

	WorkStatus    string `gorm:"not null;default:'Working'"`
	PaymentStatus string `gorm:"not null;default:'Pending'"`

	TotalAmt float64 // currency, 2 decimals
	Advance  float64
	Balance  float64 // negative when overpaid

	PaymentMode string // Cash, UPI, Card
	Notes       string
	CreatedBy   uint
	CreatedAt   time.Time `gorm:"index"`
}

// IsOpeningBalance reports whether the order is a synthetic opening-balance row.
func (o *Order) IsOpeningBalance() bool {
	return len(o.Items) > 0 && o.Items[0].Name == OpeningBalanceItem
}
