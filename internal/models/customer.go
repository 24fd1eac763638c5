package models

import "time"

// Customer entity
type Customer struct {
	ID        uint   `gorm:"primaryKey"`
	Name      string `gorm:"not null;index"`
	Mobile    string `gorm:"uniqueIndex;not null"`
	AltMobile string
	Email     string
	Address   string
	City      string
	Area      string
	WhatsApp  bool
	Gender    string // male, female
	Notes     string
	StylePref string
	Birthday  *time.Time

	CreatedDate time.Time `gorm:"autoCreateTime;index"`
	LastVisit   time.Time `gorm:"index"`

	Orders       []Order       `gorm:"foreignKey:CustomerID"`
	Measurements []Measurement `gorm:"foreignKey:CustomerID"`
}

// TotalPending is the derived sum of the loaded orders' balances. It is not
// stored; callers that need it over the full dataset should aggregate in SQL.
func (c *Customer) TotalPending() float64 {
	var sum float64
	for _, o := range c.Orders {
		sum += o.Balance
	}
	return sum
}
