package models

import "time"

// Category of garment plus the measurement labels it requires.
type Category struct {
	ID       uint     `gorm:"primaryKey"`
	Name     string   `gorm:"not null"`
	Gender   string   `gorm:"not null"` // male, female
	IsCustom bool     `gorm:"default:false"`
	Fields   []string `gorm:"serializer:json"`
}

// MeasurementValue is one labeled measurement reading.
type MeasurementValue struct {
	Field string `json:"field"`
	Value string `json:"value"`
}

// Measurement is a customer's measurement sheet for one category.
type Measurement struct {
	ID         uint               `gorm:"primaryKey"`
	CustomerID uint               `gorm:"not null;index"`
	Customer   Customer           `gorm:"foreignKey:CustomerID"`
	CategoryID uint               `gorm:"not null;index"`
	Category   Category           `gorm:"foreignKey:CategoryID"`
	Date       time.Time          `gorm:"autoCreateTime;index"`
	Values     []MeasurementValue `gorm:"serializer:json;not null"`
	Remarks    string
	IsActive   bool `gorm:"default:true"`
}
