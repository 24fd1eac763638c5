package handlers

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/diewo77/tailorledger/internal/audit"
	"github.com/diewo77/tailorledger/internal/auth"
	"github.com/diewo77/tailorledger/internal/ledger"
	"github.com/diewo77/tailorledger/internal/models"
)

func setupHandlerTestDB(t *testing.T) *gorm.DB {
	// unique in-memory DB per test name to avoid leakage via shared cache
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.AutoMigrate(
		&models.Customer{}, &models.Category{}, &models.Measurement{},
		&models.Order{}, &models.AuditEntry{}, &models.Reminder{}, &models.ShopProfile{},
	); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func newHandlerEngine(db *gorm.DB) *ledger.Engine {
	return ledger.New(db, audit.NewRecorder(db))
}

// sessionCookie mints a valid session cookie for the given actor.
func sessionCookie(actorID uint) *http.Cookie {
	rec := httptest.NewRecorder()
	auth.CreateSession(rec, actorID)
	return rec.Result().Cookies()[0]
}

func seedHandlerCustomer(t *testing.T, db *gorm.DB, name, mobile string) models.Customer {
	c := models.Customer{Name: name, Mobile: mobile, LastVisit: time.Now()}
	if err := db.Create(&c).Error; err != nil {
		t.Fatalf("seed customer: %v", err)
	}
	return c
}

func seedHandlerOrder(t *testing.T, db *gorm.DB, customerID uint, total, balance float64) models.Order {
	o := models.Order{
		CustomerID:    customerID,
		Items:         []models.LineItem{{Name: "Shirt", Qty: 1}},
		WorkStatus:    models.WorkWorking,
		PaymentStatus: models.PaymentPending,
		TotalAmt:      total,
		Advance:       total - balance,
		Balance:       balance,
	}
	if err := db.Create(&o).Error; err != nil {
		t.Fatalf("seed order: %v", err)
	}
	return o
}
