package db

import (
	"fmt"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/diewo77/tailorledger/internal/models"
)

func setupSeedTestDB(t *testing.T) *gorm.DB {
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := AutoMigrate(conn); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return conn
}

func TestSeedInstallsDefaultCategories(t *testing.T) {
	conn := setupSeedTestDB(t)
	Seed(conn)

	var cats []models.Category
	if err := conn.Order("id ASC").Find(&cats).Error; err != nil {
		t.Fatalf("list categories: %v", err)
	}
	if len(cats) != 6 {
		t.Fatalf("categories = %d, want 6", len(cats))
	}
	byName := map[string]models.Category{}
	for _, c := range cats {
		byName[c.Name] = c
	}
	if byName["Shirt"].Gender != "male" || byName["Blouse"].Gender != "female" {
		t.Fatalf("gender wrong: %+v", byName)
	}
	if len(byName["Pant"].Fields) != 6 {
		t.Fatalf("Pant fields = %v", byName["Pant"].Fields)
	}

	// idempotent: a second run adds nothing
	Seed(conn)
	var count int64
	conn.Model(&models.Category{}).Count(&count)
	if count != 6 {
		t.Fatalf("seed not idempotent: %d categories", count)
	}
}

func TestSeedSkipsWhenCategoriesExist(t *testing.T) {
	conn := setupSeedTestDB(t)
	custom := models.Category{Name: "Sherwani", Gender: "male", IsCustom: true, Fields: []string{"Length"}}
	if err := conn.Create(&custom).Error; err != nil {
		t.Fatalf("seed custom: %v", err)
	}

	Seed(conn)
	var count int64
	conn.Model(&models.Category{}).Count(&count)
	if count != 1 {
		t.Fatalf("seed overwrote existing data: %d categories", count)
	}
}
