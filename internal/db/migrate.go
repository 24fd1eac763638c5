package db

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"
	"time"

	migrate "github.com/golang-migrate/migrate/v4"
	// Blank imports register the postgres driver and file source for golang-migrate.
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/diewo77/tailorledger/internal/models"
)

// Connect opens the store for the given DSN, choosing the driver from its
// shape: postgres URLs and key=value lists go to postgres (with a retry
// loop, containers come up slowly), anything else is a sqlite path.
func Connect(rawDSN string) (*gorm.DB, error) {
	dsn := NormalizeDSN(rawDSN)
	if dsn == "" {
		return nil, fmt.Errorf("DATABASE_DSN is empty, check environment configuration")
	}
	logLevel := logger.Silent
	if os.Getenv("DB_DEBUG") == "1" {
		logLevel = logger.Info
	}
	cfg := &gorm.Config{Logger: logger.Default.LogMode(logLevel)}

	if !IsPostgres(dsn) {
		return gorm.Open(sqlite.Open(dsn), cfg)
	}

	var db *gorm.DB
	var err error
	for i := 0; i < 10; i++ {
		db, err = gorm.Open(postgres.Open(dsn), cfg)
		if err == nil {
			break
		}
		fmt.Println("Retrying DB connection...", err)
		time.Sleep(2 * time.Second)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to connect database after retries: %w", err)
	}
	if pingErr := db.Exec("SELECT 1").Error; pingErr != nil {
		return nil, fmt.Errorf("db ping failed: %w", pingErr)
	}
	masked := dsn
	if strings.Contains(masked, "password=") {
		re := regexp.MustCompile(`(password=)([^\s]+)`)
		masked = re.ReplaceAllString(masked, `${1}***`)
	}
	fmt.Println("[DB] Using DSN:", masked)
	return db, nil
}

// ConnectAndMigrate opens the store and brings the schema up to date.
// MIGRATIONS=1 runs SQL migrations via golang-migrate (postgres only);
// otherwise AutoMigrate keeps dev databases current.
func ConnectAndMigrate(rawDSN string) (*gorm.DB, error) {
	db, err := Connect(rawDSN)
	if err != nil {
		return nil, err
	}
	dsn := NormalizeDSN(rawDSN)

	if v := strings.ToLower(os.Getenv("MIGRATIONS")); (v == "1" || v == "true" || v == "yes") && IsPostgres(dsn) {
		if err := runSQLMigrations(dsn); err != nil {
			return nil, fmt.Errorf("sql migrations failed: %w", err)
		}
	} else {
		if err := AutoMigrate(db); err != nil {
			return nil, err
		}
	}

	for _, table := range []string{"customers", "orders", "audit_entries"} {
		if !db.Migrator().HasTable(table) {
			return nil, errors.New("missing table after migration: " + table)
		}
	}
	if v := strings.ToLower(os.Getenv("DB_SEED")); v == "1" || v == "true" || v == "yes" {
		Seed(db)
	}
	return db, nil
}

// AutoMigrate creates or updates every table this module owns.
func AutoMigrate(db *gorm.DB) error {
	modelsToMigrate := []interface{}{
		&models.Customer{}, &models.Category{}, &models.Measurement{},
		&models.Order{}, &models.AuditEntry{}, &models.Reminder{}, &models.ShopProfile{},
	}
	for _, m := range modelsToMigrate {
		if migErr := db.AutoMigrate(m); migErr != nil {
			return fmt.Errorf("automigrate %T: %w", m, migErr)
		}
	}
	return nil
}

// Seed installs the default garment categories when none exist.
func Seed(db *gorm.DB) {
	var count int64
	if err := db.Model(&models.Category{}).Count(&count).Error; err != nil || count > 0 {
		return
	}
	categories := []models.Category{
		{Name: "Shirt", Gender: "male", Fields: []string{"Length", "Chest", "Shoulder", "Sleeve", "Collar", "Cuff"}},
		{Name: "Pant", Gender: "male", Fields: []string{"Length", "Waist", "Seat", "Thigh", "Knee", "Bottom"}},
		{Name: "Kurta", Gender: "male", Fields: []string{"Length", "Chest", "Shoulder", "Sleeve"}},
		{Name: "Blouse", Gender: "female", Fields: []string{"Length", "Chest", "Waist", "Shoulder", "Sleeve", "Front Depth", "Back Depth"}},
		{Name: "Kurti", Gender: "female", Fields: []string{"Length", "Chest", "Waist", "Hip", "Shoulder"}},
		{Name: "Salwar", Gender: "female", Fields: []string{"Length", "Waist", "Hip", "Bottom"}},
	}
	for _, c := range categories {
		db.Create(&c)
	}
}

// runSQLMigrations executes migrations in ./migrations using the
// golang-migrate file source.
func runSQLMigrations(dsn string) error {
	m, err := migrate.New("file://migrations", dsn)
	if err != nil {
		return err
	}
	if err = m.Up(); err != nil && err != migrate.ErrNoChange {
		return err
	}
	return nil
}
