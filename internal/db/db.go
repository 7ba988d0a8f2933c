package db

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	migrate "github.com/golang-migrate/migrate/v4"
	// Blank imports register the migrate database drivers and file source.
	_ "github.com/golang-migrate/migrate/v4/database/mysql"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/carhome/carhome/internal/models"
)

// ConnectAndMigrate opens the configured database and brings the schema up
// to date. The dealership runs on MySQL; postgres is selectable via
// DB_DRIVER for deployments that prefer it.
func ConnectAndMigrate(driver, dsn string) (*gorm.DB, error) {
	dsn = NormalizeDSN(driver, dsn)
	if dsn == "" {
		return nil, fmt.Errorf("DATABASE_DSN is empty, check the environment configuration")
	}
	var dialector gorm.Dialector
	switch driver {
	case "postgres":
		dialector = postgres.Open(dsn)
	case "mysql", "":
		dialector = mysql.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", driver)
	}

	logLevel := logger.Silent
	if os.Getenv("DB_DEBUG") == "1" {
		logLevel = logger.Info
	}
	cfg := &gorm.Config{Logger: logger.Default.LogMode(logLevel)}
	var db *gorm.DB
	var err error
	for i := 0; i < 10; i++ {
		db, err = gorm.Open(dialector, cfg)
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

	// MIGRATIONS=1 runs the sql migrations via golang-migrate; otherwise the
	// AutoMigrate fallback keeps dev setups zero-config.
	if v := strings.ToLower(os.Getenv("MIGRATIONS")); v == "1" || v == "true" || v == "yes" {
		if err := runSQLMigrations(driver, dsn); err != nil {
			return nil, fmt.Errorf("sql migrations failed: %w", err)
		}
	} else {
		if err := AutoMigrate(db); err != nil {
			return nil, err
		}
	}

	for _, table := range []string{"users", "brands", "models", "cars", "test_drives"} {
		if !db.Migrator().HasTable(table) {
			return nil, errors.New("missing table after migration: " + table)
		}
	}
	// Seeding only when explicitly requested (e.g. development) via DB_SEED=1|true
	if v := strings.ToLower(os.Getenv("DB_SEED")); v == "1" || v == "true" || v == "yes" {
		seed(db)
	}
	return db, nil
}

// AutoMigrate creates or updates the full schema in dependency order.
func AutoMigrate(db *gorm.DB) error {
	toMigrate := []interface{}{
		&models.User{}, &models.Brand{}, &models.BodyType{}, &models.EngineType{},
		&models.DriveType{}, &models.CarModel{}, &models.Color{}, &models.Car{}, &models.TestDrive{},
	}
	for _, m := range toMigrate {
		if err := db.AutoMigrate(m); err != nil {
			return fmt.Errorf("automigrate %T: %w", m, err)
		}
	}
	return nil
}

// seed inserts baseline reference data for the type tables. Idempotent.
func seed(db *gorm.DB) {
	bodyTypes := []models.BodyType{
		{Name: "sedan"}, {Name: "hatchback"}, {Name: "suv"}, {Name: "coupe"}, {Name: "wagon"},
	}
	for _, bt := range bodyTypes {
		var existing models.BodyType
		if err := db.Where("name = ?", bt.Name).First(&existing).Error; err == gorm.ErrRecordNotFound {
			db.Create(&bt)
		}
	}
	engineTypes := []models.EngineType{
		{Name: "petrol"}, {Name: "diesel"}, {Name: "hybrid"}, {Name: "electric"},
	}
	for _, et := range engineTypes {
		var existing models.EngineType
		if err := db.Where("name = ?", et.Name).First(&existing).Error; err == gorm.ErrRecordNotFound {
			db.Create(&et)
		}
	}
	driveTypes := []models.DriveType{
		{Name: "front"}, {Name: "rear"}, {Name: "all"},
	}
	for _, dt := range driveTypes {
		var existing models.DriveType
		if err := db.Where("name = ?", dt.Name).First(&existing).Error; err == gorm.ErrRecordNotFound {
			db.Create(&dt)
		}
	}
}

// runSQLMigrations executes migrations in ./migrations using the
// golang-migrate file source.
func runSQLMigrations(driver, dsn string) error {
	url := dsn
	if driver == "mysql" && !strings.HasPrefix(strings.ToLower(dsn), "mysql://") {
		url = "mysql://" + dsn
	}
	m, err := migrate.New("file://migrations", url)
	if err != nil {
		return err
	}
	if err = m.Up(); err != nil && err != migrate.ErrNoChange {
		return err
	}
	return nil
}
