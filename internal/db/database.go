package db

import (
	"fmt"
	"log"
	"time"

	"crosschain-hub/internal/config"
	"crosschain-hub/internal/models"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var DB *gorm.DB

// InitDB opens the configured database and migrates the schema.
func InitDB() {
	var err error

	if config.AppConfig == nil || config.AppConfig.Database.DSN == "" {
		log.Fatalf("Database DSN is required")
	}

	driver := config.AppConfig.Database.Driver
	log.Printf("Connecting to database (driver: %s)", driver)

	DB, err = Open(driver, config.AppConfig.Database.DSN)
	if err != nil {
		log.Fatalf("Failed to connect database: %v", err)
	}

	sqlDB, err := DB.DB()
	if err != nil {
		log.Fatalf("Failed to get database handle: %v", err)
	}

	log.Println("✅ Database connected successfully")

	log.Println("🚀 Starting database schema migration with GORM AutoMigrate...")
	if err := Migrate(DB); err != nil {
		log.Fatalf("AutoMigrate failed: %v", err)
	}

	if DB.Dialector.Name() == "postgres" {
		if err := RunDataMigrations(sqlDB); err != nil {
			log.Fatalf("Data migrations failed: %v", err)
		}
	}

	log.Println("✅ Database schema migrated successfully")
}

// Open connects to postgres, or to sqlite for local runs and tests.
// SQLite allows one writer, so its pool is capped at a single connection.
func Open(driver, dsn string) (*gorm.DB, error) {
	cfg := &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true,
		SkipDefaultTransaction:                   true,
		Logger:                                   logger.Default.LogMode(logger.Silent),
	}

	var dialector gorm.Dialector
	switch driver {
	case "", "postgres":
		cfg.DisableAutomaticPing = true
		cfg.PrepareStmt = true
		dialector = postgres.Open(dsn)
	case "sqlite":
		dialector = sqlite.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}

	database, err := gorm.Open(dialector, cfg)
	if err != nil {
		return nil, err
	}
	sqlDB, err := database.DB()
	if err != nil {
		return nil, err
	}
	if driver == "sqlite" {
		sqlDB.SetMaxOpenConns(1)
	} else {
		sqlDB.SetMaxOpenConns(50)
		sqlDB.SetMaxIdleConns(10)
		sqlDB.SetConnMaxLifetime(30 * time.Minute)
	}
	return database, nil
}

// Migrate creates or updates every hub table.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.HubConfig{},
		&models.BridgeRequest{},
		&models.BridgeCompletion{},
		&models.Portfolio{},
		&models.Pact{},
		&models.PactContribution{},
		&models.LedgerAccount{},
		&models.LedgerCredit{},
		&models.Notification{},
	); err != nil {
		return fmt.Errorf("failed to migrate hub schema: %w", err)
	}
	return nil
}
