package db

import (
	"database/sql"
	"fmt"
	"log"
)

// DataMigration represents a postgres-only migration that AutoMigrate cannot express
type DataMigration struct {
	Version     string
	Description string
	Up          func(*sql.DB) error
	Down        func(*sql.DB) error
}

// GetDataMigrations return all data migrations
func GetDataMigrations() []DataMigration {
	return []DataMigration{
		{
			Version:     "data_001",
			Description: "Partial index on unpublished notifications",
			Up:          createPendingNotificationIndex,
			Down:        dropPendingNotificationIndex,
		},
		{
			Version:     "data_002",
			Description: "Decimal-only check on amount columns",
			Up:          addAmountChecks,
			Down:        dropAmountChecks,
		},
	}
}

var amountColumns = []struct {
	table  string
	column string
}{
	{"hub_configs", "total_bridges"},
	{"hub_configs", "total_volume"},
	{"hub_configs", "total_fees_accrued"},
	{"hub_configs", "total_fees_collected"},
	{"bridge_requests", "amount"},
	{"bridge_requests", "fee_amount"},
	{"bridge_completions", "amount"},
	{"pacts", "target_amount"},
	{"pacts", "total_raised"},
	{"ledger_accounts", "balance"},
	{"ledger_credits", "amount"},
}

func createPendingNotificationIndex(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_hub_notifications_pending
		ON hub_notifications (created_at)
		WHERE published_at IS NULL
	`)
	return err
}

func dropPendingNotificationIndex(db *sql.DB) error {
	_, err := db.Exec(`DROP INDEX IF EXISTS idx_hub_notifications_pending`)
	return err
}

func amountCheckName(table, column string) string {
	return fmt.Sprintf("chk_%s_%s_decimal", table, column)
}

// addAmountChecks keeps amount columns to plain unsigned decimals so audits can cast them to numeric.
func addAmountChecks(db *sql.DB) error {
	for _, col := range amountColumns {
		name := amountCheckName(col.table, col.column)
		query := fmt.Sprintf(`ALTER TABLE %s DROP CONSTRAINT IF EXISTS %s`, col.table, name)
		if _, err := db.Exec(query); err != nil {
			return fmt.Errorf("failed to drop %s: %w", name, err)
		}
		query = fmt.Sprintf(`ALTER TABLE %s ADD CONSTRAINT %s CHECK (%s ~ '^[0-9]{1,20}$')`, col.table, name, col.column)
		if _, err := db.Exec(query); err != nil {
			return fmt.Errorf("failed to add %s: %w", name, err)
		}
		log.Printf("✅ Added %s", name)
	}
	return nil
}

func dropAmountChecks(db *sql.DB) error {
	for _, col := range amountColumns {
		query := fmt.Sprintf(`ALTER TABLE %s DROP CONSTRAINT IF EXISTS %s`, col.table, amountCheckName(col.table, col.column))
		if _, err := db.Exec(query); err != nil {
			return err
		}
	}
	return nil
}

// RunDataMigrations applies pending data migrations and records them in schema_migrations_log
func RunDataMigrations(db *sql.DB) error {
	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations_log (
			id SERIAL PRIMARY KEY,
			version VARCHAR(50) NOT NULL UNIQUE,
			description TEXT,
			executed_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			rollback_at TIMESTAMP,
			status VARCHAR(20) DEFAULT 'completed'
		)
	`); err != nil {
		return fmt.Errorf("failed to create schema_migrations_log: %w", err)
	}

	for _, migration := range GetDataMigrations() {
		var count int
		err := db.QueryRow(
			"SELECT COUNT(*) FROM schema_migrations_log WHERE version = $1",
			migration.Version,
		).Scan(&count)
		if err != nil {
			return err
		}

		if count > 0 {
			log.Printf("📋 Data migration %s already applied", migration.Version)
			continue
		}

		log.Printf("🚀 Running data migration: %s", migration.Description)
		if err := migration.Up(db); err != nil {
			return err
		}

		_, err = db.Exec(
			"INSERT INTO schema_migrations_log (version, description) VALUES ($1, $2)",
			migration.Version, migration.Description,
		)
		if err != nil {
			return err
		}

		log.Printf("✅ Data migration %s completed", migration.Version)
	}

	return nil
}
