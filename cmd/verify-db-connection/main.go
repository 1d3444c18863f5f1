package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"crosschain-hub/internal/config"
	"crosschain-hub/internal/db"
	"crosschain-hub/internal/models"
)

// addressColumns hold 0x-prefixed 32-byte hex and must fit 66 characters
var addressColumns = map[string][]string{
	"hub_configs":        {"address", "authority", "admin"},
	"bridge_requests":    {"address", "user_address", "asset", "recipient"},
	"bridge_completions": {"address", "bridge_hash", "recipient", "asset", "payer"},
	"portfolios":         {"address", "owner"},
	"pacts":              {"address", "creator", "payout_recipient", "vault_address"},
	"pact_contributions": {"pact_address", "contributor"},
	"ledger_accounts":    {"address", "owner"},
	"ledger_credits":     {"address"},
}

func main() {
	configPath := flag.String("config", "", "path to config file")
	flag.Parse()

	fmt.Println("🔍 Verifying database connection and hub schema...")
	fmt.Println("============================================================")

	if err := config.LoadConfig(*configPath); err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	database, err := db.Open(config.AppConfig.Database.Driver, config.AppConfig.Database.DSN)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	sqlDB, err := database.DB()
	if err != nil {
		log.Fatalf("Failed to get database connection: %v", err)
	}
	defer sqlDB.Close()

	if err := sqlDB.Ping(); err != nil {
		log.Fatalf("Failed to reach database: %v", err)
	}
	fmt.Printf("📋 Connected (driver: %s)\n", database.Dialector.Name())

	missing := 0
	migrator := database.Migrator()
	for _, model := range []interface{}{
		&models.HubConfig{},
		&models.BridgeRequest{},
		&models.BridgeCompletion{},
		&models.Portfolio{},
		&models.Pact{},
		&models.PactContribution{},
		&models.LedgerAccount{},
		&models.LedgerCredit{},
		&models.Notification{},
	} {
		stmt := database.Model(model).Statement
		if err := stmt.Parse(model); err != nil {
			log.Fatalf("Failed to parse model %T: %v", model, err)
		}
		table := stmt.Schema.Table
		if !migrator.HasTable(model) {
			fmt.Printf("❌ table %s does not exist\n", table)
			missing++
			continue
		}
		fmt.Printf("✅ table %s\n", table)
	}

	if database.Dialector.Name() != "postgres" {
		finish(missing)
		return
	}

	narrow := 0
	for table, columns := range addressColumns {
		for _, column := range columns {
			var size *int64
			err := database.Raw(`
				SELECT character_maximum_length
				FROM information_schema.columns
				WHERE table_schema = current_schema()
				AND table_name = ?
				AND column_name = ?`, table, column).Row().Scan(&size)
			if err != nil {
				fmt.Printf("⚠️ %s.%s: %v\n", table, column, err)
				narrow++
				continue
			}
			if size != nil && *size < 66 {
				fmt.Printf("❌ %s.%s is VARCHAR(%d), need VARCHAR(66)\n", table, column, *size)
				narrow++
			}
		}
	}
	if narrow == 0 {
		fmt.Println("✅ Address columns hold 66 characters")
	}
	finish(missing + narrow)
}

func finish(problems int) {
	fmt.Println("============================================================")
	if problems > 0 {
		fmt.Printf("❌ %d problem(s) found, run hubd once to migrate\n", problems)
		os.Exit(1)
	}
	fmt.Println("✅ Database ready")
}
