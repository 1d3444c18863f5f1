package main

import (
	"database/sql"
	"flag"
	"fmt"
	"log"
	"os"

	"crosschain-hub/internal/config"

	"github.com/lib/pq"
)

// check is one read-only invariant query. The query returns offending rows
// as (record, detail) pairs; no rows means the invariant holds.
type check struct {
	name  string
	query string
}

var checks = []check{
	{
		name: "hub totals match bridge requests",
		query: `
			SELECT h.address, format('bridges=%s/%s volume=%s/%s fees=%s/%s',
				h.total_bridges, r.n, h.total_volume, r.volume, h.total_fees_accrued, r.fees)
			FROM ` + pq.QuoteIdentifier("hub_configs") + ` h
			CROSS JOIN (
				SELECT COUNT(*)::numeric AS n,
					COALESCE(SUM(amount::numeric + fee_amount::numeric), 0) AS volume,
					COALESCE(SUM(fee_amount::numeric), 0) AS fees
				FROM ` + pq.QuoteIdentifier("bridge_requests") + `
			) r
			WHERE h.total_bridges::numeric <> r.n
				OR h.total_volume::numeric <> r.volume
				OR h.total_fees_accrued::numeric <> r.fees`,
	},
	{
		name: "collected fees never exceed accrued fees",
		query: `
			SELECT address, format('collected=%s accrued=%s', total_fees_collected, total_fees_accrued)
			FROM ` + pq.QuoteIdentifier("hub_configs") + `
			WHERE total_fees_collected::numeric > total_fees_accrued::numeric`,
	},
	{
		name: "bridge completions are unique per hash",
		query: `
			SELECT bridge_hash, format('completions=%s', COUNT(*))
			FROM ` + pq.QuoteIdentifier("bridge_completions") + `
			GROUP BY bridge_hash HAVING COUNT(*) > 1`,
	},
	{
		name: "portfolio totals equal the per-chain sum",
		query: `
			SELECT owner, format('total=%s sum=%s', total_value,
				native_balance::numeric + ethereum_balance::numeric + polygon_balance::numeric)
			FROM ` + pq.QuoteIdentifier("portfolios") + `
			WHERE total_value::numeric <> native_balance::numeric + ethereum_balance::numeric + polygon_balance::numeric`,
	},
	{
		name: "open pact vaults hold exactly the contributed value",
		query: `
			SELECT p.address, format('vault=%s contributed=%s', COALESCE(a.balance, '0'), COALESCE(c.total, 0))
			FROM ` + pq.QuoteIdentifier("pacts") + ` p
			LEFT JOIN ` + pq.QuoteIdentifier("ledger_accounts") + ` a ON a.address = p.vault_address
			LEFT JOIN (
				SELECT pact_address, SUM(amount::numeric) AS total
				FROM ` + pq.QuoteIdentifier("pact_contributions") + `
				GROUP BY pact_address
			) c ON c.pact_address = p.address
			WHERE p.status = 'open'
				AND COALESCE(a.balance, '0')::numeric <> COALESCE(c.total, 0)`,
	},
	{
		name: "closed pacts have an empty, closed vault",
		query: `
			SELECT p.address, format('status=%s vault_balance=%s vault_closed=%s', p.status, a.balance, a.closed)
			FROM ` + pq.QuoteIdentifier("pacts") + ` p
			JOIN ` + pq.QuoteIdentifier("ledger_accounts") + ` a ON a.address = p.vault_address
			WHERE p.status <> 'open' AND (a.balance::numeric <> 0 OR NOT a.closed)`,
	},
	{
		name: "refunded pacts report nothing raised",
		query: `
			SELECT address, format('total_raised=%s', total_raised)
			FROM ` + pq.QuoteIdentifier("pacts") + `
			WHERE status = 'refunded' AND total_raised::numeric <> 0`,
	},
}

func main() {
	configPath := flag.String("config", "", "path to config file")
	flag.Parse()

	fmt.Println("🔍 Auditing hub ledger invariants...")

	dsn := os.Getenv("DATABASE_DSN")
	if dsn == "" {
		if err := config.LoadConfig(*configPath); err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}
		dsn = config.AppConfig.Database.DSN
	}

	sqlDB, err := sql.Open("postgres", dsn)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer sqlDB.Close()
	if err := sqlDB.Ping(); err != nil {
		log.Fatalf("Failed to connect database: %v", err)
	}

	failed := 0
	for _, c := range checks {
		violations, err := run(sqlDB, c)
		if err != nil {
			log.Printf("❌ %s: query failed: %v", c.name, err)
			failed++
			continue
		}
		if len(violations) == 0 {
			fmt.Printf("✅ %s\n", c.name)
			continue
		}
		failed++
		fmt.Printf("❌ %s (%d violations)\n", c.name, len(violations))
		for _, v := range violations {
			fmt.Printf("   - %s\n", v)
		}
	}

	if failed > 0 {
		fmt.Printf("\n%d of %d checks failed\n", failed, len(checks))
		os.Exit(1)
	}
	fmt.Printf("\nAll %d checks passed\n", len(checks))
}

func run(sqlDB *sql.DB, c check) ([]string, error) {
	rows, err := sqlDB.Query(c.query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var record, detail string
		if err := rows.Scan(&record, &detail); err != nil {
			return nil, err
		}
		out = append(out, record+" "+detail)
	}
	return out, rows.Err()
}
