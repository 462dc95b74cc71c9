package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"math/rand/v2"
	"os"
	"time"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"

	"github.com/cdirx/decision-tool/internal/decision"
	"github.com/cdirx/decision-tool/internal/domain"
	"github.com/cdirx/decision-tool/internal/ingest"
	"github.com/cdirx/decision-tool/internal/service"
	"github.com/cdirx/decision-tool/internal/sheets"
)

func newDBURLFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:     "db-url",
		Usage:    "Database connection string",
		Required: true,
		EnvVars:  []string{"DATABASE_URL"},
	}
}

func main() {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("warning: could not load .env file: %v", err)
	}

	app := &cli.App{
		Name:  "seed",
		Usage: "Seed the database with profit data and sample decision logs",
		Commands: []*cli.Command{
			{
				Name:  "profits",
				Usage: "Load a profit workbook CSV into the profit table",
				Flags: []cli.Flag{
					newDBURLFlag(),
					&cli.StringFlag{
						Name:     "file",
						Usage:    "Path to the profit CSV (item, third party, gross profit columns)",
						Required: true,
					},
				},
				Action: seedProfits,
			},
			{
				Name:  "logs",
				Usage: "Generate sample decision logs against the stored profit table",
				Flags: []cli.Flag{
					newDBURLFlag(),
					&cli.IntFlag{
						Name:  "count",
						Usage: "Number of sample logs to generate",
						Value: 50,
					},
					&cli.IntFlag{
						Name:  "days",
						Usage: "Spread logs over the last N days",
						Value: 30,
					},
				},
				Action: seedLogs,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func openDB(c *cli.Context) (*sql.DB, error) {
	db, err := sql.Open("pgx", c.String("db-url"))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return db, nil
}

func seedProfits(c *cli.Context) error {
	db, err := openDB(c)
	if err != nil {
		return err
	}
	defer db.Close()

	file, err := os.Open(c.String("file"))
	if err != nil {
		return fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	ds, err := ingest.CSV(file)
	if err != nil {
		return fmt.Errorf("failed to parse profit CSV: %w", err)
	}

	rows, err := sheets.Normalize(ds)
	if err != nil {
		return err
	}

	ctx := context.Background()
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM profit_rows"); err != nil {
		return fmt.Errorf("failed to clear profit table: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO profit_rows (item, third_party, gross_profit)
		VALUES ($1, $2, $3)
		ON CONFLICT (item, third_party) DO NOTHING
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, row := range rows {
		if _, err := stmt.ExecContext(ctx, row.Item, row.ThirdParty, row.GrossProfit); err != nil {
			return fmt.Errorf("failed to insert profit row (%s, %s): %w", row.Item, row.ThirdParty, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	log.Printf("Seeded %d profit rows", len(rows))
	return nil
}

var sampleGuests = []struct {
	name, lastName, firstInitial string
}{
	{"Avery Chen", "Smith", "J"},
	{"Jordan Blake", "Nguyen", "M"},
	{"Sam Rivera", "Patel", "A"},
	{"Casey Morgan", "Johnson", "R"},
	{"Taylor Brooks", "Garcia", "L"},
}

func seedLogs(c *cli.Context) error {
	db, err := openDB(c)
	if err != nil {
		return err
	}
	defer db.Close()

	ctx := context.Background()
	table, err := loadProfitTable(ctx, db)
	if err != nil {
		return err
	}
	if len(table) == 0 {
		return fmt.Errorf("profit table is empty; run 'seed profits' first")
	}

	byPayer := make(map[string][]string)
	for _, row := range table {
		byPayer[row.ThirdParty] = append(byPayer[row.ThirdParty], row.Item)
	}
	payers := make([]string, 0, len(byPayer))
	for payer := range byPayer {
		payers = append(payers, payer)
	}

	count := c.Int("count")
	days := c.Int("days")

	stmt, err := db.PrepareContext(ctx, `
		INSERT INTO decision_logs (
			id, guest_name, last_name, dob, first_initial, mrn, insurance,
			drugs, total_profit, decision, txn_id, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for i := 0; i < count; i++ {
		payer := payers[rand.IntN(len(payers))]
		drugs := pickDrugs(byPayer[payer])

		result := decision.ComputeFromTable(table, domain.Selection{
			ThirdParty: payer,
			Items:      drugs,
		})

		createdAt := time.Now().UTC().Add(-time.Duration(rand.IntN(days*24)) * time.Hour)
		guest := sampleGuests[rand.IntN(len(sampleGuests))]

		if _, err := stmt.ExecContext(ctx,
			uuid.NewString(),
			guest.name,
			guest.lastName,
			fmt.Sprintf("19%02d-%02d-%02d", rand.IntN(40)+50, rand.IntN(12)+1, rand.IntN(28)+1),
			guest.firstInitial,
			fmt.Sprintf("MRN%06d", rand.IntN(1000000)),
			payer,
			service.FormatDrugProfits(result.DrugProfits),
			result.TotalProfit,
			string(result.Decision),
			decision.NewTransactionID(createdAt),
			createdAt,
		); err != nil {
			return fmt.Errorf("failed to insert sample log: %w", err)
		}
	}

	log.Printf("Generated %d sample decision logs", count)
	return nil
}

func loadProfitTable(ctx context.Context, db *sql.DB) ([]domain.ProfitRow, error) {
	rows, err := db.QueryContext(ctx, "SELECT item, third_party, gross_profit FROM profit_rows")
	if err != nil {
		return nil, fmt.Errorf("failed to load profit table: %w", err)
	}
	defer rows.Close()

	var table []domain.ProfitRow
	for rows.Next() {
		var row domain.ProfitRow
		if err := rows.Scan(&row.Item, &row.ThirdParty, &row.GrossProfit); err != nil {
			return nil, fmt.Errorf("failed to scan profit row: %w", err)
		}
		table = append(table, row)
	}
	return table, rows.Err()
}

func pickDrugs(available []string) []string {
	n := rand.IntN(3) + 1
	if n > len(available) {
		n = len(available)
	}
	picked := make([]string, 0, n)
	seen := make(map[string]bool)
	for len(picked) < n {
		drug := available[rand.IntN(len(available))]
		if seen[drug] {
			continue
		}
		seen[drug] = true
		picked = append(picked, drug)
	}
	return picked
}
