package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/cdirx/decision-tool/internal/domain"
)

type profitRepository struct {
	db *DB
}

// NewProfitRepository returns the Postgres-backed profit table store.
func NewProfitRepository(db *DB) *profitRepository {
	return &profitRepository{db: db}
}

// ReplaceAll swaps the whole profit table in one transaction. Duplicate
// (item, third_party) source rows keep the first occurrence, matching the
// decision engine's ambiguous-match policy.
func (r *profitRepository) ReplaceAll(ctx context.Context, rows []domain.ProfitRow) error {
	deduped := dedupeProfitRows(rows)

	return r.db.WithTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, "DELETE FROM profit_rows"); err != nil {
			return fmt.Errorf("clear profit rows: %w", err)
		}

		stmt, err := tx.PrepareContext(ctx,
			"INSERT INTO profit_rows (item, third_party, gross_profit) VALUES ($1, $2, $3)")
		if err != nil {
			return fmt.Errorf("prepare profit insert: %w", err)
		}
		defer stmt.Close()

		for _, row := range deduped {
			if _, err := stmt.ExecContext(ctx, row.Item, row.ThirdParty, row.GrossProfit); err != nil {
				return fmt.Errorf("insert profit row (%s, %s): %w", row.Item, row.ThirdParty, err)
			}
		}
		return nil
	})
}

func dedupeProfitRows(rows []domain.ProfitRow) []domain.ProfitRow {
	type key struct{ item, thirdParty string }
	seen := make(map[key]struct{}, len(rows))
	out := make([]domain.ProfitRow, 0, len(rows))
	for _, row := range rows {
		k := key{strings.ToLower(row.Item), strings.ToLower(row.ThirdParty)}
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, row)
	}
	return out
}

func (r *profitRepository) All(ctx context.Context) ([]domain.ProfitRow, error) {
	rows := make([]domain.ProfitRow, 0)
	err := r.db.SelectContext(ctx, &rows,
		"SELECT item, third_party, gross_profit FROM profit_rows ORDER BY item, third_party")
	if err != nil {
		return nil, fmt.Errorf("load profit rows: %w", err)
	}
	return rows, nil
}

func (r *profitRepository) Insurances(ctx context.Context) ([]string, error) {
	insurances := make([]string, 0)
	err := r.db.SelectContext(ctx, &insurances,
		"SELECT DISTINCT third_party FROM profit_rows WHERE third_party <> '' ORDER BY third_party")
	if err != nil {
		return nil, fmt.Errorf("list insurances: %w", err)
	}
	return insurances, nil
}

func (r *profitRepository) DrugsFor(ctx context.Context, insurance string) ([]string, error) {
	drugs := make([]string, 0)
	err := r.db.SelectContext(ctx, &drugs,
		`SELECT DISTINCT item FROM profit_rows
		 WHERE item <> '' AND LOWER(third_party) = LOWER($1)
		 ORDER BY item`, insurance)
	if err != nil {
		return nil, fmt.Errorf("list drugs for %s: %w", insurance, err)
	}
	return drugs, nil
}
