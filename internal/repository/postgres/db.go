package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/semaphore"

	"github.com/cdirx/decision-tool/internal/config"
)

type DB struct {
	*sqlx.DB
	sem *semaphore.Weighted
}

var (
	dbInstance *DB
	once       sync.Once
)

// NewDB creates the shared database connection pool and ensures the
// schema exists.
func NewDB(cfg *config.DatabaseConfig) (*DB, error) {
	var err error
	once.Do(func() {
		connStr := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
			cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.DBName, cfg.SSLMode)

		var db *sqlx.DB
		db, err = sqlx.Connect("postgres", connStr)
		if err != nil {
			return
		}

		db.SetMaxOpenConns(25)
		db.SetMaxIdleConns(5)
		db.SetConnMaxLifetime(5 * time.Minute)

		dbInstance = &DB{
			DB:  db,
			sem: semaphore.NewWeighted(10),
		}

		err = dbInstance.ensureSchema(context.Background())
	})

	return dbInstance, err
}

// WithTx executes fn within a transaction, capped by the write semaphore.
func (db *DB) WithTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	if err := db.sem.Acquire(ctx, 1); err != nil {
		return fmt.Errorf("could not acquire semaphore: %w", err)
	}
	defer db.sem.Release(1)

	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("could not begin transaction: %w", err)
	}

	if err := fn(tx.Tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			log.Error().Err(rbErr).Msg("could not rollback transaction")
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("could not commit transaction: %w", err)
	}

	return nil
}

func (db *DB) ensureSchema(ctx context.Context) error {
	schema := []string{
		`CREATE TABLE IF NOT EXISTS decision_logs (
			id UUID PRIMARY KEY,
			guest_name TEXT NOT NULL,
			last_name TEXT NOT NULL,
			dob TEXT NOT NULL DEFAULT '',
			first_initial TEXT NOT NULL DEFAULT '',
			mrn TEXT NOT NULL DEFAULT '',
			insurance TEXT NOT NULL DEFAULT '',
			drugs TEXT NOT NULL DEFAULT '',
			total_profit NUMERIC(12,2) NOT NULL DEFAULT 0,
			decision TEXT NOT NULL,
			txn_id TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE INDEX IF NOT EXISTS idx_decision_logs_created_at ON decision_logs (created_at DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_decision_logs_guest_name ON decision_logs (guest_name)`,
		`CREATE TABLE IF NOT EXISTS profit_rows (
			item TEXT NOT NULL,
			third_party TEXT NOT NULL,
			gross_profit TEXT NOT NULL DEFAULT '',
			PRIMARY KEY (item, third_party)
		)`,
	}

	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}
