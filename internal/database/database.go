// Package database opens the scheduler's Postgres connection and holds the
// maintenance operations that work across every table.
package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"

	"ms-scheduler/internal/config"
	"ms-scheduler/internal/logger"
	"ms-scheduler/internal/models"
)

const (
	maxConnectAttempts = 5
	connectRetryDelay  = 2 * time.Second
)

// Connect opens the pool and pings it, retrying while the server starts up.
func Connect(ctx context.Context, cfg config.DatabaseConfig, log *logger.Logger) (*bun.DB, error) {
	var sqldb *sql.DB
	var err error

	for i := 0; i < maxConnectAttempts; i++ {
		log.Info("DATABASE", fmt.Sprintf("Attempting to connect to PostgreSQL (attempt %d/%d)", i+1, maxConnectAttempts))
		sqldb, err = sql.Open("postgres", cfg.DSN)
		if err == nil {
			if err = sqldb.PingContext(ctx); err == nil {
				break
			}
			sqldb.Close()
		}
		log.Error("DATABASE", fmt.Sprintf("Failed to connect to PostgreSQL: %v", err))

		if i < maxConnectAttempts-1 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(connectRetryDelay):
			}
		}
	}
	if err != nil {
		return nil, fmt.Errorf("postgres unreachable after %d attempts: %w", maxConnectAttempts, err)
	}

	sqldb.SetMaxOpenConns(cfg.MaxOpenConns)
	sqldb.SetMaxIdleConns(cfg.MaxIdleConns)
	sqldb.SetConnMaxLifetime(cfg.MaxLifetime)

	log.Info("DATABASE", "PostgreSQL connection successful")
	return bun.NewDB(sqldb, pgdialect.New()), nil
}

// ResetCounts reports how many rows Reset removed from each table.
type ResetCounts struct {
	Profiles     int
	Events       int
	Participants int
	Logs         int
}

// Reset deletes every row of the scheduler tables in one transaction,
// children first.
func Reset(ctx context.Context, db *bun.DB) (ResetCounts, error) {
	var counts ResetCounts
	err := db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		steps := []struct {
			model interface{}
			n     *int
		}{
			{(*models.EventLog)(nil), &counts.Logs},
			{(*models.EventProfile)(nil), &counts.Participants},
			{(*models.Event)(nil), &counts.Events},
			{(*models.Profile)(nil), &counts.Profiles},
		}
		for _, step := range steps {
			res, err := tx.NewDelete().Model(step.model).Where("1 = 1").Exec(ctx)
			if err != nil {
				return fmt.Errorf("reset: %w", err)
			}
			n, err := res.RowsAffected()
			if err != nil {
				return err
			}
			*step.n = int(n)
		}
		return nil
	})
	return counts, err
}
