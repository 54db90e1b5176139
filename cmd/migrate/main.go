package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"

	"ms-scheduler/internal/config"
	"ms-scheduler/internal/database"
	"ms-scheduler/internal/database/migrations"
	"ms-scheduler/internal/logger"
)

func main() {
	down := flag.Bool("down", false, "roll back every migration")
	reset := flag.Bool("reset", false, "delete all profiles, events and logs")
	flag.Parse()

	cfg, _ := config.Load()
	logger := logger.NewLogger(cfg.LogDir)
	defer logger.Close()

	ctx := context.Background()

	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(cfg.Database.DSN)))
	defer sqldb.Close()
	if err := sqldb.PingContext(ctx); err != nil {
		logger.Fatal("DATABASE", fmt.Sprintf("Failed to connect to Postgres: %v", err))
	}
	bunDB := bun.NewDB(sqldb, pgdialect.New())

	if *reset {
		counts, err := database.Reset(ctx, bunDB)
		if err != nil {
			logger.Fatal("MIGRATE", fmt.Sprintf("Reset failed: %v", err))
		}
		logger.LogDatabase("DELETE", "profiles", fmt.Sprintf("%d rows", counts.Profiles))
		logger.LogDatabase("DELETE", "events", fmt.Sprintf("%d rows (%d participant rows)", counts.Events, counts.Participants))
		logger.LogDatabase("DELETE", "event_logs", fmt.Sprintf("%d rows", counts.Logs))
		return
	}

	runner := migrations.NewRunner(bunDB, migrations.MigrateOptions{MigrationsDir: cfg.Database.MigrationsDir}, logger)
	defer runner.Close()

	if *down {
		if err := runner.MigrateDown(); err != nil {
			logger.Fatal("MIGRATE", err.Error())
		}
		logger.Info("MIGRATE", "All migrations rolled back")
		return
	}

	if err := runner.RunMigrations(); err != nil {
		logger.Fatal("MIGRATE", err.Error())
	}
	logger.Info("MIGRATE", "Migrations applied")
}
