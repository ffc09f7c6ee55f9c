package main

// Run database migrations:
//   go run ./cmd/migrate
//   go run ./cmd/migrate -status

import (
	"context"
	"flag"
	"os"

	"resume-builder/internal/shared/config"
	"resume-builder/internal/shared/storage/db"
	"resume-builder/internal/shared/telemetry"
)

func main() {
	status := flag.Bool("status", false, "print the current schema version and exit")
	flag.Parse()

	cfg := config.Load()
	telemetry.Init(cfg.LogLevel, cfg.Env)
	defer telemetry.Sync()
	ctx := context.Background()

	opts := db.OptionsFromEnv(db.DefaultMigrateOptions())
	sqlDB, err := db.Connect(ctx, cfg.DatabaseURL, opts)
	if err != nil {
		telemetry.Error("migrate.connect_failed", map[string]any{"err": err})
		os.Exit(1)
	}
	defer sqlDB.Close()

	if !*status {
		if err := db.RunMigrations(ctx, sqlDB); err != nil {
			telemetry.Error("migrate.failed", map[string]any{"err": err})
			os.Exit(1)
		}
	}
	version, err := db.MigrationStatus(ctx, sqlDB)
	if err != nil {
		telemetry.Error("migrate.status_failed", map[string]any{"err": err})
		os.Exit(1)
	}
	telemetry.Info("migrate.version", map[string]any{"version": version})
}
