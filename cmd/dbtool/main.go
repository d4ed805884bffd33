package main

import (
	"context"
	"delivery-route-console/internal/adapters/repositories"
	"delivery-route-console/internal/config"
	"delivery-route-console/internal/platform/db"
	"delivery-route-console/internal/platform/logging"
	"log/slog"
	"os"
)

// dbtool initializes the schema and loads demo data into the configured database.
func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("load config", "err", err)
		os.Exit(1)
	}
	logging.Setup(cfg.Log.Level, cfg.Log.Format, os.Stderr)

	conn, dialect, err := db.Open(cfg.Database.Driver, cfg.Database.DSN)
	if err != nil {
		slog.Error("open database", "err", err)
		os.Exit(1)
	}
	defer conn.Close()

	seedPath := config.Get("SEED_PATH", "data/seeds/planner.json")
	if err := initAndSeed(context.Background(), repositories.NewSQLPlanningRepository(conn, dialect), seedPath); err != nil {
		slog.Error("dbtool failed", "err", err)
		os.Exit(1)
	}
}

func initAndSeed(ctx context.Context, repo *repositories.SQLPlanningRepository, seedPath string) error {
	slog.Info("initializing database schema", "driver", repo.Dialect.DriverName())
	if err := repositories.InitSchema(repo.DB, repo.Dialect); err != nil {
		return err
	}
	slog.Info("schema ready")

	slog.Info("seeding database", "path", seedPath)
	if err := repositories.SeedFromJSON(ctx, repo, seedPath); err != nil {
		return err
	}
	slog.Info("seeding complete")

	return nil
}
