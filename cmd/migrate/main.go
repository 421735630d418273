package main

import (
	"context"
	"os"
	"time"

	mongoMigration "suitespot/internal/migrations/mongo"
	"suitespot/pkg/config"
)

const JobName = "mongo-migration"

func main() {
	if err := run(); err != nil {
		os.Exit(1)
	}
}

func run() error {
	ctx, cancel := context.WithTimeout(context.Background(), 120*time.Second)
	defer cancel()

	cfg := config.Load(JobName)
	cfg.SetMongo()
	defer cfg.GracefulShutdown()

	cfg.Log.Info("Starting Mongo migration job")
	if err := mongoMigration.RunMigration(ctx, cfg.Client.Mongo, cfg.MongoDatabaseName, cfg.Log); err != nil {
		cfg.Log.Error("Migration failed", "error", err)
		return err
	}
	cfg.Log.Info("Migration completed successfully")
	return nil
}
