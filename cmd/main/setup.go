package main

import (
	"time"

	"trend-observer/src/config"
	"trend-observer/src/helpers"
	"trend-observer/src/interfaces"
	"trend-observer/src/logger"
	"trend-observer/src/storage"
)

// -----------------------------------------------------------------------------

// setupDatabase returns nil when storage is disabled. Initialization is
// retried since Postgres may still be starting.
func setupDatabase(cfg *config.Config, appLogger *logger.Logger) interfaces.IDatabase {
	dbLogger := appLogger.Named("Storage")

	db, err := storage.NewDatabase(cfg.MConfig, dbLogger)
	if err != nil {
		appLogger.Critical("Failed to init db: %v", err)
	}
	if db == nil {
		return nil
	}

	err = helpers.RetryWithBackoff(dbLogger, "database initialize", 3, 500*time.Millisecond, db.Initialize)
	if err != nil {
		appLogger.Critical("Failed to initialize db: %v", helpers.NewDatabaseError("initialize", err))
	}
	return db
}
