package storage

import (
	"fmt"

	"trend-observer/src/interfaces"
	"trend-observer/src/logger"
	"trend-observer/src/models"
)

// NewDatabase returns the configured exporter, or nil when storage is disabled.
func NewDatabase(cfg *models.MConfig, log *logger.Logger) (interfaces.IDatabase, error) {
	switch cfg.Storage.DBType {
	case "", "none":
		return nil, nil
	case "sqlite":
		return NewSQLiteDB(cfg, log)
	case "postgres":
		return NewPostgresDB(cfg, log)
	default:
		return nil, fmt.Errorf("unsupported db_type '%s'", cfg.Storage.DBType)
	}
}
