package storage

import (
	"database/sql"
	"fmt"

	"trend-observer/src/logger"
	"trend-observer/src/models"

	_ "modernc.org/sqlite"
)

// -----------------------------------------------------------------------------

type SQLiteDB struct {
	exporter
	Config *models.MConfig
}

// -----------------------------------------------------------------------------

func NewSQLiteDB(cfg *models.MConfig, log *logger.Logger) (*SQLiteDB, error) {
	if cfg.Storage.DBPath == "" {
		return nil, fmt.Errorf("sqlite storage needs db_path")
	}
	return &SQLiteDB{
		Config: cfg,
		exporter: exporter{
			Logger: log,
			dialect: dialect{
				float:       "REAL",
				integer:     "INTEGER",
				table:       func(name string) string { return name },
				placeholder: func(int) string { return "?" },
			},
		},
	}, nil
}

// -----------------------------------------------------------------------------

func (d *SQLiteDB) Initialize() error {
	db, err := sql.Open("sqlite", d.Config.Storage.DBPath)
	if err != nil {
		return err
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return err
	}

	// a single connection keeps ":memory:" databases shared across calls
	db.SetMaxOpenConns(1)
	d.DB = db

	if _, err := db.Exec("PRAGMA journal_mode = WAL;"); err != nil {
		d.Logger.Warning("Failed to set WAL mode: %v", err)
	}
	if _, err := db.Exec("PRAGMA synchronous = NORMAL;"); err != nil {
		d.Logger.Warning("Failed to set synchronous mode: %v", err)
	}

	if err := d.recreateTables(); err != nil {
		return err
	}

	d.Logger.Info("SQLiteDB initialized (%s)", d.Config.Storage.DBPath)
	return nil
}
