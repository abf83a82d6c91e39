package storage

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"trend-observer/src/logger"
	"trend-observer/src/models"

	_ "github.com/lib/pq"
)

// -----------------------------------------------------------------------------

type PostgresDB struct {
	exporter
	Config *models.MConfig
	Schema string
}

// -----------------------------------------------------------------------------

// NewPostgresDB uses the configured schema, or the executable name when none is set.
func NewPostgresDB(cfg *models.MConfig, log *logger.Logger) (*PostgresDB, error) {
	schema := cfg.Storage.Schema
	if schema == "" {
		exe, err := os.Executable()
		if err != nil {
			return nil, fmt.Errorf("failed to get executable name: %w", err)
		}
		schema = strings.TrimSuffix(filepath.Base(exe), filepath.Ext(exe))
	}

	return &PostgresDB{
		Config: cfg,
		Schema: schema,
		exporter: exporter{
			Logger: log,
			dialect: dialect{
				float:       "DOUBLE PRECISION",
				integer:     "BIGINT",
				table:       func(name string) string { return fmt.Sprintf(`"%s"."%s"`, schema, name) },
				placeholder: func(n int) string { return fmt.Sprintf("$%d", n) },
			},
		},
	}, nil
}

// -----------------------------------------------------------------------------

func (d *PostgresDB) Initialize() error {
	db, err := sql.Open("postgres", d.Config.Storage.DBConnectionString)
	if err != nil {
		return err
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return err
	}

	d.DB = db

	if _, err := d.DB.Exec(fmt.Sprintf(`CREATE SCHEMA IF NOT EXISTS "%s"`, d.Schema)); err != nil {
		return fmt.Errorf("failed to create schema %s: %w", d.Schema, err)
	}

	if err := d.recreateTables(); err != nil {
		return err
	}

	d.Logger.Info("PostgresDB initialized successfully (Schema: %s)", d.Schema)
	return nil
}
