package datasource

import (
	"fmt"

	"trend-observer/src/helpers"
	"trend-observer/src/interfaces"
	"trend-observer/src/logger"
	"trend-observer/src/models"
)

// -----------------------------------------------------------------------------

// NewDataSource picks the reader matching the dataset format.
func NewDataSource(cfg models.MDatasetConfig, path string, log *logger.Logger) (interfaces.IDataSource, error) {
	switch cfg.Format {
	case "", "csv":
		if cfg.Delimiter == "" {
			cfg.Delimiter = ","
		}
		return NewCSVSource(cfg, path, log), nil
	case "xlsx":
		return NewXLSXSource(cfg, path, log), nil
	default:
		return nil, helpers.NewConfigurationError(fmt.Sprintf("dataset '%s': unsupported format '%s'", cfg.Name, cfg.Format), nil)
	}
}
