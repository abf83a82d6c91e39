package datasource

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"

	"trend-observer/src/helpers"
	"trend-observer/src/logger"
	"trend-observer/src/models"
)

// CSVSource loads a delimited text file with a header row.
type CSVSource struct {
	Config models.MDatasetConfig
	Path   string
	Logger *logger.Logger
}

// -----------------------------------------------------------------------------

func NewCSVSource(cfg models.MDatasetConfig, path string, log *logger.Logger) *CSVSource {
	return &CSVSource{Config: cfg, Path: path, Logger: log}
}

// -----------------------------------------------------------------------------

func (s *CSVSource) Name() string {
	return s.Config.Name
}

// -----------------------------------------------------------------------------

func (s *CSVSource) Load() (*models.MTable, error) {
	f, err := os.Open(s.Path)
	if err != nil {
		return nil, helpers.NewLoadError(fmt.Sprintf("failed to open '%s'", s.Path), err)
	}
	defer f.Close()

	table, err := s.LoadFromReader(f)
	if err != nil {
		return nil, err
	}
	if s.Logger != nil {
		s.Logger.Info("Loaded %s: %d rows x %d columns from %s", s.Config.Name, table.Len(), len(table.Columns)+1+len(table.ExtraDateColumns), s.Path)
	}
	return table, nil
}

// -----------------------------------------------------------------------------

// LoadFromReader parses CSV content from any reader.
func (s *CSVSource) LoadFromReader(r io.Reader) (*models.MTable, error) {
	reader := csv.NewReader(r)
	reader.Comma = []rune(s.Config.Delimiter)[0]
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, helpers.NewLoadError(fmt.Sprintf("dataset '%s': malformed delimited file", s.Config.Name), err)
	}
	if len(records) == 0 {
		return nil, helpers.NewLoadError(fmt.Sprintf("dataset '%s': file is empty", s.Config.Name), nil)
	}

	return buildTable(s.Config, records[0], records[1:], 2)
}
