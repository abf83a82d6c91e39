package datasource

import (
	"fmt"

	"trend-observer/src/helpers"
	"trend-observer/src/logger"
	"trend-observer/src/models"

	"github.com/xuri/excelize/v2"
)

// XLSXSource loads one sheet of a spreadsheet; the first row is the header.
type XLSXSource struct {
	Config models.MDatasetConfig
	Path   string
	Logger *logger.Logger
}

// -----------------------------------------------------------------------------

func NewXLSXSource(cfg models.MDatasetConfig, path string, log *logger.Logger) *XLSXSource {
	return &XLSXSource{Config: cfg, Path: path, Logger: log}
}

// -----------------------------------------------------------------------------

func (s *XLSXSource) Name() string {
	return s.Config.Name
}

// -----------------------------------------------------------------------------

func (s *XLSXSource) Load() (*models.MTable, error) {
	f, err := excelize.OpenFile(s.Path)
	if err != nil {
		return nil, helpers.NewLoadError(fmt.Sprintf("failed to open '%s'", s.Path), err)
	}
	defer f.Close()

	sheet := s.Config.Sheet
	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, helpers.NewLoadError(fmt.Sprintf("'%s' has no sheets", s.Path), nil)
		}
		sheet = sheets[0]
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, helpers.NewLoadError(fmt.Sprintf("dataset '%s': cannot read sheet '%s'", s.Config.Name, sheet), err)
	}
	if len(rows) == 0 {
		return nil, helpers.NewLoadError(fmt.Sprintf("dataset '%s': sheet '%s' is empty", s.Config.Name, sheet), nil)
	}

	table, err := buildTable(s.Config, rows[0], rows[1:], 2)
	if err != nil {
		return nil, err
	}
	if s.Logger != nil {
		s.Logger.Info("Loaded %s: %d rows from sheet '%s' of %s", s.Config.Name, table.Len(), sheet, s.Path)
	}
	return table, nil
}
