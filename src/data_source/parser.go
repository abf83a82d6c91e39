package datasource

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"trend-observer/src/helpers"
	"trend-observer/src/models"
	"trend-observer/src/utils"
)

// missingTokens are cell contents treated as a missing observation.
var missingTokens = map[string]bool{
	"":     true,
	"NA":   true,
	"N/A":  true,
	"NaN":  true,
	"nan":  true,
	"null": true,
	"NULL": true,
}

// -----------------------------------------------------------------------------

// IsMissingToken reports whether a raw cell denotes a missing value.
func IsMissingToken(s string) bool {
	return missingTokens[strings.TrimSpace(s)]
}

// -----------------------------------------------------------------------------

// DetectLayout returns the first known layout that parses s.
func DetectLayout(s string) (string, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range utils.DateLayouts {
		if _, err := time.Parse(layout, s); err == nil {
			return layout, true
		}
	}
	return "", false
}

// -----------------------------------------------------------------------------

// ParseDate parses s with layout as a UTC calendar date.
func ParseDate(s, layout string) (time.Time, error) {
	return time.Parse(layout, strings.TrimSpace(s))
}

// -----------------------------------------------------------------------------

// FormatDate renders t with the layout it was parsed with.
func FormatDate(t time.Time, layout string) string {
	return t.Format(layout)
}

// -----------------------------------------------------------------------------

type dateColumn struct {
	name   string
	index  int
	layout string
}

// -----------------------------------------------------------------------------

// buildTable converts a header and raw rows into a validated table.
// rowOffset is the 1-based file line of rows[0], used in error messages.
func buildTable(cfg models.MDatasetConfig, header []string, rows [][]string, rowOffset int) (*models.MTable, error) {
	if len(cfg.DateColumns) == 0 {
		return nil, helpers.NewSchemaError("dataset '%s': no date column designated", cfg.Name)
	}

	positions := make(map[string]int, len(header))
	for i, h := range header {
		h = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		header[i] = h
		if _, dup := positions[h]; dup {
			return nil, helpers.NewSchemaError("dataset '%s': duplicate column '%s'", cfg.Name, h)
		}
		positions[h] = i
	}

	// Designated date columns
	dates := make([]dateColumn, 0, len(cfg.DateColumns))
	isDate := make(map[string]bool)
	for _, name := range cfg.DateColumns {
		idx, ok := positions[name]
		if !ok {
			return nil, helpers.NewSchemaError("dataset '%s': date column '%s' not found in header %v", cfg.Name, name, header)
		}
		layout, err := resolveLayout(cfg, name, idx, rows)
		if err != nil {
			return nil, err
		}
		dates = append(dates, dateColumn{name: name, index: idx, layout: layout})
		isDate[name] = true
	}

	// Numeric columns
	var numeric []string
	if len(cfg.Columns) > 0 {
		numeric = cfg.Columns
	} else {
		for _, h := range header {
			if !isDate[h] {
				numeric = append(numeric, h)
			}
		}
	}
	numIdx := make([]int, len(numeric))
	for i, name := range numeric {
		idx, ok := positions[name]
		if !ok {
			return nil, helpers.NewSchemaError("dataset '%s': column '%s' not found in header %v", cfg.Name, name, header)
		}
		if isDate[name] {
			return nil, helpers.NewSchemaError("dataset '%s': column '%s' is both a date and a value column", cfg.Name, name)
		}
		numIdx[i] = idx
	}

	table := &models.MTable{
		Name:       cfg.Name,
		DateColumn: dates[0].name,
		DateLayout: dates[0].layout,
		Columns:    append([]string(nil), numeric...),
		Records:    make([]models.MRecord, 0, len(rows)),
	}
	for _, d := range dates[1:] {
		table.ExtraDateColumns = append(table.ExtraDateColumns, d.name)
	}

	for r, row := range rows {
		line := rowOffset + r
		if isBlankRow(row) {
			continue
		}

		rec := models.MRecord{Values: make([]models.MValue, len(numIdx))}
		for i, d := range dates {
			parsed, err := parseDateCell(cell(row, d.index), d.layout)
			if err != nil {
				return nil, helpers.NewLoadError(
					fmt.Sprintf("dataset '%s' line %d: unparseable date in column '%s'", cfg.Name, line, d.name), err)
			}
			if i == 0 {
				rec.Date = parsed
			} else {
				rec.ExtraDates = append(rec.ExtraDates, parsed)
			}
		}

		for i, idx := range numIdx {
			raw := cell(row, idx)
			if IsMissingToken(raw) {
				rec.Values[i] = models.Missing()
				continue
			}
			f, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
			if err != nil {
				return nil, helpers.NewSchemaError("dataset '%s' line %d: column '%s' value %q is not numeric",
					cfg.Name, line, numeric[i], raw)
			}
			rec.Values[i] = models.Num(f)
		}

		table.Records = append(table.Records, rec)
	}

	return table, nil
}

// -----------------------------------------------------------------------------

// resolveLayout uses the configured layout, or the first known layout that
// parses every non-empty value of the column. When none fits them all, the
// first value's layout is used so the offending row is reported on parse.
func resolveLayout(cfg models.MDatasetConfig, name string, idx int, rows [][]string) (string, error) {
	if cfg.DateFormat != "" {
		return cfg.DateFormat, nil
	}

	var values []string
	for _, row := range rows {
		if raw := cell(row, idx); !IsMissingToken(raw) {
			values = append(values, raw)
		}
	}
	if len(values) == 0 {
		return utils.DefaultDateLayout, nil
	}

	for _, layout := range utils.DateLayouts {
		if parsesAll(values, layout) {
			return layout, nil
		}
	}

	layout, ok := DetectLayout(values[0])
	if !ok {
		return "", helpers.NewLoadError(
			fmt.Sprintf("dataset '%s': cannot detect date format of column '%s' from %q", cfg.Name, name, values[0]), nil)
	}
	return layout, nil
}

// -----------------------------------------------------------------------------

func parsesAll(values []string, layout string) bool {
	for _, v := range values {
		if _, err := ParseDate(v, layout); err != nil {
			return false
		}
	}
	return true
}

// -----------------------------------------------------------------------------

func parseDateCell(raw, layout string) (models.MDate, error) {
	if IsMissingToken(raw) {
		return models.MDate{}, nil
	}
	t, err := ParseDate(raw, layout)
	if err != nil {
		return models.MDate{}, err
	}
	return models.MDate{Time: t, Valid: true}, nil
}

// -----------------------------------------------------------------------------

// cell tolerates short rows; spreadsheets drop trailing empty cells.
func cell(row []string, idx int) string {
	if idx < len(row) {
		return row[idx]
	}
	return ""
}

// -----------------------------------------------------------------------------

func isBlankRow(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
