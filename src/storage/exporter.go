package storage

import (
	"database/sql"
	"fmt"
	"math"
	"strings"
	"time"

	"trend-observer/src/logger"
	"trend-observer/src/models"
)

// dialect captures the few SQL differences between the supported backends.
type dialect struct {
	float       string
	integer     string
	table       func(name string) string
	placeholder func(n int) string
}

// -----------------------------------------------------------------------------

// exporter writes run results through database/sql. Backends embed it and
// only own connection setup.
type exporter struct {
	DB      *sql.DB
	Logger  *logger.Logger
	dialect dialect
}

// -----------------------------------------------------------------------------

func (e *exporter) placeholders(n int) string {
	parts := make([]string, n)
	for i := range parts {
		parts[i] = e.dialect.placeholder(i + 1)
	}
	return strings.Join(parts, ", ")
}

// -----------------------------------------------------------------------------

func (e *exporter) recreateTables() error {
	f, i := e.dialect.float, e.dialect.integer
	tables := []struct {
		name    string
		columns string
	}{
		{"observations", fmt.Sprintf(`
			dataset TEXT,
			row_index %s,
			date TEXT,
			column_name TEXT,
			value %s,
			PRIMARY KEY (dataset, row_index, column_name)`, i, f)},
		{"chart_points", fmt.Sprintf(`
			chart TEXT,
			date TEXT,
			primary_value %s,
			secondary_value %s,
			PRIMARY KEY (chart, date)`, f, f)},
		{"column_stats", fmt.Sprintf(`
			dataset TEXT,
			column_name TEXT,
			count %s,
			mean %s,
			std %s,
			min %s,
			q25 %s,
			median %s,
			q75 %s,
			max %s,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			PRIMARY KEY (dataset, column_name)`, i, f, f, f, f, f, f, f)},
	}

	for _, t := range tables {
		name := e.dialect.table(t.name)
		if _, err := e.DB.Exec(fmt.Sprintf("DROP TABLE IF EXISTS %s", name)); err != nil {
			return fmt.Errorf("failed to drop %s: %w", name, err)
		}
		if _, err := e.DB.Exec(fmt.Sprintf("CREATE TABLE %s (%s\n);", name, t.columns)); err != nil {
			return fmt.Errorf("failed to create %s: %w", name, err)
		}
	}
	return nil
}

// -----------------------------------------------------------------------------

// SaveTable replaces the stored observations of one table. Missing cells are
// written as NULL.
func (e *exporter) SaveTable(table *models.MTable) error {
	tx, err := e.DB.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	name := e.dialect.table("observations")
	if _, err := tx.Exec(fmt.Sprintf("DELETE FROM %s WHERE dataset = %s", name, e.dialect.placeholder(1)), table.Name); err != nil {
		return fmt.Errorf("failed to clear %s: %w", table.Name, err)
	}

	stmt, err := tx.Prepare(fmt.Sprintf(`
		INSERT INTO %s (dataset, row_index, date, column_name, value)
		VALUES (%s)
	`, name, e.placeholders(5)))
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i, rec := range table.Records {
		date := sql.NullString{}
		if rec.Date.Valid {
			date = sql.NullString{String: rec.Date.Time.Format(layoutOf(table)), Valid: true}
		}
		for c, col := range table.Columns {
			v := rec.Values[c]
			if _, err := stmt.Exec(table.Name, i, date, col, sql.NullFloat64{Float64: v.Float, Valid: v.Valid}); err != nil {
				return err
			}
		}
	}

	return tx.Commit()
}

// -----------------------------------------------------------------------------

// SaveCharts replaces every stored chart series.
func (e *exporter) SaveCharts(charts []models.MChartData) error {
	tx, err := e.DB.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	name := e.dialect.table("chart_points")
	if _, err := tx.Exec(fmt.Sprintf("DELETE FROM %s", name)); err != nil {
		return err
	}

	stmt, err := tx.Prepare(fmt.Sprintf(`
		INSERT INTO %s (chart, date, primary_value, secondary_value)
		VALUES (%s)
	`, name, e.placeholders(4)))
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, chart := range charts {
		for _, pt := range chart.Points {
			if _, err := stmt.Exec(chart.Name, pt.Date.Format("2006-01-02"), pt.Primary, pt.Secondary); err != nil {
				return fmt.Errorf("chart %s: %w", chart.Name, err)
			}
		}
	}

	return tx.Commit()
}

// -----------------------------------------------------------------------------

// SaveSummaries upserts describe() rows per dataset column.
func (e *exporter) SaveSummaries(summaries []models.MDatasetSummary) error {
	if len(summaries) == 0 {
		return nil
	}

	tx, err := e.DB.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(fmt.Sprintf(`
		INSERT INTO %s (dataset, column_name, count, mean, std, min, q25, median, q75, max, updated_at)
		VALUES (%s)
		ON CONFLICT (dataset, column_name) DO UPDATE SET
			count = EXCLUDED.count,
			mean = EXCLUDED.mean,
			std = EXCLUDED.std,
			min = EXCLUDED.min,
			q25 = EXCLUDED.q25,
			median = EXCLUDED.median,
			q75 = EXCLUDED.q75,
			max = EXCLUDED.max,
			updated_at = EXCLUDED.updated_at
	`, e.dialect.table("column_stats"), e.placeholders(11)))
	if err != nil {
		return err
	}
	defer stmt.Close()

	now := time.Now().UTC()
	for _, s := range summaries {
		for _, c := range s.Stats {
			_, err := stmt.Exec(s.Name, c.Column, c.Count,
				nullable(c.Mean), nullable(c.Std), nullable(c.Min), nullable(c.Q25),
				nullable(c.Median), nullable(c.Q75), nullable(c.Max), now)
			if err != nil {
				return err
			}
		}
	}

	return tx.Commit()
}

// -----------------------------------------------------------------------------

func (e *exporter) Close() error {
	if e.DB != nil {
		return e.DB.Close()
	}
	return nil
}

// -----------------------------------------------------------------------------

// nullable maps NaN (empty column, std of one value) to NULL.
func nullable(f float64) sql.NullFloat64 {
	return sql.NullFloat64{Float64: f, Valid: !math.IsNaN(f)}
}

// -----------------------------------------------------------------------------

func layoutOf(t *models.MTable) string {
	if t.DateLayout != "" {
		return t.DateLayout
	}
	return "2006-01-02"
}
