// Package cleaner removes records with missing observations.
package cleaner

import (
	"trend-observer/src/models"
)

// -----------------------------------------------------------------------------

// RowHasMissing reports whether any field of the record is missing.
func RowHasMissing(r models.MRecord) bool {
	if !r.Date.Valid {
		return true
	}
	for _, d := range r.ExtraDates {
		if !d.Valid {
			return true
		}
	}
	for _, v := range r.Values {
		if !v.Valid {
			return true
		}
	}
	return false
}

// -----------------------------------------------------------------------------

// HasMissing reports whether any cell of the table is missing.
func HasMissing(t *models.MTable) bool {
	for _, r := range t.Records {
		if RowHasMissing(r) {
			return true
		}
	}
	return false
}

// -----------------------------------------------------------------------------

// CountMissingRows counts records with at least one missing field.
func CountMissingRows(t *models.MTable) int {
	n := 0
	for _, r := range t.Records {
		if RowHasMissing(r) {
			n++
		}
	}
	return n
}

// -----------------------------------------------------------------------------

// MissingByColumn counts missing cells per column, date columns included.
func MissingByColumn(t *models.MTable) map[string]int {
	counts := make(map[string]int, len(t.Columns)+1+len(t.ExtraDateColumns))
	counts[t.DateColumn] = 0
	for _, c := range t.ExtraDateColumns {
		counts[c] = 0
	}
	for _, c := range t.Columns {
		counts[c] = 0
	}

	for _, r := range t.Records {
		if !r.Date.Valid {
			counts[t.DateColumn]++
		}
		for i, d := range r.ExtraDates {
			if !d.Valid && i < len(t.ExtraDateColumns) {
				counts[t.ExtraDateColumns[i]]++
			}
		}
		for i, v := range r.Values {
			if !v.Valid && i < len(t.Columns) {
				counts[t.Columns[i]]++
			}
		}
	}
	return counts
}

// -----------------------------------------------------------------------------

// MissingRows returns the records that DropMissing would remove.
func MissingRows(t *models.MTable) []models.MRecord {
	var out []models.MRecord
	for _, r := range t.Records {
		if RowHasMissing(r) {
			out = append(out, models.CloneRecord(r))
		}
	}
	return out
}

// -----------------------------------------------------------------------------

// DropMissing returns a new table without records that have a missing value
// in any field. The input table is left untouched. The report is informational.
func DropMissing(t *models.MTable) (*models.MTable, models.MCleanReport) {
	report := models.MCleanReport{
		Dataset:         t.Name,
		RowsBefore:      t.Len(),
		MissingByColumn: MissingByColumn(t),
	}

	out := t.Empty()
	out.Records = make([]models.MRecord, 0, t.Len())
	for _, r := range t.Records {
		if RowHasMissing(r) {
			continue
		}
		out.Records = append(out.Records, models.CloneRecord(r))
	}

	report.RowsAfter = out.Len()
	report.RowsDropped = report.RowsBefore - report.RowsAfter
	return out, report
}
