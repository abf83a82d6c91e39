package models

import "time"

// MValue is a numeric cell; Valid is false for a missing observation.
type MValue struct {
	Float float64 `json:"value"`
	Valid bool    `json:"valid"`
}

// MDate is an optional calendar date.
type MDate struct {
	Time  time.Time `json:"time"`
	Valid bool      `json:"valid"`
}

// Num returns a valid numeric cell.
func Num(f float64) MValue {
	return MValue{Float: f, Valid: true}
}

// Missing returns an invalid numeric cell.
func Missing() MValue {
	return MValue{}
}

// MRecord is one row of a time series table.
type MRecord struct {
	Date       MDate    `json:"date"`
	ExtraDates []MDate  `json:"extra_dates,omitempty"`
	Values     []MValue `json:"values"`
}

// MTable is a date keyed table with an explicit schema.
// Values[i] of every record belongs to Columns[i].
type MTable struct {
	Name             string    `json:"name"`
	DateColumn       string    `json:"date_column"`
	DateLayout       string    `json:"date_layout"`
	ExtraDateColumns []string  `json:"extra_date_columns,omitempty"`
	Columns          []string  `json:"columns"`
	Records          []MRecord `json:"records"`
}

// -----------------------------------------------------------------------------

func (t *MTable) Len() int {
	return len(t.Records)
}

// -----------------------------------------------------------------------------

// ColumnIndex returns the position of a numeric column or -1.
func (t *MTable) ColumnIndex(name string) int {
	for i, c := range t.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

// -----------------------------------------------------------------------------

// Column returns a copy of a numeric column.
func (t *MTable) Column(name string) ([]MValue, bool) {
	idx := t.ColumnIndex(name)
	if idx < 0 {
		return nil, false
	}
	out := make([]MValue, len(t.Records))
	for i, r := range t.Records {
		out[i] = r.Values[idx]
	}
	return out, true
}

// -----------------------------------------------------------------------------

// Dates returns the key date of every record.
func (t *MTable) Dates() []time.Time {
	out := make([]time.Time, len(t.Records))
	for i, r := range t.Records {
		out[i] = r.Date.Time
	}
	return out
}

// -----------------------------------------------------------------------------

// Empty returns a table with the same schema and no records.
func (t *MTable) Empty() *MTable {
	return &MTable{
		Name:             t.Name,
		DateColumn:       t.DateColumn,
		DateLayout:       t.DateLayout,
		ExtraDateColumns: append([]string(nil), t.ExtraDateColumns...),
		Columns:          append([]string(nil), t.Columns...),
	}
}

// -----------------------------------------------------------------------------

// CloneRecord deep copies a record so derived tables never share backing arrays.
func CloneRecord(r MRecord) MRecord {
	return MRecord{
		Date:       r.Date,
		ExtraDates: append([]MDate(nil), r.ExtraDates...),
		Values:     append([]MValue(nil), r.Values...),
	}
}
