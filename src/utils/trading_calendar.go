package utils

import (
	"log"
	"strings"
	"time"

	"github.com/scmhub/calendar"
)

// TradingCalendar answers business-day questions using scmhub/calendar.
type TradingCalendar struct {
	MIC      string
	Calendar *calendar.Calendar
	Fallback bool
	Timezone *time.Location
}

// -----------------------------------------------------------------------------

// GetCalendar loads the exchange calendar for a MIC code (ISO 10383, e.g.
// "xnys") covering the years [first, last]; without years the library's
// default window around today is used. Unknown codes fall back to a Mon-Fri
// calendar.
func GetCalendar(mic string, years ...int) *TradingCalendar {
	mic = strings.ToLower(strings.TrimSpace(mic))

	cal := calendar.GetCalendar(mic, years...)
	if cal == nil {
		log.Printf("WARNING: No calendar for MIC '%s'. Using Mon-Fri fallback.", mic)
		return &TradingCalendar{MIC: mic, Fallback: true, Timezone: time.UTC}
	}

	return &TradingCalendar{MIC: mic, Calendar: cal, Fallback: false, Timezone: cal.Loc}
}

// -----------------------------------------------------------------------------

// IsTradingDay reports whether the calendar date of t is a business day.
// Only the year/month/day of t are used; no timezone shift is applied.
// Dates outside the loaded holiday years are judged Mon-Fri.
func (tc *TradingCalendar) IsTradingDay(t time.Time) bool {
	loc := tc.Timezone
	if loc == nil {
		loc = time.UTC
	}
	date := time.Date(t.Year(), t.Month(), t.Day(), 12, 0, 0, 0, loc)

	if tc.Fallback || tc.Calendar == nil || !tc.covers(date.Year()) {
		weekday := date.Weekday()
		return weekday != time.Saturday && weekday != time.Sunday
	}
	return tc.Calendar.IsBusinessDay(date)
}

// -----------------------------------------------------------------------------

// LastTradingDayOnOrBefore walks back from t to the closest business day.
func (tc *TradingCalendar) LastTradingDayOnOrBefore(t time.Time) time.Time {
	d := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	// Two weeks covers any run of exchange holidays
	for i := 0; i < 14; i++ {
		if tc.IsTradingDay(d) {
			return d
		}
		d = d.AddDate(0, 0, -1)
	}
	return d
}

// -----------------------------------------------------------------------------

func (tc *TradingCalendar) covers(year int) bool {
	start, end := tc.Calendar.Years()
	return year >= start && year <= end
}
