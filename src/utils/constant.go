package utils

// Resampling period codes, named after their pandas offset aliases.
const (
	PeriodWeek    = "W" // week ending Sunday
	PeriodMonth   = "M"
	PeriodQuarter = "Q"
	PeriodYear    = "Y"
)

const (
	DefaultPeriod        = PeriodMonth
	DefaultRollingWindow = 6
	DefaultReportPath    = "report.json"
	DefaultDateLayout    = "2006-01-02"
)

// ValidPeriods lists the accepted resample codes.
var ValidPeriods = []string{PeriodWeek, PeriodMonth, PeriodQuarter, PeriodYear}

// -----------------------------------------------------------------------------

// IsValidPeriod reports whether p is a known period code.
func IsValidPeriod(p string) bool {
	for _, v := range ValidPeriods {
		if v == p {
			return true
		}
	}
	return false
}

// -----------------------------------------------------------------------------

// DateLayouts are tried in order when a dataset does not configure date_format.
var DateLayouts = []string{
	"2006-01-02",
	"2006-01",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006/01/02",
	"01/02/2006",
	"1/2/2006",
	"02-Jan-2006",
	"Jan 2, 2006",
}
