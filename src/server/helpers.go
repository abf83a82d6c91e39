package server

import "trend-observer/src/models"

// -----------------------------------------------------------------------------

// filterReport returns a shallow copy holding only the named charts. Dataset
// summaries and metrics are always included.
func filterReport(report *models.MReport, charts []string) *models.MReport {
	out := *report
	if len(charts) == 0 {
		return &out
	}

	out.Charts = make([]models.MChartData, 0, len(charts))
	for _, chart := range report.Charts {
		if contains(charts, chart.Name) {
			out.Charts = append(out.Charts, chart)
		}
	}
	return &out
}

// -----------------------------------------------------------------------------

func contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}
