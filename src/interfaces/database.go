package interfaces

import "trend-observer/src/models"

// -----------------------------------------------------------------------------
// IDatabase defines the contract for exporting run results.
// -----------------------------------------------------------------------------

type IDatabase interface {

	// -----------------------------------------------------------------------------

	// Initialize sets up the database schema and tables.
	Initialize() error

	// -----------------------------------------------------------------------------

	// SaveTable replaces the stored observations of one table.
	SaveTable(table *models.MTable) error

	// -----------------------------------------------------------------------------

	// SaveCharts replaces the stored chart series.
	SaveCharts(charts []models.MChartData) error

	// -----------------------------------------------------------------------------

	// SaveSummaries stores describe() output per dataset column.
	SaveSummaries(summaries []models.MDatasetSummary) error

	// -----------------------------------------------------------------------------

	// Close the database connection
	Close() error
}
