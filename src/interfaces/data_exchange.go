package interfaces

import "trend-observer/src/models"

// -----------------------------------------------------------------------------
// IDataExchanger publishes pipeline results to external listeners.
// -----------------------------------------------------------------------------

type IDataExchanger interface {
	// -----------------------------------------------------------------------------
	// Broadcast pushes a report to subscribers and updates state.
	Broadcast(report *models.MReport)

	// -----------------------------------------------------------------------------
	// UpdateReport replaces the served report without broadcasting
	UpdateReport(report *models.MReport)

	// -----------------------------------------------------------------------------
	// Start the server
	Start() error

	// -----------------------------------------------------------------------------
	// Stop the server gracefully
	Stop() error
}
