package interfaces

import "trend-observer/src/models"

// -----------------------------------------------------------------------------
// IDataSource reads one configured dataset into an explicit-schema table.
// -----------------------------------------------------------------------------

type IDataSource interface {

	// Name returns the dataset name from config
	Name() string

	// -----------------------------------------------------------------------------

	// Load reads the whole source. Any unparseable designated date or
	// non-numeric value fails the load; no partial table is returned.
	Load() (*models.MTable, error)
}
