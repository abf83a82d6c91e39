package models

// MProcessingMetrics represents the performance metrics for one pipeline run.
type MProcessingMetrics struct {
	RunTimeSeconds float64 `json:"run_time_seconds"`
	DatasetsLoaded int     `json:"datasets_loaded"`
	RowsDropped    int     `json:"rows_dropped"`
	ChartsProduced int     `json:"charts_produced"`
}
