package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"trend-observer/src/analysis"
	"trend-observer/src/config"
	datasource "trend-observer/src/data_source"
	"trend-observer/src/helpers"
	"trend-observer/src/interfaces"
	"trend-observer/src/logger"
	"trend-observer/src/models"

	"github.com/sony/gobreaker"
)

// -----------------------------------------------------------------------------

// pipeline loads every configured dataset, runs the analysis and publishes
// the report to disk and, when configured, to the database.
type pipeline struct {
	Config   *config.Config
	DB       interfaces.IDatabase
	Logger   *logger.Logger
	Analyzer *analysis.AnalysisFacade
	Errors   *helpers.ErrorHandler
	// Breaker skips exports while the database keeps failing.
	Breaker *gobreaker.CircuitBreaker
}

// -----------------------------------------------------------------------------

func newPipeline(cfg *config.Config, db interfaces.IDatabase, log *logger.Logger) *pipeline {
	return &pipeline{
		Config:   cfg,
		DB:       db,
		Logger:   log,
		Analyzer: analysis.NewAnalysisFacade(cfg.MConfig, log.Named("Analysis")),
		Errors:   helpers.NewErrorHandler(log.Named("Export")),
		Breaker: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:    "export",
			Timeout: 5 * time.Minute,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= 3
			},
			OnStateChange: func(name string, from, to gobreaker.State) {
				log.Warning("Circuit breaker %s: %s -> %s", name, from, to)
			},
		}),
	}
}

// -----------------------------------------------------------------------------

// loadTables reads every dataset. The first failure aborts the load.
func (p *pipeline) loadTables() (map[string]*models.MTable, error) {
	tables := make(map[string]*models.MTable, len(p.Config.Datasets))
	for _, dsCfg := range p.Config.Datasets {
		src, err := datasource.NewDataSource(dsCfg, p.Config.ResolvePath(dsCfg.Path), p.Logger.Named(dsCfg.Name))
		if err != nil {
			return nil, err
		}
		table, err := src.Load()
		if err != nil {
			return nil, fmt.Errorf("dataset %s: %w", dsCfg.Name, err)
		}
		tables[dsCfg.Name] = table
	}
	return tables, nil
}

// -----------------------------------------------------------------------------

// Run executes one full pass. Export failures are logged, not returned.
func (p *pipeline) Run() (*models.MReport, error) {
	tables, err := p.loadTables()
	if err != nil {
		return nil, err
	}

	report, prepared, err := p.Analyzer.Run(tables)
	if err != nil {
		return nil, err
	}

	if err := writeReport(p.Config.ReportPath, report); err != nil {
		return nil, err
	}

	if p.DB != nil {
		_, err := p.Breaker.Execute(func() (interface{}, error) {
			return nil, p.export(report, prepared)
		})
		if err != nil {
			p.Logger.Warning("Export skipped or incomplete: %v", err)
		}
	}

	return report, nil
}

// -----------------------------------------------------------------------------

// export writes every derived table, summary and chart. Each step is
// attempted; the error reports how many failed.
func (p *pipeline) export(report *models.MReport, prepared []*analysis.PreparedDataset) error {
	p.Errors.ResetErrorCount()
	for _, table := range analysis.DerivedTables(prepared) {
		if err := p.DB.SaveTable(table); err != nil {
			p.Errors.Handle(helpers.NewDatabaseError("saving table "+table.Name, err), "SaveTable")
		}
	}
	if err := p.DB.SaveSummaries(report.Datasets); err != nil {
		p.Errors.Handle(helpers.NewDatabaseError("saving summaries", err), "SaveSummaries")
	}
	if err := p.DB.SaveCharts(report.Charts); err != nil {
		p.Errors.Handle(helpers.NewDatabaseError("saving charts", err), "SaveCharts")
	}
	if p.Errors.ErrorCount > 0 {
		return helpers.NewDatabaseError(fmt.Sprintf("%d export steps failed", p.Errors.ErrorCount), nil)
	}
	return nil
}

// -----------------------------------------------------------------------------

func writeReport(path string, report *models.MReport) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create report directory: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write report '%s': %w", path, err)
	}
	return nil
}
