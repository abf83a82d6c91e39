package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"trend-observer/src/config"
	"trend-observer/src/grpc_control"
	"trend-observer/src/interfaces"
	"trend-observer/src/logger"
	"trend-observer/src/server"
)

// -----------------------------------------------------------------------------

func main() {

	configPath := flag.String("config", "config/default.yaml", "path to config file")
	outPath := flag.String("out", "", "report JSON path (overrides report_path)")
	serveMode := flag.Bool("serve", false, "keep serving the report over HTTP, WebSocket and gRPC health")
	flag.Parse()

	cfg, err := config.NewConfig(*configPath)
	if err != nil {
		fmt.Printf("Error loading config: %v\n", err)
		os.Exit(1)
	}
	if *outPath != "" {
		cfg.ReportPath = *outPath
	}

	appLogger := logger.NewLogger(cfg.MConfig, cfg.Name)

	db := setupDatabase(cfg, appLogger)
	if db != nil {
		defer db.Close()
	}

	p := newPipeline(cfg, db, appLogger)
	report, err := p.Run()
	if err != nil {
		appLogger.Critical("Pipeline failed: %v", err)
	}
	appLogger.Info("Report written to %s (%d charts)", cfg.ReportPath, len(report.Charts))

	if !*serveMode {
		return
	}

	// -------------------------------------------------------------------------
	// Serve mode
	// -------------------------------------------------------------------------
	var srv interfaces.IDataExchanger = server.NewReportServer(cfg.MConfig, appLogger.Named("ReportServer"))
	srv.UpdateReport(report)

	healthSvc := grpc_control.NewHealthService(cfg.MConfig, appLogger.Named("HealthService"))
	healthSvc.SetServing(true)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := serve(ctx, srv, healthSvc, p, cfg.RefreshSecs, appLogger); err != nil {
		appLogger.Error("Server failed: %v", err)
	}
}

// -----------------------------------------------------------------------------

// refreshLoop re-runs the pipeline every interval and broadcasts new reports.
// A zero interval only waits for shutdown.
func refreshLoop(
	ctx context.Context,
	intervalSecs int,
	p *pipeline,
	srv interfaces.IDataExchanger,
	healthSvc *grpc_control.HealthService,
	appLogger *logger.Logger,
) {
	if intervalSecs <= 0 {
		<-ctx.Done()
		return
	}

	ticker := time.NewTicker(time.Duration(intervalSecs) * time.Second)
	defer ticker.Stop()

	appLogger.Info("Refreshing every %ds", intervalSecs)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			report, err := p.Run()
			if err != nil {
				// keep serving the previous report
				appLogger.Error("Refresh failed: %v", err)
				healthSvc.SetServing(false)
				continue
			}
			report.Type = "UPDATE"
			healthSvc.SetServing(true)
			srv.Broadcast(report)
		}
	}
}
