package main

import (
	"context"

	"trend-observer/src/grpc_control"
	"trend-observer/src/interfaces"
	"trend-observer/src/logger"

	"golang.org/x/sync/errgroup"
)

// -----------------------------------------------------------------------------

// serve runs the report server, the gRPC health server and the refresh loop
// until ctx is cancelled or one of them fails.
func serve(
	ctx context.Context,
	srv interfaces.IDataExchanger,
	healthSvc *grpc_control.HealthService,
	p *pipeline,
	refreshSecs int,
	appLogger *logger.Logger,
) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(srv.Start)
	g.Go(healthSvc.Start)
	g.Go(func() error {
		refreshLoop(gctx, refreshSecs, p, srv, healthSvc, appLogger)
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		appLogger.Info("Shutting down...")
		healthSvc.Stop()
		return srv.Stop()
	})

	return g.Wait()
}
