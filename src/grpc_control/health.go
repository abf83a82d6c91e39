package grpc_control

import (
	"errors"
	"fmt"
	"net"

	"trend-observer/src/logger"
	"trend-observer/src/models"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

const defaultGrpcPort = 50051

// HealthService exposes the standard gRPC health protocol. The service named
// after the config reports SERVING once a pipeline run has succeeded.
type HealthService struct {
	Config *models.MConfig
	Logger *logger.Logger
	Server *grpc.Server
	health *health.Server
}

// -----------------------------------------------------------------------------

func NewHealthService(cfg *models.MConfig, log *logger.Logger) *HealthService {
	s := &HealthService{
		Config: cfg,
		Logger: log,
		Server: grpc.NewServer(),
		health: health.NewServer(),
	}
	healthpb.RegisterHealthServer(s.Server, s.health)
	s.SetServing(false)
	return s
}

// -----------------------------------------------------------------------------

// SetServing flips both the overall and the named service status.
func (s *HealthService) SetServing(ok bool) {
	status := healthpb.HealthCheckResponse_NOT_SERVING
	if ok {
		status = healthpb.HealthCheckResponse_SERVING
	}
	s.health.SetServingStatus("", status)
	s.health.SetServingStatus(s.Config.Name, status)
}

// -----------------------------------------------------------------------------

// Start listens on grpc_host:grpc_port and blocks until Stop.
func (s *HealthService) Start() error {
	port := s.Config.GrpcPort
	if port == 0 {
		port = defaultGrpcPort
	}
	lis, err := net.Listen("tcp", fmt.Sprintf("%s:%d", s.Config.GrpcHost, port))
	if err != nil {
		return fmt.Errorf("failed to listen for gRPC: %w", err)
	}
	return s.Serve(lis)
}

// -----------------------------------------------------------------------------

func (s *HealthService) Serve(lis net.Listener) error {
	s.Logger.Info("Starting gRPC health server on %s", lis.Addr())
	if err := s.Server.Serve(lis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
		return err
	}
	return nil
}

// -----------------------------------------------------------------------------

func (s *HealthService) Stop() {
	s.health.Shutdown()
	s.Server.GracefulStop()
}
