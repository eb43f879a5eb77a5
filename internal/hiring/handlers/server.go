// Package handlers provides the gRPC and HTTP servers of the hiring portal.
// The gRPC server carries the standard health service; the HTTP API is
// routed by the grpc-gateway ServeMux, which also exposes /healthz backed by
// that health service.
package handlers

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gartstein/clubhire/internal/hiring/auth"
	"github.com/grpc-ecosystem/grpc-gateway/v2/runtime"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// Server holds references to both a gRPC server and an HTTP server.
type Server struct {
	grpcServer   *grpc.Server
	health       *health.Server
	httpServer   *http.Server
	conn         *grpc.ClientConn
	logger       *zap.Logger
	grpcEndpoint string
	httpEndpoint string
}

// NewServer constructs a Server with separate endpoints for gRPC and HTTP.
func NewServer(
	grpcPort int,
	httpPort int,
	logger *zap.Logger,
	grpcOpts ...grpc.ServerOption,
) *Server {
	s := &Server{
		grpcServer: grpc.NewServer(grpcOpts...),
		health:     health.NewServer(),
		httpServer: &http.Server{
			ReadHeaderTimeout: 10 * time.Second,
		},
		logger:       logger.Named("server"),
		grpcEndpoint: fmt.Sprintf(":%d", grpcPort),
		httpEndpoint: fmt.Sprintf(":%d", httpPort),
	}
	healthpb.RegisterHealthServer(s.grpcServer, s.health)
	return s
}

// SetServing flips the reported health of the whole server.
func (s *Server) SetServing(serving bool) {
	status := healthpb.HealthCheckResponse_NOT_SERVING
	if serving {
		status = healthpb.HealthCheckResponse_SERVING
	}
	s.health.SetServingStatus("", status)
}

// RegisterHTTPGateway builds the HTTP mux: the API routes of h behind the
// session middleware, plus /healthz proxied to the gRPC health service.
func (s *Server) RegisterHTTPGateway(_ context.Context, dialOpts []grpc.DialOption, h *Handler, sessions *auth.Middleware) error {
	conn, err := grpc.NewClient(s.grpcEndpoint, dialOpts...)
	if err != nil {
		return fmt.Errorf("failed to create health client: %w", err)
	}
	mux := runtime.NewServeMux(
		runtime.WithHealthzEndpoint(healthpb.NewHealthClient(conn)),
	)
	if err := h.Register(mux); err != nil {
		_ = conn.Close()
		return fmt.Errorf("failed to register routes: %w", err)
	}

	s.conn = conn
	s.httpServer.Handler = sessions.Wrap(mux)
	s.httpServer.Addr = s.httpEndpoint
	return nil
}

// Start runs the gRPC and HTTP servers concurrently, returning on the first error.
func (s *Server) Start() error {
	var wg sync.WaitGroup
	wg.Add(2)
	errChan := make(chan error, 2)

	go func() {
		defer wg.Done()
		s.logger.Info("Starting gRPC server", zap.String("endpoint", s.grpcEndpoint))
		lis, err := net.Listen("tcp", s.grpcEndpoint)
		if err != nil {
			errChan <- fmt.Errorf("gRPC listen error: %w", err)
			return
		}
		if err := s.grpcServer.Serve(lis); err != nil {
			errChan <- fmt.Errorf("gRPC serve error: %w", err)
		}
	}()

	go func() {
		defer wg.Done()
		s.logger.Info("Starting HTTP server", zap.String("endpoint", s.httpEndpoint))
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- fmt.Errorf("HTTP serve error: %w", err)
		}
	}()

	go func() {
		wg.Wait()
		close(errChan)
	}()

	for err := range errChan {
		if err != nil {
			return err
		}
	}
	return nil
}

// Stop gracefully shuts down both gRPC and HTTP servers.
func (s *Server) Stop() {
	s.logger.Info("Shutting down servers...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	s.health.Shutdown()
	if err := s.httpServer.Shutdown(ctx); err != nil {
		s.logger.Error("HTTP server shutdown error", zap.Error(err))
	}
	s.grpcServer.GracefulStop()
	if s.conn != nil {
		_ = s.conn.Close()
	}

	s.logger.Info("Servers stopped")
}
