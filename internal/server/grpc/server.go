// Package grpc exposes the report service over gRPC.
package grpc

import (
	"context"
	"net"

	"google.golang.org/grpc"

	"github.com/mohitexpo007/Ocean-Hazard-App/internal/logging"
	"github.com/mohitexpo007/Ocean-Hazard-App/internal/server/auth"
	"github.com/mohitexpo007/Ocean-Hazard-App/internal/server/services"
)

// ReportService is the slice of services.ReportService the transport uses.
type ReportService interface {
	AnalyzeReport(ctx context.Context, req services.AnalyzeRequest) (*services.VeracityResult, error)
	VerifyReport(ctx context.Context, reportID, verifiedBy string) (*services.VerificationResult, error)
	GetReport(ctx context.Context, reportID string) (*services.ReportView, error)
	ListUserReports(ctx context.Context, userID string) ([]services.ReportView, error)
	GetUser(ctx context.Context, userID string) (*services.UserView, error)
}

type GRPCServer struct {
	address  string
	reports  ReportService
	logger   logging.Logger
	verifier *auth.Verifier
}

func NewGRPCServer(a string, l logging.Logger, rs ReportService, v *auth.Verifier) *GRPCServer {
	return &GRPCServer{
		address:  a,
		logger:   l.With("module", "grpc_server"),
		reports:  rs,
		verifier: v,
	}
}

func (s *GRPCServer) newServer() *grpc.Server {
	srv := grpc.NewServer(grpc.ChainUnaryInterceptor(s.loggingInterceptor, s.accessTokenInterceptor))
	RegisterVeracityServiceServer(srv, s)
	return srv
}

// Run serves until ctx is cancelled, then stops gracefully.
func (s *GRPCServer) Run(ctx context.Context) error {

	// announces address
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}

	return s.Serve(ctx, listen)
}

// Serve is Run on an existing listener.
func (s *GRPCServer) Serve(ctx context.Context, listen net.Listener) error {
	srv := s.newServer()

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping gRPC server...")
		srv.GracefulStop()
	}()

	s.logger.Info(ctx, "Starting gRPC server", "address", listen.Addr().String())

	// starts accepting incoming connections
	if err := srv.Serve(listen); err != nil {
		return err
	}

	return nil
}
