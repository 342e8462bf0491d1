package grpc

import (
	"context"
	"errors"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"github.com/mohitexpo007/Ocean-Hazard-App/internal/common"
)

type ctxKey string

const subjectKey ctxKey = "subject"

// protected lists methods that require a verifier token.
var protected = map[string]bool{
	FullMethod(MethodVerifyReport): true,
}

func (s *GRPCServer) accessTokenInterceptor(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {

	if protected[info.FullMethod] && s.verifier.Enabled() {

		var accessToken string
		if md, ok := metadata.FromIncomingContext(ctx); ok {
			values := md.Get(common.AccessTokenHeaderName)
			if len(values) > 0 {
				accessToken = values[0]
			}
		}
		if len(accessToken) == 0 {
			return nil, status.Error(codes.Unauthenticated, "missing token")
		}

		subject, err := s.verifier.Authorize(accessToken)
		if err != nil {
			if errors.Is(err, common.ErrForbidden) {
				return nil, status.Error(codes.PermissionDenied, "verifier role required")
			}
			return nil, status.Error(codes.Unauthenticated, "invalid token")
		}

		ctx = context.WithValue(ctx, subjectKey, subject)
	}

	return handler(ctx, req)
}

func (s *GRPCServer) loggingInterceptor(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
	start := time.Now()
	resp, err := handler(ctx, req)
	s.logger.Debug(ctx, "grpc call", "method", info.FullMethod, "code", status.Code(err).String(), "took", time.Since(start))
	return resp, err
}

func subjectFrom(ctx context.Context) string {
	v, _ := ctx.Value(subjectKey).(string)
	return v
}
