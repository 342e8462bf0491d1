package grpc

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/mohitexpo007/Ocean-Hazard-App/internal/common"
	"github.com/mohitexpo007/Ocean-Hazard-App/internal/server/services"
)

func (s *GRPCServer) AnalyzeReport(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	in, err := analyzeRequestFrom(req)
	if err != nil {
		return nil, toStatus(err)
	}

	res, err := s.reports.AnalyzeReport(ctx, in)
	if err != nil {
		return nil, s.fail(ctx, "analyze report", err)
	}
	return toStruct(res)
}

func (s *GRPCServer) VerifyReport(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	res, err := s.reports.VerifyReport(ctx, stringField(req, "report_id"), subjectFrom(ctx))
	if err != nil {
		return nil, s.fail(ctx, "verify report", err)
	}
	return toStruct(res)
}

func (s *GRPCServer) GetReport(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	res, err := s.reports.GetReport(ctx, stringField(req, "report_id"))
	if err != nil {
		return nil, s.fail(ctx, "get report", err)
	}
	return toStruct(res)
}

func (s *GRPCServer) ListUserReports(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	userID := stringField(req, "user_id")
	res, err := s.reports.ListUserReports(ctx, userID)
	if err != nil {
		return nil, s.fail(ctx, "list reports", err)
	}
	return toStruct(map[string]any{"user_id": userID, "reports": res})
}

func (s *GRPCServer) GetUser(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	res, err := s.reports.GetUser(ctx, stringField(req, "user_id"))
	if err != nil {
		return nil, s.fail(ctx, "get user", err)
	}
	return toStruct(res)
}

func (s *GRPCServer) Ping(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	return structpb.NewStruct(map[string]any{"status": "OK"})
}

func (s *GRPCServer) fail(ctx context.Context, op string, err error) error {
	st := toStatus(err)
	if status.Code(st) == codes.Internal {
		s.logger.Error(ctx, op+" failed", "error", err)
	}
	return st
}

// toStatus maps service errors onto gRPC codes.
func toStatus(err error) error {
	switch {
	case errors.Is(err, common.ErrorValidation):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, common.ErrorNotFound):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, common.ErrorAlreadyExists):
		return status.Error(codes.AlreadyExists, err.Error())
	case errors.Is(err, common.ErrorUnauthorized):
		return status.Error(codes.Unauthenticated, "unauthorized")
	case errors.Is(err, common.ErrForbidden):
		return status.Error(codes.PermissionDenied, "forbidden")
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, err.Error())
	default:
		return status.Error(codes.Internal, "internal error")
	}
}

func analyzeRequestFrom(req *structpb.Struct) (services.AnalyzeRequest, error) {
	out := services.AnalyzeRequest{
		ReportID: stringField(req, "report_id"),
		UserID:   stringField(req, "user_id"),
	}

	var err error
	if out.Lat, err = numberField(req, "lat"); err != nil {
		return out, err
	}
	if out.Lon, err = numberField(req, "lon"); err != nil {
		return out, err
	}

	if v, ok := req.GetFields()["text"]; ok {
		if _, isNull := v.GetKind().(*structpb.Value_NullValue); !isNull {
			text := v.GetStringValue()
			out.Text = &text
		}
	}

	if enc := stringField(req, "image"); enc != "" {
		out.Image, err = base64.StdEncoding.DecodeString(enc)
		if err != nil {
			return out, fmt.Errorf("%w: image is not base64: %v", common.ErrorValidation, err)
		}
	}
	return out, nil
}

func stringField(s *structpb.Struct, name string) string {
	return s.GetFields()[name].GetStringValue()
}

func numberField(s *structpb.Struct, name string) (float64, error) {
	v, ok := s.GetFields()[name]
	if !ok {
		return 0, fmt.Errorf("%w: %s is required", common.ErrorValidation, name)
	}
	n, ok := v.GetKind().(*structpb.Value_NumberValue)
	if !ok {
		return 0, fmt.Errorf("%w: %s must be a number", common.ErrorValidation, name)
	}
	return n.NumberValue, nil
}

// toStruct converts a JSON-tagged value into a Struct so both transports
// share field names.
func toStruct(v any) (*structpb.Struct, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, status.Error(codes.Internal, "encode response")
	}
	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, status.Error(codes.Internal, "encode response")
	}
	out, err := structpb.NewStruct(m)
	if err != nil {
		return nil, status.Error(codes.Internal, "encode response")
	}
	return out, nil
}
