package grpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

// ServiceName is the fully qualified gRPC service name. Requests and
// responses are google.protobuf.Struct documents carrying the same fields as
// the HTTP API.
const ServiceName = "veracity.v1.VeracityService"

// Method names.
const (
	MethodAnalyzeReport   = "AnalyzeReport"
	MethodVerifyReport    = "VerifyReport"
	MethodGetReport       = "GetReport"
	MethodListUserReports = "ListUserReports"
	MethodGetUser         = "GetUser"
	MethodPing            = "Ping"
)

// FullMethod returns the "/service/method" path used on the wire.
func FullMethod(method string) string {
	return "/" + ServiceName + "/" + method
}

// VeracityServiceServer is implemented by GRPCServer.
type VeracityServiceServer interface {
	AnalyzeReport(context.Context, *structpb.Struct) (*structpb.Struct, error)
	VerifyReport(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetReport(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ListUserReports(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetUser(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Ping(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

type methodFunc func(VeracityServiceServer, context.Context, *structpb.Struct) (*structpb.Struct, error)

func unaryHandler(method string, call methodFunc) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: method,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(structpb.Struct)
			if err := dec(in); err != nil {
				return nil, err
			}
			s := srv.(VeracityServiceServer)
			if interceptor == nil {
				return call(s, ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: FullMethod(method)}
			return interceptor(ctx, in, info, func(ctx context.Context, req any) (any, error) {
				return call(s, ctx, req.(*structpb.Struct))
			})
		},
	}
}

// ServiceDesc describes VeracityService for grpc.Server.RegisterService.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*VeracityServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		unaryHandler(MethodAnalyzeReport, VeracityServiceServer.AnalyzeReport),
		unaryHandler(MethodVerifyReport, VeracityServiceServer.VerifyReport),
		unaryHandler(MethodGetReport, VeracityServiceServer.GetReport),
		unaryHandler(MethodListUserReports, VeracityServiceServer.ListUserReports),
		unaryHandler(MethodGetUser, VeracityServiceServer.GetUser),
		unaryHandler(MethodPing, VeracityServiceServer.Ping),
	},
	Metadata: "veracity/v1/veracity.proto",
}

// RegisterVeracityServiceServer registers srv on s.
func RegisterVeracityServiceServer(s grpc.ServiceRegistrar, srv VeracityServiceServer) {
	s.RegisterService(&ServiceDesc, srv)
}

// Client is a thin typed wrapper over a connection.
type Client struct {
	cc grpc.ClientConnInterface
}

func NewClient(cc grpc.ClientConnInterface) *Client {
	return &Client{cc: cc}
}

// Call invokes method with in and returns the response document.
func (c *Client) Call(ctx context.Context, method string, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, FullMethod(method), in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
