package lotteryv1

import (
	"context"

	platformgrpc "github.com/louisbranch/lottery/internal/platform/grpc"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Fully-qualified service names.
const (
	DrawServiceName     = "lottery.v1.DrawService"
	WageringServiceName = "lottery.v1.WageringService"
	AdminServiceName    = "lottery.v1.AdminService"
)

const (
	DrawService_GetOpenDraws_FullMethodName                = "/lottery.v1.DrawService/GetOpenDraws"
	DrawService_GetDraw_FullMethodName                     = "/lottery.v1.DrawService/GetDraw"
	WageringService_PlaceWager_FullMethodName              = "/lottery.v1.WageringService/PlaceWager"
	WageringService_GetWager_FullMethodName                = "/lottery.v1.WageringService/GetWager"
	AdminService_ReceiveExternalDrawNumbers_FullMethodName = "/lottery.v1.AdminService/ReceiveExternalDrawNumbers"
	AdminService_TransitionDraw_FullMethodName             = "/lottery.v1.AdminService/TransitionDraw"
)

// unaryHandler adapts a typed method to grpc.MethodHandler, decoding the
// request with the negotiated codec and honoring server interceptors.
func unaryHandler[Req, Resp any](fullMethod string, call func(srv any, ctx context.Context, in *Req) (*Resp, error)) func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(Req)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv, ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv, ctx, req.(*Req))
		}
		return interceptor(ctx, in, info, handler)
	}
}

func invoke[Resp any](ctx context.Context, cc grpc.ClientConnInterface, method string, in any, opts []grpc.CallOption) (*Resp, error) {
	out := new(Resp)
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(platformgrpc.JSONCodecName)}, opts...)
	if err := cc.Invoke(ctx, method, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

// DrawServiceServer reads draws.
type DrawServiceServer interface {
	GetOpenDraws(context.Context, *GetOpenDrawsRequest) (*GetOpenDrawsResponse, error)
	GetDraw(context.Context, *GetDrawRequest) (*GetDrawResponse, error)
}

// UnimplementedDrawServiceServer can be embedded for forward compatibility.
type UnimplementedDrawServiceServer struct{}

func (UnimplementedDrawServiceServer) GetOpenDraws(context.Context, *GetOpenDrawsRequest) (*GetOpenDrawsResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method GetOpenDraws not implemented")
}

func (UnimplementedDrawServiceServer) GetDraw(context.Context, *GetDrawRequest) (*GetDrawResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method GetDraw not implemented")
}

var DrawService_ServiceDesc = grpc.ServiceDesc{
	ServiceName: DrawServiceName,
	HandlerType: (*DrawServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "GetOpenDraws",
			Handler: unaryHandler(DrawService_GetOpenDraws_FullMethodName,
				func(srv any, ctx context.Context, in *GetOpenDrawsRequest) (*GetOpenDrawsResponse, error) {
					return srv.(DrawServiceServer).GetOpenDraws(ctx, in)
				}),
		},
		{
			MethodName: "GetDraw",
			Handler: unaryHandler(DrawService_GetDraw_FullMethodName,
				func(srv any, ctx context.Context, in *GetDrawRequest) (*GetDrawResponse, error) {
					return srv.(DrawServiceServer).GetDraw(ctx, in)
				}),
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "lottery/v1/draw.json",
}

// RegisterDrawServiceServer registers srv on s.
func RegisterDrawServiceServer(s grpc.ServiceRegistrar, srv DrawServiceServer) {
	s.RegisterService(&DrawService_ServiceDesc, srv)
}

// DrawServiceClient is the client API for DrawService.
type DrawServiceClient interface {
	GetOpenDraws(ctx context.Context, in *GetOpenDrawsRequest, opts ...grpc.CallOption) (*GetOpenDrawsResponse, error)
	GetDraw(ctx context.Context, in *GetDrawRequest, opts ...grpc.CallOption) (*GetDrawResponse, error)
}

type drawServiceClient struct {
	cc grpc.ClientConnInterface
}

func NewDrawServiceClient(cc grpc.ClientConnInterface) DrawServiceClient {
	return &drawServiceClient{cc: cc}
}

func (c *drawServiceClient) GetOpenDraws(ctx context.Context, in *GetOpenDrawsRequest, opts ...grpc.CallOption) (*GetOpenDrawsResponse, error) {
	return invoke[GetOpenDrawsResponse](ctx, c.cc, DrawService_GetOpenDraws_FullMethodName, in, opts)
}

func (c *drawServiceClient) GetDraw(ctx context.Context, in *GetDrawRequest, opts ...grpc.CallOption) (*GetDrawResponse, error) {
	return invoke[GetDrawResponse](ctx, c.cc, DrawService_GetDraw_FullMethodName, in, opts)
}

// WageringServiceServer places and reads wagers.
type WageringServiceServer interface {
	PlaceWager(context.Context, *PlaceWagerRequest) (*PlaceWagerResponse, error)
	GetWager(context.Context, *GetWagerRequest) (*GetWagerResponse, error)
}

// UnimplementedWageringServiceServer can be embedded for forward compatibility.
type UnimplementedWageringServiceServer struct{}

func (UnimplementedWageringServiceServer) PlaceWager(context.Context, *PlaceWagerRequest) (*PlaceWagerResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method PlaceWager not implemented")
}

func (UnimplementedWageringServiceServer) GetWager(context.Context, *GetWagerRequest) (*GetWagerResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method GetWager not implemented")
}

var WageringService_ServiceDesc = grpc.ServiceDesc{
	ServiceName: WageringServiceName,
	HandlerType: (*WageringServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "PlaceWager",
			Handler: unaryHandler(WageringService_PlaceWager_FullMethodName,
				func(srv any, ctx context.Context, in *PlaceWagerRequest) (*PlaceWagerResponse, error) {
					return srv.(WageringServiceServer).PlaceWager(ctx, in)
				}),
		},
		{
			MethodName: "GetWager",
			Handler: unaryHandler(WageringService_GetWager_FullMethodName,
				func(srv any, ctx context.Context, in *GetWagerRequest) (*GetWagerResponse, error) {
					return srv.(WageringServiceServer).GetWager(ctx, in)
				}),
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "lottery/v1/wagering.json",
}

// RegisterWageringServiceServer registers srv on s.
func RegisterWageringServiceServer(s grpc.ServiceRegistrar, srv WageringServiceServer) {
	s.RegisterService(&WageringService_ServiceDesc, srv)
}

// WageringServiceClient is the client API for WageringService.
type WageringServiceClient interface {
	PlaceWager(ctx context.Context, in *PlaceWagerRequest, opts ...grpc.CallOption) (*PlaceWagerResponse, error)
	GetWager(ctx context.Context, in *GetWagerRequest, opts ...grpc.CallOption) (*GetWagerResponse, error)
}

type wageringServiceClient struct {
	cc grpc.ClientConnInterface
}

func NewWageringServiceClient(cc grpc.ClientConnInterface) WageringServiceClient {
	return &wageringServiceClient{cc: cc}
}

func (c *wageringServiceClient) PlaceWager(ctx context.Context, in *PlaceWagerRequest, opts ...grpc.CallOption) (*PlaceWagerResponse, error) {
	return invoke[PlaceWagerResponse](ctx, c.cc, WageringService_PlaceWager_FullMethodName, in, opts)
}

func (c *wageringServiceClient) GetWager(ctx context.Context, in *GetWagerRequest, opts ...grpc.CallOption) (*GetWagerResponse, error) {
	return invoke[GetWagerResponse](ctx, c.cc, WageringService_GetWager_FullMethodName, in, opts)
}

// AdminServiceServer runs operator draw operations.
type AdminServiceServer interface {
	ReceiveExternalDrawNumbers(context.Context, *ReceiveExternalDrawNumbersRequest) (*ReceiveExternalDrawNumbersResponse, error)
	TransitionDraw(context.Context, *TransitionDrawRequest) (*TransitionDrawResponse, error)
}

// UnimplementedAdminServiceServer can be embedded for forward compatibility.
type UnimplementedAdminServiceServer struct{}

func (UnimplementedAdminServiceServer) ReceiveExternalDrawNumbers(context.Context, *ReceiveExternalDrawNumbersRequest) (*ReceiveExternalDrawNumbersResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method ReceiveExternalDrawNumbers not implemented")
}

func (UnimplementedAdminServiceServer) TransitionDraw(context.Context, *TransitionDrawRequest) (*TransitionDrawResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method TransitionDraw not implemented")
}

var AdminService_ServiceDesc = grpc.ServiceDesc{
	ServiceName: AdminServiceName,
	HandlerType: (*AdminServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "ReceiveExternalDrawNumbers",
			Handler: unaryHandler(AdminService_ReceiveExternalDrawNumbers_FullMethodName,
				func(srv any, ctx context.Context, in *ReceiveExternalDrawNumbersRequest) (*ReceiveExternalDrawNumbersResponse, error) {
					return srv.(AdminServiceServer).ReceiveExternalDrawNumbers(ctx, in)
				}),
		},
		{
			MethodName: "TransitionDraw",
			Handler: unaryHandler(AdminService_TransitionDraw_FullMethodName,
				func(srv any, ctx context.Context, in *TransitionDrawRequest) (*TransitionDrawResponse, error) {
					return srv.(AdminServiceServer).TransitionDraw(ctx, in)
				}),
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "lottery/v1/admin.json",
}

// RegisterAdminServiceServer registers srv on s.
func RegisterAdminServiceServer(s grpc.ServiceRegistrar, srv AdminServiceServer) {
	s.RegisterService(&AdminService_ServiceDesc, srv)
}

// AdminServiceClient is the client API for AdminService.
type AdminServiceClient interface {
	ReceiveExternalDrawNumbers(ctx context.Context, in *ReceiveExternalDrawNumbersRequest, opts ...grpc.CallOption) (*ReceiveExternalDrawNumbersResponse, error)
	TransitionDraw(ctx context.Context, in *TransitionDrawRequest, opts ...grpc.CallOption) (*TransitionDrawResponse, error)
}

type adminServiceClient struct {
	cc grpc.ClientConnInterface
}

func NewAdminServiceClient(cc grpc.ClientConnInterface) AdminServiceClient {
	return &adminServiceClient{cc: cc}
}

func (c *adminServiceClient) ReceiveExternalDrawNumbers(ctx context.Context, in *ReceiveExternalDrawNumbersRequest, opts ...grpc.CallOption) (*ReceiveExternalDrawNumbersResponse, error) {
	return invoke[ReceiveExternalDrawNumbersResponse](ctx, c.cc, AdminService_ReceiveExternalDrawNumbers_FullMethodName, in, opts)
}

func (c *adminServiceClient) TransitionDraw(ctx context.Context, in *TransitionDrawRequest, opts ...grpc.CallOption) (*TransitionDrawResponse, error) {
	return invoke[TransitionDrawResponse](ctx, c.cc, AdminService_TransitionDraw_FullMethodName, in, opts)
}
