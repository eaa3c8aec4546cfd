// Package pastebinpb describes the pastebin.v1.Pastebin gRPC service. Requests and responses are
// protobuf well-known types so no generated message code is needed.
package pastebinpb

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// ServiceName is the fully qualified service name.
const ServiceName = "pastebin.v1.Pastebin"

// Full method names.
const (
	Pastebin_Shorten_FullMethodName = "/pastebin.v1.Pastebin/Shorten"
	Pastebin_Paste_FullMethodName   = "/pastebin.v1.Pastebin/Paste"
	Pastebin_Lookup_FullMethodName  = "/pastebin.v1.Pastebin/Lookup"
	Pastebin_Raw_FullMethodName     = "/pastebin.v1.Pastebin/Raw"
	Pastebin_Stats_FullMethodName   = "/pastebin.v1.Pastebin/Stats"
	Pastebin_Ping_FullMethodName    = "/pastebin.v1.Pastebin/Ping"
)

// PastebinClient is the client API for the Pastebin service.
type PastebinClient interface {
	// Shorten registers a link and returns its entry.
	Shorten(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (*structpb.Struct, error)
	// Paste stores a payload and returns its entry.
	Paste(ctx context.Context, in *wrapperspb.BytesValue, opts ...grpc.CallOption) (*structpb.Struct, error)
	// Lookup resolves an identifier and counts a hit.
	Lookup(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (*structpb.Struct, error)
	// Raw returns the payload of a paste and counts a hit.
	Raw(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (*wrapperspb.BytesValue, error)
	// Stats returns entry metadata without counting a hit.
	Stats(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (*structpb.Struct, error)
	// Ping checks the entry storage connection.
	Ping(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*emptypb.Empty, error)
}

type pastebinClient struct {
	cc grpc.ClientConnInterface
}

// NewPastebinClient creates a client on top of cc.
func NewPastebinClient(cc grpc.ClientConnInterface) PastebinClient {
	return &pastebinClient{cc}
}

func (c *pastebinClient) Shorten(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, Pastebin_Shorten_FullMethodName, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *pastebinClient) Paste(ctx context.Context, in *wrapperspb.BytesValue, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, Pastebin_Paste_FullMethodName, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *pastebinClient) Lookup(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, Pastebin_Lookup_FullMethodName, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *pastebinClient) Raw(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (*wrapperspb.BytesValue, error) {
	out := new(wrapperspb.BytesValue)
	if err := c.cc.Invoke(ctx, Pastebin_Raw_FullMethodName, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *pastebinClient) Stats(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, Pastebin_Stats_FullMethodName, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *pastebinClient) Ping(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*emptypb.Empty, error) {
	out := new(emptypb.Empty)
	if err := c.cc.Invoke(ctx, Pastebin_Ping_FullMethodName, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

// PastebinServer is the server API for the Pastebin service. Implementations must embed
// UnimplementedPastebinServer.
type PastebinServer interface {
	Shorten(context.Context, *wrapperspb.StringValue) (*structpb.Struct, error)
	Paste(context.Context, *wrapperspb.BytesValue) (*structpb.Struct, error)
	Lookup(context.Context, *wrapperspb.StringValue) (*structpb.Struct, error)
	Raw(context.Context, *wrapperspb.StringValue) (*wrapperspb.BytesValue, error)
	Stats(context.Context, *wrapperspb.StringValue) (*structpb.Struct, error)
	Ping(context.Context, *emptypb.Empty) (*emptypb.Empty, error)
	mustEmbedUnimplementedPastebinServer()
}

// UnimplementedPastebinServer answers every method with codes.Unimplemented.
type UnimplementedPastebinServer struct{}

func (UnimplementedPastebinServer) Shorten(context.Context, *wrapperspb.StringValue) (*structpb.Struct, error) {
	return nil, status.Errorf(codes.Unimplemented, "method Shorten not implemented")
}
func (UnimplementedPastebinServer) Paste(context.Context, *wrapperspb.BytesValue) (*structpb.Struct, error) {
	return nil, status.Errorf(codes.Unimplemented, "method Paste not implemented")
}
func (UnimplementedPastebinServer) Lookup(context.Context, *wrapperspb.StringValue) (*structpb.Struct, error) {
	return nil, status.Errorf(codes.Unimplemented, "method Lookup not implemented")
}
func (UnimplementedPastebinServer) Raw(context.Context, *wrapperspb.StringValue) (*wrapperspb.BytesValue, error) {
	return nil, status.Errorf(codes.Unimplemented, "method Raw not implemented")
}
func (UnimplementedPastebinServer) Stats(context.Context, *wrapperspb.StringValue) (*structpb.Struct, error) {
	return nil, status.Errorf(codes.Unimplemented, "method Stats not implemented")
}
func (UnimplementedPastebinServer) Ping(context.Context, *emptypb.Empty) (*emptypb.Empty, error) {
	return nil, status.Errorf(codes.Unimplemented, "method Ping not implemented")
}
func (UnimplementedPastebinServer) mustEmbedUnimplementedPastebinServer() {}

// RegisterPastebinServer registers srv on s.
func RegisterPastebinServer(s grpc.ServiceRegistrar, srv PastebinServer) {
	s.RegisterService(&Pastebin_ServiceDesc, srv)
}

func _Pastebin_Shorten_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(wrapperspb.StringValue)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(PastebinServer).Shorten(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: Pastebin_Shorten_FullMethodName}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(PastebinServer).Shorten(ctx, req.(*wrapperspb.StringValue))
	}
	return interceptor(ctx, in, info, handler)
}

func _Pastebin_Paste_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(wrapperspb.BytesValue)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(PastebinServer).Paste(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: Pastebin_Paste_FullMethodName}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(PastebinServer).Paste(ctx, req.(*wrapperspb.BytesValue))
	}
	return interceptor(ctx, in, info, handler)
}

func _Pastebin_Lookup_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(wrapperspb.StringValue)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(PastebinServer).Lookup(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: Pastebin_Lookup_FullMethodName}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(PastebinServer).Lookup(ctx, req.(*wrapperspb.StringValue))
	}
	return interceptor(ctx, in, info, handler)
}

func _Pastebin_Raw_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(wrapperspb.StringValue)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(PastebinServer).Raw(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: Pastebin_Raw_FullMethodName}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(PastebinServer).Raw(ctx, req.(*wrapperspb.StringValue))
	}
	return interceptor(ctx, in, info, handler)
}

func _Pastebin_Stats_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(wrapperspb.StringValue)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(PastebinServer).Stats(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: Pastebin_Stats_FullMethodName}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(PastebinServer).Stats(ctx, req.(*wrapperspb.StringValue))
	}
	return interceptor(ctx, in, info, handler)
}

func _Pastebin_Ping_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(emptypb.Empty)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(PastebinServer).Ping(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: Pastebin_Ping_FullMethodName}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(PastebinServer).Ping(ctx, req.(*emptypb.Empty))
	}
	return interceptor(ctx, in, info, handler)
}

// Pastebin_ServiceDesc is the grpc.ServiceDesc for the Pastebin service.
var Pastebin_ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*PastebinServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Shorten", Handler: _Pastebin_Shorten_Handler},
		{MethodName: "Paste", Handler: _Pastebin_Paste_Handler},
		{MethodName: "Lookup", Handler: _Pastebin_Lookup_Handler},
		{MethodName: "Raw", Handler: _Pastebin_Raw_Handler},
		{MethodName: "Stats", Handler: _Pastebin_Stats_Handler},
		{MethodName: "Ping", Handler: _Pastebin_Ping_Handler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "pastebin/v1/pastebin.proto",
}
