// Package grpc provides functionality for initializing a gRPC server for the pastebin service.
package grpc

import (
	"context"
	"log/slog"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/danilovkiri/dk_go_pastebin/internal/api/grpc/handlers"
	"github.com/danilovkiri/dk_go_pastebin/internal/api/grpc/interceptors"
	pb "github.com/danilovkiri/dk_go_pastebin/internal/api/grpc/pastebinpb"
	"github.com/danilovkiri/dk_go_pastebin/internal/config"
	"github.com/danilovkiri/dk_go_pastebin/internal/metrics"
	"github.com/danilovkiri/dk_go_pastebin/internal/service/shortener"
)

// PastebinServer defines server methods and attributes.
type PastebinServer struct {
	pb.UnimplementedPastebinServer
	grpcHandler *handlers.GRPCHandler
}

// InitServer returns a PastebinServer object ready to be registered.
func InitServer(processor shortener.Processor, cfg config.ServerConfig) (*PastebinServer, error) {
	grpcHandler, err := handlers.InitGRPCHandler(processor, cfg)
	if err != nil {
		return nil, err
	}
	return &PastebinServer{grpcHandler: grpcHandler}, nil
}

// NewGRPCServer creates a gRPC server with srv registered and logging, metrics and recovery
// interceptors installed.
func NewGRPCServer(srv *PastebinServer, cfg config.ServerConfig, log *slog.Logger, m *metrics.Metrics) *grpc.Server {
	opts := []grpc.ServerOption{
		grpc.ChainUnaryInterceptor(interceptors.UnaryRecovery(log), interceptors.UnaryLogging(log, m)),
	}
	if cfg.MaxUploadBytes > 0 {
		opts = append(opts, grpc.MaxRecvMsgSize(int(cfg.MaxUploadBytes)+1<<10))
	}
	s := grpc.NewServer(opts...)
	pb.RegisterPastebinServer(s, srv)
	return s
}

// Shorten is a gRPC method registering a link.
func (s *PastebinServer) Shorten(ctx context.Context, request *wrapperspb.StringValue) (*structpb.Struct, error) {
	return s.grpcHandler.HandleShorten(ctx, request)
}

// Paste is a gRPC method storing a payload.
func (s *PastebinServer) Paste(ctx context.Context, request *wrapperspb.BytesValue) (*structpb.Struct, error) {
	return s.grpcHandler.HandlePaste(ctx, request)
}

// Lookup is a gRPC method resolving an identifier.
func (s *PastebinServer) Lookup(ctx context.Context, request *wrapperspb.StringValue) (*structpb.Struct, error) {
	return s.grpcHandler.HandleLookup(ctx, request)
}

// Raw is a gRPC method returning the payload of a paste.
func (s *PastebinServer) Raw(ctx context.Context, request *wrapperspb.StringValue) (*wrapperspb.BytesValue, error) {
	return s.grpcHandler.HandleRaw(ctx, request)
}

// Stats is a gRPC method returning entry metadata.
func (s *PastebinServer) Stats(ctx context.Context, request *wrapperspb.StringValue) (*structpb.Struct, error) {
	return s.grpcHandler.HandleStats(ctx, request)
}

// Ping is a gRPC method checking the entry storage connection.
func (s *PastebinServer) Ping(_ context.Context, _ *emptypb.Empty) (*emptypb.Empty, error) {
	return s.grpcHandler.HandlePingDB()
}
