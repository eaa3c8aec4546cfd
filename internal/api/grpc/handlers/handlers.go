// Package handlers provides gRPC handler functions backed by the shortener service.
package handlers

import (
	"context"
	"errors"
	"fmt"
	"time"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/danilovkiri/dk_go_pastebin/internal/config"
	serviceErrors "github.com/danilovkiri/dk_go_pastebin/internal/service/errors"
	"github.com/danilovkiri/dk_go_pastebin/internal/service/modelentry"
	"github.com/danilovkiri/dk_go_pastebin/internal/service/shortener"
	storageErrors "github.com/danilovkiri/dk_go_pastebin/internal/storage/errors"
)

const requestTimeout = 10 * time.Second

// GRPCHandler defines data structure handling and provides support for adding new implementations.
type GRPCHandler struct {
	processor    shortener.Processor
	serverConfig config.ServerConfig
}

// InitGRPCHandler initializes a GRPCHandler object and sets its attributes.
func InitGRPCHandler(processor shortener.Processor, serverConfig config.ServerConfig) (*GRPCHandler, error) {
	if processor == nil {
		return nil, fmt.Errorf("nil Shortener Service was passed to service gRPC Handler initializer")
	}
	return &GRPCHandler{processor: processor, serverConfig: serverConfig}, nil
}

// HandlePingDB checks the entry storage connection.
func (h *GRPCHandler) HandlePingDB() (*emptypb.Empty, error) {
	if err := h.processor.PingDB(); err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}
	return &emptypb.Empty{}, nil
}

// HandleShorten registers a link.
func (h *GRPCHandler) HandleShorten(ctx context.Context, request *wrapperspb.StringValue) (*structpb.Struct, error) {
	ctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()
	entry, created, err := h.processor.SubmitURL(ctx, request.GetValue())
	if err != nil {
		return nil, toStatus(err)
	}
	return h.newStruct(map[string]interface{}{
		"identifier": entry.Identifier,
		"url":        h.previewURL(entry),
		"created":    created,
	})
}

// HandlePaste stores a payload.
func (h *GRPCHandler) HandlePaste(ctx context.Context, request *wrapperspb.BytesValue) (*structpb.Struct, error) {
	ctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()
	data := request.GetValue()
	if max := h.serverConfig.MaxUploadBytes; max > 0 && int64(len(data)) > max {
		return nil, status.Errorf(codes.InvalidArgument, "payload exceeds %d bytes", max)
	}
	paste, err := h.processor.SubmitPaste(ctx, data)
	if err != nil {
		return nil, toStatus(err)
	}
	return h.newStruct(map[string]interface{}{
		"identifier": paste.Entry.Identifier,
		"url":        h.previewURL(paste.Entry),
		"raw_url":    h.rawURL(paste.Entry, paste.Type.Extension),
		"mime":       paste.Type.MIME,
		"created":    paste.Created,
	})
}

// HandleLookup resolves an identifier and counts a hit.
func (h *GRPCHandler) HandleLookup(ctx context.Context, request *wrapperspb.StringValue) (*structpb.Struct, error) {
	ctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()
	resolved, err := h.processor.Resolve(ctx, request.GetValue())
	if err != nil {
		return nil, toStatus(err)
	}
	fields := map[string]interface{}{
		"identifier": resolved.Entry.Identifier,
		"kind":       resolved.Entry.Kind.String(),
		"hits":       resolved.Entry.Hits,
	}
	switch resolved.Entry.Kind {
	case modelentry.KindURL:
		fields["target"] = resolved.Entry.Fingerprint
	case modelentry.KindPaste:
		fields["mime"] = resolved.Type.MIME
		fields["size"] = len(resolved.Data)
		fields["raw_url"] = h.rawURL(resolved.Entry, resolved.Type.Extension)
	}
	return h.newStruct(fields)
}

// HandleRaw returns the payload of a paste.
func (h *GRPCHandler) HandleRaw(ctx context.Context, request *wrapperspb.StringValue) (*wrapperspb.BytesValue, error) {
	ctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()
	resolved, err := h.processor.Resolve(ctx, request.GetValue())
	if err != nil {
		return nil, toStatus(err)
	}
	if resolved.Entry.Kind != modelentry.KindPaste {
		return nil, toStatus(&serviceErrors.UnsupportedKindError{Kind: resolved.Entry.Kind.String()})
	}
	return wrapperspb.Bytes(resolved.Data), nil
}

// HandleStats returns entry metadata without counting a hit.
func (h *GRPCHandler) HandleStats(ctx context.Context, request *wrapperspb.StringValue) (*structpb.Struct, error) {
	ctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()
	entry, err := h.processor.Stats(ctx, request.GetValue())
	if err != nil {
		return nil, toStatus(err)
	}
	return h.newStruct(map[string]interface{}{
		"identifier":  entry.Identifier,
		"kind":        entry.Kind.String(),
		"hits":        entry.Hits,
		"created_at":  entry.CreatedAt.Format(time.RFC3339),
		"modified_at": entry.ModifiedAt.Format(time.RFC3339),
		"url":         h.previewURL(entry),
	})
}

func (h *GRPCHandler) previewURL(entry modelentry.Entry) string {
	return h.serverConfig.BaseURL + "/" + entry.Identifier
}

func (h *GRPCHandler) rawURL(entry modelentry.Entry, ext string) string {
	return h.serverConfig.BaseURL + "/raw/" + entry.Identifier + ext
}

func (h *GRPCHandler) newStruct(fields map[string]interface{}) (*structpb.Struct, error) {
	s, err := structpb.NewStruct(fields)
	if err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}
	return s, nil
}

// toStatus maps service and storage errors onto gRPC status codes.
func toStatus(err error) error {
	var (
		unknown   *serviceErrors.UnknownIdentifierError
		removed   *serviceErrors.ContentRemovedError
		exhausted *serviceErrors.AllocationExhaustedError
		kind      *serviceErrors.UnsupportedKindError
		badURL    *serviceErrors.ServiceIncorrectInputURL
		empty     *serviceErrors.EmptyPayloadError
		timeout   *storageErrors.ContextTimeoutExceededError
	)
	switch {
	case errors.As(err, &unknown):
		return status.Error(codes.NotFound, err.Error())
	case errors.As(err, &removed):
		st, detailErr := status.New(codes.NotFound, err.Error()).WithDetails(wrapperspb.String("content removed"))
		if detailErr != nil {
			return status.Error(codes.NotFound, err.Error())
		}
		return st.Err()
	case errors.As(err, &exhausted):
		return status.Error(codes.ResourceExhausted, err.Error())
	case errors.As(err, &kind), errors.As(err, &badURL), errors.As(err, &empty):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.As(err, &timeout), errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, err.Error())
	}
	return status.Error(codes.Internal, err.Error())
}
