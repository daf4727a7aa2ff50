package interceptor

import (
	"context"
	"time"

	"github.com/google/uuid"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"ev-rental-ledger/internal/logger"
)

// RequestIDHeader carries the request id in both directions.
const RequestIDHeader = "x-request-id"

type RequestInterceptor struct {
	newID func() string
}

func NewRequestInterceptor() *RequestInterceptor {
	return &RequestInterceptor{newID: uuid.NewString}
}

// Unary tags each call with a request id, logs its outcome and turns panics into codes.Internal.
func (i *RequestInterceptor) Unary() grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (resp interface{}, err error) {
		requestID := i.requestID(ctx)
		ctx = logger.WithRequestID(ctx, requestID)
		_ = grpc.SetHeader(ctx, metadata.Pairs(RequestIDHeader, requestID))

		started := time.Now()
		defer func() {
			if r := recover(); r != nil {
				logger.ErrorContext(ctx, "gRPC handler panicked", "method", info.FullMethod, "panic", r)
				resp, err = nil, status.Error(codes.Internal, "internal error")
			}

			code := status.Code(err)
			args := []any{"method", info.FullMethod, "code", code.String(), "duration", time.Since(started)}
			switch code {
			case codes.OK:
				logger.InfoContext(ctx, "gRPC call", args...)
			case codes.Internal, codes.Unknown, codes.DataLoss, codes.Unavailable:
				logger.ErrorContext(ctx, "gRPC call failed", append(args, "error", err)...)
			default:
				logger.WarnContext(ctx, "gRPC call rejected", append(args, "error", err)...)
			}
		}()

		return handler(ctx, req)
	}
}

func (i *RequestInterceptor) requestID(ctx context.Context) string {
	if md, ok := metadata.FromIncomingContext(ctx); ok {
		if ids := md.Get(RequestIDHeader); len(ids) > 0 && ids[0] != "" {
			return ids[0]
		}
	}
	return i.newID()
}
