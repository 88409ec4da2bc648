package interceptor

import (
	"context"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/status"

	"rentaltoll-backend/internal/logger"
)

func LoggingUnary() grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		start := time.Now()
		resp, err := handler(ctx, req)
		code := status.Code(err)
		if err != nil {
			logger.Warn("gRPC call failed", "method", info.FullMethod, "code", code.String(), "duration", time.Since(start), "error", err)
		} else {
			logger.Debug("gRPC call", "method", info.FullMethod, "code", code.String(), "duration", time.Since(start))
		}
		return resp, err
	}
}
