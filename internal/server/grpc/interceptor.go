package grpc

import (
	"context"
	"time"

	"github.com/Chris-Obeng/talkflo-app1/internal/logging"
	"google.golang.org/grpc"
	"google.golang.org/grpc/status"
)

// loggingInterceptor logs every unary call with its outcome code.
func loggingInterceptor(log logging.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		start := time.Now()
		resp, err := handler(ctx, req)

		args := []any{
			"method", info.FullMethod,
			"code", status.Code(err).String(),
			"latency", time.Since(start),
		}
		if err != nil {
			log.Warn(ctx, "grpc call", append(args, "error", err)...)
			return resp, err
		}
		log.Debug(ctx, "grpc call", args...)
		return resp, nil
	}
}
