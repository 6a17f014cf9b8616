package ledger

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	pb "github.com/light-bringer/provenance-ledger/api/ledger/v1"
	"github.com/light-bringer/provenance-ledger/internal/platform/auth"
)

// RequestIDKey is the metadata key carrying the request id.
const RequestIDKey = "x-request-id"

// AuthInterceptor verifies the bearer token and stores the caller identity in the context.
// A token that fails verification is rejected on every method. Calls without a token
// are rejected on mutating methods and served anonymously on reads.
func AuthInterceptor(tokens *auth.TokenService) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		var header string
		if md, ok := metadata.FromIncomingContext(ctx); ok {
			if values := md.Get("authorization"); len(values) > 0 {
				header = values[0]
			}
		}

		identity, err := tokens.Verify(auth.BearerToken(header))
		switch {
		case err == nil:
			ctx = auth.WithIdentity(ctx, identity)
		case !errors.Is(err, auth.ErrMissingToken):
			return nil, status.Error(codes.Unauthenticated, "invalid bearer token")
		case pb.MutatingMethods[info.FullMethod]:
			return nil, status.Error(codes.Unauthenticated, "bearer token required")
		}

		return handler(ctx, req)
	}
}

// LoggingInterceptor assigns a request id and logs every call with its outcome.
func LoggingInterceptor(logger *slog.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		requestID := ""
		if md, ok := metadata.FromIncomingContext(ctx); ok {
			if values := md.Get(RequestIDKey); len(values) > 0 {
				requestID = values[0]
			}
		}
		if requestID == "" {
			requestID = uuid.NewString()
		}
		_ = grpc.SetHeader(ctx, metadata.Pairs(RequestIDKey, requestID))

		start := time.Now()
		resp, err := handler(ctx, req)

		code := status.Code(err)
		level := slog.LevelInfo
		if code == codes.Internal || code == codes.Unknown {
			level = slog.LevelError
		}
		logger.Log(ctx, level, "grpc request",
			slog.String("method", info.FullMethod),
			slog.String("request_id", requestID),
			slog.String("code", code.String()),
			slog.Duration("elapsed", time.Since(start)),
		)
		return resp, err
	}
}
