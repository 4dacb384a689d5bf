package server

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"slices"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/reflection"
	"google.golang.org/grpc/status"

	"github.com/KevDevLee/namens-tinder/internal/auth"
	"github.com/KevDevLee/namens-tinder/internal/config"
	svcErr "github.com/KevDevLee/namens-tinder/internal/errors"
)

// Verifier turns a bearer token into the caller's claims.
type Verifier interface {
	Verify(token string) (auth.Claims, error)
}

// Registrar attaches one service implementation to the server.
type Registrar interface {
	Register(s *grpc.Server)
}

// NewGRPCServer builds a gRPC server with logging and auth interceptors and
// registers all provided services. Methods in public skip authentication.
func NewGRPCServer(log *slog.Logger, v Verifier, public []string, registrars ...Registrar) *grpc.Server {
	grpcServer := grpc.NewServer(
		grpc.ChainUnaryInterceptor(
			loggingInterceptor(log),
			authInterceptor(v, public),
		),
	)

	// register all services
	for _, r := range registrars {
		r.Register(grpcServer)
	}

	// enable reflection for easier debugging with grpcurl
	reflection.Register(grpcServer)

	return grpcServer
}

// StartGRPCServer listens on the configured address and serves until the
// server stops.
func StartGRPCServer(cfg *config.Config, grpcServer *grpc.Server) error {
	addr := fmt.Sprintf("%s:%s", cfg.GRPC.Host, cfg.GRPC.Port)
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	return grpcServer.Serve(lis)
}

func authInterceptor(v Verifier, public []string) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		if slices.Contains(public, info.FullMethod) {
			return handler(ctx, req)
		}

		md, _ := metadata.FromIncomingContext(ctx)
		values := md.Get("authorization")
		if len(values) == 0 {
			return nil, svcErr.Unauthenticated("missing bearer token")
		}
		token, ok := auth.BearerToken(values[0])
		if !ok {
			return nil, svcErr.Unauthenticated("malformed authorization header")
		}
		claims, err := v.Verify(token)
		if err != nil {
			return nil, svcErr.Map(err)
		}
		return handler(auth.WithClaims(ctx, claims), req)
	}
}

func loggingInterceptor(log *slog.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		start := time.Now()
		resp, err := handler(ctx, req)

		lvl := slog.LevelDebug
		if err != nil {
			lvl = slog.LevelWarn
		}
		log.Log(ctx, lvl, "grpc call",
			"method", info.FullMethod,
			"code", status.Code(err).String(),
			"duration", time.Since(start),
		)
		return resp, err
	}
}
