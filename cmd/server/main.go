package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/KevDevLee/namens-tinder/internal/app"
	"github.com/KevDevLee/namens-tinder/internal/auth"
	"github.com/KevDevLee/namens-tinder/internal/cache"
	"github.com/KevDevLee/namens-tinder/internal/config"
	"github.com/KevDevLee/namens-tinder/internal/db"
	"github.com/KevDevLee/namens-tinder/internal/logger"
	"github.com/KevDevLee/namens-tinder/internal/server"
	"github.com/KevDevLee/namens-tinder/internal/service/picker"
)

func main() {
	cfg := config.New()

	// Init logger (global singleton)
	logger.InitFromConfig(cfg)
	log := logger.L()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Init DB
	database, err := db.NewDB(cfg)
	if err != nil {
		log.Error("failed to init db", "err", err)
		os.Exit(1)
	}

	// Init Redis
	redisCache := cache.NewRedisCache(cfg)
	if err := redisCache.Ping(ctx); err != nil {
		log.Error("failed to connect to redis", "err", err)
		os.Exit(1)
	}
	defer redisCache.Close()

	if cfg.App.ENV == "development" {
		if err := db.SeedTestData(database); err != nil {
			log.Error("failed to seed", "err", err)
		}
	}

	appCtx := app.New(cfg, database, redisCache, log)

	// One instance of each service backs both transports; swipe sessions
	// live in the picker service.
	authSvc := auth.NewService(appCtx)
	pickerSvc := picker.NewService(appCtx)

	grpcServer := server.NewGRPCServer(log, authSvc, picker.PublicMethods,
		picker.NewRegistrar(pickerSvc, authSvc),
	)
	router := server.NewRouter(pickerSvc, authSvc, log)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("starting gRPC server", "addr", cfg.GRPC.Host+":"+cfg.GRPC.Port)
		return server.StartGRPCServer(cfg, grpcServer)
	})
	g.Go(func() error {
		log.Info("starting HTTP server", "addr", cfg.HTTP.Host+":"+cfg.HTTP.Port)
		return server.StartHTTPServer(gctx, cfg, router.Setup())
	})
	g.Go(func() error {
		<-gctx.Done()
		grpcServer.GracefulStop()
		return nil
	})

	if err := g.Wait(); err != nil {
		log.Error("server stopped", "err", err)
		os.Exit(1)
	}
	log.Info("shutdown complete")
}
