package main

import (
	"context"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/mmynk/wishlist/internal/auth"
	"github.com/mmynk/wishlist/internal/config"
	"github.com/mmynk/wishlist/internal/server"
	"github.com/mmynk/wishlist/pkg/logging"
)

func main() {
	if err := run(); err != nil {
		slog.Error("Server failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		// Logging is not configured yet; the default handler still prints.
		return err
	}

	logger := logging.Setup(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := server.OpenStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer store.Close()
	logger.Info("Storage initialized", "driver", cfg.DBDriver)

	hasher, err := auth.NewPasswordHasher(cfg.BcryptCost)
	if err != nil {
		return err
	}
	jwtManager := auth.NewJWTManager(cfg.JWTSecret, cfg.TokenTTL)
	if cfg.TokenTTL == 0 {
		logger.Warn("TOKEN_TTL is 0, issued tokens never expire")
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	handler := server.NewHandler(server.Deps{
		Store:       store,
		JWTManager:  jwtManager,
		Hasher:      hasher,
		Logger:      logger,
		Registry:    registry,
		CORSOrigins: cfg.CORSAllowedOrigins,
	})

	ln, err := net.Listen("tcp", cfg.Addr())
	if err != nil {
		return err
	}

	return server.Serve(ctx, server.New(cfg.Addr(), handler), ln, cfg.ShutdownTimeout, logger)
}
