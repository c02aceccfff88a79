package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/Tyrowin/gochat/internal/auth"
	"github.com/Tyrowin/gochat/internal/config"
	"github.com/Tyrowin/gochat/internal/log"
	"github.com/Tyrowin/gochat/internal/server"
	"github.com/Tyrowin/gochat/internal/upload"
)

func main() {
	configPath := flag.String("config", "./config", "directory containing config.yaml")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.L().Fatal().Err(err).Msg("failed to load configuration")
	}

	log.Init(cfg.Log)
	logger := log.L()

	gate, err := auth.NewGate(cfg.Auth)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize moderator gate")
	}
	if cfg.Auth.JWTSecret == "" {
		logger.Warn().Msg("auth.jwt_secret not set; moderator sessions will not survive a restart")
	}

	ctx, cancel := context.WithCancel(log.WithLogger(context.Background(), *logger))
	defer cancel()

	store, err := upload.Open(ctx, cfg.Upload)
	if err != nil {
		logger.Fatal().Err(err).Str("backend", cfg.Upload.Backend).Msg("failed to open upload store")
	}
	go store.Run(ctx)

	srv := server.New(cfg.Server, gate, server.WithUploads(store))
	srv.Start()

	ln, err := server.Listen(srv.Config())
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to bind listener")
	}

	httpServer := server.CreateServer(ln.Addr().String(), srv.SetupRoutes())

	go func() {
		if err := server.StartServer(httpServer, ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	logger.Info().Str("signal", sig.String()).Msg("shutting down")

	timeout := srv.Config().ShutdownTimeout
	if err := server.ShutdownServer(httpServer, timeout); err != nil {
		logger.Error().Err(err).Msg("HTTP server forced to shut down")
	}
	if err := srv.Hub().Shutdown(timeout); err != nil {
		logger.Error().Err(err).Msg("hub shutdown incomplete")
	}
	cancel()

	logger.Info().Msg("server stopped")
}
