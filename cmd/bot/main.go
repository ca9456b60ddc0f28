package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"

	"prBot/internal/app/runtime"
	"prBot/internal/infrastructure/config"
	"prBot/internal/infrastructure/logging"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	boot := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	cfg, err := config.Load()
	if err != nil {
		boot.Fatal().Err(err).Msg("configuration error")
	}

	logger, err := logging.New(logging.Options{Level: cfg.LogLevel, File: cfg.LogFile})
	if err != nil {
		boot.Fatal().Err(err).Msg("logger setup failed")
	}
	defer logger.Close()

	run, err := runtime.Start(ctx, runtime.Options{Config: cfg, Logger: logger.Logger})
	if err != nil {
		logger.Fatal().Err(err).Msg("startup failed")
	}
	logger.Info().Msg("bot started")

	<-ctx.Done()

	if err := run.Stop(); err != nil {
		logger.Error().Err(err).Msg("shutdown error")
	}
	logger.Info().Msg("bot stopped")
}
