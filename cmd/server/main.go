package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"github.com/go-telegram/bot"
	"github.com/reshetovitsme/lead-notifier/internal/di"
	uploadService "github.com/reshetovitsme/lead-notifier/internal/modules/upload/service"
	"github.com/reshetovitsme/lead-notifier/internal/shared/config"
	httpServer "github.com/reshetovitsme/lead-notifier/internal/transport/http"
	"github.com/samber/do/v2"
	slogmulti "github.com/samber/slog-multi"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 10 * time.Second

func main() {
	level := new(slog.LevelVar)
	level.Set(slog.LevelInfo)

	// Setup structured logging with multiple handlers using slog-multi
	textHandler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	})
	jsonHandler := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelError,
	})

	// Use Fanout to send logs to both handlers
	logger := slog.New(slogmulti.Fanout(textHandler, jsonHandler))
	slog.SetDefault(logger)

	// Setup dependency injection
	injector, err := di.Setup()
	if err != nil {
		slog.Error("Failed to setup dependency injection", "error", err)
		os.Exit(1)
	}

	cfg, err := do.Invoke[*config.Config](injector)
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}
	if cfg.Debug() {
		level.Set(slog.LevelDebug)
	}

	server := do.MustInvoke[*httpServer.Server](injector)
	uploads := do.MustInvoke[*uploadService.Service](injector)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return server.Start()
	})

	g.Go(func() error {
		uploads.RunSweeper(gctx, cfg.UploadSweepInterval())
		return nil
	})

	if cfg.BotCommandsEnabled {
		b, err := do.Invoke[*bot.Bot](injector)
		if err != nil {
			slog.Warn("Operator bot not started", "error", err)
		} else {
			g.Go(func() error {
				b.Start(gctx)
				return nil
			})
		}
	}

	slog.Info("Application started",
		"port", cfg.HTTPPort,
		"env", cfg.AppEnv,
		"telegram_configured", cfg.TelegramConfigured(),
	)
	slog.Info("Press Ctrl+C to stop")

	g.Go(func() error {
		<-gctx.Done()
		slog.Info("Shutting down...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return di.Shutdown(shutdownCtx, injector)
	})

	if err := g.Wait(); err != nil {
		slog.Error("Server stopped with error", "error", err)
		os.Exit(1)
	}
}
