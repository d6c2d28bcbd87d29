package di

import (
	"context"
	"log/slog"

	"github.com/go-playground/validator/v10"
	"github.com/go-telegram/bot"
	feedDomain "github.com/reshetovitsme/lead-notifier/internal/modules/feed/domain"
	feedService "github.com/reshetovitsme/lead-notifier/internal/modules/feed/service"
	leadService "github.com/reshetovitsme/lead-notifier/internal/modules/lead/service"
	notifyRepo "github.com/reshetovitsme/lead-notifier/internal/modules/notify/repository"
	notifyService "github.com/reshetovitsme/lead-notifier/internal/modules/notify/service"
	uploadRepo "github.com/reshetovitsme/lead-notifier/internal/modules/upload/repository"
	uploadService "github.com/reshetovitsme/lead-notifier/internal/modules/upload/service"
	userRepo "github.com/reshetovitsme/lead-notifier/internal/modules/user/repository"
	userService "github.com/reshetovitsme/lead-notifier/internal/modules/user/service"
	"github.com/reshetovitsme/lead-notifier/internal/shared/config"
	"github.com/reshetovitsme/lead-notifier/internal/shared/errors"
	httpServer "github.com/reshetovitsme/lead-notifier/internal/transport/http"
	telegramHandler "github.com/reshetovitsme/lead-notifier/internal/transport/telegram"
	"github.com/samber/do/v2"
	"github.com/samber/oops"
)

// Setup initializes the dependency injection container
func Setup() (do.Injector, error) {
	injector := do.New()

	// Register Config
	do.Provide(injector, func(i do.Injector) (*config.Config, error) {
		cfg, err := config.Load()
		if err != nil {
			return nil, oops.With("context", "failed to load config").Wrap(err)
		}
		return cfg, nil
	})

	ProvideServices(injector)
	return injector, nil
}

// ProvideServices registers everything that depends on the config. The
// config itself must already be provided.
func ProvideServices(injector do.Injector) {
	// Register Delivery Journal
	do.Provide(injector, func(i do.Injector) (notifyRepo.Repository, error) {
		cfg := do.MustInvoke[*config.Config](i)
		repo, err := notifyRepo.NewFileStorage(cfg.StoragePath)
		if err != nil {
			return nil, oops.With("storage_path", cfg.StoragePath, "context", "failed to initialize delivery journal").Wrap(err)
		}
		return repo, nil
	})

	// Register Upload Repository
	do.Provide(injector, func(i do.Injector) (uploadRepo.Repository, error) {
		cfg := do.MustInvoke[*config.Config](i)
		repo, err := uploadRepo.NewFileStorage(cfg.StoragePath)
		if err != nil {
			return nil, oops.With("storage_path", cfg.StoragePath, "context", "failed to initialize upload repository").Wrap(err)
		}
		return repo, nil
	})

	// Register User Repository
	do.Provide(injector, func(i do.Injector) (userRepo.Repository, error) {
		cfg := do.MustInvoke[*config.Config](i)
		repo, err := userRepo.NewFileStorage(cfg.StoragePath)
		if err != nil {
			return nil, oops.With("storage_path", cfg.StoragePath, "context", "failed to initialize user repository").Wrap(err)
		}
		return repo, nil
	})

	// Register Upload Service
	do.Provide(injector, func(i do.Injector) (*uploadService.Service, error) {
		cfg := do.MustInvoke[*config.Config](i)
		repo := do.MustInvoke[uploadRepo.Repository](i)
		svc := uploadService.New(cfg, repo)
		svc.SetLogger(slog.Default().With("component", "uploads"))
		return svc, nil
	})

	// Register Notifier
	do.Provide(injector, func(i do.Injector) (*notifyService.Service, error) {
		cfg := do.MustInvoke[*config.Config](i)
		uploads := do.MustInvoke[*uploadService.Service](i)
		journal := do.MustInvoke[notifyRepo.Repository](i)

		notifier := notifyService.New(cfg, uploads, journal)
		notifier.SetLogger(slog.Default().With("component", "notifier"))
		if !cfg.TelegramConfigured() {
			slog.Warn("Telegram notifier disabled", "error", errors.ErrNotConfigured)
		}
		return notifier, nil
	})

	// Register Lead Service
	do.Provide(injector, func(i do.Injector) (*leadService.Service, error) {
		notifier := do.MustInvoke[*notifyService.Service](i)
		uploads := do.MustInvoke[*uploadService.Service](i)

		svc := leadService.New(notifier, uploads, validator.New())
		svc.SetLogger(slog.Default().With("component", "leads"))
		return svc, nil
	})

	// Register User Service
	do.Provide(injector, func(i do.Injector) (*userService.Service, error) {
		cfg := do.MustInvoke[*config.Config](i)
		repo := do.MustInvoke[userRepo.Repository](i)
		return userService.New(repo, cfg.AllowedUsers), nil
	})

	// Register Feed Service
	do.Provide(injector, func(i do.Injector) (*feedService.Service, error) {
		journal := do.MustInvoke[notifyRepo.Repository](i)
		return feedService.New(feedDomain.DefaultFeedConfig(), journal), nil
	})

	// Register Telegram Handler
	do.Provide(injector, func(i do.Injector) (*telegramHandler.Handler, error) {
		cfg := do.MustInvoke[*config.Config](i)
		users := do.MustInvoke[*userService.Service](i)
		journal := do.MustInvoke[notifyRepo.Repository](i)

		handler := telegramHandler.New(cfg, users, journal)
		handler.SetLogger(slog.Default().With("component", "bot"))
		return handler, nil
	})

	// Register HTTP Server
	do.Provide(injector, func(i do.Injector) (*httpServer.Server, error) {
		cfg := do.MustInvoke[*config.Config](i)
		leads := do.MustInvoke[*leadService.Service](i)
		uploads := do.MustInvoke[*uploadService.Service](i)
		feeds := do.MustInvoke[*feedService.Service](i)

		server := httpServer.New(cfg, leads, uploads, feeds)
		server.SetLogger(slog.Default())
		return server, nil
	})

	// Register Bot, only when operator commands are enabled
	do.Provide(injector, func(i do.Injector) (*bot.Bot, error) {
		cfg := do.MustInvoke[*config.Config](i)
		if !cfg.BotCommandsEnabled || cfg.TelegramBotToken == "" {
			return nil, errors.ErrBotDisabled
		}
		handler := do.MustInvoke[*telegramHandler.Handler](i)

		opts := []bot.Option{
			bot.WithDefaultHandler(handler.HandleUpdate),
			bot.WithServerURL(cfg.TelegramAPIURL),
		}

		b, err := bot.New(cfg.TelegramBotToken, opts...)
		if err != nil {
			return nil, oops.With("context", "failed to create telegram bot").Wrap(err)
		}

		handler.RegisterCommands(b)
		return b, nil
	})
}

// Shutdown gracefully shuts down all services. The bot stops with the
// context passed to its Start.
func Shutdown(ctx context.Context, injector do.Injector) error {
	if server, err := do.Invoke[*httpServer.Server](injector); err == nil && server != nil {
		if err := server.Shutdown(ctx); err != nil {
			return oops.With("context", "failed to stop http server").Wrap(err)
		}
	}

	return nil
}
