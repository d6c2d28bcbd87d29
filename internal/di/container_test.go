package di

import (
	"context"
	"testing"
	"time"

	"github.com/go-telegram/bot"
	"github.com/samber/do/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	leadService "github.com/reshetovitsme/lead-notifier/internal/modules/lead/service"
	notifyService "github.com/reshetovitsme/lead-notifier/internal/modules/notify/service"
	"github.com/reshetovitsme/lead-notifier/internal/shared/config"
	"github.com/reshetovitsme/lead-notifier/internal/shared/errors"
	httpServer "github.com/reshetovitsme/lead-notifier/internal/transport/http"
	telegramHandler "github.com/reshetovitsme/lead-notifier/internal/transport/telegram"
)

func testInjector(t *testing.T, cfg *config.Config) do.Injector {
	t.Helper()
	injector := do.New()
	do.ProvideValue(injector, cfg)
	ProvideServices(injector)
	return injector
}

func TestProvideServices_ResolvesGraph(t *testing.T) {
	injector := testInjector(t, &config.Config{
		TimeZone:       "UTC",
		RequestTimeout: time.Second,
		MaxUploadBytes: 1024,
		StoragePath:    t.TempDir(),
	})

	_, err := do.Invoke[*notifyService.Service](injector)
	require.NoError(t, err)
	_, err = do.Invoke[*leadService.Service](injector)
	require.NoError(t, err)
	_, err = do.Invoke[*telegramHandler.Handler](injector)
	require.NoError(t, err)
	_, err = do.Invoke[*httpServer.Server](injector)
	require.NoError(t, err)

	assert.NoError(t, Shutdown(context.Background(), injector))
}

func TestProvideServices_BotDisabled(t *testing.T) {
	injector := testInjector(t, &config.Config{
		TelegramBotToken:   "123:abc",
		BotCommandsEnabled: false,
		StoragePath:        t.TempDir(),
	})

	_, err := do.Invoke[*bot.Bot](injector)
	assert.ErrorContains(t, err, errors.ErrBotDisabled.Error())
}
