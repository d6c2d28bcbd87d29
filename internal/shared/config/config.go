package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/samber/lo"
	"github.com/samber/oops"
)

type Config struct {
	TelegramBotToken   string        `koanf:"telegram_bot_token"`
	TelegramChatID     string        `koanf:"telegram_chat_id"`
	TelegramAPIURL     string        `koanf:"telegram_api_url"`
	TimeZone           string        `koanf:"timezone"`
	RequestTimeout     time.Duration `koanf:"request_timeout"`
	RatePerSec         float64       `koanf:"rate_per_sec"`
	StoragePath        string        `koanf:"storage_path"`
	HTTPPort           string        `koanf:"http_port"`
	MaxUploadBytes     int64         `koanf:"max_upload_bytes"`
	UploadTTL          time.Duration `koanf:"upload_ttl"`
	AllowedUsers       []int64       `koanf:"allowed_users"`
	BotCommandsEnabled bool          `koanf:"bot_commands_enabled"`
	AppEnv             AppEnv        `koanf:"app_env"`
}

// TelegramConfigured reports whether both the bot token and the chat id are set.
func (c *Config) TelegramConfigured() bool {
	return c.TelegramBotToken != "" && c.TelegramChatID != ""
}

// UploadSweepInterval is how often expired uploads are looked for: a quarter
// of upload_ttl, at least once a minute.
func (c *Config) UploadSweepInterval() time.Duration {
	return max(c.UploadTTL/4, time.Minute)
}

// Debug reports whether verbose logging should be enabled.
func (c *Config) Debug() bool {
	return c.AppEnv == AppEnvLocal || c.AppEnv == AppEnvDevelopment
}

func Load() (*Config, error) {
	k := koanf.New(".")

	// Try to load config file from various formats
	configFiles := []string{
		"config.yaml",
		"config.yml",
		"config.json",
		"config.toml",
	}

	configFile, found := lo.Find(configFiles, func(file string) bool {
		_, err := os.Stat(file)
		return err == nil
	})

	if found {
		var parser koanf.Parser
		ext := filepath.Ext(configFile)

		switch ext {
		case ".yaml", ".yml":
			parser = yaml.Parser()
		case ".json":
			parser = json.Parser()
		case ".toml":
			parser = toml.Parser()
		default:
			return nil, oops.Errorf("unsupported config file extension: %s", ext)
		}

		if err := k.Load(file.Provider(configFile), parser); err != nil {
			return nil, oops.With("config_file", configFile).Wrap(err)
		}
	}

	// Environment variables override config file values:
	// TELEGRAM_BOT_TOKEN -> telegram_bot_token
	if err := k.Load(env.Provider("", ".", func(s string) string {
		return strings.ToLower(s)
	}), nil); err != nil {
		return nil, oops.With("context", "loading environment variables").Wrap(err)
	}

	defaults := map[string]any{
		"telegram_api_url": "https://api.telegram.org",
		"timezone":         "America/New_York",
		"request_timeout":  "15s",
		"rate_per_sec":     0,
		"storage_path":     "./data",
		"http_port":        "8080",
		"max_upload_bytes": 20 << 20,
		"upload_ttl":       "6h",
		"app_env":          "production",
	}
	for key, value := range defaults {
		if !k.Exists(key) {
			k.Set(key, value)
		}
	}

	// allowed_users is parsed by hand below; a comma separated env value
	// would otherwise trip the decoder.
	allowedUsers := k.Get("allowed_users")
	k.Delete("allowed_users")

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, oops.With("context", "unmarshaling config").Wrap(err)
	}

	switch v := allowedUsers.(type) {
	case string:
		cfg.AllowedUsers = ParseAllowedUsers(v)
	case []interface{}:
		cfg.AllowedUsers = lo.FilterMap(v, func(item interface{}, _ int) (int64, bool) {
			switch val := item.(type) {
			case int64:
				return val, true
			case int:
				return int64(val), true
			case float64:
				return int64(val), true
			case string:
				ids := ParseAllowedUsers(val)
				return lo.FirstOr(ids, 0), len(ids) == 1
			default:
				return 0, false
			}
		})
	}

	if appEnv, err := ParseAppEnv(k.String("app_env")); err == nil {
		cfg.AppEnv = appEnv
	} else {
		cfg.AppEnv = AppEnvProduction
	}

	if cfg.RequestTimeout <= 0 {
		return nil, oops.With("request_timeout", cfg.RequestTimeout).Errorf("request_timeout must be positive")
	}
	if cfg.UploadTTL <= 0 {
		return nil, oops.With("upload_ttl", cfg.UploadTTL).Errorf("upload_ttl must be positive")
	}
	if cfg.MaxUploadBytes <= 0 {
		return nil, oops.With("max_upload_bytes", cfg.MaxUploadBytes).Errorf("max_upload_bytes must be positive")
	}

	// A missing token or chat id is not fatal: the notifier degrades to a
	// logged no-op.
	return &cfg, nil
}

// ParseAllowedUsers parses comma-separated user IDs string into []int64
func ParseAllowedUsers(s string) []int64 {
	if s == "" {
		return []int64{}
	}
	parts := strings.Split(s, ",")
	return lo.FilterMap(parts, func(part string, _ int) (int64, bool) {
		part = strings.TrimSpace(part)
		if part == "" {
			return 0, false
		}
		var id int64
		if _, err := fmt.Sscanf(part, "%d", &id); err == nil {
			return id, true
		}
		return 0, false
	})
}
