package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	// Core
	DatabaseURL string `env:"DATABASE_URL,required"`
	HTTPAddr    string `env:"HTTP_ADDR" envDefault:":8080"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`

	// Telegram bot: disabled when the token is empty
	BotToken           string  `env:"BOT_TOKEN"`
	DropPendingUpdates bool    `env:"BOT_DROP_PENDING_UPDATES" envDefault:"false"`
	AdminTelegramIDs   []int64 `env:"ADMIN_TELEGRAM_IDS" envSeparator:","`

	// Payroll
	ContentPayrollPolicy string `env:"CONTENT_PAYROLL_POLICY" envDefault:"publication"`

	// Referral commissions for the upstream levels (percent of payment)
	ReferralLevel2Percent float64 `env:"REFERRAL_LEVEL2_PERCENT" envDefault:"5"`
	ReferralLevel3Percent float64 `env:"REFERRAL_LEVEL3_PERCENT" envDefault:"2"`

	// Caches
	CategoryCacheTTL time.Duration `env:"CATEGORY_CACHE_TTL" envDefault:"5m"`

	// WhatsApp gateway used by automation actions
	WhatsAppAPIURL     string `env:"WHATSAPP_API_URL" envDefault:"https://api.green-api.com"`
	WhatsAppInstanceID string `env:"WHATSAPP_INSTANCE_ID"`
	WhatsAppAPIToken   string `env:"WHATSAPP_API_TOKEN"`

	// Outgoing webhooks
	WebhookTimeout time.Duration `env:"WEBHOOK_TIMEOUT" envDefault:"15s"`

	// Telegram logging
	LogTelegramChatID   int64 `env:"LOG_TELEGRAM_CHAT_ID"`
	LogTopicError       int   `env:"LOG_TOPIC_ERROR"`
	LogTopicReferral    int   `env:"LOG_TOPIC_REFERRAL"`
	LogTopicPayroll     int   `env:"LOG_TOPIC_PAYROLL"`
	LogTopicAutomation  int   `env:"LOG_TOPIC_AUTOMATION"`
	LogTopicPromoCreate int   `env:"LOG_TOPIC_PROMO_CREATE"`
}

// Load reads an optional .env file and then the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Debug(".env file not loaded", "error", err)
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	switch cfg.ContentPayrollPolicy {
	case ContentPolicyPublication, ContentPolicyTeamShare:
	default:
		return nil, fmt.Errorf("parse config: unknown CONTENT_PAYROLL_POLICY %q", cfg.ContentPayrollPolicy)
	}
	return cfg, nil
}

func (c *Config) BotEnabled() bool {
	return c.BotToken != ""
}

func (c *Config) IsAdmin(telegramID int64) bool {
	for _, id := range c.AdminTelegramIDs {
		if id == telegramID {
			return true
		}
	}
	return false
}

// SlogLevel maps LOG_LEVEL onto a slog level, defaulting to info.
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
