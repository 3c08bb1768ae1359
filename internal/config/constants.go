package config

import "time"

const (
	// Content payroll policies
	ContentPolicyPublication = "publication"
	ContentPolicyTeamShare   = "team_share"

	// Referral chain depth
	MaxReferralLevel = 3

	// Generated promo code length
	PromoCodeLength = 8

	// Database pool
	DBMaxConns = 20
	DBMinConns = 5

	// HTTP server
	HTTPReadTimeout     = 15 * time.Second
	HTTPWriteTimeout    = 30 * time.Second
	HTTPShutdownTimeout = 10 * time.Second

	// Bot rate limit per chat
	BotRateLimitPerMinute = 20
	BotRateLimitBurst     = 5

	// Outgoing webhook throttle (requests per second across all rules)
	WebhookRatePerSecond = 10

	// Telegram limits
	MaxTelegramMessageLen = 4096

	// Notification push timeout
	NotificationPushTimeout = 10 * time.Second

	// Month format used in payroll and content metrics
	MonthLayout = "2006-01"
)
