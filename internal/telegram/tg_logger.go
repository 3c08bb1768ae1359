package telegram

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-telegram/bot"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/OlegSmmDrug/agencycore.asia-sub007/internal/config"
)

// TelegramLogger mirrors business events into topics of an operator chat.
type TelegramLogger struct {
	bot *bot.Bot
	cfg *config.Config
}

// NewTelegramLogger returns a logger; a nil bot disables delivery.
func NewTelegramLogger(b *bot.Bot, cfg *config.Config) *TelegramLogger {
	return &TelegramLogger{bot: b, cfg: cfg}
}

// Attach sets the bot used for delivery once it has been constructed.
func (l *TelegramLogger) Attach(b *bot.Bot) {
	l.bot = b
}

type LogType string

const (
	LogTypeError       LogType = "error"
	LogTypeReferral    LogType = "referral"
	LogTypePayroll     LogType = "payroll"
	LogTypeAutomation  LogType = "automation"
	LogTypePromoCreate LogType = "promoCreate"
)

func (l *TelegramLogger) Log(logType LogType, message string) {
	if l == nil || l.bot == nil || l.cfg.LogTelegramChatID == 0 {
		return
	}

	topicID := l.getTopicID(logType)
	if topicID == 0 {
		return
	}

	if len([]rune(message)) > config.MaxTelegramMessageLen {
		message = string([]rune(message)[:config.MaxTelegramMessageLen-20]) + "\n\n... (truncated)"
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err := l.bot.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:          l.cfg.LogTelegramChatID,
		Text:            message,
		ParseMode:       "Markdown",
		MessageThreadID: topicID,
	})
	if err != nil {
		slog.Error("failed to send telegram log", "type", logType, "error", err)
	}
}

func (l *TelegramLogger) LogError(err error, context string) {
	msg := fmt.Sprintf("❌ *Error*\n\n*Context:* %s\n*Error:* `%s`\n*Time:* %s",
		EscapeMarkdown(context), err.Error(), time.Now().Format("2006-01-02 15:04:05"))
	l.Log(LogTypeError, msg)
}

func (l *TelegramLogger) LogReferral(code string, referredOrg uuid.UUID) {
	msg := fmt.Sprintf("🤝 *New Referral*\n\n*Code:* `%s`\n*Referred:* `%s`",
		code, referredOrg)
	l.Log(LogTypeReferral, msg)
}

func (l *TelegramLogger) LogPromoCreate(code string, orgID, userID uuid.UUID) {
	msg := fmt.Sprintf("🎟 *Promo Code Created*\n\n*Code:* `%s`\n*Organization:* `%s`\n*User:* `%s`",
		code, orgID, userID)
	l.Log(LogTypePromoCreate, msg)
}

func (l *TelegramLogger) LogPayrollSnapshot(userID uuid.UUID, month string, balance decimal.Decimal) {
	msg := fmt.Sprintf("🧾 *Payroll Snapshot*\n\n*User:* `%s`\n*Month:* %s\n*Balance:* %s",
		userID, month, balance.StringFixed(2))
	l.Log(LogTypePayroll, msg)
}

func (l *TelegramLogger) LogAutomationFailure(ruleID uuid.UUID, trigger, reason string) {
	l.Log(LogTypeAutomation, automationFailureMessage(ruleID, trigger, reason))
}

// Error text comes from action executors and may contain any Markdown.
func automationFailureMessage(ruleID uuid.UUID, trigger, reason string) string {
	return fmt.Sprintf("⚙️ *Automation Failed*\n\n*Rule:* `%s`\n*Trigger:* %s\n*Error:* %s",
		ruleID, EscapeMarkdown(trigger), EscapeMarkdown(reason))
}

func (l *TelegramLogger) getTopicID(logType LogType) int {
	switch logType {
	case LogTypeError:
		return l.cfg.LogTopicError
	case LogTypeReferral:
		return l.cfg.LogTopicReferral
	case LogTypePayroll:
		return l.cfg.LogTopicPayroll
	case LogTypeAutomation:
		return l.cfg.LogTopicAutomation
	case LogTypePromoCreate:
		return l.cfg.LogTopicPromoCreate
	default:
		return 0
	}
}
