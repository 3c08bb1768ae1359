package middleware

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// Logging returns middleware that logs each command with the member who sent it.
// It must run after UserLoader.
func Logging() bot.Middleware {
	return func(next bot.HandlerFunc) bot.HandlerFunc {
		return func(ctx context.Context, b *bot.Bot, update *models.Update) {
			start := time.Now()
			next(ctx, b, update)

			kind, command, chatID := describeUpdate(update)
			attrs := []any{
				"kind", kind,
				"command", command,
				"chat_id", chatID,
				"duration", time.Since(start),
			}
			if member := GetUser(ctx); member != nil {
				attrs = append(attrs, "member_id", member.ID, "organization_id", member.OrganizationID)
			}

			level := slog.LevelDebug
			if command != "" {
				level = slog.LevelInfo
			}
			slog.Log(ctx, level, "bot update", attrs...)
		}
	}
}

// describeUpdate returns the update kind, the command or callback data it carries
// and the chat it came from.
func describeUpdate(update *models.Update) (kind, command string, chatID int64) {
	switch {
	case update.Message != nil:
		if fields := strings.Fields(update.Message.Text); len(fields) > 0 && strings.HasPrefix(fields[0], "/") {
			command = fields[0]
		}
		return "message", command, update.Message.Chat.ID
	case update.CallbackQuery != nil:
		if msg := update.CallbackQuery.Message.Message; msg != nil {
			chatID = msg.Chat.ID
		}
		return "callback", update.CallbackQuery.Data, chatID
	default:
		return "other", "", 0
	}
}
