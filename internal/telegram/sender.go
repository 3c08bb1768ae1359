package telegram

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/OlegSmmDrug/agencycore.asia-sub007/internal/config"
	"github.com/OlegSmmDrug/agencycore.asia-sub007/internal/richtext"
)

// SendLongMessage sends text in Markdown, split into parts that fit one message.
// A part Telegram rejects as Markdown is resent as plain text.
func SendLongMessage(ctx context.Context, b *bot.Bot, chatID int64, text string, markup models.ReplyMarkup) error {
	parts := SplitMessage(text, config.MaxTelegramMessageLen)

	for i, part := range parts {
		params := &bot.SendMessageParams{
			ChatID:    chatID,
			Text:      part,
			ParseMode: models.ParseModeMarkdownV1,
		}
		if markup != nil && i == len(parts)-1 {
			params.ReplyMarkup = markup
		}

		_, err := b.SendMessage(ctx, params)
		if err != nil {
			slog.Warn("markdown send failed, falling back to plain text", "error", err)
			params.ParseMode = ""
			if _, err = b.SendMessage(ctx, params); err != nil {
				return fmt.Errorf("send message: %w", err)
			}
		}
	}
	return nil
}

// Pusher delivers in-app notifications to a member's private chat.
type Pusher struct {
	bot *bot.Bot
}

func NewPusher(b *bot.Bot) *Pusher {
	return &Pusher{bot: b}
}

func (p *Pusher) Push(ctx context.Context, chatID int64, title, message string) error {
	return SendLongMessage(ctx, p.bot, chatID, FormatNotification(title, message), nil)
}

// FormatNotification renders a notification with a bold title and a plain-text body.
func FormatNotification(title, message string) string {
	text := "🔔 *" + EscapeMarkdown(title) + "*"
	if body := richtext.ToPlain(message); body != "" {
		text += "\n\n" + EscapeMarkdown(body)
	}
	return text
}
