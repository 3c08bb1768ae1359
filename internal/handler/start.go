package handler

import (
	"context"
	"fmt"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/OlegSmmDrug/agencycore.asia-sub007/internal/middleware"
	"github.com/OlegSmmDrug/agencycore.asia-sub007/internal/telegram"
)

func (h *Handler) handleStart(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil || update.Message.Chat.Type != models.ChatTypePrivate {
		return
	}

	chatID := update.Message.Chat.ID
	user := middleware.GetUser(ctx)
	if user == nil {
		b.SendMessage(ctx, &bot.SendMessageParams{
			ChatID: chatID,
			Text: fmt.Sprintf(
				"👋 Этот Telegram-аккаунт не привязан к сотруднику агентства.\n\n"+
					"Передайте администратору ваш ID: %d", chatID),
		})
		return
	}

	text := fmt.Sprintf(
		"👋 Привет, *%s*!\n\n"+
			"📋 *Команды:*\n"+
			"/payroll — Зарплата за текущий месяц\n"+
			"/payroll ГГГГ-ММ — Зарплата за выбранный месяц\n"+
			"/referral — Партнёрская программа\n"+
			"/promo — Ваш промокод\n"+
			"/promo <код> — Создать промокод",
		telegram.EscapeMarkdown(user.Name),
	)
	b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:    chatID,
		Text:      text,
		ParseMode: models.ParseModeMarkdown,
	})
}
