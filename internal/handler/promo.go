package handler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/OlegSmmDrug/agencycore.asia-sub007/internal/domain"
	"github.com/OlegSmmDrug/agencycore.asia-sub007/internal/middleware"
)

// handlePromo shows the member's promo code, or creates one when none exists.
// "/promo <code>" asks for a specific code.
func (h *Handler) handlePromo(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}

	user := middleware.GetUser(ctx)
	if user == nil {
		return
	}

	chatID := update.Message.Chat.ID
	parts := strings.Fields(update.Message.Text)

	if len(parts) < 2 {
		existing, err := h.referrals.PromoCodeForUser(ctx, user.OrganizationID, user.ID)
		if err != nil {
			slog.Error("get promo code", "error", err, "user_id", user.ID)
			b.SendMessage(ctx, &bot.SendMessageParams{ChatID: chatID, Text: "❌ Ошибка при загрузке промокода."})
			return
		}
		if existing != nil {
			b.SendMessage(ctx, &bot.SendMessageParams{
				ChatID:    chatID,
				Text:      fmt.Sprintf("🎟 Ваш промокод: `%s`\nРегистраций: *%d*, оплат: *%d*", existing.Code, existing.RegistrationsCount, existing.PaymentsCount),
				ParseMode: models.ParseModeMarkdown,
			})
			return
		}
	}

	code := ""
	if len(parts) >= 2 {
		code = strings.Join(parts[1:], "")
	}

	promo, err := h.referrals.CreatePromoCode(ctx, user.OrganizationID, user.ID, code)
	if err != nil {
		var msg string
		switch {
		case errors.Is(err, domain.ErrPromoCodeTaken):
			msg = "❌ Такой промокод уже занят."
		case errors.Is(err, domain.ErrPromoCodeInvalid):
			msg = "❌ Промокод должен содержать от 3 до 32 букв, цифр, «-» или «_»."
		default:
			msg = "❌ Ошибка при создании промокода."
			slog.Error("create promo code", "error", err, "user_id", user.ID)
		}
		b.SendMessage(ctx, &bot.SendMessageParams{
			ChatID: chatID,
			Text:   msg,
		})
		return
	}

	b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:    chatID,
		Text:      fmt.Sprintf("✅ Промокод создан: `%s`", promo.Code),
		ParseMode: models.ParseModeMarkdown,
	})

	h.tgLogger.LogPromoCreate(promo.Code, user.OrganizationID, user.ID)
}
