package handler

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/OlegSmmDrug/agencycore.asia-sub007/internal/domain"
	"github.com/OlegSmmDrug/agencycore.asia-sub007/internal/middleware"
	"github.com/OlegSmmDrug/agencycore.asia-sub007/internal/service"
)

func (h *Handler) handleReferral(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}

	user := middleware.GetUser(ctx)
	if user == nil {
		return
	}
	chatID := update.Message.Chat.ID

	stats, err := h.referrals.Stats(ctx, user.OrganizationID, user.ID)
	if err != nil {
		slog.Error("affiliate stats", "error", err, "user_id", user.ID)
		b.SendMessage(ctx, &bot.SendMessageParams{
			ChatID: chatID,
			Text:   "❌ Не удалось загрузить статистику.",
		})
		return
	}

	promo, err := h.referrals.PromoCodeForUser(ctx, user.OrganizationID, user.ID)
	if err != nil {
		slog.Error("get promo code", "error", err, "user_id", user.ID)
	}

	b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:    chatID,
		Text:      formatAffiliateStats(stats, promo),
		ParseMode: models.ParseModeMarkdown,
	})
}

func formatAffiliateStats(stats *domain.AffiliateStats, promo *domain.PromoCode) string {
	var sb strings.Builder
	sb.WriteString("👥 *Партнёрская программа*\n\n")

	if promo != nil {
		sb.WriteString(fmt.Sprintf("Ваш промокод: `%s`\n\n", promo.Code))
	} else {
		sb.WriteString("Промокода пока нет, создайте его командой /promo\n\n")
	}

	sb.WriteString(fmt.Sprintf("🏷 Уровень: *%d* (%d%%)\n", stats.TierIndex+1, stats.TierPercent))
	sb.WriteString(fmt.Sprintf("👤 Приглашено: *%d*, активных: *%d*\n", stats.TotalReferred, stats.ActiveClients))
	if next := stats.TierIndex + 1; next < len(service.RewardTiers) {
		need := service.RewardTiers[next].MinActiveClients - stats.ActiveClients
		sb.WriteString(fmt.Sprintf("⬆️ До %d%% осталось активных клиентов: %d\n", service.RewardTiers[next].Percent, need))
	}
	sb.WriteString(fmt.Sprintf("\n⏳ В ожидании: *%s*\n", stats.Pending.StringFixed(2)))
	sb.WriteString(fmt.Sprintf("💰 К выплате: *%s*\n", stats.ReadyToPay.StringFixed(2)))
	sb.WriteString(fmt.Sprintf("✅ Выплачено: *%s*", stats.TotalPaid.StringFixed(2)))
	return sb.String()
}
