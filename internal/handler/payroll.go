package handler

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/OlegSmmDrug/agencycore.asia-sub007/internal/domain"
	"github.com/OlegSmmDrug/agencycore.asia-sub007/internal/middleware"
	"github.com/OlegSmmDrug/agencycore.asia-sub007/internal/telegram"
)

// handlePayroll shows the member's earnings for "/payroll [YYYY-MM]", defaulting to the current month.
func (h *Handler) handlePayroll(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}

	user := middleware.GetUser(ctx)
	if user == nil {
		return
	}
	chatID := update.Message.Chat.ID

	month := domain.MonthOf(time.Now().UTC())
	if parts := strings.Fields(update.Message.Text); len(parts) > 1 {
		m, err := domain.ParseMonth(parts[1])
		if err != nil {
			b.SendMessage(ctx, &bot.SendMessageParams{
				ChatID: chatID,
				Text:   "Используйте: /payroll ГГГГ-ММ, например /payroll 2024-05",
			})
			return
		}
		month = m
	}

	h.sendPayroll(ctx, b, chatID, user, month)
}

func (h *Handler) handlePayrollMonth(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.CallbackQuery == nil {
		return
	}
	h.answerCallback(ctx, b, update)

	user := middleware.GetUser(ctx)
	msg := update.CallbackQuery.Message.Message
	if user == nil || msg == nil {
		return
	}

	month, err := domain.ParseMonth(strings.TrimPrefix(update.CallbackQuery.Data, telegram.CallbackPayrollPrefix))
	if err != nil {
		return
	}
	h.sendPayroll(ctx, b, msg.Chat.ID, user, month)
}

func (h *Handler) sendPayroll(ctx context.Context, b *bot.Bot, chatID int64, user *domain.User, month domain.Month) {
	res, err := h.payroll.CalculateForUser(ctx, user.OrganizationID, user.ID, month)
	if err != nil {
		slog.Error("calculate payroll", "error", err, "user_id", user.ID, "month", month.String())
		b.SendMessage(ctx, &bot.SendMessageParams{
			ChatID: chatID,
			Text:   "❌ Не удалось рассчитать зарплату.",
		})
		return
	}

	keyboard := telegram.MonthKeyboard(month, domain.MonthOf(time.Now().UTC()))
	if err := telegram.SendLongMessage(ctx, b, chatID, formatPayroll(res), keyboard); err != nil {
		slog.Error("send payroll", "error", err, "chat_id", chatID)
	}
}

func formatPayroll(res *domain.PayrollResult) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("🧾 *Зарплата за %s*\n\n", res.Month))
	sb.WriteString(fmt.Sprintf("Оклад: *%s*\n", res.BaseSalary.StringFixed(2)))
	sb.WriteString(fmt.Sprintf("KPI: *%s*\n", res.KPIEarned.StringFixed(2)))
	sb.WriteString(fmt.Sprintf("Бонусы: *%s*\n", res.BonusesEarned.StringFixed(2)))

	if len(res.Details) > 0 {
		sb.WriteString("\n")
		for _, d := range res.Details {
			sb.WriteString(fmt.Sprintf("• %s: %s × %s = %s\n",
				telegram.EscapeMarkdown(d.Label),
				d.Quantity.String(),
				d.Rate.StringFixed(2),
				d.Amount.StringFixed(2),
			))
		}
	}

	sb.WriteString(fmt.Sprintf("\n💰 Итого: *%s*", res.TotalEarnings.StringFixed(2)))
	return sb.String()
}
