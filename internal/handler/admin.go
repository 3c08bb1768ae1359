package handler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/google/uuid"

	"github.com/OlegSmmDrug/agencycore.asia-sub007/internal/domain"
	"github.com/OlegSmmDrug/agencycore.asia-sub007/internal/middleware"
)

// handleSnapshot stores a payroll record: /snapshot <user-id> [YYYY-MM]. Admins only.
func (h *Handler) handleSnapshot(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil || update.Message.From == nil {
		return
	}

	admin := middleware.GetUser(ctx)
	if admin == nil || !h.cfg.IsAdmin(update.Message.From.ID) {
		return
	}

	chatID := update.Message.Chat.ID
	parts := strings.Fields(update.Message.Text)

	if len(parts) < 2 {
		b.SendMessage(ctx, &bot.SendMessageParams{
			ChatID: chatID,
			Text:   "Использование: /snapshot <user-id> [ГГГГ-ММ]",
		})
		return
	}

	userID, err := uuid.Parse(parts[1])
	if err != nil {
		b.SendMessage(ctx, &bot.SendMessageParams{
			ChatID: chatID,
			Text:   "❌ Некорректный ID сотрудника.",
		})
		return
	}

	month := domain.MonthOf(time.Now().UTC())
	if len(parts) > 2 {
		if month, err = domain.ParseMonth(parts[2]); err != nil {
			b.SendMessage(ctx, &bot.SendMessageParams{
				ChatID: chatID,
				Text:   "❌ Месяц должен быть в формате ГГГГ-ММ.",
			})
			return
		}
	}

	rec, err := h.payroll.Snapshot(ctx, admin.OrganizationID, userID, month)
	if err != nil {
		msg := "❌ Ошибка при сохранении ведомости."
		if errors.Is(err, domain.ErrUserNotFound) {
			msg = "❌ Сотрудник не найден."
		} else {
			slog.Error("payroll snapshot", "error", err, "user_id", userID)
			h.tgLogger.LogError(err, "payroll snapshot")
		}
		b.SendMessage(ctx, &bot.SendMessageParams{
			ChatID: chatID,
			Text:   msg,
		})
		return
	}

	b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: chatID,
		Text: fmt.Sprintf("✅ Ведомость за %s сохранена.\nНачислено: %s\nК выплате: %s",
			month.String(), rec.FixedSalary.Add(rec.CalculatedKPI).Add(rec.CalculatedBonus).StringFixed(2), rec.Balance.StringFixed(2)),
	})

	h.tgLogger.LogPayrollSnapshot(userID, month.String(), rec.Balance)
}
