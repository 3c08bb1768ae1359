package handler

import (
	"context"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/OlegSmmDrug/agencycore.asia-sub007/internal/telegram"
)

// Register registers all command and callback handlers on the bot instance.
func (h *Handler) Register() {
	// Commands
	h.bot.RegisterHandler(bot.HandlerTypeMessageText, "/start", bot.MatchTypePrefix, h.handleStart)
	h.bot.RegisterHandler(bot.HandlerTypeMessageText, "/referral", bot.MatchTypePrefix, h.handleReferral)
	h.bot.RegisterHandler(bot.HandlerTypeMessageText, "/promo", bot.MatchTypePrefix, h.handlePromo)
	h.bot.RegisterHandler(bot.HandlerTypeMessageText, "/payroll", bot.MatchTypePrefix, h.handlePayroll)
	h.bot.RegisterHandler(bot.HandlerTypeMessageText, "/snapshot", bot.MatchTypePrefix, h.handleSnapshot)

	// Callbacks
	h.bot.RegisterHandler(bot.HandlerTypeCallbackQueryData, telegram.CallbackPayrollPrefix, bot.MatchTypePrefix, h.handlePayrollMonth)
}

// answerCallback acknowledges a callback query so the client stops its spinner.
func (h *Handler) answerCallback(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.CallbackQuery != nil {
		b.AnswerCallbackQuery(ctx, &bot.AnswerCallbackQueryParams{
			CallbackQueryID: update.CallbackQuery.ID,
		})
	}
}
