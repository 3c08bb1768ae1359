package handler

import (
	"github.com/go-telegram/bot"

	"github.com/OlegSmmDrug/agencycore.asia-sub007/internal/config"
	"github.com/OlegSmmDrug/agencycore.asia-sub007/internal/service"
	"github.com/OlegSmmDrug/agencycore.asia-sub007/internal/telegram"
)

// Handler holds all dependencies needed by command and callback handlers.
type Handler struct {
	bot       *bot.Bot
	cfg       *config.Config
	referrals *service.ReferralService
	payroll   *service.PayrollService
	tgLogger  *telegram.TelegramLogger
}

// Deps contains all dependencies required to construct a Handler.
type Deps struct {
	Bot       *bot.Bot
	Cfg       *config.Config
	Referrals *service.ReferralService
	Payroll   *service.PayrollService
	TgLogger  *telegram.TelegramLogger
}

// New creates a new Handler from the provided dependencies.
func New(deps Deps) *Handler {
	return &Handler{
		bot:       deps.Bot,
		cfg:       deps.Cfg,
		referrals: deps.Referrals,
		payroll:   deps.Payroll,
		tgLogger:  deps.TgLogger,
	}
}
