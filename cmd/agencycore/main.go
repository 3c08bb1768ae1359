package main

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-telegram/bot"

	agencyroot "github.com/OlegSmmDrug/agencycore.asia-sub007"
	"github.com/OlegSmmDrug/agencycore.asia-sub007/internal/api"
	"github.com/OlegSmmDrug/agencycore.asia-sub007/internal/config"
	"github.com/OlegSmmDrug/agencycore.asia-sub007/internal/handler"
	"github.com/OlegSmmDrug/agencycore.asia-sub007/internal/middleware"
	"github.com/OlegSmmDrug/agencycore.asia-sub007/internal/repository"
	"github.com/OlegSmmDrug/agencycore.asia-sub007/internal/service"
	"github.com/OlegSmmDrug/agencycore.asia-sub007/internal/telegram"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// Setup structured logging
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.SlogLevel(),
	}))
	slog.SetDefault(logger)

	// Setup context with graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Connect to database
	pool, err := repository.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	// Run migrations
	migrationsFS, err := fs.Sub(agencyroot.MigrationsFS, "migrations")
	if err != nil {
		slog.Error("failed to load embedded migrations", "error", err)
		os.Exit(1)
	}
	if err := repository.RunMigrations(cfg.DatabaseURL, migrationsFS); err != nil {
		slog.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	queries := repository.New(pool)

	// The Telegram logger exists before the bot so the recover middleware can use it.
	tgLogger := telegram.NewTelegramLogger(nil, cfg)

	var b *bot.Bot
	var pusher service.Pusher
	if cfg.BotEnabled() {
		b, err = bot.New(cfg.BotToken, bot.WithMiddlewares(
			middleware.Recover(tgLogger),
			middleware.RateLimit(middleware.NewChatLimiter(config.BotRateLimitPerMinute, config.BotRateLimitBurst)),
			middleware.UserLoader(queries),
			middleware.Logging(),
		))
		if err != nil {
			slog.Error("failed to create bot", "error", err)
			os.Exit(1)
		}
		tgLogger.Attach(b)
		pusher = telegram.NewPusher(b)
	}

	// Initialize services
	referralService := service.NewReferralService(queries, cfg)
	contentPayroll := service.NewContentPayroll(queries, nil, cfg.ContentPayrollPolicy)
	bonusService := service.NewBonusService(queries)
	payrollService := service.NewPayrollService(queries, contentPayroll, bonusService)
	notificationService := service.NewNotificationService(queries, pusher)
	dispatcher := service.NewActionDispatcher(
		queries,
		service.NewWhatsAppClient(cfg),
		service.NewWebhookClient(cfg.WebhookTimeout),
		notificationService,
	)
	automationService := service.NewAutomationService(queries, dispatcher)
	categoryService := service.NewCategoryService(queries, service.NewCategoryCache(cfg.CategoryCacheTTL))

	// HTTP API
	e := api.NewServer(api.Deps{
		Referrals:  referralService,
		Payroll:    payrollService,
		Bonuses:    bonusService,
		Automation: automationService,
		Categories: categoryService,
		TgLogger:   tgLogger,
	})
	e.Server.ReadTimeout = config.HTTPReadTimeout
	e.Server.WriteTimeout = config.HTTPWriteTimeout

	go func() {
		slog.Info("starting http server", "addr", cfg.HTTPAddr)
		if err := e.Start(cfg.HTTPAddr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("http server failed", "error", err)
			stop()
		}
	}()

	// Telegram bot
	if b != nil {
		me, err := b.GetMe(ctx)
		if err != nil {
			slog.Error("failed to get bot info", "error", err)
			os.Exit(1)
		}
		slog.Info("bot info retrieved", "id", me.ID, "username", me.Username)

		if cfg.DropPendingUpdates {
			if _, err := b.DeleteWebhook(ctx, &bot.DeleteWebhookParams{DropPendingUpdates: true}); err != nil {
				slog.Warn("failed to drop pending updates", "error", err)
			}
		}

		h := handler.New(handler.Deps{
			Bot:       b,
			Cfg:       cfg,
			Referrals: referralService,
			Payroll:   payrollService,
			TgLogger:  tgLogger,
		})
		h.Register()

		go func() {
			slog.Info("starting bot", "username", me.Username, "id", me.ID)
			b.Start(ctx)
		}()
	}

	<-ctx.Done()

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), config.HTTPShutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		slog.Error("http server shutdown", "error", err)
	}
	slog.Info("stopped gracefully")
}
