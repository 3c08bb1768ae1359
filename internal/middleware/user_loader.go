package middleware

import (
	"context"
	"errors"
	"log/slog"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/jackc/pgx/v5"

	"github.com/OlegSmmDrug/agencycore.asia-sub007/internal/domain"
)

type ctxKey string

const UserKey ctxKey = "user"

// GetUser extracts the member from context.
func GetUser(ctx context.Context) *domain.User {
	u, ok := ctx.Value(UserKey).(*domain.User)
	if !ok {
		return nil
	}
	return u
}

// WithUser stores the member in ctx.
func WithUser(ctx context.Context, user *domain.User) context.Context {
	return context.WithValue(ctx, UserKey, user)
}

// MemberLookup finds an agency member by linked Telegram account.
type MemberLookup interface {
	GetUserByTelegramID(ctx context.Context, telegramID int64) (domain.User, error)
}

// UserLoader returns middleware that puts the member linked to the sender into context.
// Unlinked senders pass through without a user.
func UserLoader(members MemberLookup) bot.Middleware {
	return func(next bot.HandlerFunc) bot.HandlerFunc {
		return func(ctx context.Context, b *bot.Bot, update *models.Update) {
			var from *models.User
			if update.Message != nil {
				from = update.Message.From
			} else if update.CallbackQuery != nil {
				from = &update.CallbackQuery.From
			}

			if from == nil {
				next(ctx, b, update)
				return
			}

			user, err := members.GetUserByTelegramID(ctx, from.ID)
			switch {
			case err == nil:
				ctx = WithUser(ctx, &user)
			case errors.Is(err, pgx.ErrNoRows):
			default:
				slog.Error("failed to load member", "error", err, "telegram_id", from.ID)
			}

			next(ctx, b, update)
		}
	}
}
