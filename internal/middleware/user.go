package middleware

import (
	"context"

	"go.uber.org/zap"
	tele "gopkg.in/telebot.v3"
)

// UserEnsurer registers chats on first contact
type UserEnsurer interface {
	EnsureUser(ctx context.Context, chatID int64, username, firstName string) error
}

// EnsureUser creates the user row before any handler runs
func EnsureUser(ctx context.Context, users UserEnsurer, logger *zap.Logger) tele.MiddlewareFunc {
	return func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			sender := c.Sender()
			if sender == nil || sender.IsBot {
				return nil
			}

			if err := users.EnsureUser(ctx, sender.ID, sender.Username, sender.FirstName); err != nil {
				logger.Error("Failed to ensure user exists in middleware",
					zap.Int64("chat_id", sender.ID),
					zap.Error(err),
				)
				return c.Send("⚠️ Something went wrong. Please try again later.")
			}

			return next(c)
		}
	}
}
