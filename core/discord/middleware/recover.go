package middleware

import (
	"context"
	"runtime/debug"

	"log/slog"

	"github.com/nexonhq/nexon-bot/core/discord"
	"github.com/nexonhq/nexon-bot/core/logger"
)

// RecoverMiddleware catches panics in handlers and prevents the bot from crashing
func RecoverMiddleware(next discord.HandlerFunc) discord.HandlerFunc {
	return func(ctx context.Context, ev *discord.Event) error {
		defer func() {
			if r := recover(); r != nil {
				logger.Error(ctx, "dg", "dg.panic",
					slog.Any("err", r),
					slog.String("stack", string(debug.Stack())),
				)
			}
		}()
		return next(ctx, ev)
	}
}
