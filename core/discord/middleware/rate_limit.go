package middleware

import (
	"context"
	"sync"
	"time"

	"log/slog"

	"github.com/nexonhq/nexon-bot/core/discord"
	"github.com/nexonhq/nexon-bot/core/logger"
)

// RateLimitOptions configures behaviour of the rate limit middleware.
type RateLimitOptions struct {
	Interval  time.Duration
	Exclude   map[discord.EventKind]struct{}
	OnLimited discord.HandlerFunc
}

// RateLimitMiddleware returns a middleware that enforces a minimum interval
// between events from the same user.
func RateLimitMiddleware(opts RateLimitOptions) discord.MiddlewareFunc {
	var (
		userLastSeen   = make(map[string]time.Time)
		userLastSeenMu sync.Mutex
	)
	return func(next discord.HandlerFunc) discord.HandlerFunc {
		return func(ctx context.Context, ev *discord.Event) error {
			if ev.UserID == "" || opts.Interval <= 0 {
				return next(ctx, ev)
			}
			if _, skip := opts.Exclude[ev.Kind]; skip {
				return next(ctx, ev)
			}

			now := time.Now()

			userLastSeenMu.Lock()
			if last, ok := userLastSeen[ev.UserID]; ok && now.Sub(last) < opts.Interval {
				userLastSeenMu.Unlock()
				logger.Warn(ctx, "dg", "dg.rate_limit",
					slog.String("channel_id", ev.ChannelID),
					slog.String("user_id", ev.UserID),
				)
				if opts.OnLimited != nil {
					_ = opts.OnLimited(ctx, ev)
				}
				return nil
			}

			userLastSeen[ev.UserID] = now
			userLastSeenMu.Unlock()
			return next(ctx, ev)
		}
	}
}
