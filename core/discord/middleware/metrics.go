package middleware

import (
	"context"

	"github.com/nexonhq/nexon-bot/core/discord"
	"github.com/nexonhq/nexon-bot/core/metrics"
)

// MetricsMiddleware counts inbound gateway events by kind.
func MetricsMiddleware(next discord.HandlerFunc) discord.HandlerFunc {
	return func(ctx context.Context, ev *discord.Event) error {
		metrics.EventCounter.WithLabelValues(kindName(ev.Kind)).Inc()
		return next(ctx, ev)
	}
}
