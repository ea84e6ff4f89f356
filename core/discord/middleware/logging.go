package middleware

import (
	"context"
	"sync"
	"time"

	"log/slog"

	"github.com/nexonhq/nexon-bot/core/discord"
	"github.com/nexonhq/nexon-bot/core/logger"
)

// recentEvents keeps a short-lived set of processed event keys to avoid double logging.
var (
	recentMu     sync.Mutex
	recentEvents = make(map[string]time.Time)
	keepFor      = 10 * time.Second
)

func alreadyLogged(key string) bool {
	now := time.Now()
	recentMu.Lock()
	defer recentMu.Unlock()
	// GC old entries
	for k, ts := range recentEvents {
		if now.Sub(ts) > keepFor {
			delete(recentEvents, k)
		}
	}
	if _, ok := recentEvents[key]; ok {
		return true
	}
	recentEvents[key] = now
	return false
}

// LoggerMiddleware logs a single receipt line per gateway event.
// It deduplicates by message id plus emoji to prevent double logging when
// the chain is applied on multiple branches.
func LoggerMiddleware(next discord.HandlerFunc) discord.HandlerFunc {
	return func(ctx context.Context, ev *discord.Event) error {
		rid := logger.RIDFrom(ctx)
		if rid == "" {
			rid = logger.BuildRID(ev.MessageID, ev.ChannelID, ev.UserID)
			ctx = logger.WithRID(ctx, rid)
		}

		dedupKey := ev.MessageID + "/" + ev.Emoji + "/" + ev.UserID
		if logger.ShouldSampleDebug() && !alreadyLogged(dedupKey) {
			attrs := []slog.Attr{
				slog.String("status", "ok"),
				slog.String("rid", rid),
				slog.String("kind", kindName(ev.Kind)),
			}
			if ev.Username != "" {
				attrs = append(attrs, slog.String("username", logger.SanitizeLimit(ev.Username, 64)))
			}
			switch ev.Kind {
			case discord.KindReaction:
				if ev.Emoji != "" {
					attrs = append(attrs, slog.String("emoji", ev.Emoji))
				}
			case discord.KindMessage:
				if ev.Content != "" {
					attrs = append(attrs, slog.String("payload", logger.SanitizeLimit(ev.Content, 256)))
				}
			}
			logger.Debug(ctx, "dg", "event.received", attrs...)
		}

		return next(ctx, ev)
	}
}

func kindName(k discord.EventKind) string {
	switch k {
	case discord.KindMessage:
		return "message"
	case discord.KindReaction:
		return "reaction"
	}
	return "other"
}
