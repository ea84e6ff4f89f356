package router

import (
	"context"
	"time"

	"github.com/nexonhq/nexon-bot/core/discord"
	"github.com/nexonhq/nexon-bot/core/metrics"
)

// Dialogue defines the minimal interface for the conversational session manager.
type Dialogue interface {
	InProgress(userID string) bool
	HandleMessage(ctx context.Context, ev *discord.Event) error
	HandleReaction(ctx context.Context, ev *discord.Event) error
}

// MessageOptions controls fallback behaviour for message events.
type MessageOptions struct {
	UnknownText discord.HandlerFunc
}

// MessageHandler routes inbound messages. A user with a session in progress
// is handed to the dialogue manager; otherwise the body is matched against
// the command registry.
func MessageHandler(dlg Dialogue, reg *discord.Registry, opts MessageOptions) discord.HandlerFunc {
	return func(ctx context.Context, ev *discord.Event) error {
		if ev.FromBot {
			return nil
		}
		start := time.Now()

		if dlg != nil && dlg.InProgress(ev.UserID) {
			return handleWithSummary(ctx, "dialogue", start, "", "", func(ctx context.Context) error {
				return dlg.HandleMessage(ctx, ev)
			})
		}

		if reg != nil {
			if key, cmd, args, ok := reg.Lookup(ev.Content); ok && cmd.Handler != nil {
				name := normalizeHandlerName(key, reg.Prefix())
				err := handleWithSummary(ctx, name, start, "", "", func(ctx context.Context) error {
					return cmd.Handler(ctx, ev, args)
				})
				metrics.CommandCounter.WithLabelValues(name, counterStatus(err)).Inc()
				metrics.CommandDuration.WithLabelValues(name).Observe(time.Since(start).Seconds())
				return err
			}
		}

		if opts.UnknownText != nil {
			return handleWithSummary(ctx, "unknown_text", start, "", "", func(ctx context.Context) error {
				return opts.UnknownText(ctx, ev)
			})
		}

		return nil
	}
}

func counterStatus(err error) string {
	if err != nil {
		return "fail"
	}
	return "ok"
}
