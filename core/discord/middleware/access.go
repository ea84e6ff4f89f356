package middleware

import (
	"context"

	"log/slog"

	"github.com/nexonhq/nexon-bot/core/discord"
	"github.com/nexonhq/nexon-bot/core/logger"
)

// AdminOptions defines how admin-only checks should behave.
type AdminOptions struct {
	// IsAdmin reports whether the event author may run admin commands.
	IsAdmin func(ctx context.Context, ev *discord.Event) (bool, error)
	// OnReject runs when a non-admin invokes an admin-only command.
	OnReject discord.HandlerFunc
}

// WithAdminCheck wraps a command handler enforcing admin-only execution when required.
func WithAdminCheck(opts AdminOptions, cmd discord.Command) discord.CommandHandler {
	if !cmd.AdminOnly || opts.IsAdmin == nil {
		return cmd.Handler
	}
	return func(ctx context.Context, ev *discord.Event, args []string) error {
		ok, err := opts.IsAdmin(ctx, ev)
		if err != nil {
			logger.Warn(ctx, "dg", "admin.check.fail",
				slog.String("err", logger.SanitizeLimit(err.Error(), 256)),
			)
			ok = false
		}
		if !ok {
			if opts.OnReject != nil {
				return opts.OnReject(ctx, ev)
			}
			return nil
		}
		return cmd.Handler(ctx, ev, args)
	}
}
