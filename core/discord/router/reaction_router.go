package router

import (
	"context"
	"time"

	"github.com/nexonhq/nexon-bot/core/discord"
)

// ReactionHandler routes reaction-add events to the dialogue manager. Only
// users with a session awaiting a category pick have any use for reactions,
// so everything else is dropped without logging noise.
func ReactionHandler(dlg Dialogue) discord.HandlerFunc {
	return func(ctx context.Context, ev *discord.Event) error {
		if ev.FromBot || dlg == nil {
			return nil
		}
		if !dlg.InProgress(ev.UserID) {
			return nil
		}
		start := time.Now()
		return handleWithSummary(ctx, "dialogue_reaction", start, "", "", func(ctx context.Context) error {
			return dlg.HandleReaction(ctx, ev)
		})
	}
}
