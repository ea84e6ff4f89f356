package post

import (
	"context"
	"fmt"
	"strings"

	"log/slog"

	"github.com/nexonhq/nexon-bot/core/discord"
	"github.com/nexonhq/nexon-bot/core/logger"
)

// User-facing texts for the composition flow.
const (
	msgSessionActive = "❌ You already have an active post creation session. Complete it first or wait for it to timeout."
	msgCancelled     = "❌ %s Post creation cancelled."
	promptTopic      = "**📝 Creating new post - Step 1/3**\n%s, what's the topic of your post?"
	promptDesc       = "**📝 Creating new post - Step 2/3**\n%s, provide a description for your post:"
	promptLink       = "**📝 Creating new post - Step 3/3**\n%s, add a link (or type 'skip' if no link):"
	promptCategory   = "**📝 Creating new post - Final Step**\n%s, choose a category:\n" +
		"🎉 Entertainment\n📚 Education\n🌐 Website\n🛠️ Hack\n❓ Others\n\n" +
		"React with the appropriate emoji to select category:"
)

// cleanupHistoryLimit bounds how many recent origin-channel messages are
// removed when a post completes.
const cleanupHistoryLimit = 8

// Dialogue drives the per-user composition state machine. Every inbound
// message from a user with an open session is routed here instead of the
// command registry. The gateway delivers each event on its own goroutine,
// so events from the same user are serialized through a per-user lock
// before the session record is touched.
type Dialogue struct {
	store *Store
	gw    Gateway
	pub   *Publisher
	users keyedMutex
}

// NewDialogue wires the state machine to its session store, gateway and
// publisher.
func NewDialogue(store *Store, gw Gateway, pub *Publisher) *Dialogue {
	return &Dialogue{store: store, gw: gw, pub: pub}
}

// InProgress reports whether the user has an open session.
func (d *Dialogue) InProgress(userID string) bool {
	_, ok := d.store.Get(userID)
	return ok
}

// Start opens a session for the event author and sends the first prompt.
// A duplicate start yields a rejection message and leaves the open session
// untouched.
func (d *Dialogue) Start(ctx context.Context, ev *discord.Event) error {
	defer d.users.lock(ev.UserID)()

	mention := userMention(ev.UserID)
	sess, err := d.store.Create(ev.UserID, ev.ChannelID, mention)
	if err != nil {
		if _, sendErr := d.gw.SendMessage(ctx, ev.ChannelID, msgSessionActive); sendErr != nil {
			return sendErr
		}
		return nil
	}
	logger.Info(ctx, "post", "session.start",
		slog.String("status", "ok"),
		slog.String("session_id", sess.ID.String()),
	)
	_, err = d.gw.SendMessage(ctx, ev.ChannelID, fmt.Sprintf(promptTopic, mention))
	return err
}

// advance applies one collected input to the session and returns the next
// prompt. category marks the transition into the reaction step.
func advance(sess *Session, input string) (prompt string, category, ok bool) {
	switch sess.Step {
	case StepTopic:
		sess.Draft.Topic = input
		sess.Step = StepDescription
		return promptDesc, false, true
	case StepDescription:
		sess.Draft.Description = input
		sess.Step = StepLink
		return promptLink, false, true
	case StepLink:
		if strings.EqualFold(strings.TrimSpace(input), "skip") {
			sess.Draft.Link = ""
		} else {
			sess.Draft.Link = input
		}
		sess.Step = StepCategory
		return promptCategory, true, true
	}
	return "", false, false
}

// HandleMessage consumes one message from a user with an open session.
func (d *Dialogue) HandleMessage(ctx context.Context, ev *discord.Event) error {
	defer d.users.lock(ev.UserID)()

	sess, ok := d.store.Get(ev.UserID)
	if !ok {
		return nil
	}

	if strings.EqualFold(strings.TrimSpace(ev.Content), "cancel") {
		d.store.Remove(ev.UserID)
		logger.Info(ctx, "post", "session.cancel",
			slog.String("status", "ok"),
			slog.String("step", sess.Step.String()),
		)
		_, err := d.gw.SendMessage(ctx, ev.ChannelID, fmt.Sprintf(msgCancelled, sess.AuthorMention))
		return err
	}

	prompt, toCategory, ok := advance(sess, ev.Content)
	if !ok {
		// Waiting on a reaction; stray text is ignored.
		return nil
	}

	msgID, err := d.gw.SendMessage(ctx, sess.ChannelID, fmt.Sprintf(prompt, sess.AuthorMention))
	if err != nil {
		return err
	}
	if !toCategory {
		return nil
	}

	sess.PromptMessageID = msgID
	for _, c := range Categories {
		if reactErr := d.gw.AddReaction(ctx, sess.ChannelID, msgID, c.Emoji); reactErr != nil {
			logger.Warn(ctx, "post", "prompt.reaction.fail",
				slog.String("emoji", c.Emoji),
				slog.String("err", logger.SanitizeLimit(reactErr.Error(), 256)),
			)
		}
	}
	return nil
}

// HandleReaction consumes a reaction from a user with an open session. Only a
// recognized category emoji on the session's own prompt message, at the
// category step, completes the post.
func (d *Dialogue) HandleReaction(ctx context.Context, ev *discord.Event) error {
	defer d.users.lock(ev.UserID)()

	sess, ok := d.store.Get(ev.UserID)
	if !ok || sess.Step != StepCategory {
		return nil
	}
	if sess.PromptMessageID == "" || ev.MessageID != sess.PromptMessageID {
		return nil
	}
	tag, ok := TagForEmoji(ev.Emoji)
	if !ok {
		return nil
	}

	sess, ok = d.store.Claim(ev.UserID)
	if !ok {
		// A duplicate delivery lost the claim.
		return nil
	}
	sess.Draft.Tag = tag

	d.cleanup(ctx, sess.ChannelID)

	logger.Info(ctx, "post", "session.complete",
		slog.String("status", "ok"),
		slog.String("session_id", sess.ID.String()),
		slog.String("tag", tag),
	)
	return d.pub.Publish(ctx, sess)
}

// cleanup removes the most recent composition traffic from the origin
// channel. Every lookup and delete is best-effort.
func (d *Dialogue) cleanup(ctx context.Context, channelID string) {
	ids, err := d.gw.RecentMessages(ctx, channelID, cleanupHistoryLimit)
	if err != nil {
		logger.Warn(ctx, "post", "cleanup.history.fail",
			slog.String("err", logger.SanitizeLimit(err.Error(), 256)),
		)
		return
	}
	deleted := 0
	for _, id := range ids {
		if delErr := d.gw.DeleteMessage(ctx, channelID, id); delErr != nil {
			logger.Warn(ctx, "post", "cleanup.delete.fail",
				slog.String("message_id", id),
				slog.String("err", logger.SanitizeLimit(delErr.Error(), 256)),
			)
			continue
		}
		deleted++
	}
	logger.Debug(ctx, "post", "cleanup.done",
		slog.Int("deleted", deleted),
		slog.Int("scanned", len(ids)),
	)
}

func userMention(userID string) string {
	return "<@" + userID + ">"
}
