package discord

import (
	"context"

	"github.com/bwmarrin/discordgo"

	"github.com/nexonhq/nexon-bot/core/logger"
)

// EventKind discriminates normalized gateway events.
type EventKind int

const (
	// KindMessage is an inbound guild text message.
	KindMessage EventKind = iota
	// KindReaction is a reaction added to a message.
	KindReaction
)

// Event is a normalized inbound gateway event passed through the middleware
// chain. Exactly one of Message/Reaction is set, matching Kind.
type Event struct {
	Kind     EventKind
	Session  *discordgo.Session
	Message  *discordgo.MessageCreate
	Reaction *discordgo.MessageReactionAdd

	UserID    string
	Username  string
	ChannelID string
	GuildID   string
	MessageID string
	Content   string
	Emoji     string
	FromBot   bool
}

// HandlerFunc processes one normalized event.
type HandlerFunc func(ctx context.Context, ev *Event) error

// MiddlewareFunc wraps a handler with cross-cutting behaviour.
type MiddlewareFunc func(next HandlerFunc) HandlerFunc

// Chain applies middlewares right to left so the first listed runs outermost.
func Chain(h HandlerFunc, mws ...MiddlewareFunc) HandlerFunc {
	for i := len(mws) - 1; i >= 0; i-- {
		if mws[i] == nil {
			continue
		}
		h = mws[i](h)
	}
	return h
}

// NewMessageEvent normalizes a MessageCreate gateway event.
func NewMessageEvent(s *discordgo.Session, m *discordgo.MessageCreate) *Event {
	ev := &Event{
		Kind:      KindMessage,
		Session:   s,
		Message:   m,
		ChannelID: m.ChannelID,
		GuildID:   m.GuildID,
		MessageID: m.ID,
		Content:   m.Content,
	}
	if m.Author != nil {
		ev.UserID = m.Author.ID
		ev.Username = m.Author.Username
		ev.FromBot = m.Author.Bot
	}
	if s != nil && s.State != nil && s.State.User != nil && ev.UserID == s.State.User.ID {
		ev.FromBot = true
	}
	return ev
}

// NewReactionEvent normalizes a MessageReactionAdd gateway event.
func NewReactionEvent(s *discordgo.Session, r *discordgo.MessageReactionAdd) *Event {
	ev := &Event{
		Kind:      KindReaction,
		Session:   s,
		Reaction:  r,
		UserID:    r.UserID,
		ChannelID: r.ChannelID,
		GuildID:   r.GuildID,
		MessageID: r.MessageID,
		Emoji:     r.Emoji.Name,
	}
	if r.Member != nil && r.Member.User != nil {
		ev.Username = r.Member.User.Username
		ev.FromBot = r.Member.User.Bot
	}
	if s != nil && s.State != nil && s.State.User != nil && ev.UserID == s.State.User.ID {
		ev.FromBot = true
	}
	return ev
}

// BuildContext constructs a context.Context carrying correlation metadata for
// consistent logging across layers.
func (ev *Event) BuildContext(parent context.Context) context.Context {
	if parent == nil {
		parent = context.Background()
	}
	rid := logger.BuildRID(ev.MessageID, ev.ChannelID, ev.UserID)
	ctx := logger.WithRID(parent, rid)
	ctx = logger.WithEventMeta(ctx, ev.MessageID, ev.ChannelID, ev.UserID)
	ctx = logger.WithGuildID(ctx, ev.GuildID)
	ctx = logger.WithLogger(ctx, logger.Component("discord"))
	return ctx
}
