// Package bot assembles the application: discordgo-backed gateway, command
// handlers and the middleware/router wiring.
package bot

import (
	"context"
	"fmt"
	"sync"

	"github.com/bwmarrin/discordgo"

	"github.com/nexonhq/nexon-bot/core/metrics"
	"github.com/nexonhq/nexon-bot/internal/post"
)

// Gateway extends the domain gateway with the Discord-specific operations
// the command surface needs.
type Gateway interface {
	post.Gateway
	SendEmbed(ctx context.Context, channelID string, embed *discordgo.MessageEmbed) error
	IsAdmin(ctx context.Context, userID, channelID string) (bool, error)
}

// DiscordGateway implements Gateway on top of a live discordgo session. The
// session is bound once at startup, before the gateway connection opens.
type DiscordGateway struct {
	mu sync.RWMutex
	s  *discordgo.Session
}

// NewDiscordGateway returns an unbound gateway. Calls before Bind fail.
func NewDiscordGateway() *DiscordGateway {
	return &DiscordGateway{}
}

// Bind attaches the live session.
func (g *DiscordGateway) Bind(s *discordgo.Session) {
	g.mu.Lock()
	g.s = s
	g.mu.Unlock()
}

func (g *DiscordGateway) session() (*discordgo.Session, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if g.s == nil {
		return nil, fmt.Errorf("bot: gateway not bound")
	}
	return g.s, nil
}

// SendMessage posts plain text to a channel.
func (g *DiscordGateway) SendMessage(ctx context.Context, channelID, content string) (string, error) {
	s, err := g.session()
	if err != nil {
		return "", err
	}
	msg, err := s.ChannelMessageSend(channelID, content, discordgo.WithContext(ctx))
	if err != nil {
		return "", err
	}
	metrics.MessagesSent.WithLabelValues("text").Inc()
	return msg.ID, nil
}

// SendEmbed posts a rich embed to a channel.
func (g *DiscordGateway) SendEmbed(ctx context.Context, channelID string, embed *discordgo.MessageEmbed) error {
	s, err := g.session()
	if err != nil {
		return err
	}
	if _, err := s.ChannelMessageSendEmbed(channelID, embed, discordgo.WithContext(ctx)); err != nil {
		return err
	}
	metrics.MessagesSent.WithLabelValues("embed").Inc()
	return nil
}

// AddReaction attaches an emoji to a message.
func (g *DiscordGateway) AddReaction(ctx context.Context, channelID, messageID, emoji string) error {
	s, err := g.session()
	if err != nil {
		return err
	}
	if err := s.MessageReactionAdd(channelID, messageID, emoji, discordgo.WithContext(ctx)); err != nil {
		return err
	}
	metrics.MessagesSent.WithLabelValues("reaction").Inc()
	return nil
}

// RecentMessages returns up to limit most-recent message IDs in a channel.
func (g *DiscordGateway) RecentMessages(ctx context.Context, channelID string, limit int) ([]string, error) {
	s, err := g.session()
	if err != nil {
		return nil, err
	}
	msgs, err := s.ChannelMessages(channelID, limit, "", "", "", discordgo.WithContext(ctx))
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(msgs))
	for _, m := range msgs {
		ids = append(ids, m.ID)
	}
	return ids, nil
}

// DeleteMessage removes a single message.
func (g *DiscordGateway) DeleteMessage(ctx context.Context, channelID, messageID string) error {
	s, err := g.session()
	if err != nil {
		return err
	}
	return s.ChannelMessageDelete(channelID, messageID, discordgo.WithContext(ctx))
}

// ResolveChannel returns the channel mention, preferring the local state
// cache over a REST lookup.
func (g *DiscordGateway) ResolveChannel(ctx context.Context, channelID string) (string, error) {
	s, err := g.session()
	if err != nil {
		return "", err
	}
	if s.State != nil {
		if ch, stateErr := s.State.Channel(channelID); stateErr == nil && ch != nil {
			return ch.Mention(), nil
		}
	}
	ch, err := s.Channel(channelID, discordgo.WithContext(ctx))
	if err != nil || ch == nil {
		return "", post.ErrUnknownChannel
	}
	return ch.Mention(), nil
}

// IsAdmin reports whether the user holds the administrator permission in the
// channel's guild.
func (g *DiscordGateway) IsAdmin(ctx context.Context, userID, channelID string) (bool, error) {
	s, err := g.session()
	if err != nil {
		return false, err
	}
	perms, err := s.UserChannelPermissions(userID, channelID, discordgo.WithContext(ctx))
	if err != nil {
		return false, err
	}
	return perms&discordgo.PermissionAdministrator != 0, nil
}
