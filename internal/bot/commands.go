package bot

import (
	"context"
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"

	"github.com/nexonhq/nexon-bot/core/discord"
	"github.com/nexonhq/nexon-bot/internal/post"
)

const (
	msgInvalidCategory = "❌ Invalid category. Use: Entertainment, Education, Website, Hack, Others"
	msgChannelNotFound = "❌ Channel not found!"
	msgSetChannelUsage = "❌ Usage: !setchannel <category> [channel_id]"
	msgAdminRequired   = "❌ You need administrator permissions to use this command."
	msgMappingRemoved  = "✅ Removed channel mapping for %s"
	msgMappingSet      = "✅ Set %s posts to go to %s"

	embedColor = 0x00ff41
)

// Commands holds the handlers for the bot's text commands.
type Commands struct {
	dlg    *post.Dialogue
	router *post.Router
	gw     Gateway
}

// NewCommands wires the command handlers.
func NewCommands(dlg *post.Dialogue, router *post.Router, gw Gateway) *Commands {
	return &Commands{dlg: dlg, router: router, gw: gw}
}

// Post starts a new composition session for the author.
func (c *Commands) Post(ctx context.Context, ev *discord.Event, _ []string) error {
	return c.dlg.Start(ctx, ev)
}

// SetChannel maps a category to a destination channel. An omitted channel ID
// clears the mapping.
func (c *Commands) SetChannel(ctx context.Context, ev *discord.Event, args []string) error {
	if len(args) == 0 {
		return c.reply(ctx, ev, msgSetChannelUsage)
	}
	category := args[0]
	if !post.ValidTag(category) {
		return c.reply(ctx, ev, msgInvalidCategory)
	}

	if len(args) < 2 {
		if err := c.router.Update(category, ""); err != nil {
			return err
		}
		return c.reply(ctx, ev, fmt.Sprintf(msgMappingRemoved, category))
	}

	channelID := strings.TrimSpace(args[1])
	mention, err := c.gw.ResolveChannel(ctx, channelID)
	if err != nil {
		return c.reply(ctx, ev, msgChannelNotFound)
	}
	if err := c.router.Update(category, channelID); err != nil {
		return err
	}
	return c.reply(ctx, ev, fmt.Sprintf(msgMappingSet, category, mention))
}

// Channels shows the current category-to-channel mappings as an embed.
func (c *Commands) Channels(ctx context.Context, ev *discord.Event, _ []string) error {
	embed := &discordgo.MessageEmbed{
		Title: "📋 Channel Mappings",
		Color: embedColor,
	}
	for _, m := range c.router.List() {
		value := "Not set (posts to current channel)"
		if m.ChannelID != "" {
			if mention, err := c.gw.ResolveChannel(ctx, m.ChannelID); err == nil {
				value = mention
			} else {
				value = fmt.Sprintf("Invalid ID: %s", m.ChannelID)
			}
		}
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:   m.Tag,
			Value:  value,
			Inline: false,
		})
	}
	return c.gw.SendEmbed(ctx, ev.ChannelID, embed)
}

// RejectNonAdmin is the OnReject handler for admin-only commands.
func (c *Commands) RejectNonAdmin(ctx context.Context, ev *discord.Event) error {
	return c.reply(ctx, ev, msgAdminRequired)
}

func (c *Commands) reply(ctx context.Context, ev *discord.Event, text string) error {
	_, err := c.gw.SendMessage(ctx, ev.ChannelID, text)
	return err
}
