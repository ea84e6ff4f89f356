package post

import "context"

// Gateway abstracts the chat platform operations the dialogue and publisher
// need. The production implementation wraps discordgo; tests use a fake.
type Gateway interface {
	// SendMessage posts content to a channel and returns the new message ID.
	SendMessage(ctx context.Context, channelID, content string) (string, error)
	// AddReaction attaches an emoji to a message.
	AddReaction(ctx context.Context, channelID, messageID, emoji string) error
	// RecentMessages returns up to limit most-recent message IDs in a channel.
	RecentMessages(ctx context.Context, channelID string, limit int) ([]string, error)
	// DeleteMessage removes a single message.
	DeleteMessage(ctx context.Context, channelID, messageID string) error
	// ResolveChannel returns a display mention for a channel ID, or
	// ErrUnknownChannel when the channel cannot be found.
	ResolveChannel(ctx context.Context, channelID string) (string, error)
}
