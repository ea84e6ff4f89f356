package logger

import (
	"context"
	"log/slog"
	"strconv"
	"strings"
	"unicode"
)

// contextKey is a private type to avoid collisions in context.
type contextKey string

const (
	ctxRID       contextKey = "rid"
	ctxMessageID contextKey = "message_id"
	ctxUserID    contextKey = "user_id"
	ctxChannelID contextKey = "channel_id"
	ctxGuildID   contextKey = "guild_id"
	ctxLogger    contextKey = "logger"
	ctxHandler   contextKey = "handler"
)

// WithLogger stores the provided slog.Logger in context for propagation across layers.
func WithLogger(ctx context.Context, log *slog.Logger) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	if log == nil {
		return ctx
	}
	return context.WithValue(ctx, ctxLogger, log)
}

// FromContext extracts slog.Logger from context or returns global default.
func FromContext(ctx context.Context) *slog.Logger {
	if ctx == nil {
		return L
	}
	if v := ctx.Value(ctxLogger); v != nil {
		if l, ok := v.(*slog.Logger); ok {
			return l
		}
	}
	return L
}

// WithRID attaches a request correlation id into context.
func WithRID(ctx context.Context, rid string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxRID, rid)
}

// RIDFrom extracts rid from context if present.
func RIDFrom(ctx context.Context) string {
	return stringFrom(ctx, ctxRID)
}

// WithEventMeta attaches common Discord event identifiers to context.
// All identifiers are snowflake strings; empty values are still stored.
func WithEventMeta(ctx context.Context, messageID, channelID, userID string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx = context.WithValue(ctx, ctxMessageID, messageID)
	ctx = context.WithValue(ctx, ctxChannelID, channelID)
	ctx = context.WithValue(ctx, ctxUserID, userID)
	return ctx
}

// WithGuildID attaches the guild identifier to context.
func WithGuildID(ctx context.Context, guildID string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	if guildID == "" {
		return ctx
	}
	return context.WithValue(ctx, ctxGuildID, guildID)
}

// WithHandler stores handler identifier in context for downstream logs.
func WithHandler(ctx context.Context, handler string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	if handler == "" {
		return ctx
	}
	return context.WithValue(ctx, ctxHandler, handler)
}

// HandlerFrom returns handler identifier from context if present.
func HandlerFrom(ctx context.Context) string {
	return stringFrom(ctx, ctxHandler)
}

// UserIDFrom extracts the Discord user ID from context.
func UserIDFrom(ctx context.Context) string {
	return stringFrom(ctx, ctxUserID)
}

// ChannelIDFrom extracts the channel ID from context.
func ChannelIDFrom(ctx context.Context) string {
	return stringFrom(ctx, ctxChannelID)
}

// GuildIDFrom extracts the guild ID from context.
func GuildIDFrom(ctx context.Context) string {
	return stringFrom(ctx, ctxGuildID)
}

// MessageIDFrom extracts the message ID from context.
func MessageIDFrom(ctx context.Context) string {
	return stringFrom(ctx, ctxMessageID)
}

func stringFrom(ctx context.Context, key contextKey) string {
	if ctx == nil {
		return ""
	}
	if v := ctx.Value(key); v != nil {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// Sanitize trims non-printable runes from s to keep logs clean.
// It removes control characters (Unicode categories Cc, Cf) except for tab and newline.
func Sanitize(s string) string {
	if s == "" {
		return s
	}
	b := strings.Builder{}
	b.Grow(len(s))
	for _, r := range s {
		if r == '\n' || r == '\t' {
			b.WriteRune(r)
			continue
		}
		if unicode.IsControl(r) || unicode.Is(unicode.Cf, r) {
			// skip
			continue
		}
		// also skip DEL character
		if r == 0x7F {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// SanitizeLimit applies Sanitize and limits the output length in runes.
func SanitizeLimit(s string, max int) string {
	if max <= 0 {
		return ""
	}
	cleaned := Sanitize(s)
	// fast path
	if len([]rune(cleaned)) <= max {
		return cleaned
	}
	r := []rune(cleaned)
	return string(r[:max])
}

// BuildRID returns a correlation identifier in the format messageID:channelID:userID.
func BuildRID(messageID, channelID, userID string) string {
	return messageID + ":" + channelID + ":" + userID
}

// CompactRID shortens colon-separated snowflake RID into base36 segments for readability.
// When the input does not match the expected format it is returned unchanged.
func CompactRID(rid string) string {
	rid = strings.TrimSpace(rid)
	if rid == "" {
		return ""
	}
	parts := strings.Split(rid, ":")
	if len(parts) != 3 {
		return rid
	}
	compact := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			return rid
		}
		n, err := strconv.ParseUint(part, 10, 64)
		if err != nil {
			return rid
		}
		compact = append(compact, strings.ToLower(strconv.FormatUint(n, 36)))
	}
	return strings.Join(compact, ".")
}
