package post

import (
	"strings"
	"sync"
)

// Category pairs a reaction emoji with its tag. The set is fixed.
type Category struct {
	Emoji string
	Tag   string
}

// Categories lists the selectable categories in prompt order.
var Categories = []Category{
	{Emoji: "🎉", Tag: "Entertainment"},
	{Emoji: "📚", Tag: "Education"},
	{Emoji: "🌐", Tag: "Website"},
	{Emoji: "🛠️", Tag: "Hack"},
	{Emoji: "❓", Tag: "Others"},
}

// normalizeEmoji strips the U+FE0F variation selector; reaction payloads may
// carry the emoji with or without it.
func normalizeEmoji(emoji string) string {
	return strings.ReplaceAll(emoji, "\ufe0f", "")
}

// TagForEmoji maps a reaction emoji to its category tag.
func TagForEmoji(emoji string) (string, bool) {
	want := normalizeEmoji(emoji)
	for _, c := range Categories {
		if normalizeEmoji(c.Emoji) == want {
			return c.Tag, true
		}
	}
	return "", false
}

// ValidTag reports whether tag is one of the fixed categories.
func ValidTag(tag string) bool {
	for _, c := range Categories {
		if c.Tag == tag {
			return true
		}
	}
	return false
}

// TagNames returns the category tags in prompt order.
func TagNames() []string {
	names := make([]string, 0, len(Categories))
	for _, c := range Categories {
		names = append(names, c.Tag)
	}
	return names
}

// Mapping is one category-to-channel entry in a router snapshot.
type Mapping struct {
	Tag       string
	ChannelID string
}

// Router maps category tags to optional destination channel IDs. Mappings are
// in-memory only and reset to the config seed on restart.
type Router struct {
	mu       sync.RWMutex
	channels map[string]string
}

// NewRouter builds a Router seeded from config. Unknown tags in the seed are
// ignored.
func NewRouter(seed map[string]string) *Router {
	r := &Router{channels: make(map[string]string, len(Categories))}
	for tag, channelID := range seed {
		if ValidTag(tag) && strings.TrimSpace(channelID) != "" {
			r.channels[tag] = strings.TrimSpace(channelID)
		}
	}
	return r
}

// Resolve returns the destination channel for a tag, if one is mapped.
func (r *Router) Resolve(tag string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	channelID, ok := r.channels[tag]
	return channelID, ok && channelID != ""
}

// Update sets or clears a tag's destination channel. An empty channelID
// clears the mapping.
func (r *Router) Update(tag, channelID string) error {
	if !ValidTag(tag) {
		return ErrInvalidCategory
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	channelID = strings.TrimSpace(channelID)
	if channelID == "" {
		delete(r.channels, tag)
		return nil
	}
	r.channels[tag] = channelID
	return nil
}

// List returns all five mappings in prompt order; unmapped tags have an
// empty ChannelID.
func (r *Router) List() []Mapping {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Mapping, 0, len(Categories))
	for _, c := range Categories {
		out = append(out, Mapping{Tag: c.Tag, ChannelID: r.channels[c.Tag]})
	}
	return out
}
