package bot

import (
	"context"
	"strings"
	"testing"

	"github.com/bwmarrin/discordgo"

	"github.com/nexonhq/nexon-bot/core/discord"
	"github.com/nexonhq/nexon-bot/internal/post"
)

type fakeGateway struct {
	sent    []string
	embeds  []*discordgo.MessageEmbed
	unknown map[string]bool
	admin   bool
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{unknown: make(map[string]bool)}
}

func (g *fakeGateway) SendMessage(_ context.Context, _, content string) (string, error) {
	g.sent = append(g.sent, content)
	return "msg-1", nil
}

func (g *fakeGateway) SendEmbed(_ context.Context, _ string, embed *discordgo.MessageEmbed) error {
	g.embeds = append(g.embeds, embed)
	return nil
}

func (g *fakeGateway) AddReaction(context.Context, string, string, string) error { return nil }

func (g *fakeGateway) RecentMessages(context.Context, string, int) ([]string, error) {
	return nil, nil
}

func (g *fakeGateway) DeleteMessage(context.Context, string, string) error { return nil }

func (g *fakeGateway) ResolveChannel(_ context.Context, channelID string) (string, error) {
	if g.unknown[channelID] {
		return "", post.ErrUnknownChannel
	}
	return "<#" + channelID + ">", nil
}

func (g *fakeGateway) IsAdmin(context.Context, string, string) (bool, error) {
	return g.admin, nil
}

func (g *fakeGateway) lastSent() string {
	if len(g.sent) == 0 {
		return ""
	}
	return g.sent[len(g.sent)-1]
}

func newTestCommands(gw *fakeGateway) (*Commands, *post.Router) {
	router := post.NewRouter(nil)
	store := post.NewStore()
	pub := post.NewPublisher(gw, router, nil, nil)
	dlg := post.NewDialogue(store, gw, pub)
	return NewCommands(dlg, router, gw), router
}

func cmdEvent() *discord.Event {
	return &discord.Event{Kind: discord.KindMessage, UserID: "42", ChannelID: "chan"}
}

func TestSetChannelInvalidCategory(t *testing.T) {
	gw := newFakeGateway()
	cmds, router := newTestCommands(gw)

	if err := cmds.SetChannel(context.Background(), cmdEvent(), []string{"Sports", "123"}); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(gw.lastSent(), "Invalid category") {
		t.Fatalf("reply = %q", gw.lastSent())
	}
	if _, ok := router.Resolve("Sports"); ok {
		t.Fatal("invalid category stored")
	}
}

func TestSetChannelSetAndClear(t *testing.T) {
	gw := newFakeGateway()
	cmds, router := newTestCommands(gw)

	if err := cmds.SetChannel(context.Background(), cmdEvent(), []string{"Education", "123"}); err != nil {
		t.Fatal(err)
	}
	if dest, ok := router.Resolve("Education"); !ok || dest != "123" {
		t.Fatalf("Resolve = %q, %v", dest, ok)
	}
	if !strings.Contains(gw.lastSent(), "<#123>") {
		t.Fatalf("reply = %q", gw.lastSent())
	}

	if err := cmds.SetChannel(context.Background(), cmdEvent(), []string{"Education"}); err != nil {
		t.Fatal(err)
	}
	if _, ok := router.Resolve("Education"); ok {
		t.Fatal("mapping not cleared")
	}
	if !strings.Contains(gw.lastSent(), "Removed channel mapping") {
		t.Fatalf("reply = %q", gw.lastSent())
	}
}

func TestSetChannelUnknownChannel(t *testing.T) {
	gw := newFakeGateway()
	gw.unknown["999"] = true
	cmds, router := newTestCommands(gw)

	if err := cmds.SetChannel(context.Background(), cmdEvent(), []string{"Hack", "999"}); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(gw.lastSent(), "Channel not found") {
		t.Fatalf("reply = %q", gw.lastSent())
	}
	if _, ok := router.Resolve("Hack"); ok {
		t.Fatal("unknown channel stored")
	}
}

func TestSetChannelUsage(t *testing.T) {
	gw := newFakeGateway()
	cmds, _ := newTestCommands(gw)
	if err := cmds.SetChannel(context.Background(), cmdEvent(), nil); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(gw.lastSent(), "Usage") {
		t.Fatalf("reply = %q", gw.lastSent())
	}
}

func TestChannelsEmbedListsAllCategories(t *testing.T) {
	gw := newFakeGateway()
	cmds, router := newTestCommands(gw)
	if err := router.Update("Website", "555"); err != nil {
		t.Fatal(err)
	}

	if err := cmds.Channels(context.Background(), cmdEvent(), nil); err != nil {
		t.Fatal(err)
	}
	if len(gw.embeds) != 1 {
		t.Fatalf("embeds = %d", len(gw.embeds))
	}
	embed := gw.embeds[0]
	if embed.Title != "📋 Channel Mappings" {
		t.Fatalf("title = %q", embed.Title)
	}
	if len(embed.Fields) != 5 {
		t.Fatalf("fields = %d", len(embed.Fields))
	}
	var websiteValue, hackValue string
	for _, f := range embed.Fields {
		switch f.Name {
		case "Website":
			websiteValue = f.Value
		case "Hack":
			hackValue = f.Value
		}
	}
	if websiteValue != "<#555>" {
		t.Fatalf("Website value = %q", websiteValue)
	}
	if !strings.Contains(hackValue, "Not set") {
		t.Fatalf("Hack value = %q", hackValue)
	}
}

func TestPostCommandStartsSession(t *testing.T) {
	gw := newFakeGateway()
	cmds, _ := newTestCommands(gw)

	if err := cmds.Post(context.Background(), cmdEvent(), nil); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(gw.lastSent(), "Step 1/3") {
		t.Fatalf("reply = %q", gw.lastSent())
	}
	if err := cmds.Post(context.Background(), cmdEvent(), nil); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(gw.lastSent(), "already have an active post") {
		t.Fatalf("reply = %q", gw.lastSent())
	}
}
