package post

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/nexonhq/nexon-bot/core/discord"
)

type sentMsg struct {
	ChannelID string
	Content   string
	ID        string
}

// fakeGateway records every outbound call; it stands in for discordgo.
type fakeGateway struct {
	mu        sync.Mutex
	sent      []sentMsg
	reactions []string
	deleted   []string
	history   []string
	nextID    int

	sendErr    error
	reactErr   error
	historyErr error
	unknown    map[string]bool
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{unknown: make(map[string]bool)}
}

func (g *fakeGateway) SendMessage(_ context.Context, channelID, content string) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.sendErr != nil {
		return "", g.sendErr
	}
	g.nextID++
	id := "msg-" + strconv.Itoa(g.nextID)
	g.sent = append(g.sent, sentMsg{ChannelID: channelID, Content: content, ID: id})
	return id, nil
}

func (g *fakeGateway) AddReaction(_ context.Context, _, messageID, emoji string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.reactErr != nil {
		return g.reactErr
	}
	g.reactions = append(g.reactions, messageID+"/"+emoji)
	return nil
}

func (g *fakeGateway) RecentMessages(_ context.Context, _ string, limit int) ([]string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.historyErr != nil {
		return nil, g.historyErr
	}
	if len(g.history) > limit {
		return g.history[:limit], nil
	}
	return g.history, nil
}

func (g *fakeGateway) DeleteMessage(_ context.Context, _, messageID string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.deleted = append(g.deleted, messageID)
	return nil
}

func (g *fakeGateway) ResolveChannel(_ context.Context, channelID string) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.unknown[channelID] {
		return "", ErrUnknownChannel
	}
	return "<#" + channelID + ">", nil
}

func (g *fakeGateway) lastSent() sentMsg {
	g.mu.Lock()
	defer g.mu.Unlock()
	if len(g.sent) == 0 {
		return sentMsg{}
	}
	return g.sent[len(g.sent)-1]
}

func (g *fakeGateway) sentTo(channelID string) []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	var out []string
	for _, m := range g.sent {
		if m.ChannelID == channelID {
			out = append(out, m.Content)
		}
	}
	return out
}

func newTestDialogue(gw *fakeGateway, router *Router) (*Dialogue, *Store) {
	store := NewStore()
	pub := NewPublisher(gw, router, nil, nil)
	return NewDialogue(store, gw, pub), store
}

func msgEvent(userID, channelID, content string) *discord.Event {
	return &discord.Event{
		Kind:      discord.KindMessage,
		UserID:    userID,
		ChannelID: channelID,
		Content:   content,
	}
}

func reactEvent(userID, channelID, messageID, emoji string) *discord.Event {
	return &discord.Event{
		Kind:      discord.KindReaction,
		UserID:    userID,
		ChannelID: channelID,
		MessageID: messageID,
		Emoji:     emoji,
	}
}

func TestDialogueFullFlowWithLink(t *testing.T) {
	ctx := context.Background()
	gw := newFakeGateway()
	router := NewRouter(map[string]string{"Education": "dest-chan"})
	dlg, store := newTestDialogue(gw, router)

	if err := dlg.Start(ctx, msgEvent("42", "origin", "!post")); err != nil {
		t.Fatal(err)
	}
	if !dlg.InProgress("42") {
		t.Fatal("no session after start")
	}
	if got := gw.lastSent().Content; !strings.Contains(got, "Step 1/3") {
		t.Fatalf("topic prompt = %q", got)
	}

	if err := dlg.HandleMessage(ctx, msgEvent("42", "origin", "Go generics")); err != nil {
		t.Fatal(err)
	}
	if got := gw.lastSent().Content; !strings.Contains(got, "Step 2/3") {
		t.Fatalf("description prompt = %q", got)
	}

	if err := dlg.HandleMessage(ctx, msgEvent("42", "origin", "A tour of type parameters")); err != nil {
		t.Fatal(err)
	}
	if got := gw.lastSent().Content; !strings.Contains(got, "Step 3/3") {
		t.Fatalf("link prompt = %q", got)
	}

	if err := dlg.HandleMessage(ctx, msgEvent("42", "origin", "https://example.com/generics")); err != nil {
		t.Fatal(err)
	}
	prompt := gw.lastSent()
	if !strings.Contains(prompt.Content, "Final Step") {
		t.Fatalf("category prompt = %q", prompt.Content)
	}
	if len(gw.reactions) != 5 {
		t.Fatalf("reactions = %d, want 5", len(gw.reactions))
	}

	sess, _ := store.Get("42")
	if sess.PromptMessageID != prompt.ID {
		t.Fatalf("prompt id = %q, want %q", sess.PromptMessageID, prompt.ID)
	}

	gw.history = []string{"h1", "h2", "h3"}
	if err := dlg.HandleReaction(ctx, reactEvent("42", "origin", prompt.ID, "📚")); err != nil {
		t.Fatal(err)
	}

	if dlg.InProgress("42") {
		t.Fatal("session survived completion")
	}
	if len(gw.deleted) != 3 {
		t.Fatalf("deleted = %v", gw.deleted)
	}

	wantBody := "# Go generics\n> A tour of type parameters\nhttps://example.com/generics"
	origin := gw.sentTo("origin")
	if origin[len(origin)-1] != wantBody {
		t.Fatalf("origin body = %q", origin[len(origin)-1])
	}
	dest := gw.sentTo("dest-chan")
	if len(dest) != 1 || dest[0] != wantBody {
		t.Fatalf("category channel got %v", dest)
	}
}

func TestDialogueFullFlowSkippedLink(t *testing.T) {
	ctx := context.Background()
	gw := newFakeGateway()
	dlg, _ := newTestDialogue(gw, NewRouter(nil))

	if err := dlg.Start(ctx, msgEvent("7", "origin", "!post")); err != nil {
		t.Fatal(err)
	}
	for _, input := range []string{"Topic", "Description", "skip"} {
		if err := dlg.HandleMessage(ctx, msgEvent("7", "origin", input)); err != nil {
			t.Fatal(err)
		}
	}
	prompt := gw.lastSent()
	if err := dlg.HandleReaction(ctx, reactEvent("7", "origin", prompt.ID, "🎉")); err != nil {
		t.Fatal(err)
	}

	origin := gw.sentTo("origin")
	got := origin[len(origin)-1]
	if got != "# Topic\n> Description" {
		t.Fatalf("body = %q, link must be omitted", got)
	}
}

func TestDialogueCancelAtAnyStep(t *testing.T) {
	ctx := context.Background()
	for _, inputs := range [][]string{
		{},
		{"Topic"},
		{"Topic", "Desc"},
		{"Topic", "Desc", "link"},
	} {
		gw := newFakeGateway()
		dlg, _ := newTestDialogue(gw, NewRouter(nil))
		if err := dlg.Start(ctx, msgEvent("9", "origin", "!post")); err != nil {
			t.Fatal(err)
		}
		for _, in := range inputs {
			if err := dlg.HandleMessage(ctx, msgEvent("9", "origin", in)); err != nil {
				t.Fatal(err)
			}
		}
		if err := dlg.HandleMessage(ctx, msgEvent("9", "origin", "CANCEL")); err != nil {
			t.Fatal(err)
		}
		if dlg.InProgress("9") {
			t.Fatalf("session survived cancel after %d steps", len(inputs))
		}
		if got := gw.lastSent().Content; !strings.Contains(got, "cancelled") {
			t.Fatalf("cancel reply = %q", got)
		}
	}
}

func TestDialogueConcurrentMessagesStaySerialized(t *testing.T) {
	ctx := context.Background()
	gw := newFakeGateway()
	dlg, store := newTestDialogue(gw, NewRouter(nil))

	if err := dlg.Start(ctx, msgEvent("42", "origin", "!post")); err != nil {
		t.Fatal(err)
	}

	inputs := []string{"my topic", "my description"}
	var wg sync.WaitGroup
	for _, in := range inputs {
		wg.Add(1)
		go func(content string) {
			defer wg.Done()
			if err := dlg.HandleMessage(ctx, msgEvent("42", "origin", content)); err != nil {
				t.Error(err)
			}
		}(in)
	}
	wg.Wait()

	sess, ok := store.Get("42")
	if !ok {
		t.Fatal("session gone after two inputs")
	}
	if sess.Step != StepLink {
		t.Fatalf("step = %v, want %v", sess.Step, StepLink)
	}
	if sess.Draft.Topic == sess.Draft.Description {
		t.Fatalf("one input applied twice: %+v", sess.Draft)
	}
	for _, in := range inputs {
		if sess.Draft.Topic != in && sess.Draft.Description != in {
			t.Fatalf("input %q lost: %+v", in, sess.Draft)
		}
	}
}

func TestDialogueDuplicateStartRejected(t *testing.T) {
	ctx := context.Background()
	gw := newFakeGateway()
	dlg, store := newTestDialogue(gw, NewRouter(nil))

	if err := dlg.Start(ctx, msgEvent("42", "origin", "!post")); err != nil {
		t.Fatal(err)
	}
	if err := dlg.HandleMessage(ctx, msgEvent("42", "origin", "My topic")); err != nil {
		t.Fatal(err)
	}

	if err := dlg.Start(ctx, msgEvent("42", "origin", "!post")); err != nil {
		t.Fatal(err)
	}
	if got := gw.lastSent().Content; !strings.Contains(got, "already have an active post") {
		t.Fatalf("rejection = %q", got)
	}

	sess, ok := store.Get("42")
	if !ok || sess.Step != StepDescription || sess.Draft.Topic != "My topic" {
		t.Fatal("existing session must be untouched by a duplicate start")
	}
}

func TestDialogueReactionFiltering(t *testing.T) {
	ctx := context.Background()
	gw := newFakeGateway()
	dlg, store := newTestDialogue(gw, NewRouter(nil))

	if err := dlg.Start(ctx, msgEvent("42", "origin", "!post")); err != nil {
		t.Fatal(err)
	}
	for _, in := range []string{"T", "D", "skip"} {
		if err := dlg.HandleMessage(ctx, msgEvent("42", "origin", in)); err != nil {
			t.Fatal(err)
		}
	}
	prompt := gw.lastSent()

	cases := []struct {
		name string
		ev   *discord.Event
	}{
		{"foreign message", reactEvent("42", "origin", "msg-999", "📚")},
		{"unknown emoji", reactEvent("42", "origin", prompt.ID, "🔥")},
		{"no session user", reactEvent("77", "origin", prompt.ID, "📚")},
	}
	for _, tc := range cases {
		if err := dlg.HandleReaction(ctx, tc.ev); err != nil {
			t.Fatalf("%s: %v", tc.name, err)
		}
		if _, ok := store.Get("42"); !ok {
			t.Fatalf("%s: session consumed", tc.name)
		}
	}
}

func TestDialogueEarlyReactionIgnored(t *testing.T) {
	ctx := context.Background()
	gw := newFakeGateway()
	dlg, store := newTestDialogue(gw, NewRouter(nil))

	if err := dlg.Start(ctx, msgEvent("42", "origin", "!post")); err != nil {
		t.Fatal(err)
	}
	// Still at the topic step; any reaction must be a no-op.
	if err := dlg.HandleReaction(ctx, reactEvent("42", "origin", "msg-1", "📚")); err != nil {
		t.Fatal(err)
	}
	if sess, ok := store.Get("42"); !ok || sess.Step != StepTopic {
		t.Fatal("early reaction changed session state")
	}
}

func TestDialogueDuplicateReactionCompletesOnce(t *testing.T) {
	ctx := context.Background()
	gw := newFakeGateway()
	dlg, _ := newTestDialogue(gw, NewRouter(nil))

	if err := dlg.Start(ctx, msgEvent("42", "origin", "!post")); err != nil {
		t.Fatal(err)
	}
	for _, in := range []string{"T", "D", "skip"} {
		if err := dlg.HandleMessage(ctx, msgEvent("42", "origin", in)); err != nil {
			t.Fatal(err)
		}
	}
	prompt := gw.lastSent()

	ev := reactEvent("42", "origin", prompt.ID, "❓")
	if err := dlg.HandleReaction(ctx, ev); err != nil {
		t.Fatal(err)
	}
	before := len(gw.sentTo("origin"))
	if err := dlg.HandleReaction(ctx, ev); err != nil {
		t.Fatal(err)
	}
	if after := len(gw.sentTo("origin")); after != before {
		t.Fatalf("duplicate reaction published again: %d -> %d", before, after)
	}
}

func TestDialogueReactionFailuresDoNotAbortPrompt(t *testing.T) {
	ctx := context.Background()
	gw := newFakeGateway()
	gw.reactErr = fmt.Errorf("missing permission")
	dlg, store := newTestDialogue(gw, NewRouter(nil))

	if err := dlg.Start(ctx, msgEvent("42", "origin", "!post")); err != nil {
		t.Fatal(err)
	}
	for _, in := range []string{"T", "D", "skip"} {
		if err := dlg.HandleMessage(ctx, msgEvent("42", "origin", in)); err != nil {
			t.Fatal(err)
		}
	}
	sess, ok := store.Get("42")
	if !ok || sess.Step != StepCategory || sess.PromptMessageID == "" {
		t.Fatal("failed reactions must not block the category step")
	}
}
