package discord

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/tinyland-inc/mediaclaw/pkg/bus"
)

func TestReadyEventMarksConnected(t *testing.T) {
	mb := bus.NewMessageBus()
	defer mb.Close()

	c, err := New("test-token", mb)
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	if c.IsRunning() {
		t.Fatal("channel should not report running before the ready event")
	}

	c.handleReady(nil, &discordgo.Ready{
		User: &discordgo.User{ID: "bot-1", Username: "mediaclaw"},
	})

	if !c.IsRunning() {
		t.Error("channel should report running after the ready event")
	}
	if c.botUserID != "bot-1" {
		t.Errorf("botUserID = %q, want bot-1", c.botUserID)
	}
}

func TestOwnMessagesNotPublished(t *testing.T) {
	mb := bus.NewMessageBus()
	defer mb.Close()

	c, err := New("test-token", mb)
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	c.handleReady(nil, &discordgo.Ready{User: &discordgo.User{ID: "bot-1"}})

	c.handleMessageCreate(nil, &discordgo.MessageCreate{Message: &discordgo.Message{
		ID:     "own-1",
		Author: &discordgo.User{ID: "bot-1"},
	}})
	c.handleMessageCreate(nil, &discordgo.MessageCreate{Message: &discordgo.Message{
		ID:     "theirs-1",
		Author: &discordgo.User{ID: "user-1"},
	}})

	msg, ok := mb.ConsumeInbound(context.Background())
	if !ok || msg.ID != "theirs-1" {
		t.Fatalf("expected only theirs-1 on the bus, got %v (ok=%v)", msg, ok)
	}
}

func TestConvertMessage(t *testing.T) {
	now := time.Now()
	m := &discordgo.Message{
		ID:        "msg-1",
		ChannelID: "chan-1",
		GuildID:   "guild-1",
		Content:   "hello",
		Author:    &discordgo.User{ID: "user-1", Username: "alice", Bot: false},
		Member:    &discordgo.Member{Nick: "Allie"},
		Type:      discordgo.MessageTypeReply,
		MessageReference: &discordgo.MessageReference{
			MessageID: "anchor-1",
		},
		Attachments: []*discordgo.MessageAttachment{{ID: "a1"}},
		Timestamp:   now,
	}

	got := convertMessage(m)

	if got.ID != "msg-1" || got.ChannelID != "chan-1" || got.GuildID != "guild-1" {
		t.Errorf("identity fields wrong: %+v", got)
	}
	if got.AuthorID != "user-1" || got.AuthorName != "Allie" {
		t.Errorf("author fields wrong: %+v", got)
	}
	if got.Kind != bus.KindReply || got.ReferenceID != "anchor-1" {
		t.Errorf("reply fields wrong: %+v", got)
	}
	if got.Attachments != 1 || got.Embeds != 0 || got.Stickers != 0 {
		t.Errorf("media counts wrong: %+v", got)
	}
	if !got.HasMedia() {
		t.Error("message with attachment should report media")
	}
	if !got.Timestamp.Equal(now) {
		t.Errorf("timestamp wrong: %v", got.Timestamp)
	}
}

func TestConvertMessageKinds(t *testing.T) {
	cases := []struct {
		msgType discordgo.MessageType
		want    bus.Kind
	}{
		{discordgo.MessageTypeDefault, bus.KindDefault},
		{discordgo.MessageTypeReply, bus.KindReply},
		{discordgo.MessageTypeChannelPinnedMessage, bus.KindOther},
		{discordgo.MessageTypeThreadCreated, bus.KindOther},
	}
	for _, tc := range cases {
		got := convertMessage(&discordgo.Message{Type: tc.msgType})
		if got.Kind != tc.want {
			t.Errorf("type %d: kind = %v, want %v", tc.msgType, got.Kind, tc.want)
		}
	}
}

func TestConvertWebhookDelivery(t *testing.T) {
	m := &discordgo.Message{
		ID:        "msg-1",
		WebhookID: "hook-1",
		Author:    &discordgo.User{ID: "hook-user", Username: "Echo", Bot: true},
		Type:      discordgo.MessageTypeDefault,
	}
	got := convertMessage(m)
	if !got.ProxyDelivery() {
		t.Error("webhook message should be a proxy delivery")
	}
	if !got.AuthorBot {
		t.Error("webhook author should be flagged as bot")
	}
}

func TestConvertForwardedMessage(t *testing.T) {
	m := &discordgo.Message{
		ID:               "msg-1",
		Type:             discordgo.MessageTypeDefault,
		MessageSnapshots: []discordgo.MessageSnapshot{{}},
	}
	if got := convertMessage(m); !got.Forwarded {
		t.Error("message with snapshots should be marked forwarded")
	}
}

func TestConvertThreadBearingMessage(t *testing.T) {
	m := &discordgo.Message{
		ID:     "anchor-1",
		Type:   discordgo.MessageTypeDefault,
		Thread: &discordgo.Channel{ID: "thread-1"},
	}
	if got := convertMessage(m); got.ThreadID != "thread-1" {
		t.Errorf("thread ID = %q, want thread-1", got.ThreadID)
	}
}
