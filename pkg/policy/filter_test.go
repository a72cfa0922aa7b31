package policy

import (
	"testing"

	"github.com/tinyland-inc/mediaclaw/pkg/bus"
)

func watchedSet(ids ...string) Watched {
	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return func(id string) bool {
		_, ok := set[id]
		return ok
	}
}

func baseMessage() *bus.Message {
	return &bus.Message{
		ID:        "m1",
		ChannelID: "c1",
		GuildID:   "g1",
		AuthorID:  "u1",
		Content:   "just some text",
		Kind:      bus.KindDefault,
	}
}

func TestExempt_Rules(t *testing.T) {
	watched := watchedSet("c1")

	tests := []struct {
		name   string
		mutate func(*bus.Message)
		exempt bool
	}{
		{"plain text in watched channel", func(m *bus.Message) {}, false},
		{"unwatched channel", func(m *bus.Message) { m.ChannelID = "c2" }, true},
		{"bot without webhook send", func(m *bus.Message) { m.AuthorBot = true }, true},
		{"bot with webhook send", func(m *bus.Message) { m.AuthorBot = true; m.WebhookID = "wh" }, false},
		{"no guild context", func(m *bus.Message) { m.GuildID = "" }, true},
		{"system notice type", func(m *bus.Message) { m.Kind = bus.KindOther }, true},
		{"threaded reply", func(m *bus.Message) { m.Kind = bus.KindReply }, false},
		{"one attachment", func(m *bus.Message) { m.Attachments = 1 }, true},
		{"forwarded snapshot", func(m *bus.Message) { m.Forwarded = true }, true},
		{"sticker", func(m *bus.Message) { m.Stickers = 1 }, true},
		{"http link", func(m *bus.Message) { m.Content = "look http://example.com/cat.png" }, true},
		{"https link uppercase", func(m *bus.Message) { m.Content = "HTTPS://EXAMPLE.COM/page" }, true},
		{"bare domain without scheme", func(m *bus.Message) { m.Content = "example.com is neat" }, false},
		{"empty content", func(m *bus.Message) { m.Content = "" }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := baseMessage()
			tt.mutate(msg)
			if got := Exempt(msg, watched); got != tt.exempt {
				t.Errorf("Exempt() = %v, want %v", got, tt.exempt)
			}
		})
	}
}

func TestExempt_UnwatchedWinsOverEverything(t *testing.T) {
	// Channel check is rule 1: even a plain-text message from a human is
	// exempt outside the watched set, regardless of other attributes.
	msg := baseMessage()
	msg.ChannelID = "elsewhere"
	msg.Attachments = 0
	msg.Content = "pure text"

	if !Exempt(msg, watchedSet("c1")) {
		t.Error("expected exemption for unwatched channel")
	}
}

func TestExempt_AttachmentWinsInWatchedChannel(t *testing.T) {
	msg := baseMessage()
	msg.Attachments = 2
	msg.Content = "text that would otherwise violate"

	if !Exempt(msg, watchedSet("c1")) {
		t.Error("expected exemption for attachment-bearing message")
	}
}
