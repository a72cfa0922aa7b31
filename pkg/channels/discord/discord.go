// Package discord connects the engine to Discord's gateway and REST API.
package discord

import (
	"context"
	"fmt"

	"github.com/bwmarrin/discordgo"

	"github.com/tinyland-inc/mediaclaw/pkg/bus"
	"github.com/tinyland-inc/mediaclaw/pkg/channels"
	"github.com/tinyland-inc/mediaclaw/pkg/logger"
)

// Channel receives gateway message events and exposes the REST operations
// the engine performs. It implements both channels.Channel and
// engine.Platform.
type Channel struct {
	*channels.BaseChannel
	session   *discordgo.Session
	botUserID string // populated on start
}

// New creates a Discord channel from a bot token.
func New(token string, msgBus *bus.MessageBus) (*Channel, error) {
	session, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("create discord session: %w", err)
	}

	session.Identify.Intents = discordgo.IntentsGuildMessages |
		discordgo.IntentsMessageContent

	return &Channel{
		BaseChannel: channels.NewBaseChannel("discord", msgBus),
		session:     session,
	}, nil
}

// Start opens the gateway connection and begins receiving events. The
// channel only reports running once the gateway delivers its ready event.
func (c *Channel) Start(_ context.Context) error {
	logger.InfoC("discord", "Starting discord bot")

	c.session.AddHandler(c.handleReady)
	c.session.AddHandler(c.handleMessageCreate)

	if err := c.session.Open(); err != nil {
		return fmt.Errorf("open discord session: %w", err)
	}
	return nil
}

func (c *Channel) handleReady(_ *discordgo.Session, r *discordgo.Ready) {
	c.botUserID = r.User.ID
	c.SetRunning(true)
	logger.InfoCF("discord", "Discord bot connected", map[string]any{
		"username": r.User.Username,
		"id":       r.User.ID,
	})
}

// Stop closes the gateway connection.
func (c *Channel) Stop(_ context.Context) error {
	logger.InfoC("discord", "Stopping discord bot")
	c.SetRunning(false)
	return c.session.Close()
}

func (c *Channel) handleMessageCreate(_ *discordgo.Session, m *discordgo.MessageCreate) {
	// Never react to our own sends (notices, thread posts).
	if m.Author != nil && m.Author.ID == c.botUserID {
		return
	}

	if err := c.Publish(context.Background(), convertMessage(m.Message)); err != nil {
		logger.WarnCF("discord", "Dropping gateway message", map[string]any{
			"message_id": m.ID,
			"error":      err.Error(),
		})
	}
}

// convertMessage maps a gateway message onto the engine's platform-neutral
// shape.
func convertMessage(m *discordgo.Message) *bus.Message {
	msg := &bus.Message{
		ID:          m.ID,
		ChannelID:   m.ChannelID,
		GuildID:     m.GuildID,
		Content:     m.Content,
		WebhookID:   m.WebhookID,
		Attachments: len(m.Attachments),
		Embeds:      len(m.Embeds),
		Stickers:    len(m.StickerItems),
		Forwarded:   len(m.MessageSnapshots) > 0,
		Timestamp:   m.Timestamp,
	}

	if m.Author != nil {
		msg.AuthorID = m.Author.ID
		msg.AuthorName = m.Author.Username
		msg.AuthorBot = m.Author.Bot
	}
	if m.Member != nil && m.Member.Nick != "" {
		msg.AuthorName = m.Member.Nick
	}
	if m.MessageReference != nil {
		msg.ReferenceID = m.MessageReference.MessageID
	}
	if m.Thread != nil {
		msg.ThreadID = m.Thread.ID
	}

	switch m.Type {
	case discordgo.MessageTypeDefault:
		msg.Kind = bus.KindDefault
	case discordgo.MessageTypeReply:
		msg.Kind = bus.KindReply
	default:
		msg.Kind = bus.KindOther
	}

	return msg
}

// Message fetches a single message by ID.
func (c *Channel) Message(_ context.Context, channelID, messageID string) (*bus.Message, error) {
	m, err := c.session.ChannelMessage(channelID, messageID)
	if err != nil {
		return nil, fmt.Errorf("fetch message %s: %w", messageID, err)
	}
	return convertMessage(m), nil
}

// RecentMessages fetches up to limit messages from a channel, newest first.
func (c *Channel) RecentMessages(_ context.Context, channelID string, limit int) ([]*bus.Message, error) {
	raw, err := c.session.ChannelMessages(channelID, limit, "", "", "")
	if err != nil {
		return nil, fmt.Errorf("fetch recent messages in %s: %w", channelID, err)
	}
	out := make([]*bus.Message, 0, len(raw))
	for _, m := range raw {
		out = append(out, convertMessage(m))
	}
	return out, nil
}

// Send posts content to a channel or thread.
func (c *Channel) Send(_ context.Context, channelID, content string) (string, error) {
	m, err := c.session.ChannelMessageSend(channelID, content)
	if err != nil {
		return "", fmt.Errorf("send to %s: %w", channelID, err)
	}
	return m.ID, nil
}

// Delete removes a message.
func (c *Channel) Delete(_ context.Context, channelID, messageID string) error {
	return c.session.ChannelMessageDelete(channelID, messageID)
}

// StartThread creates a public thread on a message.
func (c *Channel) StartThread(_ context.Context, channelID, messageID, name string, archiveMinutes int) (string, error) {
	thread, err := c.session.MessageThreadStartComplex(channelID, messageID, &discordgo.ThreadStart{
		Name:                name,
		AutoArchiveDuration: archiveMinutes,
	})
	if err != nil {
		return "", fmt.Errorf("start thread on %s: %w", messageID, err)
	}
	return thread.ID, nil
}

// AddThreadMember adds a user to a thread.
func (c *Channel) AddThreadMember(_ context.Context, threadID, userID string) error {
	return c.session.ThreadMemberAdd(threadID, userID)
}
