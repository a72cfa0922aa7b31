package bus

import "time"

// Kind classifies a platform message for policy purposes.
type Kind int

const (
	// KindDefault is a standard channel post.
	KindDefault Kind = iota
	// KindReply is a threaded reply to another message.
	KindReply
	// KindOther covers platform system notices, thread-creation
	// announcements, pins, joins and the like.
	KindOther
)

// Message is the platform-neutral view of a chat message, carrying exactly
// the attributes the media-only policy inspects. The channel adapter builds
// one per inbound event; fetch operations return the same shape.
type Message struct {
	ID        string
	ChannelID string
	GuildID   string
	Content   string

	AuthorID   string
	AuthorName string
	AuthorBot  bool

	// WebhookID is non-empty when the message was delivered through a
	// webhook-style send, the marker of an identity-proxy repost.
	WebhookID string

	Kind        Kind
	Attachments int
	Embeds      int
	Stickers    int

	// Forwarded marks a forwarded/snapshot reference rather than
	// original content.
	Forwarded bool

	// ReferenceID is the replied-to message in the same channel, if any.
	ReferenceID string

	// ThreadID is the discussion thread already attached to this
	// message, if any.
	ThreadID string

	Timestamp time.Time
}

// HasMedia reports whether the message carries an attachment or a rich
// embed, which qualifies it as an anchor candidate.
func (m *Message) HasMedia() bool {
	return m.Attachments > 0 || m.Embeds > 0
}

// ProxyDelivery reports whether the message arrived through a webhook-style
// send.
func (m *Message) ProxyDelivery() bool {
	return m.WebhookID != ""
}
