// Package policy implements the candidacy filter for the media-only rule:
// a pure predicate deciding whether a message is exempt from enforcement.
package policy

import (
	"regexp"

	"github.com/tinyland-inc/mediaclaw/pkg/bus"
)

// urlPattern treats a shared link as media: scheme, host and optional path,
// case-insensitive.
var urlPattern = regexp.MustCompile(`(?i)\bhttps?://\S+\.\S+`)

// Watched reports whether a channel is under the media-only policy.
type Watched func(channelID string) bool

// Exempt returns true when the message complies with the media-only policy
// and needs no further handling. Rules are evaluated in order; the first
// match wins.
func Exempt(msg *bus.Message, watched Watched) bool {
	// 1. Channel not under the policy.
	if !watched(msg.ChannelID) {
		return true
	}

	// 2. Automated accounts that are not proxy deliveries, and anything
	// without guild context (DMs, system traffic).
	if msg.AuthorBot && !msg.ProxyDelivery() {
		return true
	}
	if msg.GuildID == "" {
		return true
	}

	// 3. Only standard posts and threaded replies are judged.
	if msg.Kind != bus.KindDefault && msg.Kind != bus.KindReply {
		return true
	}

	// 4. File attachments are media.
	if msg.Attachments > 0 {
		return true
	}

	// 5. Forwarded/snapshot references are not original content.
	if msg.Forwarded {
		return true
	}

	// 6. Stickers count as media.
	if msg.Stickers > 0 {
		return true
	}

	// 7. A shared link is treated as media.
	if urlPattern.MatchString(msg.Content) {
		return true
	}

	return false
}
