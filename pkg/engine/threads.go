package engine

import (
	"context"
	"fmt"

	"github.com/tinyland-inc/mediaclaw/pkg/bus"
	"github.com/tinyland-inc/mediaclaw/pkg/logger"
)

const maxThreadNameRunes = 100

// resolveThread finds or creates the discussion thread the message's text
// belongs in. A reply anchors on its referenced message; anything else
// anchors on the newest media post among the channel's recent messages.
//
// Returns ("", nil) for the terminal no-anchor outcome: the channel has no
// recent media post, so the message is deleted and the author is told to
// post media first. Any other empty result is an error.
func (e *Engine) resolveThread(ctx context.Context, msg *bus.Message, realAuthorID string) (string, error) {
	var anchor *bus.Message

	if msg.Kind == bus.KindReply && msg.ReferenceID != "" {
		ref, err := e.platform.Message(ctx, msg.ChannelID, msg.ReferenceID)
		if err != nil {
			// Referenced message gone; fall back to scanning.
			logger.WarnCF("engine", "Fetching reply target failed, scanning instead", map[string]any{
				"channel_id": msg.ChannelID,
				"message_id": msg.ReferenceID,
				"error":      err.Error(),
			})
		} else {
			anchor = ref
		}
	}

	if anchor == nil {
		found, err := e.scanForAnchor(ctx, msg)
		if err != nil {
			return "", err
		}
		anchor = found
	}

	if anchor == nil {
		e.noAnchor(ctx, msg, realAuthorID)
		return "", nil
	}

	threadID := anchor.ThreadID
	if threadID == "" {
		name := truncateRunes(anchor.AuthorName+"'s media", maxThreadNameRunes)
		created, err := e.platform.StartThread(ctx, anchor.ChannelID, anchor.ID, name, e.opts.ThreadArchiveMinutes)
		if err != nil {
			return "", fmt.Errorf("starting thread on %s: %w", anchor.ID, err)
		}
		threadID = created
		logger.InfoCF("engine", "Thread created", map[string]any{
			"channel_id": anchor.ChannelID,
			"anchor_id":  anchor.ID,
			"thread_id":  threadID,
		})
	}

	// If the anchor was delivered through the identity proxy, invite the
	// real sender so the thread notifies the right person rather than the
	// persona's webhook.
	if anchor.ProxyDelivery() {
		if meta := e.resolver.Resolve(ctx, anchor.ID); meta != nil {
			if err := e.platform.AddThreadMember(ctx, threadID, meta.SenderID); err != nil {
				logger.WarnCF("engine", "Adding anchor author to thread failed", map[string]any{
					"thread_id": threadID,
					"user_id":   meta.SenderID,
					"error":     err.Error(),
				})
			}
		}
	}

	return threadID, nil
}

// scanForAnchor returns the newest media-bearing message near the top of
// the channel, excluding the message being relocated.
func (e *Engine) scanForAnchor(ctx context.Context, msg *bus.Message) (*bus.Message, error) {
	recent, err := e.platform.RecentMessages(ctx, msg.ChannelID, e.opts.AnchorScanLimit)
	if err != nil {
		return nil, fmt.Errorf("scanning channel %s: %w", msg.ChannelID, err)
	}
	for _, candidate := range recent {
		if candidate.ID == msg.ID {
			continue
		}
		if candidate.HasMedia() {
			return candidate, nil
		}
	}
	return nil, nil
}

// noAnchor handles the terminal outcome: nothing to attach a thread to, so
// the message is removed and the author is asked to post media first. For
// attributed proxy content the resolved real sender is addressed, not the
// persona.
func (e *Engine) noAnchor(ctx context.Context, msg *bus.Message, realAuthorID string) {
	e.stats.Inc(StatNoAnchor)
	logger.InfoCF("engine", "No media post to anchor on, removing message", map[string]any{
		"channel_id": msg.ChannelID,
		"message_id": msg.ID,
	})

	if err := e.platform.Delete(ctx, msg.ChannelID, msg.ID); err != nil {
		logger.WarnCF("engine", "Deleting anchorless message failed", map[string]any{
			"message_id": msg.ID,
			"error":      err.Error(),
		})
	}

	notice := fmt.Sprintf("%s this channel is media-only and has no recent media post to discuss under. Post your media first!",
		mentionOrName(msg, realAuthorID))
	e.transientNotice(ctx, msg.ChannelID, notice)
}

func truncateRunes(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}
