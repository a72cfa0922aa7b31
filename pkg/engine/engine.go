// Package engine implements the message reconciliation and migration
// engine behind the media-only policy: classifying inbound messages,
// holding borderline ones in a grace window for the identity proxy, and
// relocating violating text into a discussion thread on the nearest media
// post.
package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/tinyland-inc/mediaclaw/pkg/bus"
	"github.com/tinyland-inc/mediaclaw/pkg/logger"
	"github.com/tinyland-inc/mediaclaw/pkg/policy"
	"github.com/tinyland-inc/mediaclaw/pkg/proxy"
)

// Platform is the subset of chat-platform operations the engine performs.
// All calls may fail transiently; the engine treats most of them as
// best-effort.
type Platform interface {
	// Message fetches a single message by ID.
	Message(ctx context.Context, channelID, messageID string) (*bus.Message, error)
	// RecentMessages fetches up to limit messages, newest first.
	RecentMessages(ctx context.Context, channelID string, limit int) ([]*bus.Message, error)
	// Send posts content to a channel or thread and returns the new
	// message's ID.
	Send(ctx context.Context, channelID, content string) (string, error)
	// Delete removes a message.
	Delete(ctx context.Context, channelID, messageID string) error
	// StartThread creates a thread on a message and returns the thread ID.
	StartThread(ctx context.Context, channelID, messageID, name string, archiveMinutes int) (string, error)
	// AddThreadMember adds a user to a thread.
	AddThreadMember(ctx context.Context, threadID, userID string) error
}

// Resolver looks up identity-proxy attribution for a message. A nil result
// means the message was not proxied.
type Resolver interface {
	Resolve(ctx context.Context, messageID string) *proxy.Metadata
}

// Options tunes the engine's timing and thread behavior.
type Options struct {
	GraceWindow          time.Duration
	SweepInterval        time.Duration
	NoticeTTL            time.Duration
	AnchorScanLimit      int
	ThreadArchiveMinutes int
}

// Engine wires the candidacy filter, pending registry, thread resolver and
// migration executor into the two entry points the host process drives:
// HandleInbound per observed message and Sweep per tick.
type Engine struct {
	platform Platform
	resolver Resolver
	registry *Registry
	watched  policy.Watched
	opts     Options
	stats    *Stats
	clock    func() time.Time
}

func New(platform Platform, resolver Resolver, watched policy.Watched, opts Options) *Engine {
	return &Engine{
		platform: platform,
		resolver: resolver,
		registry: NewRegistry(),
		watched:  watched,
		opts:     opts,
		stats:    NewStats(),
		clock:    time.Now,
	}
}

// Registry exposes the pending registry, mainly for tests and stats.
func (e *Engine) Registry() *Registry {
	return e.registry
}

// Stats exposes the engine's counters.
func (e *Engine) Stats() *Stats {
	return e.stats
}

// HandleInbound classifies one newly observed message. Compliant messages
// are dropped; proxy deliveries are resolved and migrated immediately,
// short-circuiting any pending entry for the same author/channel; plain
// violations are parked in the registry to await either a proxy
// confirmation or the sweep.
func (e *Engine) HandleInbound(ctx context.Context, msg *bus.Message) {
	if policy.Exempt(msg, e.watched) {
		e.stats.Inc(StatExempt)
		return
	}

	if msg.ProxyDelivery() {
		e.handleProxied(ctx, msg)
		return
	}

	e.register(msg)
}

func (e *Engine) register(msg *bus.Message) {
	key := Key{AuthorID: msg.AuthorID, ChannelID: msg.ChannelID}
	e.registry.Register(key, msg, e.clock())
	e.stats.Inc(StatRegistered)
	logger.DebugCF("engine", "Message parked pending proxy confirmation", map[string]any{
		"message_id": msg.ID,
		"author_id":  msg.AuthorID,
		"channel_id": msg.ChannelID,
	})
}

func (e *Engine) handleProxied(ctx context.Context, msg *bus.Message) {
	meta := e.resolver.Resolve(ctx, msg.ID)
	if meta == nil {
		// No attribution record: judge it as a plain non-compliant
		// message under its displayed name.
		e.migrate(ctx, msg, "**"+msg.AuthorName+"**", "")
		return
	}

	key := Key{AuthorID: meta.SenderID, ChannelID: msg.ChannelID}
	if entry := e.registry.ConsumeIfPresent(key); entry != nil {
		e.stats.Inc(StatShortCircuits)
		logger.DebugCF("engine", "Proxy confirmation consumed pending entry", map[string]any{
			"pending_message_id": entry.Msg.ID,
			"proxied_message_id": msg.ID,
			"sender_id":          meta.SenderID,
		})
	}

	e.migrate(ctx, msg, "**"+meta.Label()+"**", meta.SenderID)
}

// Sweep promotes every registry entry older than the grace window to
// migration, attributing each to its original author. One bad entry never
// halts the rest of the sweep.
func (e *Engine) Sweep(ctx context.Context, now time.Time) {
	for _, entry := range e.registry.SweepExpired(now, e.opts.GraceWindow) {
		e.stats.Inc(StatSwept)
		func(entry *Entry) {
			defer func() {
				if rec := recover(); rec != nil {
					logger.ErrorCF("engine", "Panic migrating swept entry", map[string]any{
						"message_id": entry.Msg.ID,
						"panic":      fmt.Sprint(rec),
					})
				}
			}()
			e.migrate(ctx, entry.Msg, mention(entry.Msg.AuthorID), entry.Msg.AuthorID)
		}(entry)
	}
}

// Run drives the engine: it consumes inbound messages from the bus and
// fires the sweep on a fixed interval, until the context ends.
//
// Classification and registration never suspend, so they happen inline in
// the consume loop: two same-key messages must register in arrival order,
// or the older one would overwrite the newer in the registry. Only the
// proxy path, which sleeps on the settling delay before its lookup, runs
// on its own goroutine.
func (e *Engine) Run(ctx context.Context, mb *bus.MessageBus) {
	go e.sweepLoop(ctx)

	for {
		msg, ok := mb.ConsumeInbound(ctx)
		if !ok {
			return
		}
		if policy.Exempt(msg, e.watched) {
			e.stats.Inc(StatExempt)
			continue
		}
		if !msg.ProxyDelivery() {
			e.register(msg)
			continue
		}
		go func(msg *bus.Message) {
			defer func() {
				if rec := recover(); rec != nil {
					logger.ErrorCF("engine", "Panic handling proxied message", map[string]any{
						"message_id": msg.ID,
						"panic":      fmt.Sprint(rec),
					})
				}
			}()
			e.handleProxied(ctx, msg)
		}(msg)
	}
}

func (e *Engine) sweepLoop(ctx context.Context) {
	ticker := time.NewTicker(e.opts.SweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			e.Sweep(ctx, e.clock())
		}
	}
}

// migrate relocates one message's content into its discussion thread:
// resolve thread, post, add author, notify, delete original. Side actions
// are best-effort; an unexpected failure falls back to a single transient
// notice quoting the content so the author always gets feedback.
func (e *Engine) migrate(ctx context.Context, msg *bus.Message, label, realAuthorID string) {
	opID := uuid.NewString()

	threadID, err := e.resolveThread(ctx, msg, realAuthorID)
	if err != nil {
		e.fail(ctx, msg, realAuthorID, opID, err)
		return
	}
	if threadID == "" {
		// No-anchor terminal outcome, already handled.
		return
	}

	if _, err := e.platform.Send(ctx, threadID, label+": "+msg.Content); err != nil {
		e.fail(ctx, msg, realAuthorID, opID, fmt.Errorf("posting to thread %s: %w", threadID, err))
		return
	}

	memberID := realAuthorID
	if memberID == "" && !msg.AuthorBot {
		memberID = msg.AuthorID
	}
	if memberID != "" {
		if err := e.platform.AddThreadMember(ctx, threadID, memberID); err != nil {
			logger.WarnCF("engine", "Adding author to thread failed", map[string]any{
				"op_id":     opID,
				"thread_id": threadID,
				"user_id":   memberID,
				"error":     err.Error(),
			})
		}
	}

	notice := fmt.Sprintf("%s this channel is media-only — your message was moved to <#%s>.",
		mentionOrName(msg, realAuthorID), threadID)
	e.transientNotice(ctx, msg.ChannelID, notice)

	if err := e.platform.Delete(ctx, msg.ChannelID, msg.ID); err != nil {
		// Already removed by a moderator or the proxy service; fine.
		logger.DebugCF("engine", "Deleting original failed", map[string]any{
			"op_id":      opID,
			"message_id": msg.ID,
			"error":      err.Error(),
		})
	}

	e.stats.Inc(StatMigrated)
	logger.InfoCF("engine", "Message relocated", map[string]any{
		"op_id":      opID,
		"message_id": msg.ID,
		"channel_id": msg.ChannelID,
		"thread_id":  threadID,
	})
}

// fail converts an unexpected migration failure into one best-effort notice
// quoting the original content, so no text is silently lost.
func (e *Engine) fail(ctx context.Context, msg *bus.Message, realAuthorID, opID string, cause error) {
	e.stats.Inc(StatFailed)
	logger.ErrorCF("engine", "Migration failed", map[string]any{
		"op_id":      opID,
		"message_id": msg.ID,
		"channel_id": msg.ChannelID,
		"error":      cause.Error(),
	})

	notice := fmt.Sprintf("%s something went wrong relocating your message:\n> %s",
		mentionOrName(msg, realAuthorID), msg.Content)
	e.transientNotice(ctx, msg.ChannelID, notice)
}

// transientNotice posts a notice that self-removes after the configured
// display window. Purely hygiene, never a correctness requirement.
func (e *Engine) transientNotice(ctx context.Context, channelID, content string) {
	noticeID, err := e.platform.Send(ctx, channelID, content)
	if err != nil {
		logger.WarnCF("engine", "Posting notice failed", map[string]any{
			"channel_id": channelID,
			"error":      err.Error(),
		})
		return
	}
	if e.opts.NoticeTTL <= 0 {
		return
	}
	time.AfterFunc(e.opts.NoticeTTL, func() {
		if err := e.platform.Delete(context.Background(), channelID, noticeID); err != nil {
			logger.DebugCF("engine", "Removing notice failed", map[string]any{
				"channel_id": channelID,
				"message_id": noticeID,
				"error":      err.Error(),
			})
		}
	})
}

func mention(userID string) string {
	return "<@" + userID + ">"
}

// mentionOrName prefers mentioning the real author; for an unattributed
// webhook persona a mention would not resolve, so the display name is used.
func mentionOrName(msg *bus.Message, realAuthorID string) string {
	if realAuthorID != "" {
		return mention(realAuthorID)
	}
	if msg.AuthorBot {
		return "**" + msg.AuthorName + "**"
	}
	return mention(msg.AuthorID)
}
