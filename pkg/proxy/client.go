// Package proxy looks up identity-proxy attribution records for a message.
//
// The proxy service intercepts a user's message and reposts it through a
// webhook under a different persona, committing the attribution record
// asynchronously. The client therefore waits a settling delay before its
// single lookup; absence of a record is a normal outcome, never an error.
package proxy

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/tinyland-inc/mediaclaw/pkg/logger"
)

// Config holds identity-proxy service settings.
type Config struct {
	Enabled     bool
	BaseURL     string
	SettleDelay time.Duration
	Timeout     time.Duration
}

// Metadata is the attribution record for a proxied message.
type Metadata struct {
	SenderID    string // the real account that triggered the proxy
	DisplayName string
	GroupTag    string
}

// Label renders the persona attribution used when relocating content.
func (m *Metadata) Label() string {
	if m.GroupTag != "" {
		return m.DisplayName + " " + m.GroupTag
	}
	return m.DisplayName
}

// Client queries the identity-proxy service.
type Client struct {
	config     Config
	httpClient *http.Client
}

func NewClient(cfg Config) *Client {
	return &Client{
		config:     cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}
}

// messageRecord is the proxy service's wire format for a message lookup.
type messageRecord struct {
	Sender string `json:"sender"`
	Member *struct {
		Name        string `json:"name"`
		DisplayName string `json:"display_name"`
	} `json:"member"`
	System *struct {
		Tag string `json:"tag"`
	} `json:"system"`
}

// Resolve waits the settling delay, then performs one metadata lookup for
// the given message. Any failure (network, not-found, malformed payload)
// returns nil: no metadata means "not a proxy message", not an error.
func (c *Client) Resolve(ctx context.Context, messageID string) *Metadata {
	if !c.config.Enabled || messageID == "" {
		return nil
	}

	if !sleep(ctx, c.config.SettleDelay) {
		return nil
	}

	url := fmt.Sprintf("%s/messages/%s", c.config.BaseURL, messageID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		logger.DebugCF("proxy", "Building lookup request failed", map[string]any{
			"message_id": messageID,
			"error":      err.Error(),
		})
		return nil
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		logger.DebugCF("proxy", "Lookup failed", map[string]any{
			"message_id": messageID,
			"error":      err.Error(),
		})
		return nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		// 404 is the common case: the message was never proxied.
		logger.DebugCF("proxy", "No attribution record", map[string]any{
			"message_id": messageID,
			"status":     resp.StatusCode,
		})
		return nil
	}

	var record messageRecord
	if err := json.NewDecoder(resp.Body).Decode(&record); err != nil {
		logger.DebugCF("proxy", "Malformed attribution payload", map[string]any{
			"message_id": messageID,
			"error":      err.Error(),
		})
		return nil
	}
	if record.Sender == "" {
		return nil
	}

	meta := &Metadata{SenderID: record.Sender}
	if record.Member != nil {
		meta.DisplayName = record.Member.DisplayName
		if meta.DisplayName == "" {
			meta.DisplayName = record.Member.Name
		}
	}
	if record.System != nil {
		meta.GroupTag = record.System.Tag
	}
	return meta
}

// sleep waits for d, returning false if the context ended first.
func sleep(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return true
	case <-ctx.Done():
		return false
	}
}
