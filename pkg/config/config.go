package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/caarlos0/env/v11"
)

// FlexibleStringSlice is a []string that also accepts JSON numbers,
// so channel lists can contain both "123456789" and 123456789.
type FlexibleStringSlice []string

func (f *FlexibleStringSlice) UnmarshalJSON(data []byte) error {
	// Try []string first
	var ss []string
	if err := json.Unmarshal(data, &ss); err == nil {
		*f = ss
		return nil
	}

	// Try []interface{} to handle mixed types
	var raw []any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	result := make([]string, 0, len(raw))
	for _, v := range raw {
		switch val := v.(type) {
		case string:
			result = append(result, val)
		case float64:
			result = append(result, fmt.Sprintf("%.0f", val))
		default:
			result = append(result, fmt.Sprintf("%v", val))
		}
	}
	*f = result
	return nil
}

type Config struct {
	Discord   DiscordConfig `json:"discord"`
	Proxy     ProxyConfig   `json:"proxy"`
	Policy    PolicyConfig  `json:"policy"`
	Watchlist string        `env:"MEDIACLAW_WATCHLIST" json:"watchlist"`
}

type DiscordConfig struct {
	Token string `env:"MEDIACLAW_DISCORD_TOKEN" json:"token"`
}

// ProxyConfig configures the identity-proxy lookup service.
// The settle delay tolerates the proxy service committing its attribution
// record after the webhook repost has already been delivered.
type ProxyConfig struct {
	Enabled       bool   `env:"MEDIACLAW_PROXY_ENABLED"         json:"enabled"`
	BaseURL       string `env:"MEDIACLAW_PROXY_BASE_URL"        json:"base_url"`
	SettleDelayMs int    `env:"MEDIACLAW_PROXY_SETTLE_DELAY_MS" json:"settle_delay_ms"`
	TimeoutMs     int    `env:"MEDIACLAW_PROXY_TIMEOUT_MS"      json:"timeout_ms"`
}

// PolicyConfig tunes the reconciliation engine.
type PolicyConfig struct {
	GraceWindowMs        int `env:"MEDIACLAW_POLICY_GRACE_WINDOW_MS"        json:"grace_window_ms"`
	SweepIntervalMs      int `env:"MEDIACLAW_POLICY_SWEEP_INTERVAL_MS"      json:"sweep_interval_ms"`
	NoticeTTLSeconds     int `env:"MEDIACLAW_POLICY_NOTICE_TTL_SECONDS"     json:"notice_ttl_seconds"`
	AnchorScanLimit      int `env:"MEDIACLAW_POLICY_ANCHOR_SCAN_LIMIT"      json:"anchor_scan_limit"`
	ThreadArchiveMinutes int `env:"MEDIACLAW_POLICY_THREAD_ARCHIVE_MINUTES" json:"thread_archive_minutes"`
}

func (p PolicyConfig) GraceWindow() time.Duration {
	return time.Duration(p.GraceWindowMs) * time.Millisecond
}

func (p PolicyConfig) SweepInterval() time.Duration {
	return time.Duration(p.SweepIntervalMs) * time.Millisecond
}

func (p PolicyConfig) NoticeTTL() time.Duration {
	return time.Duration(p.NoticeTTLSeconds) * time.Second
}

func (p ProxyConfig) SettleDelay() time.Duration {
	return time.Duration(p.SettleDelayMs) * time.Millisecond
}

func (p ProxyConfig) Timeout() time.Duration {
	return time.Duration(p.TimeoutMs) * time.Millisecond
}

func DefaultConfig() *Config {
	home, _ := os.UserHomeDir()
	return &Config{
		Discord: DiscordConfig{},
		Proxy: ProxyConfig{
			Enabled:       true,
			BaseURL:       "https://api.pluralkit.app/v2",
			SettleDelayMs: 400,
			TimeoutMs:     5000,
		},
		Policy: PolicyConfig{
			GraceWindowMs:        1500,
			SweepIntervalMs:      500,
			NoticeTTLSeconds:     10,
			AnchorScanLimit:      10,
			ThreadArchiveMinutes: 60,
		},
		Watchlist: filepath.Join(home, ".mediaclaw", "channels.json"),
	}
}

func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			// No config file: defaults plus env overlay.
			if err := env.Parse(cfg); err != nil {
				return nil, err
			}
			return cfg, nil
		}
		return nil, err
	}

	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	if err := env.Parse(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

func SaveConfig(path string, cfg *Config) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	return os.WriteFile(path, data, 0o600)
}

// Validate checks the fields the gateway cannot run without.
func (c *Config) Validate() error {
	if c.Discord.Token == "" {
		return errors.New("discord token is required (set MEDIACLAW_DISCORD_TOKEN or discord.token)")
	}
	if c.Watchlist == "" {
		return errors.New("watchlist path is required")
	}
	if c.Policy.SweepIntervalMs <= 0 {
		return errors.New("policy.sweep_interval_ms must be positive")
	}
	if c.Policy.GraceWindowMs <= 0 {
		return errors.New("policy.grace_window_ms must be positive")
	}
	return nil
}

// WatchlistPath returns the watchlist path with "~" expanded.
func (c *Config) WatchlistPath() string {
	return expandHome(c.Watchlist)
}

func expandHome(path string) string {
	if path == "" {
		return path
	}
	if path[0] == '~' {
		home, _ := os.UserHomeDir()
		if len(path) > 1 && path[1] == '/' {
			return home + path[1:]
		}
		return home
	}
	return path
}
