package gateway

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/tinyland-inc/mediaclaw/cmd/mediaclaw/internal"
	"github.com/tinyland-inc/mediaclaw/pkg/bus"
	"github.com/tinyland-inc/mediaclaw/pkg/channels/discord"
	"github.com/tinyland-inc/mediaclaw/pkg/engine"
	"github.com/tinyland-inc/mediaclaw/pkg/logger"
	"github.com/tinyland-inc/mediaclaw/pkg/proxy"
	"github.com/tinyland-inc/mediaclaw/pkg/watchlist"
)

func gatewayCmd(debug bool) error {
	if debug {
		logger.SetLevel(logger.DEBUG)
		fmt.Println("🔍 Debug mode enabled")
	}

	cfg, err := internal.LoadConfig()
	if err != nil {
		return fmt.Errorf("error loading config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	wl, err := watchlist.Load(cfg.WatchlistPath())
	if err != nil {
		return fmt.Errorf("error loading watchlist: %w", err)
	}
	if wl.Len() == 0 {
		fmt.Println("⚠ Warning: No channels watched; nothing will be enforced")
		fmt.Println("  Add one with: mediaclaw channels add <channel-id>")
	} else {
		fmt.Printf("✓ Watching %d channel(s)\n", wl.Len())
	}

	msgBus := bus.NewMessageBus()

	resolver := proxy.NewClient(proxy.Config{
		Enabled:     cfg.Proxy.Enabled,
		BaseURL:     cfg.Proxy.BaseURL,
		SettleDelay: cfg.Proxy.SettleDelay(),
		Timeout:     cfg.Proxy.Timeout(),
	})
	if cfg.Proxy.Enabled {
		fmt.Println("✓ Identity proxy lookups enabled")
	}

	channel, err := discord.New(cfg.Discord.Token, msgBus)
	if err != nil {
		return fmt.Errorf("error creating discord channel: %w", err)
	}

	eng := engine.New(channel, resolver, wl.Contains, engine.Options{
		GraceWindow:          cfg.Policy.GraceWindow(),
		SweepInterval:        cfg.Policy.SweepInterval(),
		NoticeTTL:            cfg.Policy.NoticeTTL(),
		AnchorScanLimit:      cfg.Policy.AnchorScanLimit,
		ThreadArchiveMinutes: cfg.Policy.ThreadArchiveMinutes,
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := channel.Start(ctx); err != nil {
		return fmt.Errorf("error starting discord channel: %w", err)
	}
	fmt.Println("✓ Discord channel started")

	go eng.Run(ctx, msgBus)
	fmt.Println("✓ Enforcement engine started")
	fmt.Println("Press Ctrl+C to stop")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt)
	<-sigChan

	fmt.Println("\nShutting down...")
	cancel()
	msgBus.Close()
	if err := channel.Stop(context.Background()); err != nil {
		logger.WarnCF("gateway", "Error stopping discord channel", map[string]any{"error": err.Error()})
	}

	logger.InfoCF("gateway", "Session stats", toAnyMap(eng.Stats().Snapshot()))
	fmt.Println("✓ Gateway stopped")

	return nil
}

func toAnyMap(in map[string]int64) map[string]any {
	out := make(map[string]any, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
