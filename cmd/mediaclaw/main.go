// MediaClaw - media-only channel enforcement for Discord
//
// Copyright (c) 2026 MediaClaw contributors

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/tinyland-inc/mediaclaw/cmd/mediaclaw/internal"
	"github.com/tinyland-inc/mediaclaw/cmd/mediaclaw/internal/channelcmd"
	"github.com/tinyland-inc/mediaclaw/cmd/mediaclaw/internal/gateway"
	"github.com/tinyland-inc/mediaclaw/cmd/mediaclaw/internal/version"
)

func NewMediaclawCommand() *cobra.Command {
	short := fmt.Sprintf("%s mediaclaw - Media-Only Channel Enforcement v%s\n\n", internal.Logo, internal.GetVersion())

	cmd := &cobra.Command{
		Use:     "mediaclaw",
		Short:   short,
		Example: "mediaclaw gateway",
	}

	cmd.AddCommand(
		gateway.NewGatewayCommand(),
		channelcmd.NewChannelsCommand(),
		version.NewVersionCommand(),
	)

	return cmd
}

func main() {
	cmd := NewMediaclawCommand()
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
