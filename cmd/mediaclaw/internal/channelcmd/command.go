package channelcmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tinyland-inc/mediaclaw/cmd/mediaclaw/internal"
	"github.com/tinyland-inc/mediaclaw/pkg/utils"
	"github.com/tinyland-inc/mediaclaw/pkg/watchlist"
)

func NewChannelsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "channels",
		Short: "Manage the media-only channel watchlist",
		Example: `  mediaclaw channels list
  mediaclaw channels add 123456789012345678
  mediaclaw channels remove 123456789012345678`,
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List watched channels",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			wl, err := loadWatchlist()
			if err != nil {
				return err
			}
			ids := wl.IDs()
			if len(ids) == 0 {
				fmt.Println("No channels watched")
				return nil
			}
			for _, id := range ids {
				fmt.Println(id)
			}
			return nil
		},
	}

	addCmd := &cobra.Command{
		Use:   "add <channel-id>",
		Short: "Add a channel to the watchlist",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			if err := utils.ValidateChannelID(args[0]); err != nil {
				return err
			}
			wl, err := loadWatchlist()
			if err != nil {
				return err
			}
			added, err := wl.Add(args[0])
			if err != nil {
				return err
			}
			if !added {
				fmt.Printf("Channel %s already watched\n", args[0])
				return nil
			}
			fmt.Printf("✓ Channel %s added\n", args[0])
			return nil
		},
	}

	removeCmd := &cobra.Command{
		Use:   "remove <channel-id>",
		Short: "Remove a channel from the watchlist",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			wl, err := loadWatchlist()
			if err != nil {
				return err
			}
			removed, err := wl.Remove(args[0])
			if err != nil {
				return err
			}
			if !removed {
				fmt.Printf("Channel %s not watched\n", args[0])
				return nil
			}
			fmt.Printf("✓ Channel %s removed\n", args[0])
			return nil
		},
	}

	cmd.AddCommand(listCmd, addCmd, removeCmd)

	return cmd
}

func loadWatchlist() (*watchlist.Watchlist, error) {
	cfg, err := internal.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("error loading config: %w", err)
	}
	return watchlist.Load(cfg.WatchlistPath())
}
