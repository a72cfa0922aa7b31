package channelcmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewChannelsCommand(t *testing.T) {
	cmd := NewChannelsCommand()

	require.NotNil(t, cmd)

	assert.Equal(t, "channels", cmd.Use)
	assert.Equal(t, "Manage the media-only channel watchlist", cmd.Short)

	assert.True(t, cmd.HasExample())
	assert.True(t, cmd.HasSubCommands())

	assert.Nil(t, cmd.Run)
	assert.Nil(t, cmd.RunE)
}

func TestNewChannelsCommand_Subcommands(t *testing.T) {
	cmd := NewChannelsCommand()

	list, _, err := cmd.Find([]string{"list"})
	require.NoError(t, err)
	require.NotNil(t, list)
	assert.Equal(t, "list", list.Use)
	assert.NotNil(t, list.RunE)

	add, _, err := cmd.Find([]string{"add"})
	require.NoError(t, err)
	require.NotNil(t, add)
	assert.Equal(t, "add <channel-id>", add.Use)
	assert.NotNil(t, add.RunE)

	remove, _, err := cmd.Find([]string{"remove"})
	require.NoError(t, err)
	require.NotNil(t, remove)
	assert.Equal(t, "remove <channel-id>", remove.Use)
	assert.NotNil(t, remove.RunE)
}
