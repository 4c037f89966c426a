package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGuildStore(t *testing.T) {
	ctx := context.Background()
	guilds := NewGuildStore(newTestStore(t))

	t.Run("unknown guild reads as empty config", func(t *testing.T) {
		config := guilds.Get(ctx, "g1")
		require.NotNil(t, config)
		assert.Empty(t, config.AIChannelID)
	})

	t.Run("set stores the AI channel", func(t *testing.T) {
		require.NoError(t, guilds.Set(ctx, "g1", &GuildConfig{AIChannelID: "chan-123"}))
		assert.Equal(t, "chan-123", guilds.Get(ctx, "g1").AIChannelID)
	})

	t.Run("merge-on-write preserves fields absent from the patch", func(t *testing.T) {
		require.NoError(t, guilds.Set(ctx, "g1", &GuildConfig{}))
		assert.Equal(t, "chan-123", guilds.Get(ctx, "g1").AIChannelID)
	})

	t.Run("guilds are independent", func(t *testing.T) {
		assert.Empty(t, guilds.Get(ctx, "g2").AIChannelID)
	})
}

func TestGuildStoreDegradesOnBackendFailure(t *testing.T) {
	guilds := NewGuildStore(brokenStore{})

	config := guilds.Get(context.Background(), "g1")
	require.NotNil(t, config)
	assert.Empty(t, config.AIChannelID)
}
