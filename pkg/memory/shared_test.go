package memory

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSharedRegistry(t *testing.T) {
	ctx := context.Background()
	registry := NewSharedRegistry(newTestStore(t))

	t.Run("starts empty", func(t *testing.T) {
		assert.Empty(t, registry.AllFacts(ctx))
	})

	t.Run("inserts and dedups like user facts", func(t *testing.T) {
		assert.True(t, registry.AddFact(ctx, "Alex likes cats"))
		assert.False(t, registry.AddFact(ctx, " alex likes CATS "))
		assert.False(t, registry.AddFact(ctx, ""))

		facts := registry.AllFacts(ctx)
		require.Len(t, facts, 1)
		assert.Equal(t, "Alex likes cats", facts[0].Text)
	})

	t.Run("cap evicts oldest fact first", func(t *testing.T) {
		for i := 0; i < MaxSharedFacts+3; i++ {
			registry.AddFact(ctx, fmt.Sprintf("shared fact %d", i))
		}

		facts := registry.AllFacts(ctx)
		require.Len(t, facts, MaxSharedFacts)
		assert.Equal(t, fmt.Sprintf("shared fact %d", MaxSharedFacts+2), facts[len(facts)-1].Text)
	})
}

func TestSharedRegistryDegradesOnBackendFailure(t *testing.T) {
	ctx := context.Background()
	registry := NewSharedRegistry(brokenStore{})

	assert.Empty(t, registry.AllFacts(ctx))
	assert.False(t, registry.AddFact(ctx, "unsaveable"))
}
