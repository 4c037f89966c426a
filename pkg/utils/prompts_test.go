package utils

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadPrompt(t *testing.T) {
	dir := t.TempDir()

	t.Run("reads and trims the file", func(t *testing.T) {
		path := filepath.Join(dir, "persona.txt")
		require.NoError(t, os.WriteFile(path, []byte("  You are Outlaw.\n\n"), 0644))

		prompt, err := LoadPrompt(path)
		require.NoError(t, err)
		assert.Equal(t, "You are Outlaw.", prompt)
	})

	t.Run("missing file is an error", func(t *testing.T) {
		_, err := LoadPrompt(filepath.Join(dir, "nope.txt"))
		assert.Error(t, err)
	})

	t.Run("empty file is an error", func(t *testing.T) {
		path := filepath.Join(dir, "empty.txt")
		require.NoError(t, os.WriteFile(path, []byte("   \n"), 0644))

		_, err := LoadPrompt(path)
		assert.Error(t, err)
	})
}

func TestLoadPromptWithFallback(t *testing.T) {
	dir := t.TempDir()

	path := filepath.Join(dir, "persona.txt")
	require.NoError(t, os.WriteFile(path, []byte("custom persona"), 0644))

	assert.Equal(t, "custom persona", LoadPromptWithFallback(path, "default"))
	assert.Equal(t, "default", LoadPromptWithFallback(filepath.Join(dir, "nope.txt"), "default"))
}
