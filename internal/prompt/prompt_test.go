package prompt

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefault(t *testing.T) {
	text, err := Load("")
	require.NoError(t, err)
	assert.NotEmpty(t, text)
	assert.Equal(t, strings.TrimSpace(text), text, "default prompt should be trimmed")
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prompt.txt")
	require.NoError(t, os.WriteFile(path, []byte("  You are a test assistant.\n\n"), 0o644))

	text, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "You are a test assistant.", text)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.txt"))
	assert.Error(t, err)
}

func TestLoadEmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.txt")
	require.NoError(t, os.WriteFile(path, []byte("   \n"), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}
