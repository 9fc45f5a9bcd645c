package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitCmd_WritesDefaultConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "faqgen.toml")

	out, _, err := executeCommand(t, "init", "--config", path)

	require.NoError(t, err)
	assert.Contains(t, out, "Created "+path)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "[llm]")
	assert.Contains(t, string(data), "max_tokens = 2000")
}

func TestInitCmd_NeverOverwrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "faqgen.toml")
	require.NoError(t, os.WriteFile(path, []byte("# mine\n"), 0600))

	_, _, err := executeCommand(t, "init", "--config", path)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "# mine\n", string(data))
}

func TestInitCmd_WritesPromptTemplates(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "faqgen.toml")
	promptDir := filepath.Join(dir, "prompts")

	out, _, err := executeCommand(t, "init", "--config", path, "--prompts", promptDir)

	require.NoError(t, err)
	assert.Contains(t, out, "Wrote prompt templates to "+promptDir)
	for _, name := range []string{"system.txt", "summarise.txt", "synthesise.txt"} {
		assert.FileExists(t, filepath.Join(promptDir, name))
	}
}
