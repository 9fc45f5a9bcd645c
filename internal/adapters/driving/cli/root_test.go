package cli

import (
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/faqgen/internal/logger"
)

func TestRootCmd_Use(t *testing.T) {
	assert.Equal(t, "faqgen", rootCmd.Use)
}

func TestRootCmd_RegistersCommands(t *testing.T) {
	names := make([]string, 0, len(rootCmd.Commands()))
	for _, c := range rootCmd.Commands() {
		names = append(names, c.Name())
	}
	for _, want := range []string{"generate", "watch", "tokens", "init", "mcp", "version"} {
		assert.Contains(t, names, want)
	}
}

func TestRootCmd_PersistentFlags(t *testing.T) {
	flags := rootCmd.PersistentFlags()
	for _, name := range []string{"config", "verbose", "quiet", "no-progress"} {
		assert.NotNil(t, flags.Lookup(name), name)
	}
	assert.Equal(t, "c", flags.Lookup("config").Shorthand)
}

func TestRootCmd_QuietSetsLogger(t *testing.T) {
	var quietDuringRun bool
	oldRun := versionCmd.Run
	versionCmd.Run = func(_ *cobra.Command, _ []string) {
		quietDuringRun = logger.IsQuiet()
	}
	defer func() { versionCmd.Run = oldRun }()

	_, _, err := executeCommand(t, "--quiet", "version")

	require.NoError(t, err)
	assert.True(t, quietDuringRun)
}

func TestRootCmd_VerboseAndQuietConflict(t *testing.T) {
	_, _, err := executeCommand(t, "--verbose", "--quiet", "version")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "verbose")
}

func TestSetVersion(t *testing.T) {
	original := version
	defer func() { version = original }()

	SetVersion("1.2.3")

	assert.Equal(t, "1.2.3", version)
}
