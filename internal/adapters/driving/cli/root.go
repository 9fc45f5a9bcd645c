// Package cli provides the faqgen command line interface.
package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/faqgen/internal/logger"
)

// version is reported by the version command; main sets it from build flags.
var version = "dev"

// Persistent flag values shared by every command.
var (
	configPath string
	verbose    bool
	quiet      bool
	noProgress bool
)

var rootCmd = &cobra.Command{
	Use:   "faqgen",
	Short: "Keep a codebase FAQ up to date",
	Long: `faqgen reads a source tree, summarises it with a language model and
maintains a Markdown FAQ document describing it.

The document is only rewritten when its content actually changes, so faqgen
is safe to run on every commit.`,
	SilenceUsage: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verbose)
		logger.SetQuiet(quiet)
	},
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&configPath, "config", "c", "", "config file (default faqgen.toml)")
	flags.BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	flags.BoolVarP(&quiet, "quiet", "q", false, "only log warnings and errors")
	flags.BoolVar(&noProgress, "no-progress", false, "log progress instead of drawing a progress bar")
	rootCmd.MarkFlagsMutuallyExclusive("verbose", "quiet")
}

// SetVersion sets the version reported by the version command.
func SetVersion(v string) {
	version = v
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// ExecuteContext runs the root command with ctx, which commands use to stop
// long-running work.
func ExecuteContext(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}
