package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/faqgen/internal/adapters/driven/config/file"
	"github.com/custodia-labs/faqgen/internal/core/ports/driven"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default configuration file",
	Long: `Write a commented default configuration file (faqgen.toml, or the path
given with --config). An existing file is never overwritten.

With --prompts, also write the built-in prompt templates to a directory so
they can be edited.`,
	Args: cobra.NoArgs,
	RunE: runInit,
}

func init() {
	initCmd.Flags().String("prompts", "", "directory to write editable prompt templates to")
	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, _ []string) error {
	store := file.NewConfigStore(configFile())
	if err := store.WriteDefault(); err != nil {
		return err
	}
	cmd.Printf("Created %s\n", store.Path())

	dir, err := cmd.Flags().GetString("prompts")
	if err != nil {
		return fmt.Errorf("getting prompts flag: %w", err)
	}
	if dir == "" {
		return nil
	}

	// The first load creates the directory and the default templates
	prompts := file.NewPromptStore(dir)
	if _, err := prompts.Load(driven.PromptSystem); err != nil {
		return err
	}
	cmd.Printf("Wrote prompt templates to %s\n", prompts.Dir())
	cmd.Printf("Set dir = %q under [prompts] in %s to use them\n", prompts.Dir(), store.Path())
	return nil
}
