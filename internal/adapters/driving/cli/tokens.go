package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var tokensCmd = &cobra.Command{
	Use:   "tokens [path]",
	Short: "Count the tokens and chunks of a source tree",
	Long: `Aggregate the source tree exactly as a run would and print its token
count and the number of chunks it would be split into. No model is called,
so no API key is needed.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runTokens,
}

func init() {
	tokensCmd.Flags().Int("max-tokens", 0, "maximum tokens per chunk")
	rootCmd.AddCommand(tokensCmd)
}

func runTokens(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd, args)
	if err != nil {
		return err
	}

	counter, err := newTokenCounter(cfg)
	if err != nil {
		return err
	}

	stats, err := counter.CountTokens(cmd.Context())
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Source:     %s\n", cfg.Source.Root)
	fmt.Fprintf(out, "Encoding:   %s\n", stats.Encoding)
	fmt.Fprintf(out, "Tokens:     %d\n", stats.Tokens)
	fmt.Fprintf(out, "Max tokens: %d\n", stats.MaxTokens)
	fmt.Fprintf(out, "Chunks:     %d\n", stats.Chunks)
	return nil
}
