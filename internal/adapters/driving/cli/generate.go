package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/faqgen/internal/adapters/driving/tui/progress"
	"github.com/custodia-labs/faqgen/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/faqgen/internal/core/domain"
)

var generateCmd = &cobra.Command{
	Use:   "generate [path]",
	Short: "Generate or update the FAQ document",
	Long: `Read the source tree at path (default: the configured source root),
summarise it chunk by chunk and write the FAQ document.

The document is left untouched when the model reports that no change is
needed or when the new content only differs in surrounding whitespace.

Examples:
  faqgen generate
  faqgen generate ./services/api -o docs/FAQ.md
  faqgen generate --dry-run`,
	Args: cobra.MaximumNArgs(1),
	RunE: runGenerate,
}

func init() {
	addPipelineFlags(generateCmd)
	generateCmd.Flags().Bool("dry-run", false, "show what would change without writing or publishing")
	rootCmd.AddCommand(generateCmd)
}

func runGenerate(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd, args)
	if err != nil {
		return err
	}
	dryRun, err := cmd.Flags().GetBool("dry-run")
	if err != nil {
		return fmt.Errorf("getting dry-run flag: %w", err)
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	rt, err := newRuntime(ctx, cfg, runtimeOptions{
		progress: progress.New(cmd.ErrOrStderr(), noProgress, cancel),
		dryRun:   dryRun,
	})
	if err != nil {
		return err
	}
	defer closeRuntime(rt)

	report, err := rt.Generator.Run(ctx)
	if err != nil {
		return err
	}

	printReport(cmd.OutOrStdout(), report, cfg.Output.Path, dryRun)
	return nil
}

// printReport writes the outcome of one run.
func printReport(w io.Writer, report *domain.RunReport, path string, dryRun bool) {
	st := styles.DefaultStyles()
	decision := report.Result.Decision

	description := decision.Description()
	if dryRun && decision.Wrote() {
		description = "dry run: " + description + " (not written)"
	}
	fmt.Fprintf(w, "%s %s\n", st.Decision(decision).Render(description), st.Muted.Render(path))
	fmt.Fprintf(w, "Run:    %s\n", report.RunID)
	if report.CachedSummaries > 0 {
		fmt.Fprintf(w, "Chunks: %d (%d cached)\n", report.Chunks, report.CachedSummaries)
	} else {
		fmt.Fprintf(w, "Chunks: %d\n", report.Chunks)
	}
	if dryRun && report.Result.Diff != "" {
		fmt.Fprintf(w, "\n%s\n", report.Result.Diff)
	}
	if report.PublishURL != "" {
		fmt.Fprintf(w, "Pull request: %s\n", report.PublishURL)
	}
}
