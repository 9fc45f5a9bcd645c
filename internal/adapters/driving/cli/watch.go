package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/faqgen/internal/adapters/driving/tui/progress"
	"github.com/custodia-labs/faqgen/internal/logger"
)

var watchCmd = &cobra.Command{
	Use:   "watch [path]",
	Short: "Regenerate the FAQ whenever source files change",
	Long: `Run the pipeline once, then again every time eligible source files
under path change. Changes are collected for a short settling period so a
burst of saves triggers a single run.

A failed run is logged and watching continues. Stop with Ctrl+C.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runWatch,
}

func init() {
	addPipelineFlags(watchCmd)
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd, args)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	rt, err := newRuntime(ctx, cfg, runtimeOptions{progress: progress.NewLogReporter()})
	if err != nil {
		return err
	}
	defer closeRuntime(rt)

	if rt.Watcher == nil {
		return errors.New("source does not support watching")
	}
	changes, err := rt.Watcher.Watch(ctx)
	if err != nil {
		return fmt.Errorf("watch source: %w", err)
	}

	out := cmd.OutOrStdout()
	runOnce := func() {
		report, err := rt.Generator.Run(ctx)
		if err != nil {
			if ctx.Err() == nil {
				logger.Error("Run failed: %v", err)
			}
			return
		}
		printReport(out, report, cfg.Output.Path, false)
	}

	runOnce()
	fmt.Fprintf(out, "Watching %s for changes (Ctrl+C to stop)\n", cfg.Source.Root)

	for batch := range changes {
		logger.Info("%d file(s) changed: %s", len(batch), strings.Join(batch, ", "))
		runOnce()
	}

	if errors.Is(ctx.Err(), context.Canceled) {
		logger.Info("Stopped watching")
	}
	return nil
}
