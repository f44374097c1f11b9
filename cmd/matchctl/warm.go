package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/garyellow/programme-matcher/internal/config"
	"github.com/garyellow/programme-matcher/internal/warmup"
)

var warmCmd = &cobra.Command{
	Use:   "warm",
	Short: "Load and validate reference data the way the server warms it",
	Long:  "Runs the server's warmup tasks once against the configured source and reports per-task results. Exits non-zero when any task fails.",
	RunE:  runWarm,
}

var warmOnly string

func init() {
	warmCmd.Flags().StringVar(&warmOnly, "only", "", "Comma-separated task names (occupations,prefix_maps,search_index)")
	rootCmd.AddCommand(warmCmd)
}

func runWarm(cmd *cobra.Command, _ []string) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), config.ReferenceWarmup)
	defer cancel()

	store, err := openStore(ctx)
	if err != nil {
		return err
	}

	stats, err := warmup.Run(ctx, store, newLogger(), warmup.Options{Only: warmup.ParseTasks(warmOnly)})
	if stats != nil {
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Warmup finished in %v\n", stats.Duration.Round(time.Millisecond))
		for _, name := range stats.Succeeded {
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "  ok     %s\n", name)
		}
		for _, name := range stats.Failed {
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "  FAILED %s\n", name)
		}
	}
	return err
}
