package main

import (
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/contact-enrich/internal/pipeline"
)

var (
	enrichDryRun      bool
	enrichPremiumOnly bool
	enrichBatchSize   int
	enrichLimit       int
)

var enrichCmd = &cobra.Command{
	Use:   "enrich",
	Short: "Enrich opportunities that still lack contact data",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		runner, err := initRunner(st)
		if err != nil {
			return err
		}

		report, err := runner.Run(ctx, pipeline.RunOptions{
			DryRun:      enrichDryRun,
			PremiumOnly: enrichPremiumOnly,
			BatchSize:   enrichBatchSize,
			Limit:       enrichLimit,
		})
		if err != nil {
			return eris.Wrap(err, "enrich run")
		}

		mode := ""
		if report.DryRun {
			mode = " (dry run)"
		}
		fmt.Printf("Run %s%s\n", report.RunID, mode)
		fmt.Printf("  processed: %d  updated: %d  unchanged: %d  failed: %d\n",
			report.Processed, report.Updated, report.Unchanged, report.Failed)
		fmt.Printf("  coverage: %.1f%% -> %.1f%% (premium %.1f%% -> %.1f%%)\n",
			report.CoverageBefore.Percent, report.CoverageAfter.Percent,
			report.CoverageBefore.PremiumPercent, report.CoverageAfter.PremiumPercent)
		fmt.Printf("  duration: %s\n", report.Duration.Round(10*time.Millisecond))
		return nil
	},
}

func init() {
	enrichCmd.Flags().BoolVar(&enrichDryRun, "dry-run", false, "crawl and extract but do not persist")
	enrichCmd.Flags().BoolVar(&enrichPremiumOnly, "premium-only", false, "only enrich premium opportunities")
	enrichCmd.Flags().IntVar(&enrichBatchSize, "batch-size", 0, "concurrent opportunities per batch (default from config)")
	enrichCmd.Flags().IntVar(&enrichLimit, "limit", 0, "max opportunities to process, -1 for all (default from config)")
	rootCmd.AddCommand(enrichCmd)
}
