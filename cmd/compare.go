package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/quillae/scimpact/internal/config"
	"github.com/quillae/scimpact/internal/store"
	"github.com/quillae/scimpact/internal/ui"
)

var compareCmd = &cobra.Command{
	Use:   "compare",
	Short: "Print the cross-country comparison from the last persisted run",
	RunE:  runCompare,
}

func init() {
	compareCmd.Flags().String("store", "", "SQLite database with persisted results")
	compareCmd.Flags().String("batch", "", "print the full report for one country instead of the comparison")

	rootCmd.AddCommand(compareCmd)
}

func runCompare(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if v, _ := cmd.Flags().GetString("store"); v != "" {
		cfg.StorePath = v
	}
	if v, _ := cmd.Flags().GetBool("verbose"); v {
		cfg.Verbose = true
	}
	if cfg.StorePath == "" {
		return fmt.Errorf("no store configured: pass --store or set store in .scimpact.yaml")
	}

	ctx := context.Background()
	st, err := store.Open(ctx, cfg.StorePath)
	if err != nil {
		return err
	}
	defer st.Close()

	if batch, _ := cmd.Flags().GetString("batch"); batch != "" {
		return printBatchReport(ctx, st, batch, cfg.Verbose)
	}

	rows, err := st.LatestComparison(ctx)
	if errors.Is(err, store.ErrNoRuns) {
		return fmt.Errorf("store %s holds no runs yet: run `scimpact analyze --store %s` first", cfg.StorePath, cfg.StorePath)
	}
	if err != nil {
		return err
	}

	ui.New().Comparison(rows)
	return nil
}

// printBatchReport shows the persisted report for one country from its most
// recent run.
func printBatchReport(ctx context.Context, st *store.Store, batch string, verbose bool) error {
	report, err := st.Report(ctx, batch)
	if errors.Is(err, store.ErrNoRuns) {
		return fmt.Errorf("no persisted report for %q: run `scimpact analyze --store` first", batch)
	}
	if err != nil {
		return err
	}

	printer := ui.New()
	printer.BatchStats(report)
	if verbose {
		printer.VenueDistribution(report.VenueCounts, 10)
		printer.YearDistribution(report.YearCounts)
	}
	return nil
}
