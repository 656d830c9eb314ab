package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/quillae/scimpact/internal/catalog"
	"github.com/quillae/scimpact/internal/config"
	"github.com/quillae/scimpact/internal/match"
	"github.com/quillae/scimpact/internal/papers"
	"github.com/quillae/scimpact/internal/score"
	"github.com/quillae/scimpact/internal/store"
	"github.com/quillae/scimpact/internal/telemetry"
	"github.com/quillae/scimpact/internal/ui"
	"github.com/quillae/scimpact/internal/watch"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Score all paper batches and write reports",
	RunE:  runAnalyze,
}

func init() {
	analyzeCmd.Flags().String("papers-dir", "", "directory containing <country>_papers.csv files")
	analyzeCmd.Flags().String("catalog", "", "path to the SCImago journal rankings CSV")
	analyzeCmd.Flags().String("output", "", "output directory for results")
	analyzeCmd.Flags().StringSlice("countries", nil, "specific countries to process")
	analyzeCmd.Flags().String("store", "", "SQLite database for persisted results")
	analyzeCmd.Flags().String("profile", "", "scoring profile TOML file")
	analyzeCmd.Flags().String("telemetry", "", "JSONL telemetry output file")
	analyzeCmd.Flags().Bool("watch", false, "re-run when batch files change")

	rootCmd.AddCommand(analyzeCmd)
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	applyAnalyzeFlags(cmd, &cfg)
	printer := ui.New()
	printer.Banner()

	tel, err := openTelemetry(cfg.TelemetryPath)
	if err != nil {
		return err
	}
	defer tel.Close()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := analyzeOnce(ctx, &cfg, printer, tel); err != nil {
		return err
	}

	if watchMode, _ := cmd.Flags().GetBool("watch"); watchMode {
		return watchLoop(ctx, &cfg, printer, tel)
	}
	return nil
}

func applyAnalyzeFlags(cmd *cobra.Command, cfg *config.Config) {
	if v, _ := cmd.Flags().GetString("papers-dir"); v != "" {
		cfg.PapersDir = v
	}
	if v, _ := cmd.Flags().GetString("catalog"); v != "" {
		cfg.CatalogPath = v
	}
	if v, _ := cmd.Flags().GetString("output"); v != "" {
		cfg.OutputDir = v
	}
	if v, _ := cmd.Flags().GetStringSlice("countries"); len(v) > 0 {
		cfg.Countries = v
	}
	if v, _ := cmd.Flags().GetString("store"); v != "" {
		cfg.StorePath = v
	}
	if v, _ := cmd.Flags().GetString("profile"); v != "" {
		cfg.ProfilePath = v
	}
	if v, _ := cmd.Flags().GetString("telemetry"); v != "" {
		cfg.TelemetryPath = v
	}
	if v, _ := cmd.Flags().GetBool("verbose"); v {
		cfg.Verbose = true
	}
}

// openTelemetry returns a nil (no-op) emitter when no path is configured.
func openTelemetry(path string) (*telemetry.Emitter, error) {
	if path == "" {
		return nil, nil
	}
	return telemetry.NewEmitter(path)
}

// analyzeOnce runs the full pipeline: catalog load, batch discovery and
// loading, the global pre-pass, per-batch scoring and reporting, and the
// cross-batch comparison.
func analyzeOnce(ctx context.Context, cfg *config.Config, printer *ui.Printer, tel *telemetry.Emitter) error {
	tel.Record(telemetry.KindRunStart, "", map[string]string{"catalog": cfg.CatalogPath})

	printer.Progress("loading journal catalog from " + cfg.CatalogPath)
	cat, err := catalog.LoadFile(cfg.CatalogPath)
	if err != nil {
		return fmt.Errorf("loading catalog: %w", err)
	}
	printer.Success(fmt.Sprintf("loaded %d journal entries", cat.Len()))
	tel.Record(telemetry.KindCatalogLoaded, "", map[string]int{"entries": cat.Len()})

	weights := score.Default()
	if cfg.ProfilePath != "" {
		weights, err = score.LoadProfile(cfg.ProfilePath)
		if err != nil {
			return err
		}
		printer.Info("scoring profile: " + cfg.ProfilePath + " (scheme " + weights.Scheme + ")")
	}

	matcher := match.New(cat, match.Options{
		Fuzzy:          cfg.FuzzyEnabled,
		FuzzyThreshold: cfg.FuzzyThreshold,
	})
	currentYear := time.Now().Year()
	engine := score.NewEngine(cat, matcher, weights, currentYear)

	paths, err := papers.Discover(cfg.PapersDir, cfg.Countries)
	if err != nil {
		return err
	}
	if len(paths) == 0 {
		return fmt.Errorf("no batch files found in %s", cfg.PapersDir)
	}

	// Load every batch up front: the citation component needs the global
	// maximum before any batch can be scored.
	printer.Header("Finding Global Reference Points")
	var batches []*papers.Batch
	for _, path := range paths {
		b, err := papers.LoadFile(path, currentYear)
		if err != nil {
			printer.Warning(fmt.Sprintf("skipping %s: %v", papers.BatchName(path), err))
			tel.Record(telemetry.KindBatchFailed, papers.BatchName(path), map[string]string{"error": err.Error()})
			continue
		}
		batches = append(batches, b)
	}
	if len(batches) == 0 {
		return fmt.Errorf("no batch could be loaded from %s", cfg.PapersDir)
	}

	global := score.Prepass(batches, matcher)
	printer.GlobalReference(global)
	tel.Record(telemetry.KindPrepassDone, "", map[string]int{"max_citations": global.MaxCitations})

	var st *store.Store
	if cfg.StorePath != "" {
		st, err = store.Open(ctx, cfg.StorePath)
		if err != nil {
			return err
		}
		defer st.Close()
	}
	var runID int64
	if st != nil {
		runID, err = st.StartRun(ctx, cfg.CatalogPath, cfg.ProfilePath)
		if err != nil {
			return err
		}
	}

	printer.Header("Journal Impact Score Analysis")
	var reports []score.Report
	for _, b := range batches {
		tel.Record(telemetry.KindBatchStart, b.Name, map[string]int{"records": len(b.Records)})
		report, err := analyzeBatch(ctx, cfg, engine, global, b, printer, st, runID)
		if err != nil {
			printer.Warning(fmt.Sprintf("failed to process %s: %v", b.Name, err))
			tel.Record(telemetry.KindBatchFailed, b.Name, map[string]string{"error": err.Error()})
			continue
		}
		reports = append(reports, report)
		tel.Record(telemetry.KindBatchDone, b.Name, map[string]float64{"mean_score": report.MeanScore})
	}

	if len(reports) > 1 {
		rows := score.Comparison(reports)
		printer.Comparison(rows)
		if err := writeComparison(cfg.OutputDir, rows); err != nil {
			printer.Warning(err.Error())
		}
	}

	tel.Record(telemetry.KindRunDone, "", map[string]int{"batches": len(reports)})
	printer.Success("analysis complete")
	printer.Info("results saved in: " + cfg.OutputDir)
	return nil
}

// analyzeBatch scores one country batch, writes its enriched CSV, persists
// it when a store is configured, and prints its report.
func analyzeBatch(ctx context.Context, cfg *config.Config, engine *score.Engine, global score.GlobalStats, b *papers.Batch, printer *ui.Printer, st *store.Store, runID int64) (score.Report, error) {
	printer.SubHeader("Analysis for " + b.Name)
	if b.Dropped > 0 {
		printer.Info(fmt.Sprintf("dropped %d invalid rows", b.Dropped))
	}

	scored := engine.ScoreBatch(b, global)
	report := score.Aggregate(b.Name, scored, engine.Matcher())
	printer.MatchRate(report.MatchedVenues, report.TotalPapers)

	outDir := filepath.Join(cfg.OutputDir, b.Name)
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return score.Report{}, fmt.Errorf("creating %s: %w", outDir, err)
	}
	outPath := filepath.Join(outDir, "impact_scores.csv")
	f, err := os.Create(outPath)
	if err != nil {
		return score.Report{}, fmt.Errorf("creating %s: %w", outPath, err)
	}
	defer f.Close()
	if err := score.WriteCSV(f, scored); err != nil {
		return score.Report{}, err
	}

	if st != nil {
		if err := st.SaveBatch(ctx, runID, report, scored); err != nil {
			return score.Report{}, err
		}
	}

	printer.BatchStats(report)
	if cfg.Verbose {
		printer.VenueDistribution(report.VenueCounts, 10)
		printer.YearDistribution(report.YearCounts)
	}
	return report, nil
}

func writeComparison(outputDir string, rows []score.ComparisonRow) error {
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", outputDir, err)
	}
	name := fmt.Sprintf("comparative_analysis_%s.csv", time.Now().Format("20060102_150405"))
	path := filepath.Join(outputDir, name)
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer f.Close()
	return score.WriteComparisonCSV(f, rows)
}

// watchLoop re-runs the analysis whenever a batch file settles after a
// change, until the context is cancelled.
func watchLoop(ctx context.Context, cfg *config.Config, printer *ui.Printer, tel *telemetry.Emitter) error {
	w, err := watch.New(cfg.PapersDir)
	if err != nil {
		return fmt.Errorf("watching %s: %w", cfg.PapersDir, err)
	}
	if err := w.Start(); err != nil {
		return fmt.Errorf("watching %s: %w", cfg.PapersDir, err)
	}
	defer w.Stop()
	printer.Info("watching " + cfg.PapersDir + " for changes (ctrl-c to stop)")

	for {
		select {
		case <-ctx.Done():
			return nil
		case change, ok := <-w.Changes:
			if !ok {
				return nil
			}
			printer.Info("change detected in " + change.Batch + ", re-running analysis")
			if err := analyzeOnce(ctx, cfg, printer, tel); err != nil {
				printer.Error(err.Error())
			}
		}
	}
}
