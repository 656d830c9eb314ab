package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/quillae/scimpact/internal/catalog"
	"github.com/quillae/scimpact/internal/config"
	"github.com/quillae/scimpact/internal/match"
	"github.com/quillae/scimpact/internal/ui"
)

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Inspect the journal-ranking catalog",
}

var catalogLookupCmd = &cobra.Command{
	Use:   "lookup <venue title>",
	Short: "Resolve a venue title against the catalog",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runCatalogLookup,
}

func init() {
	catalogLookupCmd.Flags().String("issn", "", "ISSN to try before title matching")
	catalogLookupCmd.Flags().String("catalog", "", "path to the SCImago journal rankings CSV")

	catalogCmd.AddCommand(catalogLookupCmd)
	rootCmd.AddCommand(catalogCmd)
}

func runCatalogLookup(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if v, _ := cmd.Flags().GetString("catalog"); v != "" {
		cfg.CatalogPath = v
	}
	printer := ui.New()

	cat, err := catalog.LoadFile(cfg.CatalogPath)
	if err != nil {
		return fmt.Errorf("loading catalog: %w", err)
	}

	title := strings.Join(args, " ")
	issn, _ := cmd.Flags().GetString("issn")
	matcher := match.New(cat, match.Options{
		Fuzzy:          cfg.FuzzyEnabled,
		FuzzyThreshold: cfg.FuzzyThreshold,
	})

	entry := matcher.Match(title, issn)
	if entry == nil {
		printer.Warning(fmt.Sprintf("%q is unranked: no catalog entry matches", title))
		return nil
	}

	printer.Success("matched " + entry.Title)
	fmt.Fprintf(os.Stdout, "title:     %s\n", entry.Title)
	fmt.Fprintf(os.Stdout, "issn:      %s\n", entry.ISSN)
	fmt.Fprintf(os.Stdout, "sjr:       %.3f\n", entry.SJR)
	fmt.Fprintf(os.Stdout, "h-index:   %d\n", entry.HIndex)
	if entry.Quartile != "" {
		fmt.Fprintf(os.Stdout, "quartile:  %s\n", entry.Quartile)
	}
	if entry.Rank > 0 {
		fmt.Fprintf(os.Stdout, "rank:      %d\n", entry.Rank)
	}
	return nil
}
