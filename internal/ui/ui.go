// Package ui provides stderr-based console output for scimpact. Data
// products go to files and the store; everything here is human framing.
package ui

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/quillae/scimpact/internal/score"
)

var (
	styleHeader  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("6"))
	styleSub     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("5"))
	styleSuccess = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("2"))
	styleWarn    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("3"))
	styleError   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("1"))
	styleDim     = lipgloss.NewStyle().Faint(true)
	styleLabel   = lipgloss.NewStyle().Foreground(lipgloss.Color("4"))
)

// Printer writes styled progress and report output to stderr.
type Printer struct{}

// New returns a Printer.
func New() *Printer {
	return &Printer{}
}

func (p *Printer) Banner() {
	fmt.Fprintln(os.Stderr, styleHeader.Render("scimpact — journal impact score analysis"))
	fmt.Fprintln(os.Stderr)
}

func (p *Printer) Header(title string) {
	bar := strings.Repeat("═", len(title)+4)
	fmt.Fprintln(os.Stderr)
	fmt.Fprintln(os.Stderr, styleHeader.Render(bar))
	fmt.Fprintln(os.Stderr, styleHeader.Render("  "+title))
	fmt.Fprintln(os.Stderr, styleHeader.Render(bar))
}

func (p *Printer) SubHeader(title string) {
	fmt.Fprintln(os.Stderr)
	fmt.Fprintln(os.Stderr, styleSub.Render("── "+title+" ──"))
}

func (p *Printer) Progress(msg string) {
	fmt.Fprintln(os.Stderr, styleDim.Render("… "+msg))
}

func (p *Printer) Success(msg string) {
	fmt.Fprintln(os.Stderr, styleSuccess.Render("✓ ")+msg)
}

func (p *Printer) Warning(msg string) {
	fmt.Fprintln(os.Stderr, styleWarn.Render("⚠ ")+msg)
}

func (p *Printer) Error(msg string) {
	fmt.Fprintln(os.Stderr, styleError.Render("✗ ")+msg)
}

func (p *Printer) Info(msg string) {
	fmt.Fprintln(os.Stderr, styleDim.Render(msg))
}

func (p *Printer) kv(label, value string) {
	fmt.Fprintf(os.Stderr, "  %s %s\n", styleLabel.Render(label+":"), value)
}

// GlobalReference prints the corpus-wide reference points found by the
// pre-pass.
func (p *Printer) GlobalReference(g score.GlobalStats) {
	if g.TopPaper != nil {
		p.SubHeader("Most Cited Paper")
		p.kv("Citations", fmt.Sprintf("%d", g.TopPaper.Citations))
		p.kv("Title", orNA(g.TopPaper.Title))
		p.kv("Venue", orNA(g.TopPaper.Venue))
		p.kv("Year", fmt.Sprintf("%d", g.TopPaper.Year))
		p.kv("Country", g.TopPaper.Country)
		p.kv("DOI", orNA(g.TopPaper.DOI))
	}
	if g.TopVenue != nil {
		p.SubHeader("Highest Ranked Venue")
		p.kv("Venue", g.TopVenue.Title)
		p.kv("SJR", fmt.Sprintf("%.3f", g.TopVenue.SJR))
		p.kv("Rank", fmt.Sprintf("(%d) | %s", g.TopVenue.Rank, orNA(g.TopVenue.Quartile)))
		p.kv("H-index", fmt.Sprintf("%d", g.TopVenue.HIndex))
		p.kv("Papers", fmt.Sprintf("%d", g.TopVenue.PaperCount))
		p.kv("Total citations", fmt.Sprintf("%d", g.TopVenue.TotalCitations))
		p.kv("Countries", strings.Join(g.TopVenue.Countries, ", "))
	}
}

// MatchRate reports how many venues resolved against the catalog.
func (p *Printer) MatchRate(matched, total int) {
	pct := 0.0
	if total > 0 {
		pct = float64(matched) / float64(total) * 100
	}
	p.Info(fmt.Sprintf("matched %d of %d venues against the catalog (%.1f%%)", matched, total, pct))
}

// BatchStats prints the aggregate report for one batch.
func (p *Printer) BatchStats(r score.Report) {
	p.SubHeader("Impact Statistics — " + r.Batch)
	p.kv("Papers", fmt.Sprintf("%d", r.TotalPapers))
	p.kv("Mean impact score", fmt.Sprintf("%.2f", r.MeanScore))
	p.kv("Mean citations", fmt.Sprintf("%.1f", r.AvgCitations))
	p.kv("International collab", fmt.Sprintf("%.1f%%", r.CollabPct))
	p.kv("Highest score", fmt.Sprintf("%.2f — %s", r.Highest.Score, orNA(r.Highest.Venue)))
	p.kv("Lowest score", fmt.Sprintf("%.2f — %s", r.Lowest.Score, orNA(r.Lowest.Venue)))

	fmt.Fprintln(os.Stderr, styleLabel.Render("  Tier distribution:"))
	for _, label := range score.TierLabels() {
		count := r.TierCounts[label]
		pct := 0.0
		if r.TotalPapers > 0 {
			pct = float64(count) / float64(r.TotalPapers) * 100
		}
		fmt.Fprintf(os.Stderr, "    %-9s %5d  (%.1f%%)\n", label, count, pct)
	}

	if len(r.QuartileMix) > 0 {
		fmt.Fprintln(os.Stderr, styleLabel.Render("  Quartile mix (distinct venues):"))
		for _, q := range []string{"Q1", "Q2", "Q3", "Q4", "unranked"} {
			if count, ok := r.QuartileMix[q]; ok {
				fmt.Fprintf(os.Stderr, "    %-9s %5d\n", q, count)
			}
		}
	}
}

// VenueDistribution prints the most frequent venues in a batch.
func (p *Printer) VenueDistribution(counts map[string]int, limit int) {
	type vc struct {
		venue string
		count int
	}
	sorted := make([]vc, 0, len(counts))
	for v, c := range counts {
		sorted = append(sorted, vc{v, c})
	}
	sort.Slice(sorted, func(a, b int) bool {
		if sorted[a].count != sorted[b].count {
			return sorted[a].count > sorted[b].count
		}
		return sorted[a].venue < sorted[b].venue
	})
	if limit > 0 && len(sorted) > limit {
		sorted = sorted[:limit]
	}

	fmt.Fprintln(os.Stderr, styleLabel.Render("  Top venues:"))
	for _, e := range sorted {
		fmt.Fprintf(os.Stderr, "    %5d  %s\n", e.count, e.venue)
	}
}

// YearDistribution prints paper counts per publication year in ascending
// year order.
func (p *Printer) YearDistribution(counts map[int]int) {
	years := make([]int, 0, len(counts))
	for y := range counts {
		years = append(years, y)
	}
	sort.Ints(years)

	fmt.Fprintln(os.Stderr, styleLabel.Render("  Papers per year:"))
	for _, y := range years {
		fmt.Fprintf(os.Stderr, "    %d  %d\n", y, counts[y])
	}
}

// Comparison prints the cross-batch table sorted by mean score descending.
func (p *Printer) Comparison(rows []score.ComparisonRow) {
	sorted := make([]score.ComparisonRow, len(rows))
	copy(sorted, rows)
	sort.Slice(sorted, func(a, b int) bool { return sorted[a].MeanScore > sorted[b].MeanScore })

	p.SubHeader("Cross-Country Comparison")
	fmt.Fprintf(os.Stderr, "  %-20s %10s %12s %10s\n", "country", "papers", "mean score", "collab %")
	for _, r := range sorted {
		fmt.Fprintf(os.Stderr, "  %-20s %10d %12.2f %9.1f%%\n", r.Name, r.TotalPapers, r.MeanScore, r.CollabPct)
	}
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}
