package score

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
)

// scoreHeader is the column layout of the enriched per-record export:
// the original fields followed by the computed score fields.
var scoreHeader = []string{
	"title", "authors", "source_title", "issn", "year", "cited_by",
	"document_type", "doi", "publisher", "affiliations",
	"international_collab",
	"venue_impact", "citation_impact", "recency", "collaboration",
	"total_impact_score", "normalized_impact_score", "impact_tier",
}

// WriteCSV writes the enriched per-record table for one scored batch.
func WriteCSV(w io.Writer, scored []Scored) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(scoreHeader); err != nil {
		return fmt.Errorf("score: write header: %w", err)
	}
	for i := range scored {
		s := &scored[i]
		row := []string{
			s.Paper.Title,
			s.Paper.Authors,
			s.Paper.Venue,
			s.Paper.ISSN,
			strconv.Itoa(s.Paper.Year),
			strconv.Itoa(s.Paper.Citations),
			s.Paper.DocType,
			s.Paper.DOI,
			s.Paper.Publisher,
			s.Paper.Affiliations,
			strconv.FormatBool(s.International),
			formatScore(s.VenueImpact),
			formatScore(s.CitationImpact),
			formatScore(s.Recency),
			formatScore(s.Collaboration),
			formatScore(s.Total),
			formatScore(s.Normalized),
			s.Tier,
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("score: write row %d: %w", i, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteComparisonCSV writes the cross-batch comparison table.
func WriteComparisonCSV(w io.Writer, rows []ComparisonRow) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"name", "total_papers", "avg_impact_score", "international_collab_pct"}); err != nil {
		return fmt.Errorf("score: write comparison header: %w", err)
	}
	for _, row := range rows {
		rec := []string{
			row.Name,
			strconv.Itoa(row.TotalPapers),
			formatScore(row.MeanScore),
			formatScore(row.CollabPct),
		}
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("score: write comparison row %s: %w", row.Name, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

func formatScore(v float64) string {
	return strconv.FormatFloat(v, 'f', 4, 64)
}
