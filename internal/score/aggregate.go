package score

import "github.com/quillae/scimpact/internal/match"

// Extreme describes the record at one end of the normalized-score range.
type Extreme struct {
	Score float64
	Venue string
	Title string
	DOI   string
}

// Report aggregates one scored batch.
type Report struct {
	Batch       string
	TotalPapers int
	MeanScore   float64

	TierCounts map[string]int

	// Extremes among records with a positive normalized score. When no
	// record scores above zero both degrade to zero-valued placeholders.
	Highest Extreme
	Lowest  Extreme

	CollabPct     float64
	AvgCitations  float64
	MatchedVenues int // records whose venue resolved against the catalog

	VenueCounts map[string]int
	YearCounts  map[int]int

	// QuartileMix counts distinct venue titles per best quartile, with
	// "unranked" for titles the catalog does not know.
	QuartileMix map[string]int
}

// Aggregate builds the batch report for scored records. m is consulted
// once per distinct venue title for the quartile mix.
func Aggregate(batch string, scored []Scored, m *match.Matcher) Report {
	r := Report{
		Batch:       batch,
		TotalPapers: len(scored),
		TierCounts:  make(map[string]int),
		VenueCounts: make(map[string]int),
		YearCounts:  make(map[int]int),
		QuartileMix: make(map[string]int),
	}
	r.Highest = Extreme{Title: "N/A", Venue: "N/A", DOI: "N/A"}
	r.Lowest = Extreme{Title: "N/A", Venue: "N/A", DOI: "N/A"}

	var sumScore, sumCitations float64
	var collab int
	foundPositive := false

	for i := range scored {
		s := &scored[i]
		sumScore += s.Normalized
		sumCitations += float64(s.Paper.Citations)
		r.TierCounts[s.Tier]++
		r.VenueCounts[s.Paper.Venue]++
		r.YearCounts[s.Paper.Year]++
		if s.International {
			collab++
		}
		if s.Entry != nil {
			r.MatchedVenues++
		}

		// Zero scores are excluded from extremes so degenerate ties do
		// not dominate the "lowest" slot.
		if s.Normalized <= 0 {
			continue
		}
		if !foundPositive || s.Normalized > r.Highest.Score {
			r.Highest = Extreme{Score: s.Normalized, Venue: s.Paper.Venue, Title: s.Paper.Title, DOI: s.Paper.DOI}
		}
		if !foundPositive || s.Normalized < r.Lowest.Score {
			r.Lowest = Extreme{Score: s.Normalized, Venue: s.Paper.Venue, Title: s.Paper.Title, DOI: s.Paper.DOI}
		}
		foundPositive = true
	}

	if len(scored) > 0 {
		r.MeanScore = sumScore / float64(len(scored))
		r.AvgCitations = sumCitations / float64(len(scored))
		r.CollabPct = float64(collab) / float64(len(scored)) * 100
	}

	for venue := range r.VenueCounts {
		entry := m.Match(venue, "")
		switch {
		case entry == nil || entry.Quartile == "":
			r.QuartileMix["unranked"]++
		default:
			r.QuartileMix[entry.Quartile]++
		}
	}

	return r
}

// ComparisonRow summarizes one batch for cross-batch reporting.
type ComparisonRow struct {
	Name        string
	TotalPapers int
	MeanScore   float64
	CollabPct   float64
}

// Comparison flattens batch reports into comparison rows, preserving the
// order the reports were produced in.
func Comparison(reports []Report) []ComparisonRow {
	rows := make([]ComparisonRow, len(reports))
	for i, r := range reports {
		rows[i] = ComparisonRow{
			Name:        r.Batch,
			TotalPapers: r.TotalPapers,
			MeanScore:   r.MeanScore,
			CollabPct:   r.CollabPct,
		}
	}
	return rows
}
