package score

import (
	"sort"

	"github.com/quillae/scimpact/internal/match"
	"github.com/quillae/scimpact/internal/papers"
)

// GlobalStats holds the corpus-wide reference points computed before any
// batch is scored. MaxCitations anchors the citation component for every
// batch, so the pre-pass must see the whole corpus first.
type GlobalStats struct {
	MaxCitations int
	TopPaper     *TopPaper
	TopVenue     *TopVenue
}

// TopPaper identifies the most-cited paper across all batches.
type TopPaper struct {
	Citations int
	Title     string
	Venue     string
	Year      int
	Country   string
	DOI       string
}

// TopVenue identifies the highest-SJR matched venue across all batches.
type TopVenue struct {
	Title          string
	SJR            float64
	HIndex         int
	Quartile       string
	Rank           int
	PaperCount     int
	Countries      []string
	TotalCitations int
}

// Prepass scans every loaded batch for the global citation maximum, the
// top-cited paper, and the top-ranked venue. It is a pure function of its
// inputs; the result is threaded into each ScoreBatch call instead of
// living as process state.
func Prepass(batches []*papers.Batch, m *match.Matcher) GlobalStats {
	var g GlobalStats

	type venueAgg struct {
		sjr       float64
		hIndex    int
		quartile  string
		rank      int
		papers    int
		citations int
		countries map[string]bool
	}
	venues := make(map[string]*venueAgg)

	for _, b := range batches {
		for i := range b.Records {
			rec := &b.Records[i]
			if rec.Citations > g.MaxCitations || g.TopPaper == nil {
				g.MaxCitations = rec.Citations
				g.TopPaper = &TopPaper{
					Citations: rec.Citations,
					Title:     rec.Title,
					Venue:     rec.Venue,
					Year:      rec.Year,
					Country:   b.Name,
					DOI:       rec.DOI,
				}
			}

			agg, seen := venues[rec.Venue]
			if !seen {
				entry := m.Match(rec.Venue, rec.ISSN)
				if entry == nil {
					venues[rec.Venue] = nil
					continue
				}
				agg = &venueAgg{
					sjr:       entry.SJR,
					hIndex:    entry.HIndex,
					quartile:  entry.Quartile,
					rank:      entry.Rank,
					countries: make(map[string]bool),
				}
				venues[rec.Venue] = agg
			}
			if agg == nil {
				continue
			}
			agg.papers++
			agg.citations += rec.Citations
			agg.countries[b.Name] = true
		}
	}

	// Iterate titles in sorted order so an SJR tie resolves the same way
	// on every run.
	titles := make([]string, 0, len(venues))
	for title := range venues {
		titles = append(titles, title)
	}
	sort.Strings(titles)

	for _, title := range titles {
		agg := venues[title]
		if agg == nil {
			continue
		}
		if g.TopVenue == nil || agg.sjr > g.TopVenue.SJR {
			countries := make([]string, 0, len(agg.countries))
			for c := range agg.countries {
				countries = append(countries, c)
			}
			sort.Strings(countries)
			g.TopVenue = &TopVenue{
				Title:          title,
				SJR:            agg.sjr,
				HIndex:         agg.hIndex,
				Quartile:       agg.quartile,
				Rank:           agg.rank,
				PaperCount:     agg.papers,
				Countries:      countries,
				TotalCitations: agg.citations,
			}
		}
	}

	return g
}
