package score

import (
	"math"

	"github.com/quillae/scimpact/internal/catalog"
	"github.com/quillae/scimpact/internal/match"
	"github.com/quillae/scimpact/internal/papers"
)

// Scored attaches the computed score fields to a paper record.
type Scored struct {
	Paper papers.Record
	Entry *catalog.Entry // matched venue, nil when unranked

	VenueImpact    float64
	CitationImpact float64
	Recency        float64
	Collaboration  float64

	Total      float64
	Normalized float64 // Total rescaled against the batch maximum, [0,100]
	Tier       string

	International bool
}

// Engine scores batches against one catalog, matcher, and weight set.
// It holds no mutable state: scoring the same batch twice with the same
// global stats yields identical results.
type Engine struct {
	cat     *catalog.Catalog
	matcher *match.Matcher
	weights Weights

	currentYear int
}

// NewEngine builds an Engine. currentYear anchors the recency component
// and must match the year used to validate the batches.
func NewEngine(cat *catalog.Catalog, m *match.Matcher, w Weights, currentYear int) *Engine {
	return &Engine{cat: cat, matcher: m, weights: w, currentYear: currentYear}
}

// Matcher exposes the engine's venue matcher for report-side lookups.
func (e *Engine) Matcher() *match.Matcher { return e.matcher }

// Weights returns the weight set the engine scores with.
func (e *Engine) Weights() Weights { return e.weights }

// ScoreBatch computes all four components, totals, normalized scores, and
// tiers for every record in b. global must come from a complete pre-pass
// over the whole corpus; scoring with a stale global maximum skews the
// citation component.
func (e *Engine) ScoreBatch(b *papers.Batch, global GlobalStats) []Scored {
	out := make([]Scored, len(b.Records))
	for i, rec := range b.Records {
		s := Scored{Paper: rec}
		s.Entry = e.matcher.Match(rec.Venue, rec.ISSN)
		s.VenueImpact = e.venueImpact(s.Entry)
		s.CitationImpact = e.citationImpact(rec.Citations, global.MaxCitations)
		s.Recency = e.recency(rec.Year)
		s.International = papers.International(rec.Affiliations)
		if s.International {
			s.Collaboration = e.weights.Collaboration
		}
		s.Total = s.VenueImpact + s.CitationImpact + s.Recency + s.Collaboration
		out[i] = s
	}
	Normalize(out)
	return out
}

// venueImpact scores the matched venue under the configured scheme.
// Unranked venues score 0. Catalog-wide zero maxima zero the affected
// sub-score instead of dividing by zero.
func (e *Engine) venueImpact(entry *catalog.Entry) float64 {
	if entry == nil {
		return 0
	}
	w := e.weights
	if w.Scheme == SchemePercentile {
		return entry.SJRPercentile*w.VenueSJR +
			entry.HIndexPercentile*w.VenueHIndex +
			quartileBonus[entry.Quartile]/5*w.VenueQuartile
	}

	var score float64
	if maxSJR := e.cat.MaxSJR(); maxSJR > 0 {
		score += entry.SJR / maxSJR * w.VenueSJR
	}
	if maxH := e.cat.MaxHIndex(); maxH > 0 {
		score += float64(entry.HIndex) / float64(maxH) * w.VenueHIndex
	}
	return score
}

// citationImpact compresses the citation long tail with log1p and scales
// against the corpus-wide maximum.
func (e *Engine) citationImpact(citations, globalMax int) float64 {
	if globalMax <= 0 {
		return 0
	}
	return math.Log1p(float64(citations)) / math.Log1p(float64(globalMax)) * e.weights.Citations
}

// recency decays exponentially with publication age.
func (e *Engine) recency(year int) float64 {
	age := float64(e.currentYear - year)
	return math.Exp(-e.weights.RecencyDecay*age) * e.weights.Recency
}

// Normalize rescales every total against the batch maximum into [0, 100]
// and assigns tiers in place. A batch whose every total is zero normalizes
// uniformly to zero rather than dividing by zero.
func Normalize(scored []Scored) {
	var max float64
	for i := range scored {
		if scored[i].Total > max {
			max = scored[i].Total
		}
	}
	for i := range scored {
		if max > 0 {
			scored[i].Normalized = scored[i].Total / max * 100
		} else {
			scored[i].Normalized = 0
		}
		scored[i].Tier = TierFor(scored[i].Normalized)
	}
}
