// Package score computes the composite impact score: four independently
// normalized components per record, batch-max normalization to [0,100],
// and ordinal tier binning, plus the per-batch report and the cross-batch
// comparison consumed by external reporting.
package score

import "fmt"

// Prestige schemes for the venue component. The two schemes are never
// blended: a profile selects exactly one.
const (
	// SchemeRatio scores venue prestige as SJR and H-index ratios against
	// the catalog maxima (20 + 10 points).
	SchemeRatio = "ratio"

	// SchemePercentile scores venue prestige as SJR and H-index catalog
	// percentiles (15 + 10 points) plus a quartile bonus (up to 5).
	SchemePercentile = "percentile"
)

// quartileBonus is the flat bonus the percentile scheme grants per best
// quartile. Unranked venues get nothing.
var quartileBonus = map[string]float64{
	"Q1": 5,
	"Q2": 3,
	"Q3": 1,
	"Q4": 0,
}

// Weights holds the point budget of every component and the recency decay
// constant. The venue sub-weights must sum to the venue budget for the
// selected scheme.
type Weights struct {
	Scheme string `toml:"scheme"`

	VenueSJR      float64 `toml:"venue_sjr"`
	VenueHIndex   float64 `toml:"venue_h_index"`
	VenueQuartile float64 `toml:"venue_quartile"` // percentile scheme only

	Citations     float64 `toml:"citations"`
	Recency       float64 `toml:"recency"`
	Collaboration float64 `toml:"collaboration"`

	// RecencyDecay is the exponential decay constant per year of age.
	RecencyDecay float64 `toml:"recency_decay"`
}

// Default returns the dataset-level weighting: venue 30 (20 SJR + 10
// H-index ratio), citations 30, recency 15, collaboration 10, with a
// 0.1/year recency decay.
func Default() Weights {
	return Weights{
		Scheme:        SchemeRatio,
		VenueSJR:      20,
		VenueHIndex:   10,
		Citations:     30,
		Recency:       15,
		Collaboration: 10,
		RecencyDecay:  0.1,
	}
}

// Percentile returns the alternative prestige weighting: venue 30 as a
// 15/10/5 percentile-plus-quartile split, with the same non-venue budgets
// as Default.
func Percentile() Weights {
	w := Default()
	w.Scheme = SchemePercentile
	w.VenueSJR = 15
	w.VenueHIndex = 10
	w.VenueQuartile = 5
	return w
}

// Validate rejects unknown schemes, negative budgets, and a non-positive
// decay constant.
func (w Weights) Validate() error {
	switch w.Scheme {
	case SchemeRatio, SchemePercentile:
	default:
		return fmt.Errorf("score: unknown prestige scheme %q", w.Scheme)
	}
	for name, v := range map[string]float64{
		"venue_sjr":      w.VenueSJR,
		"venue_h_index":  w.VenueHIndex,
		"venue_quartile": w.VenueQuartile,
		"citations":      w.Citations,
		"recency":        w.Recency,
		"collaboration":  w.Collaboration,
	} {
		if v < 0 {
			return fmt.Errorf("score: negative weight %s", name)
		}
	}
	if w.Scheme == SchemeRatio && w.VenueQuartile != 0 {
		return fmt.Errorf("score: venue_quartile is only valid with the percentile scheme")
	}
	if w.RecencyDecay <= 0 {
		return fmt.Errorf("score: recency_decay must be positive")
	}
	return nil
}
