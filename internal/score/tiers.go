package score

// TierBin pairs a lower bound with its ordinal label. Bins are
// left-inclusive: a normalized score falls in the bin with the largest
// threshold not exceeding it, so exactly 20.0 is "Low" and 100.0 stays
// "Very High".
type TierBin struct {
	Threshold float64
	Label     string
}

// Tiers is the fixed ordinal binning of normalized scores, sorted by
// ascending threshold.
var Tiers = []TierBin{
	{0, "Very Low"},
	{20, "Low"},
	{40, "Medium"},
	{60, "High"},
	{80, "Very High"},
}

// TierFor maps a normalized score in [0, 100] to its tier label. Values
// below the lowest threshold clamp into the lowest bin.
func TierFor(normalized float64) string {
	label := Tiers[0].Label
	for _, bin := range Tiers {
		if normalized < bin.Threshold {
			break
		}
		label = bin.Label
	}
	return label
}

// TierLabels returns the labels in ascending order, for stable report
// iteration.
func TierLabels() []string {
	labels := make([]string, len(Tiers))
	for i, bin := range Tiers {
		labels[i] = bin.Label
	}
	return labels
}
