package match

import "github.com/agnivade/levenshtein"

// Ratio returns a similarity score between a and b on a 0–100 scale:
// 100 minus the edit distance normalized by the longer string's length.
// Identical strings score 100; strings with nothing in common score 0.
func Ratio(a, b string) int {
	if a == b {
		return 100
	}
	la, lb := len([]rune(a)), len([]rune(b))
	longer := la
	if lb > longer {
		longer = lb
	}
	if longer == 0 {
		return 100
	}
	dist := levenshtein.ComputeDistance(a, b)
	return 100 * (longer - dist) / longer
}
