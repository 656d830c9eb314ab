// Package match resolves free-text venue names against the reference
// catalog. Resolution precedence is fixed: ISSN containment, then exact
// normalized title, then partial title containment, then (optionally)
// fuzzy similarity. A miss means "unranked", never an error.
package match

import (
	"github.com/quillae/scimpact/internal/catalog"
)

// Options configures a Matcher.
type Options struct {
	// Fuzzy enables the approximate-similarity fallback after ISSN, exact,
	// and partial lookups all miss.
	Fuzzy bool

	// FuzzyThreshold is the minimum similarity ratio, on a 0–100 scale,
	// for a fuzzy candidate to be accepted.
	FuzzyThreshold int
}

// DefaultOptions returns production defaults: fuzzy matching on with the
// 85/100 acceptance threshold.
func DefaultOptions() Options {
	return Options{
		Fuzzy:          true,
		FuzzyThreshold: 85,
	}
}

// Matcher resolves venue titles against a catalog.
type Matcher struct {
	cat  *catalog.Catalog
	opts Options
}

// New creates a Matcher over cat.
func New(cat *catalog.Catalog, opts Options) *Matcher {
	return &Matcher{cat: cat, opts: opts}
}

// Match resolves a venue title (and optional ISSN) to a catalog entry.
// It returns nil when no tier of the lookup chain produces a hit; callers
// must treat nil as "unranked".
func (m *Matcher) Match(title, issn string) *catalog.Entry {
	if issn != "" {
		if e := m.cat.LookupISSN(issn); e != nil {
			return e
		}
	}

	clean := catalog.Clean(title)
	if clean == "" {
		return nil
	}
	if e := m.cat.LookupExact(clean); e != nil {
		return e
	}
	if e := m.cat.LookupPartial(clean); e != nil {
		return e
	}
	if m.opts.Fuzzy {
		return m.fuzzyMatch(clean)
	}
	return nil
}

// fuzzyMatch scans the whole catalog for the highest similarity ratio and
// accepts it only above the configured threshold. Ties keep the earliest
// entry in catalog order.
func (m *Matcher) fuzzyMatch(clean string) *catalog.Entry {
	var best *catalog.Entry
	bestScore := m.opts.FuzzyThreshold
	for i := 0; i < m.cat.Len(); i++ {
		e := m.cat.Entry(i)
		if score := Ratio(clean, e.CleanTitle); score > bestScore {
			bestScore = score
			best = e
		}
	}
	return best
}
