// Package catalog loads the SCImago journal-ranking reference table and
// exposes venue lookup by ISSN, exact title, and partial title. The catalog
// is built once at startup and is immutable afterward, so it is safe to
// share across batches.
package catalog

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"
)

// ErrEmpty is returned when the source parses but yields no usable entries.
var ErrEmpty = errors.New("catalog: no usable entries")

// Entry is a single journal row from the reference table.
type Entry struct {
	Title      string
	CleanTitle string // lowercased, trimmed; the match key
	ISSN       string // may hold several ISSNs joined by commas or semicolons
	SJR        float64
	HIndex     int
	Quartile   string // "Q1".."Q4", or empty when unranked
	Rank       int    // numerical rank, 0 when absent

	// Percentile ranks within the catalog, in [0, 1]. Used by the
	// percentile-based prestige scheme.
	SJRPercentile    float64
	HIndexPercentile float64
}

// Catalog is the immutable in-memory reference table.
type Catalog struct {
	entries []Entry
	byTitle map[string]int // CleanTitle → index of first entry

	maxSJR    float64
	maxHIndex int
}

// Load parses the reference table from r. Individual malformed rows are
// dropped; Load fails only when the input cannot be read as delimited data
// at all or no row survives.
func Load(r io.Reader) (*Catalog, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("catalog: read: %w", err)
	}

	cr := csv.NewReader(strings.NewReader(string(data)))
	cr.Comma = detectDelimiter(string(data))
	cr.LazyQuotes = true
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("catalog: read header: %w", err)
	}
	cols := headerIndex(header)
	titleCol, ok := cols["title"]
	if !ok {
		return nil, fmt.Errorf("catalog: %w: no Title column", ErrEmpty)
	}

	c := &Catalog{byTitle: make(map[string]int)}
	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			// Malformed row; skip it.
			continue
		}
		e, ok := parseRow(row, cols, titleCol)
		if !ok {
			continue
		}
		idx := len(c.entries)
		c.entries = append(c.entries, e)
		if _, dup := c.byTitle[e.CleanTitle]; !dup {
			c.byTitle[e.CleanTitle] = idx
		}
		if e.SJR > c.maxSJR {
			c.maxSJR = e.SJR
		}
		if e.HIndex > c.maxHIndex {
			c.maxHIndex = e.HIndex
		}
	}

	if len(c.entries) == 0 {
		return nil, ErrEmpty
	}
	c.computePercentiles()
	return c, nil
}

// LoadFile opens and parses the reference table at path.
func LoadFile(path string) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("catalog: open %s: %w", path, err)
	}
	defer f.Close()
	return Load(f)
}

// parseRow converts one CSV row into an Entry. Rows without a title are
// rejected; unparseable numeric fields default to zero.
func parseRow(row []string, cols map[string]int, titleCol int) (Entry, bool) {
	if titleCol >= len(row) {
		return Entry{}, false
	}
	title := strings.TrimSpace(row[titleCol])
	if title == "" {
		return Entry{}, false
	}

	e := Entry{
		Title:      title,
		CleanTitle: strings.TrimSpace(strings.ToLower(title)),
		ISSN:       field(row, cols, "issn"),
		SJR:        parseSJR(field(row, cols, "sjr")),
		HIndex:     parseInt(field(row, cols, "h index")),
		Rank:       parseInt(field(row, cols, "rank")),
		Quartile:   strings.ToUpper(field(row, cols, "sjr best quartile")),
	}
	switch e.Quartile {
	case "Q1", "Q2", "Q3", "Q4":
	default:
		e.Quartile = ""
	}
	return e, true
}

func field(row []string, cols map[string]int, name string) string {
	i, ok := cols[name]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

// parseSJR accepts a comma as the decimal separator, as SCImago exports do.
// Unparseable or negative values become 0.
func parseSJR(s string) float64 {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", ".")
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || v < 0 {
		return 0
	}
	return v
}

func parseInt(s string) int {
	v, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || v < 0 {
		return 0
	}
	return v
}

// headerIndex maps lowercased, trimmed column names to their positions.
func headerIndex(header []string) map[string]int {
	cols := make(map[string]int, len(header))
	for i, h := range header {
		name := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
		if _, dup := cols[name]; !dup {
			cols[name] = i
		}
	}
	return cols
}

// detectDelimiter sniffs the field separator from the first line. SCImago
// exports use semicolons; Scopus exports use commas.
func detectDelimiter(data string) rune {
	line := data
	if i := strings.IndexByte(line, '\n'); i >= 0 {
		line = line[:i]
	}
	best, sep := 0, ','
	for _, cand := range []rune{',', ';', '\t'} {
		if n := strings.Count(line, string(cand)); n > best {
			best, sep = n, cand
		}
	}
	return sep
}

// computePercentiles assigns average-rank percentiles for SJR and H-index,
// matching the fractional ranking the percentile prestige scheme expects.
func (c *Catalog) computePercentiles() {
	n := len(c.entries)
	assign := func(value func(Entry) float64, set func(*Entry, float64)) {
		order := make([]int, n)
		for i := range order {
			order[i] = i
		}
		sort.SliceStable(order, func(a, b int) bool {
			return value(c.entries[order[a]]) < value(c.entries[order[b]])
		})
		for i := 0; i < n; {
			j := i
			for j < n && value(c.entries[order[j]]) == value(c.entries[order[i]]) {
				j++
			}
			// Ties share the average of their rank positions.
			avg := float64(i+j+1) / 2.0 / float64(n)
			for k := i; k < j; k++ {
				set(&c.entries[order[k]], avg)
			}
			i = j
		}
	}
	assign(func(e Entry) float64 { return e.SJR },
		func(e *Entry, p float64) { e.SJRPercentile = p })
	assign(func(e Entry) float64 { return float64(e.HIndex) },
		func(e *Entry, p float64) { e.HIndexPercentile = p })
}

// Len returns the number of entries in catalog order.
func (c *Catalog) Len() int { return len(c.entries) }

// Entry returns the i-th entry in catalog order.
func (c *Catalog) Entry(i int) *Entry { return &c.entries[i] }

// MaxSJR returns the highest SJR score across the catalog.
func (c *Catalog) MaxSJR() float64 { return c.maxSJR }

// MaxHIndex returns the highest H-index across the catalog.
func (c *Catalog) MaxHIndex() int { return c.maxHIndex }

// LookupISSN returns the first entry whose ISSN field contains issn as a
// literal substring, or nil. Catalog ISSN fields may pack several ISSNs.
func (c *Catalog) LookupISSN(issn string) *Entry {
	issn = strings.TrimSpace(issn)
	if issn == "" {
		return nil
	}
	for i := range c.entries {
		if strings.Contains(c.entries[i].ISSN, issn) {
			return &c.entries[i]
		}
	}
	return nil
}

// LookupExact returns the entry whose clean title equals cleanTitle, or nil.
func (c *Catalog) LookupExact(cleanTitle string) *Entry {
	if i, ok := c.byTitle[cleanTitle]; ok {
		return &c.entries[i]
	}
	return nil
}

// LookupPartial returns the first entry in catalog order whose clean title
// contains cleanTitle as a literal substring, or nil. No ranking is applied
// among multiple partial hits; first wins.
func (c *Catalog) LookupPartial(cleanTitle string) *Entry {
	if cleanTitle == "" {
		return nil
	}
	for i := range c.entries {
		if strings.Contains(c.entries[i].CleanTitle, cleanTitle) {
			return &c.entries[i]
		}
	}
	return nil
}

// Clean normalizes a free-text venue title into the match-key form.
func Clean(title string) string {
	return strings.TrimSpace(strings.ToLower(title))
}
