// Package papers loads per-country paper batches from Scopus-style CSV
// exports, tolerating the column renamings the export surface has gone
// through. Rows with an invalid publication year are dropped before
// scoring; single bad numeric fields default to zero instead of failing
// the record.
package papers

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

// MinYear is the lower bound of the accepted publication-year window.
// The upper bound is the current year at load time.
const MinYear = 1900

// ErrMissingColumns is returned when a batch source lacks the venue title
// or year column under any known name.
var ErrMissingColumns = errors.New("papers: missing required columns")

// Record is one paper row after column mapping and validation.
type Record struct {
	Venue        string
	ISSN         string
	Year         int
	Citations    int
	Affiliations string

	// Passthrough metadata, untouched by scoring.
	DocType   string
	Title     string
	DOI       string
	Authors   string
	Publisher string
}

// Batch holds all valid records from one country source.
type Batch struct {
	Name    string // country name, derived from the file name
	Records []Record
	Dropped int // rows rejected by the year filter or missing a venue title
}

// columnAliases maps canonical field names to the header spellings seen in
// the wild. Matching is case-insensitive on trimmed headers.
var columnAliases = map[string][]string{
	"venue":        {"source title", "journal_title", "journal title", "venue"},
	"issn":         {"issn"},
	"year":         {"year"},
	"citations":    {"cited by", "citation_count", "citations"},
	"affiliations": {"affiliations"},
	"doctype":      {"document type", "document_type"},
	"title":        {"title"},
	"doi":          {"doi"},
	"authors":      {"authors"},
	"publisher":    {"publisher"},
}

// Load parses one batch from r. currentYear closes the validity window for
// publication years. A read failure of the stream itself is an error; bad
// rows are dropped and counted.
func Load(name string, r io.Reader, currentYear int) (*Batch, error) {
	cr := csv.NewReader(r)
	cr.LazyQuotes = true
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("papers: read header for %s: %w", name, err)
	}
	cols := mapColumns(header)
	if _, ok := cols["venue"]; !ok {
		return nil, fmt.Errorf("%w: venue title (batch %s)", ErrMissingColumns, name)
	}
	if _, ok := cols["year"]; !ok {
		return nil, fmt.Errorf("%w: year (batch %s)", ErrMissingColumns, name)
	}

	b := &Batch{Name: name}
	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			b.Dropped++
			continue
		}
		rec, ok := parseRecord(row, cols, currentYear)
		if !ok {
			b.Dropped++
			continue
		}
		b.Records = append(b.Records, rec)
	}
	return b, nil
}

// LoadFile parses the batch stored at path, deriving the batch name from
// the file name.
func LoadFile(path string, currentYear int) (*Batch, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("papers: open %s: %w", path, err)
	}
	defer f.Close()
	return Load(BatchName(path), f, currentYear)
}

func parseRecord(row []string, cols map[string]int, currentYear int) (Record, bool) {
	get := func(name string) string {
		i, ok := cols[name]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	venue := get("venue")
	if venue == "" {
		return Record{}, false
	}
	year, err := strconv.Atoi(get("year"))
	if err != nil || year < MinYear || year > currentYear {
		return Record{}, false
	}

	return Record{
		Venue:        venue,
		ISSN:         get("issn"),
		Year:         year,
		Citations:    parseCitations(get("citations")),
		Affiliations: get("affiliations"),
		DocType:      get("doctype"),
		Title:        get("title"),
		DOI:          get("doi"),
		Authors:      get("authors"),
		Publisher:    get("publisher"),
	}, true
}

// parseCitations defaults missing or unparseable counts to 0.
func parseCitations(s string) int {
	v, err := strconv.Atoi(s)
	if err != nil || v < 0 {
		return 0
	}
	return v
}

func mapColumns(header []string) map[string]int {
	byHeader := make(map[string]int, len(header))
	for i, h := range header {
		name := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
		if _, dup := byHeader[name]; !dup {
			byHeader[name] = i
		}
	}
	cols := make(map[string]int, len(columnAliases))
	for canonical, aliases := range columnAliases {
		for _, alias := range aliases {
			if i, ok := byHeader[alias]; ok {
				cols[canonical] = i
				break
			}
		}
	}
	return cols
}

// Countries extracts the distinct trailing-country tokens from a
// semicolon-separated affiliation string: each affiliation's text after
// its last comma, trimmed. Order follows first appearance.
func Countries(affiliations string) []string {
	var out []string
	seen := make(map[string]bool)
	for _, aff := range strings.Split(affiliations, ";") {
		aff = strings.TrimSpace(aff)
		if aff == "" {
			continue
		}
		country := aff
		if i := strings.LastIndex(aff, ","); i >= 0 {
			country = strings.TrimSpace(aff[i+1:])
		}
		if country == "" || seen[country] {
			continue
		}
		seen[country] = true
		out = append(out, country)
	}
	return out
}

// International reports whether the affiliation string spans more than one
// distinct country. Blank affiliations are domestic by definition.
func International(affiliations string) bool {
	return len(Countries(affiliations)) > 1
}

// batchSuffix is the file-name convention for per-country paper exports.
const batchSuffix = "_papers.csv"

// Discover returns the batch files under dir, sorted by name. When
// countries is non-empty, only those batches are returned, in the given
// order, whether or not the files exist (missing ones surface as per-batch
// load errors later).
func Discover(dir string, countries []string) ([]string, error) {
	if len(countries) > 0 {
		paths := make([]string, len(countries))
		for i, c := range countries {
			paths[i] = filepath.Join(dir, c+batchSuffix)
		}
		return paths, nil
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("papers: read dir %s: %w", dir, err)
	}
	var paths []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), batchSuffix) {
			continue
		}
		paths = append(paths, filepath.Join(dir, e.Name()))
	}
	sort.Strings(paths)
	return paths, nil
}

// BatchName derives the country name from a batch file path.
func BatchName(path string) string {
	return strings.TrimSuffix(filepath.Base(path), batchSuffix)
}
