package papers

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

const currentYear = 2026

const scopusCSV = `Authors,Title,Year,Source title,ISSN,Cited by,Affiliations,Document Type,DOI,Publisher
"Doe J.; Roe A.",Deep learning for X,2024,Nature,0028-0836,50,"MIT, USA; Oxford, UK",Article,10.1000/xyz,Springer
"Poe E.",Old result,1899,Science,0036-8075,10,"Yale, USA",Article,10.1000/old,AAAS
"Loe B.",Future work,2099,Science,0036-8075,0,"Yale, USA",Article,10.1000/fut,AAAS
"Moe C.",Uncited note,2020,Science,0036-8075,,"Yale, USA",Note,10.1000/note,AAAS
`

func loadSample(t *testing.T) *Batch {
	t.Helper()
	b, err := Load("testland", strings.NewReader(scopusCSV), currentYear)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	return b
}

func TestLoad_MapsScopusColumns(t *testing.T) {
	t.Parallel()
	b := loadSample(t)

	if len(b.Records) == 0 {
		t.Fatal("no records loaded")
	}
	r := b.Records[0]
	if r.Venue != "Nature" {
		t.Errorf("Venue = %q, want Nature", r.Venue)
	}
	if r.ISSN != "0028-0836" {
		t.Errorf("ISSN = %q", r.ISSN)
	}
	if r.Year != 2024 {
		t.Errorf("Year = %d, want 2024", r.Year)
	}
	if r.Citations != 50 {
		t.Errorf("Citations = %d, want 50", r.Citations)
	}
	if r.Title != "Deep learning for X" {
		t.Errorf("Title = %q", r.Title)
	}
	if r.DOI != "10.1000/xyz" {
		t.Errorf("DOI = %q", r.DOI)
	}
	if r.Publisher != "Springer" {
		t.Errorf("Publisher = %q", r.Publisher)
	}
}

func TestLoad_YearWindow(t *testing.T) {
	t.Parallel()
	b := loadSample(t)

	// 1899 and 2099 rows must be dropped; 2024 and 2020 survive.
	if len(b.Records) != 2 {
		t.Fatalf("len(Records) = %d, want 2", len(b.Records))
	}
	if b.Dropped != 2 {
		t.Errorf("Dropped = %d, want 2", b.Dropped)
	}
	for _, r := range b.Records {
		if r.Year < MinYear || r.Year > currentYear {
			t.Errorf("record year %d escaped the validity window", r.Year)
		}
	}
}

func TestLoad_YearBoundaries(t *testing.T) {
	t.Parallel()
	csv := "Source title,Year\nA,1900\nB,1899\nC," + "2026" + "\nD,2027\n"
	b, err := Load("b", strings.NewReader(csv), currentYear)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	years := make([]int, 0, len(b.Records))
	for _, r := range b.Records {
		years = append(years, r.Year)
	}
	if !reflect.DeepEqual(years, []int{1900, 2026}) {
		t.Errorf("surviving years = %v, want [1900 2026] (inclusive window)", years)
	}
}

func TestLoad_MissingCitationsDefaultsToZero(t *testing.T) {
	t.Parallel()
	b := loadSample(t)

	var note *Record
	for i := range b.Records {
		if b.Records[i].Title == "Uncited note" {
			note = &b.Records[i]
		}
	}
	if note == nil {
		t.Fatal("Uncited note record not found")
	}
	if note.Citations != 0 {
		t.Errorf("Citations = %d, want 0", note.Citations)
	}
}

func TestLoad_AlternateColumnNames(t *testing.T) {
	t.Parallel()
	csv := "journal_title,year,citation_count\nNature,2020,7\n"
	b, err := Load("alt", strings.NewReader(csv), currentYear)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(b.Records) != 1 {
		t.Fatalf("len(Records) = %d, want 1", len(b.Records))
	}
	if b.Records[0].Venue != "Nature" || b.Records[0].Citations != 7 {
		t.Errorf("record = %+v", b.Records[0])
	}
}

func TestLoad_StripsHeaderBOM(t *testing.T) {
	t.Parallel()
	csv := "\ufeffSource title,Year\nNature,2020\n"
	b, err := Load("bom", strings.NewReader(csv), currentYear)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(b.Records) != 1 || b.Records[0].Venue != "Nature" {
		t.Errorf("records = %+v, want BOM-prefixed venue column mapped", b.Records)
	}
}

func TestLoad_MissingRequiredColumns(t *testing.T) {
	t.Parallel()

	t.Run("no venue column", func(t *testing.T) {
		t.Parallel()
		_, err := Load("x", strings.NewReader("Year,Cited by\n2020,1\n"), currentYear)
		if !errors.Is(err, ErrMissingColumns) {
			t.Errorf("err = %v, want ErrMissingColumns", err)
		}
	})

	t.Run("no year column", func(t *testing.T) {
		t.Parallel()
		_, err := Load("x", strings.NewReader("Source title\nNature\n"), currentYear)
		if !errors.Is(err, ErrMissingColumns) {
			t.Errorf("err = %v, want ErrMissingColumns", err)
		}
	})
}

func TestCountries(t *testing.T) {
	t.Parallel()
	cases := []struct {
		name, affiliations string
		want               []string
	}{
		{"two countries", "MIT, USA; Oxford, UK", []string{"USA", "UK"}},
		{"same country twice", "MIT, USA; Stanford, USA", []string{"USA"}},
		{"no comma uses whole affiliation", "CERN", []string{"CERN"}},
		{"blank", "", nil},
		{"only separators", " ; ; ", nil},
		{"trailing spaces trimmed", "Lab A, France ; Lab B,  Germany ", []string{"France", "Germany"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := Countries(tc.affiliations); !reflect.DeepEqual(got, tc.want) {
				t.Errorf("Countries(%q) = %v, want %v", tc.affiliations, got, tc.want)
			}
		})
	}
}

func TestInternational(t *testing.T) {
	t.Parallel()
	if !International("MIT, USA; Oxford, UK") {
		t.Error("two distinct countries should be international")
	}
	if International("MIT, USA; Stanford, USA") {
		t.Error("one country is not international")
	}
	if International("") {
		t.Error("blank affiliations are not international")
	}
}

func TestDiscover(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	for _, name := range []string{"chile_papers.csv", "peru_papers.csv", "notes.txt"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	t.Run("all batches sorted", func(t *testing.T) {
		t.Parallel()
		paths, err := Discover(dir, nil)
		if err != nil {
			t.Fatalf("Discover: %v", err)
		}
		want := []string{
			filepath.Join(dir, "chile_papers.csv"),
			filepath.Join(dir, "peru_papers.csv"),
		}
		if !reflect.DeepEqual(paths, want) {
			t.Errorf("paths = %v, want %v", paths, want)
		}
	})

	t.Run("explicit countries keep order", func(t *testing.T) {
		t.Parallel()
		paths, err := Discover(dir, []string{"peru", "chile"})
		if err != nil {
			t.Fatalf("Discover: %v", err)
		}
		want := []string{
			filepath.Join(dir, "peru_papers.csv"),
			filepath.Join(dir, "chile_papers.csv"),
		}
		if !reflect.DeepEqual(paths, want) {
			t.Errorf("paths = %v, want %v", paths, want)
		}
	})
}

func TestBatchName(t *testing.T) {
	t.Parallel()
	if got := BatchName("/data/papers/chile_papers.csv"); got != "chile" {
		t.Errorf("BatchName = %q, want chile", got)
	}
}
