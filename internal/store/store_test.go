package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/quillae/scimpact/internal/papers"
	"github.com/quillae/scimpact/internal/score"
)

// testStore creates a temporary SQLite store and registers cleanup.
func testStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.scimpact.db")
	s, err := Open(context.Background(), path)
	if err != nil {
		t.Fatalf("Open(%q): %v", path, err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func sampleReport(batch string) score.Report {
	return score.Report{
		Batch:       batch,
		TotalPapers: 2,
		MeanScore:   60,
		CollabPct:   50,
		TierCounts:  map[string]int{"High": 1, "Low": 1},
		Highest:     score.Extreme{Score: 100, Venue: "Nature", Title: "A", DOI: "10.1/a"},
		Lowest:      score.Extreme{Score: 20, Venue: "Minor", Title: "B", DOI: "10.1/b"},
		VenueCounts: map[string]int{"Nature": 1, "Minor": 1},
		YearCounts:  map[int]int{2024: 2},
		QuartileMix: map[string]int{"Q1": 1, "unranked": 1},
	}
}

func sampleScored() []score.Scored {
	return []score.Scored{
		{Paper: papers.Record{Venue: "Nature", Title: "A", DOI: "10.1/a", Year: 2024, Citations: 50},
			VenueImpact: 30, CitationImpact: 25, Recency: 15, Collaboration: 10,
			Total: 80, Normalized: 100, Tier: "Very High"},
		{Paper: papers.Record{Venue: "Minor", Title: "B", DOI: "10.1/b", Year: 2024, Citations: 1},
			Total: 16, Normalized: 20, Tier: "Low"},
	}
}

func TestOpen_CreatesSchema(t *testing.T) {
	t.Parallel()
	s := testStore(t)

	var mode string
	if err := s.db.QueryRow("PRAGMA journal_mode").Scan(&mode); err != nil {
		t.Fatalf("query journal_mode: %v", err)
	}
	if mode != "wal" {
		t.Errorf("journal_mode = %q, want wal", mode)
	}

	tables := map[string]bool{"runs": false, "reports": false, "records": false}
	rows, err := s.db.Query("SELECT name FROM sqlite_master WHERE type='table'")
	if err != nil {
		t.Fatalf("query sqlite_master: %v", err)
	}
	defer rows.Close()
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			t.Fatal(err)
		}
		if _, ok := tables[name]; ok {
			tables[name] = true
		}
	}
	for name, found := range tables {
		if !found {
			t.Errorf("table %q not created", name)
		}
	}
}

func TestOpen_Idempotent(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "reopen.db")
	ctx := context.Background()

	s1, err := Open(ctx, path)
	if err != nil {
		t.Fatalf("first Open: %v", err)
	}
	s1.Close()

	s2, err := Open(ctx, path)
	if err != nil {
		t.Fatalf("second Open: %v", err)
	}
	s2.Close()
}

func TestSaveBatch_Roundtrip(t *testing.T) {
	t.Parallel()
	s := testStore(t)
	ctx := context.Background()

	runID, err := s.StartRun(ctx, "data/scimago.csv", "")
	if err != nil {
		t.Fatalf("StartRun: %v", err)
	}
	if err := s.SaveBatch(ctx, runID, sampleReport("chile"), sampleScored()); err != nil {
		t.Fatalf("SaveBatch: %v", err)
	}

	got, err := s.Report(ctx, "chile")
	if err != nil {
		t.Fatalf("Report: %v", err)
	}
	if got.TotalPapers != 2 || got.MeanScore != 60 {
		t.Errorf("report = %+v", got)
	}
	if got.Highest.Venue != "Nature" {
		t.Errorf("Highest.Venue = %q, want Nature", got.Highest.Venue)
	}
	if got.TierCounts["High"] != 1 {
		t.Errorf("TierCounts = %v", got.TierCounts)
	}

	var n int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM records WHERE run_id = ?", runID).Scan(&n); err != nil {
		t.Fatal(err)
	}
	if n != 2 {
		t.Errorf("records = %d, want 2", n)
	}
}

func TestSaveBatch_ReplacesWithinRun(t *testing.T) {
	t.Parallel()
	s := testStore(t)
	ctx := context.Background()

	runID, err := s.StartRun(ctx, "cat.csv", "")
	if err != nil {
		t.Fatalf("StartRun: %v", err)
	}
	if err := s.SaveBatch(ctx, runID, sampleReport("chile"), sampleScored()); err != nil {
		t.Fatalf("first SaveBatch: %v", err)
	}

	updated := sampleReport("chile")
	updated.MeanScore = 75
	if err := s.SaveBatch(ctx, runID, updated, sampleScored()[:1]); err != nil {
		t.Fatalf("second SaveBatch: %v", err)
	}

	got, err := s.Report(ctx, "chile")
	if err != nil {
		t.Fatalf("Report: %v", err)
	}
	if got.MeanScore != 75 {
		t.Errorf("MeanScore = %v, want 75 (replaced)", got.MeanScore)
	}

	var n int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM records WHERE run_id = ?", runID).Scan(&n); err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Errorf("records = %d, want 1 after replace", n)
	}
}

func TestLatestComparison(t *testing.T) {
	t.Parallel()
	s := testStore(t)
	ctx := context.Background()

	// Older run that must not leak into the comparison.
	oldRun, err := s.StartRun(ctx, "cat.csv", "")
	if err != nil {
		t.Fatal(err)
	}
	stale := sampleReport("chile")
	stale.MeanScore = 1
	if err := s.SaveBatch(ctx, oldRun, stale, nil); err != nil {
		t.Fatal(err)
	}

	newRun, err := s.StartRun(ctx, "cat.csv", "profiles/percentile.toml")
	if err != nil {
		t.Fatal(err)
	}
	for _, batch := range []string{"peru", "chile"} {
		if err := s.SaveBatch(ctx, newRun, sampleReport(batch), nil); err != nil {
			t.Fatal(err)
		}
	}

	rows, err := s.LatestComparison(ctx)
	if err != nil {
		t.Fatalf("LatestComparison: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("rows = %d, want 2", len(rows))
	}
	// Batch-name order, and from the latest run only.
	if rows[0].Name != "chile" || rows[1].Name != "peru" {
		t.Errorf("order = %s, %s; want chile, peru", rows[0].Name, rows[1].Name)
	}
	if rows[0].MeanScore != 60 {
		t.Errorf("MeanScore = %v, want 60 from the latest run", rows[0].MeanScore)
	}
}

func TestLatestComparison_NoRuns(t *testing.T) {
	t.Parallel()
	s := testStore(t)

	_, err := s.LatestComparison(context.Background())
	if !errors.Is(err, ErrNoRuns) {
		t.Errorf("err = %v, want ErrNoRuns", err)
	}
}
