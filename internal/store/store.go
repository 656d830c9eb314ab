// Package store persists scored records and batch reports to a local
// SQLite database so runs can be compared later without re-scoring.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite" // Pure-Go SQLite driver.

	"github.com/quillae/scimpact/internal/score"
)

// ErrNoRuns is returned when the database holds no completed runs yet.
var ErrNoRuns = errors.New("store: no runs recorded")

// schema contains the DDL executed on every open. IF NOT EXISTS makes it
// safe to run repeatedly.
const schema = `
CREATE TABLE IF NOT EXISTS runs (
    id           INTEGER PRIMARY KEY AUTOINCREMENT,
    started_at   TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
    catalog_path TEXT NOT NULL,
    profile      TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS reports (
    run_id       INTEGER NOT NULL REFERENCES runs(id),
    batch        TEXT NOT NULL,
    total_papers INTEGER NOT NULL,
    mean_score   REAL NOT NULL,
    collab_pct   REAL NOT NULL,
    report_json  TEXT NOT NULL,
    PRIMARY KEY (run_id, batch)
);

CREATE TABLE IF NOT EXISTS records (
    run_id          INTEGER NOT NULL REFERENCES runs(id),
    batch           TEXT NOT NULL,
    row             INTEGER NOT NULL,
    venue           TEXT NOT NULL,
    title           TEXT NOT NULL,
    doi             TEXT NOT NULL,
    year            INTEGER NOT NULL,
    citations       INTEGER NOT NULL,
    venue_impact    REAL NOT NULL,
    citation_impact REAL NOT NULL,
    recency         REAL NOT NULL,
    collaboration   REAL NOT NULL,
    total           REAL NOT NULL,
    normalized      REAL NOT NULL,
    tier            TEXT NOT NULL,
    PRIMARY KEY (run_id, batch, row)
);
`

// Store wraps a SQLite database in WAL mode.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the database at path, enables WAL mode and a
// busy timeout, and creates the schema idempotently.
func Open(ctx context.Context, path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("store: open database: %w", err)
	}

	// One connection: SQLite has a single writer, and a lone pooled
	// connection keeps PRAGMA state consistent.
	db.SetMaxOpenConns(1)

	for _, pragma := range []string{"PRAGMA journal_mode=WAL", "PRAGMA busy_timeout=5000"} {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("store: %s: %w", pragma, err)
		}
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: create schema: %w", err)
	}
	return &Store{db: db}, nil
}

// StartRun records a new analysis run and returns its id.
func (s *Store) StartRun(ctx context.Context, catalogPath, profile string) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		"INSERT INTO runs (started_at, catalog_path, profile) VALUES (?, ?, ?)",
		time.Now().UTC(), catalogPath, profile)
	if err != nil {
		return 0, fmt.Errorf("store: start run: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("store: run id: %w", err)
	}
	return id, nil
}

// SaveBatch persists one batch's scored records and report in a single
// transaction. Re-saving a batch within a run replaces it.
func (s *Store) SaveBatch(ctx context.Context, runID int64, report score.Report, scored []score.Scored) error {
	reportJSON, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("store: encode report %s: %w", report.Batch, err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("store: begin: %w", err)
	}
	defer tx.Rollback()

	const upsertReport = `
		INSERT INTO reports (run_id, batch, total_papers, mean_score, collab_pct, report_json)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(run_id, batch) DO UPDATE SET
			total_papers = excluded.total_papers,
			mean_score   = excluded.mean_score,
			collab_pct   = excluded.collab_pct,
			report_json  = excluded.report_json`
	if _, err := tx.ExecContext(ctx, upsertReport,
		runID, report.Batch, report.TotalPapers, report.MeanScore, report.CollabPct, string(reportJSON)); err != nil {
		return fmt.Errorf("store: save report %s: %w", report.Batch, err)
	}

	if _, err := tx.ExecContext(ctx,
		"DELETE FROM records WHERE run_id = ? AND batch = ?", runID, report.Batch); err != nil {
		return fmt.Errorf("store: clear records %s: %w", report.Batch, err)
	}

	const insertRecord = `
		INSERT INTO records (run_id, batch, row, venue, title, doi, year, citations,
			venue_impact, citation_impact, recency, collaboration, total, normalized, tier)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	stmt, err := tx.PrepareContext(ctx, insertRecord)
	if err != nil {
		return fmt.Errorf("store: prepare records: %w", err)
	}
	defer stmt.Close()

	for i := range scored {
		rec := &scored[i]
		if _, err := stmt.ExecContext(ctx,
			runID, report.Batch, i,
			rec.Paper.Venue, rec.Paper.Title, rec.Paper.DOI, rec.Paper.Year, rec.Paper.Citations,
			rec.VenueImpact, rec.CitationImpact, rec.Recency, rec.Collaboration,
			rec.Total, rec.Normalized, rec.Tier); err != nil {
			return fmt.Errorf("store: save record %s/%d: %w", report.Batch, i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("store: commit %s: %w", report.Batch, err)
	}
	return nil
}

// LatestComparison returns the comparison rows for the most recent run,
// in batch-name order.
func (s *Store) LatestComparison(ctx context.Context) ([]score.ComparisonRow, error) {
	var runID int64
	err := s.db.QueryRowContext(ctx, "SELECT id FROM runs ORDER BY id DESC LIMIT 1").Scan(&runID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNoRuns
	}
	if err != nil {
		return nil, fmt.Errorf("store: latest run: %w", err)
	}

	rows, err := s.db.QueryContext(ctx,
		"SELECT batch, total_papers, mean_score, collab_pct FROM reports WHERE run_id = ? ORDER BY batch", runID)
	if err != nil {
		return nil, fmt.Errorf("store: read reports: %w", err)
	}
	defer rows.Close()

	var out []score.ComparisonRow
	for rows.Next() {
		var r score.ComparisonRow
		if err := rows.Scan(&r.Name, &r.TotalPapers, &r.MeanScore, &r.CollabPct); err != nil {
			return nil, fmt.Errorf("store: scan report: %w", err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("store: iterate reports: %w", err)
	}
	return out, nil
}

// Report returns the full persisted report for a batch in the most recent
// run containing it.
func (s *Store) Report(ctx context.Context, batch string) (score.Report, error) {
	var raw string
	err := s.db.QueryRowContext(ctx,
		"SELECT report_json FROM reports WHERE batch = ? ORDER BY run_id DESC LIMIT 1", batch).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return score.Report{}, ErrNoRuns
	}
	if err != nil {
		return score.Report{}, fmt.Errorf("store: read report %s: %w", batch, err)
	}
	var r score.Report
	if err := json.Unmarshal([]byte(raw), &r); err != nil {
		return score.Report{}, fmt.Errorf("store: decode report %s: %w", batch, err)
	}
	return r, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("store: close: %w", err)
	}
	return nil
}
