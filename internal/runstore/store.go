// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package runstore persists the index of pipeline runs and their outcomes.
package runstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/ZJashi/math-conjecturer/pkg/types"
)

const dbFile = "runs.db"

// ErrNotFound reports a run id with no row in the index.
var ErrNotFound = errors.New("run not found")

// Run kinds.
const (
	KindProcess = "process"
	KindPropose = "propose"
)

// Run statuses.
const (
	StatusRunning = "running"
	StatusDone    = "done"
	StatusFailed  = "failed"
)

// Run is one recorded pipeline invocation.
type Run struct {
	ID         string     `json:"id"`
	PaperID    string     `json:"paper_id"`
	Kind       string     `json:"kind"`
	Status     string     `json:"status"`
	StartedAt  time.Time  `json:"started_at"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
	Error      string     `json:"error,omitempty"`
}

// ProposalRecord is the outcome of one developed proposal within a run.
type ProposalRecord struct {
	ProposalNum     int           `json:"proposal_num"`
	Direction       string        `json:"direction"`
	Iterations      int           `json:"iterations"`
	QualityScore    float64       `json:"quality_score"`
	QualityCategory types.Verdict `json:"quality_category"`
}

// Store manages the run index SQLite database.
type Store struct {
	db *sql.DB
}

// NewStore opens or creates the run index at dir/runs.db, creating the
// schema if it does not exist.
func NewStore(cfg types.StoreConfig) (*Store, error) {
	if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating store directory: %w", err)
	}

	dbPath := filepath.Join(cfg.Dir, dbFile)
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{db: db}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			paper_id TEXT NOT NULL,
			kind TEXT NOT NULL,
			status TEXT NOT NULL,
			started_at TEXT NOT NULL,
			finished_at TEXT,
			error TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_paper_id ON runs(paper_id)`,
		`CREATE TABLE IF NOT EXISTS proposals (
			run_id TEXT NOT NULL REFERENCES runs(id),
			proposal_num INTEGER NOT NULL,
			direction TEXT,
			iterations INTEGER,
			quality_score REAL,
			quality_category TEXT,
			PRIMARY KEY (run_id, proposal_num)
		)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// Create records the start of a run and returns it.
func (s *Store) Create(ctx context.Context, paperID, kind string) (Run, error) {
	run := Run{
		ID:        uuid.NewString(),
		PaperID:   paperID,
		Kind:      kind,
		Status:    StatusRunning,
		StartedAt: time.Now().UTC(),
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (id, paper_id, kind, status, started_at) VALUES (?, ?, ?, ?, ?)`,
		run.ID, run.PaperID, run.Kind, run.Status, run.StartedAt.Format(time.RFC3339Nano))
	if err != nil {
		return Run{}, fmt.Errorf("inserting run: %w", err)
	}
	return run, nil
}

// Finish marks a run done, or failed when runErr is non-nil.
func (s *Store) Finish(ctx context.Context, id string, runErr error) error {
	status := StatusDone
	errText := ""
	if runErr != nil {
		status = StatusFailed
		errText = runErr.Error()
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE runs SET status = ?, finished_at = ?, error = ? WHERE id = ?`,
		status, time.Now().UTC().Format(time.RFC3339Nano), errText, id)
	if err != nil {
		return fmt.Errorf("updating run %s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("run %s: %w", id, ErrNotFound)
	}
	return nil
}

// RecordProposal stores the outcome of one developed proposal.
func (s *Store) RecordProposal(ctx context.Context, runID string, p ProposalRecord) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO proposals
			(run_id, proposal_num, direction, iterations, quality_score, quality_category)
		VALUES (?, ?, ?, ?, ?, ?)`,
		runID, p.ProposalNum, p.Direction, p.Iterations, p.QualityScore, string(p.QualityCategory))
	if err != nil {
		return fmt.Errorf("inserting proposal %d for run %s: %w", p.ProposalNum, runID, err)
	}
	return nil
}

// Get returns one run by id.
func (s *Store) Get(ctx context.Context, id string) (Run, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, paper_id, kind, status, started_at, finished_at, error
		FROM runs WHERE id = ?`, id)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, fmt.Errorf("run %s: %w", id, ErrNotFound)
	}
	return run, err
}

// List returns all runs, most recent first.
func (s *Store) List(ctx context.Context) ([]Run, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, paper_id, kind, status, started_at, finished_at, error
		FROM runs ORDER BY started_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("querying runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// Proposals returns the recorded proposals for a run, in proposal order.
func (s *Store) Proposals(ctx context.Context, runID string) ([]ProposalRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT proposal_num, direction, iterations, quality_score, quality_category
		FROM proposals WHERE run_id = ? ORDER BY proposal_num`, runID)
	if err != nil {
		return nil, fmt.Errorf("querying proposals for run %s: %w", runID, err)
	}
	defer rows.Close()

	var out []ProposalRecord
	for rows.Next() {
		var p ProposalRecord
		var category string
		if err := rows.Scan(&p.ProposalNum, &p.Direction, &p.Iterations, &p.QualityScore, &category); err != nil {
			return nil, fmt.Errorf("scanning proposal: %w", err)
		}
		p.QualityCategory = types.Verdict(category)
		out = append(out, p)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (Run, error) {
	var run Run
	var started string
	var finished, errText sql.NullString
	if err := row.Scan(&run.ID, &run.PaperID, &run.Kind, &run.Status, &started, &finished, &errText); err != nil {
		return Run{}, err
	}

	t, err := time.Parse(time.RFC3339Nano, started)
	if err != nil {
		return Run{}, fmt.Errorf("parsing started_at %q: %w", started, err)
	}
	run.StartedAt = t

	if finished.Valid && finished.String != "" {
		ft, err := time.Parse(time.RFC3339Nano, finished.String)
		if err != nil {
			return Run{}, fmt.Errorf("parsing finished_at %q: %w", finished.String, err)
		}
		run.FinishedAt = &ft
	}
	run.Error = errText.String
	return run, nil
}
