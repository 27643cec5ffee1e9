// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package ledger records processing history in a SQLite database: one row
// per document, one row per extraction run, and the per-section provenance
// of each run. The ledger is append-oriented; reprocessing a document adds
// a run rather than overwriting the old one.
package ledger

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/paperminer/pkg/types"
)

const defaultDBPath = "output/paperminer.db"

// Store manages the processing ledger database.
type Store struct {
	db *sql.DB
}

// NewStore opens or creates the ledger database at cfg.Path. The schema is
// created if absent.
func NewStore(cfg types.LedgerConfig) (*Store, error) {
	dbPath := cfg.Path
	if dbPath == "" {
		dbPath = defaultDBPath
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("creating ledger directory: %w", err)
	}

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
		`CREATE TABLE IF NOT EXISTS documents (
			id TEXT PRIMARY KEY,
			pdf_path TEXT,
			page_count INTEGER,
			status TEXT,
			updated_at TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS runs (
			rowid INTEGER PRIMARY KEY AUTOINCREMENT,
			document_id TEXT NOT NULL REFERENCES documents(id),
			run_at TEXT NOT NULL,
			defects TEXT,
			repair_attempted INTEGER NOT NULL DEFAULT 0,
			repair_succeeded INTEGER NOT NULL DEFAULT 0,
			prompt_truncated INTEGER NOT NULL DEFAULT 0
		)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_document_id ON runs(document_id)`,
		`CREATE TABLE IF NOT EXISTS run_sections (
			run_id INTEGER NOT NULL REFERENCES runs(rowid),
			name TEXT NOT NULL,
			source TEXT NOT NULL,
			chars INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_run_sections_run_id ON run_sections(run_id)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// Record persists one extraction run for a document: the document's current
// status, the run's diagnostics, and per-section provenance.
func (s *Store) Record(ctx context.Context, doc types.Document, diag types.Diagnostics, m types.SectionMap) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().UTC().Format(time.RFC3339)

	_, err = tx.ExecContext(ctx,
		`INSERT INTO documents (id, pdf_path, page_count, status, updated_at)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
			pdf_path=excluded.pdf_path, page_count=excluded.page_count,
			status=excluded.status, updated_at=excluded.updated_at`,
		doc.ID, doc.PDFPath, doc.PageCount, string(doc.Status), now,
	)
	if err != nil {
		return fmt.Errorf("upserting document: %w", err)
	}

	defectsJSON, _ := json.Marshal(diag.Defects)
	res, err := tx.ExecContext(ctx,
		`INSERT INTO runs (document_id, run_at, defects, repair_attempted, repair_succeeded, prompt_truncated)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		doc.ID, now, string(defectsJSON),
		boolInt(diag.RepairAttempted), boolInt(diag.RepairSucceeded), boolInt(diag.PromptTruncated),
	)
	if err != nil {
		return fmt.Errorf("inserting run: %w", err)
	}
	runID, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("reading run id: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO run_sections (run_id, name, source, chars) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing section insert: %w", err)
	}
	defer stmt.Close()

	for _, canon := range types.CanonicalOrder() {
		sec, ok := m[canon]
		if !ok {
			continue
		}
		if _, err := stmt.ExecContext(ctx, runID, string(canon), string(sec.Source), sec.Chars()); err != nil {
			return fmt.Errorf("inserting section %s: %w", canon, err)
		}
	}

	return tx.Commit()
}

// SectionRecord is one section of a recorded run.
type SectionRecord struct {
	Name   string
	Source string
	Chars  int
}

// RunRecord is one extraction run as read back from the ledger.
type RunRecord struct {
	DocumentID      string
	PDFPath         string
	Status          string
	RunAt           string
	Defects         []types.Defect
	RepairAttempted bool
	RepairSucceeded bool
	PromptTruncated bool
	Sections        []SectionRecord
}

// History returns the most recent runs, newest first. A limit of 0 or
// less defaults to 20.
func (s *Store) History(ctx context.Context, limit int) ([]RunRecord, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT r.rowid, r.document_id, d.pdf_path, d.status, r.run_at,
			r.defects, r.repair_attempted, r.repair_succeeded, r.prompt_truncated
		 FROM runs r JOIN documents d ON d.id = r.document_id
		 ORDER BY r.rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying runs: %w", err)
	}
	defer rows.Close()

	var records []RunRecord
	var ids []int64
	for rows.Next() {
		var id int64
		var rec RunRecord
		var defectsJSON string
		var attempted, succeeded, truncated int
		if err := rows.Scan(&id, &rec.DocumentID, &rec.PDFPath, &rec.Status, &rec.RunAt,
			&defectsJSON, &attempted, &succeeded, &truncated); err != nil {
			return nil, fmt.Errorf("scanning run: %w", err)
		}
		if defectsJSON != "" {
			if err := json.Unmarshal([]byte(defectsJSON), &rec.Defects); err != nil {
				return nil, fmt.Errorf("decoding defects for %s: %w", rec.DocumentID, err)
			}
		}
		rec.RepairAttempted = attempted != 0
		rec.RepairSucceeded = succeeded != 0
		rec.PromptTruncated = truncated != 0
		records = append(records, rec)
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating runs: %w", err)
	}

	for i, id := range ids {
		sections, err := s.runSections(ctx, id)
		if err != nil {
			return nil, err
		}
		records[i].Sections = sections
	}
	return records, nil
}

func (s *Store) runSections(ctx context.Context, runID int64) ([]SectionRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT name, source, chars FROM run_sections WHERE run_id = ?`, runID)
	if err != nil {
		return nil, fmt.Errorf("querying run sections: %w", err)
	}
	defer rows.Close()

	var sections []SectionRecord
	for rows.Next() {
		var sec SectionRecord
		if err := rows.Scan(&sec.Name, &sec.Source, &sec.Chars); err != nil {
			return nil, fmt.Errorf("scanning section: %w", err)
		}
		sections = append(sections, sec)
	}
	return sections, rows.Err()
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
