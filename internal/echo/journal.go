// Package echo persists generated artifacts: a SQLite journal of every
// attempt and markdown echo files grouped by concept.
package echo

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"dreamgate/internal/dream"
)

// Journal records attempt outcomes in SQLite so concept revisit counts
// survive across sessions.
type Journal struct {
	db     *sql.DB
	mu     sync.Mutex
	dbPath string
}

// DreamRecord is one journal row.
type DreamRecord struct {
	ID        int64
	RunID     string
	AttemptID string
	Status    string
	Symbol    string
	Phrase    string
	Color     string
	Reasoning string
	Theme     string
	Concept   string
	Backend   string
	ErrorKind string
	ElapsedMS int64
	CreatedAt time.Time
}

// NewJournal opens (or creates) the journal database at the given path.
func NewJournal(path string) (*Journal, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create journal directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open journal: %w", err)
	}

	j := &Journal{db: db, dbPath: path}
	if err := j.initialize(); err != nil {
		db.Close()
		return nil, err
	}
	return j, nil
}

func (j *Journal) initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS dreams (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT NOT NULL,
		attempt_id TEXT NOT NULL,
		status TEXT NOT NULL,
		symbol TEXT,
		phrase TEXT,
		color TEXT,
		reasoning TEXT,
		theme TEXT,
		concept TEXT,
		backend TEXT,
		error_kind TEXT,
		elapsed_ms INTEGER DEFAULT 0,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);
	CREATE INDEX IF NOT EXISTS idx_dreams_run ON dreams(run_id);
	CREATE INDEX IF NOT EXISTS idx_dreams_concept ON dreams(concept);
	`
	if _, err := j.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create journal schema: %w", err)
	}
	return nil
}

// Close closes the underlying database.
func (j *Journal) Close() error {
	return j.db.Close()
}

// Record writes one attempt outcome under the given run id. Failed
// attempts are journaled too, with empty artifact columns.
func (j *Journal) Record(runID string, o dream.Outcome) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	var symbol, phrase, color, reasoning string
	if o.Artifact != nil {
		symbol = o.Artifact.Symbol
		phrase = o.Artifact.Phrase
		color = o.Artifact.Color
		reasoning = o.Artifact.Reasoning
	}

	_, err := j.db.Exec(`
		INSERT INTO dreams (run_id, attempt_id, status, symbol, phrase, color, reasoning, theme, concept, backend, error_kind, elapsed_ms)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		runID, o.ID, o.Status.String(), symbol, phrase, color, reasoning,
		o.Theme, o.Concept, o.Backend, o.ErrorKind.String(), o.Elapsed.Milliseconds())
	if err != nil {
		return fmt.Errorf("failed to record outcome: %w", err)
	}
	return nil
}

// ConceptRevisions returns how many times a concept has been journaled,
// which the writer uses for the "revisited N times" annotation.
func (j *Journal) ConceptRevisions(concept string) (int, error) {
	j.mu.Lock()
	defer j.mu.Unlock()

	var count int
	err := j.db.QueryRow(`SELECT COUNT(*) FROM dreams WHERE concept = ?`, concept).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count concept revisions: %w", err)
	}
	return count, nil
}

// Recent returns the most recent records, newest first.
func (j *Journal) Recent(limit int) ([]DreamRecord, error) {
	j.mu.Lock()
	defer j.mu.Unlock()

	rows, err := j.db.Query(`
		SELECT id, run_id, attempt_id, status, symbol, phrase, color, reasoning, theme, concept, backend, error_kind, elapsed_ms, created_at
		FROM dreams ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query journal: %w", err)
	}
	defer rows.Close()

	var records []DreamRecord
	for rows.Next() {
		var r DreamRecord
		if err := rows.Scan(&r.ID, &r.RunID, &r.AttemptID, &r.Status, &r.Symbol, &r.Phrase,
			&r.Color, &r.Reasoning, &r.Theme, &r.Concept, &r.Backend, &r.ErrorKind,
			&r.ElapsedMS, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan journal row: %w", err)
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

// ConceptCounts returns journaled concepts with their revisit counts,
// most revisited first.
func (j *Journal) ConceptCounts() (map[string]int, error) {
	j.mu.Lock()
	defer j.mu.Unlock()

	rows, err := j.db.Query(`SELECT concept, COUNT(*) FROM dreams WHERE concept != '' GROUP BY concept`)
	if err != nil {
		return nil, fmt.Errorf("failed to query concepts: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var concept string
		var n int
		if err := rows.Scan(&concept, &n); err != nil {
			return nil, fmt.Errorf("failed to scan concept row: %w", err)
		}
		counts[concept] = n
	}
	return counts, rows.Err()
}
