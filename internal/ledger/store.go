package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"skiprice/internal/runctx"
	"skiprice/internal/safesave"
)

// DefaultListLimit bounds List when the caller passes a non-positive limit.
const DefaultListLimit = 50

// Entry is one recorded save outcome.
type Entry struct {
	ID         int64
	RunID      string
	Stage      string
	Path       string
	Format     string
	Status     safesave.Status
	Bytes      int64
	RecordedAt time.Time
}

// Store is the SQLite-backed save ledger.
type Store struct {
	db   *sql.DB
	path string
}

// Open creates or opens the ledger database at path and applies pending
// migrations. The parent directory is created when missing.
func Open(path string) (*Store, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("ledger path is empty")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("ensure ledger directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, err)
		}
	}

	store := &Store{db: db, path: path}
	if err := store.migrate(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Path returns the database file location.
func (s *Store) Path() string { return s.path }

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// RecordSave implements safesave.Recorder.
func (s *Store) RecordSave(ctx context.Context, result safesave.Result) error {
	stage, _ := runctx.StageFromContext(ctx)
	runID, _ := runctx.RunIDFromContext(ctx)
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO save_events (run_id, stage, path, format, status, bytes, recorded_at)
         VALUES (?, ?, ?, ?, ?, ?, ?)`,
		nullableString(runID),
		nullableString(stage),
		result.Path,
		string(result.Format),
		string(result.Status),
		result.Bytes,
		time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("insert save event: %w", err)
	}
	return nil
}

// List returns the most recent entries, newest first.
func (s *Store) List(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, run_id, stage, path, format, status, bytes, recorded_at
         FROM save_events ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list save events: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("scan save event: %w", err)
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate save events: %w", err)
	}
	return entries, nil
}

func scanEntry(scanner interface{ Scan(dest ...any) error }) (Entry, error) {
	var (
		entry       Entry
		runID       sql.NullString
		stage       sql.NullString
		status      string
		recordedRaw string
	)
	if err := scanner.Scan(&entry.ID, &runID, &stage, &entry.Path, &entry.Format, &status, &entry.Bytes, &recordedRaw); err != nil {
		return Entry{}, err
	}
	entry.RunID = runID.String
	entry.Stage = stage.String
	entry.Status = safesave.Status(status)
	if ts, err := time.Parse(time.RFC3339Nano, recordedRaw); err == nil {
		entry.RecordedAt = ts
	}
	return entry, nil
}

func nullableString(value string) any {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	return value
}
