// Package journal persists committed transitions and small user preferences
// in SQLite.
//
// The journal answers "what did the engine do and when" after the fact; the
// engine itself never reads it. Schema changes bump schemaVersion; stale
// databases are rejected rather than migrated, the journal is a log, not a
// source of truth.
package journal

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"longtake/internal/config"
	"longtake/internal/section"
)

//go:embed schema.sql
var schemaSQL string

const schemaVersion = 1

// ErrSchemaMismatch indicates the database was written by a different
// journal version.
var ErrSchemaMismatch = errors.New("schema version mismatch")

const mutedKey = "muted"

// Entry is one committed transition.
type Entry struct {
	ID          int64           `json:"id"`
	AttemptID   string          `json:"attempt_id"`
	From        section.Section `json:"from"`
	To          section.Section `json:"to"`
	Clip        section.Clip    `json:"clip"`
	Trigger     string          `json:"trigger"`
	LoopWait    time.Duration   `json:"loop_wait"`
	Bridge      time.Duration   `json:"bridge"`
	Fallback    bool            `json:"fallback"`
	Reason      string          `json:"reason,omitempty"`
	CommittedAt time.Time       `json:"committed_at"`
}

// Store manages journal persistence backed by SQLite.
type Store struct {
	db     *sql.DB
	path   string
	retain int
}

// Open initializes or connects to the journal database.
func Open(cfg *config.Config) (*Store, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}

	dbPath := filepath.Join(cfg.Paths.StateDir, "journal.db")
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: dbPath, retain: cfg.Journal.Retain}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Path returns the database file location.
func (s *Store) Path() string {
	return s.path
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) initSchema(ctx context.Context) error {
	var tableExists int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(1) FROM sqlite_master WHERE type='table' AND name='schema_version'",
	).Scan(&tableExists)
	if err != nil {
		return fmt.Errorf("check schema_version table: %w", err)
	}

	if tableExists == 0 {
		return s.createSchema(ctx)
	}

	var version int
	if err := s.db.QueryRowContext(ctx, "SELECT version FROM schema_version LIMIT 1").Scan(&version); err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	if version != schemaVersion {
		return fmt.Errorf("%w: database has version %d, expected %d (delete %s to recreate)",
			ErrSchemaMismatch, version, schemaVersion, s.path)
	}
	return nil
}

func (s *Store) createSchema(ctx context.Context) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "INSERT INTO schema_version (version) VALUES (?)", schemaVersion); err != nil {
		return fmt.Errorf("record schema version: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema: %w", err)
	}
	return nil
}

// Append stores one entry and prunes rows beyond the retain cap.
func (s *Store) Append(ctx context.Context, entry Entry) error {
	_, err := s.db.ExecContext(
		ctx,
		`INSERT INTO transitions (
            attempt_id, from_section, to_section, clip, trigger_kind,
            loop_wait_ms, bridge_ms, fallback, reason, committed_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.AttemptID,
		string(entry.From),
		string(entry.To),
		string(entry.Clip),
		entry.Trigger,
		entry.LoopWait.Milliseconds(),
		entry.Bridge.Milliseconds(),
		boolToInt(entry.Fallback),
		nullableString(entry.Reason),
		entry.CommittedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("insert transition: %w", err)
	}
	return s.prune(ctx)
}

func (s *Store) prune(ctx context.Context) error {
	if s.retain <= 0 {
		return nil
	}
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM transitions WHERE id NOT IN (
            SELECT id FROM transitions ORDER BY id DESC LIMIT ?
        )`, s.retain)
	if err != nil {
		return fmt.Errorf("prune transitions: %w", err)
	}
	return nil
}

// Recent returns the newest entries, most recent first. A non-positive limit
// defaults to 50.
func (s *Store) Recent(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, attempt_id, from_section, to_section, clip, trigger_kind,
            loop_wait_ms, bridge_ms, fallback, reason, committed_at
        FROM transitions ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query transitions: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transitions: %w", err)
	}
	return entries, nil
}

// Count returns the number of stored entries.
func (s *Store) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(1) FROM transitions").Scan(&count); err != nil {
		return 0, fmt.Errorf("count transitions: %w", err)
	}
	return count, nil
}

// SetMuted persists the sound preference.
func (s *Store) SetMuted(ctx context.Context, muted bool) error {
	value := "0"
	if muted {
		value = "1"
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO settings (key, value) VALUES (?, ?)
        ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		mutedKey, value)
	if err != nil {
		return fmt.Errorf("set muted: %w", err)
	}
	return nil
}

// Muted reads the sound preference; missing means unmuted.
func (s *Store) Muted(ctx context.Context) (bool, error) {
	var value string
	err := s.db.QueryRowContext(ctx, "SELECT value FROM settings WHERE key = ?", mutedKey).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("read muted: %w", err)
	}
	return value == "1", nil
}

func scanEntry(rows *sql.Rows) (Entry, error) {
	var (
		entry       Entry
		from, to    string
		clip        string
		loopWaitMS  int64
		bridgeMS    int64
		fallback    int
		reason      sql.NullString
		committedAt string
	)
	err := rows.Scan(&entry.ID, &entry.AttemptID, &from, &to, &clip, &entry.Trigger,
		&loopWaitMS, &bridgeMS, &fallback, &reason, &committedAt)
	if err != nil {
		return Entry{}, fmt.Errorf("scan transition: %w", err)
	}
	entry.From = section.Section(from)
	entry.To = section.Section(to)
	entry.Clip = section.Clip(clip)
	entry.LoopWait = time.Duration(loopWaitMS) * time.Millisecond
	entry.Bridge = time.Duration(bridgeMS) * time.Millisecond
	entry.Fallback = fallback != 0
	entry.Reason = reason.String
	if ts, parseErr := time.Parse(time.RFC3339Nano, committedAt); parseErr == nil {
		entry.CommittedAt = ts
	}
	return entry, nil
}

func boolToInt(v bool) int {
	if v {
		return 1
	}
	return 0
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}
