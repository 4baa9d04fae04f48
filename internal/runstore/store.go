package runstore

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var schemaSQL string

// schemaVersion is the current schema version. Bump this when the schema
// changes; stale databases must be deleted and rebuilt.
const schemaVersion = 1

// ErrSchemaMismatch indicates the database schema version doesn't match
// the expected version.
var ErrSchemaMismatch = errors.New("schema version mismatch")

// Status is the render lifecycle state of one scene.
type Status string

const (
	StatusPending   Status = "pending"
	StatusRendering Status = "rendering"
	StatusDone      Status = "done"
	StatusFailed    Status = "failed"
	StatusSkipped   Status = "skipped"
)

// SceneRecord is one persisted scene row.
type SceneRecord struct {
	SceneID   int
	Status    Status
	Effect    string
	Detail    string
	Output    string
	UpdatedAt time.Time
}

// Store persists per-scene render state in SQLite so interrupted runs
// can be inspected and resumed.
type Store struct {
	db   *sql.DB
	path string
}

// Open initializes or connects to the run database inside dir.
func Open(dir string) (*Store, error) {
	dbPath := filepath.Join(dir, "run.db")
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

	store := &Store{db: db, path: dbPath}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the database file location.
func (s *Store) Path() string {
	return s.path
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
	err = s.db.QueryRowContext(ctx, "SELECT version FROM schema_version LIMIT 1").Scan(&version)
	if err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	if version != schemaVersion {
		return fmt.Errorf("%w: database has version %d, expected %d (delete %s to rebuild)",
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

func now() string {
	return time.Now().UTC().Format(time.RFC3339Nano)
}

// InitScenes resets the run table to a pending row per scene id. Rows for
// scenes no longer in the document are removed.
func (s *Store) InitScenes(ctx context.Context, ids []int) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin init tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, "DELETE FROM scene_runs"); err != nil {
		return fmt.Errorf("clear scene runs: %w", err)
	}
	stamp := now()
	for _, id := range ids {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO scene_runs (scene_id, status, updated_at) VALUES (?, ?, ?)",
			id, StatusPending, stamp,
		); err != nil {
			return fmt.Errorf("insert scene %d: %w", id, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit init: %w", err)
	}
	return nil
}

func (s *Store) upsert(ctx context.Context, sceneID int, status Status, effect string, detail string, output string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO scene_runs (scene_id, status, effect, detail, output, updated_at)
         VALUES (?, ?, ?, ?, ?, ?)
         ON CONFLICT(scene_id) DO UPDATE SET
             status = excluded.status,
             effect = excluded.effect,
             detail = excluded.detail,
             output = excluded.output,
             updated_at = excluded.updated_at`,
		sceneID, status, effect, detail, output, now(),
	)
	if err != nil {
		return fmt.Errorf("update scene %d to %s: %w", sceneID, status, err)
	}
	return nil
}

// SceneRendering marks a scene as in flight.
func (s *Store) SceneRendering(ctx context.Context, sceneID int) error {
	return s.upsert(ctx, sceneID, StatusRendering, "", "", "")
}

// SceneDone records a completed clip and the effect that produced it.
func (s *Store) SceneDone(ctx context.Context, sceneID int, effect string, output string) error {
	return s.upsert(ctx, sceneID, StatusDone, effect, "", output)
}

// SceneFailed records a scene whose fallback attempt also failed.
func (s *Store) SceneFailed(ctx context.Context, sceneID int, effect string, cause string) error {
	return s.upsert(ctx, sceneID, StatusFailed, effect, cause, "")
}

// SceneSkipped records a scene left out for a missing precondition.
func (s *Store) SceneSkipped(ctx context.Context, sceneID int, reason string) error {
	return s.upsert(ctx, sceneID, StatusSkipped, "", reason, "")
}

// Records returns every scene row ordered by scene id.
func (s *Store) Records(ctx context.Context) ([]SceneRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT scene_id, status, effect, detail, output, updated_at FROM scene_runs ORDER BY scene_id",
	)
	if err != nil {
		return nil, fmt.Errorf("query scene runs: %w", err)
	}
	defer rows.Close()

	var records []SceneRecord
	for rows.Next() {
		var rec SceneRecord
		var status, updated string
		if err := rows.Scan(&rec.SceneID, &status, &rec.Effect, &rec.Detail, &rec.Output, &updated); err != nil {
			return nil, fmt.Errorf("scan scene run: %w", err)
		}
		rec.Status = Status(status)
		if parsed, parseErr := time.Parse(time.RFC3339Nano, updated); parseErr == nil {
			rec.UpdatedAt = parsed
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate scene runs: %w", err)
	}
	return records, nil
}

// Counts aggregates scene rows by status for the status view.
func (s *Store) Counts(ctx context.Context) (map[Status]int, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT status, COUNT(1) FROM scene_runs GROUP BY status",
	)
	if err != nil {
		return nil, fmt.Errorf("count scene runs: %w", err)
	}
	defer rows.Close()

	counts := make(map[Status]int)
	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, fmt.Errorf("scan count: %w", err)
		}
		counts[Status(status)] = n
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate counts: %w", err)
	}
	return counts, nil
}
