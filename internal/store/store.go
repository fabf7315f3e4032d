// Package store persists refinement sessions in a SQLite database so a
// session opened by one CLI invocation can be continued or exported by a
// later one.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"archscope/internal/errors"
	"archscope/internal/logging"
	"archscope/internal/ontology"
	"archscope/internal/session"
)

const currentSchemaVersion = 1

// Store is a SQLite-backed session store
type Store struct {
	db     *sql.DB
	logger *logging.Logger
	dbPath string
}

// Summary is the listing row for one stored session
type Summary struct {
	ID        string    `json:"id"`
	Request   string    `json:"request"`
	State     string    `json:"state"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Open opens or creates the session database at dbPath, creating parent
// directories as needed.
func Open(dbPath string, logger *logging.Logger) (*Store, error) {
	if logger == nil {
		logger = logging.NewNopLogger()
	}

	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, errors.New(errors.StoreUnavailable, "failed to create store directory", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, errors.New(errors.StoreUnavailable, "failed to open session database", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA foreign_keys=ON",
		"PRAGMA busy_timeout=5000",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, errors.New(errors.StoreUnavailable, "failed to set pragma", err)
		}
	}

	s := &Store{db: db, logger: logger.WithComponent("store"), dbPath: dbPath}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, errors.New(errors.StoreUnavailable, "failed to initialize schema", err)
	}
	return s, nil
}

// Close closes the database connection
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func (s *Store) initSchema() error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`
		CREATE TABLE IF NOT EXISTS schema_version (
			version INTEGER PRIMARY KEY,
			applied_at TEXT NOT NULL DEFAULT (datetime('now'))
		)
	`); err != nil {
		return fmt.Errorf("failed to create schema_version table: %w", err)
	}

	if _, err := tx.Exec(`
		CREATE TABLE IF NOT EXISTS sessions (
			id TEXT PRIMARY KEY,
			request TEXT NOT NULL,
			state TEXT NOT NULL,
			payload TEXT NOT NULL,
			created_at TEXT NOT NULL DEFAULT (datetime('now')),
			updated_at TEXT NOT NULL DEFAULT (datetime('now'))
		)
	`); err != nil {
		return fmt.Errorf("failed to create sessions table: %w", err)
	}

	if _, err := tx.Exec(
		"INSERT OR IGNORE INTO schema_version (version) VALUES (?)", currentSchemaVersion,
	); err != nil {
		return fmt.Errorf("failed to record schema version: %w", err)
	}

	return tx.Commit()
}

// Save upserts the session's current state.
func (s *Store) Save(ctx context.Context, sess *session.Session) error {
	m := sess.Memento()
	payload, err := json.Marshal(m)
	if err != nil {
		return errors.New(errors.InternalError, "failed to serialize session", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO sessions (id, request, state, payload, updated_at)
		VALUES (?, ?, ?, ?, datetime('now'))
		ON CONFLICT(id) DO UPDATE SET
			state = excluded.state,
			payload = excluded.payload,
			updated_at = excluded.updated_at
	`, m.ID, m.Request, string(m.State), string(payload))
	if err != nil {
		return errors.New(errors.StoreUnavailable, "failed to save session", err)
	}

	s.logger.Debug("session saved", map[string]interface{}{
		"sessionId": m.ID,
		"state":     string(m.State),
	})
	return nil
}

// Load restores a stored session against the given workspace catalog.
func (s *Store) Load(ctx context.Context, id string, catalog *ontology.Catalog) (*session.Session, error) {
	var payload string
	err := s.db.QueryRowContext(ctx, "SELECT payload FROM sessions WHERE id = ?", id).Scan(&payload)
	if err == sql.ErrNoRows {
		return nil, errors.New(errors.SessionNotFound, fmt.Sprintf("no stored session %q", id), nil)
	}
	if err != nil {
		return nil, errors.New(errors.StoreUnavailable, "failed to load session", err)
	}

	var m session.Memento
	if err := json.Unmarshal([]byte(payload), &m); err != nil {
		return nil, errors.New(errors.InternalError, "failed to deserialize session", err)
	}
	return session.Restore(m, catalog, s.logger)
}

// List returns stored sessions, most recently updated first.
func (s *Store) List(ctx context.Context, limit int) ([]Summary, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, request, state, updated_at
		FROM sessions
		ORDER BY updated_at DESC, id
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, errors.New(errors.StoreUnavailable, "failed to list sessions", err)
	}
	defer rows.Close()

	var out []Summary
	for rows.Next() {
		var sum Summary
		var updated string
		if err := rows.Scan(&sum.ID, &sum.Request, &sum.State, &updated); err != nil {
			return nil, errors.New(errors.StoreUnavailable, "failed to scan session row", err)
		}
		if t, perr := time.Parse("2006-01-02 15:04:05", updated); perr == nil {
			sum.UpdatedAt = t
		}
		out = append(out, sum)
	}
	return out, rows.Err()
}

// Delete removes a stored session.
func (s *Store) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM sessions WHERE id = ?", id)
	if err != nil {
		return errors.New(errors.StoreUnavailable, "failed to delete session", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return errors.New(errors.SessionNotFound, fmt.Sprintf("no stored session %q", id), nil)
	}
	return nil
}
