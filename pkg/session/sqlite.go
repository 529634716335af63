package session

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

const createSessions = `CREATE TABLE IF NOT EXISTS sessions (
    profile TEXT PRIMARY KEY,
    session_id TEXT NOT NULL,
    access_token TEXT NOT NULL,
    refresh_token TEXT NOT NULL,
    user_json TEXT,
    updated_at TEXT NOT NULL
);`

// SQLiteStore keeps sessions in a SQLite database file.
type SQLiteStore struct {
	db *sql.DB
}

var _ Store = (*SQLiteStore)(nil)

// OpenSQLite opens or creates the database at path and ensures the schema.
// Use ":memory:" for a throwaway database.
func OpenSQLite(ctx context.Context, path string) (*SQLiteStore, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("session: create data dir: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("session: open sqlite: %w", err)
	}
	// A single connection keeps ":memory:" databases shared.
	db.SetMaxOpenConns(1)
	if _, err := db.ExecContext(ctx, createSessions); err != nil {
		db.Close()
		return nil, fmt.Errorf("session: create schema: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Load(ctx context.Context, profile string) (Session, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT session_id, access_token, refresh_token, user_json, updated_at FROM sessions WHERE profile = ?`, profile)

	var (
		out       Session
		user      sql.NullString
		updatedAt string
	)
	if err := row.Scan(&out.ID, &out.AccessToken, &out.RefreshToken, &user, &updatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Session{}, ErrNotFound
		}
		return Session{}, fmt.Errorf("session: load %q: %w", profile, err)
	}
	if user.Valid && user.String != "" {
		out.User = []byte(user.String)
	}
	parsed, err := time.Parse(time.RFC3339Nano, updatedAt)
	if err != nil {
		return Session{}, fmt.Errorf("session: load %q: updated_at: %w", profile, err)
	}
	out.UpdatedAt = parsed
	return out, nil
}

func (s *SQLiteStore) Save(ctx context.Context, profile string, session Session) error {
	var user sql.NullString
	if len(session.User) > 0 {
		user = sql.NullString{String: string(session.User), Valid: true}
	}
	_, err := s.db.ExecContext(ctx, `INSERT INTO sessions (profile, session_id, access_token, refresh_token, user_json, updated_at)
VALUES (?, ?, ?, ?, ?, ?)
ON CONFLICT(profile) DO UPDATE SET
    session_id = excluded.session_id,
    access_token = excluded.access_token,
    refresh_token = excluded.refresh_token,
    user_json = excluded.user_json,
    updated_at = excluded.updated_at`,
		profile, session.ID, session.AccessToken, session.RefreshToken, user, session.UpdatedAt.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("session: save %q: %w", profile, err)
	}
	return nil
}

func (s *SQLiteStore) Delete(ctx context.Context, profile string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE profile = ?`, profile); err != nil {
		return fmt.Errorf("session: delete %q: %w", profile, err)
	}
	return nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
