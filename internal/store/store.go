// Package store persists the table registry and seen nicknames in SQLite.
// The live game state never touches the database; only the registry does.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

const schema = `
CREATE TABLE IF NOT EXISTS tables (
	id         TEXT PRIMARY KEY,
	game       TEXT NOT NULL,
	name       TEXT NOT NULL,
	created_at TIMESTAMP NOT NULL
);
CREATE TABLE IF NOT EXISTS nicknames (
	nickname  TEXT PRIMARY KEY,
	last_seen TIMESTAMP NOT NULL
);
`

// TableRow is one registered table.
type TableRow struct {
	ID        string
	Game      string
	Name      string
	CreatedAt time.Time
}

// Store wraps the SQLite handle.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the database at path and applies the
// schema.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path+"?_busy_timeout=5000&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close releases the database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// CreateTable registers a table. A duplicate id is an error.
func (s *Store) CreateTable(ctx context.Context, id, game, name string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO tables (id, game, name, created_at) VALUES (?, ?, ?, ?)`,
		id, game, name, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to create table %s: %w", id, err)
	}
	return nil
}

// ListTables returns every registered table, oldest first.
func (s *Store) ListTables(ctx context.Context) ([]TableRow, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, game, name, created_at FROM tables ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list tables: %w", err)
	}
	defer rows.Close()

	var out []TableRow
	for rows.Next() {
		var r TableRow
		if err := rows.Scan(&r.ID, &r.Game, &r.Name, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan table row: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// GetTable returns one registered table by id.
func (s *Store) GetTable(ctx context.Context, id string) (TableRow, error) {
	var r TableRow
	err := s.db.QueryRowContext(ctx,
		`SELECT id, game, name, created_at FROM tables WHERE id = ?`, id).
		Scan(&r.ID, &r.Game, &r.Name, &r.CreatedAt)
	if err != nil {
		return TableRow{}, fmt.Errorf("failed to get table %s: %w", id, err)
	}
	return r, nil
}

// RecordNickname upserts a nickname with the current timestamp.
func (s *Store) RecordNickname(ctx context.Context, nick string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO nicknames (nickname, last_seen) VALUES (?, ?)
		 ON CONFLICT(nickname) DO UPDATE SET last_seen = excluded.last_seen`,
		nick, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to record nickname: %w", err)
	}
	return nil
}
