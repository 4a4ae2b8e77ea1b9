// Package localstore keeps reminder documents, the history ledger and user
// settings in a single SQLite file on the device.
package localstore

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"github.com/hray3182/DoseLine/internal/storage"
	_ "modernc.org/sqlite"
)

const currentVersion = 2

type Store struct {
	db   *sql.DB
	path string
}

var _ storage.Store = (*Store)(nil)

// New opens (or creates) the SQLite database at dbPath and runs migrations.
func New(dbPath string) (*Store, error) {
	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
			return nil, fmt.Errorf("create db directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys=ON",
		"PRAGMA busy_timeout=5000",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("exec pragma %q: %w", p, err)
		}
	}

	s := &Store{db: db, path: dbPath}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

// NewMemory creates an in-memory store for testing.
func NewMemory() (*Store, error) {
	return New(":memory:")
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Path is the database file, or ":memory:".
func (s *Store) Path() string {
	return s.path
}

func (s *Store) migrate() error {
	var version int
	err := s.db.QueryRow("PRAGMA user_version").Scan(&version)
	if err != nil {
		return fmt.Errorf("read user_version: %w", err)
	}

	if version >= currentVersion {
		return nil
	}

	if version < 1 {
		if err := s.migrateV1(); err != nil {
			return err
		}
	}
	if version < 2 {
		if err := s.migrateV2(); err != nil {
			return err
		}
	}

	_, err = s.db.Exec(fmt.Sprintf("PRAGMA user_version = %d", currentVersion))
	return err
}

func (s *Store) migrateV1() error {
	const ddl = `
	CREATE TABLE IF NOT EXISTS reminders (
		user_id     INTEGER NOT NULL,
		id          TEXT NOT NULL,
		doc         TEXT NOT NULL,
		updated_at  TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%SZ','now')),
		PRIMARY KEY (user_id, id)
	);

	CREATE TABLE IF NOT EXISTS history (
		id           TEXT PRIMARY KEY,
		user_id      INTEGER NOT NULL,
		reminder_id  TEXT NOT NULL,
		title        TEXT NOT NULL DEFAULT '',
		type         TEXT NOT NULL DEFAULT '',
		status       TEXT NOT NULL,
		date         TEXT NOT NULL,
		timestamp    TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_history_user_date ON history(user_id, date);

	CREATE TABLE IF NOT EXISTS settings (
		user_id      INTEGER PRIMARY KEY,
		timezone     TEXT NOT NULL DEFAULT 'Local',
		sleep_start  TEXT NOT NULL DEFAULT '22:00',
		sleep_end    TEXT NOT NULL DEFAULT '08:00',
		updated_at   TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%SZ','now'))
	);
	`
	_, err := s.db.Exec(ddl)
	return err
}

// migrateV2 records which occurrence a ledger entry completed.
func (s *Store) migrateV2() error {
	_, err := s.db.Exec(`ALTER TABLE history ADD COLUMN instance_key TEXT NOT NULL DEFAULT ''`)
	return err
}

// DefaultDBPath returns ~/.doseline/doseline.db
func DefaultDBPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".doseline", "doseline.db"), nil
}
