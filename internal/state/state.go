package state

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// CurrentSchemaVersion is the latest schema version.
// Bump this when adding migrations.
const CurrentSchemaVersion = 1

// Init initializes the SQLite state database at baseDir/stride.db.
// The baseDir parameter allows tests to use t.TempDir() instead of ~/.stride.
func Init(baseDir string) (*sql.DB, error) {
	if err := os.MkdirAll(baseDir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create base directory: %w", err)
	}
	_ = os.Chmod(baseDir, 0700)

	dbPath := filepath.Join(baseDir, "stride.db")
	dsn := dbPath + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := verifyWALMode(db); err != nil {
		db.Close()
		return nil, err
	}

	if err := migrate(db); err != nil {
		db.Close()
		return nil, err
	}

	_ = os.Chmod(dbPath, 0600)

	return db, nil
}

// migrate applies schema migrations based on user_version.
func migrate(db *sql.DB) error {
	version, err := GetUserVersion(db)
	if err != nil {
		return err
	}

	// Migration 0 -> 1: Initial schema
	if version < 1 {
		schema := `
		CREATE TABLE IF NOT EXISTS sync_state (
		  id             INTEGER PRIMARY KEY CHECK (id = 1),
		  last_synced_at TEXT NOT NULL
		);

		CREATE TABLE IF NOT EXISTS skipped_activities (
		  remote_id   TEXT PRIMARY KEY,
		  type_label  TEXT NOT NULL,
		  started_at  TEXT NOT NULL,
		  code        TEXT NOT NULL,
		  message     TEXT NOT NULL,
		  run_id      TEXT NOT NULL,
		  created_at  INTEGER NOT NULL,
		  resolved_at INTEGER
		);

		CREATE INDEX IF NOT EXISTS idx_skipped_unresolved
		ON skipped_activities(started_at)
		WHERE resolved_at IS NULL;

		CREATE TABLE IF NOT EXISTS runs (
		  id          TEXT PRIMARY KEY,
		  started_at  INTEGER NOT NULL,
		  finished_at INTEGER NOT NULL,
		  fetched     INTEGER NOT NULL,
		  created     INTEGER NOT NULL,
		  duplicates  INTEGER NOT NULL,
		  failed      INTEGER NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_runs_started
		ON runs(started_at DESC);
		`
		if _, err := db.Exec(schema); err != nil {
			return fmt.Errorf("migration 1 failed: %w", err)
		}
		if err := SetUserVersion(db, 1); err != nil {
			return err
		}
	}

	// Future migrations go here:
	// if version < 2 { ... }

	return nil
}

// verifyWALMode checks that WAL mode is active (set via connection string).
func verifyWALMode(db *sql.DB) error {
	var journalMode string
	if err := db.QueryRow("PRAGMA journal_mode;").Scan(&journalMode); err != nil {
		return fmt.Errorf("failed to verify journal mode: %w", err)
	}
	if journalMode != "wal" {
		return fmt.Errorf("expected WAL mode, got %s", journalMode)
	}
	return nil
}

// GetUserVersion returns the current schema version (user_version pragma).
func GetUserVersion(db *sql.DB) (int, error) {
	var version int
	if err := db.QueryRow("PRAGMA user_version;").Scan(&version); err != nil {
		return 0, fmt.Errorf("failed to get user_version: %w", err)
	}
	return version, nil
}

// SetUserVersion sets the schema version (user_version pragma).
func SetUserVersion(db *sql.DB, version int) error {
	_, err := db.Exec(fmt.Sprintf("PRAGMA user_version=%d", version))
	if err != nil {
		return fmt.Errorf("failed to set user_version: %w", err)
	}
	return nil
}
