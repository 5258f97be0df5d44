package state

import (
	"database/sql"
	"time"

	"github.com/jtammen/stride/internal/errors"
)

// Skipped is one activity the driver could not process, kept so it can be
// retried after a taxonomy fix instead of being lost behind the cursor.
type Skipped struct {
	RemoteID   string
	TypeLabel  string
	StartedAt  time.Time
	Code       string
	Message    string
	RunID      string
	CreatedAt  int64
	ResolvedAt *int64
}

// Run is the persisted record of one reconciliation traversal.
type Run struct {
	ID         string
	StartedAt  int64
	FinishedAt int64
	Fetched    int
	Created    int
	Duplicates int
	Failed     int
}

// Cursor returns the persisted last-synced watermark. ok is false when no
// run has ever completed. The cursor only narrows fetch windows; the vault
// scan is the source of truth for dedup.
func Cursor(db *sql.DB) (time.Time, bool, error) {
	var raw string
	err := db.QueryRow("SELECT last_synced_at FROM sync_state WHERE id = 1").Scan(&raw)
	if err == sql.ErrNoRows {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, errors.NewInternal(err)
	}

	ts, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		// Unreadable cursor is treated as absent: the next run fetches a
		// superset and the vault scan filters it back down.
		return time.Time{}, false, nil
	}
	return ts, true, nil
}

// SaveCursor persists the last-synced watermark. Called exactly once per
// successful run, after the whole traversal completed.
func SaveCursor(db *sql.DB, ts time.Time) error {
	_, err := db.Exec(`
		INSERT INTO sync_state (id, last_synced_at) VALUES (1, ?)
		ON CONFLICT(id) DO UPDATE SET last_synced_at = excluded.last_synced_at
	`, ts.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return errors.NewInternal(err)
	}
	return nil
}

// RecordSkipped upserts a failed candidate into the skipped ledger and
// marks it unresolved again if it was previously resolved.
func RecordSkipped(db *sql.DB, s Skipped) error {
	_, err := db.Exec(`
		INSERT INTO skipped_activities
			(remote_id, type_label, started_at, code, message, run_id, created_at, resolved_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, NULL)
		ON CONFLICT(remote_id) DO UPDATE SET
			type_label = excluded.type_label,
			code = excluded.code,
			message = excluded.message,
			run_id = excluded.run_id,
			resolved_at = NULL
	`, s.RemoteID, s.TypeLabel, s.StartedAt.UTC().Format(time.RFC3339Nano),
		s.Code, s.Message, s.RunID, s.CreatedAt)
	if err != nil {
		return errors.NewInternal(err)
	}
	return nil
}

// ListUnresolvedSkipped returns every skipped activity awaiting a retry,
// oldest first.
func ListUnresolvedSkipped(db *sql.DB) ([]Skipped, error) {
	rows, err := db.Query(`
		SELECT remote_id, type_label, started_at, code, message, run_id, created_at, resolved_at
		FROM skipped_activities
		WHERE resolved_at IS NULL
		ORDER BY started_at ASC
	`)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	defer rows.Close()

	var result []Skipped
	for rows.Next() {
		var s Skipped
		var startedAt string
		var resolvedAt sql.NullInt64
		if err := rows.Scan(&s.RemoteID, &s.TypeLabel, &startedAt, &s.Code,
			&s.Message, &s.RunID, &s.CreatedAt, &resolvedAt); err != nil {
			return nil, errors.NewInternal(err)
		}
		if ts, err := time.Parse(time.RFC3339Nano, startedAt); err == nil {
			s.StartedAt = ts
		}
		if resolvedAt.Valid {
			s.ResolvedAt = &resolvedAt.Int64
		}
		result = append(result, s)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewInternal(err)
	}
	return result, nil
}

// ResolveSkipped marks a skipped activity as successfully re-synced.
func ResolveSkipped(db *sql.DB, remoteID string, when int64) error {
	res, err := db.Exec(`
		UPDATE skipped_activities SET resolved_at = ? WHERE remote_id = ? AND resolved_at IS NULL
	`, when, remoteID)
	if err != nil {
		return errors.NewInternal(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return errors.NewInternal(err)
	}
	if n == 0 {
		return errors.NewNotFound(remoteID)
	}
	return nil
}

// InsertRun records a completed reconciliation run.
func InsertRun(db *sql.DB, r Run) error {
	_, err := db.Exec(`
		INSERT INTO runs (id, started_at, finished_at, fetched, created, duplicates, failed)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, r.ID, r.StartedAt, r.FinishedAt, r.Fetched, r.Created, r.Duplicates, r.Failed)
	if err != nil {
		return errors.NewInternal(err)
	}
	return nil
}

// LatestRun returns the most recent run record. ok is false when no run
// has been recorded yet.
func LatestRun(db *sql.DB) (*Run, bool, error) {
	var r Run
	err := db.QueryRow(`
		SELECT id, started_at, finished_at, fetched, created, duplicates, failed
		FROM runs ORDER BY started_at DESC, id DESC LIMIT 1
	`).Scan(&r.ID, &r.StartedAt, &r.FinishedAt, &r.Fetched, &r.Created, &r.Duplicates, &r.Failed)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, errors.NewInternal(err)
	}
	return &r, true, nil
}
