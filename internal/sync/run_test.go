package sync

import (
	"context"
	"database/sql"
	"io"
	"log"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jtammen/stride/internal/activity"
	"github.com/jtammen/stride/internal/config"
	"github.com/jtammen/stride/internal/errors"
	"github.com/jtammen/stride/internal/state"
	"github.com/jtammen/stride/internal/vault"
)

// fakeRemote serves canned activities and records the fetch windows it saw.
type fakeRemote struct {
	raws   []activity.Raw
	err    error
	sinces []time.Time
}

func (f *fakeRemote) FetchActivities(_ context.Context, since time.Time) ([]activity.Raw, error) {
	f.sinces = append(f.sinces, since)
	if f.err != nil {
		return nil, f.err
	}
	return f.raws, nil
}

func newTestRunner(t *testing.T, remote Remote) (*Runner, *sql.DB, *vault.Store) {
	t.Helper()

	db, err := state.Init(t.TempDir())
	if err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	store, err := vault.NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewStore failed: %v", err)
	}

	cfg := config.DefaultConfig()
	cfg.LookbackDays = 30

	quiet := log.New(io.Discard, "", 0)
	return NewRunner(db, store, remote, cfg, WithLogger(quiet), WithUnknownLogger(quiet)), db, store
}

func runningRaw(id string, startedAt time.Time) activity.Raw {
	return activity.Raw{
		RemoteID:    id,
		StartedAt:   startedAt,
		TypeKey:     "running",
		DurationSec: 3600,
		DistanceM:   10000,
		Calories:    600,
	}
}

func countNotes(t *testing.T, store *vault.Store) int {
	t.Helper()
	matches, err := filepath.Glob(filepath.Join(store.Dir(), "*.md"))
	if err != nil {
		t.Fatalf("glob failed: %v", err)
	}
	return len(matches)
}

func TestRun_CreatesNotes(t *testing.T) {
	day1 := time.Date(2025, 6, 1, 7, 0, 0, 0, time.UTC)
	day2 := time.Date(2025, 6, 2, 7, 0, 0, 0, time.UTC)
	remote := &fakeRemote{raws: []activity.Raw{
		runningRaw("1001", day1),
		runningRaw("1002", day2),
	}}
	runner, db, store := newTestRunner(t, remote)

	rep, err := runner.Run(context.Background())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if rep.Created != 2 || rep.Duplicates != 0 || rep.Failed != 0 {
		t.Fatalf("report = %+v, want 2 created", rep)
	}
	if rep.RunID == "" {
		t.Error("expected a run id")
	}
	if got := countNotes(t, store); got != 2 {
		t.Errorf("vault has %d notes, want 2", got)
	}

	cursor, ok, err := state.Cursor(db)
	if err != nil || !ok {
		t.Fatalf("Cursor = %v, %v, %v; want saved cursor", cursor, ok, err)
	}
	if !cursor.Equal(day2) {
		t.Errorf("cursor = %v, want %v", cursor, day2)
	}

	run, ok, err := state.LatestRun(db)
	if err != nil || !ok {
		t.Fatalf("LatestRun failed: %v, %v", ok, err)
	}
	if run.Created != 2 || run.Fetched != 2 {
		t.Errorf("run row = %+v, want created=2 fetched=2", run)
	}
}

func TestRun_Idempotent(t *testing.T) {
	day := time.Date(2025, 6, 1, 7, 0, 0, 0, time.UTC)
	remote := &fakeRemote{raws: []activity.Raw{
		runningRaw("1001", day),
		runningRaw("1002", day.Add(time.Hour)),
	}}
	runner, _, store := newTestRunner(t, remote)

	if _, err := runner.Run(context.Background()); err != nil {
		t.Fatalf("first Run failed: %v", err)
	}
	rep, err := runner.Run(context.Background())
	if err != nil {
		t.Fatalf("second Run failed: %v", err)
	}
	if rep.Created != 0 || rep.Duplicates != 2 {
		t.Fatalf("second run report = %+v, want 0 created, 2 duplicates", rep)
	}
	if got := countNotes(t, store); got != 2 {
		t.Errorf("vault has %d notes after replay, want 2", got)
	}
}

func TestRun_PartialFailureIsolation(t *testing.T) {
	base := time.Date(2025, 6, 1, 7, 0, 0, 0, time.UTC)
	bad := runningRaw("1003", base.Add(48*time.Hour))
	bad.TypeKey = "zumba_dance"
	remote := &fakeRemote{raws: []activity.Raw{
		runningRaw("1001", base),
		runningRaw("1002", base.Add(24*time.Hour)),
		bad,
		runningRaw("1004", base.Add(72*time.Hour)),
	}}
	runner, db, store := newTestRunner(t, remote)

	rep, err := runner.Run(context.Background())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if rep.Created != 3 || rep.Failed != 1 {
		t.Fatalf("report = %+v, want 3 created, 1 failed", rep)
	}
	if got := countNotes(t, store); got != 3 {
		t.Errorf("vault has %d notes, want 3", got)
	}

	// The failure is recorded, retryable, and does not hold the cursor back.
	skipped, err := state.ListUnresolvedSkipped(db)
	if err != nil {
		t.Fatalf("ListUnresolvedSkipped failed: %v", err)
	}
	if len(skipped) != 1 {
		t.Fatalf("len(skipped) = %d, want 1", len(skipped))
	}
	if skipped[0].RemoteID != "1003" || skipped[0].Code != string(errors.ErrUnknownActivityType) {
		t.Errorf("skipped = %+v, want 1003 / UNKNOWN_ACTIVITY_TYPE", skipped[0])
	}

	cursor, ok, _ := state.Cursor(db)
	if !ok || !cursor.Equal(base.Add(72*time.Hour)) {
		t.Errorf("cursor = %v, %v; want max started_at across all candidates", cursor, ok)
	}
}

func TestRun_CursorNarrowsNextWindow(t *testing.T) {
	day := time.Date(2025, 6, 1, 7, 0, 0, 0, time.UTC)
	remote := &fakeRemote{raws: []activity.Raw{runningRaw("1001", day)}}
	runner, _, _ := newTestRunner(t, remote)

	if _, err := runner.Run(context.Background()); err != nil {
		t.Fatalf("first Run failed: %v", err)
	}
	if _, err := runner.Run(context.Background()); err != nil {
		t.Fatalf("second Run failed: %v", err)
	}

	if len(remote.sinces) != 2 {
		t.Fatalf("remote saw %d fetches, want 2", len(remote.sinces))
	}
	if !remote.sinces[1].Equal(day) {
		t.Errorf("second fetch window = %v, want cursor %v", remote.sinces[1], day)
	}
}

func TestRun_EmptyFetchLeavesCursorAbsent(t *testing.T) {
	runner, db, _ := newTestRunner(t, &fakeRemote{})

	rep, err := runner.Run(context.Background())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if rep.Fetched != 0 || rep.Created != 0 {
		t.Errorf("report = %+v, want empty", rep)
	}
	if _, ok, _ := state.Cursor(db); ok {
		t.Error("cursor saved on a run that observed nothing")
	}
}

func TestRun_FetchErrorIsFatal(t *testing.T) {
	remote := &fakeRemote{err: errors.NewRemoteFetchFailure(io.ErrUnexpectedEOF)}
	runner, db, _ := newTestRunner(t, remote)

	if _, err := runner.Run(context.Background()); !errors.Is(err, errors.ErrRemoteFetchFailure) {
		t.Fatalf("Run error = %v, want REMOTE_FETCH_FAILURE", err)
	}
	if _, ok, _ := state.Cursor(db); ok {
		t.Error("cursor saved despite failed fetch")
	}
}

func TestRun_MissingStartTimeIsSkipped(t *testing.T) {
	raw := runningRaw("1001", time.Time{})
	runner, db, store := newTestRunner(t, &fakeRemote{raws: []activity.Raw{raw}})

	rep, err := runner.Run(context.Background())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if rep.Failed != 1 || rep.Created != 0 {
		t.Fatalf("report = %+v, want 1 failed", rep)
	}
	if got := countNotes(t, store); got != 0 {
		t.Errorf("vault has %d notes, want 0", got)
	}

	skipped, _ := state.ListUnresolvedSkipped(db)
	if len(skipped) != 1 || skipped[0].Code != string(errors.ErrMissingRequiredAttribute) {
		t.Fatalf("skipped = %+v, want one MISSING_REQUIRED_ATTRIBUTE entry", skipped)
	}
}

func TestRun_CSVImportedNoteAbsorbsMatch(t *testing.T) {
	day := time.Date(2025, 6, 1, 7, 0, 0, 0, time.UTC)
	remote := &fakeRemote{raws: []activity.Raw{runningRaw("1001", day)}}
	runner, _, store := newTestRunner(t, remote)

	// A bulk-imported note: date and type, no remote id.
	imported := "---\ndate: \"2025-06-01\"\ntype: \"Cardio\"\n---\n#workouts\n"
	if err := os.WriteFile(filepath.Join(store.Dir(), "2025-06-01-run.md"), []byte(imported), 0644); err != nil {
		t.Fatalf("seed note failed: %v", err)
	}

	rep, err := runner.Run(context.Background())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if rep.Created != 0 || rep.Duplicates != 1 {
		t.Fatalf("report = %+v, want the import absorbed as duplicate", rep)
	}
	if got := countNotes(t, store); got != 1 {
		t.Errorf("vault has %d notes, want only the imported one", got)
	}
}

func TestRetry_ResolvesFixedActivities(t *testing.T) {
	day := time.Date(2025, 6, 1, 7, 0, 0, 0, time.UTC)
	remote := &fakeRemote{raws: []activity.Raw{runningRaw("1001", day)}}
	runner, db, store := newTestRunner(t, remote)

	// Ledger entry from a run before the taxonomy was fixed; the remote
	// still serves the activity, and Classify now succeeds.
	err := state.RecordSkipped(db, state.Skipped{
		RemoteID:  "1001",
		TypeLabel: "running",
		StartedAt: day,
		Code:      string(errors.ErrUnknownActivityType),
		Message:   "unknown activity type",
		RunID:     "earlier",
		CreatedAt: time.Now().Unix(),
	})
	if err != nil {
		t.Fatalf("RecordSkipped failed: %v", err)
	}

	rep, err := runner.Retry(context.Background())
	if err != nil {
		t.Fatalf("Retry failed: %v", err)
	}
	if rep.Created != 1 || rep.Failed != 0 {
		t.Fatalf("retry report = %+v, want 1 created", rep)
	}
	if got := countNotes(t, store); got != 1 {
		t.Errorf("vault has %d notes, want 1", got)
	}

	if skipped, _ := state.ListUnresolvedSkipped(db); len(skipped) != 0 {
		t.Errorf("unresolved skipped = %+v, want none", skipped)
	}

	// Retry windows pad a day to cover timezone boundaries.
	if len(remote.sinces) != 1 || !remote.sinces[0].Equal(day.AddDate(0, 0, -1)) {
		t.Errorf("retry fetch window = %v, want %v", remote.sinces, day.AddDate(0, 0, -1))
	}

	// The cursor belongs to Run, not Retry.
	if _, ok, _ := state.Cursor(db); ok {
		t.Error("Retry moved the cursor")
	}

	// Retries are recorded in the run history like any other run.
	run, ok, err := state.LatestRun(db)
	if err != nil || !ok {
		t.Fatalf("LatestRun failed: %v, %v", ok, err)
	}
	if run.ID != rep.RunID || run.Created != 1 {
		t.Errorf("run row = %+v, want id %s with created=1", run, rep.RunID)
	}
}

func TestRetry_ReportCarriesCursor(t *testing.T) {
	day := time.Date(2025, 6, 1, 7, 0, 0, 0, time.UTC)
	remote := &fakeRemote{raws: []activity.Raw{runningRaw("1001", day)}}
	runner, db, _ := newTestRunner(t, remote)

	if _, err := runner.Run(context.Background()); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	err := state.RecordSkipped(db, state.Skipped{
		RemoteID:  "1002",
		TypeLabel: "zumba_dance",
		StartedAt: day,
		Code:      string(errors.ErrUnknownActivityType),
		Message:   "unknown activity type",
		RunID:     "earlier",
		CreatedAt: time.Now().Unix(),
	})
	if err != nil {
		t.Fatalf("RecordSkipped failed: %v", err)
	}

	rep, err := runner.Retry(context.Background())
	if err != nil {
		t.Fatalf("Retry failed: %v", err)
	}
	if !rep.LastSyncedAt.Equal(day) {
		t.Errorf("LastSyncedAt = %v, want the unchanged cursor %v", rep.LastSyncedAt, day)
	}
}

func TestRetry_NothingToDo(t *testing.T) {
	remote := &fakeRemote{}
	runner, _, _ := newTestRunner(t, remote)

	rep, err := runner.Retry(context.Background())
	if err != nil {
		t.Fatalf("Retry failed: %v", err)
	}
	if rep.Fetched != 0 || rep.Created != 0 {
		t.Errorf("report = %+v, want empty", rep)
	}
	if len(remote.sinces) != 0 {
		t.Error("Retry fetched with an empty ledger")
	}
}

func TestRetry_StillFailingStaysInLedger(t *testing.T) {
	day := time.Date(2025, 6, 1, 7, 0, 0, 0, time.UTC)
	bad := runningRaw("1001", day)
	bad.TypeKey = "zumba_dance"
	remote := &fakeRemote{raws: []activity.Raw{bad}}
	runner, db, _ := newTestRunner(t, remote)

	err := state.RecordSkipped(db, state.Skipped{
		RemoteID:  "1001",
		TypeLabel: "zumba_dance",
		StartedAt: day,
		Code:      string(errors.ErrUnknownActivityType),
		Message:   "unknown activity type",
		RunID:     "earlier",
		CreatedAt: time.Now().Unix(),
	})
	if err != nil {
		t.Fatalf("RecordSkipped failed: %v", err)
	}

	rep, err := runner.Retry(context.Background())
	if err != nil {
		t.Fatalf("Retry failed: %v", err)
	}
	if rep.Failed != 1 || rep.Created != 0 {
		t.Fatalf("retry report = %+v, want 1 still failing", rep)
	}

	skipped, _ := state.ListUnresolvedSkipped(db)
	if len(skipped) != 1 {
		t.Fatalf("unresolved skipped = %+v, want the entry kept", skipped)
	}
	// The re-recorded skip points at the retry's run row.
	if skipped[0].RunID != rep.RunID {
		t.Errorf("skipped run id = %s, want %s", skipped[0].RunID, rep.RunID)
	}
	if run, ok, _ := state.LatestRun(db); !ok || run.ID != rep.RunID {
		t.Errorf("run history missing the retry run %s", rep.RunID)
	}
}
