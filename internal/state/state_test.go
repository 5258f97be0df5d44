package state

import (
	"testing"
	"time"
)

func TestInit_CreatesSchema(t *testing.T) {
	db, err := Init(t.TempDir())
	if err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	defer db.Close()

	version, err := GetUserVersion(db)
	if err != nil {
		t.Fatalf("GetUserVersion failed: %v", err)
	}
	if version != CurrentSchemaVersion {
		t.Errorf("user_version = %d, want %d", version, CurrentSchemaVersion)
	}
}

func TestCursor_AbsentOnFirstRun(t *testing.T) {
	db, err := Init(t.TempDir())
	if err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	defer db.Close()

	_, ok, err := Cursor(db)
	if err != nil {
		t.Fatalf("Cursor failed: %v", err)
	}
	if ok {
		t.Error("cursor should be absent before any run")
	}
}

func TestCursor_SaveAndLoad(t *testing.T) {
	db, err := Init(t.TempDir())
	if err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	defer db.Close()

	want := time.Date(2025, 6, 1, 7, 30, 0, 0, time.UTC)
	if err := SaveCursor(db, want); err != nil {
		t.Fatalf("SaveCursor failed: %v", err)
	}

	got, ok, err := Cursor(db)
	if err != nil {
		t.Fatalf("Cursor failed: %v", err)
	}
	if !ok {
		t.Fatal("cursor should exist after save")
	}
	if !got.Equal(want) {
		t.Errorf("cursor = %v, want %v", got, want)
	}

	// Second save overwrites the single row
	later := want.Add(24 * time.Hour)
	if err := SaveCursor(db, later); err != nil {
		t.Fatalf("SaveCursor failed: %v", err)
	}
	got, _, err = Cursor(db)
	if err != nil {
		t.Fatalf("Cursor failed: %v", err)
	}
	if !got.Equal(later) {
		t.Errorf("cursor = %v, want %v", got, later)
	}
}

func TestSkipped_RecordListResolve(t *testing.T) {
	db, err := Init(t.TempDir())
	if err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	defer db.Close()

	s := Skipped{
		RemoteID:  "9001",
		TypeLabel: "zorbing",
		StartedAt: time.Date(2025, 5, 10, 9, 0, 0, 0, time.UTC),
		Code:      "UNKNOWN_ACTIVITY_TYPE",
		Message:   `no category mapping for activity type "zorbing"`,
		RunID:     "01RUN",
		CreatedAt: time.Now().Unix(),
	}
	if err := RecordSkipped(db, s); err != nil {
		t.Fatalf("RecordSkipped failed: %v", err)
	}

	unresolved, err := ListUnresolvedSkipped(db)
	if err != nil {
		t.Fatalf("ListUnresolvedSkipped failed: %v", err)
	}
	if len(unresolved) != 1 {
		t.Fatalf("unresolved count = %d, want 1", len(unresolved))
	}
	if unresolved[0].RemoteID != "9001" || unresolved[0].TypeLabel != "zorbing" {
		t.Errorf("unexpected skipped record: %+v", unresolved[0])
	}
	if !unresolved[0].StartedAt.Equal(s.StartedAt) {
		t.Errorf("StartedAt = %v, want %v", unresolved[0].StartedAt, s.StartedAt)
	}

	// Recording the same id again is an upsert, not an error
	if err := RecordSkipped(db, s); err != nil {
		t.Fatalf("RecordSkipped upsert failed: %v", err)
	}
	unresolved, err = ListUnresolvedSkipped(db)
	if err != nil {
		t.Fatalf("ListUnresolvedSkipped failed: %v", err)
	}
	if len(unresolved) != 1 {
		t.Fatalf("unresolved count after upsert = %d, want 1", len(unresolved))
	}

	if err := ResolveSkipped(db, "9001", time.Now().Unix()); err != nil {
		t.Fatalf("ResolveSkipped failed: %v", err)
	}
	unresolved, err = ListUnresolvedSkipped(db)
	if err != nil {
		t.Fatalf("ListUnresolvedSkipped failed: %v", err)
	}
	if len(unresolved) != 0 {
		t.Errorf("unresolved count after resolve = %d, want 0", len(unresolved))
	}

	// Resolving an unknown or already-resolved id reports not found
	if err := ResolveSkipped(db, "9001", time.Now().Unix()); err == nil {
		t.Error("expected error resolving already-resolved id")
	}
}

func TestRuns_InsertAndLatest(t *testing.T) {
	db, err := Init(t.TempDir())
	if err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	defer db.Close()

	_, ok, err := LatestRun(db)
	if err != nil {
		t.Fatalf("LatestRun failed: %v", err)
	}
	if ok {
		t.Error("no run should exist yet")
	}

	now := time.Now().Unix()
	runs := []Run{
		{ID: "01A", StartedAt: now - 100, FinishedAt: now - 90, Fetched: 4, Created: 3, Failed: 1},
		{ID: "01B", StartedAt: now, FinishedAt: now + 5, Fetched: 2, Duplicates: 2},
	}
	for _, r := range runs {
		if err := InsertRun(db, r); err != nil {
			t.Fatalf("InsertRun failed: %v", err)
		}
	}

	latest, ok, err := LatestRun(db)
	if err != nil {
		t.Fatalf("LatestRun failed: %v", err)
	}
	if !ok {
		t.Fatal("expected a latest run")
	}
	if latest.ID != "01B" {
		t.Errorf("latest run = %q, want 01B", latest.ID)
	}
	if latest.Duplicates != 2 {
		t.Errorf("Duplicates = %d, want 2", latest.Duplicates)
	}
}
