// Package sync implements the reconciliation driver: it decides which
// remote activities are new, normalizes them, and persists each exactly
// once as a vault note.
package sync

import (
	"context"
	"crypto/rand"
	"database/sql"
	"log"
	"sort"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/jtammen/stride/internal/activity"
	"github.com/jtammen/stride/internal/config"
	"github.com/jtammen/stride/internal/errors"
	"github.com/jtammen/stride/internal/state"
	"github.com/jtammen/stride/internal/vault"
)

// Remote is the minimal activity source interface the driver needs.
type Remote interface {
	FetchActivities(ctx context.Context, since time.Time) ([]activity.Raw, error)
}

// Report summarizes one reconciliation run.
type Report struct {
	RunID        string    `json:"run_id"`
	Fetched      int       `json:"fetched"`
	Created      int       `json:"created"`
	Duplicates   int       `json:"duplicates"`
	Failed       int       `json:"failed"`
	LastSyncedAt time.Time `json:"last_synced_at"`
}

// Option configures optional behaviour for the Runner.
type Option func(*Runner)

// WithLogger overrides the run logger.
func WithLogger(logger *log.Logger) Option {
	return func(r *Runner) {
		r.log = logger
	}
}

// WithUnknownLogger overrides the logger for taxonomy gaps. Kept separate
// from the run logger because an unknown type expects a one-line table fix,
// not an investigation.
func WithUnknownLogger(logger *log.Logger) Option {
	return func(r *Runner) {
		r.unknownLog = logger
	}
}

// Runner orchestrates one reconciliation traversal at a time. It is not
// safe for concurrent runs; overlapping invocation needs external mutual
// exclusion.
type Runner struct {
	db         *sql.DB
	store      *vault.Store
	remote     Remote
	cfg        *config.Config
	log        *log.Logger
	unknownLog *log.Logger
}

// NewRunner constructs a Runner with the provided collaborators.
func NewRunner(db *sql.DB, store *vault.Store, remote Remote, cfg *config.Config, opts ...Option) *Runner {
	r := &Runner{
		db:         db,
		store:      store,
		remote:     remote,
		cfg:        cfg,
		log:        log.New(log.Writer(), "[sync] ", log.LstdFlags),
		unknownLog: log.New(log.Writer(), "[unknown-type] ", log.LstdFlags),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run executes one full reconciliation: scan the vault, fetch candidates
// since the cursor, persist the new ones, then advance the cursor once.
//
// The vault index is authoritative for dedup; the cursor only narrows the
// fetch window. A crash anywhere before the final cursor save re-fetches a
// superset next run, which the index filters back down, so partial runs
// never duplicate and never lose data.
func (r *Runner) Run(ctx context.Context) (*Report, error) {
	runID := newRunID()
	startedAt := time.Now()
	rep := &Report{RunID: runID}

	ix, err := r.store.Scan()
	if err != nil {
		return nil, err
	}
	r.log.Printf("vault scan: %d synced notes indexed", ix.Len())

	since, cursorOK, err := state.Cursor(r.db)
	if err != nil {
		return nil, err
	}
	if !cursorOK {
		since = r.firstRunWindow()
		r.log.Printf("no cursor, fetching history since %s", since.Format("2006-01-02"))
	}

	raws, err := r.remote.FetchActivities(ctx, since)
	if err != nil {
		return nil, err
	}
	rep.Fetched = len(raws)
	r.log.Printf("fetched %d candidate(s) since %s", len(raws), since.Format("2006-01-02"))

	// Ascending start order keeps the cursor a true watermark: no candidate
	// behind the saved timestamp is ever unprocessed.
	sort.Slice(raws, func(i, j int) bool {
		return raws[i].StartedAt.Before(raws[j].StartedAt)
	})

	maxSeen := since
	for _, raw := range raws {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if raw.StartedAt.After(maxSeen) {
			maxSeen = raw.StartedAt
		}
		r.process(ix, raw, runID, rep, nil)
	}

	// One cursor write per run, only after the whole traversal, covering
	// every candidate seen. Failed candidates stay reachable through the
	// skipped ledger instead of holding the watermark back. A run that
	// observed nothing leaves the cursor alone.
	if maxSeen.After(since) {
		if err := state.SaveCursor(r.db, maxSeen); err != nil {
			return nil, err
		}
	}
	rep.LastSyncedAt = maxSeen

	if err := state.InsertRun(r.db, state.Run{
		ID:         runID,
		StartedAt:  startedAt.Unix(),
		FinishedAt: time.Now().Unix(),
		Fetched:    rep.Fetched,
		Created:    rep.Created,
		Duplicates: rep.Duplicates,
		Failed:     rep.Failed,
	}); err != nil {
		return nil, err
	}

	r.log.Printf("run %s done: %d created, %d duplicate(s), %d failed", runID, rep.Created, rep.Duplicates, rep.Failed)
	return rep, nil
}

// Retry re-attempts every unresolved skipped activity, typically after a
// taxonomy table fix. The cursor is left untouched: retries re-fetch a
// window wide enough to cover the oldest skip and process only those ids.
func (r *Runner) Retry(ctx context.Context) (*Report, error) {
	runID := newRunID()
	startedAt := time.Now()
	rep := &Report{RunID: runID}

	skipped, err := state.ListUnresolvedSkipped(r.db)
	if err != nil {
		return nil, err
	}
	if len(skipped) == 0 {
		return rep, nil
	}

	wanted := make(map[string]bool, len(skipped))
	since := skipped[0].StartedAt
	for _, s := range skipped {
		wanted[s.RemoteID] = true
		if !s.StartedAt.IsZero() && s.StartedAt.Before(since) {
			since = s.StartedAt
		}
	}
	// Day-granular fetch window; pad one day so boundary activities are
	// included regardless of timezone.
	since = since.AddDate(0, 0, -1)

	ix, err := r.store.Scan()
	if err != nil {
		return nil, err
	}

	raws, err := r.remote.FetchActivities(ctx, since)
	if err != nil {
		return nil, err
	}

	sort.Slice(raws, func(i, j int) bool {
		return raws[i].StartedAt.Before(raws[j].StartedAt)
	})

	for _, raw := range raws {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if !wanted[raw.RemoteID] {
			continue
		}
		rep.Fetched++
		r.process(ix, raw, runID, rep, wanted)
	}

	// The cursor is not moved, but the report still carries it so retry
	// output reads the same as sync output.
	if cursor, ok, err := state.Cursor(r.db); err != nil {
		return nil, err
	} else if ok {
		rep.LastSyncedAt = cursor
	}

	// Retries get a run row too; ledger entries written during a retry
	// reference this run id.
	if err := state.InsertRun(r.db, state.Run{
		ID:         runID,
		StartedAt:  startedAt.Unix(),
		FinishedAt: time.Now().Unix(),
		Fetched:    rep.Fetched,
		Created:    rep.Created,
		Duplicates: rep.Duplicates,
		Failed:     rep.Failed,
	}); err != nil {
		return nil, err
	}

	r.log.Printf("retry %s done: %d created, %d duplicate(s), %d still failing", runID, rep.Created, rep.Duplicates, rep.Failed)
	return rep, nil
}

// process handles a single candidate: dedup, classify, extract, persist.
// A failure is recorded and logged but never aborts the traversal; one
// malformed activity must not stall future syncs. resolved is non-nil for
// retry runs, marking ledger entries done when the candidate lands.
func (r *Runner) process(ix *vault.Index, raw activity.Raw, runID string, rep *Report, resolved map[string]bool) {
	if ix.HasID(raw.RemoteID) {
		rep.Duplicates++
		if resolved != nil {
			r.resolve(raw.RemoteID)
		}
		return
	}

	if raw.StartedAt.IsZero() {
		r.fail(raw, runID, rep, errors.NewMissingRequiredAttribute(raw.RemoteID, "started_at"))
		return
	}

	c, err := activity.Classify(raw.TypeKey)
	if err != nil {
		r.fail(raw, runID, rep, err)
		return
	}

	// Notes bulk-imported before the sync existed have no remote id; a
	// same-day, same-category activity is assumed to be one of them.
	date := raw.StartedAt.Format("2006-01-02")
	if ix.ConsumeCSVMatch(date, c.Category) {
		rep.Duplicates++
		if resolved != nil {
			r.resolve(raw.RemoteID)
		}
		return
	}

	w, err := activity.Extract(raw, c)
	if err != nil {
		r.fail(raw, runID, rep, err)
		return
	}

	filename := vault.Filename(w)
	if err := r.store.Create(filename, vault.NewNote(w)); err != nil {
		r.fail(raw, runID, rep, err)
		return
	}

	ix.AddID(raw.RemoteID)
	rep.Created++
	r.log.Printf("created %s (%s, %s)", filename, c.Category, c.Exercise)
	if resolved != nil {
		r.resolve(raw.RemoteID)
	}
}

// fail records one failed candidate in the skipped ledger and reports it on
// the channel matching its nature: taxonomy gaps expect a table fix, the
// rest an investigation.
func (r *Runner) fail(raw activity.Raw, runID string, rep *Report, cause error) {
	rep.Failed++

	code := string(errors.ErrInternal)
	message := cause.Error()
	if sErr, ok := cause.(*errors.StrideError); ok {
		code = string(sErr.Code)
		message = sErr.Message
	}

	if errors.Is(cause, errors.ErrUnknownActivityType) {
		r.unknownLog.Printf("activity %s: %s (add %q to the taxonomy table, then run stride retry)",
			raw.RemoteID, message, raw.TypeKey)
	} else {
		r.log.Printf("activity %s failed: %s", raw.RemoteID, message)
	}

	if err := state.RecordSkipped(r.db, state.Skipped{
		RemoteID:  raw.RemoteID,
		TypeLabel: raw.TypeKey,
		StartedAt: raw.StartedAt,
		Code:      code,
		Message:   message,
		RunID:     runID,
		CreatedAt: time.Now().Unix(),
	}); err != nil {
		r.log.Printf("could not record skipped activity %s: %v", raw.RemoteID, err)
	}
}

func (r *Runner) resolve(remoteID string) {
	if err := state.ResolveSkipped(r.db, remoteID, time.Now().Unix()); err != nil &&
		!errors.Is(err, errors.ErrNotFound) {
		r.log.Printf("could not resolve skipped activity %s: %v", remoteID, err)
	}
}

// firstRunWindow returns the fetch start for a run with no cursor.
func (r *Runner) firstRunWindow() time.Time {
	if r.cfg.LookbackDays > 0 {
		return time.Now().AddDate(0, 0, -r.cfg.LookbackDays)
	}
	return time.Unix(0, 0).UTC()
}

// newRunID generates a ULID for this run.
func newRunID() string {
	return ulid.MustNew(ulid.Timestamp(time.Now()), ulid.Monotonic(rand.Reader, 0)).String()
}
