package vault

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/jtammen/stride/internal/activity"
	"github.com/jtammen/stride/internal/errors"
)

// Store is a directory of workout notes.
type Store struct {
	dir string
}

// NewStore opens (creating if needed) the vault directory.
func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, errors.NewInternal(fmt.Errorf("failed to create vault directory: %w", err))
	}
	return &Store{dir: dir}, nil
}

// Dir returns the vault directory path.
func (s *Store) Dir() string {
	return s.dir
}

// Index is a consistent snapshot of what the vault already contains,
// built once per run before any write. It, not the cursor, is the source
// of truth for deduplication.
type Index struct {
	ids map[string]bool

	// csvBuckets counts notes with no remote_id but a (date, type) header:
	// bulk CSV imports from before the sync existed. A fetched activity
	// matching a bucket consumes it instead of creating a duplicate note.
	csvBuckets map[csvKey]int
}

type csvKey struct {
	date     string
	category string
}

// HasID reports whether a remote id is already present in the vault.
func (ix *Index) HasID(remoteID string) bool {
	return ix.ids[remoteID]
}

// AddID records a note created during this run, so two candidates cannot
// both write the same id within one traversal.
func (ix *Index) AddID(remoteID string) {
	ix.ids[remoteID] = true
}

// Len returns the number of indexed remote ids.
func (ix *Index) Len() int {
	return len(ix.ids)
}

// ConsumeCSVMatch reports whether an activity on the given date and category
// matches an unconsumed CSV-imported note, and consumes the bucket slot.
func (ix *Index) ConsumeCSVMatch(date string, category activity.Category) bool {
	key := csvKey{date: date, category: string(category)}
	if ix.csvBuckets[key] > 0 {
		ix.csvBuckets[key]--
		return true
	}
	return false
}

// Scan walks every markdown note in the vault and builds the dedup index.
// Full scan on every run: the cursor knows nothing about externally
// imported history, so the store itself must be consulted. Notes with a
// missing or malformed header are assumed user-authored and skipped.
func (s *Store) Scan() (*Index, error) {
	matches, err := filepath.Glob(filepath.Join(s.dir, "*.md"))
	if err != nil {
		return nil, errors.NewInternal(err)
	}

	ix := &Index{
		ids:        make(map[string]bool, len(matches)),
		csvBuckets: make(map[csvKey]int),
	}

	for _, path := range matches {
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		fields, ok := parseFrontmatter(data)
		if !ok {
			continue
		}

		if id := headerString(fields, KeyRemoteID); id != "" {
			ix.ids[id] = true
			continue
		}

		date := headerString(fields, KeyDate)
		category := headerString(fields, KeyType)
		if date != "" && category != "" {
			ix.csvBuckets[csvKey{date: date, category: category}]++
		}
	}

	return ix, nil
}

// ListHeaders returns the header fields of every synced note (notes with a
// remote_id), most recent date first.
func (s *Store) ListHeaders() ([]map[string]any, error) {
	matches, err := filepath.Glob(filepath.Join(s.dir, "*.md"))
	if err != nil {
		return nil, errors.NewInternal(err)
	}

	var headers []map[string]any
	for _, path := range matches {
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		fields, ok := parseFrontmatter(data)
		if !ok {
			continue
		}
		if headerString(fields, KeyRemoteID) == "" {
			continue
		}
		headers = append(headers, fields)
	}

	sort.Slice(headers, func(i, j int) bool {
		return headerString(headers[i], KeyDate) > headerString(headers[j], KeyDate)
	})
	return headers, nil
}

// Filename derives the note filename for a workout. Unique as long as the
// remote id is unique, which the source guarantees.
func Filename(w *activity.Workout) string {
	return fmt.Sprintf("%s-%s.md", w.Date.Format("2006-01-02"), w.RemoteID)
}

// Create writes a new note. Fails with ALREADY_EXISTS on filename
// collision and never overwrites; notes are written once and immutable.
func (s *Store) Create(filename string, note Note) error {
	data, err := note.Render()
	if err != nil {
		return errors.NewStoreWriteFailure(filename, err)
	}

	path := filepath.Join(s.dir, filename)
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		if os.IsExist(err) {
			return errors.NewAlreadyExists(filename)
		}
		return errors.NewStoreWriteFailure(filename, err)
	}

	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(path)
		return errors.NewStoreWriteFailure(filename, err)
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return errors.NewStoreWriteFailure(filename, err)
	}
	return nil
}
