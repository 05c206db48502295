package cache

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// FormatVersion identifies the persisted snapshot layout. Any mismatch on
// load is treated as "no cache"; there is no field-by-field migration.
const FormatVersion = "1.0"

// IssueRecord is the persisted form of a single finding. It deliberately
// carries no file or line: those are supplied by the enclosing line or
// segment entry when the record is read back, so they can never drift.
type IssueRecord struct {
	Tool         string `json:"tool"`
	Type         string `json:"type"`
	Col          int    `json:"col"`
	Severity     string `json:"severity"`
	Message      string `json:"message"`
	Code         string `json:"code,omitempty"`
	Suggestion   string `json:"suggestion,omitempty"`
	Adjudication string `json:"adjudication,omitempty"`
}

// LineEntry is the last-known state and findings for one physical line.
type LineEntry struct {
	ContentHash string        `json:"content_hash"`
	Issues      []IssueRecord `json:"issues"`
}

// SegmentEntry is the last-known state and findings for one review
// segment, keyed in FileSnapshot.Segments by its content digest.
type SegmentEntry struct {
	SegmentHash string        `json:"segment_hash"`
	StartLine   int           `json:"start_line"`
	Issues      []IssueRecord `json:"issues"`
}

// FileSnapshot is the cached state of one document.
type FileSnapshot struct {
	FileHash  string                   `json:"file_hash"`
	LineCount int                      `json:"line_count"`
	Lines     map[int]*LineEntry       `json:"lines"`
	Segments  map[string]*SegmentEntry `json:"segments"`
}

// Snapshot is the single persisted root: the complete cache state from the
// previous run, keyed by document path. A run never patches a loaded
// snapshot in place; it builds a full replacement and saves that.
type Snapshot struct {
	Version   string                   `json:"version"`
	Timestamp string                   `json:"timestamp"`
	Files     map[string]*FileSnapshot `json:"files"`
}

// NewSnapshot returns an empty snapshot at the current format version.
func NewSnapshot() *Snapshot {
	return &Snapshot{Version: FormatVersion, Files: make(map[string]*FileSnapshot)}
}

// Expired reports whether the snapshot's timestamp is older than maxAge.
// A zero maxAge never expires; an unparseable timestamp counts as expired.
func (snap *Snapshot) Expired(maxAge time.Duration, now time.Time) bool {
	if maxAge <= 0 {
		return false
	}
	ts, err := time.Parse(time.RFC3339, snap.Timestamp)
	if err != nil {
		return true
	}
	return now.Sub(ts) > maxAge
}

// Prune drops entries for documents that no longer exist on disk and
// returns how many were removed.
func (snap *Snapshot) Prune() int {
	var removed int
	for path := range snap.Files {
		if _, err := os.Stat(path); err != nil {
			delete(snap.Files, path)
			removed++
		}
	}
	return removed
}

// Store reads and writes snapshots at a fixed file path. The path is
// always supplied by the caller; there is no ambient default location.
type Store struct {
	path string
}

// NewStore creates a store for the given snapshot file path.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Path returns the snapshot file location.
func (s *Store) Path() string { return s.path }

// Load reads the previous snapshot. It fails soft: a missing file, invalid
// JSON, or a version mismatch all return (nil, false) so the run starts
// cold instead of tripping over a bad cache.
func (s *Store) Load() (*Snapshot, bool) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, false
	}
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, false
	}
	if snap.Version != FormatVersion {
		return nil, false
	}
	if snap.Files == nil {
		snap.Files = make(map[string]*FileSnapshot)
	}
	return &snap, true
}

// Save stamps the snapshot with the current UTC time and writes it through
// a temp file plus rename, so a concurrent or later reader sees either the
// old file or the new one, never a torn write.
func (s *Store) Save(snap *Snapshot) error {
	snap.Version = FormatVersion
	snap.Timestamp = time.Now().UTC().Format(time.RFC3339)

	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling snapshot: %w", err)
	}
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating cache directory: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".redline-cache-*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("writing snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replacing snapshot: %w", err)
	}
	return nil
}

// Clear removes the snapshot file. A missing file is not an error.
func (s *Store) Clear() error {
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing snapshot: %w", err)
	}
	return nil
}

// Stats describes the on-disk snapshot.
type Stats struct {
	Path      string `json:"path"`
	Exists    bool   `json:"exists"`
	Version   string `json:"version,omitempty"`
	Timestamp string `json:"timestamp,omitempty"`
	Files     int    `json:"files"`
	Lines     int    `json:"lines"`
	Segments  int    `json:"segments"`
	Bytes     int64  `json:"bytes"`
}

// GetStats reports snapshot statistics. A missing or unreadable snapshot
// yields zero counts, not an error.
func (s *Store) GetStats() Stats {
	st := Stats{Path: s.path}
	info, err := os.Stat(s.path)
	if err != nil {
		return st
	}
	st.Exists = true
	st.Bytes = info.Size()
	snap, ok := s.Load()
	if !ok {
		return st
	}
	st.Version = snap.Version
	st.Timestamp = snap.Timestamp
	st.Files = len(snap.Files)
	for _, f := range snap.Files {
		st.Lines += len(f.Lines)
		st.Segments += len(f.Segments)
	}
	return st
}
