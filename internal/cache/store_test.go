package cache

import (
	"encoding/json"
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"
)

func testSnapshot() *Snapshot {
	snap := NewSnapshot()
	snap.Files["doc/a.tex"] = &FileSnapshot{
		FileHash:  HashDocument("Hello.\nWorld.\n"),
		LineCount: 2,
		Lines: map[int]*LineEntry{
			1: {ContentHash: HashLine("Hello.")},
			2: {ContentHash: HashLine("World."), Issues: []IssueRecord{
				{Tool: "languagetool", Type: "grammar", Col: 1, Severity: "warning", Message: "Possible typo"},
			}},
		},
		Segments: map[string]*SegmentEntry{
			HashSegment("Hello. World."): {
				SegmentHash: HashSegment("Hello. World."),
				StartLine:   1,
				Issues:      []IssueRecord{{Tool: "ollama", Type: "clarity", Severity: "note", Message: "Flat opening"}},
			},
		},
	}
	return snap
}

func TestStore_SaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.json")
	store := NewStore(path)

	want := testSnapshot()
	if err := store.Save(want); err != nil {
		t.Fatalf("Save error: %v", err)
	}

	got, ok := store.Load()
	if !ok {
		t.Fatal("Load failed after Save")
	}
	if got.Version != FormatVersion {
		t.Errorf("Version = %q, want %q", got.Version, FormatVersion)
	}
	if got.Timestamp == "" {
		t.Error("Save should stamp a timestamp")
	}
	if !reflect.DeepEqual(got.Files, want.Files) {
		t.Errorf("Files round-trip mismatch:\ngot  %+v\nwant %+v", got.Files, want.Files)
	}
}

func TestStore_LoadMissingFile(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "nope.json"))
	if _, ok := store.Load(); ok {
		t.Error("Load of a missing file should report no cache")
	}
}

func TestStore_LoadCorruptJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.json")
	if err := os.WriteFile(path, []byte(`{"version": "1.0", "files": {`), 0o644); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}
	if _, ok := NewStore(path).Load(); ok {
		t.Error("Load of truncated JSON should report no cache")
	}
}

func TestStore_LoadVersionMismatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.json")
	stale := map[string]any{"version": "0.9", "timestamp": "2024-01-01T00:00:00Z", "files": map[string]any{}}
	data, err := json.Marshal(stale)
	if err != nil {
		t.Fatalf("marshal fixture: %v", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}
	if _, ok := NewStore(path).Load(); ok {
		t.Error("Load with an older format version should report no cache")
	}
}

func TestStore_SaveReplacesAtomically(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cache.json")
	store := NewStore(path)

	if err := store.Save(testSnapshot()); err != nil {
		t.Fatalf("first Save: %v", err)
	}
	second := NewSnapshot()
	second.Files["only.tex"] = &FileSnapshot{FileHash: HashDocument("x"), LineCount: 1,
		Lines: map[int]*LineEntry{1: {ContentHash: HashLine("x")}}, Segments: map[string]*SegmentEntry{}}
	if err := store.Save(second); err != nil {
		t.Fatalf("second Save: %v", err)
	}

	got, ok := store.Load()
	if !ok {
		t.Fatal("Load after second Save failed")
	}
	if len(got.Files) != 1 {
		t.Errorf("got %d files, want 1 from the replacing snapshot", len(got.Files))
	}
	if _, ok := got.Files["only.tex"]; !ok {
		t.Error("replacing snapshot content missing")
	}

	// No temp files should survive a successful save.
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	if len(entries) != 1 {
		t.Errorf("cache dir holds %d entries, want 1", len(entries))
	}
}

func TestStore_Clear(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.json")
	store := NewStore(path)

	if err := store.Clear(); err != nil {
		t.Errorf("Clear on missing file should not error: %v", err)
	}

	if err := store.Save(testSnapshot()); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := store.Clear(); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if _, ok := store.Load(); ok {
		t.Error("Load after Clear should report no cache")
	}
}

func TestSnapshot_Expired(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	snap := NewSnapshot()

	snap.Timestamp = now.Add(-48 * time.Hour).Format(time.RFC3339)
	if !snap.Expired(24*time.Hour, now) {
		t.Error("two-day-old snapshot should be expired at a one-day max age")
	}
	if snap.Expired(0, now) {
		t.Error("zero max age should never expire")
	}

	snap.Timestamp = now.Add(-1 * time.Hour).Format(time.RFC3339)
	if snap.Expired(24*time.Hour, now) {
		t.Error("recent snapshot should not be expired")
	}

	snap.Timestamp = "not-a-time"
	if !snap.Expired(24*time.Hour, now) {
		t.Error("unparseable timestamp should count as expired")
	}
}

func TestSnapshot_PruneDropsMissingDocuments(t *testing.T) {
	dir := t.TempDir()
	present := filepath.Join(dir, "present.tex")
	if err := os.WriteFile(present, []byte("content\n"), 0o644); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}

	snap := NewSnapshot()
	snap.Files[present] = &FileSnapshot{}
	snap.Files[filepath.Join(dir, "gone.tex")] = &FileSnapshot{}

	if removed := snap.Prune(); removed != 1 {
		t.Errorf("Prune removed %d, want 1", removed)
	}
	if _, ok := snap.Files[present]; !ok {
		t.Error("Prune dropped a document that still exists")
	}
	if len(snap.Files) != 1 {
		t.Errorf("files after prune = %d, want 1", len(snap.Files))
	}
}

func TestStore_GetStats(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.json")
	store := NewStore(path)

	empty := store.GetStats()
	if empty.Exists {
		t.Error("stats for a missing snapshot should report absent")
	}

	if err := store.Save(testSnapshot()); err != nil {
		t.Fatalf("Save: %v", err)
	}
	st := store.GetStats()
	if !st.Exists || st.Files != 1 || st.Lines != 2 || st.Segments != 1 {
		t.Errorf("stats = %+v, want 1 file, 2 lines, 1 segment", st)
	}
	if st.Bytes == 0 {
		t.Error("stats should report a nonzero size")
	}
}
