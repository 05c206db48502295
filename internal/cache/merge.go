package cache

import "sort"

// PlacedIssue is a persisted record re-attached to its current line
// number. The file is the enclosing document's path, known to the caller.
type PlacedIssue struct {
	Line   int
	Record IssueRecord
}

// Analysis is the per-document change-detection result. It is produced
// once per document per run and consulted by NeedsCheck, NeedsReview, and
// Merge, so detection never runs twice for the same document.
type Analysis struct {
	Doc           Document
	Prev          *FileSnapshot
	FileUnchanged bool
	Lines         []LineClassification
	Deleted       []int

	needed map[int]bool
}

// Analyze classifies doc against the previous snapshot. prev may be nil
// for a cold start. The whole-file digest is compared first: when it
// matches, no line-level work happens at all.
func Analyze(doc Document, prev *Snapshot) *Analysis {
	a := &Analysis{Doc: doc}
	if prev != nil {
		a.Prev = prev.Files[doc.Path]
	}
	if a.Prev != nil && HashDocument(doc.Content) == a.Prev.FileHash {
		a.FileUnchanged = true
		return a
	}
	a.Lines, a.Deleted = DetectLineChanges(doc.Lines, a.Prev)
	a.needed = make(map[int]bool)
	for _, c := range a.Lines {
		if c.Status == LineNew {
			a.needed[c.Line] = true
		}
	}
	return a
}

// NeedsCheck returns the sorted current line numbers requiring fresh
// line-oriented checks. Empty when the whole file is unchanged.
func (a *Analysis) NeedsCheck() []int {
	if a.FileUnchanged || len(a.needed) == 0 {
		return nil
	}
	nums := make([]int, 0, len(a.needed))
	for n := range a.needed {
		nums = append(nums, n)
	}
	sort.Ints(nums)
	return nums
}

// NeedsReview returns the segments requiring fresh LLM review,
// deduplicated by digest. Empty when the whole file is unchanged.
func (a *Analysis) NeedsReview(segs []Segment) []Segment {
	if a.FileUnchanged {
		return nil
	}
	seen := make(map[string]bool)
	var fresh []Segment
	for _, seg := range segs {
		digest := seg.Digest()
		if seen[digest] || a.prevSegment(digest) != nil {
			continue
		}
		seen[digest] = true
		fresh = append(fresh, seg)
	}
	return fresh
}

// Merge combines carried-over cached issues with fresh results and builds
// the document's next snapshot. freshLines is keyed by current line number
// and freshSegs by segment digest; both may be nil. Fresh line issues are
// dropped unless their line was actually requested by NeedsCheck, and
// fresh segment issues unless the segment was actually fresh, so a tool
// reporting out of scope cannot corrupt the cache.
//
// The snapshot is complete: every current line gets an entry even with no
// issues, and every current segment gets an entry keyed by digest. Merged
// issues come back sorted by line, then column, then tool.
func (a *Analysis) Merge(segs []Segment, freshLines map[int][]IssueRecord, freshSegs map[string][]IssueRecord) ([]PlacedIssue, *FileSnapshot) {
	if a.FileUnchanged {
		return a.reuseUnchanged()
	}

	next := &FileSnapshot{
		FileHash:  HashDocument(a.Doc.Content),
		LineCount: a.Doc.LineCount(),
		Lines:     make(map[int]*LineEntry, len(a.Lines)),
		Segments:  make(map[string]*SegmentEntry, len(segs)),
	}

	placed := []PlacedIssue{}

	for _, c := range a.Lines {
		var issues []IssueRecord
		switch c.Status {
		case LineUnchanged:
			if entry := a.Prev.Lines[c.PrevLine]; entry != nil {
				issues = copyRecords(entry.Issues)
			}
		case LineNew:
			if a.needed[c.Line] {
				issues = copyRecords(freshLines[c.Line])
			}
		}
		next.Lines[c.Line] = &LineEntry{ContentHash: c.Digest, Issues: issues}
		for _, rec := range issues {
			placed = append(placed, PlacedIssue{Line: c.Line, Record: rec})
		}
	}

	for _, seg := range segs {
		digest := seg.Digest()
		var issues []IssueRecord
		if entry := a.prevSegment(digest); entry != nil {
			issues = copyRecords(entry.Issues)
		} else {
			issues = copyRecords(freshSegs[digest])
		}
		if _, dup := next.Segments[digest]; !dup {
			next.Segments[digest] = &SegmentEntry{
				SegmentHash: digest,
				StartLine:   seg.StartLine,
				Issues:      issues,
			}
		}
		for _, rec := range issues {
			placed = append(placed, PlacedIssue{Line: seg.StartLine, Record: rec})
		}
	}

	sortPlaced(placed)
	return placed, next
}

// reuseUnchanged rebuilds the snapshot from the previous one verbatim and
// replays every stored issue at its stored position.
func (a *Analysis) reuseUnchanged() ([]PlacedIssue, *FileSnapshot) {
	next := &FileSnapshot{
		FileHash:  a.Prev.FileHash,
		LineCount: a.Prev.LineCount,
		Lines:     make(map[int]*LineEntry, len(a.Prev.Lines)),
		Segments:  make(map[string]*SegmentEntry, len(a.Prev.Segments)),
	}
	placed := []PlacedIssue{}
	for lineNo, entry := range a.Prev.Lines {
		issues := copyRecords(entry.Issues)
		next.Lines[lineNo] = &LineEntry{ContentHash: entry.ContentHash, Issues: issues}
		for _, rec := range issues {
			placed = append(placed, PlacedIssue{Line: lineNo, Record: rec})
		}
	}
	for digest, entry := range a.Prev.Segments {
		issues := copyRecords(entry.Issues)
		next.Segments[digest] = &SegmentEntry{
			SegmentHash: entry.SegmentHash,
			StartLine:   entry.StartLine,
			Issues:      issues,
		}
		for _, rec := range issues {
			placed = append(placed, PlacedIssue{Line: entry.StartLine, Record: rec})
		}
	}
	sortPlaced(placed)
	return placed, next
}

func (a *Analysis) prevSegment(digest string) *SegmentEntry {
	if a.Prev == nil {
		return nil
	}
	return a.Prev.Segments[digest]
}

func copyRecords(recs []IssueRecord) []IssueRecord {
	if len(recs) == 0 {
		return nil
	}
	out := make([]IssueRecord, len(recs))
	copy(out, recs)
	return out
}

func sortPlaced(placed []PlacedIssue) {
	sort.Slice(placed, func(i, j int) bool {
		if placed[i].Line != placed[j].Line {
			return placed[i].Line < placed[j].Line
		}
		if placed[i].Record.Col != placed[j].Record.Col {
			return placed[i].Record.Col < placed[j].Record.Col
		}
		if placed[i].Record.Tool != placed[j].Record.Tool {
			return placed[i].Record.Tool < placed[j].Record.Tool
		}
		return placed[i].Record.Message < placed[j].Record.Message
	})
}
