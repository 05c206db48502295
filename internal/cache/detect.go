package cache

import (
	"sort"
	"strings"
)

// Document is the current content of one file under review. Lines are
// 1-indexed at the API boundary; Lines[0] holds line 1.
type Document struct {
	Path    string
	Content string
	Lines   []string
}

// NewDocument splits content into lines. A single trailing newline does
// not produce a phantom empty final line.
func NewDocument(path, content string) Document {
	doc := Document{Path: path, Content: content}
	if content != "" {
		doc.Lines = strings.Split(strings.TrimSuffix(content, "\n"), "\n")
	}
	return doc
}

// LineCount returns the number of physical lines.
func (d Document) LineCount() int { return len(d.Lines) }

// Line returns the 1-indexed line text, or "" when out of range.
func (d Document) Line(n int) string {
	if n < 1 || n > len(d.Lines) {
		return ""
	}
	return d.Lines[n-1]
}

// Segment is one LLM review unit: a variable-length, sentence-bounded span
// of document text with the line its first sentence starts on.
type Segment struct {
	Text      string
	File      string
	StartLine int
}

// Digest returns the segment's content digest.
func (s Segment) Digest() string { return HashSegment(s.Text) }

// LineStatus classifies a current line against the previous snapshot.
type LineStatus string

const (
	LineUnchanged LineStatus = "unchanged"
	LineNew       LineStatus = "new"
)

// LineClassification records how one current line matched the previous
// snapshot. PrevLine is zero when Status is LineNew.
type LineClassification struct {
	Line     int
	PrevLine int
	Status   LineStatus
	Digest   string
}

// DetectLineChanges classifies every current line as unchanged or new by
// greedy digest matching against prev, and reports previous line numbers
// no current line claimed. Matching is order-independent, so a line that
// moved keeps its cached state. Each previous line number is claimed at
// most once, lowest candidate first, so duplicate content never
// double-matches.
//
// This is a deliberate O(n) approximation of full sequence alignment.
// Among identical duplicate lines it may claim "the wrong" instance, which
// is harmless: every claimed pair is byte-identical after trimming, so an
// unchanged classification is never false.
func DetectLineChanges(lines []string, prev *FileSnapshot) ([]LineClassification, []int) {
	classes := make([]LineClassification, 0, len(lines))

	if prev == nil {
		for i, text := range lines {
			classes = append(classes, LineClassification{
				Line:   i + 1,
				Status: LineNew,
				Digest: HashLine(text),
			})
		}
		return classes, nil
	}

	byDigest := make(map[string][]int, len(prev.Lines))
	for lineNo, entry := range prev.Lines {
		byDigest[entry.ContentHash] = append(byDigest[entry.ContentHash], lineNo)
	}
	for _, nums := range byDigest {
		sort.Ints(nums)
	}

	claimed := make(map[int]bool, len(prev.Lines))
	for i, text := range lines {
		class := LineClassification{Line: i + 1, Status: LineNew, Digest: HashLine(text)}
		for _, prevNo := range byDigest[class.Digest] {
			if !claimed[prevNo] {
				claimed[prevNo] = true
				class.Status = LineUnchanged
				class.PrevLine = prevNo
				break
			}
		}
		classes = append(classes, class)
	}

	var deleted []int
	for lineNo := range prev.Lines {
		if !claimed[lineNo] {
			deleted = append(deleted, lineNo)
		}
	}
	sort.Ints(deleted)
	return classes, deleted
}

// DetectSegmentChanges splits the current segments into cached (digest
// present in prev) and fresh. Matching is purely by content digest: a
// segment that reappears verbatim anywhere in the document is recognized
// regardless of position.
func DetectSegmentChanges(segs []Segment, prev *FileSnapshot) (cached, fresh []Segment) {
	for _, seg := range segs {
		if prev != nil {
			if _, ok := prev.Segments[seg.Digest()]; ok {
				cached = append(cached, seg)
				continue
			}
		}
		fresh = append(fresh, seg)
	}
	return cached, fresh
}
