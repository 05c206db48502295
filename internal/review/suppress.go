package review

import (
	"regexp"

	"github.com/dshills/redline/internal/cache"
)

var directiveRE = regexp.MustCompile(`%\s*redline:\s*(ignore-next-line|ignore-start|ignore-end|ignore-file)(?:[ \t]+(\S+))?`)

// Suppressions holds the ignore directives parsed from one document.
//
// Directives are LaTeX comments: "% redline: ignore-next-line",
// "% redline: ignore-start" / "% redline: ignore-end" for a range, and
// "% redline: ignore-file". Each may name a tool as a final word to
// scope the suppression to that tool only.
//
// Suppression is applied to the merged result just before reporting, so
// suppressed findings stay in the snapshot and reappear when the
// directive is removed, without any tool rerun.
type Suppressions struct {
	fileAll   bool
	fileTools map[string]bool
	lines     map[int]map[string]bool
}

// ParseSuppressions scans a document for ignore directives.
func ParseSuppressions(doc cache.Document) *Suppressions {
	s := &Suppressions{
		fileTools: make(map[string]bool),
		lines:     make(map[int]map[string]bool),
	}

	mark := func(line int, tool string) {
		set := s.lines[line]
		if set == nil {
			set = make(map[string]bool)
			s.lines[line] = set
		}
		set[tool] = true
	}

	active := make(map[string]bool)
	for i, raw := range doc.Lines {
		lineNo := i + 1
		for tool := range active {
			mark(lineNo, tool)
		}

		m := directiveRE.FindStringSubmatch(raw)
		if m == nil {
			continue
		}
		tool := m[2]
		switch m[1] {
		case "ignore-next-line":
			mark(lineNo+1, tool)
		case "ignore-start":
			active[tool] = true
		case "ignore-end":
			if tool != "" {
				delete(active, tool)
			} else {
				active = make(map[string]bool)
			}
		case "ignore-file":
			if tool == "" {
				s.fileAll = true
			} else {
				s.fileTools[tool] = true
			}
		}
	}
	return s
}

// Suppressed reports whether an issue from tool at the given line is
// covered by a directive.
func (s *Suppressions) Suppressed(line int, tool string) bool {
	if s.fileAll || s.fileTools[tool] {
		return true
	}
	set := s.lines[line]
	if set == nil {
		return false
	}
	return set[""] || set[tool]
}

// Apply drops suppressed issues, returning the kept slice and the count
// dropped.
func (s *Suppressions) Apply(issues []Issue) ([]Issue, int) {
	kept := issues[:0:0]
	dropped := 0
	for _, iss := range issues {
		if s.Suppressed(iss.Line, iss.Tool) {
			dropped++
			continue
		}
		kept = append(kept, iss)
	}
	return kept, dropped
}
