package fixer

import (
	"fmt"
	"os"
	"regexp"
	"sort"
	"strings"

	"github.com/dshills/redline/internal/review"
)

// minSimilarity is the lowest normalized edit similarity a fixed line may
// have to its original. Anything below suggests the suggestion rewrote
// the line rather than correcting it.
const minSimilarity = 0.85

// annotationPrefix marks comment lines the annotator owns. Existing
// annotation lines are stripped before new ones are inserted, so repeated
// runs do not stack comments. The marker is distinct from the
// "% redline:" directive prefix so the cleanup pass can never eat a
// suppression comment.
const annotationPrefix = "% redline-review:"

var latexCommandRE = regexp.MustCompile(`\\[A-Za-z@]+`)

// fixableTools are the checkers whose suggestions are full corrected
// lines safe to write back. LLM suggestions attach to segment start
// lines, not the exact flagged line, so they are annotate-only.
var fixableTools = map[string]bool{
	"codespell":    true,
	"languagetool": true,
}

// Result summarizes what one Apply or Annotate call did to a document.
type Result struct {
	Path    string
	Applied int
	Skipped int
}

// Fixable filters issues down to those Apply can act on and groups them
// by document. Rejected issues and issues without a suggestion are
// dropped; issues an adjudication pass accepted qualify regardless of
// tool.
func Fixable(issues []review.Issue) map[string][]review.Issue {
	byFile := make(map[string][]review.Issue)
	for _, iss := range issues {
		if iss.Suggestion == "" || iss.File == "" || iss.Line <= 0 {
			continue
		}
		if iss.Adjudication == review.AdjudicationRejected {
			continue
		}
		if !fixableTools[iss.Tool] && iss.Adjudication != review.AdjudicationAccepted {
			continue
		}
		byFile[iss.File] = append(byFile[iss.File], iss)
	}
	return byFile
}

// Apply replaces flagged lines with their suggestions where the safety
// checks pass. Lines are edited bottom-up so earlier line numbers stay
// valid. With dryRun set, nothing is written and the result reports what
// would have happened.
func Apply(path string, issues []review.Issue, dryRun bool) (Result, error) {
	res := Result{Path: path}

	data, err := os.ReadFile(path)
	if err != nil {
		return res, fmt.Errorf("reading %s: %w", path, err)
	}
	lines, trailingNL := splitLines(string(data))

	byLine := make(map[int]review.Issue)
	for _, iss := range issues {
		if iss.Line < 1 || iss.Line > len(lines) {
			res.Skipped++
			continue
		}
		// One fix per line; first wins.
		if _, ok := byLine[iss.Line]; ok {
			res.Skipped++
			continue
		}
		byLine[iss.Line] = iss
	}

	nums := make([]int, 0, len(byLine))
	for n := range byLine {
		nums = append(nums, n)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(nums)))

	for _, n := range nums {
		iss := byLine[n]
		original := lines[n-1]
		if !Safe(original, iss.Suggestion) {
			res.Skipped++
			continue
		}
		lines[n-1] = iss.Suggestion
		res.Applied++
	}

	if res.Applied > 0 && !dryRun {
		if err := writeLines(path, lines, trailingNL); err != nil {
			return res, err
		}
	}
	return res, nil
}

// Annotate inserts a review comment above each flagged line instead of
// changing the text. Previously inserted annotations are removed first
// and the issue line numbers adjusted for the removals.
func Annotate(path string, issues []review.Issue, dryRun bool) (Result, error) {
	res := Result{Path: path}

	data, err := os.ReadFile(path)
	if err != nil {
		return res, fmt.Errorf("reading %s: %w", path, err)
	}
	lines, trailingNL := splitLines(string(data))

	// Count prior annotations above each original line so the issue's
	// line number can be mapped onto the stripped file.
	removedBefore := make([]int, len(lines))
	removed := 0
	var base []string
	for i, line := range lines {
		if isAnnotation(line) {
			removed++
		} else {
			base = append(base, line)
		}
		removedBefore[i] = removed
	}

	byLine := make(map[int][]review.Issue)
	for _, iss := range issues {
		if iss.Adjudication == review.AdjudicationRejected {
			res.Skipped++
			continue
		}
		if iss.Line < 1 || iss.Line > len(lines) {
			res.Skipped++
			continue
		}
		adjusted := iss.Line - removedBefore[iss.Line-1]
		if adjusted < 1 || adjusted > len(base) {
			res.Skipped++
			continue
		}
		byLine[adjusted] = append(byLine[adjusted], iss)
	}

	nums := make([]int, 0, len(byLine))
	for n := range byLine {
		nums = append(nums, n)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(nums)))

	for _, n := range nums {
		var comments []string
		for _, iss := range byLine[n] {
			comments = append(comments, formatAnnotation(base[n-1], iss))
			res.Applied++
		}
		base = append(base[:n-1], append(comments, base[n-1:]...)...)
	}

	if (res.Applied > 0 || removed > 0) && !dryRun {
		if err := writeLines(path, base, trailingNL); err != nil {
			return res, err
		}
	}
	return res, nil
}

// Safe reports whether replacing original with fixed preserves the
// markup-level structure of the line: same LaTeX commands, balanced
// braces and math delimiters, and a small enough edit distance that the
// fix is a correction, not a rewrite.
func Safe(original, fixed string) bool {
	fixed = strings.TrimRight(fixed, " \t")
	original = strings.TrimRight(original, " \t")
	if fixed == "" || fixed == original {
		return false
	}
	if strings.Contains(fixed, "\n") {
		return false
	}
	// Never touch lines that are pure markup.
	if strings.HasPrefix(strings.TrimSpace(original), "\\") {
		return false
	}
	if strings.Contains(fixed, "%") && !strings.Contains(original, "%") {
		return false
	}
	if strings.Count(original, "{") != strings.Count(fixed, "{") ||
		strings.Count(original, "}") != strings.Count(fixed, "}") {
		return false
	}
	if strings.Count(original, "$") != strings.Count(fixed, "$") {
		return false
	}
	if !sameCommands(original, fixed) {
		return false
	}
	if Similarity(original, fixed) < minSimilarity {
		return false
	}
	maxDelta := len(original) * 15 / 100
	if maxDelta < 10 {
		maxDelta = 10
	}
	if delta := len(fixed) - len(original); delta > maxDelta || -delta > maxDelta {
		return false
	}
	return true
}

// Similarity returns the normalized edit similarity of two strings in
// [0, 1], where 1 means identical.
func Similarity(a, b string) float64 {
	if a == b {
		return 1
	}
	longest := len(a)
	if len(b) > longest {
		longest = len(b)
	}
	if longest == 0 {
		return 1
	}
	return 1 - float64(levenshtein(a, b))/float64(longest)
}

// levenshtein computes edit distance with a two-row table.
func levenshtein(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	prev := make([]int, len(rb)+1)
	curr := make([]int, len(rb)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(ra); i++ {
		curr[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			curr[j] = min3(curr[j-1]+1, prev[j]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[len(rb)]
}

func min3(a, b, c int) int {
	if b < a {
		a = b
	}
	if c < a {
		a = c
	}
	return a
}

func sameCommands(a, b string) bool {
	ca := latexCommandRE.FindAllString(a, -1)
	cb := latexCommandRE.FindAllString(b, -1)
	if len(ca) != len(cb) {
		return false
	}
	for i := range ca {
		if ca[i] != cb[i] {
			return false
		}
	}
	return true
}

func isAnnotation(line string) bool {
	return strings.HasPrefix(strings.TrimSpace(line), annotationPrefix)
}

func formatAnnotation(flagged string, iss review.Issue) string {
	indent := flagged[:len(flagged)-len(strings.TrimLeft(flagged, " \t"))]
	msg := strings.Join(strings.Fields(iss.Message), " ")
	if len(msg) > 160 {
		msg = strings.TrimRight(msg[:159], " ") + "…"
	}
	return fmt.Sprintf("%s%s %s %s: %s", indent, annotationPrefix, iss.Tool, iss.Severity, msg)
}

func splitLines(content string) (lines []string, trailingNL bool) {
	trailingNL = strings.HasSuffix(content, "\n")
	if content == "" {
		return nil, false
	}
	return strings.Split(strings.TrimSuffix(content, "\n"), "\n"), trailingNL
}

func writeLines(path string, lines []string, trailingNL bool) error {
	content := strings.Join(lines, "\n")
	if trailingNL {
		content += "\n"
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
