package checkers

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/dshills/redline/internal/cache"
	"github.com/dshills/redline/internal/review"
)

// Latexindent reports lines whose formatting differs from what
// latexindent would write.
type Latexindent struct {
	binary string
}

// NewLatexindent creates the latexindent checker.
func NewLatexindent(binary string) *Latexindent {
	return &Latexindent{binary: binaryOr(binary, "latexindent")}
}

func (l *Latexindent) Name() string    { return "latexindent" }
func (l *Latexindent) Available() bool { return installed(l.binary) }

func (l *Latexindent) Check(ctx context.Context, doc cache.Document, lines []int) ([]review.Issue, error) {
	if len(lines) == 0 {
		return nil, nil
	}

	// Run against a temp copy so the original is never touched and the
	// log files land somewhere disposable.
	tmpDir, err := os.MkdirTemp("", "redline-indent-*")
	if err != nil {
		return nil, fmt.Errorf("creating temp dir: %w", err)
	}
	defer os.RemoveAll(tmpDir)

	tmpFile := filepath.Join(tmpDir, filepath.Base(doc.Path))
	if err := os.WriteFile(tmpFile, []byte(doc.Content), 0o644); err != nil {
		return nil, fmt.Errorf("writing temp copy: %w", err)
	}

	out, err := toolOutput(exec.CommandContext(ctx, l.binary, "-s", "-c="+tmpDir, tmpFile))
	if err != nil {
		return nil, fmt.Errorf("running %s: %w", l.binary, err)
	}
	return indentIssues(doc, out, lineSet(lines)), nil
}

// indentIssues compares the document against latexindent's output line by
// line. latexindent only adjusts whitespace within lines by default, so a
// positional comparison holds; if it ever changed the line count the
// trailing lines are simply not compared.
func indentIssues(doc cache.Document, formatted string, want map[int]bool) []review.Issue {
	formattedLines := strings.Split(strings.TrimSuffix(formatted, "\n"), "\n")

	var issues []review.Issue
	for i, text := range doc.Lines {
		n := i + 1
		if !want[n] || i >= len(formattedLines) {
			continue
		}
		if text == formattedLines[i] {
			continue
		}
		issues = append(issues, review.Issue{
			Tool:       "latexindent",
			Type:       review.TypeLayout,
			File:       doc.Path,
			Line:       n,
			Severity:   review.SeverityNote,
			Message:    "not formatted as latexindent would write it",
			Suggestion: formattedLines[i],
		})
	}
	return issues
}
