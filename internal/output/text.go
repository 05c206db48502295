package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/dshills/redline/internal/review"
)

// TextWriter outputs a human-readable text report.
type TextWriter struct {
	NoColor bool
}

const (
	ansiRed    = "\033[31m"
	ansiYellow = "\033[33m"
	ansiCyan   = "\033[36m"
	ansiReset  = "\033[0m"
)

func (t *TextWriter) Write(w io.Writer, report *review.Report) error {
	ew := &errWriter{w: w}

	counts := report.Summary.Counts
	_ = counts.Errors + counts.Warnings + counts.Notes

	ew.printf("redline review (%s mode)\n", report.Inputs.Mode)
	ew.println(strings.Repeat("─", 60))

	issues := displayIssues(report.Issues)
	if len(issues) == 0 {
		ew.println("No issues found. Looks good!")
	} else {
		lastFile := ""
		for _, iss := range issues {
			if iss.File != lastFile {
				if lastFile != "" {
					ew.println("")
				}
				ew.printf("%s\n", iss.File)
				lastFile = iss.File
			}
			loc := fmt.Sprintf("%d", iss.Line)
			if iss.Col > 0 {
				loc = fmt.Sprintf("%d:%d", iss.Line, iss.Col)
			}
			code := ""
			if iss.Code != "" {
				code = fmt.Sprintf(" [%s]", iss.Code)
			}
			ew.printf("  %-8s %-8s %-12s %s%s\n",
				loc, t.severity(iss.Severity), iss.Tool, iss.Message, code)
			if iss.Suggestion != "" {
				ew.printf("  %-8s suggestion: %s\n", "", iss.Suggestion)
			}
		}
	}

	ew.println(strings.Repeat("─", 60))
	ew.printf("%d errors, %d warnings, %d notes", counts.Errors, counts.Warnings, counts.Notes)
	if report.Summary.Suppressed > 0 {
		ew.printf(" (%d suppressed)", report.Summary.Suppressed)
	}
	ew.println("")

	cache := report.Cache
	if cache.FilesChecked > 0 {
		ew.printf("Cache: %d/%d files unchanged, %d lines checked, %d lines cached, %d segments reviewed, %d cached\n",
			cache.FilesUnchanged, cache.FilesChecked,
			cache.LinesChecked, cache.LinesCached,
			cache.SegmentsReviewed, cache.SegmentsCached)
	}
	if report.Compare != nil {
		ew.printf("Since last run: %d new, %d resolved\n", report.Compare.New, report.Compare.Resolved)
	}
	ew.printf("Completed in %dms (checkers: %dms, LLM: %dms)\n",
		report.Timing.TotalMs, report.Timing.CheckMs, report.Timing.LLMMs)

	return ew.err
}

func (t *TextWriter) severity(s review.Severity) string {
	if t.NoColor {
		return string(s)
	}
	switch s {
	case review.SeverityError:
		return ansiRed + string(s) + ansiReset
	case review.SeverityWarning:
		return ansiYellow + string(s) + ansiReset
	case review.SeverityNote:
		return ansiCyan + string(s) + ansiReset
	default:
		return string(s)
	}
}

// errWriter wraps an io.Writer and captures the first error.
type errWriter struct {
	w   io.Writer
	err error
}

func (ew *errWriter) printf(format string, args ...interface{}) {
	if ew.err != nil {
		return
	}
	_, ew.err = fmt.Fprintf(ew.w, format, args...)
}

func (ew *errWriter) println(s string) {
	if ew.err != nil {
		return
	}
	_, ew.err = fmt.Fprintln(ew.w, s)
}
