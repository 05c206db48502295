package fixer

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dshills/redline/internal/review"
)

func writeDoc(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "doc.tex")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	return path
}

func readDoc(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	return string(data)
}

func TestSafe(t *testing.T) {
	tests := []struct {
		name     string
		original string
		fixed    string
		want     bool
	}{
		{"simple typo", "This is teh result.", "This is the result.", true},
		{"identical", "No change.", "No change.", false},
		{"empty fix", "Something.", "", false},
		{"multiline fix", "One line.", "Two\nlines.", false},
		{"markup line", `\section{Results}`, `\section{Result}`, false},
		{"brace imbalance", `The value \emph{rises}.`, `The value \emph{rises.`, false},
		{"math imbalance", "Let $x$ be small.", "Let $x be small.", false},
		{"command swapped", `See \ref{fig}.`, `See \cite{fig}.`, false},
		{"comment introduced", "Plain text.", "Plain % text.", false},
		{"rewrite too far", "The cat sat on the mat.", "A completely different sentence entirely.", false},
		{"within command args", `We use \emph{teh} method.`, `We use \emph{the} method.`, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Safe(tt.original, tt.fixed); got != tt.want {
				t.Errorf("Safe(%q, %q) = %v, want %v", tt.original, tt.fixed, got, tt.want)
			}
		})
	}
}

func TestSimilarity(t *testing.T) {
	if s := Similarity("abc", "abc"); s != 1 {
		t.Errorf("identical similarity = %v, want 1", s)
	}
	if s := Similarity("kitten", "sitting"); s < 0.5 || s > 0.6 {
		t.Errorf("kitten/sitting similarity = %v, want ~0.57", s)
	}
	if s := Similarity("", ""); s != 1 {
		t.Errorf("empty similarity = %v, want 1", s)
	}
}

func TestFixable(t *testing.T) {
	issues := []review.Issue{
		{Tool: "codespell", File: "a.tex", Line: 1, Suggestion: "fixed"},
		{Tool: "languagetool", File: "a.tex", Line: 2, Suggestion: "fixed"},
		{Tool: "chktex", File: "a.tex", Line: 3, Suggestion: "fixed"},
		{Tool: "chktex", File: "a.tex", Line: 4, Suggestion: "fixed",
			Adjudication: review.AdjudicationAccepted},
		{Tool: "codespell", File: "a.tex", Line: 5, Suggestion: "fixed",
			Adjudication: review.AdjudicationRejected},
		{Tool: "codespell", File: "a.tex", Line: 6},
		{Tool: "codespell", File: "b.tex", Line: 1, Suggestion: "fixed"},
	}

	byFile := Fixable(issues)
	if len(byFile["a.tex"]) != 3 {
		t.Errorf("a.tex fixable = %d, want 3 (two tools + one accepted)", len(byFile["a.tex"]))
	}
	if len(byFile["b.tex"]) != 1 {
		t.Errorf("b.tex fixable = %d, want 1", len(byFile["b.tex"]))
	}
}

func TestApplyBottomUp(t *testing.T) {
	path := writeDoc(t, "First teh line.\nSecond teh line.\nThird line.\n")
	issues := []review.Issue{
		{Tool: "codespell", File: path, Line: 1, Suggestion: "First the line."},
		{Tool: "codespell", File: path, Line: 2, Suggestion: "Second the line."},
	}

	res, err := Apply(path, issues, false)
	if err != nil {
		t.Fatalf("Apply error: %v", err)
	}
	if res.Applied != 2 {
		t.Errorf("Applied = %d, want 2", res.Applied)
	}

	got := readDoc(t, path)
	want := "First the line.\nSecond the line.\nThird line.\n"
	if got != want {
		t.Errorf("content:\n%q\nwant:\n%q", got, want)
	}
}

func TestApplySkipsUnsafe(t *testing.T) {
	original := "The result \\emph{is} clear.\n"
	path := writeDoc(t, original)
	issues := []review.Issue{
		{Tool: "codespell", File: path, Line: 1, Suggestion: "Totally rewritten sentence without markup."},
	}

	res, err := Apply(path, issues, false)
	if err != nil {
		t.Fatalf("Apply error: %v", err)
	}
	if res.Applied != 0 || res.Skipped != 1 {
		t.Errorf("Applied = %d, Skipped = %d, want 0/1", res.Applied, res.Skipped)
	}
	if readDoc(t, path) != original {
		t.Error("unsafe fix should leave the file untouched")
	}
}

func TestApplyDryRun(t *testing.T) {
	original := "This is teh result.\n"
	path := writeDoc(t, original)
	issues := []review.Issue{
		{Tool: "codespell", File: path, Line: 1, Suggestion: "This is the result."},
	}

	res, err := Apply(path, issues, true)
	if err != nil {
		t.Fatalf("Apply error: %v", err)
	}
	if res.Applied != 1 {
		t.Errorf("Applied = %d, want 1", res.Applied)
	}
	if readDoc(t, path) != original {
		t.Error("dry run must not modify the file")
	}
}

func TestApplyOutOfRangeLine(t *testing.T) {
	path := writeDoc(t, "Only line.\n")
	issues := []review.Issue{
		{Tool: "codespell", File: path, Line: 9, Suggestion: "Whatever."},
	}
	res, err := Apply(path, issues, false)
	if err != nil {
		t.Fatalf("Apply error: %v", err)
	}
	if res.Applied != 0 || res.Skipped != 1 {
		t.Errorf("Applied = %d, Skipped = %d, want 0/1", res.Applied, res.Skipped)
	}
}

func TestAnnotateInsertsComments(t *testing.T) {
	path := writeDoc(t, "  Indented teh sentence.\nClean line.\n")
	issues := []review.Issue{
		{Tool: "llm", Type: review.TypeClarity, File: path, Line: 1,
			Severity: review.SeverityNote, Message: "Hard to follow phrasing."},
	}

	res, err := Annotate(path, issues, false)
	if err != nil {
		t.Fatalf("Annotate error: %v", err)
	}
	if res.Applied != 1 {
		t.Errorf("Applied = %d, want 1", res.Applied)
	}

	got := strings.Split(readDoc(t, path), "\n")
	if !strings.HasPrefix(strings.TrimSpace(got[0]), annotationPrefix) {
		t.Errorf("first line should be an annotation, got %q", got[0])
	}
	if !strings.HasPrefix(got[0], "  ") {
		t.Errorf("annotation should keep the flagged line's indent, got %q", got[0])
	}
	if got[1] != "  Indented teh sentence." {
		t.Errorf("flagged line should be unchanged, got %q", got[1])
	}
}

func TestAnnotateReplacesPriorAnnotations(t *testing.T) {
	content := annotationPrefix + " llm note: Old comment.\nThe sentence.\n"
	path := writeDoc(t, content)
	// Line 2 in the annotated file is the sentence.
	issues := []review.Issue{
		{Tool: "llm", Type: review.TypeClarity, File: path, Line: 2,
			Severity: review.SeverityNote, Message: "New comment."},
	}

	if _, err := Annotate(path, issues, false); err != nil {
		t.Fatalf("Annotate error: %v", err)
	}

	got := readDoc(t, path)
	if strings.Contains(got, "Old comment.") {
		t.Error("stale annotation should be removed")
	}
	if !strings.Contains(got, "New comment.") {
		t.Error("new annotation should be present")
	}
	if strings.Count(got, annotationPrefix) != 1 {
		t.Errorf("annotations should not stack:\n%s", got)
	}
}

func TestAnnotatePreservesSuppressionDirectives(t *testing.T) {
	content := "% redline: ignore-next-line\nNoisy line.\nFlagged line.\n"
	path := writeDoc(t, content)
	issues := []review.Issue{
		{Tool: "llm", Type: review.TypeStyle, File: path, Line: 3,
			Severity: review.SeverityNote, Message: "Wordy."},
	}

	if _, err := Annotate(path, issues, false); err != nil {
		t.Fatalf("Annotate error: %v", err)
	}
	if !strings.Contains(readDoc(t, path), "% redline: ignore-next-line") {
		t.Error("suppression directives must survive annotation")
	}
}
