package checkers

import (
	"testing"

	"github.com/dshills/redline/internal/review"
)

func TestParseVale(t *testing.T) {
	out := `{
  "paper.tex": [
    {"Check": "Vale.Repetition", "Line": 4, "Span": [12, 18], "Severity": "error", "Message": "'the' is repeated"},
    {"Check": "write-good.Weasel", "Line": 9, "Span": [1, 7], "Severity": "suggestion", "Message": "'really' is a weasel word"},
    {"Check": "write-good.Passive", "Line": 20, "Span": [3, 14], "Severity": "warning", "Message": "passive voice"}
  ]
}`

	issues, err := parseVale("paper.tex", out, map[int]bool{4: true, 9: true})
	if err != nil {
		t.Fatalf("parseVale error: %v", err)
	}
	if len(issues) != 2 {
		t.Fatalf("issues = %d, want 2 (line 20 not requested)", len(issues))
	}

	byLine := map[int]review.Issue{}
	for _, iss := range issues {
		byLine[iss.Line] = iss
	}

	rep := byLine[4]
	if rep.Severity != review.SeverityError || rep.Col != 12 || rep.Code != "Vale.Repetition" {
		t.Errorf("repetition = %+v", rep)
	}
	weasel := byLine[9]
	if weasel.Severity != review.SeverityNote {
		t.Errorf("suggestion mapped to %q, want note", weasel.Severity)
	}
	if weasel.Tool != "vale" || weasel.Type != review.TypeStyle {
		t.Errorf("metadata = %+v", weasel)
	}
}

func TestParseVale_BadJSON(t *testing.T) {
	if _, err := parseVale("paper.tex", "E100 config error", map[int]bool{}); err == nil {
		t.Error("expected error for non-JSON output")
	}
}

func TestValeSeverity(t *testing.T) {
	tests := []struct {
		in   string
		want review.Severity
	}{
		{"error", review.SeverityError},
		{"warning", review.SeverityWarning},
		{"suggestion", review.SeverityNote},
		{"", review.SeverityWarning},
	}
	for _, tt := range tests {
		if got := valeSeverity(tt.in); got != tt.want {
			t.Errorf("valeSeverity(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
