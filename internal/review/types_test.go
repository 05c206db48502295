package review

import (
	"testing"

	"github.com/dshills/redline/internal/cache"
)

func TestSeverityRank(t *testing.T) {
	tests := []struct {
		severity Severity
		want     int
	}{
		{SeverityError, 3},
		{SeverityWarning, 2},
		{SeverityNote, 1},
		{Severity("bogus"), 0},
		{Severity(""), 0},
	}
	for _, tt := range tests {
		if got := SeverityRank(tt.severity); got != tt.want {
			t.Errorf("SeverityRank(%q) = %d, want %d", tt.severity, got, tt.want)
		}
	}
}

func TestMeetsThreshold(t *testing.T) {
	tests := []struct {
		severity  Severity
		threshold string
		want      bool
	}{
		{SeverityError, "error", true},
		{SeverityWarning, "error", false},
		{SeverityWarning, "warning", true},
		{SeverityError, "warning", true},
		{SeverityNote, "warning", false},
		{SeverityNote, "note", true},
		{SeverityError, "none", false},
		{SeverityError, "", false},
	}
	for _, tt := range tests {
		if got := MeetsThreshold(tt.severity, tt.threshold); got != tt.want {
			t.Errorf("MeetsThreshold(%q, %q) = %v, want %v", tt.severity, tt.threshold, got, tt.want)
		}
	}
}

func TestComputeSummary(t *testing.T) {
	issues := []Issue{
		{Severity: SeverityError},
		{Severity: SeverityWarning},
		{Severity: SeverityWarning},
		{Severity: SeverityNote},
	}
	s := ComputeSummary(issues)
	if s.Counts.Errors != 1 || s.Counts.Warnings != 2 || s.Counts.Notes != 1 {
		t.Errorf("Counts = %+v, want 1/2/1", s.Counts)
	}
	if s.HighestSeverity != SeverityError {
		t.Errorf("HighestSeverity = %q, want error", s.HighestSeverity)
	}
}

func TestComputeSummary_SkipsRejected(t *testing.T) {
	issues := []Issue{
		{Severity: SeverityError, Adjudication: AdjudicationRejected},
		{Severity: SeverityNote},
	}
	s := ComputeSummary(issues)
	if s.Counts.Errors != 0 {
		t.Errorf("Rejected error counted: %+v", s.Counts)
	}
	if s.HighestSeverity != SeverityNote {
		t.Errorf("HighestSeverity = %q, want note", s.HighestSeverity)
	}
}

func TestComputeSummary_Empty(t *testing.T) {
	s := ComputeSummary(nil)
	if s.Counts != (SeverityCounts{}) {
		t.Errorf("Counts = %+v, want zero", s.Counts)
	}
	if s.HighestSeverity != "" {
		t.Errorf("HighestSeverity = %q, want empty", s.HighestSeverity)
	}
}

func TestRecordRoundTrip(t *testing.T) {
	iss := Issue{
		Tool:         "chktex",
		Type:         TypeLayout,
		File:         "a.tex",
		Line:         12,
		Col:          3,
		Severity:     SeverityWarning,
		Message:      "Command terminated with space",
		Code:         "1",
		Suggestion:   "use {}",
		Adjudication: AdjudicationAccepted,
	}

	rec := toRecord(iss)
	if rec.Tool != "chktex" || rec.Col != 3 || rec.Severity != "warning" {
		t.Errorf("toRecord = %+v", rec)
	}

	back := fromRecord("a.tex", 12, rec)
	if back.ID == "" {
		t.Error("fromRecord did not assign an ID")
	}
	back.ID = ""
	iss.ID = ""
	if back != iss {
		t.Errorf("round trip mismatch:\n got %+v\nwant %+v", back, iss)
	}
}

func TestGenerateIssueID_Stable(t *testing.T) {
	rec := cache.IssueRecord{Tool: "vale", Type: "style", Severity: "note", Message: "wordy"}
	a := fromRecord("a.tex", 4, rec)
	b := fromRecord("a.tex", 4, rec)
	if a.ID != b.ID {
		t.Errorf("IDs differ for identical issues: %q vs %q", a.ID, b.ID)
	}
	c := fromRecord("a.tex", 5, rec)
	if a.ID == c.ID {
		t.Error("IDs identical for different lines")
	}
}

func TestSortIssues(t *testing.T) {
	issues := []Issue{
		{File: "b.tex", Line: 1},
		{File: "a.tex", Line: 9},
		{File: "a.tex", Line: 2, Col: 7},
		{File: "a.tex", Line: 2, Col: 1},
	}
	SortIssues(issues)
	if issues[0].File != "a.tex" || issues[0].Line != 2 || issues[0].Col != 1 {
		t.Errorf("first = %+v", issues[0])
	}
	if issues[3].File != "b.tex" {
		t.Errorf("last = %+v", issues[3])
	}
}
