package review

import (
	"crypto/sha256"
	"fmt"

	"github.com/dshills/redline/internal/cache"
)

// Severity represents the severity level of an issue.
type Severity string

const (
	SeverityNote    Severity = "note"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// SeverityRank returns a numeric rank for sorting (higher = more severe).
func SeverityRank(s Severity) int {
	switch s {
	case SeverityError:
		return 3
	case SeverityWarning:
		return 2
	case SeverityNote:
		return 1
	default:
		return 0
	}
}

// MeetsThreshold returns true if severity is at or above the threshold.
func MeetsThreshold(s Severity, threshold string) bool {
	if threshold == "none" || threshold == "" {
		return false
	}
	return SeverityRank(s) >= SeverityRank(Severity(threshold))
}

// Issue type names shared by checkers and the LLM reviewer.
const (
	TypeSpelling    = "spelling"
	TypeGrammar     = "grammar"
	TypeStyle       = "style"
	TypeLayout      = "layout"
	TypeTypography  = "typography"
	TypeClarity     = "clarity"
	TypeConsistency = "consistency"
	TypeToolFailure = "tool_failure"
)

// Adjudication verdicts recorded on LLM-screened issues.
const (
	AdjudicationAccepted = "accepted"
	AdjudicationRejected = "rejected"
)

// Issue represents a single finding placed at its current location in a
// document.
type Issue struct {
	ID           string   `json:"id"`
	Tool         string   `json:"tool"`
	Type         string   `json:"type"`
	File         string   `json:"file"`
	Line         int      `json:"line"`
	Col          int      `json:"col,omitempty"`
	Severity     Severity `json:"severity"`
	Message      string   `json:"message"`
	Code         string   `json:"code,omitempty"`
	Suggestion   string   `json:"suggestion,omitempty"`
	Adjudication string   `json:"adjudication,omitempty"`
}

// InputInfo describes what was reviewed.
type InputInfo struct {
	Mode     string   `json:"mode"`
	Paths    []string `json:"paths,omitempty"`
	Checkers []string `json:"checkers,omitempty"`
	Provider string   `json:"provider,omitempty"`
	Model    string   `json:"model,omitempty"`
}

// SeverityCounts holds counts by severity level.
type SeverityCounts struct {
	Errors   int `json:"errors"`
	Warnings int `json:"warnings"`
	Notes    int `json:"notes"`
}

// Summary provides an overview of issues.
type Summary struct {
	Counts          SeverityCounts `json:"counts"`
	HighestSeverity Severity       `json:"highestSeverity"`
	Suppressed      int            `json:"suppressed,omitempty"`
}

// CacheStats reports how much work the incremental cache avoided.
type CacheStats struct {
	FilesChecked     int `json:"filesChecked"`
	FilesUnchanged   int `json:"filesUnchanged"`
	LinesChecked     int `json:"linesChecked"`
	LinesCached      int `json:"linesCached"`
	SegmentsReviewed int `json:"segmentsReviewed"`
	SegmentsCached   int `json:"segmentsCached"`
}

// Timing contains performance metrics.
type Timing struct {
	CheckMs int64 `json:"checkMs"`
	LLMMs   int64 `json:"llmMs"`
	TotalMs int64 `json:"totalMs"`
}

// Report is the top-level output structure.
type Report struct {
	Tool    string     `json:"tool"`
	Version string     `json:"version"`
	RunID   string     `json:"runId"`
	Inputs  InputInfo  `json:"inputs"`
	Summary Summary    `json:"summary"`
	Issues  []Issue    `json:"issues"`
	Cache   CacheStats `json:"cache"`
	Timing  Timing     `json:"timing"`
	Compare *Compare   `json:"compare,omitempty"`
}

// ComputeSummary calculates the summary from issues. Rejected issues are
// excluded from the counts.
func ComputeSummary(issues []Issue) Summary {
	var s Summary
	for _, iss := range issues {
		if iss.Adjudication == AdjudicationRejected {
			continue
		}
		switch iss.Severity {
		case SeverityError:
			s.Counts.Errors++
		case SeverityWarning:
			s.Counts.Warnings++
		case SeverityNote:
			s.Counts.Notes++
		}
		if SeverityRank(iss.Severity) > SeverityRank(s.HighestSeverity) {
			s.HighestSeverity = iss.Severity
		}
	}
	return s
}

// toRecord strips location from an issue for persistence. The enclosing
// line or segment entry carries the position.
func toRecord(iss Issue) cache.IssueRecord {
	return cache.IssueRecord{
		Tool:         iss.Tool,
		Type:         iss.Type,
		Col:          iss.Col,
		Severity:     string(iss.Severity),
		Message:      iss.Message,
		Code:         iss.Code,
		Suggestion:   iss.Suggestion,
		Adjudication: iss.Adjudication,
	}
}

// fromRecord places a persisted record back at its current location.
func fromRecord(file string, line int, rec cache.IssueRecord) Issue {
	iss := Issue{
		Tool:         rec.Tool,
		Type:         rec.Type,
		File:         file,
		Line:         line,
		Col:          rec.Col,
		Severity:     Severity(rec.Severity),
		Message:      rec.Message,
		Code:         rec.Code,
		Suggestion:   rec.Suggestion,
		Adjudication: rec.Adjudication,
	}
	iss.ID = generateIssueID(iss)
	return iss
}

func generateIssueID(iss Issue) string {
	data := fmt.Sprintf("%s:%s:%s:%d:%s", iss.Tool, iss.Type, iss.File, iss.Line, iss.Message)
	h := sha256.Sum256([]byte(data))
	return fmt.Sprintf("%x", h[:8])
}
