package checkers

import (
	"context"
	"encoding/json"
	"fmt"
	"os/exec"

	"github.com/dshills/redline/internal/cache"
	"github.com/dshills/redline/internal/review"
)

// Vale runs prose style checks.
type Vale struct {
	binary string
	config string
}

// NewVale creates the vale checker. config is an optional vale.ini path.
func NewVale(binary, config string) *Vale {
	return &Vale{binary: binaryOr(binary, "vale"), config: config}
}

func (v *Vale) Name() string    { return "vale" }
func (v *Vale) Available() bool { return installed(v.binary) }

func (v *Vale) Check(ctx context.Context, doc cache.Document, lines []int) ([]review.Issue, error) {
	// --no-exit keeps the exit code zero even when alerts are found.
	args := []string{"--no-exit", "--output=JSON"}
	if v.config != "" {
		args = append(args, "--config="+v.config)
	}
	args = append(args, doc.Path)

	out, err := toolOutput(exec.CommandContext(ctx, v.binary, args...))
	if err != nil {
		return nil, fmt.Errorf("running %s: %w", v.binary, err)
	}
	return parseVale(doc.Path, out, lineSet(lines))
}

type valeAlert struct {
	Check    string `json:"Check"`
	Line     int    `json:"Line"`
	Span     []int  `json:"Span"`
	Severity string `json:"Severity"`
	Message  string `json:"Message"`
}

func parseVale(path, out string, want map[int]bool) ([]review.Issue, error) {
	var byFile map[string][]valeAlert
	if err := json.Unmarshal([]byte(out), &byFile); err != nil {
		return nil, fmt.Errorf("parsing vale output: %w", err)
	}

	var issues []review.Issue
	for _, alerts := range byFile {
		for _, alert := range alerts {
			if !want[alert.Line] {
				continue
			}
			col := 0
			if len(alert.Span) > 0 {
				col = alert.Span[0]
			}
			issues = append(issues, review.Issue{
				Tool:     "vale",
				Type:     review.TypeStyle,
				File:     path,
				Line:     alert.Line,
				Col:      col,
				Severity: valeSeverity(alert.Severity),
				Message:  alert.Message,
				Code:     alert.Check,
			})
		}
	}
	return issues, nil
}

func valeSeverity(s string) review.Severity {
	switch s {
	case "error":
		return review.SeverityError
	case "suggestion":
		return review.SeverityNote
	default:
		return review.SeverityWarning
	}
}
