package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/dshills/redline/internal/review"
)

// MarkdownWriter outputs a PR-comment-friendly markdown report.
type MarkdownWriter struct{}

func (m *MarkdownWriter) Write(w io.Writer, report *review.Report) error {
	counts := report.Summary.Counts
	total := counts.Errors + counts.Warnings + counts.Notes

	fmt.Fprintf(w, "## Redline Document Review\n\n")

	fmt.Fprintf(w, "| Severity | Count |\n")
	fmt.Fprintf(w, "|----------|-------|\n")
	fmt.Fprintf(w, "| Error    | %d    |\n", counts.Errors)
	fmt.Fprintf(w, "| Warning  | %d    |\n", counts.Warnings)
	fmt.Fprintf(w, "| Note     | %d    |\n", counts.Notes)
	fmt.Fprintf(w, "| **Total** | **%d** |\n\n", total)

	issues := displayIssues(report.Issues)
	if len(issues) == 0 {
		fmt.Fprintln(w, "No issues found. :white_check_mark:")
		return nil
	}

	// Collapsible section per file, issues already sorted by line.
	for _, group := range groupByFile(issues) {
		icon := mdSeverityIcon(highestSeverity(group.issues))
		fmt.Fprintf(w, "<details>\n<summary>%s %s (%d)</summary>\n\n", icon, group.file, len(group.issues))

		for _, iss := range group.issues {
			fmt.Fprintf(w, "**`%s:%d`** | %s | %s | %s\n\n",
				iss.File, iss.Line, iss.Tool, iss.Type, strings.ToUpper(string(iss.Severity)))
			fmt.Fprintf(w, "%s\n\n", iss.Message)
			if iss.Suggestion != "" {
				fmt.Fprintf(w, "**Suggestion:**\n\n> %s\n\n", strings.ReplaceAll(iss.Suggestion, "\n", "\n> "))
			}
			fmt.Fprintf(w, "---\n\n")
		}

		fmt.Fprintf(w, "</details>\n\n")
	}

	fmt.Fprintf(w, "*Reviewed in %dms (checkers: %dms, LLM: %dms)*\n",
		report.Timing.TotalMs, report.Timing.CheckMs, report.Timing.LLMMs)

	return nil
}

type fileGroup struct {
	file   string
	issues []review.Issue
}

// groupByFile buckets issues by path, preserving the report's file order.
func groupByFile(issues []review.Issue) []fileGroup {
	index := make(map[string]int)
	var groups []fileGroup
	for _, iss := range issues {
		i, ok := index[iss.File]
		if !ok {
			i = len(groups)
			index[iss.File] = i
			groups = append(groups, fileGroup{file: iss.File})
		}
		groups[i].issues = append(groups[i].issues, iss)
	}
	return groups
}

func highestSeverity(issues []review.Issue) review.Severity {
	var highest review.Severity
	for _, iss := range issues {
		if review.SeverityRank(iss.Severity) > review.SeverityRank(highest) {
			highest = iss.Severity
		}
	}
	return highest
}

func mdSeverityIcon(s review.Severity) string {
	switch s {
	case review.SeverityError:
		return ":red_circle:"
	case review.SeverityWarning:
		return ":orange_circle:"
	case review.SeverityNote:
		return ":yellow_circle:"
	default:
		return ":white_circle:"
	}
}
