package checkers

import (
	"context"
	"fmt"
	"os/exec"
	"regexp"
	"strconv"
	"strings"

	"github.com/dshills/redline/internal/cache"
	"github.com/dshills/redline/internal/review"
)

// chktexFormat makes the output unambiguous to parse: file, line, column,
// kind, warning number, message.
const chktexFormat = `%f:%l:%c:%k:%n:%m` + "\n"

var chktexLineRE = regexp.MustCompile(`^(.*?):(\d+):(\d+):(Warning|Error):(\d+):(.*)$`)

// Chktex lints LaTeX markup.
type Chktex struct {
	binary string
	rc     string
}

// NewChktex creates the chktex checker. rc is an optional chktexrc path.
func NewChktex(binary, rc string) *Chktex {
	return &Chktex{binary: binaryOr(binary, "chktex"), rc: rc}
}

func (c *Chktex) Name() string    { return "chktex" }
func (c *Chktex) Available() bool { return installed(c.binary) }

func (c *Chktex) Check(ctx context.Context, doc cache.Document, lines []int) ([]review.Issue, error) {
	args := []string{"-q", "-f" + chktexFormat}
	if c.rc != "" {
		args = append(args, "-l", c.rc)
	}
	args = append(args, doc.Path)

	out, err := toolOutput(exec.CommandContext(ctx, c.binary, args...))
	if err != nil {
		return nil, fmt.Errorf("running %s: %w", c.binary, err)
	}
	return parseChktex(doc.Path, out, lineSet(lines)), nil
}

func parseChktex(path, out string, want map[int]bool) []review.Issue {
	var issues []review.Issue
	for _, line := range strings.Split(out, "\n") {
		m := chktexLineRE.FindStringSubmatch(strings.TrimSpace(line))
		if m == nil {
			continue
		}
		lineNo, _ := strconv.Atoi(m[2])
		if !want[lineNo] {
			continue
		}
		col, _ := strconv.Atoi(m[3])
		severity := review.SeverityWarning
		if m[4] == "Error" {
			severity = review.SeverityError
		}
		issues = append(issues, review.Issue{
			Tool:     "chktex",
			Type:     review.TypeLayout,
			File:     path,
			Line:     lineNo,
			Col:      col,
			Severity: severity,
			Message:  strings.TrimSpace(m[6]),
			Code:     "chktex:" + m[5],
		})
	}
	return issues
}
