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

// Output format: filename:line: typo ==> correction
var codespellLineRE = regexp.MustCompile(`^(.*?):(\d+):\s+(.*)$`)

// Codespell detects common misspellings.
type Codespell struct {
	binary string
}

// NewCodespell creates the codespell checker.
func NewCodespell(binary string) *Codespell {
	return &Codespell{binary: binaryOr(binary, "codespell")}
}

func (c *Codespell) Name() string    { return "codespell" }
func (c *Codespell) Available() bool { return installed(c.binary) }

func (c *Codespell) Check(ctx context.Context, doc cache.Document, lines []int) ([]review.Issue, error) {
	// codespell exits non-zero when typos are found; toolOutput tolerates
	// that as long as there is output to parse.
	out, err := toolOutput(exec.CommandContext(ctx, c.binary, doc.Path))
	if err != nil {
		return nil, fmt.Errorf("running %s: %w", c.binary, err)
	}
	return parseCodespell(doc, out, lineSet(lines)), nil
}

func parseCodespell(doc cache.Document, out string, want map[int]bool) []review.Issue {
	var issues []review.Issue
	for _, line := range strings.Split(out, "\n") {
		m := codespellLineRE.FindStringSubmatch(strings.TrimSpace(line))
		if m == nil {
			continue
		}
		lineNo, _ := strconv.Atoi(m[2])
		if !want[lineNo] {
			continue
		}
		issues = append(issues, review.Issue{
			Tool:       "codespell",
			Type:       review.TypeSpelling,
			File:       doc.Path,
			Line:       lineNo,
			Severity:   review.SeverityWarning,
			Message:    m[3],
			Suggestion: correctedLine(doc.Line(lineNo), m[3]),
		})
	}
	return issues
}

// correctedLine turns "typo ==> correction" into the full line with the
// first occurrence replaced, so the suggestion is directly applicable.
// codespell may offer alternatives ("==> the, tea"); the first is used.
func correctedLine(text, finding string) string {
	parts := strings.SplitN(finding, " ==> ", 2)
	if len(parts) != 2 || text == "" {
		return ""
	}
	typo := parts[0]
	correction := parts[1]
	if i := strings.Index(correction, ","); i >= 0 {
		correction = strings.TrimSpace(correction[:i])
	}
	if !strings.Contains(text, typo) {
		return ""
	}
	return strings.Replace(text, typo, correction, 1)
}
