package review

import (
	"context"

	"github.com/dshills/redline/internal/cache"
)

// Checker runs one line-oriented tool over a document. Implementations
// live in internal/checkers and are wired in by the CLI.
//
// Check receives the full document plus the 1-indexed lines that need
// fresh results. Checkers may return issues for other lines; the merge
// step discards them. A returned error means the tool itself failed and
// is reported as a single diagnostic issue, not a crash.
type Checker interface {
	Name() string
	Available() bool
	Check(ctx context.Context, doc cache.Document, lines []int) ([]Issue, error)
}
