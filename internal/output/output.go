package output

import (
	"fmt"
	"io"
	"os"

	"github.com/dshills/redline/internal/review"
)

// Writer writes a report in a specific format.
type Writer interface {
	Write(w io.Writer, report *review.Report) error
}

// Options adjust how some writers render.
type Options struct {
	NoColor bool
}

// GetWriter returns a writer for the specified format.
func GetWriter(format string, opts Options) (Writer, error) {
	switch format {
	case "text":
		return &TextWriter{NoColor: opts.NoColor}, nil
	case "json":
		return &JSONWriter{}, nil
	case "markdown":
		return &MarkdownWriter{}, nil
	case "sarif":
		return &SARIFWriter{}, nil
	default:
		return nil, fmt.Errorf("unsupported output format: %s", format)
	}
}

// WriteReport writes the report to the specified output (file path or
// stdout).
func WriteReport(report *review.Report, format, outPath string, opts Options) error {
	writer, err := GetWriter(format, opts)
	if err != nil {
		return err
	}

	var w io.Writer
	if outPath != "" {
		f, err := os.Create(outPath)
		if err != nil {
			return fmt.Errorf("creating output file: %w", err)
		}
		defer f.Close()
		w = f
	} else {
		w = os.Stdout
	}

	return writer.Write(w, report)
}

// displayIssues filters out issues an adjudication pass rejected. The
// JSON writer keeps them; every human-facing format hides them.
func displayIssues(issues []review.Issue) []review.Issue {
	kept := make([]review.Issue, 0, len(issues))
	for _, iss := range issues {
		if iss.Adjudication == review.AdjudicationRejected {
			continue
		}
		kept = append(kept, iss)
	}
	return kept
}
