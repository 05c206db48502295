package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dshills/redline/internal/config"
	"github.com/dshills/redline/internal/fixer"
	"github.com/dshills/redline/internal/review"
)

var (
	flagAnnotate bool
	flagDryRun   bool
)

var fixCmd = &cobra.Command{
	Use:   "fix [paths...]",
	Short: "Apply accepted suggestions to documents",
	Long:  "Re-review the documents (cheap when cached) and write accepted suggestions back in place. With --annotate, review comments are inserted above flagged lines instead of editing the text.",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(buildOverrides())
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			exitCode = ExitConfigError
			return nil
		}

		paths, err := resolvePaths(args, cfg)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			exitCode = ExitRuntimeError
			return nil
		}
		if len(paths) == 0 {
			if !flagQuiet {
				fmt.Fprintln(os.Stderr, "No documents to fix.")
			}
			return nil
		}

		report, ok := runReview(cmd.Context(), paths, cfg, "fix")
		if !ok {
			return nil
		}

		if flagAnnotate {
			annotateIssues(report.Issues)
			return nil
		}
		applyFixes(report.Issues)
		return nil
	},
}

func applyFixes(issues []review.Issue) {
	byFile := fixer.Fixable(issues)
	if len(byFile) == 0 {
		fmt.Fprintln(os.Stdout, "No fixable issues found.")
		return
	}
	for path, fileIssues := range byFile {
		res, err := fixer.Apply(path, fileIssues, flagDryRun)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error fixing %s: %v\n", path, err)
			exitCode = ExitRuntimeError
			continue
		}
		verb := "Applied"
		if flagDryRun {
			verb = "Would apply"
		}
		fmt.Fprintf(os.Stdout, "%s %d fix(es) to %s (%d skipped)\n", verb, res.Applied, path, res.Skipped)
	}
}

func annotateIssues(issues []review.Issue) {
	byDoc := make(map[string][]review.Issue)
	for _, iss := range issues {
		if iss.Tool == "llm" && iss.File != "" && iss.Line > 0 {
			byDoc[iss.File] = append(byDoc[iss.File], iss)
		}
	}
	if len(byDoc) == 0 {
		fmt.Fprintln(os.Stdout, "No LLM annotations to add.")
		return
	}
	for path, fileIssues := range byDoc {
		res, err := fixer.Annotate(path, fileIssues, flagDryRun)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error annotating %s: %v\n", path, err)
			exitCode = ExitRuntimeError
			continue
		}
		verb := "Added"
		if flagDryRun {
			verb = "Would add"
		}
		fmt.Fprintf(os.Stdout, "%s %d annotation(s) to %s\n", verb, res.Applied, path)
	}
}

func init() {
	addReviewFlags(fixCmd)
	fixCmd.Flags().BoolVar(&flagAnnotate, "annotate", false, "Insert review comments instead of editing text")
	fixCmd.Flags().BoolVar(&flagDryRun, "dry-run", false, "Report what would change without writing")
}
