package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/dshills/redline/internal/cache"
	"github.com/dshills/redline/internal/checkers"
	"github.com/dshills/redline/internal/config"
	"github.com/dshills/redline/internal/docfind"
	"github.com/dshills/redline/internal/history"
	"github.com/dshills/redline/internal/output"
	"github.com/dshills/redline/internal/providers"
	"github.com/dshills/redline/internal/review"
)

// Shared review flags
var (
	flagFormat     string
	flagOut        string
	flagFailOn     string
	flagProvider   string
	flagModel      string
	flagJobs       int
	flagLLM        bool
	flagAdjudicate bool
	flagNoCache    bool
	flagFull       bool
	flagChanged    bool
	flagNoColor    bool
	flagQuiet      bool
	flagVerbose    bool
)

func addReviewFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&flagFormat, "format", "", "Output format (text, json, markdown, sarif)")
	cmd.Flags().StringVar(&flagOut, "out", "", "Output file path (default: stdout)")
	cmd.Flags().StringVar(&flagFailOn, "fail-on", "", "Fail on severity threshold (none, note, warning, error)")
	cmd.Flags().StringVar(&flagProvider, "provider", "", "LLM provider (ollama, openai, gemini)")
	cmd.Flags().StringVar(&flagModel, "model", "", "Model name")
	cmd.Flags().IntVar(&flagJobs, "jobs", 0, "Parallel document reviews")
	cmd.Flags().BoolVar(&flagLLM, "llm", false, "Enable the LLM review pass")
	cmd.Flags().BoolVar(&flagAdjudicate, "adjudicate", false, "Screen checker findings with the LLM")
	cmd.Flags().BoolVar(&flagNoCache, "no-cache", false, "Disable the review cache entirely")
	cmd.Flags().BoolVar(&flagFull, "full", false, "Ignore cached results but still write a fresh cache")
	cmd.Flags().BoolVar(&flagChanged, "changed", false, "Only review files git reports as modified")
	cmd.Flags().BoolVar(&flagNoColor, "no-color", false, "Disable colored text output")
	cmd.Flags().BoolVar(&flagQuiet, "quiet", false, "Suppress progress messages")
	cmd.Flags().BoolVar(&flagVerbose, "verbose", false, "Print progress detail")
}

func buildOverrides() map[string]string {
	m := make(map[string]string)
	if flagFormat != "" {
		m["format"] = flagFormat
	}
	if flagFailOn != "" {
		m["failOn"] = flagFailOn
	}
	if flagProvider != "" {
		m["provider"] = flagProvider
	}
	if flagModel != "" {
		m["model"] = flagModel
	}
	if flagJobs > 0 {
		m["jobs"] = fmt.Sprintf("%d", flagJobs)
	}
	return m
}

var reviewCmd = &cobra.Command{
	Use:   "review [paths...]",
	Short: "Review documents",
	Long:  "Review documents with the configured checkers and optional LLM pass. Explicit paths bypass discovery; --changed restricts discovery to files git reports as modified.",
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
				fmt.Fprintln(os.Stderr, "No documents to review.")
			}
			return nil
		}

		report, ok := runReview(cmd.Context(), paths, cfg, "files")
		if !ok {
			return nil
		}

		if err := output.WriteReport(report, cfg.Format, flagOut, output.Options{NoColor: flagNoColor}); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing output: %v\n", err)
			exitCode = ExitRuntimeError
			return nil
		}

		exitCode = exitFor(report.Summary, cfg.FailOn)
		return nil
	},
}

// runReview executes the engine and persists history. It returns false
// after setting the exit code when the run itself failed.
func runReview(ctx context.Context, paths []string, cfg config.Config, mode string) (*review.Report, bool) {
	if ctx == nil {
		ctx = context.Background()
	}

	opts, err := buildEngineOptions(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		exitCode = ExitConfigError
		return nil, false
	}
	opts.Mode = mode

	if flagVerbose && !flagQuiet {
		fmt.Fprintf(os.Stderr, "Reviewing %d document(s) with checkers %v\n", len(paths), cfg.EnabledCheckers())
	}

	report, err := review.Run(ctx, paths, opts)
	if err != nil {
		if providers.IsAuthError(err) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			exitCode = ExitConfigError
			return nil, false
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		exitCode = ExitRuntimeError
		return nil, false
	}

	persistHistory(ctx, cfg, report)
	return report, true
}

func resolvePaths(args []string, cfg config.Config) ([]string, error) {
	if len(args) > 0 {
		return args, nil
	}
	opts := docfind.Options{Include: cfg.Include, Exclude: cfg.Exclude}
	if flagChanged {
		return docfind.Changed(opts)
	}
	return docfind.Find(opts)
}

func buildEngineOptions(cfg config.Config) (review.Options, error) {
	opts := review.Options{
		Adjudicate:    cfg.LLM.Adjudicate || flagAdjudicate,
		FullCheck:     flagFull,
		MaxCacheAge:   time.Duration(cfg.Cache.MaxAgeDays) * 24 * time.Hour,
		PruneCache:    cfg.Cache.Prune,
		RedactSecrets: cfg.Privacy.RedactSecrets,
		RedactPaths:   cfg.Privacy.RedactPaths,
		Jobs:          cfg.Jobs,
		Version:       version,
	}

	chkCfg := checkers.Config{
		ChktexBinary:              cfg.Checkers.Chktex.Binary,
		ChktexRC:                  cfg.Checkers.Chktex.Config,
		ValeBinary:                cfg.Checkers.Vale.Binary,
		ValeConfig:                cfg.Checkers.Vale.Config,
		CodespellBinary:           cfg.Checkers.Codespell.Binary,
		LatexindentBinary:         cfg.Checkers.Latexindent.Binary,
		LanguageToolURL:           cfg.Checkers.LanguageTool.Server,
		LanguageToolLanguage:      cfg.Checkers.LanguageTool.Language,
		LanguageToolDisabledRules: cfg.Checkers.LanguageTool.DisabledRules,
	}
	for _, name := range cfg.EnabledCheckers() {
		chk, err := checkers.New(name, chkCfg)
		if err != nil {
			return opts, err
		}
		if !chk.Available() {
			if !flagQuiet {
				fmt.Fprintf(os.Stderr, "Warning: checker %s is not available, skipping\n", name)
			}
			continue
		}
		opts.Checkers = append(opts.Checkers, chk)
	}

	if cfg.LLM.Enabled || flagLLM {
		provider, err := providers.New(cfg.LLM.Provider, cfg.LLM.Model, cfg.LLM.BaseURL)
		if err != nil {
			return opts, fmt.Errorf("configuring LLM provider: %w", err)
		}
		opts.Provider = provider
		opts.ProviderName = cfg.LLM.Provider
		opts.Model = cfg.LLM.Model

		guide, err := review.LoadStyleGuide(cfg.StyleDir)
		if err != nil && !flagQuiet {
			fmt.Fprintf(os.Stderr, "Warning: loading style guide: %v\n", err)
		}
		opts.StyleGuide = guide
	}

	if cfg.Cache.Enabled && !flagNoCache {
		opts.CacheStore = cache.NewStore(cfg.Cache.File)
	}
	return opts, nil
}

// persistHistory saves the run when a DSN is configured. Failures warn
// and continue; history must never fail a review.
func persistHistory(ctx context.Context, cfg config.Config, report *review.Report) {
	if cfg.History.DSN == "" {
		return
	}
	store, err := history.Open(ctx, cfg.History.DSN)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v. Continuing without run history.\n", err)
		return
	}
	defer store.Close()
	if err := store.SaveRun(ctx, report); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: saving run history: %v\n", err)
	}
}

// exitFor maps the post-adjudication severity counts onto an exit code
// honoring the fail-on threshold.
func exitFor(summary review.Summary, failOn string) int {
	if failOn == "" || failOn == "none" {
		return ExitClean
	}
	if summary.Counts.Errors > 0 && review.MeetsThreshold(review.SeverityError, failOn) {
		return ExitErrorIssues
	}
	if summary.Counts.Warnings > 0 && review.MeetsThreshold(review.SeverityWarning, failOn) {
		return ExitWarningIssues
	}
	if summary.Counts.Notes > 0 && review.MeetsThreshold(review.SeverityNote, failOn) {
		return ExitWarningIssues
	}
	return ExitClean
}

func init() {
	addReviewFlags(reviewCmd)
}
