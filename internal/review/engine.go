package review

import (
	"context"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/dshills/redline/internal/cache"
	"github.com/dshills/redline/internal/providers"
	"github.com/dshills/redline/internal/redact"
)

// defaultJobs limits parallel document reviews.
const defaultJobs = 4

// Options configures a review run. The CLI maps config onto this
// struct, so engine tests construct it directly.
type Options struct {
	Checkers      []Checker
	Provider      providers.Reviewer // nil disables LLM review
	ProviderName  string
	Model         string
	Adjudicate    bool
	CacheStore    *cache.Store // nil disables cache read and write
	FullCheck     bool         // ignore cache reads, still write
	MaxCacheAge   time.Duration
	PruneCache    bool
	RedactSecrets bool
	RedactPaths   []string // documents matching these globs skip LLM review
	Jobs          int
	StyleGuide    *StyleGuide
	Mode          string
	Version       string
}

// docResult is one document's contribution to the run.
type docResult struct {
	path       string
	issues     []Issue
	snap       *cache.FileSnapshot
	keepPrev   bool // unreadable this run: carry the old entry forward
	stats      CacheStats
	suppressed int
	checkMs    int64
	llmMs      int64
}

// Run reviews the given documents and produces a report. Checker and
// provider failures surface as diagnostic issues on the affected
// document, never as a failed run.
func Run(ctx context.Context, paths []string, opts Options) (*Report, error) {
	start := time.Now()

	jobs := opts.Jobs
	if jobs <= 0 {
		jobs = defaultJobs
	}

	var prev *cache.Snapshot
	if opts.CacheStore != nil {
		if snap, ok := opts.CacheStore.Load(); ok {
			if opts.MaxCacheAge <= 0 || !snap.Expired(opts.MaxCacheAge, time.Now()) {
				prev = snap
			}
		}
	}
	readPrev := prev
	if opts.FullCheck {
		readPrev = nil
	}

	results := make([]docResult, len(paths))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(jobs)
	for i, path := range paths {
		g.Go(func() error {
			res, err := reviewDocument(gctx, path, readPrev, opts)
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	next := cache.NewSnapshot()
	examined := make(map[string]bool, len(paths))
	var all []Issue
	var stats CacheStats
	var checkMs, llmMs int64
	suppressed := 0
	for _, r := range results {
		examined[r.path] = true
		all = append(all, r.issues...)
		addStats(&stats, r.stats)
		suppressed += r.suppressed
		checkMs += r.checkMs
		llmMs += r.llmMs
		switch {
		case r.snap != nil:
			next.Files[r.path] = r.snap
		case r.keepPrev && prev != nil:
			if fs := prev.Files[r.path]; fs != nil {
				next.Files[r.path] = fs
			}
		}
	}

	// Documents outside this run keep their entries.
	if prev != nil {
		for path, fs := range prev.Files {
			if !examined[path] {
				next.Files[path] = fs
			}
		}
	}
	if opts.PruneCache {
		next.Prune()
	}
	if opts.CacheStore != nil {
		if err := opts.CacheStore.Save(next); err != nil {
			return nil, fmt.Errorf("saving cache: %w", err)
		}
	}

	var cmp *Compare
	if prev != nil {
		cmp = CompareSnapshots(prev, next)
	}

	SortIssues(all)
	summary := ComputeSummary(all)
	summary.Suppressed = suppressed

	mode := opts.Mode
	if mode == "" {
		mode = "files"
	}
	version := opts.Version
	if version == "" {
		version = "dev"
	}

	return &Report{
		Tool:    "redline",
		Version: version,
		RunID:   uuid.New().String(),
		Inputs: InputInfo{
			Mode:     mode,
			Paths:    paths,
			Checkers: checkerNames(opts.Checkers),
			Provider: opts.ProviderName,
			Model:    opts.Model,
		},
		Summary: summary,
		Issues:  all,
		Cache:   stats,
		Timing: Timing{
			CheckMs: checkMs,
			LLMMs:   llmMs,
			TotalMs: time.Since(start).Milliseconds(),
		},
		Compare: cmp,
	}, nil
}

func reviewDocument(ctx context.Context, path string, prev *cache.Snapshot, opts Options) (docResult, error) {
	res := docResult{path: path}

	content, err := os.ReadFile(path)
	if err != nil {
		res.keepPrev = true
		res.issues = append(res.issues, toolFailure(path, "redline", fmt.Errorf("reading document: %w", err)))
		return res, nil
	}

	doc := cache.NewDocument(path, string(content))
	analysis := cache.Analyze(doc, prev)

	res.stats.FilesChecked = 1
	if analysis.FileUnchanged {
		res.stats.FilesUnchanged = 1
	}

	var diags []Issue

	needLines := analysis.NeedsCheck()
	freshLines := make(map[int][]cache.IssueRecord)
	if len(needLines) > 0 {
		checkStart := time.Now()
		for _, chk := range opts.Checkers {
			if err := ctx.Err(); err != nil {
				return res, err
			}
			issues, err := chk.Check(ctx, doc, needLines)
			if err != nil {
				diags = append(diags, toolFailure(path, chk.Name(), err))
				continue
			}
			for _, iss := range issues {
				freshLines[iss.Line] = append(freshLines[iss.Line], toRecord(iss))
			}
		}
		res.checkMs = time.Since(checkStart).Milliseconds()
	}

	segs := ExtractSegments(doc)
	toReview := analysis.NeedsReview(segs)
	needSeg := make(map[string]bool, len(toReview))
	for _, seg := range toReview {
		needSeg[seg.Digest()] = true
	}
	for _, seg := range segs {
		if !needSeg[seg.Digest()] {
			res.stats.SegmentsCached++
		}
	}

	freshSegs := make(map[string][]cache.IssueRecord)
	if opts.Provider != nil && !redact.PathPrivate(path, opts.RedactPaths) {
		for _, seg := range toReview {
			if err := ctx.Err(); err != nil {
				return res, err
			}
			recs, ms, err := reviewSegment(ctx, opts, seg)
			res.llmMs += ms
			if err != nil {
				diags = append(diags, toolFailure(path, "llm", err))
				continue
			}
			freshSegs[seg.Digest()] = recs
			res.stats.SegmentsReviewed++
		}
	}

	// Only segments with a cached or fresh result enter the snapshot; an
	// unreviewed segment must not look reviewed-and-clean next run.
	reviewed := segs[:0:0]
	for _, seg := range segs {
		if needSeg[seg.Digest()] {
			if _, ok := freshSegs[seg.Digest()]; !ok {
				continue
			}
		}
		reviewed = append(reviewed, seg)
	}

	if opts.Adjudicate && opts.Provider != nil && len(freshLines) > 0 {
		ms, err := adjudicateRecords(ctx, opts.Provider, doc, freshLines)
		res.llmMs += ms
		if err != nil {
			diags = append(diags, toolFailure(path, "adjudicator", err))
		}
	}

	placed, snap := analysis.Merge(reviewed, freshLines, freshSegs)
	res.snap = snap

	issues := make([]Issue, 0, len(placed)+len(diags))
	for _, p := range placed {
		issues = append(issues, fromRecord(path, p.Line, p.Record))
	}
	issues = append(issues, diags...)

	sup := ParseSuppressions(doc)
	issues, dropped := sup.Apply(issues)
	res.issues = issues
	res.suppressed = dropped

	res.stats.LinesChecked = len(needLines)
	res.stats.LinesCached = doc.LineCount() - len(needLines)
	return res, nil
}

// reviewSegment submits one segment to the provider, with a single
// repair pass when the response fails validation.
func reviewSegment(ctx context.Context, opts Options, seg cache.Segment) ([]cache.IssueRecord, int64, error) {
	text := seg.Text
	if opts.RedactSecrets {
		text = redact.Secrets(text)
	}

	sysPrompt := SystemPrompt(opts.StyleGuide)
	req := providers.ReviewRequest{
		SystemPrompt: sysPrompt,
		UserPrompt:   BuildSegmentPrompt(seg.File, text),
		MaxTokens:    4096,
	}

	start := time.Now()
	resp, err := opts.Provider.Review(ctx, req)
	if err != nil {
		return nil, time.Since(start).Milliseconds(), fmt.Errorf("provider review: %w", err)
	}

	recs, err := parseFindings(resp.Content)
	if err != nil {
		repairPrompt := fmt.Sprintf(
			"Your previous response was not valid JSON. The error was: %s\n\nPlease fix it and respond with ONLY a valid JSON array of findings.\n\nYour previous response was:\n%s",
			err.Error(), resp.Content,
		)
		resp2, err2 := opts.Provider.Review(ctx, providers.ReviewRequest{
			SystemPrompt: sysPrompt,
			UserPrompt:   repairPrompt,
			MaxTokens:    4096,
		})
		if err2 != nil {
			return nil, time.Since(start).Milliseconds(), fmt.Errorf("repair pass failed: %w (original error: %w)", err2, err)
		}
		recs, err = parseFindings(resp2.Content)
		if err != nil {
			return nil, time.Since(start).Milliseconds(), fmt.Errorf("response validation failed after repair: %w", err)
		}
	}
	return recs, time.Since(start).Milliseconds(), nil
}

func toolFailure(path, tool string, err error) Issue {
	iss := Issue{
		Tool:     tool,
		Type:     TypeToolFailure,
		File:     path,
		Severity: SeverityNote,
		Message:  err.Error(),
	}
	iss.ID = generateIssueID(iss)
	return iss
}

func checkerNames(checkers []Checker) []string {
	names := make([]string, 0, len(checkers))
	for _, chk := range checkers {
		names = append(names, chk.Name())
	}
	return names
}

func addStats(dst *CacheStats, src CacheStats) {
	dst.FilesChecked += src.FilesChecked
	dst.FilesUnchanged += src.FilesUnchanged
	dst.LinesChecked += src.LinesChecked
	dst.LinesCached += src.LinesCached
	dst.SegmentsReviewed += src.SegmentsReviewed
	dst.SegmentsCached += src.SegmentsCached
}

// SortIssues orders issues by file, then line, then column, then tool.
func SortIssues(issues []Issue) {
	sort.Slice(issues, func(i, j int) bool {
		if issues[i].File != issues[j].File {
			return issues[i].File < issues[j].File
		}
		if issues[i].Line != issues[j].Line {
			return issues[i].Line < issues[j].Line
		}
		if issues[i].Col != issues[j].Col {
			return issues[i].Col < issues[j].Col
		}
		return issues[i].Tool < issues[j].Tool
	})
}
