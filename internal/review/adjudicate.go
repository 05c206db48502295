package review

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/xeipuuv/gojsonschema"

	"github.com/dshills/redline/internal/cache"
	"github.com/dshills/redline/internal/providers"
)

const maxAdjudicationBatch = 20

const adjudicationSystemPrompt = `You are screening findings from automated document checkers for false positives. For each numbered finding you receive the checker name, the flagged line, and the finding text. Decide whether the finding is a genuine problem (accepted) or a false positive (rejected).

Technical terms, proper nouns, code identifiers, and deliberate stylistic choices are common false-positive causes for spelling and style checkers.

You MUST respond with ONLY a JSON array of verdicts. No markdown, no explanation. Every finding index must appear exactly once.

Each verdict must have this exact structure:
{
  "index": 1,
  "verdict": "accepted|rejected",
  "fix": "corrected full line, only when accepted and you are confident"
}`

const spellingRetryPrompt = `These findings come from a dictionary-based spelling checker and were rejected on the first pass. Reconsider strictly: reject ONLY when the flagged word is a legitimate English word, a proper noun, or a deliberate technical term. Otherwise accept.`

const verdictSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "array",
  "items": {
    "type": "object",
    "required": ["index", "verdict"],
    "properties": {
      "index": {"type": "integer", "minimum": 1},
      "verdict": {"type": "string", "enum": ["accepted", "rejected"]},
      "fix": {"type": "string"}
    }
  }
}`

var verdictSchemaLoader = gojsonschema.NewStringLoader(verdictSchema)

type verdict struct {
	Index   int    `json:"index"`
	Verdict string `json:"verdict"`
	Fix     string `json:"fix"`
}

// recordRef locates one record inside a fresh-lines map.
type recordRef struct {
	line int
	idx  int
}

// adjudicateRecords asks the provider to screen freshly produced checker
// findings before they are merged, so verdicts persist in the snapshot
// and never need re-screening while the line stays unchanged. Spelling
// findings rejected on the first pass get one stricter retry.
func adjudicateRecords(ctx context.Context, rev providers.Reviewer, doc cache.Document, fresh map[int][]cache.IssueRecord) (int64, error) {
	refs := collectRefs(fresh)
	if len(refs) == 0 {
		return 0, nil
	}

	var llmMs int64
	for start := 0; start < len(refs); start += maxAdjudicationBatch {
		end := start + maxAdjudicationBatch
		if end > len(refs) {
			end = len(refs)
		}
		ms, err := adjudicateBatch(ctx, rev, doc, fresh, refs[start:end], adjudicationSystemPrompt)
		llmMs += ms
		if err != nil {
			return llmMs, err
		}
	}

	var retry []recordRef
	for _, ref := range refs {
		rec := fresh[ref.line][ref.idx]
		if rec.Tool == "codespell" && rec.Adjudication == AdjudicationRejected {
			retry = append(retry, ref)
		}
	}
	for start := 0; start < len(retry); start += maxAdjudicationBatch {
		end := start + maxAdjudicationBatch
		if end > len(retry) {
			end = len(retry)
		}
		prompt := adjudicationSystemPrompt + "\n\n" + spellingRetryPrompt
		ms, err := adjudicateBatch(ctx, rev, doc, fresh, retry[start:end], prompt)
		llmMs += ms
		if err != nil {
			return llmMs, err
		}
	}
	return llmMs, nil
}

func adjudicateBatch(ctx context.Context, rev providers.Reviewer, doc cache.Document, fresh map[int][]cache.IssueRecord, refs []recordRef, sysPrompt string) (int64, error) {
	req := providers.ReviewRequest{
		SystemPrompt: sysPrompt,
		UserPrompt:   buildAdjudicationPrompt(doc, fresh, refs),
		MaxTokens:    4096,
	}

	start := time.Now()
	resp, err := rev.Review(ctx, req)
	ms := time.Since(start).Milliseconds()
	if err != nil {
		return ms, fmt.Errorf("adjudication review: %w", err)
	}

	verdicts, err := parseVerdicts(resp.Content)
	if err != nil {
		return ms, err
	}
	for _, v := range verdicts {
		if v.Index < 1 || v.Index > len(refs) {
			continue
		}
		ref := refs[v.Index-1]
		rec := &fresh[ref.line][ref.idx]
		rec.Adjudication = v.Verdict
		if v.Verdict == AdjudicationAccepted && v.Fix != "" {
			rec.Suggestion = v.Fix
		}
	}
	return ms, nil
}

func buildAdjudicationPrompt(doc cache.Document, fresh map[int][]cache.IssueRecord, refs []recordRef) string {
	var b strings.Builder
	b.WriteString("Screen the following findings.\n")
	for i, ref := range refs {
		rec := fresh[ref.line][ref.idx]
		fmt.Fprintf(&b, "\n%d. [%s/%s] line %d: %s\n   line text: %s\n",
			i+1, rec.Tool, rec.Type, ref.line, rec.Message, doc.Line(ref.line))
	}
	return b.String()
}

func parseVerdicts(content string) ([]verdict, error) {
	content = stripFences(content)

	result, err := gojsonschema.Validate(verdictSchemaLoader, gojsonschema.NewStringLoader(content))
	if err != nil {
		return nil, fmt.Errorf("invalid verdict array: %w", err)
	}
	if !result.Valid() {
		msgs := make([]string, 0, len(result.Errors()))
		for _, e := range result.Errors() {
			msgs = append(msgs, e.String())
		}
		return nil, fmt.Errorf("verdict schema violations: %s", strings.Join(msgs, "; "))
	}

	var verdicts []verdict
	if err := json.Unmarshal([]byte(content), &verdicts); err != nil {
		return nil, fmt.Errorf("invalid verdict array: %w", err)
	}
	return verdicts, nil
}

func collectRefs(fresh map[int][]cache.IssueRecord) []recordRef {
	var lines []int
	for line := range fresh {
		lines = append(lines, line)
	}
	sort.Ints(lines)

	var refs []recordRef
	for _, line := range lines {
		for idx := range fresh[line] {
			refs = append(refs, recordRef{line: line, idx: idx})
		}
	}
	return refs
}
