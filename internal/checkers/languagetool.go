package checkers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/dshills/redline/internal/cache"
	"github.com/dshills/redline/internal/review"
)

const defaultLanguageToolURL = "http://localhost:8010"

// LanguageTool checks grammar through a LanguageTool HTTP server.
type LanguageTool struct {
	baseURL  string
	language string
	disabled []string
	client   *http.Client
}

// NewLanguageTool creates the languagetool checker against the given
// server. An empty serverURL uses a local default, an empty language
// defaults to en-US.
func NewLanguageTool(serverURL, language string, disabledRules []string) *LanguageTool {
	if serverURL == "" {
		serverURL = defaultLanguageToolURL
	}
	if language == "" {
		language = "en-US"
	}
	return &LanguageTool{
		baseURL:  strings.TrimSuffix(serverURL, "/"),
		language: language,
		disabled: disabledRules,
		client:   &http.Client{Timeout: 30 * time.Second},
	}
}

func (lt *LanguageTool) Name() string { return "languagetool" }

// Available probes the server's languages endpoint.
func (lt *LanguageTool) Available() bool {
	client := &http.Client{Timeout: 2 * time.Second}
	resp, err := client.Get(lt.baseURL + "/v2/languages")
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}

func (lt *LanguageTool) Check(ctx context.Context, doc cache.Document, lines []int) ([]review.Issue, error) {
	if len(lines) == 0 {
		return nil, nil
	}

	// The request carries only the requested lines, joined with
	// newlines; starts records each line's offset so matches map back.
	var b strings.Builder
	starts := make([]int, len(lines))
	for i, n := range lines {
		if i > 0 {
			b.WriteByte('\n')
		}
		starts[i] = b.Len()
		b.WriteString(doc.Line(n))
	}

	form := url.Values{}
	form.Set("text", b.String())
	form.Set("language", lt.language)
	if len(lt.disabled) > 0 {
		form.Set("disabledRules", strings.Join(lt.disabled, ","))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, lt.baseURL+"/v2/check", strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := lt.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("languagetool request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("languagetool returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var result ltResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("parsing response: %w", err)
	}

	var issues []review.Issue
	for _, m := range result.Matches {
		idx := sort.Search(len(starts), func(i int) bool { return starts[i] > m.Offset }) - 1
		if idx < 0 {
			continue
		}
		lineNo := lines[idx]
		col := m.Offset - starts[idx] + 1
		issues = append(issues, review.Issue{
			Tool:       "languagetool",
			Type:       ltType(m.Rule.IssueType),
			File:       doc.Path,
			Line:       lineNo,
			Col:        col,
			Severity:   review.SeverityWarning,
			Message:    m.Message,
			Code:       m.Rule.ID,
			Suggestion: ltSuggestion(doc.Line(lineNo), col, m),
		})
	}
	return issues, nil
}

type ltResponse struct {
	Matches []ltMatch `json:"matches"`
}

type ltMatch struct {
	Message      string          `json:"message"`
	Offset       int             `json:"offset"`
	Length       int             `json:"length"`
	Replacements []ltReplacement `json:"replacements"`
	Rule         ltRule          `json:"rule"`
}

type ltReplacement struct {
	Value string `json:"value"`
}

type ltRule struct {
	ID        string `json:"id"`
	IssueType string `json:"issueType"`
}

func ltType(issueType string) string {
	switch issueType {
	case "misspelling":
		return review.TypeSpelling
	case "typographical":
		return review.TypeTypography
	case "style":
		return review.TypeStyle
	default:
		return review.TypeGrammar
	}
}

// ltSuggestion splices the first replacement into the line. Matches that
// run past the end of the line get no suggestion.
func ltSuggestion(text string, col int, m ltMatch) string {
	if len(m.Replacements) == 0 {
		return ""
	}
	start := col - 1
	end := start + m.Length
	if start < 0 || end > len(text) {
		return ""
	}
	return text[:start] + m.Replacements[0].Value + text[end:]
}
