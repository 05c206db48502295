package review

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"github.com/dshills/redline/internal/cache"
)

// findingsSchema is the contract the review prompt promises. Responses
// are validated against it before anything reaches the cache.
const findingsSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "array",
  "items": {
    "type": "object",
    "required": ["type", "severity", "message"],
    "properties": {
      "type": {"type": "string", "minLength": 1},
      "severity": {"type": "string", "enum": ["error", "warning", "note"]},
      "message": {"type": "string", "minLength": 1},
      "suggestion": {"type": "string"}
    }
  }
}`

var findingsSchemaLoader = gojsonschema.NewStringLoader(findingsSchema)

// rawFinding is the JSON structure returned by the LLM for one segment.
type rawFinding struct {
	Type       string `json:"type"`
	Severity   string `json:"severity"`
	Message    string `json:"message"`
	Suggestion string `json:"suggestion"`
}

// parseFindings validates and decodes an LLM response into issue records
// for one segment.
func parseFindings(content string) ([]cache.IssueRecord, error) {
	content = stripFences(content)

	result, err := gojsonschema.Validate(findingsSchemaLoader, gojsonschema.NewStringLoader(content))
	if err != nil {
		return nil, fmt.Errorf("invalid JSON array: %w", err)
	}
	if !result.Valid() {
		msgs := make([]string, 0, len(result.Errors()))
		for _, e := range result.Errors() {
			msgs = append(msgs, e.String())
		}
		return nil, fmt.Errorf("schema violations: %s", strings.Join(msgs, "; "))
	}

	var raw []rawFinding
	if err := json.Unmarshal([]byte(content), &raw); err != nil {
		return nil, fmt.Errorf("invalid JSON array: %w", err)
	}

	recs := make([]cache.IssueRecord, 0, len(raw))
	for _, r := range raw {
		recs = append(recs, cache.IssueRecord{
			Tool:       "llm",
			Type:       r.Type,
			Severity:   r.Severity,
			Message:    r.Message,
			Suggestion: r.Suggestion,
		})
	}
	return recs, nil
}

// stripFences removes a markdown code fence wrapper if present.
func stripFences(content string) string {
	content = strings.TrimSpace(content)
	if !strings.HasPrefix(content, "```") {
		return content
	}
	lines := strings.Split(content, "\n")
	if len(lines) < 2 {
		return content
	}
	end := len(lines)
	if strings.TrimSpace(lines[end-1]) == "```" {
		end--
	}
	return strings.Join(lines[1:end], "\n")
}
