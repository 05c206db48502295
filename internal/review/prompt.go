package review

import (
	"fmt"
	"strings"
)

const systemPrompt = `You are a strict, expert copy editor reviewing passages from an academic document. The passages have had their markup flattened to plain prose. Produce structured findings in JSON format.

Rules:
1. Only report genuine problems with the prose: grammar errors, unclear phrasing, inconsistent terminology, and factual self-contradictions within the passage.
2. Do not comment on markup, citations, or formatting; those are checked elsewhere.
3. Be concise and actionable. Include a corrected phrasing in the suggestion when you can.
4. Rate severity as "error", "warning", or "note". Genuine grammar mistakes are warnings; style and clarity concerns are notes. Reserve "error" for text a reader would misunderstand.
5. Categorize each finding as one of: spelling, grammar, style, clarity, consistency, typography.

You MUST respond with ONLY a JSON array of findings. No markdown, no explanation, no preamble. Just the JSON array.

Each finding must have this exact structure:
{
  "type": "spelling|grammar|style|clarity|consistency|typography",
  "severity": "error|warning|note",
  "message": "What is wrong and why it matters",
  "suggestion": "Corrected phrasing, if applicable"
}

If there are no issues, respond with an empty array: []`

// SystemPrompt returns the review system prompt, with house style rules
// appended when a guide is loaded.
func SystemPrompt(guide *StyleGuide) string {
	return systemPrompt + guide.PromptSection()
}

// BuildSegmentPrompt constructs the user prompt for one segment.
func BuildSegmentPrompt(file string, text string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Review the following passage from %s.\n", file)
	b.WriteString("\n--- BEGIN PASSAGE ---\n")
	b.WriteString(text)
	b.WriteString("\n--- END PASSAGE ---\n")
	return b.String()
}
