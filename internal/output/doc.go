// Package output formats review reports for display or machine consumption.
//
// Four formats are supported:
//   - text     — human-readable terminal output (default)
//   - json     — full structured JSON report
//   - markdown — CI-summary-friendly with collapsible sections per document
//   - sarif    — SARIF v2.1.0 for upload to code-scanning dashboards
//
// Use [GetWriter] to obtain a [Writer] for a given format string, then call
// [Writer.Write] with an [io.Writer] and a [*review.Report].  [WriteReport]
// handles destination selection (file or stdout).
package output
