// Package review contains the core types and engine for incremental
// document review.
//
// It defines the Issue, Report, and Severity types, the Checker
// interface implemented by the external-tool wrappers, and the run
// engine that ties change detection, checkers, and the LLM reviewer
// together. Documents are reviewed in parallel with bounded
// concurrency; per-tool failures become diagnostic issues on the
// affected document rather than failed runs.
//
// Prose destined for the LLM is extracted as sentence-bounded segments
// (segment.go) with markup flattened, so segment identity survives
// reflowing of the surrounding file. LLM responses are validated
// against a JSON schema before anything is cached, with one repair pass
// for malformed output.
//
// Adjudication (adjudicate.go) optionally screens fresh checker
// findings through the LLM for false positives; verdicts are stored in
// the cache snapshot alongside the findings so a line is screened at
// most once while its content stays the same.
//
// Suppression directives in document comments (suppress.go) drop
// findings at report time without touching the cache, so removing a
// directive brings the findings back with no tool rerun.
package review
