// Package cache implements the incremental review cache: content-addressed
// change detection that lets a run skip re-checking lines and LLM review
// segments whose content has not changed since the previous run.
//
// Lines are matched by a digest of their whitespace-trimmed content, so
// issues follow a line when other lines are inserted or deleted around it.
// Segments are matched by a digest of their exact text, independent of
// position. A whole-file digest short-circuits all per-line work when
// nothing in the document changed.
//
// The persisted snapshot is a single versioned JSON file written through a
// temp-file rename. Loading fails soft: a missing, corrupt, or
// version-mismatched file degrades to "no cache" and forces a full
// recheck, never a crash and never silently stale results.
package cache
