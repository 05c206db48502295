// Package docfind locates the documents a review run should cover.
//
// Discovery walks the configured roots for files matching the include
// globs, minus the exclude globs. The --changed mode narrows the set to
// files git reports as modified, so a pre-commit hook only reviews what
// the commit touches.
package docfind
