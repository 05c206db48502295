// Redline is a local-first CLI for incrementally reviewing LaTeX documents.
//
// It runs local checkers (chktex, vale, codespell, latexindent, LanguageTool)
// and optional LLM review over prose segments, caching line and segment
// digests so unchanged content is never re-reviewed. Reports carry
// deterministic exit codes suitable for CI gating and git hooks.
//
// Usage:
//
//	redline review                    # review all matching documents
//	redline review chapters/intro.tex # review specific files
//	redline review --changed          # review files changed per git
//	redline fix main.tex              # apply safe checker suggestions
//	redline fix --annotate main.tex   # insert review comments inline
//	redline cache show                # inspect the incremental cache
//	redline hook install              # gate commits on review results
//
// See https://github.com/dshills/redline for full documentation.
package main
