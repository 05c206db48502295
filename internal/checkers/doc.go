// Package checkers wraps the external line-oriented document checkers:
// chktex, vale, codespell, latexindent, and a LanguageTool HTTP server.
//
// Every checker implements [review.Checker] and restricts its findings to
// the requested lines. Subprocess checkers locate their binary on PATH
// for availability; a missing or failing tool surfaces as an error that
// the engine turns into a per-document diagnostic.
package checkers
