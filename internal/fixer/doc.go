// Package fixer writes accepted suggestions back into documents.
//
// Fixes replace whole lines and are only applied when a set of safety
// checks passes: LaTeX commands, brace balance, and math delimiters must
// survive the edit, and the fixed line must stay close to the original.
// Annotate mode leaves the text alone and inserts review comments above
// flagged lines instead.
package fixer
