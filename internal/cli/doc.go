// Package cli wires together the Cobra command tree for the redline
// binary.
//
// It defines the root command and all subcommands (review, fix, cache,
// checkers, models, config, hook, version), binds flags, merges
// configuration, invokes the review engine, and returns deterministic
// exit codes for CI gating.
package cli
