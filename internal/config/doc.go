// Package config loads and merges redline configuration from multiple
// sources.
//
// Precedence (highest to lowest):
//  1. CLI flags
//  2. Environment variables (REDLINE_PROVIDER, REDLINE_MODEL, REDLINE_FAIL_ON, etc.)
//  3. Config file ($XDG_CONFIG_HOME/redline/config.json)
//  4. Built-in defaults
//
// Use [Load] to obtain a merged, validated [Config] and [Save] to write
// one out.
package config
