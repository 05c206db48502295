// Package redact masks secrets in segment text before it is sent to any
// LLM provider.
//
// Detection uses regex heuristics covering common secret shapes: API
// keys, JWTs, private key blocks, AWS credentials, bearer tokens, and
// provider-specific tokens. Documents can also be marked private
// wholesale by path glob, in which case none of their text leaves the
// process toward a provider at all.
package redact
