// Package pipeline drives HTML layout extraction end to end: input
// validation, sanitization, chunk planning, sequential native parsing
// with per-unit timeouts, merging, item validation and capping, and the
// synthesized fallback when the native path yields nothing usable.
//
// The pipeline never returns an error for a recoverable condition.
// Callers always receive a Result, possibly empty, never absent.
package pipeline
