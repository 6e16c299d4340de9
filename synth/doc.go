// Package synth builds a minimal set of layout items directly from raw
// HTML text. It is the fallback path used when the native engine produces
// nothing usable: a title and an excerpt are recovered from the markup so
// callers always receive a renderable result.
package synth
