// Package chunk splits raw HTML text into bounded, boundary-safe pieces for
// independent processing by the rendering engine.
//
// The [Planner] produces an ordered list of [Chunk] values. Chunk sizes follow
// a tiered policy based on input length, or a caller-supplied override clamped
// to the configured range. Cut points avoid falling inside a tag when a valid
// boundary exists within the search window, and every chunk after the first
// carries a fixed-size overlap of the preceding source text so the engine
// sees trailing context across cuts.
//
// Planning never fails: any internal fault degrades to returning the whole
// input as a single chunk.
package chunk
