// Package bridge owns every boundary crossing into the native rendering
// engine: marshaling HTML in, streaming structured items out in bounded
// batches, and the lifecycle of every foreign-allocated object reachable from
// a parse call.
//
// The engine is treated as untrusted. Counts are range-checked, every foreign
// pointer is validated before the first dereference, string decoding is
// bounded regardless of what the engine claims, and a [Handle] is released
// exactly once on every exit path via [OwnedHandle]. A fault at this boundary
// degrades the current unit of work to an empty result; it never crashes the
// host process.
//
// The real engine binding is compiled in with the "velox" build tag:
//
//	go build -tags velox
//
// Without the tag, [NewEngine] returns [ErrEngineNotEnabled] and callers fall
// back to synthesized results. Tests inject fake [Engine] implementations.
package bridge
