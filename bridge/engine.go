package bridge

import "errors"

// ErrEngineNotEnabled is returned when the native engine binding was not
// compiled in. Rebuild with -tags velox to enable it.
var ErrEngineNotEnabled = errors.New("native engine not enabled; rebuild with -tags velox")

// Handle is an opaque reference to a foreign-owned result set. A zero handle
// means the engine failed to produce one. Handles are exclusively owned by
// the call that created them and must be freed exactly once; use
// [OwnedHandle] rather than freeing directly.
type Handle uintptr

// ItemPtr is a foreign pointer to one item's fixed-layout record. Item
// pointers are never retained past a single extraction: each one is read and
// freed immediately, or skipped entirely if it fails validation.
type ItemPtr uintptr

// Engine is the boundary contract any rendering engine must honor.
//
// All methods may block; the caller is responsible for racing them against a
// timeout. A blocking call abandoned by its caller may keep running in the
// background; the engine is never preemptively cancelled.
type Engine interface {
	// Parse renders the HTML and returns a handle to the resulting item
	// array. A zero handle reports failure (including an engine-internal
	// panic); the error adds detail when available.
	Parse(html string) (Handle, error)

	// ItemCount returns the engine-declared number of items behind the
	// handle. The value is untrusted: callers must reject non-positive or
	// absurdly large counts as corrupt.
	ItemCount(h Handle) int32

	// ItemBatch fills out with item pointers starting at index start and
	// returns the number written, at most len(out). A short or zero batch
	// signals end of data, not an error.
	ItemBatch(h Handle, start int32, out []ItemPtr) int32

	// FreeItem releases one item record. Safe to call once per pointer
	// returned by ItemBatch.
	FreeItem(p ItemPtr)

	// FreeHandle releases the item array behind the handle.
	FreeHandle(h Handle)
}
