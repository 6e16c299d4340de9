package bridge

import (
	"sync/atomic"

	"go.uber.org/zap"
)

// OwnedHandle wraps a foreign [Handle] with scoped, guaranteed release.
// Close is idempotent and never panics: a fault while freeing is logged and
// swallowed, because leaking the foreign array is acceptable and crashing the
// host is not.
type OwnedHandle struct {
	engine Engine
	handle Handle
	logger *zap.Logger
	closed atomic.Bool
}

// NewOwnedHandle takes ownership of h. A zero handle is permitted and yields
// an OwnedHandle that is not Valid.
func NewOwnedHandle(engine Engine, h Handle, logger *zap.Logger) *OwnedHandle {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OwnedHandle{engine: engine, handle: h, logger: logger}
}

// Valid reports whether the handle refers to a live foreign result set.
func (o *OwnedHandle) Valid() bool {
	return o != nil && o.handle != 0 && !o.closed.Load()
}

// Handle returns the underlying foreign handle, or zero after Close.
func (o *OwnedHandle) Handle() Handle {
	if o == nil || o.closed.Load() {
		return 0
	}
	return o.handle
}

// Close releases the foreign result set. Only the first call frees; later
// calls are no-ops, so Close can sit in a defer while error paths also close
// explicitly.
func (o *OwnedHandle) Close() {
	if o == nil || o.handle == 0 {
		return
	}
	if o.closed.Swap(true) {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			o.logger.Warn("fault while freeing engine handle, accepting leak",
				zap.Any("panic", r))
		}
	}()
	o.engine.FreeHandle(o.handle)
}
