// Package velox provides a fluent API for turning raw HTML into a bounded
// list of positioned, styled layout items via a native layout engine.
//
// Basic usage:
//
//	items, err := velox.Parse(htmlString).Items(ctx)
//	if err != nil {
//	    // handle error
//	}
//
// With options:
//
//	result, err := velox.Parse(htmlString).
//	    ChunkSize(32 * 1024).
//	    MaxItems(500).
//	    WithProgress(func(f float64) { fmt.Printf("%.0f%%\n", f*100) }).
//	    Run(ctx)
//
// The native engine is linked in with the "velox" build tag. Without it,
// terminal operations return bridge.ErrEngineNotEnabled unless an engine
// is injected with WithEngine. For advanced use cases the lower-level
// pipeline package is also available.
package velox

// Parse creates a Renderer for fluent configuration over raw HTML.
// The input is held as-is; no work happens until a terminal operation
// like Items or Run is called.
//
// Example:
//
//	items, err := velox.Parse("<html><body>...</body></html>").Items(ctx)
func Parse(html string) *Renderer {
	return &Renderer{
		html:    html,
		options: defaultOptions(),
	}
}

// Must is a helper that wraps a call to a function returning (T, error)
// and panics if the error is non-nil. It is intended for use in scripts
// or tests where error handling would be cumbersome.
//
// Example:
//
//	items := velox.Must(velox.Parse(doc).Items(ctx))
func Must[T any](val T, err error) T {
	if err != nil {
		panic(err)
	}
	return val
}
