package velox

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bytedance/sonic"
	"go.uber.org/zap"

	"github.com/veloxhtml/velox/bridge"
	"github.com/veloxhtml/velox/model"
	"github.com/veloxhtml/velox/pipeline"
)

// Renderer provides a fluent interface for rendering HTML into layout
// items. Each configuration method returns a new Renderer instance,
// making it safe for concurrent use and allowing method chaining.
type Renderer struct {
	// Source
	html string

	// Injected dependencies; nil selects bridge.NewEngine and a no-op
	// logger at terminal time.
	engine bridge.Engine
	logger *zap.Logger

	// Configuration
	options renderOptions

	// Accumulated error (fail-fast)
	err error
}

// clone creates a shallow copy of the Renderer with a copy of options.
// Each chain method returns a new instance.
func (r *Renderer) clone() *Renderer {
	return &Renderer{
		html:    r.html,
		engine:  r.engine,
		logger:  r.logger,
		options: r.options.clone(),
		err:     r.err,
	}
}

// ============================================================================
// Configuration Methods (return new Renderer instance)
// ============================================================================

// EnableChunking controls whether large inputs are split and processed
// piecewise. Chunking is on by default.
func (r *Renderer) EnableChunking(enable bool) *Renderer {
	newR := r.clone()
	newR.options.enableChunking = enable
	return newR
}

// ChunkSize overrides the chunk size in bytes. The value is clamped to
// the planner's accepted range. Zero restores the size-tiered default.
func (r *Renderer) ChunkSize(bytes int) *Renderer {
	newR := r.clone()
	if bytes < 0 {
		newR.err = fmt.Errorf("chunk size must be non-negative, got %d", bytes)
		return newR
	}
	newR.options.chunkSizeOverride = bytes
	return newR
}

// GlobalTimeout bounds the single-pass native call.
func (r *Renderer) GlobalTimeout(d time.Duration) *Renderer {
	newR := r.clone()
	if d < 0 {
		newR.err = fmt.Errorf("global timeout must be non-negative, got %v", d)
		return newR
	}
	newR.options.globalTimeout = d
	return newR
}

// PerChunkTimeout bounds each per-chunk native call.
func (r *Renderer) PerChunkTimeout(d time.Duration) *Renderer {
	newR := r.clone()
	if d < 0 {
		newR.err = fmt.Errorf("per-chunk timeout must be non-negative, got %v", d)
		return newR
	}
	newR.options.perChunkTimeout = d
	return newR
}

// MaxItems bounds the final item list, markers included.
func (r *Renderer) MaxItems(n int) *Renderer {
	newR := r.clone()
	if n < 0 {
		newR.err = fmt.Errorf("max items must be non-negative, got %d", n)
		return newR
	}
	newR.options.maxItems = n
	return newR
}

// MaxInputSize sets the absolute input limit in bytes.
func (r *Renderer) MaxInputSize(bytes int) *Renderer {
	newR := r.clone()
	if bytes < 0 {
		newR.err = fmt.Errorf("max input size must be non-negative, got %d", bytes)
		return newR
	}
	newR.options.maxInputSize = bytes
	return newR
}

// WithEngine injects a layout engine, replacing the built-in native
// binding. Useful for tests and for alternative engine builds.
func (r *Renderer) WithEngine(engine bridge.Engine) *Renderer {
	newR := r.clone()
	newR.engine = engine
	return newR
}

// WithLogger attaches a logger to the render chain.
func (r *Renderer) WithLogger(logger *zap.Logger) *Renderer {
	newR := r.clone()
	newR.logger = logger
	return newR
}

// WithProgress registers a progress callback receiving fractions in [0, 1].
func (r *Renderer) WithProgress(fn pipeline.ProgressFunc) *Renderer {
	newR := r.clone()
	newR.options.onProgress = fn
	return newR
}

// ============================================================================
// Terminal Operations
// ============================================================================

// Run executes the pipeline and returns the full Result, including
// per-stage timings. The error is non-nil only when the chain itself is
// misconfigured or no engine is available; recoverable processing
// conditions are reported inside the Result.
func (r *Renderer) Run(ctx context.Context) (pipeline.Result, error) {
	if r.err != nil {
		return pipeline.Result{}, r.err
	}

	engine := r.engine
	if engine == nil {
		var err error
		engine, err = bridge.NewEngine()
		if err != nil {
			return pipeline.Result{}, err
		}
	}

	p := pipeline.NewWithConfig(engine, r.options.pipelineConfig(), r.logger)
	return p.Process(ctx, r.html, r.options.onProgress), nil
}

// Items executes the pipeline and returns the final item list. Rejected
// input surfaces as an error; degraded or synthesized results do not.
func (r *Renderer) Items(ctx context.Context) ([]model.Item, error) {
	result, err := r.Run(ctx)
	if err != nil {
		return nil, err
	}
	if !result.Success {
		return nil, errors.New(result.Error)
	}
	return result.Items, nil
}

// JSON executes the pipeline and returns the Result encoded as JSON.
func (r *Renderer) JSON(ctx context.Context) ([]byte, error) {
	result, err := r.Run(ctx)
	if err != nil {
		return nil, err
	}
	if !result.Success {
		return nil, errors.New(result.Error)
	}
	return sonic.Marshal(result)
}
