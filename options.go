package velox

import (
	"time"

	"github.com/veloxhtml/velox/pipeline"
)

// renderOptions holds configuration for one render chain.
type renderOptions struct {
	// Chunking
	enableChunking    bool
	chunkSizeOverride int

	// Budgets
	globalTimeout   time.Duration
	perChunkTimeout time.Duration
	maxItems        int
	maxInputSize    int

	// Observability
	onProgress pipeline.ProgressFunc
}

// defaultOptions returns the default render options. Zero values defer
// to the pipeline defaults.
func defaultOptions() renderOptions {
	return renderOptions{
		enableChunking:    true,
		chunkSizeOverride: 0,
		globalTimeout:     0,
		perChunkTimeout:   0,
		maxItems:          0,
		maxInputSize:      0,
		onProgress:        nil,
	}
}

// clone creates a copy of renderOptions.
func (o renderOptions) clone() renderOptions {
	return renderOptions{
		enableChunking:    o.enableChunking,
		chunkSizeOverride: o.chunkSizeOverride,
		globalTimeout:     o.globalTimeout,
		perChunkTimeout:   o.perChunkTimeout,
		maxItems:          o.maxItems,
		maxInputSize:      o.maxInputSize,
		onProgress:        o.onProgress,
	}
}

// pipelineConfig translates options into a pipeline configuration.
func (o renderOptions) pipelineConfig() pipeline.Config {
	cfg := pipeline.DefaultConfig()
	cfg.EnableChunking = o.enableChunking
	cfg.ChunkSizeOverride = o.chunkSizeOverride
	if o.globalTimeout > 0 {
		cfg.GlobalTimeout = o.globalTimeout
	}
	if o.perChunkTimeout > 0 {
		cfg.PerChunkTimeout = o.perChunkTimeout
	}
	if o.maxItems > 0 {
		cfg.MaxItems = o.maxItems
	}
	if o.maxInputSize > 0 {
		cfg.MaxInputSize = o.maxInputSize
	}
	return cfg
}
