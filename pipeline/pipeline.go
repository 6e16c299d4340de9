package pipeline

import (
	"context"
	"fmt"
	"math"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"

	"github.com/veloxhtml/velox/bridge"
	"github.com/veloxhtml/velox/chunk"
	"github.com/veloxhtml/velox/model"
	"github.com/veloxhtml/velox/synth"
)

// Config controls pipeline behavior. Zero values are replaced with the
// defaults from DefaultConfig, except EnableChunking which is taken as
// given.
type Config struct {
	// EnableChunking allows large inputs to be split and processed
	// piecewise. When false every input goes through in a single pass.
	EnableChunking bool

	// ChunkSizeOverride forces a chunk size in bytes. Zero selects the
	// size-tiered default. Non-zero values are clamped by the planner.
	ChunkSizeOverride int

	// ChunkThreshold is the sanitized length in bytes above which the
	// chunked strategy is selected.
	ChunkThreshold int

	// GlobalTimeout bounds the single-pass native call.
	GlobalTimeout time.Duration

	// PerChunkTimeout bounds each per-chunk native call.
	PerChunkTimeout time.Duration

	// MaxItems bounds the final item list, markers included.
	MaxItems int

	// MaxInputSize is the absolute input limit in bytes. Larger inputs
	// are rejected up front.
	MaxInputSize int

	// MaxDimension is the sanity bound for item coordinates and sizes.
	MaxDimension float64

	// MaxFontSize is the upper bound of the accepted font size range.
	MaxFontSize float64

	// MinPlausibleItems and PlausibilityInputSize drive the warning
	// marker: an input larger than PlausibilityInputSize bytes that
	// yields fewer than MinPlausibleItems items gets a warning appended.
	MinPlausibleItems     int
	PlausibilityInputSize int

	// Planner and Extractor configure the chunk planner and the bridge
	// extractor respectively.
	Planner   chunk.PlannerConfig
	Extractor bridge.ExtractorConfig
}

// DefaultConfig returns the default pipeline configuration.
func DefaultConfig() Config {
	return Config{
		EnableChunking:        true,
		ChunkThreshold:        64 * 1024,
		GlobalTimeout:         30 * time.Second,
		PerChunkTimeout:       10 * time.Second,
		MaxItems:              5000,
		MaxInputSize:          10 << 20,
		MaxDimension:          100000,
		MaxFontSize:           100,
		MinPlausibleItems:     10,
		PlausibilityInputSize: 50000,
		Planner:               chunk.DefaultPlannerConfig(),
		Extractor:             bridge.DefaultExtractorConfig(),
	}
}

// Perf carries per-stage timings for one Process call.
type Perf struct {
	Sanitize    time.Duration `json:"sanitize"`
	Chunking    time.Duration `json:"chunking"`
	Extraction  time.Duration `json:"extraction"`
	PostProcess time.Duration `json:"post_process"`
	Total       time.Duration `json:"total"`

	// Chunks is the number of chunks planned; zero in single-pass mode.
	Chunks int `json:"chunks"`

	// TimedOut counts abandoned native calls.
	TimedOut int `json:"timed_out"`
}

// Result is the outcome of one Process call. Success is false only for
// rejected input; every other condition degrades to a partial, empty, or
// synthesized item list with Success true.
type Result struct {
	Items       []model.Item `json:"items"`
	Success     bool         `json:"success"`
	Error       string       `json:"error,omitempty"`
	Synthesized bool         `json:"synthesized,omitempty"`
	Perf        Perf         `json:"perf"`
}

// Pipeline orchestrates extraction for one engine instance. Chunks are
// processed strictly sequentially; the engine gate admits one document
// at a time.
type Pipeline struct {
	engine    bridge.Engine
	extractor *bridge.Extractor
	planner   *chunk.Planner
	synth     *synth.Synthesizer
	config    Config
	logger    *zap.Logger
	gate      *semaphore.Weighted
}

// New creates a Pipeline with default configuration.
func New(engine bridge.Engine, logger *zap.Logger) *Pipeline {
	return NewWithConfig(engine, DefaultConfig(), logger)
}

// NewWithConfig creates a Pipeline with the given configuration.
func NewWithConfig(engine bridge.Engine, config Config, logger *zap.Logger) *Pipeline {
	if logger == nil {
		logger = zap.NewNop()
	}
	def := DefaultConfig()
	if config.ChunkThreshold <= 0 {
		config.ChunkThreshold = def.ChunkThreshold
	}
	if config.GlobalTimeout <= 0 {
		config.GlobalTimeout = def.GlobalTimeout
	}
	if config.PerChunkTimeout <= 0 {
		config.PerChunkTimeout = def.PerChunkTimeout
	}
	if config.MaxItems <= 0 {
		config.MaxItems = def.MaxItems
	}
	if config.MaxInputSize <= 0 {
		config.MaxInputSize = def.MaxInputSize
	}
	if config.MaxDimension <= 0 {
		config.MaxDimension = def.MaxDimension
	}
	if config.MaxFontSize <= 0 {
		config.MaxFontSize = def.MaxFontSize
	}
	if config.MinPlausibleItems <= 0 {
		config.MinPlausibleItems = def.MinPlausibleItems
	}
	if config.PlausibilityInputSize <= 0 {
		config.PlausibilityInputSize = def.PlausibilityInputSize
	}

	return &Pipeline{
		engine:    engine,
		extractor: bridge.NewExtractorWithConfig(engine, config.Extractor, logger),
		planner:   chunk.NewPlannerWithConfig(config.Planner, logger),
		synth:     synth.New(logger),
		config:    config,
		logger:    logger,
		gate:      semaphore.NewWeighted(1),
	}
}

// Process runs the full pipeline over raw HTML and always returns a
// Result. Recoverable conditions degrade the result instead of failing:
// a hung or crashed native call yields an empty or synthesized item list
// with Success true. Only rejected input (empty, oversized) or a
// cancelled context produces Success false.
func (p *Pipeline) Process(ctx context.Context, raw string, onProgress ProgressFunc) Result {
	start := time.Now()
	var perf Perf

	if raw == "" {
		return Result{Items: []model.Item{}, Success: false, Error: "empty input"}
	}
	if len(raw) > p.config.MaxInputSize {
		return Result{
			Items:   []model.Item{},
			Success: false,
			Error:   fmt.Sprintf("input of %d bytes exceeds maximum size of %d bytes", len(raw), p.config.MaxInputSize),
		}
	}
	report(onProgress, progressValidated)

	sanitizeStart := time.Now()
	sanitized := p.sanitized(raw)
	if !looksLikeDocument(sanitized) {
		sanitized = wrapFragment(sanitized)
	}
	perf.Sanitize = time.Since(sanitizeStart)
	report(onProgress, progressSanitized)

	chunked := p.config.EnableChunking && len(sanitized) > p.config.ChunkThreshold
	strategy := "single"
	if chunked {
		strategy = "chunked"
	}
	parseOps.WithLabelValues(strategy).Inc()

	// One document at a time through the native engine. An abandoned
	// call may still run after release; see parseExtract.
	if err := p.gate.Acquire(ctx, 1); err != nil {
		return Result{Items: []model.Item{}, Success: false, Error: err.Error(), Perf: perf}
	}

	extractStart := time.Now()
	var merged []model.Item
	if chunked {
		merged = p.processChunked(ctx, sanitized, onProgress, &perf)
		merged = model.Dedupe(merged)
	} else {
		items, timedOut := p.parseExtract(sanitized, p.config.GlobalTimeout)
		if timedOut {
			timeoutsTotal.WithLabelValues("document").Inc()
			perf.TimedOut++
			p.logger.Warn("single-pass parse timed out",
				zap.Duration("timeout", p.config.GlobalTimeout),
				zap.Int("input_bytes", len(sanitized)))
		}
		merged = items
	}
	p.gate.Release(1)
	perf.Extraction = time.Since(extractStart)
	if err := ctx.Err(); err != nil {
		return Result{Items: []model.Item{}, Success: false, Error: err.Error(), Perf: perf}
	}
	itemsExtracted.Add(float64(len(merged)))
	report(onProgress, progressMerged)

	postStart := time.Now()
	final, synthesized := p.postProcess(raw, sanitized, merged)
	perf.PostProcess = time.Since(postStart)
	perf.Total = time.Since(start)
	processDuration.WithLabelValues(strategy).Observe(perf.Total.Seconds())
	report(onProgress, progressDone)

	return Result{
		Items:       final,
		Success:     true,
		Synthesized: synthesized,
		Perf:        perf,
	}
}

// sanitized strips engine-hostile regions, falling back to the raw input
// if the sanitizer itself faults.
func (p *Pipeline) sanitized(raw string) (out string) {
	defer func() {
		if r := recover(); r != nil {
			p.logger.Error("sanitizer panicked, using raw input", zap.Any("panic", r))
			out = raw
		}
	}()
	return Sanitize(raw)
}

// processChunked plans chunks and runs them strictly in order. A chunk
// that fails or times out contributes nothing and processing continues.
func (p *Pipeline) processChunked(ctx context.Context, text string, onProgress ProgressFunc, perf *Perf) []model.Item {
	planStart := time.Now()
	chunks, capped := p.planner.Plan(text, p.config.ChunkSizeOverride)
	perf.Chunking = time.Since(planStart)
	perf.Chunks = len(chunks)
	if capped {
		p.logger.Warn("chunk cap reached, trailing input not processed",
			zap.Int("chunks", len(chunks)),
			zap.Int("input_bytes", len(text)))
	}
	report(onProgress, progressChunksBegin)

	var merged []model.Item
	for i, c := range chunks {
		if ctx.Err() != nil {
			p.logger.Warn("context cancelled, stopping chunk processing",
				zap.Int("completed", i), zap.Int("total", len(chunks)))
			break
		}

		items, timedOut := p.parseExtract(c.Content, p.config.PerChunkTimeout)
		switch {
		case timedOut:
			chunkOps.WithLabelValues("timeout").Inc()
			timeoutsTotal.WithLabelValues("chunk").Inc()
			perf.TimedOut++
			p.logger.Warn("chunk timed out",
				zap.Int("chunk", c.Index),
				zap.Duration("timeout", p.config.PerChunkTimeout))
		case len(items) == 0:
			chunkOps.WithLabelValues("empty").Inc()
		default:
			chunkOps.WithLabelValues("ok").Inc()
			merged = append(merged, items...)
		}

		report(onProgress, chunkProgress(i+1, len(chunks)))
	}
	return merged
}

// parseExtract races one native parse-and-extract against a timeout.
// If the timer wins the in-flight call is abandoned, not killed: it
// keeps running in the background, frees its own handle on completion,
// and its items are discarded. A panic inside the native path is
// contained here and yields an empty result.
func (p *Pipeline) parseExtract(text string, timeout time.Duration) (items []model.Item, timedOut bool) {
	done := make(chan []model.Item, 1)
	go func() {
		var out []model.Item
		defer func() {
			if r := recover(); r != nil {
				p.logger.Error("native call panicked", zap.Any("panic", r))
			}
			done <- out
		}()

		handle, err := p.engine.Parse(text)
		if err != nil {
			p.logger.Warn("native parse failed", zap.Error(err))
			return
		}
		owned := bridge.NewOwnedHandle(p.engine, handle, p.logger)
		if !owned.Valid() {
			p.logger.Warn("native parse returned null handle")
			return
		}
		out = p.extractor.ExtractAll(owned)
	}()

	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case items = <-done:
		return items, false
	case <-timer.C:
		return nil, true
	}
}

// postProcess validates, caps, and marks the merged item list. When
// nothing usable survives, a minimal item set is synthesized from the
// raw input instead. Markers count toward the MaxItems bound.
func (p *Pipeline) postProcess(raw, sanitized string, merged []model.Item) (items []model.Item, synthesized bool) {
	defer func() {
		if r := recover(); r != nil {
			p.logger.Error("post-processing panicked, synthesizing fallback", zap.Any("panic", r))
			items = p.synth.Synthesize(raw)
			synthesized = true
		}
	}()

	valid := make([]model.Item, 0, len(merged))
	dropped := 0
	for _, it := range merged {
		if p.validItem(it) {
			valid = append(valid, it)
		} else {
			dropped++
		}
	}
	if dropped > 0 {
		itemsDropped.Add(float64(dropped))
		p.logger.Debug("dropped invalid items", zap.Int("dropped", dropped))
	}

	if len(valid) == 0 {
		fallbacksTotal.Inc()
		p.logger.Info("native path yielded nothing usable, synthesizing fallback",
			zap.Int("input_bytes", len(raw)))
		return p.synth.Synthesize(raw), true
	}

	if original := len(valid); original > p.config.MaxItems {
		valid = valid[:p.config.MaxItems-1]
		valid = append(valid, truncationMarker(original, len(valid)))
		p.logger.Warn("item list capped",
			zap.Int("original", original),
			zap.Int("capped", p.config.MaxItems))
	}

	if len(sanitized) > p.config.PlausibilityInputSize &&
		contentCount(valid) < p.config.MinPlausibleItems &&
		!hasMarker(valid) {
		// The marker counts toward MaxItems like any other item.
		if len(valid) >= p.config.MaxItems {
			valid = valid[:p.config.MaxItems-1]
		}
		valid = append(valid, warningMarker(len(sanitized), contentCount(valid)))
	}

	return valid, false
}

// validItem checks geometry and font sanity. Non-finite coordinates,
// negative or absurd dimensions, and font sizes outside (0, MaxFontSize]
// disqualify an item.
func (p *Pipeline) validItem(it model.Item) bool {
	b := it.BBox
	if !b.IsValid() {
		return false
	}
	if b.Width > p.config.MaxDimension || b.Height > p.config.MaxDimension {
		return false
	}
	if math.Abs(b.X) > p.config.MaxDimension || math.Abs(b.Y) > p.config.MaxDimension {
		return false
	}
	if it.FontSize <= 0 || it.FontSize > p.config.MaxFontSize {
		return false
	}
	return true
}

func contentCount(items []model.Item) int {
	n := 0
	for _, it := range items {
		if !it.Type.IsMarker() {
			n++
		}
	}
	return n
}

func hasMarker(items []model.Item) bool {
	for _, it := range items {
		if it.Type.IsMarker() {
			return true
		}
	}
	return false
}

func truncationMarker(original, kept int) model.Item {
	return model.Item{
		Type: model.ItemTypeTruncation,
		Tag:  "truncated",
		Text: fmt.Sprintf("showing %d of %d items", kept, original),
	}
}

func warningMarker(inputLen, count int) model.Item {
	return model.Item{
		Type: model.ItemTypeWarning,
		Tag:  "warning",
		Text: fmt.Sprintf("only %d items extracted from %d bytes of input; output may be incomplete", count, inputLen),
	}
}
