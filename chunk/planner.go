package chunk

import (
	"go.uber.org/zap"
)

// Size tiers for the default chunk size policy. Inputs at or below the
// single-pass tier are returned whole; larger inputs use progressively larger
// fixed chunk sizes so the chunk count stays bounded.
const (
	tierSinglePass  = 64 * 1024
	tierMediumInput = 256 * 1024
	tierLargeInput  = 1024 * 1024

	tierMediumChunk = 32 * 1024
	tierLargeChunk  = 64 * 1024
	tierMaxChunk    = 128 * 1024
)

// Chunk is a bounded, boundary-safe slice of the input text. Chunks are
// immutable and consumed exactly once by the bridge.
type Chunk struct {
	// Content is the chunk text, including any leading overlap
	Content string

	// Index is the chunk's position in the plan (0-based)
	Index int

	// TotalChunks is the number of chunks in the plan
	TotalChunks int

	// Overlap is the number of leading bytes duplicated from the
	// preceding source text; 0 for the first chunk
	Overlap int

	IsFirst bool
	IsLast  bool
}

// Body returns the chunk content without the leading overlap.
func (c Chunk) Body() string {
	if c.Overlap <= 0 || c.Overlap > len(c.Content) {
		return c.Content
	}
	return c.Content[c.Overlap:]
}

// PlannerConfig holds configuration for the chunk planner
type PlannerConfig struct {
	// MinChunkSize is the lower clamp for caller-supplied size overrides
	// Default: 4096
	MinChunkSize int

	// MaxChunkSize is the upper clamp for caller-supplied size overrides
	// Default: 262144
	MaxChunkSize int

	// OverlapSize is the number of preceding source bytes prepended to
	// every chunk after the first
	// Default: 1024
	OverlapSize int

	// MaxChunks is the hard cap on emitted chunks; input beyond the cap is
	// dropped and reported as truncation, not as an error
	// Default: 64
	MaxChunks int

	// BoundaryWindow is the fraction of the chunk window searched backward
	// from the candidate end for a safe cut point
	// Default: 0.10
	BoundaryWindow float64
}

// DefaultPlannerConfig returns sensible defaults for the planner
func DefaultPlannerConfig() PlannerConfig {
	return PlannerConfig{
		MinChunkSize:   4096,
		MaxChunkSize:   256 * 1024,
		OverlapSize:    1024,
		MaxChunks:      64,
		BoundaryWindow: 0.10,
	}
}

// Planner splits input text into chunks
type Planner struct {
	config PlannerConfig
	logger *zap.Logger
}

// NewPlanner creates a planner with default configuration
func NewPlanner(logger *zap.Logger) *Planner {
	return NewPlannerWithConfig(DefaultPlannerConfig(), logger)
}

// NewPlannerWithConfig creates a planner with custom configuration
func NewPlannerWithConfig(config PlannerConfig, logger *zap.Logger) *Planner {
	if logger == nil {
		logger = zap.NewNop()
	}
	if config.MinChunkSize <= 0 {
		config.MinChunkSize = 4096
	}
	if config.MaxChunkSize < config.MinChunkSize {
		config.MaxChunkSize = config.MinChunkSize
	}
	if config.MaxChunks <= 0 {
		config.MaxChunks = 64
	}
	if config.BoundaryWindow <= 0 || config.BoundaryWindow > 1 {
		config.BoundaryWindow = 0.10
	}
	return &Planner{config: config, logger: logger}
}

// ChunkSize returns the chunk size the planner will use for an input of the
// given length: the tiered default, or the override clamped to the configured
// range when non-zero.
func (p *Planner) ChunkSize(inputLen, override int) int {
	if override > 0 {
		if override < p.config.MinChunkSize {
			return p.config.MinChunkSize
		}
		if override > p.config.MaxChunkSize {
			return p.config.MaxChunkSize
		}
		return override
	}

	switch {
	case inputLen <= tierSinglePass:
		return inputLen
	case inputLen <= tierMediumInput:
		return tierMediumChunk
	case inputLen <= tierLargeInput:
		return tierLargeChunk
	default:
		return tierMaxChunk
	}
}

// Plan splits text into ordered chunks. The second return value reports
// whether the MaxChunks cap dropped trailing input; this is a recoverable
// condition, not an error.
//
// Planning is total: an internal fault returns the entire text as a single
// unsplit chunk.
func (p *Planner) Plan(text string, sizeOverride int) (chunks []Chunk, truncated bool) {
	defer func() {
		if r := recover(); r != nil {
			p.logger.Warn("chunk planning fault, falling back to single chunk",
				zap.Any("panic", r))
			chunks = p.singleChunk(text)
			truncated = false
		}
	}()

	if text == "" {
		return nil, false
	}

	chunkSize := p.ChunkSize(len(text), sizeOverride)
	if chunkSize <= 0 || len(text) <= chunkSize {
		return p.singleChunk(text), false
	}

	offset := 0
	for offset < len(text) {
		if len(chunks) >= p.config.MaxChunks {
			p.logger.Warn("chunk cap reached, dropping trailing input",
				zap.Int("maxChunks", p.config.MaxChunks),
				zap.Int("remainingBytes", len(text)-offset))
			truncated = true
			break
		}

		end := offset + chunkSize
		if end >= len(text) {
			end = len(text)
		} else {
			end = p.cutPoint(text, offset, end)
		}

		overlap := 0
		if len(chunks) > 0 {
			overlap = p.config.OverlapSize
			if overlap > offset {
				overlap = offset
			}
		}

		chunks = append(chunks, Chunk{
			Content: text[offset-overlap : end],
			Index:   len(chunks),
			Overlap: overlap,
			IsFirst: len(chunks) == 0,
		})
		offset = end
	}

	for i := range chunks {
		chunks[i].TotalChunks = len(chunks)
	}
	if len(chunks) > 0 && !truncated {
		chunks[len(chunks)-1].IsLast = true
	}
	return chunks, truncated
}

// cutPoint searches backward from the candidate end, within the configured
// fraction of the window, for a tag-closing '>' or a whitespace byte. The cut
// lands just after the boundary. Without a boundary in the window the
// candidate end is used as-is; the search never leaves the window.
func (p *Planner) cutPoint(text string, offset, candidate int) int {
	window := int(float64(candidate-offset) * p.config.BoundaryWindow)
	if window < 1 {
		window = 1
	}
	limit := candidate - window
	if limit < offset+1 {
		limit = offset + 1
	}

	for i := candidate - 1; i >= limit; i-- {
		switch text[i] {
		case '>', ' ', '\t', '\n', '\r':
			return i + 1
		}
	}
	return candidate
}

func (p *Planner) singleChunk(text string) []Chunk {
	return []Chunk{{
		Content:     text,
		Index:       0,
		TotalChunks: 1,
		IsFirst:     true,
		IsLast:      true,
	}}
}
