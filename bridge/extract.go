package bridge

import (
	"math"
	"unsafe"

	"go.uber.org/zap"

	"github.com/veloxhtml/velox/model"
)

// rawItem mirrors the engine's C item record: six f32 numeric fields, seven
// null-terminated string pointers, then twelve f32 box metrics. The field
// order and types must not change independently of the engine.
type rawItem struct {
	x, y, width, height  float32
	fontSize, fontWeight float32

	nodeType        uintptr
	textContent     uintptr
	backgroundColor uintptr
	color           uintptr
	fontFamily      uintptr
	borderColor     uintptr
	textAlign       uintptr

	marginTop, marginRight, marginBottom, marginLeft     float32
	paddingTop, paddingRight, paddingBottom, paddingLeft float32
	borderTop, borderRight, borderBottom, borderLeft     float32
}

// Defaults substituted for unreadable or out-of-range foreign fields.
const (
	defaultTag        = "unknown"
	defaultAlign      = "left"
	defaultFontSize   = 16.0
	defaultFontWeight = 400.0
)

// ExtractorConfig holds configuration for batched item extraction
type ExtractorConfig struct {
	// BatchSize is the width of the reusable extraction window
	// Default: 1000
	BatchSize int

	// MaxItemCount is the largest engine-declared count accepted; anything
	// above it is treated as a corrupt handle
	// Default: 1000000
	MaxItemCount int32
}

// DefaultExtractorConfig returns sensible defaults for extraction
func DefaultExtractorConfig() ExtractorConfig {
	return ExtractorConfig{
		BatchSize:    1000,
		MaxItemCount: 1_000_000,
	}
}

// Extractor streams items out of a foreign result set in bounded batches.
type Extractor struct {
	engine Engine
	config ExtractorConfig
	logger *zap.Logger
}

// NewExtractor creates an extractor with default configuration
func NewExtractor(engine Engine, logger *zap.Logger) *Extractor {
	return NewExtractorWithConfig(engine, DefaultExtractorConfig(), logger)
}

// NewExtractorWithConfig creates an extractor with custom configuration
func NewExtractorWithConfig(engine Engine, config ExtractorConfig, logger *zap.Logger) *Extractor {
	if logger == nil {
		logger = zap.NewNop()
	}
	if config.BatchSize <= 0 {
		config.BatchSize = 1000
	}
	if config.MaxItemCount <= 0 {
		config.MaxItemCount = 1_000_000
	}
	return &Extractor{engine: engine, config: config, logger: logger}
}

// ExtractAll drains every item behind the handle and closes it. The handle is
// released on every path: success, corrupt count, short batch, or a fault
// mid-extraction. Batch start indices are monotonically increasing and never
// reach the declared count.
//
// A fault while extracting yields the items collected so far, never a panic.
func (x *Extractor) ExtractAll(h *OwnedHandle) (items []model.Item) {
	defer h.Close()
	defer func() {
		if r := recover(); r != nil {
			x.logger.Warn("fault during extraction, keeping partial items",
				zap.Any("panic", r), zap.Int("collected", len(items)))
		}
	}()

	if !h.Valid() {
		return nil
	}

	count := x.engine.ItemCount(h.Handle())
	if count <= 0 || count > x.config.MaxItemCount {
		corruptHandles.Inc()
		x.logger.Warn("rejecting corrupt item count", zap.Int32("count", count))
		return nil
	}

	// BatchWindow: one reusable buffer for the whole drain.
	window := make([]ItemPtr, x.config.BatchSize)

	for start := int32(0); start < count; {
		want := int32(len(window))
		if start+want > count {
			want = count - start
		}

		got := x.engine.ItemBatch(h.Handle(), start, window[:want])
		if got <= 0 {
			// Short batch is end of data, even below the declared count.
			break
		}
		if got > want {
			got = want
		}

		for _, p := range window[:got] {
			if item, ok := x.readItem(p); ok {
				items = append(items, item)
			}
		}
		start += got
	}

	return items
}

// readItem decodes one foreign item record and frees it. A pointer failing
// validation is skipped without a dereference and without a free.
func (x *Extractor) readItem(p ItemPtr) (model.Item, bool) {
	if !validStructPointer(uintptr(p)) {
		invalidPointers.Inc()
		x.logger.Debug("skipping invalid item pointer", zap.Uint64("ptr", uint64(p)))
		return model.Item{}, false
	}

	raw := *(*rawItem)(unsafe.Pointer(uintptr(p)))
	x.engine.FreeItem(p)

	item := model.Item{
		Tag:  DecodeCString(raw.nodeType, defaultTag),
		Text: DecodeCString(raw.textContent, ""),
		// Geometry flows through unsanitized; the pipeline's validation
		// stage drops items whose geometry is not finite.
		BBox: model.NewBBox(
			float64(raw.x), float64(raw.y),
			float64(raw.width), float64(raw.height),
		),
		Background: DecodeCString(raw.backgroundColor, ""),
		Color:      DecodeCString(raw.color, ""),
		FontFamily: DecodeCString(raw.fontFamily, ""),
		FontSize:   finiteOr(float64(raw.fontSize), defaultFontSize),
		FontWeight: finiteOr(float64(raw.fontWeight), defaultFontWeight),
		TextAlign:  DecodeCString(raw.textAlign, defaultAlign),
		Margin: model.Edges{
			Top:    finiteOr(float64(raw.marginTop), 0),
			Right:  finiteOr(float64(raw.marginRight), 0),
			Bottom: finiteOr(float64(raw.marginBottom), 0),
			Left:   finiteOr(float64(raw.marginLeft), 0),
		},
		Padding: model.Edges{
			Top:    finiteOr(float64(raw.paddingTop), 0),
			Right:  finiteOr(float64(raw.paddingRight), 0),
			Bottom: finiteOr(float64(raw.paddingBottom), 0),
			Left:   finiteOr(float64(raw.paddingLeft), 0),
		},
		Border: model.Edges{
			Top:    finiteOr(float64(raw.borderTop), 0),
			Right:  finiteOr(float64(raw.borderRight), 0),
			Bottom: finiteOr(float64(raw.borderBottom), 0),
			Left:   finiteOr(float64(raw.borderLeft), 0),
		},
	}

	if item.Text != "" {
		item.Type = model.ItemTypeText
	} else {
		item.Type = model.ItemTypeBlock
	}
	return item, true
}

// finiteOr substitutes def for non-finite or non-positive style metrics.
// Zero stays zero for box metrics (def 0); font metrics get their browser
// defaults.
func finiteOr(v, def float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return def
	}
	if def != 0 && v <= 0 {
		return def
	}
	if def == 0 && v < 0 {
		return 0
	}
	return v
}
