package bridge

import (
	"math"
	"testing"
	"unsafe"

	"github.com/veloxhtml/velox/model"
)

// fakeEngine builds real item records in Go memory so the extractor's unsafe
// reads exercise the same code paths as the native binding.
type fakeEngine struct {
	ptrs  []ItemPtr
	count int32 // declared count; may disagree with len(ptrs)

	// Retained allocations backing the raw records and their strings.
	records []*rawItem
	strs    [][]byte

	freedItems   map[ItemPtr]int
	freedHandles map[Handle]int
	batchStarts  []int32

	panicOnFreeHandle bool
}

func newFakeEngine() *fakeEngine {
	return &fakeEngine{
		freedItems:   make(map[ItemPtr]int),
		freedHandles: make(map[Handle]int),
	}
}

func (f *fakeEngine) cstr(s string) uintptr {
	b := append([]byte(s), 0)
	f.strs = append(f.strs, b)
	return uintptr(unsafe.Pointer(&b[0]))
}

func (f *fakeEngine) addItem(x, y, w, h float32, tag, text string) {
	r := &rawItem{
		x: x, y: y, width: w, height: h,
		fontSize: 16, fontWeight: 400,
		nodeType:    f.cstr(tag),
		textContent: f.cstr(text),
		textAlign:   f.cstr("left"),
	}
	f.records = append(f.records, r)
	f.ptrs = append(f.ptrs, ItemPtr(uintptr(unsafe.Pointer(r))))
	f.count = int32(len(f.ptrs))
}

func (f *fakeEngine) handle() *OwnedHandle {
	return NewOwnedHandle(f, Handle(1), nil)
}

func (f *fakeEngine) Parse(html string) (Handle, error) { return Handle(1), nil }

func (f *fakeEngine) ItemCount(h Handle) int32 { return f.count }

func (f *fakeEngine) ItemBatch(h Handle, start int32, out []ItemPtr) int32 {
	f.batchStarts = append(f.batchStarts, start)
	if start >= int32(len(f.ptrs)) {
		return 0
	}
	n := copy(out, f.ptrs[start:])
	return int32(n)
}

func (f *fakeEngine) FreeItem(p ItemPtr) { f.freedItems[p]++ }

func (f *fakeEngine) FreeHandle(h Handle) {
	if f.panicOnFreeHandle {
		panic("free fault")
	}
	f.freedHandles[h]++
}

func TestExtractAll_DecodesItems(t *testing.T) {
	eng := newFakeEngine()
	eng.addItem(10, 20, 100, 50, "div", "")
	eng.addItem(12, 22, 96, 20, "p", "hello")

	x := NewExtractor(eng, nil)
	items := x.ExtractAll(eng.handle())

	if len(items) != 2 {
		t.Fatalf("Expected 2 items, got %d", len(items))
	}

	if items[0].Type != model.ItemTypeBlock {
		t.Errorf("Expected bare box to be Block, got %v", items[0].Type)
	}
	if items[0].Tag != "div" {
		t.Errorf("Expected tag 'div', got %q", items[0].Tag)
	}
	if items[0].BBox.X != 10 || items[0].BBox.Width != 100 {
		t.Errorf("Geometry mismatch: %+v", items[0].BBox)
	}

	if items[1].Type != model.ItemTypeText {
		t.Errorf("Expected text item, got %v", items[1].Type)
	}
	if items[1].Text != "hello" {
		t.Errorf("Expected text 'hello', got %q", items[1].Text)
	}
	if items[1].TextAlign != "left" {
		t.Errorf("Expected alignment 'left', got %q", items[1].TextAlign)
	}
}

func TestExtractAll_NullStringFieldsGetDefaults(t *testing.T) {
	eng := newFakeEngine()
	r := &rawItem{x: 1, y: 2, width: 3, height: 4, fontSize: 12, fontWeight: 400}
	eng.records = append(eng.records, r)
	eng.ptrs = append(eng.ptrs, ItemPtr(uintptr(unsafe.Pointer(r))))
	eng.count = 1

	items := NewExtractor(eng, nil).ExtractAll(eng.handle())
	if len(items) != 1 {
		t.Fatalf("Expected 1 item, got %d", len(items))
	}
	if items[0].Tag != defaultTag {
		t.Errorf("Expected default tag %q, got %q", defaultTag, items[0].Tag)
	}
	if items[0].TextAlign != defaultAlign {
		t.Errorf("Expected default alignment %q, got %q", defaultAlign, items[0].TextAlign)
	}
	if items[0].Text != "" {
		t.Errorf("Expected empty text, got %q", items[0].Text)
	}
}

func TestExtractAll_NonFiniteStyleMetricsReplaced(t *testing.T) {
	eng := newFakeEngine()
	r := &rawItem{
		x: 0, y: 0, width: 10, height: 10,
		fontSize:   float32(math.NaN()),
		fontWeight: float32(math.Inf(1)),
		marginTop:  float32(math.NaN()),
	}
	eng.records = append(eng.records, r)
	eng.ptrs = append(eng.ptrs, ItemPtr(uintptr(unsafe.Pointer(r))))
	eng.count = 1

	items := NewExtractor(eng, nil).ExtractAll(eng.handle())
	if len(items) != 1 {
		t.Fatalf("Expected 1 item, got %d", len(items))
	}
	if items[0].FontSize != defaultFontSize {
		t.Errorf("Expected default font size, got %v", items[0].FontSize)
	}
	if items[0].FontWeight != defaultFontWeight {
		t.Errorf("Expected default font weight, got %v", items[0].FontWeight)
	}
	if items[0].Margin.Top != 0 {
		t.Errorf("Expected NaN margin replaced with 0, got %v", items[0].Margin.Top)
	}
}

func TestExtractAll_NonFiniteGeometryFlowsThrough(t *testing.T) {
	// The validation stage downstream owns dropping bad geometry; the
	// extractor must not mask it.
	eng := newFakeEngine()
	r := &rawItem{x: 0, y: 0, width: float32(math.NaN()), height: 10}
	eng.records = append(eng.records, r)
	eng.ptrs = append(eng.ptrs, ItemPtr(uintptr(unsafe.Pointer(r))))
	eng.count = 1

	items := NewExtractor(eng, nil).ExtractAll(eng.handle())
	if len(items) != 1 {
		t.Fatalf("Expected 1 item, got %d", len(items))
	}
	if !math.IsNaN(items[0].BBox.Width) {
		t.Error("Expected NaN width preserved for downstream validation")
	}
}

func TestExtractAll_CorruptCountRejected(t *testing.T) {
	tests := []struct {
		name  string
		count int32
	}{
		{"zero", 0},
		{"negative", -5},
		{"oversized", 2_000_000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			eng := newFakeEngine()
			eng.addItem(0, 0, 10, 10, "div", "")
			eng.count = tt.count

			h := eng.handle()
			items := NewExtractor(eng, nil).ExtractAll(h)

			if items != nil {
				t.Errorf("Expected nil items for corrupt count, got %d", len(items))
			}
			if eng.freedHandles[Handle(1)] != 1 {
				t.Errorf("Expected handle freed exactly once, got %d", eng.freedHandles[Handle(1)])
			}
		})
	}
}

func TestExtractAll_ShortBatchEndsExtraction(t *testing.T) {
	eng := newFakeEngine()
	for i := 0; i < 4; i++ {
		eng.addItem(float32(i), 0, 10, 10, "div", "")
	}
	// Engine declares more items than it will ever return.
	eng.count = 10

	items := NewExtractor(eng, nil).ExtractAll(eng.handle())
	if len(items) != 4 {
		t.Errorf("Expected 4 items from short batch, got %d", len(items))
	}
}

func TestExtractAll_InvalidPointerSkippedNotFreed(t *testing.T) {
	eng := newFakeEngine()
	eng.addItem(0, 0, 10, 10, "div", "")
	bad := ItemPtr(3) // null-page and misaligned
	eng.ptrs = append(eng.ptrs, bad)
	eng.addItem(1, 0, 10, 10, "p", "x")
	eng.count = int32(len(eng.ptrs))

	items := NewExtractor(eng, nil).ExtractAll(eng.handle())
	if len(items) != 2 {
		t.Errorf("Expected 2 items with bad pointer skipped, got %d", len(items))
	}
	if _, freed := eng.freedItems[bad]; freed {
		t.Error("Invalid pointer must never be freed")
	}
}

func TestExtractAll_EveryValidItemFreedOnce(t *testing.T) {
	eng := newFakeEngine()
	for i := 0; i < 2500; i++ {
		eng.addItem(float32(i), 0, 5, 5, "span", "")
	}

	cfg := DefaultExtractorConfig()
	cfg.BatchSize = 1000
	items := NewExtractorWithConfig(eng, cfg, nil).ExtractAll(eng.handle())

	if len(items) != 2500 {
		t.Fatalf("Expected 2500 items, got %d", len(items))
	}
	for _, p := range eng.ptrs {
		if eng.freedItems[p] != 1 {
			t.Fatalf("Item %v freed %d times, want 1", p, eng.freedItems[p])
		}
	}

	// Window-sized batches starting at monotonically increasing indices.
	want := []int32{0, 1000, 2000}
	if len(eng.batchStarts) != len(want) {
		t.Fatalf("Expected %d batch calls, got %d", len(want), len(eng.batchStarts))
	}
	for i, s := range eng.batchStarts {
		if s != want[i] {
			t.Errorf("Batch %d started at %d, want %d", i, s, want[i])
		}
	}
}

func TestExtractAll_InvalidHandle(t *testing.T) {
	eng := newFakeEngine()
	h := NewOwnedHandle(eng, 0, nil)

	if items := NewExtractor(eng, nil).ExtractAll(h); items != nil {
		t.Errorf("Expected nil items for zero handle, got %d", len(items))
	}
	if len(eng.freedHandles) != 0 {
		t.Error("Zero handle must not be freed")
	}
}

func TestOwnedHandle_CloseExactlyOnce(t *testing.T) {
	eng := newFakeEngine()
	h := eng.handle()

	h.Close()
	h.Close()
	h.Close()

	if eng.freedHandles[Handle(1)] != 1 {
		t.Errorf("Expected exactly one free, got %d", eng.freedHandles[Handle(1)])
	}
	if h.Valid() {
		t.Error("Closed handle reported valid")
	}
	if h.Handle() != 0 {
		t.Error("Closed handle should return zero")
	}
}

func TestOwnedHandle_CloseFaultRecovered(t *testing.T) {
	eng := newFakeEngine()
	eng.panicOnFreeHandle = true
	h := eng.handle()

	// Must not panic; a leak is acceptable, a crash is not.
	h.Close()

	if h.Valid() {
		t.Error("Handle should be marked closed even after a free fault")
	}
}
