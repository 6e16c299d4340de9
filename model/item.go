package model

// ItemType classifies a rendered content item
type ItemType int

const (
	ItemTypeUnknown ItemType = iota
	// ItemTypeBlock is a positioned box without text content
	ItemTypeBlock
	// ItemTypeText is a positioned box carrying text content
	ItemTypeText
	// ItemTypeTruncation is a synthetic marker appended when the item list
	// was capped; at most one per result
	ItemTypeTruncation
	// ItemTypeWarning is a synthetic marker appended when the result looks
	// implausibly small for the input; at most one per result
	ItemTypeWarning
)

func (it ItemType) String() string {
	switch it {
	case ItemTypeBlock:
		return "Block"
	case ItemTypeText:
		return "Text"
	case ItemTypeTruncation:
		return "Truncation"
	case ItemTypeWarning:
		return "Warning"
	default:
		return "Unknown"
	}
}

// IsMarker returns true for synthetic marker items appended by the pipeline
func (it ItemType) IsMarker() bool {
	return it == ItemTypeTruncation || it == ItemTypeWarning
}

// Edges holds a four-sided box metric (margin, padding, or border width)
type Edges struct {
	Top    float64 `json:"top"`
	Right  float64 `json:"right"`
	Bottom float64 `json:"bottom"`
	Left   float64 `json:"left"`
}

// Item is one positioned, styled content unit produced by the rendering
// pipeline. Numeric fields are always finite; extraction replaces
// out-of-range values with defaults rather than propagating them.
type Item struct {
	// Type classifies the item; marker types carry only Text
	Type ItemType `json:"type"`

	// Tag is the source node type reported by the engine (e.g. "div", "p");
	// "unknown" when the engine did not report one
	Tag string `json:"tag"`

	// Text is the item's text content; empty for bare boxes
	Text string `json:"text,omitempty"`

	// BBox is the item's position and size in viewport coordinates
	BBox BBox `json:"bbox"`

	// Background is the background color as reported by the engine
	// (CSS color string); empty when unset
	Background string `json:"background,omitempty"`

	// Color is the foreground (text) color; empty when unset
	Color string `json:"color,omitempty"`

	FontFamily string  `json:"font_family,omitempty"`
	FontSize   float64 `json:"font_size,omitempty"`
	FontWeight float64 `json:"font_weight,omitempty"`

	// TextAlign is the horizontal text alignment; "left" when unset
	TextAlign string `json:"text_align,omitempty"`

	Margin  Edges `json:"margin"`
	Padding Edges `json:"padding"`
	Border  Edges `json:"border"`
}

// identity groups items that are candidates for de-duplication: two items
// can only be duplicates if they agree on type, tag, and text.
type identity struct {
	typ  ItemType
	tag  string
	text string
}

// Dedupe removes duplicate items while preserving order. Items produced from
// overlapping chunk regions can appear twice, and a re-rendered region may
// shift geometry slightly, so two items with the same type, tag, and text
// count as duplicates when their boxes intersect. The first occurrence wins.
// Marker items are never de-duplicated.
func Dedupe(items []Item) []Item {
	if len(items) < 2 {
		return items
	}
	seen := make(map[identity][]BBox, len(items))
	out := items[:0]
	for _, it := range items {
		if it.Type.IsMarker() {
			out = append(out, it)
			continue
		}
		key := identity{typ: it.Type, tag: it.Tag, text: it.Text}
		dup := false
		for _, b := range seen[key] {
			if b.Intersects(it.BBox) {
				dup = true
				break
			}
		}
		if dup {
			continue
		}
		seen[key] = append(seen[key], it.BBox)
		out = append(out, it)
	}
	return out
}
