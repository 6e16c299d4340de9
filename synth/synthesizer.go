package synth

import (
	"strings"

	"go.uber.org/zap"
	"golang.org/x/net/html"
	"golang.org/x/text/unicode/norm"

	"github.com/veloxhtml/velox/model"
)

// DefaultTitle is used when no title, heading, or text can be recovered.
const DefaultTitle = "Untitled Document"

// Layout constants for the synthesized items. They mirror the geometry the
// engine would produce for a plain document at the default viewport.
const (
	pageWidth    = 800.0
	contentInset = 8.0

	titleFontSize   = 24.0
	titleFontWeight = 700.0
	titleHeight     = 32.0

	excerptFontSize   = 16.0
	excerptFontWeight = 400.0
	excerptLineHeight = 20.0
	excerptGap        = 12.0
)

// Config controls excerpt synthesis.
type Config struct {
	// MaxTitleLen bounds the recovered title, in bytes.
	MaxTitleLen int

	// MaxExcerptLen bounds the excerpt, in bytes. The cut is rune safe
	// and prefers a word boundary.
	MaxExcerptLen int
}

// DefaultConfig returns the default synthesizer configuration.
func DefaultConfig() Config {
	return Config{
		MaxTitleLen:   200,
		MaxExcerptLen: 300,
	}
}

// Synthesizer recovers a title and an excerpt from raw HTML.
type Synthesizer struct {
	config Config
	logger *zap.Logger
}

// New creates a Synthesizer with default configuration.
func New(logger *zap.Logger) *Synthesizer {
	return NewWithConfig(DefaultConfig(), logger)
}

// NewWithConfig creates a Synthesizer with the given configuration.
func NewWithConfig(config Config, logger *zap.Logger) *Synthesizer {
	if logger == nil {
		logger = zap.NewNop()
	}
	def := DefaultConfig()
	if config.MaxTitleLen <= 0 {
		config.MaxTitleLen = def.MaxTitleLen
	}
	if config.MaxExcerptLen <= 0 {
		config.MaxExcerptLen = def.MaxExcerptLen
	}
	return &Synthesizer{config: config, logger: logger}
}

// Synthesize produces a deterministic, minimal item list from raw HTML.
// The first item is always a title block. An excerpt block follows when
// the document carries any body text beyond the title. Synthesize never
// fails: unparseable or empty input yields a single default title item.
func (s *Synthesizer) Synthesize(raw string) []model.Item {
	title, excerpt := s.extract(raw)

	if title == "" {
		title = DefaultTitle
	}

	items := []model.Item{{
		Type:       model.ItemTypeText,
		Tag:        "h1",
		Text:       title,
		BBox:       model.BBox{X: contentInset, Y: contentInset, Width: pageWidth - 2*contentInset, Height: titleHeight},
		Background: "transparent",
		Color:      "#000000",
		FontFamily: "sans-serif",
		FontSize:   titleFontSize,
		FontWeight: titleFontWeight,
		TextAlign:  "left",
	}}

	if excerpt != "" && excerpt != title {
		items = append(items, model.Item{
			Type:       model.ItemTypeText,
			Tag:        "p",
			Text:       excerpt,
			BBox:       model.BBox{X: contentInset, Y: contentInset + titleHeight + excerptGap, Width: pageWidth - 2*contentInset, Height: excerptLineHeight},
			Background: "transparent",
			Color:      "#000000",
			FontFamily: "sans-serif",
			FontSize:   excerptFontSize,
			FontWeight: excerptFontWeight,
			TextAlign:  "left",
		})
	}

	s.logger.Debug("synthesized fallback items",
		zap.Int("count", len(items)),
		zap.String("title", title))
	return items
}

// extract parses raw HTML and recovers the best available title and an
// excerpt of the visible body text. The HTML parser is tolerant of broken
// markup, so parse errors only occur on reader failure, which cannot
// happen with a string source.
func (s *Synthesizer) extract(raw string) (title, excerpt string) {
	root, err := html.Parse(strings.NewReader(raw))
	if err != nil {
		return "", cleanText(raw, s.config.MaxExcerptLen)
	}

	if n := findElement(root, "title"); n != nil {
		title = cleanText(textContent(n), s.config.MaxTitleLen)
	}
	if title == "" {
		if n := findElement(root, "h1"); n != nil {
			title = cleanText(textContent(n), s.config.MaxTitleLen)
		}
	}

	body := findElement(root, "body")
	if body == nil {
		body = root
	}
	excerpt = cleanText(textContent(body), s.config.MaxExcerptLen)

	if title == "" && excerpt != "" {
		title = firstLine(excerpt, s.config.MaxTitleLen)
	}
	return title, excerpt
}

// findElement returns the first element with the given tag name, in
// document order.
func findElement(n *html.Node, tagName string) *html.Node {
	if n.Type == html.ElementNode && n.Data == tagName {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findElement(c, tagName); found != nil {
			return found
		}
	}
	return nil
}

// textContent collects the visible text under a node. Script, style and
// other non-rendered subtrees are skipped.
func textContent(n *html.Node) string {
	var b strings.Builder
	collectText(n, &b)
	return b.String()
}

func collectText(n *html.Node, b *strings.Builder) {
	if n.Type == html.TextNode {
		b.WriteString(n.Data)
		return
	}
	if n.Type == html.ElementNode && skippedElement(n.Data) {
		return
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collectText(c, b)
	}
	if n.Type == html.ElementNode {
		switch n.Data {
		case "p", "div", "li", "h1", "h2", "h3", "h4", "h5", "h6", "tr", "br", "title":
			b.WriteString(" ")
		}
	}
}

func skippedElement(tagName string) bool {
	switch tagName {
	case "script", "style", "noscript", "template", "svg", "math", "iframe", "object", "embed", "head":
		return true
	}
	return false
}

// cleanText normalizes text for output: NFC form, whitespace collapsed to
// single spaces, bounded to max bytes with a rune-safe cut that prefers a
// word boundary.
func cleanText(text string, max int) string {
	text = norm.NFC.String(text)
	text = strings.Join(strings.Fields(text), " ")
	if len(text) <= max {
		return text
	}

	cut := max
	for cut > 0 && !isRuneStart(text[cut]) {
		cut--
	}
	clipped := text[:cut]
	if idx := strings.LastIndexByte(clipped, ' '); idx > max/2 {
		clipped = clipped[:idx]
	}
	return strings.TrimRight(clipped, " ")
}

func isRuneStart(b byte) bool {
	return b&0xC0 != 0x80
}

// firstLine returns the leading sentence-ish portion of text for use as a
// title when the document has none.
func firstLine(text string, max int) string {
	if idx := strings.IndexAny(text, ".!?"); idx > 0 && idx < max {
		return strings.TrimSpace(text[:idx+1])
	}
	return cleanText(text, max)
}
