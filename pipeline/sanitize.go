package pipeline

import (
	"strings"

	"golang.org/x/net/html"
)

// sniffWindow bounds how far into the input the structural-marker check
// looks. Real documents declare their structure early.
const sniffWindow = 1024

// Sanitize strips <script> and <style> regions and HTML comments from
// raw markup, passing everything else through byte for byte. The result
// is fed to the native engine; the unmodified original stays available
// for fallback synthesis.
func Sanitize(raw string) string {
	z := html.NewTokenizer(strings.NewReader(raw))
	var b strings.Builder
	b.Grow(len(raw))

	skip := ""
	for {
		tt := z.Next()
		if tt == html.ErrorToken {
			break
		}

		name := ""
		switch tt {
		case html.StartTagToken, html.EndTagToken, html.SelfClosingTagToken:
			n, _ := z.TagName()
			name = string(n)
		}

		switch {
		case skip != "":
			// Inside a stripped region. Only the matching end tag
			// leaves it; the raw text inside is discarded.
			if tt == html.EndTagToken && name == skip {
				skip = ""
			}
		case tt == html.CommentToken:
			// Dropped.
		case tt == html.StartTagToken && stripTag(name):
			skip = name
		default:
			b.Write(z.Raw())
		}
	}
	return b.String()
}

func stripTag(name string) bool {
	return name == "script" || name == "style"
}

// looksLikeDocument reports whether the text carries a minimal structural
// marker near its start. Bare fragments confuse the native engine, so
// anything without one gets wrapped before parsing.
func looksLikeDocument(text string) bool {
	window := text
	if len(window) > sniffWindow {
		window = window[:sniffWindow]
	}
	window = strings.ToLower(window)
	return strings.Contains(window, "<html") ||
		strings.Contains(window, "<body") ||
		strings.Contains(window, "<div")
}

// wrapFragment encloses a bare fragment in a minimal document container.
func wrapFragment(text string) string {
	var b strings.Builder
	b.Grow(len(text) + 40)
	b.WriteString("<html><body><div>")
	b.WriteString(text)
	b.WriteString("</div></body></html>")
	return b.String()
}
