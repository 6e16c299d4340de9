package pipeline

import (
	"strings"
	"testing"
)

func TestSanitizeStripsScript(t *testing.T) {
	out := Sanitize(`<html><body><script>alert("x")</script><p>kept</p></body></html>`)

	if strings.Contains(out, "alert") {
		t.Errorf("Expected script content stripped, got '%s'", out)
	}
	if !strings.Contains(out, "<p>kept</p>") {
		t.Errorf("Expected other markup preserved, got '%s'", out)
	}
}

func TestSanitizeStripsStyle(t *testing.T) {
	out := Sanitize(`<div><style>.a { color: red; }</style><span>visible</span></div>`)

	if strings.Contains(out, "color: red") {
		t.Errorf("Expected style content stripped, got '%s'", out)
	}
	if !strings.Contains(out, "<span>visible</span>") {
		t.Errorf("Expected span preserved, got '%s'", out)
	}
}

func TestSanitizeStripsComments(t *testing.T) {
	out := Sanitize(`<div><!-- hidden note --><p>shown</p></div>`)

	if strings.Contains(out, "hidden note") {
		t.Errorf("Expected comment stripped, got '%s'", out)
	}
	if !strings.Contains(out, "<p>shown</p>") {
		t.Errorf("Expected paragraph preserved, got '%s'", out)
	}
}

func TestSanitizeScriptWithAttributes(t *testing.T) {
	out := Sanitize(`<script type="module" src="x.js">let y = 2;</script><p>after</p>`)

	if strings.Contains(out, "let y") || strings.Contains(out, "x.js") {
		t.Errorf("Expected attributed script stripped, got '%s'", out)
	}
	if !strings.Contains(out, "<p>after</p>") {
		t.Errorf("Expected trailing markup preserved, got '%s'", out)
	}
}

func TestSanitizePreservesPlainText(t *testing.T) {
	in := "just some plain text with no markup"
	if out := Sanitize(in); out != in {
		t.Errorf("Expected plain text unchanged, got '%s'", out)
	}
}

func TestSanitizePreservesAttributesAndEntities(t *testing.T) {
	in := `<a href="https://example.com?a=1&amp;b=2" class="link">go</a>`
	out := Sanitize(in)

	if !strings.Contains(out, `href="https://example.com?a=1&amp;b=2"`) {
		t.Errorf("Expected raw attribute bytes preserved, got '%s'", out)
	}
}

func TestLooksLikeDocument(t *testing.T) {
	tests := []struct {
		name string
		text string
		want bool
	}{
		{"html tag", "<html><body>x</body></html>", true},
		{"body tag only", "<body>x</body>", true},
		{"div only", "<div>x</div>", true},
		{"uppercase div", "<DIV>x</DIV>", true},
		{"bare fragment", "<p>just a paragraph</p>", false},
		{"plain text", "no markup at all", false},
		{"marker past sniff window", strings.Repeat("a", 2000) + "<div>late</div>", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := looksLikeDocument(tt.text); got != tt.want {
				t.Errorf("Expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestWrapFragment(t *testing.T) {
	out := wrapFragment("<p>fragment</p>")

	if !strings.HasPrefix(out, "<html><body><div>") {
		t.Errorf("Expected document prefix, got '%s'", out)
	}
	if !strings.HasSuffix(out, "</div></body></html>") {
		t.Errorf("Expected document suffix, got '%s'", out)
	}
	if !strings.Contains(out, "<p>fragment</p>") {
		t.Errorf("Expected original content preserved, got '%s'", out)
	}
	if !looksLikeDocument(out) {
		t.Error("Expected wrapped fragment to pass the structural check")
	}
}
