package bridge

import (
	"runtime"
	"strings"
	"testing"
	"unsafe"
)

// cstring returns the address of a null-terminated copy of s, plus the
// backing slice to keep alive for the duration of the test.
func cstring(s string) (uintptr, []byte) {
	b := append([]byte(s), 0)
	return uintptr(unsafe.Pointer(&b[0])), b
}

func TestDecodeCString_InvalidPointers(t *testing.T) {
	tests := []struct {
		name string
		ptr  uintptr
	}{
		{"null", 0},
		{"first page", 1},
		{"below min address", minValidAddr - 1},
		{"above address window", maxValidAddr},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DecodeCString(tt.ptr, "fallback"); got != "fallback" {
				t.Errorf("Expected default for %s pointer, got %q", tt.name, got)
			}
		})
	}
}

func TestDecodeCString_ReadsUntilTerminator(t *testing.T) {
	ptr, keep := cstring("hello world")
	defer runtime.KeepAlive(keep)

	if got := DecodeCString(ptr, "def"); got != "hello world" {
		t.Errorf("Expected %q, got %q", "hello world", got)
	}
}

func TestDecodeCString_EmptyString(t *testing.T) {
	ptr, keep := cstring("")
	defer runtime.KeepAlive(keep)

	// An empty string is a legitimate value, not a failure.
	if got := DecodeCString(ptr, "def"); got != "" {
		t.Errorf("Expected empty string, got %q", got)
	}
}

func TestDecodeCString_ControlByteAbortsEarly(t *testing.T) {
	ptr, keep := cstring("abc\x01def")
	defer runtime.KeepAlive(keep)

	if got := DecodeCString(ptr, "def"); got != "abc" {
		t.Errorf("Expected scan aborted at control byte, got %q", got)
	}
}

func TestDecodeCString_WhitespaceAllowed(t *testing.T) {
	ptr, keep := cstring("a\tb\nc")
	defer runtime.KeepAlive(keep)

	if got := DecodeCString(ptr, "def"); got != "a\tb\nc" {
		t.Errorf("Expected whitespace preserved, got %q", got)
	}
}

func TestDecodeCString_UnterminatedBounded(t *testing.T) {
	// No terminator within the scan window: the scan must stop at
	// maxScanBytes and the output must be truncated to maxDecodedLen.
	b := []byte(strings.Repeat("a", maxScanBytes+50))
	ptr := uintptr(unsafe.Pointer(&b[0]))
	defer runtime.KeepAlive(b)

	got := DecodeCString(ptr, "def")
	if len(got) != maxDecodedLen {
		t.Errorf("Expected output truncated to %d bytes, got %d", maxDecodedLen, len(got))
	}
}

func TestDecodeCString_TruncationRuneSafe(t *testing.T) {
	// A multi-byte rune straddling the truncation point must not be split.
	s := strings.Repeat("a", maxDecodedLen-1) + "é" // 2-byte rune at the cut
	ptr, keep := cstring(s + strings.Repeat("b", 20))
	defer runtime.KeepAlive(keep)

	got := DecodeCString(ptr, "def")
	if len(got) > maxDecodedLen {
		t.Errorf("Output exceeds max length: %d", len(got))
	}
	if !strings.HasPrefix(s, got) {
		t.Error("Truncation split a rune")
	}
}

func TestDecodeCString_InvalidUTF8Cleaned(t *testing.T) {
	ptr, keep := cstring("ok\xffbad")
	defer runtime.KeepAlive(keep)

	got := DecodeCString(ptr, "def")
	if strings.Contains(got, "\xff") {
		t.Errorf("Expected invalid UTF-8 removed, got %q", got)
	}
}

func TestValidStructPointer_Alignment(t *testing.T) {
	var buf [16]byte
	base := uintptr(unsafe.Pointer(&buf[0]))
	aligned := base + (8-base%8)%8

	if !validStructPointer(aligned) {
		t.Error("Expected aligned heap pointer to validate")
	}
	if validStructPointer(aligned + 1) {
		t.Error("Expected misaligned pointer to be rejected")
	}
	if validStructPointer(0) {
		t.Error("Expected null pointer to be rejected")
	}
	runtime.KeepAlive(&buf)
}
