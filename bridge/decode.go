package bridge

import (
	"strings"
	"unsafe"
)

// Bounds for defensive decoding. The engine itself truncates strings at 500
// bytes, but nothing here trusts that: scans and output are bounded locally.
const (
	// maxScanBytes is the hard limit on bytes examined looking for a
	// terminator
	maxScanBytes = 1000

	// maxDecodedLen is the hard limit on decoded output length in bytes
	maxDecodedLen = 500

	// minValidAddr rejects pointers into the first page; a tiny address is
	// a mangled null, not data
	minValidAddr = 4096

	// maxValidAddr is the upper bound of the plausible user-space address
	// window on 64-bit platforms
	maxValidAddr = uintptr(1) << 48
)

// validAddress reports whether p falls inside the plausible process address
// window. It says nothing about what the address points at; it only filters
// values that cannot be a live allocation.
func validAddress(p uintptr) bool {
	return p >= minValidAddr && p < maxValidAddr
}

// validStructPointer additionally requires word alignment, which every
// engine-allocated record has. A misaligned value is a corrupt pointer, not
// a packed struct.
func validStructPointer(p uintptr) bool {
	return validAddress(p) && p%unsafe.Alignof(uintptr(0)) == 0
}

// DecodeCString reads a null-terminated foreign string defensively.
//
// A null, out-of-range, or otherwise implausible pointer returns def without
// any dereference. Otherwise bytes are read one at a time up to maxScanBytes:
// a zero byte ends the string, and a control byte outside ordinary whitespace
// aborts the scan early, yielding whatever was collected. The result is
// cleaned to valid UTF-8 and truncated to maxDecodedLen.
func DecodeCString(p uintptr, def string) string {
	if !validAddress(p) {
		return def
	}

	buf := make([]byte, 0, 64)
	for i := uintptr(0); i < maxScanBytes; i++ {
		b := *(*byte)(unsafe.Pointer(p + i))
		if b == 0 {
			break
		}
		if b < 0x20 && b != '\t' && b != '\n' && b != '\r' {
			break
		}
		if b == 0x7f {
			break
		}
		buf = append(buf, b)
	}

	s := strings.ToValidUTF8(string(buf), "")
	if len(s) > maxDecodedLen {
		s = truncateUTF8(s, maxDecodedLen)
	}
	return s
}

// truncateUTF8 cuts s to at most n bytes without splitting a rune.
func truncateUTF8(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && s[n]&0xC0 == 0x80 {
		n--
	}
	return s[:n]
}
