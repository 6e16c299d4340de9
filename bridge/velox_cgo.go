//go:build velox

package bridge

/*
#cgo LDFLAGS: -lvelox_engine
#include <stdint.h>
#include <stdlib.h>

typedef struct LayoutBoxArray LayoutBoxArray;
typedef struct FFILayoutBox FFILayoutBox;

extern LayoutBoxArray* parse_html(const char* input);
extern int32_t get_layout_box_count(LayoutBoxArray* arr);
extern int32_t get_layout_box_batch(LayoutBoxArray* arr, int32_t start, int32_t count, FFILayoutBox** out);
extern void free_ffi_layout_box(FFILayoutBox* box);
extern void free_layout_box_array(LayoutBoxArray* arr);
*/
import "C"

import (
	"strings"
	"unsafe"
)

// veloxEngine binds the native velox rendering library. The engine is not
// reentrant; callers serialize access (the pipeline holds a weight-1 gate).
type veloxEngine struct{}

// NewEngine returns the native engine binding.
func NewEngine() (Engine, error) {
	return veloxEngine{}, nil
}

func (veloxEngine) Parse(html string) (Handle, error) {
	// The engine takes a null-terminated buffer; embedded NULs would
	// silently truncate the document, so they are dropped up front.
	if strings.IndexByte(html, 0) >= 0 {
		html = strings.ReplaceAll(html, "\x00", "")
	}

	cs := C.CString(html)
	if cs == nil {
		return 0, nil
	}
	defer C.free(unsafe.Pointer(cs))

	arr := C.parse_html(cs)
	if arr == nil {
		return 0, nil
	}
	return Handle(uintptr(unsafe.Pointer(arr))), nil
}

func (veloxEngine) ItemCount(h Handle) int32 {
	if h == 0 {
		return 0
	}
	return int32(C.get_layout_box_count((*C.LayoutBoxArray)(unsafe.Pointer(h))))
}

func (veloxEngine) ItemBatch(h Handle, start int32, out []ItemPtr) int32 {
	if h == 0 || len(out) == 0 {
		return 0
	}
	n := C.get_layout_box_batch(
		(*C.LayoutBoxArray)(unsafe.Pointer(h)),
		C.int32_t(start),
		C.int32_t(len(out)),
		(**C.FFILayoutBox)(unsafe.Pointer(&out[0])),
	)
	return int32(n)
}

func (veloxEngine) FreeItem(p ItemPtr) {
	if p != 0 {
		C.free_ffi_layout_box((*C.FFILayoutBox)(unsafe.Pointer(p)))
	}
}

func (veloxEngine) FreeHandle(h Handle) {
	if h != 0 {
		C.free_layout_box_array((*C.LayoutBoxArray)(unsafe.Pointer(h)))
	}
}
