//go:build !debug

package alloc

import "unsafe"

func recordClass(unsafe.Pointer, int) {}
func forgetClass(unsafe.Pointer)      {}

// ClassOf always reports no record outside debug builds.
func ClassOf(unsafe.Pointer) (int, bool) { return 0, false }
