//go:build debug

package alloc

import "unsafe"

var globalPageMap = newPageMap()

func recordClass(p unsafe.Pointer, c int) { globalPageMap.Record(p, c) }
func forgetClass(p unsafe.Pointer)         { globalPageMap.Forget(p) }

// ClassOf reports the size class p was carved from, if the debug page map
// has a record of it. Only meaningful in debug builds; always returns
// (0, false) otherwise.
func ClassOf(p unsafe.Pointer) (int, bool) { return globalPageMap.ClassOf(p) }
