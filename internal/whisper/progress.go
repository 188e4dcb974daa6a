//go:build cgo

package whisper

import (
	"runtime/cgo"
	"unsafe"
)

// progressFromHandle resolves the callback stored behind a *cgo.Handle passed to C
// as user data. Deleted or foreign handles resolve to ok=false.
func progressFromHandle(userData unsafe.Pointer) (func(int), bool) {
	if userData == nil {
		return nil, false
	}

	handlePtr := (*cgo.Handle)(userData)
	handle := *handlePtr
	if handle == 0 {
		return nil, false
	}
	var (
		value     any
		recovered bool
	)

	func() {
		defer func() {
			if r := recover(); r != nil {
				recovered = true
				value = nil
			}
		}()
		value = handle.Value()
	}()

	if recovered || value == nil {
		return nil, false
	}

	fn, ok := value.(func(int))
	return fn, ok
}

func dispatchProgress(userData unsafe.Pointer, progress int) {
	fn, ok := progressFromHandle(userData)
	if !ok || fn == nil {
		return
	}
	fn(progress)
}
