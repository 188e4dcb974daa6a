package main

/*
#include <stdlib.h>

typedef void (*whisper_progress_callback_t)(int progress, void* user_data);

#define TICK_RECORDER_CAP 256

// buf[0] holds the count, buf[1..] the recorded ticks.
static void recordTick(int progress, void* user_data) {
	int* buf = (int*)user_data;
	if (buf[0] < TICK_RECORDER_CAP) {
		buf[1 + buf[0]] = progress;
		buf[0]++;
	}
}

static whisper_progress_callback_t tickRecorder(void) {
	return recordTick;
}
*/
import "C"

import "unsafe"

// Go-typed entry points into the exported C ABI, driven from C memory the way
// a native host would.

func callInit(path *string) unsafe.Pointer {
	if path == nil {
		return whisper_wrapper_init(nil)
	}
	cPath := C.CString(*path)
	defer C.free(unsafe.Pointer(cPath))
	return whisper_wrapper_init(cPath)
}

func callFree(handle unsafe.Pointer) {
	whisper_wrapper_free(handle)
}

// tickLog is a C buffer the recording callback appends progress values to.
type tickLog struct {
	buf unsafe.Pointer
}

func newTickLog() *tickLog {
	size := C.size_t(unsafe.Sizeof(C.int(0))) * (C.TICK_RECORDER_CAP + 1)
	buf := C.calloc(1, size)
	return &tickLog{buf: buf}
}

func (l *tickLog) ticks() []int {
	cells := unsafe.Slice((*C.int)(l.buf), C.TICK_RECORDER_CAP+1)
	out := make([]int, 0, int(cells[0]))
	for i := 1; i <= int(cells[0]); i++ {
		out = append(out, int(cells[i]))
	}
	return out
}

func (l *tickLog) free() {
	C.free(l.buf)
}

// callTranscribe copies samples into C memory and transcribes them. A nil rec
// passes a NULL callback. ok is false when the ABI returned NULL.
func callTranscribe(handle unsafe.Pointer, samples []float32, language *string, rec *tickLog) (string, bool) {
	var audio *C.float
	if len(samples) > 0 {
		audio = (*C.float)(C.malloc(C.size_t(4 * len(samples))))
		defer C.free(unsafe.Pointer(audio))
		copy(unsafe.Slice((*float32)(unsafe.Pointer(audio)), len(samples)), samples)
	}

	var cLang *C.char
	if language != nil {
		cLang = C.CString(*language)
		defer C.free(unsafe.Pointer(cLang))
	}

	var (
		cb       C.whisper_progress_callback_t
		userData unsafe.Pointer
	)
	if rec != nil {
		cb = C.tickRecorder()
		userData = rec.buf
	}

	out := whisper_wrapper_transcribe(handle, audio, C.int(len(samples)), cLang, cb, userData)
	if out == nil {
		return "", false
	}
	defer whisper_wrapper_free_string(out)
	return C.GoString(out), true
}

func callFreeString(s *string) {
	if s == nil {
		whisper_wrapper_free_string(nil)
		return
	}
	whisper_wrapper_free_string(C.CString(*s))
}

func callIsMultilingual(handle unsafe.Pointer) int {
	return int(whisper_wrapper_is_multilingual(handle))
}

func callSystemInfo() (string, unsafe.Pointer) {
	p := whisper_wrapper_get_system_info()
	return C.GoString(p), unsafe.Pointer(p)
}

func callLastError() (string, unsafe.Pointer) {
	p := whisper_wrapper_get_last_error()
	return C.GoString(p), unsafe.Pointer(p)
}
