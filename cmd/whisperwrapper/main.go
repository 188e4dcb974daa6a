// Command whisperwrapper builds the whisper_wrapper C ABI as a shared library:
//
//	go build -tags whisper_cpp -buildmode=c-shared -o libwhisper_wrapper.so ./cmd/whisperwrapper
//
// Hosts include whisper_wrapper.h from this directory rather than the
// generated header.
package main

/*
#include <stdlib.h>

typedef void (*whisper_progress_callback_t)(int progress, void* user_data);

void whisperWrapperEmitProgress(whisper_progress_callback_t cb, int progress, void* user_data);
*/
import "C"

import (
	"errors"
	"sync"
	"unsafe"

	"github.com/rs/zerolog/log"

	"github.com/securevox/whisperbridge/internal/bridge"
	"github.com/securevox/whisperbridge/internal/config"
	"github.com/securevox/whisperbridge/internal/whisper"
)

// Handles returned to C are 1-byte C allocations; their address keys the registry.
var handles = bridge.NewHandles()

var errHandleRegistration = errors.New("failed to register context handle")

var systemInfo = sync.OnceValue(func() *C.char {
	return C.CString(whisper.SystemInfo())
})

var lastErrorCString struct {
	mu  sync.Mutex
	ptr *C.char
}

func init() {
	config.LoadLogging().Apply()
}

//export whisper_wrapper_init
func whisper_wrapper_init(modelPath *C.char) unsafe.Pointer {
	if modelPath == nil {
		bridge.RecordError(bridge.ErrNullModelPath)
		return nil
	}
	ctx, err := bridge.Init(C.GoString(modelPath))
	if err != nil {
		return nil
	}
	handle := C.malloc(1)
	if adoptContext(ctx, handle) == nil {
		C.free(handle)
		return nil
	}
	return handle
}

// adoptContext registers ctx under handle. On failure ctx is freed and the
// caller still owns handle.
func adoptContext(ctx *bridge.Context, handle unsafe.Pointer) unsafe.Pointer {
	if handle == nil || !handles.Put(uintptr(handle), ctx) {
		ctx.Free()
		bridge.RecordError(errHandleRegistration)
		return nil
	}
	log.Debug().Int("live", handles.Len()).Msg("whisperwrapper: context registered")
	return handle
}

//export whisper_wrapper_free
func whisper_wrapper_free(handle unsafe.Pointer) {
	ctx := handles.Take(uintptr(handle))
	if ctx == nil {
		return
	}
	ctx.Free()
	C.free(handle)
	log.Debug().Int("live", handles.Len()).Msg("whisperwrapper: context released")
}

//export whisper_wrapper_transcribe
func whisper_wrapper_transcribe(handle unsafe.Pointer, audioData *C.float, nSamples C.int, language *C.char, progressCallback C.whisper_progress_callback_t, userData unsafe.Pointer) *C.char {
	ctx := handles.Get(uintptr(handle))
	if ctx == nil {
		bridge.RecordError(bridge.ErrNullContext)
		return nil
	}
	if audioData == nil || nSamples <= 0 {
		bridge.RecordError(bridge.ErrInvalidAudio)
		return nil
	}
	samples := unsafe.Slice((*float32)(unsafe.Pointer(audioData)), int(nSamples))

	var lang string
	if language != nil {
		lang = C.GoString(language)
	}

	var progress bridge.ProgressFunc
	if progressCallback != nil {
		progress = func(p int) {
			C.whisperWrapperEmitProgress(progressCallback, C.int(p), userData)
		}
	}

	out, err := ctx.TranscribeJSON(samples, lang, progress)
	if err != nil {
		return nil
	}
	return C.CString(out)
}

//export whisper_wrapper_free_string
func whisper_wrapper_free_string(str *C.char) {
	if str != nil {
		C.free(unsafe.Pointer(str))
	}
}

//export whisper_wrapper_get_system_info
func whisper_wrapper_get_system_info() *C.char {
	return systemInfo()
}

//export whisper_wrapper_is_multilingual
func whisper_wrapper_is_multilingual(handle unsafe.Pointer) C.int {
	if handles.Get(uintptr(handle)).IsMultilingual() {
		return 1
	}
	return 0
}

//export whisper_wrapper_get_last_error
func whisper_wrapper_get_last_error() *C.char {
	lastErrorCString.mu.Lock()
	defer lastErrorCString.mu.Unlock()
	if lastErrorCString.ptr != nil {
		C.free(unsafe.Pointer(lastErrorCString.ptr))
	}
	lastErrorCString.ptr = C.CString(bridge.LastError())
	return lastErrorCString.ptr
}

func main() {}
