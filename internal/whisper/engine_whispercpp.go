//go:build whisper_cpp

package whisper

/*
#cgo CFLAGS: -I${SRCDIR}/../../third_party/whisper.cpp -I${SRCDIR}/../../third_party/whisper.cpp/include -I${SRCDIR}/../../third_party/whisper.cpp/ggml/include
#cgo CXXFLAGS: -std=c++17 -I${SRCDIR}/../../third_party/whisper.cpp -I${SRCDIR}/../../third_party/whisper.cpp/include -I${SRCDIR}/../../third_party/whisper.cpp/ggml/include
#cgo LDFLAGS: -L${SRCDIR}/../../third_party/whisper.cpp/build -L${SRCDIR}/../../third_party/whisper.cpp/build/src -Wl,-rpath,${SRCDIR}/../../third_party/whisper.cpp/build/src -lwhisper -lstdc++ -lm

#include "stdlib.h"
#include "include/whisper.h"

void whisperGoProgress(struct whisper_context * ctx, struct whisper_state * state, int progress, void * user_data);
*/
import "C"

import (
	"errors"
	"fmt"
	"runtime"
	"runtime/cgo"
	"sync"
	"unsafe"

	"github.com/rs/zerolog/log"
)

func NativeAvailable() bool { return true }

// NativeModel owns a whisper_context created with GPU offload disabled.
type NativeModel struct {
	mu  sync.Mutex
	ctx *C.struct_whisper_context
}

// Open loads a ggml model from path on the CPU backend.
func Open(path string) (Model, error) {
	if path == "" {
		return nil, errors.New("whisper: model path required")
	}
	cPath := C.CString(path)
	defer C.free(unsafe.Pointer(cPath))

	cParams := C.whisper_context_default_params()
	cParams.use_gpu = C.bool(false)

	ctx := C.whisper_init_from_file_with_params(cPath, cParams)
	if ctx == nil {
		return nil, fmt.Errorf("whisper: init from %s: %w", path, ErrUnableToLoadModel)
	}
	log.Debug().Str("model", path).Msg("whisper: native context initialised")
	return &NativeModel{ctx: ctx}, nil
}

// SystemInfo returns whisper_print_system_info.
func SystemInfo() string {
	return C.GoString(C.whisper_print_system_info())
}

func (m *NativeModel) Full(params Params, samples []float32, onProgress func(progress int)) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ctx == nil || len(samples) == 0 {
		return -1
	}

	strategy := C.enum_whisper_sampling_strategy(C.WHISPER_SAMPLING_GREEDY)
	if params.Strategy == SamplingBeamSearch {
		strategy = C.WHISPER_SAMPLING_BEAM_SEARCH
	}
	cp := C.whisper_full_default_params(strategy)
	cp.print_realtime = C.bool(params.PrintRealtime)
	cp.print_progress = C.bool(params.PrintProgress)
	cp.print_timestamps = C.bool(params.PrintTimestamps)
	cp.print_special = C.bool(params.PrintSpecial)
	cp.translate = C.bool(params.Translate)
	cp.no_context = C.bool(params.NoContext)
	cp.single_segment = C.bool(params.SingleSegment)
	cp.n_threads = C.int(params.Threads)
	cp.offset_ms = C.int(params.OffsetMs)

	cLang := C.CString(params.Language)
	defer C.free(unsafe.Pointer(cLang))
	cp.language = cLang

	if onProgress != nil {
		handle := cgo.NewHandle(onProgress)
		defer handle.Delete()
		cp.progress_callback = (C.whisper_progress_callback)(C.whisperGoProgress)
		cp.progress_callback_user_data = unsafe.Pointer(&handle)
	}

	ret := C.whisper_full(m.ctx, cp, (*C.float)(unsafe.Pointer(&samples[0])), C.int(len(samples)))
	runtime.KeepAlive(samples)
	return int(ret)
}

func (m *NativeModel) NumSegments() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ctx == nil {
		return 0
	}
	return int(C.whisper_full_n_segments(m.ctx))
}

func (m *NativeModel) Segment(i int) Segment {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ctx == nil {
		return Segment{}
	}
	idx := C.int(i)
	return Segment{
		Text: C.GoString(C.whisper_full_get_segment_text(m.ctx, idx)),
		T0:   int64(C.whisper_full_get_segment_t0(m.ctx, idx)),
		T1:   int64(C.whisper_full_get_segment_t1(m.ctx, idx)),
	}
}

func (m *NativeModel) IsMultilingual() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ctx == nil {
		return false
	}
	return C.whisper_is_multilingual(m.ctx) != 0
}

func (m *NativeModel) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ctx != nil {
		C.whisper_free(m.ctx)
		m.ctx = nil
	}
	return nil
}

//export whisperGoProgress
func whisperGoProgress(ctx *C.struct_whisper_context, state *C.struct_whisper_state, progress C.int, userData unsafe.Pointer) {
	dispatchProgress(userData, int(progress))
}
