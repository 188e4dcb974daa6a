package whisper

import (
	"errors"
	"runtime"
)

// SampleRate is the only sample rate the engine accepts.
const SampleRate = 16000

// MaxThreads caps the decoder worker count regardless of available cores.
const MaxThreads = 4

var ErrUnableToLoadModel = errors.New("unable to load model")

// Model is a loaded whisper context. Implementations mirror the whisper.h calls
// the transcription boundary relies on and are not safe for concurrent Full calls.
type Model interface {
	// Full runs the complete encoder/decoder pipeline over 16kHz mono samples and
	// returns the engine result code (0 on success). onProgress, when non-nil, is
	// invoked synchronously on the calling thread.
	Full(params Params, samples []float32, onProgress func(progress int)) int
	// NumSegments reports the number of segments produced by the last Full call.
	NumSegments() int
	// Segment returns segment i of the last Full call.
	Segment(i int) Segment
	IsMultilingual() bool
	Close() error
}

// Segment is one timed span of text. T0 and T1 are in centiseconds.
type Segment struct {
	Text string
	T0   int64
	T1   int64
}

// SamplingStrategy selects the decoder search.
type SamplingStrategy int

const (
	SamplingGreedy SamplingStrategy = iota
	SamplingBeamSearch
)

// Params mirrors the subset of whisper_full_params the boundary sets.
type Params struct {
	Strategy        SamplingStrategy
	Language        string
	Threads         int
	OffsetMs        int
	Translate       bool
	NoContext       bool
	SingleSegment   bool
	PrintRealtime   bool
	PrintProgress   bool
	PrintTimestamps bool
	PrintSpecial    bool
}

// DefaultParams returns the fixed configuration used for every transcription.
func DefaultParams(language string) Params {
	if language == "" {
		language = "en"
	}
	return Params{
		Strategy:        SamplingGreedy,
		Language:        language,
		Threads:         threadCount(runtime.NumCPU()),
		PrintTimestamps: true,
		NoContext:       true,
	}
}

func threadCount(cpus int) int {
	if cpus > MaxThreads {
		return MaxThreads
	}
	if cpus < 1 {
		return 1
	}
	return cpus
}
