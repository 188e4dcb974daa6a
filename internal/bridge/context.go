// Package bridge is the transcription boundary shared by the C ABI, the mobile
// facade and the network host. It owns the engine context lifetime, relays
// progress for the duration of one call, encodes results and keeps the
// last-error state hosts read after a failed call.
package bridge

import (
	"fmt"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/securevox/whisperbridge/internal/whisper"
)

// Loader opens an engine model from a file path.
type Loader func(path string) (whisper.Model, error)

// Context owns one loaded engine model. A nil or freed Context behaves as a
// null handle: operations fail with ErrNullContext and IsMultilingual is false.
// Transcriptions on one Context are serialized; IsMultilingual does not wait
// for them.
type Context struct {
	mu           sync.Mutex
	model        whisper.Model
	path         string
	multilingual bool
	freed        atomic.Bool
}

// Init loads the model at modelPath with the compiled engine.
func Init(modelPath string) (*Context, error) {
	return InitWith(modelPath, whisper.Open)
}

// InitWith loads the model at modelPath through load.
func InitWith(modelPath string, load Loader) (c *Context, err error) {
	defer capturePanic("init", &err)

	if modelPath == "" {
		return nil, RecordError(ErrEmptyModelPath)
	}
	log.Info().Str("model", modelPath).Msg("bridge: loading model")

	if _, statErr := os.Stat(modelPath); statErr != nil {
		return nil, RecordError(&ModelLoadError{Path: modelPath, Err: statErr})
	}
	model, loadErr := load(modelPath)
	if loadErr != nil || model == nil {
		if loadErr == nil {
			loadErr = whisper.ErrUnableToLoadModel
		}
		log.Error().Err(loadErr).Str("model", modelPath).Msg("bridge: failed to load model")
		return nil, RecordError(&ModelLoadError{Path: modelPath, Err: loadErr})
	}

	multilingual := model.IsMultilingual()
	log.Info().Str("model", modelPath).Bool("multilingual", multilingual).Msg("bridge: model loaded")
	return &Context{model: model, path: modelPath, multilingual: multilingual}, nil
}

// Free releases the engine model. It is safe on a nil Context and a no-op
// after the first call. Free must not be called from a progress callback of
// a transcription running on the same Context.
func (c *Context) Free() {
	if c == nil {
		return
	}
	c.freed.Store(true)
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.model == nil {
		return
	}
	if err := c.model.Close(); err != nil {
		log.Warn().Err(err).Str("model", c.path).Msg("bridge: close model")
	}
	c.model = nil
	log.Info().Str("model", c.path).Msg("bridge: context freed")
}

// ModelPath returns the file the context was loaded from.
func (c *Context) ModelPath() string {
	if c == nil {
		return ""
	}
	return c.path
}

// IsMultilingual reports whether the loaded model supports languages other
// than English. It is false for a nil or freed Context, and false as soon as
// Free has been called even while Free waits for a running transcription.
func (c *Context) IsMultilingual() bool {
	if c == nil || c.freed.Load() {
		return false
	}
	return c.multilingual
}

// Transcribe runs the engine over samples (16kHz mono float32 in [-1,1]) and
// returns the produced segments in engine order. samples is only read for
// the duration of the call. progress may be nil. An empty language means "en".
func (c *Context) Transcribe(samples []float32, language string, progress ProgressFunc) (segments []Segment, err error) {
	if c == nil {
		return nil, RecordError(ErrNullContext)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.model == nil || c.freed.Load() {
		return nil, RecordError(ErrNullContext)
	}
	if len(samples) == 0 {
		return nil, RecordError(ErrInvalidAudio)
	}
	defer capturePanic("transcribe", &err)

	params := whisper.DefaultParams(language)
	relay := bindProgress(progress)
	defer relay.release()

	log.Info().
		Int("samples", len(samples)).
		Float64("seconds", float64(len(samples))/whisper.SampleRate).
		Str("language", params.Language).
		Int("threads", params.Threads).
		Msg("bridge: transcribing")

	start := time.Now()
	if code := c.model.Full(params, samples, relay.callback()); code != 0 {
		log.Warn().Int("code", code).Int("samples", len(samples)).Msg("bridge: transcription failed")
		return nil, RecordError(&EngineError{Code: code})
	}

	n := c.model.NumSegments()
	segments = make([]Segment, 0, n)
	for i := 0; i < n; i++ {
		seg := c.model.Segment(i)
		segments = append(segments, Segment{
			Text:  seg.Text,
			Start: float64(seg.T0) * 10,
			End:   float64(seg.T1) * 10,
		})
	}

	log.Info().
		Int("segments", n).
		Dur("elapsed", time.Since(start)).
		Msg("bridge: transcription complete")
	return segments, nil
}

// TranscribeJSON is Transcribe followed by EncodeSegments.
func (c *Context) TranscribeJSON(samples []float32, language string, progress ProgressFunc) (string, error) {
	segments, err := c.Transcribe(samples, language, progress)
	if err != nil {
		return "", err
	}
	return EncodeSegments(segments), nil
}

func capturePanic(op string, err *error) {
	if r := recover(); r != nil {
		log.Error().Interface("panic", r).Str("op", op).Msg("bridge: recovered panic")
		*err = RecordError(fmt.Errorf("%s: internal error: %v", op, r))
	}
}
