// Package whisperlib is the gomobile surface of the transcription boundary.
// It mirrors the WhisperLib class used by the Android app:
//
//	gomobile bind -target=android -tags whisper_cpp ./mobile/whisperlib
//
// Contexts are referenced by opaque int64 handles. Calls that fail return 0 or
// "" and leave the reason in GetLastError.
package whisperlib

import (
	"errors"

	"github.com/rs/zerolog/log"

	"github.com/securevox/whisperbridge/internal/audio"
	"github.com/securevox/whisperbridge/internal/bridge"
	"github.com/securevox/whisperbridge/internal/config"
	"github.com/securevox/whisperbridge/internal/whisper"
)

// ProgressCallback receives transcription progress in [0,100].
type ProgressCallback interface {
	OnProgress(progress int32)
}

var handles = bridge.NewHandles()

func init() {
	config.LoadLogging().Apply()
}

// InitContext loads a model and returns its handle, or 0 on failure.
func InitContext(modelPath string) int64 {
	ctx, err := bridge.Init(modelPath)
	if err != nil {
		return 0
	}
	return int64(handles.Add(ctx))
}

// FreeContext releases the context behind contextPtr. Unknown or already
// released handles are ignored.
func FreeContext(contextPtr int64) {
	if ctx := lookup(contextPtr, true); ctx != nil {
		ctx.Free()
		log.Debug().Int64("handle", contextPtr).Int("live", handles.Len()).Msg("whisperlib: context released")
	}
}

// TranscribeAudio transcribes little-endian float32 samples at 16kHz mono and
// returns the segments as a JSON array, or "" on failure. cb may be nil.
func TranscribeAudio(contextPtr int64, audioData []byte, language string, cb ProgressCallback) string {
	ctx := lookup(contextPtr, false)
	if ctx == nil {
		bridge.RecordError(bridge.ErrNullContext)
		return ""
	}
	samples, err := audio.DecodeFloat32LE(audioData)
	if err != nil {
		log.Warn().Err(err).Int("bytes", len(audioData)).Msg("whisperlib: rejecting audio")
		bridge.RecordError(bridge.ErrInvalidAudio)
		return ""
	}

	var progress bridge.ProgressFunc
	if cb != nil {
		progress = func(p int) { cb.OnProgress(int32(p)) }
	}
	out, err := ctx.TranscribeJSON(samples, language, progress)
	if err != nil {
		var engErr *bridge.EngineError
		if errors.As(err, &engErr) {
			log.Warn().Int("code", engErr.Code).Msg("whisperlib: transcription failed")
		}
		return ""
	}
	return out
}

func GetSystemInfo() string {
	return whisper.SystemInfo()
}

// IsMultilingual is false for unknown handles.
func IsMultilingual(contextPtr int64) bool {
	return lookup(contextPtr, false).IsMultilingual()
}

func GetLastError() string {
	return bridge.LastError()
}

func lookup(contextPtr int64, take bool) *bridge.Context {
	if contextPtr <= 0 {
		return nil
	}
	if take {
		return handles.Take(uintptr(contextPtr))
	}
	return handles.Get(uintptr(contextPtr))
}
