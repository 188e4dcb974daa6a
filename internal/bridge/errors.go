package bridge

import (
	"errors"
	"fmt"
	"sync"
)

var (
	ErrNullModelPath  = errors.New("model path is null")
	ErrEmptyModelPath = errors.New("model path is empty")
	ErrNullContext    = errors.New("context is null")
	ErrInvalidAudio   = errors.New("invalid audio data")
)

// ModelLoadError reports a model file that could not be read or parsed.
type ModelLoadError struct {
	Path string
	Err  error
}

func (e *ModelLoadError) Error() string { return "failed to load model from: " + e.Path }

func (e *ModelLoadError) Unwrap() error { return e.Err }

// EngineError carries the non-zero result code returned by the engine.
type EngineError struct {
	Code int
}

func (e *EngineError) Error() string {
	return fmt.Sprintf("transcription failed with code: %d", e.Code)
}

// lastError is the process-wide last failure message. It is only ever
// overwritten; successful calls leave it untouched.
var lastError struct {
	mu  sync.Mutex
	msg string
}

// RecordError stores err as the last error and returns it unchanged.
// A nil err is ignored.
func RecordError(err error) error {
	if err == nil {
		return nil
	}
	lastError.mu.Lock()
	lastError.msg = err.Error()
	lastError.mu.Unlock()
	return err
}

// LastError returns the message recorded by the most recent failing call.
func LastError() string {
	lastError.mu.Lock()
	defer lastError.mu.Unlock()
	return lastError.msg
}
