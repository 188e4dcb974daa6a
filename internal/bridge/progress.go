package bridge

import (
	"sync/atomic"

	"github.com/rs/zerolog/log"
)

// ProgressFunc receives engine progress in [0,100] on the transcribing thread.
type ProgressFunc func(progress int)

// progressRelay binds a ProgressFunc to a single transcription call. Once
// released, further ticks are dropped, so the host callback is never reached
// after the call returns.
type progressRelay struct {
	fn       ProgressFunc
	released atomic.Bool
}

func bindProgress(fn ProgressFunc) *progressRelay {
	return &progressRelay{fn: fn}
}

// callback returns the function handed to the engine, or nil when the caller
// did not ask for progress.
func (r *progressRelay) callback() func(int) {
	if r.fn == nil {
		return nil
	}
	return r.emit
}

func (r *progressRelay) emit(progress int) {
	if r.released.Load() {
		return
	}
	// A panic must not unwind into engine frames.
	defer func() {
		if rec := recover(); rec != nil {
			r.released.Store(true)
			log.Error().Interface("panic", rec).Int("progress", progress).Msg("bridge: progress callback panicked; detached")
		}
	}()
	r.fn(progress)
}

func (r *progressRelay) release() {
	r.released.Store(true)
}
