package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/securevox/whisperbridge/internal/audio"
	"github.com/securevox/whisperbridge/internal/bridge"
	"github.com/securevox/whisperbridge/internal/config"
	"github.com/securevox/whisperbridge/internal/whisper"
	"github.com/securevox/whisperbridge/internal/ws"
)

func NewRouter(cfg config.Config, ctx *bridge.Context, wss *ws.Server) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"ok": true, "multilingual": ctx.IsMultilingual()})
	})
	mux.HandleFunc("GET /v1/system-info", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"system_info": whisper.SystemInfo()})
	})
	mux.HandleFunc("POST /v1/transcribe", transcribeHandler(cfg, ctx))
	// Streaming transcription WebSocket
	mux.HandleFunc("GET /ws/transcribe", wss.Handle)
	return mux
}

func transcribeHandler(cfg config.Config, ctx *bridge.Context) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		requestID := uuid.NewString()
		w.Header().Set("X-Request-Id", requestID)
		logger := log.With().Str("request_id", requestID).Logger()

		body, err := readAllLimit(r.Body, cfg.MaxAudioBytes)
		if errors.Is(err, ErrBodyTooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, err)
			return
		}
		if err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		samples, err := audio.Decode(r.Header.Get("Content-Type"), body)
		if err != nil {
			logger.Warn().Err(err).Int("bytes", len(body)).Msg("audio decode failed")
			writeError(w, http.StatusBadRequest, err)
			return
		}

		language := r.URL.Query().Get("language")
		if language == "" {
			language = cfg.Language
		}

		start := time.Now()
		out, err := ctx.TranscribeJSON(samples, language, nil)
		if err != nil {
			logger.Warn().Err(err).Msg("transcription failed")
			writeError(w, statusFor(err), err)
			return
		}
		logger.Info().
			Int("samples", len(samples)).
			Str("language", language).
			Dur("elapsed", time.Since(start)).
			Msg("transcribed request")

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(out))
	}
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, bridge.ErrInvalidAudio):
		return http.StatusBadRequest
	case errors.Is(err, bridge.ErrNullContext):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]any{"error": err.Error()})
}
