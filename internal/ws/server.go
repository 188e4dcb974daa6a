package ws

import (
	"encoding/base64"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/securevox/whisperbridge/internal/audio"
	"github.com/securevox/whisperbridge/internal/bridge"
	"github.com/securevox/whisperbridge/internal/config"
)

const readTimeout = 60 * time.Second

// Server accumulates audio per WebSocket session and transcribes it on stop,
// streaming engine progress back to the client.
type Server struct {
	cfg      config.Config
	ctx      *bridge.Context
	upgrader websocket.Upgrader
	mu       sync.RWMutex
	sessions map[string]*websocket.Conn
}

func NewServer(cfg config.Config, ctx *bridge.Context) *Server {
	return &Server{
		cfg: cfg,
		ctx: ctx,
		upgrader: websocket.Upgrader{
			CheckOrigin:     func(r *http.Request) bool { return true },
			ReadBufferSize:  1024 * 16,
			WriteBufferSize: 1024 * 16,
		},
		sessions: make(map[string]*websocket.Conn),
	}
}

func (s *Server) Handle(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error().Err(err).Msg("ws upgrade failed")
		return
	}
	defer conn.Close()

	sessionID := uuid.NewString()
	s.register(sessionID, conn)
	defer s.unregister(sessionID)

	_ = conn.SetReadDeadline(time.Now().Add(readTimeout))
	conn.SetPongHandler(func(string) error { _ = conn.SetReadDeadline(time.Now().Add(readTimeout)); return nil })

	var (
		language   = s.cfg.Language
		samples    []float32
		maxSamples = s.cfg.MaxAudioBytes / 4
		logger     = log.With().Str("session", sessionID).Logger()
	)

	for {
		mt, data, err := conn.ReadMessage()
		if err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logger.Warn().Err(err).Msg("ws read error")
			}
			return
		}
		_ = conn.SetReadDeadline(time.Now().Add(readTimeout))
		if mt != websocket.TextMessage {
			continue
		}
		var msg map[string]any
		if err := json.Unmarshal(data, &msg); err != nil {
			_ = writeJSON(conn, map[string]any{"type": "error", "detail": "invalid json"})
			continue
		}
		switch msg["type"] {
		case "ping":
			_ = writeJSON(conn, map[string]any{"type": "pong", "ts": msg["ts"]})
		case "start":
			if v, ok := msg["language"].(string); ok && v != "" {
				language = v
			}
			samples = samples[:0]
			logger.Info().Str("language", language).Msg("session started")
			_ = writeJSON(conn, map[string]any{"type": "started", "session_id": sessionID})
		case "chunk":
			b64, _ := msg["data"].(string)
			if b64 == "" {
				continue
			}
			raw, err := base64.StdEncoding.DecodeString(b64)
			if err != nil {
				_ = writeJSON(conn, map[string]any{"type": "error", "detail": "invalid base64 audio"})
				continue
			}
			mimeType, _ := msg["mime_type"].(string)
			pcm, err := audio.Decode(mimeType, raw)
			if err != nil {
				logger.Warn().Err(err).Str("mime_type", mimeType).Msg("audio decode failed")
				_ = writeJSON(conn, map[string]any{"type": "error", "detail": err.Error()})
				continue
			}
			if len(samples)+len(pcm) > maxSamples {
				_ = writeJSON(conn, map[string]any{"type": "error", "detail": "audio buffer limit exceeded"})
				continue
			}
			samples = append(samples, pcm...)
			logger.Debug().
				Int("chunk_samples", len(pcm)).
				Int("total_samples", len(samples)).
				Float64("duration_sec", float64(len(samples))/audio.SampleRate).
				Msg("audio chunk received")
		case "stop":
			s.transcribe(conn, logger, samples, language)
			_ = writeJSON(conn, map[string]any{"type": "stopped"})
			return
		default:
			_ = writeJSON(conn, map[string]any{"type": "error", "detail": "unknown message type"})
		}
	}
}

// transcribe runs on the session goroutine, so progress frames are written by
// the only writer of conn.
func (s *Server) transcribe(conn *websocket.Conn, logger zerolog.Logger, samples []float32, language string) {
	progress := func(p int) {
		if err := writeJSON(conn, map[string]any{"type": "progress", "progress": p}); err != nil {
			logger.Debug().Err(err).Msg("progress write failed")
		}
	}
	out, err := s.ctx.TranscribeJSON(samples, language, progress)
	if err != nil {
		logger.Warn().Err(err).Int("samples", len(samples)).Msg("transcription failed")
		_ = writeJSON(conn, map[string]any{"type": "error", "detail": err.Error()})
		return
	}

	payload := map[string]any{"type": "transcript", "language": language}
	if json.Valid([]byte(out)) {
		payload["segments"] = json.RawMessage(out)
	} else {
		// control bytes in segment text are passed through unescaped
		payload["raw"] = out
	}
	if err := writeJSON(conn, payload); err != nil {
		logger.Warn().Err(err).Msg("failed to send transcript")
	}
}

// CloseAll closes every open session. Hijacked connections are not tracked by
// http.Server.Shutdown.
func (s *Server) CloseAll() {
	s.mu.RLock()
	defer s.mu.RUnlock()
	log.Info().Int("sessions", len(s.sessions)).Msg("closing websocket sessions")
	for id, c := range s.sessions {
		_ = c.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"),
			time.Now().Add(time.Second))
		_ = c.Close()
		log.Debug().Str("session", id).Msg("session closed on shutdown")
	}
}

// Sessions returns the number of open sessions.
func (s *Server) Sessions() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

func (s *Server) register(id string, c *websocket.Conn) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[id] = c
}

func (s *Server) unregister(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
}

// writeJSON encodes v without HTML escaping so transcripts reach the client
// byte for byte.
func writeJSON(conn *websocket.Conn, v any) error {
	w, err := conn.NextWriter(websocket.TextMessage)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		_ = w.Close()
		return err
	}
	return w.Close()
}
