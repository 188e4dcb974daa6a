package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Logging is shared by the server and the embedded libraries.
type Logging struct {
	Level string `env:"LOG_LEVEL" envDefault:"info"`
}

type Config struct {
	Logging

	Addr            string        `env:"WHISPER_GO_ADDR" envDefault:":8080"`
	ModelPath       string        `env:"WHISPER_MODEL_PATH" envDefault:"./models/ggml-base.en.bin"`
	Language        string        `env:"WHISPER_LANGUAGE" envDefault:"en"`
	MaxAudioBytes   int           `env:"WHISPER_MAX_AUDIO_BYTES" envDefault:"52428800"`
	ReadTimeout     time.Duration `env:"WHISPER_READ_TIMEOUT" envDefault:"30s"`
	WriteTimeout    time.Duration `env:"WHISPER_WRITE_TIMEOUT" envDefault:"120s"`
	ShutdownTimeout time.Duration `env:"WHISPER_SHUTDOWN_TIMEOUT" envDefault:"10s"`
}

func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	if cfg.MaxAudioBytes <= 0 {
		return Config{}, fmt.Errorf("WHISPER_MAX_AUDIO_BYTES must be positive, got %d", cfg.MaxAudioBytes)
	}
	if cfg.ModelPath == "" {
		return Config{}, fmt.Errorf("WHISPER_MODEL_PATH is empty")
	}
	return cfg, nil
}

// LoadLogging reads only the logging settings. Unparseable input yields the defaults.
func LoadLogging() Logging {
	var l Logging
	if err := env.Parse(&l); err != nil {
		return Logging{Level: "info"}
	}
	return l
}

// ParsedLevel returns the configured level, falling back to info.
func (l Logging) ParsedLevel() zerolog.Level {
	lvl, err := zerolog.ParseLevel(l.Level)
	if err != nil || l.Level == "" {
		return zerolog.InfoLevel
	}
	return lvl
}

// Apply configures the global zerolog logger.
func (l Logging) Apply() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnixMs
	log.Logger = log.Level(l.ParsedLevel())
}
