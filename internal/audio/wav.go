// Package audio turns request payloads into the 16kHz mono float32 samples the
// transcription boundary accepts. It never resamples or downmixes.
package audio

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"mime"
	"strconv"
	"strings"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"github.com/securevox/whisperbridge/internal/whisper"
)

// SampleRate is the only rate accepted.
const SampleRate = whisper.SampleRate

const wavFormatPCM = 1

var (
	ErrInvalidWAV        = errors.New("invalid wav file")
	ErrUnsupportedFormat = errors.New("unsupported audio format")
	ErrSampleRate        = errors.New("audio must be 16000 Hz")
	ErrNotMono           = errors.New("audio must be mono")
	ErrTruncated         = errors.New("audio length is not a whole number of samples")
)

// Decode dispatches on the payload media type. An empty type is sniffed: a RIFF
// header means WAV, anything else is rejected.
func Decode(mediaType string, b []byte) ([]float32, error) {
	if mediaType == "" {
		if bytes.HasPrefix(b, []byte("RIFF")) {
			return DecodeWAV(b)
		}
		return nil, fmt.Errorf("%w: missing media type", ErrUnsupportedFormat)
	}
	base, params, err := mime.ParseMediaType(mediaType)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedFormat, err)
	}
	switch base {
	case "audio/wav", "audio/wave", "audio/x-wav", "audio/vnd.wave":
		return DecodeWAV(b)
	case "audio/pcm", "audio/l16":
		if err := checkRawParams(params); err != nil {
			return nil, err
		}
		if base == "audio/l16" {
			return DecodePCM16LE(b)
		}
		return DecodeFloat32LE(b)
	case "application/octet-stream":
		return DecodeFloat32LE(b)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, base)
	}
}

func checkRawParams(params map[string]string) error {
	if v, ok := params["rate"]; ok {
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err != nil || n != SampleRate {
			return fmt.Errorf("%w: rate=%s", ErrSampleRate, v)
		}
	}
	if v, ok := params["channels"]; ok {
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err != nil || n != 1 {
			return fmt.Errorf("%w: channels=%s", ErrNotMono, v)
		}
	}
	return nil
}

// DecodeWAV decodes an integer PCM WAV blob into float32 samples in [-1,1].
func DecodeWAV(b []byte) ([]float32, error) {
	dec := wav.NewDecoder(bytes.NewReader(b))
	if !dec.IsValidFile() {
		return nil, ErrInvalidWAV
	}
	if dec.WavAudioFormat != wavFormatPCM {
		return nil, fmt.Errorf("%w: wav format %d", ErrUnsupportedFormat, dec.WavAudioFormat)
	}
	if dec.NumChans != 1 {
		return nil, fmt.Errorf("%w: %d channels", ErrNotMono, dec.NumChans)
	}
	if dec.SampleRate != SampleRate {
		return nil, fmt.Errorf("%w: got %d Hz", ErrSampleRate, dec.SampleRate)
	}
	buf, err := dec.FullPCMBuffer()
	if err != nil && err != io.EOF {
		return nil, fmt.Errorf("read wav: %w", err)
	}
	if buf == nil {
		return nil, ErrInvalidWAV
	}
	return normalize(buf), nil
}

// normalize scales integer samples by their source bit depth.
func normalize(ib *goaudio.IntBuffer) []float32 {
	bitDepth := ib.SourceBitDepth
	if bitDepth <= 0 {
		bitDepth = 16
	}
	scale := float32(int64(1) << (bitDepth - 1))
	out := make([]float32, len(ib.Data))
	for i, v := range ib.Data {
		out[i] = float32(v) / scale
	}
	return out
}

// DecodePCM16LE converts little-endian signed 16-bit samples to float32.
func DecodePCM16LE(b []byte) ([]float32, error) {
	if len(b)%2 != 0 {
		return nil, fmt.Errorf("%w: pcm16 length %d", ErrTruncated, len(b))
	}
	out := make([]float32, len(b)/2)
	for i := range out {
		v := int16(binary.LittleEndian.Uint16(b[2*i:]))
		out[i] = float32(v) / 32768.0
	}
	return out, nil
}

// DecodeFloat32LE reinterprets little-endian IEEE-754 float32 samples.
func DecodeFloat32LE(b []byte) ([]float32, error) {
	if len(b)%4 != 0 {
		return nil, fmt.Errorf("%w: float32 length %d", ErrTruncated, len(b))
	}
	out := make([]float32, len(b)/4)
	for i := range out {
		out[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[4*i:]))
	}
	return out, nil
}

// EncodeFloat32LE is the inverse of DecodeFloat32LE.
func EncodeFloat32LE(samples []float32) []byte {
	out := make([]byte, 4*len(samples))
	for i, s := range samples {
		binary.LittleEndian.PutUint32(out[4*i:], math.Float32bits(s))
	}
	return out
}
