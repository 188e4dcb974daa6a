package audio

import (
	"encoding/binary"
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

func encodeWAV(t *testing.T, sampleRate, channels, bitDepth int, data []int) []byte {
	t.Helper()
	path := filepath.Join(t.TempDir(), "fixture.wav")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	enc := wav.NewEncoder(f, sampleRate, bitDepth, channels, wavFormatPCM)
	buf := &goaudio.IntBuffer{
		Format:         &goaudio.Format{NumChannels: channels, SampleRate: sampleRate},
		Data:           data,
		SourceBitDepth: bitDepth,
	}
	if err := enc.Write(buf); err != nil {
		t.Fatalf("encode: %v", err)
	}
	if err := enc.Close(); err != nil {
		t.Fatalf("close encoder: %v", err)
	}
	if err := f.Close(); err != nil {
		t.Fatalf("close file: %v", err)
	}
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	return b
}

func TestDecodeWAV(t *testing.T) {
	b := encodeWAV(t, SampleRate, 1, 16, []int{0, 16384, -16384, 32767, -32768})

	samples, err := DecodeWAV(b)
	if err != nil {
		t.Fatalf("DecodeWAV: %v", err)
	}
	want := []float32{0, 0.5, -0.5, 32767.0 / 32768.0, -1}
	if len(samples) != len(want) {
		t.Fatalf("expected %d samples, got %d", len(want), len(samples))
	}
	for i := range want {
		if math.Abs(float64(samples[i]-want[i])) > 1e-6 {
			t.Fatalf("sample %d = %v, want %v", i, samples[i], want[i])
		}
	}
}

func TestDecodeWAVRejects(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want error
	}{
		{"garbage", []byte("definitely not a wav"), ErrInvalidWAV},
		{"stereo", encodeWAV(t, SampleRate, 2, 16, []int{1, 2, 3, 4}), ErrNotMono},
		{"44.1kHz", encodeWAV(t, 44100, 1, 16, []int{1, 2, 3, 4}), ErrSampleRate},
		{"8kHz", encodeWAV(t, 8000, 1, 16, []int{1, 2}), ErrSampleRate},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := DecodeWAV(tc.data); !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestDecodePCM16LE(t *testing.T) {
	b := make([]byte, 6)
	binary.LittleEndian.PutUint16(b[0:], uint16(16384))
	binary.LittleEndian.PutUint16(b[2:], 0x8000)
	binary.LittleEndian.PutUint16(b[4:], 0)

	samples, err := DecodePCM16LE(b)
	if err != nil {
		t.Fatalf("DecodePCM16LE: %v", err)
	}
	if samples[0] != 0.5 || samples[1] != -1 || samples[2] != 0 {
		t.Fatalf("unexpected samples %v", samples)
	}
	if _, err := DecodePCM16LE([]byte{1, 2, 3}); !errors.Is(err, ErrTruncated) {
		t.Fatalf("expected ErrTruncated, got %v", err)
	}
}

func TestFloat32LERoundTrip(t *testing.T) {
	in := []float32{0, 1, -1, 0.25, float32(math.Inf(1)), 1e-7}
	out, err := DecodeFloat32LE(EncodeFloat32LE(in))
	if err != nil {
		t.Fatalf("DecodeFloat32LE: %v", err)
	}
	for i := range in {
		if out[i] != in[i] {
			t.Fatalf("sample %d = %v, want %v", i, out[i], in[i])
		}
	}
	if _, err := DecodeFloat32LE([]byte{1, 2, 3, 4, 5}); !errors.Is(err, ErrTruncated) {
		t.Fatalf("expected ErrTruncated, got %v", err)
	}
	if got, err := DecodeFloat32LE(nil); err != nil || len(got) != 0 {
		t.Fatalf("expected empty result, got %v, %v", got, err)
	}
}

func TestDecodeDispatch(t *testing.T) {
	wavBytes := encodeWAV(t, SampleRate, 1, 16, []int{16384})
	f32 := EncodeFloat32LE([]float32{0.5})
	pcm := []byte{0x00, 0x40}

	tests := []struct {
		name      string
		mediaType string
		data      []byte
		want      float32
		wantErr   error
	}{
		{name: "wav", mediaType: "audio/wav", data: wavBytes, want: 0.5},
		{name: "x-wav", mediaType: "audio/x-wav", data: wavBytes, want: 0.5},
		{name: "sniffed wav", mediaType: "", data: wavBytes, want: 0.5},
		{name: "float pcm", mediaType: "audio/pcm", data: f32, want: 0.5},
		{name: "octet stream", mediaType: "application/octet-stream", data: f32, want: 0.5},
		{name: "l16", mediaType: "audio/L16; rate=16000; channels=1", data: pcm, want: 0.5},
		{name: "l16 wrong rate", mediaType: "audio/L16; rate=8000", data: pcm, wantErr: ErrSampleRate},
		{name: "pcm stereo", mediaType: "audio/pcm; channels=2", data: f32, wantErr: ErrNotMono},
		{name: "unknown", mediaType: "audio/ogg", data: []byte("OggS"), wantErr: ErrUnsupportedFormat},
		{name: "unsniffable", mediaType: "", data: f32, wantErr: ErrUnsupportedFormat},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Decode(tc.mediaType, tc.data)
			if tc.wantErr != nil {
				if !errors.Is(err, tc.wantErr) {
					t.Fatalf("expected %v, got %v", tc.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Decode: %v", err)
			}
			if len(got) != 1 || got[0] != tc.want {
				t.Fatalf("unexpected samples %v", got)
			}
		})
	}
}
