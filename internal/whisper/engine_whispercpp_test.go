//go:build whisper_cpp

package whisper

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNativeOpenRejectsEmptyPath(t *testing.T) {
	if _, err := Open(""); err == nil {
		t.Fatal("expected error for empty model path")
	}
}

func TestNativeOpenRejectsGarbage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "garbage.bin")
	if err := os.WriteFile(path, []byte("definitely not ggml"), 0o644); err != nil {
		t.Fatalf("WriteFile error: %v", err)
	}
	if _, err := Open(path); !errors.Is(err, ErrUnableToLoadModel) {
		t.Fatalf("expected ErrUnableToLoadModel, got %v", err)
	}
}

func TestNativeSilenceIsDeterministic(t *testing.T) {
	model := openTestNativeModel(t)
	silence := make([]float32, SampleRate)

	var ticks []int
	if ret := model.Full(DefaultParams("en"), silence, func(p int) { ticks = append(ticks, p) }); ret != 0 {
		t.Fatalf("Full returned %d", ret)
	}
	first := collectSegments(model)

	if ret := model.Full(DefaultParams("en"), silence, nil); ret != 0 {
		t.Fatalf("second Full returned %d", ret)
	}
	second := collectSegments(model)

	if len(first) != len(second) {
		t.Fatalf("segment count differs between runs: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("segment %d differs: %+v vs %+v", i, first[i], second[i])
		}
	}
	for i := 1; i < len(ticks); i++ {
		if ticks[i] < ticks[i-1] || ticks[i] < 0 || ticks[i] > 100 {
			t.Fatalf("progress out of order or range: %v", ticks)
		}
	}
}

func TestNativeSystemInfo(t *testing.T) {
	if info := SystemInfo(); strings.TrimSpace(info) == "" {
		t.Fatal("expected non-empty system info")
	}
}

func collectSegments(m Model) []Segment {
	out := make([]Segment, m.NumSegments())
	for i := range out {
		out[i] = m.Segment(i)
	}
	return out
}

func openTestNativeModel(tb testing.TB) Model {
	tb.Helper()

	modelRel := filepath.Join("testdata", "models", "ggml-tiny.en.bin")
	modelPath := locateFixture(tb, modelRel, "download ggml-tiny.en.bin from huggingface.co/ggerganov/whisper.cpp into testdata/models")
	m, err := Open(modelPath)
	if err != nil {
		tb.Fatalf("Open: %v", err)
	}
	tb.Cleanup(func() {
		if cerr := m.Close(); cerr != nil {
			tb.Errorf("model.Close: %v", cerr)
		}
	})
	return m
}

func locateFixture(tb testing.TB, relativePath string, suggestion string) string {
	tb.Helper()

	wd, err := os.Getwd()
	if err != nil {
		tb.Fatalf("getwd: %v", err)
	}

	visited := make([]string, 0, 4)
	for {
		candidate := filepath.Join(wd, relativePath)
		visited = append(visited, candidate)

		info, err := os.Stat(candidate)
		if err == nil && !info.IsDir() {
			return candidate
		}
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			tb.Fatalf("stat %s: %v", candidate, err)
		}

		parent := filepath.Dir(wd)
		if parent == wd {
			msg := fmt.Sprintf("fixture %s not found (checked: %s)", relativePath, strings.Join(visited, ", "))
			if suggestion != "" {
				msg = fmt.Sprintf("%s; %s", msg, suggestion)
			}
			tb.Skip(msg)
		}
		wd = parent
	}
}
