package whisper

import (
	"runtime"
	"testing"
)

func TestThreadCount(t *testing.T) {
	t.Parallel()

	tests := []struct {
		cpus int
		want int
	}{
		{0, 1},
		{1, 1},
		{3, 3},
		{4, 4},
		{16, 4},
	}
	for _, tc := range tests {
		if got := threadCount(tc.cpus); got != tc.want {
			t.Fatalf("threadCount(%d) = %d, want %d", tc.cpus, got, tc.want)
		}
	}
}

func TestDefaultParams(t *testing.T) {
	p := DefaultParams("")
	if p.Language != "en" {
		t.Fatalf("expected default language en, got %q", p.Language)
	}
	if p.Strategy != SamplingGreedy {
		t.Fatalf("expected greedy sampling")
	}
	if p.Translate || p.SingleSegment || p.PrintProgress || p.PrintRealtime || p.PrintSpecial {
		t.Fatalf("unexpected flags enabled: %+v", p)
	}
	if !p.NoContext || !p.PrintTimestamps {
		t.Fatalf("expected no_context and timestamps enabled: %+v", p)
	}
	if p.OffsetMs != 0 {
		t.Fatalf("expected zero offset, got %d", p.OffsetMs)
	}
	want := min(MaxThreads, runtime.NumCPU())
	if p.Threads != want {
		t.Fatalf("expected %d threads, got %d", want, p.Threads)
	}

	if got := DefaultParams("auto").Language; got != "auto" {
		t.Fatalf("expected auto language passthrough, got %q", got)
	}
}
