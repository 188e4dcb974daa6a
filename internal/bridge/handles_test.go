package bridge

import (
	"sync"
	"testing"
)

func TestHandlesAddGetTake(t *testing.T) {
	h := NewHandles()
	a, b := &Context{}, &Context{}

	ka := h.Add(a)
	kb := h.Add(b)
	if ka == 0 || kb == 0 || ka == kb {
		t.Fatalf("expected distinct non-zero keys, got %d and %d", ka, kb)
	}
	if h.Get(ka) != a || h.Get(kb) != b {
		t.Fatal("Get returned the wrong context")
	}
	if h.Len() != 2 {
		t.Fatalf("expected 2 live handles, got %d", h.Len())
	}

	if h.Take(ka) != a {
		t.Fatal("Take returned the wrong context")
	}
	if h.Take(ka) != nil {
		t.Fatal("second Take must find nothing")
	}
	if h.Get(ka) != nil {
		t.Fatal("taken handle still resolves")
	}
	if h.Len() != 1 {
		t.Fatalf("expected 1 live handle, got %d", h.Len())
	}
}

func TestHandlesNeverReuseKeys(t *testing.T) {
	h := NewHandles()
	seen := make(map[uintptr]bool)
	for i := 0; i < 100; i++ {
		k := h.Add(&Context{})
		if seen[k] {
			t.Fatalf("key %d reused", k)
		}
		seen[k] = true
		h.Take(k)
	}
}

func TestHandlesPut(t *testing.T) {
	h := NewHandles()
	c := &Context{}

	if h.Put(0, c) {
		t.Fatal("zero key must be rejected")
	}
	if !h.Put(0xdead0, c) {
		t.Fatal("expected Put to succeed")
	}
	if h.Put(0xdead0, &Context{}) {
		t.Fatal("live key must be rejected")
	}
	if h.Get(0xdead0) != c {
		t.Fatal("Put overwrote the live context")
	}
	h.Take(0xdead0)
	if !h.Put(0xdead0, c) {
		t.Fatal("key must be reusable after Take")
	}
}

func TestHandlesUnknownKey(t *testing.T) {
	h := NewHandles()
	if h.Get(42) != nil || h.Take(42) != nil {
		t.Fatal("unknown key must resolve to nil")
	}
}

func TestHandlesConcurrentTakeReleasesOnce(t *testing.T) {
	h := NewHandles()
	k := h.Add(&Context{})

	var (
		wg    sync.WaitGroup
		mu    sync.Mutex
		taken int
	)
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if h.Take(k) != nil {
				mu.Lock()
				taken++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	if taken != 1 {
		t.Fatalf("expected exactly one successful Take, got %d", taken)
	}
}
