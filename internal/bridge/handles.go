package bridge

import "sync"

// Handles maps host-visible handle values to live contexts. A value resolves
// only between its registration and its Take, so a repeated free of the same
// value finds nothing instead of releasing the context twice.
type Handles struct {
	mu   sync.Mutex
	next uintptr
	ctxs map[uintptr]*Context
}

func NewHandles() *Handles {
	return &Handles{ctxs: make(map[uintptr]*Context)}
}

// Add registers c under a fresh value. Values are never reused.
func (h *Handles) Add(c *Context) uintptr {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.next++
	h.ctxs[h.next] = c
	return h.next
}

// Put registers c under a caller-chosen key, such as a C allocation address.
// It reports false when key is zero or already live.
func (h *Handles) Put(key uintptr, c *Context) bool {
	if key == 0 {
		return false
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.ctxs[key]; ok {
		return false
	}
	h.ctxs[key] = c
	return true
}

// Get returns the live context for key, or nil.
func (h *Handles) Get(key uintptr) *Context {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.ctxs[key]
}

// Take unregisters key and returns its context, or nil if key was not live.
func (h *Handles) Take(key uintptr) *Context {
	h.mu.Lock()
	defer h.mu.Unlock()
	c, ok := h.ctxs[key]
	if !ok {
		return nil
	}
	delete(h.ctxs, key)
	return c
}

// Len returns the number of live handles.
func (h *Handles) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.ctxs)
}
