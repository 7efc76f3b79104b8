package router

import "sync"

// History is the browser session history as the router sees it. Listen
// callbacks fire on back/forward movements, never on Push.
type History interface {
	Location() string
	Push(location string)
	Back() bool
	Listen(fn func(location string)) (stop func())
}

// MemoryHistory is an in-process History for the terminal shell and tests.
type MemoryHistory struct {
	mu        sync.Mutex
	entries   []string
	index     int
	listeners map[int]func(string)
	nextID    int
}

func NewMemoryHistory(initial string) *MemoryHistory {
	if initial == "" {
		initial = "/"
	}
	return &MemoryHistory{entries: []string{initial}, listeners: map[int]func(string){}}
}

func (h *MemoryHistory) Location() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.entries[h.index]
}

// Push drops any forward entries and appends location.
func (h *MemoryHistory) Push(location string) {
	h.mu.Lock()
	h.entries = append(h.entries[:h.index+1], location)
	h.index++
	h.mu.Unlock()
}

func (h *MemoryHistory) Back() bool {
	return h.move(-1)
}

func (h *MemoryHistory) Forward() bool {
	return h.move(1)
}

func (h *MemoryHistory) move(delta int) bool {
	h.mu.Lock()
	next := h.index + delta
	if next < 0 || next >= len(h.entries) {
		h.mu.Unlock()
		return false
	}
	h.index = next
	location := h.entries[next]
	fns := make([]func(string), 0, len(h.listeners))
	for id := 0; id < h.nextID; id++ {
		if fn, ok := h.listeners[id]; ok {
			fns = append(fns, fn)
		}
	}
	h.mu.Unlock()

	for _, fn := range fns {
		fn(location)
	}
	return true
}

func (h *MemoryHistory) Listen(fn func(string)) func() {
	h.mu.Lock()
	id := h.nextID
	h.nextID++
	h.listeners[id] = fn
	h.mu.Unlock()
	return func() {
		h.mu.Lock()
		delete(h.listeners, id)
		h.mu.Unlock()
	}
}

// Len is the number of entries, including the initial one.
func (h *MemoryHistory) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.entries)
}
