package storage

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
)

// Async queues writes for a single background worker so that callers never
// wait on a slow backend. Writes are applied in FIFO order. When the queue is
// full the write is dropped and ErrQueueFull returned.
type Async struct {
	backend Storage
	queue   chan write
	logger  *slog.Logger

	mu      sync.Mutex
	seq     uint64
	pending map[string]write

	dropped atomic.Uint64
	failed  atomic.Uint64
}

type write struct {
	seq    uint64
	key    string
	value  string
	remove bool
	done   chan struct{}
}

func NewAsync(backend Storage, queueSize int, logger *slog.Logger) *Async {
	if queueSize <= 0 {
		queueSize = 64
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Async{
		backend: backend,
		queue:   make(chan write, queueSize),
		logger:  logger,
		pending: make(map[string]write),
	}
}

// Start runs the worker until ctx is cancelled. Writes still queued at that
// point are applied before the worker exits.
func (a *Async) Start(ctx context.Context) {
	go a.worker(ctx)
}

// GetItem answers from the latest queued write for key, then the backend.
func (a *Async) GetItem(key string) (string, bool, error) {
	a.mu.Lock()
	w, ok := a.pending[key]
	a.mu.Unlock()
	if ok {
		if w.remove {
			return "", false, nil
		}
		return w.value, true, nil
	}
	return a.backend.GetItem(key)
}

func (a *Async) SetItem(key, value string) error {
	return a.enqueue(write{key: key, value: value})
}

func (a *Async) RemoveItem(key string) error {
	return a.enqueue(write{key: key, remove: true})
}

// Flush blocks until every write queued before the call has been applied.
func (a *Async) Flush(ctx context.Context) error {
	done := make(chan struct{})
	select {
	case a.queue <- write{done: done}:
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (a *Async) Dropped() uint64 { return a.dropped.Load() }
func (a *Async) Failed() uint64  { return a.failed.Load() }

func (a *Async) enqueue(w write) error {
	if w.key == "" {
		return ErrInvalidKey
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	a.seq++
	w.seq = a.seq
	select {
	case a.queue <- w:
		a.pending[w.key] = w
		return nil
	default:
		a.dropped.Add(1)
		a.logger.Warn("storage queue full", "key", w.key)
		return ErrQueueFull
	}
}

func (a *Async) worker(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			a.drain()
			return
		case w := <-a.queue:
			a.apply(w)
		}
	}
}

func (a *Async) drain() {
	for {
		select {
		case w := <-a.queue:
			a.apply(w)
		default:
			return
		}
	}
}

func (a *Async) apply(w write) {
	if w.done != nil {
		close(w.done)
		return
	}
	var err error
	if w.remove {
		err = a.backend.RemoveItem(w.key)
	} else {
		err = a.backend.SetItem(w.key, w.value)
	}
	if err != nil {
		a.failed.Add(1)
		a.logger.Warn("storage write failed", "key", w.key, "err", err)
	}
	a.mu.Lock()
	if p, ok := a.pending[w.key]; ok && p.seq == w.seq {
		delete(a.pending, w.key)
	}
	a.mu.Unlock()
}
