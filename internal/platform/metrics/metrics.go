package metrics

import (
	"sync/atomic"
	"time"
)

// Collector counts record store activity.
type Collector struct {
	mutations       uint64
	notifications   uint64
	persistFailures uint64
	skippedPasses   uint64
	persistWrites   uint64
	persistMs       uint64
}

type Stats struct {
	Mutations       uint64  `json:"mutationsTotal"`
	Notifications   uint64  `json:"notificationsTotal"`
	PersistFailures uint64  `json:"persistFailuresTotal"`
	SkippedPasses   uint64  `json:"skippedPassesTotal"`
	PersistWrites   uint64  `json:"persistWritesTotal"`
	AvgPersistMs    float64 `json:"avgPersistMs"`
}

func New() *Collector {
	return &Collector{}
}

func (c *Collector) Mutation() {
	atomic.AddUint64(&c.mutations, 1)
}

// Notified records one listener invocation.
func (c *Collector) Notified() {
	atomic.AddUint64(&c.notifications, 1)
}

// SkippedPass records a notification pass dropped by the nesting limit.
func (c *Collector) SkippedPass() {
	atomic.AddUint64(&c.skippedPasses, 1)
}

func (c *Collector) Persist(err error, duration time.Duration) {
	atomic.AddUint64(&c.persistWrites, 1)
	if err != nil {
		atomic.AddUint64(&c.persistFailures, 1)
	}
	atomic.AddUint64(&c.persistMs, uint64(duration.Milliseconds()))
}

func (c *Collector) Snapshot() Stats {
	writes := atomic.LoadUint64(&c.persistWrites)
	totalMs := atomic.LoadUint64(&c.persistMs)
	avg := float64(0)
	if writes > 0 {
		avg = float64(totalMs) / float64(writes)
	}
	return Stats{
		Mutations:       atomic.LoadUint64(&c.mutations),
		Notifications:   atomic.LoadUint64(&c.notifications),
		PersistFailures: atomic.LoadUint64(&c.persistFailures),
		SkippedPasses:   atomic.LoadUint64(&c.skippedPasses),
		PersistWrites:   writes,
		AvgPersistMs:    avg,
	}
}
