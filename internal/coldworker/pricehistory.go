// Package coldworker implements the cold path: a background goroutine that
// periodically re-estimates the statistical parameters the hot path consumes
// through internal/params. Nothing here runs on the hot path; it may
// allocate, block, and log freely (spec §4.5).
package coldworker

import (
	"sync"

	"github.com/maksat-software/hedging-engine/internal/clock"
	"github.com/maksat-software/hedging-engine/internal/fixedpoint"
)

// Sample is a single (spot, futures) price observation taken at a point in
// time, the unit the cold worker's statistics are estimated from.
type Sample struct {
	TimestampNs clock.TimestampNs
	Spot        float64
	Futures     float64
}

// PriceHistory is a bounded, mutex-protected ring of recent samples. It is
// cold-path only: the hot path never touches it; the cold-side Sampler
// records book mid-prices into it. Bounded by window * samplesPerWindow so
// memory is fixed regardless of uptime.
type PriceHistory struct {
	mu       sync.Mutex
	buf      []Sample
	next     int
	filled   bool
	capacity int
}

// NewPriceHistory creates a PriceHistory holding at most capacity samples.
func NewPriceHistory(capacity int) *PriceHistory {
	if capacity <= 0 {
		capacity = 1
	}
	return &PriceHistory{buf: make([]Sample, capacity), capacity: capacity}
}

// Add records a new sample, evicting the oldest once the buffer is full.
func (h *PriceHistory) Add(s Sample) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.buf[h.next] = s
	h.next = (h.next + 1) % h.capacity
	if h.next == 0 {
		h.filled = true
	}
}

// AddTick records a tick's price as a spot observation, reusing the last
// known futures price, for callers that hold raw ticks rather than
// pre-paired spot/futures samples.
func (h *PriceHistory) AddTick(ts clock.TimestampNs, price fixedpoint.Price, lastFutures float64) {
	h.Add(Sample{TimestampNs: ts, Spot: price.ToFloat64(), Futures: lastFutures})
}

// Snapshot returns a copy of the samples currently held, oldest first. Safe
// to call concurrently with Add.
func (h *PriceHistory) Snapshot() []Sample {
	h.mu.Lock()
	defer h.mu.Unlock()

	if !h.filled {
		out := make([]Sample, h.next)
		copy(out, h.buf[:h.next])
		return out
	}

	out := make([]Sample, h.capacity)
	copy(out, h.buf[h.next:])
	copy(out[h.capacity-h.next:], h.buf[:h.next])
	return out
}

// Len returns the number of samples currently held.
func (h *PriceHistory) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.filled {
		return h.capacity
	}
	return h.next
}
