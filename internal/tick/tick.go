// Package tick defines the immutable MarketTick record and the
// single-producer/single-consumer ring buffer used to hand ticks from the
// ingestion call into the engine's book-update step without allocation.
package tick

import (
	"sync/atomic"

	"github.com/maksat-software/hedging-engine/internal/clock"
	"github.com/maksat-software/hedging-engine/internal/fixedpoint"
)

// Side tags a tick or recommendation as a bid (buy interest) or ask (sell
// interest).
type Side uint8

const (
	// Bid is willingness to buy.
	Bid Side = iota
	// Ask is willingness to sell.
	Ask
)

func (s Side) String() string {
	if s == Bid {
		return "bid"
	}
	return "ask"
}

// MarketTick is a single top-of-book update. It is a fixed-size value type
// and never references external storage (spec §3): copying a MarketTick is
// always safe and cheap.
type MarketTick struct {
	TimestampNs clock.TimestampNs
	Price       fixedpoint.Price
	Quantity    fixedpoint.Volume
	Side        Side
	SymbolID    uint8
	_           [6]byte // pad to a power-of-two, vectorizable-copy size
}

// Ring is a bounded, pre-allocated single-producer/single-consumer queue of
// MarketTick values. Capacity must be a power of two. Push and Pop are
// wait-free and perform no allocation once the ring is constructed.
type Ring struct {
	buf     []MarketTick
	mask    uint64
	head    uint64 // next write index, producer-owned
	tail    uint64 // next read index, consumer-owned
	dropped uint64
}

// NewRing allocates a ring buffer with the given power-of-two capacity. A
// non-power-of-two capacity is rounded up.
func NewRing(capacity int) *Ring {
	if capacity <= 0 {
		capacity = 1
	}
	capacity = nextPowerOfTwo(capacity)
	return &Ring{
		buf:  make([]MarketTick, capacity),
		mask: uint64(capacity - 1),
	}
}

func nextPowerOfTwo(n int) int {
	p := 1
	for p < n {
		p <<= 1
	}
	return p
}

// Push inserts a tick. It returns false, increments the dropped counter, and
// otherwise does nothing if the ring is full, the producer never blocks.
func (r *Ring) Push(t MarketTick) bool {
	head := atomic.LoadUint64(&r.head)
	tail := atomic.LoadUint64(&r.tail)
	if head-tail >= uint64(len(r.buf)) {
		atomic.AddUint64(&r.dropped, 1)
		return false
	}
	r.buf[head&r.mask] = t
	atomic.StoreUint64(&r.head, head+1)
	return true
}

// Pop removes and returns the oldest tick, or ok=false if the ring is empty.
func (r *Ring) Pop() (MarketTick, bool) {
	tail := atomic.LoadUint64(&r.tail)
	head := atomic.LoadUint64(&r.head)
	if tail == head {
		return MarketTick{}, false
	}
	t := r.buf[tail&r.mask]
	atomic.StoreUint64(&r.tail, tail+1)
	return t, true
}

// Len returns the number of ticks currently queued. Safe to call from either
// role; the result may be stale by the time it is read.
func (r *Ring) Len() int {
	head := atomic.LoadUint64(&r.head)
	tail := atomic.LoadUint64(&r.tail)
	return int(head - tail)
}

// Capacity returns the ring's fixed capacity.
func (r *Ring) Capacity() int {
	return len(r.buf)
}

// Dropped returns the number of ticks discarded due to a full ring. Readable
// from the cold path per spec §4.2.
func (r *Ring) Dropped() uint64 {
	return atomic.LoadUint64(&r.dropped)
}
