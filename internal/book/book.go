// Package book implements the per-instrument, lock-free top-of-book. Every
// field is an independent atomic; there is no mutex and no allocation after
// construction. Readers tolerate torn reads between independently-updated
// fields, as required by spec §3/§4.1.
package book

import (
	"sync/atomic"

	"github.com/maksat-software/hedging-engine/internal/clock"
	"github.com/maksat-software/hedging-engine/internal/fixedpoint"
)

// Depth is the number of tracked levels per side.
const Depth = 10

// snapshotRetryCap bounds the sequence-based consistency retry of Snapshot.
const snapshotRetryCap = 4

// cacheLineBytes is the assumed cache line size used to keep independent
// Book instances from sharing a line (false sharing avoidance per spec §9).
const cacheLineBytes = 64

// Book is a cache-line-isolated, atomic-field top-of-book for one symbol.
// It is created once at engine start with SymbolID fixed, mutated only by
// the ingestion path for that symbol, and never blocks or allocates.
type Book struct {
	bidPrices [Depth]int64 // fixedpoint.Price, index 0 = best (atomic)
	askPrices [Depth]int64
	bidSizes  [Depth]uint64 // fixedpoint.Volume (atomic)
	askSizes  [Depth]uint64

	sequence     uint64 // monotonic, incremented after every write (atomic)
	lastUpdateNs uint64 // clock.TimestampNs (atomic)

	SymbolID uint8 // immutable after construction

	_ [cacheLineBytes]byte // pad against a neighboring Book sharing a line
}

// New creates a Book for the given symbol with all levels empty.
func New(symbolID uint8) *Book {
	return &Book{SymbolID: symbolID}
}

// UpdateBid stores a bid level. Levels at or beyond Depth are silently
// dropped: no error, no allocation (spec §4.1). Price then size then
// timestamp are stored independently with release ordering, then sequence is
// advanced, readers may observe a price without its matching size, which is
// tolerated by design.
func (b *Book) UpdateBid(level int, price fixedpoint.Price, size fixedpoint.Volume, ts clock.TimestampNs) {
	if level < 0 || level >= Depth {
		return
	}
	atomic.StoreInt64(&b.bidPrices[level], int64(price))
	atomic.StoreUint64(&b.bidSizes[level], uint64(size))
	atomic.StoreUint64(&b.lastUpdateNs, uint64(ts))
	atomic.AddUint64(&b.sequence, 1)
}

// UpdateAsk stores an ask level with the same semantics as UpdateBid.
func (b *Book) UpdateAsk(level int, price fixedpoint.Price, size fixedpoint.Volume, ts clock.TimestampNs) {
	if level < 0 || level >= Depth {
		return
	}
	atomic.StoreInt64(&b.askPrices[level], int64(price))
	atomic.StoreUint64(&b.askSizes[level], uint64(size))
	atomic.StoreUint64(&b.lastUpdateNs, uint64(ts))
	atomic.AddUint64(&b.sequence, 1)
}

// BestBid returns the level-0 bid price and size. A zero price means the
// side is empty.
func (b *Book) BestBid() (fixedpoint.Price, fixedpoint.Volume) {
	return fixedpoint.Price(atomic.LoadInt64(&b.bidPrices[0])), fixedpoint.Volume(atomic.LoadUint64(&b.bidSizes[0]))
}

// BestAsk returns the level-0 ask price and size. A zero price means the
// side is empty.
func (b *Book) BestAsk() (fixedpoint.Price, fixedpoint.Volume) {
	return fixedpoint.Price(atomic.LoadInt64(&b.askPrices[0])), fixedpoint.Volume(atomic.LoadUint64(&b.askSizes[0]))
}

// MidPrice returns the arithmetic mean of best bid and best ask. If only one
// side is populated it returns that side's best; if both are empty it
// returns zero (spec §4.1).
func (b *Book) MidPrice() fixedpoint.Price {
	bid, _ := b.BestBid()
	ask, _ := b.BestAsk()
	switch {
	case bid == 0 && ask == 0:
		return 0
	case bid == 0:
		return ask
	case ask == 0:
		return bid
	default:
		return (bid + ask) / 2
	}
}

// SpreadBps returns 10000 * (best_ask - best_bid) / mid_price, or zero when
// either side is empty.
func (b *Book) SpreadBps() int64 {
	bid, _ := b.BestBid()
	ask, _ := b.BestAsk()
	if bid == 0 || ask == 0 {
		return 0
	}
	mid := b.MidPrice()
	if mid == 0 {
		return 0
	}
	return int64(fixedpoint.Scale) * int64(ask-bid) / int64(mid)
}

// LastUpdateNs returns the timestamp of the most recent write to this book.
func (b *Book) LastUpdateNs() clock.TimestampNs {
	return clock.TimestampNs(atomic.LoadUint64(&b.lastUpdateNs))
}

// Sequence returns the current monotonic write counter.
func (b *Book) Sequence() uint64 {
	return atomic.LoadUint64(&b.sequence)
}

// Level is one price/size pair read from a snapshot.
type Level struct {
	Price fixedpoint.Price
	Size  fixedpoint.Volume
}

// Snapshot is a consistent-effort, point-in-time read of both sides plus
// the sequence counter observed while reading.
type Snapshot struct {
	Bids                [Depth]Level
	Asks                [Depth]Level
	Sequence             uint64
	LastUpdateNs         clock.TimestampNs
	PossiblyInconsistent bool
}

// TakeSnapshot reads sequence before and after copying both sides, retrying
// up to a small cap if the sequence changed mid-read; on exceeding the cap it
// returns the last read marked PossiblyInconsistent, never blocking (spec
// §4.1).
func (b *Book) TakeSnapshot() Snapshot {
	var snap Snapshot
	for attempt := 0; attempt < snapshotRetryCap; attempt++ {
		before := atomic.LoadUint64(&b.sequence)
		for i := 0; i < Depth; i++ {
			snap.Bids[i] = Level{
				Price: fixedpoint.Price(atomic.LoadInt64(&b.bidPrices[i])),
				Size:  fixedpoint.Volume(atomic.LoadUint64(&b.bidSizes[i])),
			}
			snap.Asks[i] = Level{
				Price: fixedpoint.Price(atomic.LoadInt64(&b.askPrices[i])),
				Size:  fixedpoint.Volume(atomic.LoadUint64(&b.askSizes[i])),
			}
		}
		snap.LastUpdateNs = clock.TimestampNs(atomic.LoadUint64(&b.lastUpdateNs))
		after := atomic.LoadUint64(&b.sequence)
		if before == after {
			snap.Sequence = after
			snap.PossiblyInconsistent = false
			return snap
		}
	}
	snap.Sequence = atomic.LoadUint64(&b.sequence)
	snap.PossiblyInconsistent = true
	return snap
}
