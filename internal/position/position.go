// Package position holds the single, cache-line-isolated net exposure and
// executed-hedge ledger. Every mutation is atomic; there is no mutex and the
// hot path never blocks on it (spec §3/§5).
package position

import (
	"sync/atomic"

	"github.com/maksat-software/hedging-engine/internal/clock"
	"github.com/maksat-software/hedging-engine/internal/fixedpoint"
)

const cacheLineBytes = 64

// Ledger is the single position instance for an engine. NetExposure changes
// only via ApplyFill; ExecutedHedge changes only via RecordHedge, called
// after the engine emits a recommendation (spec §3).
type Ledger struct {
	netExposure   int64 // fixedpoint.Price, native units * Scale (atomic)
	executedHedge int64 // fixedpoint.Price (atomic)
	lastChangeNs  uint64 // clock.TimestampNs (atomic)

	_ [cacheLineBytes]byte
}

// New creates a Ledger starting at the given net exposure.
func New(initial fixedpoint.Price) *Ledger {
	l := &Ledger{}
	atomic.StoreInt64(&l.netExposure, int64(initial))
	return l
}

// NetExposure returns the current net exposure.
func (l *Ledger) NetExposure() fixedpoint.Price {
	return fixedpoint.Price(atomic.LoadInt64(&l.netExposure))
}

// ExecutedHedge returns the quantity already hedged.
func (l *Ledger) ExecutedHedge() fixedpoint.Price {
	return fixedpoint.Price(atomic.LoadInt64(&l.executedHedge))
}

// LastChangeNs returns the timestamp of the most recent mutation.
func (l *Ledger) LastChangeNs() clock.TimestampNs {
	return clock.TimestampNs(atomic.LoadUint64(&l.lastChangeNs))
}

// ApplyFill adjusts net exposure by delta (positive = long fill, negative =
// short fill). Cold/warm path only per spec §3.
func (l *Ledger) ApplyFill(delta fixedpoint.Price, ts clock.TimestampNs) {
	atomic.AddInt64(&l.netExposure, int64(delta))
	atomic.StoreUint64(&l.lastChangeNs, uint64(ts))
}

// RecordHedge adjusts executed hedge by delta after a recommendation is
// acted on (spec §4.6's ExecuteHedge).
func (l *Ledger) RecordHedge(delta fixedpoint.Price, ts clock.TimestampNs) {
	atomic.AddInt64(&l.executedHedge, int64(delta))
	atomic.StoreUint64(&l.lastChangeNs, uint64(ts))
}
