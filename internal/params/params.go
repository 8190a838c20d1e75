// Package params implements the parameter cache: the single-cache-line,
// atomically-published handoff from the cold estimator to the hot strategy
// evaluation. Writers are the cold worker; readers are strategies on the hot
// path (spec §3/§4.3).
package params

import (
	"sync/atomic"

	"github.com/maksat-software/hedging-engine/internal/clock"
	"github.com/maksat-software/hedging-engine/internal/fixedpoint"
)

const cacheLineBytes = 64

// Cache holds the scalar hedge parameters published by the cold worker.
// Each field is independently readable; writers never attempt to update all
// fields as a single atomic unit (spec §4.3).
type Cache struct {
	hedgeRatio   int64  // fixedpoint.Price (atomic)
	meanPrice    int64  // fixedpoint.Price (atomic)
	stdDev       int64  // fixedpoint.Price, non-negative (atomic)
	lastUpdateNs uint64 // clock.TimestampNs (atomic)

	_ [cacheLineBytes]byte
}

// New creates a Cache seeded with a default hedge ratio (used until MVHR
// publishes its own value, per spec §6).
func New(defaultHedgeRatio fixedpoint.Price) *Cache {
	c := &Cache{}
	atomic.StoreInt64(&c.hedgeRatio, int64(defaultHedgeRatio))
	return c
}

// HedgeRatio returns the current hedge ratio.
func (c *Cache) HedgeRatio() fixedpoint.Price {
	return fixedpoint.Price(atomic.LoadInt64(&c.hedgeRatio))
}

// MeanPrice returns the current rolling mean price.
func (c *Cache) MeanPrice() fixedpoint.Price {
	return fixedpoint.Price(atomic.LoadInt64(&c.meanPrice))
}

// StdDev returns the current rolling standard deviation.
func (c *Cache) StdDev() fixedpoint.Price {
	return fixedpoint.Price(atomic.LoadInt64(&c.stdDev))
}

// LastUpdateNs returns the timestamp of the most recent publication.
func (c *Cache) LastUpdateNs() clock.TimestampNs {
	return clock.TimestampNs(atomic.LoadUint64(&c.lastUpdateNs))
}

// PublishHedgeRatio stores a new hedge ratio with release ordering.
func (c *Cache) PublishHedgeRatio(r fixedpoint.Price, ts clock.TimestampNs) {
	atomic.StoreInt64(&c.hedgeRatio, int64(r))
	atomic.StoreUint64(&c.lastUpdateNs, uint64(ts))
}

// PublishMoments stores a new mean and standard deviation together with an
// updated timestamp. The three stores are independent; readers may still
// observe a torn combination and must tolerate it (spec §4.3).
func (c *Cache) PublishMoments(mean, stdDev fixedpoint.Price, ts clock.TimestampNs) {
	atomic.StoreInt64(&c.meanPrice, int64(mean))
	atomic.StoreInt64(&c.stdDev, int64(stdDev))
	atomic.StoreUint64(&c.lastUpdateNs, uint64(ts))
}

// Moments is a consistency-checked read of (meanPrice, stdDev).
type Moments struct {
	Mean                 fixedpoint.Price
	StdDev               fixedpoint.Price
	PossiblyInconsistent bool
}

// ReadMoments loads last_update_ns, then mean and std-dev, then re-reads
// last_update_ns once; if it changed it retries exactly once more, then
// accepts whatever it has, stale data is preferable to blocking (spec
// §4.3).
func (c *Cache) ReadMoments() Moments {
	for attempt := 0; attempt < 2; attempt++ {
		before := atomic.LoadUint64(&c.lastUpdateNs)
		mean := fixedpoint.Price(atomic.LoadInt64(&c.meanPrice))
		stdDev := fixedpoint.Price(atomic.LoadInt64(&c.stdDev))
		after := atomic.LoadUint64(&c.lastUpdateNs)
		if before == after {
			return Moments{Mean: mean, StdDev: stdDev}
		}
		if attempt == 1 {
			return Moments{Mean: mean, StdDev: stdDev, PossiblyInconsistent: true}
		}
	}
	panic("unreachable")
}

// Extended embeds Cache with the second-order and cross-commodity
// parameters consumed by Delta-Gamma and Spark-Spread (spec §4.4.5). It
// occupies a second cache line so the base Cache keeps its single-line
// guarantee.
type Extended struct {
	Cache

	gamma            int64 // fixedpoint.Price (atomic)
	heatRate         int64 // fixedpoint.Price (atomic)
	carbonIntensity  int64 // fixedpoint.Price (atomic)

	_ [cacheLineBytes]byte
}

// NewExtended creates an Extended cache seeded with a default hedge ratio.
func NewExtended(defaultHedgeRatio fixedpoint.Price) *Extended {
	e := &Extended{}
	atomic.StoreInt64(&e.hedgeRatio, int64(defaultHedgeRatio))
	return e
}

// Gamma returns the current second-order sensitivity parameter.
func (e *Extended) Gamma() fixedpoint.Price {
	return fixedpoint.Price(atomic.LoadInt64(&e.gamma))
}

// HeatRate returns the current gas-to-power heat rate parameter.
func (e *Extended) HeatRate() fixedpoint.Price {
	return fixedpoint.Price(atomic.LoadInt64(&e.heatRate))
}

// CarbonIntensity returns the current carbon intensity parameter.
func (e *Extended) CarbonIntensity() fixedpoint.Price {
	return fixedpoint.Price(atomic.LoadInt64(&e.carbonIntensity))
}

// PublishExtended stores gamma, heat rate, and carbon intensity
// independently, same torn-read tolerance as the base fields.
func (e *Extended) PublishExtended(gamma, heatRate, carbonIntensity fixedpoint.Price, ts clock.TimestampNs) {
	atomic.StoreInt64(&e.gamma, int64(gamma))
	atomic.StoreInt64(&e.heatRate, int64(heatRate))
	atomic.StoreInt64(&e.carbonIntensity, int64(carbonIntensity))
	atomic.StoreUint64(&e.lastUpdateNs, uint64(ts))
}
