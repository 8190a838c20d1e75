package book

import (
	"sync"
	"testing"

	"github.com/maksat-software/hedging-engine/internal/clock"
	"github.com/maksat-software/hedging-engine/internal/fixedpoint"
)

func TestUpdateAndBest(t *testing.T) {
	b := New(1)
	b.UpdateBid(0, fixedpoint.FromFloat64(45.50), fixedpoint.VolumeFromFloat64(100), 1)
	b.UpdateAsk(0, fixedpoint.FromFloat64(45.60), fixedpoint.VolumeFromFloat64(50), 1)

	bidPrice, bidSize := b.BestBid()
	if bidPrice != fixedpoint.FromFloat64(45.50) || bidSize != 100 {
		t.Errorf("BestBid() = (%v, %v), want (45.50, 100)", bidPrice.ToFloat64(), bidSize)
	}
	askPrice, askSize := b.BestAsk()
	if askPrice != fixedpoint.FromFloat64(45.60) || askSize != 50 {
		t.Errorf("BestAsk() = (%v, %v), want (45.60, 50)", askPrice.ToFloat64(), askSize)
	}
}

func TestUpdateOutOfRangeLevelIsDropped(t *testing.T) {
	b := New(1)
	b.UpdateBid(Depth, fixedpoint.FromFloat64(1), 1, 1)
	b.UpdateBid(-1, fixedpoint.FromFloat64(1), 1, 1)
	if got := b.Sequence(); got != 0 {
		t.Errorf("Sequence() = %v after out-of-range updates, want 0", got)
	}
}

func TestMidPriceOneSidedFallsBackToBestSide(t *testing.T) {
	b := New(1)
	b.UpdateBid(0, fixedpoint.FromFloat64(45.50), 100, 1)
	if got := b.MidPrice(); got != fixedpoint.FromFloat64(45.50) {
		t.Errorf("MidPrice() = %v, want 45.50 (one-sided book falls back to bid)", got.ToFloat64())
	}
}

func TestMidPriceEmptyBookIsZero(t *testing.T) {
	b := New(1)
	if got := b.MidPrice(); got != 0 {
		t.Errorf("MidPrice() on empty book = %v, want 0", got.ToFloat64())
	}
}

func TestMidPriceBothSides(t *testing.T) {
	b := New(1)
	b.UpdateBid(0, fixedpoint.FromFloat64(44), 1, 1)
	b.UpdateAsk(0, fixedpoint.FromFloat64(46), 1, 1)
	if got := b.MidPrice(); got != fixedpoint.FromFloat64(45) {
		t.Errorf("MidPrice() = %v, want 45", got.ToFloat64())
	}
}

func TestSpreadBps(t *testing.T) {
	b := New(1)
	b.UpdateBid(0, fixedpoint.FromFloat64(100), 1, 1)
	b.UpdateAsk(0, fixedpoint.FromFloat64(101), 1, 1)
	// mid = 100.5, spread = 1, bps = 10000 * 1 / 100.5 ~= 99
	if got := b.SpreadBps(); got < 90 || got > 110 {
		t.Errorf("SpreadBps() = %v, want ~99", got)
	}
}

func TestSpreadBpsEmptySideIsZero(t *testing.T) {
	b := New(1)
	b.UpdateBid(0, fixedpoint.FromFloat64(100), 1, 1)
	if got := b.SpreadBps(); got != 0 {
		t.Errorf("SpreadBps() with empty ask = %v, want 0", got)
	}
}

// Property 2 from spec §8: sequence observed by a reader is non-decreasing
// for a monotonically increasing stream of writes.
func TestSequenceNonDecreasing(t *testing.T) {
	b := New(1)
	last := uint64(0)
	for i := 0; i < 100; i++ {
		b.UpdateBid(0, fixedpoint.FromFloat64(float64(i)), 1, clock.TimestampNs(i))
		if got := b.Sequence(); got < last {
			t.Fatalf("sequence went backwards: %v then %v", last, got)
		}
		last = b.Sequence()
	}
}

// TakeSnapshot running concurrently with writes completes without blocking,
// and a snapshot not flagged PossiblyInconsistent carries a non-negative
// best bid. Whether such a snapshot matches a prefix of the writes is not
// checked here.
func TestSnapshotConcurrentWithWrites(t *testing.T) {
	b := New(1)
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 1000; i++ {
			b.UpdateBid(0, fixedpoint.Price(i), fixedpoint.Volume(i), 1)
			b.UpdateAsk(0, fixedpoint.Price(i+1), fixedpoint.Volume(i), 1)
		}
	}()

	for i := 0; i < 200; i++ {
		snap := b.TakeSnapshot()
		if !snap.PossiblyInconsistent {
			if snap.Bids[0].Price < 0 {
				t.Errorf("snapshot bid price went negative: %v", snap.Bids[0].Price)
			}
		}
	}
	wg.Wait()
}
