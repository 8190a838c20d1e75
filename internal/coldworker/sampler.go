package coldworker

import (
	"sync"
	"time"

	"github.com/maksat-software/hedging-engine/internal/book"
	"github.com/maksat-software/hedging-engine/internal/clock"
)

// Sampler observes one or two order books at a configured low rate and
// records paired (spot, futures) samples into a PriceHistory. It runs
// entirely on the cold side: TakeSnapshot is lock-free on the book's end,
// but the sampler's own ticker and PriceHistory writes are cold-path only
// (spec §4.5: "a sampler that observes the order book at a low rate").
type Sampler struct {
	interval time.Duration
	primary  *book.Book
	futures  *book.Book // nil if no paired futures instrument is configured
	history  *PriceHistory
	clock    clock.Source

	stopCh chan struct{}
	wg     sync.WaitGroup
}

// NewSampler creates a Sampler at the given hz. futures may be nil, in which
// case each sample pairs the primary mid-price with itself (the MVHR
// estimator then falls back to its prior ratio, because movingHedgeRatio
// detects a self-paired series before its variance check).
func NewSampler(hz uint32, primary, futures *book.Book, history *PriceHistory, src clock.Source) *Sampler {
	if hz == 0 {
		hz = 10
	}
	return &Sampler{
		interval: time.Second / time.Duration(hz),
		primary:  primary,
		futures:  futures,
		history:  history,
		clock:    src,
		stopCh:   make(chan struct{}),
	}
}

// Start launches the sampling goroutine.
func (s *Sampler) Start() {
	s.wg.Add(1)
	go s.loop()
}

// Stop signals the sampling goroutine to exit and waits for it.
func (s *Sampler) Stop() {
	close(s.stopCh)
	s.wg.Wait()
}

func (s *Sampler) loop() {
	defer s.wg.Done()
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopCh:
			return
		case <-ticker.C:
			spot := s.primary.MidPrice().ToFloat64()
			futures := spot
			if s.futures != nil {
				futures = s.futures.MidPrice().ToFloat64()
			}
			s.history.Add(Sample{TimestampNs: s.clock.NowNs(), Spot: spot, Futures: futures})
		}
	}
}
