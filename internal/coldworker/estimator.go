package coldworker

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	talib "github.com/markcheno/go-talib"
	"github.com/panjf2000/ants/v2"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/stat"

	"github.com/maksat-software/hedging-engine/internal/clock"
	"github.com/maksat-software/hedging-engine/internal/fixedpoint"
	"github.com/maksat-software/hedging-engine/internal/hedgeerr"
	"github.com/maksat-software/hedging-engine/internal/metrics"
	"github.com/maksat-software/hedging-engine/internal/params"
)

// Config parameterizes the estimation worker (spec §4.5).
type Config struct {
	// Interval between estimation rounds. Spec default is 1 second.
	Interval time.Duration
	// MinSamples is the smallest history size an estimation round will
	// accept; fewer samples yields EstimationUnderflow and the prior
	// published values are retained untouched.
	MinSamples int
	// SmoothingPeriod is the go-talib SMA window applied to the mean-price
	// estimate. Zero disables smoothing (the raw sample mean is used).
	SmoothingPeriod int
}

// Worker periodically re-estimates mean, std-dev, and hedge ratio from a
// PriceHistory and publishes them into a parameter cache. It owns no hot-path
// state; every field here is free to allocate and block.
type Worker struct {
	cfg     Config
	history *PriceHistory
	cache   *params.Cache
	clock   clock.Source
	logger  *zap.Logger
	pool    *ants.Pool
	metrics *metrics.Recorder

	stopCh chan struct{}
	wg     sync.WaitGroup

	estimationRounds uint64
	lastOk           int32 // 0/1, read via atomic
}

// NewWorker constructs a Worker. pool is the ants goroutine pool each
// estimation round is submitted to, so a slow round never blocks the ticker
// goroutine. rec receives EstimationFailures counts for both the underflow
// and panic-recover paths (spec §4.5/§7: "errors are logged and a counter
// advances").
func NewWorker(cfg Config, history *PriceHistory, cache *params.Cache, src clock.Source, logger *zap.Logger, pool *ants.Pool, rec *metrics.Recorder) *Worker {
	if cfg.Interval <= 0 {
		cfg.Interval = time.Second
	}
	if cfg.MinSamples <= 0 {
		cfg.MinSamples = 2
	}
	return &Worker{
		cfg:     cfg,
		history: history,
		cache:   cache,
		clock:   src,
		logger:  logger,
		pool:    pool,
		metrics: rec,
		stopCh:  make(chan struct{}),
	}
}

// Start launches the ticker goroutine. Safe to call once per Worker.
func (w *Worker) Start() {
	w.wg.Add(1)
	go w.loop()
}

// Stop signals the ticker goroutine to exit and waits for it to drain.
func (w *Worker) Stop() {
	close(w.stopCh)
	w.wg.Wait()
}

func (w *Worker) loop() {
	defer w.wg.Done()
	ticker := time.NewTicker(w.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-w.stopCh:
			return
		case <-ticker.C:
			err := w.pool.Submit(w.runRound)
			if err != nil {
				w.logger.Warn("estimation round rejected by worker pool", zap.Error(err))
			}
		}
	}
}

// runRound executes a single estimation pass. It never panics the process:
// any unexpected failure is caught at this boundary, logged, and counted as a
// failed round with the prior published values left untouched.
func (w *Worker) runRound() {
	roundID := uuid.NewString()
	defer func() {
		if r := recover(); r != nil {
			w.logger.Error("estimation round panicked", zap.String("round_id", roundID), zap.Any("recover", r))
			atomic.StoreInt32(&w.lastOk, 0)
			w.metrics.RecordEstimationFailure()
		}
	}()

	atomic.AddUint64(&w.estimationRounds, 1)
	samples := w.history.Snapshot()

	if len(samples) < w.cfg.MinSamples {
		err := hedgeerr.Newf(hedgeerr.EstimationUnderflow, "need %d samples, have %d", w.cfg.MinSamples, len(samples))
		w.logger.Warn("estimation underflow", zap.String("round_id", roundID), zap.Error(err))
		atomic.StoreInt32(&w.lastOk, 0)
		w.metrics.RecordEstimationFailure()
		return
	}

	spot := make([]float64, len(samples))
	futures := make([]float64, len(samples))
	for i, s := range samples {
		spot[i] = s.Spot
		futures[i] = s.Futures
	}

	mean, stdDev := stat.MeanStdDev(spot, nil)
	if w.cfg.SmoothingPeriod > 0 && len(spot) >= w.cfg.SmoothingPeriod {
		sma := talib.Sma(spot, w.cfg.SmoothingPeriod)
		if last := sma[len(sma)-1]; last == last { // exclude NaN warm-up tail
			mean = last
		}
	}

	ratio := movingHedgeRatio(spot, futures, w.cache.HedgeRatio().ToFloat64())

	now := w.clock.NowNs()
	w.cache.PublishMoments(fixedpoint.FromFloat64(mean), fixedpoint.FromFloat64(stdDev), now)
	w.cache.PublishHedgeRatio(fixedpoint.FromFloat64(ratio), now)

	w.logger.Debug("estimation round published",
		zap.String("round_id", roundID),
		zap.Int("samples", len(samples)),
		zap.Float64("mean", mean),
		zap.Float64("std_dev", stdDev),
		zap.Float64("hedge_ratio", ratio))

	atomic.StoreInt32(&w.lastOk, 1)
}

// movingHedgeRatio estimates the minimum-variance hedge ratio as
// cov(Δspot, Δfutures) / var(Δfutures) over period-over-period price changes
// (spec §4.5 step 3, "using paired price histories"). Falls back to the
// previously published ratio when the futures changes carry no variance (a
// flat or single-value futures series), and also when spot and futures are
// the same series: a sampler with no distinct futures book configured pairs
// the primary mid-price with itself (coldworker.Sampler), and cov(Δx,Δx) /
// var(Δx) == 1 for any moving series, not a genuine estimate, so that case
// must be treated the same as "no signal to estimate from" rather than
// silently overwriting the configured ratio with 1.0.
func movingHedgeRatio(spot, futures []float64, fallback float64) float64 {
	if len(spot) < 2 || len(futures) < 2 || selfPaired(spot, futures) {
		return fallback
	}
	dSpot := diff(spot)
	dFutures := diff(futures)
	varFutures := stat.Variance(dFutures, nil)
	if varFutures == 0 {
		return fallback
	}
	cov := stat.Covariance(dSpot, dFutures, nil)
	return cov / varFutures
}

// selfPaired reports whether spot and futures are elementwise identical,
// the shape produced when a sampler has no distinct futures book to pair
// against (spec §4.5's "if var(Δfutures) < ε, the previous ratio is
// retained" clause is meant for exactly this situation).
func selfPaired(spot, futures []float64) bool {
	if len(spot) != len(futures) {
		return false
	}
	for i := range spot {
		if spot[i] != futures[i] {
			return false
		}
	}
	return true
}

// diff returns the first differences of series: diff[i] = series[i+1] -
// series[i].
func diff(series []float64) []float64 {
	out := make([]float64, len(series)-1)
	for i := 1; i < len(series); i++ {
		out[i-1] = series[i] - series[i-1]
	}
	return out
}

// EstimationRounds returns the total number of estimation rounds attempted.
func (w *Worker) EstimationRounds() uint64 {
	return atomic.LoadUint64(&w.estimationRounds)
}

// LastRoundOK reports whether the most recently completed round published
// fresh values rather than failing with underflow or a panic.
func (w *Worker) LastRoundOK() bool {
	return atomic.LoadInt32(&w.lastOk) == 1
}
