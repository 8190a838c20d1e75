// Package engine assembles the numeric primitives, book, ring, ledger,
// parameter cache, strategies, and cold worker into the public facade
// described by spec §4.6: construct once, call on_tick from the hot role,
// poll get_hedge_recommendation, and shut down cleanly.
package engine

import (
	"sync/atomic"
	"time"

	"github.com/panjf2000/ants/v2"
	"go.uber.org/zap"

	"github.com/maksat-software/hedging-engine/internal/book"
	"github.com/maksat-software/hedging-engine/internal/clock"
	"github.com/maksat-software/hedging-engine/internal/coldworker"
	"github.com/maksat-software/hedging-engine/internal/fixedpoint"
	"github.com/maksat-software/hedging-engine/internal/hedgeerr"
	"github.com/maksat-software/hedging-engine/internal/metrics"
	"github.com/maksat-software/hedging-engine/internal/params"
	"github.com/maksat-software/hedging-engine/internal/position"
	"github.com/maksat-software/hedging-engine/internal/strategy"
	"github.com/maksat-software/hedging-engine/internal/tick"
)

// Engine is the single-instrument hedging engine facade. Every field reached
// from OnTick is either immutable after New or atomic. GetHedgeRecommendation
// additionally records its latency into the metrics histogram, which is
// mutex-guarded; the only other mutex-guarded state is the cold worker's and
// sampler's PriceHistory.
type Engine struct {
	cfg Config

	book  *book.Book
	ring  *tick.Ring
	pos   *position.Ledger
	cache *params.Extended

	deltaCfg DeltaStrategyConfig

	clockSrc clock.Source
	logger   *zap.Logger
	metrics  *metrics.Recorder

	history *coldworker.PriceHistory
	sampler *coldworker.Sampler
	worker  *coldworker.Worker
	pool    *ants.Pool

	shutdown int32
}

// DeltaStrategyConfig bundles the threshold and urgency configuration every
// delta-based strategy variant shares.
type DeltaStrategyConfig struct {
	Delta strategy.DeltaConfig
	MeanReversion strategy.MeanReversionConfig
}

// New validates cfg, allocates every hot-path structure up front, and spawns
// the cold worker and sampler. Returns a ConfigInvalid error without
// allocating any hot-path state if validation fails (spec §4.6).
func New(cfg Config, logger *zap.Logger) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	urgencyCfg := strategy.UrgencyConfig{
		MaxPosition:  fixedpoint.FromFloat64(cfg.MaxPosition),
		HighFraction: fixedpoint.FromFloat64(cfg.HighUrgencyFraction),
		StaleAfterNs: uint64(cfg.StaleAfter.Nanoseconds()),
	}
	deltaCfg := strategy.DeltaConfig{
		RehedgeThresholdBps: cfg.RehedgeThresholdBps,
		Urgency:             urgencyCfg,
	}
	mrCfg := strategy.MeanReversionConfig{
		Delta:         deltaCfg,
		ThresholdZ:    fixedpoint.FromFloat64(cfg.MeanReversion.ThresholdZ),
		HedgeStrength: fixedpoint.FromFloat64(cfg.MeanReversion.HedgeStrength),
	}

	src := clock.NewMonotonic()
	b := book.New(cfg.SymbolID)
	ring := tick.NewRing(cfg.RingCapacity)
	pos := position.New(fixedpoint.FromFloat64(cfg.InitialPosition))
	cache := params.NewExtended(fixedpoint.FromFloat64(cfg.DefaultHedgeRatio))
	rec := metrics.NewRecorder()

	samplesPerHour := int(cfg.SamplerHz) * 3600
	historyCapacity := cfg.StatisticsWindowHours * samplesPerHour
	if historyCapacity <= 0 {
		historyCapacity = 3600
	}
	history := coldworker.NewPriceHistory(historyCapacity)

	poolOptions := ants.Options{
		PanicHandler: func(r interface{}) {
			logger.Error("cold worker pool task panicked", zap.Any("recover", r))
		},
	}
	pool, err := ants.NewPool(1, ants.WithOptions(poolOptions))
	if err != nil {
		return nil, hedgeerr.Wrap(err, hedgeerr.ConfigInvalid, "failed to start cold worker pool")
	}

	sampler := coldworker.NewSampler(cfg.SamplerHz, b, nil, history, src)
	worker := coldworker.NewWorker(coldworker.Config{
		Interval:   cfg.EstimationInterval,
		MinSamples: cfg.MinEstimationSamples,
	}, history, &cache.Cache, src, logger, pool, rec)

	e := &Engine{
		cfg:      cfg,
		book:     b,
		ring:     ring,
		pos:      pos,
		cache:    cache,
		deltaCfg: DeltaStrategyConfig{Delta: deltaCfg, MeanReversion: mrCfg},
		clockSrc: src,
		logger:   logger,
		metrics:  rec,
		history:  history,
		sampler:  sampler,
		worker:   worker,
		pool:     pool,
	}

	sampler.Start()
	worker.Start()

	return e, nil
}

// OnTick implements spec §4.2's ingestion path: push into the ring (or drop),
// update the level-0 book side, and count the tick. Hot path: no allocation,
// no syscalls, no blocking.
func (e *Engine) OnTick(t tick.MarketTick) {
	// A tick for a symbol this engine instance was not constructed for is
	// dropped before it ever reaches the ring or the book (spec §7:
	// SymbolUnknown). This engine owns exactly one book per instance, so
	// "unconfigured" means "not this book's symbol".
	if t.SymbolID != e.book.SymbolID {
		e.metrics.RecordTickDropped()
		return
	}
	// The ring's own dropped counter is the single source of truth for
	// overflow drops (spec §4.2); GetMetrics folds it into the snapshot
	// alongside symbol-mismatch drops, so neither is double-counted here.
	e.ring.Push(t)
	switch t.Side {
	case tick.Bid:
		e.book.UpdateBid(0, t.Price, t.Quantity, t.TimestampNs)
	default:
		e.book.UpdateAsk(0, t.Price, t.Quantity, t.TimestampNs)
	}
	e.metrics.RecordTick()
}

// GetHedgeRecommendation evaluates the enabled strategy chain and returns
// the most urgent non-empty recommendation, or ok=false. It does not modify
// the book, ledger, or cache; it counts emitted hedges and records its own
// latency into the mutex-guarded metrics histogram. MVHR, if enabled,
// supplies the ratio Delta uses; Mean-Reversion, if enabled, scales the
// resulting delta. With neither enabled, the configured default ratio is
// converted from float64 on each call.
func (e *Engine) GetHedgeRecommendation() (strategy.Recommendation, bool) {
	start := time.Now()
	defer func() { e.metrics.RecordDecisionLatency(time.Since(start)) }()

	now := e.clockSrc.NowNs()
	posView := strategy.PositionView{NetExposure: e.pos.NetExposure(), ExecutedHedge: e.pos.ExecutedHedge()}
	bookView := strategy.BookView{MidPrice: e.book.MidPrice(), LastUpdateNs: e.book.LastUpdateNs()}

	var rec strategy.Recommendation
	var ok bool

	if e.cfg.EnableMeanReversion {
		rec, ok = strategy.EvaluateMeanReversion(&e.cache.Cache, posView, bookView, e.deltaCfg.MeanReversion, now)
	} else if e.cfg.EnableMVHR {
		rec, ok = strategy.EvaluateMVHR(&e.cache.Cache, posView, bookView, e.deltaCfg.Delta, now)
	} else {
		rec, ok = strategy.EvaluateDelta(fixedpoint.FromFloat64(e.cfg.DefaultHedgeRatio), posView, bookView, e.deltaCfg.Delta, now)
	}

	if ok {
		e.metrics.RecordHedgeEmitted()
	}
	return rec, ok
}

// GetDeltaGammaRecommendation evaluates the Delta-Gamma strategy (spec
// §4.4.5). Delta-Gamma and Spark-Spread are alternative terminal strategies
// selected by instrument type rather than chained with MVHR/Mean-Reversion,
// so they are exposed as separate entry points instead of folded into
// GetHedgeRecommendation.
func (e *Engine) GetDeltaGammaRecommendation(referencePrice float64) (strategy.Recommendation, bool) {
	now := e.clockSrc.NowNs()
	posView := strategy.PositionView{NetExposure: e.pos.NetExposure(), ExecutedHedge: e.pos.ExecutedHedge()}
	bookView := strategy.BookView{MidPrice: e.book.MidPrice(), LastUpdateNs: e.book.LastUpdateNs()}
	cfg := strategy.DeltaGammaConfig{Delta: e.deltaCfg.Delta, ReferencePrice: fixedpoint.FromFloat64(referencePrice)}

	rec, ok := strategy.EvaluateDeltaGamma(e.cache, posView, bookView, cfg, now)
	if ok {
		e.metrics.RecordHedgeEmitted()
	}
	return rec, ok
}

// GetSparkSpreadRecommendation evaluates the Spark-Spread strategy (spec
// §4.4.5) given the current gas and carbon prices.
func (e *Engine) GetSparkSpreadRecommendation(gasPrice, carbonPrice float64) (strategy.Recommendation, bool) {
	now := e.clockSrc.NowNs()
	posView := strategy.PositionView{NetExposure: e.pos.NetExposure(), ExecutedHedge: e.pos.ExecutedHedge()}
	bookView := strategy.BookView{MidPrice: e.book.MidPrice(), LastUpdateNs: e.book.LastUpdateNs()}
	in := strategy.SparkSpreadInputs{GasPrice: fixedpoint.FromFloat64(gasPrice), CarbonPrice: fixedpoint.FromFloat64(carbonPrice)}
	cfg := strategy.SparkSpreadConfig{Delta: e.deltaCfg.Delta}

	rec, ok := strategy.EvaluateSparkSpread(e.cache, posView, bookView, in, cfg, now)
	if ok {
		e.metrics.RecordHedgeEmitted()
	}
	return rec, ok
}

// ExecuteHedge applies a recommendation to the position ledger. It performs
// no I/O: a separate outbound adapter is responsible for actually placing an
// order (spec §4.6).
func (e *Engine) ExecuteHedge(rec strategy.Recommendation) {
	delta := fixedpoint.Price(rec.Quantity) * fixedpoint.Scale
	if rec.Side == tick.Bid {
		delta = -delta
	}
	e.pos.RecordHedge(delta, rec.TimestampNs)
}

// GetMetrics returns a point-in-time summary of engine counters, the
// decision-latency histogram, and the cold worker's health (spec §4.6/§6).
func (e *Engine) GetMetrics() metrics.Snapshot {
	snap := e.metrics.Snapshot()
	snap.TicksDropped += e.ring.Dropped()
	snap.EstimationRounds = e.worker.EstimationRounds()
	snap.LastEstimationOK = e.worker.LastRoundOK()
	return snap
}

// Shutdown signals the cold worker and sampler to stop, joins both, and
// releases the worker pool. Safe to call more than once.
func (e *Engine) Shutdown() {
	if !atomic.CompareAndSwapInt32(&e.shutdown, 0, 1) {
		return
	}
	e.worker.Stop()
	e.sampler.Stop()
	e.pool.Release()

	for {
		if _, ok := e.ring.Pop(); !ok {
			break
		}
	}
}
