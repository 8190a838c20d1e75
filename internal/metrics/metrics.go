// Package metrics tracks engine-observability counters and decision-latency
// histograms. The hot path only calls the recording methods, never reads a
// snapshot (spec §4.6). The counter methods are wait-free atomics;
// RecordDecisionLatency updates a go-metrics histogram whose reservoir
// sample is guarded by a mutex, so it is not lock-free.
package metrics

import (
	"sync/atomic"
	"time"

	gometrics "github.com/rcrowley/go-metrics"
)

// Recorder accumulates engine counters and a decision-latency histogram. The
// counters are plain atomics so OnTick/GetHedgeRecommendation can update them
// without allocating; the histogram uses an exponentially-decaying reservoir
// sample, grounded in the same rcrowley/go-metrics usage as latency-sensitive
// trackers elsewhere in the stack.
type Recorder struct {
	ticksProcessed     uint64
	ticksDropped       uint64
	hedgesEmitted      uint64
	estimationFailures uint64

	decisionLatency gometrics.Histogram
}

// NewRecorder creates a Recorder with a fresh latency histogram.
func NewRecorder() *Recorder {
	return &Recorder{
		decisionLatency: gometrics.NewHistogram(gometrics.NewExpDecaySample(1028, 0.015)),
	}
}

// RecordTick increments the processed-tick counter. Wait-free.
func (r *Recorder) RecordTick() {
	atomic.AddUint64(&r.ticksProcessed, 1)
}

// RecordTickDropped increments the dropped-tick counter. Wait-free.
func (r *Recorder) RecordTickDropped() {
	atomic.AddUint64(&r.ticksDropped, 1)
}

// RecordHedgeEmitted increments the emitted-recommendation counter. Wait-free.
func (r *Recorder) RecordHedgeEmitted() {
	atomic.AddUint64(&r.hedgesEmitted, 1)
}

// RecordEstimationFailure increments the cold-path estimation-failure
// counter. Called from the cold worker only.
func (r *Recorder) RecordEstimationFailure() {
	atomic.AddUint64(&r.estimationFailures, 1)
}

// RecordDecisionLatency records the nanosecond duration of a single
// GetHedgeRecommendation call into the latency histogram. The histogram's
// sample takes a mutex on every update.
func (r *Recorder) RecordDecisionLatency(d time.Duration) {
	r.decisionLatency.Update(d.Nanoseconds())
}

// Snapshot is a point-in-time copy of every tracked counter and latency
// percentile, safe to read and log without further synchronization.
type Snapshot struct {
	TicksProcessed     uint64
	TicksDropped       uint64
	HedgesEmitted      uint64
	EstimationFailures uint64
	// EstimationRounds and LastEstimationOK are populated by the engine
	// facade from the cold worker, not this Recorder.
	EstimationRounds  uint64
	LastEstimationOK  bool
	DecisionLatencyP50  int64
	DecisionLatencyP95  int64
	DecisionLatencyP99  int64
	DecisionLatencyP999 int64
	DecisionLatencyMax  int64
}

// Snapshot takes a consistent snapshot of all counters and the latency
// histogram's percentiles.
func (r *Recorder) Snapshot() Snapshot {
	h := r.decisionLatency.Snapshot()
	return Snapshot{
		TicksProcessed:      atomic.LoadUint64(&r.ticksProcessed),
		TicksDropped:        atomic.LoadUint64(&r.ticksDropped),
		HedgesEmitted:       atomic.LoadUint64(&r.hedgesEmitted),
		EstimationFailures:  atomic.LoadUint64(&r.estimationFailures),
		DecisionLatencyP50:  int64(h.Percentile(0.50)),
		DecisionLatencyP95:  int64(h.Percentile(0.95)),
		DecisionLatencyP99:  int64(h.Percentile(0.99)),
		DecisionLatencyP999: int64(h.Percentile(0.999)),
		DecisionLatencyMax:  h.Max(),
	}
}
