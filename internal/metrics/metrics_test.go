package metrics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCountersIncrement(t *testing.T) {
	r := NewRecorder()
	r.RecordTick()
	r.RecordTick()
	r.RecordTickDropped()
	r.RecordHedgeEmitted()
	r.RecordEstimationFailure()

	snap := r.Snapshot()
	assert.EqualValues(t, 2, snap.TicksProcessed)
	assert.EqualValues(t, 1, snap.TicksDropped)
	assert.EqualValues(t, 1, snap.HedgesEmitted)
	assert.EqualValues(t, 1, snap.EstimationFailures)
}

func TestDecisionLatencyPercentiles(t *testing.T) {
	r := NewRecorder()
	for i := 1; i <= 100; i++ {
		r.RecordDecisionLatency(time.Duration(i) * time.Microsecond)
	}

	snap := r.Snapshot()
	if snap.DecisionLatencyMax <= 0 {
		t.Errorf("DecisionLatencyMax = %d, want > 0", snap.DecisionLatencyMax)
	}
	if snap.DecisionLatencyP50 <= 0 || snap.DecisionLatencyP50 > snap.DecisionLatencyP999 {
		t.Errorf("DecisionLatencyP50 = %d should be > 0 and <= P999 (%d)", snap.DecisionLatencyP50, snap.DecisionLatencyP999)
	}
}

func TestSnapshotOfFreshRecorderIsZero(t *testing.T) {
	r := NewRecorder()
	snap := r.Snapshot()
	if snap.TicksProcessed != 0 || snap.TicksDropped != 0 || snap.HedgesEmitted != 0 || snap.EstimationFailures != 0 {
		t.Errorf("fresh recorder snapshot should be all-zero, got %+v", snap)
	}
}
