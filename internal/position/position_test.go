package position

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/maksat-software/hedging-engine/internal/fixedpoint"
)

func TestNewAndApplyFill(t *testing.T) {
	l := New(fixedpoint.FromFloat64(-10000))
	assert.Equal(t, fixedpoint.FromFloat64(-10000), l.NetExposure())

	l.ApplyFill(fixedpoint.FromFloat64(500), 10)
	assert.Equal(t, fixedpoint.FromFloat64(-9500), l.NetExposure(), "after ApplyFill")
	assert.EqualValues(t, 10, l.LastChangeNs())
}

func TestRecordHedge(t *testing.T) {
	l := New(0)
	l.RecordHedge(fixedpoint.FromFloat64(11250), 5)
	assert.Equal(t, fixedpoint.FromFloat64(11250), l.ExecutedHedge())

	l.RecordHedge(fixedpoint.FromFloat64(-50), 6)
	assert.Equal(t, fixedpoint.FromFloat64(11200), l.ExecutedHedge(), "after second RecordHedge")
}
