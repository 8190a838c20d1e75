package params

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maksat-software/hedging-engine/internal/fixedpoint"
)

func TestDefaultHedgeRatio(t *testing.T) {
	c := New(fixedpoint.FromFloat64(1.125))
	assert.Equal(t, fixedpoint.FromFloat64(1.125), c.HedgeRatio())
}

func TestPublishHedgeRatio(t *testing.T) {
	c := New(fixedpoint.FromFloat64(1))
	c.PublishHedgeRatio(fixedpoint.FromFloat64(1.3), 42)
	assert.Equal(t, fixedpoint.FromFloat64(1.3), c.HedgeRatio())
	assert.EqualValues(t, 42, c.LastUpdateNs())
}

// Scenario C / property 7 from spec §8: moments published by the cold worker
// are visible to a ReadMoments call.
func TestReadMoments(t *testing.T) {
	c := New(fixedpoint.FromFloat64(1))
	c.PublishMoments(fixedpoint.FromFloat64(40), fixedpoint.FromFloat64(2), 100)

	m := c.ReadMoments()
	require.False(t, m.PossiblyInconsistent, "expected a consistent read with no concurrent writer")
	assert.Equal(t, fixedpoint.FromFloat64(40), m.Mean)
	assert.Equal(t, fixedpoint.FromFloat64(2), m.StdDev)
}

func TestExtendedCache(t *testing.T) {
	e := NewExtended(fixedpoint.FromFloat64(1))
	e.PublishExtended(fixedpoint.FromFloat64(0.05), fixedpoint.FromFloat64(7.5), fixedpoint.FromFloat64(0.4), 10)

	assert.Equal(t, fixedpoint.FromFloat64(0.05), e.Gamma())
	assert.Equal(t, fixedpoint.FromFloat64(7.5), e.HeatRate())
	assert.Equal(t, fixedpoint.FromFloat64(0.4), e.CarbonIntensity())
	// the embedded base Cache is still reachable and independent
	assert.Equal(t, fixedpoint.FromFloat64(1), e.HedgeRatio())
}
