package strategy

import (
	"testing"

	"github.com/maksat-software/hedging-engine/internal/clock"
	"github.com/maksat-software/hedging-engine/internal/fixedpoint"
	"github.com/maksat-software/hedging-engine/internal/params"
)

func TestEvaluateDeltaGammaAddsConvexityTerm(t *testing.T) {
	cache := params.NewExtended(fixedpoint.FromFloat64(1.125))
	cache.PublishExtended(fixedpoint.FromFloat64(10), 0, 0, 1)

	pos := PositionView{NetExposure: fixedpoint.FromFloat64(-10000), ExecutedHedge: 0}
	book := BookView{MidPrice: fixedpoint.FromFloat64(45.50)}
	cfg := DeltaGammaConfig{
		Delta:          DeltaConfig{RehedgeThresholdBps: 0},
		ReferencePrice: fixedpoint.FromFloat64(0),
	}

	withGamma, ok := EvaluateDeltaGamma(cache, pos, book, cfg, clock.TimestampNs(0))
	if !ok {
		t.Fatal("expected a recommendation")
	}

	plain, _ := EvaluateDelta(cache.HedgeRatio(), pos, book, cfg.Delta, clock.TimestampNs(0))
	if withGamma.Quantity <= plain.Quantity {
		t.Errorf("convexity term should increase the hedge quantity: got %v, plain delta %v", withGamma.Quantity, plain.Quantity)
	}
}

func TestEvaluateDeltaGammaZeroGammaMatchesPlainDelta(t *testing.T) {
	cache := params.NewExtended(fixedpoint.FromFloat64(1.125))
	pos := PositionView{NetExposure: fixedpoint.FromFloat64(-10000), ExecutedHedge: 0}
	book := BookView{MidPrice: fixedpoint.FromFloat64(45.50)}
	cfg := DeltaGammaConfig{Delta: DeltaConfig{RehedgeThresholdBps: 0}, ReferencePrice: fixedpoint.FromFloat64(45.50)}

	withGamma, ok := EvaluateDeltaGamma(cache, pos, book, cfg, clock.TimestampNs(0))
	if !ok {
		t.Fatal("expected a recommendation")
	}
	plain, _ := EvaluateDelta(cache.HedgeRatio(), pos, book, cfg.Delta, clock.TimestampNs(0))
	if withGamma.Quantity != plain.Quantity {
		t.Errorf("with gamma=0, Quantity = %v, want %v", withGamma.Quantity, plain.Quantity)
	}
}
