package strategy

import (
	"github.com/maksat-software/hedging-engine/internal/clock"
	"github.com/maksat-software/hedging-engine/internal/fixedpoint"
)

// DeltaConfig parameterizes the Delta Hedge strategy (spec §4.4.1).
type DeltaConfig struct {
	// RehedgeThresholdBps is the minimum relative deviation, in basis
	// points, that triggers a recommendation. Zero means "always hedge".
	RehedgeThresholdBps int64
	Urgency             UrgencyConfig
}

// TargetAndDelta computes the Delta Hedge body's target hedge-instrument
// position and raw delta: target offsets netExposure at the given ratio
// (opposite sign, scaled by ratio, a short underlying position needs a
// long hedge), and delta = target - executedHedge (sign convention confirmed
// against the worked example of spec §8.A).
func TargetAndDelta(ratio fixedpoint.Price, pos PositionView) (target, delta fixedpoint.Price) {
	target = -ratio.Mul(pos.NetExposure)
	delta = target - pos.ExecutedHedge
	return target, delta
}

// relativeBps expresses |delta| as basis points of max(|target|, 1) (spec
// §4.4.1).
func relativeBps(delta, target fixedpoint.Price) int64 {
	denom := target.Abs()
	if denom < fixedpoint.Scale {
		denom = fixedpoint.Scale
	}
	return int64(fixedpoint.Scale) * int64(delta.Abs()) / int64(denom)
}

// buildRecommendation turns a (possibly already-scaled) delta into a
// Recommendation, applying the threshold check, quantity rounding, and
// urgency derivation shared by every delta-based strategy. target is the
// unscaled target used only for the relative-threshold denominator.
func buildRecommendation(delta, target fixedpoint.Price, book BookView, cfg DeltaConfig, now clock.TimestampNs) (Recommendation, bool) {
	if delta == 0 {
		return Recommendation{}, false
	}
	if relativeBps(delta, target) < cfg.RehedgeThresholdBps {
		return Recommendation{}, false
	}
	rec := Recommendation{
		Side:        sideForDelta(delta),
		Quantity:    delta.Abs().ToVolumeFloor(),
		Price:       book.MidPrice,
		TimestampNs: now,
	}
	if rec.Quantity == 0 {
		return Recommendation{}, false
	}
	rec.Urgency = deriveUrgency(delta, now, book, cfg.Urgency)
	return rec, true
}

// EvaluateDelta implements the plain Delta Hedge strategy: compute the raw
// delta against the given ratio and emit a recommendation if the deviation
// clears the configured threshold. Delta == 0 always emits none (spec
// §4.4.1).
func EvaluateDelta(ratio fixedpoint.Price, pos PositionView, book BookView, cfg DeltaConfig, now clock.TimestampNs) (Recommendation, bool) {
	target, delta := TargetAndDelta(ratio, pos)
	return buildRecommendation(delta, target, book, cfg, now)
}
