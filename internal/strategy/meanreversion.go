package strategy

import (
	"github.com/maksat-software/hedging-engine/internal/clock"
	"github.com/maksat-software/hedging-engine/internal/fixedpoint"
	"github.com/maksat-software/hedging-engine/internal/params"
)

// MeanReversionConfig parameterizes spec §4.4.3.
type MeanReversionConfig struct {
	Delta DeltaConfig
	// ThresholdZ is the absolute z-score beyond which the strategy treats
	// the move as a reversion candidate and scales down the hedge.
	ThresholdZ fixedpoint.Price
	// HedgeStrength scales the delta when |z| >= ThresholdZ, in [0, Scale].
	HedgeStrength fixedpoint.Price
}

// EvaluateMeanReversion implements spec §4.4.3: compute z = (mid -
// mean_price) / max(std_dev, 1) using the Delta Hedge ratio read from the
// cache, then scale the resulting delta by HedgeStrength when |z| reaches
// ThresholdZ (a partial hedge, on the belief the price will revert) or apply
// the full delta otherwise. Symmetric in the sign of z.
func EvaluateMeanReversion(cache *params.Cache, pos PositionView, book BookView, cfg MeanReversionConfig, now clock.TimestampNs) (Recommendation, bool) {
	moments := cache.ReadMoments()
	stdDev := moments.StdDev
	if stdDev < fixedpoint.Scale {
		stdDev = fixedpoint.Scale // max(std_dev, 1) in scaled units
	}
	z := (book.MidPrice - moments.Mean).Div(stdDev)

	ratio := cache.HedgeRatio()
	target, delta := TargetAndDelta(ratio, pos)

	if z.Abs() >= cfg.ThresholdZ {
		delta = delta.Mul(cfg.HedgeStrength)
	}
	return buildRecommendation(delta, target, book, cfg.Delta, now)
}
