package strategy

import (
	"github.com/maksat-software/hedging-engine/internal/clock"
	"github.com/maksat-software/hedging-engine/internal/fixedpoint"
	"github.com/maksat-software/hedging-engine/internal/params"
)

// SparkSpreadConfig parameterizes the Spark-Spread strategy.
type SparkSpreadConfig struct {
	Delta DeltaConfig
}

// SparkSpreadInputs carries the cross-commodity prices the power-equivalent
// exposure is computed from. GasPrice and CarbonPrice come from the gas and
// carbon order books respectively, outside the single power book that
// BookView.MidPrice describes.
type SparkSpreadInputs struct {
	GasPrice    fixedpoint.Price
	CarbonPrice fixedpoint.Price
}

// EvaluateSparkSpread implements the Spark-Spread strategy: the implied
// power-equivalent exposure is target = ratio * (P - heat_rate*gas -
// carbon_intensity*carbon), where heat_rate and carbon_intensity are
// estimated cold-side and published into the Extended cache. The same
// threshold and urgency logic as Delta Hedge applies to the result.
func EvaluateSparkSpread(cache *params.Extended, pos PositionView, book BookView, in SparkSpreadInputs, cfg SparkSpreadConfig, now clock.TimestampNs) (Recommendation, bool) {
	spread := book.MidPrice - cache.HeatRate().Mul(in.GasPrice) - cache.CarbonIntensity().Mul(in.CarbonPrice)
	ratio := cache.HedgeRatio()
	target := ratio.Mul(spread)
	delta := target - pos.ExecutedHedge
	return buildRecommendation(delta, target, book, cfg.Delta, now)
}
