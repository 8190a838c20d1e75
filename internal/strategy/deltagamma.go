package strategy

import (
	"github.com/maksat-software/hedging-engine/internal/clock"
	"github.com/maksat-software/hedging-engine/internal/fixedpoint"
	"github.com/maksat-software/hedging-engine/internal/params"
)

var half = fixedpoint.Price(fixedpoint.Scale / 2)

// DeltaGammaConfig parameterizes the Delta-Gamma strategy.
type DeltaGammaConfig struct {
	Delta DeltaConfig
	// ReferencePrice anchors the second-order convexity term, typically
	// the price at which the current hedge position was last established.
	ReferencePrice fixedpoint.Price
}

// EvaluateDeltaGamma extends the Delta Hedge body with a second-order
// convexity term read from an Extended parameter cache: 0.5 * gamma *
// (mid - reference)^2 / mid, added to the first-order delta before the
// threshold and urgency checks. Only arithmetic runs on the hot path; gamma
// itself is estimated cold-side.
func EvaluateDeltaGamma(cache *params.Extended, pos PositionView, book BookView, cfg DeltaGammaConfig, now clock.TimestampNs) (Recommendation, bool) {
	ratio := cache.HedgeRatio()
	target, delta := TargetAndDelta(ratio, pos)

	if book.MidPrice != 0 {
		diff := book.MidPrice - cfg.ReferencePrice
		term := diff.Mul(diff).Div(book.MidPrice)
		gammaAdj := cache.Gamma().Mul(term).Mul(half)
		delta += gammaAdj
	}

	return buildRecommendation(delta, target, book, cfg.Delta, now)
}
