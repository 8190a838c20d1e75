package strategy

import (
	"github.com/maksat-software/hedging-engine/internal/clock"
	"github.com/maksat-software/hedging-engine/internal/params"
)

// EvaluateMVHR implements the Minimum-Variance Hedge Ratio strategy (spec
// §4.4.2): the hot path reads the ratio the cold worker last published and
// applies the Delta Hedge body with it. All statistical estimation of the
// ratio itself lives in the cold worker (spec §4.5); this function performs
// only arithmetic.
func EvaluateMVHR(cache *params.Cache, pos PositionView, book BookView, cfg DeltaConfig, now clock.TimestampNs) (Recommendation, bool) {
	ratio := cache.HedgeRatio()
	return EvaluateDelta(ratio, pos, book, cfg, now)
}
