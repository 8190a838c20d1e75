// Package fixedpoint implements the scaled-integer price and volume
// representations used everywhere on the hot path. Conversions to and from
// floating point go through the boundary helpers in this file; between
// ingestion and recommendation the only such conversion is the engine's
// plain-delta path turning its configured default hedge ratio into a Price
// on each GetHedgeRecommendation call.
package fixedpoint

import "math"

// Scale is the fixed-point scaling factor for prices: one unit of Price
// equals 1/Scale of the underlying decimal value.
const Scale = 10000

// Price is a signed, scaled fixed-point decimal (value * Scale). It is used
// for all prices, hedge ratios, z-scores, and other scaled quantities that
// can go negative.
type Price int64

// Volume is an unsigned quantity in instrument-native units. Volumes never
// go negative; signed deltas are expressed as Price or plain int64 where a
// sign is meaningful.
type Volume uint64

// Mul multiplies two Price values that are both already scaled by Scale,
// rescaling the product back down to a single Scale factor.
func (p Price) Mul(q Price) Price {
	return Price((int64(p) * int64(q)) / Scale)
}

// Div divides p by q, both already scaled by Scale, preserving the Scale
// factor in the quotient. Returns zero if q is zero.
func (p Price) Div(q Price) Price {
	if q == 0 {
		return 0
	}
	return Price((int64(p) * Scale) / int64(q))
}

// Abs returns the absolute value of p.
func (p Price) Abs() Price {
	if p < 0 {
		return -p
	}
	return p
}

// FromFloat64 converts a floating-point decimal into a scaled Price,
// rounding to the nearest representable fixed-point value. Boundary helper;
// on the hot path it is called only by Engine.GetHedgeRecommendation for
// the configured default hedge ratio.
func FromFloat64(v float64) Price {
	return Price(math.Round(v * Scale))
}

// ToFloat64 converts a scaled Price back into a floating-point decimal.
// Boundary-only: never called on the hot path.
func (p Price) ToFloat64() float64 {
	return float64(p) / Scale
}

// ToVolumeFloor converts a non-negative scaled Price into a Volume, rounding
// down to the instrument unit (spec §4.4.1: "rounded down to instrument
// unit"). A negative Price yields zero.
func (p Price) ToVolumeFloor() Volume {
	if p <= 0 {
		return 0
	}
	return Volume(int64(p) / Scale)
}

// VolumeFromFloat64 converts a non-negative floating-point quantity into a
// Volume, truncating toward zero (rounding down to the instrument unit per
// spec §4.4.1). Boundary-only.
func VolumeFromFloat64(v float64) Volume {
	if v <= 0 {
		return 0
	}
	return Volume(v)
}

// ToFloat64 converts a Volume back into a floating-point quantity.
// Boundary-only.
func (v Volume) ToFloat64() float64 {
	return float64(v)
}
