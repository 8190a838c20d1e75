// Package strategy implements the pure, non-allocating hedge-recommendation
// functions of spec §4.4: Delta, MVHR, Mean-Reversion, Delta-Gamma, and
// Spark-Spread. Every strategy shares the same capability, a pure
// transformation from (position, book snapshot, parameter cache) to an
// optional HedgeRecommendation, kept as a closed set of functions rather
// than a dispatch table, so the hot path stays branch-predictable (spec §9).
package strategy

import (
	"github.com/maksat-software/hedging-engine/internal/clock"
	"github.com/maksat-software/hedging-engine/internal/fixedpoint"
	"github.com/maksat-software/hedging-engine/internal/tick"
)

// Urgency is the ordered label surfaced to the outbound adapter.
type Urgency uint8

const (
	// Low urgency: a recommendation based on stale data and a small delta.
	Low Urgency = iota
	// Normal urgency: the common case.
	Normal
	// High urgency: the delta itself is large enough to demand immediate
	// action regardless of how fresh the underlying tick is.
	High
)

func (u Urgency) String() string {
	switch u {
	case Low:
		return "low"
	case High:
		return "high"
	default:
		return "normal"
	}
}

// Recommendation is the value a strategy returns when it believes a hedge
// should be placed.
type Recommendation struct {
	Side        tick.Side
	Quantity    fixedpoint.Volume
	Price       fixedpoint.Price
	Urgency     Urgency
	TimestampNs clock.TimestampNs
}

// OrderFields is the flattened shape an outbound adapter consumes to build a
// venue order (spec §6): side, native-unit quantity, fixed-point price, and
// an opaque tag supplied by the caller (the engine never invents one).
type OrderFields struct {
	Side     tick.Side
	Quantity fixedpoint.Volume
	Price    fixedpoint.Price
	Tag      string
}

// ToOrderFields flattens a Recommendation for the outbound adapter, stamping
// it with a caller-supplied opaque tag.
func (r Recommendation) ToOrderFields(tag string) OrderFields {
	return OrderFields{
		Side:     r.Side,
		Quantity: r.Quantity,
		Price:    r.Price,
		Tag:      tag,
	}
}

// PositionView is the read-only slice of ledger state a strategy needs.
type PositionView struct {
	NetExposure   fixedpoint.Price
	ExecutedHedge fixedpoint.Price
}

// BookView is the read-only book state a strategy needs: the mid price and
// the timestamp of the book's most recent write, used for staleness-based
// urgency.
type BookView struct {
	MidPrice     fixedpoint.Price
	LastUpdateNs clock.TimestampNs
}

// UrgencyConfig parameterizes spec §4.4.4's derivation rule.
type UrgencyConfig struct {
	// MaxPosition bounds the delta-to-size ratio used for the High
	// threshold.
	MaxPosition fixedpoint.Price
	// HighFraction of MaxPosition that guarantees High urgency regardless
	// of staleness, expressed as a fixed-point fraction (Scale = 100%).
	HighFraction fixedpoint.Price
	// StaleAfterNs is the tick age beyond which a non-High recommendation
	// is downgraded to Low.
	StaleAfterNs uint64
}

// deriveUrgency implements spec §4.4.4: High is guaranteed
// whenever the delta already exceeds a configured fraction of max position,
// independent of staleness; otherwise urgency reflects how fresh the
// underlying tick is.
func deriveUrgency(delta fixedpoint.Price, now clock.TimestampNs, book BookView, cfg UrgencyConfig) Urgency {
	if cfg.MaxPosition > 0 {
		threshold := cfg.MaxPosition.Mul(cfg.HighFraction)
		if delta.Abs() >= threshold {
			return High
		}
	}
	age := uint64(now) - uint64(book.LastUpdateNs)
	if now < book.LastUpdateNs {
		age = 0
	}
	if cfg.StaleAfterNs > 0 && age > cfg.StaleAfterNs {
		return Low
	}
	return Normal
}

// sideForDelta returns Ask when delta is positive (buy to cover a short,
// the engine is asking the market to sell it inventory) and Bid when
// negative, matching spec §4.4.1's sign convention.
func sideForDelta(delta fixedpoint.Price) tick.Side {
	if delta > 0 {
		return tick.Ask
	}
	return tick.Bid
}
