package engine

import (
	"math"
	"time"

	"github.com/maksat-software/hedging-engine/internal/hedgeerr"
)

// MeanReversionConfig mirrors spec §6's mean_reversion block. Kappa is
// accepted for forward compatibility with a mean-reversion speed parameter
// but is not consumed by the current strategy body (spec §4.4.3 defines the
// scaling purely in terms of z, threshold_z, and hedge_strength).
type MeanReversionConfig struct {
	Kappa         float64
	ThresholdZ    float64
	HedgeStrength float64
}

// Config is the engine's full construction-time configuration (spec §6).
// There is no file or flag parsing anywhere in this package: a Config is
// built and validated entirely in-process by the integrator.
type Config struct {
	SymbolID uint8

	InitialPosition     float64
	DefaultHedgeRatio    float64
	RehedgeThresholdBps  int64
	MaxPosition          float64
	HighUrgencyFraction  float64
	StaleAfter           time.Duration

	EnableMVHR          bool
	EnableMeanReversion bool
	MeanReversion       MeanReversionConfig

	StatisticsWindowHours int
	SamplerHz             uint32
	EstimationInterval    time.Duration
	MinEstimationSamples  int

	RingCapacity int
}

// DefaultConfig returns a Config with every optional field at its spec §6
// default and DefaultHedgeRatio at 1.0, leaving InitialPosition (zero) for
// the caller to set.
func DefaultConfig() Config {
	return Config{
		DefaultHedgeRatio:     1.0,
		RehedgeThresholdBps:   0,
		HighUrgencyFraction:   fixedpointDefaultHighFraction,
		StatisticsWindowHours: 1,
		SamplerHz:             10,
		EstimationInterval:    time.Second,
		MinEstimationSamples:  2,
		RingCapacity:          1024,
	}
}

const fixedpointDefaultHighFraction = 0.8

// Validate checks every recognized Config option against spec §6's rules,
// returning the first violation found as a ConfigInvalid error.
func (c Config) Validate() error {
	if c.DefaultHedgeRatio <= 0 {
		return hedgeerr.NewConfigInvalid("default_hedge_ratio", "must be positive")
	}
	if c.RehedgeThresholdBps < 0 {
		return hedgeerr.NewConfigInvalid("rehedge_threshold_bps", "must be non-negative")
	}
	if c.MaxPosition < 0 {
		return hedgeerr.NewConfigInvalid("max_position", "must be positive")
	}
	if c.StatisticsWindowHours < 0 {
		return hedgeerr.NewConfigInvalid("statistics_window_hours", "must be positive")
	}
	if c.EnableMeanReversion {
		if math.IsNaN(c.MeanReversion.Kappa) || math.IsInf(c.MeanReversion.Kappa, 0) {
			return hedgeerr.NewConfigInvalid("mean_reversion.kappa", "must be finite")
		}
		if c.MeanReversion.HedgeStrength < 0 || c.MeanReversion.HedgeStrength > 1 {
			return hedgeerr.NewConfigInvalid("mean_reversion.hedge_strength", "must be in [0, 1]")
		}
		if c.MeanReversion.ThresholdZ < 0 {
			return hedgeerr.NewConfigInvalid("mean_reversion.threshold_z", "must be non-negative")
		}
	}
	return nil
}
