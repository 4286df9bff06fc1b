// Package gating implements the trade-admission layer: regime (day-type)
// classification, impulse-anchored expansion, the trend-phase filter, the
// execution gate chain, strategy permissions, the correlation brake, the
// consecutive-loss throttle, and the session stop manager. Everything here is
// pure computation over candle/indicator state; all I/O lives in the callers.
package gating

import (
	"fmt"
	"time"

	"TradeGate/pkg/util"
)

// Config carries every gating threshold. Defaults match the live calibration;
// all values are overridable from the YAML config.
type Config struct {
	DayType       DayTypeConfig    `yaml:"day_type"`
	Impulse       ImpulseConfig    `yaml:"impulse"`
	Phase         PhaseConfig      `yaml:"phase"`
	Gates         GateConfig       `yaml:"gates"`
	Permission    PermissionConfig `yaml:"permission"`
	Brake         BrakeConfig      `yaml:"brake"`
	Throttle      ThrottleConfig   `yaml:"throttle"`
	Stop          StopConfig       `yaml:"stop"`
	TradingCutoff util.Clock       `yaml:"trading_cutoff"`
}

// DayTypeConfig parameterizes the regime classifier.
type DayTypeConfig struct {
	CheckEvery   util.Duration `yaml:"check_every"`
	ConfirmAfter util.Duration `yaml:"confirm_after"`
	MinHistory   int           `yaml:"min_history"`
	OpeningBars  int           `yaml:"opening_bars"`

	SweepExpansionMult float64 `yaml:"sweep_expansion_mult"`
	SweepReversalMult  float64 `yaml:"sweep_reversal_mult"`

	ChoppyCrossings   int     `yaml:"choppy_crossings"`
	ChoppyContraction float64 `yaml:"choppy_contraction"`

	RotationalExpansion float64 `yaml:"rotational_expansion"`
	RotationalCrossings int     `yaml:"rotational_crossings"`

	FlipOpeningMult float64 `yaml:"flip_opening_mult"`
	FlipRecentMult  float64 `yaml:"flip_recent_mult"`

	CleanExpansion float64 `yaml:"clean_expansion"`
	CleanMaxInside int     `yaml:"clean_max_inside"`
	CleanMATouches int     `yaml:"clean_ma_touches"`
	CleanTouchBars int     `yaml:"clean_touch_bars"`

	EarlyOpeningMult float64 `yaml:"early_opening_mult"`
	EarlyMinInside   int     `yaml:"early_min_inside"`

	SpikeRangeMult   float64 `yaml:"spike_range_mult"`
	SpikeReversalPct float64 `yaml:"spike_reversal_pct"`

	ExpiryCrossings int `yaml:"expiry_crossings"`

	FlatSlopePct float64 `yaml:"flat_slope_pct"`
	SlopeBars    int     `yaml:"slope_bars"`
	Lookback     int     `yaml:"lookback"`
	OscMidline   float64 `yaml:"osc_midline"`
	OscBandLow   float64 `yaml:"osc_band_low"`
	OscBandHigh  float64 `yaml:"osc_band_high"`
}

// ImpulseConfig parameterizes the two-candle burst detector.
type ImpulseConfig struct {
	RangeMult     float64 `yaml:"range_mult"`
	SwingLookback int     `yaml:"swing_lookback"`
	SlopeBars     int     `yaml:"slope_bars"`
	MinSlopePct   float64 `yaml:"min_slope_pct"`
}

// PhaseConfig holds the expansion-ratio boundaries and MID sub-conditions.
// Boundaries are closed on the lower bound: exactly EarlyMax is MID, exactly
// MidMax is LATE, exactly LateMax is a hard block.
type PhaseConfig struct {
	EarlyMax      float64 `yaml:"early_max"`
	MidMax        float64 `yaml:"mid_max"`
	LateMax       float64 `yaml:"late_max"`
	PullbackMult  float64 `yaml:"pullback_mult"`
	PullbackBars  int     `yaml:"pullback_bars"`
	StructureBars int     `yaml:"structure_bars"`
	OscMidline    float64 `yaml:"osc_midline"`
}

// GateConfig parameterizes the three execution gates.
type GateConfig struct {
	ExhaustionMult    float64    `yaml:"exhaustion_mult"`
	FallbackRangeFrac float64    `yaml:"fallback_range_frac"`
	TimeCutoff        util.Clock `yaml:"time_cutoff"`
	CompressionLow    float64    `yaml:"compression_low"`
	CompressionHigh   float64    `yaml:"compression_high"`
	CompressionBars   int        `yaml:"compression_bars"`
	CompressionInside int        `yaml:"compression_inside"`
}

// StrategyRule is the per-strategy time permission. A zero Cutoff means the
// session trading cutoff applies; ExpiryCutoff, when set, replaces Cutoff on
// the instrument's expiry day.
type StrategyRule struct {
	Cutoff       util.Clock `yaml:"cutoff"`
	ExpiryCutoff util.Clock `yaml:"expiry_cutoff"`
}

// PermissionConfig holds the strategy permission table and the conditional
// regime bounds (rotational-expansion and fast-regime-flip).
type PermissionConfig struct {
	Strategies      map[string]StrategyRule `yaml:"strategies"`
	ConditionalCap  int                     `yaml:"conditional_cap"`
	LongOscFloor    float64                 `yaml:"long_osc_floor"`
	ShortOscCeiling float64                 `yaml:"short_osc_ceiling"`
}

// BrakeConfig parameterizes the cross-instrument correlation brake.
type BrakeConfig struct {
	Window   util.Duration     `yaml:"window"`
	BlockFor util.Duration     `yaml:"block_for"`
	Pairs    map[string]string `yaml:"pairs"`
}

// ThrottleConfig parameterizes the consecutive-loss throttle.
type ThrottleConfig struct {
	Threshold int           `yaml:"threshold"`
	PauseFor  util.Duration `yaml:"pause_for"`
}

// StopConfig parameterizes the session kill switch.
type StopConfig struct {
	MaxConsecutiveBlocks int        `yaml:"max_consecutive_blocks"`
	LateLossCutoff       util.Clock `yaml:"late_loss_cutoff"`
	MaxLateLosses        int        `yaml:"max_late_losses"`
}

// DefaultConfig returns the calibrated live defaults.
func DefaultConfig() Config {
	return Config{
		DayType: DayTypeConfig{
			CheckEvery:   util.Duration(30 * time.Minute),
			ConfirmAfter: util.Duration(50 * time.Minute),
			MinHistory:   10,
			OpeningBars:  6,

			SweepExpansionMult: 1.2,
			SweepReversalMult:  0.8,

			ChoppyCrossings:   3,
			ChoppyContraction: 0.7,

			RotationalExpansion: 1.05,
			RotationalCrossings: 3,

			FlipOpeningMult: 1.5,
			FlipRecentMult:  1.2,

			CleanExpansion: 1.05,
			CleanMaxInside: 3,
			CleanMATouches: 2,
			CleanTouchBars: 20,

			EarlyOpeningMult: 1.2,
			EarlyMinInside:   4,

			SpikeRangeMult:   2.5,
			SpikeReversalPct: 0.6,

			ExpiryCrossings: 3,

			FlatSlopePct: 0.05,
			SlopeBars:    3,
			Lookback:     10,
			OscMidline:   50,
			OscBandLow:   45,
			OscBandHigh:  55,
		},
		Impulse: ImpulseConfig{
			RangeMult:     0.6,
			SwingLookback: 10,
			SlopeBars:     3,
			MinSlopePct:   0.03,
		},
		Phase: PhaseConfig{
			EarlyMax:      1.2,
			MidMax:        2.0,
			LateMax:       2.5,
			PullbackMult:  0.5,
			PullbackBars:  5,
			StructureBars: 3,
			OscMidline:    50,
		},
		Gates: GateConfig{
			ExhaustionMult:    1.5,
			FallbackRangeFrac: 0.7,
			TimeCutoff:        util.MustClock("12:30"),
			CompressionLow:    48,
			CompressionHigh:   62,
			CompressionBars:   10,
			CompressionInside: 5,
		},
		Permission: PermissionConfig{
			Strategies: map[string]StrategyRule{
				"momentum":           {ExpiryCutoff: util.MustClock("14:00")},
				"pullback-core":      {Cutoff: util.MustClock("13:30")},
				"pullback-liquidity": {Cutoff: util.MustClock("13:00")},
				"opening-drive":      {Cutoff: util.MustClock("11:00")},
			},
			ConditionalCap:  1,
			LongOscFloor:    55,
			ShortOscCeiling: 45,
		},
		Brake: BrakeConfig{
			Window:   util.Duration(60 * time.Minute),
			BlockFor: util.Duration(60 * time.Minute),
			Pairs:    map[string]string{},
		},
		Throttle: ThrottleConfig{
			Threshold: 2,
			PauseFor:  util.Duration(60 * time.Minute),
		},
		Stop: StopConfig{
			MaxConsecutiveBlocks: 3,
			LateLossCutoff:       util.MustClock("11:30"),
			MaxLateLosses:        2,
		},
		TradingCutoff: util.MustClock("14:30"),
	}
}

// Validate rejects configurations that would make the gates degenerate.
func (c Config) Validate() error {
	if c.DayType.CheckEvery <= 0 {
		return fmt.Errorf("day_type.check_every must be positive")
	}
	if c.Phase.EarlyMax <= 0 || c.Phase.MidMax <= c.Phase.EarlyMax || c.Phase.LateMax <= c.Phase.MidMax {
		return fmt.Errorf("phase boundaries must be increasing: early=%v mid=%v late=%v",
			c.Phase.EarlyMax, c.Phase.MidMax, c.Phase.LateMax)
	}
	if c.Gates.ExhaustionMult <= 0 {
		return fmt.Errorf("gates.exhaustion_mult must be positive")
	}
	if c.Gates.CompressionLow >= c.Gates.CompressionHigh {
		return fmt.Errorf("gates compression band is inverted: [%v, %v]",
			c.Gates.CompressionLow, c.Gates.CompressionHigh)
	}
	if c.Throttle.Threshold <= 0 || c.Throttle.PauseFor <= 0 {
		return fmt.Errorf("throttle threshold and pause_for must be positive")
	}
	if c.Brake.Window <= 0 || c.Brake.BlockFor <= 0 {
		return fmt.Errorf("brake window and block_for must be positive")
	}
	if c.Stop.MaxConsecutiveBlocks <= 0 || c.Stop.MaxLateLosses <= 0 {
		return fmt.Errorf("stop counters must be positive")
	}
	return nil
}
