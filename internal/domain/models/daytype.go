package models

// DayType is the session-long market regime. Within one session the
// severity of the applied DayType never decreases, and once a locking
// regime is reached the classification is frozen for the day.
type DayType int

const (
	DayUnknown DayType = iota
	DayCleanTrend
	DayNormalTrend
	DayEarlyImpulseSideways
	DayFastRegimeFlip
	DayRotationalExpansion
	DayRangeChoppy
	DayLiquiditySweepTrap
	DayVolatilitySpike
	DayExpiryDistortion
)

// Severity ranks regimes from benign (1) to hostile (8). DayUnknown ranks 0
// so that the first classification of any severity is accepted.
func (d DayType) Severity() int {
	switch d {
	case DayCleanTrend:
		return 1
	case DayNormalTrend:
		return 2
	case DayEarlyImpulseSideways:
		return 3
	case DayFastRegimeFlip:
		return 4
	case DayRotationalExpansion:
		return 5
	case DayRangeChoppy:
		return 6
	case DayLiquiditySweepTrap:
		return 7
	case DayVolatilitySpike, DayExpiryDistortion:
		return 8
	default:
		return 0
	}
}

// Locks reports whether reaching this regime freezes classification for the
// remainder of the session.
func (d DayType) Locks() bool {
	return d == DayRangeChoppy || d == DayLiquiditySweepTrap
}

// Hostile reports whether the regime blocks entries after the midday cutoff.
func (d DayType) Hostile() bool {
	switch d {
	case DayEarlyImpulseSideways, DayRangeChoppy, DayExpiryDistortion,
		DayRotationalExpansion, DayFastRegimeFlip:
		return true
	}
	return false
}

// Conditional reports whether the regime allows at most one trade per day
// under a stricter oscillator bound.
func (d DayType) Conditional() bool {
	return d == DayRotationalExpansion || d == DayFastRegimeFlip
}

func (d DayType) String() string {
	switch d {
	case DayCleanTrend:
		return "clean-trend"
	case DayNormalTrend:
		return "normal-trend"
	case DayEarlyImpulseSideways:
		return "early-impulse-sideways"
	case DayFastRegimeFlip:
		return "fast-regime-flip"
	case DayRotationalExpansion:
		return "rotational-expansion"
	case DayRangeChoppy:
		return "range-choppy"
	case DayLiquiditySweepTrap:
		return "liquidity-sweep-trap"
	case DayVolatilitySpike:
		return "volatility-spike"
	case DayExpiryDistortion:
		return "expiry-distortion"
	default:
		return "unknown"
	}
}
