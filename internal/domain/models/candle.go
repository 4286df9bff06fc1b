package models

import "time"

// Interval identifies a candle granularity.
type Interval string

const (
	// IntervalEntry is the short granularity used for impulse and gate checks.
	IntervalEntry Interval = "5m"
	// IntervalContext is the longer granularity used for trend context.
	IntervalContext Interval = "30m"
)

// Candle is one OHLC bar. Bars are assumed closed unless Forming is set;
// forming bars are never fed to the classification engines.
type Candle struct {
	Ts      time.Time `json:"ts"`
	Open    float64   `json:"open"`
	High    float64   `json:"high"`
	Low     float64   `json:"low"`
	Close   float64   `json:"close"`
	Volume  float64   `json:"volume,omitempty"`
	Forming bool      `json:"forming,omitempty"`
}

// Range returns the high-low extent of the bar.
func (c Candle) Range() float64 { return c.High - c.Low }

// Body returns the signed open-to-close move.
func (c Candle) Body() float64 { return c.Close - c.Open }

// Bullish reports whether the bar closed above its open.
func (c Candle) Bullish() bool { return c.Close > c.Open }

// Inside reports whether c is contained within prev's range (an inside bar).
func (c Candle) Inside(prev Candle) bool {
	return c.High <= prev.High && c.Low >= prev.Low
}

// Overlaps reports whether one of the two bars is contained in the other
// without extending the range, the chop signature used by the regime checks.
func (c Candle) Overlaps(prev Candle) bool {
	return (c.High <= prev.High && c.Low >= prev.Low) ||
		(prev.High <= c.High && prev.Low >= c.Low)
}

// Indicators carries the indicator series aligned one-to-one with a candle
// series: two moving averages, a volatility-unit (ATR-style) series, and an
// oscillator (RSI-style) series.
type Indicators struct {
	FastMA  []float64
	SlowMA  []float64
	VolUnit []float64
	Osc     []float64
}

// LastVolUnit returns the latest volatility unit, or 0 when unavailable.
func (in Indicators) LastVolUnit() float64 {
	if len(in.VolUnit) == 0 {
		return 0
	}
	return in.VolUnit[len(in.VolUnit)-1]
}

// LastOsc returns the latest oscillator value, or 50 (neutral) when
// unavailable, keeping downstream checks fail-safe on thin history.
func (in Indicators) LastOsc() float64 {
	if len(in.Osc) == 0 {
		return 50
	}
	return in.Osc[len(in.Osc)-1]
}

// LastFastMA returns the latest fast moving average, or 0 when unavailable.
func (in Indicators) LastFastMA() float64 {
	if len(in.FastMA) == 0 {
		return 0
	}
	return in.FastMA[len(in.FastMA)-1]
}

// FastMASlopePct returns the percent change of the fast MA over the last
// `bars` steps, the slope measure shared by the impulse and regime checks.
func (in Indicators) FastMASlopePct(bars int) float64 {
	n := len(in.FastMA)
	if bars <= 0 || n <= bars {
		return 0
	}
	base := in.FastMA[n-1-bars]
	if base == 0 {
		return 0
	}
	return (in.FastMA[n-1] - base) / base * 100
}
