package gating

import (
	"TradeGate/internal/domain/models"
)

// ImpulseEngine detects the two-candle directional burst that anchors all
// expansion measurement. It is the only writer of ImpulseState; every other
// component reads the state by value.
type ImpulseEngine struct {
	cfg   ImpulseConfig
	state models.ImpulseState
}

func NewImpulseEngine(cfg ImpulseConfig) *ImpulseEngine {
	return &ImpulseEngine{cfg: cfg}
}

// Reset clears the anchor (new session).
func (e *ImpulseEngine) Reset() { e.state = models.ImpulseState{} }

// State returns the current anchor by value.
func (e *ImpulseEngine) State() models.ImpulseState { return e.state }

// Update scans the last two closed candles for a qualifying burst. A new
// qualifying impulse, same or opposite direction, replaces the stored state;
// otherwise the existing anchor is kept.
//
// A bullish impulse needs two consecutive bullish candles each with range
// above RangeMult x the volatility unit, the second close breaking the prior
// swing high, and the fast MA sloping up. The origin is the low of the first
// burst candle. Bearish mirrors with the origin at the first candle's high.
func (e *ImpulseEngine) Update(candles []models.Candle, ind models.Indicators) models.ImpulseState {
	if len(candles) < e.cfg.SwingLookback+2 {
		return e.state
	}
	vu := ind.LastVolUnit()
	if vu <= 0 {
		return e.state
	}
	n := len(candles)
	c1, c2 := candles[n-2], candles[n-1]
	if c1.Range() <= e.cfg.RangeMult*vu || c2.Range() <= e.cfg.RangeMult*vu {
		return e.state
	}
	slope := ind.FastMASlopePct(e.cfg.SlopeBars)
	swing := candles[n-2-e.cfg.SwingLookback : n-2]

	if c1.Bullish() && c2.Bullish() && slope > e.cfg.MinSlopePct && c2.Close > swingHigh(swing) {
		e.state = models.ImpulseState{
			Origin:    c1.Low,
			VolUnit:   vu,
			Direction: models.Long,
			Active:    true,
			Start:     c1.Ts,
		}
		return e.state
	}
	if !c1.Bullish() && !c2.Bullish() && slope < -e.cfg.MinSlopePct && c2.Close < swingLow(swing) {
		e.state = models.ImpulseState{
			Origin:    c1.High,
			VolUnit:   vu,
			Direction: models.Short,
			Active:    true,
			Start:     c1.Ts,
		}
	}
	return e.state
}

func swingHigh(candles []models.Candle) float64 {
	hi := candles[0].High
	for _, c := range candles[1:] {
		if c.High > hi {
			hi = c.High
		}
	}
	return hi
}

func swingLow(candles []models.Candle) float64 {
	lo := candles[0].Low
	for _, c := range candles[1:] {
		if c.Low < lo {
			lo = c.Low
		}
	}
	return lo
}
