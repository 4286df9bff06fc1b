package gating

import (
	"fmt"

	"TradeGate/internal/domain/models"
)

// PhaseResult is the per-evaluation outcome of the trend-phase filter. Phase
// is derived and never persisted.
type PhaseResult struct {
	Phase     models.TrendPhase
	Allowed   bool
	Reason    string
	Expansion float64
}

// PhaseEngine maps expansion from the impulse origin into entry phases.
// With no active impulse it fails open to EARLY so transient anchor gaps do
// not deny everything.
type PhaseEngine struct {
	cfg PhaseConfig
}

func NewPhaseEngine(cfg PhaseConfig) *PhaseEngine {
	return &PhaseEngine{cfg: cfg}
}

// Classify derives the phase for one candidate. Boundaries are closed on the
// lower bound: expansion exactly EarlyMax is MID, exactly MidMax is LATE,
// exactly LateMax is a hard block.
func (e *PhaseEngine) Classify(imp models.ImpulseState, price float64, ind models.Indicators, candles []models.Candle) PhaseResult {
	if !imp.Active {
		return PhaseResult{Phase: models.PhaseEarly, Allowed: true}
	}
	exp := imp.Expansion(price)
	switch {
	case exp < e.cfg.EarlyMax:
		return PhaseResult{Phase: models.PhaseEarly, Allowed: true, Expansion: exp}
	case exp < e.cfg.MidMax:
		if reason := e.midCheck(imp, price, ind, candles); reason != "" {
			return PhaseResult{Phase: models.PhaseMid, Allowed: false, Reason: reason, Expansion: exp}
		}
		return PhaseResult{Phase: models.PhaseMid, Allowed: true, Expansion: exp}
	case exp < e.cfg.LateMax:
		return PhaseResult{
			Phase:     models.PhaseLate,
			Allowed:   false,
			Reason:    fmt.Sprintf("late phase, expansion %.2f", exp),
			Expansion: exp,
		}
	default:
		return PhaseResult{
			Phase:     models.PhaseHardBlock,
			Allowed:   false,
			Reason:    fmt.Sprintf("expansion %.2f past hard block", exp),
			Expansion: exp,
		}
	}
}

// midCheck validates the MID sub-conditions: shallow pullback from the recent
// extreme, oscillator on the right side of the midline, and continuation
// structure over the last bars. Returns the first failure or "".
func (e *PhaseEngine) midCheck(imp models.ImpulseState, price float64, ind models.Indicators, candles []models.Candle) string {
	long := imp.Direction == models.Long

	if len(candles) >= e.cfg.PullbackBars {
		window := candles[len(candles)-e.cfg.PullbackBars:]
		var pullback float64
		if long {
			pullback = swingHigh(window) - price
		} else {
			pullback = price - swingLow(window)
		}
		if pullback > e.cfg.PullbackMult*imp.VolUnit {
			return fmt.Sprintf("mid phase pullback %.2fx volatility unit too deep", pullback/imp.VolUnit)
		}
	}

	osc := ind.LastOsc()
	if long && osc < e.cfg.OscMidline {
		return fmt.Sprintf("mid phase oscillator %.1f below midline", osc)
	}
	if !long && osc > e.cfg.OscMidline {
		return fmt.Sprintf("mid phase oscillator %.1f above midline", osc)
	}

	if n := len(candles); n >= e.cfg.StructureBars {
		window := candles[n-e.cfg.StructureBars:]
		for i := 1; i < len(window); i++ {
			if long && window[i].Low <= window[i-1].Low {
				return "mid phase structure broke higher lows"
			}
			if !long && window[i].High >= window[i-1].High {
				return "mid phase structure broke lower highs"
			}
		}
	}
	return ""
}
