package gating

import (
	"fmt"
	"time"

	"TradeGate/internal/domain/models"
)

// Gate names, in fixed evaluation order.
const (
	GateExhaustion  = "exhaustion"
	GateTimeRegime  = "time-regime"
	GateCompression = "oscillator-compression"
)

// GateInput bundles the state a gate evaluation reads. All fields are copies
// or read-only views; gates never mutate. Context carries the trend-context
// bars; Mark is the live price when a tick stream supplies one (zero falls
// back to the candidate's entry).
type GateInput struct {
	Candidate models.SignalCandidate
	Impulse   models.ImpulseState
	Day       models.DayType
	Ind       models.Indicators
	Candles   []models.Candle
	Context   []models.Candle
	Mark      float64
	Now       time.Time
}

// Price returns the effective evaluation price.
func (in GateInput) Price() float64 {
	if in.Mark > 0 {
		return in.Mark
	}
	return in.Candidate.Entry
}

// GateChain evaluates the three execution gates. The admit result is the
// logical AND of all three; gates run in fixed order so the recorded failure
// is always the first one.
type GateChain struct {
	cfg GateConfig
}

func NewGateChain(cfg GateConfig) *GateChain {
	return &GateChain{cfg: cfg}
}

// Evaluate runs the gates in order and returns the names evaluated plus the
// first failing gate and its reason ("" when all pass).
func (g *GateChain) Evaluate(in GateInput) (evaluated []string, failed string, reason string) {
	checks := []struct {
		name string
		run  func(GateInput) string
	}{
		{GateExhaustion, g.exhaustion},
		{GateTimeRegime, g.timeRegime},
		{GateCompression, g.compression},
	}
	for _, c := range checks {
		evaluated = append(evaluated, c.name)
		if r := c.run(in); r != "" {
			return evaluated, c.name, r
		}
	}
	return evaluated, "", ""
}

// exhaustion blocks entries too far from the move's origin. With an active
// impulse the bound is an expansion multiple; without one it falls back to
// displacement from the session extreme, measured on the trend-context bars
// when available since they span the whole session. Malformed candidates
// fail here.
func (g *GateChain) exhaustion(in GateInput) string {
	if in.Candidate.Malformed() {
		return "malformed candidate"
	}
	price := in.Price()
	if in.Impulse.Active {
		exp := in.Impulse.Expansion(price)
		if exp > g.cfg.ExhaustionMult {
			return fmt.Sprintf("expansion %.2f past exhaustion limit %.2f", exp, g.cfg.ExhaustionMult)
		}
		return ""
	}
	session := in.Context
	if len(session) == 0 {
		session = in.Candles
	}
	if len(session) == 0 {
		return ""
	}
	hi := swingHigh(session)
	lo := swingLow(session)
	vu := in.Ind.LastVolUnit()
	if vu <= 0 {
		return ""
	}
	var dist float64
	if in.Candidate.Direction == models.Long {
		dist = price - lo
	} else {
		dist = hi - price
	}
	limit := g.cfg.ExhaustionMult * vu
	if frac := g.cfg.FallbackRangeFrac * (hi - lo); frac < limit {
		limit = frac
	}
	if dist > limit {
		return fmt.Sprintf("entry %.2f points from session extreme past limit %.2f", dist, limit)
	}
	return ""
}

// timeRegime blocks late-session entries in hostile regimes.
func (g *GateChain) timeRegime(in GateInput) string {
	if g.cfg.TimeCutoff.AtOrPast(in.Now) && in.Day.Hostile() {
		return fmt.Sprintf("%s regime past %s", in.Day, g.cfg.TimeCutoff)
	}
	return ""
}

// compression blocks entries when the oscillator has pinned to its midband
// while bars stack inside each other, the indecision signature.
func (g *GateChain) compression(in GateInput) string {
	bars := g.cfg.CompressionBars
	if len(in.Ind.Osc) < bars || len(in.Candles) < bars {
		return ""
	}
	window := in.Ind.Osc[len(in.Ind.Osc)-bars:]
	for _, v := range window {
		if v < g.cfg.CompressionLow || v > g.cfg.CompressionHigh {
			return ""
		}
	}
	if insideCount(in.Candles, bars) < g.cfg.CompressionInside {
		return ""
	}
	return fmt.Sprintf("oscillator compressed in [%.0f, %.0f] over %d bars",
		g.cfg.CompressionLow, g.cfg.CompressionHigh, bars)
}
