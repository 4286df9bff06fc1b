package gating

import (
	"fmt"
	"time"

	"TradeGate/internal/domain/models"
)

// DayTypeEngine classifies the trading day into a severity-ranked regime.
// Within one session the applied severity never decreases, and reaching a
// locking regime freezes the classification for the rest of the day.
//
// Classification runs on a fixed cadence (CheckEvery) against the entry-
// granularity candle history. Rules are evaluated most dangerous first;
// rotational-expansion and fast-regime-flip additionally need a second
// detection at least ConfirmAfter later before they take effect.
type DayTypeEngine struct {
	cfg DayTypeConfig

	current models.DayType
	locked  bool

	openingVol   float64
	openingHigh  float64
	openingLow   float64
	openingUp    bool
	openingReady bool

	lastCheck    time.Time
	pending      models.DayType
	pendingSince time.Time
}

// NewDayTypeEngine returns an engine in the session-start state.
func NewDayTypeEngine(cfg DayTypeConfig) *DayTypeEngine {
	return &DayTypeEngine{cfg: cfg}
}

// Reset returns the engine to the session-start state (new day).
func (e *DayTypeEngine) Reset() {
	e.current = models.DayUnknown
	e.locked = false
	e.openingVol = 0
	e.openingHigh, e.openingLow = 0, 0
	e.openingUp = false
	e.openingReady = false
	e.lastCheck = time.Time{}
	e.pending = models.DayUnknown
	e.pendingSince = time.Time{}
}

// Current returns the raw applied DayType (DayUnknown before the first
// classification).
func (e *DayTypeEngine) Current() models.DayType { return e.current }

// Effective returns the DayType downstream checks should use. Before any
// classification has applied it reports NormalTrend, the fail-safe default
// for missing history.
func (e *DayTypeEngine) Effective() models.DayType {
	if e.current == models.DayUnknown {
		return models.DayNormalTrend
	}
	return e.current
}

// Locked reports whether classification is frozen for the session.
func (e *DayTypeEngine) Locked() bool { return e.locked }

// Update runs one classification pass. It returns the effective DayType,
// whether a transition was applied this call, and the transition reason.
// Calls within CheckEvery of the previous check, with a locked regime, or
// with insufficient history are no-ops on state.
func (e *DayTypeEngine) Update(candles []models.Candle, ind models.Indicators, now time.Time, expiryDay bool) (models.DayType, bool, string) {
	if e.locked {
		return e.current, false, ""
	}
	if !e.lastCheck.IsZero() && now.Sub(e.lastCheck) < e.cfg.CheckEvery.Std() {
		return e.Effective(), false, ""
	}
	if len(candles) < e.cfg.MinHistory || ind.LastVolUnit() <= 0 {
		return e.Effective(), false, ""
	}
	e.lastCheck = now
	e.captureOpening(candles, ind)

	day, reason := e.classify(candles, ind, expiryDay)
	return e.apply(day, reason, now)
}

// captureOpening records the session-open volatility unit and the opening
// window's range and direction, once enough bars exist.
func (e *DayTypeEngine) captureOpening(candles []models.Candle, ind models.Indicators) {
	if e.openingReady || len(candles) < e.cfg.OpeningBars {
		return
	}
	open := candles[:e.cfg.OpeningBars]
	hi, lo := open[0].High, open[0].Low
	for _, c := range open[1:] {
		if c.High > hi {
			hi = c.High
		}
		if c.Low < lo {
			lo = c.Low
		}
	}
	e.openingHigh, e.openingLow = hi, lo
	e.openingUp = open[len(open)-1].Close >= open[0].Open
	if n := len(open); n <= len(ind.VolUnit) {
		e.openingVol = ind.VolUnit[n-1]
	} else {
		e.openingVol = ind.LastVolUnit()
	}
	e.openingReady = true
}

// classify evaluates the rule list top-down and returns the first match,
// defaulting to normal-trend.
func (e *DayTypeEngine) classify(candles []models.Candle, ind models.Indicators, expiryDay bool) (models.DayType, string) {
	vu := ind.LastVolUnit()
	slope := ind.FastMASlopePct(e.cfg.SlopeBars)
	lb := e.cfg.Lookback

	if expiryDay && midlineCrossings(ind.Osc, lb, e.cfg.OscMidline) >= e.cfg.ExpiryCrossings {
		return models.DayExpiryDistortion, "expiry-day oscillator whipsaw"
	}
	if ok, r := e.spike(candles, vu); ok {
		return models.DayVolatilitySpike, r
	}
	if ok, r := e.sweep(candles, vu); ok {
		return models.DayLiquiditySweepTrap, r
	}
	if e.openingReady && absFloat(slope) < e.cfg.FlatSlopePct &&
		midlineCrossings(ind.Osc, lb, e.cfg.OscMidline) >= e.cfg.ChoppyCrossings &&
		vu < e.cfg.ChoppyContraction*e.openingVol {
		return models.DayRangeChoppy, fmt.Sprintf("flat slope, %d midline crossings, volatility %.2fx opening",
			midlineCrossings(ind.Osc, lb, e.cfg.OscMidline), vu/e.openingVol)
	}
	if e.openingReady && vu > e.cfg.RotationalExpansion*e.openingVol &&
		maCrossings(candles, ind.FastMA, lb) >= e.cfg.RotationalCrossings &&
		failedBreakout(candles, lb) {
		return models.DayRotationalExpansion, "expanding volatility with rotational MA crossings and a failed breakout"
	}
	if e.openingReady && e.openingHigh-e.openingLow > e.cfg.FlipOpeningMult*vu &&
		recentRange(candles, e.cfg.OpeningBars) > e.cfg.FlipRecentMult*vu &&
		e.reversedFromOpen(candles) {
		return models.DayFastRegimeFlip, "direction reversed from a wide opening window"
	}
	if e.openingReady && vu >= e.cfg.CleanExpansion*e.openingVol &&
		oscDirectional(ind.Osc, lb, e.cfg.OscBandLow, e.cfg.OscBandHigh) &&
		insideCount(candles, lb) <= e.cfg.CleanMaxInside &&
		maTouches(candles, ind.FastMA, e.cfg.CleanTouchBars) >= e.cfg.CleanMATouches {
		return models.DayCleanTrend, "expanding directional trend with MA support"
	}
	if absFloat(slope) >= e.cfg.FlatSlopePct && insideCount(candles, lb) <= e.cfg.EarlyMinInside {
		return models.DayNormalTrend, "directional slope without chop"
	}
	if e.openingReady && e.openingHigh-e.openingLow > e.cfg.EarlyOpeningMult*vu &&
		absFloat(slope) < e.cfg.FlatSlopePct &&
		insideCount(candles, lb) >= e.cfg.EarlyMinInside {
		return models.DayEarlyImpulseSideways, "opening impulse stalled into sideways drift"
	}
	return models.DayNormalTrend, "default classification"
}

// apply enforces the only-worse degradation rule and the two-confirmation
// delay for rotational-expansion and fast-regime-flip.
func (e *DayTypeEngine) apply(day models.DayType, reason string, now time.Time) (models.DayType, bool, string) {
	if day.Severity() <= e.current.Severity() {
		e.pending = models.DayUnknown
		return e.Effective(), false, ""
	}
	if needsConfirmation(day) {
		if e.pending != day {
			e.pending = day
			e.pendingSince = now
			return e.Effective(), false, ""
		}
		if now.Sub(e.pendingSince) < e.cfg.ConfirmAfter.Std() {
			return e.Effective(), false, ""
		}
	}
	e.pending = models.DayUnknown
	e.current = day
	e.locked = day.Locks()
	return e.current, true, reason
}

func needsConfirmation(d models.DayType) bool {
	return d == models.DayRotationalExpansion || d == models.DayFastRegimeFlip
}

func (e *DayTypeEngine) spike(candles []models.Candle, vu float64) (bool, string) {
	if len(candles) < 2 {
		return false, ""
	}
	// Look for a spike bar in the recent window with a deep reversal after it.
	start := len(candles) - 4
	if start < 0 {
		start = 0
	}
	for i := start; i < len(candles)-1; i++ {
		c := candles[i]
		if c.Range() <= e.cfg.SpikeRangeMult*vu {
			continue
		}
		for j := i + 1; j < len(candles); j++ {
			retrace := candles[j].Close - c.Close
			if c.Bullish() {
				retrace = c.Close - candles[j].Close
			}
			if retrace >= e.cfg.SpikeReversalPct*c.Range() {
				return true, fmt.Sprintf("spike bar %.1fx volatility unit reversed %.0f%%",
					c.Range()/vu, retrace/c.Range()*100)
			}
		}
	}
	return false, ""
}

func (e *DayTypeEngine) sweep(candles []models.Candle, vu float64) (bool, string) {
	start := len(candles) - 5
	if start < 1 {
		start = 1
	}
	for i := start; i < len(candles); i++ {
		prev, cur := candles[i-1], candles[i]
		if prev.Range() <= e.cfg.SweepExpansionMult*vu {
			continue
		}
		if prev.Bullish() == cur.Bullish() {
			continue
		}
		if absFloat(cur.Body()) > e.cfg.SweepReversalMult*vu {
			return true, fmt.Sprintf("expansion bar %.1fx volatility unit swept and reversed", prev.Range()/vu)
		}
	}
	return false, ""
}

func (e *DayTypeEngine) reversedFromOpen(candles []models.Candle) bool {
	last := candles[len(candles)-1]
	mid := (e.openingHigh + e.openingLow) / 2
	if e.openingUp {
		return last.Close < mid
	}
	return last.Close > mid
}

// midlineCrossings counts oscillator crossings of mid over the last lookback
// values.
func midlineCrossings(osc []float64, lookback int, mid float64) int {
	n := len(osc)
	if n < 2 {
		return 0
	}
	start := n - lookback
	if start < 1 {
		start = 1
	}
	crossings := 0
	for i := start; i < n; i++ {
		if (osc[i-1] < mid && osc[i] >= mid) || (osc[i-1] > mid && osc[i] <= mid) {
			crossings++
		}
	}
	return crossings
}

// maCrossings counts closes crossing the fast MA over the last lookback bars.
func maCrossings(candles []models.Candle, ma []float64, lookback int) int {
	n := len(candles)
	if n < 2 || len(ma) < n {
		return 0
	}
	start := n - lookback
	if start < 1 {
		start = 1
	}
	crossings := 0
	for i := start; i < n; i++ {
		prevAbove := candles[i-1].Close > ma[i-1]
		curAbove := candles[i].Close > ma[i]
		if prevAbove != curAbove {
			crossings++
		}
	}
	return crossings
}

// failedBreakout reports whether a bar in the window pushed beyond the prior
// window extreme and closed back inside it.
func failedBreakout(candles []models.Candle, lookback int) bool {
	n := len(candles)
	start := n - lookback
	if start < 1 {
		start = 1
	}
	for i := start; i < n; i++ {
		hi, lo := candles[0].High, candles[0].Low
		for _, c := range candles[:i] {
			if c.High > hi {
				hi = c.High
			}
			if c.Low < lo {
				lo = c.Low
			}
		}
		c := candles[i]
		if (c.High > hi && c.Close < hi) || (c.Low < lo && c.Close > lo) {
			return true
		}
	}
	return false
}

// oscDirectional reports whether the oscillator stayed outside the neutral
// band on one side for the whole window.
func oscDirectional(osc []float64, lookback int, low, high float64) bool {
	n := len(osc)
	if n < lookback {
		return false
	}
	window := osc[n-lookback:]
	above, below := true, true
	for _, v := range window {
		if v <= high {
			above = false
		}
		if v >= low {
			below = false
		}
	}
	return above || below
}

// insideCount counts bars in the window contained in (or containing) their
// predecessor.
func insideCount(candles []models.Candle, lookback int) int {
	n := len(candles)
	start := n - lookback
	if start < 1 {
		start = 1
	}
	count := 0
	for i := start; i < n; i++ {
		if candles[i].Overlaps(candles[i-1]) {
			count++
		}
	}
	return count
}

// maTouches counts bars whose range straddles the fast MA.
func maTouches(candles []models.Candle, ma []float64, lookback int) int {
	n := len(candles)
	if len(ma) < n {
		return 0
	}
	start := n - lookback
	if start < 0 {
		start = 0
	}
	touches := 0
	for i := start; i < n; i++ {
		if candles[i].Low <= ma[i] && ma[i] <= candles[i].High {
			touches++
		}
	}
	return touches
}

// recentRange is the high-low extent of the last lookback bars.
func recentRange(candles []models.Candle, lookback int) float64 {
	n := len(candles)
	start := n - lookback
	if start < 0 {
		start = 0
	}
	hi, lo := candles[start].High, candles[start].Low
	for _, c := range candles[start:] {
		if c.High > hi {
			hi = c.High
		}
		if c.Low < lo {
			lo = c.Low
		}
	}
	return hi - lo
}

func absFloat(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
