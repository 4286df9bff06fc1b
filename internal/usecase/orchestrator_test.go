package usecase

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"TradeGate/internal/domain/models"
	"TradeGate/internal/gating"
	"TradeGate/pkg/logger"
)

func at(hour, minute int) time.Time {
	return time.Date(2026, 8, 20, hour, minute, 0, 0, time.UTC)
}

func repeat(v float64, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = v
	}
	return out
}

// calmMarket is 20 non-overlapping bullish bars stepping up by 1 point with
// steady volatility: classifies as normal-trend and anchors a long impulse
// at 118 on the last two bars.
func calmMarket() ([]models.Candle, models.Indicators) {
	n := 20
	candles := make([]models.Candle, n)
	fast := make([]float64, n)
	for i := range candles {
		lo := 100 + float64(i)
		candles[i] = models.Candle{
			Ts:    at(9, 15).Add(time.Duration(i) * 5 * time.Minute),
			Open:  lo + 0.5,
			High:  lo + 2,
			Low:   lo,
			Close: lo + 1.5,
		}
		fast[i] = 100 + float64(i)
	}
	return candles, models.Indicators{
		FastMA:  fast,
		SlowMA:  repeat(100, n),
		VolUnit: repeat(2, n),
		Osc:     repeat(60, n),
	}
}

// rotationalMarket reproduces the expanding-rotation shape: ten bars flipping
// across a flat MA, then a failed breakout bar, with volatility above the
// opening level.
func rotationalMarket() ([]models.Candle, models.Indicators) {
	candles := make([]models.Candle, 12)
	for i := 0; i < 10; i++ {
		cl := 99.2
		if i%2 == 1 {
			cl = 100.8
		}
		candles[i] = models.Candle{Ts: at(9, 15+5*i), Open: 100, High: 101, Low: 99, Close: cl}
	}
	candles[10] = models.Candle{Ts: at(10, 5), Open: 100, High: 103.5, Low: 99, Close: 100.2}
	candles[11] = models.Candle{Ts: at(10, 10), Open: 100.2, High: 101, Low: 99.8, Close: 100.4}

	vol := repeat(2, 12)
	for i := 6; i < 12; i++ {
		vol[i] = 2.5
	}
	return candles, models.Indicators{
		FastMA:  repeat(100, 12),
		SlowMA:  repeat(100, 12),
		VolUnit: vol,
		Osc:     repeat(50, 12),
	}
}

func candidate(osc float64) models.SignalCandidate {
	return models.SignalCandidate{
		Instrument: "NIFTY",
		Strategy:   "momentum",
		Direction:  models.Long,
		Entry:      119,
		Stop:       118,
		Target:     122,
		Oscillator: osc,
		Ts:         at(10, 30),
	}
}

func seededOrchestrator(t *testing.T) *Orchestrator {
	t.Helper()
	o := NewOrchestrator(gating.DefaultConfig(), logger.Nop())
	candles, ind := calmMarket()
	day, changed, _, tripped := o.UpdateMarket("NIFTY", candles, nil, ind, at(10, 0), false)
	require.True(t, changed)
	require.Equal(t, models.DayNormalTrend, day)
	require.False(t, tripped)
	return o
}

func TestOrchestrator_AdmitsCleanCandidate(t *testing.T) {
	o := seededOrchestrator(t)

	d, tripped := o.Evaluate(candidate(60), 0, at(10, 30))
	require.True(t, d.Admitted, "reason: %s", d.Reason)
	assert.False(t, tripped)
	assert.NotEmpty(t, d.ID)
	assert.Equal(t, "normal-trend", d.DayType)
	assert.Equal(t, models.PhaseEarly, d.Phase)
	assert.Equal(t, []string{
		StepSystemStop,
		StepLossPause,
		StepBrake,
		StepRegime,
		StepTrendPhase,
		gating.GateExhaustion,
		gating.GateTimeRegime,
		gating.GateCompression,
		StepPermission,
	}, d.Evaluated)
	assert.Equal(t, 1, o.Admitted())
}

func TestOrchestrator_MarkPriceAnchorsPhase(t *testing.T) {
	o := seededOrchestrator(t)

	// A live tick deep into the move reclassifies the phase even though the
	// candidate's entry alone would be early.
	d, _ := o.Evaluate(candidate(60), 123.5, at(10, 30))
	assert.False(t, d.Admitted)
	assert.Equal(t, StepTrendPhase, d.FailedGate)
	assert.Equal(t, models.PhaseHardBlock, d.Phase)

	d, _ = o.Evaluate(candidate(60), 121, at(10, 35))
	require.True(t, d.Admitted, "reason: %s", d.Reason)
	assert.Equal(t, models.PhaseMid, d.Phase)
}

func TestOrchestrator_UntrackedInstrumentDenied(t *testing.T) {
	o := seededOrchestrator(t)

	cand := candidate(60)
	cand.Instrument = "GHOST"
	d, _ := o.Evaluate(cand, 0, at(10, 30))
	assert.False(t, d.Admitted)
	assert.Equal(t, StepRegime, d.FailedGate)
	assert.Contains(t, d.Reason, "not tracked")
}

func TestOrchestrator_SystemStopShortCircuits(t *testing.T) {
	o := seededOrchestrator(t)
	o.ForceStop("maintenance")

	d, _ := o.Evaluate(candidate(60), 0, at(10, 30))
	assert.False(t, d.Admitted)
	assert.Equal(t, StepSystemStop, d.FailedGate)
	assert.Equal(t, []string{StepSystemStop}, d.Evaluated)

	// A manual stop can be resumed; the next candidate passes.
	require.True(t, o.Resume())
	d, _ = o.Evaluate(candidate(60), 0, at(10, 35))
	assert.True(t, d.Admitted)
}

func TestOrchestrator_LossPauseDeniesUntilExpiry(t *testing.T) {
	o := seededOrchestrator(t)
	out := models.TradeOutcome{Instrument: "NIFTY", Direction: models.Long, Result: models.ResultStopHit}

	out.Ts = at(10, 0)
	o.RecordOutcome(out)
	out.Ts = at(10, 10)
	o.RecordOutcome(out)

	d, _ := o.Evaluate(candidate(60), 0, at(10, 30))
	assert.False(t, d.Admitted)
	assert.Equal(t, StepLossPause, d.FailedGate)

	// The pause expires exactly one window after the second loss.
	d, _ = o.Evaluate(candidate(60), 0, at(11, 10))
	assert.True(t, d.Admitted, "reason: %s", d.Reason)
}

func TestOrchestrator_CorrelationBrakeBlocksPair(t *testing.T) {
	cfg := gating.DefaultConfig()
	cfg.Brake.Pairs = map[string]string{"NIFTY": "SENSEX"}
	o := NewOrchestrator(cfg, logger.Nop())
	candles, ind := calmMarket()
	o.UpdateMarket("NIFTY", candles, nil, ind, at(10, 0), false)

	// Two NIFTY stop-hits inside the window, separated by a win elsewhere so
	// the loss throttle never engages.
	o.RecordOutcome(models.TradeOutcome{Instrument: "NIFTY", Direction: models.Long, Result: models.ResultStopHit, Ts: at(10, 0)})
	o.RecordOutcome(models.TradeOutcome{Instrument: "BANKNIFTY", Direction: models.Long, Result: models.ResultTargetHit, Ts: at(10, 10)})
	o.RecordOutcome(models.TradeOutcome{Instrument: "NIFTY", Direction: models.Long, Result: models.ResultStopHit, Ts: at(10, 30)})

	cand := candidate(60)
	cand.Instrument = "SENSEX"
	d, _ := o.Evaluate(cand, 0, at(10, 45))
	assert.False(t, d.Admitted)
	assert.Equal(t, StepBrake, d.FailedGate)

	// The block is half-open: exactly at expiry the brake no longer applies.
	d, _ = o.Evaluate(cand, 0, at(11, 30))
	assert.NotEqual(t, StepBrake, d.FailedGate)
}

func TestOrchestrator_TradingCutoffDenies(t *testing.T) {
	o := seededOrchestrator(t)

	d, _ := o.Evaluate(candidate(60), 0, at(14, 30))
	assert.False(t, d.Admitted)
	assert.Equal(t, StepRegime, d.FailedGate)
	assert.Contains(t, d.Reason, "trading cutoff")
}

func TestOrchestrator_ConditionalRegimeCapAndBound(t *testing.T) {
	o := NewOrchestrator(gating.DefaultConfig(), logger.Nop())
	candles, ind := rotationalMarket()

	// Rotational expansion needs two detections past the confirmation margin.
	o.UpdateMarket("NIFTY", candles, nil, ind, at(10, 0), false)
	o.UpdateMarket("NIFTY", candles, nil, ind, at(10, 30), false)
	day, changed, _, _ := o.UpdateMarket("NIFTY", candles, nil, ind, at(11, 0), false)
	require.True(t, changed)
	require.Equal(t, models.DayRotationalExpansion, day)

	// Refresh market state with calm bars; severity never decreases, so the
	// regime stays rotational while the gates see a tradeable tape.
	calm, calmInd := calmMarket()
	day, changed, _, _ = o.UpdateMarket("NIFTY", calm, nil, calmInd, at(11, 30), false)
	assert.False(t, changed)
	require.Equal(t, models.DayRotationalExpansion, day)

	// Longs need the oscillator at or above the conditional floor.
	d, _ := o.Evaluate(candidate(50), 0, at(11, 35))
	assert.False(t, d.Admitted)
	assert.Equal(t, StepRegime, d.FailedGate)
	assert.Contains(t, d.Reason, "conditional floor")

	// A qualifying candidate takes the single conditional slot.
	d, _ = o.Evaluate(candidate(60), 0, at(11, 40))
	require.True(t, d.Admitted, "reason: %s", d.Reason)

	// The cap is one trade per day.
	d, _ = o.Evaluate(candidate(60), 0, at(11, 45))
	assert.False(t, d.Admitted)
	assert.Equal(t, StepRegime, d.FailedGate)
	assert.Contains(t, d.Reason, "trade cap")
}

func TestOrchestrator_ConsecutiveDenialsTripStop(t *testing.T) {
	o := seededOrchestrator(t)

	cand := candidate(60)
	cand.Instrument = "GHOST"
	_, tripped := o.Evaluate(cand, 0, at(10, 30))
	assert.False(t, tripped)
	_, tripped = o.Evaluate(cand, 0, at(10, 35))
	assert.False(t, tripped)
	_, tripped = o.Evaluate(cand, 0, at(10, 40))
	require.True(t, tripped)

	stopped, reason := o.Stopped()
	assert.True(t, stopped)
	assert.Contains(t, reason, "consecutive denied")

	// Automatic stops cannot be resumed; only a session reset re-arms.
	assert.False(t, o.Resume())

	o.ResetSession()
	stopped, _ = o.Stopped()
	assert.False(t, stopped)
	assert.Equal(t, 0, o.Admitted())

	candles, ind := calmMarket()
	o.UpdateMarket("NIFTY", candles, nil, ind, at(10, 0), false)
	d, _ := o.Evaluate(candidate(60), 0, at(10, 45))
	assert.True(t, d.Admitted, "reason: %s", d.Reason)
}

func TestOrchestrator_LateLossesTripStop(t *testing.T) {
	o := seededOrchestrator(t)
	out := models.TradeOutcome{Instrument: "NIFTY", Direction: models.Long, Result: models.ResultStopHit}

	out.Ts = at(11, 40)
	assert.False(t, o.RecordOutcome(out))
	out.Ts = at(12, 0)
	assert.True(t, o.RecordOutcome(out))

	stopped, reason := o.Stopped()
	assert.True(t, stopped)
	assert.Contains(t, reason, "stop-hits after")
}

func TestOrchestrator_InstrumentSnapshots(t *testing.T) {
	o := seededOrchestrator(t)

	snaps := o.InstrumentSnapshots(at(10, 30))
	require.Contains(t, snaps, "NIFTY")
	snap := snaps["NIFTY"]
	assert.Equal(t, "normal-trend", snap.DayType)
	assert.Equal(t, 2, snap.Severity)
	assert.False(t, snap.Locked)
	assert.True(t, snap.Impulse.Active)
	assert.Equal(t, 118.0, snap.Impulse.Origin)
}
