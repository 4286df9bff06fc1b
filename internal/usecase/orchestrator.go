package usecase

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"TradeGate/internal/domain/models"
	"TradeGate/internal/gating"
	"TradeGate/pkg/logger"
)

// Step names for the non-gate evaluation stages. Together with the gate
// names from the gating package they form the fixed evaluation order:
// system stop, loss pause, correlation brake, regime, trend phase, the
// three execution gates, then mode permission.
const (
	StepSystemStop = "system-stop"
	StepLossPause  = "consecutive-loss-pause"
	StepBrake      = "correlation-brake"
	StepRegime     = "regime"
	StepTrendPhase = "trend-phase"
	StepPermission = "mode-permission"
)

// instrumentState is the per-instrument slice of engine state. Regime and
// impulse are per instrument; everything else is session wide.
type instrumentState struct {
	day     *gating.DayTypeEngine
	impulse *gating.ImpulseEngine

	candles    []models.Candle
	context    []models.Candle
	ind        models.Indicators
	lastCandle time.Time
	expiryDay  bool
}

// Orchestrator composes the gating engines into the single evaluation chain.
// It is not safe for concurrent use; the evaluation loop is its only caller
// and serializes all access.
type Orchestrator struct {
	cfg gating.Config
	log *logger.Logger

	instruments map[string]*instrumentState

	phase    *gating.PhaseEngine
	gates    *gating.GateChain
	perm     *gating.PermissionChecker
	brake    *gating.CorrelationBrake
	throttle *gating.LossThrottle
	stop     *gating.StopManager

	admitted          int
	conditionalTrades int
}

// NewOrchestrator builds the evaluation chain from one gating config.
func NewOrchestrator(cfg gating.Config, log *logger.Logger) *Orchestrator {
	return &Orchestrator{
		cfg:         cfg,
		log:         log,
		instruments: make(map[string]*instrumentState),
		phase:       gating.NewPhaseEngine(cfg.Phase),
		gates:       gating.NewGateChain(cfg.Gates),
		perm:        gating.NewPermissionChecker(cfg.Permission),
		brake:       gating.NewCorrelationBrake(cfg.Brake),
		throttle:    gating.NewLossThrottle(cfg.Throttle),
		stop:        gating.NewStopManager(cfg.Stop),
	}
}

func (o *Orchestrator) state(instrument string) *instrumentState {
	st, ok := o.instruments[instrument]
	if !ok {
		st = &instrumentState{
			day:     gating.NewDayTypeEngine(o.cfg.DayType),
			impulse: gating.NewImpulseEngine(o.cfg.Impulse),
		}
		o.instruments[instrument] = st
	}
	return st
}

// UpdateMarket feeds one instrument's latest closed-candle history into the
// regime and impulse engines. trend carries the trend-context bars (may be
// nil on a fetch gap; the entry series then stands in for session extremes).
// It returns the regime transition (changed is false when none applied) and
// whether a locking regime tripped the stop.
func (o *Orchestrator) UpdateMarket(instrument string, candles, trend []models.Candle, ind models.Indicators, now time.Time, expiryDay bool) (day models.DayType, changed bool, reason string, stopTripped bool) {
	st := o.state(instrument)
	st.candles = candles
	if trend != nil {
		st.context = trend
	}
	st.ind = ind
	st.expiryDay = expiryDay
	if n := len(candles); n > 0 {
		st.lastCandle = candles[n-1].Ts
	}

	day, changed, reason = st.day.Update(candles, ind, now, expiryDay)
	if changed {
		stopTripped = o.stop.CheckDayType(day)
	}
	st.impulse.Update(candles, ind)
	return day, changed, reason, stopTripped
}

// Evaluate runs one candidate through the full chain. mark is the live tick
// price when the stream has one; zero anchors phase and exhaustion to the
// candidate's entry. The first failing step short-circuits; Evaluated records
// every step that ran. The returned flag reports whether this denial tripped
// the consecutive-block stop.
func (o *Orchestrator) Evaluate(cand models.SignalCandidate, mark float64, now time.Time) (models.GateDecision, bool) {
	d := models.GateDecision{
		ID:        uuid.NewString(),
		Candidate: cand,
		Ts:        now,
	}

	st, tracked := o.instruments[cand.Instrument]
	day := models.DayNormalTrend
	var imp models.ImpulseState
	if tracked {
		day = st.day.Effective()
		imp = st.impulse.State()
	}
	d.DayType = day.String()

	deny := func(step, reason string) (models.GateDecision, bool) {
		d.Evaluated = append(d.Evaluated, step)
		d.FailedGate = step
		d.Reason = reason
		return d, o.recordDecision(d)
	}

	// 1. Session kill switch.
	if stopped, reason := o.stop.Stopped(); stopped {
		return deny(StepSystemStop, reason)
	}
	d.Evaluated = append(d.Evaluated, StepSystemStop)

	// 2. Consecutive-loss pause.
	if paused, until := o.throttle.Paused(now); paused {
		return deny(StepLossPause, fmt.Sprintf("paused after consecutive losses until %s", until.Format("15:04")))
	}
	d.Evaluated = append(d.Evaluated, StepLossPause)

	// 3. Correlation brake.
	if blocked, reason := o.brake.Blocked(cand.Instrument, now); blocked {
		return deny(StepBrake, reason)
	}
	d.Evaluated = append(d.Evaluated, StepBrake)

	// 4. Regime and session-time constraints.
	if !tracked {
		return deny(StepRegime, fmt.Sprintf("instrument %q not tracked", cand.Instrument))
	}
	if day.Locks() {
		return deny(StepRegime, fmt.Sprintf("%s regime blocks all entries", day))
	}
	if o.cfg.TradingCutoff.AtOrPast(now) {
		return deny(StepRegime, fmt.Sprintf("past session trading cutoff %s", o.cfg.TradingCutoff))
	}
	if day.Conditional() {
		if o.conditionalTrades >= o.cfg.Permission.ConditionalCap {
			return deny(StepRegime, fmt.Sprintf("%s regime trade cap %d reached", day, o.cfg.Permission.ConditionalCap))
		}
		if reason := o.perm.OscillatorBound(cand.Direction, cand.Oscillator); reason != "" {
			return deny(StepRegime, reason)
		}
	}
	d.Evaluated = append(d.Evaluated, StepRegime)

	// 5. Trend phase, anchored to the live mark when the stream has one.
	price := cand.Entry
	if mark > 0 {
		price = mark
	}
	ph := o.phase.Classify(imp, price, st.ind, st.candles)
	d.Phase = ph.Phase
	d.Expansion = ph.Expansion
	if !ph.Allowed {
		return deny(StepTrendPhase, ph.Reason)
	}
	d.Evaluated = append(d.Evaluated, StepTrendPhase)

	// 6-8. Execution gates.
	evaluated, failed, reason := o.gates.Evaluate(gating.GateInput{
		Candidate: cand,
		Impulse:   imp,
		Day:       day,
		Ind:       st.ind,
		Candles:   st.candles,
		Context:   st.context,
		Mark:      mark,
		Now:       now,
	})
	d.Evaluated = append(d.Evaluated, evaluated...)
	if failed != "" {
		d.FailedGate = failed
		d.Reason = reason
		return d, o.recordDecision(d)
	}

	// 9. Mode permission.
	perm := o.perm.Check(cand.Strategy, day, now, st.expiryDay)
	if !perm.Allowed {
		return deny(StepPermission, perm.Reason)
	}
	d.Evaluated = append(d.Evaluated, StepPermission)

	d.Admitted = true
	o.admitted++
	if day.Conditional() {
		o.conditionalTrades++
	}
	return d, o.recordDecision(d)
}

// recordDecision feeds the decision into the stop manager and reports
// whether it tripped the kill switch.
func (o *Orchestrator) recordDecision(d models.GateDecision) bool {
	tripped := o.stop.RecordDecision(d)
	if tripped {
		_, reason := o.stop.Stopped()
		o.log.Warn("system stop tripped",
			logger.String("reason", reason),
			logger.String("decision_id", d.ID))
	}
	return tripped
}

// RecordOutcome fans a closed trade out to the throttle, the correlation
// brake, and the stop manager. It reports whether the stop tripped.
func (o *Orchestrator) RecordOutcome(out models.TradeOutcome) bool {
	o.throttle.RecordOutcome(out)
	if out.Result == models.ResultStopHit {
		day := models.DayNormalTrend
		if st, ok := o.instruments[out.Instrument]; ok {
			day = st.day.Effective()
		}
		o.brake.RecordStop(out.Instrument, out.Direction, day, out.Ts)
	}
	tripped := o.stop.RecordOutcome(out)
	if tripped {
		_, reason := o.stop.Stopped()
		o.log.Warn("system stop tripped", logger.String("reason", reason))
	}
	return tripped
}

// ForceStop trips the kill switch on operator request.
func (o *Orchestrator) ForceStop(reason string) { o.stop.ForceStop(reason) }

// Resume clears a manual stop only; automatic stops hold until reset.
func (o *Orchestrator) Resume() bool { return o.stop.Resume() }

// Stopped reports the kill-switch state and reason.
func (o *Orchestrator) Stopped() (bool, string) { return o.stop.Stopped() }

// ResetSession re-arms every engine for a new trading day.
func (o *Orchestrator) ResetSession() {
	for _, st := range o.instruments {
		st.day.Reset()
		st.impulse.Reset()
		st.candles = nil
		st.context = nil
		st.ind = models.Indicators{}
		st.lastCandle = time.Time{}
	}
	o.brake.Reset()
	o.throttle.Reset()
	o.stop.Reset()
	o.admitted = 0
	o.conditionalTrades = 0
}

// Admitted returns the session admit count.
func (o *Orchestrator) Admitted() int { return o.admitted }

// Losses returns the current consecutive stop-hit count.
func (o *Orchestrator) Losses() int { return o.throttle.Losses() }

// PauseUntil returns the loss-pause expiry, zero when never set.
func (o *Orchestrator) PauseUntil() time.Time { return o.throttle.PauseUntil() }

// InstrumentSnapshots builds the per-instrument snapshot map at now.
func (o *Orchestrator) InstrumentSnapshots(now time.Time) map[string]models.InstrumentSnapshot {
	blocks := o.brake.Blocks(now)
	out := make(map[string]models.InstrumentSnapshot, len(o.instruments))
	for name, st := range o.instruments {
		out[name] = models.InstrumentSnapshot{
			DayType:     st.day.Effective().String(),
			Severity:    st.day.Current().Severity(),
			Locked:      st.day.Locked(),
			Impulse:     st.impulse.State(),
			LastCandle:  st.lastCandle,
			BlockedTill: blocks[name],
		}
	}
	return out
}
