package usecase

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"TradeGate/internal/domain/models"
	"TradeGate/internal/domain/repository"
	"TradeGate/internal/indicators"
	"TradeGate/pkg/logger"
	"TradeGate/pkg/util"
)

// StepSession is the engine-level admission check that runs before the
// orchestrator chain: candidates outside an open session never reach it.
const StepSession = "session"

// SessionConfig carries the session schedule and the watched instruments.
type SessionConfig struct {
	Open           util.Clock
	Close          util.Clock
	Location       *time.Location
	PollInterval   time.Duration
	Instruments    []string
	ExpiryWeekdays map[string]time.Weekday
	RecentBuffer   int
}

// Engine is the evaluation loop. One goroutine owns the orchestrator and all
// per-session state; candidates, outcomes, and control operations arrive on
// channels, and a consistent snapshot is republished after every iteration.
type Engine struct {
	cfg  SessionConfig
	ind  indicators.Config
	orch *Orchestrator

	source  repository.CandleSource
	pub     repository.EventPublisher
	store   repository.SnapshotStore
	metrics repository.Metrics
	advisor repository.Advisor
	log     *logger.Logger

	candidates chan models.SignalCandidate
	outcomes   chan models.TradeOutcome
	ops        chan func()
	done       chan struct{}
	wg         sync.WaitGroup

	running     bool
	sessionDate string

	mu     sync.RWMutex
	snap   models.EngineSnapshot
	recent []models.GateDecision
}

// NewEngine wires the evaluation loop. advisor may be nil.
func NewEngine(
	cfg SessionConfig,
	indCfg indicators.Config,
	orch *Orchestrator,
	source repository.CandleSource,
	pub repository.EventPublisher,
	store repository.SnapshotStore,
	metrics repository.Metrics,
	advisor repository.Advisor,
	log *logger.Logger,
) *Engine {
	if cfg.RecentBuffer <= 0 {
		cfg.RecentBuffer = 256
	}
	if cfg.Location == nil {
		cfg.Location = time.Local
	}
	return &Engine{
		cfg:        cfg,
		ind:        indCfg,
		orch:       orch,
		source:     source,
		pub:        pub,
		store:      store,
		metrics:    metrics,
		advisor:    advisor,
		log:        log,
		candidates: make(chan models.SignalCandidate, 64),
		outcomes:   make(chan models.TradeOutcome, 64),
		ops:        make(chan func(), 16),
		done:       make(chan struct{}),
	}
}

// Start launches the evaluation loop. If started inside the session window
// the session opens immediately.
func (e *Engine) Start(ctx context.Context) {
	e.wg.Add(1)
	go e.loop(ctx)
}

// Stop halts the loop and waits for it to drain.
func (e *Engine) Stop() {
	close(e.done)
	e.wg.Wait()
}

// Submit queues a candidate for evaluation. It fails when the queue is full
// rather than blocking the producer.
func (e *Engine) Submit(cand models.SignalCandidate) error {
	select {
	case e.candidates <- cand:
		return nil
	default:
		e.metrics.RecordError("candidate_queue_full")
		return fmt.Errorf("candidate queue full")
	}
}

// SubmitOutcome queues a closed-trade outcome.
func (e *Engine) SubmitOutcome(out models.TradeOutcome) error {
	select {
	case e.outcomes <- out:
		return nil
	default:
		e.metrics.RecordError("outcome_queue_full")
		return fmt.Errorf("outcome queue full")
	}
}

// ForceStop trips the kill switch from the control surface.
func (e *Engine) ForceStop(reason string) {
	e.do(func() {
		e.orch.ForceStop(reason)
		stopped, r := e.orch.Stopped()
		if stopped {
			e.publishStop(r, true)
		}
	})
}

// Resume lifts a manual stop. The reply reports whether a stop was lifted;
// automatic stops stay in force.
func (e *Engine) Resume() bool {
	reply := make(chan bool, 1)
	e.do(func() {
		ok := e.orch.Resume()
		if ok {
			e.metrics.RecordSystemStop(false)
		}
		reply <- ok
	})
	select {
	case ok := <-reply:
		return ok
	case <-e.done:
		return false
	}
}

// OpenSession resets every engine for a new trading day. Driven by the
// scheduler at the configured open, or manually from the control surface.
func (e *Engine) OpenSession() { e.do(func() { e.openSession(time.Now().In(e.cfg.Location)) }) }

// CloseSession halts admissions at the end of the trading day.
func (e *Engine) CloseSession() { e.do(func() { e.closeSession(time.Now().In(e.cfg.Location)) }) }

// Snapshot returns the last published engine snapshot.
func (e *Engine) Snapshot() models.EngineSnapshot {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.snap
}

// RecentDecisions returns up to n of the latest decisions, newest first.
func (e *Engine) RecentDecisions(n int) []models.GateDecision {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if n <= 0 || n > len(e.recent) {
		n = len(e.recent)
	}
	out := make([]models.GateDecision, n)
	for i := 0; i < n; i++ {
		out[i] = e.recent[len(e.recent)-1-i]
	}
	return out
}

// do schedules an operation onto the loop goroutine.
func (e *Engine) do(op func()) {
	select {
	case e.ops <- op:
	case <-e.done:
	}
}

func (e *Engine) loop(ctx context.Context) {
	defer e.wg.Done()

	now := time.Now().In(e.cfg.Location)
	if e.withinSession(now) {
		e.openSession(now)
	}
	e.publishSnapshot(ctx, now)

	ticker := time.NewTicker(e.cfg.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-e.done:
			return
		case <-ticker.C:
			now := time.Now().In(e.cfg.Location)
			e.poll(ctx, now)
			e.publishSnapshot(ctx, now)
		case cand := <-e.candidates:
			now := time.Now().In(e.cfg.Location)
			e.evaluate(ctx, cand, now)
			e.publishSnapshot(ctx, now)
		case out := <-e.outcomes:
			e.record(ctx, out)
			e.publishSnapshot(ctx, time.Now().In(e.cfg.Location))
		case op := <-e.ops:
			op()
			e.publishSnapshot(ctx, time.Now().In(e.cfg.Location))
		}
	}
}

func (e *Engine) withinSession(now time.Time) bool {
	return e.cfg.Open.AtOrPast(now) && !e.cfg.Close.AtOrPast(now)
}

func (e *Engine) openSession(now time.Time) {
	e.orch.ResetSession()
	e.running = true
	e.sessionDate = now.Format("2006-01-02")
	e.metrics.RecordSystemStop(false)
	e.log.Info("session open", logger.String("date", e.sessionDate))
	e.publishSession("open", now)
}

func (e *Engine) closeSession(now time.Time) {
	if !e.running {
		return
	}
	e.running = false
	e.log.Info("session close", logger.String("date", e.sessionDate))
	e.publishSession("close", now)
}

// poll fetches fresh history per instrument and feeds the regime and impulse
// engines. A feed error skips the instrument for this cycle; stale state is
// never a denial on its own.
func (e *Engine) poll(ctx context.Context, now time.Time) {
	if !e.running {
		return
	}
	if e.cfg.Close.AtOrPast(now) {
		e.closeSession(now)
		return
	}
	start := time.Now()
	for _, inst := range e.cfg.Instruments {
		candles, err := e.source.History(ctx, inst, models.IntervalEntry)
		if err != nil {
			e.metrics.RecordError("feed")
			e.log.Warn("candle fetch failed",
				logger.String("instrument", inst),
				logger.Error(err))
			continue
		}
		e.metrics.RecordFetch(inst, string(models.IntervalEntry))

		// The trend-context series feeds the session-extreme checks. A fetch
		// gap here is not fatal; the entry series stands in.
		trend, err := e.source.History(ctx, inst, models.IntervalContext)
		if err != nil {
			e.metrics.RecordError("feed")
			e.log.Warn("trend-context fetch failed",
				logger.String("instrument", inst),
				logger.Error(err))
			trend = nil
		} else {
			e.metrics.RecordFetch(inst, string(models.IntervalContext))
		}

		ind := indicators.Compute(candles, e.ind)
		day, changed, reason, tripped := e.orch.UpdateMarket(inst, candles, trend, ind, now, e.expiryDay(inst, now))
		e.metrics.RecordDayType(inst, day.Severity())
		if changed {
			e.log.Info("regime transition",
				logger.String("instrument", inst),
				logger.String("day_type", day.String()),
				logger.String("reason", reason))
			e.publishRegime(ctx, models.RegimeEvent{
				Instrument: inst,
				DayType:    day.String(),
				Severity:   day.Severity(),
				Locked:     day.Locks(),
				Reason:     reason,
				Ts:         now,
			})
		}
		if tripped {
			_, r := e.orch.Stopped()
			e.publishStop(r, false)
		}
	}
	e.metrics.RecordEvalLatency(time.Since(start).Seconds())
}

func (e *Engine) evaluate(ctx context.Context, cand models.SignalCandidate, now time.Time) {
	start := time.Now()
	var (
		d       models.GateDecision
		tripped bool
	)
	if e.running {
		d, tripped = e.orch.Evaluate(cand, e.markPrice(cand.Instrument), now)
	} else {
		// Candidates outside an open session are denied outright; they never
		// reach the orchestrator and never count toward its stop bookkeeping.
		d = models.GateDecision{
			ID:         uuid.NewString(),
			Candidate:  cand,
			Ts:         now,
			Evaluated:  []string{StepSession},
			FailedGate: StepSession,
			Reason:     "session closed",
		}
	}

	ev := models.DecisionEventFrom(d)
	if d.Admitted && e.advisor != nil {
		// Advisory is fail-open: an error or empty note never vetoes.
		if note, err := e.advisor.Annotate(ctx, ev); err != nil {
			e.metrics.RecordError("advisory")
			e.log.Warn("advisory annotation failed", logger.Error(err))
		} else {
			d.Annotation = note
			ev.Annotation = note
		}
	}

	result := "denied"
	if d.Admitted {
		result = "admitted"
	}
	e.metrics.RecordDecision(result, d.FailedGate, cand.Strategy)
	e.metrics.RecordEvalLatency(time.Since(start).Seconds())

	e.log.Info("candidate evaluated",
		logger.String("id", d.ID),
		logger.String("instrument", cand.Instrument),
		logger.String("strategy", cand.Strategy),
		logger.Bool("admitted", d.Admitted),
		logger.String("failed_gate", d.FailedGate),
		logger.String("reason", d.Reason))

	e.publishDecision(ctx, ev)
	if tripped {
		_, r := e.orch.Stopped()
		e.publishStop(r, false)
	}

	e.mu.Lock()
	e.recent = append(e.recent, d)
	if len(e.recent) > e.cfg.RecentBuffer {
		e.recent = e.recent[len(e.recent)-e.cfg.RecentBuffer:]
	}
	e.mu.Unlock()
}

func (e *Engine) record(ctx context.Context, out models.TradeOutcome) {
	tripped := e.orch.RecordOutcome(out)
	e.log.Info("trade outcome",
		logger.String("instrument", out.Instrument),
		logger.String("result", string(out.Result)),
		logger.Float64("risk_multiple", out.RiskMultiple))
	if tripped {
		_, r := e.orch.Stopped()
		e.publishStop(r, false)
	}
}

func (e *Engine) expiryDay(instrument string, now time.Time) bool {
	wd, ok := e.cfg.ExpiryWeekdays[instrument]
	return ok && now.Weekday() == wd
}

// markPrice returns the latest tick for the instrument, or 0 when the stream
// has none; evaluation then anchors to the candidate's entry.
func (e *Engine) markPrice(instrument string) float64 {
	if e.source == nil {
		return 0
	}
	if p, ok := e.source.LastPrice(instrument); ok {
		return p
	}
	return 0
}

func (e *Engine) publishDecision(ctx context.Context, ev models.DecisionEvent) {
	if e.pub == nil {
		return
	}
	if err := e.pub.PublishDecision(ctx, ev); err != nil {
		e.metrics.RecordError("publish")
		e.log.Error("decision publish failed", logger.Error(err))
	}
}

func (e *Engine) publishStop(reason string, manual bool) {
	e.metrics.RecordSystemStop(true)
	if e.pub == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := e.pub.PublishStop(ctx, models.StopEvent{
		Reason: reason,
		Manual: manual,
		Ts:     time.Now().In(e.cfg.Location),
	}); err != nil {
		e.metrics.RecordError("publish")
		e.log.Error("stop publish failed", logger.Error(err))
	}
}

func (e *Engine) publishSession(kind string, now time.Time) {
	if e.pub == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := e.pub.PublishSession(ctx, models.SessionEvent{
		Kind: kind,
		Date: now.Format("2006-01-02"),
		Ts:   now,
	}); err != nil {
		e.metrics.RecordError("publish")
		e.log.Error("session publish failed", logger.Error(err))
	}
}

func (e *Engine) publishRegime(ctx context.Context, ev models.RegimeEvent) {
	if e.pub == nil {
		return
	}
	if err := e.pub.PublishRegime(ctx, ev); err != nil {
		e.metrics.RecordError("publish")
		e.log.Error("regime publish failed", logger.Error(err))
	}
}

// publishSnapshot rebuilds the snapshot under the mutex and persists it
// best-effort.
func (e *Engine) publishSnapshot(ctx context.Context, now time.Time) {
	stopped, reason := e.orch.Stopped()
	snap := models.EngineSnapshot{
		Running:           e.running,
		SessionDate:       e.sessionDate,
		Stopped:           stopped,
		StopReason:        reason,
		ConsecutiveLosses: e.orch.Losses(),
		PauseUntil:        e.orch.PauseUntil(),
		TradesAdmitted:    e.orch.Admitted(),
		Instruments:       e.orch.InstrumentSnapshots(now),
		UpdatedAt:         now,
	}

	e.mu.Lock()
	e.snap = snap
	e.mu.Unlock()

	if e.store == nil {
		return
	}
	if err := e.store.Save(ctx, snap); err != nil {
		e.metrics.RecordError("snapshot")
		e.log.Warn("snapshot save failed", logger.Error(err))
	}
}
