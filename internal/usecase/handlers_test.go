package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"TradeGate/internal/domain/models"
	"TradeGate/internal/domain/repository"
	"TradeGate/internal/gating"
	"TradeGate/internal/indicators"
	"TradeGate/pkg/logger"
	"TradeGate/pkg/util"
)

type stubMetrics struct{}

func (stubMetrics) RecordDecision(result, gate, strategy string)  {}
func (stubMetrics) RecordDayType(instrument string, severity int) {}
func (stubMetrics) RecordEvalLatency(seconds float64)             {}
func (stubMetrics) RecordSystemStop(stopped bool)                 {}
func (stubMetrics) RecordFetch(instrument, interval string)       {}
func (stubMetrics) RecordError(kind string)                       {}

// stubSource serves canned bars per interval and a fixed last tick, recording
// every history call.
type stubSource struct {
	bars  map[models.Interval][]models.Candle
	price float64
	calls []string
}

func (s *stubSource) History(_ context.Context, instrument string, iv models.Interval) ([]models.Candle, error) {
	s.calls = append(s.calls, instrument+"/"+string(iv))
	return s.bars[iv], nil
}

func (s *stubSource) LastPrice(string) (float64, bool) {
	return s.price, s.price > 0
}

func testEngine(t *testing.T) *Engine { return testEngineWith(t, nil) }

func testEngineWith(t *testing.T, source repository.CandleSource) *Engine {
	t.Helper()
	orch := NewOrchestrator(gating.DefaultConfig(), logger.Nop())
	cfg := SessionConfig{
		Open:         util.MustClock("09:15"),
		Close:        util.MustClock("15:30"),
		PollInterval: time.Minute,
		Instruments:  []string{"NIFTY"},
	}
	return NewEngine(cfg, indicators.DefaultConfig(), orch, source, nil, nil, stubMetrics{}, nil, logger.Nop())
}

func TestSignalHandler_Decode(t *testing.T) {
	engine := testEngine(t)
	h := NewSignalHandler("tradegate.signals", engine)

	assert.Equal(t, "tradegate.signals", h.Topic())

	err := h.Handle(context.Background(), []byte("{not json"))
	assert.Error(t, err)

	err = h.Handle(context.Background(), []byte(`{"instrument":"","strategy":"momentum"}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing instrument")

	err = h.Handle(context.Background(), []byte(
		`{"instrument":"NIFTY","strategy":"momentum","direction":"LONG","entry":119,"stop":118,"target":122,"oscillator":60}`))
	assert.NoError(t, err)
}

func TestOutcomeHandler_Decode(t *testing.T) {
	engine := testEngine(t)
	h := NewOutcomeHandler("tradegate.outcomes", engine)

	assert.Equal(t, "tradegate.outcomes", h.Topic())

	err := h.Handle(context.Background(), []byte(`{"instrument":"NIFTY","result":"vanished"}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown trade result")

	err = h.Handle(context.Background(), []byte(
		`{"instrument":"NIFTY","direction":"LONG","result":"stop-hit"}`))
	assert.NoError(t, err)
}

func TestEngine_SubmitQueueFull(t *testing.T) {
	engine := testEngine(t)
	h := NewSignalHandler("tradegate.signals", engine)
	payload := []byte(
		`{"instrument":"NIFTY","strategy":"momentum","direction":"LONG","entry":119,"stop":118,"target":122}`)

	// The loop is not running, so the queue fills to its capacity and then
	// rejects instead of blocking the consumer.
	var err error
	for i := 0; i < 128; i++ {
		if err = h.Handle(context.Background(), payload); err != nil {
			break
		}
	}
	require.Error(t, err)
	assert.Contains(t, err.Error(), "queue full")
}

func TestEngine_PollFetchesBothGranularities(t *testing.T) {
	candles, _ := calmMarket()
	src := &stubSource{bars: map[models.Interval][]models.Candle{
		models.IntervalEntry:   candles,
		models.IntervalContext: candles[:10],
	}}
	engine := testEngineWith(t, src)
	engine.openSession(at(9, 15))

	engine.poll(context.Background(), at(10, 0))

	assert.Equal(t, []string{"NIFTY/5m", "NIFTY/30m"}, src.calls)
}

func TestEngine_ClosedSessionDeniesOutright(t *testing.T) {
	engine := testEngine(t)

	engine.evaluate(context.Background(), candidate(60), at(16, 0))

	recent := engine.RecentDecisions(1)
	require.Len(t, recent, 1)
	assert.False(t, recent[0].Admitted)
	assert.Equal(t, StepSession, recent[0].FailedGate)
	assert.Equal(t, "session closed", recent[0].Reason)
}

func TestEngine_MarkPriceFromStream(t *testing.T) {
	candles, ind := calmMarket()
	src := &stubSource{price: 123.5}
	engine := testEngineWith(t, src)
	engine.orch.UpdateMarket("NIFTY", candles, nil, ind, at(10, 0), false)
	engine.running = true

	// The last tick is far past the impulse anchor: the phase filter blocks
	// even though the candidate's entry alone would be early.
	engine.evaluate(context.Background(), candidate(60), at(10, 30))

	recent := engine.RecentDecisions(1)
	require.Len(t, recent, 1)
	assert.False(t, recent[0].Admitted)
	assert.Equal(t, StepTrendPhase, recent[0].FailedGate)
}
