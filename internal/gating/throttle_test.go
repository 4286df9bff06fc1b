package gating

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"TradeGate/internal/domain/models"
)

func loss(ts time.Time) models.TradeOutcome {
	return models.TradeOutcome{Instrument: "NIFTY", Direction: models.Long, Result: models.ResultStopHit, Ts: ts}
}

func win(ts time.Time) models.TradeOutcome {
	return models.TradeOutcome{Instrument: "NIFTY", Direction: models.Long, Result: models.ResultTargetHit, Ts: ts}
}

func TestLossThrottle_TwoLossesPause(t *testing.T) {
	th := NewLossThrottle(DefaultConfig().Throttle)
	t0 := at(10, 0)

	th.RecordOutcome(loss(t0))
	paused, _ := th.Paused(t0.Add(time.Minute))
	assert.False(t, paused, "one loss does not pause")

	th.RecordOutcome(loss(t0.Add(20 * time.Minute)))
	paused, until := th.Paused(t0.Add(21 * time.Minute))
	require.True(t, paused)
	assert.Equal(t, t0.Add(80*time.Minute), until)

	// The pause lifts exactly when the window elapses.
	paused, _ = th.Paused(t0.Add(80 * time.Minute))
	assert.False(t, paused)
}

func TestLossThrottle_WinResetsCounter(t *testing.T) {
	th := NewLossThrottle(DefaultConfig().Throttle)
	t0 := at(10, 0)

	th.RecordOutcome(loss(t0))
	th.RecordOutcome(win(t0.Add(10 * time.Minute)))
	assert.Equal(t, 0, th.Losses())

	th.RecordOutcome(loss(t0.Add(20 * time.Minute)))
	paused, _ := th.Paused(t0.Add(21 * time.Minute))
	assert.False(t, paused, "losses separated by a win do not pause")

	th.RecordOutcome(loss(t0.Add(30 * time.Minute)))
	paused, _ = th.Paused(t0.Add(31 * time.Minute))
	assert.True(t, paused)
}

func TestLossThrottle_WinDuringPauseDoesNotLiftIt(t *testing.T) {
	th := NewLossThrottle(DefaultConfig().Throttle)
	t0 := at(10, 0)

	th.RecordOutcome(loss(t0))
	th.RecordOutcome(loss(t0.Add(5 * time.Minute)))
	paused, _ := th.Paused(t0.Add(10 * time.Minute))
	require.True(t, paused)

	// A win mid-pause resets the counter but the pause runs its full window.
	th.RecordOutcome(win(t0.Add(15 * time.Minute)))
	assert.Equal(t, 0, th.Losses())
	paused, _ = th.Paused(t0.Add(30 * time.Minute))
	assert.True(t, paused)
	paused, _ = th.Paused(t0.Add(65 * time.Minute))
	assert.False(t, paused)
}

func TestLossThrottle_Reset(t *testing.T) {
	th := NewLossThrottle(DefaultConfig().Throttle)
	t0 := at(10, 0)

	th.RecordOutcome(loss(t0))
	th.RecordOutcome(loss(t0.Add(5 * time.Minute)))
	th.Reset()

	paused, _ := th.Paused(t0.Add(10 * time.Minute))
	assert.False(t, paused)
	assert.Equal(t, 0, th.Losses())
}
