package gating

import (
	"time"

	"TradeGate/internal/domain/models"
)

// LossThrottle pauses all admissions after consecutive stop-hits. A win
// resets the counter but never shortens an active pause; the pause always
// runs its full window.
type LossThrottle struct {
	cfg        ThrottleConfig
	losses     int
	pauseUntil time.Time
}

func NewLossThrottle(cfg ThrottleConfig) *LossThrottle {
	return &LossThrottle{cfg: cfg}
}

// Reset clears the counter and any pause (new session).
func (t *LossThrottle) Reset() {
	t.losses = 0
	t.pauseUntil = time.Time{}
}

// RecordOutcome feeds a closed trade into the counter.
func (t *LossThrottle) RecordOutcome(out models.TradeOutcome) {
	switch out.Result {
	case models.ResultTargetHit:
		t.losses = 0
	case models.ResultStopHit:
		t.losses++
		if t.losses >= t.cfg.Threshold {
			t.pauseUntil = out.Ts.Add(t.cfg.PauseFor.Std())
		}
	}
}

// Paused reports whether a pause is active at now, with its expiry.
func (t *LossThrottle) Paused(now time.Time) (bool, time.Time) {
	if t.pauseUntil.IsZero() || !now.Before(t.pauseUntil) {
		return false, time.Time{}
	}
	return true, t.pauseUntil
}

// Losses returns the current consecutive-loss count for snapshots.
func (t *LossThrottle) Losses() int { return t.losses }

// PauseUntil returns the pause expiry (zero when none was ever set).
func (t *LossThrottle) PauseUntil() time.Time { return t.pauseUntil }
