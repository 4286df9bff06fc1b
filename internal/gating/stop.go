package gating

import (
	"fmt"

	"TradeGate/internal/domain/models"
)

// StopManager is the session-wide kill switch. The stopped flag is one-way
// within a session: once set it holds until the next session reset or an
// explicit manual override, mirroring the DayType lock semantics.
type StopManager struct {
	cfg StopConfig

	stopped bool
	reason  string
	manual  bool

	consecutiveBlocks int
	lateLosses        int
}

func NewStopManager(cfg StopConfig) *StopManager {
	return &StopManager{cfg: cfg}
}

// Reset re-arms the manager (new session).
func (m *StopManager) Reset() {
	m.stopped = false
	m.reason = ""
	m.manual = false
	m.consecutiveBlocks = 0
	m.lateLosses = 0
}

// Stopped reports the kill-switch state and its reason.
func (m *StopManager) Stopped() (bool, string) { return m.stopped, m.reason }

// Manual reports whether the active stop was operator-initiated.
func (m *StopManager) Manual() bool { return m.manual }

// ForceStop trips the switch on operator request.
func (m *StopManager) ForceStop(reason string) {
	if m.stopped {
		return
	}
	m.stopped = true
	m.manual = true
	m.reason = fmt.Sprintf("manual stop: %s", reason)
}

// Resume clears a manual stop only. Automatic stops hold until session reset.
func (m *StopManager) Resume() bool {
	if !m.stopped || !m.manual {
		return false
	}
	m.stopped = false
	m.manual = false
	m.reason = ""
	return true
}

// RecordDecision tracks consecutive denials; the returned flag reports
// whether this call tripped the switch.
func (m *StopManager) RecordDecision(d models.GateDecision) bool {
	if m.stopped {
		return false
	}
	if d.Admitted {
		m.consecutiveBlocks = 0
		return false
	}
	m.consecutiveBlocks++
	if m.consecutiveBlocks >= m.cfg.MaxConsecutiveBlocks {
		m.stopped = true
		m.reason = fmt.Sprintf("%d consecutive denied candidates", m.consecutiveBlocks)
		return true
	}
	return false
}

// RecordOutcome tracks late-session stop-hits.
func (m *StopManager) RecordOutcome(out models.TradeOutcome) bool {
	if m.stopped || out.Result != models.ResultStopHit {
		return false
	}
	if !m.cfg.LateLossCutoff.AtOrPast(out.Ts) {
		return false
	}
	m.lateLosses++
	if m.lateLosses >= m.cfg.MaxLateLosses {
		m.stopped = true
		m.reason = fmt.Sprintf("%d stop-hits after %s", m.lateLosses, m.cfg.LateLossCutoff)
		return true
	}
	return false
}

// CheckDayType stops the session when the regime reaches a locking type.
func (m *StopManager) CheckDayType(day models.DayType) bool {
	if m.stopped || !day.Locks() {
		return false
	}
	m.stopped = true
	m.reason = fmt.Sprintf("%s day type", day)
	return true
}
