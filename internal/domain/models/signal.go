package models

import (
	"math"
	"time"
)

// Direction is the side of a candidate or trade.
type Direction string

const (
	Long  Direction = "LONG"
	Short Direction = "SHORT"
)

// Valid reports whether the direction is one of the two known sides.
func (d Direction) Valid() bool { return d == Long || d == Short }

// TrendPhase is the displacement phase relative to the impulse origin,
// recomputed per evaluation and never persisted.
type TrendPhase string

const (
	PhaseEarly     TrendPhase = "EARLY"
	PhaseMid       TrendPhase = "MID"
	PhaseLate      TrendPhase = "LATE"
	PhaseHardBlock TrendPhase = "HARD_BLOCK"
)

// ImpulseState anchors expansion measurement to the bar where a directional
// burst began. It is owned by the impulse engine; all other components read
// it by value.
type ImpulseState struct {
	Origin    float64   `json:"origin"`
	VolUnit   float64   `json:"vol_unit"`
	Direction Direction `json:"direction"`
	Active    bool      `json:"active"`
	Start     time.Time `json:"start"`
}

// Expansion is the displacement from the impulse origin normalized by the
// volatility unit captured at impulse time. Zero when no impulse is active.
func (s ImpulseState) Expansion(price float64) float64 {
	if !s.Active || s.VolUnit <= 0 {
		return 0
	}
	return math.Abs(price-s.Origin) / s.VolUnit
}

// SignalCandidate is a proposed entry pushed by an external pattern
// detector. Immutable once produced; consumed exactly once.
type SignalCandidate struct {
	Instrument string    `json:"instrument"`
	Strategy   string    `json:"strategy"`
	Direction  Direction `json:"direction"`
	Entry      float64   `json:"entry"`
	Stop       float64   `json:"stop"`
	Target     float64   `json:"target"`
	Oscillator float64   `json:"oscillator"`
	Ts         time.Time `json:"ts"`
}

// RiskUnit is the entry-to-stop distance (1R).
func (c SignalCandidate) RiskUnit() float64 {
	return math.Abs(c.Entry - c.Stop)
}

// Malformed reports non-finite prices or a degenerate risk unit. Malformed
// candidates are denied deterministically, never silently admitted.
func (c SignalCandidate) Malformed() bool {
	for _, v := range []float64{c.Entry, c.Stop, c.Target, c.Oscillator} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return true
		}
	}
	return c.RiskUnit() <= 0 || !c.Direction.Valid()
}

// GateDecision is the admit/deny outcome for one candidate. Evaluated lists
// the gate names in the order they ran; FailedGate names the first failing
// gate when denied.
type GateDecision struct {
	ID         string          `json:"id"`
	Candidate  SignalCandidate `json:"candidate"`
	Admitted   bool            `json:"admitted"`
	Evaluated  []string        `json:"evaluated"`
	FailedGate string          `json:"failed_gate,omitempty"`
	Reason     string          `json:"reason,omitempty"`
	Phase      TrendPhase      `json:"phase,omitempty"`
	Expansion  float64         `json:"expansion"`
	DayType    string          `json:"day_type"`
	Annotation string          `json:"annotation,omitempty"`
	Ts         time.Time       `json:"ts"`
}

// TradeResult is the terminal state of a previously admitted trade.
type TradeResult string

const (
	ResultTargetHit TradeResult = "target-hit"
	ResultStopHit   TradeResult = "stop-hit"
)

// TradeOutcome is pushed back by the external trade lifecycle when an
// admitted trade closes.
type TradeOutcome struct {
	Instrument   string      `json:"instrument"`
	Direction    Direction   `json:"direction"`
	Result       TradeResult `json:"result"`
	Ts           time.Time   `json:"ts"`
	RiskMultiple float64     `json:"risk_multiple"`
}
