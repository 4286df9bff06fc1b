package models

import "time"

// DecisionEvent is the structured form of a GateDecision emitted for
// external delivery (alert channels, audit consumers).
type DecisionEvent struct {
	ID         string    `json:"id"`
	Instrument string    `json:"instrument"`
	Strategy   string    `json:"strategy"`
	Direction  Direction `json:"direction"`
	Admitted   bool      `json:"admitted"`
	FailedGate string    `json:"failed_gate,omitempty"`
	Reason     string    `json:"reason,omitempty"`
	DayType    string    `json:"day_type"`
	Phase      string    `json:"phase,omitempty"`
	Expansion  float64   `json:"expansion"`
	Entry      float64   `json:"entry"`
	Stop       float64   `json:"stop"`
	Target     float64   `json:"target"`
	Annotation string    `json:"annotation,omitempty"`
	Ts         time.Time `json:"ts"`
}

// DecisionEventFrom flattens a GateDecision for the wire.
func DecisionEventFrom(d GateDecision) DecisionEvent {
	return DecisionEvent{
		ID:         d.ID,
		Instrument: d.Candidate.Instrument,
		Strategy:   d.Candidate.Strategy,
		Direction:  d.Candidate.Direction,
		Admitted:   d.Admitted,
		FailedGate: d.FailedGate,
		Reason:     d.Reason,
		DayType:    d.DayType,
		Phase:      string(d.Phase),
		Expansion:  d.Expansion,
		Entry:      d.Candidate.Entry,
		Stop:       d.Candidate.Stop,
		Target:     d.Candidate.Target,
		Annotation: d.Annotation,
		Ts:         d.Ts,
	}
}

// RegimeEvent is emitted on every applied DayType transition.
type RegimeEvent struct {
	Instrument string    `json:"instrument"`
	DayType    string    `json:"day_type"`
	Severity   int       `json:"severity"`
	Locked     bool      `json:"locked"`
	Reason     string    `json:"reason"`
	Ts         time.Time `json:"ts"`
}

// StopEvent is emitted once when the session-wide kill switch trips.
type StopEvent struct {
	Reason string    `json:"reason"`
	Manual bool      `json:"manual"`
	Ts     time.Time `json:"ts"`
}

// SessionEvent marks a session boundary (reset at open, halt at close).
type SessionEvent struct {
	Kind string    `json:"kind"` // "open" or "close"
	Date string    `json:"date"`
	Ts   time.Time `json:"ts"`
}

// InstrumentSnapshot is the per-instrument slice of the engine snapshot.
type InstrumentSnapshot struct {
	DayType     string       `json:"day_type"`
	Severity    int          `json:"severity"`
	Locked      bool         `json:"locked"`
	Impulse     ImpulseState `json:"impulse"`
	LastCandle  time.Time    `json:"last_candle"`
	BlockedTill time.Time    `json:"blocked_till,omitempty"`
}

// EngineSnapshot is a consistent copy of session state published by the
// evaluation loop after each iteration; readers never observe a partially
// updated state.
type EngineSnapshot struct {
	Running           bool                          `json:"running"`
	SessionDate       string                        `json:"session_date"`
	Stopped           bool                          `json:"stopped"`
	StopReason        string                        `json:"stop_reason,omitempty"`
	ConsecutiveLosses int                           `json:"consecutive_losses"`
	PauseUntil        time.Time                     `json:"pause_until,omitempty"`
	TradesAdmitted    int                           `json:"trades_admitted"`
	Instruments       map[string]InstrumentSnapshot `json:"instruments"`
	UpdatedAt         time.Time                     `json:"updated_at"`
}
