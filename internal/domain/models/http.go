package models

// SignalRequest is the control-surface form of a SignalCandidate, used to
// inject a candidate manually (testing, replay harnesses).
type SignalRequest struct {
	Instrument string  `json:"instrument" validate:"required"`
	Strategy   string  `json:"strategy" validate:"required"`
	Direction  string  `json:"direction" validate:"required,oneof=LONG SHORT"`
	Entry      float64 `json:"entry" validate:"required,gt=0"`
	Stop       float64 `json:"stop" validate:"required,gt=0"`
	Target     float64 `json:"target" validate:"required,gt=0"`
	Oscillator float64 `json:"oscillator" validate:"gte=0,lte=100" default:"50"`
}

// ForceStopRequest carries the operator reason for a manual kill switch.
type ForceStopRequest struct {
	Reason string `json:"reason" validate:"required,min=3"`
}

// OutcomeRequest reports a closed trade through the control surface.
type OutcomeRequest struct {
	Instrument   string  `json:"instrument" validate:"required"`
	Direction    string  `json:"direction" validate:"required,oneof=LONG SHORT"`
	Result       string  `json:"result" validate:"required,oneof=target-hit stop-hit"`
	RiskMultiple float64 `json:"risk_multiple"`
}
