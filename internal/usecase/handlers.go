package usecase

import (
	"context"
	"encoding/json"
	"fmt"

	"TradeGate/internal/domain/models"
)

// SignalHandler consumes pattern-detector candidates from Kafka and feeds
// them to the evaluation loop.
type SignalHandler struct {
	topic  string
	engine *Engine
}

func NewSignalHandler(topic string, engine *Engine) *SignalHandler {
	return &SignalHandler{topic: topic, engine: engine}
}

func (h *SignalHandler) Topic() string { return h.topic }

func (h *SignalHandler) Handle(_ context.Context, data []byte) error {
	var cand models.SignalCandidate
	if err := json.Unmarshal(data, &cand); err != nil {
		return fmt.Errorf("decode candidate: %w", err)
	}
	if cand.Instrument == "" || cand.Strategy == "" {
		return fmt.Errorf("candidate missing instrument or strategy")
	}
	return h.engine.Submit(cand)
}

// OutcomeHandler consumes closed-trade outcomes from the trade lifecycle.
type OutcomeHandler struct {
	topic  string
	engine *Engine
}

func NewOutcomeHandler(topic string, engine *Engine) *OutcomeHandler {
	return &OutcomeHandler{topic: topic, engine: engine}
}

func (h *OutcomeHandler) Topic() string { return h.topic }

func (h *OutcomeHandler) Handle(_ context.Context, data []byte) error {
	var out models.TradeOutcome
	if err := json.Unmarshal(data, &out); err != nil {
		return fmt.Errorf("decode outcome: %w", err)
	}
	if out.Result != models.ResultTargetHit && out.Result != models.ResultStopHit {
		return fmt.Errorf("unknown trade result %q", out.Result)
	}
	return h.engine.SubmitOutcome(out)
}
