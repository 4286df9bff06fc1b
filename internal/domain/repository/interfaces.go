package repository

import (
	"context"

	"TradeGate/internal/domain/models"
)

// CandleSource supplies time-ordered OHLC bars per instrument at the entry
// and trend-context granularities. Implementations may block; the engine
// calls it once per loop iteration.
type CandleSource interface {
	History(ctx context.Context, instrument string, iv models.Interval) ([]models.Candle, error)
	LastPrice(instrument string) (float64, bool)
}

// EventPublisher delivers structured engine events to external consumers.
// The engine never formats or delivers user-facing messages itself.
type EventPublisher interface {
	PublishDecision(ctx context.Context, ev models.DecisionEvent) error
	PublishRegime(ctx context.Context, ev models.RegimeEvent) error
	PublishStop(ctx context.Context, ev models.StopEvent) error
	PublishSession(ctx context.Context, ev models.SessionEvent) error
	Close() error
}

// SnapshotStore persists the latest engine snapshot for out-of-process
// inspection surfaces. Best-effort; failures never block evaluation.
type SnapshotStore interface {
	Save(ctx context.Context, snap models.EngineSnapshot) error
	Load(ctx context.Context) (models.EngineSnapshot, error)
}

// Metrics records engine observability counters.
type Metrics interface {
	RecordDecision(result, gate, strategy string)
	RecordDayType(instrument string, severity int)
	RecordEvalLatency(seconds float64)
	RecordSystemStop(stopped bool)
	RecordFetch(instrument, interval string)
	RecordError(kind string)
}

// Advisor annotates admitted decisions with an external advisory note.
// Advisory output never generates or vetoes signals; errors are fail-open.
type Advisor interface {
	Annotate(ctx context.Context, ev models.DecisionEvent) (string, error)
}
