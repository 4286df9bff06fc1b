package gating

import (
	"fmt"
	"time"

	"TradeGate/internal/domain/models"
)

type stopRecord struct {
	instrument string
	direction  models.Direction
	day        models.DayType
	ts         time.Time
}

// CorrelationBrake blocks a correlated instrument after a stop-loss cluster.
// Two stop-hits on the same instrument within Window, same direction and
// DayType, block the configured pair for BlockFor from the second hit.
// Blocks carry an absolute expiry and are compared on read, so no background
// timer runs; expired entries are evicted lazily.
type CorrelationBrake struct {
	cfg    BrakeConfig
	stops  []stopRecord
	blocks map[string]time.Time
}

func NewCorrelationBrake(cfg BrakeConfig) *CorrelationBrake {
	return &CorrelationBrake{cfg: cfg, blocks: make(map[string]time.Time)}
}

// Reset clears all records and blocks (new session).
func (b *CorrelationBrake) Reset() {
	b.stops = nil
	b.blocks = make(map[string]time.Time)
}

// RecordStop registers a stop-hit and arms a block on the correlated
// instrument when it completes a qualifying cluster.
func (b *CorrelationBrake) RecordStop(instrument string, dir models.Direction, day models.DayType, ts time.Time) {
	// Evict records that have aged out of the clustering window.
	kept := b.stops[:0]
	for _, r := range b.stops {
		if ts.Sub(r.ts) < b.cfg.Window.Std() {
			kept = append(kept, r)
		}
	}
	b.stops = kept

	for _, r := range b.stops {
		if r.instrument == instrument && r.direction == dir && r.day == day {
			if pair, ok := b.cfg.Pairs[instrument]; ok {
				b.blocks[pair] = ts.Add(b.cfg.BlockFor.Std())
			}
			break
		}
	}
	b.stops = append(b.stops, stopRecord{instrument: instrument, direction: dir, day: day, ts: ts})
}

// Blocked reports whether the instrument is brake-blocked at now. The window
// is half-open: blocked for blockStart <= t < blockStart + BlockFor.
func (b *CorrelationBrake) Blocked(instrument string, now time.Time) (bool, string) {
	until, ok := b.blocks[instrument]
	if !ok {
		return false, ""
	}
	if now.Before(until) {
		return true, fmt.Sprintf("correlated stop-loss cluster blocks %s until %s",
			instrument, until.Format("15:04"))
	}
	delete(b.blocks, instrument)
	return false, ""
}

// Blocks returns a copy of the active block expiries for snapshots.
func (b *CorrelationBrake) Blocks(now time.Time) map[string]time.Time {
	out := make(map[string]time.Time, len(b.blocks))
	for k, v := range b.blocks {
		if now.Before(v) {
			out[k] = v
		}
	}
	return out
}
