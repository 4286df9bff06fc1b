package gating

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"TradeGate/internal/domain/models"
)

func testBrake() *CorrelationBrake {
	cfg := DefaultConfig().Brake
	cfg.Pairs = map[string]string{"NIFTY": "SENSEX", "SENSEX": "NIFTY"}
	return NewCorrelationBrake(cfg)
}

func TestCorrelationBrake_ClusterBlocksPair(t *testing.T) {
	b := testBrake()
	t0 := at(10, 0)

	// Two stop-hits 40 minutes apart, same direction and day type, block the
	// correlated instrument for 60 minutes from the second hit.
	b.RecordStop("NIFTY", models.Long, models.DayCleanTrend, t0)
	b.RecordStop("NIFTY", models.Long, models.DayCleanTrend, t0.Add(40*time.Minute))

	blockStart := t0.Add(40 * time.Minute)
	tests := []struct {
		name    string
		now     time.Time
		blocked bool
	}{
		{"at block start", blockStart, true},
		{"mid window", blockStart.Add(30 * time.Minute), true},
		{"last minute of the window", blockStart.Add(59 * time.Minute), true},
		{"exactly at expiry admits", blockStart.Add(60 * time.Minute), false},
		{"after expiry", blockStart.Add(61 * time.Minute), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			blocked, reason := b.Blocked("SENSEX", tt.now)
			assert.Equal(t, tt.blocked, blocked)
			if tt.blocked {
				assert.NotEmpty(t, reason)
			}
		})
	}

	// The instrument that took the losses is not itself brake-blocked.
	blocked, _ := b.Blocked("NIFTY", blockStart)
	assert.False(t, blocked)
}

func TestCorrelationBrake_NoClusterNoBlock(t *testing.T) {
	t0 := at(10, 0)

	t.Run("different direction", func(t *testing.T) {
		b := testBrake()
		b.RecordStop("NIFTY", models.Long, models.DayCleanTrend, t0)
		b.RecordStop("NIFTY", models.Short, models.DayCleanTrend, t0.Add(20*time.Minute))
		blocked, _ := b.Blocked("SENSEX", t0.Add(21*time.Minute))
		assert.False(t, blocked)
	})

	t.Run("different day type", func(t *testing.T) {
		b := testBrake()
		b.RecordStop("NIFTY", models.Long, models.DayCleanTrend, t0)
		b.RecordStop("NIFTY", models.Long, models.DayNormalTrend, t0.Add(20*time.Minute))
		blocked, _ := b.Blocked("SENSEX", t0.Add(21*time.Minute))
		assert.False(t, blocked)
	})

	t.Run("outside the clustering window", func(t *testing.T) {
		b := testBrake()
		b.RecordStop("NIFTY", models.Long, models.DayCleanTrend, t0)
		b.RecordStop("NIFTY", models.Long, models.DayCleanTrend, t0.Add(70*time.Minute))
		blocked, _ := b.Blocked("SENSEX", t0.Add(71*time.Minute))
		assert.False(t, blocked)
	})

	t.Run("unconfigured pair", func(t *testing.T) {
		b := NewCorrelationBrake(DefaultConfig().Brake)
		b.RecordStop("NIFTY", models.Long, models.DayCleanTrend, t0)
		b.RecordStop("NIFTY", models.Long, models.DayCleanTrend, t0.Add(10*time.Minute))
		blocked, _ := b.Blocked("SENSEX", t0.Add(11*time.Minute))
		assert.False(t, blocked)
	})
}

func TestCorrelationBrake_SnapshotAndReset(t *testing.T) {
	b := testBrake()
	t0 := at(10, 0)
	b.RecordStop("NIFTY", models.Long, models.DayCleanTrend, t0)
	b.RecordStop("NIFTY", models.Long, models.DayCleanTrend, t0.Add(10*time.Minute))

	blocks := b.Blocks(t0.Add(20 * time.Minute))
	require.Len(t, blocks, 1)
	assert.Equal(t, t0.Add(70*time.Minute), blocks["SENSEX"])

	b.Reset()
	blocked, _ := b.Blocked("SENSEX", t0.Add(20*time.Minute))
	assert.False(t, blocked)
	assert.Empty(t, b.Blocks(t0.Add(20*time.Minute)))
}
