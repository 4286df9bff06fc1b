package gating

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"TradeGate/internal/domain/models"
)

func longImpulse() models.ImpulseState {
	return models.ImpulseState{Origin: 100, VolUnit: 2, Direction: models.Long, Active: true, Start: at(10, 0)}
}

// midStructure builds a pullback window compatible with an allowed MID entry
// for a long: shallow pullback from the extreme and strictly higher lows.
func midStructure(extremeHigh float64) []models.Candle {
	lows := []float64{101, 101.5, 102, 102.5, 102.8}
	out := make([]models.Candle, len(lows))
	for i, lo := range lows {
		out[i] = models.Candle{Ts: at(10, 30+5*i), Open: lo + 0.2, High: lo + 1, Low: lo, Close: lo + 0.8}
	}
	out[len(out)-1].High = extremeHigh
	return out
}

func TestPhaseEngine_Boundaries(t *testing.T) {
	e := NewPhaseEngine(DefaultConfig().Phase)
	imp := longImpulse()
	ind := models.Indicators{Osc: repeat(55, 5)}
	candles := midStructure(103.8)

	tests := []struct {
		name  string
		price float64
		phase models.TrendPhase
	}{
		{"below early bound", 102.2, models.PhaseEarly},
		{"exactly 1.2 is MID", 102.4, models.PhaseMid},
		{"inside mid band", 103, models.PhaseMid},
		{"exactly 2.0 is LATE", 104, models.PhaseLate},
		{"inside late band", 104.8, models.PhaseLate},
		{"exactly 2.5 is a hard block", 105, models.PhaseHardBlock},
		{"beyond hard block", 108, models.PhaseHardBlock},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := e.Classify(imp, tt.price, ind, candles)
			assert.Equal(t, tt.phase, res.Phase)
		})
	}
}

func TestPhaseEngine_NoImpulseFailsOpen(t *testing.T) {
	e := NewPhaseEngine(DefaultConfig().Phase)
	res := e.Classify(models.ImpulseState{}, 103, models.Indicators{}, nil)
	assert.Equal(t, models.PhaseEarly, res.Phase)
	assert.True(t, res.Allowed)
}

func TestPhaseEngine_MidSubConditions(t *testing.T) {
	e := NewPhaseEngine(DefaultConfig().Phase)
	imp := longImpulse()

	t.Run("allowed when all sub-conditions hold", func(t *testing.T) {
		res := e.Classify(imp, 103, models.Indicators{Osc: repeat(55, 5)}, midStructure(103.8))
		require.Equal(t, models.PhaseMid, res.Phase)
		assert.True(t, res.Allowed)
		assert.InDelta(t, 1.5, res.Expansion, 1e-9)
	})

	t.Run("pullback past half a volatility unit denies", func(t *testing.T) {
		// Extreme at 104.2 puts the pullback at 1.2 points = 0.6x the unit.
		res := e.Classify(imp, 103, models.Indicators{Osc: repeat(55, 5)}, midStructure(104.2))
		require.Equal(t, models.PhaseMid, res.Phase)
		assert.False(t, res.Allowed)
		assert.Contains(t, res.Reason, "pullback")
	})

	t.Run("oscillator below midline denies a long", func(t *testing.T) {
		res := e.Classify(imp, 103, models.Indicators{Osc: repeat(45, 5)}, midStructure(103.8))
		assert.False(t, res.Allowed)
		assert.Contains(t, res.Reason, "oscillator")
	})

	t.Run("broken higher-lows structure denies", func(t *testing.T) {
		candles := midStructure(103.8)
		candles[4].Low = candles[3].Low - 0.5
		res := e.Classify(imp, 103, models.Indicators{Osc: repeat(55, 5)}, candles)
		assert.False(t, res.Allowed)
		assert.Contains(t, res.Reason, "structure")
	})

	t.Run("short mirrors the oscillator side", func(t *testing.T) {
		imp := models.ImpulseState{Origin: 100, VolUnit: 2, Direction: models.Short, Active: true}
		// Lower highs, shallow bounce off the low.
		candles := []models.Candle{
			{High: 99, Low: 98, Open: 98.8, Close: 98.2},
			{High: 98.5, Low: 97.5, Open: 98.3, Close: 97.7},
			{High: 98, Low: 96.6, Open: 97.6, Close: 97},
		}
		res := e.Classify(imp, 97, models.Indicators{Osc: repeat(40, 3)}, candles)
		require.Equal(t, models.PhaseMid, res.Phase)
		assert.True(t, res.Allowed)
	})
}
