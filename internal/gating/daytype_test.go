package gating

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"TradeGate/internal/domain/models"
)

// cleanTrendFixture matches the clean-trend predicate: expanding volatility,
// directional oscillator, no inside bars, MA riding under price.
func cleanTrendFixture() ([]models.Candle, models.Indicators) {
	candles := trendingCandles(20, 100)
	fast := make([]float64, 20)
	for i := range fast {
		fast[i] = 101 + float64(i)
	}
	vol := repeat(4, 20)
	vol[19] = 4.3
	return candles, models.Indicators{
		FastMA:  fast,
		SlowMA:  repeat(100, 20),
		VolUnit: vol,
		Osc:     repeat(60, 20),
	}
}

// choppyFixture matches range-choppy: flat slope, midline whipsaw, volatility
// contracting below the session-opening value of cleanTrendFixture.
func choppyFixture() ([]models.Candle, models.Indicators) {
	candles := flatCandles(20, 100)
	osc := repeat(50, 20)
	copy(osc[10:], []float64{48, 52, 48, 52, 48, 52, 52, 52, 52, 52})
	return candles, models.Indicators{
		FastMA:  repeat(100.5, 20),
		SlowMA:  repeat(100.5, 20),
		VolUnit: repeat(2.5, 20),
		Osc:     osc,
	}
}

func TestDayTypeEngine_CleanThenChoppyLocks(t *testing.T) {
	e := NewDayTypeEngine(DefaultConfig().DayType)

	candles, ind := cleanTrendFixture()
	day, changed, _ := e.Update(candles, ind, at(10, 0), false)
	require.True(t, changed)
	require.Equal(t, models.DayCleanTrend, day)

	// Volatility contracts and the oscillator whipsaws: choppy, immediate,
	// and locked for the rest of the session.
	candles, ind = choppyFixture()
	day, changed, reason := e.Update(candles, ind, at(10, 30), false)
	require.True(t, changed)
	assert.Equal(t, models.DayRangeChoppy, day)
	assert.NotEmpty(t, reason)
	assert.True(t, e.Locked())

	// Later clean-looking input never downgrades a locked day.
	candles, ind = cleanTrendFixture()
	day, changed, _ = e.Update(candles, ind, at(11, 30), false)
	assert.False(t, changed)
	assert.Equal(t, models.DayRangeChoppy, day)
}

func TestDayTypeEngine_SweepTrapImmediateLock(t *testing.T) {
	e := NewDayTypeEngine(DefaultConfig().DayType)

	candles := flatCandles(12, 100)
	candles[10] = models.Candle{Ts: candles[10].Ts, Open: 100, High: 103, Low: 100, Close: 102.8}
	candles[11] = models.Candle{Ts: candles[11].Ts, Open: 102.8, High: 102.9, Low: 100.5, Close: 100.6}
	ind := models.Indicators{
		FastMA:  repeat(100.5, 12),
		SlowMA:  repeat(100.5, 12),
		VolUnit: repeat(2, 12),
		Osc:     repeat(50, 12),
	}

	day, changed, _ := e.Update(candles, ind, at(10, 0), false)
	require.True(t, changed)
	assert.Equal(t, models.DayLiquiditySweepTrap, day)
	assert.True(t, e.Locked())
}

// rotationalFixture matches rotational-expansion: expanding volatility, price
// whipping across the fast MA, and a failed breakout bar.
func rotationalFixture() ([]models.Candle, models.Indicators) {
	candles := make([]models.Candle, 12)
	for i := 0; i < 10; i++ {
		cl := 99.2
		if i%2 == 1 {
			cl = 100.8
		}
		candles[i] = models.Candle{Ts: at(9, 15+5*i), Open: 100, High: 101, Low: 99, Close: cl}
	}
	candles[10] = models.Candle{Ts: at(10, 5), Open: 100, High: 103.5, Low: 99, Close: 100.2}
	candles[11] = models.Candle{Ts: at(10, 10), Open: 100.2, High: 101, Low: 99.8, Close: 100.4}

	vol := repeat(2, 12)
	for i := 6; i < 12; i++ {
		vol[i] = 2.5
	}
	return candles, models.Indicators{
		FastMA:  repeat(100, 12),
		SlowMA:  repeat(100, 12),
		VolUnit: vol,
		Osc:     repeat(50, 12),
	}
}

func TestDayTypeEngine_RotationalNeedsConfirmation(t *testing.T) {
	e := NewDayTypeEngine(DefaultConfig().DayType)
	candles, ind := rotationalFixture()

	// First detection only arms the pending transition.
	day, changed, _ := e.Update(candles, ind, at(10, 0), false)
	assert.False(t, changed)
	assert.Equal(t, models.DayNormalTrend, day)
	assert.Equal(t, models.DayUnknown, e.Current())

	// Second detection 30 minutes later is still inside the confirmation
	// margin.
	_, changed, _ = e.Update(candles, ind, at(10, 30), false)
	assert.False(t, changed)

	// Third detection past the margin applies the transition.
	day, changed, _ = e.Update(candles, ind, at(11, 0), false)
	require.True(t, changed)
	assert.Equal(t, models.DayRotationalExpansion, day)
	assert.False(t, e.Locked())
}

func TestDayTypeEngine_InsufficientHistoryFailsSafe(t *testing.T) {
	e := NewDayTypeEngine(DefaultConfig().DayType)

	day, changed, _ := e.Update(flatCandles(5, 100), models.Indicators{VolUnit: repeat(2, 5)}, at(10, 0), false)
	assert.False(t, changed)
	assert.Equal(t, models.DayNormalTrend, day)
	assert.Equal(t, models.DayUnknown, e.Current())
}

func TestDayTypeEngine_CheckCadence(t *testing.T) {
	e := NewDayTypeEngine(DefaultConfig().DayType)

	candles, ind := cleanTrendFixture()
	_, changed, _ := e.Update(candles, ind, at(10, 0), false)
	require.True(t, changed)

	// A hostile input 10 minutes later is ignored until the next check slot.
	candles, ind = choppyFixture()
	_, changed, _ = e.Update(candles, ind, at(10, 10), false)
	assert.False(t, changed)
	assert.Equal(t, models.DayCleanTrend, e.Current())
}

func TestDayTypeEngine_Reset(t *testing.T) {
	e := NewDayTypeEngine(DefaultConfig().DayType)
	candles, ind := cleanTrendFixture()
	_, changed, _ := e.Update(candles, ind, at(10, 0), false)
	require.True(t, changed)

	e.Reset()
	assert.Equal(t, models.DayUnknown, e.Current())
	assert.False(t, e.Locked())
	assert.Equal(t, models.DayNormalTrend, e.Effective())
}

func TestDayTypeSeverityNeverDecreases(t *testing.T) {
	// The only-worse rule holds for any update sequence: replay mixed inputs
	// and assert severity monotonicity after every applied transition.
	e := NewDayTypeEngine(DefaultConfig().DayType)

	inputs := []func() ([]models.Candle, models.Indicators){
		cleanTrendFixture, rotationalFixture, cleanTrendFixture, choppyFixture, cleanTrendFixture,
	}
	prev := 0
	clock := at(10, 0)
	for _, fix := range inputs {
		candles, ind := fix()
		day, _, _ := e.Update(candles, ind, clock, false)
		require.GreaterOrEqual(t, day.Severity(), prev)
		prev = day.Severity()
		clock = clock.Add(30 * time.Minute)
	}
}
