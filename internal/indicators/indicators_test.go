package indicators

import (
	"math"
	"testing"
	"time"

	"TradeGate/internal/domain/models"
)

func almostEqual(a, b, eps float64) bool {
	return math.Abs(a-b) <= eps
}

func TestEMA(t *testing.T) {
	t.Run("empty input", func(t *testing.T) {
		if got := EMA(nil, 20); len(got) != 0 {
			t.Errorf("expected empty output, got %v", got)
		}
	})

	t.Run("constant series stays constant", func(t *testing.T) {
		values := []float64{100, 100, 100, 100, 100}
		got := EMA(values, 3)
		for i, v := range got {
			if !almostEqual(v, 100, 1e-9) {
				t.Errorf("index %d: expected 100, got %f", i, v)
			}
		}
	})

	t.Run("tracks a rising series from below", func(t *testing.T) {
		values := []float64{10, 20, 30, 40, 50}
		got := EMA(values, 3)
		last := got[len(got)-1]
		if last >= 50 || last <= 10 {
			t.Errorf("expected EMA between first and last value, got %f", last)
		}
		for i := 1; i < len(got); i++ {
			if got[i] <= got[i-1] {
				t.Errorf("expected monotonically rising EMA, got %v", got)
			}
		}
	})

	t.Run("output aligned with input", func(t *testing.T) {
		values := []float64{1, 2, 3}
		if got := EMA(values, 10); len(got) != len(values) {
			t.Errorf("expected aligned output, got len %d", len(got))
		}
	})
}

func candlesFromCloses(closes []float64, spread float64) []models.Candle {
	ts := time.Date(2026, 8, 20, 9, 15, 0, 0, time.UTC)
	out := make([]models.Candle, len(closes))
	for i, c := range closes {
		out[i] = models.Candle{
			Ts:    ts.Add(time.Duration(i) * 5 * time.Minute),
			Open:  c,
			High:  c + spread,
			Low:   c - spread,
			Close: c,
		}
	}
	return out
}

func TestATR(t *testing.T) {
	t.Run("constant range converges to range", func(t *testing.T) {
		candles := candlesFromCloses([]float64{100, 100, 100, 100, 100, 100, 100, 100}, 5)
		got := ATR(candles, 3)
		last := got[len(got)-1]
		if !almostEqual(last, 10, 1e-6) {
			t.Errorf("expected ATR 10 for constant 10-point ranges, got %f", last)
		}
	})

	t.Run("gap widens true range", func(t *testing.T) {
		candles := candlesFromCloses([]float64{100, 100}, 1)
		// Gap the second bar far above the prior close.
		candles[1].Open, candles[1].High, candles[1].Low, candles[1].Close = 120, 121, 119, 120
		got := ATR(candles, 3)
		if got[1] <= candles[1].Range() {
			t.Errorf("expected gap to dominate true range, got %f", got[1])
		}
	})

	t.Run("empty input", func(t *testing.T) {
		if got := ATR(nil, 14); len(got) != 0 {
			t.Errorf("expected empty output, got %v", got)
		}
	})
}

func TestRSI(t *testing.T) {
	t.Run("insufficient history stays neutral", func(t *testing.T) {
		got := RSI([]float64{100, 101, 102}, 14)
		for i, v := range got {
			if v != 50 {
				t.Errorf("index %d: expected neutral 50, got %f", i, v)
			}
		}
	})

	t.Run("all gains read 100", func(t *testing.T) {
		closes := make([]float64, 20)
		for i := range closes {
			closes[i] = 100 + float64(i)
		}
		got := RSI(closes, 14)
		if got[len(got)-1] != 100 {
			t.Errorf("expected RSI 100 on monotonic gains, got %f", got[len(got)-1])
		}
	})

	t.Run("all losses read near 0", func(t *testing.T) {
		closes := make([]float64, 20)
		for i := range closes {
			closes[i] = 200 - float64(i)
		}
		got := RSI(closes, 14)
		if got[len(got)-1] > 1 {
			t.Errorf("expected RSI near 0 on monotonic losses, got %f", got[len(got)-1])
		}
	})

	t.Run("alternating moves stay mid-band", func(t *testing.T) {
		closes := make([]float64, 40)
		for i := range closes {
			closes[i] = 100
			if i%2 == 1 {
				closes[i] = 101
			}
		}
		got := RSI(closes, 14)
		last := got[len(got)-1]
		if last < 35 || last > 65 {
			t.Errorf("expected mid-band RSI for alternating series, got %f", last)
		}
	})
}

func TestCompute(t *testing.T) {
	candles := candlesFromCloses([]float64{
		100, 101, 102, 101, 103, 104, 103, 105, 106, 105,
		107, 108, 107, 109, 110, 109, 111, 112, 111, 113,
	}, 2)
	ind := Compute(candles, DefaultConfig())

	if len(ind.FastMA) != len(candles) || len(ind.SlowMA) != len(candles) ||
		len(ind.VolUnit) != len(candles) || len(ind.Osc) != len(candles) {
		t.Fatalf("expected all series aligned with %d candles", len(candles))
	}
	if ind.LastVolUnit() <= 0 {
		t.Errorf("expected positive volatility unit, got %f", ind.LastVolUnit())
	}
	if osc := ind.LastOsc(); osc <= 50 {
		t.Errorf("expected oscillator above neutral in an uptrend, got %f", osc)
	}
	if slope := ind.FastMASlopePct(5); slope <= 0 {
		t.Errorf("expected positive fast MA slope in an uptrend, got %f", slope)
	}
}
