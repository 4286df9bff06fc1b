// Package indicators implements the series math consumed by the gating
// engines: exponential moving averages, a Wilder ATR volatility unit, and a
// Wilder RSI oscillator. All outputs are aligned one-to-one with the input
// candles; indices before the first full lookback repeat the seed value so
// callers never index out of range.
package indicators

import (
	"TradeGate/internal/domain/models"
)

// Config holds the lookback periods for the indicator set.
type Config struct {
	FastMAPeriod  int `yaml:"fast_ma_period"`
	SlowMAPeriod  int `yaml:"slow_ma_period"`
	VolUnitPeriod int `yaml:"vol_unit_period"`
	OscPeriod     int `yaml:"osc_period"`
}

// DefaultConfig mirrors the intraday calibration: EMA20/EMA50, ATR14, RSI14.
func DefaultConfig() Config {
	return Config{FastMAPeriod: 20, SlowMAPeriod: 50, VolUnitPeriod: 14, OscPeriod: 14}
}

// Compute builds the full indicator set for a candle series.
func Compute(candles []models.Candle, cfg Config) models.Indicators {
	closes := make([]float64, len(candles))
	for i, c := range candles {
		closes[i] = c.Close
	}
	return models.Indicators{
		FastMA:  EMA(closes, cfg.FastMAPeriod),
		SlowMA:  EMA(closes, cfg.SlowMAPeriod),
		VolUnit: ATR(candles, cfg.VolUnitPeriod),
		Osc:     RSI(closes, cfg.OscPeriod),
	}
}

// EMA returns the n-period exponential moving average, seeded with the first
// value so the output stays aligned with the input.
func EMA(values []float64, n int) []float64 {
	out := make([]float64, len(values))
	if len(values) == 0 || n <= 0 {
		return out
	}
	k := 2.0 / (float64(n) + 1.0)
	out[0] = values[0]
	for i := 1; i < len(values); i++ {
		out[i] = values[i]*k + out[i-1]*(1-k)
	}
	return out
}

// ATR returns the n-period Wilder average true range.
func ATR(candles []models.Candle, n int) []float64 {
	out := make([]float64, len(candles))
	if len(candles) == 0 || n <= 0 {
		return out
	}
	tr := make([]float64, len(candles))
	tr[0] = candles[0].Range()
	for i := 1; i < len(candles); i++ {
		hl := candles[i].Range()
		hc := abs(candles[i].High - candles[i-1].Close)
		lc := abs(candles[i].Low - candles[i-1].Close)
		tr[i] = max3(hl, hc, lc)
	}
	// Wilder smoothing seeded with the first true range.
	out[0] = tr[0]
	for i := 1; i < len(tr); i++ {
		out[i] = (out[i-1]*float64(n-1) + tr[i]) / float64(n)
	}
	return out
}

// RSI returns the n-period Wilder relative strength index. Indices before a
// full lookback hold the neutral value 50.
func RSI(closes []float64, n int) []float64 {
	out := make([]float64, len(closes))
	for i := range out {
		out[i] = 50
	}
	if len(closes) < n+1 || n <= 0 {
		return out
	}
	var avgGain, avgLoss float64
	for i := 1; i <= n; i++ {
		d := closes[i] - closes[i-1]
		if d > 0 {
			avgGain += d
		} else {
			avgLoss -= d
		}
	}
	avgGain /= float64(n)
	avgLoss /= float64(n)
	out[n] = rsiValue(avgGain, avgLoss)
	for i := n + 1; i < len(closes); i++ {
		d := closes[i] - closes[i-1]
		gain, loss := 0.0, 0.0
		if d > 0 {
			gain = d
		} else {
			loss = -d
		}
		avgGain = (avgGain*float64(n-1) + gain) / float64(n)
		avgLoss = (avgLoss*float64(n-1) + loss) / float64(n)
		out[i] = rsiValue(avgGain, avgLoss)
	}
	return out
}

func rsiValue(avgGain, avgLoss float64) float64 {
	if avgLoss == 0 {
		return 100
	}
	rs := avgGain / avgLoss
	return 100 - 100/(1+rs)
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

func max3(a, b, c float64) float64 {
	m := a
	if b > m {
		m = b
	}
	if c > m {
		m = c
	}
	return m
}
