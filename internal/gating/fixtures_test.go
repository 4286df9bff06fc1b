package gating

import (
	"time"

	"TradeGate/internal/domain/models"
)

// at returns a session-local timestamp on a fixed trading day.
func at(hour, minute int) time.Time {
	return time.Date(2026, 8, 20, hour, minute, 0, 0, time.UTC)
}

// trendingCandles builds n non-overlapping bullish bars stepping up by 1 with
// a 2-point range, starting at base.
func trendingCandles(n int, base float64) []models.Candle {
	out := make([]models.Candle, n)
	for i := range out {
		lo := base + float64(i)
		out[i] = models.Candle{
			Ts:    at(9, 15).Add(time.Duration(i) * 5 * time.Minute),
			Open:  lo + 0.5,
			High:  lo + 2,
			Low:   lo,
			Close: lo + 1.5,
		}
	}
	return out
}

// flatCandles builds n identical bars, all mutually overlapping.
func flatCandles(n int, base float64) []models.Candle {
	out := make([]models.Candle, n)
	for i := range out {
		out[i] = models.Candle{
			Ts:    at(9, 15).Add(time.Duration(i) * 5 * time.Minute),
			Open:  base + 0.4,
			High:  base + 1,
			Low:   base,
			Close: base + 0.6,
		}
	}
	return out
}

func repeat(v float64, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = v
	}
	return out
}
