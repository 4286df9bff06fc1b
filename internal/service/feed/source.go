package feed

import (
	"context"

	"TradeGate/internal/domain/models"
)

// Source is the composite candle source: closed bars from the REST history
// endpoint, point-in-time prices from the tick stream. Forming bars never
// reach the classification engines.
type Source struct {
	rest   *RESTClient
	stream *TickStream
}

func NewSource(rest *RESTClient, stream *TickStream) *Source {
	return &Source{rest: rest, stream: stream}
}

func (s *Source) History(ctx context.Context, instrument string, iv models.Interval) ([]models.Candle, error) {
	candles, err := s.rest.History(ctx, instrument, iv)
	if err != nil {
		return nil, err
	}
	// The engines only consume closed bars; drop a trailing in-progress bar
	// when the vendor marks one.
	for len(candles) > 0 && candles[len(candles)-1].Forming {
		candles = candles[:len(candles)-1]
	}
	return candles, nil
}

func (s *Source) LastPrice(instrument string) (float64, bool) {
	if s.stream == nil {
		return 0, false
	}
	return s.stream.LastPrice(instrument)
}
