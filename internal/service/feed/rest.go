package feed

import (
	"context"
	"fmt"
	"time"

	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"

	"TradeGate/internal/domain/models"
	phttp "TradeGate/pkg/http"
	"TradeGate/pkg/logger"
)

// RESTConfig configures the candle history client.
type RESTConfig struct {
	BaseURL        string
	APIKey         string
	Timeout        time.Duration
	RateLimitRPS   float64
	RateLimitBurst int
	BreakerTrips   uint32
	BreakerCooloff time.Duration
}

// RESTClient fetches candle history over HTTP behind a rate limiter and a
// circuit breaker, so a flapping vendor API cannot stall the evaluation loop.
type RESTClient struct {
	cfg     RESTConfig
	client  *phttp.Client
	limiter *rate.Limiter
	breaker *gobreaker.CircuitBreaker
	log     *logger.Logger
}

func NewRESTClient(cfg RESTConfig, log *logger.Logger) *RESTClient {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.RateLimitRPS <= 0 {
		cfg.RateLimitRPS = 5
	}
	if cfg.RateLimitBurst <= 0 {
		cfg.RateLimitBurst = 10
	}
	if cfg.BreakerTrips == 0 {
		cfg.BreakerTrips = 5
	}
	if cfg.BreakerCooloff <= 0 {
		cfg.BreakerCooloff = 30 * time.Second
	}

	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:    "feed-rest",
		Timeout: cfg.BreakerCooloff,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.BreakerTrips
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn("feed breaker state change",
				logger.String("from", from.String()),
				logger.String("to", to.String()))
		},
	})

	return &RESTClient{
		cfg:     cfg,
		client:  phttp.NewClient(phttp.WithClientTimeout(cfg.Timeout)),
		limiter: rate.NewLimiter(rate.Limit(cfg.RateLimitRPS), cfg.RateLimitBurst),
		breaker: breaker,
		log:     log,
	}
}

// candleResponse is the vendor's column-oriented candle payload.
type candleResponse struct {
	Status string    `json:"s"`
	Ts     []int64   `json:"t"`
	Open   []float64 `json:"o"`
	High   []float64 `json:"h"`
	Low    []float64 `json:"l"`
	Close  []float64 `json:"c"`
	Volume []float64 `json:"v"`
}

// History fetches the closed-bar history for one instrument.
func (c *RESTClient) History(ctx context.Context, instrument string, iv models.Interval) ([]models.Candle, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	out, err := c.breaker.Execute(func() (interface{}, error) {
		var resp candleResponse
		err := c.client.SendAndParse(ctx, &phttp.RequestOptions{
			Method: phttp.MethodGet,
			URL:    fmt.Sprintf("%s/candles", c.cfg.BaseURL),
			QueryParams: map[string]string{
				"symbol":   instrument,
				"interval": string(iv),
				"token":    c.cfg.APIKey,
			},
		}, &resp)
		if err != nil {
			return nil, err
		}
		if resp.Status != "ok" {
			return nil, fmt.Errorf("feed status %q for %s", resp.Status, instrument)
		}
		return resp.candles()
	})
	if err != nil {
		return nil, fmt.Errorf("fetch %s %s history: %w", instrument, iv, err)
	}
	return out.([]models.Candle), nil
}

func (r candleResponse) candles() ([]models.Candle, error) {
	n := len(r.Ts)
	if len(r.Open) != n || len(r.High) != n || len(r.Low) != n || len(r.Close) != n {
		return nil, fmt.Errorf("ragged candle arrays: %d ts, %d open, %d high, %d low, %d close",
			n, len(r.Open), len(r.High), len(r.Low), len(r.Close))
	}
	candles := make([]models.Candle, n)
	for i := 0; i < n; i++ {
		candles[i] = models.Candle{
			Ts:    time.Unix(r.Ts[i], 0),
			Open:  r.Open[i],
			High:  r.High[i],
			Low:   r.Low[i],
			Close: r.Close[i],
		}
		if i < len(r.Volume) {
			candles[i].Volume = r.Volume[i]
		}
	}
	return candles, nil
}
