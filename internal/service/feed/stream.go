package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"TradeGate/pkg/logger"
)

// StreamConfig configures the tick stream.
type StreamConfig struct {
	URL            string
	APIKey         string
	Instruments    []string
	ReconnectDelay time.Duration
	PingInterval   time.Duration
}

// TickStream maintains a WebSocket subscription to the vendor's trade feed
// and tracks the last traded price per instrument. History stays on the REST
// side; the stream only answers point-in-time price reads.
type TickStream struct {
	cfg  StreamConfig
	log  *logger.Logger
	conn *websocket.Conn

	mu     sync.RWMutex
	prices map[string]float64
}

func NewTickStream(cfg StreamConfig, log *logger.Logger) *TickStream {
	if cfg.ReconnectDelay <= 0 {
		cfg.ReconnectDelay = 5 * time.Second
	}
	if cfg.PingInterval <= 0 {
		cfg.PingInterval = 30 * time.Second
	}
	return &TickStream{
		cfg:    cfg,
		log:    log,
		prices: make(map[string]float64),
	}
}

// LastPrice returns the latest tick price for the instrument.
func (s *TickStream) LastPrice(instrument string) (float64, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.prices[instrument]
	return p, ok
}

// Start runs the connect/read/reconnect cycle until ctx is canceled.
func (s *TickStream) Start(ctx context.Context) {
	go func() {
		for {
			if err := s.connect(ctx); err != nil {
				s.log.Warn("tick stream connect failed", logger.Error(err))
			} else {
				s.readLoop(ctx)
			}
			select {
			case <-ctx.Done():
				return
			case <-time.After(s.cfg.ReconnectDelay):
			}
		}
	}()
}

func (s *TickStream) connect(ctx context.Context) error {
	u := s.cfg.URL
	if s.cfg.APIKey != "" {
		u = fmt.Sprintf("%s?token=%s", u, s.cfg.APIKey)
	}
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, u, nil)
	if err != nil {
		return fmt.Errorf("dial tick stream: %w", err)
	}
	s.conn = conn

	for _, inst := range s.cfg.Instruments {
		msg := map[string]string{"type": "subscribe", "symbol": inst}
		if err := conn.WriteJSON(msg); err != nil {
			_ = conn.Close()
			return fmt.Errorf("subscribe %s: %w", inst, err)
		}
	}
	s.log.Info("tick stream connected", logger.Int("instruments", len(s.cfg.Instruments)))
	return nil
}

type tick struct {
	S string  `json:"s"`
	P float64 `json:"p"`
	T int64   `json:"t"` // ms
}

type tickMessage struct {
	Type string `json:"type"`
	Data []tick `json:"data"`
}

func (s *TickStream) readLoop(ctx context.Context) {
	defer func() {
		_ = s.conn.Close()
	}()

	ping := time.NewTicker(s.cfg.PingInterval)
	defer ping.Stop()
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case <-ping.C:
				_ = s.conn.WriteMessage(websocket.PingMessage, nil)
			}
		}
	}()

	for {
		if ctx.Err() != nil {
			return
		}
		_, b, err := s.conn.ReadMessage()
		if err != nil {
			s.log.Warn("tick stream read failed", logger.Error(err))
			return
		}
		var m tickMessage
		if err := json.Unmarshal(b, &m); err != nil || m.Type != "trade" {
			continue
		}
		s.mu.Lock()
		for _, t := range m.Data {
			s.prices[t.S] = t.P
		}
		s.mu.Unlock()
	}
}
