package binance

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	applogger "CoinSage/pkg/logger"
	pkgmetrics "CoinSage/pkg/metrics"

	"github.com/gorilla/websocket"
)

// Stream keeps a live price table fed by the Binance miniTicker stream.
// Lookups never block on the socket; a missing symbol just means the
// caller falls back to REST.
type Stream struct {
	websocketURL   string
	symbols        []string
	reconnectDelay time.Duration
	pingInterval   time.Duration
	l              *applogger.Logger
	rec            *pkgmetrics.Recorder

	mu        sync.RWMutex
	prices    map[string]float64
	conn      *websocket.Conn
	connected bool
}

func NewStream(websocketURL string, symbols []string, reconnectDelay, pingInterval time.Duration, l *applogger.Logger) *Stream {
	if reconnectDelay <= 0 {
		reconnectDelay = 5 * time.Second
	}
	if pingInterval <= 0 {
		pingInterval = 30 * time.Second
	}
	return &Stream{
		websocketURL:   websocketURL,
		symbols:        symbols,
		reconnectDelay: reconnectDelay,
		pingInterval:   pingInterval,
		l:              l,
		prices:         make(map[string]float64),
	}
}

// SetRecorder injects a metrics recorder for stream health.
func (s *Stream) SetRecorder(rec *pkgmetrics.Recorder) { s.rec = rec }

// LastPrice returns the most recent streamed price for symbol.
func (s *Stream) LastPrice(symbol string) (float64, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.prices[symbol]
	return p, ok
}

// IsConnected indicates status.
func (s *Stream) IsConnected() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.connected
}

// Run connects, subscribes and consumes until ctx is done, reconnecting
// on socket failure.
func (s *Stream) Run(ctx context.Context) {
	for {
		if err := s.connect(ctx); err != nil {
			s.l.Warn("binance stream connect failed", applogger.Error(err))
		} else if err := s.subscribe(); err != nil {
			s.l.Warn("binance stream subscribe failed", applogger.Error(err))
			s.close()
		} else {
			s.readLoop(ctx)
			s.close()
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(s.reconnectDelay):
		}
	}
}

func (s *Stream) connect(ctx context.Context) error {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, s.websocketURL, nil)
	if err != nil {
		return fmt.Errorf("binance connect: %w", err)
	}
	s.mu.Lock()
	s.conn = conn
	s.connected = true
	s.mu.Unlock()
	s.l.Info("binance stream connected", applogger.String("url", s.websocketURL))
	return nil
}

func (s *Stream) subscribe() error {
	params := make([]string, 0, len(s.symbols))
	for _, sym := range s.symbols {
		params = append(params, strings.ToLower(sym)+"@miniTicker")
	}
	msg := map[string]interface{}{
		"method": "SUBSCRIBE",
		"params": params,
		"id":     1,
	}
	if err := s.conn.WriteJSON(msg); err != nil {
		return fmt.Errorf("subscribe: %w", err)
	}
	s.l.Info("binance stream subscribed", applogger.Strings("streams", params))
	return nil
}

type miniTicker struct {
	Event  string `json:"e"`
	Symbol string `json:"s"`
	Close  string `json:"c"`
}

func (s *Stream) readLoop(ctx context.Context) {
	done := make(chan struct{})
	defer close(done)

	go func() {
		ticker := time.NewTicker(s.pingInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-done:
				return
			case <-ticker.C:
				s.mu.RLock()
				conn := s.conn
				s.mu.RUnlock()
				if conn != nil {
					_ = conn.WriteMessage(websocket.PingMessage, nil)
				}
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}
		_, b, err := s.conn.ReadMessage()
		if err != nil {
			s.l.Warn("binance stream read error", applogger.Error(err))
			if s.rec != nil {
				s.rec.RecordError("stream_read")
			}
			return
		}
		var m miniTicker
		if err := json.Unmarshal(b, &m); err != nil || m.Event != "24hrMiniTicker" {
			// subscription acks and other frames
			continue
		}
		price, err := strconv.ParseFloat(m.Close, 64)
		if err != nil {
			continue
		}
		s.mu.Lock()
		s.prices[m.Symbol] = price
		s.mu.Unlock()
		if s.rec != nil {
			s.rec.RecordStreamUpdate(m.Symbol)
			s.rec.RecordLastPrice(m.Symbol, price)
		}
	}
}

func (s *Stream) close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.connected = false
	if s.conn != nil {
		_ = s.conn.Close()
		s.conn = nil
	}
}
