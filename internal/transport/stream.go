/**
 * Copyright 2025-present Coinbase Global, Inc.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *  http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package transport

import (
	"context"
	"encoding/json"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/triparty-labs/perp-quoting-go/internal/quotes"
	"github.com/triparty-labs/perp-quoting-go/internal/rfq"
)

const (
	// DefaultWatchdog is how long a connection may stay silent before it
	// is torn down and redialed
	DefaultWatchdog = 10 * time.Second

	defaultBaseDelay = 1 * time.Second
	defaultMaxDelay  = 30 * time.Second
)

// StreamConfig wires a QuoteStream
type StreamConfig struct {
	Url       string
	Session   rfq.Session
	Handler   func(quotes.Quote)
	Watchdog  time.Duration
	BaseDelay time.Duration
	MaxDelay  time.Duration
}

// QuoteStream maintains the live quote WebSocket. It redials with
// exponential backoff on failure and restarts any connection that goes
// quiet for longer than the watchdog interval.
type QuoteStream struct {
	url       string
	session   rfq.Session
	handler   func(quotes.Quote)
	watchdog  time.Duration
	baseDelay time.Duration
	maxDelay  time.Duration
	dialer    *websocket.Dialer
}

func NewQuoteStream(cfg StreamConfig) *QuoteStream {
	if cfg.Watchdog <= 0 {
		cfg.Watchdog = DefaultWatchdog
	}
	if cfg.BaseDelay <= 0 {
		cfg.BaseDelay = defaultBaseDelay
	}
	if cfg.MaxDelay <= 0 {
		cfg.MaxDelay = defaultMaxDelay
	}
	return &QuoteStream{
		url:       cfg.Url,
		session:   cfg.Session,
		handler:   cfg.Handler,
		watchdog:  cfg.Watchdog,
		baseDelay: cfg.BaseDelay,
		maxDelay:  cfg.MaxDelay,
		dialer:    websocket.DefaultDialer,
	}
}

// Run connects and reads until the context is canceled
func (s *QuoteStream) Run(ctx context.Context) {
	delay := s.baseDelay

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		token := s.session.Token()
		if token == "" {
			zap.L().Debug("no session token, quote stream waiting")
			if !sleepCtx(ctx, s.baseDelay) {
				return
			}
			continue
		}

		conn, err := s.connect(ctx, token)
		if err != nil {
			zap.L().Error("failed to connect quote stream",
				zap.String("url", s.url),
				zap.Duration("retryIn", delay),
				zap.Error(err))
			if !sleepCtx(ctx, delay) {
				return
			}
			delay = nextDelay(delay, s.maxDelay)
			continue
		}

		delay = s.baseDelay
		s.readMessages(ctx, conn)
		conn.Close()

		if ctx.Err() == nil {
			zap.L().Info("quote stream disconnected, reconnecting")
		}
	}
}

func (s *QuoteStream) connect(ctx context.Context, token string) (*websocket.Conn, error) {
	header := map[string][]string{"Authorization": {"Bearer " + token}}
	conn, _, err := s.dialer.DialContext(ctx, s.url, header)
	if err != nil {
		return nil, err
	}

	zap.L().Info("quote stream connected", zap.String("url", s.url))
	return conn, nil
}

// readMessages pumps quotes to the handler until the connection errors,
// goes silent past the watchdog, or the context is canceled.
func (s *QuoteStream) readMessages(ctx context.Context, conn *websocket.Conn) {
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-done:
		}
	}()

	for {
		if err := conn.SetReadDeadline(time.Now().Add(s.watchdog)); err != nil {
			zap.L().Error("failed to arm quote stream watchdog", zap.Error(err))
			return
		}

		_, message, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			zap.L().Warn("quote stream read failed", zap.Error(err))
			return
		}

		s.dispatch(message)
	}
}

func (s *QuoteStream) dispatch(message []byte) {
	var quote quotes.Quote
	if err := json.Unmarshal(message, &quote); err != nil {
		zap.L().Error("failed to decode quote message", zap.Error(err))
		return
	}
	if quote.Id == "" {
		// heartbeat or acknowledgment frame
		return
	}
	if s.handler != nil {
		s.handler(quote)
	}
}

func nextDelay(current, max time.Duration) time.Duration {
	next := current * 2
	if next > max {
		return max
	}
	return next
}

// sleepCtx waits for d or until the context ends, reporting whether the
// caller should keep going.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
