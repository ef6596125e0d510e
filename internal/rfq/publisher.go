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

package rfq

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/triparty-labs/perp-quoting-go/internal/rates"
)

// Sender posts an RFQ payload to the backend
type Sender interface {
	SendRfq(ctx context.Context, req RfqRequest, token string) error
}

// Session supplies the current auth token; empty means no session
type Session interface {
	Token() string
}

// PublisherConfig holds the publisher cadences
type PublisherConfig struct {
	PublishInterval time.Duration
	RefreshInterval time.Duration
}

// DefaultPublisherConfig matches the production cadences: publish every
// second, refresh the rate tables every 500 seconds.
func DefaultPublisherConfig() PublisherConfig {
	return PublisherConfig{
		PublishInterval: time.Second,
		RefreshInterval: 500 * time.Second,
	}
}

// Publisher republishes the current intent's RFQ on a fixed cadence while
// a session exists. A failed build or send skips that cycle only.
type Publisher struct {
	builder *Builder
	rates   *rates.Resolver
	sender  Sender
	session Session
	intent  func() Intent
	cfg     PublisherConfig
}

// NewPublisher creates a publisher. The intent func is called on every
// cycle so each publish sees the latest snapshot.
func NewPublisher(builder *Builder, resolver *rates.Resolver, sender Sender, session Session, intent func() Intent, cfg PublisherConfig) *Publisher {
	return &Publisher{
		builder: builder,
		rates:   resolver,
		sender:  sender,
		session: session,
		intent:  intent,
		cfg:     cfg,
	}
}

// Run drives the publish and table-refresh tickers until ctx is done
func (p *Publisher) Run(ctx context.Context) {
	publish := time.NewTicker(p.cfg.PublishInterval)
	defer publish.Stop()

	refresh := time.NewTicker(p.cfg.RefreshInterval)
	defer refresh.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-refresh.C:
			p.rates.Refresh()
		case <-publish.C:
			p.PublishOnce(ctx)
		}
	}
}

// PublishOnce builds and sends a single RFQ for the current intent.
// Without a session token it does nothing.
func (p *Publisher) PublishOnce(ctx context.Context) {
	token := p.session.Token()
	if token == "" {
		return
	}

	intent := p.intent()
	req, err := p.builder.BuildRfq(intent)
	if err != nil {
		zap.L().Warn("RFQ build failed, retrying next cycle",
			zap.String("symbol", intent.SymbolPair),
			zap.Error(err))
		return
	}

	req = sanitize(req)

	if err := p.sender.SendRfq(ctx, req, token); err != nil {
		zap.L().Warn("RFQ send failed, retrying next cycle",
			zap.String("symbol", intent.SymbolPair),
			zap.Error(err))
	}
}
