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

// Package balance polls the user's deposited collateral balance.
package balance

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// DefaultInterval is the poll cadence for the deposited balance
const DefaultInterval = 2500 * time.Millisecond

// Source reads the deposited balance for an address. Chain-backed
// implementations return the value already scaled out of wei.
type Source interface {
	DepositedBalance(ctx context.Context, address string) (decimal.Decimal, error)
}

// PollerConfig wires a Poller
type PollerConfig struct {
	Source   Source
	Address  string
	Publish  func(decimal.Decimal)
	Interval time.Duration
}

// Poller fetches the deposited balance on a fixed cadence and hands each
// reading to the publish callback. Read failures keep the previous
// published value in place.
type Poller struct {
	source   Source
	address  string
	publish  func(decimal.Decimal)
	interval time.Duration
}

func NewPoller(cfg PollerConfig) *Poller {
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultInterval
	}
	return &Poller{
		source:   cfg.Source,
		address:  cfg.Address,
		publish:  cfg.Publish,
		interval: cfg.Interval,
	}
}

// Run fetches immediately, then on every tick until the context ends
func (p *Poller) Run(ctx context.Context) {
	p.FetchOnce(ctx)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.FetchOnce(ctx)
		}
	}
}

// FetchOnce reads the balance and publishes it
func (p *Poller) FetchOnce(ctx context.Context) {
	if p.address == "" {
		return
	}

	value, err := p.source.DepositedBalance(ctx, p.address)
	if err != nil {
		zap.L().Warn("deposited balance read failed",
			zap.String("address", p.address), zap.Error(err))
		return
	}

	if p.publish != nil {
		p.publish(value)
	}
}
