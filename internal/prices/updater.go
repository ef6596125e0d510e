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

// Package prices derives the indicative pair price from the per-leg
// broker feed and keeps it fresh on a short poll.
package prices

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/triparty-labs/perp-quoting-go/internal/common"
	"github.com/triparty-labs/perp-quoting-go/internal/rates"
	"github.com/triparty-labs/perp-quoting-go/internal/rfq"
)

// DefaultInterval is the poll cadence for the price feed
const DefaultInterval = 800 * time.Millisecond

// MarketSpread is applied toward the taker on market orders
var MarketSpread = decimal.RequireFromString("0.0005")

// PricePoint is one leg's quote from the upstream feed
type PricePoint struct {
	BidPrice string `json:"bidPrice"`
	AskPrice string `json:"askPrice"`
}

// PairPrice is the derived cross price for a symbol pair
type PairPrice struct {
	Bid decimal.Decimal
	Ask decimal.Decimal
}

// Source serves leg prices by prefixed ticker
type Source interface {
	GetPrices(ctx context.Context, symbols []string, token string) (map[string]PricePoint, error)
}

// Query is the live input snapshot a price tick works from. Market
// orders shade the published price toward the taker.
type Query struct {
	SymbolPair string
	Market     bool
	Method     common.Method
}

// ComputePair crosses the two leg prices: pair bid is bid over bid, pair
// ask is ask over ask. A zero or missing denominator is an error.
func ComputePair(leg1, leg2 PricePoint) (PairPrice, error) {
	bid1 := common.SafeDecimal(leg1.BidPrice)
	bid2 := common.SafeDecimal(leg2.BidPrice)
	ask1 := common.SafeDecimal(leg1.AskPrice)
	ask2 := common.SafeDecimal(leg2.AskPrice)

	if bid2.IsZero() || ask2.IsZero() {
		return PairPrice{}, fmt.Errorf("second leg price is zero: bid=%s ask=%s", leg2.BidPrice, leg2.AskPrice)
	}

	return PairPrice{
		Bid: bid1.Div(bid2),
		Ask: ask1.Div(ask2),
	}, nil
}

// MarketAdjust shades the pair price toward the taker: buyers see the
// ask plus spread as their bid, sellers see the bid minus spread as
// their ask.
func MarketAdjust(p PairPrice, method common.Method) PairPrice {
	one := decimal.NewFromInt(1)
	if method == common.MethodBuy {
		p.Bid = p.Ask.Mul(one.Add(MarketSpread))
	} else {
		p.Ask = p.Bid.Mul(one.Sub(MarketSpread))
	}
	return p
}

// UpdaterConfig wires an Updater
type UpdaterConfig struct {
	Source   Source
	Resolver *rates.Resolver
	Session  rfq.Session
	Query    func() Query
	Publish  func(PairPrice)
	Interval time.Duration
}

// Updater polls the feed and publishes the derived pair price
type Updater struct {
	source   Source
	resolver *rates.Resolver
	session  rfq.Session
	query    func() Query
	publish  func(PairPrice)
	interval time.Duration
}

func NewUpdater(cfg UpdaterConfig) *Updater {
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultInterval
	}
	return &Updater{
		source:   cfg.Source,
		resolver: cfg.Resolver,
		session:  cfg.Session,
		query:    cfg.Query,
		publish:  cfg.Publish,
		interval: cfg.Interval,
	}
}

// Run polls until the context is canceled
func (u *Updater) Run(ctx context.Context) {
	ticker := time.NewTicker(u.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			u.Tick(ctx)
		}
	}
}

// Tick fetches both legs and publishes one pair price. Failures are
// logged and the previous published price stands.
func (u *Updater) Tick(ctx context.Context) {
	token := u.session.Token()
	if token == "" {
		return
	}

	q := u.query()
	leg1, leg2, err := u.resolver.FormatSymbols(q.SymbolPair)
	if err != nil {
		zap.L().Error("cannot resolve symbol pair for prices",
			zap.String("pair", q.SymbolPair), zap.Error(err))
		return
	}

	points, err := u.source.GetPrices(ctx, []string{leg1, leg2}, token)
	if err != nil {
		zap.L().Warn("price fetch failed", zap.Error(err))
		return
	}

	pair, err := ComputePair(points[leg1], points[leg2])
	if err != nil {
		zap.L().Warn("cannot derive pair price",
			zap.String("pair", q.SymbolPair), zap.Error(err))
		return
	}

	if q.Market {
		pair = MarketAdjust(pair, q.Method)
	}

	if u.publish != nil {
		u.publish(pair)
	}
}
