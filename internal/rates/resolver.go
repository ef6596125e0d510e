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

package rates

import (
	"fmt"
	"sync"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/triparty-labs/perp-quoting-go/internal/common"
)

// ConfigNotFoundError reports that no rate row matched a leg of a pair
// config lookup. RFQ build cycles treat it as retryable.
type ConfigNotFoundError struct {
	Ticker   string
	Side     string
	Leverage int
}

func (e *ConfigNotFoundError) Error() string {
	return fmt.Sprintf("no rate row for ticker %s side %s leverage %d", e.Ticker, e.Side, e.Leverage)
}

// Resolver answers per-pair margin, funding, and notional-cap questions
// from the static rate table. Tables load lazily on first use and are
// immutable until Refresh.
type Resolver struct {
	mu       sync.Mutex
	loader   TableLoader
	assets   []Asset
	prefixes PrefixTable
	loaded   bool
}

// NewResolver creates a resolver backed by the given loader
func NewResolver(loader TableLoader) *Resolver {
	return &Resolver{loader: loader}
}

func (r *Resolver) ensureLoaded() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.loaded {
		return nil
	}
	return r.reloadLocked()
}

func (r *Resolver) reloadLocked() error {
	assets, err := r.loader.LoadAssets()
	if err != nil {
		return err
	}
	prefixes, err := r.loader.LoadPrefixes()
	if err != nil {
		return err
	}

	r.assets = assets
	r.prefixes = prefixes
	r.loaded = true
	return nil
}

// Refresh reloads both tables. Called on the slow config refresh cadence;
// a failed reload keeps the previous tables.
func (r *Resolver) Refresh() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.reloadLocked(); err != nil {
		zap.L().Warn("Rate table refresh failed, keeping previous tables", zap.Error(err))
		return err
	}
	return nil
}

func (r *Resolver) findAsset(proxyTicker string) (Asset, bool) {
	for _, a := range r.assets {
		if a.ProxyTicker == proxyTicker {
			return a, true
		}
	}
	return Asset{}, false
}

// ResolveRow returns the first rate row for (ticker, side, leverage) whose
// MaxNotional strictly exceeds the requested notional. A nil MaxNotional
// is unbounded and always matches.
func (r *Resolver) ResolveRow(ticker, side string, leverage int, notional decimal.Decimal) (RateRow, bool) {
	if err := r.ensureLoaded(); err != nil {
		zap.L().Error("Failed to load rate table", zap.Error(err))
		return RateRow{}, false
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	asset, ok := r.findAsset(ticker)
	if !ok {
		return RateRow{}, false
	}

	for _, row := range asset.Notional {
		if row.Side != side || row.Leverage != leverage {
			continue
		}
		if row.MaxNotional == nil || row.MaxNotional.GreaterThan(notional) {
			return row, true
		}
	}
	return RateRow{}, false
}

// ResolvePairConfig blends the rate rows of both legs of a pair into the
// pessimistic combined config: caps take the tighter leg, margins and
// locks take the looser one. Leg B is looked up on the opposite side.
func (r *Resolver) ResolvePairConfig(tickerA, tickerB, side string, leverage int, notional decimal.Decimal) (RateRow, error) {
	oppositeSide := common.SideShort
	if side == common.SideShort {
		oppositeSide = common.SideLong
	}

	rowA, okA := r.ResolveRow(tickerA, side, leverage, notional)
	rowB, okB := r.ResolveRow(tickerB, oppositeSide, leverage, notional)

	if !okA {
		return RateRow{}, &ConfigNotFoundError{Ticker: tickerA, Side: side, Leverage: leverage}
	}
	if !okB {
		return RateRow{}, &ConfigNotFoundError{Ticker: tickerB, Side: oppositeSide, Leverage: leverage}
	}

	return blendRows(rowA, rowB, side, leverage), nil
}

func blendRows(rowA, rowB RateRow, side string, leverage int) RateRow {
	// Funding nets across the legs: when leg B pays the APR its rate
	// offsets leg A's instead of adding to it.
	funding := rowA.Funding
	if rowB.IsAPayingApr {
		funding = funding.Sub(rowB.Funding)
	} else {
		funding = funding.Add(rowB.Funding)
	}

	return RateRow{
		Side:           side,
		Leverage:       leverage,
		MaxNotional:    minBound(rowA.MaxNotional, rowB.MaxNotional),
		MinAmount:      decimal.Max(rowA.MinAmount, rowB.MinAmount),
		MaxAmount:      minBound(rowA.MaxAmount, rowB.MaxAmount),
		Precision:      minInt(rowA.Precision, rowB.Precision),
		ImA:            decimal.Max(rowA.ImA, rowB.ImA),
		ImB:            decimal.Max(rowA.ImB, rowB.ImB),
		DfA:            decimal.Max(rowA.DfA, rowB.DfA),
		DfB:            decimal.Max(rowA.DfB, rowB.DfB),
		Ir:             decimal.Max(rowA.Ir, rowB.Ir),
		ExpiryA:        maxInt64(rowA.ExpiryA, rowB.ExpiryA),
		ExpiryB:        maxInt64(rowA.ExpiryB, rowB.ExpiryB),
		TimeLockA:      maxInt64(rowA.TimeLockA, rowB.TimeLockA),
		TimeLockB:      maxInt64(rowA.TimeLockB, rowB.TimeLockB),
		MaxConfidence:  minInt64(rowA.MaxConfidence, rowB.MaxConfidence),
		MaxDelay:       minInt64(rowA.MaxDelay, rowB.MaxDelay),
		KycType:        minInt64(rowA.KycType, rowB.KycType),
		CType:          minInt64(rowA.CType, rowB.CType),
		ForceCloseType: minInt64(rowA.ForceCloseType, rowB.ForceCloseType),
		KycAddress:     firstNonEmpty(rowA.KycAddress, rowB.KycAddress),
		Type:           firstNonEmpty(rowA.Type, rowB.Type),
		BrokerFee:      rowA.BrokerFee.Add(rowB.BrokerFee),
		Funding:        funding,
		IsAPayingApr:   rowA.IsAPayingApr,
	}
}

// MaxNotionalForMaxLeverage returns the largest MaxNotional among rows for
// (ticker, side) at brackets strictly below maxLeverage. Returns nil when
// no bounded row qualifies.
func (r *Resolver) MaxNotionalForMaxLeverage(ticker, side string, maxLeverage int) *decimal.Decimal {
	if err := r.ensureLoaded(); err != nil {
		zap.L().Error("Failed to load rate table", zap.Error(err))
		return nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	asset, ok := r.findAsset(ticker)
	if !ok {
		return nil
	}

	var best *decimal.Decimal
	for _, row := range asset.Notional {
		if row.Side != side || row.Leverage > maxLeverage-1 {
			continue
		}
		if row.MaxNotional == nil {
			continue
		}
		if best == nil || row.MaxNotional.GreaterThan(*best) {
			v := *row.MaxNotional
			best = &v
		}
	}
	return best
}

// AdjustedQuantities is the result of clamping a requested size to the
// leverage-safe notional caps of both legs.
type AdjustedQuantities struct {
	ShortQty decimal.Decimal
	LongQty  decimal.Decimal
}

// AdjustQuantities clamps each requested quantity so that price * quantity
// stays within the tighter of the two legs' notional caps one bracket
// below maxLeverage. The headroom bracket is intentional: it leaves a
// margin against rounding at the stated max leverage.
func (r *Resolver) AdjustQuantities(bid, ask, shortQty, longQty decimal.Decimal, tickerA, tickerB string, maxLeverage int) AdjustedQuantities {
	capLongA := r.MaxNotionalForMaxLeverage(tickerA, common.SideLong, maxLeverage)
	capLongB := r.MaxNotionalForMaxLeverage(tickerB, common.SideShort, maxLeverage)
	capShortB := r.MaxNotionalForMaxLeverage(tickerB, common.SideLong, maxLeverage)
	capShortA := r.MaxNotionalForMaxLeverage(tickerA, common.SideShort, maxLeverage)

	if capLongA != nil && capLongB != nil && !bid.IsZero() {
		bidNotional := common.Notional(shortQty, bid)
		capLong := decimal.Min(*capLongA, *capLongB)
		if bidNotional.GreaterThan(capLong) {
			shortQty = capLong.Div(bid)
		}
	}

	if capShortA != nil && capShortB != nil && !ask.IsZero() {
		askNotional := common.Notional(longQty, ask)
		capShort := decimal.Min(*capShortA, *capShortB)
		if askNotional.GreaterThan(capShort) {
			longQty = capShort.Div(ask)
		}
	}

	return AdjustedQuantities{ShortQty: shortQty, LongQty: longQty}
}

// AllProxyTickers lists every proxy ticker in the loaded table
func (r *Resolver) AllProxyTickers() []string {
	if err := r.ensureLoaded(); err != nil {
		return nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	tickers := make([]string, 0, len(r.assets))
	for _, a := range r.assets {
		tickers = append(tickers, a.ProxyTicker)
	}
	return tickers
}

func minBound(a, b *decimal.Decimal) *decimal.Decimal {
	if a == nil {
		return copyBound(b)
	}
	if b == nil {
		return copyBound(a)
	}
	v := decimal.Min(*a, *b)
	return &v
}

func copyBound(v *decimal.Decimal) *decimal.Decimal {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func minInt64(a, b int64) int64 {
	if a < b {
		return a
	}
	return b
}

func maxInt64(a, b int64) int64 {
	if a > b {
		return a
	}
	return b
}

func firstNonEmpty(a, b string) string {
	if a != "" {
		return a
	}
	return b
}
