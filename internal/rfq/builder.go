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
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/triparty-labs/perp-quoting-go/internal/common"
	"github.com/triparty-labs/perp-quoting-go/internal/rates"
)

// DefaultExpiration is the RFQ validity window sent to the backend (ms)
const DefaultExpiration = "10000"

// epsilonNotional keys the config lookup into the smallest bracket when a
// real notional is already known from the requested amount.
var epsilonNotional = decimal.RequireFromString("0.00000001")

// Builder derives RFQ payloads from trade intent using the rate table
type Builder struct {
	rates *rates.Resolver
}

// NewBuilder creates an RFQ builder over the given resolver
func NewBuilder(resolver *rates.Resolver) *Builder {
	return &Builder{rates: resolver}
}

// BuildRfq assembles the two-sided RFQ for the current intent. A zero
// requested amount substitutes a nominal 1 so the notional lookup has
// something to resolve against.
func (b *Builder) BuildRfq(intent Intent) (RfqRequest, error) {
	tickerA, tickerB, err := b.rates.FormatSymbols(intent.SymbolPair)
	if err != nil {
		return RfqRequest{}, err
	}

	amount := intent.Amount
	if amount.IsZero() {
		amount = decimal.NewFromInt(1)
	}

	adjusted := b.rates.AdjustQuantities(
		intent.EntryPrice, intent.EntryPrice,
		amount, amount,
		tickerA, tickerB, intent.Leverage,
	)

	longNotional := epsilonNotional
	shortNotional := epsilonNotional
	if intent.Amount.IsZero() {
		longNotional = common.Notional(adjusted.LongQty, intent.EntryPrice)
		shortNotional = common.Notional(adjusted.ShortQty, intent.EntryPrice)
	}

	longCfg, err := b.rates.ResolvePairConfig(tickerA, tickerB, common.SideLong, intent.Leverage, longNotional)
	if err != nil {
		return RfqRequest{}, err
	}

	shortCfg, err := b.rates.ResolvePairConfig(tickerA, tickerB, common.SideShort, intent.Leverage, shortNotional)
	if err != nil {
		return RfqRequest{}, err
	}

	// Funding sign is a direction indicator elsewhere; the interest rate
	// on the wire is a magnitude.
	price := intent.EntryPrice.String()

	return RfqRequest{
		Expiration:    DefaultExpiration,
		AssetAId:      tickerA,
		AssetBId:      tickerB,
		SPrice:        price,
		SQuantity:     adjusted.ShortQty.String(),
		SInterestRate: shortCfg.Funding.Abs().String(),
		SIsPayingApr:  true,
		SImA:          shortCfg.ImA.String(),
		SImB:          shortCfg.ImB.String(),
		SDfA:          shortCfg.DfA.String(),
		SDfB:          shortCfg.DfB.String(),
		SExpirationA:  strconv.FormatInt(shortCfg.ExpiryA, 10),
		SExpirationB:  strconv.FormatInt(shortCfg.ExpiryB, 10),
		STimelockA:    strconv.FormatInt(shortCfg.TimeLockA, 10),
		STimelockB:    strconv.FormatInt(shortCfg.TimeLockB, 10),
		LPrice:        price,
		LQuantity:     adjusted.LongQty.String(),
		LInterestRate: longCfg.Funding.Abs().String(),
		LIsPayingApr:  true,
		LImA:          longCfg.ImA.String(),
		LImB:          longCfg.ImB.String(),
		LDfA:          longCfg.DfA.String(),
		LDfB:          longCfg.DfB.String(),
		LExpirationA:  strconv.FormatInt(longCfg.ExpiryA, 10),
		LExpirationB:  strconv.FormatInt(longCfg.ExpiryB, 10),
		LTimelockA:    strconv.FormatInt(longCfg.TimeLockA, 10),
		LTimelockB:    strconv.FormatInt(longCfg.TimeLockB, 10),
	}, nil
}

// sanitize replaces literal zero prices and quantities with a nominal 1.
// The backend rejects zero-valued RFQs outright; this is placeholder
// avoidance, not a real value.
func sanitize(req RfqRequest) RfqRequest {
	if req.SPrice == "0" {
		req.SPrice = "1"
	}
	if req.LPrice == "0" {
		req.LPrice = "1"
	}
	if req.SQuantity == "0" {
		req.SQuantity = "1"
	}
	if req.LQuantity == "0" {
		req.LQuantity = "1"
	}
	return req
}
