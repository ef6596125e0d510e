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

package sizing

import (
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/triparty-labs/perp-quoting-go/internal/common"
	"github.com/triparty-labs/perp-quoting-go/internal/quotes"
	"github.com/triparty-labs/perp-quoting-go/internal/rfq"
)

// Inputs is the snapshot the affordability check computes against
type Inputs struct {
	Amount     decimal.Decimal
	EntryPrice decimal.Decimal
	Method     common.Method
	Rfq        rfq.RfqRequest
	Balance    string // raw balance oracle read, "0" on a failed read
	Quotes     []quotes.Quote
	Leverage   int
}

// Result is the derived affordability and sizing state for the current
// intent. Decimal fields are exact; BestBid and BestAsk stay wire strings.
type Result struct {
	SufficientBalance        bool
	MaxAmountOpenable        decimal.Decimal
	IsBalanceZero            bool
	IsAmountMinAmount        bool
	NoQuotesReceived         bool
	MinAmount                decimal.Decimal
	RecommendedStep          decimal.Decimal
	CanBuyMinAmount          bool
	RecommendedAmount        decimal.Decimal
	BestBid                  string
	BestAsk                  string
	MaxAmount                decimal.Decimal
	SelectedQuoteUserAddress string
	LastValidBalance         string
}

// Equal reports structural equality; publication is suppressed for
// results that match the previous one.
func (r Result) Equal(other Result) bool {
	return r.SufficientBalance == other.SufficientBalance &&
		r.MaxAmountOpenable.Equal(other.MaxAmountOpenable) &&
		r.IsBalanceZero == other.IsBalanceZero &&
		r.IsAmountMinAmount == other.IsAmountMinAmount &&
		r.NoQuotesReceived == other.NoQuotesReceived &&
		r.MinAmount.Equal(other.MinAmount) &&
		r.RecommendedStep.Equal(other.RecommendedStep) &&
		r.CanBuyMinAmount == other.CanBuyMinAmount &&
		r.RecommendedAmount.Equal(other.RecommendedAmount) &&
		r.BestBid == other.BestBid &&
		r.BestAsk == other.BestAsk &&
		r.MaxAmount.Equal(other.MaxAmount) &&
		r.SelectedQuoteUserAddress == other.SelectedQuoteUserAddress &&
		r.LastValidBalance == other.LastValidBalance
}

// safeResult zeroes the sizing outputs while keeping flags conservative
func safeResult(lastValidBalance string) Result {
	return Result{
		IsBalanceZero:            true,
		IsAmountMinAmount:        true,
		NoQuotesReceived:         true,
		BestBid:                  "0",
		BestAsk:                  "0",
		SelectedQuoteUserAddress: common.DefaultCounterpartyAddress,
		LastValidBalance:         lastValidBalance,
	}
}

// Engine computes open-quote affordability. It carries the last known
// non-zero balance so a transient zero read from a flaky oracle does not
// re-zero sizing; staleness is deliberately preferred over flapping.
type Engine struct {
	lastValidBalance string
}

// NewEngine creates an affordability engine with no balance history
func NewEngine() *Engine {
	return &Engine{lastValidBalance: "0"}
}

// balanceToUse applies the last-known-good fallback to a raw oracle read
func (e *Engine) balanceToUse(raw string) string {
	if raw != "0" {
		e.lastValidBalance = raw
		return raw
	}
	return e.lastValidBalance
}

// Check computes the affordability result for the given snapshot. Any
// internal failure degrades to a safe all-zero result rather than
// propagating.
func (e *Engine) Check(in Inputs) (result Result) {
	defer func() {
		if r := recover(); r != nil {
			zap.L().Error("Affordability check failed, returning safe result", zap.Any("cause", r))
			result = safeResult(e.lastValidBalance)
		}
	}()

	balance := common.SafeDecimal(e.balanceToUse(in.Balance))
	return compute(in, balance, e.lastValidBalance)
}

// compute is the pure affordability calculation
func compute(in Inputs, balance decimal.Decimal, lastValidBalance string) Result {
	collateral := collateralRequirement(in.Method, in.Rfq)

	minAmount := quotes.MinQuotedAmount(in.Quotes)
	step := minAmount

	maxOpenable := maxAmountOpenable(balance, in.EntryPrice, collateral, step)

	isAmountMinAmount := in.Amount.LessThan(minAmount)
	canBuyMinAmount := isAmountMinAmount &&
		minAmount.Mul(in.EntryPrice).Mul(collateral).LessThanOrEqual(balance)

	recommended := recommendedAmount(in.Amount, minAmount, maxOpenable, step)

	bestBid, bestAsk := quotes.BestBidAsk(in.Quotes)

	selectedAddress := common.DefaultCounterpartyAddress
	if selected, ok := quotes.BestForSide(in.Quotes, in.Method, in.Amount); ok && selected.UserAddress != "" {
		selectedAddress = selected.UserAddress
	}

	return Result{
		SufficientBalance:        in.Amount.LessThanOrEqual(maxOpenable),
		MaxAmountOpenable:        maxOpenable,
		IsBalanceZero:            balance.IsZero(),
		IsAmountMinAmount:        isAmountMinAmount,
		NoQuotesReceived:         len(in.Quotes) == 0,
		MinAmount:                minAmount,
		RecommendedStep:          step,
		CanBuyMinAmount:          canBuyMinAmount,
		RecommendedAmount:        recommended,
		BestBid:                  bestBid,
		BestAsk:                  bestAsk,
		MaxAmount:                quotes.MaxQuotedAmount(in.Quotes),
		SelectedQuoteUserAddress: selectedAddress,
		LastValidBalance:         lastValidBalance,
	}
}

// collateralRequirement reads the per-unit margin for the taken leg: the
// long leg against counterparty A for a buy, the short leg against
// counterparty B for a sell.
func collateralRequirement(method common.Method, req rfq.RfqRequest) decimal.Decimal {
	if method == common.MethodBuy {
		return common.SafeDecimal(req.LImA).Add(common.SafeDecimal(req.LDfA))
	}
	return common.SafeDecimal(req.SImB).Add(common.SafeDecimal(req.SDfB))
}

// maxAmountOpenable is the largest amount the balance affords at the
// margin requirement, rounded down to a whole number of steps. A zero
// entry price, collateral, or step means sizing is currently impossible.
func maxAmountOpenable(balance, entryPrice, collateral, step decimal.Decimal) decimal.Decimal {
	if entryPrice.IsZero() || collateral.IsZero() || step.IsZero() {
		return decimal.Zero
	}
	raw := balance.Div(collateral.Mul(entryPrice))
	return common.StepFloor(raw, step)
}

// recommendedAmount snaps the requested amount into the tradeable range:
// identity at the bounds, otherwise down to the nearest step above the
// minimum.
func recommendedAmount(amount, minAmount, maxAmount, step decimal.Decimal) decimal.Decimal {
	if amount.LessThanOrEqual(minAmount) {
		return minAmount
	}
	if amount.GreaterThanOrEqual(maxAmount) {
		return maxAmount
	}
	if step.IsZero() {
		return minAmount
	}
	stepsAboveMin := amount.Sub(minAmount).Div(step).Floor()
	return decimal.Min(minAmount.Add(stepsAboveMin.Mul(step)), maxAmount)
}
