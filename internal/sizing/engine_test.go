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
	"testing"

	"github.com/shopspring/decimal"

	"github.com/triparty-labs/perp-quoting-go/internal/common"
	"github.com/triparty-labs/perp-quoting-go/internal/quotes"
	"github.com/triparty-labs/perp-quoting-go/internal/rfq"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// margin rfq fixture: buy collateral = lImA + lDfA = 0.06,
// sell collateral = sImB + sDfB = 0.08
func testRfq() rfq.RfqRequest {
	return rfq.RfqRequest{
		LImA: "0.05", LDfA: "0.01",
		LImB: "0.05", LDfB: "0.01",
		SImA: "0.06", SDfA: "0.02",
		SImB: "0.06", SDfB: "0.02",
	}
}

func quote(addr, sPrice, lPrice, minAmount, maxAmount string) quotes.Quote {
	return quotes.Quote{
		UserAddress: addr,
		SPrice:      sPrice,
		LPrice:      lPrice,
		MinAmount:   minAmount,
		MaxAmount:   maxAmount,
	}
}

func TestCheckNoQuotes(t *testing.T) {
	e := NewEngine()

	result := e.Check(Inputs{
		Amount:     dec("5"),
		EntryPrice: dec("150"),
		Method:     common.MethodBuy,
		Rfq:        testRfq(),
		Balance:    "1000",
		Quotes:     nil,
	})

	if !result.NoQuotesReceived {
		t.Error("noQuotesReceived should be true")
	}
	if !result.MinAmount.IsZero() {
		t.Errorf("minAmount = %s, want 0", result.MinAmount)
	}
	if !result.MaxAmountOpenable.IsZero() {
		t.Errorf("maxAmountOpenable = %s, want 0", result.MaxAmountOpenable)
	}
	if result.BestBid != "0" || result.BestAsk != "0" {
		t.Errorf("best bid/ask = %s/%s, want 0/0", result.BestBid, result.BestAsk)
	}
	if result.SelectedQuoteUserAddress != common.DefaultCounterpartyAddress {
		t.Errorf("selected address = %s, want default", result.SelectedQuoteUserAddress)
	}
}

func TestCheckSizing(t *testing.T) {
	e := NewEngine()

	// balance 900, collateral 0.06, price 150: raw max = 900/9 = 100,
	// step 10 -> 100
	result := e.Check(Inputs{
		Amount:     dec("50"),
		EntryPrice: dec("150"),
		Method:     common.MethodBuy,
		Rfq:        testRfq(),
		Balance:    "900",
		Quotes: []quotes.Quote{
			quote("0xmaker1", "150", "151", "10", "400"),
		},
	})

	if !result.MaxAmountOpenable.Equal(dec("100")) {
		t.Errorf("maxAmountOpenable = %s, want 100", result.MaxAmountOpenable)
	}
	if !result.SufficientBalance {
		t.Error("sufficientBalance should be true for amount 50")
	}
	if !result.RecommendedStep.Equal(dec("10")) {
		t.Errorf("recommendedStep = %s, want 10", result.RecommendedStep)
	}
	if result.IsBalanceZero {
		t.Error("isBalanceZero should be false")
	}
	if result.SelectedQuoteUserAddress != "0xmaker1" {
		t.Errorf("selected address = %s, want 0xmaker1", result.SelectedQuoteUserAddress)
	}
}

func TestMaxAmountOpenableIsMultipleOfStep(t *testing.T) {
	tests := []struct {
		name       string
		balance    string
		entryPrice string
		step       string
	}{
		{name: "even fit", balance: "900", entryPrice: "150", step: "10"},
		{name: "ragged fit", balance: "1000", entryPrice: "157", step: "7"},
		{name: "tiny step", balance: "12345", entryPrice: "3.14", step: "0.5"},
	}

	collateral := dec("0.06")
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			max := maxAmountOpenable(dec(tt.balance), dec(tt.entryPrice), collateral, dec(tt.step))

			if max.IsNegative() {
				t.Fatalf("maxAmountOpenable is negative: %s", max)
			}
			steps := max.Div(dec(tt.step))
			if !steps.Equal(steps.Floor()) {
				t.Errorf("max %s is not a whole multiple of step %s", max, tt.step)
			}
			raw := dec(tt.balance).Div(collateral.Mul(dec(tt.entryPrice)))
			if max.GreaterThan(raw) {
				t.Errorf("max %s exceeds affordable raw %s", max, raw)
			}
		})
	}
}

func TestMaxAmountOpenableZeroDenominators(t *testing.T) {
	for _, tt := range []struct {
		name                            string
		entryPrice, collateral, stepVal string
	}{
		{name: "zero price", entryPrice: "0", collateral: "0.06", stepVal: "10"},
		{name: "zero collateral", entryPrice: "150", collateral: "0", stepVal: "10"},
		{name: "zero step", entryPrice: "150", collateral: "0.06", stepVal: "0"},
	} {
		t.Run(tt.name, func(t *testing.T) {
			max := maxAmountOpenable(dec("1000"), dec(tt.entryPrice), dec(tt.collateral), dec(tt.stepVal))
			if !max.IsZero() {
				t.Errorf("max = %s, want 0", max)
			}
		})
	}
}

func TestUnderMinimumButAffordable(t *testing.T) {
	e := NewEngine()

	// amount 5 < min 10; buying 10 costs 10*150*0.06 = 90 <= 900
	result := e.Check(Inputs{
		Amount:     dec("5"),
		EntryPrice: dec("150"),
		Method:     common.MethodBuy,
		Rfq:        testRfq(),
		Balance:    "900",
		Quotes: []quotes.Quote{
			quote("0xmaker1", "150", "151", "10", "400"),
		},
	})

	if !result.IsAmountMinAmount {
		t.Error("isAmountMinAmount should be true for amount below minimum")
	}
	if !result.CanBuyMinAmount {
		t.Error("canBuyMinAmount should be true when balance covers the minimum")
	}
	if !result.RecommendedAmount.Equal(dec("10")) {
		t.Errorf("recommendedAmount = %s, want minAmount 10", result.RecommendedAmount)
	}
}

func TestRecommendedAmount(t *testing.T) {
	tests := []struct {
		name     string
		amount   string
		min      string
		max      string
		step     string
		expected string
	}{
		{name: "below min snaps to min", amount: "5", min: "10", max: "100", step: "10", expected: "10"},
		{name: "above max snaps to max", amount: "500", min: "10", max: "100", step: "10", expected: "100"},
		{name: "mid snaps down to step", amount: "37", min: "10", max: "100", step: "10", expected: "30"},
		{name: "on step stays", amount: "40", min: "10", max: "100", step: "10", expected: "40"},
		{name: "zero step returns min", amount: "37", min: "10", max: "100", step: "0", expected: "10"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := recommendedAmount(dec(tt.amount), dec(tt.min), dec(tt.max), dec(tt.step))
			if !got.Equal(dec(tt.expected)) {
				t.Errorf("recommendedAmount = %s, want %s", got, tt.expected)
			}
		})
	}
}

func TestRecommendedAmountIdempotent(t *testing.T) {
	min, max, step := dec("10"), dec("100"), dec("10")

	for _, amount := range []string{"5", "37", "40", "99", "500"} {
		once := recommendedAmount(dec(amount), min, max, step)
		twice := recommendedAmount(once, min, max, step)
		if !once.Equal(twice) {
			t.Errorf("amount %s: f(f(x)) = %s, f(x) = %s", amount, twice, once)
		}
	}
}

func TestBalanceZeroFallback(t *testing.T) {
	e := NewEngine()

	inputs := Inputs{
		Amount:     dec("50"),
		EntryPrice: dec("150"),
		Method:     common.MethodBuy,
		Rfq:        testRfq(),
		Quotes: []quotes.Quote{
			quote("0xmaker1", "150", "151", "10", "400"),
		},
	}

	inputs.Balance = "900"
	first := e.Check(inputs)
	if first.IsBalanceZero {
		t.Fatal("isBalanceZero should be false for balance 900")
	}

	// A transient zero read keeps sizing on the last known balance
	inputs.Balance = "0"
	second := e.Check(inputs)

	if second.IsBalanceZero {
		t.Error("isBalanceZero should remain false after a transient zero read")
	}
	if !second.MaxAmountOpenable.Equal(first.MaxAmountOpenable) {
		t.Errorf("maxAmountOpenable = %s, want %s (computed against last valid balance)",
			second.MaxAmountOpenable, first.MaxAmountOpenable)
	}
	if second.LastValidBalance != "900" {
		t.Errorf("lastValidBalance = %s, want 900", second.LastValidBalance)
	}
}

func TestBalanceZeroWithNoHistory(t *testing.T) {
	e := NewEngine()

	result := e.Check(Inputs{
		Amount:     dec("50"),
		EntryPrice: dec("150"),
		Method:     common.MethodBuy,
		Rfq:        testRfq(),
		Balance:    "0",
		Quotes: []quotes.Quote{
			quote("0xmaker1", "150", "151", "10", "400"),
		},
	})

	if !result.IsBalanceZero {
		t.Error("isBalanceZero should be true with no prior non-zero reading")
	}
	if !result.MaxAmountOpenable.IsZero() {
		t.Errorf("maxAmountOpenable = %s, want 0", result.MaxAmountOpenable)
	}
}

func TestSellUsesShortLegCollateral(t *testing.T) {
	e := NewEngine()

	// sell collateral = 0.08: raw max = 900/(0.08*150) = 75, step 10 -> 70
	result := e.Check(Inputs{
		Amount:     dec("10"),
		EntryPrice: dec("150"),
		Method:     common.MethodSell,
		Rfq:        testRfq(),
		Balance:    "900",
		Quotes: []quotes.Quote{
			quote("0xmaker1", "150", "151", "10", "400"),
		},
	})

	if !result.MaxAmountOpenable.Equal(dec("70")) {
		t.Errorf("maxAmountOpenable = %s, want 70", result.MaxAmountOpenable)
	}
}

func TestMalformedQuoteFieldsDegradeToZero(t *testing.T) {
	e := NewEngine()

	result := e.Check(Inputs{
		Amount:     dec("50"),
		EntryPrice: dec("150"),
		Method:     common.MethodBuy,
		Rfq:        testRfq(),
		Balance:    "900",
		Quotes: []quotes.Quote{
			quote("0xmaker1", "not-a-price", "151", "garbage", "400"),
		},
	})

	// min amount parses to zero, so the step is zero and sizing is off
	if !result.MaxAmountOpenable.IsZero() {
		t.Errorf("maxAmountOpenable = %s, want 0 for malformed quote", result.MaxAmountOpenable)
	}
	if result.NoQuotesReceived {
		t.Error("the malformed quote still counts as received")
	}
}

func TestSchedulerSuppressesIdenticalResults(t *testing.T) {
	e := NewEngine()

	inputs := Inputs{
		Amount:     dec("50"),
		EntryPrice: dec("150"),
		Method:     common.MethodBuy,
		Rfq:        testRfq(),
		Balance:    "900",
		Quotes: []quotes.Quote{
			quote("0xmaker1", "150", "151", "10", "400"),
		},
	}

	var published []Result
	s := NewScheduler(e, func() Inputs { return inputs }, func(r Result) {
		published = append(published, r)
	}, DefaultDebounce)

	s.Tick()
	s.Tick()
	s.Tick()

	if len(published) != 1 {
		t.Fatalf("published %d results for identical inputs, want 1", len(published))
	}

	// A material change publishes again
	inputs.Balance = "450"
	s.Tick()

	if len(published) != 2 {
		t.Fatalf("published %d results after balance change, want 2", len(published))
	}
}
