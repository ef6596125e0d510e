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
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/triparty-labs/perp-quoting-go/internal/common"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func decPtr(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func testLoader() StaticLoader {
	return StaticLoader{
		Assets: []Asset{
			{
				ProxyTicker:  "forex.EURUSD",
				SourceTicker: "EURUSD",
				Notional: []RateRow{
					{
						Side: common.SideLong, Leverage: 10, MaxNotional: decPtr("100000"),
						MinAmount: dec("10"), ImA: dec("0.05"), ImB: dec("0.05"),
						DfA: dec("0.01"), DfB: dec("0.01"), Funding: dec("0.02"),
						ExpiryA: 60, ExpiryB: 60, TimeLockA: 1440, TimeLockB: 1440,
						Precision: 5, IsAPayingApr: true,
					},
					{
						Side: common.SideLong, Leverage: 10, MaxNotional: nil,
						MinAmount: dec("100"), ImA: dec("0.10"), ImB: dec("0.10"),
						DfA: dec("0.02"), DfB: dec("0.02"), Funding: dec("0.02"),
						Precision: 5,
					},
					{
						Side: common.SideShort, Leverage: 10, MaxNotional: decPtr("80000"),
						MinAmount: dec("10"), ImA: dec("0.04"), ImB: dec("0.06"),
						DfA: dec("0.01"), DfB: dec("0.01"), Funding: dec("0.01"),
						Precision: 5,
					},
					{Side: common.SideLong, Leverage: 9, MaxNotional: decPtr("50000"), Precision: 5},
					{Side: common.SideShort, Leverage: 9, MaxNotional: decPtr("40000"), Precision: 5},
				},
			},
			{
				ProxyTicker:  "stock.AAPL",
				SourceTicker: "AAPL",
				Notional: []RateRow{
					{
						Side: common.SideLong, Leverage: 10, MaxNotional: decPtr("60000"),
						MinAmount: dec("25"), ImA: dec("0.08"), ImB: dec("0.08"),
						DfA: dec("0.02"), DfB: dec("0.02"), Funding: dec("0.03"),
						ExpiryA: 120, ExpiryB: 30, TimeLockA: 720, TimeLockB: 720,
						Precision: 3, IsAPayingApr: true,
					},
					{
						Side: common.SideShort, Leverage: 10, MaxNotional: decPtr("60000"),
						MinAmount: dec("25"), ImA: dec("0.08"), ImB: dec("0.08"),
						DfA: dec("0.02"), DfB: dec("0.02"), Funding: dec("-0.03"),
						Precision: 3, IsAPayingApr: true,
					},
					{Side: common.SideLong, Leverage: 9, MaxNotional: decPtr("30000"), Precision: 3},
					{Side: common.SideShort, Leverage: 9, MaxNotional: decPtr("30000"), Precision: 3},
				},
			},
		},
		Prefixes: PrefixTable{
			"forex.": {"EURUSD": {}, "GBPUSD": {}},
			"stock.": {"AAPL": {}, "MSFT": {}},
		},
	}
}

func TestResolveRow(t *testing.T) {
	r := NewResolver(testLoader())

	tests := []struct {
		name        string
		ticker      string
		side        string
		leverage    int
		notional    string
		wantFound   bool
		wantMinAmt  string
		wantBounded bool
	}{
		{
			name:   "under first bracket cap",
			ticker: "forex.EURUSD", side: common.SideLong, leverage: 10,
			notional: "50000", wantFound: true, wantMinAmt: "10", wantBounded: true,
		},
		{
			name:   "over first cap falls to unbounded row",
			ticker: "forex.EURUSD", side: common.SideLong, leverage: 10,
			notional: "200000", wantFound: true, wantMinAmt: "100", wantBounded: false,
		},
		{
			name:   "notional equal to cap does not match",
			ticker: "forex.EURUSD", side: common.SideShort, leverage: 10,
			notional: "80000", wantFound: false,
		},
		{
			name:   "unknown ticker",
			ticker: "forex.XAUUSD", side: common.SideLong, leverage: 10,
			notional: "1", wantFound: false,
		},
		{
			name:   "unknown leverage bracket",
			ticker: "forex.EURUSD", side: common.SideLong, leverage: 7,
			notional: "1", wantFound: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			row, found := r.ResolveRow(tt.ticker, tt.side, tt.leverage, dec(tt.notional))
			if found != tt.wantFound {
				t.Fatalf("found = %v, want %v", found, tt.wantFound)
			}
			if !found {
				return
			}
			if !row.MinAmount.Equal(dec(tt.wantMinAmt)) {
				t.Errorf("minAmount = %s, want %s", row.MinAmount, tt.wantMinAmt)
			}
			if (row.MaxNotional != nil) != tt.wantBounded {
				t.Errorf("bounded = %v, want %v", row.MaxNotional != nil, tt.wantBounded)
			}
		})
	}
}

func TestResolvePairConfig(t *testing.T) {
	r := NewResolver(testLoader())

	cfg, err := r.ResolvePairConfig("stock.AAPL", "forex.EURUSD", common.SideLong, 10, dec("1000"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Caps take the tighter leg
	if cfg.MaxNotional == nil || !cfg.MaxNotional.Equal(dec("60000")) {
		t.Errorf("maxNotional = %v, want 60000", cfg.MaxNotional)
	}

	// Margins take the looser leg: AAPL long (0.08) vs EURUSD short (0.04/0.06)
	if !cfg.ImA.Equal(dec("0.08")) {
		t.Errorf("imA = %s, want 0.08", cfg.ImA)
	}
	if !cfg.ImB.Equal(dec("0.08")) {
		t.Errorf("imB = %s, want 0.08", cfg.ImB)
	}

	// Min amount takes the larger leg
	if !cfg.MinAmount.Equal(dec("25")) {
		t.Errorf("minAmount = %s, want 25", cfg.MinAmount)
	}

	// Expiries and locks take the longer leg
	if cfg.ExpiryA != 120 {
		t.Errorf("expiryA = %d, want 120", cfg.ExpiryA)
	}
	if cfg.TimeLockA != 1440 {
		t.Errorf("timeLockA = %d, want 1440", cfg.TimeLockA)
	}
}

func TestResolvePairConfigMaxNotionalNeverExceedsLegs(t *testing.T) {
	r := NewResolver(testLoader())

	cfg, err := r.ResolvePairConfig("stock.AAPL", "forex.EURUSD", common.SideShort, 10, dec("1000"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	rowA, _ := r.ResolveRow("stock.AAPL", common.SideShort, 10, dec("1000"))
	rowB, _ := r.ResolveRow("forex.EURUSD", common.SideLong, 10, dec("1000"))

	if cfg.MaxNotional == nil {
		t.Fatal("expected bounded maxNotional")
	}
	if rowA.MaxNotional != nil && cfg.MaxNotional.GreaterThan(*rowA.MaxNotional) {
		t.Errorf("maxNotional %s exceeds leg A cap %s", cfg.MaxNotional, rowA.MaxNotional)
	}
	if rowB.MaxNotional != nil && cfg.MaxNotional.GreaterThan(*rowB.MaxNotional) {
		t.Errorf("maxNotional %s exceeds leg B cap %s", cfg.MaxNotional, rowB.MaxNotional)
	}
}

func TestResolvePairConfigNotFound(t *testing.T) {
	r := NewResolver(testLoader())

	_, err := r.ResolvePairConfig("stock.AAPL", "forex.XAUUSD", common.SideLong, 10, dec("1000"))
	if err == nil {
		t.Fatal("expected error for missing leg")
	}

	var notFound *ConfigNotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("expected ConfigNotFoundError, got %T", err)
	}
	if notFound.Ticker != "forex.XAUUSD" {
		t.Errorf("error ticker = %s, want forex.XAUUSD", notFound.Ticker)
	}
}

func TestResolvePairConfigFundingNetsAcrossLegs(t *testing.T) {
	r := NewResolver(testLoader())

	// Leg B (EURUSD long, funding 0.02, isAPayingApr=true) nets against
	// leg A (AAPL short, funding -0.03)
	cfg, err := r.ResolvePairConfig("stock.AAPL", "forex.EURUSD", common.SideShort, 10, dec("1000"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !cfg.Funding.Equal(dec("-0.05")) {
		t.Errorf("funding = %s, want -0.05", cfg.Funding)
	}
}

func TestMaxNotionalForMaxLeverage(t *testing.T) {
	r := NewResolver(testLoader())

	// Only brackets strictly below maxLeverage qualify
	got := r.MaxNotionalForMaxLeverage("forex.EURUSD", common.SideLong, 10)
	if got == nil || !got.Equal(dec("50000")) {
		t.Errorf("cap = %v, want 50000", got)
	}

	got = r.MaxNotionalForMaxLeverage("forex.EURUSD", common.SideLong, 9)
	if got != nil {
		t.Errorf("cap = %v, want nil (no bracket below 9)", got)
	}
}

func TestAdjustQuantities(t *testing.T) {
	r := NewResolver(testLoader())

	// Caps at leverage 9: AAPL long 30000, EURUSD short 40000, so the
	// short-quantity clamp is 30000 / bid.
	adjusted := r.AdjustQuantities(
		dec("150"), dec("150"),
		dec("1000"), dec("1000"),
		"stock.AAPL", "forex.EURUSD", 10,
	)

	wantShort := dec("30000").Div(dec("150"))
	if !adjusted.ShortQty.Equal(wantShort) {
		t.Errorf("shortQty = %s, want %s", adjusted.ShortQty, wantShort)
	}

	wantLong := dec("30000").Div(dec("150"))
	if !adjusted.LongQty.Equal(wantLong) {
		t.Errorf("longQty = %s, want %s", adjusted.LongQty, wantLong)
	}
}

func TestAdjustQuantitiesUnderCap(t *testing.T) {
	r := NewResolver(testLoader())

	adjusted := r.AdjustQuantities(
		dec("150"), dec("150"),
		dec("10"), dec("10"),
		"stock.AAPL", "forex.EURUSD", 10,
	)

	if !adjusted.ShortQty.Equal(dec("10")) || !adjusted.LongQty.Equal(dec("10")) {
		t.Errorf("quantities changed under cap: %s / %s", adjusted.ShortQty, adjusted.LongQty)
	}
}

func TestPrefixedName(t *testing.T) {
	r := NewResolver(testLoader())

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "forex prefix", input: "EURUSD", expected: "forex.EURUSD"},
		{name: "stock prefix", input: "AAPL", expected: "stock.AAPL"},
		{name: "unknown name passes through", input: "DOGE", expected: "DOGE"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := r.PrefixedName(tt.input); got != tt.expected {
				t.Errorf("got %s, want %s", got, tt.expected)
			}
		})
	}
}

func TestFormatPair(t *testing.T) {
	r := NewResolver(testLoader())

	got, err := r.FormatPair("AAPL/EURUSD")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := ToBytes32("stock.AAPL/forex.EURUSD")
	if got != want {
		t.Errorf("got %s, want %s", got, want)
	}
	if len(got) != 2+64 {
		t.Errorf("bytes32 hex length = %d, want 66", len(got))
	}
}

func TestSplitPairInvalid(t *testing.T) {
	for _, pair := range []string{"", "AAPL", "/EURUSD", "AAPL/"} {
		if _, _, err := SplitPair(pair); err == nil {
			t.Errorf("expected error for %q", pair)
		}
	}
}

func TestAllProxyTickers(t *testing.T) {
	r := NewResolver(testLoader())

	tickers := r.AllProxyTickers()
	if len(tickers) != 2 {
		t.Fatalf("len = %d, want 2", len(tickers))
	}
	want := map[string]bool{"stock.AAPL": true, "forex.EURUSD": true}
	for _, ticker := range tickers {
		if !want[ticker] {
			t.Errorf("unexpected ticker %s", ticker)
		}
	}
}

func TestShippedTablesResolveDefaultPair(t *testing.T) {
	r := NewResolver(FileLoader{
		AssetPath:  "../../tables/assets.json",
		PrefixPath: "../../tables/prefixes.json",
	})

	tickerA, tickerB, err := r.FormatSymbols("EURUSD/GBPUSD")
	if err != nil {
		t.Fatalf("FormatSymbols: %v", err)
	}
	if tickerA != "forex.EURUSD" || tickerB != "forex.GBPUSD" {
		t.Fatalf("FormatSymbols = %s, %s, want forex.EURUSD, forex.GBPUSD", tickerA, tickerB)
	}

	row, err := r.ResolvePairConfig(tickerA, tickerB, common.SideLong, 500, dec("1000"))
	if err != nil {
		t.Fatalf("ResolvePairConfig: %v", err)
	}
	if row.Leverage != 500 {
		t.Errorf("Leverage = %d, want 500", row.Leverage)
	}
	if !row.ImA.Equal(dec("0.02")) {
		t.Errorf("ImA = %s, want 0.02", row.ImA)
	}
}
