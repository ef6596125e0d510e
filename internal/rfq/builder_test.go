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
	"errors"
	"sync"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/triparty-labs/perp-quoting-go/internal/common"
	"github.com/triparty-labs/perp-quoting-go/internal/rates"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func decPtr(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func row(side string, leverage int, maxNotional *decimal.Decimal, funding string, paying bool) rates.RateRow {
	return rates.RateRow{
		Side:         side,
		Leverage:     leverage,
		MaxNotional:  maxNotional,
		MinAmount:    dec("1"),
		ImA:          dec("0.05"),
		ImB:          dec("0.05"),
		DfA:          dec("0.01"),
		DfB:          dec("0.01"),
		Funding:      dec(funding),
		ExpiryA:      60,
		ExpiryB:      60,
		TimeLockA:    1440,
		TimeLockB:    1440,
		Precision:    5,
		IsAPayingApr: paying,
	}
}

func testResolver() *rates.Resolver {
	return rates.NewResolver(rates.StaticLoader{
		Assets: []rates.Asset{
			{
				ProxyTicker:  "stock.AAPL",
				SourceTicker: "AAPL",
				Notional: []rates.RateRow{
					row(common.SideLong, 10, decPtr("100000"), "-0.04", false),
					row(common.SideShort, 10, decPtr("100000"), "0.02", false),
					row(common.SideLong, 9, decPtr("120"), "-0.04", false),
					row(common.SideShort, 9, decPtr("120"), "0.02", false),
				},
			},
			{
				ProxyTicker:  "forex.EURUSD",
				SourceTicker: "EURUSD",
				Notional: []rates.RateRow{
					row(common.SideLong, 10, decPtr("100000"), "0.01", false),
					row(common.SideShort, 10, decPtr("100000"), "0.01", false),
					row(common.SideLong, 9, decPtr("150"), "0.01", false),
					row(common.SideShort, 9, decPtr("150"), "0.01", false),
				},
			},
		},
		Prefixes: rates.PrefixTable{
			"stock.": {"AAPL": {}},
			"forex.": {"EURUSD": {}},
		},
	})
}

func TestBuildRfqZeroAmountSubstitutesNominalOne(t *testing.T) {
	b := NewBuilder(testResolver())

	// amount 0 becomes 1 for the lookup; at entryPrice 150 that notional
	// exceeds the leverage-9 cap (min of 120 and 150 = 120), so both
	// quantities clamp to 120/150.
	req, err := b.BuildRfq(Intent{
		EntryPrice: dec("150.00"),
		Amount:     decimal.Zero,
		SymbolPair: "AAPL/EURUSD",
		Leverage:   10,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	wantQty := dec("120").Div(dec("150"))
	if !dec(req.SQuantity).Equal(wantQty) {
		t.Errorf("sQuantity = %s, want %s", req.SQuantity, wantQty)
	}
	if !dec(req.LQuantity).Equal(wantQty) {
		t.Errorf("lQuantity = %s, want %s", req.LQuantity, wantQty)
	}

	if req.AssetAId != "stock.AAPL" || req.AssetBId != "forex.EURUSD" {
		t.Errorf("asset ids = %s/%s", req.AssetAId, req.AssetBId)
	}
	if req.Expiration != DefaultExpiration {
		t.Errorf("expiration = %s, want %s", req.Expiration, DefaultExpiration)
	}
}

func TestBuildRfqInterestRateIsMagnitude(t *testing.T) {
	b := NewBuilder(testResolver())

	req, err := b.BuildRfq(Intent{
		EntryPrice: dec("150.00"),
		Amount:     dec("1"),
		SymbolPair: "AAPL/EURUSD",
		Leverage:   10,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Long leg funding: -0.04 + 0.01 = -0.03; the wire value is abs
	if !dec(req.LInterestRate).Equal(dec("0.03")) {
		t.Errorf("lInterestRate = %s, want 0.03", req.LInterestRate)
	}
	if dec(req.LInterestRate).IsNegative() || dec(req.SInterestRate).IsNegative() {
		t.Error("interest rates must be non-negative")
	}
}

func TestBuildRfqUnknownPair(t *testing.T) {
	b := NewBuilder(testResolver())

	_, err := b.BuildRfq(Intent{
		EntryPrice: dec("150.00"),
		Amount:     dec("1"),
		SymbolPair: "AAPL/XAUUSD",
		Leverage:   10,
	})
	if err == nil {
		t.Fatal("expected error for unresolvable leg")
	}

	var notFound *rates.ConfigNotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("expected ConfigNotFoundError, got %T", err)
	}
}

func TestSanitizeZeroFields(t *testing.T) {
	req := sanitize(RfqRequest{SPrice: "0", LPrice: "150", SQuantity: "0", LQuantity: "0"})

	if req.SPrice != "1" {
		t.Errorf("sPrice = %s, want 1", req.SPrice)
	}
	if req.LPrice != "150" {
		t.Errorf("lPrice = %s, want 150 unchanged", req.LPrice)
	}
	if req.SQuantity != "1" || req.LQuantity != "1" {
		t.Errorf("quantities = %s/%s, want 1/1", req.SQuantity, req.LQuantity)
	}
}

// ============================================================================
// Publisher
// ============================================================================

type recordingSender struct {
	mu   sync.Mutex
	sent []RfqRequest
	err  error
}

func (s *recordingSender) SendRfq(_ context.Context, req RfqRequest, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.sent = append(s.sent, req)
	return nil
}

func (s *recordingSender) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sent)
}

type staticSession string

func (s staticSession) Token() string { return string(s) }

func TestPublishOnceWithoutTokenDoesNothing(t *testing.T) {
	resolver := testResolver()
	sender := &recordingSender{}
	p := NewPublisher(NewBuilder(resolver), resolver, sender, staticSession(""), func() Intent {
		return Intent{EntryPrice: dec("150"), Amount: dec("1"), SymbolPair: "AAPL/EURUSD", Leverage: 10}
	}, DefaultPublisherConfig())

	p.PublishOnce(context.Background())

	if sender.count() != 0 {
		t.Errorf("sent %d RFQs without a session, want 0", sender.count())
	}
}

func TestPublishOnceSendsSanitizedRfq(t *testing.T) {
	resolver := testResolver()
	sender := &recordingSender{}
	p := NewPublisher(NewBuilder(resolver), resolver, sender, staticSession("jwt"), func() Intent {
		return Intent{EntryPrice: dec("150"), Amount: dec("5"), SymbolPair: "AAPL/EURUSD", Leverage: 10}
	}, DefaultPublisherConfig())

	p.PublishOnce(context.Background())

	if sender.count() != 1 {
		t.Fatalf("sent %d RFQs, want 1", sender.count())
	}
	if sender.sent[0].SQuantity == "0" || sender.sent[0].LQuantity == "0" {
		t.Error("published RFQ carries zero quantity")
	}
}

func TestPublishOnceBuildFailureIsNotFatal(t *testing.T) {
	resolver := testResolver()
	sender := &recordingSender{}
	p := NewPublisher(NewBuilder(resolver), resolver, sender, staticSession("jwt"), func() Intent {
		return Intent{EntryPrice: dec("150"), Amount: dec("1"), SymbolPair: "AAPL/XAUUSD", Leverage: 10}
	}, DefaultPublisherConfig())

	// Must not panic, must not send
	p.PublishOnce(context.Background())

	if sender.count() != 0 {
		t.Errorf("sent %d RFQs after failed build, want 0", sender.count())
	}
}
