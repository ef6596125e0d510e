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

package quotes

import (
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/triparty-labs/perp-quoting-go/internal/common"
)

// Quote is one streamed counterparty quote. Numeric fields stay as wire
// strings; CreatedAt and Expiration are millisecond values.
type Quote struct {
	Id           string `json:"id"`
	ChainId      int64  `json:"chainId"`
	CreatedAt    string `json:"createdAt"`
	UserId       string `json:"userId"`
	UserAddress  string `json:"userAddress"`
	RfqId        string `json:"rfqId"`
	Expiration   string `json:"expiration"`
	SMarketPrice string `json:"sMarketPrice"`
	SPrice       string `json:"sPrice"`
	SQuantity    string `json:"sQuantity"`
	LMarketPrice string `json:"lMarketPrice"`
	LPrice       string `json:"lPrice"`
	LQuantity    string `json:"lQuantity"`
	MinAmount    string `json:"minAmount"`
	MaxAmount    string `json:"maxAmount"`
}

// IsValidAt reports whether the quote is still live at the given instant:
// now < createdAt + expiration.
func (q Quote) IsValidAt(now time.Time) bool {
	created := common.SafeDecimal(q.CreatedAt).IntPart()
	expiration := common.SafeDecimal(q.Expiration).IntPart()
	return now.UnixMilli() < created+expiration
}

// Book is the time-windowed collection of inbound quotes. Safe for
// concurrent use: the stream callback inserts, the eviction tick sweeps,
// and readers get copies.
type Book struct {
	mu     sync.Mutex
	quotes []Quote
	now    func() time.Time
}

// NewBook creates an empty quote book
func NewBook() *Book {
	return &Book{now: time.Now}
}

// NewBookAt creates a book with an injected clock, for tests
func NewBookAt(now func() time.Time) *Book {
	return &Book{now: now}
}

// Insert appends a quote and drops everything that has since expired,
// including the new quote itself if it arrived already stale.
func (b *Book) Insert(q Quote) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.quotes = append(b.quotes, q)
	b.evict()
}

// EvictExpired removes all quotes whose validity window has closed.
// Driven by the owner on a fixed 1-second tick.
func (b *Book) EvictExpired() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.evict()
}

func (b *Book) evict() {
	now := b.now()
	kept := b.quotes[:0]
	for _, q := range b.quotes {
		if q.IsValidAt(now) {
			kept = append(kept, q)
		}
	}
	b.quotes = kept
}

// Flush clears all state, used on logout and disconnect
func (b *Book) Flush() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.quotes = nil
}

// Len returns the number of resident quotes
func (b *Book) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.quotes)
}

// Snapshot returns a copy of the current quotes
func (b *Book) Snapshot() []Quote {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]Quote, len(b.quotes))
	copy(out, b.quotes)
	return out
}

// sortedByPrice returns quotes ordered by the price the counterparty
// offers against the requested side: sPrice ascending for a buy, lPrice
// descending for a sell.
func sortedByPrice(quotes []Quote, method common.Method) []Quote {
	sorted := make([]Quote, len(quotes))
	copy(sorted, quotes)

	sort.SliceStable(sorted, func(i, j int) bool {
		var pi, pj decimal.Decimal
		if method == common.MethodBuy {
			pi = common.SafeDecimal(sorted[i].SPrice)
			pj = common.SafeDecimal(sorted[j].SPrice)
			return pi.LessThan(pj)
		}
		pi = common.SafeDecimal(sorted[i].LPrice)
		pj = common.SafeDecimal(sorted[j].LPrice)
		return pi.GreaterThan(pj)
	})

	return sorted
}

// BestForSide selects the quote to trade against. Best price wins; when
// the requested amount exceeds the best-priced quote's maxAmount, the
// first quote (in price order) that can cover the amount is taken
// instead. If none can, the best-priced quote is kept anyway.
func (b *Book) BestForSide(method common.Method, amount decimal.Decimal) (Quote, bool) {
	return BestForSide(b.Snapshot(), method, amount)
}

// MinQuotedAmount is the smallest minAmount across resident quotes
func (b *Book) MinQuotedAmount() decimal.Decimal {
	return MinQuotedAmount(b.Snapshot())
}

// MaxQuotedAmount is the largest maxAmount across resident quotes
func (b *Book) MaxQuotedAmount() decimal.Decimal {
	return MaxQuotedAmount(b.Snapshot())
}

// BestBidAsk reports the displayed top of book
func (b *Book) BestBidAsk() (string, string) {
	return BestBidAsk(b.Snapshot())
}

// BestForSide is the selection rule over a quote snapshot; see
// Book.BestForSide.
func BestForSide(qs []Quote, method common.Method, amount decimal.Decimal) (Quote, bool) {
	if len(qs) == 0 {
		return Quote{}, false
	}

	sorted := sortedByPrice(qs, method)
	best := sorted[0]

	if amount.LessThanOrEqual(common.SafeDecimal(best.MaxAmount)) {
		return best, true
	}

	for _, q := range sorted {
		if common.SafeDecimal(q.MaxAmount).GreaterThanOrEqual(amount) {
			return q, true
		}
	}
	return best, true
}

// MinQuotedAmount is the smallest minAmount across a quote snapshot, zero
// when empty.
func MinQuotedAmount(qs []Quote) decimal.Decimal {
	if len(qs) == 0 {
		return decimal.Zero
	}

	min := common.SafeDecimal(qs[0].MinAmount)
	for _, q := range qs[1:] {
		if v := common.SafeDecimal(q.MinAmount); v.LessThan(min) {
			min = v
		}
	}
	return min
}

// MaxQuotedAmount is the largest maxAmount across a quote snapshot, zero
// when empty.
func MaxQuotedAmount(qs []Quote) decimal.Decimal {
	if len(qs) == 0 {
		return decimal.Zero
	}

	max := common.SafeDecimal(qs[0].MaxAmount)
	for _, q := range qs[1:] {
		if v := common.SafeDecimal(q.MaxAmount); v.GreaterThan(max) {
			max = v
		}
	}
	return max
}

// BestBidAsk reports the displayed top of book over a quote snapshot:
// quotes sorted by sPrice descending, the head supplying both sides.
// Zeros when empty.
func BestBidAsk(qs []Quote) (string, string) {
	if len(qs) == 0 {
		return "0", "0"
	}

	sorted := make([]Quote, len(qs))
	copy(sorted, qs)
	sort.SliceStable(sorted, func(i, j int) bool {
		return common.SafeDecimal(sorted[i].SPrice).GreaterThan(common.SafeDecimal(sorted[j].SPrice))
	})

	return sorted[0].SPrice, sorted[0].LPrice
}
