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

// Package ladder synthesizes a display-only bid/ask ladder around the
// live best prices. The rows do not represent resting liquidity; they
// exist to give the book visual depth between real quote updates.
package ladder

import (
	"math"
	"math/rand"
)

// DefaultMaxRows is the ladder depth per side
const DefaultMaxRows = 5

// DefaultMinPct is the floor for any row amount, as a fraction of the total
const DefaultMinPct = 0.01

// Row is one displayable price level
type Row struct {
	Price  float64
	Amount float64
}

// Book is a synthesized ladder. Asks are ordered from the farthest price
// down toward the spread, bids from just below the spread downward.
type Book struct {
	Asks    []Row
	Bids    []Row
	BestBid float64
	BestAsk float64
}

// Reference is a depth snapshot from an external exchange feed whose
// shape is rescaled onto the platform's own price level.
type Reference struct {
	Bids [][2]float64
	Asks [][2]float64
}

// Inputs are the live values a ladder is built from. Best prices of zero
// fall back to the indicative pair prices; a non-positive MaxAmount falls
// back to FallbackAmount.
type Inputs struct {
	BestBid        float64
	BestAsk        float64
	FallbackBid    float64
	FallbackAsk    float64
	MaxAmount      float64
	FallbackAmount float64
	Reference      *Reference
}

// Config tunes a Simulator. A zero Seed produces an unseeded source.
type Config struct {
	MaxRows int
	MinPct  float64
	Seed    int64
}

// Simulator carries the per-row amounts between builds so consecutive
// ladders drift rather than jump.
type Simulator struct {
	maxRows int
	minPct  float64
	rng     *rand.Rand
	amounts []float64
}

func NewSimulator(cfg Config) *Simulator {
	if cfg.MaxRows <= 0 {
		cfg.MaxRows = DefaultMaxRows
	}
	if cfg.MinPct <= 0 {
		cfg.MinPct = DefaultMinPct
	}
	return &Simulator{
		maxRows: cfg.MaxRows,
		minPct:  cfg.MinPct,
		rng:     rand.New(rand.NewSource(cfg.Seed)),
	}
}

// Build synthesizes the next ladder frame
func (s *Simulator) Build(in Inputs) Book {
	bid := in.BestBid
	if bid == 0 {
		bid = in.FallbackBid
	}
	ask := in.BestAsk
	if ask == 0 {
		ask = in.FallbackAsk
	}
	if bid == 0 || ask == 0 {
		return Book{}
	}

	total := in.MaxAmount
	if total <= 0 {
		total = in.FallbackAmount
	}

	askPrices, bidPrices := s.prices(in.Reference, bid, ask)

	totalRows := s.maxRows * 2
	if len(s.amounts) != totalRows {
		s.amounts = s.distribute(total, totalRows)
	} else {
		for i, prev := range s.amounts {
			s.amounts[i] = s.nextAmount(prev, total)
		}
	}

	book := Book{BestBid: bid, BestAsk: ask}
	for i := s.maxRows - 1; i >= 0; i-- {
		book.Asks = append(book.Asks, Row{Price: askPrices[i], Amount: s.amounts[i]})
	}
	for i := 0; i < s.maxRows; i++ {
		book.Bids = append(book.Bids, Row{Price: bidPrices[i], Amount: s.amounts[s.maxRows+i]})
	}
	return book
}

// prices returns ask levels ascending from the best ask and bid levels
// descending from the best bid. With a reference feed the external shape
// is rescaled onto a one percent band around the platform prices;
// without one the spread is divided into even steps.
func (s *Simulator) prices(ref *Reference, bid, ask float64) (asks, bids []float64) {
	if ref != nil && len(ref.Asks) >= s.maxRows && len(ref.Bids) >= s.maxRows {
		refAsk := ref.Asks[0][0]
		refBid := ref.Bids[0][0]
		for i := 0; i < s.maxRows; i++ {
			asks = append(asks, scalePrice(ref.Asks[i][0], refAsk, refAsk*1.01, ask, ask*1.01))
			bids = append(bids, scalePrice(ref.Bids[i][0], refBid*0.99, refBid, bid*0.99, bid))
		}
		return asks, bids
	}

	step := (ask - bid) / float64(s.maxRows*2)
	for i := 0; i < s.maxRows; i++ {
		asks = append(asks, ask+step*float64(i))
		bids = append(bids, bid-step*float64(i))
	}
	return asks, bids
}

// distribute spreads total across count rows: every row gets the floor,
// then random extras consume the remainder, and whatever is left is
// split evenly.
func (s *Simulator) distribute(total float64, count int) []float64 {
	minAmount := total * s.minPct
	amounts := make([]float64, count)
	for i := range amounts {
		amounts[i] = minAmount
	}

	remaining := total - minAmount*float64(count)
	for i := 0; i < count && remaining > 0; i++ {
		extra := s.rng.Float64() * remaining
		amounts[i] += extra
		remaining -= extra
	}
	if remaining > 0 {
		perRow := remaining / float64(count)
		for i := range amounts {
			amounts[i] += perRow
		}
	}
	return amounts
}

// nextAmount perturbs a row amount with a heavy-tailed tangent deviation
// and clamps the result to [minPct*total, total].
func (s *Simulator) nextAmount(prev, total float64) float64 {
	if total <= 0 {
		return 0
	}

	deviation := math.Tan((s.rng.Float64()-0.5)*math.Pi) * (total * 0.1)
	next := prev + deviation

	minAmount := total * s.minPct
	if next < minAmount {
		return minAmount
	}
	if next > total {
		return total
	}
	return next
}

func scalePrice(price, refMin, refMax, targetMin, targetMax float64) float64 {
	scale := (targetMax - targetMin) / (refMax - refMin)
	return targetMin + (price-refMin)*scale
}
