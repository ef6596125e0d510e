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

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/triparty-labs/perp-quoting-go/internal/balance"
	"github.com/triparty-labs/perp-quoting-go/internal/common"
	"github.com/triparty-labs/perp-quoting-go/internal/database"
	"github.com/triparty-labs/perp-quoting-go/internal/ladder"
	"github.com/triparty-labs/perp-quoting-go/internal/prices"
	"github.com/triparty-labs/perp-quoting-go/internal/quotes"
	"github.com/triparty-labs/perp-quoting-go/internal/rfq"
	"github.com/triparty-labs/perp-quoting-go/internal/sizing"
	"github.com/triparty-labs/perp-quoting-go/internal/transport"
)

var (
	runPair     string
	runMethod   string
	runAmount   string
	runPrice    string
	runLeverage int
	runShowBook bool
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Publish RFQs and track quotes, sizing, and prices",
	Long: `Run the live quoting loop: publish an RFQ every second for the
configured pair, collect quotes off the stream, poll the deposited
balance and pair prices, and keep affordability sizing current.`,
	Example: `  # Quote EURUSD/GBPUSD longs with 100 units at 500x
  perp run --pair EURUSD/GBPUSD --side buy --amount 100`,
	RunE: runRun,
}

func init() {
	runCmd.Flags().StringVar(&runPair, "pair", "", "Symbol pair (defaults to SYMBOL_PAIR)")
	runCmd.Flags().StringVar(&runMethod, "side", "buy", "Trade direction: buy or sell")
	runCmd.Flags().StringVar(&runAmount, "amount", "0", "Requested amount in asset units")
	runCmd.Flags().StringVar(&runPrice, "price", "0", "Entry price (0 follows the live pair price)")
	runCmd.Flags().IntVar(&runLeverage, "leverage", 0, "Leverage (defaults to DEFAULT_LEVERAGE)")
	runCmd.Flags().BoolVar(&runShowBook, "book", false, "Render the synthetic order book ladder")

	rootCmd.AddCommand(runCmd)
}

// liveState is the mutable snapshot shared between the pollers and the
// sizing scheduler.
type liveState struct {
	mu      sync.Mutex
	pair    prices.PairPrice
	balance decimal.Decimal
	sizing  sizing.Result
}

func (s *liveState) setPair(p prices.PairPrice) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pair = p
}

func (s *liveState) setBalance(b decimal.Decimal) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.balance = b
}

func (s *liveState) setSizing(r sizing.Result) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sizing = r
}

func (s *liveState) snapshot() (prices.PairPrice, decimal.Decimal, sizing.Result) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pair, s.balance, s.sizing
}

func runRun(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()
	defer zap.L().Sync()

	method, err := parseMethod(runMethod)
	if err != nil {
		return err
	}

	pair := runPair
	if pair == "" {
		pair = a.cfg.Trading.SymbolPair
	}
	leverage := runLeverage
	if leverage <= 0 {
		leverage = a.cfg.Trading.DefaultLeverage
	}

	amount := common.SafeDecimal(runAmount)
	fixedPrice := common.SafeDecimal(runPrice)

	state := &liveState{}
	book := quotes.NewBook()

	entryPrice := func() decimal.Decimal {
		if !fixedPrice.IsZero() {
			return fixedPrice
		}
		p, _, _ := state.snapshot()
		if method == common.MethodBuy {
			return p.Ask
		}
		return p.Bid
	}

	intent := func() rfq.Intent {
		return rfq.Intent{
			EntryPrice: entryPrice(),
			Amount:     amount,
			SymbolPair: pair,
			Leverage:   leverage,
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var wg sync.WaitGroup
	start := func(f func(context.Context)) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			f(ctx)
		}()
	}

	// Quote stream feeds the book and the journal
	stream := transport.NewQuoteStream(transport.StreamConfig{
		Url:     a.cfg.Backend.QuoteStreamUrl,
		Session: a.session,
		Handler: func(q quotes.Quote) {
			book.Insert(q)
			raw, _ := json.Marshal(q)
			if err := a.journal.InsertQuoteEvent(&database.QuoteEventRecord{
				QuoteId:     q.Id,
				RfqId:       q.RfqId,
				UserAddress: q.UserAddress,
				SPrice:      q.SPrice,
				LPrice:      q.LPrice,
				MinAmount:   q.MinAmount,
				MaxAmount:   q.MaxAmount,
				RawJson:     string(raw),
				ReceivedAt:  time.Now(),
			}); err != nil {
				zap.L().Warn("failed to journal quote", zap.Error(err))
			}
		},
	})
	start(stream.Run)

	// Book eviction keeps expired quotes out of sizing
	start(func(ctx context.Context) {
		ticker := time.NewTicker(time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				book.EvictExpired()
			}
		}
	})

	// RFQ publisher
	builder := rfq.NewBuilder(a.resolver)
	publisher := rfq.NewPublisher(builder, a.resolver, a.client, a.session, intent, rfq.PublisherConfig{
		PublishInterval: a.cfg.Trading.PublishInterval,
		RefreshInterval: a.cfg.Trading.RefreshInterval,
	})
	start(publisher.Run)

	// Pair price updater
	updater := prices.NewUpdater(prices.UpdaterConfig{
		Source:   a.client,
		Resolver: a.resolver,
		Session:  a.session,
		Query: func() prices.Query {
			return prices.Query{SymbolPair: pair, Market: fixedPrice.IsZero(), Method: method}
		},
		Publish: state.setPair,
	})
	start(updater.Run)

	// Deposited balance poller
	if a.cfg.Contract.Core != "" {
		poller := balance.NewPoller(balance.PollerConfig{
			Source:  balance.NewRpcSource(a.cfg.Backend.RpcUrl, a.cfg.Contract.Core),
			Address: a.cfg.Wallet.Address,
			Publish: state.setBalance,
		})
		start(poller.Run)
	} else {
		zap.L().Warn("CONTRACT_CORE not set, balance stays at zero")
	}

	// Affordability sizing
	engine := sizing.NewEngine()
	scheduler := sizing.NewScheduler(engine, func() sizing.Inputs {
		_, bal, _ := state.snapshot()
		req, err := builder.BuildRfq(intent())
		if err != nil {
			zap.L().Debug("sizing rfq build failed", zap.Error(err))
		}
		return sizing.Inputs{
			Amount:     amount,
			EntryPrice: entryPrice(),
			Method:     method,
			Rfq:        req,
			Balance:    bal.String(),
			Quotes:     book.Snapshot(),
			Leverage:   leverage,
		}
	}, func(r sizing.Result) {
		state.setSizing(r)
		zap.L().Info("sizing updated",
			zap.Bool("sufficientBalance", r.SufficientBalance),
			zap.String("maxAmountOpenable", r.MaxAmountOpenable.String()),
			zap.String("recommendedAmount", r.RecommendedAmount.String()),
			zap.String("bestBid", r.BestBid),
			zap.String("bestAsk", r.BestAsk),
			zap.String("counterparty", r.SelectedQuoteUserAddress))
	}, 0)
	start(scheduler.Run)

	// Optional synthetic ladder display
	if runShowBook {
		sim := ladder.NewSimulator(ladder.Config{Seed: time.Now().UnixNano()})
		start(func(ctx context.Context) {
			ticker := time.NewTicker(time.Second)
			defer ticker.Stop()
			for {
				select {
				case <-ctx.Done():
					return
				case <-ticker.C:
					renderLadder(sim, state)
				}
			}
		})
	}

	fmt.Printf("Quoting %s. Press Ctrl+C to stop.\n", pair)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	zap.L().Info("shutting down")
	cancel()
	wg.Wait()
	return nil
}

func renderLadder(sim *ladder.Simulator, state *liveState) {
	pair, _, sized := state.snapshot()

	bestBid, _ := common.SafeDecimal(sized.BestBid).Float64()
	bestAsk, _ := common.SafeDecimal(sized.BestAsk).Float64()
	fallbackBid, _ := pair.Bid.Float64()
	fallbackAsk, _ := pair.Ask.Float64()
	maxAmount, _ := sized.MaxAmountOpenable.Float64()

	frame := sim.Build(ladder.Inputs{
		BestBid:     bestBid,
		BestAsk:     bestAsk,
		FallbackBid: fallbackBid,
		FallbackAsk: fallbackAsk,
		MaxAmount:   maxAmount,
	})
	if len(frame.Asks) == 0 && len(frame.Bids) == 0 {
		return
	}

	// Clear screen for cleaner display
	fmt.Print("\033[2J\033[H")
	fmt.Printf("%-14s %s\n", "Amount", "Price")
	for _, row := range frame.Asks {
		fmt.Printf("%-14.6f %.6f\n", row.Amount, row.Price)
	}
	fmt.Printf("Bid: %.6f  Ask: %.6f\n", frame.BestBid, frame.BestAsk)
	for _, row := range frame.Bids {
		fmt.Printf("%-14.6f %.6f\n", row.Amount, row.Price)
	}
}

func parseMethod(side string) (common.Method, error) {
	switch side {
	case "buy", "Buy", "BUY":
		return common.MethodBuy, nil
	case "sell", "Sell", "SELL":
		return common.MethodSell, nil
	default:
		return "", fmt.Errorf("invalid side %q: must be buy or sell", side)
	}
}
