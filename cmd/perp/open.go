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
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/triparty-labs/perp-quoting-go/internal/common"
	"github.com/triparty-labs/perp-quoting-go/internal/database"
	"github.com/triparty-labs/perp-quoting-go/internal/rfq"
	"github.com/triparty-labs/perp-quoting-go/internal/signing"
)

var (
	openPair         string
	openSide         string
	openAmount       string
	openPrice        string
	openLeverage     int
	openCounterparty string
)

var openCmd = &cobra.Command{
	Use:   "open",
	Short: "Sign and submit a wrapped open quote",
	Long: `Sign an open quote with both the quote and oracle signatures and
submit the wrapped payload to the backend.`,
	Example: `  perp open --pair EURUSD/GBPUSD --side buy --amount 100 --price 0.88`,
	RunE:    runOpen,
}

func init() {
	openCmd.Flags().StringVar(&openPair, "pair", "", "Symbol pair (defaults to SYMBOL_PAIR)")
	openCmd.Flags().StringVar(&openSide, "side", "buy", "Trade direction: buy or sell")
	openCmd.Flags().StringVar(&openAmount, "amount", "", "Amount in asset units")
	openCmd.Flags().StringVar(&openPrice, "price", "", "Entry price")
	openCmd.Flags().IntVar(&openLeverage, "leverage", 0, "Leverage (defaults to DEFAULT_LEVERAGE)")
	openCmd.Flags().StringVar(&openCounterparty, "counterparty", "", "Counterparty address from the selected quote")
	cobra.CheckErr(openCmd.MarkFlagRequired("amount"))
	cobra.CheckErr(openCmd.MarkFlagRequired("price"))

	rootCmd.AddCommand(openCmd)
}

func runOpen(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	method, err := parseMethod(openSide)
	if err != nil {
		return err
	}

	pair := openPair
	if pair == "" {
		pair = a.cfg.Trading.SymbolPair
	}
	leverage := openLeverage
	if leverage <= 0 {
		leverage = a.cfg.Trading.DefaultLeverage
	}

	price := common.SafeDecimal(openPrice)
	amount := common.SafeDecimal(openAmount)

	builder := rfq.NewBuilder(a.resolver)
	req, err := builder.BuildRfq(rfq.Intent{
		EntryPrice: price,
		Amount:     amount,
		SymbolPair: pair,
		Leverage:   leverage,
	})
	if err != nil {
		return fmt.Errorf("cannot build rfq for %s: %w", pair, err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	ok := a.protocol.OpenQuote(ctx, signing.OpenParams{
		Method:              method,
		SymbolPair:          pair,
		EntryPrice:          price,
		Amount:              amount,
		Rfq:                 req,
		CounterpartyAddress: openCounterparty,
	})

	journalSubmission(a, &database.SubmissionRecord{
		Id:         uuid.New().String(),
		Kind:       "open",
		SymbolPair: pair,
		IsLong:     method == common.MethodBuy,
		Price:      price.String(),
		Amount:     amount.String(),
		Success:    ok,
	})

	if !ok {
		return fmt.Errorf("open quote for %s was not submitted", pair)
	}
	fmt.Printf("Open quote submitted: %s %s %s @ %s\n", openSide, amount, pair, price)
	return nil
}
