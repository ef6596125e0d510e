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
	"github.com/triparty-labs/perp-quoting-go/internal/signing"
)

var (
	closeContractId int64
	closePrice      string
	closeAmount     string
	closeStopLoss   bool
	closeShort      bool
	closePartyA     string
	closePartyB     string
)

var closeCmd = &cobra.Command{
	Use:   "close",
	Short: "Sign and submit a close quote for an open position",
	Long: `Sign a close quote against an on-chain contract and submit it.
By default the close is a take profit; pass --stop-loss to make the
price act as a trigger instead.`,
	Example: `  perp close --contract-id 42 --price 0.90 --amount 100000000000000000000 \
    --party-a 0xAAA... --party-b 0xBBB...`,
	RunE: runClose,
}

func init() {
	closeCmd.Flags().Int64Var(&closeContractId, "contract-id", 0, "On-chain bContract id")
	closeCmd.Flags().StringVar(&closePrice, "price", "", "Close price")
	closeCmd.Flags().StringVar(&closeAmount, "amount", "", "Amount in wei")
	closeCmd.Flags().BoolVar(&closeStopLoss, "stop-loss", false, "Treat the price as a stop loss trigger")
	closeCmd.Flags().BoolVar(&closeShort, "short", false, "The position being closed is short")
	closeCmd.Flags().StringVar(&closePartyA, "party-a", "", "Contract party A address")
	closeCmd.Flags().StringVar(&closePartyB, "party-b", "", "Contract party B address")
	cobra.CheckErr(closeCmd.MarkFlagRequired("contract-id"))
	cobra.CheckErr(closeCmd.MarkFlagRequired("price"))
	cobra.CheckErr(closeCmd.MarkFlagRequired("amount"))

	rootCmd.AddCommand(closeCmd)
}

func runClose(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	price := common.SafeDecimal(closePrice)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	ok := a.protocol.CloseQuote(ctx, signing.CloseParams{
		BContractId: closeContractId,
		Price:       price,
		Amount:      closeAmount,
		TakeProfit:  !closeStopLoss,
		IsLong:      !closeShort,
		PartyA:      closePartyA,
		PartyB:      closePartyB,
	})

	journalSubmission(a, &database.SubmissionRecord{
		Id:      uuid.New().String(),
		Kind:    "close",
		IsLong:  !closeShort,
		Price:   price.String(),
		Amount:  closeAmount,
		Success: ok,
	})

	if !ok {
		return fmt.Errorf("close quote for contract %d was not submitted", closeContractId)
	}
	fmt.Printf("Close quote submitted for contract %d @ %s\n", closeContractId, price)
	return nil
}
