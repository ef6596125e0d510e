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

	"github.com/triparty-labs/perp-quoting-go/internal/database"
	"github.com/triparty-labs/perp-quoting-go/internal/signing"
)

var (
	cancelHash         string
	cancelCounterparty string
)

var cancelCmd = &cobra.Command{
	Use:   "cancel",
	Short: "Cancel a pending open or close quote",
}

var cancelOpenCmd = &cobra.Command{
	Use:     "open",
	Short:   "Sign and submit a cancel for a pending open quote",
	Example: `  perp cancel open --hash 0xabc... --counterparty 0xBBB...`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runCancel(cmd, "cancel_open")
	},
}

var cancelCloseCmd = &cobra.Command{
	Use:     "close",
	Short:   "Sign and submit a cancel for a pending close quote",
	Example: `  perp cancel close --hash 0xabc...`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runCancel(cmd, "cancel_close")
	},
}

func init() {
	for _, c := range []*cobra.Command{cancelOpenCmd, cancelCloseCmd} {
		c.Flags().StringVar(&cancelHash, "hash", "", "Signature hash of the quote to cancel")
		c.Flags().StringVar(&cancelCounterparty, "counterparty", "", "Counterparty address")
		cobra.CheckErr(c.MarkFlagRequired("hash"))
		cancelCmd.AddCommand(c)
	}

	rootCmd.AddCommand(cancelCmd)
}

func runCancel(cmd *cobra.Command, kind string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	order := signing.OrderRef{
		TargetHash:          cancelHash,
		CounterpartyAddress: cancelCounterparty,
	}

	var ok bool
	if kind == "cancel_open" {
		ok = a.protocol.CancelOpenQuote(ctx, order)
	} else {
		ok = a.protocol.CancelCloseQuote(ctx, order)
	}

	journalSubmission(a, &database.SubmissionRecord{
		Id:         uuid.New().String(),
		Kind:       kind,
		TargetHash: cancelHash,
		Success:    ok,
	})

	if !ok {
		return fmt.Errorf("cancel for %s was not submitted", cancelHash)
	}
	fmt.Printf("Cancel submitted for %s\n", cancelHash)
	return nil
}
