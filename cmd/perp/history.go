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
	"fmt"

	"github.com/spf13/cobra"
)

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent trade submissions from the journal",
	RunE:  runHistory,
}

func init() {
	historyCmd.Flags().IntVar(&historyLimit, "limit", 20, "Maximum number of entries to show")

	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	records, err := a.journal.RecentSubmissions(historyLimit)
	if err != nil {
		return fmt.Errorf("failed to read journal: %w", err)
	}
	if len(records) == 0 {
		fmt.Println("No submissions recorded")
		return nil
	}

	fmt.Printf("%-20s %-14s %-16s %-12s %-12s %-8s\n",
		"Time", "Kind", "Pair", "Price", "Amount", "Status")
	for _, rec := range records {
		status := "failed"
		if rec.Success {
			status = "ok"
		}
		fmt.Printf("%-20s %-14s %-16s %-12s %-12s %-8s\n",
			rec.CreatedAt.Format("2006-01-02 15:04:05"),
			rec.Kind,
			rec.SymbolPair,
			rec.Price,
			rec.Amount,
			status)
	}
	return nil
}
