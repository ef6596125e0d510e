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
	"encoding/json"
	"fmt"
	"os"

	"github.com/shopspring/decimal"
)

// RateRow is one (side, leverage bracket) entry of an asset's notional
// table. A nil MaxNotional or MaxAmount means unbounded. Rows are matched
// by predicate, not by key: the first row whose MaxNotional strictly
// exceeds the requested notional wins.
type RateRow struct {
	Side           string           `json:"side"`
	Leverage       int              `json:"leverage"`
	MaxNotional    *decimal.Decimal `json:"maxNotional,omitempty"`
	MinAmount      decimal.Decimal  `json:"minAmount"`
	MaxAmount      *decimal.Decimal `json:"maxAmount,omitempty"`
	Precision      int              `json:"precision"`
	ImA            decimal.Decimal  `json:"imA"`
	ImB            decimal.Decimal  `json:"imB"`
	DfA            decimal.Decimal  `json:"dfA"`
	DfB            decimal.Decimal  `json:"dfB"`
	Ir             decimal.Decimal  `json:"ir"`
	ExpiryA        int64            `json:"expiryA"`
	ExpiryB        int64            `json:"expiryB"`
	TimeLockA      int64            `json:"timeLockA"`
	TimeLockB      int64            `json:"timeLockB"`
	MaxConfidence  int64            `json:"maxConfidence"`
	MaxDelay       int64            `json:"maxDelay"`
	KycType        int64            `json:"kycType"`
	CType          int64            `json:"cType"`
	ForceCloseType int64            `json:"forceCloseType"`
	KycAddress     string           `json:"kycAddress"`
	Type           string           `json:"type"`
	BrokerFee      decimal.Decimal  `json:"brokerFee"`
	Funding        decimal.Decimal  `json:"funding"`
	IsAPayingApr   bool             `json:"isAPayingApr"`
}

// Asset is one entry of the static rate table, keyed by proxy ticker.
// SourceTicker is the upstream broker symbol the proxy maps to.
type Asset struct {
	ProxyTicker  string    `json:"proxyTicker"`
	SourceTicker string    `json:"mt5Ticker"`
	Broker       string    `json:"broker"`
	Notional     []RateRow `json:"notional"`
}

type assetTable struct {
	Assets []Asset `json:"assets"`
}

// PrefixTable maps a ticker prefix to the set of bare names it applies to.
type PrefixTable map[string]map[string]struct{}

// TableLoader supplies the rate and prefix tables. Implementations load
// from disk or a remote source; the resolver treats the result as
// immutable between refreshes.
type TableLoader interface {
	LoadAssets() ([]Asset, error)
	LoadPrefixes() (PrefixTable, error)
}

// FileLoader reads both tables from local JSON files.
type FileLoader struct {
	AssetPath  string
	PrefixPath string
}

// LoadAssets reads and decodes the asset rate table
func (l FileLoader) LoadAssets() ([]Asset, error) {
	data, err := os.ReadFile(l.AssetPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read rate table: %w", err)
	}

	var table assetTable
	if err := json.Unmarshal(data, &table); err != nil {
		return nil, fmt.Errorf("failed to decode rate table: %w", err)
	}

	return table.Assets, nil
}

// LoadPrefixes reads and decodes the ticker prefix table
func (l FileLoader) LoadPrefixes() (PrefixTable, error) {
	data, err := os.ReadFile(l.PrefixPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read prefix table: %w", err)
	}

	var table PrefixTable
	if err := json.Unmarshal(data, &table); err != nil {
		return nil, fmt.Errorf("failed to decode prefix table: %w", err)
	}

	return table, nil
}

// StaticLoader serves fixed tables from memory
type StaticLoader struct {
	Assets   []Asset
	Prefixes PrefixTable
}

func (l StaticLoader) LoadAssets() ([]Asset, error) {
	return l.Assets, nil
}

func (l StaticLoader) LoadPrefixes() (PrefixTable, error) {
	return l.Prefixes, nil
}
