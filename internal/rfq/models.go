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
	"github.com/shopspring/decimal"
)

// RfqRequest is the outbound request-for-quote payload: both a long and a
// short leg for the pair, each with its margin, funding, expiry, and
// timelock parameters for counterparties A and B. Numeric fields are wire
// strings.
type RfqRequest struct {
	Expiration    string `json:"expiration"`
	AssetAId      string `json:"assetAId"`
	AssetBId      string `json:"assetBId"`
	SPrice        string `json:"sPrice"`
	SQuantity     string `json:"sQuantity"`
	SInterestRate string `json:"sInterestRate"`
	SIsPayingApr  bool   `json:"sIsPayingApr"`
	SImA          string `json:"sImA"`
	SImB          string `json:"sImB"`
	SDfA          string `json:"sDfA"`
	SDfB          string `json:"sDfB"`
	SExpirationA  string `json:"sExpirationA"`
	SExpirationB  string `json:"sExpirationB"`
	STimelockA    string `json:"sTimelockA"`
	STimelockB    string `json:"sTimelockB"`
	LPrice        string `json:"lPrice"`
	LQuantity     string `json:"lQuantity"`
	LInterestRate string `json:"lInterestRate"`
	LIsPayingApr  bool   `json:"lIsPayingApr"`
	LImA          string `json:"lImA"`
	LImB          string `json:"lImB"`
	LDfA          string `json:"lDfA"`
	LDfB          string `json:"lDfB"`
	LExpirationA  string `json:"lExpirationA"`
	LExpirationB  string `json:"lExpirationB"`
	LTimelockA    string `json:"lTimelockA"`
	LTimelockB    string `json:"lTimelockB"`
}

// Intent is the user's current trade intent snapshot: the inputs an RFQ is
// derived from.
type Intent struct {
	EntryPrice decimal.Decimal
	Amount     decimal.Decimal
	SymbolPair string
	Leverage   int
}
