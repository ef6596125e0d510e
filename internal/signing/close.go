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

package signing

import (
	"context"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/triparty-labs/perp-quoting-go/internal/common"
)

// CloseParams are the inputs to a close-quote submission. Amount is the
// contract amount already in wei; Price is in asset units. TakeProfit
// selects the order flavor: take profits execute at Price, stop losses
// use Price as the trigger.
type CloseParams struct {
	BContractId int64
	Price       decimal.Decimal
	Amount      string
	TakeProfit  bool
	IsLong      bool
	PartyA      string
	PartyB      string
}

var openCloseQuoteTypes = Types{
	"OpenCloseQuote": {
		{Name: "bContractId", Type: "uint256"},
		{Name: "price", Type: "uint256"},
		{Name: "amount", Type: "uint256"},
		{Name: "limitOrStop", Type: "uint256"},
		{Name: "expiry", Type: "uint256"},
		{Name: "authorized", Type: "address"},
		{Name: "nonce", Type: "uint256"},
	},
}

// CloseQuote signs and submits a close order against an open contract.
// The counterparty is whichever contract party is not the signer.
func (p *Protocol) CloseQuote(ctx context.Context, params CloseParams) bool {
	token, ok := p.ready()
	if !ok {
		return false
	}

	if params.Amount == "" || params.Amount == "0" || params.Price.IsZero() {
		zap.L().Error("close quote rejected, zero amount or price",
			zap.String("amount", params.Amount),
			zap.String("price", params.Price.String()))
		return false
	}

	counterparty := params.PartyA
	if strings.EqualFold(p.address, params.PartyA) {
		counterparty = params.PartyB
	}

	limitOrStop := "0"
	if !params.TakeProfit {
		limitOrStop = common.ToWei(params.Price)
	}

	nonce := p.nonce()

	value := Value{
		"bContractId": strconv.FormatInt(params.BContractId, 10),
		"price":       common.ToWei(params.Price),
		"amount":      params.Amount,
		"limitOrStop": limitOrStop,
		"expiry":      strconv.FormatInt(common.CloseQuoteExpiry, 10),
		"authorized":  counterparty,
		"nonce":       nonce,
	}

	domainClose := Domain{
		Name:              "PionerV1Close",
		Version:           common.MessageVersion,
		ChainId:           p.chainId,
		VerifyingContract: p.contracts.Close,
	}

	signatureClose, err := p.signer.SignTypedData(ctx, domainClose, "OpenCloseQuote", openCloseQuoteTypes, value)
	if err != nil {
		zap.L().Error("close quote signature rejected", zap.Error(err))
		return false
	}

	req := &SignedCloseQuoteRequest{
		IssuerAddress:       p.address,
		CounterpartyAddress: counterparty,
		Version:             common.MessageVersion,
		ChainId:             p.chainId,
		VerifyingContract:   p.contracts.Close,
		BContractId:         params.BContractId,
		IsLong:              params.IsLong,
		Price:               value["price"],
		Amount:              params.Amount,
		LimitOrStop:         limitOrStop,
		Expiry:              common.CloseQuoteExpiry,
		Authorized:          counterparty,
		Nonce:               nonce,
		SignatureClose:      signatureClose,
		EmitTime:            strconv.FormatInt(p.now().UnixMilli(), 10),
		MessageState:        0,
	}

	if err := p.api.SendSignedCloseQuote(ctx, req, token); err != nil {
		zap.L().Error("failed to send close quote", zap.Error(err))
		return false
	}

	flavor := "stop loss"
	if params.TakeProfit {
		flavor = "take profit"
	}
	zap.L().Info("close quote sent",
		zap.Int64("bContractId", params.BContractId),
		zap.String("flavor", flavor),
		zap.String("price", req.Price))
	return true
}
