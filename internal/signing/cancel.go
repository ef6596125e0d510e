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

	"go.uber.org/zap"

	"github.com/triparty-labs/perp-quoting-go/internal/common"
)

// OrderRef identifies a pending order to cancel
type OrderRef struct {
	TargetHash          string
	CounterpartyAddress string
}

var cancelOpenTypes = Types{
	"CancelRequestSign": {
		{Name: "orderHash", Type: "bytes32"},
		{Name: "nonce", Type: "uint256"},
	},
}

var cancelCloseTypes = Types{
	"CancelRequestSign": {
		{Name: "orderHash", Type: "bytes"},
		{Name: "nonce", Type: "uint256"},
	},
}

// CancelOpenQuote cancels a pending open quote. The signed order hash is
// the Keccak-256 of the target hash bytes, declared bytes32; an empty
// target falls back to the zero hash. This differs on purpose from the
// close-quote cancel, which signs the target hash verbatim as bytes.
func (p *Protocol) CancelOpenQuote(ctx context.Context, order OrderRef) bool {
	token, ok := p.ready()
	if !ok {
		return false
	}

	if order.TargetHash == "" {
		zap.L().Warn("open cancel target hash is empty, using zero hash")
	}

	orderHash := common.ZeroHash
	if order.TargetHash != "" {
		orderHash = Keccak256Hex(HexToBytes(order.TargetHash))
	}

	nonce := p.nonce()

	domainOpen := Domain{
		Name:              "PionerV1Open",
		Version:           common.MessageVersion,
		ChainId:           p.chainId,
		VerifyingContract: p.contracts.Open,
	}

	value := Value{
		"orderHash": orderHash,
		"nonce":     nonce,
	}

	signatureCancel, err := p.signer.SignTypedData(ctx, domainOpen, "CancelRequestSign", cancelOpenTypes, value)
	if err != nil {
		zap.L().Error("open cancel signature rejected", zap.Error(err))
		return false
	}

	counterparty := order.CounterpartyAddress
	if counterparty == "" {
		counterparty = common.ZeroAddress
	}

	req := &SignedCancelOpenQuoteRequest{
		IssuerAddress:       p.address,
		CounterpartyAddress: counterparty,
		Version:             common.MessageVersion,
		ChainId:             p.chainId,
		VerifyingContract:   p.contracts.Open,
		TargetHash:          order.TargetHash,
		NonceCancel:         nonce,
		SignatureCancel:     signatureCancel,
		EmitTime:            strconv.FormatInt(p.now().UnixMilli(), 10),
		MessageState:        0,
	}

	if err := p.api.SendSignedCancelOpenQuote(ctx, req, token); err != nil {
		zap.L().Error("failed to send open cancel", zap.Error(err))
		return false
	}

	zap.L().Info("open quote cancel sent", zap.String("targetHash", order.TargetHash))
	return true
}

// CancelCloseQuote cancels a pending close quote. The target hash is
// signed as given, declared bytes; an empty target falls back to the
// zero hash.
func (p *Protocol) CancelCloseQuote(ctx context.Context, order OrderRef) bool {
	token, ok := p.ready()
	if !ok {
		return false
	}

	orderHash := order.TargetHash
	if orderHash == "" {
		zap.L().Warn("close cancel target hash is empty, using zero hash")
		orderHash = common.ZeroHash
	}

	nonce := p.nonce()

	domainClose := Domain{
		Name:              "PionerV1Close",
		Version:           common.MessageVersion,
		ChainId:           p.chainId,
		VerifyingContract: p.contracts.Close,
	}

	value := Value{
		"orderHash": orderHash,
		"nonce":     nonce,
	}

	signatureCancel, err := p.signer.SignTypedData(ctx, domainClose, "CancelRequestSign", cancelCloseTypes, value)
	if err != nil {
		zap.L().Error("close cancel signature rejected", zap.Error(err))
		return false
	}

	req := &SignedCancelCloseQuoteRequest{
		IssuerAddress:       p.address,
		CounterpartyAddress: order.CounterpartyAddress,
		Version:             common.MessageVersion,
		ChainId:             p.chainId,
		VerifyingContract:   p.contracts.Close,
		TargetHash:          orderHash,
		NonceCancel:         nonce,
		Signature:           signatureCancel,
		EmitTime:            nonce,
		MessageState:        0,
	}

	if err := p.api.SendSignedCancelCloseQuote(ctx, req, token); err != nil {
		zap.L().Error("failed to send close cancel", zap.Error(err))
		return false
	}

	zap.L().Info("close quote cancel sent", zap.String("targetHash", orderHash))
	return true
}
