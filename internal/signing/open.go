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

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/triparty-labs/perp-quoting-go/internal/common"
	"github.com/triparty-labs/perp-quoting-go/internal/rfq"
)

// OpenParams are the inputs to an open-quote submission. Amount is the
// sized amount after affordability checks, in asset units.
type OpenParams struct {
	Method              common.Method
	SymbolPair          string
	EntryPrice          decimal.Decimal
	Amount              decimal.Decimal
	Rfq                 rfq.RfqRequest
	CounterpartyAddress string
	Authorized          string
}

var quoteTypes = Types{
	"Quote": {
		{Name: "isLong", Type: "bool"},
		{Name: "bOracleId", Type: "uint256"},
		{Name: "price", Type: "uint256"},
		{Name: "amount", Type: "uint256"},
		{Name: "interestRate", Type: "uint256"},
		{Name: "isAPayingAPR", Type: "bool"},
		{Name: "frontEnd", Type: "address"},
		{Name: "affiliate", Type: "address"},
		{Name: "authorized", Type: "address"},
		{Name: "nonce", Type: "uint256"},
	},
}

var bOracleTypes = Types{
	"bOracleSign": {
		{Name: "x", Type: "uint256"},
		{Name: "parity", Type: "uint8"},
		{Name: "maxConfidence", Type: "uint256"},
		{Name: "assetHex", Type: "bytes32"},
		{Name: "maxDelay", Type: "uint256"},
		{Name: "precision", Type: "uint256"},
		{Name: "imA", Type: "uint256"},
		{Name: "imB", Type: "uint256"},
		{Name: "dfA", Type: "uint256"},
		{Name: "dfB", Type: "uint256"},
		{Name: "expiryA", Type: "uint256"},
		{Name: "expiryB", Type: "uint256"},
		{Name: "timeLock", Type: "uint256"},
		{Name: "signatureHashOpenQuote", Type: "bytes"},
		{Name: "nonce", Type: "uint256"},
	},
}

// OpenQuote signs the quote and its oracle wrapper in order and submits
// the combined payload. The quote signature always comes first because
// the wrapper message embeds it; the wrapper signature is retried a
// bounded number of times before giving up.
func (p *Protocol) OpenQuote(ctx context.Context, params OpenParams) bool {
	token, ok := p.ready()
	if !ok {
		return false
	}

	if !params.Amount.IsPositive() {
		zap.L().Error("open quote amount must be greater than zero",
			zap.String("amount", params.Amount.String()))
		return false
	}

	assetHex, err := p.resolver.FormatPair(params.SymbolPair)
	if err != nil {
		zap.L().Error("cannot format symbol pair for open quote",
			zap.String("pair", params.SymbolPair), zap.Error(err))
		return false
	}

	isLong := params.Method == common.MethodBuy

	r := params.Rfq
	imA, imB := r.LImA, r.LImB
	dfA, dfB := r.LDfA, r.LDfB
	expiryA, expiryB := r.LExpirationA, r.LExpirationB
	timeLock := r.LTimelockA
	interestRate := r.LInterestRate
	if !isLong {
		imA, imB = r.SImA, r.SImB
		dfA, dfB = r.SDfA, r.SDfB
		expiryA, expiryB = r.SExpirationA, r.SExpirationB
		timeLock = r.STimelockA
		interestRate = r.SInterestRate
	}

	counterparty := params.CounterpartyAddress
	if counterparty == "" {
		counterparty = common.DefaultCounterpartyAddress
	}
	authorized := params.Authorized
	if authorized == "" {
		authorized = common.ZeroAddress
	}

	nonce := p.nonce()

	quote := &SignedWrappedOpenQuoteRequest{
		IssuerAddress:       p.address,
		CounterpartyAddress: counterparty,
		Version:             common.MessageVersion,
		ChainId:             p.chainId,
		VerifyingContract:   p.contracts.Open,
		X:                   OracleX,
		Parity:              OracleParity,
		MaxConfidence:       common.DefaultMaxConfidence,
		AssetHex:            assetHex,
		MaxDelay:            common.DefaultMaxDelay,
		Precision:           common.DefaultPrecision,
		ImA:                 common.ToWei(common.SafeDecimal(imA)),
		ImB:                 common.ToWei(common.SafeDecimal(imB)),
		DfA:                 common.ToWei(common.SafeDecimal(dfA)),
		DfB:                 common.ToWei(common.SafeDecimal(dfB)),
		ExpiryA:             expiryA,
		ExpiryB:             expiryB,
		TimeLock:            timeLock,
		NonceBoracle:        nonce,
		IsLong:              isLong,
		Price:               common.ToWei(params.EntryPrice),
		Amount:              common.ToWei(params.Amount),
		InterestRate:        common.ToWei(common.SafeDecimal(interestRate)),
		IsAPayingApr:        true,
		FrontEnd:            p.frontEnd,
		Affiliate:           p.affiliate,
		Authorized:          authorized,
		NonceOpenQuote:      nonce,
		EmitTime:            strconv.FormatInt(p.now().UnixMilli(), 10),
		MessageState:        1,
	}

	domainOpen := Domain{
		Name:              "PionerV1Open",
		Version:           common.MessageVersion,
		ChainId:           p.chainId,
		VerifyingContract: p.contracts.Open,
	}

	quoteValue := Value{
		"isLong":       strconv.FormatBool(quote.IsLong),
		"bOracleId":    "0",
		"price":        quote.Price,
		"amount":       quote.Amount,
		"interestRate": quote.InterestRate,
		"isAPayingAPR": strconv.FormatBool(quote.IsAPayingApr),
		"frontEnd":     quote.FrontEnd,
		"affiliate":    quote.Affiliate,
		"authorized":   quote.Authorized,
		"nonce":        quote.NonceOpenQuote,
	}

	signatureOpenQuote, err := p.signer.SignTypedData(ctx, domainOpen, "Quote", quoteTypes, quoteValue)
	if err != nil {
		zap.L().Error("quote signature rejected", zap.Error(err))
		return false
	}

	domainWrapper := Domain{
		Name:              "PionerV1Wrapper",
		Version:           common.MessageVersion,
		ChainId:           p.chainId,
		VerifyingContract: p.contracts.Wrapper,
	}

	oracleValue := Value{
		"x":                      quote.X,
		"parity":                 quote.Parity,
		"maxConfidence":          quote.MaxConfidence,
		"assetHex":               quote.AssetHex,
		"maxDelay":               quote.MaxDelay,
		"precision":              strconv.Itoa(quote.Precision),
		"imA":                    quote.ImA,
		"imB":                    quote.ImB,
		"dfA":                    quote.DfA,
		"dfB":                    quote.DfB,
		"expiryA":                quote.ExpiryA,
		"expiryB":                quote.ExpiryB,
		"timeLock":               quote.TimeLock,
		"signatureHashOpenQuote": signatureOpenQuote,
		"nonce":                  quote.NonceBoracle,
	}

	var signatureBoracle string
	for attempt := 1; attempt <= p.maxSignAttempts; attempt++ {
		signatureBoracle, err = p.signer.SignTypedData(ctx, domainWrapper, "bOracleSign", bOracleTypes, oracleValue)
		if err == nil {
			break
		}
		zap.L().Warn("oracle wrapper signature failed",
			zap.Int("attempt", attempt), zap.Error(err))
	}
	if err != nil {
		zap.L().Error("oracle wrapper signature rejected, both signatures are required",
			zap.Int("attempts", p.maxSignAttempts), zap.Error(err))
		return false
	}

	quote.SignatureOpenQuote = signatureOpenQuote
	quote.SignatureBoracle = signatureBoracle

	if err := p.api.SendSignedWrappedOpenQuote(ctx, quote, token); err != nil {
		zap.L().Error("failed to send open quote", zap.Error(err))
		return false
	}

	zap.L().Info("open quote sent",
		zap.String("pair", params.SymbolPair),
		zap.Bool("isLong", quote.IsLong),
		zap.String("amount", quote.Amount),
		zap.String("price", quote.Price))
	return true
}
