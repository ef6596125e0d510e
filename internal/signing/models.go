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

// SignedWrappedOpenQuoteRequest is the open-quote payload carrying both
// the quote signature and the wrapping oracle signature.
type SignedWrappedOpenQuoteRequest struct {
	IssuerAddress       string `json:"issuerAddress"`
	CounterpartyAddress string `json:"counterpartyAddress"`
	Version             string `json:"version"`
	ChainId             int64  `json:"chainId"`
	VerifyingContract   string `json:"verifyingContract"`
	X                   string `json:"x"`
	Parity              string `json:"parity"`
	MaxConfidence       string `json:"maxConfidence"`
	AssetHex            string `json:"assetHex"`
	MaxDelay            string `json:"maxDelay"`
	Precision           int    `json:"precision"`
	ImA                 string `json:"imA"`
	ImB                 string `json:"imB"`
	DfA                 string `json:"dfA"`
	DfB                 string `json:"dfB"`
	ExpiryA             string `json:"expiryA"`
	ExpiryB             string `json:"expiryB"`
	TimeLock            string `json:"timeLock"`
	NonceBoracle        string `json:"nonceBoracle"`
	SignatureBoracle    string `json:"signatureBoracle"`
	IsLong              bool   `json:"isLong"`
	Price               string `json:"price"`
	Amount              string `json:"amount"`
	InterestRate        string `json:"interestRate"`
	IsAPayingApr        bool   `json:"isAPayingApr"`
	FrontEnd            string `json:"frontEnd"`
	Affiliate           string `json:"affiliate"`
	Authorized          string `json:"authorized"`
	NonceOpenQuote      string `json:"nonceOpenQuote"`
	SignatureOpenQuote  string `json:"signatureOpenQuote"`
	EmitTime            string `json:"emitTime"`
	MessageState        int    `json:"messageState"`
}

// SignedCloseQuoteRequest is the close-quote payload. LimitOrStop encodes
// the order flavor: "0" means take profit at Price, any other value is a
// stop loss trigger price in wei.
type SignedCloseQuoteRequest struct {
	IssuerAddress       string `json:"issuerAddress"`
	CounterpartyAddress string `json:"counterpartyAddress"`
	Version             string `json:"version"`
	ChainId             int64  `json:"chainId"`
	VerifyingContract   string `json:"verifyingContract"`
	BContractId         int64  `json:"bcontractId"`
	IsLong              bool   `json:"isLong"`
	Price               string `json:"price"`
	Amount              string `json:"amount"`
	LimitOrStop         string `json:"limitOrStop"`
	Expiry              int64  `json:"expiry"`
	Authorized          string `json:"authorized"`
	Nonce               string `json:"nonce"`
	SignatureClose      string `json:"signatureClose"`
	EmitTime            string `json:"emitTime"`
	MessageState        int    `json:"messageState"`
}

// SignedCancelOpenQuoteRequest cancels a pending open quote by the
// Keccak-256 hash of its target hash.
type SignedCancelOpenQuoteRequest struct {
	IssuerAddress       string `json:"issuerAddress"`
	CounterpartyAddress string `json:"counterpartyAddress"`
	Version             string `json:"version"`
	ChainId             int64  `json:"chainId"`
	VerifyingContract   string `json:"verifyingContract"`
	TargetHash          string `json:"targetHash"`
	NonceCancel         string `json:"nonceCancel"`
	SignatureCancel     string `json:"signatureCancel"`
	EmitTime            string `json:"emitTime"`
	MessageState        int    `json:"messageState"`
}

// SignedCancelCloseQuoteRequest cancels a pending close quote by its
// target hash taken verbatim.
type SignedCancelCloseQuoteRequest struct {
	IssuerAddress       string `json:"issuerAddress"`
	CounterpartyAddress string `json:"counterpartyAddress"`
	Version             string `json:"version"`
	ChainId             int64  `json:"chainId"`
	VerifyingContract   string `json:"verifyingContract"`
	TargetHash          string `json:"targetHash"`
	NonceCancel         string `json:"nonceCancel"`
	Signature           string `json:"signature"`
	EmitTime            string `json:"emitTime"`
	MessageState        int    `json:"messageState"`
}
