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
	"time"

	"go.uber.org/zap"

	"github.com/triparty-labs/perp-quoting-go/internal/rates"
	"github.com/triparty-labs/perp-quoting-go/internal/rfq"
)

// DefaultMaxSignAttempts bounds retries of the wrapping oracle signature
const DefaultMaxSignAttempts = 3

// Oracle public key parameters attached to every wrapped open quote
const (
	OracleX      = "0x20568a84796e6ade0446adfd2d8c4bba2c798c2af0e8375cc3b734f71b17f5fd"
	OracleParity = "0"
)

// Contracts holds the verifying contract addresses per signing domain
type Contracts struct {
	Open    string
	Wrapper string
	Close   string
}

// Submitter delivers signed payloads to the backend
type Submitter interface {
	SendSignedWrappedOpenQuote(ctx context.Context, req *SignedWrappedOpenQuoteRequest, token string) error
	SendSignedCloseQuote(ctx context.Context, req *SignedCloseQuoteRequest, token string) error
	SendSignedCancelOpenQuote(ctx context.Context, req *SignedCancelOpenQuoteRequest, token string) error
	SendSignedCancelCloseQuote(ctx context.Context, req *SignedCancelCloseQuoteRequest, token string) error
}

// ProtocolConfig wires a Protocol. Signer, API, Session, Resolver, and
// Address are required; the rest default sensibly.
type ProtocolConfig struct {
	Signer          Signer
	API             Submitter
	Session         rfq.Session
	Resolver        *rates.Resolver
	Address         string
	ChainId         int64
	Contracts       Contracts
	FrontEnd        string
	Affiliate       string
	MaxSignAttempts int
	Clock           func() time.Time
}

// Protocol builds, signs, and submits quote lifecycle messages. Every
// flow returns a plain success flag; failures are logged, never panicked.
type Protocol struct {
	signer          Signer
	api             Submitter
	session         rfq.Session
	resolver        *rates.Resolver
	address         string
	chainId         int64
	contracts       Contracts
	frontEnd        string
	affiliate       string
	maxSignAttempts int
	now             func() time.Time
}

func NewProtocol(cfg ProtocolConfig) *Protocol {
	if cfg.MaxSignAttempts <= 0 {
		cfg.MaxSignAttempts = DefaultMaxSignAttempts
	}
	if cfg.Affiliate == "" {
		cfg.Affiliate = cfg.FrontEnd
	}
	if cfg.Clock == nil {
		cfg.Clock = time.Now
	}
	return &Protocol{
		signer:          cfg.Signer,
		api:             cfg.API,
		session:         cfg.Session,
		resolver:        cfg.Resolver,
		address:         cfg.Address,
		chainId:         cfg.ChainId,
		contracts:       cfg.Contracts,
		frontEnd:        cfg.FrontEnd,
		affiliate:       cfg.Affiliate,
		maxSignAttempts: cfg.MaxSignAttempts,
		now:             cfg.Clock,
	}
}

// ready reports whether the protocol has everything needed to sign and
// submit, returning the session token when it does.
func (p *Protocol) ready() (string, bool) {
	if p.signer == nil || p.api == nil || p.address == "" {
		zap.L().Error("signing protocol not ready",
			zap.Bool("hasSigner", p.signer != nil),
			zap.Bool("hasApi", p.api != nil),
			zap.String("address", p.address))
		return "", false
	}

	token := ""
	if p.session != nil {
		token = p.session.Token()
	}
	if token == "" {
		zap.L().Error("cannot sign without a session token")
		return "", false
	}
	return token, true
}

func (p *Protocol) nonce() string {
	return strconv.FormatInt(p.now().UnixMilli(), 10)
}
