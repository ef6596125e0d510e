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

	"go.uber.org/zap"

	"github.com/triparty-labs/perp-quoting-go/config"
	"github.com/triparty-labs/perp-quoting-go/internal/database"
	"github.com/triparty-labs/perp-quoting-go/internal/rates"
	"github.com/triparty-labs/perp-quoting-go/internal/signing"
	"github.com/triparty-labs/perp-quoting-go/internal/transport"
)

// app bundles the wired components shared by every command
type app struct {
	cfg      *config.Config
	resolver *rates.Resolver
	client   *transport.Client
	session  *transport.TokenSession
	protocol *signing.Protocol
	journal  *database.JournalDb
}

func newApp() (*app, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	config.SetupLogger(cfg.Server.LogLevel, cfg.Server.LogJson)

	resolver := rates.NewResolver(rates.FileLoader{
		AssetPath:  cfg.Tables.AssetsPath,
		PrefixPath: cfg.Tables.PrefixesPath,
	})

	client := transport.NewClient(cfg.Backend.BaseUrl)

	session := &transport.TokenSession{}
	session.Set(cfg.Backend.SessionToken)

	journal, err := database.NewJournalDb(cfg.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open trade journal: %w", err)
	}

	var signer signing.Signer
	if cfg.Wallet.SignerSeed != "" {
		signer = &signing.LocalSigner{Seed: []byte(cfg.Wallet.SignerSeed)}
	}

	protocol := signing.NewProtocol(signing.ProtocolConfig{
		Signer:   signer,
		API:      client,
		Session:  session,
		Resolver: resolver,
		Address:  cfg.Wallet.Address,
		ChainId:  cfg.Backend.ChainId,
		Contracts: signing.Contracts{
			Open:    cfg.Contract.Open,
			Wrapper: cfg.Contract.Wrapper,
			Close:   cfg.Contract.Close,
		},
		FrontEnd: cfg.Trading.FrontendOwner,
	})

	return &app{
		cfg:      cfg,
		resolver: resolver,
		client:   client,
		session:  session,
		protocol: protocol,
		journal:  journal,
	}, nil
}

func (a *app) Close() {
	if a.journal != nil {
		a.journal.Close()
	}
}

// journalSubmission records a trade submission, logging rather than
// failing the command when the write does not land.
func journalSubmission(a *app, rec *database.SubmissionRecord) {
	if err := a.journal.InsertSubmission(rec); err != nil {
		zap.L().Warn("failed to journal submission",
			zap.String("kind", rec.Kind),
			zap.Error(err))
	}
}
