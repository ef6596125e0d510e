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

package config

import (
	"strings"
	"testing"
	"time"
)

func validConfig() *Config {
	return &Config{
		Backend: BackendConfig{
			BaseUrl:        "https://api.example.com",
			QuoteStreamUrl: "wss://api.example.com/live_quotes",
			ChainId:        64165,
		},
		Wallet: WalletConfig{
			Address: "0x1111111111111111111111111111111111111111",
		},
		Contract: ContractConfig{
			Open:    "0xaaa0000000000000000000000000000000000001",
			Wrapper: "0xaaa0000000000000000000000000000000000002",
			Close:   "0xaaa0000000000000000000000000000000000003",
		},
		Trading: TradingConfig{
			SymbolPair:      "EURUSD/GBPUSD",
			DefaultLeverage: 500,
			FrontendOwner:   "0xfff0000000000000000000000000000000000001",
		},
		Tables: TablesConfig{
			AssetsPath:   "tables/assets.json",
			PrefixesPath: "tables/prefixes.json",
		},
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "valid", mutate: func(*Config) {}},
		{
			name:    "missing base url",
			mutate:  func(c *Config) { c.Backend.BaseUrl = "" },
			wantErr: "BACKEND_BASE_URL",
		},
		{
			name:    "zero chain id",
			mutate:  func(c *Config) { c.Backend.ChainId = 0 },
			wantErr: "CHAIN_ID",
		},
		{
			name:    "missing wallet",
			mutate:  func(c *Config) { c.Wallet.Address = "" },
			wantErr: "WALLET_ADDRESS",
		},
		{
			name:    "missing open contract",
			mutate:  func(c *Config) { c.Contract.Open = "" },
			wantErr: "CONTRACT_OPEN",
		},
		{
			name:    "leverage too low",
			mutate:  func(c *Config) { c.Trading.DefaultLeverage = 1 },
			wantErr: "DEFAULT_LEVERAGE",
		},
		{
			name:    "missing frontend owner",
			mutate:  func(c *Config) { c.Trading.FrontendOwner = "" },
			wantErr: "FRONTEND_OWNER",
		},
		{
			name:    "missing assets path",
			mutate:  func(c *Config) { c.Tables.AssetsPath = "" },
			wantErr: "ASSETS_PATH",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() error = %v, want nil", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() error = %v, want mention of %s", err, tt.wantErr)
			}
		})
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("BACKEND_BASE_URL", "https://staging.example.com")
	t.Setenv("CHAIN_ID", "31337")
	t.Setenv("WALLET_ADDRESS", "0x2222222222222222222222222222222222222222")
	t.Setenv("DEFAULT_LEVERAGE", "100")
	t.Setenv("RFQ_PUBLISH_INTERVAL", "2s")
	t.Setenv("LOG_JSON", "true")

	cfg := validConfig()
	loadFromEnv(cfg)

	if cfg.Backend.BaseUrl != "https://staging.example.com" {
		t.Errorf("BaseUrl = %s", cfg.Backend.BaseUrl)
	}
	if cfg.Backend.ChainId != 31337 {
		t.Errorf("ChainId = %d", cfg.Backend.ChainId)
	}
	if cfg.Wallet.Address != "0x2222222222222222222222222222222222222222" {
		t.Errorf("Address = %s", cfg.Wallet.Address)
	}
	if cfg.Trading.DefaultLeverage != 100 {
		t.Errorf("DefaultLeverage = %d", cfg.Trading.DefaultLeverage)
	}
	if cfg.Trading.PublishInterval != 2*time.Second {
		t.Errorf("PublishInterval = %v", cfg.Trading.PublishInterval)
	}
	if !cfg.Server.LogJson {
		t.Error("LogJson should be true")
	}
}

func TestInvalidEnvValuesIgnored(t *testing.T) {
	t.Setenv("CHAIN_ID", "not-a-number")
	t.Setenv("DEFAULT_LEVERAGE", "abc")

	cfg := validConfig()
	loadFromEnv(cfg)

	if cfg.Backend.ChainId != 64165 {
		t.Errorf("ChainId = %d, want default preserved", cfg.Backend.ChainId)
	}
	if cfg.Trading.DefaultLeverage != 500 {
		t.Errorf("DefaultLeverage = %d, want default preserved", cfg.Trading.DefaultLeverage)
	}
}

func TestWalletConfigMasksSeed(t *testing.T) {
	w := WalletConfig{Address: "0x1111111111111111111111111111111111111111", SignerSeed: "super-secret"}

	s := w.String()
	if strings.Contains(s, "super-secret") {
		t.Error("String() leaked the signer seed")
	}
	if !strings.Contains(s, "REDACTED") {
		t.Error("String() should mark the seed as redacted")
	}
}
