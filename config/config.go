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
	"fmt"
	"os"
	"strconv"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the complete application configuration
type Config struct {
	Backend  BackendConfig
	Wallet   WalletConfig
	Contract ContractConfig
	Trading  TradingConfig
	Tables   TablesConfig
	Server   ServerConfig
	Database DatabaseConfig
}

// BackendConfig holds the quoting backend endpoints
type BackendConfig struct {
	BaseUrl        string
	QuoteStreamUrl string
	ChainId        int64
	RpcUrl         string
	SessionToken   string
}

// WalletConfig holds the signing identity
type WalletConfig struct {
	Address    string
	SignerSeed string
}

// String masks the seed when printing
func (w WalletConfig) String() string {
	return fmt.Sprintf("WalletConfig{Address: %s, SignerSeed: [REDACTED]}", w.Address)
}

// GoString masks the seed when using %#v format
func (w WalletConfig) GoString() string {
	return w.String()
}

// ContractConfig holds the verifying contract addresses
type ContractConfig struct {
	Open    string
	Wrapper string
	Close   string
	Core    string
}

// TradingConfig holds trading defaults
type TradingConfig struct {
	SymbolPair      string
	DefaultLeverage int
	FrontendOwner   string
	PublishInterval time.Duration
	RefreshInterval time.Duration
}

// TablesConfig holds the rate table file locations
type TablesConfig struct {
	AssetsPath   string
	PrefixesPath string
}

// ServerConfig holds server settings
type ServerConfig struct {
	LogLevel string
	LogJson  bool
}

// DatabaseConfig holds database settings
type DatabaseConfig struct {
	Path string
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	// Default configuration
	cfg := &Config{
		Backend: BackendConfig{
			BaseUrl:        "https://api.pio.finance",
			QuoteStreamUrl: "wss://api.pio.finance/live_quotes",
			ChainId:        64165,
			RpcUrl:         "https://rpc.sonic.fantom.network",
		},
		Trading: TradingConfig{
			SymbolPair:      "EURUSD/GBPUSD",
			DefaultLeverage: 500,
			PublishInterval: 1 * time.Second,
			RefreshInterval: 500 * time.Second,
		},
		Tables: TablesConfig{
			AssetsPath:   "tables/assets.json",
			PrefixesPath: "tables/prefixes.json",
		},
		Server: ServerConfig{
			LogLevel: "info",
			LogJson:  false,
		},
		Database: DatabaseConfig{
			Path: "journal.db",
		},
	}

	loadFromEnv(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func loadFromEnv(cfg *Config) {
	// Backend
	if v := os.Getenv("BACKEND_BASE_URL"); v != "" {
		cfg.Backend.BaseUrl = v
	}
	if v := os.Getenv("QUOTE_STREAM_URL"); v != "" {
		cfg.Backend.QuoteStreamUrl = v
	}
	if v := os.Getenv("CHAIN_ID"); v != "" {
		if i, err := strconv.ParseInt(v, 10, 64); err == nil {
			cfg.Backend.ChainId = i
		}
	}
	if v := os.Getenv("CHAIN_RPC_URL"); v != "" {
		cfg.Backend.RpcUrl = v
	}
	if v := os.Getenv("SESSION_TOKEN"); v != "" {
		cfg.Backend.SessionToken = v
	}

	// Wallet
	if v := os.Getenv("WALLET_ADDRESS"); v != "" {
		cfg.Wallet.Address = v
	}
	if v := os.Getenv("SIGNER_SEED"); v != "" {
		cfg.Wallet.SignerSeed = v
	}

	// Contracts
	if v := os.Getenv("CONTRACT_OPEN"); v != "" {
		cfg.Contract.Open = v
	}
	if v := os.Getenv("CONTRACT_WRAPPER"); v != "" {
		cfg.Contract.Wrapper = v
	}
	if v := os.Getenv("CONTRACT_CLOSE"); v != "" {
		cfg.Contract.Close = v
	}
	if v := os.Getenv("CONTRACT_CORE"); v != "" {
		cfg.Contract.Core = v
	}

	// Trading
	if v := os.Getenv("SYMBOL_PAIR"); v != "" {
		cfg.Trading.SymbolPair = v
	}
	if v := os.Getenv("DEFAULT_LEVERAGE"); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			cfg.Trading.DefaultLeverage = i
		}
	}
	if v := os.Getenv("FRONTEND_OWNER"); v != "" {
		cfg.Trading.FrontendOwner = v
	}
	if v := os.Getenv("RFQ_PUBLISH_INTERVAL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Trading.PublishInterval = d
		}
	}
	if v := os.Getenv("RFQ_REFRESH_INTERVAL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Trading.RefreshInterval = d
		}
	}

	// Rate tables
	if v := os.Getenv("ASSETS_PATH"); v != "" {
		cfg.Tables.AssetsPath = v
	}
	if v := os.Getenv("PREFIXES_PATH"); v != "" {
		cfg.Tables.PrefixesPath = v
	}

	// Server
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Server.LogLevel = v
	}
	if v := os.Getenv("LOG_JSON"); v != "" {
		cfg.Server.LogJson = v == "true"
	}

	// Database
	if v := os.Getenv("DATABASE_PATH"); v != "" {
		cfg.Database.Path = v
	}
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Backend.BaseUrl == "" {
		return fmt.Errorf("BACKEND_BASE_URL is required")
	}
	if c.Backend.QuoteStreamUrl == "" {
		return fmt.Errorf("QUOTE_STREAM_URL is required")
	}
	if c.Backend.ChainId <= 0 {
		return fmt.Errorf("CHAIN_ID must be positive")
	}

	if c.Wallet.Address == "" {
		return fmt.Errorf("WALLET_ADDRESS is required")
	}

	if c.Contract.Open == "" {
		return fmt.Errorf("CONTRACT_OPEN is required")
	}
	if c.Contract.Wrapper == "" {
		return fmt.Errorf("CONTRACT_WRAPPER is required")
	}
	if c.Contract.Close == "" {
		return fmt.Errorf("CONTRACT_CLOSE is required")
	}

	if err := c.Trading.Validate(); err != nil {
		return fmt.Errorf("trading config: %w", err)
	}

	if c.Tables.AssetsPath == "" {
		return fmt.Errorf("ASSETS_PATH is required")
	}

	return nil
}

// Validate checks if a trading config is valid
func (t *TradingConfig) Validate() error {
	if t.SymbolPair == "" {
		return fmt.Errorf("SYMBOL_PAIR is required")
	}
	if t.DefaultLeverage < 2 {
		return fmt.Errorf("DEFAULT_LEVERAGE must be at least 2")
	}
	if t.FrontendOwner == "" {
		return fmt.Errorf("FRONTEND_OWNER is required")
	}
	return nil
}

// SetupLogger initializes the global Zap logger with structured JSON format
func SetupLogger(level string, useJSON bool) {
	zapConfig := zap.NewProductionConfig()

	zapConfig.EncoderConfig.TimeKey = "ts"
	zapConfig.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	zapConfig.EncoderConfig.CallerKey = "caller"
	zapConfig.EncoderConfig.EncodeCaller = zapcore.ShortCallerEncoder

	zapConfig.EncoderConfig.LevelKey = "level"
	zapConfig.EncoderConfig.MessageKey = "msg"
	zapConfig.EncoderConfig.StacktraceKey = "stacktrace"

	switch level {
	case "debug":
		zapConfig.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	case "info":
		zapConfig.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	case "warn":
		zapConfig.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	case "error":
		zapConfig.Level = zap.NewAtomicLevelAt(zap.ErrorLevel)
	default:
		zapConfig.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	}

	logger, err := zapConfig.Build(zap.AddCallerSkip(0))
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}

	zap.ReplaceGlobals(logger)
}
