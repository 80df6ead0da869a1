// Copyright 2025 Certen Protocol

package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all configuration for one validator node: where its
// authenticated state store lives, how its ABCI application talks to
// CometBFT, the platform/fee parameters new blocks execute under, and
// the optional Postgres sink the audit log writes finalized blocks to.
type Config struct {
	// Node identity
	ChainID         string
	DataDir         string
	PlatformVersion uint64
	InitialHeight   int64

	// ABCI / consensus engine
	ABCIListenAddr string // e.g. "tcp://0.0.0.0:26658"
	MaxTxBytes     int64

	// Fee parameters (§4.D)
	StorageCreditsPerByte    uint64
	ProcessingCreditsPerOp   uint64
	ProcessingCreditsPerByte uint64
	EpochLength              time.Duration
	GenesisTime              time.Time

	// Query service
	QueryListenAddr string // e.g. "0.0.0.0:26659", empty disables the standalone query server

	// Observability
	MetricsAddr string // e.g. "0.0.0.0:9090", empty disables the /metrics endpoint
	LogLevel    string

	// Audit log (pkg/auditlog) — optional Postgres secondary index of
	// finalized blocks; consensus never reads from or blocks on it.
	DatabaseURL         string
	DatabaseMaxConns    int
	DatabaseMaxIdleTime time.Duration
	DatabaseMaxLifetime time.Duration

	// Base chain connectivity (pkg/rpc). BaseChainRPC is loaded but not
	// read by main.go, which always runs the node against
	// rpc.NewMockClient(); there is no live base-chain client.
	BaseChainRPC string
}

// Load reads configuration from environment variables. Call Validate
// or ValidateForDevelopment afterward before starting the node.
func Load() (*Config, error) {
	genesisTime := time.Now().UTC()
	if raw := getEnv("GENESIS_TIME", ""); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return nil, fmt.Errorf("config: GENESIS_TIME must be RFC3339: %w", err)
		}
		genesisTime = parsed
	}

	cfg := &Config{
		ChainID:         getEnv("CHAIN_ID", "certen-devnet"),
		DataDir:         getEnv("DATA_DIR", "./data"),
		PlatformVersion: uint64(getEnvInt("PLATFORM_VERSION", 1)),
		InitialHeight:   int64(getEnvInt("INITIAL_HEIGHT", 1)),

		ABCIListenAddr: getEnv("ABCI_LISTEN_ADDR", "tcp://0.0.0.0:26658"),
		MaxTxBytes:     int64(getEnvInt("MAX_TX_BYTES", 1<<20)),

		StorageCreditsPerByte:    uint64(getEnvInt("STORAGE_CREDITS_PER_BYTE", 50)),
		ProcessingCreditsPerOp:   uint64(getEnvInt("PROCESSING_CREDITS_PER_OP", 1000)),
		ProcessingCreditsPerByte: uint64(getEnvInt("PROCESSING_CREDITS_PER_BYTE", 5)),
		EpochLength:              getEnvDuration("EPOCH_LENGTH", 24*time.Hour),
		GenesisTime:              genesisTime,

		QueryListenAddr: getEnv("QUERY_LISTEN_ADDR", "0.0.0.0:26659"),

		MetricsAddr: getEnv("METRICS_ADDR", "0.0.0.0:9090"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),

		DatabaseURL:         getEnv("DATABASE_URL", ""),
		DatabaseMaxConns:    getEnvInt("DATABASE_MAX_CONNS", 10),
		DatabaseMaxIdleTime: getEnvDuration("DATABASE_MAX_IDLE_TIME", 5*time.Minute),
		DatabaseMaxLifetime: getEnvDuration("DATABASE_MAX_LIFETIME", time.Hour),

		BaseChainRPC: getEnv("BASE_CHAIN_RPC", ""),
	}

	return cfg, nil
}

// Validate checks that configuration is complete and internally
// consistent before a production node starts.
func (c *Config) Validate() error {
	var errs []string

	if c.ChainID == "" {
		errs = append(errs, "CHAIN_ID is required but not set")
	}
	if c.DataDir == "" {
		errs = append(errs, "DATA_DIR is required but not set")
	}
	if c.PlatformVersion == 0 {
		errs = append(errs, "PLATFORM_VERSION must be at least 1")
	}
	if c.MaxTxBytes <= 0 {
		errs = append(errs, "MAX_TX_BYTES must be positive")
	}
	if c.EpochLength <= 0 {
		errs = append(errs, "EPOCH_LENGTH must be positive")
	}
	if c.DatabaseURL != "" && strings.Contains(c.DatabaseURL, "sslmode=disable") {
		errs = append(errs, "DATABASE_URL must not disable TLS in production (sslmode=disable)")
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}

// ValidateForDevelopment performs relaxed validation suitable for a
// local devnet node running without a Postgres audit log or a live
// base chain.
func (c *Config) ValidateForDevelopment() error {
	var errs []string

	if c.ChainID == "" {
		errs = append(errs, "CHAIN_ID is required")
	}
	if c.MaxTxBytes <= 0 {
		errs = append(errs, "MAX_TX_BYTES must be positive")
	}

	if len(errs) > 0 {
		return fmt.Errorf("development configuration validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
