package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// ServerConfig holds server-specific configurations.
type ServerConfig struct {
	Port string `yaml:"port"`
}

// LoggingConfig holds logging-specific configurations.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// SolanaConfig holds chain RPC configurations.
type SolanaConfig struct {
	RPCURL            string  `yaml:"rpcURL"`
	RequestsPerSecond float64 `yaml:"requestsPerSecond"`
}

// PriceAPIConfig holds price provider configurations.
type PriceAPIConfig struct {
	PriceBaseURL            string `yaml:"priceBaseURL"`
	TokenListURL            string `yaml:"tokenListURL"`
	RequestTimeoutMillis    int64  `yaml:"requestTimeoutMillis"`
	BatchDelayMillis        int64  `yaml:"batchDelayMillis"`
	RegistryCacheTTLMinutes int    `yaml:"registryCacheTTLMinutes"`
	PriceCacheTTLMinutes    int    `yaml:"priceCacheTTLMinutes"`
}

// GatewayConfig holds content gateway configurations.
type GatewayConfig struct {
	IPFSGateways         []string `yaml:"ipfsGateways"`
	AttemptTimeoutMillis int64    `yaml:"attemptTimeoutMillis"`
}

// NFTConfig holds NFT resolution configurations.
type NFTConfig struct {
	FloorPriceFile string `yaml:"floorPriceFile"`
}

// PerformanceConfig holds performance-related configurations.
type PerformanceConfig struct {
	MaxConcurrentRoutines  int   `yaml:"max_concurrent_routines"`
	InterWalletDelayMillis int64 `yaml:"inter_wallet_delay_millis"`
}

// FilesConfig holds data file paths.
type FilesConfig struct {
	Wallets string `yaml:"wallets"`
}

// Config is the top-level configuration structure.
type Config struct {
	Server      ServerConfig      `yaml:"server"`
	Logging     LoggingConfig     `yaml:"logging"`
	Solana      SolanaConfig      `yaml:"solana"`
	PriceAPI    PriceAPIConfig    `yaml:"priceAPI"`
	Gateway     GatewayConfig     `yaml:"gateway"`
	NFT         NFTConfig         `yaml:"nft"`
	Performance PerformanceConfig `yaml:"performance"`
	Files       FilesConfig       `yaml:"files"`
}

// Load reads the YAML configuration file from the given path, applies
// environment overrides and fills in defaults. A missing config file is
// tolerated; a malformed one is not.
func Load(path string) (*Config, error) {
	// .env is optional local convenience; real deployments set the
	// environment directly.
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		logrus.WithError(err).Debug("No .env file loaded")
	}

	var cfg Config
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to unmarshal config data from %s: %w", path, err)
		}
	case os.IsNotExist(err):
		logrus.WithField("path", path).Warn("Config file not found, using defaults and environment")
	default:
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	applyEnvOverrides(&cfg)
	applyDefaults(&cfg)
	return &cfg, nil
}

// applyEnvOverrides lets the environment win over the file. The RPC URL
// override chain matches how deployments usually inject a paid endpoint
// without touching the config file.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("SOLANA_RPC_URL"); v != "" {
		cfg.Solana.RPCURL = v
	} else if v := os.Getenv("PUBLIC_SOLANA_RPC_URL"); v != "" {
		cfg.Solana.RPCURL = v
	}
	if v := os.Getenv("PORT"); v != "" {
		cfg.Server.Port = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
}

func applyDefaults(cfg *Config) {
	if cfg.Server.Port == "" {
		cfg.Server.Port = "8080"
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Solana.RPCURL == "" {
		cfg.Solana.RPCURL = "https://api.mainnet-beta.solana.com"
		logrus.Warn("No RPC URL configured, falling back to the public mainnet endpoint")
	}
	if cfg.Solana.RequestsPerSecond <= 0 {
		cfg.Solana.RequestsPerSecond = 10
	}
	if cfg.PriceAPI.RequestTimeoutMillis <= 0 {
		cfg.PriceAPI.RequestTimeoutMillis = 10000
	}
	if cfg.PriceAPI.BatchDelayMillis <= 0 {
		cfg.PriceAPI.BatchDelayMillis = 200
	}
	if cfg.PriceAPI.RegistryCacheTTLMinutes <= 0 {
		cfg.PriceAPI.RegistryCacheTTLMinutes = 60
	}
	if cfg.PriceAPI.PriceCacheTTLMinutes <= 0 {
		cfg.PriceAPI.PriceCacheTTLMinutes = 5
	}
	if cfg.Gateway.AttemptTimeoutMillis <= 0 {
		cfg.Gateway.AttemptTimeoutMillis = 5000
	}
	if cfg.Performance.MaxConcurrentRoutines <= 0 {
		cfg.Performance.MaxConcurrentRoutines = 3
	}
	if cfg.Performance.InterWalletDelayMillis < 0 {
		cfg.Performance.InterWalletDelayMillis = 0
	}
	if cfg.Files.Wallets == "" {
		cfg.Files.Wallets = "data/wallets.txt"
	}
}
