package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

// Config is the synthpoold daemon configuration, loaded from TOML.
type Config struct {
	Environment string `toml:"environment"`
	DataDir     string `toml:"data_dir"`

	// PairSourceEndpoint is the AMM gateway serving pair, token and bank
	// queries.
	PairSourceEndpoint string `toml:"pair_source_endpoint"`

	// PoolAddress is the pool's own account; RouterAddress is the external
	// swap router targeted by buy-and-burn instructions.
	PoolAddress   string `toml:"pool_address"`
	RouterAddress string `toml:"router_address"`

	KeeperIntervalSeconds int64  `toml:"keeper_interval_seconds"`
	MetricsAddress        string `toml:"metrics_address"`
}

// Default returns the baseline configuration.
func Default() Config {
	return Config{
		Environment:           "dev",
		DataDir:               "./synthpool-data",
		KeeperIntervalSeconds: 60,
		MetricsAddress:        ":9464",
	}
}

// Load reads the TOML file at path over the defaults. An empty path returns
// the defaults unvalidated so callers can fill in the rest programmatically.
func Load(path string) (Config, error) {
	cfg := Default()
	if strings.TrimSpace(path) == "" {
		return cfg, nil
	}
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: decode %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects configurations the daemon cannot run with.
func (c Config) Validate() error {
	if strings.TrimSpace(c.DataDir) == "" {
		return fmt.Errorf("config: data_dir is required")
	}
	if strings.TrimSpace(c.PairSourceEndpoint) == "" {
		return fmt.Errorf("config: pair_source_endpoint is required")
	}
	if strings.TrimSpace(c.PoolAddress) == "" {
		return fmt.Errorf("config: pool_address is required")
	}
	if strings.TrimSpace(c.RouterAddress) == "" {
		return fmt.Errorf("config: router_address is required")
	}
	if c.KeeperIntervalSeconds <= 0 {
		return fmt.Errorf("config: keeper_interval_seconds must be positive")
	}
	return nil
}

// KeeperInterval returns the keeper cadence as a duration.
func (c Config) KeeperInterval() time.Duration {
	return time.Duration(c.KeeperIntervalSeconds) * time.Second
}
