// Package config persists ethereal's settings as JSON under the config
// directory (default ~/.ethereal) and holds the explorer API key in the OS
// keychain.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"
)

const (
	defaultNetwork = "ethereum"

	configFile = "config.json"
	cacheDir   = "cache"

	// EnvConfigDir overrides the config directory.
	EnvConfigDir = "ETHEREAL_CONFIG_DIR"
	// EnvRPC overrides the RPC endpoint for a single invocation.
	EnvRPC = "ETHEREAL_RPC"
	// EnvEtherscanKey overrides the keychain-stored explorer API key.
	EnvEtherscanKey = "ETHEREAL_ETHERSCAN_KEY"
)

// Config holds all persisted settings.
type Config struct {
	DefaultNetwork string              `json:"default_network"`
	CustomRPCs     map[string][]string `json:"custom_rpcs"`
	CacheEnabled   bool                `json:"cache_enabled"`

	// internal: config dir path used for Save()
	configDir string
}

// Load reads config from dir (or creates defaults). dir defaults to the
// ETHEREAL_CONFIG_DIR env var, then ~/.ethereal.
func Load(dir string) (*Config, error) {
	if dir == "" {
		dir = os.Getenv(EnvConfigDir)
	}
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("could not determine home dir: %w", err)
		}
		dir = filepath.Join(home, ".ethereal")
	}

	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("could not create config dir: %w", err)
	}

	cfg := defaults(dir)

	path := filepath.Join(dir, configFile)
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	cfg.configDir = dir
	if cfg.CustomRPCs == nil {
		cfg.CustomRPCs = make(map[string][]string)
	}

	return cfg, nil
}

// Save writes the config to disk.
func (c *Config) Save() error {
	if err := os.MkdirAll(c.configDir, 0o700); err != nil {
		return err
	}
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(c.configDir, configFile), data, 0o600)
}

// AddRPC adds a custom RPC URL for a chain.
func (c *Config) AddRPC(chain, url string) error {
	if c.CustomRPCs == nil {
		c.CustomRPCs = make(map[string][]string)
	}
	if slices.Contains(c.CustomRPCs[chain], url) {
		return fmt.Errorf("RPC %s already exists for chain %s", url, chain)
	}
	c.CustomRPCs[chain] = append(c.CustomRPCs[chain], url)
	return nil
}

// RemoveRPC removes a custom RPC URL for a chain.
func (c *Config) RemoveRPC(chain, url string) error {
	rpcs := c.CustomRPCs[chain]
	idx := slices.Index(rpcs, url)
	if idx == -1 {
		return fmt.Errorf("RPC %s not found for chain %s", url, chain)
	}
	c.CustomRPCs[chain] = slices.Delete(rpcs, idx, idx+1)
	return nil
}

// RPCs returns the endpoints to use for a chain: the ETHEREAL_RPC override,
// then custom RPCs, then the provided built-in defaults.
func (c *Config) RPCs(chain string, builtin []string) []string {
	if url := os.Getenv(EnvRPC); url != "" {
		return []string{url}
	}
	if custom := c.CustomRPCs[chain]; len(custom) > 0 {
		return append(slices.Clone(custom), builtin...)
	}
	return builtin
}

// Dir returns the config directory.
func (c *Config) Dir() string {
	return c.configDir
}

// CacheDir returns the response cache directory.
func (c *Config) CacheDir() string {
	return filepath.Join(c.configDir, cacheDir)
}

func defaults(dir string) *Config {
	return &Config{
		DefaultNetwork: defaultNetwork,
		CustomRPCs:     make(map[string][]string),
		CacheEnabled:   true,
		configDir:      dir,
	}
}
