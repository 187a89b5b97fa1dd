// Package config loads the application configuration from a YAML or JSON
// file, with environment-variable (and optional .env file) overrides.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/portivue/portivue"
)

// Config is the complete application configuration.
type Config struct {
	Store    StoreConfig    `json:"store" yaml:"store"`
	Tenant   TenantConfig   `json:"tenant" yaml:"tenant"`
	Currency CurrencyConfig `json:"currency" yaml:"currency"`
	EODHD    EODHDConfig    `json:"eodhd" yaml:"eodhd"`
}

// StoreConfig selects the persistence backend.
type StoreConfig struct {
	// Backend is "sqlite" or "memory".
	Backend string `json:"backend" yaml:"backend"`
	// Path is the SQLite database file; ignored by the memory backend.
	Path string `json:"path,omitempty" yaml:"path,omitempty"`
}

// TenantConfig identifies whose data the CLI operates on.
type TenantConfig struct {
	// Strategy is "user" or "org".
	Strategy string `json:"strategy" yaml:"strategy"`
	ID       string `json:"id" yaml:"id"`
}

// CurrencyConfig sets the reporting-currency fallbacks.
type CurrencyConfig struct {
	Base string `json:"base,omitempty" yaml:"base,omitempty"`
}

// EODHDConfig holds the market-data feed credentials.
type EODHDConfig struct {
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`
}

// Default returns a configuration usable without any file: an in-memory
// store scoped to a local single user.
func Default() *Config {
	return &Config{
		Store:  StoreConfig{Backend: "memory"},
		Tenant: TenantConfig{Strategy: "user", ID: "local"},
	}
}

// Load reads path (YAML first, JSON fallback), then applies environment
// overrides. An empty path yields the defaults plus overrides, so the CLI
// works with no config file at all.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			if jerr := json.Unmarshal(data, cfg); jerr != nil {
				return nil, fmt.Errorf("parse config (tried YAML and JSON): %w", err)
			}
		}
	}

	// A .env file is optional; OS environment always applies.
	_ = godotenv.Load()
	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("PV_STORE"); v != "" {
		c.Store.Backend = v
	}
	if v := os.Getenv("PV_DB_PATH"); v != "" {
		c.Store.Path = v
	}
	if v := os.Getenv("PV_SCOPE"); v != "" {
		c.Tenant.Strategy = v
	}
	if v := os.Getenv("PV_TENANT"); v != "" {
		c.Tenant.ID = v
	}
	if v := os.Getenv("PV_BASE_CURRENCY"); v != "" {
		c.Currency.Base = v
	}
	if v := os.Getenv("EODHD_API_KEY"); v != "" {
		c.EODHD.APIKey = v
	}
}

// Validate checks the configuration for usability.
func (c *Config) Validate() error {
	switch c.Store.Backend {
	case "memory":
	case "sqlite":
		if c.Store.Path == "" {
			return fmt.Errorf("store.path is required for the sqlite backend")
		}
	default:
		return fmt.Errorf("store.backend must be 'sqlite' or 'memory', got %q", c.Store.Backend)
	}
	if _, err := portivue.ParseScopeStrategy(c.Tenant.Strategy); err != nil {
		return err
	}
	if c.Tenant.ID == "" {
		return fmt.Errorf("tenant.id is required")
	}
	if c.Currency.Base != "" {
		if err := portivue.ValidateCurrency(c.Currency.Base); err != nil {
			return err
		}
	}
	return nil
}

// Scope returns the tenant scope the configuration selects.
func (c *Config) Scope() portivue.Scope {
	strategy, _ := portivue.ParseScopeStrategy(c.Tenant.Strategy)
	return portivue.Scope{Strategy: strategy, TenantID: c.Tenant.ID}
}

// Save writes the configuration to path, as YAML for .yaml/.yml extensions
// and indented JSON otherwise.
func (c *Config) Save(path string) error {
	var data []byte
	var err error
	if strings.HasSuffix(path, ".yaml") || strings.HasSuffix(path, ".yml") {
		data, err = yaml.Marshal(c)
	} else {
		data, err = json.MarshalIndent(c, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	return nil
}
