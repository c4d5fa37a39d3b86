package reconciler

import (
	"fmt"

	"sales-ledger-reconciler/internal/matcher"
	"sales-ledger-reconciler/internal/parsers"
)

// Config holds configuration options for the reconciliation service
type Config struct {
	// MaxConcurrentFiles bounds how many ledgers of one batch run at a time.
	MaxConcurrentFiles int `mapstructure:"max_concurrent_files"`

	Matching *matcher.Config        `mapstructure:"matching"`
	Catalog  *parsers.CatalogConfig `mapstructure:"catalog"`

	// RulesDir holds optional <key>.yaml rule-table overrides.
	RulesDir string `mapstructure:"rules_dir"`
}

// DefaultConfig returns a default configuration for the reconciliation service
func DefaultConfig() *Config {
	return &Config{
		MaxConcurrentFiles: parsers.DefaultConcurrency,
		Matching:           matcher.DefaultConfig(),
		Catalog:            parsers.DefaultCatalogConfig(),
	}
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.MaxConcurrentFiles <= 0 {
		return fmt.Errorf("max concurrent files must be positive, got %d", c.MaxConcurrentFiles)
	}
	if c.Matching != nil {
		if err := c.Matching.Validate(); err != nil {
			return fmt.Errorf("matching: %w", err)
		}
	}
	if c.Catalog != nil {
		if err := c.Catalog.Validate(); err != nil {
			return fmt.Errorf("catalog: %w", err)
		}
	}
	return nil
}

func (c *Config) matching() *matcher.Config {
	if c.Matching == nil {
		return matcher.DefaultConfig()
	}
	return c.Matching
}

func (c *Config) catalog() *parsers.CatalogConfig {
	if c.Catalog == nil {
		return parsers.DefaultCatalogConfig()
	}
	return c.Catalog
}
