// Package matcher attributes ledger entries to catalog sales.
//
// The catalog is indexed once per batch by sale period, and within each period by the
// new and old unit identifier, so an entry lookup is a handful of hash probes instead
// of a scan over the catalog. The package also holds the two batch-level passes that
// run after matching: the duplicate-attribution flag and the cancellation detector.
//
// Example usage:
//
//	index := matcher.NewCatalogIndex(catalog.Records, matcher.DefaultConfig())
//	m := matcher.NewPrecedenceMatcher(index, matcher.DefaultConfig())
//	entries = m.Apply(entries)
//	entries = matcher.Enrich(entries, index)
//	entries = matcher.FlagDuplicates(entries)
//	entries = matcher.DetectCancellations(entries, matcher.CreditAmount)
package matcher

import (
	"fmt"
)

// TieBreak decides which catalog record wins when several share an identifier within
// one period.
type TieBreak string

const (
	// TieBreakCatalogOrder keeps the first record in catalog file order.
	TieBreakCatalogOrder TieBreak = "catalog_order"
	// TieBreakCatalogID keeps the record with the smallest catalog ID.
	TieBreakCatalogID TieBreak = "catalog_id"
)

// DefaultSentinelPrefixLength is the number of narration runes used as the synthetic
// catalog ID of sentinel (forklift) entries.
const DefaultSentinelPrefixLength = 12

// Config holds matching options shared by every rule-set in a batch.
type Config struct {
	TieBreak TieBreak `json:"tie_break" mapstructure:"tie_break"`
	// SentinelPrefixLength applies to rule-sets that enable the sentinel carve-out.
	SentinelPrefixLength int `json:"sentinel_prefix_length" mapstructure:"sentinel_prefix_length"`
}

// DefaultConfig returns the matching configuration used when none is given.
func DefaultConfig() *Config {
	return &Config{
		TieBreak:             TieBreakCatalogOrder,
		SentinelPrefixLength: DefaultSentinelPrefixLength,
	}
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	switch c.TieBreak {
	case TieBreakCatalogOrder, TieBreakCatalogID:
	default:
		return fmt.Errorf("unknown tie break %q", c.TieBreak)
	}
	if c.SentinelPrefixLength <= 0 {
		return fmt.Errorf("sentinel prefix length must be positive, got %d", c.SentinelPrefixLength)
	}
	return nil
}
