package matcher

import (
	"sales-ledger-reconciler/internal/extractor"
	"sales-ledger-reconciler/internal/models"
)

// Matcher resolves one ledger entry to at most one catalog ID. The empty string
// means the entry is unresolved, which is a normal outcome.
type Matcher interface {
	Match(entry *models.LedgerEntry) string
}

// Apply runs a matcher over a batch and returns a copy with MatchedCatalogID set.
func Apply(m Matcher, entries []models.LedgerEntry) []models.LedgerEntry {
	out := models.CloneEntries(entries)
	for i := range out {
		out[i].MatchedCatalogID = m.Match(&out[i])
	}
	return out
}

type probe struct {
	token func(e *models.LedgerEntry) models.IdentifierToken
	field IdentifierField
}

func identifier1(e *models.LedgerEntry) models.IdentifierToken { return e.Identifier1 }
func identifier2(e *models.LedgerEntry) models.IdentifierToken { return e.Identifier2 }

// precedence is the fixed probe order. Empty tokens are skipped, so an entry with a
// single token reduces to new-field then old-field.
var precedence = []probe{
	{identifier1, NewIdentifier},
	{identifier2, NewIdentifier},
	{identifier1, OldIdentifier},
	{identifier2, OldIdentifier},
}

// PrecedenceMatcher looks entries up in their own period's bucket, trying each
// extracted identifier against the new field before the old field.
type PrecedenceMatcher struct {
	index        *CatalogIndex
	carveOut     bool
	prefixLength int
}

// Option customizes a PrecedenceMatcher.
type Option func(*PrecedenceMatcher)

// WithSentinelCarveOut assigns sentinel (forklift) entries a synthetic catalog ID made
// of the first runes of their narration. Such units have no catalog counterpart.
func WithSentinelCarveOut() Option {
	return func(m *PrecedenceMatcher) {
		m.carveOut = true
	}
}

// NewPrecedenceMatcher creates a matcher over a built index.
func NewPrecedenceMatcher(index *CatalogIndex, config *Config, opts ...Option) *PrecedenceMatcher {
	if config == nil {
		config = DefaultConfig()
	}
	m := &PrecedenceMatcher{
		index:        index,
		prefixLength: config.SentinelPrefixLength,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Match implements Matcher.
func (m *PrecedenceMatcher) Match(entry *models.LedgerEntry) string {
	if m.carveOut && entry.Identifier1 == extractor.Sentinel {
		return runePrefix(entry.Narration, m.prefixLength)
	}

	for _, p := range precedence {
		if rec, ok := m.index.Lookup(entry.Period, p.field, p.token(entry)); ok {
			return rec.CatalogID
		}
	}
	return ""
}

// LongFormMatcher joins an entry's first identifier against the melted catalog on
// (period, identifier). For entries with one token it agrees with PrecedenceMatcher.
type LongFormMatcher struct {
	index *CatalogIndex
}

// NewLongFormMatcher creates a long-form matcher over a built index.
func NewLongFormMatcher(index *CatalogIndex) *LongFormMatcher {
	return &LongFormMatcher{index: index}
}

// Match implements Matcher.
func (m *LongFormMatcher) Match(entry *models.LedgerEntry) string {
	if rec, ok := m.index.LookupLongForm(entry.Period, entry.Identifier1); ok {
		return rec.CatalogID
	}
	return ""
}

// Enrich copies the matched record's sale period and channel onto each entry and sets
// the period-match flag. Entries whose ID is not in the catalog (unresolved or
// synthetic) get PeriodUnknown.
func Enrich(entries []models.LedgerEntry, index *CatalogIndex) []models.LedgerEntry {
	out := models.CloneEntries(entries)
	for i := range out {
		e := &out[i]
		e.SalePeriod = models.Period{}
		e.Channel = ""
		e.PeriodMatch = models.PeriodUnknown

		if !e.HasMatch() {
			continue
		}
		rec, ok := index.Record(e.MatchedCatalogID)
		if !ok || rec.SalePeriod.IsZero() {
			continue
		}

		e.SalePeriod = rec.SalePeriod
		e.Channel = rec.Channel
		if e.Period.Month == rec.SalePeriod.Month {
			e.PeriodMatch = models.PeriodMatched
		} else {
			e.PeriodMatch = models.PeriodMismatched
		}
	}
	return out
}

func runePrefix(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
