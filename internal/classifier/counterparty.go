package classifier

import (
	"sort"

	"sales-ledger-reconciler/internal/models"
)

// CounterpartyMap folds raw counterparty spellings onto one canonical name.
// Lookups are exact; unknown names map to themselves.
type CounterpartyMap map[string]string

// Canonical returns the canonical name for raw.
func (m CounterpartyMap) Canonical(raw string) string {
	if c, ok := m[raw]; ok {
		return c
	}
	return raw
}

// Apply sets CanonicalCounterparty on a copy of the batch.
func (m CounterpartyMap) Apply(entries []models.LedgerEntry) []models.LedgerEntry {
	out := models.CloneEntries(entries)
	for i := range out {
		out[i].CanonicalCounterparty = m.Canonical(out[i].Counterparty)
	}
	return out
}

// Merge returns a new map with other's entries layered over m.
func (m CounterpartyMap) Merge(other CounterpartyMap) CounterpartyMap {
	merged := make(CounterpartyMap, len(m)+len(other))
	for k, v := range m {
		merged[k] = v
	}
	for k, v := range other {
		merged[k] = v
	}
	return merged
}

// Canonicals lists the distinct canonical names in sorted order.
func (m CounterpartyMap) Canonicals() []string {
	seen := make(map[string]struct{}, len(m))
	names := make([]string, 0, len(m))
	for _, v := range m {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		names = append(names, v)
	}
	sort.Strings(names)
	return names
}
