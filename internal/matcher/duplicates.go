package matcher

import (
	"sales-ledger-reconciler/internal/models"
)

// FlagDuplicates marks every entry whose catalog ID is shared with at least one other
// entry in the batch. The flag is surfaced to the operator; no entry is dropped.
func FlagDuplicates(entries []models.LedgerEntry) []models.LedgerEntry {
	counts := make(map[string]int, len(entries))
	for i := range entries {
		if entries[i].HasMatch() {
			counts[entries[i].MatchedCatalogID]++
		}
	}

	out := models.CloneEntries(entries)
	for i := range out {
		out[i].Duplicate = out[i].HasMatch() && counts[out[i].MatchedCatalogID] > 1
	}
	return out
}

// RepeatedIDs counts entries whose non-empty catalog ID already appeared earlier in
// the batch. This is the "duplicates" figure of a run summary.
func RepeatedIDs(entries []models.LedgerEntry) int {
	seen := make(map[string]struct{}, len(entries))
	n := 0
	for i := range entries {
		id := entries[i].MatchedCatalogID
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			n++
			continue
		}
		seen[id] = struct{}{}
	}
	return n
}
