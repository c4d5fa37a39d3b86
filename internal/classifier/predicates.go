package classifier

import (
	"strings"

	"sales-ledger-reconciler/internal/models"
)

// Predicate is a condition over one classified entry.
type Predicate func(e *models.LedgerEntry) bool

// NarrationContains holds when the narration contains any of the substrings.
func NarrationContains(substrings ...string) Predicate {
	return func(e *models.LedgerEntry) bool {
		for _, s := range substrings {
			if s != "" && strings.Contains(e.Narration, s) {
				return true
			}
		}
		return false
	}
}

// AccountIs holds when the account name equals one of the names.
func AccountIs(names ...string) Predicate {
	set := make(map[string]struct{}, len(names))
	for _, n := range names {
		set[n] = struct{}{}
	}
	return func(e *models.LedgerEntry) bool {
		_, ok := set[e.AccountName]
		return ok
	}
}

// CatalogIDHasPrefix holds when the matched catalog ID starts with prefix.
// Unmatched entries never satisfy it.
func CatalogIDHasPrefix(prefix string) Predicate {
	return func(e *models.LedgerEntry) bool {
		return e.HasMatch() && strings.HasPrefix(e.MatchedCatalogID, prefix)
	}
}

// IdentifierMissing holds when no identifier token was extracted.
func IdentifierMissing() Predicate {
	return func(e *models.LedgerEntry) bool {
		return e.Identifier1.IsEmpty()
	}
}

// CategoryIs holds when a previously assigned category equals label.
func CategoryIs(label string) Predicate {
	return func(e *models.LedgerEntry) bool {
		return e.Category == label
	}
}

// PeriodMatched holds when the entry's month equals the matched sale month.
func PeriodMatched() Predicate {
	return func(e *models.LedgerEntry) bool {
		return e.PeriodMatch == models.PeriodMatched
	}
}

// All holds when every predicate holds. All() is always true.
func All(ps ...Predicate) Predicate {
	return func(e *models.LedgerEntry) bool {
		for _, p := range ps {
			if !p(e) {
				return false
			}
		}
		return true
	}
}

// Any holds when at least one predicate holds.
func Any(ps ...Predicate) Predicate {
	return func(e *models.LedgerEntry) bool {
		for _, p := range ps {
			if p(e) {
				return true
			}
		}
		return false
	}
}

// Not negates p.
func Not(p Predicate) Predicate {
	return func(e *models.LedgerEntry) bool {
		return !p(e)
	}
}

// Always holds for every entry.
func Always() Predicate {
	return func(*models.LedgerEntry) bool { return true }
}
