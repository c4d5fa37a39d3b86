package matcher

import (
	"sales-ledger-reconciler/internal/models"

	"github.com/shopspring/decimal"
)

// AmountFunc selects the amount a rule-set groups cancellations by.
type AmountFunc func(e *models.LedgerEntry) decimal.Decimal

// CreditAmount selects the credit column.
func CreditAmount(e *models.LedgerEntry) decimal.Decimal { return e.Credit }

// DebitAmount selects the debit column.
func DebitAmount(e *models.LedgerEntry) decimal.Decimal { return e.Debit }

// cancellationKey partitions a batch. A zero amount lands in the non-positive bucket.
type cancellationKey struct {
	period     models.Period
	identifier models.IdentifierToken
	magnitude  string
	positive   bool
}

func keyOf(e *models.LedgerEntry, amount AmountFunc) cancellationKey {
	a := amount(e)
	return cancellationKey{
		period:     e.Period,
		identifier: e.Identifier1,
		magnitude:  a.Abs().String(),
		positive:   a.IsPositive(),
	}
}

// DetectCancellations flags every member of a partition holding more than one entry,
// where a partition is (period, identifier1, |amount|, amount > 0). The empty
// identifier is a valid partition value. Flagged entries lose their catalog
// attribution; nothing later in the run restores it.
//
// Each entry's CancellationSeq is its order of appearance within its partition.
func DetectCancellations(entries []models.LedgerEntry, amount AmountFunc) []models.LedgerEntry {
	if amount == nil {
		amount = CreditAmount
	}

	out := models.CloneEntries(entries)
	keys := make([]cancellationKey, len(out))
	counts := make(map[cancellationKey]int, len(out))

	for i := range out {
		keys[i] = keyOf(&out[i], amount)
		out[i].CancellationSeq = counts[keys[i]]
		counts[keys[i]]++
	}

	for i := range out {
		if counts[keys[i]] > 1 {
			out[i].Cancel(out[i].CancellationSeq)
		}
	}
	return out
}

// CountCanceled returns how many entries in the batch are flagged canceled.
func CountCanceled(entries []models.LedgerEntry) int {
	n := 0
	for i := range entries {
		if entries[i].IsCanceled() {
			n++
		}
	}
	return n
}
