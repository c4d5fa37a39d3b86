// Package models holds the records that flow through a reconciliation run.
//
// LedgerEntry and CatalogRecord are inputs loaded fresh for every run. The derived
// fields on LedgerEntry are filled in by the pipeline stages, each of which returns
// a new slice instead of mutating its input.
package models

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// IdentifierToken is a unit identifier (vehicle plate or equipment class) found in a
// narration. The empty token means nothing was found.
type IdentifierToken string

// IsEmpty reports whether the token is the null token.
func (t IdentifierToken) IsEmpty() bool {
	return t == ""
}

// String returns the token text.
func (t IdentifierToken) String() string {
	return string(t)
}

// Period is a (year, month) pair used as the join and grouping granularity.
type Period struct {
	Year  int `json:"year"`
	Month int `json:"month"`
}

// PeriodOf returns the period a date falls in.
func PeriodOf(t time.Time) Period {
	return Period{Year: t.Year(), Month: int(t.Month())}
}

// String renders the period as YYYY-MM.
func (p Period) String() string {
	return fmt.Sprintf("%04d-%02d", p.Year, p.Month)
}

// IsZero reports whether the period is unset.
func (p Period) IsZero() bool {
	return p.Year == 0 && p.Month == 0
}

// PeriodMatch is the tri-state result of comparing an entry's month with the
// matched sale's month.
type PeriodMatch int

const (
	// PeriodUnknown means no catalog period was available.
	PeriodUnknown PeriodMatch = iota
	PeriodMatched
	PeriodMismatched
)

// String renders the flag the way the ledger workbooks expect it.
func (p PeriodMatch) String() string {
	switch p {
	case PeriodMatched:
		return "TRUE"
	case PeriodMismatched:
		return "FALSE"
	default:
		return ""
	}
}

// CancellationNote marks entries removed from attribution by the cancellation detector.
type CancellationNote string

const (
	CancellationNone     CancellationNote = ""
	CancellationCanceled CancellationNote = "취소"
)

// LedgerEntry is one journal line plus everything the pipeline derives from it.
type LedgerEntry struct {
	// Row is the 0-based position of the source row after summary rows were dropped.
	Row int `json:"row"`
	// Values are the pass-through cells, aligned with the run's pass-through columns.
	Values []string `json:"values"`

	AccountingDate time.Time       `json:"accounting_date"`
	Narration      string          `json:"narration"`
	Credit         decimal.Decimal `json:"credit"`
	Debit          decimal.Decimal `json:"debit"`
	Counterparty   string          `json:"counterparty,omitempty"`
	AccountName    string          `json:"account_name,omitempty"`

	Period Period `json:"period"`

	// Identifier1 and Identifier2 keep their positional roles in bracket mode
	// (token before "(" and token inside it). Scan mode fills Identifier1 only.
	Identifier1 IdentifierToken `json:"identifier1,omitempty"`
	Identifier2 IdentifierToken `json:"identifier2,omitempty"`

	// MatchedCatalogID is empty when the entry is not attributed to a sale.
	MatchedCatalogID string `json:"matched_catalog_id,omitempty"`

	// Catalog-side enrichment for the matched record.
	SalePeriod  Period      `json:"sale_period"`
	Channel     string      `json:"channel,omitempty"`
	PeriodMatch PeriodMatch `json:"period_match"`

	Duplicate       bool             `json:"duplicate"`
	Cancellation    CancellationNote `json:"cancellation,omitempty"`
	CancellationSeq int              `json:"cancellation_seq"`

	Category              string `json:"category,omitempty"`
	Allocation            string `json:"allocation,omitempty"`
	CanonicalCounterparty string `json:"canonical_counterparty,omitempty"`
}

// HasMatch reports whether the entry is attributed to a catalog record.
func (e *LedgerEntry) HasMatch() bool {
	return e.MatchedCatalogID != ""
}

// IsCanceled reports whether the cancellation detector removed the entry's attribution.
func (e *LedgerEntry) IsCanceled() bool {
	return e.Cancellation == CancellationCanceled
}

// Cancel flags the entry as canceled and clears its attribution.
func (e *LedgerEntry) Cancel(seq int) {
	e.Cancellation = CancellationCanceled
	e.CancellationSeq = seq
	e.MatchedCatalogID = ""
}

// CloneEntries copies a batch so a stage can set derived fields without touching its input.
// Values are shared because no stage writes to them.
func CloneEntries(entries []LedgerEntry) []LedgerEntry {
	out := make([]LedgerEntry, len(entries))
	copy(out, entries)
	return out
}

// CatalogRecord is one sale in the reference catalog.
type CatalogRecord struct {
	CatalogID         string          `json:"catalog_id"`
	SaleDate          time.Time       `json:"sale_date"`
	SalePeriod        Period          `json:"sale_period"`
	NewUnitIdentifier IdentifierToken `json:"new_unit_identifier,omitempty"`
	OldUnitIdentifier IdentifierToken `json:"old_unit_identifier,omitempty"`
	Channel           string          `json:"channel,omitempty"`
	// Row is the record's position in the catalog table.
	Row int `json:"row"`
}

// Catalog is a read-only snapshot of the sales catalog for one batch.
type Catalog struct {
	Records []CatalogRecord
	// Table is the source table, kept for the final merge output.
	Table *Table
}

// Len returns the number of records in the snapshot.
func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.Records)
}
