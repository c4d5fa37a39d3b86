// Package rulesets declares the ledger rule-sets: which columns a ledger needs,
// how identifiers are extracted and matched, which flags are computed and which
// labels are assigned. The pipeline in internal/reconciler executes them.
package rulesets

import (
	"sales-ledger-reconciler/internal/classifier"
	"sales-ledger-reconciler/internal/extractor"
	"sales-ledger-reconciler/internal/matcher"
	"sales-ledger-reconciler/internal/models"
)

// Ledger column names shared by every rule-set.
const (
	ColumnDate         = "회계일자"
	ColumnNarration    = "적요"
	ColumnCredit       = "대변"
	ColumnDebit        = "차변"
	ColumnBoundary     = "관리항목2"
	ColumnCounterparty = "거래처"
	ColumnAccountName  = "계정명"
)

// MatchMode selects how entries are attributed to catalog records.
type MatchMode int

const (
	MatchNone MatchMode = iota
	MatchPrecedence
	MatchLongForm
)

// String returns the mode name.
func (m MatchMode) String() string {
	switch m {
	case MatchPrecedence:
		return "precedence"
	case MatchLongForm:
		return "long-form"
	default:
		return "none"
	}
}

// Column is one derived output column.
type Column struct {
	Header string
	Value  func(e *models.LedgerEntry) string
}

// Ruleset is a declarative description of one ledger type.
type Ruleset struct {
	Key     string
	Name    string
	Keyword string
	// MergeKey reports whether results carry a catalog ID the final merge can join on.
	MergeKey bool

	RequiredColumns []string
	// Boundary keeps every column up to and including it. Ignored when KeepColumns is set.
	Boundary    string
	KeepColumns []string

	Extraction       extractor.Config
	Match            MatchMode
	SentinelCarveOut bool

	Enrich              bool
	FlagDuplicates      bool
	DetectCancellations bool
	Amount              matcher.AmountFunc

	Category       *classifier.Cascade
	Allocation     *classifier.Cascade
	Counterparties classifier.CounterpartyMap

	Columns []Column

	extractor *extractor.Extractor
}

// DisplayName renders the rule-set as "v1(상품매출)".
func (r *Ruleset) DisplayName() string {
	return r.Key + "(" + r.Name + ")"
}

// Validate reports whether the table carries every required column.
// Callers skip the file when it returns false.
func (r *Ruleset) Validate(t *models.Table) bool {
	return t != nil && t.HasColumns(r.RequiredColumns...)
}

// MissingColumns lists the required columns the table lacks.
func (r *Ruleset) MissingColumns(t *models.Table) []string {
	if t == nil {
		return append([]string(nil), r.RequiredColumns...)
	}
	return t.MissingColumns(r.RequiredColumns...)
}

// UsesAmounts reports whether the rule-set reads the credit column. Rule-sets that
// only classify narrations leave amounts unparsed.
func (r *Ruleset) UsesAmounts() bool {
	for _, c := range r.RequiredColumns {
		if c == ColumnCredit {
			return true
		}
	}
	return false
}

// Extractor returns the rule-set's identifier extractor. Rule-sets from this package
// carry a precompiled one; hand-built values compile on every call.
func (r *Ruleset) Extractor() *extractor.Extractor {
	if r.extractor != nil {
		return r.extractor
	}
	return extractor.MustNew(r.Extraction)
}

func compiled(r *Ruleset) *Ruleset {
	r.extractor = extractor.MustNew(r.Extraction)
	return r
}

// AmountFunc returns the amount cancellations are grouped by, credit by default.
func (r *Ruleset) AmountFunc() matcher.AmountFunc {
	if r.Amount == nil {
		return matcher.CreditAmount
	}
	return r.Amount
}

// Headers lists the derived column headers in output order.
func (r *Ruleset) Headers() []string {
	headers := make([]string, len(r.Columns))
	for i, c := range r.Columns {
		headers[i] = c.Header
	}
	return headers
}

// Render returns the derived cells for one entry.
func (r *Ruleset) Render(e *models.LedgerEntry) []string {
	cells := make([]string, len(r.Columns))
	for i, c := range r.Columns {
		cells[i] = c.Value(e)
	}
	return cells
}

// WithRules returns a copy of the rule-set with the file's tables layered on top.
// Tables absent from the file keep their built-in definition; counterparties merge.
func (r *Ruleset) WithRules(rf *classifier.RuleFile) (*Ruleset, error) {
	out := *r
	if rf == nil {
		return &out, nil
	}
	if rf.Category != nil {
		c, err := rf.Category.Build()
		if err != nil {
			return nil, err
		}
		out.Category = c
	}
	if rf.Allocation != nil {
		c, err := rf.Allocation.Build()
		if err != nil {
			return nil, err
		}
		out.Allocation = c
	}
	if m := rf.CounterpartyMap(); m != nil {
		out.Counterparties = r.Counterparties.Merge(m)
	}
	return &out, nil
}
