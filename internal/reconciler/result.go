package reconciler

import (
	"time"

	"sales-ledger-reconciler/internal/matcher"
	"sales-ledger-reconciler/internal/models"
	"sales-ledger-reconciler/internal/rulesets"
)

// Stats summarizes one annotated ledger.
type Stats struct {
	Total int `json:"total"`
	// Matched entries carry a catalog ID; Unmatched is the empty-ID count.
	Matched   int `json:"matched"`
	Unmatched int `json:"unmatched"`
	// RepeatedIDs counts entries whose catalog ID already appeared earlier.
	RepeatedIDs int `json:"repeated_ids"`
	Duplicates  int `json:"duplicates"`
	Canceled    int `json:"canceled"`
}

// Result is the annotated output of one pipeline run.
type Result struct {
	RunID   string             `json:"run_id,omitempty"`
	File    string             `json:"file"`
	Ruleset *rulesets.Ruleset  `json:"-"`
	Name    string             `json:"ruleset"`
	// PassThrough are the input columns carried into the output, in input order.
	PassThrough []string             `json:"pass_through"`
	Entries     []models.LedgerEntry `json:"entries"`
	Stats       Stats                `json:"stats"`
	ProcessedAt time.Time            `json:"processed_at"`
}

func newResult(rs *rulesets.Ruleset, file string, passThrough []string, entries []models.LedgerEntry) *Result {
	return &Result{
		File:        file,
		Ruleset:     rs,
		Name:        rs.DisplayName(),
		PassThrough: append([]string(nil), passThrough...),
		Entries:     entries,
		Stats:       computeStats(entries),
		ProcessedAt: time.Now(),
	}
}

func computeStats(entries []models.LedgerEntry) Stats {
	s := Stats{Total: len(entries), RepeatedIDs: matcher.RepeatedIDs(entries)}
	for i := range entries {
		e := &entries[i]
		if e.HasMatch() {
			s.Matched++
		}
		if e.Duplicate {
			s.Duplicates++
		}
		if e.IsCanceled() {
			s.Canceled++
		}
	}
	s.Unmatched = s.Total - s.Matched
	return s
}

// Columns returns the output header: pass-through columns then derived columns.
func (r *Result) Columns() []string {
	return append(append([]string(nil), r.PassThrough...), r.Ruleset.Headers()...)
}

// Rows renders every entry in input order.
func (r *Result) Rows() [][]string {
	rows := make([][]string, len(r.Entries))
	for i := range r.Entries {
		e := &r.Entries[i]
		row := make([]string, 0, len(r.PassThrough)+len(r.Ruleset.Columns))
		row = append(row, e.Values...)
		for len(row) < len(r.PassThrough) {
			row = append(row, "")
		}
		rows[i] = append(row, r.Ruleset.Render(e)...)
	}
	return rows
}

// Table renders the annotated output as a table.
func (r *Result) Table() *models.Table {
	return &models.Table{Columns: r.Columns(), Rows: r.Rows()}
}
