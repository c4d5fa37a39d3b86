package reconciler

import (
	"sales-ledger-reconciler/internal/models"
	"sales-ledger-reconciler/internal/parsers"
	"sales-ledger-reconciler/internal/rulesets"
	"sales-ledger-reconciler/pkg/errors"
)

// Preprocess validates a raw ledger table against a rule-set and turns it into
// entries. The returned table holds the pass-through columns: every column up to the
// boundary, or the rule-set's keep-columns. Subtotal rows are dropped before any
// parsing; every other row must carry a parsable date. Amounts are parsed only for
// rule-sets that use them. Row numbers in parse errors count source data rows.
func Preprocess(rs *rulesets.Ruleset, file string, raw *models.Table) (*models.Table, []models.LedgerEntry, error) {
	if missing := rs.MissingColumns(raw); len(missing) > 0 {
		return nil, nil, errors.SchemaError(rs.DisplayName(), file, missing)
	}

	rawDateCol := raw.ColumnIndex(rulesets.ColumnDate)
	var sourceRows []int
	ledger := raw.Filter(func(r int) bool {
		if parsers.IsSummaryRow(raw.Cell(r, rawDateCol)) {
			return false
		}
		sourceRows = append(sourceRows, r+1)
		return true
	})

	table, err := passThrough(rs, ledger)
	if err != nil {
		return nil, nil, errors.InternalError(errors.CodeUnexpectedError, "trim", err).
			WithContext("file", file)
	}
	dateCol := table.ColumnIndex(rulesets.ColumnDate)

	narrationCol := ledger.ColumnIndex(rulesets.ColumnNarration)
	creditCol, debitCol := -1, -1
	if rs.UsesAmounts() {
		creditCol = ledger.ColumnIndex(rulesets.ColumnCredit)
		debitCol = ledger.ColumnIndex(rulesets.ColumnDebit)
	}
	counterpartyCol := ledger.ColumnIndex(rulesets.ColumnCounterparty)
	accountCol := ledger.ColumnIndex(rulesets.ColumnAccountName)

	entries := make([]models.LedgerEntry, len(table.Rows))
	for r := range table.Rows {
		e := &entries[r]
		e.Row = r
		source := sourceRows[r]

		rawDate := ledger.Cell(r, rawDateCol)
		date, err := parsers.ParseDate(rawDate)
		if err != nil {
			return nil, nil, errors.ParseError(errors.CodeInvalidDate, file, source, rulesets.ColumnDate, rawDate, err)
		}
		e.AccountingDate = date
		e.Period = models.PeriodOf(date)

		if creditCol >= 0 {
			rawCredit := ledger.Cell(r, creditCol)
			if e.Credit, err = parsers.ParseAmount(rawCredit); err != nil {
				return nil, nil, errors.ParseError(errors.CodeInvalidAmount, file, source, rulesets.ColumnCredit, rawCredit, err)
			}
		}
		if debitCol >= 0 {
			rawDebit := ledger.Cell(r, debitCol)
			if e.Debit, err = parsers.ParseAmount(rawDebit); err != nil {
				return nil, nil, errors.ParseError(errors.CodeInvalidAmount, file, source, rulesets.ColumnDebit, rawDebit, err)
			}
		}

		e.Narration = ledger.Cell(r, narrationCol)
		e.Counterparty = ledger.Cell(r, counterpartyCol)
		e.AccountName = ledger.Cell(r, accountCol)

		values := append([]string(nil), table.Rows[r]...)
		if dateCol >= 0 {
			values[dateCol] = parsers.FormatDate(date)
		}
		e.Values = values
	}

	table.Rows = make([][]string, len(entries))
	for i := range entries {
		table.Rows[i] = entries[i].Values
	}
	return table, entries, nil
}

func passThrough(rs *rulesets.Ruleset, ledger *models.Table) (*models.Table, error) {
	switch {
	case len(rs.KeepColumns) > 0:
		return ledger.Project(rs.KeepColumns...)
	case rs.Boundary != "":
		return ledger.TrimThrough(rs.Boundary)
	default:
		return ledger.Filter(func(int) bool { return true }), nil
	}
}
