package reconciler

import (
	"strconv"

	"sales-ledger-reconciler/internal/models"
	"sales-ledger-reconciler/pkg/errors"

	"github.com/shopspring/decimal"
)

// MergeFileName is the base name of the final merge output.
const MergeFileName = "최종_머지_결과"

// Merge column suffixes appended to a rule-set name.
const (
	mergeCountSuffix  = "_건수"
	mergeAmountSuffix = "_금액"
)

type attribution struct {
	count  int
	amount decimal.Decimal
}

// MergeOntoCatalog joins stored results onto the catalog: one output row per catalog
// row, followed by an entry count and a credit sum per result whose rule-set carries
// a merge key. Canceled and unmatched entries contribute nothing.
func MergeOntoCatalog(catalog *models.Catalog, results []*Result) (*models.Table, error) {
	if catalog == nil || catalog.Table == nil {
		return nil, errors.ConfigurationError(errors.CodeInvalidConfig, "catalog", "not loaded", nil).
			WithSuggestion("load the sales catalog before merging")
	}

	var merged []*Result
	for _, r := range results {
		if r != nil && r.Ruleset != nil && r.Ruleset.MergeKey {
			merged = append(merged, r)
		}
	}

	columns := append([]string(nil), catalog.Table.Columns...)
	totals := make([]map[string]*attribution, len(merged))
	for i, r := range merged {
		columns = append(columns, r.Name+mergeCountSuffix, r.Name+mergeAmountSuffix)
		totals[i] = attribute(r.Entries)
	}

	out := models.NewTable(columns...)
	for _, rec := range catalog.Records {
		row := make([]string, 0, len(columns))
		for c := range catalog.Table.Columns {
			row = append(row, catalog.Table.Cell(rec.Row, c))
		}
		for i := range merged {
			a, ok := totals[i][rec.CatalogID]
			if !ok {
				row = append(row, "0", "0")
				continue
			}
			row = append(row, strconv.Itoa(a.count), a.amount.String())
		}
		out.AppendRow(row...)
	}
	return out, nil
}

func attribute(entries []models.LedgerEntry) map[string]*attribution {
	totals := make(map[string]*attribution)
	for i := range entries {
		e := &entries[i]
		if !e.HasMatch() {
			continue
		}
		a, ok := totals[e.MatchedCatalogID]
		if !ok {
			a = &attribution{}
			totals[e.MatchedCatalogID] = a
		}
		a.count++
		a.amount = a.amount.Add(e.Credit)
	}
	return totals
}
