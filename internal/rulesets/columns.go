package rulesets

import (
	"strconv"

	"sales-ledger-reconciler/internal/models"
)

// Output column headers.
const (
	HeaderYear        = "회계연도"
	HeaderMonth       = "회계월"
	HeaderUnit        = "차량번호"
	HeaderUnit1       = "차량번호1"
	HeaderUnit2       = "차량번호2"
	HeaderCatalogID   = "상품ID"
	HeaderSaleYear    = "판매연도"
	HeaderSaleMonth   = "판매월"
	HeaderChannel     = "판매처"
	HeaderPeriodMatch = "판매월일치여부"
	HeaderDuplicate   = "중복"
	HeaderRemark      = "비고"
	HeaderAllocation  = "배부"
	HeaderSection     = "구분"
	HeaderClass       = "분류"
	HeaderCounterpart = "거래처2"
)

func yearColumn() Column {
	return Column{HeaderYear, func(e *models.LedgerEntry) string { return strconv.Itoa(e.Period.Year) }}
}

func monthColumn() Column {
	return Column{HeaderMonth, func(e *models.LedgerEntry) string { return strconv.Itoa(e.Period.Month) }}
}

func unitColumn(header string, second bool) Column {
	return Column{header, func(e *models.LedgerEntry) string {
		if second {
			return e.Identifier2.String()
		}
		return e.Identifier1.String()
	}}
}

func catalogIDColumn() Column {
	return Column{HeaderCatalogID, func(e *models.LedgerEntry) string { return e.MatchedCatalogID }}
}

// Sale year and month stay blank when the entry has no catalog period.
func saleYearColumn() Column {
	return Column{HeaderSaleYear, func(e *models.LedgerEntry) string {
		if e.SalePeriod.IsZero() {
			return ""
		}
		return strconv.Itoa(e.SalePeriod.Year)
	}}
}

func saleMonthColumn() Column {
	return Column{HeaderSaleMonth, func(e *models.LedgerEntry) string {
		if e.SalePeriod.IsZero() {
			return ""
		}
		return strconv.Itoa(e.SalePeriod.Month)
	}}
}

func channelColumn() Column {
	return Column{HeaderChannel, func(e *models.LedgerEntry) string { return e.Channel }}
}

func periodMatchColumn() Column {
	return Column{HeaderPeriodMatch, func(e *models.LedgerEntry) string { return e.PeriodMatch.String() }}
}

func duplicateColumn() Column {
	return Column{HeaderDuplicate, func(e *models.LedgerEntry) string {
		if e.Duplicate {
			return "TRUE"
		}
		return "FALSE"
	}}
}

func cancellationColumn() Column {
	return Column{HeaderRemark, func(e *models.LedgerEntry) string { return string(e.Cancellation) }}
}

func categoryColumn(header string) Column {
	return Column{header, func(e *models.LedgerEntry) string { return e.Category }}
}

func allocationColumn() Column {
	return Column{HeaderAllocation, func(e *models.LedgerEntry) string { return e.Allocation }}
}

func counterpartyColumn() Column {
	return Column{HeaderCounterpart, func(e *models.LedgerEntry) string { return e.CanonicalCounterparty }}
}

// saleColumns are the catalog-side columns every matched rule-set reports.
func saleColumns() []Column {
	return []Column{saleYearColumn(), saleMonthColumn()}
}

func concat(groups ...[]Column) []Column {
	var out []Column
	for _, g := range groups {
		out = append(out, g...)
	}
	return out
}
