package parsers

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

// SummaryMarkers are the date-cell values of monthly and running subtotal rows.
var SummaryMarkers = []string{"월계", "누계"}

// IsSummaryRow reports whether a date cell marks a subtotal row.
func IsSummaryRow(dateCell string) bool {
	v := strings.TrimSpace(dateCell)
	for _, m := range SummaryMarkers {
		if v == m {
			return true
		}
	}
	return false
}

var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	time.RFC3339,
	"2006/01/02",
	"2006.01.02",
	"2006. 1. 2.",
	"2006. 1. 2",
	"2006-1-2",
	"2006/1/2",
	"20060102",
}

// maxExcelSerial is 9999-12-31.
const maxExcelSerial = 2958465

// ParseDate parses an accounting or sale date. Besides the common text layouts it
// accepts Excel serial day numbers, which is how raw workbook cells carry dates.
func ParseDate(value string) (time.Time, error) {
	v := strings.TrimSpace(value)
	if v == "" {
		return time.Time{}, fmt.Errorf("empty date")
	}

	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, v); err == nil {
			return t, nil
		}
	}

	if serial, err := strconv.ParseFloat(v, 64); err == nil && serial >= 1 && serial <= maxExcelSerial {
		t, err := excelize.ExcelDateToTime(serial, false)
		if err != nil {
			return time.Time{}, err
		}
		return t, nil
	}

	return time.Time{}, fmt.Errorf("unrecognized date %q", v)
}

// FormatDate renders a date the way output tables carry it.
func FormatDate(t time.Time) string {
	return t.Format("2006-01-02")
}

// ParseAmount parses a ledger amount. Thousands separators are ignored, a value in
// parentheses is negative and an empty cell (or a lone dash) is zero.
func ParseAmount(value string) (decimal.Decimal, error) {
	v := strings.TrimSpace(value)
	if v == "" || v == "-" {
		return decimal.Zero, nil
	}

	negative := false
	if strings.HasPrefix(v, "(") && strings.HasSuffix(v, ")") {
		negative = true
		v = strings.TrimSpace(v[1 : len(v)-1])
	}
	v = strings.NewReplacer(",", "", " ", "", "₩", "", "원", "").Replace(v)

	d, err := decimal.NewFromString(v)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid amount %q: %w", value, err)
	}
	if negative {
		d = d.Neg()
	}
	return d, nil
}
