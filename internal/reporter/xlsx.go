package reporter

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
)

const (
	sheetName      = "Sheet1"
	highlightColor = "DDEBF7"
)

func (rg *ReportGenerator) writeXLSX(doc *Document, w io.Writer) error {
	f := excelize.NewFile()
	defer f.Close()

	columns := doc.Table.Columns
	header := make([]interface{}, len(columns))
	for i, c := range columns {
		header[i] = c
	}
	if err := f.SetSheetRow(sheetName, "A1", &header); err != nil {
		return fmt.Errorf("failed to write header row: %w", err)
	}

	for r, row := range doc.Table.Rows {
		cells := make([]interface{}, len(columns))
		for c := range columns {
			if c < len(row) {
				cells[c] = cellValue(row[c])
			}
		}
		cell, err := excelize.CoordinatesToCellName(1, r+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheetName, cell, &cells); err != nil {
			return fmt.Errorf("failed to write row %d: %w", r+1, err)
		}
	}

	if rg.config.HighlightHeaders && doc.HighlightFrom >= 0 && doc.HighlightFrom < len(columns) {
		if err := rg.highlight(f, doc.HighlightFrom+1, len(columns)); err != nil {
			return fmt.Errorf("failed to style header: %w", err)
		}
	}

	return f.Write(w)
}

// highlight styles header cells first..last (1-based, inclusive) and widens their columns.
func (rg *ReportGenerator) highlight(f *excelize.File, first, last int) error {
	border := func(side string) excelize.Border {
		return excelize.Border{Type: side, Color: "000000", Style: 1}
	}
	style, err := f.NewStyle(&excelize.Style{
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{highlightColor}},
		Font: &excelize.Font{Bold: true},
		Border: []excelize.Border{
			border("left"), border("top"), border("right"), border("bottom"),
		},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return err
	}

	from, err := excelize.CoordinatesToCellName(first, 1)
	if err != nil {
		return err
	}
	to, err := excelize.CoordinatesToCellName(last, 1)
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(sheetName, from, to, style); err != nil {
		return err
	}

	fromCol, err := excelize.ColumnNumberToName(first)
	if err != nil {
		return err
	}
	toCol, err := excelize.ColumnNumberToName(last)
	if err != nil {
		return err
	}
	return f.SetColWidth(sheetName, fromCol, toCol, rg.config.ColumnWidth)
}

// cellValue writes plain numbers as numeric cells. Values with a leading zero, such
// as codes, stay text.
func cellValue(s string) interface{} {
	if s == "" {
		return nil
	}
	digits := strings.TrimPrefix(s, "-")
	if len(digits) > 1 && digits[0] == '0' && digits[1] != '.' {
		return s
	}
	if strings.Trim(digits, "0123456789.") != "" {
		return s
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n
	}
	if v, err := strconv.ParseFloat(s, 64); err == nil {
		return v
	}
	return s
}
