package parsers

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"sales-ledger-reconciler/internal/models"
	"sales-ledger-reconciler/internal/parsers/mocks"
	apperrors "sales-ledger-reconciler/pkg/errors"

	"github.com/golang/mock/gomock"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
	"golang.org/x/text/unicode/norm"
)

// Helper function to create temporary file
func createTempFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("Failed to write temp file: %v", err)
	}
	return path
}

func createTempWorkbook(t *testing.T, rows [][]interface{}) string {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	for r, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, r+1)
		if err != nil {
			t.Fatalf("Failed to build cell name: %v", err)
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			t.Fatalf("Failed to write row: %v", err)
		}
	}

	path := filepath.Join(t.TempDir(), "ledger.xlsx")
	if err := f.SaveAs(path); err != nil {
		t.Fatalf("Failed to save workbook: %v", err)
	}
	return path
}

func TestDefaultParseConfig(t *testing.T) {
	config := DefaultParseConfig()

	if config.Delimiter != ',' {
		t.Errorf("Expected delimiter to be ',', got %q", config.Delimiter)
	}
	if !config.TrimLeadingSpace {
		t.Error("Expected TrimLeadingSpace to be true")
	}
	if !config.SkipEmptyRows {
		t.Error("Expected SkipEmptyRows to be true")
	}
	if !config.ValidateEncoding {
		t.Error("Expected ValidateEncoding to be true")
	}
}

func TestFileReader_ReadCSV(t *testing.T) {
	content := "\uFEFF\n회계일자,적요,대변,관리항목2\n2024-03-15, 12가3456(34나5678) ,\"50,000\",x\n\n월계,,50000\n"
	path := createTempFile(t, "매도비.csv", content)

	table, err := NewFileReader(nil).ReadTable(context.Background(), path)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if strings.Join(table.Columns, "|") != "회계일자|적요|대변|관리항목2" {
		t.Errorf("Unexpected header %v", table.Columns)
	}
	if len(table.Rows) != 2 {
		t.Fatalf("Expected 2 rows, got %d", len(table.Rows))
	}
	if table.Value(0, "적요") != "12가3456(34나5678)" {
		t.Errorf("Expected trimmed narration, got %q", table.Value(0, "적요"))
	}
	if table.Value(0, "대변") != "50,000" {
		t.Errorf("Expected quoted amount, got %q", table.Value(0, "대변"))
	}
	if len(table.Rows[1]) != 4 || table.Value(1, "관리항목2") != "" {
		t.Errorf("Expected short row padded to header width, got %v", table.Rows[1])
	}
}

func TestFileReader_NormalizesHangul(t *testing.T) {
	decomposed := norm.NFD.String("12가3456")
	path := createTempFile(t, "상품화.csv", "적요\n"+decomposed+"\n")

	table, err := NewFileReader(nil).ReadTable(context.Background(), path)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if table.Value(0, "적요") != "12가3456" {
		t.Errorf("Expected NFC text, got %q", table.Value(0, "적요"))
	}
}

func TestFileReader_ReadWorkbook(t *testing.T) {
	path := createTempWorkbook(t, [][]interface{}{
		{"회계일자", "적요", "대변", "관리항목2"},
		{"2024-03-15", "12가3456(34나5678)", 50000, ""},
		{"누계", "", 50000, ""},
	})

	table, err := NewFileReader(nil).ReadTable(context.Background(), path)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(table.Rows) != 2 {
		t.Fatalf("Expected 2 rows, got %d", len(table.Rows))
	}
	if table.Value(0, "대변") != "50000" {
		t.Errorf("Expected raw amount, got %q", table.Value(0, "대변"))
	}
	if table.Value(1, "회계일자") != "누계" {
		t.Errorf("Expected summary marker kept for the pipeline, got %q", table.Value(1, "회계일자"))
	}
}

func TestFileReader_Errors(t *testing.T) {
	reader := NewFileReader(nil)
	ctx := context.Background()

	tests := []struct {
		name string
		path string
		code apperrors.ErrorCode
	}{
		{"missing file", filepath.Join(t.TempDir(), "nope.csv"), apperrors.CodeFileNotFound},
		{"unsupported extension", createTempFile(t, "ledger.txt", "a,b"), apperrors.CodeUnsupportedFile},
		{"empty file", createTempFile(t, "empty.csv", "\n\n"), apperrors.CodeEmptyWorkbook},
		{"invalid encoding", createTempFile(t, "latin.csv", "a,b\n\xff\xfe,1\n"), apperrors.CodeInvalidEncoding},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := reader.ReadTable(ctx, tt.path)
			re, ok := apperrors.AsReconcilerError(err)
			if !ok {
				t.Fatalf("Expected ReconcilerError, got %v", err)
			}
			if re.Code != tt.code {
				t.Errorf("Expected code %s, got %s", tt.code, re.Code)
			}
		})
	}

	canceled, cancel := context.WithCancel(ctx)
	cancel()
	if _, err := reader.ReadTable(canceled, createTempFile(t, "a.csv", "a\n1\n")); !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
}

func TestParseDate(t *testing.T) {
	want := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		input   string
		wantErr bool
	}{
		{"2024-03-15", false},
		{"2024-03-15 00:00:00", false},
		{"2024/03/15", false},
		{"2024.03.15", false},
		{"2024. 3. 15.", false},
		{"20240315", false},
		{"45366", false},
		{" 2024-3-15 ", false},
		{"", true},
		{"월계", true},
		{"15/03/2024", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseDate(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Errorf("Expected error for %q", tt.input)
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if !got.Equal(want) {
				t.Errorf("Expected %v, got %v", want, got)
			}
		})
	}

	if FormatDate(want) != "2024-03-15" {
		t.Errorf("Unexpected format %q", FormatDate(want))
	}
}

func TestParseAmount(t *testing.T) {
	tests := []struct {
		input   string
		want    string
		wantErr bool
	}{
		{"50000", "50000", false},
		{"50,000", "50000", false},
		{"-1,234.50", "-1234.5", false},
		{"(700)", "-700", false},
		{"₩3,000", "3000", false},
		{"", "0", false},
		{"-", "0", false},
		{"abc", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseAmount(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Errorf("Expected error for %q", tt.input)
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if !got.Equal(decimal.RequireFromString(tt.want)) {
				t.Errorf("Expected %s, got %s", tt.want, got)
			}
		})
	}
}

func TestIsSummaryRow(t *testing.T) {
	for input, want := range map[string]bool{"월계": true, " 누계 ": true, "2024-03-15": false, "": false} {
		if IsSummaryRow(input) != want {
			t.Errorf("IsSummaryRow(%q) = %v", input, !want)
		}
	}
}

func TestCatalogConfig_Validate(t *testing.T) {
	if err := DefaultCatalogConfig().Validate(); err != nil {
		t.Errorf("Default config should be valid: %v", err)
	}

	config := DefaultCatalogConfig()
	config.SaleDateColumn = " "
	if err := config.Validate(); err == nil {
		t.Error("Expected error for empty sale date column")
	}

	config = DefaultCatalogConfig()
	config.ColumnAliases = map[string]string{"id": "product_id"}
	if config.GetColumnName("id") != "product_id" {
		t.Errorf("Expected alias, got %q", config.GetColumnName("id"))
	}
}

func TestReadCatalog(t *testing.T) {
	table := models.NewTable("상품ID", "판매일자", "신차량번호", "구차량번호", "판매처")
	table.AppendRow("C100", "2024-03-10", "12가3456", "", "직영")
	table.AppendRow("C101", "45366", "", "34나5678", "")
	table.AppendRow("C102", "", "56다7890", "", "")

	catalog, err := ReadCatalog(table, nil)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if catalog.Len() != 3 || catalog.Table != table {
		t.Fatalf("Unexpected catalog %+v", catalog)
	}

	first := catalog.Records[0]
	if first.SalePeriod != (models.Period{Year: 2024, Month: 3}) || first.NewUnitIdentifier != "12가3456" || first.Channel != "직영" {
		t.Errorf("Unexpected first record %+v", first)
	}
	if catalog.Records[1].SalePeriod.Month != 3 || catalog.Records[1].OldUnitIdentifier != "34나5678" {
		t.Errorf("Unexpected second record %+v", catalog.Records[1])
	}
	if !catalog.Records[2].SalePeriod.IsZero() {
		t.Errorf("Expected no period for empty sale date, got %v", catalog.Records[2].SalePeriod)
	}
}

func TestReadCatalog_Errors(t *testing.T) {
	_, err := ReadCatalog(models.NewTable("상품ID", "신차량번호"), nil)
	if !apperrors.IsCategory(err, apperrors.CategorySchema) {
		t.Errorf("Expected schema error, got %v", err)
	}

	bad := models.NewTable("상품ID", "판매일자")
	bad.AppendRow("C1", "2024-03-10")
	bad.AppendRow("C2", "soon")
	_, err = ReadCatalog(bad, nil)
	re, ok := apperrors.AsReconcilerError(err)
	if !ok || re.Code != apperrors.CodeInvalidDate || re.Context["row"] != 2 {
		t.Errorf("Expected invalid date at row 2, got %v", err)
	}

	// identifier columns are optional
	minimal := models.NewTable("상품ID", "판매일자")
	minimal.AppendRow("C1", "2024-03-10")
	catalog, err := ReadCatalog(minimal, nil)
	if err != nil || catalog.Records[0].NewUnitIdentifier != "" {
		t.Errorf("Expected minimal catalog to load, got %v", err)
	}
}

func TestReadTables(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	reader := mocks.NewMockTableReader(ctrl)
	good := models.NewTable("a")
	readErr := errors.New("boom")

	reader.EXPECT().ReadTable(gomock.Any(), "one.xlsx").Return(good, nil)
	reader.EXPECT().ReadTable(gomock.Any(), "two.xlsx").Return(nil, readErr)
	reader.EXPECT().ReadTable(gomock.Any(), "three.xlsx").Return(good, nil)

	results, err := ReadTables(context.Background(), reader, []string{"one.xlsx", "two.xlsx", "three.xlsx"}, 2)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if len(results) != 3 {
		t.Fatalf("Expected 3 results, got %d", len(results))
	}
	if results[0].Path != "one.xlsx" || results[0].Table != good {
		t.Errorf("Unexpected first result %+v", results[0])
	}
	if results[1].Path != "two.xlsx" || !errors.Is(results[1].Err, readErr) {
		t.Errorf("Expected per-file error, got %+v", results[1])
	}
	if results[2].Err != nil {
		t.Errorf("Sibling file must still be read, got %v", results[2].Err)
	}
}
