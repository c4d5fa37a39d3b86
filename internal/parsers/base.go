// Package parsers loads ledger and catalog exports into models.Table values.
//
// Both .xlsx workbooks (first sheet) and .csv files are supported. Every cell is
// trimmed and NFC-normalized so Hangul narrations exported in decomposed form
// still match the identifier pattern. The first non-empty row is the header.
//
// Example usage:
//
//	reader := NewFileReader(nil)
//	table, err := reader.ReadTable(ctx, "2024_03_매도비.xlsx")
//	catalog, err := ReadCatalog(catalogTable, DefaultCatalogConfig())
package parsers

import (
	"bufio"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"sales-ledger-reconciler/internal/models"
	"sales-ledger-reconciler/pkg/errors"
	"sales-ledger-reconciler/pkg/logger"

	"github.com/xuri/excelize/v2"
	"golang.org/x/text/unicode/norm"
)

// TableReader loads one tabular file.
//
//go:generate mockgen -destination=mocks/mock_reader.go -package=mocks -source=base.go TableReader
type TableReader interface {
	ReadTable(ctx context.Context, path string) (*models.Table, error)
}

// ParseConfig holds configuration for table reading
type ParseConfig struct {
	Delimiter        rune
	TrimLeadingSpace bool
	SkipEmptyRows    bool
	ValidateEncoding bool
	// Sheet selects a workbook sheet by name; empty means the first sheet.
	Sheet string
}

// DefaultParseConfig returns a configuration with sensible defaults
func DefaultParseConfig() *ParseConfig {
	return &ParseConfig{
		Delimiter:        ',',
		TrimLeadingSpace: true,
		SkipEmptyRows:    true,
		ValidateEncoding: true,
	}
}

// FileReader reads .xlsx and .csv files from disk.
type FileReader struct {
	config *ParseConfig
	logger logger.Logger
}

// NewFileReader creates a new FileReader with the given configuration
func NewFileReader(config *ParseConfig) *FileReader {
	if config == nil {
		config = DefaultParseConfig()
	}

	log := logger.GetGlobalLogger().WithComponent("file_reader")
	log.WithFields(logger.Fields{
		"delimiter":         string(config.Delimiter),
		"validate_encoding": config.ValidateEncoding,
		"sheet":             config.Sheet,
	}).Debug("Created file reader")

	return &FileReader{
		config: config,
		logger: log,
	}
}

// ReadTable implements TableReader.
func (fr *FileReader) ReadTable(ctx context.Context, path string) (*models.Table, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	log := fr.logger.WithFile(path)
	log.Debug("Reading table")

	var (
		rows [][]string
		err  error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		rows, err = fr.readWorkbook(path)
	case ".csv":
		rows, err = fr.readCSV(ctx, path)
	default:
		return nil, errors.FileError(errors.CodeUnsupportedFile, path, nil)
	}
	if err != nil {
		log.WithError(err).Error("Failed to read table")
		return nil, err
	}

	table, err := fr.buildTable(rows)
	if err != nil {
		return nil, errors.FileError(errors.CodeEmptyWorkbook, path, err)
	}

	log.WithFields(logger.Fields{
		"columns": len(table.Columns),
		"rows":    len(table.Rows),
	}).Debug("Successfully read table")
	return table, nil
}

func openError(path string, err error) error {
	if os.IsNotExist(err) {
		return errors.FileError(errors.CodeFileNotFound, path, err)
	}
	if os.IsPermission(err) {
		return errors.FileError(errors.CodeFilePermission, path, err)
	}
	return errors.FileError(errors.CodeUnsupportedFile, path, err)
}

// readWorkbook returns the raw cell values of one sheet. Raw values keep dates as
// Excel serials and amounts without display formatting.
func (fr *FileReader) readWorkbook(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, openError(path, err)
	}
	defer f.Close()

	wb, err := excelize.OpenReader(f)
	if err != nil {
		return nil, errors.FileError(errors.CodeUnsupportedFile, path, err)
	}
	defer wb.Close()

	sheet := fr.config.Sheet
	if sheet == "" {
		sheet = wb.GetSheetName(0)
	}
	rows, err := wb.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, errors.FileError(errors.CodeUnsupportedFile, path, err)
	}
	return rows, nil
}

func (fr *FileReader) readCSV(ctx context.Context, path string) ([][]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, openError(path, err)
	}
	defer file.Close()

	if fr.config.ValidateEncoding {
		if err := validateEncoding(file, path); err != nil {
			return nil, err
		}
		if _, err := file.Seek(0, io.SeekStart); err != nil {
			return nil, errors.FileError(errors.CodeUnsupportedFile, path, err)
		}
	}

	reader := csv.NewReader(stripBOM(file))
	reader.Comma = fr.config.Delimiter
	reader.TrimLeadingSpace = fr.config.TrimLeadingSpace
	reader.FieldsPerRecord = -1

	var rows [][]string
	for line := 1; ; line++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		record, err := reader.Read()
		if err == io.EOF {
			return rows, nil
		}
		if err != nil {
			fr.logger.WithError(err).WithField("line_number", line).Warn("Failed to read CSV record")
			return nil, errors.FileError(errors.CodeUnsupportedFile, path, err)
		}
		rows = append(rows, record)
	}
}

// validateEncoding checks if the file contains valid UTF-8 text
func validateEncoding(file *os.File, path string) error {
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 64*1024), 4*1024*1024)
	lineNum := 0

	for scanner.Scan() && lineNum < 100 {
		lineNum++
		if !utf8.Valid(scanner.Bytes()) {
			return errors.FileError(errors.CodeInvalidEncoding, path,
				fmt.Errorf("invalid UTF-8 at line %d", lineNum)).WithContext("line", lineNum)
		}
	}
	if err := scanner.Err(); err != nil {
		return errors.FileError(errors.CodeUnsupportedFile, path, err)
	}
	return nil
}

func stripBOM(r io.Reader) io.Reader {
	br := bufio.NewReader(r)
	if b, err := br.Peek(3); err == nil && b[0] == 0xEF && b[1] == 0xBB && b[2] == 0xBF {
		_, _ = br.Discard(3)
	}
	return br
}

// buildTable turns raw rows into a Table. Leading empty rows are skipped, the next
// row is the header and short rows are padded to the header width.
func (fr *FileReader) buildTable(rows [][]string) (*models.Table, error) {
	start := 0
	for start < len(rows) && isEmptyRecord(rows[start]) {
		start++
	}
	if start == len(rows) {
		return nil, fmt.Errorf("no header row")
	}

	table := models.NewTable(cleanCells(rows[start])...)
	for _, raw := range rows[start+1:] {
		if fr.config.SkipEmptyRows && isEmptyRecord(raw) {
			continue
		}
		table.AppendRow(cleanCells(raw)...)
	}
	return table, nil
}

// cleanCells trims and NFC-normalizes cell text.
func cleanCells(cells []string) []string {
	cleaned := make([]string, len(cells))
	for i, c := range cells {
		cleaned[i] = norm.NFC.String(strings.TrimSpace(c))
	}
	return cleaned
}

// isEmptyRecord checks if all fields in a record are empty or whitespace
func isEmptyRecord(record []string) bool {
	for _, field := range record {
		if strings.TrimSpace(field) != "" {
			return false
		}
	}
	return true
}
