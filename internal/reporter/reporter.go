// Package reporter writes annotated ledgers, aggregates and catalog merges to disk and
// prints run summaries.
//
// Supported output formats:
//   - XLSX: one sheet; derived column headers are highlighted
//   - CSV: UTF-8 with BOM so spreadsheet tools detect the encoding
//   - JSON: run metadata plus the table, for programmatic consumption
//
// Example usage:
//
//	generator, err := reporter.NewReportGenerator(reporter.DefaultReportConfig())
//	path, err := generator.WriteResultFile(result)
//	generator.PrintSummary(os.Stdout, batch.Results())
package reporter

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"sales-ledger-reconciler/internal/models"
	"sales-ledger-reconciler/internal/reconciler"
)

// OutputFormat represents the supported report output formats.
type OutputFormat string

const (
	FormatXLSX OutputFormat = "xlsx"
	FormatCSV  OutputFormat = "csv"
	FormatJSON OutputFormat = "json"
)

// IsValid checks if the output format is supported
func (f OutputFormat) IsValid() bool {
	switch f {
	case FormatXLSX, FormatCSV, FormatJSON:
		return true
	default:
		return false
	}
}

// Extension returns the file extension for the format, dot included.
func (f OutputFormat) Extension() string {
	return "." + string(f)
}

const utf8BOM = "\ufeff"

// ProcessedSuffix is appended to a source file's base name for its annotated output.
const ProcessedSuffix = "_처리본"

// ReportConfig holds configuration options for report generation
type ReportConfig struct {
	Format    OutputFormat `mapstructure:"format"`
	OutputDir string       `mapstructure:"output_dir"`

	// HighlightHeaders styles the derived column headers of xlsx output.
	HighlightHeaders bool    `mapstructure:"highlight_headers"`
	ColumnWidth      float64 `mapstructure:"column_width"`

	CSVDelimiter rune `mapstructure:"csv_delimiter"`
	// CSVBOM prefixes csv output with a UTF-8 byte order mark.
	CSVBOM bool `mapstructure:"csv_bom"`
}

// DefaultReportConfig returns a default report configuration
func DefaultReportConfig() *ReportConfig {
	return &ReportConfig{
		Format:           FormatXLSX,
		OutputDir:        ".",
		HighlightHeaders: true,
		ColumnWidth:      15,
		CSVDelimiter:     ',',
		CSVBOM:           true,
	}
}

// Validate validates the report configuration
func (c *ReportConfig) Validate() error {
	if !c.Format.IsValid() {
		return fmt.Errorf("invalid output format: %s", c.Format)
	}
	if c.ColumnWidth <= 0 || c.ColumnWidth > 255 {
		return fmt.Errorf("column width must be between 0 and 255, got %v", c.ColumnWidth)
	}
	if c.CSVDelimiter == 0 || c.CSVDelimiter == '"' || c.CSVDelimiter == '\n' || c.CSVDelimiter == '\r' {
		return fmt.Errorf("invalid csv delimiter %q", c.CSVDelimiter)
	}
	return nil
}

// Document is one output table plus the metadata written alongside it.
type Document struct {
	Name  string
	Table *models.Table
	// HighlightFrom is the index of the first derived column; -1 disables highlighting.
	HighlightFrom int

	RunID string
	Stats *reconciler.Stats
}

// ResultDocument renders a pipeline result. Derived columns start after the
// pass-through columns.
func ResultDocument(result *reconciler.Result) *Document {
	stats := result.Stats
	return &Document{
		Name:          ProcessedName(result.File),
		Table:         result.Table(),
		HighlightFrom: len(result.PassThrough),
		RunID:         result.RunID,
		Stats:         &stats,
	}
}

// AggregateDocument renders the aggregate result under its fixed name.
func AggregateDocument(result *reconciler.Result) *Document {
	doc := ResultDocument(result)
	doc.Name = reconciler.AggregateFileName
	return doc
}

// MergeDocument wraps the final catalog merge. Every merged column after the
// catalog's own columns is derived.
func MergeDocument(merged *models.Table, catalogColumns int) *Document {
	return &Document{
		Name:          reconciler.MergeFileName,
		Table:         merged,
		HighlightFrom: catalogColumns,
	}
}

// ProcessedName returns the output base name for a source file.
func ProcessedName(source string) string {
	base := filepath.Base(source)
	return strings.TrimSuffix(base, filepath.Ext(base)) + ProcessedSuffix
}

// ReportGenerator writes documents in the configured format.
type ReportGenerator struct {
	config *ReportConfig
}

// NewReportGenerator creates a new report generator with the specified configuration
func NewReportGenerator(config *ReportConfig) (*ReportGenerator, error) {
	if config == nil {
		config = DefaultReportConfig()
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid report configuration: %w", err)
	}

	return &ReportGenerator{
		config: config,
	}, nil
}

// Config returns the generator's configuration.
func (rg *ReportGenerator) Config() *ReportConfig {
	return rg.config
}

// Path returns where a document is written.
func (rg *ReportGenerator) Path(doc *Document) string {
	return filepath.Join(rg.config.OutputDir, doc.Name+rg.config.Format.Extension())
}

// Write encodes a document to w in the configured format.
func (rg *ReportGenerator) Write(doc *Document, w io.Writer) error {
	if doc == nil || doc.Table == nil {
		return fmt.Errorf("document cannot be nil")
	}

	switch rg.config.Format {
	case FormatXLSX:
		return rg.writeXLSX(doc, w)
	case FormatCSV:
		return rg.writeCSV(doc, w)
	case FormatJSON:
		return rg.writeJSON(doc, w)
	default:
		return fmt.Errorf("unsupported output format: %s", rg.config.Format)
	}
}

// WriteFile writes a document to its path under the output directory and returns
// the path.
func (rg *ReportGenerator) WriteFile(doc *Document) (string, error) {
	if err := os.MkdirAll(rg.config.OutputDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	path := rg.Path(doc)
	file, err := os.Create(path)
	if err != nil {
		return "", err
	}

	if err := rg.Write(doc, file); err != nil {
		file.Close()
		return "", err
	}
	if err := file.Close(); err != nil {
		return "", err
	}
	return path, nil
}

// WriteResultFile writes one pipeline result as "<source>_처리본".
func (rg *ReportGenerator) WriteResultFile(result *reconciler.Result) (string, error) {
	return rg.WriteFile(ResultDocument(result))
}

func (rg *ReportGenerator) writeCSV(doc *Document, w io.Writer) error {
	if rg.config.CSVBOM {
		if _, err := io.WriteString(w, utf8BOM); err != nil {
			return fmt.Errorf("failed to write CSV BOM: %w", err)
		}
	}

	csvWriter := csv.NewWriter(w)
	csvWriter.Comma = rg.config.CSVDelimiter

	if err := csvWriter.Write(doc.Table.Columns); err != nil {
		return fmt.Errorf("failed to write CSV headers: %w", err)
	}
	for i, row := range doc.Table.Rows {
		if err := csvWriter.Write(padRow(row, len(doc.Table.Columns))); err != nil {
			return fmt.Errorf("failed to write CSV row %d: %w", i+1, err)
		}
	}

	csvWriter.Flush()
	return csvWriter.Error()
}

type jsonDocument struct {
	Name    string              `json:"name"`
	RunID   string              `json:"run_id,omitempty"`
	Stats   *reconciler.Stats   `json:"stats,omitempty"`
	Columns []string            `json:"columns"`
	Rows    []map[string]string `json:"rows"`
}

func (rg *ReportGenerator) writeJSON(doc *Document, w io.Writer) error {
	out := jsonDocument{
		Name:    doc.Name,
		RunID:   doc.RunID,
		Stats:   doc.Stats,
		Columns: doc.Table.Columns,
		Rows:    make([]map[string]string, len(doc.Table.Rows)),
	}
	for r := range doc.Table.Rows {
		row := make(map[string]string, len(doc.Table.Columns))
		for c, name := range doc.Table.Columns {
			// first column wins when a header repeats
			if _, ok := row[name]; !ok {
				row[name] = doc.Table.Cell(r, c)
			}
		}
		out.Rows[r] = row
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(out)
}

func padRow(row []string, n int) []string {
	if len(row) >= n {
		return row
	}
	out := make([]string, n)
	copy(out, row)
	return out
}
