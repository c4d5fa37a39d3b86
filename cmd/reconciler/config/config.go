package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"unicode/utf8"

	"sales-ledger-reconciler/internal/matcher"
	"sales-ledger-reconciler/internal/parsers"
	"sales-ledger-reconciler/internal/reconciler"
	"sales-ledger-reconciler/internal/reporter"
	"sales-ledger-reconciler/pkg/logger"

	"github.com/spf13/viper"
)

// CreateParseConfig creates the table reader configuration. The delimiter applies to
// csv inputs only; sheet selects a workbook sheet by name.
func CreateParseConfig(delimiter, sheet string) (*parsers.ParseConfig, error) {
	config := parsers.DefaultParseConfig()

	if delimiter != "" {
		r, err := parseDelimiter(delimiter)
		if err != nil {
			return nil, err
		}
		config.Delimiter = r
	}
	config.Sheet = strings.TrimSpace(sheet)

	return config, nil
}

// CreateMatchingConfig creates a matching configuration with the specified tie break
func CreateMatchingConfig(tieBreak string, sentinelPrefix int) (*matcher.Config, error) {
	config := matcher.DefaultConfig()

	if tieBreak != "" {
		config.TieBreak = matcher.TieBreak(tieBreak)
	}
	if sentinelPrefix > 0 {
		config.SentinelPrefixLength = sentinelPrefix
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid matching config: %w", err)
	}
	return config, nil
}

// LoadCatalogConfig reads the optional "catalog" section of the config file over the
// default column names.
func LoadCatalogConfig(v *viper.Viper) (*parsers.CatalogConfig, error) {
	config := parsers.DefaultCatalogConfig()
	if v == nil || !v.IsSet("catalog") {
		return config, nil
	}

	if err := v.UnmarshalKey("catalog", config); err != nil {
		return nil, fmt.Errorf("failed to read catalog config: %w", err)
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid catalog config: %w", err)
	}
	return config, nil
}

// CreateReconcilerConfig creates a reconciler configuration
func CreateReconcilerConfig(concurrency int, rulesDir string, matching *matcher.Config, catalog *parsers.CatalogConfig) (*reconciler.Config, error) {
	config := reconciler.DefaultConfig()

	if concurrency > 0 {
		config.MaxConcurrentFiles = concurrency
	}
	config.RulesDir = strings.TrimSpace(rulesDir)
	if matching != nil {
		config.Matching = matching
	}
	if catalog != nil {
		config.Catalog = catalog
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// CreateReportConfig creates a report configuration for the specified output format
func CreateReportConfig(format, outputDir string, highlight bool) (*reporter.ReportConfig, error) {
	config := reporter.DefaultReportConfig()

	if format != "" {
		config.Format = reporter.OutputFormat(strings.ToLower(format))
	}
	if outputDir != "" {
		config.OutputDir = outputDir
	}
	config.HighlightHeaders = highlight

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// CreateLoggerConfig creates the logger configuration. An empty level keeps the
// default; verbose forces debug. An empty file logs to stderr.
func CreateLoggerConfig(level, format, file string, verbose bool) (*logger.Config, error) {
	config := logger.DefaultConfig()

	if level != "" {
		config.Level = logger.Level(strings.ToLower(level))
	}
	if verbose {
		config.Level = logger.DebugLevel
	}
	if format != "" {
		config.Format = logger.Format(strings.ToLower(format))
	}
	config.File = strings.TrimSpace(file)

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// ExpandInputs resolves the input arguments to ledger files. Directories contribute
// their .xlsx and .csv files in name order; spreadsheet lock files ("~$...") are
// skipped. Duplicate paths are kept once.
func ExpandInputs(inputs []string) ([]string, error) {
	var files []string
	seen := make(map[string]bool)

	add := func(path string) {
		clean := filepath.Clean(path)
		if !seen[clean] {
			seen[clean] = true
			files = append(files, clean)
		}
	}

	for _, input := range inputs {
		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}

		info, err := os.Stat(input)
		if err != nil {
			return nil, fmt.Errorf("cannot access input %s: %w", input, err)
		}
		if !info.IsDir() {
			add(input)
			continue
		}

		entries, err := os.ReadDir(input)
		if err != nil {
			return nil, fmt.Errorf("cannot read directory %s: %w", input, err)
		}
		var names []string
		for _, entry := range entries {
			if entry.IsDir() || !IsLedgerFile(entry.Name()) {
				continue
			}
			names = append(names, entry.Name())
		}
		sort.Strings(names)
		for _, name := range names {
			add(filepath.Join(input, name))
		}
	}

	if len(files) == 0 {
		return nil, fmt.Errorf("no ledger files found in %s", strings.Join(inputs, ", "))
	}
	return files, nil
}

// IsLedgerFile reports whether a file name looks like a readable ledger export.
func IsLedgerFile(name string) bool {
	if strings.HasPrefix(name, "~$") || strings.HasPrefix(name, ".") {
		return false
	}
	switch strings.ToLower(filepath.Ext(name)) {
	case ".xlsx", ".csv":
		return true
	default:
		return false
	}
}

func parseDelimiter(s string) (rune, error) {
	if s == `\t` || s == "tab" {
		return '\t', nil
	}
	if utf8.RuneCountInString(s) != 1 {
		return 0, fmt.Errorf("delimiter must be a single character, got %q", s)
	}
	r, _ := utf8.DecodeRuneInString(s)
	if r == '"' || r == '\n' || r == '\r' {
		return 0, fmt.Errorf("invalid delimiter %q", s)
	}
	return r, nil
}
