package cmd

import (
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"syscall"

	"sales-ledger-reconciler/pkg/errors"
	"sales-ledger-reconciler/pkg/logger"

	"github.com/spf13/viper"
	"github.com/texttheater/golang-levenshtein/levenshtein"
)

// CLIErrorHandler provides user-friendly error handling for CLI operations
type CLIErrorHandler struct {
	logger  logger.Logger
	verbose bool
	out     io.Writer
}

// NewCLIErrorHandler creates a new CLI error handler
func NewCLIErrorHandler() *CLIErrorHandler {
	return &CLIErrorHandler{
		logger:  logger.GetGlobalLogger().WithComponent("cli"),
		verbose: viper.GetBool("verbose"),
		out:     os.Stderr,
	}
}

// HandleError prints err for the user and returns the process exit code.
func (h *CLIErrorHandler) HandleError(err error) int {
	if err == nil {
		return 0
	}

	// Log the error
	h.logger.WithError(err).Debug("Command failed")

	var summary *errors.ErrorSummary
	if stderrors.As(err, &summary) {
		return h.handleSummary(summary)
	}

	// Handle ReconcilerError with detailed information
	if reconcilerErr, ok := errors.AsReconcilerError(err); ok {
		return h.handleReconcilerError(reconcilerErr)
	}

	// Handle other error types
	return h.handleGenericError(err)
}

// handleReconcilerError handles ReconcilerError with detailed context
func (h *CLIErrorHandler) handleReconcilerError(err *errors.ReconcilerError) int {
	// Print the main error message
	fmt.Fprintf(h.out, "Error: %s\n", err.Message)

	// Add context information if available
	if len(err.Context) > 0 {
		keys := make([]string, 0, len(err.Context))
		for key := range err.Context {
			keys = append(keys, key)
		}
		sort.Strings(keys)

		fmt.Fprintf(h.out, "\nContext:\n")
		for _, key := range keys {
			fmt.Fprintf(h.out, "  %s: %v\n", key, err.Context[key])
		}
	}

	// Add suggestion if available
	if err.Suggestion != "" {
		fmt.Fprintf(h.out, "\nSuggestion: %s\n", err.Suggestion)
	}

	if path, ok := err.Context["file_path"].(string); ok && err.Category == errors.CategoryFile && stderrors.Is(err.Cause, os.ErrNotExist) {
		fmt.Fprintf(h.out, "\n%s", FormatFileError(path, err.Cause))
	}

	// Add category-specific help
	fmt.Fprintf(h.out, "\n%s\n", h.getCategoryHelp(err.Category))

	// Show underlying error in verbose mode
	if h.verbose {
		if err.Cause != nil {
			fmt.Fprintf(h.out, "\nUnderlying error: %v\n", err.Cause)
		}
		h.suggestRecoveryActions(err.Category)
	}

	return err.GetExitCode()
}

// handleSummary reports a run in which every file failed. The per-file details were
// already printed with the run summary.
func (h *CLIErrorHandler) handleSummary(summary *errors.ErrorSummary) int {
	fmt.Fprintf(h.out, "Error: no ledger file could be processed (%s)\n", summary.Error())

	categories := make([]string, 0, len(summary.ByCategory))
	for category := range summary.ByCategory {
		categories = append(categories, string(category))
	}
	sort.Strings(categories)
	for _, category := range categories {
		fmt.Fprintf(h.out, "\n%s\n", h.getCategoryHelp(errors.ErrorCategory(category)))
	}

	return summary.GetExitCode()
}

// handleGenericError handles non-ReconcilerError types
func (h *CLIErrorHandler) handleGenericError(err error) int {
	// Check for common system errors and provide better messages
	if h.isFileNotFoundError(err) {
		fmt.Fprintf(h.out, "Error: File not found\n")
		fmt.Fprintf(h.out, "Suggestion: Check if the file path is correct and the file exists\n")
		if h.verbose {
			fmt.Fprintf(h.out, "\nUnderlying error: %v\n", err)
		}
		return 2
	}

	if h.isPermissionError(err) {
		fmt.Fprintf(h.out, "Error: Permission denied\n")
		fmt.Fprintf(h.out, "Suggestion: Check file permissions and ensure you have read access\n")
		return 2
	}

	if h.isDiskFullError(err) {
		fmt.Fprintf(h.out, "Error: Insufficient disk space\n")
		fmt.Fprintf(h.out, "Suggestion: Free up disk space and try again\n")
		return 2
	}

	// Generic error handling
	fmt.Fprintf(h.out, "Error: %v\n", err)

	if !h.verbose {
		fmt.Fprintf(h.out, "\nFor more details, run with --verbose\n")
	}

	return 1
}

// getCategoryHelp returns category-specific help text
func (h *CLIErrorHandler) getCategoryHelp(category errors.ErrorCategory) string {
	switch category {
	case errors.CategoryFile:
		return `File error help:
• Check if the file exists and is readable
• Ledgers and catalogs must be .xlsx or UTF-8 .csv files
• Close the workbook in Excel if it is open; locked files cannot be read
• Ensure you have proper permissions to access the file`

	case errors.CategorySchema:
		return `Column error help:
• Ledgers need 회계일자, 적요 and 관리항목2, plus 대변 for every rule-set except 기타수수료
• The catalog needs 상품ID and 판매일자
• Header names must match exactly; check for extra spaces
• Use 'reconciler rulesets' to see the required columns per rule-set`

	case errors.CategoryParse:
		return `Parse error help:
• 회계일자 must be a date (2024-03-05, 2024.03.05, 20240305) or an Excel date serial
• Amounts may use thousands separators but no currency symbols
• Subtotal rows (월계, 누계) are dropped automatically; other summary rows are not`

	case errors.CategoryConfiguration:
		return `Configuration error help:
• Check your command-line flags and arguments
• Verify configuration file syntax if using --config
• Use 'reconciler reconcile --help' to see all available options
• Try running with default settings first`

	case errors.CategoryDispatch:
		return `Dispatch help:
• A ledger's file name must contain its rule-set keyword, for example 2024_03_매도비.xlsx
• Use 'reconciler rulesets' to list the keywords
• Other-revenue ledgers go through 'reconciler aggregate' instead`

	default:
		return `For more help:
• Use 'reconciler --help' for general help
• Use 'reconciler reconcile --help' for command-specific help
• Run with --verbose to see the underlying error`
	}
}

// suggestRecoveryActions suggests actions the user can take to recover from errors
func (h *CLIErrorHandler) suggestRecoveryActions(category errors.ErrorCategory) {
	fmt.Fprintf(h.out, "\nRecovery suggestions:\n")

	switch category {
	case errors.CategoryFile:
		fmt.Fprintf(h.out, "• Verify file paths and permissions\n")
		fmt.Fprintf(h.out, "• Re-export the workbook from the accounting system\n")

	case errors.CategorySchema:
		fmt.Fprintf(h.out, "• Rename the header cells to the expected column names\n")
		fmt.Fprintf(h.out, "• Map renamed catalog columns in the config file under catalog.column_aliases\n")

	case errors.CategoryParse:
		fmt.Fprintf(h.out, "• Fix or remove the row named in the error\n")
		fmt.Fprintf(h.out, "• Save files in UTF-8 encoding when exporting csv\n")

	case errors.CategoryConfiguration:
		fmt.Fprintf(h.out, "• Review command-line arguments\n")
		fmt.Fprintf(h.out, "• Check rule override files in --rules-dir\n")

	case errors.CategoryDispatch:
		fmt.Fprintf(h.out, "• Rename the file to include its rule-set keyword\n")
	}

	fmt.Fprintf(h.out, "• Check the documentation for examples and troubleshooting\n")
}

// Error detection helpers

func (h *CLIErrorHandler) isFileNotFoundError(err error) bool {
	return os.IsNotExist(err) || stderrors.Is(err, os.ErrNotExist) ||
		strings.Contains(err.Error(), "no such file or directory")
}

func (h *CLIErrorHandler) isPermissionError(err error) bool {
	return os.IsPermission(err) || stderrors.Is(err, os.ErrPermission) ||
		strings.Contains(err.Error(), "permission denied") ||
		strings.Contains(err.Error(), "access denied")
}

func (h *CLIErrorHandler) isDiskFullError(err error) bool {
	if stderrors.Is(err, syscall.ENOSPC) {
		return true
	}
	errStr := strings.ToLower(err.Error())
	return strings.Contains(errStr, "no space left") ||
		strings.Contains(errStr, "disk full") ||
		strings.Contains(errStr, "device full")
}

// FormatFileError formats file-related errors with helpful information
func FormatFileError(filePath string, err error) string {
	baseName := filepath.Base(filePath)
	dir := filepath.Dir(filePath)

	var message strings.Builder
	message.WriteString(fmt.Sprintf("Error with file '%s':\n", baseName))
	message.WriteString(fmt.Sprintf("  Path: %s\n", filePath))
	message.WriteString(fmt.Sprintf("  Error: %v\n", err))

	// Add specific suggestions based on error type
	if stderrors.Is(err, os.ErrNotExist) {
		message.WriteString("  Suggestion: Check if the file exists in the specified location\n")

		if similar := similarFiles(dir, baseName); len(similar) > 0 {
			message.WriteString("  Similar files found:\n")
			for _, name := range similar[:min(len(similar), 3)] {
				message.WriteString(fmt.Sprintf("    - %s\n", name))
			}
		}
	} else if stderrors.Is(err, os.ErrPermission) {
		message.WriteString("  Suggestion: Check file permissions - you may need read access\n")
	}

	return message.String()
}

// similarFiles returns the files in dir whose names are within 40% edit distance of
// name, closest first.
func similarFiles(dir, name string) []string {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}

	target := []rune(strings.ToLower(name))
	type candidate struct {
		name     string
		distance int
	}
	var candidates []candidate
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		other := []rune(strings.ToLower(entry.Name()))
		distance := levenshtein.DistanceForStrings(target, other, levenshtein.DefaultOptions)
		if distance*10 <= max(len(target), len(other))*4 {
			candidates = append(candidates, candidate{entry.Name(), distance})
		}
	}

	sort.SliceStable(candidates, func(i, j int) bool { return candidates[i].distance < candidates[j].distance })
	names := make([]string, len(candidates))
	for i, c := range candidates {
		names[i] = c.name
	}
	return names
}
