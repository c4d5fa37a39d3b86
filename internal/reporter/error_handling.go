package reporter

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"sales-ledger-reconciler/pkg/errors"
	"sales-ledger-reconciler/pkg/logger"
)

// SafeReportGenerator wraps ReportGenerator with fallbacks: a failed xlsx encode is
// retried as csv, and an unwritable destination is retried under a backup name.
type SafeReportGenerator struct {
	*ReportGenerator
	logger logger.Logger
}

// NewSafeReportGenerator creates a new safe report generator with error handling
func NewSafeReportGenerator(config *ReportConfig, log logger.Logger) (*SafeReportGenerator, error) {
	if log == nil {
		log = logger.GetGlobalLogger()
	}

	generator, err := NewReportGenerator(config)
	if err != nil {
		return nil, errors.ConfigurationError(
			errors.CodeInvalidConfig,
			"report_config",
			config,
			err,
		).WithSuggestion("check the output format and column width settings")
	}

	return &SafeReportGenerator{
		ReportGenerator: generator,
		logger:          log.WithComponent("reporter"),
	}, nil
}

// WriteFileSafely writes a document, falling back where possible, and returns the
// path actually written.
func (srg *SafeReportGenerator) WriteFileSafely(doc *Document) (string, error) {
	log := srg.logger.WithFields(logger.Fields{
		"document": doc.Name,
		"format":   srg.config.Format,
	})

	path, err := srg.WriteFile(doc)
	if err == nil {
		log.WithField("path", path).Debug("Wrote report")
		return path, nil
	}
	log.WithError(err).Warn("Primary report write failed, attempting fallback")

	if isFileError(err) {
		return srg.writeWithOutputFallback(doc, err)
	}
	if srg.config.Format == FormatXLSX {
		return srg.writeWithFormatFallback(doc, err)
	}
	return "", srg.wrapGenerationError(err, srg.Path(doc))
}

// writeWithFormatFallback retries a document as csv.
func (srg *SafeReportGenerator) writeWithFormatFallback(doc *Document, originalErr error) (string, error) {
	fallbackConfig := *srg.config
	fallbackConfig.Format = FormatCSV

	srg.logger.WithField("fallback_format", FormatCSV).Info("Attempting format fallback")

	fallback, err := NewReportGenerator(&fallbackConfig)
	if err != nil {
		return "", srg.wrapGenerationError(originalErr, srg.Path(doc))
	}

	path, err := fallback.WriteFile(doc)
	if err != nil {
		return "", errors.InternalError(
			errors.CodeUnexpectedError,
			"report_fallback",
			fmt.Errorf("both primary and fallback generation failed: primary=%v, fallback=%v", originalErr, err),
		)
	}

	srg.logger.WithField("path", path).Info("Report written using format fallback")
	return path, nil
}

// writeWithOutputFallback retries a document under a backup name in the same directory.
func (srg *SafeReportGenerator) writeWithOutputFallback(doc *Document, originalErr error) (string, error) {
	originalPath := srg.Path(doc)
	backup := *doc
	backup.Name = strings.TrimSuffix(filepath.Base(generateBackupPath(originalPath)), srg.config.Format.Extension())

	srg.logger.WithFields(logger.Fields{
		"original_file": originalPath,
		"backup_file":   srg.Path(&backup),
	}).Info("Attempting output fallback")

	path, err := srg.WriteFile(&backup)
	if err != nil {
		return "", srg.wrapGenerationError(originalErr, originalPath)
	}

	fmt.Fprintf(os.Stderr, "Warning: Could not write to %s, report saved to %s\n", originalPath, path)
	return path, nil
}

// isFileError checks if the error is file-related
func isFileError(err error) bool {
	return os.IsPermission(err) ||
		os.IsExist(err) ||
		isSpaceError(err)
}

// generateBackupPath creates a backup file path
func generateBackupPath(originalPath string) string {
	dir := filepath.Dir(originalPath)
	base := filepath.Base(originalPath)
	ext := filepath.Ext(base)
	name := base[:len(base)-len(ext)]

	return filepath.Join(dir, fmt.Sprintf("%s_backup%s", name, ext))
}

// wrapGenerationError wraps generation errors with context
func (srg *SafeReportGenerator) wrapGenerationError(err error, path string) error {
	if reconcilerErr, ok := errors.AsReconcilerError(err); ok {
		return reconcilerErr
	}
	if os.IsPermission(err) {
		return errors.FileError(errors.CodeFilePermission, path, err)
	}

	return errors.InternalError(
		errors.CodeUnexpectedError,
		"report_generation",
		err,
	).WithContext("file_path", path).
		WithSuggestion("check the output directory and report format settings")
}

func isSpaceError(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "no space left") ||
		strings.Contains(msg, "disk full") ||
		strings.Contains(msg, "device full")
}
