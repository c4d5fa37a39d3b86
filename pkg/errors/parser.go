package errors

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"sync"
)

// Collector gathers per-file errors from a batch. It is safe for concurrent use.
type Collector struct {
	mu     sync.Mutex
	errors []*ReconcilerError
}

// NewCollector creates an empty collector.
func NewCollector() *Collector {
	return &Collector{}
}

// Add records err, wrapping plain errors as internal errors. Nil is ignored.
func (c *Collector) Add(err error) {
	if err == nil {
		return
	}
	re := WrapIfNeeded(err, CategoryInternal, CodeUnexpectedError, "unexpected error")

	c.mu.Lock()
	defer c.mu.Unlock()
	c.errors = append(c.errors, re)
}

// HasErrors returns true if any errors have been collected
func (c *Collector) HasErrors() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.errors) > 0
}

// Errors returns a copy of the collected errors in arrival order.
func (c *Collector) Errors() []*ReconcilerError {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]*ReconcilerError(nil), c.errors...)
}

// Summary returns an error summary for all collected errors
func (c *Collector) Summary() *ErrorSummary {
	return NewErrorSummary(c.Errors())
}

// DetailedError returns a multi-line description of one error.
func DetailedError(e *ReconcilerError) string {
	var lines []string
	lines = append(lines, fmt.Sprintf("ERROR: %s", e.Message))

	if file, ok := e.Context["file"].(string); ok && file != "" {
		lines = append(lines, fmt.Sprintf("  → File: %s", file))
	} else if path, ok := e.Context["file_path"].(string); ok && path != "" {
		lines = append(lines, fmt.Sprintf("  → File: %s", path))
	}
	if row, ok := e.Context["row"].(int); ok && row > 0 {
		lines = append(lines, fmt.Sprintf("  → Row: %d", row))
	}
	if col, ok := e.Context["column"].(string); ok && col != "" {
		lines = append(lines, fmt.Sprintf("  → Column: %s", col))
	}
	if e.Suggestion != "" {
		lines = append(lines, fmt.Sprintf("  → Suggestion: %s", e.Suggestion))
	}
	return strings.Join(lines, "\n")
}

// FormatErrorsForUser formats multiple errors grouped by file, showing the first
// few of each file in detail.
func FormatErrorsForUser(errs []*ReconcilerError) string {
	if len(errs) == 0 {
		return "No errors"
	}
	if len(errs) == 1 {
		return DetailedError(errs[0])
	}

	lines := []string{fmt.Sprintf("Found %d errors:", len(errs)), ""}

	byFile := make(map[string][]*ReconcilerError)
	for _, e := range errs {
		file := "unknown"
		if f, ok := e.Context["file"].(string); ok && f != "" {
			file = filepath.Base(f)
		} else if p, ok := e.Context["file_path"].(string); ok && p != "" {
			file = filepath.Base(p)
		}
		byFile[file] = append(byFile[file], e)
	}

	files := make([]string, 0, len(byFile))
	for f := range byFile {
		files = append(files, f)
	}
	sort.Strings(files)

	const maxDetailed = 3
	for _, file := range files {
		fileErrs := byFile[file]
		lines = append(lines, fmt.Sprintf("File: %s (%d errors)", file, len(fileErrs)))
		for i, e := range fileErrs {
			if i == maxDetailed {
				lines = append(lines, "", fmt.Sprintf("... and %d more errors in this file", len(fileErrs)-maxDetailed))
				break
			}
			lines = append(lines, "", DetailedError(e))
		}
		lines = append(lines, "")
	}
	return strings.Join(lines, "\n")
}
