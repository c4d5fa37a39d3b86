package main

import (
	"sales-ledger-reconciler/internal/models"
	"sales-ledger-reconciler/internal/reporter"
)

// writeSheet writes table as dir/name in the report format, returning the path.
func writeSheet(dir, name, format string, table *models.Table) (string, error) {
	config := reporter.DefaultReportConfig()
	config.Format = reporter.OutputFormat(format)
	config.OutputDir = dir

	rg, err := reporter.NewReportGenerator(config)
	if err != nil {
		return "", err
	}
	return rg.WriteFile(&reporter.Document{Name: name, Table: table, HighlightFrom: -1})
}
