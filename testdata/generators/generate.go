package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"
)

func main() {
	var (
		outputDir  = flag.String("output-dir", "../generated", "Output directory for generated files")
		units      = flag.Int("units", 200, "Number of catalog records")
		entries    = flag.Int("entries", 300, "Ledger rows per rule-set")
		month      = flag.String("month", "2024-03", "Accounting month of the ledgers (YYYY-MM)")
		matchRatio = flag.Float64("match-ratio", 0.8, "Share of ledger rows that name a catalog unit")
		cancelRate = flag.Float64("cancel-rate", 0.05, "Share of ledger rows followed by a reversal")
		only       = flag.String("ruleset", "", "Generate only the ledger of this rule-set key (v1..v8, v11)")
		format     = flag.String("format", "xlsx", "Output format: xlsx or csv")
		seed       = flag.Int64("seed", time.Now().UnixNano(), "Random seed for reproducible generation")
	)
	flag.Parse()

	period, err := time.Parse("2006-01", *month)
	if err != nil {
		log.Fatalf("Invalid month: %v", err)
	}
	if *matchRatio < 0 || *matchRatio > 1 || *cancelRate < 0 || *cancelRate > 1 {
		log.Fatal("match-ratio and cancel-rate must be between 0 and 1")
	}
	if *format != "xlsx" && *format != "csv" {
		log.Fatalf("Unsupported format %q", *format)
	}

	if err := os.MkdirAll(*outputDir, 0755); err != nil {
		log.Fatalf("Failed to create output directory: %v", err)
	}
	ledgerDir := filepath.Join(*outputDir, "ledgers")
	otherDir := filepath.Join(*outputDir, "other")

	gen := NewGenerator(*seed, period)
	catalog := gen.Catalog(*units)

	catalogPath, err := writeSheet(*outputDir, "catalog", *format, catalog)
	if err != nil {
		log.Fatalf("Failed to write catalog: %v", err)
	}
	fmt.Printf("Generated %d catalog records in %s\n", len(catalog.Rows), catalogPath)

	opts := LedgerOptions{Rows: *entries, MatchRatio: *matchRatio, CancelRate: *cancelRate}
	for _, spec := range gen.LedgerSpecs() {
		if *only != "" && spec.Key != *only {
			continue
		}
		// The aggregate ledger matches no dispatch keyword and is kept apart.
		dir := ledgerDir
		if spec.Key == "v11" {
			dir = otherDir
		}
		table := gen.Ledger(spec, catalog, opts)
		path, err := writeSheet(dir, spec.FileName(period), *format, table)
		if err != nil {
			log.Fatalf("Failed to write %s ledger: %v", spec.Key, err)
		}
		fmt.Printf("Generated %d %s rows in %s\n", len(table.Rows), spec.Key, path)
	}

	fmt.Println()
	fmt.Println("Next steps:")
	fmt.Printf("  reconciler reconcile --catalog %s --files %s --merge\n", catalogPath, ledgerDir)
	fmt.Printf("  reconciler aggregate --catalog %s --files %s\n", catalogPath, otherDir)
}
