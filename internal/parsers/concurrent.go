package parsers

import (
	"context"

	"sales-ledger-reconciler/internal/models"

	"golang.org/x/sync/errgroup"
)

// DefaultConcurrency bounds parallel file reads when no limit is configured.
const DefaultConcurrency = 4

// TableResult is the outcome of reading one file.
type TableResult struct {
	Path  string
	Table *models.Table
	Err   error
}

// ReadTables reads every path with at most limit reads in flight. Results are in
// input order and one file's failure never stops the others; only context
// cancellation ends the batch early.
func ReadTables(ctx context.Context, reader TableReader, paths []string, limit int) ([]TableResult, error) {
	if limit <= 0 {
		limit = DefaultConcurrency
	}

	results := make([]TableResult, len(paths))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)

	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			table, err := reader.ReadTable(gctx, path)
			results[i] = TableResult{Path: path, Table: table, Err: err}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
