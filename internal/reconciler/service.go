// Package reconciler runs rule-sets over ledger files against a sales catalog.
//
// A batch dispatches each file to its rule-set by file name, reads it, and runs the
// pipeline: trim, subtotal-row drop, date and amount parsing, identifier extraction,
// matching, enrichment, duplicate and cancellation flags, then classification. The
// catalog index is built once per batch and shared read-only by the file workers.
//
// Example usage:
//
//	service, err := reconciler.NewService(parsers.NewFileReader(nil), rulesets.Default(), nil)
//	catalog, err := service.LoadCatalog(ctx, "catalog.xlsx")
//	batch, err := service.ProcessFiles(ctx, catalog, []string{"2024_03_매도비.xlsx"})
//	for _, outcome := range batch.Outcomes {
//		fmt.Println(outcome.Path, outcome.Result.Stats.Matched)
//	}
package reconciler

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"sales-ledger-reconciler/internal/matcher"
	"sales-ledger-reconciler/internal/models"
	"sales-ledger-reconciler/internal/parsers"
	"sales-ledger-reconciler/internal/rulesets"
	"sales-ledger-reconciler/pkg/errors"
	"sales-ledger-reconciler/pkg/logger"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// AggregateFileName is the base name of the aggregate run's output.
const AggregateFileName = "매출_기타매출_통합"

// Service orchestrates catalog loading and batch processing.
type Service struct {
	reader   parsers.TableReader
	registry *rulesets.Registry
	config   *Config
	logger   logger.Logger
}

// NewService creates a reconciliation service. A nil registry means the built-in
// rule tables; overrides from config.RulesDir are layered on top.
func NewService(reader parsers.TableReader, registry *rulesets.Registry, config *Config) (*Service, error) {
	if config == nil {
		config = DefaultConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, errors.ConfigurationError(errors.CodeInvalidConfig, "reconciler", err.Error(), err)
	}
	if reader == nil {
		reader = parsers.NewFileReader(nil)
	}
	if registry == nil {
		registry = rulesets.Default()
	}

	registry, err := registry.LoadOverrides(config.RulesDir)
	if err != nil {
		return nil, err
	}

	return &Service{
		reader:   reader,
		registry: registry,
		config:   config,
		logger:   logger.GetGlobalLogger().WithComponent("reconciler"),
	}, nil
}

// Registry returns the rule-sets the service dispatches to.
func (s *Service) Registry() *rulesets.Registry {
	return s.registry
}

// GetConfiguration returns the current configuration
func (s *Service) GetConfiguration() *Config {
	return s.config
}

// LoadCatalog reads the sales catalog into a snapshot for one batch.
func (s *Service) LoadCatalog(ctx context.Context, path string) (*models.Catalog, error) {
	table, err := s.reader.ReadTable(ctx, path)
	if err != nil {
		return nil, err
	}

	catalog, err := parsers.ReadCatalog(table, s.config.catalog())
	if err != nil {
		if re, ok := errors.AsReconcilerError(err); ok {
			return nil, re.WithContext("file", path)
		}
		return nil, err
	}

	s.logger.WithFile(path).WithField("records", catalog.Len()).Info("Loaded sales catalog")
	return catalog, nil
}

// FileOutcome is the result of one file of a batch. Exactly one of Result and Err is set.
type FileOutcome struct {
	Path   string
	Result *Result
	Err    error
}

// Batch holds the outcomes of one ProcessFiles call in input order.
type Batch struct {
	RunID    string
	Outcomes []FileOutcome
	Errors   []*errors.ReconcilerError
	Duration time.Duration
}

// Results returns the successful results in input order.
func (b *Batch) Results() []*Result {
	var out []*Result
	for _, o := range b.Outcomes {
		if o.Result != nil {
			out = append(out, o.Result)
		}
	}
	return out
}

// Failed returns the number of files that produced no result.
func (b *Batch) Failed() int {
	return len(b.Outcomes) - len(b.Results())
}

// newPipeline builds the catalog index for one batch.
func (s *Service) newPipeline(catalog *models.Catalog) *Pipeline {
	var index *matcher.CatalogIndex
	if catalog != nil {
		index = matcher.NewCatalogIndex(catalog.Records, s.config.matching())
	}
	return NewPipeline(index, s.config.matching())
}

// ProcessFiles dispatches every file to its rule-set and runs the pipeline, with at
// most MaxConcurrentFiles in flight. A failing file is reported in its outcome and
// never stops the others; only context cancellation ends the batch early.
func (s *Service) ProcessFiles(ctx context.Context, catalog *models.Catalog, paths []string) (*Batch, error) {
	start := time.Now()
	batch := &Batch{
		RunID:    uuid.NewString(),
		Outcomes: make([]FileOutcome, len(paths)),
	}
	log := s.logger.WithRun(batch.RunID).WithField("files", len(paths))
	log.Info("Starting reconciliation batch")

	pipeline := s.newPipeline(catalog)
	collector := errors.NewCollector()
	progress := logger.NewProgressTracker(logger.ProgressConfig{
		Operation: "reconcile",
		Total:     int64(len(paths)),
		Logger:    log,
	})

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.config.MaxConcurrentFiles)

	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			result, err := s.processFile(gctx, pipeline, path)
			if err != nil {
				collector.Add(err)
				log.WithError(err).WithFile(path).Warn("Skipping ledger file")
				batch.Outcomes[i] = FileOutcome{Path: path, Err: err}
				progress.Done(true)
				return nil
			}

			result.RunID = batch.RunID
			batch.Outcomes[i] = FileOutcome{Path: path, Result: result}
			progress.Done(false)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	progress.Complete()

	batch.Errors = collector.Errors()
	batch.Duration = time.Since(start)
	log.WithFields(logger.Fields{
		"succeeded": len(paths) - batch.Failed(),
		"failed":    batch.Failed(),
		"duration":  batch.Duration,
	}).Info("Reconciliation batch finished")
	return batch, nil
}

func (s *Service) processFile(ctx context.Context, pipeline *Pipeline, path string) (*Result, error) {
	name := filepath.Base(path)
	rs, ok := s.registry.Dispatch(name)
	if !ok {
		return nil, errors.DispatchError(name)
	}

	table, err := s.reader.ReadTable(ctx, path)
	if err != nil {
		return nil, err
	}

	result, err := pipeline.Run(rs, name, table)
	if err != nil {
		return nil, err
	}

	s.logger.WithFields(logger.Fields{
		"file":      name,
		"ruleset":   rs.DisplayName(),
		"total":     result.Stats.Total,
		"matched":   result.Stats.Matched,
		"canceled":  result.Stats.Canceled,
		"duplicate": result.Stats.RepeatedIDs,
	}).Info("Processed ledger file")
	return result, nil
}

// ProcessAggregate runs the aggregate rule-set over many ledgers as one table. Files
// that cannot be read or lack a required column are skipped with a warning and
// reported in the returned errors. It fails only when no file is usable.
func (s *Service) ProcessAggregate(ctx context.Context, catalog *models.Catalog, paths []string) (*Result, []*errors.ReconcilerError, error) {
	rs := s.registry.Aggregate()
	runID := uuid.NewString()
	log := s.logger.WithRun(runID).WithRuleset(rs.DisplayName()).WithField("files", len(paths))

	tables, err := parsers.ReadTables(ctx, s.reader, paths, s.config.MaxConcurrentFiles)
	if err != nil {
		return nil, nil, err
	}

	collector := errors.NewCollector()
	var passThrough []string
	var entries []models.LedgerEntry
	used := 0

	for _, t := range tables {
		name := filepath.Base(t.Path)
		if t.Err != nil {
			collector.Add(t.Err)
			log.WithError(t.Err).WithField("file", name).Warn("Skipping unreadable file")
			continue
		}

		table, fileEntries, err := Preprocess(rs, name, t.Table)
		if err != nil {
			collector.Add(err)
			log.WithError(err).WithField("file", name).Warn("Skipping invalid file")
			continue
		}

		passThrough = table.Columns
		for i := range fileEntries {
			fileEntries[i].Row = len(entries) + i
		}
		entries = append(entries, fileEntries...)
		used++
	}

	if used == 0 {
		return nil, collector.Errors(), errors.New(errors.CategorySchema, errors.CodeMissingColumn,
			fmt.Sprintf("none of the %d files is a valid %s ledger", len(paths), rs.DisplayName())).
			WithSuggestion("each file needs the columns: " + strings.Join(rs.RequiredColumns, ", "))
	}

	entries, err = s.newPipeline(catalog).Annotate(rs, entries)
	if err != nil {
		return nil, collector.Errors(), err
	}

	result := newResult(rs, AggregateFileName, passThrough, entries)
	result.RunID = runID
	log.WithFields(logger.Fields{
		"used":    used,
		"skipped": len(paths) - used,
		"total":   result.Stats.Total,
		"matched": result.Stats.Matched,
	}).Info("Aggregated ledger files")
	return result, collector.Errors(), nil
}
