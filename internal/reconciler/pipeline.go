package reconciler

import (
	"time"

	"sales-ledger-reconciler/internal/classifier"
	"sales-ledger-reconciler/internal/matcher"
	"sales-ledger-reconciler/internal/models"
	"sales-ledger-reconciler/internal/rulesets"
	"sales-ledger-reconciler/pkg/errors"
	"sales-ledger-reconciler/pkg/logger"
)

// Pipeline executes rule-sets against one catalog snapshot. The index is built by the
// caller and only read here, so one Pipeline may serve concurrent runs.
type Pipeline struct {
	index  *matcher.CatalogIndex
	config *matcher.Config
	logger logger.Logger
}

// NewPipeline creates a pipeline over a built catalog index. A nil index is allowed
// for batches that only run rule-sets without matching.
func NewPipeline(index *matcher.CatalogIndex, config *matcher.Config) *Pipeline {
	if config == nil {
		config = matcher.DefaultConfig()
	}
	return &Pipeline{
		index:  index,
		config: config,
		logger: logger.GetGlobalLogger().WithComponent("pipeline"),
	}
}

// Run preprocesses one raw ledger table and annotates its entries.
func (p *Pipeline) Run(rs *rulesets.Ruleset, file string, raw *models.Table) (*Result, error) {
	table, entries, err := Preprocess(rs, file, raw)
	if err != nil {
		return nil, err
	}

	entries, err = p.Annotate(rs, entries)
	if err != nil {
		return nil, errors.WrapIfNeeded(err, errors.CategoryInternal, errors.CodeUnexpectedError, "annotate").
			WithContext("file", file)
	}
	return newResult(rs, file, table.Columns, entries), nil
}

// Annotate runs every stage after preprocessing: extraction, matching, enrichment,
// the duplicate flag, cancellation detection and the classification cascades.
// Stages a rule-set does not enable are skipped. The input slice is not modified.
func (p *Pipeline) Annotate(rs *rulesets.Ruleset, entries []models.LedgerEntry) ([]models.LedgerEntry, error) {
	log := p.logger.WithRuleset(rs.DisplayName()).WithField("entries", len(entries))
	start := time.Now()

	entries = rs.Extractor().Apply(entries)

	if rs.Match != rulesets.MatchNone {
		if p.index == nil {
			return nil, errors.ConfigurationError(errors.CodeInvalidConfig, "catalog", "not loaded", nil).
				WithSuggestion("load the sales catalog before processing " + rs.DisplayName())
		}

		var m matcher.Matcher
		switch rs.Match {
		case rulesets.MatchLongForm:
			m = matcher.NewLongFormMatcher(p.index)
		default:
			var opts []matcher.Option
			if rs.SentinelCarveOut {
				opts = append(opts, matcher.WithSentinelCarveOut())
			}
			m = matcher.NewPrecedenceMatcher(p.index, p.config, opts...)
		}
		entries = matcher.Apply(m, entries)

		if rs.Enrich {
			entries = matcher.Enrich(entries, p.index)
		}
	}

	if rs.FlagDuplicates {
		entries = matcher.FlagDuplicates(entries)
	}
	if rs.DetectCancellations {
		entries = matcher.DetectCancellations(entries, rs.AmountFunc())
	}

	if rs.Category != nil {
		entries = rs.Category.Apply(entries, classifier.SetCategory)
	}
	if rs.Counterparties != nil {
		entries = rs.Counterparties.Apply(entries)
	}
	if rs.Allocation != nil {
		entries = rs.Allocation.Apply(entries, classifier.SetAllocation)
	}

	log.WithField("duration", time.Since(start)).Debug("Annotated ledger entries")
	return entries, nil
}
