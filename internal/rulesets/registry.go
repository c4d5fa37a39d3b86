package rulesets

import (
	"os"
	"path/filepath"
	"strings"

	"sales-ledger-reconciler/internal/classifier"
	apperrors "sales-ledger-reconciler/pkg/errors"
)

// Registry holds the dispatchable rule-sets in dispatch order plus the aggregate.
type Registry struct {
	sets      []*Ruleset
	aggregate *Ruleset
}

// Default returns a registry with the built-in rule tables.
func Default() *Registry {
	return &Registry{
		sets: []*Ruleset{
			SalesRevenue(),
			RestorationCost(),
			OtherFees(),
			SellerFees(),
			BidFees(),
			ConsignmentFees(),
			Merchandising(),
			AppraiserFees(),
		},
		aggregate: OtherRevenue(),
	}
}

// All returns the dispatchable rule-sets in dispatch order.
func (r *Registry) All() []*Ruleset {
	return append([]*Ruleset(nil), r.sets...)
}

// Aggregate returns the aggregate rule-set.
func (r *Registry) Aggregate() *Ruleset {
	return r.aggregate
}

// ByKey finds a rule-set, the aggregate included, by key ("v4") or name ("매도비").
func (r *Registry) ByKey(key string) (*Ruleset, bool) {
	for _, rs := range append(r.All(), r.aggregate) {
		if rs.Key == key || rs.Name == key {
			return rs, true
		}
	}
	return nil, false
}

// Dispatch returns the first rule-set whose keyword occurs in the file's base name.
func (r *Registry) Dispatch(filename string) (*Ruleset, bool) {
	base := filepath.Base(filename)
	for _, rs := range r.sets {
		if rs.Keyword != "" && strings.Contains(base, rs.Keyword) {
			return rs, true
		}
	}
	return nil, false
}

// LoadOverrides layers <key>.yaml files from dir over the built-in tables.
// Rule-sets without a file keep their definition. An empty dir is a no-op.
func (r *Registry) LoadOverrides(dir string) (*Registry, error) {
	if dir == "" {
		return r, nil
	}
	info, err := os.Stat(dir)
	if err != nil {
		return nil, apperrors.FileError(apperrors.CodeFileNotFound, dir, err)
	}
	if !info.IsDir() {
		return nil, apperrors.ConfigurationError(apperrors.CodeInvalidConfig, "rules_dir", dir, nil)
	}

	override := func(rs *Ruleset) (*Ruleset, error) {
		path := filepath.Join(dir, rs.Key+".yaml")
		if _, err := os.Stat(path); os.IsNotExist(err) {
			return rs, nil
		}
		rf, err := classifier.LoadRuleFile(path)
		if err != nil {
			return nil, err
		}
		return rs.WithRules(rf)
	}

	out := &Registry{sets: make([]*Ruleset, len(r.sets))}
	for i, rs := range r.sets {
		if out.sets[i], err = override(rs); err != nil {
			return nil, err
		}
	}
	if out.aggregate, err = override(r.aggregate); err != nil {
		return nil, err
	}
	return out, nil
}
