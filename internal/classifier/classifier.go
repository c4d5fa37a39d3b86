// Package classifier assigns labels to ledger entries from ordered rule tables.
//
// A Cascade is evaluated top to bottom and the first rule whose predicate holds
// supplies the label. The same evaluator drives every category, remark and
// allocation column of every rule-set; only the tables differ.
package classifier

import (
	"sales-ledger-reconciler/internal/models"
)

// Rule pairs a label with the condition that selects it.
type Rule struct {
	Label string
	When  Predicate
}

// Cascade is an ordered rule table with a fallback label.
type Cascade struct {
	Rules   []Rule
	Default string
}

// NewCascade builds a cascade from rules in evaluation order.
func NewCascade(defaultLabel string, rules ...Rule) *Cascade {
	return &Cascade{Rules: rules, Default: defaultLabel}
}

// Classify returns the label of the first matching rule, or the default.
func (c *Cascade) Classify(e *models.LedgerEntry) string {
	if c == nil {
		return ""
	}
	for _, r := range c.Rules {
		if r.When != nil && r.When(e) {
			return r.Label
		}
	}
	return c.Default
}

// Labels lists every label the cascade can produce, default last, without repeats.
func (c *Cascade) Labels() []string {
	if c == nil {
		return nil
	}
	seen := make(map[string]bool, len(c.Rules)+1)
	labels := make([]string, 0, len(c.Rules)+1)
	add := func(label string) {
		if !seen[label] {
			seen[label] = true
			labels = append(labels, label)
		}
	}
	for _, r := range c.Rules {
		add(r.Label)
	}
	add(c.Default)
	return labels
}

// Setter stores a label on an entry.
type Setter func(e *models.LedgerEntry, label string)

// SetCategory writes the label to Category.
func SetCategory(e *models.LedgerEntry, label string) { e.Category = label }

// SetAllocation writes the label to Allocation.
func SetAllocation(e *models.LedgerEntry, label string) { e.Allocation = label }

// Apply classifies a copy of the batch and stores each label through set.
func (c *Cascade) Apply(entries []models.LedgerEntry, set Setter) []models.LedgerEntry {
	out := models.CloneEntries(entries)
	for i := range out {
		set(&out[i], c.Classify(&out[i]))
	}
	return out
}
