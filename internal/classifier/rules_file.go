package classifier

import (
	"fmt"
	"os"

	apperrors "sales-ledger-reconciler/pkg/errors"

	"gopkg.in/yaml.v3"
)

// ConditionSpec is one YAML rule. Every set field must hold for the rule to fire.
type ConditionSpec struct {
	Label                string   `yaml:"label"`
	NarrationContains    []string `yaml:"narration_contains,omitempty"`
	NarrationNotContains []string `yaml:"narration_not_contains,omitempty"`
	AccountIn            []string `yaml:"account_in,omitempty"`
	CatalogIDPrefix      string   `yaml:"catalog_id_prefix,omitempty"`
	IdentifierMissing    *bool    `yaml:"identifier_missing,omitempty"`
	PeriodMatched        *bool    `yaml:"period_matched,omitempty"`
	Category             string   `yaml:"category,omitempty"`
}

// CascadeSpec is the YAML form of a Cascade.
type CascadeSpec struct {
	Default string          `yaml:"default"`
	Rules   []ConditionSpec `yaml:"rules"`
}

// RuleFile holds the overridable tables of one rule-set.
//
//	category:
//	  default: 낙찰수수료
//	  rules:
//	    - label: 자산
//	      narration_contains: [자산, LC]
//	allocation:
//	  default: 간접
//	  rules:
//	    - label: 직접
//	      period_matched: true
//	counterparties:
//	  현대캐피탈 주식회사: 현대캐피탈
type RuleFile struct {
	Category       *CascadeSpec      `yaml:"category,omitempty"`
	Allocation     *CascadeSpec      `yaml:"allocation,omitempty"`
	Counterparties map[string]string `yaml:"counterparties,omitempty"`
}

// LoadRuleFile reads and validates a rule file.
func LoadRuleFile(path string) (*RuleFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, apperrors.FileError(apperrors.CodeFileNotFound, path, err)
		}
		return nil, apperrors.FileError(apperrors.CodeFilePermission, path, err)
	}
	rf, err := ParseRuleFile(data)
	if err != nil {
		if re, ok := apperrors.AsReconcilerError(err); ok {
			return nil, re.WithContext("file_path", path)
		}
		return nil, err
	}
	return rf, nil
}

// ParseRuleFile decodes a rule file and checks that every table compiles.
func ParseRuleFile(data []byte) (*RuleFile, error) {
	var rf RuleFile
	if err := yaml.Unmarshal(data, &rf); err != nil {
		return nil, apperrors.ConfigurationError(apperrors.CodeInvalidRules, "yaml", err.Error(), err)
	}
	if _, err := rf.Category.Build(); err != nil {
		return nil, err
	}
	if _, err := rf.Allocation.Build(); err != nil {
		return nil, err
	}
	return &rf, nil
}

// CounterpartyMap returns the file's counterparty table, nil if absent.
func (rf *RuleFile) CounterpartyMap() CounterpartyMap {
	if rf == nil || len(rf.Counterparties) == 0 {
		return nil
	}
	return CounterpartyMap(rf.Counterparties)
}

// Build compiles the spec. A nil spec builds a nil cascade.
func (s *CascadeSpec) Build() (*Cascade, error) {
	if s == nil {
		return nil, nil
	}
	c := &Cascade{Default: s.Default, Rules: make([]Rule, 0, len(s.Rules))}
	for i, spec := range s.Rules {
		p, err := spec.predicate()
		if err != nil {
			return nil, apperrors.ConfigurationError(apperrors.CodeInvalidRules,
				fmt.Sprintf("rules[%d]", i), spec.Label, err)
		}
		c.Rules = append(c.Rules, Rule{Label: spec.Label, When: p})
	}
	return c, nil
}

func (s ConditionSpec) predicate() (Predicate, error) {
	var ps []Predicate
	if len(s.NarrationContains) > 0 {
		ps = append(ps, NarrationContains(s.NarrationContains...))
	}
	if len(s.NarrationNotContains) > 0 {
		ps = append(ps, Not(NarrationContains(s.NarrationNotContains...)))
	}
	if len(s.AccountIn) > 0 {
		ps = append(ps, AccountIs(s.AccountIn...))
	}
	if s.CatalogIDPrefix != "" {
		ps = append(ps, CatalogIDHasPrefix(s.CatalogIDPrefix))
	}
	if s.IdentifierMissing != nil {
		ps = append(ps, boolPredicate(IdentifierMissing(), *s.IdentifierMissing))
	}
	if s.PeriodMatched != nil {
		ps = append(ps, boolPredicate(PeriodMatched(), *s.PeriodMatched))
	}
	if s.Category != "" {
		ps = append(ps, CategoryIs(s.Category))
	}
	if len(ps) == 0 {
		return nil, fmt.Errorf("rule %q has no conditions", s.Label)
	}
	return All(ps...), nil
}

func boolPredicate(p Predicate, want bool) Predicate {
	if want {
		return p
	}
	return Not(p)
}
