// Package extractor pulls unit identifiers (vehicle plates, or the forklift sentinel)
// out of free-text ledger narrations.
//
// A plate is an optional region prefix, two or three digits, one Hangul syllable and
// four digits, e.g. "서울12가3456" or "123가4567". Two extraction modes exist because
// narrations follow two conventions:
//
//	ModeBracket  "12가3456(34나5678)" -> identifier1 "12가3456", identifier2 "34나5678"
//	ModeScan     "매도비 12가3456 정산" -> identifier1 "12가3456"
//
// Absence of a match is not an error; the empty token is returned.
package extractor

import (
	"fmt"
	"regexp"
	"strings"

	"sales-ledger-reconciler/internal/models"
)

// Mode selects how tokens are located in a narration.
type Mode int

const (
	// ModeNone disables extraction.
	ModeNone Mode = iota
	// ModeBracket returns the token right before "(" and the token right after it.
	// A bare token without a bracket yields nothing, so re-extraction is idempotent
	// only in ModeScan.
	ModeBracket
	// ModeScan returns the first token anywhere in the text.
	ModeScan
)

// String returns the mode name.
func (m Mode) String() string {
	switch m {
	case ModeBracket:
		return "bracket"
	case ModeScan:
		return "scan"
	default:
		return "none"
	}
}

// Sentinel is the literal token for forklift-class equipment, which has no plate.
const Sentinel models.IdentifierToken = "지게차"

// DefaultRegions is the closed set of region prefixes a plate may carry.
var DefaultRegions = []string{"서울", "부산", "대구", "인천", "광주", "대전", "울산", "경기"}

// Config controls the token pattern.
type Config struct {
	Mode    Mode
	Regions []string
	// AllowSpace tolerates one whitespace between the Hangul syllable and the last four digits.
	AllowSpace bool
}

// Extractor finds identifier tokens in narrations. It is safe for concurrent use.
type Extractor struct {
	mode    Mode
	scan    *regexp.Regexp
	before  *regexp.Regexp
	inside  *regexp.Regexp
	pattern string
}

// New compiles an extractor for the given configuration.
func New(config Config) (*Extractor, error) {
	regions := config.Regions
	if len(regions) == 0 {
		regions = DefaultRegions
	}

	quoted := make([]string, len(regions))
	for i, r := range regions {
		if strings.TrimSpace(r) == "" {
			return nil, fmt.Errorf("region prefix %d is empty", i)
		}
		quoted[i] = regexp.QuoteMeta(r)
	}

	gap := ""
	if config.AllowSpace {
		gap = `\s?`
	}
	unit := fmt.Sprintf(`(?:(?:%s)?[0-9]{2,3}[가-힣]%s[0-9]{4}|%s)`,
		strings.Join(quoted, "|"), gap, regexp.QuoteMeta(string(Sentinel)))

	e := &Extractor{mode: config.Mode, pattern: unit}
	var err error
	if e.scan, err = regexp.Compile(unit); err != nil {
		return nil, fmt.Errorf("compile scan pattern: %w", err)
	}
	if e.before, err = regexp.Compile(`(` + unit + `)\(`); err != nil {
		return nil, fmt.Errorf("compile bracket pattern: %w", err)
	}
	if e.inside, err = regexp.Compile(`\((` + unit + `)`); err != nil {
		return nil, fmt.Errorf("compile bracket pattern: %w", err)
	}
	return e, nil
}

// MustNew is New for package-level rule-set tables with constant configuration.
func MustNew(config Config) *Extractor {
	e, err := New(config)
	if err != nil {
		panic(err)
	}
	return e
}

// Mode returns the configured extraction mode.
func (e *Extractor) Mode() Mode {
	return e.mode
}

// Pattern returns the unit-token regular expression.
func (e *Extractor) Pattern() string {
	return e.pattern
}

// Extract returns the identifier tokens for one narration according to the mode.
func (e *Extractor) Extract(narration string) (id1, id2 models.IdentifierToken) {
	switch e.mode {
	case ModeBracket:
		return firstGroup(e.before, narration), firstGroup(e.inside, narration)
	case ModeScan:
		return models.IdentifierToken(e.scan.FindString(narration)), ""
	default:
		return "", ""
	}
}

// Apply fills Identifier1/Identifier2 on a copy of the batch.
func (e *Extractor) Apply(entries []models.LedgerEntry) []models.LedgerEntry {
	out := models.CloneEntries(entries)
	for i := range out {
		out[i].Identifier1, out[i].Identifier2 = e.Extract(out[i].Narration)
	}
	return out
}

func firstGroup(re *regexp.Regexp, s string) models.IdentifierToken {
	m := re.FindStringSubmatch(s)
	if len(m) < 2 {
		return ""
	}
	return models.IdentifierToken(m[1])
}
