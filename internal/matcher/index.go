package matcher

import (
	"sort"

	"sales-ledger-reconciler/internal/models"
)

// IdentifierField names which catalog identifier column a lookup probes.
type IdentifierField int

const (
	NewIdentifier IdentifierField = iota
	OldIdentifier
)

// String returns the field name.
func (f IdentifierField) String() string {
	if f == OldIdentifier {
		return "old"
	}
	return "new"
}

// periodBucket holds one period's records keyed by each identifier field.
// Only the winning record per identifier is kept.
type periodBucket struct {
	byNew map[models.IdentifierToken]*models.CatalogRecord
	byOld map[models.IdentifierToken]*models.CatalogRecord
	size  int
}

// longFormKey is one row of the catalog melted to (period, identifier).
type longFormKey struct {
	period     models.Period
	identifier models.IdentifierToken
}

// CatalogIndex is the temporal index over one catalog snapshot. It is read-only after
// construction and safe for concurrent lookups. A new snapshot needs a new index.
type CatalogIndex struct {
	records  []models.CatalogRecord
	periods  map[models.Period]*periodBucket
	byID     map[string]*models.CatalogRecord
	longForm map[longFormKey]*models.CatalogRecord
}

// NewCatalogIndex builds the temporal index, the catalog-ID lookup and the long-form
// identifier table. Candidate order follows config.TieBreak.
func NewCatalogIndex(records []models.CatalogRecord, config *Config) *CatalogIndex {
	if config == nil {
		config = DefaultConfig()
	}

	ordered := append([]models.CatalogRecord(nil), records...)
	if config.TieBreak == TieBreakCatalogID {
		sort.SliceStable(ordered, func(i, j int) bool {
			return ordered[i].CatalogID < ordered[j].CatalogID
		})
	}

	idx := &CatalogIndex{
		records:  ordered,
		periods:  make(map[models.Period]*periodBucket),
		byID:     make(map[string]*models.CatalogRecord),
		longForm: make(map[longFormKey]*models.CatalogRecord),
	}
	idx.buildIndexes()
	return idx
}

func (idx *CatalogIndex) buildIndexes() {
	for i := range idx.records {
		rec := &idx.records[i]

		if _, seen := idx.byID[rec.CatalogID]; !seen && rec.CatalogID != "" {
			idx.byID[rec.CatalogID] = rec
		}

		bucket, ok := idx.periods[rec.SalePeriod]
		if !ok {
			bucket = &periodBucket{
				byNew: make(map[models.IdentifierToken]*models.CatalogRecord),
				byOld: make(map[models.IdentifierToken]*models.CatalogRecord),
			}
			idx.periods[rec.SalePeriod] = bucket
		}
		bucket.size++
		putFirst(bucket.byNew, rec.NewUnitIdentifier, rec)
		putFirst(bucket.byOld, rec.OldUnitIdentifier, rec)
	}

	// Long form stacks every new identifier ahead of every old one, so a first-wins
	// join resolves collisions the same way the precedence scan does.
	for i := range idx.records {
		rec := &idx.records[i]
		putFirstLong(idx.longForm, longFormKey{rec.SalePeriod, rec.NewUnitIdentifier}, rec)
	}
	for i := range idx.records {
		rec := &idx.records[i]
		putFirstLong(idx.longForm, longFormKey{rec.SalePeriod, rec.OldUnitIdentifier}, rec)
	}
}

func putFirst(m map[models.IdentifierToken]*models.CatalogRecord, id models.IdentifierToken, rec *models.CatalogRecord) {
	if id.IsEmpty() {
		return
	}
	if _, exists := m[id]; !exists {
		m[id] = rec
	}
}

func putFirstLong(m map[longFormKey]*models.CatalogRecord, key longFormKey, rec *models.CatalogRecord) {
	if key.identifier.IsEmpty() {
		return
	}
	if _, exists := m[key]; !exists {
		m[key] = rec
	}
}

// Lookup probes one period's bucket for an identifier in the given field.
func (idx *CatalogIndex) Lookup(period models.Period, field IdentifierField, id models.IdentifierToken) (*models.CatalogRecord, bool) {
	if id.IsEmpty() {
		return nil, false
	}
	bucket, ok := idx.periods[period]
	if !ok {
		return nil, false
	}

	var rec *models.CatalogRecord
	if field == OldIdentifier {
		rec, ok = bucket.byOld[id]
	} else {
		rec, ok = bucket.byNew[id]
	}
	return rec, ok
}

// LookupLongForm joins on (period, identifier) against the melted identifier table.
func (idx *CatalogIndex) LookupLongForm(period models.Period, id models.IdentifierToken) (*models.CatalogRecord, bool) {
	if id.IsEmpty() {
		return nil, false
	}
	rec, ok := idx.longForm[longFormKey{period, id}]
	return rec, ok
}

// Record returns the first catalog record carrying the given catalog ID.
func (idx *CatalogIndex) Record(catalogID string) (*models.CatalogRecord, bool) {
	rec, ok := idx.byID[catalogID]
	return rec, ok
}

// PeriodSize returns the number of catalog records sold in a period.
func (idx *CatalogIndex) PeriodSize(period models.Period) int {
	if bucket, ok := idx.periods[period]; ok {
		return bucket.size
	}
	return 0
}

// Len returns the number of indexed records.
func (idx *CatalogIndex) Len() int {
	return len(idx.records)
}

// Periods returns the indexed periods in ascending order.
func (idx *CatalogIndex) Periods() []models.Period {
	periods := make([]models.Period, 0, len(idx.periods))
	for p := range idx.periods {
		periods = append(periods, p)
	}
	sort.Slice(periods, func(i, j int) bool {
		if periods[i].Year != periods[j].Year {
			return periods[i].Year < periods[j].Year
		}
		return periods[i].Month < periods[j].Month
	})
	return periods
}
