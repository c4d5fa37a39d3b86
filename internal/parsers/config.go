package parsers

import (
	"fmt"
	"strings"

	"sales-ledger-reconciler/internal/models"
	"sales-ledger-reconciler/pkg/errors"
)

// CatalogConfig names the catalog columns.
type CatalogConfig struct {
	IDColumn            string            `mapstructure:"id_column"`
	SaleDateColumn      string            `mapstructure:"sale_date_column"`
	NewIdentifierColumn string            `mapstructure:"new_identifier_column"`
	OldIdentifierColumn string            `mapstructure:"old_identifier_column"`
	ChannelColumn       string            `mapstructure:"channel_column"`
	ColumnAliases       map[string]string `mapstructure:"column_aliases"`
}

// DefaultCatalogConfig returns the column names of the standard sales export.
func DefaultCatalogConfig() *CatalogConfig {
	return &CatalogConfig{
		IDColumn:            "상품ID",
		SaleDateColumn:      "판매일자",
		NewIdentifierColumn: "신차량번호",
		OldIdentifierColumn: "구차량번호",
		ChannelColumn:       "판매처",
	}
}

// Validate checks if the catalog configuration is valid
func (cc *CatalogConfig) Validate() error {
	if strings.TrimSpace(cc.IDColumn) == "" {
		return fmt.Errorf("catalog id column cannot be empty")
	}
	if strings.TrimSpace(cc.SaleDateColumn) == "" {
		return fmt.Errorf("sale date column cannot be empty")
	}
	return nil
}

// GetColumnName returns the actual column name, checking aliases first
func (cc *CatalogConfig) GetColumnName(standardName string) string {
	if alias, exists := cc.ColumnAliases[standardName]; exists {
		return alias
	}

	switch standardName {
	case "id":
		return cc.IDColumn
	case "sale_date":
		return cc.SaleDateColumn
	case "new_identifier":
		return cc.NewIdentifierColumn
	case "old_identifier":
		return cc.OldIdentifierColumn
	case "channel":
		return cc.ChannelColumn
	default:
		return standardName
	}
}

// RequiredColumns lists the columns a catalog must carry. The identifier and
// channel columns are optional; records without them simply never match.
func (cc *CatalogConfig) RequiredColumns() []string {
	return []string{cc.GetColumnName("id"), cc.GetColumnName("sale_date")}
}

// ReadCatalog converts a catalog table into records, deriving each sale period
// from the sale date. An empty sale date leaves the period unset; an unparsable
// one is a parse error.
func ReadCatalog(table *models.Table, config *CatalogConfig) (*models.Catalog, error) {
	if config == nil {
		config = DefaultCatalogConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, errors.ConfigurationError(errors.CodeInvalidConfig, "catalog", err.Error(), err)
	}
	if missing := table.MissingColumns(config.RequiredColumns()...); len(missing) > 0 {
		return nil, errors.SchemaError("catalog", "catalog", missing)
	}

	idCol := table.ColumnIndex(config.GetColumnName("id"))
	dateCol := table.ColumnIndex(config.GetColumnName("sale_date"))
	newCol := table.ColumnIndex(config.GetColumnName("new_identifier"))
	oldCol := table.ColumnIndex(config.GetColumnName("old_identifier"))
	channelCol := table.ColumnIndex(config.GetColumnName("channel"))

	catalog := &models.Catalog{
		Records: make([]models.CatalogRecord, 0, len(table.Rows)),
		Table:   table,
	}
	for r := range table.Rows {
		rec := models.CatalogRecord{
			CatalogID:         table.Cell(r, idCol),
			NewUnitIdentifier: models.IdentifierToken(table.Cell(r, newCol)),
			OldUnitIdentifier: models.IdentifierToken(table.Cell(r, oldCol)),
			Channel:           table.Cell(r, channelCol),
			Row:               r,
		}

		if raw := table.Cell(r, dateCol); raw != "" {
			saleDate, err := ParseDate(raw)
			if err != nil {
				return nil, errors.ParseError(errors.CodeInvalidDate, "catalog", r+1,
					config.GetColumnName("sale_date"), raw, err)
			}
			rec.SaleDate = saleDate
			rec.SalePeriod = models.PeriodOf(saleDate)
		}
		catalog.Records = append(catalog.Records, rec)
	}
	return catalog, nil
}
