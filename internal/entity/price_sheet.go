package entity

import (
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/shopspring/decimal"
)

type PriceSheet struct {
	ID         uuid.UUID
	ClientName string
	SheetName  string
	Currency   string
	ValidFrom  string
	ValidTo    string
	Metadata   SheetMetadata
	CreatedAt  time.Time
	UpdatedAt  time.Time
	Items      []PriceSheetItem
}

type SheetMetadata struct {
	SourceFile string    `json:"source_file"`
	ImportedAt time.Time `json:"imported_at"`
	SheetName  string    `json:"sheet_name"`
}

type PriceSheetItem struct {
	SKU              string
	Name             string
	Unit             string
	Price            decimal.Decimal
	VAT              *decimal.Decimal
	DiscountsRaw     string
	Notes            string
	Category         string
	PackSize         *decimal.Decimal
	PackUnit         string
	ConversionFactor *decimal.Decimal
	// Original preserves every non-empty cell of the source row, keyed by the
	// original column header.
	Original map[string]string
}

type PricingSchema struct {
	ClientName string           `json:"client_name"`
	SheetName  string           `json:"sheet_name"`
	Currency   string           `json:"currency"`
	ValidFrom  string           `json:"valid_from"`
	ValidTo    string           `json:"valid_to"`
	Items      []map[string]any `json:"items"`
	Metadata   SheetMetadata    `json:"metadata"`
}

// PricingSchema flattens the sheet into the JSON document the webhook expects.
// Original sheet columns win; normalized fields are a fallback for items that
// carry no originals, and enrichments are merged in without overwriting.
func (s PriceSheet) PricingSchema() PricingSchema {
	items := make([]map[string]any, 0, len(s.Items))

	for _, item := range s.Items {
		var obj map[string]any

		if len(item.Original) > 0 {
			obj = make(map[string]any, len(item.Original))
			for k, v := range item.Original {
				obj[k] = v
			}
		} else {
			obj = map[string]any{
				"sku":   item.SKU,
				"name":  item.Name,
				"unit":  item.Unit,
				"price": item.Price,
			}
			if item.VAT != nil {
				obj["vat"] = *item.VAT
			}
			if item.DiscountsRaw != "" {
				obj["discounts"] = map[string]any{"raw": item.DiscountsRaw}
			}
			if item.Notes != "" {
				obj["notes"] = item.Notes
			}
		}

		mergeMissing(obj, "category", item.Category)
		if item.PackSize != nil {
			mergeMissing(obj, "pack_size", *item.PackSize)
		}
		mergeMissing(obj, "pack_unit", item.PackUnit)
		if item.ConversionFactor != nil {
			mergeMissing(obj, "conversion_factor", *item.ConversionFactor)
		}

		items = append(items, obj)
	}

	return PricingSchema{
		ClientName: s.ClientName,
		SheetName:  s.SheetName,
		Currency:   s.Currency,
		ValidFrom:  s.ValidFrom,
		ValidTo:    s.ValidTo,
		Items:      items,
		Metadata:   s.Metadata,
	}
}

func mergeMissing(obj map[string]any, key string, value any) {
	if s, ok := value.(string); ok && s == "" {
		return
	}

	if _, exists := obj[key]; exists {
		return
	}

	obj[key] = value
}

type ImportedSheet struct {
	ClientName string `json:"clientName"`
	Items      int    `json:"items"`
}

type FailedSheet struct {
	SheetName string `json:"sheetName"`
	Reason    string `json:"reason"`
}

type ImportSummary struct {
	Imported []ImportedSheet `json:"imported"`
	Failed   []FailedSheet   `json:"failed"`
}
