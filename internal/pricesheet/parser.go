// Package pricesheet turns uploaded Excel workbooks into price sheet items.
// Sheets come from many suppliers with inconsistent, mostly German headers, so
// the parser detects the header row and infers columns by synonym matching
// instead of requiring a fixed layout.
package pricesheet

import (
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"
	"unicode"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/ai-shubham-mishra/Automated-Invoicing/internal/entity"
)

type Sheet struct {
	Name  string
	Items []entity.PriceSheetItem
}

type Failure struct {
	Sheet string
	Err   error
}

// ParseWorkbook parses every worksheet independently. A broken sheet lands in
// failures and does not stop the rest of the workbook; only an unreadable
// workbook is a hard error.
func ParseWorkbook(r io.Reader) ([]Sheet, []Failure, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	var (
		sheets   []Sheet
		failures []Failure
	)

	for _, name := range f.GetSheetList() {
		rows, err := f.GetRows(name)
		if err != nil {
			failures = append(failures, Failure{Sheet: name, Err: err})
			continue
		}

		items, err := parseSheet(rows)
		if err != nil {
			failures = append(failures, Failure{Sheet: name, Err: err})
			continue
		}

		sheets = append(sheets, Sheet{
			Name:  strings.TrimSpace(name),
			Items: items,
		})
	}

	return sheets, failures, nil
}

func parseSheet(rows [][]string) ([]entity.PriceSheetItem, error) {
	rows = dropEmptyRows(rows)
	if len(rows) < 2 {
		return nil, errors.New("sheet has no data rows")
	}

	headerIdx := detectHeaderRow(rows)
	headers := uniqueHeaders(rows[headerIdx])
	data := rows[headerIdx+1:]

	cols := inferColumns(headers, data)
	if cols.price < 0 {
		return nil, errors.New("required column missing: price")
	}

	var items []entity.PriceSheetItem

	for i, row := range data {
		item, ok := rowToItem(headers, cols, row, i)
		if !ok {
			continue
		}

		items = append(items, item)
	}

	if len(items) == 0 {
		return nil, errors.New("no valid rows found in the sheet after validation")
	}

	return items, nil
}

func rowToItem(headers []string, cols columns, row []string, idx int) (entity.PriceSheetItem, bool) {
	price := parseDecimal(cell(row, cols.price))
	if price == nil {
		return entity.PriceSheetItem{}, false
	}

	name := strings.TrimSpace(cell(row, cols.name))
	sku := strings.TrimSpace(cell(row, cols.sku))

	// synthesize one identifier from the other; an item with neither is unusable
	if sku == "" && name != "" {
		sku = synthesizeSKU(name, idx)
	}

	if name == "" && sku != "" {
		name = sku
	}

	if name == "" && sku == "" {
		return entity.PriceSheetItem{}, false
	}

	unit := canonicalUnit(cell(row, cols.unit))
	if unit == "" {
		unit = "piece"
	}

	packSize, packUnit, factor := parsePackInfo(cell(row, cols.pack))

	original := make(map[string]string)

	for j, header := range headers {
		v := cell(row, j)
		if strings.TrimSpace(v) != "" {
			original[header] = v
		}
	}

	return entity.PriceSheetItem{
		SKU:              sku,
		Name:             name,
		Unit:             unit,
		Price:            *price,
		VAT:              parseDecimal(cell(row, cols.vat)),
		DiscountsRaw:     strings.TrimSpace(cell(row, cols.discounts)),
		Notes:            strings.TrimSpace(cell(row, cols.notes)),
		Category:         strings.TrimSpace(cell(row, cols.category)),
		PackSize:         packSize,
		PackUnit:         packUnit,
		ConversionFactor: factor,
		Original:         original,
	}, true
}

func synthesizeSKU(name string, idx int) string {
	var base strings.Builder

	for _, r := range strings.ToLower(name) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			base.WriteRune(r)
		}

		if base.Len() >= 16 {
			break
		}
	}

	return fmt.Sprintf("AUTO-%s-%d", base.String(), idx+1)
}

func cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}

	return row[idx]
}

func dropEmptyRows(rows [][]string) [][]string {
	kept := make([][]string, 0, len(rows))

	for _, row := range rows {
		empty := true

		for _, v := range row {
			if strings.TrimSpace(v) != "" {
				empty = false
				break
			}
		}

		if !empty {
			kept = append(kept, row)
		}
	}

	return kept
}

// detectHeaderRow scores the first rows: text cells and synonym hits vote for
// a header, numeric cells against it.
func detectHeaderRow(rows [][]string) int {
	const maxScanRows = 10

	maxRows := len(rows)
	if maxRows > maxScanRows {
		maxRows = maxScanRows
	}

	bestIdx := 0
	bestScore := float64(-1 << 30)

	for idx := 0; idx < maxRows; idx++ {
		var textCount, synonymHits, numericLike int

		for _, v := range rows[idx] {
			if hasLetter(v) {
				textCount++

				if _, ok := allSynonyms[normalizeKey(v)]; ok {
					synonymHits++
				}
			} else if parseDecimal(v) != nil {
				numericLike++
			}
		}

		score := float64(textCount) + 2*float64(synonymHits) - 0.5*float64(numericLike)
		if score > bestScore {
			bestScore = score
			bestIdx = idx
		}
	}

	return bestIdx
}

func hasLetter(s string) bool {
	for _, r := range s {
		if unicode.IsLetter(r) {
			return true
		}
	}

	return false
}

func uniqueHeaders(row []string) []string {
	headers := make([]string, 0, len(row))
	used := make(map[string]int)

	for i, v := range row {
		name := strings.TrimSpace(v)
		if name == "" {
			name = fmt.Sprintf("col_%d", i+1)
		}

		base := name
		if count := used[base]; count > 0 {
			name = fmt.Sprintf("%s_%d", base, count+1)
		}

		used[base]++

		headers = append(headers, name)
	}

	return headers
}

type columns struct {
	sku       int
	name      int
	unit      int
	price     int
	vat       int
	discounts int
	notes     int
	category  int
	pack      int
}

func inferColumns(headers []string, data [][]string) columns {
	cols := columns{
		sku:       findBySynonyms(headers, skuSynonyms),
		name:      findBySynonyms(headers, nameSynonyms),
		unit:      findBySynonyms(headers, unitSynonyms),
		price:     findNumericBySynonyms(headers, data, priceSynonyms),
		vat:       findNumericBySynonyms(headers, data, vatSynonyms),
		discounts: findBySynonyms(headers, discountSynonyms),
		notes:     findBySynonyms(headers, notesSynonyms),
		category:  findBySynonyms(headers, categorySynonyms),
		pack:      findBySynonyms(headers, packSynonyms),
	}

	if cols.price < 0 {
		cols.price = guessBestNumericColumn(headers, data)
	}

	return cols
}

func findBySynonyms(headers []string, synonyms map[string]struct{}) int {
	for i, header := range headers {
		if _, ok := synonyms[normalizeKey(header)]; ok {
			return i
		}
	}

	return -1
}

// findNumericBySynonyms prefers a synonym-matched column whose cells are
// mostly numeric; otherwise the first synonym match wins.
func findNumericBySynonyms(headers []string, data [][]string, synonyms map[string]struct{}) int {
	var candidates []int

	for i, header := range headers {
		if _, ok := synonyms[normalizeKey(header)]; ok {
			candidates = append(candidates, i)
		}
	}

	if len(candidates) == 0 {
		return -1
	}

	for _, i := range candidates {
		var numeric int

		for _, row := range data {
			if parseDecimal(cell(row, i)) != nil {
				numeric++
			}
		}

		if len(data) > 0 && float64(numeric)/float64(len(data)) > 0.5 {
			return i
		}
	}

	return candidates[0]
}

func guessBestNumericColumn(headers []string, data [][]string) int {
	bestCol := -1
	bestScore := -1.0

	for i := range headers {
		var numeric, positive int

		for _, row := range data {
			v := parseDecimal(cell(row, i))
			if v == nil {
				continue
			}

			numeric++

			if v.IsPositive() {
				positive++
			}
		}

		score := float64(numeric) + 0.5*float64(positive)
		if score > bestScore {
			bestScore = score
			bestCol = i
		}
	}

	return bestCol
}

var keyPunctuation = strings.NewReplacer(
	"(", " ", ")", " ", "[", " ", "]", " ", "/", " ", "\\", " ",
	".", " ", ",", " ", ":", " ", ";", " ", "-", " ", "_", " ",
)

func normalizeKey(s string) string {
	return strings.Join(strings.Fields(keyPunctuation.Replace(strings.ToLower(strings.TrimSpace(s)))), " ")
}

// parseDecimal accepts German number formatting: a single decimal comma with
// optional dot thousand separators, and a trailing euro sign.
func parseDecimal(value string) *decimal.Decimal {
	s := strings.TrimSpace(value)
	if s == "" {
		return nil
	}

	s = strings.ReplaceAll(s, "€", "")
	s = strings.ReplaceAll(s, " ", "")

	if strings.Count(s, ",") == 1 {
		s = strings.ReplaceAll(s, ".", "")
		s = strings.Replace(s, ",", ".", 1)
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return nil
	}

	return &d
}

func canonicalUnit(value string) string {
	u := strings.ToLower(strings.TrimSpace(value))

	switch u {
	case "":
		return ""
	case "kg", "kilogramm":
		return "kg"
	case "stk", "stück", "stueck", "piece":
		return "piece"
	case "l", "liter":
		return "l"
	default:
		return strings.TrimSpace(value)
	}
}

var (
	packCountRe = regexp.MustCompile(`(\d+)\s*[x×]\s*(\d*[.,]?\d+)\s*(kg|g|l|ml|stk|stück|stueck)?`)
	packSizeRe  = regexp.MustCompile(`(\d*[.,]?\d+)\s*(kg|g|l|ml)`)
)

// parsePackInfo reads values like "6 x 2kg", "12x1l" or "ve 10 kg" into pack
// size, unit and a conversion factor to the base unit.
func parsePackInfo(value string) (*decimal.Decimal, string, *decimal.Decimal) {
	s := strings.ToLower(strings.TrimSpace(value))
	if s == "" {
		return nil, "", nil
	}

	if m := packCountRe.FindStringSubmatch(s); m != nil {
		count := parseDecimal(m[1])
		size := parseDecimal(m[2])

		unit := m[3]
		if unit == "" {
			unit = "piece"
		}

		var factor *decimal.Decimal

		if count != nil && size != nil && isWeightOrVolume(unit) {
			f := count.Mul(*size)
			factor = &f
		}

		return size, unit, factor
	}

	if m := packSizeRe.FindStringSubmatch(s); m != nil {
		size := parseDecimal(m[1])
		return size, m[2], size
	}

	return nil, "", nil
}

func isWeightOrVolume(unit string) bool {
	switch unit {
	case "kg", "g", "l", "ml":
		return true
	default:
		return false
	}
}

var (
	skuSynonyms = newSet(
		"sku", "artikelnummer", "artnr", "artikelnr", "artikel nr", "art nr",
		"artikel", "code", "produktcode", "product code", "item code", "nummer", "nr",
	)
	nameSynonyms = newSet(
		"bezeichnung", "produkt", "artikelbezeichnung", "produktname", "name",
		"warenbezeichnung", "description", "beschreibung", "artikel",
	)
	unitSynonyms = newSet("einheit", "me", "ve", "maßeinheit", "masseinheit", "unit", "uom")
	priceSynonyms = newSet(
		"preis", "listenpreis", "vk", "vk preis", "verkaufspreis", "netto", "netto preis",
		"nettopreis", "preis netto", "brutto", "brutto preis", "bruttopreis", "price",
		"unit price", "einzelpreis",
	)
	vatSynonyms      = newSet("mwst", "ust", "vat", "tax", "steuer")
	discountSynonyms = newSet("rabatt", "rabattstaffel", "staffel", "staffelpreis", "mengenrabatt", "discount")
	notesSynonyms    = newSet("notizen", "hinweise", "notes", "bemerkung", "bemerkungen")
	categorySynonyms = newSet("kategorie", "warengruppe", "category", "gruppe")
	packSynonyms     = newSet("packung", "packungseinheit", "pack", "pack size")

	allSynonyms = merge(
		skuSynonyms, nameSynonyms, unitSynonyms, priceSynonyms,
		vatSynonyms, discountSynonyms, notesSynonyms,
	)
)

func newSet(keys ...string) map[string]struct{} {
	set := make(map[string]struct{}, len(keys))
	for _, k := range keys {
		set[k] = struct{}{}
	}

	return set
}

func merge(sets ...map[string]struct{}) map[string]struct{} {
	merged := make(map[string]struct{})

	for _, set := range sets {
		for k := range set {
			merged[k] = struct{}{}
		}
	}

	return merged
}
