package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/ai-shubham-mishra/Automated-Invoicing/internal/entity"
)

// ReplacePriceSheet overwrites the client's sheet in one transaction: the
// previous sheet and its items are dropped, the new ones inserted. Items
// cascade on the sheet delete.
func (r *Repository) ReplacePriceSheet(ctx context.Context, sheet entity.PriceSheet) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	_, err = tx.Exec(ctx, `DELETE FROM price_sheets WHERE client_name = $1`, sheet.ClientName)
	if err != nil {
		return fmt.Errorf("delete old sheet: %w", err)
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO price_sheets (id, client_name, sheet_name, currency, valid_from, valid_to, metadata, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		sheet.ID,
		sheet.ClientName,
		sheet.SheetName,
		sheet.Currency,
		sheet.ValidFrom,
		sheet.ValidTo,
		sheet.Metadata,
		sheet.CreatedAt,
		sheet.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert sheet: %w", err)
	}

	for _, item := range sheet.Items {
		var original any
		if len(item.Original) > 0 {
			original = item.Original
		}

		_, err = tx.Exec(ctx, `
			INSERT INTO price_sheet_items (sheet_id, sku, name, unit, price, vat, discounts_raw, notes, category, pack_size, pack_unit, conversion_factor, original)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
			sheet.ID,
			item.SKU,
			item.Name,
			item.Unit,
			item.Price,
			item.VAT,
			item.DiscountsRaw,
			item.Notes,
			item.Category,
			item.PackSize,
			item.PackUnit,
			item.ConversionFactor,
			original,
		)
		if err != nil {
			return fmt.Errorf("insert item %q: %w", item.SKU, err)
		}
	}

	err = tx.Commit(ctx)
	if err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}

	return nil
}

func (r *Repository) PriceSheetByClientName(ctx context.Context, clientName string) (entity.PriceSheet, error) {
	query := `
		SELECT id, client_name, sheet_name, currency, valid_from, valid_to, metadata, created_at, updated_at
		FROM price_sheets
		WHERE client_name = $1`

	var (
		sheet    entity.PriceSheet
		metadata []byte
	)

	err := r.db.QueryRow(ctx, query, clientName).Scan(
		&sheet.ID,
		&sheet.ClientName,
		&sheet.SheetName,
		&sheet.Currency,
		&sheet.ValidFrom,
		&sheet.ValidTo,
		&metadata,
		&sheet.CreatedAt,
		&sheet.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return entity.PriceSheet{}, fmt.Errorf("%w: price sheet for client %q", entity.ErrNotFound, clientName)
		}

		return entity.PriceSheet{}, err
	}

	if len(metadata) > 0 {
		err = json.Unmarshal(metadata, &sheet.Metadata)
		if err != nil {
			return entity.PriceSheet{}, fmt.Errorf("unmarshal sheet metadata: %w", err)
		}
	}

	sheet.Items, err = r.priceSheetItems(ctx, sheet)
	if err != nil {
		return entity.PriceSheet{}, err
	}

	return sheet, nil
}

func (r *Repository) priceSheetItems(ctx context.Context, sheet entity.PriceSheet) ([]entity.PriceSheetItem, error) {
	query := `
		SELECT sku, name, unit, price, vat, discounts_raw, notes, category, pack_size, pack_unit, conversion_factor, original
		FROM price_sheet_items
		WHERE sheet_id = $1
		ORDER BY id ASC`

	rows, err := r.db.Query(ctx, query, sheet.ID)
	if err != nil {
		return nil, fmt.Errorf("select sheet items: %w", err)
	}
	defer rows.Close()

	var items []entity.PriceSheetItem

	for rows.Next() {
		var (
			item     entity.PriceSheetItem
			original []byte
		)

		err = rows.Scan(
			&item.SKU,
			&item.Name,
			&item.Unit,
			&item.Price,
			&item.VAT,
			&item.DiscountsRaw,
			&item.Notes,
			&item.Category,
			&item.PackSize,
			&item.PackUnit,
			&item.ConversionFactor,
			&original,
		)
		if err != nil {
			return nil, fmt.Errorf("scan sheet item: %w", err)
		}

		if len(original) > 0 {
			err = json.Unmarshal(original, &item.Original)
			if err != nil {
				return nil, fmt.Errorf("unmarshal item original: %w", err)
			}
		}

		items = append(items, item)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return items, nil
}
