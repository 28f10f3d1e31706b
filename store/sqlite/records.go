package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/warp/inventory-sync/generic"
	"github.com/warp/inventory-sync/inventory"
)

// =============================================================================
// QUERY HELPERS
// =============================================================================

type scanner interface {
	Scan(dest ...any) error
}

// queryAll runs q and scans every row. A nil record from scan drops the row.
func queryAll[E any](ctx context.Context, s *Store, q string, scan func(scanner) (*E, error), args ...any) ([]*E, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*E
	for rows.Next() {
		rec, err := scan(rows)
		if err != nil {
			return nil, err
		}
		if rec != nil {
			out = append(out, rec)
		}
	}
	return out, rows.Err()
}

func toJSON(v any) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func fromJSON(s string, v any) error {
	if s == "" {
		return nil
	}
	return json.Unmarshal([]byte(s), v)
}

// =============================================================================
// INVENTORY ITEMS & PRICE RULES & WEB MENUS (no parents)
// =============================================================================

const inventoryItemSelect = `
	SELECT code, description_line_1, description_line_2, description_line_3,
		uom, brand, apn, item_group, created, item_type, condition, replacement_cost
	FROM inventory_items`

func scanInventoryItem(r scanner) (*inventory.InventoryItem, error) {
	var it inventory.InventoryItem
	var created sql.NullString
	if err := r.Scan(
		&it.Code, &it.DescriptionLine1, &it.DescriptionLine2, &it.DescriptionLine3,
		&it.UOM, &it.Brand, &it.APN, &it.Group, &created, &it.ItemType, &it.Condition,
		&it.ReplacementCost,
	); err != nil {
		return nil, err
	}
	it.Created = parseTime(created)
	return &it, nil
}

func (s *Store) loadInventoryItems(ctx context.Context) ([]*inventory.InventoryItem, error) {
	return queryAll(ctx, s, inventoryItemSelect+` ORDER BY rowid`, scanInventoryItem)
}

func saveInventoryItem(ctx context.Context, tx *sql.Tx, it *inventory.InventoryItem) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO inventory_items (code, description_line_1, description_line_2, description_line_3,
			uom, brand, apn, item_group, created, item_type, condition, replacement_cost)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(code) DO UPDATE SET
			description_line_1 = excluded.description_line_1,
			description_line_2 = excluded.description_line_2,
			description_line_3 = excluded.description_line_3,
			uom = excluded.uom,
			brand = excluded.brand,
			apn = excluded.apn,
			item_group = excluded.item_group,
			created = excluded.created,
			item_type = excluded.item_type,
			condition = excluded.condition,
			replacement_cost = excluded.replacement_cost
	`,
		it.Code, it.DescriptionLine1, it.DescriptionLine2, it.DescriptionLine3,
		it.UOM, it.Brand, it.APN, it.Group, formatTime(it.Created),
		string(it.ItemType), string(it.Condition), it.ReplacementCost.String(),
	)
	return err
}

func (s *Store) loadPriceRules(ctx context.Context) ([]*inventory.PriceRule, error) {
	query := `
		SELECT code, description, price_bases_json, price_factors_json,
			rrp_excl_basis, rrp_excl_factor, rrp_incl_basis, rrp_incl_factor
		FROM price_rules
		ORDER BY rowid
	`
	return queryAll(ctx, s, query, func(r scanner) (*inventory.PriceRule, error) {
		var pr inventory.PriceRule
		var bases, factors string
		if err := r.Scan(
			&pr.Code, &pr.Description, &bases, &factors,
			&pr.RRPExclBasis, &pr.RRPExclFactor, &pr.RRPInclBasis, &pr.RRPInclFactor,
		); err != nil {
			return nil, err
		}
		if err := fromJSON(bases, &pr.PriceBases); err != nil {
			return nil, fmt.Errorf("price rule %s bases: %w", pr.Code, err)
		}
		if err := fromJSON(factors, &pr.PriceFactors); err != nil {
			return nil, fmt.Errorf("price rule %s factors: %w", pr.Code, err)
		}
		return &pr, nil
	})
}

func savePriceRule(ctx context.Context, tx *sql.Tx, pr *inventory.PriceRule) error {
	bases, err := toJSON(pr.PriceBases)
	if err != nil {
		return err
	}
	factors, err := toJSON(pr.PriceFactors)
	if err != nil {
		return err
	}
	_, err = tx.ExecContext(ctx, `
		INSERT INTO price_rules (code, description, price_bases_json, price_factors_json,
			rrp_excl_basis, rrp_excl_factor, rrp_incl_basis, rrp_incl_factor)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(code) DO UPDATE SET
			description = excluded.description,
			price_bases_json = excluded.price_bases_json,
			price_factors_json = excluded.price_factors_json,
			rrp_excl_basis = excluded.rrp_excl_basis,
			rrp_excl_factor = excluded.rrp_excl_factor,
			rrp_incl_basis = excluded.rrp_incl_basis,
			rrp_incl_factor = excluded.rrp_incl_factor
	`,
		pr.Code, pr.Description, bases, factors,
		string(pr.RRPExclBasis), pr.RRPExclFactor.String(),
		string(pr.RRPInclBasis), pr.RRPInclFactor.String(),
	)
	return err
}

func (s *Store) loadWebMenuItems(ctx context.Context) ([]*inventory.WebMenuItem, error) {
	query := `SELECT parent_name, child_name FROM web_menu_items ORDER BY rowid`
	return queryAll(ctx, s, query, func(r scanner) (*inventory.WebMenuItem, error) {
		var m inventory.WebMenuItem
		if err := r.Scan(&m.ParentName, &m.ChildName); err != nil {
			return nil, err
		}
		return &m, nil
	})
}

func saveWebMenuItem(ctx context.Context, tx *sql.Tx, m *inventory.WebMenuItem) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO web_menu_items (parent_name, child_name) VALUES (?, ?)
		ON CONFLICT(parent_name, child_name) DO NOTHING
	`, m.ParentName, m.ChildName)
	return err
}

// =============================================================================
// ITEM-DEPENDENT KINDS
// =============================================================================

func (s *Store) loadPriceRegionItems(ctx context.Context, items generic.Index[inventory.InventoryItem], rules generic.Index[inventory.PriceRule]) ([]*inventory.PriceRegionItem, error) {
	query := `
		SELECT region, item_code, rule_code, tax_code, quantities_json, prices_json,
			rrp_excl_tax, rrp_incl_tax
		FROM price_region_items
		ORDER BY rowid
	`
	return queryAll(ctx, s, query, func(r scanner) (*inventory.PriceRegionItem, error) {
		var pr inventory.PriceRegionItem
		var itemCode, quantities, prices string
		var ruleCode sql.NullString
		if err := r.Scan(
			&pr.Code, &itemCode, &ruleCode, &pr.TaxCode, &quantities, &prices,
			&pr.RRPExclTax, &pr.RRPInclTax,
		); err != nil {
			return nil, err
		}
		item, ok := items.Lookup(generic.Key(itemCode))
		if !ok {
			return nil, nil
		}
		pr.InventoryItem = item
		if ruleCode.Valid {
			pr.PriceRule, _ = rules.Lookup(generic.Key(ruleCode.String))
		}
		if err := fromJSON(quantities, &pr.Quantities); err != nil {
			return nil, fmt.Errorf("price region item %s/%s quantities: %w", pr.Code, itemCode, err)
		}
		if err := fromJSON(prices, &pr.Prices); err != nil {
			return nil, fmt.Errorf("price region item %s/%s prices: %w", pr.Code, itemCode, err)
		}
		return &pr, nil
	})
}

func savePriceRegionItem(ctx context.Context, tx *sql.Tx, pr *inventory.PriceRegionItem) error {
	quantities, err := toJSON(pr.Quantities)
	if err != nil {
		return err
	}
	prices, err := toJSON(pr.Prices)
	if err != nil {
		return err
	}
	_, err = tx.ExecContext(ctx, `
		INSERT INTO price_region_items (region, item_code, rule_code, tax_code,
			quantities_json, prices_json, rrp_excl_tax, rrp_incl_tax)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(region, item_code) DO UPDATE SET
			rule_code = excluded.rule_code,
			tax_code = excluded.tax_code,
			quantities_json = excluded.quantities_json,
			prices_json = excluded.prices_json,
			rrp_excl_tax = excluded.rrp_excl_tax,
			rrp_incl_tax = excluded.rrp_incl_tax
	`,
		pr.Code, pr.InventoryItem.Code, nullString(pr.PriceRuleCode()), string(pr.TaxCode),
		quantities, prices, pr.RRPExclTax.String(), pr.RRPInclTax.String(),
	)
	return err
}

func (s *Store) loadContractItems(ctx context.Context, items generic.Index[inventory.InventoryItem]) ([]*inventory.ContractItem, error) {
	query := `SELECT contract, item_code, prices_json FROM contract_items ORDER BY rowid`
	return queryAll(ctx, s, query, func(r scanner) (*inventory.ContractItem, error) {
		var ci inventory.ContractItem
		var itemCode, prices string
		if err := r.Scan(&ci.Code, &itemCode, &prices); err != nil {
			return nil, err
		}
		item, ok := items.Lookup(generic.Key(itemCode))
		if !ok {
			return nil, nil
		}
		ci.InventoryItem = item
		if err := fromJSON(prices, &ci.Prices); err != nil {
			return nil, fmt.Errorf("contract item %s/%s prices: %w", ci.Code, itemCode, err)
		}
		return &ci, nil
	})
}

func saveContractItem(ctx context.Context, tx *sql.Tx, ci *inventory.ContractItem) error {
	prices, err := toJSON(ci.Prices)
	if err != nil {
		return err
	}
	_, err = tx.ExecContext(ctx, `
		INSERT INTO contract_items (contract, item_code, prices_json) VALUES (?, ?, ?)
		ON CONFLICT(contract, item_code) DO UPDATE SET prices_json = excluded.prices_json
	`, ci.Code, ci.InventoryItem.Code, prices)
	return err
}

func (s *Store) loadWarehouseStockItems(ctx context.Context, items generic.Index[inventory.InventoryItem]) ([]*inventory.WarehouseStockItem, error) {
	query := `
		SELECT warehouse, item_code, minimum, maximum, on_hand, bin_location, bulk_location
		FROM warehouse_stock_items
		ORDER BY rowid
	`
	return queryAll(ctx, s, query, func(r scanner) (*inventory.WarehouseStockItem, error) {
		var ws inventory.WarehouseStockItem
		var itemCode string
		if err := r.Scan(
			&ws.Code, &itemCode, &ws.Minimum, &ws.Maximum, &ws.OnHand,
			&ws.BinLocation, &ws.BulkLocation,
		); err != nil {
			return nil, err
		}
		item, ok := items.Lookup(generic.Key(itemCode))
		if !ok {
			return nil, nil
		}
		ws.InventoryItem = item
		return &ws, nil
	})
}

func saveWarehouseStockItem(ctx context.Context, tx *sql.Tx, ws *inventory.WarehouseStockItem) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO warehouse_stock_items (warehouse, item_code, minimum, maximum, on_hand,
			bin_location, bulk_location)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(warehouse, item_code) DO UPDATE SET
			minimum = excluded.minimum,
			maximum = excluded.maximum,
			on_hand = excluded.on_hand,
			bin_location = excluded.bin_location,
			bulk_location = excluded.bulk_location
	`,
		ws.Code, ws.InventoryItem.Code, ws.Minimum.String(), ws.Maximum.String(),
		ws.OnHand.String(), ws.BinLocation, ws.BulkLocation,
	)
	return err
}

func (s *Store) loadSupplierItems(ctx context.Context, items generic.Index[inventory.InventoryItem]) ([]*inventory.SupplierItem, error) {
	query := `
		SELECT supplier, item_code, supplier_item_code, priority, uom, conv_factor,
			pack_quantity, moq, buy_price
		FROM supplier_items
		ORDER BY rowid
	`
	return queryAll(ctx, s, query, func(r scanner) (*inventory.SupplierItem, error) {
		var si inventory.SupplierItem
		var itemCode string
		if err := r.Scan(
			&si.Code, &itemCode, &si.ItemCode, &si.Priority, &si.UOM, &si.ConvFactor,
			&si.PackQuantity, &si.MOQ, &si.BuyPrice,
		); err != nil {
			return nil, err
		}
		item, ok := items.Lookup(generic.Key(itemCode))
		if !ok {
			return nil, nil
		}
		si.InventoryItem = item
		return &si, nil
	})
}

func saveSupplierItem(ctx context.Context, tx *sql.Tx, si *inventory.SupplierItem) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO supplier_items (supplier, item_code, supplier_item_code, priority, uom,
			conv_factor, pack_quantity, moq, buy_price)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(supplier, item_code) DO UPDATE SET
			supplier_item_code = excluded.supplier_item_code,
			priority = excluded.priority,
			uom = excluded.uom,
			conv_factor = excluded.conv_factor,
			pack_quantity = excluded.pack_quantity,
			moq = excluded.moq,
			buy_price = excluded.buy_price
	`,
		si.Code, si.InventoryItem.Code, si.ItemCode, si.Priority, si.UOM,
		si.ConvFactor.String(), si.PackQuantity.String(), si.MOQ.String(), si.BuyPrice.String(),
	)
	return err
}

func (s *Store) loadGTINItems(ctx context.Context, items generic.Index[inventory.InventoryItem]) ([]*inventory.GTINItem, error) {
	query := `SELECT gtin, item_code, uom, conv_factor FROM gtin_items ORDER BY rowid`
	return queryAll(ctx, s, query, func(r scanner) (*inventory.GTINItem, error) {
		var g inventory.GTINItem
		var itemCode string
		if err := r.Scan(&g.Code, &itemCode, &g.UOM, &g.ConvFactor); err != nil {
			return nil, err
		}
		item, ok := items.Lookup(generic.Key(itemCode))
		if !ok {
			return nil, nil
		}
		g.InventoryItem = item
		return &g, nil
	})
}

func saveGTINItem(ctx context.Context, tx *sql.Tx, g *inventory.GTINItem) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO gtin_items (gtin, item_code, uom, conv_factor) VALUES (?, ?, ?, ?)
		ON CONFLICT(gtin, item_code) DO UPDATE SET
			uom = excluded.uom,
			conv_factor = excluded.conv_factor
	`, g.Code, g.InventoryItem.Code, g.UOM, g.ConvFactor.String())
	return err
}

func (s *Store) loadInventoryWebDataItems(ctx context.Context, items generic.Index[inventory.InventoryItem], menus generic.Index[inventory.WebMenuItem]) ([]*inventory.InventoryWebDataItem, error) {
	query := `
		SELECT item_code, menu_parent, menu_child, description
		FROM inventory_web_data_items
		ORDER BY rowid
	`
	return queryAll(ctx, s, query, func(r scanner) (*inventory.InventoryWebDataItem, error) {
		var wd inventory.InventoryWebDataItem
		var itemCode string
		var parent, child sql.NullString
		if err := r.Scan(&itemCode, &parent, &child, &wd.Description); err != nil {
			return nil, err
		}
		item, ok := items.Lookup(generic.Key(itemCode))
		if !ok {
			return nil, nil
		}
		wd.InventoryItem = item
		if parent.Valid {
			name := parent.String + inventory.WebMenuSeparator + child.String
			wd.WebMenuItem, _ = menus.Lookup(generic.Key(name))
		}
		return &wd, nil
	})
}

func saveInventoryWebDataItem(ctx context.Context, tx *sql.Tx, wd *inventory.InventoryWebDataItem) error {
	var parent, child sql.NullString
	if wd.WebMenuItem != nil {
		parent = sql.NullString{String: wd.WebMenuItem.ParentName, Valid: true}
		child = sql.NullString{String: wd.WebMenuItem.ChildName, Valid: true}
	}
	_, err := tx.ExecContext(ctx, `
		INSERT INTO inventory_web_data_items (item_code, menu_parent, menu_child, description)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(item_code) DO UPDATE SET
			menu_parent = excluded.menu_parent,
			menu_child = excluded.menu_child,
			description = excluded.description
	`, wd.InventoryItem.Code, parent, child, wd.Description)
	return err
}
