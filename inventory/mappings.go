package inventory

import (
	"context"
	"fmt"

	"github.com/warp/inventory-sync/generic"
)

// manualMenuName marks a price rule whose web menu is maintained by hand.
const manualMenuName = "man"

// WebMenuMapping assigns the items of one price rule to a web menu.
type WebMenuMapping struct {
	RuleCode string

	// MenuItem is nil for manual mappings and for menu names that do not
	// exist in the store.
	MenuItem *WebMenuItem

	// Manual is set when the menu name is blank or "man".
	Manual bool
}

// ImportWebMenuItemMappings reads rule code → menu name rows and resolves
// each name against the stored web menu items. A later row for the same
// rule code replaces the earlier one.
func (imp *Importer) ImportWebMenuItemMappings(ctx context.Context, src generic.RowSource) (map[string]WebMenuMapping, error) {
	menus, err := imp.Store.WebMenuItems().All(ctx)
	if err != nil {
		return nil, fmt.Errorf("load WebMenuItems: %w", err)
	}
	idx := generic.BuildIndex(menus, WebMenuItemKey)

	mappings := make(map[string]WebMenuMapping)
	err = src.Each(ctx, func(row generic.Row) error {
		m := WebMenuMapping{RuleCode: row.Get("rule_code")}
		name := row.Get("menu_name")
		if name == "" || name == manualMenuName {
			m.Manual = true
		} else if menu, ok := idx.Lookup(generic.Key(name)); ok {
			m.MenuItem = menu
		}
		mappings[m.RuleCode] = m
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("read web menu mappings: %w", err)
	}

	imp.Log.WithField("mappings", len(mappings)).Infof("Import WebMenuItem mappings: %d inserted", len(mappings))
	return mappings, nil
}

// ImportMissingImagesReport returns the stored items listed in the report,
// in report order. Unknown codes are ignored.
func (imp *Importer) ImportMissingImagesReport(ctx context.Context, src generic.RowSource) ([]*InventoryItem, error) {
	items, err := imp.Store.InventoryItems().All(ctx)
	if err != nil {
		return nil, fmt.Errorf("load InventoryItems: %w", err)
	}
	idx := generic.BuildIndex(items, InventoryItemKey)

	var missing []*InventoryItem
	err = src.Each(ctx, func(row generic.Row) error {
		if item, ok := idx.Lookup(generic.Key(row.Get("item_code"))); ok {
			missing = append(missing, item)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("read missing images report: %w", err)
	}

	imp.Log.WithField("items", len(missing)).Infof("Import missing images list: %d loaded", len(missing))
	return missing, nil
}
