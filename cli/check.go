package cli

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/warp/inventory-sync/datagrid"
	"github.com/warp/inventory-sync/inventory"
)

// Check commands read a file against the reconciled records and print what
// they find. Nothing is written to the database.
func newCheckCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Inspect auxiliary files against the reconciled records",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "missing-images",
		Short: "List stored items named in the missing images report",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			path, err := a.cfg.ImportPath(inventory.PathMissingImagesReport)
			if err != nil {
				return err
			}
			items, err := a.importer().ImportMissingImagesReport(cmd.Context(), datagrid.New(path))
			if err != nil {
				return err
			}
			for _, item := range items {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\n", item.Code, item.Brand, item.Description())
			}
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "menu-mappings",
		Short: "Resolve price rule to web menu mappings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			path, err := a.cfg.ImportPath(inventory.PathWebMenuMappings)
			if err != nil {
				return err
			}
			mappings, err := a.importer().ImportWebMenuItemMappings(cmd.Context(), datagrid.New(path))
			if err != nil {
				return err
			}
			codes := make([]string, 0, len(mappings))
			for code := range mappings {
				codes = append(codes, code)
			}
			sort.Strings(codes)
			for _, code := range codes {
				m := mappings[code]
				switch {
				case m.Manual:
					fmt.Fprintf(cmd.OutOrStdout(), "%s\tmanual\n", code)
				case m.MenuItem == nil:
					fmt.Fprintf(cmd.OutOrStdout(), "%s\tunknown menu\n", code)
				default:
					fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", code, m.MenuItem.Name())
				}
			}
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "supplier-pricelist",
		Short: "Read the legacy supplier pricelist",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			path, err := a.cfg.ImportPath(inventory.PathSupplierPricelist)
			if err != nil {
				return err
			}
			items, result, err := a.importer().ImportSupplierPricelist(cmd.Context(), datagrid.NewSupplierPricelist(path))
			if err != nil {
				return err
			}
			for _, item := range items {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\t%s\t%s\n",
					item.SupplierCode, item.ItemCode, item.SupplierItemCode, item.SupplierUOM, item.SupplierPrice.StringFixed(2))
			}
			fmt.Fprintln(cmd.OutOrStdout(), result.String())
			return nil
		},
	})

	return cmd
}
