package cli

import (
	"context"
	"fmt"
	"slices"

	"github.com/spf13/cobra"

	"github.com/warp/inventory-sync/datagrid"
	"github.com/warp/inventory-sync/generic"
	"github.com/warp/inventory-sync/pricing"
)

// priceModel is the import target whose records are snapshotted.
const priceModel = "PriceRegionItem"

func newImportCommand(a *app) *cobra.Command {
	var (
		models     []string
		noSnapshot bool
	)

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import ERP datagrids into the database",
		Long: `Import reads each configured datagrid and reconciles it into the
database, parents before children. Each model commits on its own; the
first failure stops the remaining models.

Before prices are imported the current prices are saved as a snapshot,
so "pxi export price-changes" can report what the import moved.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			if !noSnapshot && (len(models) == 0 || slices.Contains(models, priceModel)) {
				if err := a.snapshotPrices(ctx); err != nil {
					return err
				}
			}

			results, err := a.importer().ImportData(ctx, a.openDatagrid, models...)
			for _, r := range results {
				fmt.Fprintln(cmd.OutOrStdout(), r.String())
			}
			return err
		},
	}

	cmd.Flags().StringSliceVar(&models, "model", nil, "Import only these models (repeatable)")
	cmd.Flags().BoolVar(&noSnapshot, "no-snapshot", false, "Keep the previous price snapshot")
	return cmd
}

func (a *app) openDatagrid(pathKey string) (generic.RowSource, error) {
	path, err := a.cfg.ImportPath(pathKey)
	if err != nil {
		return nil, err
	}
	return datagrid.New(path), nil
}

func (a *app) snapshotPrices(ctx context.Context) error {
	items, err := a.store.NewSession().PriceRegionItems().All(ctx)
	if err != nil {
		return fmt.Errorf("snapshot prices: %w", err)
	}
	set := pricing.TakeSnapshots(items, a.now())
	if err := a.store.SaveSnapshots(ctx, set); err != nil {
		return fmt.Errorf("snapshot prices: %w", err)
	}
	a.log.WithField("items", len(set.Prices)).Info("price snapshot saved")
	return nil
}
