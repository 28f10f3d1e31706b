package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/warp/inventory-sync/export"
	"github.com/warp/inventory-sync/pricing"
	"github.com/warp/inventory-sync/store/sqlite"
)

// exportFunc writes one export from the reconciled records.
type exportFunc func(ctx context.Context, sess *sqlite.Session, w io.Writer) error

func newExportCommand(a *app) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write files from the reconciled records",
	}
	cmd.PersistentFlags().StringVarP(&output, "output", "o", "", "Write here instead of the configured export path")

	add := func(use, short string, path func() string, fn exportFunc) {
		cmd.AddCommand(&cobra.Command{
			Use:   use,
			Short: short,
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				dest := output
				if dest == "" {
					dest = path()
				}
				if err := writeFile(dest, func(w io.Writer) error {
					return fn(cmd.Context(), a.store.NewSession(), w)
				}); err != nil {
					return fmt.Errorf("export %s: %w", use, err)
				}
				a.log.WithField("path", dest).Info("export written")
				fmt.Fprintln(cmd.OutOrStdout(), dest)
				return nil
			},
		})
	}

	add("pricelist", "ERP pricelist (CSV)",
		func() string { return a.cfg.ExportPaths.Pricelist },
		func(ctx context.Context, sess *sqlite.Session, w io.Writer) error {
			items, err := sess.PriceRegionItems().All(ctx)
			if err != nil {
				return err
			}
			return export.WritePricelist(w, items, a.now())
		})

	add("price-changes", "Price changes since the last snapshot (XLSX)",
		func() string { return a.cfg.ExportPaths.PriceChangesReport },
		func(ctx context.Context, sess *sqlite.Session, w io.Writer) error {
			was, err := a.store.LatestSnapshots(ctx)
			if err != nil {
				return err
			}
			now, err := sess.PriceRegionItems().All(ctx)
			if err != nil {
				return err
			}
			changes := pricing.Changes(was, now)
			a.log.WithField("changes", len(changes)).Info("price changes found")
			return export.WritePriceChangesReport(w, changes)
		})

	add("product-price-task", "Web shop product price update task (TSV)",
		func() string { return a.cfg.ExportPaths.ProductPriceTask },
		func(ctx context.Context, sess *sqlite.Session, w io.Writer) error {
			items, err := sess.PriceRegionItems().All(ctx)
			if err != nil {
				return err
			}
			return export.WriteProductPriceTask(w, items)
		})

	add("contract-item-task", "Web shop contract price update task (TSV)",
		func() string { return a.cfg.ExportPaths.ContractItemTask },
		func(ctx context.Context, sess *sqlite.Session, w io.Writer) error {
			items, err := sess.ContractItems().All(ctx)
			if err != nil {
				return err
			}
			return export.WriteContractItemTask(w, items)
		})

	add("tickets", "Item codes needing shelf tickets",
		func() string { return a.cfg.ExportPaths.TicketsList },
		func(ctx context.Context, sess *sqlite.Session, w io.Writer) error {
			items, err := sess.WarehouseStockItems().All(ctx)
			if err != nil {
				return err
			}
			return export.WriteTicketsList(w, items)
		})

	return cmd
}

// writeFile writes through a temporary file in the same directory and
// renames it into place. A failed export leaves the previous file untouched.
func writeFile(path string, fn func(io.Writer) error) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if err := fn(tmp); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
