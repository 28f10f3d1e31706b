// =============================================================================
// PXI - Command Line Interface
// =============================================================================
//
// pxi reconciles ERP datagrid extracts into the local pricing database and
// produces the files the ERP and web shop load back in.
//
//	pxi import [--model InventoryItem ...] [--no-snapshot]
//	pxi export pricelist|price-changes|product-price-task|contract-item-task|tickets
//	pxi check missing-images|menu-mappings|supplier-pricelist
//	pxi serve
//	pxi version
//
// Every command except version loads the configuration, builds the logger
// and opens the database before it runs.
//
// =============================================================================

package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/warp/inventory-sync/config"
	"github.com/warp/inventory-sync/inventory"
	"github.com/warp/inventory-sync/store/sqlite"
)

// app carries what every command needs once the root pre-run has finished.
type app struct {
	cfgFile string
	verbose bool

	cfg   *config.Config
	log   *logrus.Logger
	store *sqlite.Store
	now   func() time.Time
}

// NewRootCommand builds the pxi command tree.
func NewRootCommand() *cobra.Command {
	a := &app{now: time.Now}

	root := &cobra.Command{
		Use:   "pxi",
		Short: "Reconcile ERP extracts and export price changes",
		Long: `pxi imports ERP datagrid extracts into a local SQLite database, keeping
one record per natural key, and exports pricelists, price change reports and
update tasks from the reconciled records.

Example Usage:
  pxi import                               # Import every file, parents first
  pxi import --model PriceRegionItem       # Import one kind
  pxi export price-changes                 # Write the price changes workbook
  pxi serve                                # Start the read-only HTTP API`,
		SilenceUsage:       true,
		PersistentPreRunE:  a.setup,
		PersistentPostRunE: a.teardown,
	}

	root.PersistentFlags().StringVar(&a.cfgFile, "config", "", "Path to the configuration file (defaults only when empty)")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "Log at debug level")

	root.AddCommand(
		newImportCommand(a),
		newExportCommand(a),
		newCheckCommand(a),
		newServeCommand(a),
		newVersionCommand(),
	)
	return root
}

// Execute runs the command tree and exits non-zero on failure.
func Execute() {
	if err := NewRootCommand().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func (a *app) setup(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(a.cfgFile)
	if err != nil {
		return err
	}
	if a.verbose {
		cfg.LogLevel = logrus.DebugLevel.String()
	}
	log, err := config.NewLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	log.SetOutput(cmd.ErrOrStderr())

	store, err := sqlite.New(cfg.Database)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	a.cfg, a.log, a.store = cfg, log, store
	return nil
}

func (a *app) teardown(*cobra.Command, []string) error {
	if a.store == nil {
		return nil
	}
	return a.store.Close()
}

// importer returns an importer over a fresh session that records its runs.
func (a *app) importer() *inventory.Importer {
	imp := inventory.NewImporter(a.store.NewSession(), a.log)
	imp.Runs = a.store
	return imp
}
