package config_test

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/inventory-sync/config"
	"github.com/warp/inventory-sync/inventory"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "pxi.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv(config.EnvDatabase, "")
	t.Setenv(config.EnvLogLevel, "")

	cfg, err := config.Load("")

	require.NoError(t, err)
	assert.Equal(t, "./pxi.db", cfg.Database)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, ":8080", cfg.HTTP.Addr)
	assert.Len(t, cfg.ImportPaths, len(config.ImportPathKeys))
	assert.Equal(t, filepath.Join("data", "supplier_pricelist.csv"), cfg.ImportPaths[inventory.PathSupplierPricelist])
	assert.Equal(t, filepath.Join("output", "price_changes_report.xlsx"), cfg.ExportPaths.PriceChangesReport)
}

func TestLoad_FileThenEnvironment(t *testing.T) {
	// GIVEN: A config file naming one import path and a database
	// WHEN: PXI_LOG_LEVEL is set in the environment
	// THEN: The file's values apply, the environment wins for log level, other paths default under data_dir

	t.Setenv(config.EnvDatabase, "")
	t.Setenv(config.EnvLogLevel, "debug")
	path := writeConfig(t, `
database: /var/lib/pxi/pxi.db
log_level: warn
data_dir: /srv/erp
http:
  addr: 127.0.0.1:9000
import_paths:
  pricelist_datagrid: /srv/erp/PRICES.TXT
export_paths:
  tickets_list: /srv/shop/tickets.txt
`)

	cfg, err := config.Load(path)

	require.NoError(t, err)
	assert.Equal(t, "/var/lib/pxi/pxi.db", cfg.Database)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "127.0.0.1:9000", cfg.HTTP.Addr)

	got, err := cfg.ImportPath(inventory.PathPricelist)
	require.NoError(t, err)
	assert.Equal(t, "/srv/erp/PRICES.TXT", got)

	got, err = cfg.ImportPath(inventory.PathWebMenu)
	require.NoError(t, err)
	assert.Equal(t, "/srv/erp/web_menu.txt", got)

	assert.Equal(t, "/srv/shop/tickets.txt", cfg.ExportPaths.TicketsList)
}

func TestLoad_DatabaseFromEnvironment(t *testing.T) {
	t.Setenv(config.EnvDatabase, "/tmp/other.db")
	t.Setenv(config.EnvLogLevel, "")

	cfg, err := config.Load(writeConfig(t, "database: ignored.db\n"))

	require.NoError(t, err)
	assert.Equal(t, "/tmp/other.db", cfg.Database)
}

func TestLoad_Errors(t *testing.T) {
	t.Setenv(config.EnvDatabase, "")
	t.Setenv(config.EnvLogLevel, "")

	_, err := config.Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	_, err = config.Load(writeConfig(t, "databse: typo.db\n"))
	assert.ErrorContains(t, err, "failed to parse config file")

	_, err = config.Load(writeConfig(t, "log_level: chatty\n"))
	assert.ErrorContains(t, err, "LogLevel")
}

func TestLoad_EmptyFile(t *testing.T) {
	t.Setenv(config.EnvDatabase, "")
	t.Setenv(config.EnvLogLevel, "")

	cfg, err := config.Load(writeConfig(t, ""))

	require.NoError(t, err)
	assert.Equal(t, "./pxi.db", cfg.Database)
}

func TestImportPath_Unknown(t *testing.T) {
	cfg := &config.Config{}

	_, err := cfg.ImportPath("nope")

	assert.ErrorIs(t, err, config.ErrUnknownPath)
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	log, err := config.NewLoggerTo("warn", &buf)
	require.NoError(t, err)

	log.Info("hidden")
	log.WithField("kind", "ContractItem").Warn("shown")

	assert.Equal(t, logrus.WarnLevel, log.GetLevel())
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), `"kind":"ContractItem"`)
	assert.Contains(t, buf.String(), `"msg":"shown"`)

	_, err = config.NewLogger("chatty")
	assert.Error(t, err)
}
