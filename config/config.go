// =============================================================================
// PXI - Configuration
// =============================================================================
//
// Settings come from a YAML file, then environment overrides:
//
//	PXI_DATABASE   overrides database
//	PXI_LOG_LEVEL  overrides log_level
//
// A .env file in the working directory is loaded first, so overrides can
// live there instead of the shell environment. Variables already set in the
// environment win over .env.
//
// Every import and export path has a default under data_dir / output_dir;
// the file only needs to name the paths that differ.
//
// =============================================================================

package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/warp/inventory-sync/inventory"
)

const (
	EnvDatabase = "PXI_DATABASE"
	EnvLogLevel = "PXI_LOG_LEVEL"
)

// ErrUnknownPath is returned when a path key is not configured.
var ErrUnknownPath = errors.New("unknown path key")

// =============================================================================
// CONFIGURATION STRUCTURE
// =============================================================================

type Config struct {
	// Database is the SQLite file. Default: "./pxi.db"
	Database string `yaml:"database" validate:"required"`

	// LogLevel is any logrus level name. Default: "info"
	LogLevel string `yaml:"log_level" validate:"oneof=trace debug info warn warning error fatal panic"`

	HTTP HTTPConfig `yaml:"http"`

	// DataDir holds the ERP extracts. Default: "./data"
	DataDir string `yaml:"data_dir"`

	// OutputDir receives exports. Default: "./output"
	OutputDir string `yaml:"output_dir"`

	// ImportPaths maps an import path key (see inventory.Path*) to a file.
	ImportPaths map[string]string `yaml:"import_paths" validate:"dive,keys,required,endkeys,required"`

	ExportPaths ExportPaths `yaml:"export_paths"`
}

type HTTPConfig struct {
	// Addr is the listen address for `pxi serve`. Default: ":8080"
	Addr string `yaml:"addr" validate:"required"`
}

type ExportPaths struct {
	Pricelist          string `yaml:"pricelist" validate:"required"`
	PriceChangesReport string `yaml:"price_changes_report" validate:"required"`
	ProductPriceTask   string `yaml:"product_price_task" validate:"required"`
	ContractItemTask   string `yaml:"contract_item_task" validate:"required"`
	TicketsList        string `yaml:"tickets_list" validate:"required"`
}

// ImportPathKeys lists every file the importers read.
var ImportPathKeys = []string{
	inventory.PathInventoryItems,
	inventory.PathPriceRules,
	inventory.PathPricelist,
	inventory.PathContractItems,
	inventory.PathSupplierItems,
	inventory.PathGTINItems,
	inventory.PathWebMenu,
	inventory.PathInventoryWebDataItems,
	inventory.PathWebMenuMappings,
	inventory.PathMissingImagesReport,
	inventory.PathSupplierPricelist,
}

// ImportPath returns the file configured for an import path key.
func (c *Config) ImportPath(key string) (string, error) {
	path, ok := c.ImportPaths[key]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownPath, key)
	}
	return path, nil
}

// =============================================================================
// LOADING
// =============================================================================

// Load reads the config file, applies environment overrides and defaults,
// and validates the result. An empty path loads defaults only.
func Load(path string) (*Config, error) {
	var cfg Config
	if path != "" {
		if err := decodeFile(path, &cfg); err != nil {
			return nil, err
		}
	}

	// A missing .env is normal.
	_ = godotenv.Load()
	applyEnv(&cfg)
	applyDefaults(&cfg)

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

func decodeFile(path string, cfg *Config) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	defer f.Close()

	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("failed to parse config file: %w", err)
	}
	return nil
}

func applyEnv(cfg *Config) {
	if v := strings.TrimSpace(os.Getenv(EnvDatabase)); v != "" {
		cfg.Database = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogLevel)); v != "" {
		cfg.LogLevel = v
	}
}

func applyDefaults(cfg *Config) {
	if cfg.Database == "" {
		cfg.Database = "./pxi.db"
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	if cfg.HTTP.Addr == "" {
		cfg.HTTP.Addr = ":8080"
	}
	if cfg.DataDir == "" {
		cfg.DataDir = "./data"
	}
	if cfg.OutputDir == "" {
		cfg.OutputDir = "./output"
	}

	if cfg.ImportPaths == nil {
		cfg.ImportPaths = make(map[string]string, len(ImportPathKeys))
	}
	for _, key := range ImportPathKeys {
		if cfg.ImportPaths[key] == "" {
			cfg.ImportPaths[key] = filepath.Join(cfg.DataDir, defaultImportFile(key))
		}
	}

	out := func(p *string, name string) {
		if *p == "" {
			*p = filepath.Join(cfg.OutputDir, name)
		}
	}
	out(&cfg.ExportPaths.Pricelist, "pricelist.csv")
	out(&cfg.ExportPaths.PriceChangesReport, "price_changes_report.xlsx")
	out(&cfg.ExportPaths.ProductPriceTask, "product_price_task.txt")
	out(&cfg.ExportPaths.ContractItemTask, "contract_item_task.txt")
	out(&cfg.ExportPaths.TicketsList, "tickets_list.txt")
}

func defaultImportFile(key string) string {
	if key == inventory.PathSupplierPricelist {
		return key + ".csv"
	}
	return key + ".txt"
}

func validate(cfg *Config) error {
	err := validator.New().Struct(cfg)
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	fields := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, fmt.Sprintf("%s (%s)", fe.Namespace(), fe.Tag()))
	}
	return errors.New(strings.Join(fields, ", "))
}
