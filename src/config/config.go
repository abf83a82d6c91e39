package config

import (
	"fmt"
	"os"
	"path/filepath"
	"unicode/utf8"

	"trend-observer/src/models"
	"trend-observer/src/utils"

	"gopkg.in/yaml.v3"
)

// -----------------------------------------------------------------------------

// Config wraps models.MConfig and provides business logic methods
type Config struct {
	*models.MConfig
	// Dir is the directory relative dataset paths are resolved against.
	Dir string
}

// -----------------------------------------------------------------------------

// NewConfig creates a new Config instance from YAML file
func NewConfig(configPath string) (*Config, error) {
	// 1. Read the YAML file content
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file '%s': %w", configPath, err)
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, err
	}
	cfg.Dir = filepath.Dir(configPath)
	return cfg, nil
}

// -----------------------------------------------------------------------------

// Parse builds a validated Config from YAML bytes.
func Parse(data []byte) (*Config, error) {
	var modelConfig models.MConfig
	if err := yaml.Unmarshal(data, &modelConfig); err != nil {
		return nil, fmt.Errorf("failed to parse config from YAML: %w", err)
	}

	config := &Config{MConfig: &modelConfig, Dir: "."}
	config.applyDefaults()

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return config, nil
}

// -----------------------------------------------------------------------------

func (c *Config) applyDefaults() {
	if c.Name == "" {
		c.Name = "trend-observer"
	}
	if c.LogLevel == "" {
		c.LogLevel = "INFO"
	}
	if c.ReportPath == "" {
		c.ReportPath = utils.DefaultReportPath
	}
	if c.Storage.DBType == "" {
		c.Storage.DBType = "none"
	}
	for i := range c.Datasets {
		if c.Datasets[i].Format == "" {
			c.Datasets[i].Format = "csv"
		}
		if c.Datasets[i].Delimiter == "" {
			c.Datasets[i].Delimiter = ","
		}
	}
	for i := range c.Comparisons {
		if c.Comparisons[i].Period == "" {
			c.Comparisons[i].Period = utils.DefaultPeriod
		}
	}
}

// -----------------------------------------------------------------------------

// Validate performs basic configuration validation
func (c *Config) Validate() error {
	if c.Name == "" {
		return fmt.Errorf("application name cannot be empty")
	}

	// Server is optional; only check the port when one is set
	if c.Port != 0 && (c.Port <= 1024 || c.Port > 65535) {
		return fmt.Errorf("invalid server port number: %d (must be between 1025 and 65535)", c.Port)
	}
	if c.RefreshSecs < 0 {
		return fmt.Errorf("refresh interval cannot be negative")
	}

	// Validate Storage configuration
	switch c.Storage.DBType {
	case "none":
	case "sqlite":
		if c.Storage.DBPath == "" {
			return fmt.Errorf("database path cannot be empty for sqlite")
		}
	case "postgres":
		if c.Storage.DBConnectionString == "" {
			return fmt.Errorf("connection string cannot be empty for postgres")
		}
	default:
		return fmt.Errorf("unsupported database type: %s", c.Storage.DBType)
	}

	// Validate datasets
	if len(c.Datasets) == 0 {
		return fmt.Errorf("at least one dataset must be configured")
	}
	seen := make(map[string]bool)
	for i, ds := range c.Datasets {
		if ds.Name == "" {
			return fmt.Errorf("dataset %d must have a name", i)
		}
		if seen[ds.Name] {
			return fmt.Errorf("duplicate dataset name '%s'", ds.Name)
		}
		seen[ds.Name] = true
		if ds.Path == "" {
			return fmt.Errorf("dataset '%s' must have a path", ds.Name)
		}
		if ds.Format != "csv" && ds.Format != "xlsx" {
			return fmt.Errorf("dataset '%s': unsupported format '%s'", ds.Name, ds.Format)
		}
		if utf8.RuneCountInString(ds.Delimiter) != 1 {
			return fmt.Errorf("dataset '%s': delimiter must be a single character", ds.Name)
		}
		if len(ds.DateColumns) == 0 || len(ds.DateColumns) > 2 {
			return fmt.Errorf("dataset '%s' must designate one or two date columns", ds.Name)
		}
		if ds.Resample != "" && !utils.IsValidPeriod(ds.Resample) {
			return fmt.Errorf("dataset '%s': unknown resample period '%s'", ds.Name, ds.Resample)
		}
	}

	// Validate comparisons
	for i, cmp := range c.Comparisons {
		if cmp.Name == "" {
			return fmt.Errorf("comparison %d must have a name", i)
		}
		for _, ref := range []models.MSeriesRef{cmp.Primary, cmp.Secondary} {
			if !seen[ref.Dataset] {
				return fmt.Errorf("comparison '%s' references unknown dataset '%s'", cmp.Name, ref.Dataset)
			}
			if ref.Column == "" {
				return fmt.Errorf("comparison '%s' has a series without a column", cmp.Name)
			}
		}
		if cmp.RollingWindow < 0 {
			return fmt.Errorf("comparison '%s': rolling window cannot be negative", cmp.Name)
		}
		if cmp.MaxLag < 0 {
			return fmt.Errorf("comparison '%s': max lag cannot be negative", cmp.Name)
		}
		if !utils.IsValidPeriod(cmp.Period) {
			return fmt.Errorf("comparison '%s': unknown period '%s'", cmp.Name, cmp.Period)
		}
		if err := validateLimits(cmp.PrimaryLimits); err != nil {
			return fmt.Errorf("comparison '%s' primary limits: %w", cmp.Name, err)
		}
		if err := validateLimits(cmp.SecondaryLimits); err != nil {
			return fmt.Errorf("comparison '%s' secondary limits: %w", cmp.Name, err)
		}
	}

	return nil
}

// -----------------------------------------------------------------------------

func validateLimits(l []float64) error {
	if len(l) == 0 {
		return nil
	}
	if len(l) != 2 {
		return fmt.Errorf("expected [min, max], got %d values", len(l))
	}
	if l[0] >= l[1] {
		return fmt.Errorf("min %.4g must be below max %.4g", l[0], l[1])
	}
	return nil
}

// -----------------------------------------------------------------------------

// Dataset returns the config of a named dataset.
func (c *Config) Dataset(name string) (models.MDatasetConfig, bool) {
	for _, ds := range c.Datasets {
		if ds.Name == name {
			return ds, true
		}
	}
	return models.MDatasetConfig{}, false
}

// -----------------------------------------------------------------------------

// ResolvePath makes a dataset path absolute relative to the config file.
func (c *Config) ResolvePath(p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(c.Dir, p)
}

// -----------------------------------------------------------------------------

// Save persists the current configuration to the specified YAML file path
func (c *Config) Save(configPath string) error {
	// 1. Marshal the struct to YAML
	data, err := yaml.Marshal(c.MConfig)
	if err != nil {
		return fmt.Errorf("failed to marshal config to YAML: %w", err)
	}

	// 2. Write to file (0644 permissions)
	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config to file '%s': %w", configPath, err)
	}

	return nil
}
