package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	Version     string     `json:"version" mapstructure:"version"`
	Input       Input      `json:"input" mapstructure:"input"`
	Output      Output     `json:"output" mapstructure:"output"`
	Database    Database   `json:"database" mapstructure:"database"`
	Generation  Generation `json:"generation" mapstructure:"generation"`
	CatalogPath string     `json:"catalog_path" mapstructure:"catalog_path"`
	LogLevel    string     `json:"log_level" mapstructure:"log_level"`
}

type Input struct {
	CohortPath  string `json:"cohort_path" mapstructure:"cohort_path"`
	CohortSheet string `json:"cohort_sheet" mapstructure:"cohort_sheet"`
	ColumnPath  string `json:"column_path" mapstructure:"column_path"`
	ColumnSheet string `json:"column_sheet" mapstructure:"column_sheet"`
}

type Output struct {
	Path     string `json:"path" mapstructure:"path"`
	Format   string `json:"format" mapstructure:"format"`
	Table    string `json:"table" mapstructure:"table"`
	Truncate bool   `json:"truncate" mapstructure:"truncate"`
	Batch    int    `json:"batch" mapstructure:"batch"`
}

type Database struct {
	Provider string `json:"provider" mapstructure:"provider"`
	URLEnv   string `json:"url_env" mapstructure:"url_env"`
}

type Generation struct {
	Seed          uint64 `json:"seed" mapstructure:"seed"`
	Workers       int    `json:"workers" mapstructure:"workers"`
	Locale        string `json:"locale" mapstructure:"locale"`
	ProgressEvery int    `json:"progress_every" mapstructure:"progress_every"`
}

var (
	FileFormats     = []string{"xlsx", "csv", "json", "parquet", "sqlite"}
	DatabaseFormats = []string{"database"}
	Providers       = []string{"postgresql", "postgres", "mysql", "sqlite"}
	Locales         = []string{"en_AU", "en_US"}
)

func Load() (*Config, error) {
	var cfg Config

	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	cfg.applyDefaults()
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Version == "" {
		c.Version = "1"
	}
	if c.Input.ColumnSheet == "" && isSpreadsheet(c.Input.ColumnPath) {
		c.Input.ColumnSheet = "Table Artifacts"
	}
	if c.Output.Format == "" {
		c.Output.Format = formatFromPath(c.Output.Path)
	}
	if c.Output.Path == "" && c.Output.Format != "database" {
		c.Output.Path = "Synthetic_Patient_Data." + c.Output.Format
	}
	if c.Output.Table == "" {
		c.Output.Table = "synthetic_patients"
	}
	if c.Output.Batch <= 0 {
		c.Output.Batch = 500
	}
	if c.Database.Provider == "" {
		c.Database.Provider = "postgresql"
	}
	if c.Database.URLEnv == "" {
		c.Database.URLEnv = "DATABASE_URL"
	}
	if c.Generation.Workers <= 0 {
		c.Generation.Workers = 1
	}
	if c.Generation.Locale == "" {
		c.Generation.Locale = "en_AU"
	}
	if c.Generation.ProgressEvery <= 0 {
		c.Generation.ProgressEvery = 100
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
}

func (c *Config) Validate() error {
	if c.Input.CohortPath == "" {
		return fmt.Errorf("input.cohort_path cannot be empty")
	}
	if c.Input.ColumnPath == "" {
		return fmt.Errorf("input.column_path cannot be empty")
	}

	if !contains(FileFormats, c.Output.Format) && !contains(DatabaseFormats, c.Output.Format) {
		return fmt.Errorf("unsupported output format: %s. Supported formats: %v", c.Output.Format, append(FileFormats, DatabaseFormats...))
	}

	if c.IsDatabaseOutput() {
		if !contains(Providers, c.Database.Provider) {
			return fmt.Errorf("unsupported database provider: %s. Supported providers: %v", c.Database.Provider, Providers)
		}
	} else if c.Output.Path == "" {
		return fmt.Errorf("output.path cannot be empty")
	}

	if !contains(Locales, c.Generation.Locale) {
		return fmt.Errorf("unsupported locale: %s. Supported locales: %v", c.Generation.Locale, Locales)
	}
	if c.Generation.Workers > 256 {
		return fmt.Errorf("generation.workers must be between 1 and 256, got %d", c.Generation.Workers)
	}

	return nil
}

func (c *Config) IsDatabaseOutput() bool {
	return c.Output.Format == "database"
}

func (c *Config) GetDatabaseURL() (string, error) {
	dbURL := os.Getenv(c.Database.URLEnv)
	if dbURL == "" {
		return "", fmt.Errorf("database URL not found in environment variable %s", c.Database.URLEnv)
	}
	return dbURL, nil
}

func formatFromPath(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return "csv"
	case ".json":
		return "json"
	case ".parquet":
		return "parquet"
	case ".db", ".sqlite", ".sqlite3":
		return "sqlite"
	default:
		return "xlsx"
	}
}

func isSpreadsheet(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".xlsx" || ext == ".xlsm"
}

func contains(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}
