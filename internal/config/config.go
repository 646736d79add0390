// Package config provides Viper-based configuration loading for the build calculator.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// DatabaseConfig holds PostgreSQL connection settings for the report store.
type DatabaseConfig struct {
	// Enabled turns on report persistence; when false the other fields are ignored.
	Enabled         bool          `mapstructure:"enabled"`
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	Name            string        `mapstructure:"name"`
	SSLMode         string        `mapstructure:"sslmode"`
	MaxConns        int32         `mapstructure:"max_conns"`
	MinConns        int32         `mapstructure:"min_conns"`
	MaxConnLifetime time.Duration `mapstructure:"max_conn_lifetime"`
}

// DSN returns the PostgreSQL connection string.
//
// Precondition: Host, Port, User, and Name must be non-empty.
// Postcondition: Returns a valid PostgreSQL DSN string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode,
	)
}

// LoggingConfig holds structured logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: "debug", "info", "warn", "error".
	Level string `mapstructure:"level"`
	// Format is the log output format: "json" or "console".
	Format string `mapstructure:"format"`
}

// CatalogConfig locates the YAML content catalog.
type CatalogConfig struct {
	// Dir is the catalog root holding characters/, items/, presets/ and targets/.
	Dir string `mapstructure:"dir"`
}

// AnalysisConfig tunes the build analyzer.
type AnalysisConfig struct {
	// Levels are the default power curve sample levels.
	Levels []int `mapstructure:"levels"`
	// Workers bounds concurrent resolutions; 0 uses GOMAXPROCS.
	Workers int `mapstructure:"workers"`
	// BurstHits is the number of attacks in a burst report.
	BurstHits int `mapstructure:"burst_hits"`
	// TopN is the number of recommendations kept.
	TopN int `mapstructure:"top_n"`
}

// ScriptingConfig configures the optional Lua recommendation scorer.
type ScriptingConfig struct {
	// ScorerScript is the path to a Lua file defining score(rec); empty disables scripting.
	ScorerScript string `mapstructure:"scorer_script"`
	// InstructionLimit caps Lua opcodes per call; 0 uses the sandbox default.
	InstructionLimit int `mapstructure:"instruction_limit"`
}

// ExportConfig controls report export.
type ExportConfig struct {
	// Dir is the directory reports are written to.
	Dir string `mapstructure:"dir"`
	// Format is the default export format: "json", "yaml" or "csv".
	Format string `mapstructure:"format"`
}

// Config is the top-level application configuration.
type Config struct {
	Logging   LoggingConfig   `mapstructure:"logging"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Catalog   CatalogConfig   `mapstructure:"catalog"`
	Analysis  AnalysisConfig  `mapstructure:"analysis"`
	Scripting ScriptingConfig `mapstructure:"scripting"`
	Export    ExportConfig    `mapstructure:"export"`
}

// Validate checks all configuration invariants.
//
// Postcondition: Returns nil if configuration is valid, or an error describing all violations.
func (c Config) Validate() error {
	var errs []string

	if err := validateLogging(c.Logging); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateDatabase(c.Database); err != nil {
		errs = append(errs, err.Error())
	}
	if c.Catalog.Dir == "" {
		errs = append(errs, "catalog.dir must not be empty")
	}
	if err := validateAnalysis(c.Analysis); err != nil {
		errs = append(errs, err.Error())
	}
	if c.Scripting.InstructionLimit < 0 {
		errs = append(errs, fmt.Sprintf("scripting.instruction_limit must be >= 0, got %d", c.Scripting.InstructionLimit))
	}
	if err := validateExport(c.Export); err != nil {
		errs = append(errs, err.Error())
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

func validateDatabase(d DatabaseConfig) error {
	if !d.Enabled {
		return nil
	}
	var errs []string
	if d.Host == "" {
		errs = append(errs, "database.host must not be empty")
	}
	if d.Port < 1 || d.Port > 65535 {
		errs = append(errs, fmt.Sprintf("database.port must be 1-65535, got %d", d.Port))
	}
	if d.User == "" {
		errs = append(errs, "database.user must not be empty")
	}
	if d.Name == "" {
		errs = append(errs, "database.name must not be empty")
	}
	validSSL := map[string]bool{"disable": true, "require": true, "verify-ca": true, "verify-full": true}
	if !validSSL[d.SSLMode] {
		errs = append(errs, fmt.Sprintf("database.sslmode must be one of [disable, require, verify-ca, verify-full], got %q", d.SSLMode))
	}
	if d.MaxConns < 1 {
		errs = append(errs, fmt.Sprintf("database.max_conns must be >= 1, got %d", d.MaxConns))
	}
	if d.MinConns < 0 {
		errs = append(errs, fmt.Sprintf("database.min_conns must be >= 0, got %d", d.MinConns))
	}
	if d.MinConns > d.MaxConns {
		errs = append(errs, "database.min_conns must not exceed database.max_conns")
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func validateLogging(l LoggingConfig) error {
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[l.Level] {
		return fmt.Errorf("logging.level must be one of [debug, info, warn, error], got %q", l.Level)
	}
	validFormats := map[string]bool{"json": true, "console": true}
	if !validFormats[l.Format] {
		return fmt.Errorf("logging.format must be one of [json, console], got %q", l.Format)
	}
	return nil
}

func validateAnalysis(a AnalysisConfig) error {
	var errs []string
	for _, lvl := range a.Levels {
		if lvl < 1 || lvl > 18 {
			errs = append(errs, fmt.Sprintf("analysis.levels must be within 1-18, got %d", lvl))
		}
	}
	if a.Workers < 0 {
		errs = append(errs, fmt.Sprintf("analysis.workers must be >= 0, got %d", a.Workers))
	}
	if a.BurstHits < 1 {
		errs = append(errs, fmt.Sprintf("analysis.burst_hits must be >= 1, got %d", a.BurstHits))
	}
	if a.TopN < 1 {
		errs = append(errs, fmt.Sprintf("analysis.top_n must be >= 1, got %d", a.TopN))
	}
	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

func validateExport(e ExportConfig) error {
	validFormats := map[string]bool{"json": true, "yaml": true, "csv": true}
	if !validFormats[e.Format] {
		return fmt.Errorf("export.format must be one of [json, yaml, csv], got %q", e.Format)
	}
	if e.Dir == "" {
		return errors.New("export.dir must not be empty")
	}
	return nil
}

// Load reads configuration from the given file path, applies environment variable
// overrides, and validates the result.
//
// Precondition: path must be a valid file path to a YAML configuration file.
// Postcondition: Returns a valid Config or a non-nil error.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetConfigFile(path)

	// Environment variable overrides with BUILDCALC_ prefix
	v.SetEnvPrefix("BUILDCALC")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return Config{}, fmt.Errorf("reading config file: %w", err)
	}

	return LoadFromViper(v)
}

// Default returns the configuration produced by defaults alone.
//
// Postcondition: Returns a valid Config.
func Default() Config {
	v := viper.New()
	setDefaults(v)
	cfg, err := LoadFromViper(v)
	if err != nil {
		panic(fmt.Sprintf("config: defaults are invalid: %v", err))
	}
	return cfg
}

// LoadFromViper builds a Config from an already-configured Viper instance.
//
// Precondition: v must be non-nil and have configuration values set.
// Postcondition: Returns a valid Config or a non-nil error.
func LoadFromViper(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshalling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")

	v.SetDefault("database.enabled", false)
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "buildcalc")
	v.SetDefault("database.password", "buildcalc")
	v.SetDefault("database.name", "buildcalc")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_conns", 4)
	v.SetDefault("database.min_conns", 1)
	v.SetDefault("database.max_conn_lifetime", "1h")

	v.SetDefault("catalog.dir", "content")

	v.SetDefault("analysis.levels", []int{1, 6, 11, 16, 18})
	v.SetDefault("analysis.workers", 0)
	v.SetDefault("analysis.burst_hits", 3)
	v.SetDefault("analysis.top_n", 5)

	v.SetDefault("scripting.scorer_script", "")
	v.SetDefault("scripting.instruction_limit", 0)

	v.SetDefault("export.dir", "exports")
	v.SetDefault("export.format", "json")
}
