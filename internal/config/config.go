// Package config provides Viper-based configuration loading for the odds
// calculator.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// MaxTablePoolSize is the largest pool size the table renderer lays out.
const MaxTablePoolSize = 6

// TableConfig holds probability table settings.
type TableConfig struct {
	// MaxPoolSize is the largest pool size column, 1-6.
	MaxPoolSize int `mapstructure:"max_pool_size"`
	// MaxTarget is the largest target row, >= 1.
	MaxTarget int `mapstructure:"max_target"`
	// Precision is the number of decimals printed per percentage.
	Precision int `mapstructure:"precision"`
	// ShowProgress prints a line per computed cell.
	ShowProgress bool `mapstructure:"show_progress"`
	// Workers bounds how many cells are computed concurrently.
	Workers int `mapstructure:"workers"`
}

// FailuresConfig holds failure listing settings.
type FailuresConfig struct {
	// Precision is the number of decimals printed per percentage.
	Precision int `mapstructure:"precision"`
}

// RulesetConfig selects the active ruleset and where extra rulesets live.
type RulesetConfig struct {
	// ID is the active ruleset, e.g. "evens-up".
	ID string `mapstructure:"id"`
	// Dir is an optional directory of YAML ruleset files.
	Dir string `mapstructure:"dir"`
	// ScriptDir is an optional directory of Lua ruleset scripts.
	ScriptDir string `mapstructure:"script_dir"`
	// ScriptInstructionLimit caps opcodes per script; 0 uses the default.
	ScriptInstructionLimit int `mapstructure:"script_instruction_limit"`
}

// SimulationConfig holds Monte-Carlo settings.
type SimulationConfig struct {
	Trials int `mapstructure:"trials"`
	// Seed makes runs reproducible; 0 uses crypto/rand.
	Seed int64 `mapstructure:"seed"`
}

// LoggingConfig holds structured logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: "debug", "info", "warn", "error".
	Level string `mapstructure:"level"`
	// Format is the log output format: "json" or "console".
	Format string `mapstructure:"format"`
}

// HTTPConfig holds API server settings.
type HTTPConfig struct {
	Host              string        `mapstructure:"host"`
	Port              int           `mapstructure:"port"`
	ReadHeaderTimeout time.Duration `mapstructure:"read_header_timeout"`
	// MaxPoolSize bounds pool sizes accepted by single-cell queries.
	MaxPoolSize int `mapstructure:"max_pool_size"`
	// MaxTarget bounds targets accepted by every query.
	MaxTarget int `mapstructure:"max_target"`
}

// Addr returns the "host:port" listen address.
//
// Postcondition: Returns a non-empty string in "host:port" format.
func (h HTTPConfig) Addr() string {
	return fmt.Sprintf("%s:%d", h.Host, h.Port)
}

// GRPCConfig holds the gRPC health endpoint settings.
type GRPCConfig struct {
	// Enabled serves grpc.health.v1 next to the HTTP API.
	Enabled bool   `mapstructure:"enabled"`
	Host    string `mapstructure:"host"`
	Port    int    `mapstructure:"port"`
}

// Addr returns the "host:port" listen address.
func (g GRPCConfig) Addr() string {
	return fmt.Sprintf("%s:%d", g.Host, g.Port)
}

// DatabaseConfig holds PostgreSQL settings for the probability cache.
type DatabaseConfig struct {
	// Enabled turns the cache on; when false no connection is made.
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
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode,
	)
}

// Config is the top-level application configuration.
type Config struct {
	Table      TableConfig      `mapstructure:"table"`
	Failures   FailuresConfig   `mapstructure:"failures"`
	Ruleset    RulesetConfig    `mapstructure:"ruleset"`
	Simulation SimulationConfig `mapstructure:"simulation"`
	Logging    LoggingConfig    `mapstructure:"logging"`
	HTTP       HTTPConfig       `mapstructure:"http"`
	GRPC       GRPCConfig       `mapstructure:"grpc"`
	Database   DatabaseConfig   `mapstructure:"database"`
}

// Validate checks all configuration invariants.
//
// Postcondition: Returns nil if configuration is valid, or an error describing all violations.
func (c Config) Validate() error {
	var errs []string
	for _, err := range []error{
		validateTable(c.Table),
		validateFailures(c.Failures),
		validateRuleset(c.Ruleset),
		validateSimulation(c.Simulation),
		validateLogging(c.Logging),
		validateHTTP(c.HTTP),
		validateGRPC(c.GRPC),
		validateDatabase(c.Database),
	} {
		if err != nil {
			errs = append(errs, err.Error())
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

func validateTable(t TableConfig) error {
	var errs []string
	if t.MaxPoolSize < 1 || t.MaxPoolSize > MaxTablePoolSize {
		errs = append(errs, fmt.Sprintf("table.max_pool_size must be 1-%d, got %d", MaxTablePoolSize, t.MaxPoolSize))
	}
	if t.MaxTarget < 1 {
		errs = append(errs, fmt.Sprintf("table.max_target must be >= 1, got %d", t.MaxTarget))
	}
	if t.Precision < 0 || t.Precision > 10 {
		errs = append(errs, fmt.Sprintf("table.precision must be 0-10, got %d", t.Precision))
	}
	if t.Workers < 1 {
		errs = append(errs, fmt.Sprintf("table.workers must be >= 1, got %d", t.Workers))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func validateFailures(f FailuresConfig) error {
	if f.Precision < 0 || f.Precision > 10 {
		return fmt.Errorf("failures.precision must be 0-10, got %d", f.Precision)
	}
	return nil
}

func validateRuleset(r RulesetConfig) error {
	var errs []string
	if r.ID == "" {
		errs = append(errs, "ruleset.id must not be empty")
	}
	if r.ScriptInstructionLimit < 0 {
		errs = append(errs, "ruleset.script_instruction_limit must not be negative")
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func validateSimulation(s SimulationConfig) error {
	if s.Trials < 1 {
		return fmt.Errorf("simulation.trials must be >= 1, got %d", s.Trials)
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

func validateHTTP(h HTTPConfig) error {
	var errs []string
	if h.Port < 1 || h.Port > 65535 {
		errs = append(errs, fmt.Sprintf("http.port must be 1-65535, got %d", h.Port))
	}
	if h.ReadHeaderTimeout < 0 {
		errs = append(errs, "http.read_header_timeout must not be negative")
	}
	if h.MaxPoolSize < 1 {
		errs = append(errs, fmt.Sprintf("http.max_pool_size must be >= 1, got %d", h.MaxPoolSize))
	}
	if h.MaxTarget < 1 {
		errs = append(errs, fmt.Sprintf("http.max_target must be >= 1, got %d", h.MaxTarget))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func validateGRPC(g GRPCConfig) error {
	if !g.Enabled {
		return nil
	}
	if g.Port < 1 || g.Port > 65535 {
		return fmt.Errorf("grpc.port must be 1-65535, got %d", g.Port)
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
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

// Load reads configuration from the given file path, applies environment
// variable overrides, and validates the result. An empty path skips the file
// and uses defaults plus environment.
//
// Postcondition: Returns a valid Config or a non-nil error.
func Load(path string) (Config, error) {
	v := NewViper()
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("reading config file: %w", err)
		}
	}
	return LoadFromViper(v)
}

// NewViper returns a Viper instance with defaults and RISUS_ environment
// overrides applied, ready for flag bindings.
func NewViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix("RISUS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)
	return v
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
	v.SetDefault("table.max_pool_size", 6)
	v.SetDefault("table.max_target", 6)
	v.SetDefault("table.precision", 2)
	v.SetDefault("table.show_progress", false)
	v.SetDefault("table.workers", 4)

	v.SetDefault("failures.precision", 3)

	v.SetDefault("ruleset.id", "evens-up")
	v.SetDefault("ruleset.dir", "")
	v.SetDefault("ruleset.script_dir", "")
	v.SetDefault("ruleset.script_instruction_limit", 0)

	v.SetDefault("simulation.trials", 100_000)
	v.SetDefault("simulation.seed", 0)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")

	v.SetDefault("http.host", "0.0.0.0")
	v.SetDefault("http.port", 8080)
	v.SetDefault("http.read_header_timeout", "5s")
	v.SetDefault("http.max_pool_size", 6)
	v.SetDefault("http.max_target", 8)

	v.SetDefault("grpc.enabled", false)
	v.SetDefault("grpc.host", "0.0.0.0")
	v.SetDefault("grpc.port", 9090)

	v.SetDefault("database.enabled", false)
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "risus")
	v.SetDefault("database.password", "risus")
	v.SetDefault("database.name", "risus")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_conns", 10)
	v.SetDefault("database.min_conns", 1)
	v.SetDefault("database.max_conn_lifetime", "1h")
}
