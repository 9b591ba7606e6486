// Package config loads folio's settings from a YAML file, a .env file and
// FOLIO_* environment variables, in increasing order of precedence.
package config

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/asaidimu/go-folio/core/editor"
	"github.com/asaidimu/go-folio/core/schema"
	"github.com/joho/godotenv"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"
)

// DefaultPath is the config file read when no --config flag is given.
const DefaultPath = "folio.yaml"

//go:embed pages.yaml
var builtinPages []byte

// Config holds all folio configuration.
type Config struct {
	Store StoreConfig `yaml:"store"`

	// Pages is a page definition file. Empty selects the built-in pages.
	Pages string `yaml:"pages"`

	// Theme overrides every page theme when set ("dark" or "light").
	Theme string `yaml:"theme"`

	Preview PreviewConfig `yaml:"preview"`
	IDs     IDConfig      `yaml:"ids"`
	Logging LoggingConfig `yaml:"logging"`
}

// StoreConfig selects the document store backend.
type StoreConfig struct {
	Driver      string `yaml:"driver"` // memory, sqlite3, sqlite, postgres
	DSN         string `yaml:"dsn"`
	TablePrefix string `yaml:"table_prefix"`
}

// PreviewConfig configures the browser preview surface.
type PreviewConfig struct {
	Enabled bool   `yaml:"enabled"`
	Addr    string `yaml:"addr"`
}

// IDConfig configures generated document ids.
type IDConfig struct {
	Format string `yaml:"format"` // uuid or ulid
}

// LoggingConfig configures the zap logger.
type LoggingConfig struct {
	Level string `yaml:"level"`
	// File receives logs while the terminal UI owns stdout.
	File string `yaml:"file"`
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() *Config {
	return &Config{
		Store: StoreConfig{
			Driver: DriverSQLite3,
			DSN:    "folio.db",
		},
		Preview: PreviewConfig{
			Addr: "127.0.0.1:8765",
		},
		IDs: IDConfig{
			Format: "uuid",
		},
		Logging: LoggingConfig{
			Level: "info",
			File:  "folio.log",
		},
	}
}

// LoadDotEnv loads variables from .env files into the process environment.
// Missing files are ignored; variables already set are kept.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("failed to load %s: %w", p, err)
		}
	}
	return nil
}

// Load reads the config file at path over the defaults and applies
// environment overrides. A missing file yields the defaults.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	if err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnvOverrides() {
	set := func(key string, dst *string) {
		if v := strings.TrimSpace(os.Getenv(key)); v != "" {
			*dst = v
		}
	}
	set("FOLIO_STORE_DRIVER", &c.Store.Driver)
	set("FOLIO_STORE_DSN", &c.Store.DSN)
	set("FOLIO_PAGES", &c.Pages)
	set("FOLIO_THEME", &c.Theme)
	set("FOLIO_PREVIEW_ADDR", &c.Preview.Addr)
	set("FOLIO_ID_FORMAT", &c.IDs.Format)
	set("FOLIO_LOG_LEVEL", &c.Logging.Level)
	set("FOLIO_LOG_FILE", &c.Logging.File)
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	switch c.Store.Driver {
	case DriverMemory, DriverSQLite3, DriverSQLite, DriverPostgres:
	default:
		return fmt.Errorf("unknown store driver %q", c.Store.Driver)
	}
	if c.Store.Driver != DriverMemory && c.Store.DSN == "" {
		return fmt.Errorf("store.dsn is required for driver %q", c.Store.Driver)
	}
	if _, err := editor.IDGeneratorFor(c.IDs.Format); err != nil {
		return err
	}
	if _, err := c.LogLevel(); err != nil {
		return err
	}
	switch c.Theme {
	case "", "dark", "light":
	default:
		return fmt.Errorf("unknown theme %q", c.Theme)
	}
	return nil
}

// LogLevel parses Logging.Level.
func (c *Config) LogLevel() (zapcore.Level, error) {
	if c.Logging.Level == "" {
		return zapcore.InfoLevel, nil
	}
	lvl, err := zapcore.ParseLevel(c.Logging.Level)
	if err != nil {
		return lvl, fmt.Errorf("invalid log level: %w", err)
	}
	return lvl, nil
}

// IDGenerator returns the configured document id generator.
func (c *Config) IDGenerator() func() string {
	gen, err := editor.IDGeneratorFor(c.IDs.Format)
	if err != nil {
		return editor.UUIDGenerator()
	}
	return gen
}

// LoadPages returns the configured page definitions, or the built-in ones.
func (c *Config) LoadPages() ([]schema.Page, error) {
	if c.Pages == "" {
		return BuiltinPages()
	}
	return schema.LoadPagesFile(c.Pages)
}

// BuiltinPages returns the page definitions shipped with folio.
func BuiltinPages() ([]schema.Page, error) {
	return schema.LoadPages(bytes.NewReader(builtinPages))
}

// Save writes the configuration to path.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}
