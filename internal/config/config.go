package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"paisometer/internal/dedup"
	"paisometer/internal/logger"
	"paisometer/internal/store"
)

// Environment overrides, applied after the config file.
const (
	envStoreDriver   = "PAISO_STORE_DRIVER"
	envStorePath     = "PAISO_STORE_PATH"
	envDatabaseURL   = "DATABASE_URL"
	envMongoURI      = "MONGO_URI"
	envDefaultSMSApp = "PAISO_DEFAULT_SMS_APP"
	envServerAddr    = "PAISO_SERVER_ADDR"
	envLogLevel      = "PAISO_LOG_LEVEL"
	envDedupWindow   = "PAISO_DEDUP_WINDOW"
	envAutoCategory  = "PAISO_AUTO_CATEGORIZE"
)

// Config is the application configuration.
type Config struct {
	Store          StoreConfig  `yaml:"store"`
	Notify         NotifyConfig `yaml:"notify"`
	Dedup          DedupConfig  `yaml:"dedup"`
	Sync           SyncConfig   `yaml:"sync"`
	Server         ServerConfig `yaml:"server"`
	Log            LogConfig    `yaml:"log"`
	VocabularyFile string       `yaml:"vocabulary_file"`
}

type StoreConfig struct {
	Driver        string `yaml:"driver"`
	Path          string `yaml:"path"`
	DatabaseURL   string `yaml:"database_url"`
	MongoURI      string `yaml:"mongo_uri"`
	MongoDatabase string `yaml:"mongo_database"`
}

type NotifyConfig struct {
	DefaultSMSApp string   `yaml:"default_sms_app"`
	Allowlist     []string `yaml:"allowlist"`
}

type DedupConfig struct {
	Window time.Duration `yaml:"window"`
}

type SyncConfig struct {
	// AutoCategorize replaces "uncategorized" with a keyword guess instead of "other".
	AutoCategorize bool `yaml:"auto_categorize"`
}

type ServerConfig struct {
	Addr string `yaml:"addr"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Default returns the configuration used when nothing is set.
func Default() Config {
	return Config{
		Store: StoreConfig{
			Driver: store.DriverFile,
			Path:   store.DefaultFilePath,
		},
		Dedup:  DedupConfig{Window: dedup.DefaultWindow},
		Server: ServerConfig{Addr: ":8080"},
		Log:    LogConfig{Level: "info", Format: string(logger.FormatConsole)},
	}
}

// Load builds the configuration from defaults, then the YAML file at path
// (skipped when path is empty), then environment variables.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("failed to parse config file %q: %w", path, err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return cfg, err
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	setString(&c.Store.Driver, envStoreDriver)
	setString(&c.Store.Path, envStorePath)
	setString(&c.Store.DatabaseURL, envDatabaseURL)
	setString(&c.Store.MongoURI, envMongoURI)
	setString(&c.Notify.DefaultSMSApp, envDefaultSMSApp)
	setString(&c.Server.Addr, envServerAddr)
	setString(&c.Log.Level, envLogLevel)

	if v, ok := os.LookupEnv(envDedupWindow); ok && v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", envDedupWindow, v, err)
		}
		c.Dedup.Window = d
	}
	if v, ok := os.LookupEnv(envAutoCategory); ok && v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", envAutoCategory, v, err)
		}
		c.Sync.AutoCategorize = b
	}
	return nil
}

// Validate checks values that would otherwise fail later and less clearly.
func (c Config) Validate() error {
	switch strings.ToLower(c.Store.Driver) {
	case store.DriverMemory, store.DriverFile, store.DriverSQLite:
	case store.DriverPostgres:
		if c.Store.DatabaseURL == "" {
			return fmt.Errorf("store driver postgres needs %s or store.database_url", envDatabaseURL)
		}
	case store.DriverMongo:
		if c.Store.MongoURI == "" {
			return fmt.Errorf("store driver mongo needs %s or store.mongo_uri", envMongoURI)
		}
	default:
		return fmt.Errorf("%w: %q", store.ErrUnknownDriver, c.Store.Driver)
	}
	if c.Dedup.Window < 0 {
		return fmt.Errorf("dedup window must not be negative, got %s", c.Dedup.Window)
	}
	return nil
}

// StoreOptions converts the store section for store.Open.
func (c Config) StoreOptions() store.Options {
	return store.Options{
		Driver:        c.Store.Driver,
		Path:          c.Store.Path,
		DatabaseURL:   c.Store.DatabaseURL,
		MongoURI:      c.Store.MongoURI,
		MongoDatabase: c.Store.MongoDatabase,
	}
}

func setString(dst *string, env string) {
	if v, ok := os.LookupEnv(env); ok && v != "" {
		*dst = v
	}
}
