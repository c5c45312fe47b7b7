package model

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Store driver names.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverMongo    = "mongo"
)

// ServerConfig holds HTTP listener settings.
type ServerConfig struct {
	Address string `mapstructure:"address" yaml:"address"`

	// Timeout bounds every request, including its store calls.
	Timeout time.Duration `mapstructure:"timeout" yaml:"timeout"`
}

// StoreConfig selects and locates the persistence backend.
type StoreConfig struct {
	// Driver is one of DriverSQLite, DriverPostgres, DriverMongo.
	Driver string `mapstructure:"driver" yaml:"driver"`

	// DSN is a file path for sqlite, a connection string for postgres,
	// or a mongodb:// URI.
	DSN string `mapstructure:"dsn" yaml:"dsn"`

	// Database is the Mongo database name. Ignored by SQL drivers.
	Database string `mapstructure:"database" yaml:"database"`
}

// AuthConfig holds token and registration secrets.
type AuthConfig struct {
	JWTSecret        string        `mapstructure:"jwt_secret" yaml:"jwt_secret"`
	TokenTTL         time.Duration `mapstructure:"token_ttl" yaml:"token_ttl"`
	AdminInviteToken string        `mapstructure:"admin_invite_token" yaml:"admin_invite_token"`

	// UseKeyring fills empty secrets from the system keyring.
	UseKeyring bool `mapstructure:"use_keyring" yaml:"use_keyring"`
}

// LogConfig holds logger settings.
type LogConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
}

// AppConfig is the top-level application configuration.
type AppConfig struct {
	Server ServerConfig `mapstructure:"server" yaml:"server"`
	Store  StoreConfig  `mapstructure:"store" yaml:"store"`
	Auth   AuthConfig   `mapstructure:"auth" yaml:"auth"`
	Log    LogConfig    `mapstructure:"log" yaml:"log"`
}

// DefaultConfigPath returns the default path for the configuration file,
// located at ~/.config/taskflow/config.yaml.
func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", "config.yaml")
	}
	return filepath.Join(home, ".config", "taskflow", "config.yaml")
}

// defaultDBPath places the sqlite database next to the default config.
func defaultDBPath() string {
	return filepath.Join(filepath.Dir(DefaultConfigPath()), "taskflow.db")
}

var defaults = map[string]any{
	"server.address":          ":8000",
	"server.timeout":          "10s",
	"store.driver":            DriverSQLite,
	"store.dsn":               "",
	"store.database":          "taskflow",
	"auth.jwt_secret":         "",
	"auth.token_ttl":          "168h",
	"auth.admin_invite_token": "",
	"auth.use_keyring":        false,
	"log.level":               "info",
	"log.format":              "console",
}

// flagKeys maps command-line flag names to configuration keys.
var flagKeys = map[string]string{
	"addr":      "server.address",
	"driver":    "store.driver",
	"dsn":       "store.dsn",
	"log-level": "log.level",
}

// LoadConfig reads configuration from the given YAML file path using Viper,
// then applies TASKFLOW_* environment variables and any flags in fs that
// were set explicitly. A missing file is not an error.
func LoadConfig(path string, fs *pflag.FlagSet) (*AppConfig, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	// Set defaults so missing keys resolve and env lookups know every key.
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.SetEnvPrefix("TASKFLOW")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if fs != nil {
		for name, key := range flagKeys {
			if f := fs.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("binding flag --%s: %w", name, err)
				}
			}
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var pathErr *os.PathError
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &pathErr) && !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	}

	var cfg AppConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	cfg.Store.Driver = strings.ToLower(cfg.Store.Driver)
	switch cfg.Store.Driver {
	case DriverSQLite:
		if cfg.Store.DSN == "" {
			cfg.Store.DSN = defaultDBPath()
		}
	case DriverPostgres, DriverMongo:
		if cfg.Store.DSN == "" {
			return nil, fmt.Errorf("store.dsn is required for driver %q", cfg.Store.Driver)
		}
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
	}

	return &cfg, nil
}

// SaveConfig writes the given configuration to a YAML file at path,
// creating parent directories if needed.
func SaveConfig(path string, cfg *AppConfig) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory %s: %w", dir, err)
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.Set("server.address", cfg.Server.Address)
	v.Set("server.timeout", cfg.Server.Timeout.String())
	v.Set("store", cfg.Store)
	v.Set("auth.jwt_secret", cfg.Auth.JWTSecret)
	v.Set("auth.token_ttl", cfg.Auth.TokenTTL.String())
	v.Set("auth.admin_invite_token", cfg.Auth.AdminInviteToken)
	v.Set("auth.use_keyring", cfg.Auth.UseKeyring)
	v.Set("log", cfg.Log)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}

	return nil
}
