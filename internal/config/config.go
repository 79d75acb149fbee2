// Package config loads the settings of the litorm command line tool.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/mitchellh/go-homedir"
	"github.com/spf13/afero"
	"github.com/spf13/viper"

	"github.com/tordrt/litorm/adapter"
	"github.com/tordrt/litorm/schema"
)

// AppFs is the filesystem dotenv and models files are read from.
var AppFs afero.Fs = afero.NewOsFs()

// Config holds the CLI configuration
type Config struct {
	DatabaseURL string
	SQLitePath  string
	Adapter     string
	Host        string
	Port        int
	Username    string
	Password    string
	Database    string
	SSL         bool
	ModelsPath  string
	Format      string
	Debug       bool
}

// Load reads configuration from, in increasing priority: defaults, the
// config file, .env, .env.local and LITORM_* environment variables.
// DATABASE_URL is used when no database URL is configured otherwise.
// An empty configFile searches for .litorm.yaml in the working directory
// and the home directory.
func Load(configFile string) (*Config, error) {
	v := viper.New()

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName(".litorm")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if home, err := homedir.Dir(); err == nil {
			v.AddConfigPath(home)
			v.AddConfigPath(filepath.Join(home, ".config", "litorm"))
		}
	}

	// Set environment variable prefix
	v.SetEnvPrefix("LITORM")
	v.AutomaticEnv()

	// Set defaults
	v.SetDefault("models", "models.yaml")
	v.SetDefault("format", "text")
	v.SetDefault("ssl", false)
	v.SetDefault("debug", false)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// Load .env file if it exists
	if _, err := AppFs.Stat(".env"); err == nil {
		if err := godotenv.Load(); err != nil {
			return nil, fmt.Errorf("failed to load .env: %w", err)
		}
	}

	// Load .env.local if it exists (higher priority)
	if _, err := AppFs.Stat(".env.local"); err == nil {
		if err := godotenv.Overload(".env.local"); err != nil {
			return nil, fmt.Errorf("failed to load .env.local: %w", err)
		}
	}

	cfg := &Config{
		DatabaseURL: v.GetString("database_url"),
		SQLitePath:  v.GetString("sqlite"),
		Adapter:     v.GetString("adapter"),
		Host:        v.GetString("host"),
		Port:        v.GetInt("port"),
		Username:    v.GetString("username"),
		Password:    v.GetString("password"),
		Database:    v.GetString("database"),
		SSL:         v.GetBool("ssl"),
		ModelsPath:  v.GetString("models"),
		Format:      v.GetString("format"),
		Debug:       v.GetBool("debug"),
	}
	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	}

	return cfg, nil
}

// Connection returns the adapter tag and connection settings. A database
// URL wins over a SQLite path, which wins over the individual fields.
func (c *Config) Connection() (string, adapter.Config, error) {
	switch {
	case c.DatabaseURL != "":
		return adapter.ParseURL(c.DatabaseURL)
	case c.SQLitePath != "":
		return "sqlite", adapter.Config{Database: c.SQLitePath}, nil
	case c.Adapter != "":
		return c.Adapter, adapter.Config{
			Host:     c.Host,
			Port:     c.Port,
			Username: c.Username,
			Password: c.Password,
			Database: c.Database,
			SSL:      c.SSL,
		}, nil
	default:
		return "", adapter.Config{}, fmt.Errorf("no database configured: set --db-url, --sqlite, DATABASE_URL or LITORM_ADAPTER")
	}
}

// LoadModels decodes the models file and registers its models in r.
func (c *Config) LoadModels(r *schema.Registry) ([]*schema.Metadata, error) {
	data, err := afero.ReadFile(AppFs, c.ModelsPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read models file: %w", err)
	}
	models, err := schema.Load(bytes.NewReader(data), r)
	if err != nil {
		return nil, fmt.Errorf("failed to load models file %s: %w", c.ModelsPath, err)
	}
	return models, nil
}
