package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

const (
	envPrefix = "PBTERM"
	appDir    = ".pbterm"
	logFile   = "pbterm.log"
	auditDir  = "audit"

	StoreJSON   = "json"
	StoreSQLite = "sqlite"
)

type Config struct {
	DataDir    string `envconfig:"DATA_DIR"`
	Store      string `envconfig:"STORE" default:"json"`
	Passphrase string `envconfig:"PASSPHRASE"`
	Debug      bool   `envconfig:"DEBUG"`
	LogFile    string `envconfig:"LOG_FILE"`
	Audit      bool   `envconfig:"AUDIT" default:"true"`
}

// Load reads an optional .env file and then the PBTERM_* environment. Callers
// apply their overrides and then call Validate.
func Load() (*Config, error) {
	// a missing .env is fine
	_ = godotenv.Load()

	cfg := new(Config)
	if err := envconfig.Process(envPrefix, cfg); err != nil {
		return nil, fmt.Errorf("load config error: %w", err)
	}

	if err := cfg.applyDefaults(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) applyDefaults() error {
	if c.DataDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("failed to get home directory: %w", err)
		}
		c.DataDir = filepath.Join(homeDir, appDir)
	}

	if c.LogFile == "" {
		c.LogFile = filepath.Join(c.DataDir, logFile)
	}

	return nil
}

func (c *Config) Validate() error {
	switch c.Store {
	case StoreJSON, StoreSQLite:
	default:
		return fmt.Errorf("invalid store: %s (must be '%s' or '%s')", c.Store, StoreJSON, StoreSQLite)
	}

	if c.DataDir == "" {
		return fmt.Errorf("data directory must not be empty")
	}

	if c.Passphrase != "" && c.Store != StoreJSON {
		return fmt.Errorf("passphrase is only supported by the '%s' store", StoreJSON)
	}

	return nil
}

// SetDataDir moves the data directory and any paths derived from it.
func (c *Config) SetDataDir(dir string) {
	if c.LogFile == filepath.Join(c.DataDir, logFile) {
		c.LogFile = filepath.Join(dir, logFile)
	}
	c.DataDir = dir
}

func (c *Config) AuditDir() string {
	return filepath.Join(c.DataDir, auditDir)
}
